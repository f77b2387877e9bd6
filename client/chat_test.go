package client

import (
	"fmt"
	"testing"

	"wavewatch/world"
)

func msg(i int) *world.ChatMessageView {
	return &world.ChatMessageView{
		ID:        fmt.Sprintf("msg-%d", i),
		UserID:    1,
		Body:      fmt.Sprintf("message %d", i),
		CreatedAt: int64(i),
	}
}

func TestChatLogCapsAtCapacity(t *testing.T) {
	l := NewChatLog(50)

	for i := 0; i < 60; i++ {
		l.Append(msg(i))
	}

	messages := l.Messages()
	if len(messages) != 50 {
		t.Fatalf("buffer size = %d, want 50", len(messages))
	}
	// The most recent 50 remain, oldest first.
	if messages[0].ID != "msg-10" {
		t.Fatalf("oldest retained = %s, want msg-10", messages[0].ID)
	}
	if messages[49].ID != "msg-59" {
		t.Fatalf("newest retained = %s, want msg-59", messages[49].ID)
	}
}

func TestChatLogOldestFirstUnderCap(t *testing.T) {
	l := NewChatLog(50)
	for i := 0; i < 3; i++ {
		l.Append(msg(i))
	}

	messages := l.Messages()
	if len(messages) != 3 {
		t.Fatalf("buffer size = %d, want 3", len(messages))
	}
	for i, m := range messages {
		if m.CreatedAt != int64(i) {
			t.Fatalf("message %d out of order: %+v", i, m)
		}
	}
}

func TestChatLogDefaultCapacity(t *testing.T) {
	l := NewChatLog(0)
	for i := 0; i < DefaultChatCapacity+10; i++ {
		l.Append(msg(i))
	}
	if l.Len() != DefaultChatCapacity {
		t.Fatalf("buffer size = %d, want %d", l.Len(), DefaultChatCapacity)
	}
}
