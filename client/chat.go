package client

import (
	"sync"

	"wavewatch/world"
)

// DefaultChatCapacity matches the overlay's visible history.
const DefaultChatCapacity = 50

// ChatLog is a capped, oldest-first message buffer. The backing store keeps
// everything; the client only holds what the overlay shows.
type ChatLog struct {
	capacity int
	messages []*world.ChatMessageView
	mu       sync.RWMutex
}

func NewChatLog(capacity int) *ChatLog {
	if capacity <= 0 {
		capacity = DefaultChatCapacity
	}
	return &ChatLog{capacity: capacity}
}

// Append adds a message, evicting the oldest once the cap is exceeded.
func (l *ChatLog) Append(m *world.ChatMessageView) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, m)
	if len(l.messages) > l.capacity {
		overflow := len(l.messages) - l.capacity
		l.messages = append(l.messages[:0], l.messages[overflow:]...)
	}
}

// Messages returns the buffered history, oldest first.
func (l *ChatLog) Messages() []*world.ChatMessageView {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*world.ChatMessageView(nil), l.messages...)
}

func (l *ChatLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
