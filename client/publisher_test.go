package client

import (
	"errors"
	"testing"
	"time"
)

func TestPublisherThrottleInterval(t *testing.T) {
	var sent []time.Duration
	base := time.Now()

	p := NewPublisher(100*time.Millisecond, func(x, z float64, room string) error {
		return nil
	})

	// Calls at 0, 30, 60, 100, 150 ms: only 0 and 100 may go through.
	offsets := []time.Duration{0, 30 * time.Millisecond, 60 * time.Millisecond, 100 * time.Millisecond, 150 * time.Millisecond}
	for _, off := range offsets {
		if p.publishAt(base.Add(off), 1, 2, "") {
			sent = append(sent, off)
		}
	}

	if len(sent) != 2 || sent[0] != 0 || sent[1] != 100*time.Millisecond {
		t.Fatalf("sends at %v, want [0s 100ms]", sent)
	}
}

func TestPublisherSpacedCallsAllPass(t *testing.T) {
	count := 0
	base := time.Now()
	p := NewPublisher(100*time.Millisecond, func(x, z float64, room string) error {
		count++
		return nil
	})

	for i := 0; i < 5; i++ {
		if !p.publishAt(base.Add(time.Duration(i)*100*time.Millisecond), 0, 0, "") {
			t.Fatalf("call %d suppressed despite full interval gap", i)
		}
	}
	if count != 5 {
		t.Fatalf("send count = %d, want 5", count)
	}
}

func TestPublisherSendFailureIsDropped(t *testing.T) {
	p := NewPublisher(100*time.Millisecond, func(x, z float64, room string) error {
		return errors.New("backend down")
	})

	// A failed send still counts as this interval's attempt; no retry, no
	// panic, no error surfaced.
	if !p.publishAt(time.Now(), 1, 1, "") {
		t.Fatal("first publish should be attempted")
	}
}

func TestPublisherForwardsSample(t *testing.T) {
	var gotX, gotZ float64
	var gotRoom string
	p := NewPublisher(100*time.Millisecond, func(x, z float64, room string) error {
		gotX, gotZ, gotRoom = x, z, room
		return nil
	})

	p.publishAt(time.Now(), 3.5, -7.25, "stadium")
	if gotX != 3.5 || gotZ != -7.25 || gotRoom != "stadium" {
		t.Fatalf("sample = (%v, %v, %q), want (3.5, -7.25, stadium)", gotX, gotZ, gotRoom)
	}
}
