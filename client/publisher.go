package client

import (
	"log"
	"time"

	"golang.org/x/time/rate"
)

// PublishInterval is the minimum gap between position writes (10 Hz).
const PublishInterval = 100 * time.Millisecond

// SendFunc pushes one position sample to the backend.
type SendFunc func(x, z float64, room string) error

// Publisher rate-limits position writes with a one-token bucket: at most one
// send per interval, suppressed calls are plain no-ops. Sends are
// best-effort; failures are logged and dropped, never retried — the next
// allowed tick carries fresher data anyway.
type Publisher struct {
	limiter *rate.Limiter
	send    SendFunc
}

func NewPublisher(interval time.Duration, send SendFunc) *Publisher {
	if interval <= 0 {
		interval = PublishInterval
	}
	return &Publisher{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		send:    send,
	}
}

// Publish forwards the sample if the throttle allows it. Returns whether a
// send was attempted.
func (p *Publisher) Publish(x, z float64, room string) bool {
	return p.publishAt(time.Now(), x, z, room)
}

func (p *Publisher) publishAt(now time.Time, x, z float64, room string) bool {
	if !p.limiter.AllowN(now, 1) {
		return false
	}
	if err := p.send(x, z, room); err != nil {
		log.Printf("Dropping position update: %v", err)
	}
	return true
}
