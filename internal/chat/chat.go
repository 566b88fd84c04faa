// Package chat implements the storefront's support widget: a canned,
// fixed-delay automated reply. Purely cosmetic; no state is kept.
package chat

import (
	"context"
	"strings"
	"time"
)

// DefaultDelay matches the widget's simulated typing pause.
const DefaultDelay = time.Second

// Greeting opens every conversation.
const Greeting = "Hi! I'm the FreshMart assistant. How can I help you today?"

const fallbackReply = "Thanks for reaching out! We have plenty of fresh products waiting for you. Is there anything specific you're looking for?"

// Responder produces automated replies after a fixed delay.
type Responder struct {
	delay time.Duration
}

// NewResponder creates a Responder. A non-positive delay falls back to
// DefaultDelay.
func NewResponder(delay time.Duration) *Responder {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Responder{delay: delay}
}

// Reply waits out the simulated typing delay and returns the canned answer.
// It returns early with the context's error when ctx is cancelled.
func (r *Responder) Reply(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", nil
	}

	timer := time.NewTimer(r.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return fallbackReply, nil
	}
}
