//go:build small_tests || all_tests

package handler

import (
	"context"

	"github.com/sesbouncy/sesbouncy/events"
)

// TestConfirmer is a SubscriptionConfirmer double returning a canned body.
type TestConfirmer struct {
	Envelopes []*events.Envelope
	Body      []byte
	Err       error
}

func (c *TestConfirmer) Confirm(
	_ context.Context, env *events.Envelope,
) ([]byte, error) {
	c.Envelopes = append(c.Envelopes, env)

	if c.Err != nil {
		return nil, c.Err
	}
	return c.Body, nil
}
