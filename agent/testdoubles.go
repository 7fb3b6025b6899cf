//go:build small_tests || all_tests

package agent

import (
	"context"

	"github.com/sesbouncy/sesbouncy/events"
	"github.com/sesbouncy/sesbouncy/ops"
)

// TestAgent is a FeedbackAgent double returning canned results.
type TestAgent struct {
	Envelopes []*events.Envelope
	Messages  []*events.FeedbackMessage
	Result    ops.IngestResult
	Err       error
}

func (a *TestAgent) Ingest(
	_ context.Context, env *events.Envelope, msg *events.FeedbackMessage,
) (ops.IngestResult, error) {
	a.Envelopes = append(a.Envelopes, env)
	a.Messages = append(a.Messages, msg)
	return a.Result, a.Err
}
