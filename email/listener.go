package email

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sesbouncy/sesbouncy/agent"
	"github.com/sesbouncy/sesbouncy/db"
)

// SuppressingListener reacts to ingested feedback by adding permanently
// bounced and complained recipients to the SES account-level suppression
// list, so nothing else sends to addresses known to reject or report mail.
//
// Register SuppressIngested with agent.Dispatcher.OnFeedbackIngested.
type SuppressingListener struct {
	Suppressor Suppressor
	Log        *log.Logger
}

func (l *SuppressingListener) SuppressIngested(
	ctx context.Context, event agent.FeedbackIngested,
) error {
	var reason types.SuppressionListReason
	record := event.Record

	switch {
	case record.Kind == db.KindBounce && event.IsHard:
		reason = types.SuppressionListReasonBounce
	case record.Kind == db.KindComplaint:
		reason = types.SuppressionListReasonComplaint
	default:
		return nil
	}

	if err := l.Suppressor.Suppress(ctx, record.Address, reason); err != nil {
		return err
	}
	l.Log.Printf("suppressed %s after %s", record.Address, record.Kind)
	return nil
}
