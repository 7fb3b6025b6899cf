package agent

import (
	"context"
	"log"

	"github.com/sesbouncy/sesbouncy/db"
	"github.com/sesbouncy/sesbouncy/events"
)

// NotificationVerified fires once per authenticated envelope, before its
// contents are examined.
type NotificationVerified struct {
	Envelope *events.Envelope
}

// SubscriptionProcessed fires after a SubscriptionConfirmation or
// UnsubscribeConfirmation envelope has been handled. Response holds the raw
// body Amazon returned from the SubscribeURL, nil when no confirmation
// request was made. Confirmed is false when auto-confirmation is disabled,
// the confirmation request failed, or the envelope announced an
// unsubscription.
type SubscriptionProcessed struct {
	Envelope  *events.Envelope
	Response  []byte
	Confirmed bool
}

// FeedbackIngested fires once per stored feedback record, after the record
// has been written. It's the integration point for downstream reactions to
// feedback, so the stored record, the message it was normalized from, and
// the envelope that delivered it all ride along; listeners never need a
// second lookup.
type FeedbackIngested struct {
	Record   *db.Feedback
	Message  *events.FeedbackMessage
	Envelope *events.Envelope

	// IsHard mirrors db.Bounce.IsHard, which the common Record doesn't
	// carry. Always false for complaints and deliveries.
	IsHard bool
}

type (
	NotificationListener func(context.Context, NotificationVerified) error
	SubscriptionListener func(context.Context, SubscriptionProcessed) error
	FeedbackListener     func(context.Context, FeedbackIngested) error
)

// Dispatcher delivers events synchronously, in registration order, to
// listeners registered before serving begins. Registration isn't safe for
// concurrent use; emitting is.
//
// A listener error never propagates back into request processing. It's
// logged and the remaining listeners still run.
type Dispatcher struct {
	Log *log.Logger

	notificationListeners []NotificationListener
	subscriptionListeners []SubscriptionListener
	feedbackListeners     []FeedbackListener
}

func (d *Dispatcher) OnNotificationVerified(listener NotificationListener) {
	d.notificationListeners = append(d.notificationListeners, listener)
}

func (d *Dispatcher) OnSubscriptionProcessed(listener SubscriptionListener) {
	d.subscriptionListeners = append(d.subscriptionListeners, listener)
}

func (d *Dispatcher) OnFeedbackIngested(listener FeedbackListener) {
	d.feedbackListeners = append(d.feedbackListeners, listener)
}

func (d *Dispatcher) NotificationVerified(
	ctx context.Context, event NotificationVerified,
) {
	for _, listener := range d.notificationListeners {
		if err := listener(ctx, event); err != nil {
			d.Log.Printf(
				"notification listener failed for %s: %s",
				event.Envelope.MessageId, err,
			)
		}
	}
}

func (d *Dispatcher) SubscriptionProcessed(
	ctx context.Context, event SubscriptionProcessed,
) {
	for _, listener := range d.subscriptionListeners {
		if err := listener(ctx, event); err != nil {
			d.Log.Printf(
				"subscription listener failed for %s: %s",
				event.Envelope.TopicArn, err,
			)
		}
	}
}

func (d *Dispatcher) FeedbackIngested(
	ctx context.Context, event FeedbackIngested,
) {
	for _, listener := range d.feedbackListeners {
		if err := listener(ctx, event); err != nil {
			d.Log.Printf(
				"feedback listener failed for %s record %s: %s",
				event.Record.Kind, event.Record.Id, err,
			)
		}
	}
}
