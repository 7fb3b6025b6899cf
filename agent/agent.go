package agent

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sesbouncy/sesbouncy/db"
	"github.com/sesbouncy/sesbouncy/events"
	"github.com/sesbouncy/sesbouncy/ops"
)

// FeedbackAgent normalizes the inner message of an authenticated SES
// notification into stored feedback records.
type FeedbackAgent interface {
	// Ingest creates one record per recipient named by the message.
	//
	// A non-Invalid result acknowledges the message to SNS even when nothing
	// was stored; the sender is authenticated by this point, and only an
	// error (a failed write) should make SNS redeliver.
	Ingest(
		ctx context.Context,
		env *events.Envelope,
		msg *events.FeedbackMessage,
	) (ops.IngestResult, error)
}

// Bounces of this bounceType permanently suppress the recipient.
const permanentBounceType = "Permanent"

type ProdAgent struct {
	Db         db.Database
	Dispatcher *Dispatcher
	NewId      func() uuid.UUID
	Log        *log.Logger
}

func (a *ProdAgent) Ingest(
	ctx context.Context, env *events.Envelope, msg *events.FeedbackMessage,
) (result ops.IngestResult, err error) {
	// events.ParseFeedbackMessage checks that the "mail" key was present,
	// but an explicit null still parses to nil.
	if msg.Mail == nil {
		return ops.MissingVitalFields, nil
	}

	switch events.ParseFeedbackType(msg.NotificationType) {
	case events.Bounce:
		return a.ingestBounce(ctx, env, msg)
	case events.Complaint:
		return a.ingestComplaint(ctx, env, msg)
	case events.Delivery:
		return a.ingestDelivery(ctx, env, msg)
	}
	a.Log.Printf(
		"unknown notificationType in %s: %q",
		env.MessageId, msg.NotificationType,
	)
	return ops.UnknownNotificationType, nil
}

func (a *ProdAgent) ingestBounce(
	ctx context.Context, env *events.Envelope, msg *events.FeedbackMessage,
) (result ops.IngestResult, err error) {
	feedback := msg.Bounce
	if feedback == nil {
		return ops.MissingVitalFields, nil
	}
	isHard := feedback.BounceType == permanentBounceType

	for i := range feedback.BouncedRecipients {
		recipient := &feedback.BouncedRecipients[i]
		record := &db.Bounce{
			Feedback: a.newFeedback(
				db.KindBounce, env, msg, recipient.EmailAddress,
			),
			IsHard:         isHard,
			BounceType:     feedback.BounceType,
			BounceSubType:  feedback.BounceSubType,
			ReportingMta:   feedback.ReportingMTA,
			Action:         recipient.Action,
			Status:         recipient.Status,
			DiagnosticCode: recipient.DiagnosticCode,
		}
		record.FeedbackId = optionalString(feedback.FeedbackId)
		record.FeedbackTimestamp = a.optionalTime(feedback.Timestamp)

		if err = a.Db.PutBounce(ctx, record); err != nil {
			return ops.Invalid, err
		}
		a.recordIngested(ctx, env, msg, &record.Feedback, isHard)
	}
	return ops.BounceProcessed, nil
}

func (a *ProdAgent) ingestComplaint(
	ctx context.Context, env *events.Envelope, msg *events.FeedbackMessage,
) (result ops.IngestResult, err error) {
	feedback := msg.Complaint
	if feedback == nil {
		return ops.MissingVitalFields, nil
	}

	for _, recipient := range feedback.ComplainedRecipients {
		record := &db.Complaint{
			Feedback: a.newFeedback(
				db.KindComplaint, env, msg, recipient.EmailAddress,
			),
			UserAgent:    feedback.UserAgent,
			FeedbackType: feedback.ComplaintFeedbackType,
		}
		record.FeedbackId = optionalString(feedback.FeedbackId)
		record.FeedbackTimestamp = a.optionalTime(feedback.Timestamp)
		if feedback.ArrivalDate != nil {
			record.ArrivalDate = a.optionalTime(*feedback.ArrivalDate)
		}

		if err = a.Db.PutComplaint(ctx, record); err != nil {
			return ops.Invalid, err
		}
		a.recordIngested(ctx, env, msg, &record.Feedback, false)
	}
	return ops.ComplaintProcessed, nil
}

func (a *ProdAgent) ingestDelivery(
	ctx context.Context, env *events.Envelope, msg *events.FeedbackMessage,
) (result ops.IngestResult, err error) {
	feedback := msg.Delivery
	if feedback == nil {
		return ops.MissingVitalFields, nil
	}

	for _, address := range feedback.Recipients {
		record := &db.Delivery{
			Feedback:         a.newFeedback(db.KindDelivery, env, msg, address),
			ProcessingTimeMs: feedback.ProcessingTimeMillis,
			SmtpResponse:     feedback.SmtpResponse,
		}
		if feedback.Timestamp != nil {
			record.DeliveredAt = a.optionalTime(*feedback.Timestamp)
		}

		if err = a.Db.PutDelivery(ctx, record); err != nil {
			return ops.Invalid, err
		}
		a.recordIngested(ctx, env, msg, &record.Feedback, false)
	}
	return ops.DeliveryProcessed, nil
}

func (a *ProdAgent) newFeedback(
	kind db.FeedbackKind,
	env *events.Envelope,
	msg *events.FeedbackMessage,
	address string,
) db.Feedback {
	return db.Feedback{
		Id:            a.NewId(),
		Kind:          kind,
		SnsTopic:      env.TopicArn,
		SnsMessageId:  env.MessageId,
		Address:       address,
		MailId:        msg.Mail.MessageID,
		MailFrom:      msg.Mail.Source,
		MailTimestamp: msg.Mail.Timestamp.UTC(),
	}
}

func (a *ProdAgent) recordIngested(
	ctx context.Context,
	env *events.Envelope,
	msg *events.FeedbackMessage,
	record *db.Feedback,
	isHard bool,
) {
	a.Dispatcher.FeedbackIngested(ctx, FeedbackIngested{
		Record:   record,
		Message:  msg,
		Envelope: env,
		IsHard:   isHard,
	})
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// optionalTime parses an Amazon timestamp into an optional field value. A
// timestamp Amazon sends that doesn't parse is worth logging, but never worth
// refusing the whole notification over.
func (a *ProdAgent) optionalTime(value string) *time.Time {
	if value == "" {
		return nil
	}

	parsed, err := events.ParseAmazonTime(value)
	if err != nil {
		a.Log.Printf("failed to parse feedback timestamp: %s", err)
		return nil
	}
	return &parsed
}
