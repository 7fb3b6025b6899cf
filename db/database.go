package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FeedbackKind identifies which kind of SES feedback a record captures.
type FeedbackKind string

const (
	KindBounce    FeedbackKind = "bounce"
	KindComplaint FeedbackKind = "complaint"
	KindDelivery  FeedbackKind = "delivery"
)

// Feedback holds the fields common to every stored feedback record.
//
// Each record describes one recipient of one SES notification. SNS delivers
// at least once, so replays of the same notification produce additional
// records with fresh Ids.
//
// Pointer fields are optional in the source notification. A nil pointer
// means the field was absent, which stays distinguishable from an empty
// value.
type Feedback struct {
	Id                uuid.UUID
	Kind              FeedbackKind
	SnsTopic          string
	SnsMessageId      string
	Address           string
	MailId            string
	MailFrom          string
	MailTimestamp     time.Time
	FeedbackId        *string
	FeedbackTimestamp *time.Time
}

type Bounce struct {
	Feedback
	IsHard         bool
	BounceType     string
	BounceSubType  string
	ReportingMta   *string
	Action         *string
	Status         *string
	DiagnosticCode *string
}

type Complaint struct {
	Feedback
	UserAgent    *string
	FeedbackType *string
	ArrivalDate  *time.Time
}

type Delivery struct {
	Feedback
	DeliveredAt      *time.Time
	ProcessingTimeMs int64
	SmtpResponse     string
}

type Database interface {
	PutBounce(ctx context.Context, record *Bounce) error
	PutComplaint(ctx context.Context, record *Complaint) error
	PutDelivery(ctx context.Context, record *Delivery) error
	GetFeedbackForAddress(ctx context.Context, address string) ([]*Feedback, error)
}
