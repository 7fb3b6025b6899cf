// These types aren't defined in the AWS SDK. Note that not all notification
// types are defined here; only the ones this application records, namely:
// - bounce
// - complaint
// - delivery
//
// See:
// - https://docs.aws.amazon.com/ses/latest/dg/notification-contents.html

package events

import (
	"encoding/json"
	"fmt"

	lambdaevents "github.com/aws/aws-lambda-go/events"
)

// FeedbackType identifies the inner notificationType of a SES feedback
// message.
type FeedbackType int

const (
	UnknownFeedbackType FeedbackType = iota
	Bounce
	Complaint
	Delivery
)

var feedbackTypeNames = map[string]FeedbackType{
	"Bounce":    Bounce,
	"Complaint": Complaint,
	"Delivery":  Delivery,
}

// ParseFeedbackType maps a notificationType value to a FeedbackType,
// returning UnknownFeedbackType for anything unrecognized.
func ParseFeedbackType(name string) FeedbackType {
	return feedbackTypeNames[name]
}

func (t FeedbackType) String() string {
	switch t {
	case Bounce:
		return "Bounce"
	case Complaint:
		return "Complaint"
	case Delivery:
		return "Delivery"
	}
	return "UnknownFeedbackType"
}

// VitalMessageFields are the top-level keys every SES feedback message
// carries regardless of its notificationType.
var VitalMessageFields = []string{"notificationType", "mail"}

// ParseFeedbackMessage parses the inner Message payload of a Notification
// envelope.
//
// As with ParseEnvelope, presence of the vital keys is checked against the
// raw JSON object rather than the unmarshaled struct, so a present but empty
// notificationType isn't conflated with a missing one.
func ParseFeedbackMessage(body []byte) (msg *FeedbackMessage, err error) {
	var raw map[string]json.RawMessage

	if err = json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotJSON, err)
	}

	for _, field := range VitalMessageFields {
		if _, ok := raw[field]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingFields, field)
		}
	}

	msg = &FeedbackMessage{}
	if err = json.Unmarshal(body, msg); err != nil {
		msg = nil
		err = fmt.Errorf("%w: %s", ErrNotJSON, err)
	}
	return
}

// FeedbackMessage is the inner JSON payload of a SNS Notification envelope
// describing the outcome of a sent email.
type FeedbackMessage struct {
	NotificationType string             `json:"notificationType"`
	Mail             *MailObject        `json:"mail"`
	Bounce           *BounceFeedback    `json:"bounce"`
	Complaint        *ComplaintFeedback `json:"complaint"`
	Delivery         *DeliveryFeedback  `json:"delivery"`
}

// MailObject describes the original email a feedback message refers to.
type MailObject struct {
	lambdaevents.SimpleEmailMessage
	SourceArn        string `json:"sourceArn"`
	SendingAccountId string `json:"sendingAccountId"`
}

type BounceFeedback struct {
	BounceType        string             `json:"bounceType"`
	BounceSubType     string             `json:"bounceSubType"`
	BouncedRecipients []BouncedRecipient `json:"bouncedRecipients"`
	Timestamp         string             `json:"timestamp"`
	FeedbackId        string             `json:"feedbackId"`
	ReportingMTA      *string            `json:"reportingMTA"`
}

// BouncedRecipient carries the per-recipient diagnostic fields, all of which
// Amazon may omit for any given recipient.
type BouncedRecipient struct {
	EmailAddress   string  `json:"emailAddress"`
	Action         *string `json:"action"`
	Status         *string `json:"status"`
	DiagnosticCode *string `json:"diagnosticCode"`
}

type ComplaintFeedback struct {
	ComplainedRecipients  []ComplainedRecipient `json:"complainedRecipients"`
	Timestamp             string                `json:"timestamp"`
	FeedbackId            string                `json:"feedbackId"`
	UserAgent             *string               `json:"userAgent"`
	ComplaintFeedbackType *string               `json:"complaintFeedbackType"`
	ArrivalDate           *string               `json:"arrivalDate"`
}

type ComplainedRecipient struct {
	EmailAddress string `json:"emailAddress"`
}

// DeliveryFeedback lists recipients as bare address strings, unlike bounces
// and complaints, which wrap each recipient in an object.
type DeliveryFeedback struct {
	Timestamp            *string  `json:"timestamp"`
	ProcessingTimeMillis int64    `json:"processingTimeMillis"`
	Recipients           []string `json:"recipients"`
	SmtpResponse         string   `json:"smtpResponse"`
}
