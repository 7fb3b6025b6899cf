// Wire types for the outer SNS envelope delivered to the webhook endpoint.
//
// See:
// - https://docs.aws.amazon.com/sns/latest/dg/sns-message-and-json-formats.html
// - https://docs.aws.amazon.com/sns/latest/dg/sns-verify-signature-of-message.html

package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EnvelopeType identifies the kind of SNS message carried by an Envelope.
type EnvelopeType int

const (
	UnknownEnvelopeType EnvelopeType = iota
	Notification
	SubscriptionConfirmation
	UnsubscribeConfirmation
)

var envelopeTypeNames = map[string]EnvelopeType{
	"Notification":             Notification,
	"SubscriptionConfirmation": SubscriptionConfirmation,
	"UnsubscribeConfirmation":  UnsubscribeConfirmation,
}

// ParseEnvelopeType maps the envelope's Type field to an EnvelopeType,
// returning UnknownEnvelopeType for anything SNS doesn't send.
func ParseEnvelopeType(name string) EnvelopeType {
	return envelopeTypeNames[name]
}

func (t EnvelopeType) String() string {
	switch t {
	case Notification:
		return "Notification"
	case SubscriptionConfirmation:
		return "SubscriptionConfirmation"
	case UnsubscribeConfirmation:
		return "UnsubscribeConfirmation"
	}
	return "UnknownEnvelopeType"
}

// Envelope is the signed JSON object SNS POSTs to subscribed HTTP endpoints.
//
// Subject and SubscribeURL must stay pointers: whether a field was present
// determines which fields enter the canonical signed string, so "absent" and
// "empty" can't be conflated.
type Envelope struct {
	Type             string  `json:"Type"`
	MessageId        string  `json:"MessageId"`
	Token            string  `json:"Token"`
	TopicArn         string  `json:"TopicArn"`
	Subject          *string `json:"Subject"`
	Message          string  `json:"Message"`
	Timestamp        string  `json:"Timestamp"`
	SignatureVersion string  `json:"SignatureVersion"`
	Signature        string  `json:"Signature"`
	SigningCertURL   string  `json:"SigningCertURL"`
	SubscribeURL     *string `json:"SubscribeURL"`
	UnsubscribeURL   string  `json:"UnsubscribeURL"`
}

// VitalEnvelopeFields are the envelope keys every SNS delivery carries. A
// request body missing any of them is rejected before verification.
var VitalEnvelopeFields = []string{
	"Type", "Message", "Timestamp", "Signature",
	"SignatureVersion", "TopicArn", "MessageId", "SigningCertURL",
}

// ErrNotJSON indicates the request body wasn't a JSON object at all.
var ErrNotJSON = errors.New("body is not a JSON object")

// ErrMissingFields indicates a body parsed as JSON but lacks one or more
// vital keys, VitalEnvelopeFields for the envelope or VitalMessageFields for
// the inner message.
var ErrMissingFields = errors.New("missing necessary keys")

// ParseEnvelope parses a raw request body into an Envelope.
//
// Presence of the vital fields is checked against the raw JSON object rather
// than the unmarshaled struct so that an explicitly empty value still counts
// as present, matching how SNS itself populates every field.
func ParseEnvelope(body []byte) (env *Envelope, err error) {
	var raw map[string]json.RawMessage

	if err = json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotJSON, err)
	}

	for _, field := range VitalEnvelopeFields {
		if _, ok := raw[field]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingFields, field)
		}
	}

	env = &Envelope{}
	if err = json.Unmarshal(body, env); err != nil {
		env = nil
		err = fmt.Errorf("%w: %s", ErrNotJSON, err)
	}
	return
}

// EnvelopeType returns the parsed Type field of the envelope.
func (env *Envelope) EnvelopeType() EnvelopeType {
	return ParseEnvelopeType(env.Type)
}
