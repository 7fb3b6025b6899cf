// The webhook endpoint SNS delivers SES feedback notifications to.
//
// Requests walk a fixed validation sequence: body parse, topic header check,
// vital envelope fields, envelope type, certificate host, signature. Each
// check maps to a specific rejection response, and only authenticated
// envelopes reach subscription handling or feedback ingestion.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"slices"

	"github.com/sesbouncy/sesbouncy/agent"
	"github.com/sesbouncy/sesbouncy/events"
	"github.com/sesbouncy/sesbouncy/ops"
	"github.com/sesbouncy/sesbouncy/sign"
)

// TopicArnHeader carries the ARN of the topic a SNS request was published
// to.
const TopicArnHeader = "X-Amz-Sns-Topic-Arn"

// SNS messages top out at 256KB; anything much larger than that plus
// envelope overhead isn't SNS.
const maxRequestBodySize = 1 << 20

const unsubscribeAcknowledgment = "UnsubscribeConfirmation Not Handled"

type Handler struct {
	// TopicArns is the exact-match allow-list for TopicArnHeader. Empty
	// skips the check.
	TopicArns []string

	CertGuard        *sign.DomainGuard
	Verifier         sign.Verifier
	VerifySignatures bool

	// AutoConfirm enables the subscription handshake. When false, the
	// endpoint answers SubscriptionConfirmation envelopes with 404 so
	// probing can't tell it apart from an unused path.
	AutoConfirm bool
	Confirmer   SubscriptionConfirmer

	Agent      agent.FeedbackAgent
	Dispatcher *agent.Dispatcher
	Log        *log.Logger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		h.reject(w, r, http.StatusBadRequest, "Not Valid JSON")
		return
	}

	env, parseErr := events.ParseEnvelope(body)
	if errors.Is(parseErr, events.ErrNotJSON) {
		h.reject(w, r, http.StatusBadRequest, "Not Valid JSON")
		return
	}

	// The topic header check runs before the vital fields check: an envelope
	// for a topic this endpoint doesn't serve is rejected for that reason,
	// whatever else is wrong with it.
	if len(h.TopicArns) != 0 {
		topicArn := r.Header.Get(TopicArnHeader)

		if topicArn == "" {
			h.reject(w, r, http.StatusBadRequest, "No TopicArn Header")
			return
		} else if !slices.Contains(h.TopicArns, topicArn) {
			h.reject(w, r, http.StatusBadRequest, "Bad Topic")
			return
		}
	}

	if parseErr != nil {
		h.reject(w, r, http.StatusBadRequest, "Request Missing Necessary Keys")
		return
	} else if env.EnvelopeType() == events.UnknownEnvelopeType {
		h.reject(w, r, http.StatusBadRequest, "Unknown Notification Type")
		return
	}

	if !h.CertGuard.Allows(env.SigningCertURL) {
		h.reject(w, r, http.StatusBadRequest, "Improper Certificate Location")
		return
	}

	ctx := r.Context()
	if h.VerifySignatures && !h.Verifier.Verify(ctx, env) {
		h.reject(w, r, http.StatusBadRequest, "Improper Signature")
		return
	}

	h.Dispatcher.NotificationVerified(ctx, agent.NotificationVerified{
		Envelope: env,
	})

	switch env.EnvelopeType() {
	case events.SubscriptionConfirmation:
		h.confirmSubscription(ctx, w, r, env)
	case events.UnsubscribeConfirmation:
		h.Dispatcher.SubscriptionProcessed(ctx, agent.SubscriptionProcessed{
			Envelope: env,
		})
		h.acknowledge(w, unsubscribeAcknowledgment)
	default:
		h.ingestNotification(ctx, w, env)
	}
}

func (h *Handler) confirmSubscription(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	env *events.Envelope,
) {
	if !h.AutoConfirm {
		http.NotFound(w, r)
		return
	}

	body, err := h.Confirmer.Confirm(ctx, env)

	if errors.Is(err, ErrImproperSubscriptionDomain) {
		h.reject(w, r, http.StatusBadRequest, "Improper Subscription Domain")
		return
	} else if err != nil {
		h.serverError(w, env, err)
		return
	}

	h.Dispatcher.SubscriptionProcessed(ctx, agent.SubscriptionProcessed{
		Envelope:  env,
		Response:  body,
		Confirmed: true,
	})
	w.Write(body)
}

func (h *Handler) ingestNotification(
	ctx context.Context, w http.ResponseWriter, env *events.Envelope,
) {
	msg, err := events.ParseFeedbackMessage([]byte(env.Message))

	if errors.Is(err, events.ErrNotJSON) {
		h.Log.Printf("unparseable message in %s: %s", env.MessageId, err)
		h.acknowledge(w, "Message is not valid JSON")
		return
	} else if err != nil {
		h.Log.Printf("message in %s is %s", env.MessageId, err)
		h.acknowledge(w, ops.MissingVitalFields.Acknowledgment())
		return
	}

	result, err := h.Agent.Ingest(ctx, env, msg)
	if err != nil {
		h.serverError(w, env, err)
		return
	}
	h.acknowledge(w, result.Acknowledgment())
}

func (h *Handler) reject(
	w http.ResponseWriter, r *http.Request, status int, reason string,
) {
	h.Log.Printf(
		"rejecting request from %s: %d %s", r.RemoteAddr, status, reason,
	)
	w.WriteHeader(status)
	fmt.Fprint(w, reason)
}

// Anything past authentication answers 200 so SNS won't redeliver.
func (h *Handler) acknowledge(w http.ResponseWriter, ack string) {
	fmt.Fprint(w, ack)
}

// serverError is for upstream and storage failures: the request itself was
// acceptable, so a 5xx invites SNS to redeliver once the failure clears.
func (h *Handler) serverError(
	w http.ResponseWriter, env *events.Envelope, err error,
) {
	status := http.StatusInternalServerError
	if errors.Is(err, ops.ErrExternal) {
		status = http.StatusBadGateway
	}

	h.Log.Printf("failed to process %s: %s", env.MessageId, err)
	w.WriteHeader(status)
	fmt.Fprint(w, http.StatusText(status))
}
