package handler

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/sesbouncy/sesbouncy/events"
	"github.com/sesbouncy/sesbouncy/ops"
	"github.com/sesbouncy/sesbouncy/sign"
)

// ErrImproperSubscriptionDomain indicates a SubscribeURL hosted somewhere
// other than an allowed SNS endpoint, which no confirmation request should
// ever be sent to.
const ErrImproperSubscriptionDomain = ops.SentinelError(
	"subscribe URL host not allowed",
)

const maxConfirmationResponseSize = 64 * 1024

// SubscriptionConfirmer completes the SNS subscription handshake for a
// SubscriptionConfirmation envelope and returns the confirmation endpoint's
// raw response body.
type SubscriptionConfirmer interface {
	Confirm(ctx context.Context, env *events.Envelope) ([]byte, error)
}

// HttpConfirmer is the production SubscriptionConfirmer: a guarded GET of
// the envelope's SubscribeURL.
//
// A non-2xx confirmation response is not an error. AWS expects confirmation
// attempts to be acknowledged rather than retried, so the upstream body
// comes back as-is and only transport failures return an error.
type HttpConfirmer struct {
	Client *http.Client
	Guard  *sign.DomainGuard
	Log    *log.Logger
}

func (c *HttpConfirmer) Confirm(
	ctx context.Context, env *events.Envelope,
) (body []byte, err error) {
	subscribeUrl := ""
	if env.SubscribeURL != nil {
		subscribeUrl = *env.SubscribeURL
	}

	if !c.Guard.Allows(subscribeUrl) {
		err = fmt.Errorf(
			"%w: %q", ErrImproperSubscriptionDomain, subscribeUrl,
		)
		return
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, subscribeUrl, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm subscription: %s", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		const errFmt = "failed to confirm subscription: %w: %s"
		return nil, fmt.Errorf(errFmt, ops.ErrExternal, err)
	}
	defer resp.Body.Close()

	reader := io.LimitReader(resp.Body, maxConfirmationResponseSize)
	if body, err = io.ReadAll(reader); err != nil {
		const errFmt = "failed to read subscription confirmation: %w: %s"
		return nil, fmt.Errorf(errFmt, ops.ErrExternal, err)
	}

	if resp.StatusCode >= 300 {
		c.Log.Printf(
			"subscription confirmation for %s returned %s",
			env.TopicArn, resp.Status,
		)
	}
	return
}
