//go:build small_tests || all_tests

package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sesbouncy/sesbouncy/agent"
	"github.com/sesbouncy/sesbouncy/db"
	"github.com/sesbouncy/sesbouncy/testutils"
	"gotest.tools/assert"
)

func TestRegisterListeners(t *testing.T) {
	_, logger := testutils.NewLogs()
	dispatcher := &agent.Dispatcher{Log: logger}
	RegisterListeners(dispatcher)
	ctx := context.Background()

	t.Run("CountsVerifiedNotifications", func(t *testing.T) {
		before := testutil.ToFloat64(NotificationsVerified)

		dispatcher.NotificationVerified(ctx, agent.NotificationVerified{})

		assert.Equal(t, before+1, testutil.ToFloat64(NotificationsVerified))
	})

	t.Run("CountsSubscriptionsByConfirmation", func(t *testing.T) {
		confirmed := SubscriptionsProcessed.WithLabelValues("true")
		declined := SubscriptionsProcessed.WithLabelValues("false")
		confirmedBefore := testutil.ToFloat64(confirmed)
		declinedBefore := testutil.ToFloat64(declined)

		dispatcher.SubscriptionProcessed(
			ctx, agent.SubscriptionProcessed{Confirmed: true},
		)
		dispatcher.SubscriptionProcessed(ctx, agent.SubscriptionProcessed{})

		assert.Equal(t, confirmedBefore+1, testutil.ToFloat64(confirmed))
		assert.Equal(t, declinedBefore+1, testutil.ToFloat64(declined))
	})

	t.Run("CountsIngestedFeedbackByKind", func(t *testing.T) {
		bounces := FeedbackIngested.WithLabelValues(string(db.KindBounce))
		before := testutil.ToFloat64(bounces)

		dispatcher.FeedbackIngested(
			ctx,
			agent.FeedbackIngested{Record: &db.Feedback{Kind: db.KindBounce}},
		)

		assert.Equal(t, before+1, testutil.ToFloat64(bounces))
	})
}
