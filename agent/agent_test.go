//go:build small_tests || all_tests

package agent

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sesbouncy/sesbouncy/db"
	"github.com/sesbouncy/sesbouncy/events"
	"github.com/sesbouncy/sesbouncy/ops"
	"github.com/sesbouncy/sesbouncy/testutils"
	"gotest.tools/assert"
	is "gotest.tools/assert/cmp"
)

const testTopicArn = "arn:aws:sns:us-east-1:123456789012:ses-feedback"
const testSnsMessageId = "da41e39f-ea4d-435a-b922-c6aae3915ebe"
const testMailId = "00000138111222aa-33322211-cccc-cccc-cccc-ddddaaaa0680-000000"
const testFeedbackId = "0000013786031775-163e3910-53eb-4c8e-a04a-f29debf88a84-000000"

var testMailTimestamp = time.Date(2023, time.January, 18, 4, 5, 6, 0, time.UTC)

type agentFixture struct {
	agent    *ProdAgent
	dbase    *db.TestDatabase
	ingested []FeedbackIngested
	logs     *testutils.Logs
}

func setup() *agentFixture {
	f := &agentFixture{dbase: &db.TestDatabase{}}
	logs, logger := testutils.NewLogs()
	f.logs = logs

	dispatcher := &Dispatcher{Log: logger}
	dispatcher.OnFeedbackIngested(
		func(_ context.Context, event FeedbackIngested) error {
			f.ingested = append(f.ingested, event)
			return nil
		},
	)

	nextId := 0
	f.agent = &ProdAgent{
		Db:         f.dbase,
		Dispatcher: dispatcher,
		NewId: func() uuid.UUID {
			nextId++
			return testUid(nextId)
		},
		Log: logger,
	}
	return f
}

func testUid(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

func testEnvelope() *events.Envelope {
	return &events.Envelope{
		Type:      "Notification",
		MessageId: testSnsMessageId,
		TopicArn:  testTopicArn,
	}
}

func testMail() *events.MailObject {
	mail := &events.MailObject{
		SourceArn:        "arn:aws:ses:us-east-1:123456789012:identity/example.com",
		SendingAccountId: "123456789012",
	}
	mail.MessageID = testMailId
	mail.Source = "updates@notifications.example.com"
	mail.Timestamp = testMailTimestamp
	mail.Destination = []string{"bounce@simulator.amazonses.com"}
	return mail
}

func testBounceMessage() *events.FeedbackMessage {
	reportingMta := "dns; email.example.com"
	action := "failed"
	status := "5.1.1"
	diagnosticCode := "smtp; 550 5.1.1 <bounce@simulator.amazonses.com>"

	return &events.FeedbackMessage{
		NotificationType: "Bounce",
		Mail:             testMail(),
		Bounce: &events.BounceFeedback{
			BounceType:    "Permanent",
			BounceSubType: "General",
			BouncedRecipients: []events.BouncedRecipient{
				{
					EmailAddress:   "bounce@simulator.amazonses.com",
					Action:         &action,
					Status:         &status,
					DiagnosticCode: &diagnosticCode,
				},
				{EmailAddress: "other@simulator.amazonses.com"},
			},
			Timestamp:    "2023-01-18T04:05:07.000Z",
			FeedbackId:   testFeedbackId,
			ReportingMTA: &reportingMta,
		},
	}
}

func testComplaintMessage() *events.FeedbackMessage {
	userAgent := "AnyCompany Feedback Loop (V0.01)"
	feedbackType := "abuse"
	arrivalDate := "2023-01-18T04:06:06.000Z"

	return &events.FeedbackMessage{
		NotificationType: "Complaint",
		Mail:             testMail(),
		Complaint: &events.ComplaintFeedback{
			ComplainedRecipients: []events.ComplainedRecipient{
				{EmailAddress: "complaint@simulator.amazonses.com"},
			},
			Timestamp:             "2023-01-18T04:05:07.000Z",
			FeedbackId:            testFeedbackId,
			UserAgent:             &userAgent,
			ComplaintFeedbackType: &feedbackType,
			ArrivalDate:           &arrivalDate,
		},
	}
}

func testDeliveryMessage() *events.FeedbackMessage {
	timestamp := "2023-01-18T04:05:06.100Z"

	return &events.FeedbackMessage{
		NotificationType: "Delivery",
		Mail:             testMail(),
		Delivery: &events.DeliveryFeedback{
			Timestamp:            &timestamp,
			ProcessingTimeMillis: 546,
			Recipients:           []string{"success@simulator.amazonses.com"},
			SmtpResponse:         "250 ok:  Message 64111812 accepted",
		},
	}
}

func TestIngestRejectsIncompleteMessages(t *testing.T) {
	ctx := context.Background()

	checkMissingVitalFields := func(
		t *testing.T, msg *events.FeedbackMessage,
	) {
		t.Helper()
		f := setup()

		result, err := f.agent.Ingest(ctx, testEnvelope(), msg)

		assert.NilError(t, err)
		assert.Equal(t, ops.MissingVitalFields, result)
		assert.Equal(t, 0, len(f.ingested))
	}

	t.Run("WithoutMailObject", func(t *testing.T) {
		msg := testBounceMessage()
		msg.Mail = nil

		checkMissingVitalFields(t, msg)
	})

	t.Run("WithoutFeedbackObjectForItsType", func(t *testing.T) {
		bounceMsg := testBounceMessage()
		bounceMsg.Bounce = nil
		checkMissingVitalFields(t, bounceMsg)

		complaintMsg := testComplaintMessage()
		complaintMsg.Complaint = nil
		checkMissingVitalFields(t, complaintMsg)

		deliveryMsg := testDeliveryMessage()
		deliveryMsg.Delivery = nil
		checkMissingVitalFields(t, deliveryMsg)
	})

	t.Run("WithUnknownNotificationType", func(t *testing.T) {
		f := setup()
		msg := testBounceMessage()
		msg.NotificationType = "Received"

		result, err := f.agent.Ingest(ctx, testEnvelope(), msg)

		assert.NilError(t, err)
		assert.Equal(t, ops.UnknownNotificationType, result)
		f.logs.AssertContains(t, `unknown notificationType`)
		f.logs.AssertContains(t, `"Received"`)
	})

	// An empty notificationType was present in the message, so it isn't a
	// missing vital field; it's a type this application doesn't record.
	t.Run("WithEmptyNotificationType", func(t *testing.T) {
		f := setup()
		msg := testBounceMessage()
		msg.NotificationType = ""

		result, err := f.agent.Ingest(ctx, testEnvelope(), msg)

		assert.NilError(t, err)
		assert.Equal(t, ops.UnknownNotificationType, result)
		assert.Equal(t, 0, len(f.ingested))
	})
}

func TestIngestBounce(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesOneRecordPerRecipient", func(t *testing.T) {
		f := setup()
		msg := testBounceMessage()

		result, err := f.agent.Ingest(ctx, testEnvelope(), msg)

		assert.NilError(t, err)
		assert.Equal(t, ops.BounceProcessed, result)
		assert.Equal(t, 2, len(f.dbase.Bounces))

		first := f.dbase.Bounces[0]
		assert.Equal(t, testUid(1), first.Id)
		assert.Equal(t, db.KindBounce, first.Kind)
		assert.Equal(t, testTopicArn, first.SnsTopic)
		assert.Equal(t, testSnsMessageId, first.SnsMessageId)
		assert.Equal(t, "bounce@simulator.amazonses.com", first.Address)
		assert.Equal(t, testMailId, first.MailId)
		assert.Equal(t, "updates@notifications.example.com", first.MailFrom)
		assert.Equal(t, testMailTimestamp, first.MailTimestamp)
		assert.Equal(t, testFeedbackId, *first.FeedbackId)
		expectedFeedbackTime := testMailTimestamp.Add(time.Second)
		assert.Equal(t, expectedFeedbackTime, *first.FeedbackTimestamp)
		assert.Assert(t, first.IsHard)
		assert.Equal(t, "Permanent", first.BounceType)
		assert.Equal(t, "General", first.BounceSubType)
		assert.Equal(t, "dns; email.example.com", *first.ReportingMta)
		assert.Equal(t, "failed", *first.Action)
		assert.Equal(t, "5.1.1", *first.Status)

		second := f.dbase.Bounces[1]
		assert.Equal(t, testUid(2), second.Id)
		assert.Equal(t, "other@simulator.amazonses.com", second.Address)
		assert.Assert(t, is.Nil(second.Action))
		assert.Assert(t, is.Nil(second.Status))
		assert.Assert(t, is.Nil(second.DiagnosticCode))
	})

	t.Run("EmitsFeedbackIngestedPerRecord", func(t *testing.T) {
		f := setup()
		env := testEnvelope()
		msg := testBounceMessage()

		_, err := f.agent.Ingest(ctx, env, msg)

		assert.NilError(t, err)
		assert.Equal(t, 2, len(f.ingested))

		first := f.ingested[0]
		assert.Equal(t, &f.dbase.Bounces[0].Feedback, first.Record)
		assert.Equal(t, testUid(1), first.Record.Id)
		assert.Equal(t, "bounce@simulator.amazonses.com", first.Record.Address)
		assert.Equal(t, msg, first.Message)
		assert.Equal(t, env, first.Envelope)
		assert.Assert(t, first.IsHard)

		second := f.ingested[1]
		assert.Equal(t, &f.dbase.Bounces[1].Feedback, second.Record)
		assert.Equal(t, testUid(2), second.Record.Id)
		assert.Equal(t, "other@simulator.amazonses.com", second.Record.Address)
		assert.Assert(t, second.IsHard)
	})

	t.Run("TransientBounceIsNotHard", func(t *testing.T) {
		f := setup()
		msg := testBounceMessage()
		msg.Bounce.BounceType = "Transient"
		msg.Bounce.BounceSubType = "MailboxFull"

		result, err := f.agent.Ingest(ctx, testEnvelope(), msg)

		assert.NilError(t, err)
		assert.Equal(t, ops.BounceProcessed, result)
		assert.Assert(t, !f.dbase.Bounces[0].IsHard)
		assert.Assert(t, !f.ingested[0].IsHard)
	})

	t.Run("LeavesUnparseableFeedbackTimestampNil", func(t *testing.T) {
		f := setup()
		msg := testBounceMessage()
		msg.Bounce.Timestamp = "not a timestamp"

		result, err := f.agent.Ingest(ctx, testEnvelope(), msg)

		assert.NilError(t, err)
		assert.Equal(t, ops.BounceProcessed, result)
		assert.Assert(t, is.Nil(f.dbase.Bounces[0].FeedbackTimestamp))
		f.logs.AssertContains(t, "failed to parse feedback timestamp")
	})

	t.Run("ReturnsErrorIfPutFails", func(t *testing.T) {
		f := setup()
		f.dbase.PutErr = testutils.AwsServerError("dynamodb is down")

		result, err := f.agent.Ingest(ctx, testEnvelope(), testBounceMessage())

		assert.Equal(t, ops.Invalid, result)
		assert.ErrorContains(t, err, "dynamodb is down")
		assert.Equal(t, 0, len(f.ingested))
	})
}

func TestIngestComplaint(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesRecordWithComplaintFields", func(t *testing.T) {
		f := setup()

		result, err := f.agent.Ingest(
			ctx, testEnvelope(), testComplaintMessage(),
		)

		assert.NilError(t, err)
		assert.Equal(t, ops.ComplaintProcessed, result)
		assert.Equal(t, 1, len(f.dbase.Complaints))

		record := f.dbase.Complaints[0]
		assert.Equal(t, db.KindComplaint, record.Kind)
		assert.Equal(t, "complaint@simulator.amazonses.com", record.Address)
		assert.Equal(t, "AnyCompany Feedback Loop (V0.01)", *record.UserAgent)
		assert.Equal(t, "abuse", *record.FeedbackType)
		expectedArrival := testMailTimestamp.Add(time.Minute)
		assert.Equal(t, expectedArrival, *record.ArrivalDate)

		assert.Equal(t, 1, len(f.ingested))
		event := f.ingested[0]
		assert.Equal(t, &f.dbase.Complaints[0].Feedback, event.Record)
		assert.Equal(t, testUid(1), event.Record.Id)
		assert.Assert(t, !event.IsHard)
	})

	t.Run("LeavesAbsentOptionalFieldsNil", func(t *testing.T) {
		f := setup()
		msg := testComplaintMessage()
		msg.Complaint.UserAgent = nil
		msg.Complaint.ComplaintFeedbackType = nil
		msg.Complaint.ArrivalDate = nil
		msg.Complaint.FeedbackId = ""

		_, err := f.agent.Ingest(ctx, testEnvelope(), msg)

		assert.NilError(t, err)
		record := f.dbase.Complaints[0]
		assert.Assert(t, is.Nil(record.UserAgent))
		assert.Assert(t, is.Nil(record.FeedbackType))
		assert.Assert(t, is.Nil(record.ArrivalDate))
		assert.Assert(t, is.Nil(record.FeedbackId))
	})

	t.Run("ReturnsErrorIfPutFails", func(t *testing.T) {
		f := setup()
		f.dbase.PutErr = testutils.AwsServerError("dynamodb is down")

		result, err := f.agent.Ingest(
			ctx, testEnvelope(), testComplaintMessage(),
		)

		assert.Equal(t, ops.Invalid, result)
		assert.ErrorContains(t, err, "dynamodb is down")
	})
}

func TestIngestDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesRecordWithDeliveryFields", func(t *testing.T) {
		f := setup()

		result, err := f.agent.Ingest(
			ctx, testEnvelope(), testDeliveryMessage(),
		)

		assert.NilError(t, err)
		assert.Equal(t, ops.DeliveryProcessed, result)
		assert.Equal(t, 1, len(f.dbase.Deliveries))

		record := f.dbase.Deliveries[0]
		assert.Equal(t, db.KindDelivery, record.Kind)
		assert.Equal(t, "success@simulator.amazonses.com", record.Address)
		assert.Equal(t, int64(546), record.ProcessingTimeMs)
		assert.Equal(
			t, "250 ok:  Message 64111812 accepted", record.SmtpResponse,
		)
		expectedDelivered := testMailTimestamp.Add(100 * time.Millisecond)
		assert.Equal(t, expectedDelivered, *record.DeliveredAt)
	})

	t.Run("LeavesAbsentTimestampNil", func(t *testing.T) {
		f := setup()
		msg := testDeliveryMessage()
		msg.Delivery.Timestamp = nil

		_, err := f.agent.Ingest(ctx, testEnvelope(), msg)

		assert.NilError(t, err)
		assert.Assert(t, is.Nil(f.dbase.Deliveries[0].DeliveredAt))
	})

	t.Run("ReturnsErrorIfPutFails", func(t *testing.T) {
		f := setup()
		f.dbase.PutErr = testutils.AwsServerError("dynamodb is down")

		result, err := f.agent.Ingest(
			ctx, testEnvelope(), testDeliveryMessage(),
		)

		assert.Equal(t, ops.Invalid, result)
		assert.ErrorContains(t, err, "dynamodb is down")
	})
}
