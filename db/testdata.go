//go:build small_tests || medium_tests || contract_tests || all_tests

package db

import (
	"time"

	"github.com/google/uuid"
)

var TestTimestamp time.Time = time.Date(
	2023, time.January, 18, 4, 5, 6, 0, time.UTC,
)

var TestFeedbackId string = "0000013786031775-163e3910-53eb-4c8e-a04a-f29debf88a84-000000"

func TestBounce() *Bounce {
	reportingMta := "dns; email.example.com"
	action := "failed"
	status := "5.1.1"
	diagnosticCode := "smtp; 550 5.1.1 <bounce@simulator.amazonses.com>"
	feedbackTimestamp := TestTimestamp.Add(time.Second)

	return &Bounce{
		Feedback: Feedback{
			Id:                uuid.MustParse("00000000-1111-2222-3333-444444444444"),
			Kind:              KindBounce,
			SnsTopic:          "arn:aws:sns:us-east-1:123456789012:ses-feedback",
			SnsMessageId:      "da41e39f-ea4d-435a-b922-c6aae3915ebe",
			Address:           "bounce@simulator.amazonses.com",
			MailId:            "00000138111222aa-33322211-cccc-cccc-cccc-ddddaaaa0680-000000",
			MailFrom:          "updates@notifications.example.com",
			MailTimestamp:     TestTimestamp,
			FeedbackId:        &TestFeedbackId,
			FeedbackTimestamp: &feedbackTimestamp,
		},
		IsHard:         true,
		BounceType:     "Permanent",
		BounceSubType:  "General",
		ReportingMta:   &reportingMta,
		Action:         &action,
		Status:         &status,
		DiagnosticCode: &diagnosticCode,
	}
}

func TestComplaint() *Complaint {
	userAgent := "AnyCompany Feedback Loop (V0.01)"
	feedbackType := "abuse"
	arrivalDate := TestTimestamp.Add(time.Minute)
	feedbackTimestamp := TestTimestamp.Add(time.Second)

	return &Complaint{
		Feedback: Feedback{
			Id:                uuid.MustParse("11111111-2222-3333-4444-555555555555"),
			Kind:              KindComplaint,
			SnsTopic:          "arn:aws:sns:us-east-1:123456789012:ses-feedback",
			SnsMessageId:      "55b73a69-e7e1-41c7-9003-fc34c69fc7e7",
			Address:           "complaint@simulator.amazonses.com",
			MailId:            "0000013786031775-ccccdddd-9eeb-4521-9bf3-aaaabbbb5b22-000000",
			MailFrom:          "updates@notifications.example.com",
			MailTimestamp:     TestTimestamp,
			FeedbackId:        &TestFeedbackId,
			FeedbackTimestamp: &feedbackTimestamp,
		},
		UserAgent:    &userAgent,
		FeedbackType: &feedbackType,
		ArrivalDate:  &arrivalDate,
	}
}

func TestDelivery() *Delivery {
	deliveredAt := TestTimestamp.Add(100 * time.Millisecond)

	return &Delivery{
		Feedback: Feedback{
			Id:            uuid.MustParse("22222222-3333-4444-5555-666666666666"),
			Kind:          KindDelivery,
			SnsTopic:      "arn:aws:sns:us-east-1:123456789012:ses-feedback",
			SnsMessageId:  "a14d4eb1-0b77-41d4-93e5-c41dcbd3c464",
			Address:       "success@simulator.amazonses.com",
			MailId:        "0000014644fe5ef6-9a483358-9170-4cb4-a269-f5dcdf415321-000000",
			MailFrom:      "updates@notifications.example.com",
			MailTimestamp: TestTimestamp,
		},
		DeliveredAt:      &deliveredAt,
		ProcessingTimeMs: 546,
		SmtpResponse:     "250 ok:  Message 64111812 accepted",
	}
}
