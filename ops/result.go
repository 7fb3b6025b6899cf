package ops

//go:generate go run golang.org/x/tools/cmd/stringer -type=IngestResult

// IngestResult describes the outcome of processing the inner SES feedback
// message of an authenticated SNS notification.
//
// Every value other than Invalid maps to an HTTP 200 acknowledgment, since
// by the time the message content is examined the notification is known to
// originate from Amazon, and anything but a 200 makes SNS redeliver it.
type IngestResult int

const (
	Invalid IngestResult = iota
	MissingVitalFields
	UnknownNotificationType
	BounceProcessed
	ComplaintProcessed
	DeliveryProcessed
)

// Acknowledgment returns the response body acknowledging the result to SNS.
func (r IngestResult) Acknowledgment() string {
	switch r {
	case MissingVitalFields:
		return "Missing Vital Fields"
	case UnknownNotificationType:
		return "Unknown Notification Type"
	case BounceProcessed:
		return "Bounce Processed"
	case ComplaintProcessed:
		return "Complaint Processed"
	case DeliveryProcessed:
		return "Delivery Processed"
	}
	return ""
}
