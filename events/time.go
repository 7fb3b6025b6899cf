package events

import (
	"fmt"
	"time"
)

// Serialization layouts for normalized timestamps. Deployments that don't
// track timezone awareness downstream ("naive" mode) store UTC wall-clock
// values with the offset stripped; aware deployments keep the explicit UTC
// offset.
const (
	AwareTimeLayout = time.RFC3339
	NaiveTimeLayout = "2006-01-02T15:04:05"
)

// TimeLayout returns the storage layout for the configured time-handling
// mode.
func TimeLayout(naive bool) string {
	if naive {
		return NaiveTimeLayout
	}
	return AwareTimeLayout
}

// ParseAmazonTime parses one of Amazon's ISO-8601-with-offset timestamp
// strings and normalizes it to UTC.
func ParseAmazonTime(value string) (t time.Time, err error) {
	if t, err = time.Parse(time.RFC3339, value); err != nil {
		err = fmt.Errorf("failed to parse timestamp %q: %s", value, err)
		return
	}
	t = t.UTC()
	return
}
