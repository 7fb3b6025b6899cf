//go:build small_tests || all_tests

package email

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// TestSuppressor is a Suppressor double recording the addresses it's asked
// about.
type TestSuppressor struct {
	CheckedAddresses      []string
	Suppressed            bool
	CheckErr              error
	SuppressedAddresses   []string
	SuppressedReasons     []types.SuppressionListReason
	SuppressErr           error
	UnsuppressedAddresses []string
	UnsuppressErr         error
}

func (s *TestSuppressor) IsSuppressed(
	_ context.Context, address string,
) (bool, error) {
	s.CheckedAddresses = append(s.CheckedAddresses, address)
	return s.Suppressed, s.CheckErr
}

func (s *TestSuppressor) Suppress(
	_ context.Context, address string, reason types.SuppressionListReason,
) error {
	s.SuppressedAddresses = append(s.SuppressedAddresses, address)
	s.SuppressedReasons = append(s.SuppressedReasons, reason)
	return s.SuppressErr
}

func (s *TestSuppressor) Unsuppress(
	_ context.Context, address string,
) error {
	s.UnsuppressedAddresses = append(s.UnsuppressedAddresses, address)
	return s.UnsuppressErr
}
