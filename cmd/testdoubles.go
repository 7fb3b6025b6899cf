//go:build small_tests || all_tests

package cmd

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// TestSesV2Client is a SesV2Api double for command wiring tests.
type TestSesV2Client struct {
	GetInput    *sesv2.GetSuppressedDestinationInput
	GetError    error
	PutInputs   []*sesv2.PutSuppressedDestinationInput
	PutError    error
	DeleteInput *sesv2.DeleteSuppressedDestinationInput
	DeleteError error
}

// NewTestSesV2Client returns a double reporting every address as not
// suppressed until a test arranges otherwise.
func NewTestSesV2Client() *TestSesV2Client {
	return &TestSesV2Client{GetError: &types.NotFoundException{}}
}

func (ses *TestSesV2Client) GetSuppressedDestination(
	_ context.Context,
	input *sesv2.GetSuppressedDestinationInput,
	_ ...func(*sesv2.Options),
) (*sesv2.GetSuppressedDestinationOutput, error) {
	ses.GetInput = input

	if ses.GetError != nil {
		return nil, ses.GetError
	}
	return &sesv2.GetSuppressedDestinationOutput{}, nil
}

func (ses *TestSesV2Client) PutSuppressedDestination(
	_ context.Context,
	input *sesv2.PutSuppressedDestinationInput,
	_ ...func(*sesv2.Options),
) (*sesv2.PutSuppressedDestinationOutput, error) {
	ses.PutInputs = append(ses.PutInputs, input)

	if ses.PutError != nil {
		return nil, ses.PutError
	}
	return &sesv2.PutSuppressedDestinationOutput{}, nil
}

func (ses *TestSesV2Client) DeleteSuppressedDestination(
	_ context.Context,
	input *sesv2.DeleteSuppressedDestinationInput,
	_ ...func(*sesv2.Options),
) (*sesv2.DeleteSuppressedDestinationOutput, error) {
	ses.DeleteInput = input

	if ses.DeleteError != nil {
		return nil, ses.DeleteError
	}
	return &sesv2.DeleteSuppressedDestinationOutput{}, nil
}
