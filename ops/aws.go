package ops

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/smithy-go"
)

// MustLoadDefaultAwsConfig panics if the default AWS configuration (region,
// credentials) can't be resolved. Config errors are startup errors, not
// per-request errors.
func MustLoadDefaultAwsConfig() aws.Config {
	cfg, err := config.LoadDefaultConfig(context.Background())

	if err != nil {
		panic("failed to load AWS config: " + err.Error())
	}
	return cfg
}

// AwsError wraps err with ErrExternal if it's a server-side API error.
//
// Inspired by:
// https://aws.github.io/aws-sdk-go-v2/docs/handling-errors/#api-error-responses
func AwsError(prefix string, err error) error {
	var apiErr smithy.APIError

	if errors.As(err, &apiErr) && apiErr.ErrorFault() == smithy.FaultServer {
		err = fmt.Errorf("%w: %w", ErrExternal, err)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
