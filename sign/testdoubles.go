//go:build small_tests || all_tests

package sign

import (
	"context"
	"crypto/x509"

	"github.com/sesbouncy/sesbouncy/events"
)

// TestVerifier is a Verifier double returning a canned verdict.
type TestVerifier struct {
	Envelopes []*events.Envelope
	Result    bool
}

func (v *TestVerifier) Verify(
	_ context.Context, env *events.Envelope,
) bool {
	v.Envelopes = append(v.Envelopes, env)
	return v.Result
}

// TestCertFetcher is a CertFetcher double returning canned certificates.
//
// Fetch pops Certs one at a time, returning the last entry once the rest
// are exhausted, which makes stale-cache-then-refresh sequences easy to
// script.
type TestCertFetcher struct {
	Certs       []*x509.Certificate
	Cached      bool
	FetchErr    error
	FetchCalls  int
	ForgetCalls []string
}

func (f *TestCertFetcher) Fetch(
	ctx context.Context, certUrl string,
) (cert *x509.Certificate, cached bool, err error) {
	f.FetchCalls++

	if f.FetchErr != nil {
		return nil, false, f.FetchErr
	}

	cert = f.Certs[0]
	if len(f.Certs) > 1 {
		f.Certs = f.Certs[1:]
	}
	return cert, f.Cached, nil
}

func (f *TestCertFetcher) Forget(certUrl string) {
	f.ForgetCalls = append(f.ForgetCalls, certUrl)
	f.Cached = false
}
