package sign

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/base64"
	"log"

	"github.com/sesbouncy/sesbouncy/events"
)

// The only signature scheme this application accepts. AWS documents SHA-1
// over the canonical string for SignatureVersion 1; SignatureVersion 2
// (SHA-256) is deliberately unsupported here.
//
// https://docs.aws.amazon.com/sns/latest/dg/sns-verify-signature-of-message.html
const supportedSignatureVersion = "1"

// Verifier authenticates a SNS envelope against its embedded signature.
type Verifier interface {
	// Verify reports whether env's Signature is a valid signature over the
	// canonical string by the certificate at env.SigningCertURL.
	//
	// Verification failure is a normal outcome, not an exceptional one:
	// every failure mode, including a failed certificate fetch, reports
	// false. Causes are logged, never returned.
	Verify(ctx context.Context, env *events.Envelope) bool
}

// CertVerifier is the production Verifier. CertGuard is consulted before any
// network access: a disallowed certificate host fails verification without a
// fetch.
type CertVerifier struct {
	Fetcher   CertFetcher
	CertGuard *DomainGuard
	Log       *log.Logger
}

func (v *CertVerifier) Verify(ctx context.Context, env *events.Envelope) bool {
	if !v.CertGuard.Allows(env.SigningCertURL) {
		v.Log.Printf(
			"rejecting certificate host: %s: %s",
			env.MessageId, env.SigningCertURL,
		)
		return false
	}

	if env.SignatureVersion != supportedSignatureVersion {
		v.Log.Printf(
			"unsupported SignatureVersion for %s: %q",
			env.MessageId, env.SignatureVersion,
		)
		return false
	}

	signature, err := base64.StdEncoding.DecodeString(env.Signature)
	if err != nil {
		v.Log.Printf(
			"failed to decode signature for %s: %s", env.MessageId, err,
		)
		return false
	}

	cert, cached, err := v.Fetcher.Fetch(ctx, env.SigningCertURL)
	if err != nil {
		v.Log.Printf(
			"failed to fetch certificate for %s: %s", env.MessageId, err,
		)
		return false
	}

	signed := CanonicalString(env)
	err = cert.CheckSignature(x509.SHA1WithRSA, signed, signature)

	// A cached certificate may have rotated out from under us. Refresh it
	// once and recheck before calling the signature bad.
	if err != nil && cached {
		v.Fetcher.Forget(env.SigningCertURL)

		if cert, _, err = v.Fetcher.Fetch(ctx, env.SigningCertURL); err != nil {
			v.Log.Printf(
				"failed to refresh certificate for %s: %s", env.MessageId, err,
			)
			return false
		}
		err = cert.CheckSignature(x509.SHA1WithRSA, signed, signature)
	}

	if err != nil {
		v.Log.Printf("invalid signature for %s: %s", env.MessageId, err)
		return false
	}
	return true
}

// CanonicalString reconstructs the exact byte string AWS signed: the
// envelope's fields in AWS-specified order, each as a "{name}\n{value}\n"
// pair, values exactly as received.
//
// Notifications sign Message, MessageId, Subject (only when present),
// Timestamp, TopicArn and Type. Subscribe and unsubscribe confirmations sign
// Message, MessageId, SubscribeURL, Timestamp, Token, TopicArn and Type.
func CanonicalString(env *events.Envelope) []byte {
	var buf bytes.Buffer
	pair := func(name, value string) {
		buf.WriteString(name)
		buf.WriteByte('\n')
		buf.WriteString(value)
		buf.WriteByte('\n')
	}
	confirmation := env.EnvelopeType() != events.Notification

	pair("Message", env.Message)
	pair("MessageId", env.MessageId)
	if confirmation {
		subscribeUrl := ""
		if env.SubscribeURL != nil {
			subscribeUrl = *env.SubscribeURL
		}
		pair("SubscribeURL", subscribeUrl)
	} else if env.Subject != nil {
		pair("Subject", *env.Subject)
	}
	pair("Timestamp", env.Timestamp)
	if confirmation {
		pair("Token", env.Token)
	}
	pair("TopicArn", env.TopicArn)
	pair("Type", env.Type)
	return buf.Bytes()
}
