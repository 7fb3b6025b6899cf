package testutils

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"time"
)

// CertFixture fabricates the server side of SNS message signing: a
// self-signed certificate to serve from a fake SigningCertURL, and the
// matching private key to produce signatures tests can then verify.
type CertFixture struct {
	Key  *rsa.PrivateKey
	Cert *x509.Certificate
}

// NewCertFixture generates a fresh RSA key and self-signed certificate.
//
// The signature algorithm is pinned to SHA1WithRSA because that is the
// scheme SNS SignatureVersion 1 messages use on the wire.
func NewCertFixture() (f *CertFixture, err error) {
	f = &CertFixture{}

	if f.Key, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
		return nil, err
	}

	template := &x509.Certificate{
		SerialNumber:       big.NewInt(1),
		Subject:            pkix.Name{CommonName: "sns.us-east-1.amazonaws.com"},
		NotBefore:          time.Now().Add(-time.Hour),
		NotAfter:           time.Now().Add(time.Hour),
		SignatureAlgorithm: x509.SHA1WithRSA,
	}

	var der []byte
	der, err = x509.CreateCertificate(
		rand.Reader, template, template, &f.Key.PublicKey, f.Key,
	)
	if err != nil {
		return nil, err
	}

	if f.Cert, err = x509.ParseCertificate(der); err != nil {
		f = nil
	}
	return
}

// MustCertFixture panics if certificate generation fails, which only
// happens if the test host's entropy source is broken.
func MustCertFixture() *CertFixture {
	f, err := NewCertFixture()

	if err != nil {
		panic("failed to generate certificate fixture: " + err.Error())
	}
	return f
}

// PemBytes returns the certificate encoded the way AWS serves it from
// SigningCertURL.
func (f *CertFixture) PemBytes() []byte {
	block := &pem.Block{Type: "CERTIFICATE", Bytes: f.Cert.Raw}
	return pem.EncodeToMemory(block)
}

// Sign produces the base64 signature SNS would embed in an envelope whose
// canonical string is signed.
func (f *CertFixture) Sign(signed []byte) (string, error) {
	digest := sha1.Sum(signed)

	signature, err := rsa.SignPKCS1v15(
		rand.Reader, f.Key, crypto.SHA1, digest[:],
	)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(signature), nil
}

// MustSign panics if signing fails.
func (f *CertFixture) MustSign(signed []byte) string {
	signature, err := f.Sign(signed)

	if err != nil {
		panic("failed to sign canonical string: " + err.Error())
	}
	return signature
}
