package sign

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sesbouncy/sesbouncy/ops"
)

// Signing certificates are small; anything bigger than this isn't one.
const maxCertificateSize = 64 * 1024

const defaultCacheSize = 64

// ErrFetch indicates that retrieving a signing certificate over HTTP failed.
// It wraps ops.ErrExternal, since certificate retrieval is an upstream call.
const ErrFetch = ops.SentinelError("failed to fetch signing certificate")

// CertFetcher retrieves the X.509 certificate used to sign a notification.
//
// Fetch reports whether the certificate came from cache so that callers can
// invalidate and retry on verification failure against a stale entry.
type CertFetcher interface {
	Fetch(ctx context.Context, certUrl string) (
		cert *x509.Certificate, cached bool, err error,
	)
	Forget(certUrl string)
}

// CachingFetcher is a read-through CertFetcher caching parsed certificates
// by exact URL string.
//
// SNS rotates signing keys and doesn't promise a stable certificate URL, so
// entries live until evicted by the LRU or explicitly Forgotten; there is no
// timed expiry. Concurrent misses for the same URL may both fetch and both
// store, which is fine: certificate bytes for a given URL are immutable.
type CachingFetcher struct {
	Client *http.Client
	cache  *lru.Cache
}

// NewCachingFetcher returns a CachingFetcher holding up to defaultCacheSize
// certificates, retrieved via client.
func NewCachingFetcher(client *http.Client) *CachingFetcher {
	// lru.New only errors on a nonpositive size.
	cache, err := lru.New(defaultCacheSize)

	if err != nil {
		panic("failed to create certificate cache: " + err.Error())
	}
	return &CachingFetcher{Client: client, cache: cache}
}

func (f *CachingFetcher) Fetch(ctx context.Context, certUrl string) (
	cert *x509.Certificate, cached bool, err error,
) {
	if entry, ok := f.cache.Get(certUrl); ok {
		return entry.(*x509.Certificate), true, nil
	}

	if cert, err = f.download(ctx, certUrl); err == nil {
		f.cache.Add(certUrl, cert)
	}
	return
}

// Forget drops the cache entry for certUrl, forcing the next Fetch to
// download it again.
func (f *CachingFetcher) Forget(certUrl string) {
	f.cache.Remove(certUrl)
}

func (f *CachingFetcher) download(
	ctx context.Context, certUrl string,
) (cert *x509.Certificate, err error) {
	var req *http.Request
	var resp *http.Response

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, certUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFetch, err)
	}

	if resp, err = f.Client.Do(req); err != nil {
		return nil, fmt.Errorf("%w: %w: %s", ErrFetch, ops.ErrExternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		const errFmt = "%w: %w: unexpected response status %s from %q"
		err = fmt.Errorf(errFmt, ErrFetch, ops.ErrExternal, resp.Status, certUrl)
		return
	}

	var body []byte
	body, err = io.ReadAll(io.LimitReader(resp.Body, maxCertificateSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %s", ErrFetch, ops.ErrExternal, err)
	}
	return parseCertificate(body, certUrl)
}

func parseCertificate(
	pemBytes []byte, certUrl string,
) (cert *x509.Certificate, err error) {
	block, _ := pem.Decode(pemBytes)

	if block == nil {
		const errFmt = "%w: no PEM certificate in response from %q"
		return nil, fmt.Errorf(errFmt, ErrFetch, certUrl)
	}

	if cert, err = x509.ParseCertificate(block.Bytes); err != nil {
		err = fmt.Errorf("%w: %s", ErrFetch, err)
	}
	return
}
