package sign

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultDomainPattern matches the hosts AWS uses for SNS regional
// endpoints, which serve both signing certificates and subscription
// confirmation URLs.
const DefaultDomainPattern = `sns.[a-z0-9\-]+.amazonaws.com$`

// DomainGuard tests whether a URL's host belongs to an allow-listed domain.
// It's the anti-SSRF control applied to SigningCertURL and SubscribeURL
// before this application issues any outbound request to either.
type DomainGuard struct {
	pattern *regexp.Regexp
}

// NewDomainGuard compiles pattern into a DomainGuard. A malformed pattern is
// a configuration error and should fail the process at startup.
func NewDomainGuard(pattern string) (guard *DomainGuard, err error) {
	var re *regexp.Regexp

	if re, err = regexp.Compile(pattern); err == nil {
		guard = &DomainGuard{pattern: re}
	}
	return
}

// MustCompileDomainGuard is NewDomainGuard for patterns known at compile
// time.
func MustCompileDomainGuard(pattern string) *DomainGuard {
	guard, err := NewDomainGuard(pattern)

	if err != nil {
		panic("failed to compile domain pattern: " + err.Error())
	}
	return guard
}

// Allows reports whether rawUrl's host matches the guard's pattern.
//
// It never errors: a malformed URL, an empty host, or a non-matching host
// all report false. Hosts are compared after lowercasing and trimming any
// trailing dot, and without any port component.
func (g *DomainGuard) Allows(rawUrl string) bool {
	parsed, err := url.Parse(rawUrl)

	if err != nil {
		return false
	}

	host := strings.ToLower(strings.TrimSuffix(parsed.Hostname(), "."))
	if host == "" {
		return false
	}
	return g.pattern.MatchString(host)
}
