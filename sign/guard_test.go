//go:build small_tests || all_tests

package sign

import (
	"testing"

	"github.com/sesbouncy/sesbouncy/testutils"
	"gotest.tools/assert"
)

func TestNewDomainGuard(t *testing.T) {
	t.Run("Succeeds", func(t *testing.T) {
		guard, err := NewDomainGuard(DefaultDomainPattern)

		assert.NilError(t, err)
		assert.Assert(t, guard != nil)
	})

	t.Run("ErrorsOnMalformedPattern", func(t *testing.T) {
		guard, err := NewDomainGuard("sns.(")

		assert.Assert(t, guard == nil)
		assert.ErrorContains(t, err, "error parsing regexp")
	})

	t.Run("MustCompilePanicsOnMalformedPattern", func(t *testing.T) {
		defer testutils.ExpectPanic(t, "failed to compile domain pattern")

		MustCompileDomainGuard("sns.(")
	})
}

func TestDomainGuardAllows(t *testing.T) {
	guard := MustCompileDomainGuard(DefaultDomainPattern)

	t.Run("AllowsSnsRegionalEndpoints", func(t *testing.T) {
		assert.Assert(
			t, guard.Allows("https://sns.us-east-1.amazonaws.com/cert.pem"),
		)
		assert.Assert(
			t, guard.Allows("https://sns.eu-west-2.amazonaws.com/cert.pem"),
		)
	})

	t.Run("AllowsHostEdgeCases", func(t *testing.T) {
		explicitPort := "https://sns.us-east-1.amazonaws.com:443/cert.pem"
		assert.Assert(t, guard.Allows(explicitPort))

		trailingDot := "https://sns.us-east-1.amazonaws.com./cert.pem"
		assert.Assert(t, guard.Allows(trailingDot))

		mixedCase := "https://SNS.US-EAST-1.AMAZONAWS.COM/cert.pem"
		assert.Assert(t, guard.Allows(mixedCase))
	})

	t.Run("DeniesForeignHosts", func(t *testing.T) {
		assert.Assert(t, !guard.Allows("https://evil.example.com/cert.pem"))
		assert.Assert(
			t, !guard.Allows("http://bucket.s3.amazonaws.com"),
		)
		assert.Assert(
			t,
			!guard.Allows("https://sns.us-east-1.amazonaws.com.attacker.net/"),
		)
	})

	t.Run("DeniesMalformedAndHostlessUrls", func(t *testing.T) {
		assert.Assert(t, !guard.Allows("://not-a-url"))
		assert.Assert(t, !guard.Allows("/relative/path/cert.pem"))
		assert.Assert(t, !guard.Allows(""))
	})

	t.Run("HonorsCustomPatterns", func(t *testing.T) {
		custom := MustCompileDomainGuard(`^sns\.example\.org$`)

		assert.Assert(t, custom.Allows("https://sns.example.org/confirm"))
		assert.Assert(
			t, !custom.Allows("https://sns.us-east-1.amazonaws.com/confirm"),
		)
	})
}
