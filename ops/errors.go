package ops

// SentinelError is type for defining constant error values.
//
// Inspired by: https://dave.cheney.net/2019/06/10/constant-time
type SentinelError string

// Error returns the string value of a SentinelError.
func (e SentinelError) Error() string {
	return string(e)
}

// ErrExternal indicates that a request to an upstream service failed, such
// as a DynamoDB write, a SES suppression call, or the GET of a signing
// certificate or subscription confirmation URL.
//
// handler.Handler answers HTTP 502 for errors wrapping it, inviting SNS to
// redeliver once the upstream recovers.
const ErrExternal = SentinelError("external error")
