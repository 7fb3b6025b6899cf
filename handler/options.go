package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sesbouncy/sesbouncy/sign"
)

// Options is the webhook's configuration surface, resolved once at startup.
//
// TopicArns empty means the topic header check is skipped entirely. The
// domain patterns are validated by compiling them at startup; a malformed
// pattern is a startup failure, never a per-request one.
type Options struct {
	FeedbackTableName        string
	TopicArns                []string
	CertDomainPattern        string
	SubscribeDomainPattern   string
	VerifySignatures         bool
	AutoConfirmSubscriptions bool
	NaiveTimestamps          bool
	SuppressHardBounces      bool
}

func GetOptions(getenv func(string) string) (*Options, error) {
	env := environment{getenv: getenv}
	return env.options()
}

type environment struct {
	getenv      func(string) string
	missingVars []string
	invalidVars []string
}

func (env *environment) options() (*Options, error) {
	opts := Options{
		CertDomainPattern:        sign.DefaultDomainPattern,
		SubscribeDomainPattern:   sign.DefaultDomainPattern,
		VerifySignatures:         true,
		AutoConfirmSubscriptions: true,
	}
	env.assign(&opts.FeedbackTableName, "FEEDBACK_TABLE_NAME")
	env.assignList(&opts.TopicArns, "SNS_TOPIC_ARNS")
	env.assignOptional(&opts.CertDomainPattern, "CERT_DOMAIN_REGEX")
	env.assignOptional(&opts.SubscribeDomainPattern, "SUBSCRIBE_DOMAIN_REGEX")
	env.assignBool(&opts.VerifySignatures, "VERIFY_SIGNATURES")
	env.assignBool(&opts.AutoConfirmSubscriptions, "AUTO_CONFIRM_SUBSCRIPTIONS")
	env.assignBool(&opts.NaiveTimestamps, "NAIVE_TIMESTAMPS")
	env.assignBool(&opts.SuppressHardBounces, "SUPPRESS_HARD_BOUNCES")

	if len(env.missingVars) != 0 {
		return nil, fmt.Errorf(
			"undefined environment variables:\n  %s",
			strings.Join(env.missingVars, "\n  "),
		)
	} else if len(env.invalidVars) != 0 {
		return nil, fmt.Errorf(
			"invalid environment variable values:\n  %s",
			strings.Join(env.invalidVars, "\n  "),
		)
	}
	return &opts, nil
}

func (env *environment) assign(opt *string, varname string) {
	if value := env.getenv(varname); value == "" {
		env.missingVars = append(env.missingVars, varname)
	} else {
		*opt = value
	}
}

func (env *environment) assignOptional(opt *string, varname string) {
	if value := env.getenv(varname); value != "" {
		*opt = value
	}
}

func (env *environment) assignList(opt *[]string, varname string) {
	value := env.getenv(varname)
	if value == "" {
		return
	}

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*opt = append(*opt, item)
		}
	}
}

func (env *environment) assignBool(opt *bool, varname string) {
	value := env.getenv(varname)
	if value == "" {
		return
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		invalid := fmt.Sprintf("%s=%q (want boolean)", varname, value)
		env.invalidVars = append(env.invalidVars, invalid)
	} else {
		*opt = parsed
	}
}
