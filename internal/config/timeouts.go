package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables tuning the OCM and cluster clients.
const (
	EnvAddonPollInterval    = "OAO_ADDON_POLL_INTERVAL"
	EnvOperatorPollInterval = "OAO_OPERATOR_POLL_INTERVAL"
	EnvHTTPTimeout          = "OAO_HTTP_TIMEOUT"
	EnvRetryMaxAttempts     = "OAO_RETRY_MAX_ATTEMPTS"
	EnvRetryInitialDelay    = "OAO_RETRY_INITIAL_DELAY"
)

// Timeouts holds the polling and retry tuning of the OCM and cluster
// clients. Product timeouts are per request and not part of it.
type Timeouts struct {
	AddonPoll         time.Duration // between add-on state polls
	OperatorPoll      time.Duration // between CSV phase polls
	HTTPRequest       time.Duration // single OCM or index request
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
}

// DefaultTimeouts returns the tuning used when nothing is configured.
func DefaultTimeouts() *Timeouts {
	return &Timeouts{
		AddonPoll:         10 * time.Second,
		OperatorPoll:      5 * time.Second,
		HTTPRequest:       30 * time.Second,
		RetryMaxAttempts:  3,
		RetryInitialDelay: 2 * time.Second,
	}
}

// LoadTimeouts returns the defaults overridden by the OAO_* environment
// variables. Unset, malformed or negative values keep the default.
func LoadTimeouts() *Timeouts {
	return TimeoutsFromEnv(os.Getenv)
}

// TimeoutsFromEnv is LoadTimeouts reading through getenv.
func TimeoutsFromEnv(getenv func(string) string) *Timeouts {
	t := DefaultTimeouts()

	durations := map[string]*time.Duration{
		EnvAddonPollInterval:    &t.AddonPoll,
		EnvOperatorPollInterval: &t.OperatorPoll,
		EnvHTTPTimeout:          &t.HTTPRequest,
		EnvRetryInitialDelay:    &t.RetryInitialDelay,
	}
	for key, dst := range durations {
		if d, err := time.ParseDuration(getenv(key)); err == nil && d > 0 {
			*dst = d
		}
	}

	if n, err := strconv.Atoi(getenv(EnvRetryMaxAttempts)); err == nil && n >= 0 {
		t.RetryMaxAttempts = n
	}
	return t
}
