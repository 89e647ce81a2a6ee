/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package retry provides retransmission of read-only network queries.
// Lifecycle and transaction proposals are never retried.
package retry

import (
	"time"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/multi"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
)

// Opts defines the retry parameters
type Opts struct {
	// Attempts is the number of retries after the first attempt
	Attempts int
	// InitialBackoff is the wait before the first retry
	InitialBackoff time.Duration
	// MaxBackoff caps the wait before any retry
	MaxBackoff time.Duration
	// BackoffFactor multiplies the wait after each retry
	BackoffFactor float64
	// RetryableCodes are the status codes, by group, of transient errors.
	// Empty means DefaultRetryableCodes.
	RetryableCodes map[status.Group][]status.Code
}

// Handler decides whether an error warrants another attempt and how long to
// wait before it
type Handler interface {
	Backoff(err error) (time.Duration, bool)
}

type policy struct {
	opts    Opts
	retries int
}

// New returns a Handler for the given opts. A Handler counts the retries it
// granted, so it serves a single invocation.
func New(opts Opts) Handler {
	if len(opts.RetryableCodes) == 0 {
		opts.RetryableCodes = DefaultRetryableCodes
	}
	return &policy{opts: opts}
}

// WithDefaults returns a Handler with DefaultOpts
func WithDefaults() Handler {
	return New(DefaultOpts)
}

// WithAttempts returns a Handler with DefaultOpts and the given attempts
func WithAttempts(attempts int) Handler {
	opts := DefaultOpts
	opts.Attempts = attempts
	return New(opts)
}

// Backoff grants a retry when one of the errors, including those aggregated
// in a multi.Errors, is transient and the attempts are not exhausted
func (p *policy) Backoff(err error) (time.Duration, bool) {
	if err == nil || p.retries >= p.opts.Attempts {
		return 0, false
	}

	errs, ok := err.(multi.Errors)
	if !ok {
		errs = multi.Errors{err}
	}
	for _, e := range errs {
		if s, ok := status.FromError(e); ok && p.transient(s.Group, s.Code) {
			wait := p.wait()
			p.retries++
			return wait, true
		}
	}
	return 0, false
}

func (p *policy) wait() time.Duration {
	backoff, max := float64(p.opts.InitialBackoff), float64(p.opts.MaxBackoff)
	for j := 0; j < p.retries && backoff < max; j++ {
		backoff *= p.opts.BackoffFactor
	}
	if backoff > max {
		backoff = max
	}
	return time.Duration(backoff)
}

func (p *policy) transient(g status.Group, c int32) bool {
	for _, code := range p.opts.RetryableCodes[g] {
		if status.Code(c) == code {
			return true
		}
	}
	return false
}
