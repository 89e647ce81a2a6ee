/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package retry

import (
	reqContext "context"
	"time"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
)

var logger = logging.NewLogger("fabdev/retry")

// Invocation is one attempt of a query
type Invocation func(ctx reqContext.Context) (interface{}, error)

// Invoker runs an Invocation until it succeeds, fails permanently, runs out of
// retries or its context is done
type Invoker struct {
	handler     Handler
	beforeRetry func(error)
}

// InvokerOpt is an Invoker option
type InvokerOpt func(*Invoker)

// WithBeforeRetry registers a callback run with the failure of every attempt
// that is retried
func WithBeforeRetry(fn func(error)) InvokerOpt {
	return func(invoker *Invoker) {
		invoker.beforeRetry = fn
	}
}

// NewInvoker returns an Invoker using the given Handler
func NewInvoker(handler Handler, opts ...InvokerOpt) *Invoker {
	invoker := &Invoker{handler: handler}
	for _, opt := range opts {
		opt(invoker)
	}
	return invoker
}

// Invoke runs the invocation. When the context is done during a backoff, the
// error of the last attempt is returned.
func (ri *Invoker) Invoke(ctx reqContext.Context, invocation Invocation) (interface{}, error) {
	for attempt := 1; ; attempt++ {
		retval, err := invocation(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Debugf("Attempt #%d succeeded", attempt)
			}
			return retval, nil
		}

		wait, ok := ri.handler.Backoff(err)
		if !ok {
			logger.Debugf("Attempt #%d failed, not retrying: %s", attempt, err)
			return nil, err
		}
		if ri.beforeRetry != nil {
			ri.beforeRetry(err)
		}
		logger.Debugf("Attempt #%d failed, retrying in %s: %s", attempt, wait, err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Debugf("Retry abandoned: %s", ctx.Err())
			return nil, err
		case <-timer.C:
		}
	}
}
