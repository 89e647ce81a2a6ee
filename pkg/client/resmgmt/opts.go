/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resmgmt

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/hyperledger/fabric-devtools-go/pkg/fabsdk/metrics"
)

// ClientOption describes a functional parameter for the New constructor
type ClientOption func(*Client) error

// WithFs sets the filesystem chaincode packages are read from
func WithFs(fs afero.Fs) ClientOption {
	return func(rc *Client) error {
		if fs == nil {
			return errors.New("filesystem is required")
		}
		rc.fs = fs
		return nil
	}
}

// WithMetrics records the instantiate and upgrade transactions of the client
func WithMetrics(m *metrics.ClientMetrics) ClientOption {
	return func(rc *Client) error {
		rc.metrics = m
		return nil
	}
}

//requestOptions contains options for instantiate and upgrade
type requestOptions struct {
	Timeout    time.Duration
	EventPeers []string
}

//RequestOption func for each Opts argument
type RequestOption func(opts *requestOptions) error

//WithTimeout bounds the wait for the commit event of the transaction.
//If not provided, the commit timeout of the channel is used
func WithTimeout(timeout time.Duration) RequestOption {
	return func(o *requestOptions) error {
		if timeout < 0 {
			return errors.New("timeout must not be negative")
		}
		o.Timeout = timeout
		return nil
	}
}

// WithEventPeers selects the peers listened on for the commit event
func WithEventPeers(peers ...string) RequestOption {
	return func(o *requestOptions) error {
		o.EventPeers = peers
		return nil
	}
}

func prepareRequestOpts(options ...RequestOption) (requestOptions, error) {
	opts := requestOptions{}
	for _, option := range options {
		if err := option(&opts); err != nil {
			return opts, errors.WithMessage(err, "Failed to read opts")
		}
	}
	return opts, nil
}
