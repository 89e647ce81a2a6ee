/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	reqContext "context"
	"sync"

	"github.com/hyperledger/fabric-protos-go/common"
	ab "github.com/hyperledger/fabric-protos-go/orderer"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
)

// MockOrderer is a mock fab.Orderer that records the envelopes it receives.
type MockOrderer struct {
	OrdererURL string
	Response   *ab.BroadcastResponse
	Error      error

	mutex     sync.Mutex
	envelopes []*fab.SignedEnvelope
}

// NewMockOrderer returns an orderer that accepts every broadcast
func NewMockOrderer(url string) *MockOrderer {
	return &MockOrderer{
		OrdererURL: url,
		Response:   &ab.BroadcastResponse{Status: common.Status_SUCCESS},
	}
}

// URL returns the URL of the mock Orderer
func (o *MockOrderer) URL() string {
	return o.OrdererURL
}

// SendBroadcast records the envelope and returns the configured response or error
func (o *MockOrderer) SendBroadcast(ctx reqContext.Context, envelope *fab.SignedEnvelope) (*ab.BroadcastResponse, error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.envelopes = append(o.envelopes, envelope)
	if o.Error != nil {
		return nil, o.Error
	}
	return o.Response, nil
}

// Envelopes returns the envelopes broadcast so far
func (o *MockOrderer) Envelopes() []*fab.SignedEnvelope {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	return append([]*fab.SignedEnvelope(nil), o.envelopes...)
}
