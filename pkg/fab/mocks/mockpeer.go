/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	reqContext "context"
	"sync"

	pb "github.com/hyperledger/fabric-protos-go/peer"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
)

// MockPeer is a mock endorsing peer.
type MockPeer struct {
	RWLock                  *sync.RWMutex
	Error                   error
	MockName                string
	MockURL                 string
	Payload                 []byte
	ResponseMessage         string
	ProposalResponsePayload []byte
	Status                  int32
	ProcessProposalCalls    int
	Endorser                []byte
	Signature               []byte
	LastRequest             *fab.ProcessProposalRequest
}

// NewMockPeer creates basic mock peer
func NewMockPeer(name string, url string) *MockPeer {
	mp := &MockPeer{MockName: name, MockURL: url, Status: 200, RWLock: &sync.RWMutex{}}
	return mp
}

// Name returns the mock peer's mock name
func (p *MockPeer) Name() string {
	return p.MockName
}

// URL returns the mock peer's mock URL
func (p *MockPeer) URL() string {
	return p.MockURL
}

// ProcessTransactionProposal does not send anything anywhere but returns a mock ProposalResponse
func (p *MockPeer) ProcessTransactionProposal(ctx reqContext.Context, tp fab.ProcessProposalRequest) (*fab.TransactionProposalResponse, error) {
	if p.RWLock != nil {
		p.RWLock.Lock()
		defer p.RWLock.Unlock()
	}
	p.ProcessProposalCalls++
	p.LastRequest = &tp

	if p.Error != nil {
		return nil, p.Error
	}

	return &fab.TransactionProposalResponse{
		Endorser: p.MockURL,
		Status:   p.Status,
		ProposalResponse: &pb.ProposalResponse{
			Response: &pb.Response{
				Message: p.ResponseMessage,
				Status:  p.Status,
				Payload: p.Payload,
			},
			Endorsement: &pb.Endorsement{
				Endorser:  p.Endorser,
				Signature: p.Signature,
			},
			Payload: p.ProposalResponsePayload,
		},
	}, nil
}

// Calls returns the number of proposals processed so far
func (p *MockPeer) Calls() int {
	if p.RWLock != nil {
		p.RWLock.RLock()
		defer p.RWLock.RUnlock()
	}
	return p.ProcessProposalCalls
}
