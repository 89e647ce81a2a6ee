/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"context"
	"fmt"
	"net"
	"sync"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// ProposalHandler produces the endorser answer to a signed proposal
type ProposalHandler func(proposal *pb.SignedProposal) (*pb.ProposalResponse, error)

// MockEndorserServer mock endoreser server to process endorsement proposals
type MockEndorserServer struct {
	pb.UnimplementedEndorserServer

	Creds         credentials.TransportCredentials
	ProposalError error
	Handler       ProposalHandler
	// Deliver, when set, is served on the same address as the endorser
	Deliver *MockDeliverServer
	wg            sync.WaitGroup
	srv           *grpc.Server

	mutex     sync.Mutex
	proposals []*pb.SignedProposal
}

// ProcessProposal mock implementation that returns success if error is not set
// error if it is
func (m *MockEndorserServer) ProcessProposal(context context.Context, proposal *pb.SignedProposal) (*pb.ProposalResponse, error) {
	m.mutex.Lock()
	m.proposals = append(m.proposals, proposal)
	m.mutex.Unlock()

	if m.Handler != nil {
		return m.Handler(proposal)
	}

	if m.ProposalError == nil {
		return &pb.ProposalResponse{Response: &pb.Response{
			Status: 200,
		}, Endorsement: &pb.Endorsement{Endorser: []byte("endorser"), Signature: []byte("signature")},
			Payload: NewProposalResponsePayload(200, []byte("proposal response payload"))}, nil
	}
	return &pb.ProposalResponse{Response: &pb.Response{
		Status:  500,
		Message: m.ProposalError.Error(),
	}}, m.ProposalError
}

// Proposals returns the proposals received so far
func (m *MockEndorserServer) Proposals() []*pb.SignedProposal {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]*pb.SignedProposal(nil), m.proposals...)
}

// Start the mock endorser server
func (m *MockEndorserServer) Start(address string) string {
	if m.srv != nil {
		panic("MockEndorserServer already started")
	}

	// pass in TLS creds if present
	if m.Creds != nil {
		m.srv = grpc.NewServer(grpc.Creds(m.Creds))
	} else {
		m.srv = grpc.NewServer()
	}

	lis, err := net.Listen("tcp", address)
	if err != nil {
		panic(fmt.Sprintf("Error starting EndorserServer %s", err))
	}
	addr := lis.Addr().String()

	logger.Debugf("Starting MockEndorserServer [%s]", addr)
	pb.RegisterEndorserServer(m.srv, m)
	if m.Deliver != nil {
		pb.RegisterDeliverServer(m.srv, m.Deliver)
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.srv.Serve(lis); err != nil {
			logger.Debugf("StartMockEndorserServer failed [%s]", err)
		}
	}()

	return addr
}

// Stop the mock endorser server and wait for completion.
func (m *MockEndorserServer) Stop() {
	if m.srv == nil {
		panic("MockEndorserServer not started")
	}

	m.srv.Stop()
	m.wg.Wait()
	m.srv = nil
}
