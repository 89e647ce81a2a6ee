/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"fmt"
	"net"
	"sync"

	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/grpc"
)

// MockDeliverServer is a peer deliver service streaming filtered blocks
type MockDeliverServer struct {
	pb.UnimplementedDeliverServer

	// FilteredDeliveries are relayed to every DeliverFiltered stream
	FilteredDeliveries chan *pb.FilteredBlock
	// DeliverStatus, when set, ends each stream with the given status
	DeliverStatus common.Status
	DeliverError  error

	srv *grpc.Server
	wg  sync.WaitGroup

	mutex    sync.Mutex
	requests []*common.Envelope
}

// NewMockDeliverServer returns a deliver server fed by the given channel
func NewMockDeliverServer(deliveries chan *pb.FilteredBlock) *MockDeliverServer {
	return &MockDeliverServer{FilteredDeliveries: deliveries}
}

// DeliverFiltered waits for the seek request and relays filtered blocks until the client goes away
func (m *MockDeliverServer) DeliverFiltered(server pb.Deliver_DeliverFilteredServer) error {
	envelope, err := server.Recv()
	if err != nil {
		return err
	}

	m.mutex.Lock()
	m.requests = append(m.requests, envelope)
	m.mutex.Unlock()

	if m.DeliverError != nil {
		return m.DeliverError
	}

	if m.DeliverStatus != common.Status_UNKNOWN {
		return server.Send(&pb.DeliverResponse{Type: &pb.DeliverResponse_Status{Status: m.DeliverStatus}})
	}

	for {
		select {
		case block, ok := <-m.FilteredDeliveries:
			if !ok {
				return nil
			}
			if err := server.Send(&pb.DeliverResponse{Type: &pb.DeliverResponse_FilteredBlock{FilteredBlock: block}}); err != nil {
				return err
			}
		case <-server.Context().Done():
			return nil
		}
	}
}

// Requests returns the seek envelopes received so far
func (m *MockDeliverServer) Requests() []*common.Envelope {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]*common.Envelope(nil), m.requests...)
}

// Start the mock deliver server
func (m *MockDeliverServer) Start(address string) string {
	if m.srv != nil {
		panic("MockDeliverServer already started")
	}

	m.srv = grpc.NewServer()

	lis, err := net.Listen("tcp", address)
	if err != nil {
		panic(fmt.Sprintf("Error starting DeliverServer %s", err))
	}
	addr := lis.Addr().String()

	logger.Debugf("Starting MockDeliverServer [%s]", addr)
	pb.RegisterDeliverServer(m.srv, m)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.srv.Serve(lis); err != nil {
			logger.Debugf("StartMockDeliverServer failed [%s]", err)
		}
	}()

	return addr
}

// Stop the mock deliver server and wait for completion.
func (m *MockDeliverServer) Stop() {
	if m.srv == nil {
		panic("MockDeliverServer not started")
	}

	m.srv.Stop()
	m.wg.Wait()
	m.srv = nil
}
