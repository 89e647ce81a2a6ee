/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/common"
	po "github.com/hyperledger/fabric-protos-go/orderer"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
)

var logger = logging.NewLogger("fabdev/fab")

var broadcastResponseSuccess = &po.BroadcastResponse{Status: common.Status_SUCCESS}
var broadcastResponseError = &po.BroadcastResponse{Status: common.Status_INTERNAL_SERVER_ERROR}

// MockBroadcastServer mock broadcast server
type MockBroadcastServer struct {
	po.UnimplementedAtomicBroadcastServer

	BroadcastError               error
	Creds                        credentials.TransportCredentials
	blkNum                       uint64
	BroadcastCustomResponse      *po.BroadcastResponse
	srv                          *grpc.Server
	wg                           sync.WaitGroup
	BroadcastInternalServerError bool
	// FilteredDeliveries receives a filtered block for each accepted transaction
	FilteredDeliveries chan *pb.FilteredBlock
	// ValidationCode is reported for accepted transactions, VALID by default
	ValidationCode pb.TxValidationCode
	// mutex to ensure parallel channel deliveries are sent in sequence
	filteredDelMtx sync.Mutex
}

// Broadcast mock broadcast
func (m *MockBroadcastServer) Broadcast(server po.AtomicBroadcast_BroadcastServer) error {
	for {
		res, err := server.Recv()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return err
		}

		if m.BroadcastError != nil {
			return m.BroadcastError
		}

		if m.BroadcastInternalServerError {
			if err := server.Send(broadcastResponseError); err != nil {
				return err
			}
			continue
		}

		if m.BroadcastCustomResponse != nil {
			if err := server.Send(m.BroadcastCustomResponse); err != nil {
				return err
			}
			continue
		}

		if err := server.Send(broadcastResponseSuccess); err != nil {
			return err
		}

		if err := m.mockBlockDelivery(res.Payload); err != nil {
			return err
		}
	}
}

func (m *MockBroadcastServer) mockBlockDelivery(payload []byte) error {
	if m.FilteredDeliveries == nil {
		return nil
	}

	pl := &common.Payload{}
	err := proto.Unmarshal(payload, pl)
	if err != nil {
		return err
	}
	// if payload is empty, then no need to broadcast to block DeliveryServer
	if pl.Header == nil {
		return nil
	}
	chdr := &common.ChannelHeader{}
	err = proto.Unmarshal(pl.Header.ChannelHeader, chdr)
	if err != nil {
		return err
	}

	go func() {
		m.filteredDelMtx.Lock()
		defer m.filteredDelMtx.Unlock()
		// increase m.blkNum to mock adding of filtered blocks to the ledger
		m.blkNum++
		filteredBlock := NewFilteredBlock(chdr.ChannelId, m.blkNum,
			NewFilteredTx(chdr.TxId, m.ValidationCode),
		)

		m.FilteredDeliveries <- filteredBlock
	}()

	return nil
}

// Start the mock broadcast server
func (m *MockBroadcastServer) Start(address string) string {
	if m.srv != nil {
		panic("MockBroadcastServer already started")
	}

	// pass in TLS creds if present
	if m.Creds != nil {
		m.srv = grpc.NewServer(grpc.Creds(m.Creds))
	} else {
		m.srv = grpc.NewServer()
	}

	lis, err := net.Listen("tcp", address)
	if err != nil {
		panic(fmt.Sprintf("Error starting BroadcastServer %s", err))
	}
	addr := lis.Addr().String()

	logger.Debugf("Starting MockBroadcastServer [%s]", addr)
	po.RegisterAtomicBroadcastServer(m.srv, m)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.srv.Serve(lis); err != nil {
			logger.Debugf("StartMockBroadcastServer failed [%s]", err)
		}
	}()

	return addr
}

// Stop the mock broadcast server and wait for completion.
func (m *MockBroadcastServer) Stop() {
	if m.srv == nil {
		panic("MockBroadcastServer not started")
	}

	m.srv.Stop()
	m.wg.Wait()
	m.srv = nil
}
