/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package orderer

import (
	reqContext "context"
	"io"
	"time"

	"github.com/hyperledger/fabric-protos-go/common"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config"
	"github.com/hyperledger/fabric-devtools-go/pkg/fab/comm"
)

var logger = logging.NewLogger("fabdev/fab")

// Orderer allows a client to broadcast a transaction.
type Orderer struct {
	name        string
	config      config.EndpointConfig
	dialTimeout time.Duration
}

// Option describes a functional parameter for the New constructor
type Option func(*Orderer) error

// New Returns a Orderer instance
func New(name string, cfg config.EndpointConfig, opts ...Option) (*Orderer, error) {
	if cfg.URL == "" {
		return nil, errors.Errorf("url is required for orderer [%s]", name)
	}

	orderer := &Orderer{
		name:        name,
		config:      cfg,
		dialTimeout: config.DefaultOrdererTimeout,
	}
	for _, opt := range opts {
		if err := opt(orderer); err != nil {
			return nil, err
		}
	}
	return orderer, nil
}

// WithDialTimeout sets the time allowed to connect to the orderer
func WithDialTimeout(timeout time.Duration) Option {
	return func(o *Orderer) error {
		if timeout <= 0 {
			return errors.New("dial timeout must be positive")
		}
		o.dialTimeout = timeout
		return nil
	}
}

// Name returns the name of the orderer in the connection profile
func (o *Orderer) Name() string {
	return o.name
}

// URL Get the Orderer url. Required property for the instance objects.
func (o *Orderer) URL() string {
	return o.config.URL
}

func (o *Orderer) conn(ctx reqContext.Context) (*grpc.ClientConn, error) {
	return comm.Dial(ctx, status.OrdererClientStatus, o.config, comm.WithConnectTimeout(o.dialTimeout))
}

func releaseConn(conn *grpc.ClientConn) {
	if err := conn.Close(); err != nil {
		logger.Debugf("unable to close connection [%s]", err)
	}
}

// SendBroadcast Send the created transaction to Orderer. The response of the
// ordering service is returned whatever its status.
func (o *Orderer) SendBroadcast(ctx reqContext.Context, envelope *fab.SignedEnvelope) (*ab.BroadcastResponse, error) {
	if envelope == nil {
		return nil, errors.New("envelope is required")
	}

	conn, err := o.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer releaseConn(conn)

	broadcastClient, err := ab.NewAtomicBroadcastClient(conn).Broadcast(ctx)
	if err != nil {
		return nil, errors.Wrap(grpcError(err), "NewAtomicBroadcastClient failed")
	}

	responses := make(chan *ab.BroadcastResponse, 1)
	errs := make(chan error, 1)

	go broadcastStream(broadcastClient, responses, errs)

	err = broadcastClient.Send(&common.Envelope{
		Payload:   envelope.Payload,
		Signature: envelope.Signature,
	})
	if err != nil {
		return nil, errors.Wrap(grpcError(err), "failed to send envelope to orderer")
	}
	if err = broadcastClient.CloseSend(); err != nil {
		logger.Debugf("unable to close broadcast client [%s]", err)
	}

	select {
	case resp, ok := <-responses:
		if !ok {
			return nil, status.New(status.OrdererClientStatus, status.Unknown.ToInt32(), "broadcast stream closed without a response", []interface{}{o.config.URL})
		}
		logger.Debugf("Received broadcast response from [%s]: %s", o.name, resp.Status)
		return resp, nil
	case err := <-errs:
		return nil, err
	case <-ctx.Done():
		return nil, errors.WithStack(status.New(status.OrdererClientStatus, status.Timeout.ToInt32(),
			"timeout waiting for broadcast response", []interface{}{o.config.URL, ctx.Err().Error()}))
	}
}

// broadcastStream reports exactly one of: a response, an error, or the
// closing of responses when the stream ends without a response
func broadcastStream(broadcastClient ab.AtomicBroadcast_BroadcastClient, responses chan *ab.BroadcastResponse, errs chan error) {
	broadcastResponse, err := broadcastClient.Recv()
	if err == io.EOF {
		close(responses)
		return
	}
	if err != nil {
		errs <- errors.Wrap(grpcError(err), "broadcast recv failed")
		return
	}
	responses <- broadcastResponse
}

func grpcError(err error) error {
	if rpcStatus, ok := grpcstatus.FromError(err); ok {
		return status.NewFromGRPCStatus(rpcStatus)
	}
	return err
}
