/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import (
	reqContext "context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/grpc"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config"
	"github.com/hyperledger/fabric-devtools-go/pkg/fab/comm"
	pb "github.com/hyperledger/fabric-protos-go/peer"
)

//go:generate mockgen -destination=mocks/mockendorserclient.gen.go -package=mocks github.com/hyperledger/fabric-protos-go/peer EndorserClient

var logger = logging.NewLogger("fabdev/fab")

// Peer represents a node in the target blockchain network to which
// endorsement proposals, lifecycle queries and deliver requests are sent.
//
// The GRPC connection is opened on first use and shared by the endorser and
// the deliver clients until Close is called.
type Peer struct {
	name        string
	mspID       string
	config      config.EndpointConfig
	dialTimeout time.Duration

	mutex    sync.Mutex
	conn     *grpc.ClientConn
	endorser pb.EndorserClient
	// set when endorser was created over conn
	dialled bool
}

// Option describes a functional parameter for the New constructor
type Option func(*Peer) error

// New returns a new Peer instance
func New(name string, cfg config.EndpointConfig, opts ...Option) (*Peer, error) {
	if cfg.URL == "" {
		return nil, errors.Errorf("url is required for peer [%s]", name)
	}

	peer := &Peer{
		name:        name,
		config:      cfg,
		dialTimeout: config.DefaultEndorserTimeout,
	}
	for _, opt := range opts {
		if err := opt(peer); err != nil {
			return nil, err
		}
	}
	return peer, nil
}

// WithMSPID is a functional option for the peer.New constructor that configures the peer's msp ID
func WithMSPID(mspID string) Option {
	return func(p *Peer) error {
		p.mspID = mspID
		return nil
	}
}

// WithDialTimeout sets the time allowed to connect to the peer
func WithDialTimeout(timeout time.Duration) Option {
	return func(p *Peer) error {
		if timeout <= 0 {
			return errors.New("dial timeout must be positive")
		}
		p.dialTimeout = timeout
		return nil
	}
}

// WithEndorserClient replaces the GRPC endorser client of the peer
func WithEndorserClient(client pb.EndorserClient) Option {
	return func(p *Peer) error {
		p.endorser = client
		return nil
	}
}

// Name returns the name of the peer in the connection profile
func (p *Peer) Name() string {
	return p.name
}

// URL gets the peer address.
func (p *Peer) URL() string {
	return p.config.URL
}

// MSPID gets the Peer mspID.
func (p *Peer) MSPID() string {
	return p.mspID
}

// Conn returns the GRPC connection of the peer, dialling it on first use
func (p *Peer) Conn(ctx reqContext.Context) (*grpc.ClientConn, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.conn != nil {
		return p.conn, nil
	}

	logger.Debugf("Connecting to peer [%s] at [%s]", p.name, p.config.URL)
	conn, err := comm.Dial(ctx, status.EndorserClientStatus, p.config, comm.WithConnectTimeout(p.dialTimeout))
	if err != nil {
		return nil, errors.WithMessagef(err, "connecting to peer [%s] failed", p.name)
	}
	p.conn = conn
	return conn, nil
}

// Close releases the connection of the peer
func (p *Peer) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	if p.dialled {
		p.endorser = nil
		p.dialled = false
	}
	return err
}

func (p *Peer) endorserClient(ctx reqContext.Context) (pb.EndorserClient, error) {
	p.mutex.Lock()
	endorser := p.endorser
	p.mutex.Unlock()

	if endorser != nil {
		return endorser, nil
	}

	conn, err := p.Conn(ctx)
	if err != nil {
		return nil, err
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.endorser == nil {
		p.endorser = pb.NewEndorserClient(conn)
		p.dialled = true
	}
	return p.endorser, nil
}

// String returns the name and URL of the peer
func (p *Peer) String() string {
	return p.name + " (" + p.config.URL + ")"
}
