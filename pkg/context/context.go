/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package context holds the connection of a tooling session to a Fabric
// network: the connection profile, the identity taken from a wallet and the
// network handle opened for that identity.
package context

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/retry"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config"
	fabricca "github.com/hyperledger/fabric-devtools-go/pkg/fab/ca"
	"github.com/hyperledger/fabric-devtools-go/pkg/fab/network"
	mspimpl "github.com/hyperledger/fabric-devtools-go/pkg/msp"
)

var logger = logging.NewLogger("fabdev/context")

// Client supplies the identity and the network handle of a connected session
// to client objects
type Client interface {
	Identity() (msp.SigningIdentity, error)
	Network() (fab.Network, error)
	CAClient() (fab.CAClient, error)
	Config() (*config.NetworkConfig, error)
}

// ClientProvider returns client context
type ClientProvider func() (Client, error)

// NetworkFactory opens the network described by the profile for the signer
type NetworkFactory func(cfg *config.NetworkConfig, signer msp.SigningIdentity) (fab.Network, error)

// CAClientFactory returns the client of the certificate authority of the
// client organization
type CAClientFactory func(cfg *config.NetworkConfig) (fab.CAClient, error)

// Option configures a Session
type Option func(s *Session)

// WithNetworkFactory replaces the factory used by Connect to open the network
func WithNetworkFactory(factory NetworkFactory) Option {
	return func(s *Session) {
		s.networkFactory = factory
	}
}

// WithCAClientFactory replaces the factory of the CA client
func WithCAClientFactory(factory CAClientFactory) Option {
	return func(s *Session) {
		s.caFactory = factory
	}
}

// Session is the connection context of the tooling. It holds at most one
// active connection.
type Session struct {
	networkFactory NetworkFactory
	caFactory      CAClientFactory

	mutex    sync.RWMutex
	config   *config.NetworkConfig
	label    string
	wallet   msp.Wallet
	identity msp.SigningIdentity
	network  fab.Network
	caClient fab.CAClient
	caErr    error
}

var _ Client = (*Session)(nil)

// NewSession returns a disconnected session
func NewSession(opts ...Option) *Session {
	s := &Session{
		networkFactory: DefaultNetworkFactory,
		caFactory:      DefaultCAClientFactory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultNetworkFactory opens the GRPC network of the connection profile
func DefaultNetworkFactory(cfg *config.NetworkConfig, signer msp.SigningIdentity) (fab.Network, error) {
	return network.New(cfg, signer, networkOptions(cfg)...)
}

func networkOptions(cfg *config.NetworkConfig) []network.Option {
	var opts []network.Option
	if r := cfg.Client.QueryRetry; r.Attempts > 0 {
		retryOpts := retry.DefaultOpts
		retryOpts.Attempts = r.Attempts
		if r.InitialBackoff > 0 {
			retryOpts.InitialBackoff = r.InitialBackoff
		}
		if r.MaxBackoff > 0 {
			retryOpts.MaxBackoff = r.MaxBackoff
		}
		if r.BackoffFactor > 0 {
			retryOpts.BackoffFactor = r.BackoffFactor
		}
		opts = append(opts, network.WithRetry(retryOpts))
	}
	if interval := cfg.Client.Cache.ChannelConfig; interval > 0 {
		opts = append(opts, network.WithChannelConfigRefresh(interval))
	}
	return opts
}

// DefaultCAClientFactory returns the REST client of the first CA of the client organization
func DefaultCAClientFactory(cfg *config.NetworkConfig) (fab.CAClient, error) {
	name, caConfig, err := cfg.ClientCA()
	if err != nil {
		return nil, err
	}
	return fabricca.New(name, caConfig)
}

// Connect loads the profile, takes the identity stored under label in the
// wallet and opens the network for it. It fails when already connected.
func (s *Session) Connect(cfgProvider config.Provider, wallet msp.Wallet, label string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.network != nil {
		return errors.Errorf("session is already connected as [%s]", s.label)
	}
	if cfgProvider == nil {
		return errors.New("connection profile is required")
	}
	if wallet == nil {
		return errors.New("wallet is required")
	}

	cfg, err := cfgProvider()
	if err != nil {
		return errors.WithMessage(err, "loading connection profile failed")
	}

	wid, err := wallet.Get(label)
	if err != nil {
		return errors.WithMessagef(err, "reading identity [%s] from wallet failed", label)
	}
	identity, err := mspimpl.NewUser(label, wid)
	if err != nil {
		return err
	}

	net, err := s.networkFactory(cfg, identity)
	if err != nil {
		return errors.WithMessagef(err, "connecting to network [%s] failed", cfg.Name)
	}

	s.config = cfg
	s.label = label
	s.wallet = wallet
	s.identity = identity
	s.network = net
	s.caClient, s.caErr = s.caFactory(cfg)
	if s.caErr != nil {
		logger.Debugf("No certificate authority available: %s", s.caErr)
	}

	logger.Infof("Connected to network [%s] as [%s] (%s)", cfg.Name, label, wid.MSPID)
	return nil
}

// Disconnect closes the network and clears the session. Disconnecting a
// session that is not connected does nothing.
func (s *Session) Disconnect() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.network == nil {
		return nil
	}

	err := s.network.Close()
	logger.Infof("Disconnected [%s] from network [%s]", s.label, s.config.Name)

	s.config = nil
	s.label = ""
	s.wallet = nil
	s.identity = nil
	s.network = nil
	s.caClient = nil
	s.caErr = nil

	return err
}

// IsConnected reports whether the session holds a connection
func (s *Session) IsConnected() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.network != nil
}

// Identity returns the signing identity of the connection
func (s *Session) Identity() (msp.SigningIdentity, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.network == nil {
		return nil, notConnected()
	}
	return s.identity, nil
}

// Label returns the wallet label of the connected identity
func (s *Session) Label() (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.network == nil {
		return "", notConnected()
	}
	return s.label, nil
}

// Wallet returns the wallet the identity was taken from
func (s *Session) Wallet() (msp.Wallet, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.network == nil {
		return nil, notConnected()
	}
	return s.wallet, nil
}

// Network returns the network handle of the connection
func (s *Session) Network() (fab.Network, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.network == nil {
		return nil, notConnected()
	}
	return s.network, nil
}

// Config returns the connection profile of the connection
func (s *Session) Config() (*config.NetworkConfig, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.network == nil {
		return nil, notConnected()
	}
	return s.config, nil
}

// CAClient returns the client of the certificate authority of the client organization
func (s *Session) CAClient() (fab.CAClient, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.network == nil {
		return nil, notConnected()
	}
	if s.caClient == nil {
		return nil, errors.WithMessage(s.caErr, "no certificate authority available")
	}
	return s.caClient, nil
}

// Provider returns the session as a client context provider
func (s *Session) Provider() ClientProvider {
	return func() (Client, error) {
		if !s.IsConnected() {
			return nil, notConnected()
		}
		return s, nil
	}
}

func notConnected() error {
	return errors.WithStack(status.NotConnectedError)
}

// bootstrapClient serves the profile and the CA client without an identity
type bootstrapClient struct {
	config   *config.NetworkConfig
	caClient fab.CAClient
}

func (c *bootstrapClient) Identity() (msp.SigningIdentity, error) { return nil, notConnected() }
func (c *bootstrapClient) Network() (fab.Network, error) { return nil, notConnected() }
func (c *bootstrapClient) CAClient() (fab.CAClient, error) { return c.caClient, nil }
func (c *bootstrapClient) Config() (*config.NetworkConfig, error) { return c.config, nil }

// BootstrapProvider returns a client context holding only the profile and the
// CA client of the client organization. It serves the enrollment of the first
// identity of a wallet, when no session can be connected yet.
func BootstrapProvider(cfgProvider config.Provider, caFactory CAClientFactory) ClientProvider {
	return func() (Client, error) {
		if cfgProvider == nil {
			return nil, errors.New("connection profile is required")
		}
		cfg, err := cfgProvider()
		if err != nil {
			return nil, errors.WithMessage(err, "loading connection profile failed")
		}
		if caFactory == nil {
			caFactory = DefaultCAClientFactory
		}
		ca, err := caFactory(cfg)
		if err != nil {
			return nil, errors.WithMessage(err, "no certificate authority available")
		}
		return &bootstrapClient{config: cfg, caClient: ca}, nil
	}
}
