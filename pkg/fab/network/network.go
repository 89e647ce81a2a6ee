/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package network implements fab.Network over the GRPC services of the peers
// and orderers listed in a connection profile.
package network

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/multi"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/retry"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config"
	"github.com/hyperledger/fabric-devtools-go/pkg/fab/chconfig"
	"github.com/hyperledger/fabric-devtools-go/pkg/fab/orderer"
	"github.com/hyperledger/fabric-devtools-go/pkg/fab/peer"
)

var logger = logging.NewLogger("fabdev/network")

type options struct {
	retry           retry.Opts
	refreshInterval time.Duration
}

// Option configures a Network
type Option func(opts *options)

// WithRetry sets the retry policy of peer queries. Queries are not retried by default.
func WithRetry(opts retry.Opts) Option {
	return func(o *options) {
		o.retry = opts
	}
}

// WithChannelConfigRefresh sets how long a channel configuration read from
// the peers is reused
func WithChannelConfigRefresh(interval time.Duration) Option {
	return func(o *options) {
		o.refreshInterval = interval
	}
}

// Network is the fab.Network of a connection profile. Peers and orderers are
// created up front and connect on first use.
type Network struct {
	config    *config.NetworkConfig
	signer    msp.SigningIdentity
	peers     map[string]*peer.Peer
	orderers  map[string]*orderer.Orderer
	chConfigs *chconfig.Cache
	retry     retry.Opts
}

var _ fab.Network = (*Network)(nil)

// New returns a Network acting on behalf of signer
func New(cfg *config.NetworkConfig, signer msp.SigningIdentity, opts ...Option) (*Network, error) {
	if cfg == nil {
		return nil, errors.New("network configuration is required")
	}
	if signer == nil {
		return nil, errors.New("signing identity is required")
	}

	o := options{retry: retry.NoRetry}
	for _, opt := range opts {
		opt(&o)
	}

	n := &Network{
		config:   cfg,
		signer:   signer,
		peers:    make(map[string]*peer.Peer, len(cfg.Peers)),
		orderers: make(map[string]*orderer.Orderer, len(cfg.Orderers)),
		retry:    o.retry,
	}

	for name, endpoint := range cfg.Peers {
		peerOpts := []peer.Option{peer.WithDialTimeout(cfg.EndorserTimeout())}
		if mspID, ok := cfg.PeerMSPID(name); ok {
			peerOpts = append(peerOpts, peer.WithMSPID(mspID))
		}
		p, err := peer.New(name, endpoint, peerOpts...)
		if err != nil {
			return nil, errors.WithMessage(err, "creating peer failed")
		}
		n.peers[name] = p
	}

	for name, endpoint := range cfg.Orderers {
		ord, err := orderer.New(name, endpoint, orderer.WithDialTimeout(cfg.OrdererTimeout()))
		if err != nil {
			return nil, errors.WithMessage(err, "creating orderer failed")
		}
		n.orderers[name] = ord
	}

	var cacheOpts []chconfig.CacheOpt
	if o.refreshInterval > 0 {
		cacheOpts = append(cacheOpts, chconfig.WithRefreshInterval(o.refreshInterval))
	}
	n.chConfigs = chconfig.NewCache(n.loadChannelConfig, cacheOpts...)

	logger.Debugf("Network [%s] created with %d peers and %d orderers", cfg.Name, len(n.peers), len(n.orderers))
	return n, nil
}

// Peers returns the names of all peers of the profile in lexical order
func (n *Network) Peers() []string {
	return n.config.PeerNames()
}

// CommitTimeout returns the commit wait bound of the channel
func (n *Network) CommitTimeout(channel string) time.Duration {
	return n.config.CommitTimeout(channel)
}

// Close closes the connections of all peers
func (n *Network) Close() error {
	var errs error
	for name, p := range n.peers {
		if err := p.Close(); err != nil {
			errs = multi.Append(errs, errors.WithMessagef(err, "closing peer [%s] failed", name))
		}
	}
	n.chConfigs.Invalidate()
	return errs
}

func (n *Network) peer(name string) (*peer.Peer, error) {
	p, ok := n.peers[strings.ToLower(name)]
	if !ok {
		return nil, errors.Errorf("peer [%s] not found in connection profile", name)
	}
	return p, nil
}

// channelPeers returns the peers that act for the client on the channel: the
// channel peers of the profile that pass the filter, else the peers of the
// client organization, else every peer.
func (n *Network) channelPeers(channel string, filter func(config.ChannelPeerConfig) bool) ([]*peer.Peer, error) {
	names := n.selectChannelPeers(channel, filter)

	var peers []*peer.Peer
	for _, name := range names {
		p, err := n.peer(name)
		if err != nil {
			logger.Warnf("Channel [%s] lists an unknown peer: %s", channel, err)
			continue
		}
		peers = append(peers, p)
	}

	if len(peers) == 0 {
		return nil, errors.WithStack(status.New(status.ClientStatus, status.NoPeersFound.ToInt32(),
			"no peers configured for channel", []interface{}{channel}))
	}
	return peers, nil
}

func (n *Network) selectChannelPeers(channel string, filter func(config.ChannelPeerConfig) bool) []string {
	if chCfg, ok := n.config.ChannelConfig(channel); ok && len(chCfg.Peers) > 0 {
		var names []string
		for _, name := range n.config.ChannelPeers(channel) {
			if filter == nil || filter(chCfg.Peers[name]) {
				names = append(names, name)
			}
		}
		return names
	}

	if org, err := n.config.ClientOrganization(); err == nil && len(org.Peers) > 0 {
		return org.Peers
	}

	return n.config.PeerNames()
}

func endorsingPeer(c config.ChannelPeerConfig) bool {
	return c.IsEndorsingPeer()
}

func eventSource(c config.ChannelPeerConfig) bool {
	return c.IsEventSource()
}
