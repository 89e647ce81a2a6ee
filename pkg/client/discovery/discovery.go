/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package discovery builds the channel topology of a Fabric network by asking
// every known peer which channels it has joined.
//
// Discovery is fail-fast: the first peer that cannot be queried aborts the
// call with a DiscoveryFailed status naming the peer. No partial topology is
// ever returned.
package discovery

import (
	reqContext "context"
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/context"
)

var logger = logging.NewLogger("fabdev/discovery")

// ChannelTopology maps peers to the channels they joined, and channels to
// their peers. Both sides are sorted.
//
// ChannelOrderers is filled by DiscoverChannelOrderers. Every channel in it
// has at least one orderer.
type ChannelTopology struct {
	Peers           map[string][]string
	Channels        map[string][]string
	ChannelOrderers map[string][]string
}

// ChannelNames returns the channels of the topology in lexical order
func (t *ChannelTopology) ChannelNames() []string {
	names := make([]string, 0, len(t.Channels))
	for name := range t.Channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OrdererNames returns the orderers of all channels, without duplicates and
// in lexical order
func (t *ChannelTopology) OrdererNames() []string {
	set := make(map[string]struct{})
	for _, orderers := range t.ChannelOrderers {
		for _, o := range orderers {
			set[o] = struct{}{}
		}
	}
	return sortedSet(set)
}

// Client discovers the topology of the network of a session
type Client struct {
	network fab.Network
}

// ClientOption describes a functional parameter for the New constructor
type ClientOption func(*Client) error

// New returns a discovery client for the connected session
func New(clientProvider context.ClientProvider, opts ...ClientOption) (*Client, error) {
	ctx, err := clientProvider()
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create client context")
	}

	network, err := ctx.Network()
	if err != nil {
		return nil, err
	}

	c := &Client{network: network}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.WithMessage(err, "failed to apply client option")
		}
	}
	return c, nil
}

// PeerNames returns the peers known to the connection in lexical order
func (c *Client) PeerNames() []string {
	names := append([]string(nil), c.network.Peers()...)
	sort.Strings(names)
	return names
}

// ChannelsForPeer returns the channels joined by the peer, sorted
func (c *Client) ChannelsForPeer(ctx reqContext.Context, peer string) ([]string, error) {
	channels, err := c.network.QueryChannels(ctx, peer)
	if err != nil {
		return nil, discoveryFailed(fmt.Sprintf("querying channels of peer [%s] failed", peer), err)
	}
	sorted := make([]string, len(channels))
	copy(sorted, channels)
	sort.Strings(sorted)
	return sorted, nil
}

// DiscoverTopology queries every peer, in lexical order, for its channels
func (c *Client) DiscoverTopology(ctx reqContext.Context) (*ChannelTopology, error) {
	topology := &ChannelTopology{
		Peers:           make(map[string][]string),
		Channels:        make(map[string][]string),
		ChannelOrderers: make(map[string][]string),
	}

	for _, peer := range c.PeerNames() {
		channels, err := c.ChannelsForPeer(ctx, peer)
		if err != nil {
			return nil, err
		}
		logger.Debugf("Peer [%s] joined channels %v", peer, channels)

		topology.Peers[peer] = channels
		for _, ch := range channels {
			topology.Channels[ch] = append(topology.Channels[ch], peer)
		}
	}

	for ch := range topology.Channels {
		sort.Strings(topology.Channels[ch])
	}

	logger.Debugf("Discovered %d peers on %d channels", len(topology.Peers), len(topology.Channels))
	return topology, nil
}

// DiscoverOrderers discovers the topology and returns the orderers serving
// any channel of any peer, without duplicates and in lexical order
func (c *Client) DiscoverOrderers(ctx reqContext.Context) ([]string, error) {
	topology, err := c.DiscoverTopology(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := c.DiscoverChannelOrderers(ctx, topology); err != nil {
		return nil, err
	}
	return topology.OrdererNames(), nil
}

// DiscoverChannelOrderers asks the peers of an already discovered topology
// for the orderers of each of their channels. The result is also stored in
// topology.ChannelOrderers. A channel for which a peer reports no known
// orderer fails the call with DiscoveryFailed.
func (c *Client) DiscoverChannelOrderers(ctx reqContext.Context, topology *ChannelTopology) (map[string][]string, error) {
	if topology == nil {
		return nil, errors.New("topology is required")
	}

	sets := make(map[string]map[string]struct{})
	for _, peer := range sortedKeys(topology.Peers) {
		for _, ch := range topology.Peers[peer] {
			orderers, err := c.network.ChannelOrderers(ctx, peer, ch)
			if err != nil {
				return nil, discoveryFailed(fmt.Sprintf("querying orderers of channel [%s] on peer [%s] failed", ch, peer), err)
			}
			if len(orderers) == 0 {
				return nil, errors.WithStack(status.New(status.ClientStatus, status.DiscoveryFailed.ToInt32(),
					fmt.Sprintf("no orderers known for channel [%s] on peer [%s]", ch, peer), nil))
			}
			if sets[ch] == nil {
				sets[ch] = make(map[string]struct{})
			}
			for _, o := range orderers {
				sets[ch][o] = struct{}{}
			}
		}
	}

	channelOrderers := make(map[string][]string, len(sets))
	for ch, set := range sets {
		channelOrderers[ch] = sortedSet(set)
	}
	topology.ChannelOrderers = channelOrderers

	logger.Debugf("Discovered orderers of %d channels", len(channelOrderers))
	return channelOrderers, nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSet(set map[string]struct{}) []string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func discoveryFailed(msg string, cause error) error {
	return errors.WithStack(status.NewWithCause(status.ClientStatus, status.DiscoveryFailed.ToInt32(), msg, cause))
}
