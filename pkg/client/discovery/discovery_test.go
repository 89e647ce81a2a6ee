/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package discovery

import (
	reqContext "context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab/mocks"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
	"github.com/hyperledger/fabric-devtools-go/pkg/context"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config"
)

const (
	peer0 = "peer0.org1.example.com"
	peer1 = "peer1.org1.example.com"
	peer2 = "peer0.org2.example.com"
)

type mockClient struct {
	network fab.Network
}

func (c *mockClient) Identity() (msp.SigningIdentity, error) { return nil, nil }
func (c *mockClient) Network() (fab.Network, error) { return c.network, nil }
func (c *mockClient) CAClient() (fab.CAClient, error) { return nil, errors.New("no CA") }
func (c *mockClient) Config() (*config.NetworkConfig, error) { return &config.NetworkConfig{}, nil }

func newClient(t *testing.T, network fab.Network) *Client {
	c, err := New(func() (context.Client, error) { return &mockClient{network: network}, nil })
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	_, err := New(func() (context.Client, error) { return nil, status.NotConnectedError })
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.NotConnectedError))

	_, err = New(func() (context.Client, error) { return &mockClient{}, nil },
		func(*Client) error { return errors.New("bad option") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad option")
}

func TestDiscoverTopology(t *testing.T) {
	ctrl := gomock.NewController(t)
	network := mocks.NewMockNetwork(ctrl)
	ctx := reqContext.Background()

	network.EXPECT().Peers().Return([]string{peer2, peer1, peer0}).AnyTimes()
	gomock.InOrder(
		network.EXPECT().QueryChannels(ctx, peer0).Return([]string{"mychannel", "audit"}, nil),
		network.EXPECT().QueryChannels(ctx, peer2).Return([]string{"mychannel"}, nil),
		network.EXPECT().QueryChannels(ctx, peer1).Return([]string{"mychannel"}, nil),
	)

	topology, err := newClient(t, network).DiscoverTopology(ctx)
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		peer0: {"audit", "mychannel"},
		peer1: {"mychannel"},
		peer2: {"mychannel"},
	}, topology.Peers)
	assert.Equal(t, map[string][]string{
		"audit":     {peer0},
		"mychannel": {peer0, peer2, peer1},
	}, topology.Channels)
	assert.Equal(t, []string{"audit", "mychannel"}, topology.ChannelNames())
}

func TestDiscoverTopologyIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	network := mocks.NewMockNetwork(ctrl)
	ctx := reqContext.Background()

	network.EXPECT().Peers().Return([]string{peer0, peer1}).AnyTimes()
	network.EXPECT().QueryChannels(ctx, peer0).Return([]string{"mychannel"}, nil).Times(2)
	network.EXPECT().QueryChannels(ctx, peer1).Return([]string{"mychannel", "audit"}, nil).Times(2)

	c := newClient(t, network)
	first, err := c.DiscoverTopology(ctx)
	require.NoError(t, err)
	second, err := c.DiscoverTopology(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}

func TestDiscoverTopologyNoChannels(t *testing.T) {
	ctrl := gomock.NewController(t)
	network := mocks.NewMockNetwork(ctrl)
	ctx := reqContext.Background()

	network.EXPECT().Peers().Return([]string{peer0})
	network.EXPECT().QueryChannels(ctx, peer0).Return(nil, nil)

	topology, err := newClient(t, network).DiscoverTopology(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{peer0: {}}, topology.Peers)
	assert.Empty(t, topology.Channels)
}

func TestDiscoverTopologyFailFast(t *testing.T) {
	ctrl := gomock.NewController(t)
	network := mocks.NewMockNetwork(ctrl)
	ctx := reqContext.Background()
	cause := errors.New("connection refused")

	network.EXPECT().Peers().Return([]string{peer0, peer1, peer2})
	network.EXPECT().QueryChannels(ctx, peer0).Return([]string{"mychannel"}, nil)
	network.EXPECT().QueryChannels(ctx, peer2).Return(nil, cause)

	topology, err := newClient(t, network).DiscoverTopology(ctx)
	require.Error(t, err)
	assert.Nil(t, topology)
	assert.True(t, errors.Is(err, status.DiscoveryFailedError))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), peer2)
}

func TestDiscoverOrderers(t *testing.T) {
	ctrl := gomock.NewController(t)
	network := mocks.NewMockNetwork(ctrl)
	ctx := reqContext.Background()

	network.EXPECT().Peers().Return([]string{peer0, peer1}).AnyTimes()
	network.EXPECT().QueryChannels(ctx, peer0).Return([]string{"mychannel", "audit"}, nil)
	network.EXPECT().QueryChannels(ctx, peer1).Return([]string{"mychannel"}, nil)
	network.EXPECT().ChannelOrderers(ctx, peer0, "audit").Return([]string{"orderer2.example.com"}, nil)
	network.EXPECT().ChannelOrderers(ctx, peer0, "mychannel").Return([]string{"orderer.example.com"}, nil)
	network.EXPECT().ChannelOrderers(ctx, peer1, "mychannel").Return([]string{"orderer.example.com"}, nil)

	orderers, err := newClient(t, network).DiscoverOrderers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"orderer.example.com", "orderer2.example.com"}, orderers)
}

func TestDiscoverOrderersFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	network := mocks.NewMockNetwork(ctrl)
	ctx := reqContext.Background()

	network.EXPECT().Peers().Return([]string{peer0}).AnyTimes()
	network.EXPECT().QueryChannels(ctx, peer0).Return([]string{"mychannel"}, nil)
	network.EXPECT().ChannelOrderers(ctx, peer0, "mychannel").Return(nil, errors.New("config block unavailable"))

	_, err := newClient(t, network).DiscoverOrderers(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.DiscoveryFailedError))
	assert.Contains(t, err.Error(), "channel [mychannel] on peer ["+peer0+"]")
	assert.Contains(t, err.Error(), "config block unavailable")
}

func TestDiscoverChannelOrderers(t *testing.T) {
	ctrl := gomock.NewController(t)
	network := mocks.NewMockNetwork(ctrl)
	ctx := reqContext.Background()

	topology := &ChannelTopology{
		Peers: map[string][]string{
			peer1: {"mychannel"},
			peer0: {"audit", "mychannel"},
		},
		Channels: map[string][]string{
			"audit":     {peer0},
			"mychannel": {peer0, peer1},
		},
	}
	gomock.InOrder(
		network.EXPECT().ChannelOrderers(ctx, peer0, "audit").Return([]string{"orderer2.example.com"}, nil),
		network.EXPECT().ChannelOrderers(ctx, peer0, "mychannel").Return([]string{"orderer3.example.com", "orderer.example.com"}, nil),
		network.EXPECT().ChannelOrderers(ctx, peer1, "mychannel").Return([]string{"orderer.example.com"}, nil),
	)

	channelOrderers, err := newClient(t, network).DiscoverChannelOrderers(ctx, topology)
	require.NoError(t, err)

	expected := map[string][]string{
		"audit":     {"orderer2.example.com"},
		"mychannel": {"orderer.example.com", "orderer3.example.com"},
	}
	assert.Equal(t, expected, channelOrderers)
	assert.Equal(t, expected, topology.ChannelOrderers)
	assert.Equal(t, []string{"orderer.example.com", "orderer2.example.com", "orderer3.example.com"}, topology.OrdererNames())

	_, err = newClient(t, network).DiscoverChannelOrderers(ctx, nil)
	assert.Error(t, err)
}

func TestDiscoverOrderersNoneKnown(t *testing.T) {
	ctrl := gomock.NewController(t)
	network := mocks.NewMockNetwork(ctrl)
	ctx := reqContext.Background()

	network.EXPECT().Peers().Return([]string{peer0, peer1}).AnyTimes()
	network.EXPECT().QueryChannels(ctx, peer0).Return([]string{"mychannel"}, nil)
	network.EXPECT().QueryChannels(ctx, peer1).Return([]string{"audit"}, nil)
	network.EXPECT().ChannelOrderers(ctx, peer0, "mychannel").Return([]string{"orderer.example.com"}, nil)
	network.EXPECT().ChannelOrderers(ctx, peer1, "audit").Return([]string{}, nil)

	orderers, err := newClient(t, network).DiscoverOrderers(ctx)
	require.Error(t, err)
	assert.Nil(t, orderers)
	assert.True(t, errors.Is(err, status.DiscoveryFailedError))
	assert.Contains(t, err.Error(), "channel [audit] on peer ["+peer1+"]")
}

func TestPeerNames(t *testing.T) {
	ctrl := gomock.NewController(t)
	network := mocks.NewMockNetwork(ctrl)
	peers := []string{peer2, peer0}
	network.EXPECT().Peers().Return(peers)

	assert.Equal(t, []string{peer0, peer2}, newClient(t, network).PeerNames())
	assert.Equal(t, []string{peer2, peer0}, peers)
}
