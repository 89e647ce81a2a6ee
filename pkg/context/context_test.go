/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package context

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab/mocks"
	providersmsp "github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config"
	"github.com/hyperledger/fabric-devtools-go/pkg/msp"
	"github.com/hyperledger/fabric-devtools-go/pkg/msp/test/mockmsp"
)

const profile = `
name: test-network
client:
  organization: Org1
organizations:
  Org1:
    mspid: Org1MSP
    peers:
      - peer0.org1.example.com
    certificateAuthorities:
      - ca.org1.example.com
peers:
  peer0.org1.example.com:
    url: grpc://localhost:7051
certificateAuthorities:
  ca.org1.example.com:
    url: http://localhost:7054
`

func newWallet(t *testing.T, labels ...string) *msp.InMemoryWallet {
	wallet := msp.NewInMemoryWallet()
	for _, label := range labels {
		wid, err := mockmsp.NewWalletIdentity("Org1MSP", label)
		require.NoError(t, err)
		require.NoError(t, wallet.Put(label, wid))
	}
	return wallet
}

func networkFactory(net fab.Network) NetworkFactory {
	return func(cfg *config.NetworkConfig, signer providersmsp.SigningIdentity) (fab.Network, error) {
		return net, nil
	}
}

func TestConnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	net := mocks.NewMockNetwork(ctrl)
	net.EXPECT().Close().Return(nil)

	var signer providersmsp.SigningIdentity
	s := NewSession(WithNetworkFactory(func(cfg *config.NetworkConfig, id providersmsp.SigningIdentity) (fab.Network, error) {
		assert.Equal(t, "test-network", cfg.Name)
		signer = id
		return net, nil
	}))
	wallet := newWallet(t, "admin")

	require.NoError(t, s.Connect(config.FromRaw([]byte(profile), "yaml"), wallet, "admin"))
	assert.True(t, s.IsConnected())

	identity, err := s.Identity()
	require.NoError(t, err)
	assert.Same(t, signer, identity)
	assert.Equal(t, "Org1MSP", identity.Identifier().MSPID)

	label, err := s.Label()
	require.NoError(t, err)
	assert.Equal(t, "admin", label)

	w, err := s.Wallet()
	require.NoError(t, err)
	assert.Same(t, wallet, w)

	n, err := s.Network()
	require.NoError(t, err)
	assert.Same(t, net, n)

	cfg, err := s.Config()
	require.NoError(t, err)
	assert.Equal(t, "test-network", cfg.Name)

	ca, err := s.CAClient()
	require.NoError(t, err)
	assert.Equal(t, "ca.org1.example.com", ca.CAName())

	client, err := s.Provider()()
	require.NoError(t, err)
	assert.Same(t, s, client)

	require.NoError(t, s.Disconnect())
	assert.False(t, s.IsConnected())
}

func TestConnectTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	net := mocks.NewMockNetwork(ctrl)

	s := NewSession(WithNetworkFactory(networkFactory(net)))
	wallet := newWallet(t, "admin", "user1")
	cfg := config.FromRaw([]byte(profile), "yaml")

	require.NoError(t, s.Connect(cfg, wallet, "admin"))
	err := s.Connect(cfg, wallet, "user1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already connected as [admin]")

	label, err := s.Label()
	require.NoError(t, err)
	assert.Equal(t, "admin", label)
}

func TestConnectErrors(t *testing.T) {
	s := NewSession(WithNetworkFactory(func(cfg *config.NetworkConfig, signer providersmsp.SigningIdentity) (fab.Network, error) {
		return nil, errors.New("dial refused")
	}))
	wallet := newWallet(t, "admin")
	cfg := config.FromRaw([]byte(profile), "yaml")

	err := s.Connect(nil, wallet, "admin")
	assert.EqualError(t, err, "connection profile is required")

	err = s.Connect(cfg, nil, "admin")
	assert.EqualError(t, err, "wallet is required")

	err = s.Connect(config.FromFile("/does/not/exist.yaml"), wallet, "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading connection profile failed")

	err = s.Connect(cfg, wallet, "nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, providersmsp.ErrUserNotFound))

	err = s.Connect(cfg, wallet, "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to network [test-network] failed: dial refused")

	assert.False(t, s.IsConnected())
}

func TestNotConnected(t *testing.T) {
	s := NewSession()

	_, err := s.Identity()
	assert.True(t, errors.Is(err, status.NotConnectedError))
	_, err = s.Label()
	assert.True(t, errors.Is(err, status.NotConnectedError))
	_, err = s.Wallet()
	assert.True(t, errors.Is(err, status.NotConnectedError))
	_, err = s.Network()
	assert.True(t, errors.Is(err, status.NotConnectedError))
	_, err = s.Config()
	assert.True(t, errors.Is(err, status.NotConnectedError))
	_, err = s.CAClient()
	assert.True(t, errors.Is(err, status.NotConnectedError))
	_, err = s.Provider()()
	assert.True(t, errors.Is(err, status.NotConnectedError))

	assert.NoError(t, s.Disconnect())
}

func TestDisconnectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	net := mocks.NewMockNetwork(ctrl)
	net.EXPECT().Close().Return(errors.New("close failed"))

	s := NewSession(WithNetworkFactory(networkFactory(net)))
	require.NoError(t, s.Connect(config.FromRaw([]byte(profile), "yaml"), newWallet(t, "admin"), "admin"))

	assert.EqualError(t, s.Disconnect(), "close failed")
	assert.False(t, s.IsConnected())
	assert.NoError(t, s.Disconnect())
}

func TestReconnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	net := mocks.NewMockNetwork(ctrl)
	net.EXPECT().Close().Return(nil).Times(2)

	s := NewSession(WithNetworkFactory(networkFactory(net)))
	wallet := newWallet(t, "admin", "user1")
	cfg := config.FromRaw([]byte(profile), "yaml")

	require.NoError(t, s.Connect(cfg, wallet, "admin"))
	require.NoError(t, s.Disconnect())
	require.NoError(t, s.Connect(cfg, wallet, "user1"))

	label, err := s.Label()
	require.NoError(t, err)
	assert.Equal(t, "user1", label)
	require.NoError(t, s.Disconnect())
}

func TestNoCertificateAuthority(t *testing.T) {
	ctrl := gomock.NewController(t)
	net := mocks.NewMockNetwork(ctrl)

	s := NewSession(
		WithNetworkFactory(networkFactory(net)),
		WithCAClientFactory(func(cfg *config.NetworkConfig) (fab.CAClient, error) {
			return nil, errors.New("no certificate authority configured")
		}),
	)
	require.NoError(t, s.Connect(config.FromRaw([]byte(profile), "yaml"), newWallet(t, "admin"), "admin"))

	_, err := s.CAClient()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no certificate authority available")
}

func TestCAClientFactory(t *testing.T) {
	ctrl := gomock.NewController(t)
	ca := mocks.NewMockCAClient(ctrl)
	ca.EXPECT().CAName().Return("ca.org2.example.com")

	s := NewSession(
		WithNetworkFactory(networkFactory(mocks.NewMockNetwork(ctrl))),
		WithCAClientFactory(func(cfg *config.NetworkConfig) (fab.CAClient, error) {
			return ca, nil
		}),
	)
	require.NoError(t, s.Connect(config.FromRaw([]byte(profile), "yaml"), newWallet(t, "admin"), "admin"))

	client, err := s.CAClient()
	require.NoError(t, err)
	assert.Equal(t, "ca.org2.example.com", client.CAName())
}

func TestBootstrapProvider(t *testing.T) {
	ctrl := gomock.NewController(t)
	ca := mocks.NewMockCAClient(ctrl)

	provider := BootstrapProvider(config.FromRaw([]byte(profile), "yaml"), func(cfg *config.NetworkConfig) (fab.CAClient, error) {
		return ca, nil
	})
	client, err := provider()
	require.NoError(t, err)

	caClient, err := client.CAClient()
	require.NoError(t, err)
	assert.Equal(t, ca, caClient)

	cfg, err := client.Config()
	require.NoError(t, err)
	assert.Equal(t, "test-network", cfg.Name)

	_, err = client.Identity()
	assert.True(t, errors.Is(err, status.NotConnectedError))
	_, err = client.Network()
	assert.True(t, errors.Is(err, status.NotConnectedError))

	client, err = BootstrapProvider(config.FromRaw([]byte(profile), "yaml"), nil)()
	require.NoError(t, err)
	caClient, err = client.CAClient()
	require.NoError(t, err)
	assert.Equal(t, "ca.org1.example.com", caClient.CAName())
}

func TestBootstrapProviderErrors(t *testing.T) {
	_, err := BootstrapProvider(nil, nil)()
	assert.EqualError(t, err, "connection profile is required")

	_, err = BootstrapProvider(config.FromRaw([]byte(profile), "yaml"), func(cfg *config.NetworkConfig) (fab.CAClient, error) {
		return nil, errors.New("no certificate authority configured")
	})()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no certificate authority available")
}

func TestNetworkOptions(t *testing.T) {
	assert.Empty(t, networkOptions(&config.NetworkConfig{}))

	cfg := &config.NetworkConfig{Client: config.ClientConfig{
		QueryRetry: config.RetryConfig{Attempts: 3},
		Cache:      config.CacheConfig{ChannelConfig: time.Minute},
	}}
	assert.Len(t, networkOptions(cfg), 2)
}
