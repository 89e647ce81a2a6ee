/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/msp/test/mockmsp"
)

const profile = `
name: local-network
version: 1.0.0
client:
  organization: Org1
  logging:
    level: debug
  connection:
    timeout:
      peer:
        endorser: 15s
      orderer: 20s
  commitTimeout: 200s
  queryRetry:
    attempts: 2
    initialBackoff: 250ms
  cache:
    channelConfig: 10m
channels:
  mychannel:
    orderers:
      - orderer.example.com
    peers:
      peer0.org1.example.com:
        endorsingPeer: true
      peer1.org1.example.com:
        endorsingPeer: false
    commitTimeout: 120s
  otherchannel:
    peers:
      peer0.org1.example.com: {}
organizations:
  Org1:
    mspid: Org1MSP
    peers:
      - peer0.org1.example.com
      - peer1.org1.example.com
    certificateAuthorities:
      - ca.org1.example.com
orderers:
  orderer.example.com:
    url: grpc://localhost:7050
    grpcOptions:
      ssl-target-name-override: orderer.example.com
      allow-insecure: true
      keep-alive-time: 10s
peers:
  peer0.org1.example.com:
    url: grpcs://localhost:7051
    tlsCACerts:
      path: tls/ca.pem
  peer1.org1.example.com:
    url: grpc://localhost:8051
certificateAuthorities:
  ca.org1.example.com:
    url: http://localhost:7054
    caName: ca-org1
    registrar:
      enrollId: admin
      enrollSecret: adminpw
`

func newProfileFs(t *testing.T) afero.Fs {
	enrollment, err := mockmsp.NewEnrollment("tlsca.org1.example.com")
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/profiles/network.yaml", []byte(profile), 0600))
	require.NoError(t, afero.WriteFile(fs, "/profiles/tls/ca.pem", enrollment.Certificate, 0600))
	return fs
}

func TestFromFile(t *testing.T) {
	defer logging.SetLevel("", logging.INFO)

	cfg, err := FromFile("/profiles/network.yaml", WithFs(newProfileFs(t)))()
	require.NoError(t, err)

	assert.Equal(t, "local-network", cfg.Name)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, []string{"peer0.org1.example.com", "peer1.org1.example.com"}, cfg.PeerNames())
	assert.Equal(t, logging.DEBUG, logging.GetLevel("fabdev/config"))

	peer, ok := cfg.PeerConfig("peer0.org1.example.com")
	require.True(t, ok)
	assert.Equal(t, "grpcs://localhost:7051", peer.URL)
	assert.Equal(t, "/profiles/tls/ca.pem", peer.TLSCACerts.Path)
	_, ok, err = peer.TLSCACerts.TLSCert()
	require.NoError(t, err)
	assert.True(t, ok)

	orderer, ok := cfg.OrdererConfig("orderer.example.com")
	require.True(t, ok)
	assert.Equal(t, "orderer.example.com", orderer.ServerHostOverride())
	assert.True(t, orderer.AllowInsecure())
	assert.Equal(t, 10*time.Second, orderer.KeepAliveTime())
	assert.False(t, orderer.FailFast())

	ch, ok := cfg.ChannelConfig("mychannel")
	require.True(t, ok)
	assert.True(t, ch.Peers["peer0.org1.example.com"].IsEndorsingPeer())
	assert.False(t, ch.Peers["peer1.org1.example.com"].IsEndorsingPeer())
	assert.True(t, ch.Peers["peer1.org1.example.com"].IsEventSource())
	assert.Equal(t, []string{"peer0.org1.example.com", "peer1.org1.example.com"}, cfg.ChannelPeers("mychannel"))
	assert.Nil(t, cfg.ChannelPeers("unknown"))

	assert.Equal(t, 15*time.Second, cfg.EndorserTimeout())
	assert.Equal(t, 20*time.Second, cfg.OrdererTimeout())
}

func TestFromFileErrors(t *testing.T) {
	_, err := FromFile("")()
	assert.EqualError(t, err, "filename is required")

	_, err = FromFile("/missing.yaml", WithFs(afero.NewMemMapFs()))()
	assert.ErrorContains(t, err, "loading config file failed: /missing.yaml")

	_, err = FromFile("/profiles/network.yaml", WithFs(nil))()
	assert.ErrorContains(t, err, "filesystem is required")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/network.yaml", []byte(profile), 0600))
	_, err = FromFile("/network.yaml", WithFs(fs))()
	assert.ErrorContains(t, err, "failed to load TLS CA certs of peer [peer0.org1.example.com]")
}

func TestFromRaw(t *testing.T) {
	raw := `
client:
  organization: org1
  logging:
    level: bogus
organizations:
  org1:
    mspid: Org1MSP
`
	_, err := FromRaw([]byte(raw), "")()
	assert.EqualError(t, err, "empty config type")

	_, err = FromRaw([]byte(raw), "yaml")()
	assert.ErrorContains(t, err, "invalid client.logging.level")

	cfg, err := FromRaw([]byte(strings.Replace(raw, "bogus", "info", 1)), "yaml")()
	require.NoError(t, err)
	org, err := cfg.ClientOrganization()
	require.NoError(t, err)
	assert.Equal(t, "Org1MSP", org.MSPID)
	assert.Equal(t, DefaultCommitTimeout, cfg.CommitTimeout("mychannel"))
	assert.Equal(t, DefaultEndorserTimeout, cfg.EndorserTimeout())
	assert.Equal(t, DefaultOrdererTimeout, cfg.OrdererTimeout())
}

func TestFromReaderEnvOverride(t *testing.T) {
	t.Setenv("TEST_NAME", "overridden")

	cfg, err := FromReader(strings.NewReader("name: local-network\n"), "yaml", WithEnvPrefix("TEST"))()
	require.NoError(t, err)
	assert.Equal(t, "overridden", cfg.Name)
}

func TestCommitTimeout(t *testing.T) {
	cfg, err := FromFile("/profiles/network.yaml", WithFs(newProfileFs(t)))()
	require.NoError(t, err)
	defer logging.SetLevel("", logging.INFO)

	assert.Equal(t, 120*time.Second, cfg.CommitTimeout("mychannel"))
	assert.Equal(t, 200*time.Second, cfg.CommitTimeout("otherchannel"))
	assert.Equal(t, 200*time.Second, cfg.CommitTimeout("unknown"))
}

func TestQueryRetryAndCache(t *testing.T) {
	cfg, err := FromFile("/profiles/network.yaml", WithFs(newProfileFs(t)))()
	require.NoError(t, err)
	defer logging.SetLevel("", logging.INFO)

	assert.Equal(t, RetryConfig{Attempts: 2, InitialBackoff: 250 * time.Millisecond}, cfg.Client.QueryRetry)
	assert.Equal(t, 10*time.Minute, cfg.Client.Cache.ChannelConfig)
}

func TestLookups(t *testing.T) {
	cfg, err := FromFile("/profiles/network.yaml", WithFs(newProfileFs(t)))()
	require.NoError(t, err)
	defer logging.SetLevel("", logging.INFO)

	orderers, ok := cfg.ChannelOrderers("mychannel")
	require.True(t, ok)
	assert.Equal(t, []string{"orderer.example.com"}, orderers)
	_, ok = cfg.ChannelOrderers("otherchannel")
	assert.False(t, ok)

	name, ok := cfg.OrdererByURL("grpcs://localhost:7050")
	require.True(t, ok)
	assert.Equal(t, "orderer.example.com", name)
	_, ok = cfg.OrdererByURL("localhost:9999")
	assert.False(t, ok)

	mspID, ok := cfg.PeerMSPID("PEER1.org1.example.com")
	require.True(t, ok)
	assert.Equal(t, "Org1MSP", mspID)
	_, ok = cfg.PeerMSPID("peer0.org2.example.com")
	assert.False(t, ok)

	caName, ca, err := cfg.ClientCA()
	require.NoError(t, err)
	assert.Equal(t, "ca.org1.example.com", caName)
	assert.Equal(t, "ca-org1", ca.CAName)
	assert.Equal(t, "admin", ca.Registrar.EnrollID)
	assert.Equal(t, "adminpw", ca.Registrar.EnrollSecret)
	assert.Equal(t, []string{"ca.org1.example.com"}, cfg.CertificateAuthorityNames())
}

func TestClientOrganizationErrors(t *testing.T) {
	cfg := &NetworkConfig{}
	_, err := cfg.ClientOrganization()
	assert.EqualError(t, err, "client organization is not configured")

	cfg.Client.Organization = "Org2"
	_, err = cfg.ClientOrganization()
	assert.EqualError(t, err, "client organization [Org2] not found in organizations")

	cfg.Organizations = map[string]OrganizationConfig{"org2": {MSPID: "Org2MSP"}}
	_, _, err = cfg.ClientCA()
	assert.EqualError(t, err, "no certificate authority configured for organization [Org2]")
}
