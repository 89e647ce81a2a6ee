/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cast"

	"github.com/hyperledger/fabric-devtools-go/pkg/core/config/endpoint"
)

// Timeouts applied when the connection profile does not set them
const (
	DefaultCommitTimeout   = 300 * time.Second
	DefaultEndorserTimeout = 30 * time.Second
	DefaultOrdererTimeout  = 30 * time.Second
)

// NetworkConfig provides a static definition of a Hyperledger Fabric network
type NetworkConfig struct {
	Name                   string
	Version                string
	Client                 ClientConfig
	Channels               map[string]ChannelConfig
	Organizations          map[string]OrganizationConfig
	Orderers               map[string]EndpointConfig
	Peers                  map[string]EndpointConfig
	CertificateAuthorities map[string]CAConfig
}

// ClientConfig provides the definition of the client configuration
type ClientConfig struct {
	Organization  string
	Logging       LoggingType
	Connection    ConnectionConfig
	CommitTimeout time.Duration
	QueryRetry    RetryConfig
	Cache         CacheConfig
}

// RetryConfig is the retry policy of read-only peer queries. Zero attempts
// disables retries.
type RetryConfig struct {
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// CacheConfig holds how long values read from the network are reused
type CacheConfig struct {
	ChannelConfig time.Duration
}

// LoggingType defines the level for logging
type LoggingType struct {
	Level string
}

// ConnectionConfig holds the client connection settings
type ConnectionConfig struct {
	Timeout TimeoutConfig
}

// TimeoutConfig holds the request timeouts
type TimeoutConfig struct {
	Peer    PeerTimeoutConfig
	Orderer time.Duration
}

// PeerTimeoutConfig holds the peer request timeouts
type PeerTimeoutConfig struct {
	Endorser time.Duration
}

// ChannelConfig provides the definition of channels for the network
type ChannelConfig struct {
	// Orderers list of ordering service nodes
	Orderers []string
	// Peers a list of peer-channels that are part of this organization
	// to get the real list of members, use the config block
	Peers map[string]ChannelPeerConfig
	// CommitTimeout bounds the wait for commit events on the channel
	CommitTimeout time.Duration
}

// ChannelPeerConfig defines the peer capabilities
type ChannelPeerConfig struct {
	EndorsingPeer *bool
	EventSource   *bool
}

// IsEndorsingPeer defaults to true
func (c ChannelPeerConfig) IsEndorsingPeer() bool {
	return c.EndorsingPeer == nil || *c.EndorsingPeer
}

// IsEventSource defaults to true
func (c ChannelPeerConfig) IsEventSource() bool {
	return c.EventSource == nil || *c.EventSource
}

// OrganizationConfig provides the definition of an organization in the network
type OrganizationConfig struct {
	MSPID                  string
	Peers                  []string
	CertificateAuthorities []string
}

// EndpointConfig defines a peer or orderer endpoint
type EndpointConfig struct {
	URL         string
	GRPCOptions map[string]interface{}
	TLSCACerts  endpoint.TLSConfig
}

// ServerHostOverride returns the TLS server name configured in the grpc options
func (e EndpointConfig) ServerHostOverride() string {
	return cast.ToString(e.GRPCOptions["ssl-target-name-override"])
}

// AllowInsecure returns the allow-insecure grpc option
func (e EndpointConfig) AllowInsecure() bool {
	return cast.ToBool(e.GRPCOptions["allow-insecure"])
}

// KeepAliveTime returns the keep-alive-time grpc option, zero if unset
func (e EndpointConfig) KeepAliveTime() time.Duration {
	return cast.ToDuration(e.GRPCOptions["keep-alive-time"])
}

// KeepAliveTimeout returns the keep-alive-timeout grpc option, zero if unset
func (e EndpointConfig) KeepAliveTimeout() time.Duration {
	return cast.ToDuration(e.GRPCOptions["keep-alive-timeout"])
}

// FailFast returns the fail-fast grpc option
func (e EndpointConfig) FailFast() bool {
	return cast.ToBool(e.GRPCOptions["fail-fast"])
}

// CAConfig defines a CA configuration
type CAConfig struct {
	URL        string
	CAName     string
	TLSCACerts endpoint.TLSConfig
	Registrar  EnrollCredentials
}

// EnrollCredentials holds credentials used for enrollment
type EnrollCredentials struct {
	EnrollID     string
	EnrollSecret string
}

func key(name string) string {
	return strings.ToLower(name)
}

// PeerNames returns the names of all configured peers in lexical order
func (c *NetworkConfig) PeerNames() []string {
	names := make([]string, 0, len(c.Peers))
	for name := range c.Peers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PeerConfig returns the endpoint of the named peer
func (c *NetworkConfig) PeerConfig(name string) (EndpointConfig, bool) {
	p, ok := c.Peers[key(name)]
	return p, ok
}

// OrdererConfig returns the endpoint of the named orderer
func (c *NetworkConfig) OrdererConfig(name string) (EndpointConfig, bool) {
	o, ok := c.Orderers[key(name)]
	return o, ok
}

// OrdererByURL returns the name of the orderer listening on the given address.
// The grpc scheme is ignored in the comparison.
func (c *NetworkConfig) OrdererByURL(url string) (string, bool) {
	addr := endpoint.ToAddress(url)
	for name, o := range c.Orderers {
		if endpoint.ToAddress(o.URL) == addr {
			return name, true
		}
	}
	return "", false
}

// ChannelConfig returns the profile section of the channel
func (c *NetworkConfig) ChannelConfig(channel string) (ChannelConfig, bool) {
	ch, ok := c.Channels[key(channel)]
	return ch, ok
}

// ChannelOrderers returns the orderers listed for the channel
func (c *NetworkConfig) ChannelOrderers(channel string) ([]string, bool) {
	ch, ok := c.ChannelConfig(channel)
	if !ok || len(ch.Orderers) == 0 {
		return nil, false
	}
	return ch.Orderers, true
}

// ChannelPeers returns the peers listed for the channel in lexical order
func (c *NetworkConfig) ChannelPeers(channel string) []string {
	ch, ok := c.ChannelConfig(channel)
	if !ok {
		return nil
	}
	var names []string
	for name := range ch.Peers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CommitTimeout returns the channel commit timeout, falling back to the
// client one and then to 300s
func (c *NetworkConfig) CommitTimeout(channel string) time.Duration {
	if ch, ok := c.ChannelConfig(channel); ok && ch.CommitTimeout > 0 {
		return ch.CommitTimeout
	}
	if c.Client.CommitTimeout > 0 {
		return c.Client.CommitTimeout
	}
	return DefaultCommitTimeout
}

// EndorserTimeout returns the endorsement request timeout
func (c *NetworkConfig) EndorserTimeout() time.Duration {
	if t := c.Client.Connection.Timeout.Peer.Endorser; t > 0 {
		return t
	}
	return DefaultEndorserTimeout
}

// OrdererTimeout returns the broadcast request timeout
func (c *NetworkConfig) OrdererTimeout() time.Duration {
	if t := c.Client.Connection.Timeout.Orderer; t > 0 {
		return t
	}
	return DefaultOrdererTimeout
}

// ClientOrganization returns the organization the client belongs to
func (c *NetworkConfig) ClientOrganization() (OrganizationConfig, error) {
	if c.Client.Organization == "" {
		return OrganizationConfig{}, errors.New("client organization is not configured")
	}
	org, ok := c.Organizations[key(c.Client.Organization)]
	if !ok {
		return OrganizationConfig{}, errors.Errorf("client organization [%s] not found in organizations", c.Client.Organization)
	}
	return org, nil
}

// PeerMSPID returns the MSP ID of the organization owning the peer
func (c *NetworkConfig) PeerMSPID(peer string) (string, bool) {
	for _, org := range c.Organizations {
		for _, p := range org.Peers {
			if key(p) == key(peer) {
				return org.MSPID, true
			}
		}
	}
	return "", false
}

// ClientCA returns the first certificate authority of the client organization
func (c *NetworkConfig) ClientCA() (string, CAConfig, error) {
	org, err := c.ClientOrganization()
	if err != nil {
		return "", CAConfig{}, err
	}
	if len(org.CertificateAuthorities) == 0 {
		return "", CAConfig{}, errors.Errorf("no certificate authority configured for organization [%s]", c.Client.Organization)
	}
	name := org.CertificateAuthorities[0]
	ca, ok := c.CertificateAuthorities[key(name)]
	if !ok {
		return "", CAConfig{}, errors.Errorf("certificate authority [%s] not found", name)
	}
	return name, ca, nil
}

// CertificateAuthorityNames returns the names of all configured CAs in lexical order
func (c *NetworkConfig) CertificateAuthorityNames() []string {
	names := make([]string, 0, len(c.CertificateAuthorities))
	for name := range c.CertificateAuthorities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *NetworkConfig) loadTLSCerts(fs afero.Fs, baseDir string) error {
	load := func(kind, name string, tls *endpoint.TLSConfig) error {
		if tls.Path != "" && baseDir != "" && !filepath.IsAbs(tls.Path) {
			tls.Path = filepath.Join(baseDir, tls.Path)
		}
		if err := tls.LoadBytes(fs); err != nil {
			return errors.WithMessagef(err, "failed to load TLS CA certs of %s [%s]", kind, name)
		}
		return nil
	}

	for name, p := range c.Peers {
		if err := load("peer", name, &p.TLSCACerts); err != nil {
			return err
		}
		c.Peers[name] = p
	}
	for name, o := range c.Orderers {
		if err := load("orderer", name, &o.TLSCACerts); err != nil {
			return err
		}
		c.Orderers[name] = o
	}
	for name, ca := range c.CertificateAuthorities {
		if err := load("certificate authority", name, &ca.TLSCACerts); err != nil {
			return err
		}
		c.CertificateAuthorities[name] = ca
	}
	return nil
}
