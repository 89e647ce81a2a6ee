/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package resmgmt manages the legacy (lscc) chaincode lifecycle on a Fabric network.
package resmgmt

import (
	reqContext "context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/hyperledger/fabric-devtools-go/pkg/client/discovery"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/context"
	"github.com/hyperledger/fabric-devtools-go/pkg/fab/chconfig"
	"github.com/hyperledger/fabric-devtools-go/pkg/fabsdk/metrics"
)

var logger = logging.NewLogger("fabdev/resmgmt")

const accessDeniedMessage = "access denied"

// ChaincodeRecord describes a chaincode instantiated on a channel
type ChaincodeRecord struct {
	Name    string
	Version string
	Channel string
	Label   string
}

// InstalledChaincodeIndex maps the name of every chaincode installed on a peer
// to its installed versions
type InstalledChaincodeIndex map[string][]string

// Names returns the installed chaincode names in lexical order
func (idx InstalledChaincodeIndex) Names() []string {
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Client enables managing chaincodes in a Fabric network.
type Client struct {
	ctx       context.Client
	network   fab.Network
	discovery *discovery.Client
	fs        afero.Fs
	metrics   *metrics.ClientMetrics
}

// New returns a resource management client for the connected session
func New(clientProvider context.ClientProvider, opts ...ClientOption) (*Client, error) {
	ctx, err := clientProvider()
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create resmgmt client")
	}

	network, err := ctx.Network()
	if err != nil {
		return nil, err
	}

	disc, err := discovery.New(func() (context.Client, error) { return ctx, nil })
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create discovery client")
	}

	resourceClient := &Client{
		ctx:       ctx,
		network:   network,
		discovery: disc,
		fs:        afero.NewOsFs(),
		metrics:   metrics.NewDiscardMetrics(),
	}
	for _, opt := range opts {
		if err := opt(resourceClient); err != nil {
			return nil, err
		}
	}
	return resourceClient, nil
}

// ListInstantiated returns the chaincodes instantiated on the channel
func (rc *Client) ListInstantiated(ctx reqContext.Context, channel string) ([]ChaincodeRecord, error) {
	infos, err := rc.network.QueryInstantiatedChaincodes(ctx, channel)
	if err != nil {
		return nil, errors.WithStack(status.NewWithCause(status.ClientStatus, status.DiscoveryFailed.ToInt32(),
			fmt.Sprintf("querying instantiated chaincodes of channel [%s] failed", channel), err))
	}

	records := make([]ChaincodeRecord, 0, len(infos))
	for _, info := range infos {
		records = append(records, newRecord(info.Name, info.Version, channel))
	}
	return records, nil
}

// ListAllInstantiated returns the chaincodes instantiated on any channel of the
// network. A chaincode version instantiated on several channels is reported once,
// with the first channel in lexical order.
func (rc *Client) ListAllInstantiated(ctx reqContext.Context) ([]ChaincodeRecord, error) {
	topology, err := rc.discovery.DiscoverTopology(ctx)
	if err != nil {
		return nil, err
	}

	type key struct{ name, version string }
	seen := make(map[key]struct{})
	var all []ChaincodeRecord
	for _, channel := range topology.ChannelNames() {
		records, err := rc.ListInstantiated(ctx, channel)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			k := key{r.Name, r.Version}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			all = append(all, r)
		}
	}
	return all, nil
}

// ListInstalled returns the chaincodes installed on the peer. A peer refusing the
// query to the client identity yields an empty index.
func (rc *Client) ListInstalled(ctx reqContext.Context, peer string) (InstalledChaincodeIndex, error) {
	infos, err := rc.network.QueryInstalledChaincodes(ctx, peer)
	if err != nil {
		if isAccessDenied(err) {
			logger.Warnf("Listing installed chaincodes of peer [%s] was denied: %s", peer, err)
			return InstalledChaincodeIndex{}, nil
		}
		return nil, err
	}

	index := make(InstalledChaincodeIndex)
	for _, info := range infos {
		index[info.Name] = append(index[info.Name], info.Version)
	}
	return index, nil
}

func isAccessDenied(err error) bool {
	if errors.Is(err, status.AccessDeniedError) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), accessDeniedMessage)
}

// Install sends the chaincode package read from packagePath to the peer
func (rc *Client) Install(ctx reqContext.Context, packagePath, peer string) error {
	if packagePath == "" || peer == "" {
		return errors.New("package path and peer are required")
	}

	ccPackage, err := afero.ReadFile(rc.fs, packagePath)
	if err != nil {
		return errors.Wrapf(err, "reading chaincode package [%s] failed", packagePath)
	}

	resp, err := rc.network.SendInstallProposal(ctx, peer, ccPackage)
	if err != nil {
		return errors.WithStack(status.NewWithCause(status.ClientStatus, status.InstallRejected.ToInt32(),
			fmt.Sprintf("install chaincode on peer [%s] failed", peer), err))
	}
	if resp.Status != http.StatusOK {
		msg := resp.ProposalResponse.GetResponse().GetMessage()
		return errors.WithStack(status.New(status.ClientStatus, status.InstallRejected.ToInt32(),
			fmt.Sprintf("install chaincode on peer [%s] failed: %s", peer, msg), []interface{}{resp.Status, msg}))
	}

	logger.Infof("Installed chaincode package [%s] on peer [%s]", packagePath, peer)
	return nil
}

// QueryChannels returns the channels joined by the peer
func (rc *Client) QueryChannels(ctx reqContext.Context, peer string) ([]string, error) {
	return rc.discovery.ChannelsForPeer(ctx, peer)
}

// GetOrganizations returns the MSP IDs of the application organizations of the channel
func (rc *Client) GetOrganizations(ctx reqContext.Context, channel string) ([]string, error) {
	config, err := rc.network.QueryChannelConfig(ctx, channel)
	if err != nil {
		return nil, errors.WithMessagef(err, "querying configuration of channel [%s] failed", channel)
	}

	chCfg, err := chconfig.New(channel, config)
	if err != nil {
		return nil, err
	}
	return chCfg.MSPIDs(), nil
}

// CertificateAuthorityNames returns the certificate authorities of the connection profile
func (rc *Client) CertificateAuthorityNames() ([]string, error) {
	cfg, err := rc.ctx.Config()
	if err != nil {
		return nil, err
	}
	return cfg.CertificateAuthorityNames(), nil
}

func newRecord(name, version, channel string) ChaincodeRecord {
	return ChaincodeRecord{
		Name:    name,
		Version: version,
		Channel: channel,
		Label:   name + "@" + version,
	}
}
