/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package network

import (
	reqContext "context"
	"fmt"

	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/multi"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/fab/chconfig"
	"github.com/hyperledger/fabric-devtools-go/pkg/fab/resource"
)

// QueryChannels returns the channels joined by the peer
func (n *Network) QueryChannels(ctx reqContext.Context, peerName string) ([]string, error) {
	p, err := n.peer(peerName)
	if err != nil {
		return nil, err
	}

	resp, err := resource.QueryChannels(ctx, n.signer, p, resource.WithRetry(n.retry))
	if err != nil {
		return nil, err
	}

	channels := make([]string, 0, len(resp.Channels))
	for _, ch := range resp.Channels {
		channels = append(channels, ch.ChannelId)
	}
	return channels, nil
}

// ChannelOrderers returns the orderers of the channel. The channel section of
// the profile is used when it lists orderers. Otherwise the orderer endpoints
// of the configuration block returned by the peer are mapped back to profile
// orderers; endpoints unknown to the profile are skipped. A channel without
// any known orderer is a DiscoveryFailed error.
func (n *Network) ChannelOrderers(ctx reqContext.Context, peerName, channel string) ([]string, error) {
	if names, ok := n.config.ChannelOrderers(channel); ok {
		return append([]string(nil), names...), nil
	}

	p, err := n.peer(peerName)
	if err != nil {
		return nil, err
	}

	block, err := resource.QueryConfigBlock(ctx, n.signer, channel, p, resource.WithRetry(n.retry))
	if err != nil {
		return nil, err
	}
	config, err := resource.ExtractConfigFromBlock(block)
	if err != nil {
		return nil, err
	}
	chCfg, err := chconfig.New(channel, config)
	if err != nil {
		return nil, err
	}

	endpoints := chCfg.Orderers()
	names := n.ordererNames(channel, endpoints)
	if len(names) == 0 {
		return nil, errors.WithStack(status.New(status.ClientStatus, status.DiscoveryFailed.ToInt32(),
			fmt.Sprintf("no orderer of channel [%s] reported by peer [%s] is in the connection profile", channel, peerName),
			[]interface{}{endpoints}))
	}
	return names, nil
}

func (n *Network) ordererNames(channel string, endpoints []string) []string {
	var names []string
	for _, endpoint := range endpoints {
		name, ok := n.config.OrdererByURL(endpoint)
		if !ok {
			logger.Warnf("Orderer [%s] of channel [%s] is not in the connection profile", endpoint, channel)
			continue
		}
		names = append(names, name)
	}
	return names
}

// QueryInstantiatedChaincodes asks the channel peers, in turn, for the
// chaincodes instantiated on the channel. The first answer is returned.
func (n *Network) QueryInstantiatedChaincodes(ctx reqContext.Context, channel string) ([]*pb.ChaincodeInfo, error) {
	targets, err := n.channelPeers(channel, nil)
	if err != nil {
		return nil, err
	}

	var errs error
	for _, p := range targets {
		resp, err := resource.QueryInstantiatedChaincodes(ctx, n.signer, channel, p, resource.WithRetry(n.retry))
		if err != nil {
			logger.Debugf("Querying instantiated chaincodes of [%s] on [%s] failed: %s", channel, p.Name(), err)
			errs = multi.Append(errs, errors.WithMessagef(err, "peer [%s]", p.Name()))
			continue
		}
		return resp.Chaincodes, nil
	}
	return nil, errs
}

// QueryInstalledChaincodes returns the chaincodes installed on the peer
func (n *Network) QueryInstalledChaincodes(ctx reqContext.Context, peerName string) ([]*pb.ChaincodeInfo, error) {
	p, err := n.peer(peerName)
	if err != nil {
		return nil, err
	}

	resp, err := resource.QueryInstalledChaincodes(ctx, n.signer, p, resource.WithRetry(n.retry))
	if err != nil {
		return nil, err
	}
	return resp.Chaincodes, nil
}

// QueryChannelConfig returns the current configuration of the channel
func (n *Network) QueryChannelConfig(ctx reqContext.Context, channel string) (*common.Config, error) {
	chCfg, err := n.chConfigs.Get(ctx, channel)
	if err != nil {
		return nil, err
	}
	return chCfg.Config(), nil
}

// SendInstallProposal sends the chaincode package to the peer
func (n *Network) SendInstallProposal(ctx reqContext.Context, peerName string, ccPackage []byte) (*fab.TransactionProposalResponse, error) {
	p, err := n.peer(peerName)
	if err != nil {
		return nil, err
	}
	return resource.InstallChaincodePackage(ctx, n.signer, ccPackage, p)
}

// loadChannelConfig reads the configuration block of the channel from the
// first channel peer able to return it
func (n *Network) loadChannelConfig(ctx reqContext.Context, channel string) (*common.Config, error) {
	targets, err := n.channelPeers(channel, nil)
	if err != nil {
		return nil, err
	}

	var errs error
	for _, p := range targets {
		block, err := resource.QueryConfigBlock(ctx, n.signer, channel, p, resource.WithRetry(n.retry))
		if err != nil {
			errs = multi.Append(errs, errors.WithMessagef(err, "peer [%s]", p.Name()))
			continue
		}
		return resource.ExtractConfigFromBlock(block)
	}
	return nil, errs
}
