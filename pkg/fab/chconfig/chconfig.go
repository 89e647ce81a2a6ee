/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package chconfig reads the parts of a channel configuration that the
// client needs: application organizations, anchor peers and orderer endpoints.
package chconfig

import (
	"sort"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-config/configtx"
	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
)

var logger = logging.NewLogger("fabdev/fab")

const (
	applicationGroupKey = "Application"
	ordererGroupKey     = "Orderer"
	ordererAddressesKey = "OrdererAddresses"
)

// AnchorPeer is an anchor peer declared by an application organization
type AnchorPeer struct {
	Org  string
	Host string
	Port int
}

// ChannelCfg contains channel configuration
type ChannelCfg struct {
	id          string
	mspIDs      []string
	anchorPeers []AnchorPeer
	orderers    []string
	config      *common.Config
}

// ID returns the channel ID
func (cfg *ChannelCfg) ID() string {
	return cfg.id
}

// MSPIDs returns the sorted MSP IDs of the application organizations
func (cfg *ChannelCfg) MSPIDs() []string {
	return cfg.mspIDs
}

// AnchorPeers returns anchor peers
func (cfg *ChannelCfg) AnchorPeers() []AnchorPeer {
	return cfg.anchorPeers
}

// Orderers returns the orderer endpoints (host:port) in configuration order.
// Organization endpoints come first, followed by the channel level addresses.
func (cfg *ChannelCfg) Orderers() []string {
	return cfg.orderers
}

// Config returns the configuration the values were read from
func (cfg *ChannelCfg) Config() *common.Config {
	return cfg.config
}

// New extracts the channel configuration
func New(channelID string, config *common.Config) (*ChannelCfg, error) {
	if config == nil || config.ChannelGroup == nil {
		return nil, errors.Errorf("channel [%s] has an empty configuration", channelID)
	}

	ctx := configtx.New(config)
	cfg := &ChannelCfg{id: channelID, config: config}

	if err := cfg.loadApplicationOrgs(&ctx, config.ChannelGroup.Groups[applicationGroupKey]); err != nil {
		return nil, err
	}
	if err := cfg.loadOrderers(&ctx, config.ChannelGroup); err != nil {
		return nil, err
	}

	logger.Debugf("channel [%s] config: orgs %v, orderers %v", channelID, cfg.mspIDs, cfg.orderers)
	return cfg, nil
}

func (cfg *ChannelCfg) loadApplicationOrgs(ctx *configtx.ConfigTx, group *common.ConfigGroup) error {
	if group == nil {
		logger.Debugf("channel [%s] has no application group", cfg.id)
		return nil
	}

	for _, name := range sortedKeys(group.Groups) {
		org := ctx.Application().Organization(name)
		orgCfg, err := org.Configuration()
		if err != nil {
			return errors.Wrapf(err, "reading application org [%s] of channel [%s] failed", name, cfg.id)
		}
		cfg.mspIDs = append(cfg.mspIDs, orgCfg.MSP.Name)

		for _, ap := range orgCfg.AnchorPeers {
			cfg.anchorPeers = append(cfg.anchorPeers, AnchorPeer{Org: name, Host: ap.Host, Port: ap.Port})
		}
	}
	sort.Strings(cfg.mspIDs)
	return nil
}

func (cfg *ChannelCfg) loadOrderers(ctx *configtx.ConfigTx, channelGroup *common.ConfigGroup) error {
	seen := make(map[string]bool)
	add := func(addresses ...string) {
		for _, address := range addresses {
			if !seen[address] {
				seen[address] = true
				cfg.orderers = append(cfg.orderers, address)
			}
		}
	}

	if group := channelGroup.Groups[ordererGroupKey]; group != nil {
		for _, name := range sortedKeys(group.Groups) {
			orgCfg, err := ctx.Orderer().Organization(name).Configuration()
			if err != nil {
				return errors.Wrapf(err, "reading orderer org [%s] of channel [%s] failed", name, cfg.id)
			}
			add(orgCfg.OrdererEndpoints...)
		}
	}

	// Channels created before v1.4.2 only carry the global addresses
	if value, ok := channelGroup.Values[ordererAddressesKey]; ok {
		addresses := &common.OrdererAddresses{}
		if err := proto.Unmarshal(value.Value, addresses); err != nil {
			return errors.Wrap(err, "unmarshal orderer addresses from config failed")
		}
		add(addresses.Addresses...)
	}
	return nil
}

func sortedKeys(groups map[string]*common.ConfigGroup) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
