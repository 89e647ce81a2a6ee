/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package chconfig

import (
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/fabric-devtools-go/pkg/fab/mocks"
)

const channelID = "mychannel"

func TestChannelCfg(t *testing.T) {
	builder := &mocks.MockConfigBuilder{
		ApplicationOrgs:  map[string]string{"Org2": "Org2MSP", "Org1": "Org1MSP"},
		OrdererOrgs:      map[string][]string{"OrdererMSP": {"orderer.example.com:7050", "orderer2.example.com:7050"}},
		OrdererAddresses: []string{"orderer.example.com:7050", "legacy.example.com:7050"},
	}

	config := builder.Build()
	cfg, err := New(channelID, config)
	require.NoError(t, err)
	assert.Equal(t, channelID, cfg.ID())
	assert.Same(t, config, cfg.Config())
	assert.Equal(t, []string{"Org1MSP", "Org2MSP"}, cfg.MSPIDs())
	assert.Equal(t, []string{"orderer.example.com:7050", "orderer2.example.com:7050", "legacy.example.com:7050"}, cfg.Orderers())
	assert.Empty(t, cfg.AnchorPeers())
}

func TestChannelCfgAnchorPeers(t *testing.T) {
	builder := &mocks.MockConfigBuilder{ApplicationOrgs: map[string]string{"Org1": "Org1MSP"}}
	config := builder.Build()

	anchorPeers, err := proto.Marshal(&pb.AnchorPeers{AnchorPeers: []*pb.AnchorPeer{{Host: "peer0.org1.example.com", Port: 7051}}})
	require.NoError(t, err)
	config.ChannelGroup.Groups[applicationGroupKey].Groups["Org1"].Values["AnchorPeers"] = &common.ConfigValue{Value: anchorPeers}

	cfg, err := New(channelID, config)
	require.NoError(t, err)
	assert.Equal(t, []AnchorPeer{{Org: "Org1", Host: "peer0.org1.example.com", Port: 7051}}, cfg.AnchorPeers())
	assert.Empty(t, cfg.Orderers())
}

func TestChannelCfgErrors(t *testing.T) {
	_, err := New(channelID, nil)
	assert.EqualError(t, err, "channel [mychannel] has an empty configuration")

	_, err = New(channelID, &common.Config{})
	assert.Error(t, err)

	builder := &mocks.MockConfigBuilder{ApplicationOrgs: map[string]string{"Org1": "Org1MSP"}}
	config := builder.Build()
	config.ChannelGroup.Groups[applicationGroupKey].Groups["Org1"].Values["MSP"] = &common.ConfigValue{Value: []byte("garbage")}
	_, err = New(channelID, config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading application org [Org1] of channel [mychannel] failed")

	config = builder.Build()
	config.ChannelGroup.Values[ordererAddressesKey] = &common.ConfigValue{Value: []byte("garbage")}
	_, err = New(channelID, config)
	assert.Error(t, err)
}
