/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/common"
	mb "github.com/hyperledger/fabric-protos-go/msp"
	pb "github.com/hyperledger/fabric-protos-go/peer"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
)

const (
	applicationGroupKey = "Application"
	ordererGroupKey     = "Orderer"
	mspKey              = "MSP"
	endpointsKey        = "Endpoints"
	ordererAddressesKey = "OrdererAddresses"
)

// NewFilteredBlock returns a filtered block
func NewFilteredBlock(channelID string, number uint64, filteredTx ...*pb.FilteredTransaction) *pb.FilteredBlock {
	return &pb.FilteredBlock{
		ChannelId:            channelID,
		Number:               number,
		FilteredTransactions: filteredTx,
	}
}

// NewFilteredTx returns a filtered transaction
func NewFilteredTx(txID string, txValidationCode pb.TxValidationCode) *pb.FilteredTransaction {
	return &pb.FilteredTransaction{
		Txid:             txID,
		TxValidationCode: txValidationCode,
		Type:             common.HeaderType_ENDORSER_TRANSACTION,
	}
}

// NewProposalResponsePayload returns a marshalled proposal response payload
// whose chaincode action carries the given status and payload
func NewProposalResponsePayload(ccStatus int32, payload []byte) []byte {
	action := &pb.ChaincodeAction{
		Response: &pb.Response{Status: ccStatus, Payload: payload},
	}
	return marshalOrPanic(&pb.ProposalResponsePayload{
		ProposalHash: []byte("proposal hash"),
		Extension:    marshalOrPanic(action),
	})
}

// NewEndorsedResponse returns a successful proposal response whose payload
// is endorsed by signer, as a peer of signer's organization would do
func NewEndorsedResponse(signer msp.SigningIdentity, ccStatus int32, payload []byte) (*pb.ProposalResponse, error) {
	prp := NewProposalResponsePayload(ccStatus, payload)
	endorser, err := signer.Serialize()
	if err != nil {
		return nil, err
	}
	signature, err := signer.Sign(append(append([]byte{}, prp...), endorser...))
	if err != nil {
		return nil, err
	}
	return &pb.ProposalResponse{
		Version:     1,
		Response:    &pb.Response{Status: 200, Payload: payload},
		Payload:     prp,
		Endorsement: &pb.Endorsement{Endorser: endorser, Signature: signature},
	}, nil
}

// MockConfigBuilder is used to build a mock channel configuration
type MockConfigBuilder struct {
	// ApplicationOrgs maps an application org group name to its MSP ID
	ApplicationOrgs map[string]string
	// OrdererOrgs maps an orderer org MSP ID to its orderer endpoints
	OrdererOrgs map[string][]string
	// OrdererAddresses are the channel level orderer addresses
	OrdererAddresses []string
	// RootCert is the PEM root certificate of every MSP
	RootCert []byte
}

// Build returns the channel configuration
func (b *MockConfigBuilder) Build() *common.Config {
	appGroup := newConfigGroup()
	for name, mspID := range b.ApplicationOrgs {
		appGroup.Groups[name] = b.buildOrgGroup(mspID, nil)
	}

	ordererGroup := newConfigGroup()
	for mspID, endpoints := range b.OrdererOrgs {
		ordererGroup.Groups[mspID] = b.buildOrgGroup(mspID, endpoints)
	}

	channelGroup := newConfigGroup()
	channelGroup.Groups[applicationGroupKey] = appGroup
	channelGroup.Groups[ordererGroupKey] = ordererGroup
	if len(b.OrdererAddresses) > 0 {
		channelGroup.Values[ordererAddressesKey] = &common.ConfigValue{
			Value: marshalOrPanic(&common.OrdererAddresses{Addresses: b.OrdererAddresses}),
		}
	}

	return &common.Config{ChannelGroup: channelGroup}
}

// BuildBlock returns the channel configuration wrapped in a config block
func (b *MockConfigBuilder) BuildBlock(channelID string) *common.Block {
	chdr := &common.ChannelHeader{Type: int32(common.HeaderType_CONFIG), ChannelId: channelID}
	payload := &common.Payload{
		Header: &common.Header{ChannelHeader: marshalOrPanic(chdr)},
		Data:   marshalOrPanic(&common.ConfigEnvelope{Config: b.Build()}),
	}
	envelope := &common.Envelope{Payload: marshalOrPanic(payload)}

	return &common.Block{
		Header: &common.BlockHeader{Number: 0},
		Data:   &common.BlockData{Data: [][]byte{marshalOrPanic(envelope)}},
	}
}

func (b *MockConfigBuilder) buildOrgGroup(mspID string, endpoints []string) *common.ConfigGroup {
	fabricMSPConfig := &mb.FabricMSPConfig{
		Name: mspID,
		CryptoConfig: &mb.FabricCryptoConfig{
			SignatureHashFamily:            "SHA2",
			IdentityIdentifierHashFunction: "SHA256",
		},
	}
	if len(b.RootCert) > 0 {
		fabricMSPConfig.RootCerts = [][]byte{b.RootCert}
	}
	mspConfig := &mb.MSPConfig{Type: 0, Config: marshalOrPanic(fabricMSPConfig)}

	group := newConfigGroup()
	group.Values[mspKey] = &common.ConfigValue{Value: marshalOrPanic(mspConfig)}
	if len(endpoints) > 0 {
		group.Values[endpointsKey] = &common.ConfigValue{
			Value: marshalOrPanic(&common.OrdererAddresses{Addresses: endpoints}),
		}
	}
	return group
}

func newConfigGroup() *common.ConfigGroup {
	return &common.ConfigGroup{
		Groups:   map[string]*common.ConfigGroup{},
		Values:   map[string]*common.ConfigValue{},
		Policies: map[string]*common.ConfigPolicy{},
	}
}

func marshalOrPanic(pb proto.Message) []byte {
	data, err := proto.Marshal(pb)
	if err != nil {
		panic(err)
	}
	return data
}
