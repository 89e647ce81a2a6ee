/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package resource provides access to fabric network resource management, typically using system chaincode queries.
package resource

import (
	reqContext "context"
	"net/http"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/retry"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
	"github.com/hyperledger/fabric-devtools-go/pkg/fab/txn"
)

var logger = logging.NewLogger("fabdev/fab")

type options struct {
	retry retry.Opts
}

// Opt is a resource option
type Opt func(opts *options)

// WithRetry supplies retry options
func WithRetry(retry retry.Opts) Opt {
	return func(options *options) {
		options.retry = retry
	}
}

// QueryChannels queries the names of all the channels that a peer has joined.
func QueryChannels(reqCtx reqContext.Context, signer msp.SigningIdentity, peer fab.ProposalProcessor, opts ...Opt) (*pb.ChannelQueryResponse, error) {
	if peer == nil {
		return nil, errors.New("peer required")
	}

	payload, err := queryChaincodeWithTarget(reqCtx, signer, fab.SystemChannel, createChannelsInvokeRequest(), peer, getOpts(opts...))
	if err != nil {
		return nil, errors.WithMessage(err, "cscc.GetChannels failed")
	}

	response := new(pb.ChannelQueryResponse)
	if err := proto.Unmarshal(payload, response); err != nil {
		return nil, errors.Wrap(err, "unmarshal ChannelQueryResponse failed")
	}
	return response, nil
}

// QueryInstalledChaincodes queries the installed chaincodes on a peer.
// Returns the details of all chaincodes installed on a peer.
func QueryInstalledChaincodes(reqCtx reqContext.Context, signer msp.SigningIdentity, peer fab.ProposalProcessor, opts ...Opt) (*pb.ChaincodeQueryResponse, error) {
	if peer == nil {
		return nil, errors.New("peer required")
	}

	payload, err := queryChaincodeWithTarget(reqCtx, signer, fab.SystemChannel, createInstalledChaincodesInvokeRequest(), peer, getOpts(opts...))
	if err != nil {
		return nil, errors.WithMessage(err, "lscc.getinstalledchaincodes failed")
	}

	response := new(pb.ChaincodeQueryResponse)
	if err := proto.Unmarshal(payload, response); err != nil {
		return nil, errors.Wrap(err, "unmarshal ChaincodeQueryResponse failed")
	}
	return response, nil
}

// QueryInstantiatedChaincodes queries the chaincodes instantiated on a channel through one of its peers.
func QueryInstantiatedChaincodes(reqCtx reqContext.Context, signer msp.SigningIdentity, channel string, peer fab.ProposalProcessor, opts ...Opt) (*pb.ChaincodeQueryResponse, error) {
	if peer == nil {
		return nil, errors.New("peer required")
	}
	if channel == "" {
		return nil, errors.New("channel required")
	}

	payload, err := queryChaincodeWithTarget(reqCtx, signer, channel, createInstantiatedChaincodesInvokeRequest(), peer, getOpts(opts...))
	if err != nil {
		return nil, errors.WithMessage(err, "lscc.getchaincodes failed")
	}

	response := new(pb.ChaincodeQueryResponse)
	if err := proto.Unmarshal(payload, response); err != nil {
		return nil, errors.Wrap(err, "unmarshal ChaincodeQueryResponse failed")
	}
	return response, nil
}

// QueryConfigBlock returns the current configuration block of a channel, as seen by the peer.
func QueryConfigBlock(reqCtx reqContext.Context, signer msp.SigningIdentity, channel string, peer fab.ProposalProcessor, opts ...Opt) (*common.Block, error) {
	if peer == nil {
		return nil, errors.New("peer required")
	}
	if channel == "" {
		return nil, errors.New("channel required")
	}

	payload, err := queryChaincodeWithTarget(reqCtx, signer, fab.SystemChannel, createConfigBlockInvokeRequest(channel), peer, getOpts(opts...))
	if err != nil {
		return nil, errors.WithMessage(err, "cscc.GetConfigBlock failed")
	}

	block := new(common.Block)
	if err := proto.Unmarshal(payload, block); err != nil {
		return nil, errors.Wrap(err, "unmarshal config block failed")
	}
	return block, nil
}

// InstallChaincodePackage sends an lscc install proposal carrying the package
// to the peer. The response is returned whatever its status.
func InstallChaincodePackage(reqCtx reqContext.Context, signer msp.SigningIdentity, ccPackage []byte, peer fab.ProposalProcessor) (*fab.TransactionProposalResponse, error) {
	if peer == nil {
		return nil, errors.New("peer required")
	}

	cds, err := ParsePackage(ccPackage)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Installing chaincode %s@%s", cds.ChaincodeSpec.ChaincodeId.Name, cds.ChaincodeSpec.ChaincodeId.Version)

	txh, err := txn.NewHeader(signer, fab.SystemChannel)
	if err != nil {
		return nil, errors.WithMessage(err, "create transaction ID failed")
	}

	prop, err := txn.CreateChaincodeInvokeProposal(txh, createInstallInvokeRequest(ccPackage))
	if err != nil {
		return nil, errors.WithMessage(err, "creation of install chaincode proposal failed")
	}

	resps, err := txn.SendProposal(reqCtx, signer, prop, []fab.ProposalProcessor{peer})
	if err != nil {
		return nil, err
	}
	return resps[0], nil
}

func queryChaincodeWithTarget(reqCtx reqContext.Context, signer msp.SigningIdentity, channel string, request fab.ChaincodeInvokeRequest, target fab.ProposalProcessor, opts options) ([]byte, error) {
	txh, err := txn.NewHeader(signer, channel)
	if err != nil {
		return nil, errors.WithMessage(err, "create transaction ID failed")
	}

	tp, err := txn.CreateChaincodeInvokeProposal(txh, request)
	if err != nil {
		return nil, errors.WithMessage(err, "NewProposal failed")
	}

	resp, err := retry.NewInvoker(retry.New(opts.retry)).Invoke(reqCtx,
		func(ctx reqContext.Context) (interface{}, error) {
			return txn.SendProposal(ctx, signer, tp, []fab.ProposalProcessor{target})
		},
	)
	if err != nil {
		return nil, errors.WithMessage(err, "SendProposal failed")
	}

	tpr := resp.([]*fab.TransactionProposalResponse)
	if err := validateResponse(tpr[0]); err != nil {
		return nil, err
	}

	return tpr[0].ProposalResponse.GetResponse().GetPayload(), nil
}

// validateResponse keeps the peer message, so that conditions such as
// "access denied" remain visible to callers
func validateResponse(response *fab.TransactionProposalResponse) error {
	if response.Status != http.StatusOK {
		if s := status.NewFromProposalResponse(response.ProposalResponse, response.Endorser); s != nil {
			return s
		}
		return errors.Errorf("bad status from %s (%d)", response.Endorser, response.Status)
	}
	return nil
}

func getOpts(opts ...Opt) options {
	optionsValue := options{retry: retry.NoRetry}
	for _, opt := range opts {
		opt(&optionsValue)
	}
	return optionsValue
}

// ExtractConfigFromBlock extracts channel configuration from block
func ExtractConfigFromBlock(block *common.Block) (*common.Config, error) {
	if block == nil || block.Data == nil || len(block.Data.Data) == 0 {
		return nil, errors.New("invalid block")
	}
	blockPayload := block.Data.Data[0]

	envelope := &common.Envelope{}
	if err := proto.Unmarshal(blockPayload, envelope); err != nil {
		return nil, errors.Wrap(err, "unmarshal envelope from config block failed")
	}
	payload := &common.Payload{}
	if err := proto.Unmarshal(envelope.Payload, payload); err != nil {
		return nil, errors.Wrap(err, "unmarshal payload from envelope failed")
	}

	cfgEnv := &common.ConfigEnvelope{}
	if err := proto.Unmarshal(payload.Data, cfgEnv); err != nil {
		return nil, errors.Wrap(err, "unmarshal config envelope failed")
	}
	if cfgEnv.Config == nil {
		return nil, errors.New("config block has no configuration")
	}
	return cfgEnv.Config, nil
}
