/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package network

import (
	reqContext "context"
	"fmt"
	"sort"
	"strings"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/client/common/verifier"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/multi"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/fab/events"
	"github.com/hyperledger/fabric-devtools-go/pkg/fab/txn"
)

// SendProposal creates the proposal for the request and sends it to the
// endorsing peers of the channel. Peers that could not be reached are left
// out of the responses; the call fails only when no peer answered.
func (n *Network) SendProposal(ctx reqContext.Context, kind fab.ProposalKind, channel string, request fab.ChaincodeProposalRequest) (*fab.ProposalOutcome, error) {
	targets, err := n.channelPeers(channel, endorsingPeer)
	if err != nil {
		return nil, err
	}

	txh, err := txn.NewHeader(n.signer, channel)
	if err != nil {
		return nil, errors.WithMessage(err, "create transaction ID failed")
	}

	var proposal *fab.TransactionProposal
	if kind == fab.InvokeProposal {
		proposal, err = txn.CreateChaincodeInvokeProposal(txh, fab.ChaincodeInvokeRequest{
			ChaincodeID:  request.Name,
			Lang:         pb.ChaincodeSpec_GOLANG,
			Fcn:          request.Fcn,
			Args:         request.Args,
			TransientMap: request.TransientMap,
		})
	} else {
		proposal, err = txn.CreateChaincodeDeployProposal(txh, kind, request)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "creating %s proposal failed", kind)
	}

	processors := make([]fab.ProposalProcessor, len(targets))
	for i, p := range targets {
		processors[i] = p
	}

	logger.Debugf("Sending %s proposal [%s] for chaincode [%s] to %d peers", kind, proposal.TxnID, request.Name, len(processors))
	responses, err := txn.SendProposal(ctx, n.signer, proposal, processors)
	outcome := &fab.ProposalOutcome{Proposal: proposal, Responses: responses}
	if err != nil {
		if len(responses) == 0 {
			return outcome, errors.WithStack(status.NewWithCause(status.ClientStatus, status.ProposalRejected.ToInt32(),
				fmt.Sprintf("sending %s proposal for transaction [%s] failed", kind, proposal.TxnID), err))
		}
		logger.Warnf("Some peers did not answer %s proposal [%s]: %s", kind, proposal.TxnID, err)
	}
	return outcome, nil
}

// ValidateResponses splits the responses on their status. A successful
// response must carry a valid endorsement signature, and all successful
// responses must agree on the payload.
func (n *Network) ValidateResponses(responses []*fab.TransactionProposalResponse) (valid, invalid []*fab.TransactionProposalResponse, err error) {
	if len(responses) == 0 {
		return nil, nil, errors.New("no proposal responses received")
	}

	v := &verifier.Signature{}
	var rejections error
	for _, r := range responses {
		if !verifier.IsSuccess(r) {
			logger.Warnf("Proposal rejected by [%s] with status %d: %s", r.Endorser, r.ProposalResponse.GetResponse().GetStatus(), r.ProposalResponse.GetResponse().GetMessage())
			rejections = multi.Append(rejections, rejection(r))
			invalid = append(invalid, r)
			continue
		}
		if err := v.Verify(r); err != nil {
			return nil, nil, err
		}
		valid = append(valid, r)
	}

	if len(valid) == 0 {
		return nil, invalid, errors.WithMessage(rejections, "no valid proposal responses received")
	}
	if err := v.Match(valid); err != nil {
		return nil, nil, err
	}
	return valid, invalid, nil
}

func rejection(r *fab.TransactionProposalResponse) error {
	if s := status.NewFromProposalResponse(r.ProposalResponse, r.Endorser); s != nil {
		return s
	}
	return errors.Errorf("empty proposal response from [%s]", r.Endorser)
}

// CreateCommitEventHandler returns a handler listening on opts.Peers, or on
// the event source peers of the channel
func (n *Network) CreateCommitEventHandler(txnID fab.TransactionID, channel string, opts fab.CommitHandlerOptions) (fab.CommitHandler, error) {
	var sources []events.EventSource
	if len(opts.Peers) > 0 {
		for _, name := range opts.Peers {
			p, err := n.peer(name)
			if err != nil {
				return nil, err
			}
			sources = append(sources, p)
		}
	} else {
		peers, err := n.channelPeers(channel, eventSource)
		if err != nil {
			return nil, err
		}
		for _, p := range peers {
			sources = append(sources, p)
		}
	}

	return events.NewCommitHandler(txnID, channel, n.signer, sources, opts)
}

// SendTransaction assembles the transaction from the valid responses and
// broadcasts it to the orderers of the channel
func (n *Network) SendTransaction(ctx reqContext.Context, channel string, outcome *fab.ProposalOutcome) (*fab.TransactionResponse, error) {
	if outcome == nil || outcome.Proposal == nil {
		return nil, errors.New("proposal outcome is required")
	}

	tx, err := txn.New(fab.TransactionRequest{Proposal: outcome.Proposal, ProposalResponses: outcome.Valid})
	if err != nil {
		return nil, errors.WithMessage(err, "creating transaction failed")
	}

	orderers, err := n.channelOrdererTargets(ctx, channel)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Sending transaction [%s] to %d orderers", outcome.TxnID(), len(orderers))
	return txn.Send(ctx, n.signer, tx, orderers)
}

func (n *Network) channelOrdererTargets(ctx reqContext.Context, channel string) ([]fab.Orderer, error) {
	names, ok := n.config.ChannelOrderers(channel)
	if !ok {
		chCfg, err := n.chConfigs.Get(ctx, channel)
		if err != nil {
			logger.Warnf("Orderers of channel [%s] unknown, using all orderers: %s", channel, err)
		} else {
			names = n.ordererNames(channel, chCfg.Orderers())
		}
	}
	if len(names) == 0 {
		names = sortedKeys(n.config.Orderers)
	}

	var orderers []fab.Orderer
	for _, name := range names {
		o, ok := n.orderers[strings.ToLower(name)]
		if !ok {
			logger.Warnf("Orderer [%s] of channel [%s] is not in the connection profile", name, channel)
			continue
		}
		orderers = append(orderers, o)
	}

	if len(orderers) == 0 {
		return nil, errors.Errorf("no orderers available for channel [%s]", channel)
	}
	return orderers, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
