/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resmgmt

import (
	reqContext "context"
	"fmt"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/client/channel/invoke"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
)

// InstantiateRequest contains the parameters of an instantiate or upgrade transaction
type InstantiateRequest struct {
	Name         string
	Version      string
	Channel      string
	Path         string
	Fcn          string
	Args         [][]byte
	TransientMap map[string][]byte
	// Policy is the endorsement policy. The channel default applies when nil.
	Policy *common.SignaturePolicyEnvelope
}

// Instantiate instantiates the installed chaincode on the channel and returns
// the payload of the init function
func (rc *Client) Instantiate(ctx reqContext.Context, req InstantiateRequest, options ...RequestOption) ([]byte, error) {
	payload, err := rc.deploy(ctx, fab.InstantiateProposal, req, options...)
	if err != nil {
		return nil, errors.WithMessage(err, "instantiate chaincode failed")
	}
	return payload, nil
}

// Upgrade moves the instantiated chaincode to the installed version and returns
// the payload of the init function
func (rc *Client) Upgrade(ctx reqContext.Context, req InstantiateRequest, options ...RequestOption) ([]byte, error) {
	payload, err := rc.deploy(ctx, fab.UpgradeProposal, req, options...)
	if err != nil {
		return nil, errors.WithMessage(err, "upgrade chaincode failed")
	}
	return payload, nil
}

func (rc *Client) deploy(ctx reqContext.Context, kind fab.ProposalKind, req InstantiateRequest, options ...RequestOption) ([]byte, error) {
	if err := checkRequiredDeployParams(req); err != nil {
		return nil, err
	}

	opts, err := prepareRequestOpts(options...)
	if err != nil {
		return nil, err
	}

	if err := rc.checkDeployPrecondition(ctx, kind, req); err != nil {
		return nil, err
	}

	var policy []byte
	if req.Policy != nil {
		policy, err = proto.Marshal(req.Policy)
		if err != nil {
			return nil, errors.Wrap(err, "marshal of endorsement policy failed")
		}
	}

	var invokeOpts []invoke.Option
	if opts.Timeout > 0 {
		invokeOpts = append(invokeOpts, invoke.WithTimeout(opts.Timeout))
	}
	if len(opts.EventPeers) > 0 {
		invokeOpts = append(invokeOpts, invoke.WithEventPeers(opts.EventPeers...))
	}

	logger.Infof("Sending %s of chaincode %s@%s on channel [%s]", kind, req.Name, req.Version, req.Channel)
	resp, err := invoke.Submit(ctx, &invoke.ClientContext{Network: rc.network, Metrics: rc.metrics}, invoke.Request{
		Kind:         kind,
		Channel:      req.Channel,
		ChaincodeID:  req.Name,
		Version:      req.Version,
		Path:         req.Path,
		Fcn:          req.Fcn,
		Args:         req.Args,
		TransientMap: req.TransientMap,
		Policy:       policy,
	}, invokeOpts...)
	if err != nil {
		return nil, err
	}

	logger.Infof("Chaincode %s@%s committed on channel [%s] in transaction [%s]", req.Name, req.Version, req.Channel, resp.TransactionID)
	return resp.Payload, nil
}

// checkDeployPrecondition requires the chaincode name to be absent from the
// channel for instantiate, and present for upgrade. Versions are not compared.
func (rc *Client) checkDeployPrecondition(ctx reqContext.Context, kind fab.ProposalKind, req InstantiateRequest) error {
	records, err := rc.ListInstantiated(ctx, req.Channel)
	if err != nil {
		return err
	}

	var current *ChaincodeRecord
	for i := range records {
		if records[i].Name == req.Name {
			current = &records[i]
			break
		}
	}

	switch {
	case kind == fab.InstantiateProposal && current != nil:
		return errors.WithStack(status.New(status.ClientStatus, status.AlreadyInstantiated.ToInt32(),
			fmt.Sprintf("chaincode [%s] is already instantiated on channel [%s] as %s", req.Name, req.Channel, current.Label), nil))
	case kind == fab.UpgradeProposal && current == nil:
		return errors.WithStack(status.New(status.ClientStatus, status.NotPreviouslyInstantiated.ToInt32(),
			fmt.Sprintf("chaincode [%s] is not instantiated on channel [%s]", req.Name, req.Channel), nil))
	}
	return nil
}

func checkRequiredDeployParams(req InstantiateRequest) error {
	if req.Name == "" || req.Version == "" || req.Channel == "" {
		return errors.New("Chaincode name, version and channel are required")
	}
	return nil
}
