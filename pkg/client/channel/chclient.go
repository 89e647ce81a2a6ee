/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package channel enables access to a channel on a Fabric network.
package channel

import (
	reqContext "context"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/client/channel/invoke"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/retry"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/context"
	"github.com/hyperledger/fabric-devtools-go/pkg/fabsdk/metrics"
)

var logger = logging.NewLogger("fabdev/client")

// MetadataFunction is the function answering the contract metadata of a contract API chaincode
const MetadataFunction = "org.hyperledger.fabric:GetMetadata"

// Client enables access to a channel on a Fabric network.
//
// A channel client instance provides a handler to interact with peers on specified channel.
// An application that requires interaction with multiple channels should create a separate
// instance of the channel client for each channel.
type Client struct {
	channelID string
	network   fab.Network
	metrics   *metrics.ClientMetrics
}

// ClientOption describes a functional parameter for the New constructor
type ClientOption func(*Client) error

// WithMetrics records the transactions of the client
func WithMetrics(m *metrics.ClientMetrics) ClientOption {
	return func(client *Client) error {
		client.metrics = m
		return nil
	}
}

// New returns a Client instance.
func New(clientProvider context.ClientProvider, channelID string, opts ...ClientOption) (*Client, error) {
	if channelID == "" {
		return nil, errors.New("channel ID is required")
	}

	ctx, err := clientProvider()
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create client context")
	}

	network, err := ctx.Network()
	if err != nil {
		return nil, err
	}

	channelClient := &Client{
		channelID: channelID,
		network:   network,
		metrics:   metrics.NewDiscardMetrics(),
	}
	for _, param := range opts {
		if err := param(channelClient); err != nil {
			return nil, errors.WithMessage(err, "failed to apply client option")
		}
	}
	return channelClient, nil
}

// Query chaincode using request and optional options provided
func (cc *Client) Query(ctx reqContext.Context, request Request, options ...RequestOption) (Response, error) {
	txnOpts, err := cc.prepareOpts(request, options...)
	if err != nil {
		return Response{}, err
	}

	invoker := retry.NewInvoker(retry.New(txnOpts.Retry), retry.WithBeforeRetry(func(err error) {
		logger.Infof("Retrying query of [%s] on error %s", request.ChaincodeID, err)
	}))
	resp, err := invoker.Invoke(ctx, func(ctx reqContext.Context) (interface{}, error) {
		return invoke.Evaluate(ctx, cc.clientContext(), cc.invokeRequest(request))
	})
	if err != nil {
		return Response{}, err
	}
	return newResponse(resp.(*invoke.Response)), nil
}

// Execute prepares and executes transaction using request and optional options provided
func (cc *Client) Execute(ctx reqContext.Context, request Request, options ...RequestOption) (Response, error) {
	txnOpts, err := cc.prepareOpts(request, options...)
	if err != nil {
		return Response{}, err
	}

	var invokeOpts []invoke.Option
	if txnOpts.Timeout > 0 {
		invokeOpts = append(invokeOpts, invoke.WithTimeout(txnOpts.Timeout))
	}
	if len(txnOpts.EventPeers) > 0 {
		invokeOpts = append(invokeOpts, invoke.WithEventPeers(txnOpts.EventPeers...))
	}

	resp, err := invoke.Submit(ctx, cc.clientContext(), cc.invokeRequest(request), invokeOpts...)
	if resp == nil {
		return Response{}, err
	}
	return newResponse(resp), err
}

// GetMetadata returns the contract metadata of the chaincode. It returns nil
// when the chaincode does not implement the contract API.
func (cc *Client) GetMetadata(ctx reqContext.Context, chaincodeID string) (*ContractMetadata, error) {
	resp, err := cc.Query(ctx, Request{ChaincodeID: chaincodeID, Fcn: MetadataFunction})
	if err != nil {
		if errors.Is(err, status.ValidationFailedError) {
			logger.Debugf("Chaincode [%s] on channel [%s] provides no metadata: %s", chaincodeID, cc.channelID, err)
			return nil, nil
		}
		return nil, errors.WithMessagef(err, "querying metadata of chaincode [%s] failed", chaincodeID)
	}

	metadata := &ContractMetadata{}
	if err := json.Unmarshal(resp.Payload, metadata); err != nil {
		return nil, errors.Wrapf(err, "decoding metadata of chaincode [%s] failed", chaincodeID)
	}
	return metadata, nil
}

// ContractNames returns the contracts of the metadata in lexical order
func (m *ContractMetadata) ContractNames() []string {
	names := make([]string, 0, len(m.Contracts))
	for name := range m.Contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (cc *Client) clientContext() *invoke.ClientContext {
	return &invoke.ClientContext{Network: cc.network, Metrics: cc.metrics}
}

func (cc *Client) invokeRequest(request Request) invoke.Request {
	return invoke.Request{
		Kind:         fab.InvokeProposal,
		Channel:      cc.channelID,
		ChaincodeID:  request.ChaincodeID,
		Fcn:          request.Fcn,
		Args:         request.Args,
		TransientMap: request.TransientMap,
	}
}

// prepareOpts validates the request and reads the options
func (cc *Client) prepareOpts(request Request, options ...RequestOption) (requestOptions, error) {
	if request.ChaincodeID == "" || request.Fcn == "" {
		return requestOptions{}, errors.New("ChaincodeID and Fcn are required")
	}

	txnOpts := requestOptions{Retry: retry.NoRetry}
	for _, option := range options {
		if err := option(&txnOpts); err != nil {
			return txnOpts, errors.WithMessage(err, "Failed to read opts")
		}
	}
	return txnOpts, nil
}

func newResponse(resp *invoke.Response) Response {
	return Response{
		Payload:          resp.Payload,
		TransactionID:    resp.TransactionID,
		TxValidationCode: resp.TxValidationCode,
		Proposal:         resp.Proposal,
		Responses:        resp.Responses,
	}
}
