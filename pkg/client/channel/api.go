/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package channel

import (
	"time"

	pb "github.com/hyperledger/fabric-protos-go/peer"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/retry"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
)

// opts allows the user to specify more advanced options
type requestOptions struct {
	Timeout    time.Duration
	EventPeers []string
	Retry      retry.Opts
}

// RequestOption func for each Opts argument
type RequestOption func(opts *requestOptions) error

// Request contains the parameters to query and execute an invocation transaction
type Request struct {
	ChaincodeID  string
	Fcn          string
	Args         [][]byte
	TransientMap map[string][]byte
}

// Response contains response parameters for query and execute an invocation transaction
type Response struct {
	Payload          []byte
	TransactionID    fab.TransactionID
	TxValidationCode pb.TxValidationCode
	Proposal         *fab.TransactionProposal
	Responses        []*fab.TransactionProposalResponse
}

// WithTimeout bounds the wait for the commit event of Execute
func WithTimeout(timeout time.Duration) RequestOption {
	return func(o *requestOptions) error {
		o.Timeout = timeout
		return nil
	}
}

// WithEventPeers selects the peers listened on for the commit event of Execute
func WithEventPeers(peers ...string) RequestOption {
	return func(o *requestOptions) error {
		o.EventPeers = peers
		return nil
	}
}

// WithRetry sets the retry policy of Query
func WithRetry(retryOpt retry.Opts) RequestOption {
	return func(o *requestOptions) error {
		o.Retry = retryOpt
		return nil
	}
}

// ContractMetadata is the metadata returned by a contract API chaincode
type ContractMetadata struct {
	Contracts map[string]Contract `json:"contracts"`
}

// Contract describes one contract of a chaincode
type Contract struct {
	Name         string        `json:"name"`
	Transactions []Transaction `json:"transactions"`
}

// Transaction describes one transaction function of a contract
type Transaction struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters,omitempty"`
}

// Parameter describes one parameter of a transaction function
type Parameter struct {
	Name   string                 `json:"name"`
	Schema map[string]interface{} `json:"schema,omitempty"`
}
