/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fab

import (
	reqContext "context"

	pb "github.com/hyperledger/fabric-protos-go/peer"
)

// ProposalProcessor simulates transaction proposal, so that a client can submit the result for ordering.
type ProposalProcessor interface {
	ProcessTransactionProposal(reqContext.Context, ProcessProposalRequest) (*TransactionProposalResponse, error)
}

// TransactionID provides the identifier of a Fabric transaction proposal.
type TransactionID string

// EmptyTransactionID represents a non-existing transaction (usually due to error).
const EmptyTransactionID = TransactionID("")

// SystemChannel is the channel used for peer-scoped system chaincode queries.
const SystemChannel = ""

// TransactionHeader provides a handle to transaction metadata.
type TransactionHeader interface {
	TransactionID() TransactionID
	Creator() []byte
	Nonce() []byte
	ChannelID() string
}

// ChaincodeInvokeRequest contains the parameters for sending a transaction proposal.
type ChaincodeInvokeRequest struct {
	ChaincodeID  string
	Lang         pb.ChaincodeSpec_Type
	TransientMap map[string][]byte
	Fcn          string
	Args         [][]byte
}

// TransactionProposal contains a marashalled transaction proposal.
type TransactionProposal struct {
	TxnID TransactionID
	*pb.Proposal
}

// ProcessProposalRequest requests simulation of a proposed transaction from transaction processors.
type ProcessProposalRequest struct {
	SignedProposal *pb.SignedProposal
}

// TransactionProposalResponse respresents the result of transaction proposal processing.
type TransactionProposalResponse struct {
	Endorser string
	// Status is the EndorserStatus
	Status int32
	// ChaincodeStatus is the status returned by Chaincode
	ChaincodeStatus int32
	*pb.ProposalResponse
}

// TransactionRequest holds the endorsed proposal used to assemble a transaction.
type TransactionRequest struct {
	Proposal          *TransactionProposal
	ProposalResponses []*TransactionProposalResponse
}

// Transaction is an endorsed transaction ready for ordering.
type Transaction struct {
	Proposal    *TransactionProposal
	Transaction *pb.Transaction
}

// ProposalKind selects how a chaincode proposal is addressed.
type ProposalKind int

const (
	// InvokeProposal calls a function of the chaincode itself
	InvokeProposal ProposalKind = iota
	// InstantiateProposal deploys the chaincode on a channel through lscc
	InstantiateProposal
	// UpgradeProposal replaces the instantiated version through lscc
	UpgradeProposal
)

func (k ProposalKind) String() string {
	switch k {
	case InstantiateProposal:
		return "instantiate"
	case UpgradeProposal:
		return "upgrade"
	default:
		return "invoke"
	}
}

// ChaincodeProposalRequest describes the chaincode call carried by a proposal.
// For instantiate and upgrade Fcn and Args are the init call.
type ChaincodeProposalRequest struct {
	Name         string
	Version      string
	Path         string
	Fcn          string
	Args         [][]byte
	TransientMap map[string][]byte
	// Policy is a marshalled common.SignaturePolicyEnvelope. Empty means the
	// peer default policy.
	Policy []byte
}

// ProposalOutcome is the result of sending a proposal to the endorsers of a
// channel. Valid and Invalid are filled in by response validation.
type ProposalOutcome struct {
	Proposal  *TransactionProposal
	Responses []*TransactionProposalResponse
	Valid     []*TransactionProposalResponse
	Invalid   []*TransactionProposalResponse
}

// TxnID returns the transaction id of the proposal
func (o *ProposalOutcome) TxnID() TransactionID {
	if o == nil || o.Proposal == nil {
		return EmptyTransactionID
	}
	return o.Proposal.TxnID
}
