/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package invoke provides the handlers for submitting chaincode transactions.
package invoke

import (
	reqContext "context"
	"time"

	pb "github.com/hyperledger/fabric-protos-go/peer"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/fabsdk/metrics"
)

// Phase is the step a submission has reached
type Phase int

// Submission phases, in order. A submission ends in Committed or Failed.
const (
	Created Phase = iota
	Proposing
	Validating
	AwaitingEvents
	Ordering
	Committing
	Committed
	Failed
)

var phaseNames = map[Phase]string{
	Created:        "created",
	Proposing:      "proposing",
	Validating:     "validating",
	AwaitingEvents: "awaiting_events",
	Ordering:       "ordering",
	Committing:     "committing",
	Committed:      "committed",
	Failed:         "failed",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// Opts allows the user to specify more advanced options
type Opts struct {
	// Timeout bounds the wait for the commit event. Zero means the commit
	// timeout of the channel.
	Timeout time.Duration
	// EventPeers are the peers listened on for the commit event. Empty
	// means the event sources of the channel.
	EventPeers []string
}

// Option sets an advanced option of a request
type Option func(opts *Opts)

// WithTimeout bounds the wait for the commit event
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Opts) {
		opts.Timeout = timeout
	}
}

// WithEventPeers selects the peers listened on for the commit event
func WithEventPeers(peers ...string) Option {
	return func(opts *Opts) {
		opts.EventPeers = peers
	}
}

// Request contains the parameters of a chaincode transaction
type Request struct {
	Kind         fab.ProposalKind
	Channel      string
	ChaincodeID  string
	Version      string
	Path         string
	Fcn          string
	Args         [][]byte
	TransientMap map[string][]byte
	Policy       []byte
}

// Response contains response parameters for query and execute transaction
type Response struct {
	Payload          []byte
	TransactionID    fab.TransactionID
	TxValidationCode pb.TxValidationCode
	Proposal         *fab.TransactionProposal
	Responses        []*fab.TransactionProposalResponse
	Orderer          string
}

// Handler for chaining transaction executions
type Handler interface {
	Handle(context *RequestContext, clientContext *ClientContext)
}

// ClientContext contains context parameters for handler execution
type ClientContext struct {
	Network fab.Network
	Metrics *metrics.ClientMetrics
}

// RequestContext contains request, opts, response parameters for handler execution
type RequestContext struct {
	Request  Request
	Opts     Opts
	Response Response
	Error    error
	Ctx      reqContext.Context
	Phase    Phase
	// Outcome is set once the proposal was sent
	Outcome *fab.ProposalOutcome
}
