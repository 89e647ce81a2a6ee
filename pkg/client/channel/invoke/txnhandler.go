/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package invoke

import (
	reqContext "context"
	"fmt"
	"sync"
	"time"

	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/fabsdk/metrics"
)

var logger = logging.NewLogger("fabdev/client")

// ProposalHandler sends the proposal of the request to the endorsers
type ProposalHandler struct {
	next Handler
}

// Handle sends the proposal
func (h *ProposalHandler) Handle(requestContext *RequestContext, clientContext *ClientContext) {
	requestContext.Phase = Proposing
	request := requestContext.Request

	outcome, err := clientContext.Network.SendProposal(requestContext.Ctx, request.Kind, request.Channel, fab.ChaincodeProposalRequest{
		Name:         request.ChaincodeID,
		Version:      request.Version,
		Path:         request.Path,
		Fcn:          request.Fcn,
		Args:         request.Args,
		TransientMap: request.TransientMap,
		Policy:       request.Policy,
	})
	if outcome != nil {
		requestContext.Outcome = outcome
		requestContext.Response.Proposal = outcome.Proposal
		requestContext.Response.TransactionID = outcome.TxnID()
		requestContext.Response.Responses = outcome.Responses
	}
	if err != nil {
		requestContext.Error = proposalRejected(request, err)
		return
	}
	if outcome == nil {
		requestContext.Error = errors.WithStack(status.New(status.ClientStatus, status.ProposalRejected.ToInt32(),
			fmt.Sprintf("no outcome for %s proposal of chaincode [%s]", request.Kind, request.ChaincodeID), nil))
		return
	}

	logger.Debugf("Proposal [%s] received %d responses", outcome.TxnID(), len(outcome.Responses))

	//Delegate to next step if any
	if h.next != nil {
		h.next.Handle(requestContext, clientContext)
	}
}

func proposalRejected(request Request, err error) error {
	if errors.Is(err, status.ProposalRejectedError) {
		return err
	}
	return errors.WithStack(status.NewWithCause(status.ClientStatus, status.ProposalRejected.ToInt32(),
		fmt.Sprintf("sending %s proposal for chaincode [%s] failed", request.Kind, request.ChaincodeID), err))
}

// EndorsementValidationHandler splits the proposal responses into valid and
// invalid ones. The submission fails when no response is valid.
type EndorsementValidationHandler struct {
	next Handler
}

// Handle validates the proposal responses
func (h *EndorsementValidationHandler) Handle(requestContext *RequestContext, clientContext *ClientContext) {
	requestContext.Phase = Validating
	outcome := requestContext.Outcome

	valid, invalid, err := clientContext.Network.ValidateResponses(outcome.Responses)
	if err != nil {
		requestContext.Error = errors.WithStack(status.NewWithCause(status.ClientStatus, status.ValidationFailed.ToInt32(),
			fmt.Sprintf("endorsement validation of transaction [%s] failed", outcome.TxnID()), err))
		return
	}
	if len(valid) == 0 {
		requestContext.Error = errors.WithStack(status.New(status.ClientStatus, status.ValidationFailed.ToInt32(),
			fmt.Sprintf("no valid proposal response for transaction [%s]", outcome.TxnID()), nil))
		return
	}
	outcome.Valid = valid
	outcome.Invalid = invalid

	if len(invalid) > 0 {
		logger.Warnf("Transaction [%s]: %d of %d proposal responses are invalid", outcome.TxnID(), len(invalid), len(outcome.Responses))
	}

	if len(valid) > 0 {
		if payload := valid[0].ProposalResponse.GetResponse().GetPayload(); len(payload) > 0 {
			requestContext.Response.Payload = payload
		}
	}

	//Delegate to next step if any
	if h.next != nil {
		h.next.Handle(requestContext, clientContext)
	}
}

// CommitTxHandler orders the endorsed transaction and waits for its commit
type CommitTxHandler struct {
	next Handler
}

// Handle handles commit tx
func (h *CommitTxHandler) Handle(requestContext *RequestContext, clientContext *ClientContext) {
	requestContext.Phase = AwaitingEvents
	outcome := requestContext.Outcome
	txnID := outcome.TxnID()
	channel := requestContext.Request.Channel

	timeout := requestContext.Opts.Timeout
	if timeout <= 0 {
		timeout = clientContext.Network.CommitTimeout(channel)
	}

	handler, err := clientContext.Network.CreateCommitEventHandler(txnID, channel, fab.CommitHandlerOptions{
		Timeout: timeout,
		Peers:   requestContext.Opts.EventPeers,
	})
	if err != nil || handler == nil {
		requestContext.Error = errors.WithStack(status.NewWithCause(status.ClientStatus, status.EventHandlerCreationFailed.ToInt32(),
			fmt.Sprintf("creating commit event handler for transaction [%s] failed", txnID), err))
		return
	}

	cancel := cancelOnce(handler)
	defer cancel()

	if err := handler.StartListening(requestContext.Ctx); err != nil {
		requestContext.Error = errors.WithStack(status.NewWithCause(status.ClientStatus, status.EventHandlerCreationFailed.ToInt32(),
			fmt.Sprintf("listening for commit of transaction [%s] failed", txnID), err))
		return
	}

	requestContext.Phase = Ordering
	resp, err := clientContext.Network.SendTransaction(requestContext.Ctx, channel, outcome)
	if err != nil {
		requestContext.Error = errors.WithStack(status.NewWithCause(status.ClientStatus, status.OrderingRejected.ToInt32(),
			fmt.Sprintf("Failed to send peer responses for transaction %s to orderer", txnID), err))
		return
	}
	if resp.Status != common.Status_SUCCESS {
		requestContext.Error = errors.WithStack(status.New(status.ClientStatus, status.OrderingRejected.ToInt32(),
			fmt.Sprintf("Failed to send peer responses for transaction %s to orderer. Response status: %s", txnID, resp.Status),
			[]interface{}{resp.Orderer, resp.Info}))
		return
	}
	requestContext.Response.Orderer = resp.Orderer

	requestContext.Phase = Committing
	code, err := handler.Wait(requestContext.Ctx)
	requestContext.Response.TxValidationCode = code
	if err != nil {
		if errors.Is(err, status.TimeoutError) {
			requestContext.Error = err
			return
		}
		requestContext.Error = errors.WithStack(status.NewWithCause(status.ClientStatus, status.CommitFailed.ToInt32(),
			fmt.Sprintf("waiting for commit of transaction [%s] failed", txnID), err))
		return
	}
	if code != pb.TxValidationCode_VALID {
		requestContext.Error = errors.WithStack(status.New(status.ClientStatus, status.CommitFailed.ToInt32(),
			fmt.Sprintf("transaction [%s] was invalidated: %s", txnID, code), []interface{}{code}))
		return
	}

	logger.Infof("Transaction [%s] committed on channel [%s]", txnID, channel)
	requestContext.Phase = Committed

	//Delegate to next step if any
	if h.next != nil {
		h.next.Handle(requestContext, clientContext)
	}
}

// cancelOnce returns a function cancelling the handler on its first call only
func cancelOnce(handler fab.CommitHandler) func() {
	var once sync.Once
	return func() {
		once.Do(handler.Cancel)
	}
}

// NewQueryHandler returns query handler with chain of ProposalHandler and EndorsementValidationHandler
func NewQueryHandler(next ...Handler) Handler {
	return NewProposalHandler(
		NewEndorsementValidationHandler(next...),
	)
}

// NewExecuteHandler returns execute handler with chain of ProposalHandler, EndorsementValidationHandler and CommitTxHandler
func NewExecuteHandler(next ...Handler) Handler {
	return NewProposalHandler(
		NewEndorsementValidationHandler(
			NewCommitHandler(next...),
		),
	)
}

// NewProposalHandler returns a handler that sends a transaction proposal
func NewProposalHandler(next ...Handler) *ProposalHandler {
	return &ProposalHandler{next: getNext(next)}
}

// NewEndorsementValidationHandler returns a handler that validates an endorsement
func NewEndorsementValidationHandler(next ...Handler) *EndorsementValidationHandler {
	return &EndorsementValidationHandler{next: getNext(next)}
}

// NewCommitHandler returns a handler that commits transaction propsal responses
func NewCommitHandler(next ...Handler) *CommitTxHandler {
	return &CommitTxHandler{next: getNext(next)}
}

func getNext(next []Handler) Handler {
	if len(next) > 0 {
		return next[0]
	}
	return nil
}

// Submit proposes, orders and waits for the commit of the transaction
func Submit(ctx reqContext.Context, clientContext *ClientContext, request Request, opts ...Option) (*Response, error) {
	start := time.Now()
	requestContext := newRequestContext(ctx, request, opts)

	NewExecuteHandler().Handle(requestContext, clientContext)
	finish(requestContext)

	m := clientMetrics(clientContext)
	kind := request.Kind.String()
	m.Submissions.With("kind", kind, "outcome", outcomeOf(requestContext.Error)).Add(1)
	m.SubmissionDuration.With("kind", kind).Observe(time.Since(start).Seconds())

	if requestContext.Error != nil {
		return &requestContext.Response, requestContext.Error
	}
	return &requestContext.Response, nil
}

// Evaluate proposes the transaction and returns the validated result without ordering it
func Evaluate(ctx reqContext.Context, clientContext *ClientContext, request Request) (*Response, error) {
	requestContext := newRequestContext(ctx, request, nil)

	NewQueryHandler().Handle(requestContext, clientContext)

	outcome := metrics.Succeeded
	if requestContext.Error != nil {
		requestContext.Phase = Failed
		outcome = metrics.Failed
	}
	clientMetrics(clientContext).Queries.With("outcome", outcome).Add(1)

	if requestContext.Error != nil {
		return &requestContext.Response, requestContext.Error
	}
	return &requestContext.Response, nil
}

func newRequestContext(ctx reqContext.Context, request Request, opts []Option) *RequestContext {
	if ctx == nil {
		ctx = reqContext.Background()
	}
	requestContext := &RequestContext{Request: request, Ctx: ctx, Phase: Created}
	for _, opt := range opts {
		opt(&requestContext.Opts)
	}
	return requestContext
}

func finish(requestContext *RequestContext) {
	if requestContext.Error != nil {
		logger.Debugf("Transaction [%s] failed while %s: %s", requestContext.Response.TransactionID, requestContext.Phase, requestContext.Error)
		requestContext.Phase = Failed
	}
}

func clientMetrics(clientContext *ClientContext) *metrics.ClientMetrics {
	if clientContext.Metrics == nil {
		return metrics.NewDiscardMetrics()
	}
	return clientContext.Metrics
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.Committed
	}
	s, ok := status.FromError(err)
	if !ok || s.Group != status.ClientStatus {
		return metrics.Failed
	}
	switch status.Code(s.Code) {
	case status.ProposalRejected:
		return metrics.ProposalRejected
	case status.ValidationFailed:
		return metrics.ValidationFailed
	case status.EventHandlerCreationFailed:
		return metrics.HandlerFailed
	case status.OrderingRejected:
		return metrics.OrderingRejected
	case status.Timeout:
		return metrics.Timeout
	case status.CommitFailed:
		return metrics.CommitFailed
	default:
		return metrics.Failed
	}
}
