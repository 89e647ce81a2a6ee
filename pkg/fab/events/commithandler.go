/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package events

import (
	"context"
	"sync"
	"time"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
	"google.golang.org/grpc"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/multi"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
)

// EventSource is a peer able to stream filtered blocks
type EventSource interface {
	Name() string
	URL() string
	Conn(ctx context.Context) (*grpc.ClientConn, error)
}

// CommitHandler waits for the commit of one transaction by listening to the
// filtered blocks of a channel. Sources are tried in order and the first one
// that accepts the seek request is used.
type CommitHandler struct {
	txID      fab.TransactionID
	channelID string
	signer    msp.SigningIdentity
	sources   []EventSource
	timeout   time.Duration

	mutex   sync.Mutex
	conn    *DeliverConnection
	started bool

	results    chan *fab.TxStatusEvent
	errs       chan error
	cancelOnce sync.Once
}

// NewCommitHandler returns a handler for the transaction on the channel
func NewCommitHandler(txID fab.TransactionID, channelID string, signer msp.SigningIdentity, sources []EventSource, opts fab.CommitHandlerOptions) (*CommitHandler, error) {
	if txID == fab.EmptyTransactionID {
		return nil, errors.New("transaction ID is required")
	}
	if signer == nil {
		return nil, errors.New("signing identity is required")
	}
	if len(sources) == 0 {
		return nil, errors.Errorf("no event source available for channel [%s]", channelID)
	}

	return &CommitHandler{
		txID:      txID,
		channelID: channelID,
		signer:    signer,
		sources:   sources,
		timeout:   opts.Timeout,
		results:   make(chan *fab.TxStatusEvent, 1),
		errs:      make(chan error, 1),
	}, nil
}

// StartListening connects to an event source and registers for the blocks
// committed from now on. It must be called before the transaction is ordered.
func (h *CommitHandler) StartListening(ctx context.Context) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.started {
		return errors.New("commit handler already started")
	}

	var errs error
	for _, source := range h.sources {
		conn, err := h.connect(ctx, source)
		if err != nil {
			logger.Debugf("Event source [%s] unavailable: %s", source.Name(), err)
			errs = multi.Append(errs, err)
			continue
		}

		logger.Debugf("Listening for commit of [%s] on [%s]", h.txID, source.Name())
		h.conn = conn
		h.started = true
		go h.listen(conn)
		return nil
	}

	return errors.WithMessagef(errs, "unable to listen for commit of transaction [%s]", h.txID)
}

func (h *CommitHandler) connect(ctx context.Context, source EventSource) (*DeliverConnection, error) {
	grpcConn, err := source.Conn(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := NewDeliverConnection(grpcConn, source.URL())
	if err != nil {
		return nil, err
	}

	if err := conn.Send(h.signer, h.channelID, SeekNewest()); err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "error sending seek info for channel [%s]", h.channelID)
	}
	return conn, nil
}

func (h *CommitHandler) listen(conn *DeliverConnection) {
	eventch := make(chan *pb.DeliverResponse)
	recvErr := make(chan error, 1)
	go func() {
		recvErr <- conn.Receive(eventch)
	}()

	for {
		select {
		case resp := <-eventch:
			done, err := h.handle(conn.URL(), resp)
			if err != nil {
				h.errs <- err
				return
			}
			if done {
				return
			}
		case err := <-recvErr:
			if err != nil {
				h.errs <- status.New(status.EventServerStatus, status.ConnectionFailed.ToInt32(), err.Error(), []interface{}{conn.URL()})
			}
			return
		}
	}
}

func (h *CommitHandler) handle(sourceURL string, resp *pb.DeliverResponse) (bool, error) {
	switch t := resp.Type.(type) {
	case *pb.DeliverResponse_FilteredBlock:
		block := t.FilteredBlock
		logger.Debugf("Received filtered block #%d from [%s]", block.Number, sourceURL)
		for _, tx := range block.FilteredTransactions {
			if tx.Txid != string(h.txID) {
				continue
			}
			h.results <- &fab.TxStatusEvent{
				TxID:             tx.Txid,
				TxValidationCode: tx.TxValidationCode,
				BlockNumber:      block.Number,
				SourceURL:        sourceURL,
			}
			return true, nil
		}
		return false, nil
	case *pb.DeliverResponse_Status:
		logger.Debugf("Received deliver response status from [%s]: %s", sourceURL, t.Status)
		return true, status.New(status.EventServerStatus, int32(t.Status), "deliver service returned status", []interface{}{sourceURL})
	default:
		logger.Debugf("unknown response type from deliver service %T", t)
		return false, nil
	}
}

// Wait blocks until the transaction is found in a committed block, the
// handler timeout elapses or the context is done.
func (h *CommitHandler) Wait(ctx context.Context) (pb.TxValidationCode, error) {
	h.mutex.Lock()
	started := h.started
	h.mutex.Unlock()
	if !started {
		return pb.TxValidationCode_INVALID_OTHER_REASON, errors.New("commit handler is not listening")
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	select {
	case event := <-h.results:
		logger.Debugf("Transaction [%s] committed in block #%d with code %s", event.TxID, event.BlockNumber, event.TxValidationCode)
		return event.TxValidationCode, nil
	case err := <-h.errs:
		return pb.TxValidationCode_INVALID_OTHER_REASON, err
	case <-ctx.Done():
		return pb.TxValidationCode_INVALID_OTHER_REASON, errors.WithStack(status.New(status.ClientStatus, status.Timeout.ToInt32(),
			"timeout waiting for commit of transaction", []interface{}{string(h.txID), ctx.Err().Error()}))
	}
}

// Cancel stops listening. Only the first call has an effect.
func (h *CommitHandler) Cancel() {
	h.cancelOnce.Do(func() {
		h.mutex.Lock()
		defer h.mutex.Unlock()

		logger.Debugf("Cancelling commit handler of [%s]", h.txID)
		if h.conn != nil {
			h.conn.Close()
		}
	})
}
