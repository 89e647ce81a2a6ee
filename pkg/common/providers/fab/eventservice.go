/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fab

import (
	reqContext "context"
	"time"

	pb "github.com/hyperledger/fabric-protos-go/peer"
)

// CommitHandlerOptions configures a commit event handler
type CommitHandlerOptions struct {
	// Timeout bounds Wait. Zero means no bound other than the context.
	Timeout time.Duration
	// Peers to listen on. Empty means the channel peers of the client organization.
	Peers []string
}

// CommitHandler waits for the commit of a single transaction.
//
// StartListening must be called before the transaction is sent for ordering.
// Cancel releases the resources of the handler. It may be called at any time
// and more than once.
type CommitHandler interface {
	StartListening(ctx reqContext.Context) error
	// Wait blocks until the transaction is committed and returns its validation code
	Wait(ctx reqContext.Context) (pb.TxValidationCode, error)
	Cancel()
}

// TxStatusEvent contains the data for a transaction status event
type TxStatusEvent struct {
	TxID             string
	TxValidationCode pb.TxValidationCode
	BlockNumber      uint64
	SourceURL        string
}
