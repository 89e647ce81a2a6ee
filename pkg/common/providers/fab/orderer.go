/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fab

import (
	reqContext "context"

	"github.com/hyperledger/fabric-protos-go/common"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
)

// Orderer The Orderer class represents a peer in the target blockchain network to which
// HFC sends a block of transactions of endorsed proposals requiring ordering.
type Orderer interface {
	URL() string
	// SendBroadcast returns the response of the ordering service, whatever
	// its status. An error is returned only when no response was obtained.
	SendBroadcast(ctx reqContext.Context, envelope *SignedEnvelope) (*ab.BroadcastResponse, error)
}

// A SignedEnvelope can can be sent to an orderer for broadcasting
type SignedEnvelope struct {
	Payload   []byte
	Signature []byte
}

// TransactionResponse contains information returned by the orderer.
type TransactionResponse struct {
	Orderer string
	Status  common.Status
	Info    string
}
