/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package status

import (
	"strconv"

	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	grpcCodes "google.golang.org/grpc/codes"
)

// Code represents a status code
type Code uint32

const (
	// OK is returned on success.
	OK Code = 0

	// Unknown represents status codes that are uncategorized or unknown
	Unknown Code = 1

	// ConnectionFailed is returned when a network connection attempt fails
	ConnectionFailed Code = 2

	// EndorsementMismatch is returned when the endorsements received do not match
	EndorsementMismatch Code = 3

	// EmptyCert is return when an empty cert is returned
	EmptyCert Code = 4

	// Timeout operation timed out
	Timeout Code = 5

	// NoPeersFound No peers were discovered/configured
	NoPeersFound Code = 6

	// MultipleErrors multiple errors occurred
	MultipleErrors Code = 7

	// SignatureVerificationFailed is when signature fails verification
	SignatureVerificationFailed Code = 8

	// MissingEndorsement is if an endorsement is missing
	MissingEndorsement Code = 9

	// AlreadyInstantiated a chaincode with the same name is already instantiated on the channel
	AlreadyInstantiated Code = 30

	// NotPreviouslyInstantiated an upgrade was requested for a chaincode that is not instantiated
	NotPreviouslyInstantiated Code = 31

	// AccessDenied the identity lacks the privilege required by a query
	AccessDenied Code = 32

	// ProposalRejected a peer did not endorse a proposal
	ProposalRejected Code = 33

	// InstallRejected the peer did not accept a chaincode install
	InstallRejected Code = 34

	// ValidationFailed the proposal responses could not be validated
	ValidationFailed Code = 35

	// EventHandlerCreationFailed no commit event handler could be created for a transaction
	EventHandlerCreationFailed Code = 36

	// OrderingRejected the ordering service did not accept a transaction
	OrderingRejected Code = 37

	// DiscoveryFailed a peer or channel query failed during discovery
	DiscoveryFailed Code = 38

	// CommitFailed the transaction was committed with a validation code other than VALID
	CommitFailed Code = 39

	// NotConnected the session has no active connection
	NotConnected Code = 40
)

// CodeName maps the codes in this packages to human-readable strings
var CodeName = map[int32]string{
	0:  "OK",
	1:  "UNKNOWN",
	2:  "CONNECTION_FAILED",
	3:  "ENDORSEMENT_MISMATCH",
	4:  "EMPTY_CERT",
	5:  "TIMEOUT",
	6:  "NO_PEERS_FOUND",
	7:  "MULTIPLE_ERRORS",
	8:  "SIGNATURE_VERIFICATION_FAILED",
	9:  "MISSING_ENDORSEMENT",
	30: "ALREADY_INSTANTIATED",
	31: "NOT_PREVIOUSLY_INSTANTIATED",
	32: "ACCESS_DENIED",
	33: "PROPOSAL_REJECTED",
	34: "INSTALL_REJECTED",
	35: "VALIDATION_FAILED",
	36: "EVENT_HANDLER_CREATION_FAILED",
	37: "ORDERING_REJECTED",
	38: "DISCOVERY_FAILED",
	39: "COMMIT_FAILED",
	40: "NOT_CONNECTED",
}

// Client status values to match against with errors.Is
var (
	AlreadyInstantiatedError        = New(ClientStatus, AlreadyInstantiated.ToInt32(), AlreadyInstantiated.String(), nil)
	NotPreviouslyInstantiatedError  = New(ClientStatus, NotPreviouslyInstantiated.ToInt32(), NotPreviouslyInstantiated.String(), nil)
	AccessDeniedError               = New(ClientStatus, AccessDenied.ToInt32(), AccessDenied.String(), nil)
	ProposalRejectedError           = New(ClientStatus, ProposalRejected.ToInt32(), ProposalRejected.String(), nil)
	InstallRejectedError            = New(ClientStatus, InstallRejected.ToInt32(), InstallRejected.String(), nil)
	ValidationFailedError           = New(ClientStatus, ValidationFailed.ToInt32(), ValidationFailed.String(), nil)
	EventHandlerCreationFailedError = New(ClientStatus, EventHandlerCreationFailed.ToInt32(), EventHandlerCreationFailed.String(), nil)
	OrderingRejectedError           = New(ClientStatus, OrderingRejected.ToInt32(), OrderingRejected.String(), nil)
	DiscoveryFailedError            = New(ClientStatus, DiscoveryFailed.ToInt32(), DiscoveryFailed.String(), nil)
	CommitFailedError               = New(ClientStatus, CommitFailed.ToInt32(), CommitFailed.String(), nil)
	NotConnectedError               = New(ClientStatus, NotConnected.ToInt32(), NotConnected.String(), nil)
	TimeoutError                    = New(ClientStatus, Timeout.ToInt32(), Timeout.String(), nil)
)

// ToInt32 cast to int32
func (c Code) ToInt32() int32 {
	return int32(c)
}

// String representation of the code
func (c Code) String() string {
	if s, ok := CodeName[c.ToInt32()]; ok {
		return s
	}
	return strconv.Itoa(int(c))
}

// ToSDKStatusCode cast to client status code
func ToSDKStatusCode(c int32) Code {
	return Code(c)
}

// ToGRPCStatusCode cast to gRPC status code
func ToGRPCStatusCode(c int32) grpcCodes.Code {
	return grpcCodes.Code(c)
}

// ToPeerStatusCode cast to peer status
func ToPeerStatusCode(c int32) common.Status {
	return ToFabricCommonStatusCode(c)
}

// ToOrdererStatusCode cast to orderer status
func ToOrdererStatusCode(c int32) common.Status {
	return ToFabricCommonStatusCode(c)
}

// ToFabricCommonStatusCode cast to common.Status
func ToFabricCommonStatusCode(c int32) common.Status {
	return common.Status(c)
}

// ToTransactionValidationCode cast to transaction validation status code
func ToTransactionValidationCode(c int32) pb.TxValidationCode {
	return pb.TxValidationCode(c)
}
