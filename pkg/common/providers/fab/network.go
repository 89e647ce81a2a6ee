/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fab

import (
	reqContext "context"
	"time"

	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
)

//go:generate mockgen -destination=mocks/mockfab.gen.go -package=mocks github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab Network,CommitHandler,CAClient

// TopologyQuerier answers peer-scoped membership queries.
type TopologyQuerier interface {
	// Peers returns the names of all peers known to the connection
	Peers() []string
	// QueryChannels returns the channels the peer has joined
	QueryChannels(ctx reqContext.Context, peer string) ([]string, error)
	// ChannelOrderers returns the names of the orderers serving the channel,
	// as seen through the peer
	ChannelOrderers(ctx reqContext.Context, peer, channel string) ([]string, error)
}

// LifecycleQuerier answers chaincode lifecycle queries and installs packages.
type LifecycleQuerier interface {
	QueryInstantiatedChaincodes(ctx reqContext.Context, channel string) ([]*pb.ChaincodeInfo, error)
	QueryInstalledChaincodes(ctx reqContext.Context, peer string) ([]*pb.ChaincodeInfo, error)
	QueryChannelConfig(ctx reqContext.Context, channel string) (*common.Config, error)
	SendInstallProposal(ctx reqContext.Context, peer string, ccPackage []byte) (*TransactionProposalResponse, error)
}

// Transactor proposes, validates, orders and tracks transactions on a channel.
type Transactor interface {
	SendProposal(ctx reqContext.Context, kind ProposalKind, channel string, request ChaincodeProposalRequest) (*ProposalOutcome, error)
	// ValidateResponses partitions responses into valid and invalid ones. It
	// fails when no response is valid or the valid ones disagree.
	ValidateResponses(responses []*TransactionProposalResponse) (valid, invalid []*TransactionProposalResponse, err error)
	CreateCommitEventHandler(txnID TransactionID, channel string, opts CommitHandlerOptions) (CommitHandler, error)
	SendTransaction(ctx reqContext.Context, channel string, outcome *ProposalOutcome) (*TransactionResponse, error)
}

// Network is the low level handle to a Fabric network held by a session.
type Network interface {
	TopologyQuerier
	LifecycleQuerier
	Transactor
	// CommitTimeout returns the commit wait bound configured for the channel
	CommitTimeout(channel string) time.Duration
	Close() error
}

// RegistrationRequest defines the attributes required to register a user with the CA
type RegistrationRequest struct {
	// Name is the unique name of the identity
	Name string
	// Type of identity being registered (e.g. "peer, app, user")
	Type string
	// MaxEnrollments is the number of times the secret can be reused to enroll.
	// if omitted, this defaults to max_enrollments configured on the server
	MaxEnrollments int
	// The identity's affiliation e.g. org1.department1
	Affiliation string
	// Secret is an optional password.  If not specified,
	// a random secret is generated.  In both cases, the secret
	// is returned from registration.
	Secret string
}

// CAClient provides enrollment and registration against a Fabric CA
type CAClient interface {
	CAName() string
	Enroll(ctx reqContext.Context, enrollmentID, secret string) (*msp.Enrollment, error)
	Register(ctx reqContext.Context, request *RegistrationRequest, registrar msp.SigningIdentity) (string, error)
}
