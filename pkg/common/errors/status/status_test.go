/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package status

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/multi"
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	grpccodes "google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

func TestStatusConstructors(t *testing.T) {
	s := New(EndorserClientStatus, ConnectionFailed.ToInt32(), "test", nil)
	assert.NotNil(t, s, "Expected status to be constructed")
	assert.EqualValues(t, ConnectionFailed, ToSDKStatusCode(s.Code))
	assert.Equal(t, EndorserClientStatus, s.Group)
	assert.Equal(t, "test", s.Message, "Expected test message")

	s = NewFromGRPCStatus(nil)
	assert.Nil(t, s)
	s = NewFromGRPCStatus(grpcstatus.New(grpccodes.DeadlineExceeded, "test"))
	assert.NotNil(t, s, "Expected status to be constructed")
	assert.EqualValues(t, grpccodes.DeadlineExceeded, ToGRPCStatusCode(s.Code))
	assert.Equal(t, GRPCTransportStatus, s.Group)

	s = NewFromProposalResponse(nil, "")
	assert.Nil(t, s)
	s = NewFromProposalResponse(&pb.ProposalResponse{
		Response: &pb.Response{
			Status:  int32(common.Status_BAD_REQUEST),
			Message: "test",
		}}, "localhost")
	assert.NotNil(t, s, "Expected status to be constructed")
	assert.EqualValues(t, common.Status_BAD_REQUEST, ToPeerStatusCode(s.Code))
	assert.Equal(t, EndorserServerStatus, s.Group)
	assert.Equal(t, "localhost", s.Details[0].(string))
}

func TestFromError(t *testing.T) {
	s := New(EndorserClientStatus, ConnectionFailed.ToInt32(), "test", nil)
	derivedStatus, ok := FromError(s)
	assert.True(t, ok)
	assert.Equal(t, s, derivedStatus)

	derivedStatus, ok = FromError(errors.Wrap(s, "test"))
	assert.True(t, ok)
	assert.Equal(t, s, derivedStatus)

	derivedStatus, ok = FromError(fmt.Errorf("install failed: %w", s))
	assert.True(t, ok)
	assert.Equal(t, s, derivedStatus)

	s, ok = FromError(nil)
	assert.True(t, ok)
	assert.EqualValues(t, OK.ToInt32(), s.Code)

	_, ok = FromError(fmt.Errorf("Test"))
	assert.False(t, ok)

	errs := multi.Errors{fmt.Errorf("Test"), fmt.Errorf("Test2")}
	s, ok = FromError(errs)
	assert.True(t, ok)
	assert.Equal(t, ClientStatus, s.Group)
	assert.EqualValues(t, MultipleErrors.ToInt32(), s.Code)
	assert.Equal(t, errs.Error(), s.Message)
}

func TestIs(t *testing.T) {
	err := errors.WithMessage(New(ClientStatus, AlreadyInstantiated.ToInt32(), "cc1 is already instantiated on mychannel", nil), "instantiate chaincode failed")

	assert.True(t, stderrors.Is(err, AlreadyInstantiatedError))
	assert.False(t, stderrors.Is(err, NotPreviouslyInstantiatedError))
	assert.False(t, stderrors.Is(err, New(EndorserClientStatus, AlreadyInstantiated.ToInt32(), "", nil)))

	inMulti := multi.New(fmt.Errorf("peer0 failed"), New(ClientStatus, DiscoveryFailed.ToInt32(), "peer1 failed", nil))
	assert.True(t, stderrors.Is(inMulti, DiscoveryFailedError))
}

func TestNewWithCause(t *testing.T) {
	cause := New(EndorserServerStatus, 500, "chaincode fabcar not found", []interface{}{"peer0"})
	s := NewWithCause(ClientStatus, ProposalRejected.ToInt32(), "sending proposal failed", cause)

	assert.Equal(t, "sending proposal failed: "+cause.Error(), s.Message)
	assert.True(t, stderrors.Is(s, ProposalRejectedError))
	assert.Equal(t, cause, s.Unwrap())

	var inner *Status
	assert.True(t, stderrors.As(s.Unwrap(), &inner))
	assert.Equal(t, EndorserServerStatus, inner.Group)

	s = NewWithCause(ClientStatus, ProposalRejected.ToInt32(), "no cause", nil)
	assert.Equal(t, "no cause", s.Message)
	assert.Nil(t, s.Unwrap())
}

func TestStatusToError(t *testing.T) {
	s := New(EndorserClientStatus, ConnectionFailed.ToInt32(), "test", nil)
	assert.Equal(t, "Endorser Client Status Code: (2) CONNECTION_FAILED. Description: test", s.Error())

	s = New(ClientStatus, OrderingRejected.ToInt32(), "bad", nil)
	assert.Equal(t, "Client Status Code: (37) ORDERING_REJECTED. Description: bad", s.Error())
}

func TestStatusCodeConversion(t *testing.T) {
	c := ToOrdererStatusCode(int32(common.Status_FORBIDDEN))
	assert.EqualValues(t, c, common.Status_FORBIDDEN)

	c1 := ToTransactionValidationCode(int32(pb.TxValidationCode_BAD_COMMON_HEADER))
	assert.EqualValues(t, c1, pb.TxValidationCode_BAD_COMMON_HEADER)

	assert.Equal(t, CodeName[OK.ToInt32()], OK.String())
	assert.Equal(t, "25999", Code(25999).String())
}

func TestStatusCodeString(t *testing.T) {
	s := Status{Group: GRPCTransportStatus, Code: int32(grpccodes.Aborted)}
	assert.Equal(t, grpccodes.Aborted.String(), s.codeString())

	s = Status{Group: OrdererServerStatus, Code: int32(common.Status_BAD_REQUEST)}
	assert.Equal(t, common.Status_BAD_REQUEST.String(), s.codeString())

	s = Status{Group: EventServerStatus, Code: int32(pb.TxValidationCode_MVCC_READ_CONFLICT)}
	assert.Equal(t, pb.TxValidationCode_MVCC_READ_CONFLICT.String(), s.codeString())

	s = Status{Code: int32(45779)}
	assert.Equal(t, Unknown.String(), s.codeString())

	assert.Equal(t, UnknownStatus.String(), Group(73777).String())
}

func TestChaincodeStatus(t *testing.T) {
	s := NewFromExtractedChaincodeError(500, "key not found")
	assert.Equal(t, "key not found", s.Message)
	assert.Equal(t, int32(500), s.Code)
}
