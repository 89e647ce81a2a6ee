/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import (
	reqContext "context"
	"strconv"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	pb "github.com/hyperledger/fabric-protos-go/peer"
)

// ProcessTransactionProposal sends the transaction proposal to the peer and
// returns its response. A response is returned whatever its status, an error
// only when the peer could not be reached or failed at the transport level.
func (p *Peer) ProcessTransactionProposal(ctx reqContext.Context, request fab.ProcessProposalRequest) (*fab.TransactionProposalResponse, error) {
	logger.Debugf("Processing proposal using endorser: %s", p.name)

	proposalResponse, err := p.sendProposal(ctx, request)
	if err != nil {
		return nil, errors.Wrapf(err, "Transaction processing for endorser [%s]", p.name)
	}

	chaincodeStatus, err := getChaincodeResponseStatus(proposalResponse)
	if err != nil {
		return nil, errors.WithMessage(err, "chaincode response status parsing failed")
	}

	tpr := fab.TransactionProposalResponse{
		ProposalResponse: proposalResponse,
		Endorser:         p.name,
		ChaincodeStatus:  chaincodeStatus,
		Status:           proposalResponse.GetResponse().GetStatus(),
	}
	return &tpr, nil
}

func (p *Peer) sendProposal(ctx reqContext.Context, proposal fab.ProcessProposalRequest) (*pb.ProposalResponse, error) {
	endorser, err := p.endorserClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := endorser.ProcessProposal(ctx, proposal.SignedProposal)
	if err != nil {
		logger.Errorf("process proposal failed [%s]", err)
		rpcStatus, ok := grpcstatus.FromError(err)
		if !ok {
			return nil, status.New(status.EndorserClientStatus, status.ConnectionFailed.ToInt32(), err.Error(), []interface{}{p.config.URL})
		}
		if code, message, extractErr := extractChaincodeError(rpcStatus); extractErr == nil {
			return nil, status.NewFromExtractedChaincodeError(code, message)
		}
		return nil, status.NewFromGRPCStatus(rpcStatus)
	}

	if resp.GetResponse() == nil {
		return nil, status.New(status.EndorserClientStatus, status.Unknown.ToInt32(), "proposal response has no response", []interface{}{p.config.URL})
	}
	return resp, nil
}

// extractChaincodeError parses chaincode errors that older peers report as
// GRPC Unknown errors of the form "... (status: 500, message: ...)"
func extractChaincodeError(rpcStatus *grpcstatus.Status) (int, string, error) {
	if rpcStatus.Code() != codes.Unknown || rpcStatus.Message() == "" {
		return 0, "", errors.New("Unable to parse GRPC status message")
	}

	msg := rpcStatus.Message()
	var code int
	if i := strings.Index(msg, "status:"); i >= 0 {
		j := strings.Index(msg[i:], ",")
		if j > len("status:") {
			c, err := strconv.Atoi(strings.TrimSpace(msg[i+len("status:") : i+j]))
			if err != nil {
				return 0, "", errors.Errorf("Non-number returned as GRPC status [%s]", strings.TrimSpace(msg[i+len("status:"):i+j]))
			}
			code = c
		}
	}

	var message string
	if i := strings.Index(msg, "message:"); i >= 0 {
		j := strings.LastIndex(msg[i:], ")")
		if j > len("message:") {
			message = strings.TrimSpace(msg[i+len("message:") : i+j])
		}
	}

	if code != 0 && message != "" {
		return code, message, nil
	}
	return code, message, errors.Errorf("Unable to parse GRPC Status Message Code: %v Message: %v", code, message)
}

func getChaincodeResponseStatus(response *pb.ProposalResponse) (int32, error) {
	if response.Payload != nil {
		payload := &pb.ProposalResponsePayload{}
		if err := proto.Unmarshal(response.Payload, payload); err != nil {
			return 0, errors.Wrap(err, "unmarshal of proposal response payload failed")
		}

		extension := &pb.ChaincodeAction{}
		if err := proto.Unmarshal(payload.Extension, extension); err != nil {
			return 0, errors.Wrap(err, "unmarshal of chaincode action failed")
		}

		if extension.Response != nil {
			return extension.Response.Status, nil
		}
	}
	return response.Response.Status, nil
}
