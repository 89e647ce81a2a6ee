/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package events

import (
	"context"
	"io"
	"math"
	"sync/atomic"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/common"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
	"google.golang.org/grpc"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
	"github.com/hyperledger/fabric-devtools-go/pkg/fab/txn"
)

var logger = logging.NewLogger("fabdev/events")

var (
	newestPos = &ab.SeekPosition{Type: &ab.SeekPosition_Newest{Newest: &ab.SeekNewest{}}}
	maxPos    = &ab.SeekPosition{Type: &ab.SeekPosition_Specified{Specified: &ab.SeekSpecified{Number: math.MaxUint64}}}
)

// SeekNewest returns a SeekInfo that asks the deliver server for the blocks
// committed from now on
func SeekNewest() *ab.SeekInfo {
	return &ab.SeekInfo{
		Start:    newestPos,
		Stop:     maxPos,
		Behavior: ab.SeekInfo_BLOCK_UNTIL_READY,
	}
}

// DeliverConnection manages a filtered deliver stream to a peer
type DeliverConnection struct {
	stream pb.Deliver_DeliverFilteredClient
	ctx    context.Context
	cancel context.CancelFunc
	url    string
	done   int32
}

// NewDeliverConnection opens a filtered deliver stream over the connection
func NewDeliverConnection(conn *grpc.ClientConn, url string) (*DeliverConnection, error) {
	logger.Debugf("Opening filtered deliver stream to %s...", url)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := pb.NewDeliverClient(conn).DeliverFiltered(ctx)
	if err != nil {
		cancel()
		return nil, errors.Wrapf(err, "could not create deliver stream to %s", url)
	}

	return &DeliverConnection{
		stream: stream,
		ctx:    ctx,
		cancel: cancel,
		url:    url,
	}, nil
}

// Send sends a signed seek request for the channel to the deliver server
func (c *DeliverConnection) Send(signer msp.SigningIdentity, channelID string, seekInfo *ab.SeekInfo) error {
	if c.Closed() {
		return errors.New("connection is closed")
	}

	logger.Debugf("Sending seek info to %s for channel [%s]", c.url, channelID)
	env, err := createSignedEnvelope(signer, channelID, seekInfo)
	if err != nil {
		return err
	}
	return c.stream.Send(env)
}

// Receive relays deliver responses to eventch until the stream ends. The
// returned error is nil when the stream was closed by the client.
func (c *DeliverConnection) Receive(eventch chan<- *pb.DeliverResponse) error {
	for {
		in, err := c.stream.Recv()
		if c.Closed() {
			logger.Debugf("The connection has closed with error [%v]. Terminating loop.", err)
			return nil
		}
		if err == io.EOF {
			logger.Debug("Received EOF from stream.")
			return errors.Errorf("deliver stream to %s ended", c.url)
		}
		if err != nil {
			logger.Warnf("Received error from stream: [%s].", err)
			return errors.Wrapf(err, "deliver stream to %s failed", c.url)
		}
		select {
		case eventch <- in:
		case <-c.ctx.Done():
			return nil
		}
	}
}

// Close cancels the stream. The underlying GRPC connection is left open.
func (c *DeliverConnection) Close() {
	if !atomic.CompareAndSwapInt32(&c.done, 0, 1) {
		logger.Debugf("Already closed")
		return
	}
	logger.Debugf("Closing deliver stream to %s", c.url)
	if err := c.stream.CloseSend(); err != nil {
		logger.Debugf("error closing deliver stream: %s", err)
	}
	c.cancel()
}

// Closed returns true if the connection has been closed
func (c *DeliverConnection) Closed() bool {
	return atomic.LoadInt32(&c.done) == 1
}

// URL returns the address of the deliver server
func (c *DeliverConnection) URL() string {
	return c.url
}

func createSignedEnvelope(signer msp.SigningIdentity, channelID string, msg proto.Message) (*common.Envelope, error) {
	txh, err := txn.NewHeader(signer, channelID)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create transaction header")
	}

	channelHeader, err := txn.CreateChannelHeader(common.HeaderType_DELIVER_SEEK_INFO, txn.ChannelHeaderOpts{TxnHeader: txh})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create channel header")
	}

	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal seek info failed")
	}

	payload, err := txn.CreatePayload(txh, channelHeader, data)
	if err != nil {
		return nil, err
	}

	signed, err := txn.SignPayload(signer, payload)
	if err != nil {
		return nil, err
	}
	return &common.Envelope{Payload: signed.Payload, Signature: signed.Signature}, nil
}
