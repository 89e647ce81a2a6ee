/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resource

import (
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
)

const (
	cscc               = "cscc"
	csccChannels       = "GetChannels"
	csccGetConfigBlock = "GetConfigBlock"
)

func createChannelsInvokeRequest() fab.ChaincodeInvokeRequest {
	return fab.ChaincodeInvokeRequest{
		ChaincodeID: cscc,
		Fcn:         csccChannels,
	}
}

func createConfigBlockInvokeRequest(channel string) fab.ChaincodeInvokeRequest {
	return fab.ChaincodeInvokeRequest{
		ChaincodeID: cscc,
		Fcn:         csccGetConfigBlock,
		Args:        [][]byte{[]byte(channel)},
	}
}
