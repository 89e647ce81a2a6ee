/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resource

import (
	"github.com/golang/protobuf/proto"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
)

const (
	lscc                       = "lscc"
	lsccInstall                = "install"
	lsccInstalledChaincodes    = "getinstalledchaincodes"
	lsccInstantiatedChaincodes = "getchaincodes"
)

// ParsePackage returns the deployment spec carried by a chaincode package.
// The package is either a ChaincodeDeploymentSpec or a
// SignedChaincodeDeploymentSpec envelope.
func ParsePackage(ccPackage []byte) (*pb.ChaincodeDeploymentSpec, error) {
	if len(ccPackage) == 0 {
		return nil, errors.New("chaincode package is empty")
	}

	cds := &pb.ChaincodeDeploymentSpec{}
	if err := proto.Unmarshal(ccPackage, cds); err == nil && cds.GetChaincodeSpec().GetChaincodeId().GetName() != "" {
		return cds, nil
	}

	signed := &pb.SignedChaincodeDeploymentSpec{}
	if err := proto.Unmarshal(ccPackage, signed); err != nil {
		return nil, errors.Wrap(err, "chaincode package is neither a deployment spec nor a signed deployment spec")
	}
	cds = &pb.ChaincodeDeploymentSpec{}
	if err := proto.Unmarshal(signed.ChaincodeDeploymentSpec, cds); err != nil {
		return nil, errors.Wrap(err, "unmarshal of signed deployment spec failed")
	}
	if cds.GetChaincodeSpec().GetChaincodeId().GetName() == "" {
		return nil, errors.New("chaincode package has no chaincode name")
	}
	return cds, nil
}

// createInstallInvokeRequest sends the package bytes unchanged as the install argument
func createInstallInvokeRequest(ccPackage []byte) fab.ChaincodeInvokeRequest {
	return fab.ChaincodeInvokeRequest{
		ChaincodeID: lscc,
		Fcn:         lsccInstall,
		Args:        [][]byte{ccPackage},
	}
}

func createInstalledChaincodesInvokeRequest() fab.ChaincodeInvokeRequest {
	return fab.ChaincodeInvokeRequest{
		ChaincodeID: lscc,
		Fcn:         lsccInstalledChaincodes,
	}
}

func createInstantiatedChaincodesInvokeRequest() fab.ChaincodeInvokeRequest {
	return fab.ChaincodeInvokeRequest{
		ChaincodeID: lscc,
		Fcn:         lsccInstantiatedChaincodes,
	}
}
