/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package msp

import (
	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-gateway/pkg/hash"
	"github.com/hyperledger/fabric-gateway/pkg/identity"
	pb_msp "github.com/hyperledger/fabric-protos-go/msp"
	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
)

// User is a representation of a Fabric user able to sign proposals,
// transactions and CA requests
type User struct {
	id       string
	identity *identity.X509Identity
	sign     identity.Sign
	hash     hash.Hash
}

// NewUser creates a signing user from credentials held in a wallet
func NewUser(label string, wid *msp.WalletIdentity) (*User, error) {
	if wid == nil {
		return nil, errors.New("wallet identity is required")
	}

	cert, err := identity.CertificateFromPEM(wid.Certificate)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid certificate for identity [%s]", label)
	}
	id, err := identity.NewX509Identity(wid.MSPID, cert)
	if err != nil {
		return nil, errors.Wrapf(err, "identity creation failed for [%s]", label)
	}

	key, err := identity.PrivateKeyFromPEM(wid.PrivateKey)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid private key for identity [%s]", label)
	}
	sign, err := identity.NewPrivateKeySign(key)
	if err != nil {
		return nil, errors.Wrapf(err, "signer creation failed for [%s]", label)
	}

	return &User{id: label, identity: id, sign: sign, hash: hash.SHA256}, nil
}

// Identifier returns the MSP ID and label of the user
func (u *User) Identifier() *msp.IdentityIdentifier {
	return &msp.IdentityIdentifier{MSPID: u.identity.MspID(), ID: u.id}
}

// EnrollmentCertificate returns the PEM encoded ECert of the user
func (u *User) EnrollmentCertificate() []byte {
	return u.identity.Credentials()
}

// Serialize returns the msp.SerializedIdentity of the user, used as creator
// in proposal and transaction headers
func (u *User) Serialize() ([]byte, error) {
	serializedIdentity := &pb_msp.SerializedIdentity{
		Mspid:   u.identity.MspID(),
		IdBytes: u.identity.Credentials(),
	}
	identity, err := proto.Marshal(serializedIdentity)
	if err != nil {
		return nil, errors.Wrap(err, "marshal serializedIdentity failed")
	}
	return identity, nil
}

// Sign hashes msg and signs the digest
func (u *User) Sign(msg []byte) ([]byte, error) {
	return u.sign(u.hash(msg))
}
