/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package msp

import (
	"github.com/pkg/errors"
)

var (
	// ErrUserNotFound indicates the identity label was not found in a wallet
	ErrUserNotFound = errors.New("user not found")
)

// Identity represents a Fabric client identity
type Identity interface {
	// Identifier returns the identifier of that identity
	Identifier() *IdentityIdentifier
	// Serialize converts an identity to the bytes of a msp.SerializedIdentity
	Serialize() ([]byte, error)
	// EnrollmentCertificate returns the PEM encoded certificate of the identity
	EnrollmentCertificate() []byte
}

// SigningIdentity is an extension of Identity to cover signing capabilities.
type SigningIdentity interface {
	Identity
	// Sign the message. Digest computation is part of signing.
	Sign(msg []byte) ([]byte, error)
}

// IdentityIdentifier is a holder for the identifier of a specific
// identity, naturally namespaced, by its provider identifier.
type IdentityIdentifier struct {
	// The identifier of the associated membership service provider
	MSPID string
	// The identifier for an identity within a provider
	ID string
}

// Enrollment is the certificate and private key issued by a certificate
// authority for an enrollment ID. Both are PEM encoded.
type Enrollment struct {
	Certificate []byte
	PrivateKey  []byte
}
