/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mockmsp creates throwaway X.509 credentials for tests.
package mockmsp

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"time"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
)

// NewEnrollment returns a self-signed ECDSA P-256 certificate for commonName
// together with its PKCS#8 private key, both PEM encoded.
func NewEnrollment(commonName string) (*msp.Enrollment, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: commonName, Organization: []string{"org1.example.com"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		IsCA:         true,

		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}

	return &msp.Enrollment{
		Certificate: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		PrivateKey:  pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}),
	}, nil
}

// NewWalletIdentity returns credentials for commonName ready to be put into a wallet
func NewWalletIdentity(mspID, commonName string) (*msp.WalletIdentity, error) {
	enrollment, err := NewEnrollment(commonName)
	if err != nil {
		return nil, err
	}
	return &msp.WalletIdentity{MSPID: mspID, Certificate: enrollment.Certificate, PrivateKey: enrollment.PrivateKey}, nil
}
