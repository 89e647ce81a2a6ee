/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package verifier provides various verifier (e.g. signature)
package verifier

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/x509"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-gateway/pkg/hash"
	"github.com/hyperledger/fabric-gateway/pkg/identity"
	"github.com/hyperledger/fabric-protos-go/common"
	pb_msp "github.com/hyperledger/fabric-protos-go/msp"
	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
)

const loggerModule = "fabdev/client"

var logger = logging.NewLogger(loggerModule)

// Signature verifies response signature
type Signature struct{}

// Verify checks transaction proposal response
func (v *Signature) Verify(response *fab.TransactionProposalResponse) error {
	if !IsSuccess(response) {
		return status.NewFromProposalResponse(response.ProposalResponse, response.Endorser)
	}

	res := response.ProposalResponse

	if res.GetEndorsement() == nil || len(res.GetEndorsement().Endorser) == 0 {
		return errors.WithStack(status.New(status.EndorserClientStatus, status.MissingEndorsement.ToInt32(), "missing endorsement in proposal response", []interface{}{response.Endorser}))
	}
	creatorID := res.GetEndorsement().Endorser

	cert, err := endorserCertificate(creatorID)
	if err == nil {
		err = ValidateCertificateDates(cert)
	}
	if err != nil {
		return errors.WithStack(status.New(status.EndorserClientStatus, status.SignatureVerificationFailed.ToInt32(), "the creator certificate is not valid", []interface{}{response.Endorser, err.Error()}))
	}

	// check the signature against the endorser and payload hash
	digest := append(append([]byte{}, res.GetPayload()...), creatorID...)

	if err := verifySignature(cert, digest, res.GetEndorsement().Signature); err != nil {
		return errors.WithStack(status.New(status.EndorserClientStatus, status.SignatureVerificationFailed.ToInt32(), "the creator's signature over the proposal is not valid", []interface{}{response.Endorser, err.Error()}))
	}

	return nil
}

// Match fails when the payloads of the responses are not all the same
func (v *Signature) Match(responses []*fab.TransactionProposalResponse) error {
	if len(responses) == 0 {
		return nil
	}
	first := responses[0].GetPayload()
	for _, r := range responses[1:] {
		if !bytes.Equal(first, r.GetPayload()) {
			return errors.WithStack(status.New(status.EndorserClientStatus, status.EndorsementMismatch.ToInt32(),
				"proposal response payloads do not match", []interface{}{responses[0].Endorser, r.Endorser}))
		}
	}
	return nil
}

// IsSuccess reports whether the endorser accepted the proposal
func IsSuccess(response *fab.TransactionProposalResponse) bool {
	s := response.ProposalResponse.GetResponse().GetStatus()
	return s >= int32(common.Status_SUCCESS) && s < int32(common.Status_BAD_REQUEST)
}

func endorserCertificate(serialized []byte) (*x509.Certificate, error) {
	sid := &pb_msp.SerializedIdentity{}
	if err := proto.Unmarshal(serialized, sid); err != nil {
		return nil, errors.Wrap(err, "unmarshal serialized identity failed")
	}
	return identity.CertificateFromPEM(sid.IdBytes)
}

func verifySignature(cert *x509.Certificate, digest, signature []byte) error {
	key, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return errors.Errorf("unsupported public key type %T", cert.PublicKey)
	}
	if !ecdsa.VerifyASN1(key, hash.SHA256(digest), signature) {
		return errors.New("signature does not match")
	}
	return nil
}

// ValidateCertificateDates fails when the certificate is expired or not yet valid
func ValidateCertificateDates(cert *x509.Certificate) error {
	if cert == nil {
		return nil
	}
	now := time.Now().UTC()
	if now.Before(cert.NotBefore) {
		return errors.Errorf("certificate [%s] is not valid before %s", cert.Subject.CommonName, cert.NotBefore)
	}
	if now.After(cert.NotAfter) {
		return errors.Errorf("certificate [%s] expired on %s", cert.Subject.CommonName, cert.NotAfter)
	}
	return nil
}

// VerifyPeerCertificate checks the validity dates of the certificates
// presented by a TLS server. It is meant for tls.Config.VerifyPeerCertificate.
func VerifyPeerCertificate(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
	for _, raw := range rawCerts {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			logger.Warnf("Unable to parse peer certificate: %s", err)
			continue
		}
		if err := ValidateCertificateDates(cert); err != nil {
			logger.Warn(err.Error())
			return err
		}
	}
	for _, chain := range verifiedChains {
		for _, cert := range chain {
			if err := ValidateCertificateDates(cert); err != nil {
				logger.Warn(err.Error())
				return err
			}
		}
	}
	return nil
}
