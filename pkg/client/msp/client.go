/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package msp enables enrollment and registration of identities with the
// certificate authority of the client organization.
package msp

import (
	reqContext "context"

	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	mspctx "github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
	"github.com/hyperledger/fabric-devtools-go/pkg/context"
	"github.com/hyperledger/fabric-devtools-go/pkg/msp"
)

var logger = logging.NewLogger("fabdev/msp")

const clientIdentityType = "client"

// Enrollment is the PEM certificate and private key issued by the CA
type Enrollment = mspctx.Enrollment

// Client enables access to Client services
type Client struct {
	ctx context.Client
}

// ClientOption describes a functional parameter for the New constructor
type ClientOption func(*Client) error

// New creates a new Client instance
func New(clientProvider context.ClientProvider, opts ...ClientOption) (*Client, error) {
	ctx, err := clientProvider()
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create Client")
	}

	c := &Client{ctx: ctx}
	for _, param := range opts {
		if err := param(c); err != nil {
			return nil, errors.WithMessage(err, "failed to create Client")
		}
	}
	return c, nil
}

// RegisterOption describes a functional parameter for Register
type RegisterOption func(*fab.RegistrationRequest) error

// WithSecret sets the enrollment secret of the registered identity instead of
// letting the CA generate one
func WithSecret(secret string) RegisterOption {
	return func(r *fab.RegistrationRequest) error {
		r.Secret = secret
		return nil
	}
}

// Enroll enrolls a registered user in order to receive a signed X509 certificate.
// A new key pair is generated for the user. The caller owns the returned
// enrollment; see Store to keep it in a wallet.
func (c *Client) Enroll(ctx reqContext.Context, enrollmentID, secret string) (*Enrollment, error) {
	if enrollmentID == "" {
		return nil, errors.New("enrollment ID is required")
	}
	if secret == "" {
		return nil, errors.New("enrollment secret is required")
	}

	ca, err := c.ctx.CAClient()
	if err != nil {
		return nil, err
	}

	enrollment, err := ca.Enroll(ctx, enrollmentID, secret)
	if err != nil {
		return nil, errors.WithMessagef(err, "enrolling [%s] failed", enrollmentID)
	}
	logger.Infof("Enrolled [%s] with CA [%s]", enrollmentID, ca.CAName())
	return enrollment, nil
}

// Register registers a client identity with the CA, using the identity of
// the session as registrar. Returns the enrollment secret.
func (c *Client) Register(ctx reqContext.Context, enrollmentID, affiliation string, opts ...RegisterOption) (string, error) {
	if enrollmentID == "" {
		return "", errors.New("enrollment ID is required")
	}

	request := &fab.RegistrationRequest{
		Name:           enrollmentID,
		Type:           clientIdentityType,
		MaxEnrollments: 0,
		Affiliation:    affiliation,
	}
	for _, opt := range opts {
		if err := opt(request); err != nil {
			return "", errors.WithMessage(err, "failed to apply register option")
		}
	}

	registrar, err := c.ctx.Identity()
	if err != nil {
		return "", err
	}

	ca, err := c.ctx.CAClient()
	if err != nil {
		return "", err
	}

	secret, err := ca.Register(ctx, request, registrar)
	if err != nil {
		return "", errors.WithMessagef(err, "registering [%s] failed", enrollmentID)
	}
	return secret, nil
}

// CAName returns the name of the certificate authority of the client organization
func (c *Client) CAName() (string, error) {
	ca, err := c.ctx.CAClient()
	if err != nil {
		return "", err
	}
	return ca.CAName(), nil
}

// Store puts the enrollment in the wallet under label, as an identity of the
// client organization
func (c *Client) Store(wallet mspctx.Wallet, label string, enrollment *Enrollment) error {
	if wallet == nil || label == "" || enrollment == nil {
		return errors.New("wallet, label and enrollment are required")
	}

	cfg, err := c.ctx.Config()
	if err != nil {
		return err
	}
	org, err := cfg.ClientOrganization()
	if err != nil {
		return err
	}

	if err := wallet.Put(label, msp.NewX509Identity(org.MSPID, enrollment)); err != nil {
		return errors.WithMessagef(err, "storing identity [%s] failed", label)
	}
	logger.Debugf("Stored identity [%s] of [%s] in wallet", label, org.MSPID)
	return nil
}
