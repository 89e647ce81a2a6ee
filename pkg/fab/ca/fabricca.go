/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package fabricca is a client of the Fabric CA REST API.
package fabricca

import (
	reqContext "context"
	"crypto"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"

	"github.com/cloudflare/cfssl/csr"
	"github.com/cloudflare/cfssl/signer"
	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config"
)

var logger = logging.NewLogger("fabdev/fab")

const defaultIdentityType = "client"

// FabricCA represents a client to Fabric CA.
type FabricCA struct {
	name       string
	config     config.CAConfig
	httpClient *http.Client
}

// Option configures the client
type Option func(ca *FabricCA)

// WithHTTPClient sets the HTTP client used to reach the CA
func WithHTTPClient(client *http.Client) Option {
	return func(ca *FabricCA) {
		ca.httpClient = client
	}
}

// New creates a new fabric-ca client for the named CA of the connection profile
func New(name string, cfg config.CAConfig, opts ...Option) (*FabricCA, error) {
	if cfg.URL == "" {
		return nil, errors.Errorf("url is required for certificate authority [%s]", name)
	}

	ca := &FabricCA{name: name, config: cfg}
	for _, opt := range opts {
		opt(ca)
	}

	if ca.httpClient == nil {
		client, err := newHTTPClient(cfg)
		if err != nil {
			return nil, errors.WithMessagef(err, "creating HTTP client for certificate authority [%s] failed", name)
		}
		ca.httpClient = client
	}
	return ca, nil
}

// CAName returns the CA name. The caName of the profile takes precedence
// over the profile key.
func (im *FabricCA) CAName() string {
	if im.config.CAName != "" {
		return im.config.CAName
	}
	return im.name
}

type enrollmentRequestNet struct {
	signer.SignRequest
	CAName string `json:"caname,omitempty"`
}

type enrollmentResponseNet struct {
	// Base64 encoded PEM-encoded ECert
	Cert string
}

// Enroll a registered user in order to receive a signed X509 certificate.
// A new ECDSA P-256 key is generated for the request. No retry is attempted.
func (im *FabricCA) Enroll(reqCtx reqContext.Context, enrollmentID, enrollmentSecret string) (*msp.Enrollment, error) {
	if enrollmentID == "" {
		return nil, errors.New("enrollmentID is required")
	}
	if enrollmentSecret == "" {
		return nil, errors.New("enrollmentSecret is required")
	}
	logger.Debugf("Enrolling [%s] with CA [%s]", enrollmentID, im.CAName())

	csrPEM, key, err := genCSR(enrollmentID)
	if err != nil {
		return nil, errors.WithMessage(err, "failure generating CSR")
	}

	reqNet := &enrollmentRequestNet{CAName: im.config.CAName}
	reqNet.SignRequest.Request = string(csrPEM)
	body, err := json.Marshal(reqNet)
	if err != nil {
		return nil, errors.Wrap(err, "marshal enrollment request failed")
	}

	post, err := im.newPost(reqCtx, "enroll", body)
	if err != nil {
		return nil, err
	}
	post.SetBasicAuth(enrollmentID, enrollmentSecret)

	var result enrollmentResponseNet
	if err := im.sendReq(post, &result); err != nil {
		return nil, errors.WithMessage(err, "enroll failed")
	}

	cert, err := base64.StdEncoding.DecodeString(result.Cert)
	if err != nil {
		return nil, errors.Wrap(err, "invalid response format from server")
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "marshal private key failed")
	}

	logger.Infof("Enrolled [%s] with CA [%s]", enrollmentID, im.CAName())
	return &msp.Enrollment{
		Certificate: cert,
		PrivateKey:  pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}),
	}, nil
}

type registrationRequestNet struct {
	Name           string `json:"id"`
	Type           string `json:"type"`
	Secret         string `json:"secret,omitempty"`
	MaxEnrollments int    `json:"max_enrollments"`
	Affiliation    string `json:"affiliation"`
	CAName         string `json:"caname,omitempty"`
}

type registrationResponseNet struct {
	Secret string
}

// Register a User with the Fabric CA. The request is authorized with a token
// signed by the registrar. Returns the enrollment secret.
func (im *FabricCA) Register(reqCtx reqContext.Context, request *fab.RegistrationRequest, registrar msp.SigningIdentity) (string, error) {
	if request == nil {
		return "", errors.New("registration request is required")
	}
	if request.Name == "" {
		return "", errors.New("request.Name is required")
	}
	if registrar == nil {
		return "", errors.New("registrar is required")
	}

	identityType := request.Type
	if identityType == "" {
		identityType = defaultIdentityType
	}

	body, err := json.Marshal(&registrationRequestNet{
		Name:           request.Name,
		Type:           identityType,
		Secret:         request.Secret,
		MaxEnrollments: request.MaxEnrollments,
		Affiliation:    request.Affiliation,
		CAName:         im.config.CAName,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal registration request failed")
	}

	post, err := im.newPost(reqCtx, "register", body)
	if err != nil {
		return "", err
	}

	token, err := createToken(registrar, post.Method, post.URL.RequestURI(), body)
	if err != nil {
		return "", errors.WithMessage(err, "failed to add token authorization header")
	}
	post.Header.Set("authorization", token)

	var result registrationResponseNet
	if err := im.sendReq(post, &result); err != nil {
		return "", errors.WithMessage(err, "failed to register user")
	}

	logger.Infof("Registered [%s] with CA [%s]", request.Name, im.CAName())
	return result.Secret, nil
}

// genCSR generates an ECDSA P-256 key and a CSR for it with enrollmentID as
// common name
func genCSR(enrollmentID string) ([]byte, crypto.Signer, error) {
	cr := &csr.CertificateRequest{
		CN:         enrollmentID,
		KeyRequest: csr.NewKeyRequest(),
	}

	priv, err := cr.KeyRequest.Generate()
	if err != nil {
		return nil, nil, errors.Wrap(err, "key generation failed")
	}
	key, ok := priv.(crypto.Signer)
	if !ok {
		return nil, nil, errors.New("generated key is not a signer")
	}

	csrPEM, err := csr.Generate(key, cr)
	if err != nil {
		return nil, nil, errors.Wrap(err, "CSR generation failed")
	}
	return csrPEM, key, nil
}

// createToken builds the authorization token of the Fabric CA:
// b64(cert) "." b64(sign(method "." b64(uri) "." b64(body) "." b64(cert)))
func createToken(registrar msp.SigningIdentity, method, uri string, body []byte) (string, error) {
	b64cert := base64.StdEncoding.EncodeToString(registrar.EnrollmentCertificate())
	b64body := base64.StdEncoding.EncodeToString(body)
	b64uri := base64.StdEncoding.EncodeToString([]byte(uri))
	payload := method + "." + b64uri + "." + b64body + "." + b64cert

	sig, err := registrar.Sign([]byte(payload))
	if err != nil {
		return "", errors.WithMessage(err, "signature generation failure")
	}
	if len(sig) == 0 {
		return "", errors.New("signature creation failed, signature must be different than nil")
	}
	return b64cert + "." + base64.StdEncoding.EncodeToString(sig), nil
}
