/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fabricca

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config"
	"github.com/hyperledger/fabric-devtools-go/pkg/msp"
	"github.com/hyperledger/fabric-devtools-go/pkg/msp/test/mockmsp"
)

const (
	caURL       = "http://localhost:7054"
	enrollURL   = caURL + "/api/v1/enroll"
	registerURL = caURL + "/api/v1/register"
)

func newTestCA(t *testing.T) (*FabricCA, *httpmock.MockTransport) {
	transport := httpmock.NewMockTransport()
	ca, err := New("ca.org1.example.com", config.CAConfig{URL: caURL, CAName: "ca-org1"},
		WithHTTPClient(&http.Client{Transport: transport}))
	require.NoError(t, err)
	return ca, transport
}

func successResponse(result interface{}) map[string]interface{} {
	return map[string]interface{}{"success": true, "result": result, "errors": []interface{}{}, "messages": []interface{}{}}
}

func TestNew(t *testing.T) {
	_, err := New("ca.org1.example.com", config.CAConfig{})
	assert.EqualError(t, err, "url is required for certificate authority [ca.org1.example.com]")

	ca, err := New("ca.org1.example.com", config.CAConfig{URL: caURL})
	require.NoError(t, err)
	assert.Equal(t, "ca.org1.example.com", ca.CAName())

	ca, _ = newTestCA(t)
	assert.Equal(t, "ca-org1", ca.CAName())

	var _ fab.CAClient = ca
}

func TestEnroll(t *testing.T) {
	ca, transport := newTestCA(t)

	issued, err := mockmsp.NewEnrollment("user1")
	require.NoError(t, err)

	transport.RegisterResponder(http.MethodPost, enrollURL, func(req *http.Request) (*http.Response, error) {
		user, secret, ok := req.BasicAuth()
		if !ok || user != "user1" || secret != "pw" {
			return httpmock.NewStringResponse(http.StatusUnauthorized, ""), nil
		}

		reqNet := map[string]interface{}{}
		if err := json.NewDecoder(req.Body).Decode(&reqNet); err != nil {
			return nil, err
		}
		block, _ := pem.Decode([]byte(reqNet["certificate_request"].(string)))
		csr, err := x509.ParseCertificateRequest(block.Bytes)
		if err != nil {
			return nil, err
		}
		if csr.Subject.CommonName != "user1" || reqNet["caname"] != "ca-org1" {
			return httpmock.NewStringResponse(http.StatusBadRequest, ""), nil
		}

		return httpmock.NewJsonResponse(http.StatusCreated, successResponse(map[string]interface{}{
			"Cert":       base64.StdEncoding.EncodeToString(issued.Certificate),
			"ServerInfo": map[string]interface{}{"CAName": "ca-org1"},
		}))
	})

	enrollment, err := ca.Enroll(context.Background(), "user1", "pw")
	require.NoError(t, err)
	assert.Equal(t, issued.Certificate, enrollment.Certificate)

	block, _ := pem.Decode(enrollment.PrivateKey)
	require.NotNil(t, block)
	assert.Equal(t, "PRIVATE KEY", block.Type)
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	assert.IsType(t, &ecdsa.PrivateKey{}, key)
	assert.Equal(t, "P-256", key.(*ecdsa.PrivateKey).Curve.Params().Name)

	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestEnrollServerError(t *testing.T) {
	ca, transport := newTestCA(t)

	transport.RegisterResponder(http.MethodPost, enrollURL, httpmock.NewJsonResponderOrPanic(http.StatusUnauthorized, map[string]interface{}{
		"success": false,
		"result":  nil,
		"errors":  []interface{}{map[string]interface{}{"code": 20, "message": "Authentication failure"}},
	}))

	_, err := ca.Enroll(context.Background(), "user1", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Authentication failure")
	s, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, status.FabricCAServerStatus, s.Group)
	assert.EqualValues(t, 20, s.Code)

	// no retry
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestEnrollHTTPStatus(t *testing.T) {
	ca, transport := newTestCA(t)
	transport.RegisterResponder(http.MethodPost, enrollURL, httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	_, err := ca.Enroll(context.Background(), "user1", "pw")
	require.Error(t, err)
	s, ok := status.FromError(err)
	require.True(t, ok)
	assert.EqualValues(t, http.StatusInternalServerError, s.Code)
}

func TestEnrollValidation(t *testing.T) {
	ca, transport := newTestCA(t)

	_, err := ca.Enroll(context.Background(), "", "pw")
	assert.EqualError(t, err, "enrollmentID is required")
	_, err = ca.Enroll(context.Background(), "user1", "")
	assert.EqualError(t, err, "enrollmentSecret is required")
	assert.Equal(t, 0, transport.GetTotalCallCount())
}

func newRegistrar(t *testing.T) *msp.User {
	wid, err := mockmsp.NewWalletIdentity("Org1MSP", "admin")
	require.NoError(t, err)
	registrar, err := msp.NewUser("admin", wid)
	require.NoError(t, err)
	return registrar
}

func TestRegister(t *testing.T) {
	ca, transport := newTestCA(t)
	registrar := newRegistrar(t)

	transport.RegisterResponder(http.MethodPost, registerURL, func(req *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		if err := verifyToken(req.Header.Get("authorization"), req.Method, req.URL.RequestURI(), body, registrar.EnrollmentCertificate()); err != nil {
			return httpmock.NewStringResponse(http.StatusUnauthorized, err.Error()), nil
		}

		reqNet := map[string]interface{}{}
		if err := json.Unmarshal(body, &reqNet); err != nil {
			return nil, err
		}
		if reqNet["id"] != "user2" || reqNet["type"] != "client" || reqNet["affiliation"] != "org1.department1" || reqNet["max_enrollments"] != float64(0) {
			return httpmock.NewStringResponse(http.StatusBadRequest, string(body)), nil
		}
		return httpmock.NewJsonResponse(http.StatusCreated, successResponse(map[string]interface{}{"secret": "s3cr3t"}))
	})

	secret, err := ca.Register(context.Background(), &fab.RegistrationRequest{Name: "user2", Affiliation: "org1.department1"}, registrar)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", secret)
}

func TestRegisterValidation(t *testing.T) {
	ca, transport := newTestCA(t)
	registrar := newRegistrar(t)

	_, err := ca.Register(context.Background(), nil, registrar)
	assert.EqualError(t, err, "registration request is required")
	_, err = ca.Register(context.Background(), &fab.RegistrationRequest{}, registrar)
	assert.EqualError(t, err, "request.Name is required")
	_, err = ca.Register(context.Background(), &fab.RegistrationRequest{Name: "user2"}, nil)
	assert.EqualError(t, err, "registrar is required")
	assert.Equal(t, 0, transport.GetTotalCallCount())
}

func TestRegisterUnauthorized(t *testing.T) {
	ca, transport := newTestCA(t)
	transport.RegisterResponder(http.MethodPost, registerURL, httpmock.NewJsonResponderOrPanic(http.StatusUnauthorized, map[string]interface{}{
		"success": false,
		"errors":  []interface{}{map[string]interface{}{"code": 71, "message": "Authorization failure"}},
	}))

	_, err := ca.Register(context.Background(), &fab.RegistrationRequest{Name: "user2"}, newRegistrar(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to register user")
	assert.Contains(t, err.Error(), "Authorization failure")
}

func TestGetURL(t *testing.T) {
	ca := &FabricCA{name: "ca", config: config.CAConfig{URL: "https://ca.example.com:7054/"}}
	u, err := ca.getURL("enroll")
	require.NoError(t, err)
	assert.Equal(t, "https://ca.example.com:7054/api/v1/enroll", u)

	ca.config.URL = "grpc://ca.example.com:7054"
	u, err = ca.getURL("register")
	require.NoError(t, err)
	assert.Equal(t, "http://ca.example.com:7054/api/v1/register", u)

	ca.config.URL = "ca.example.com"
	_, err = ca.getURL("enroll")
	assert.Error(t, err)
}

func verifyToken(token, method, uri string, body, certPEM []byte) error {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return assert.AnError
	}
	b64cert := base64.StdEncoding.EncodeToString(certPEM)
	if parts[0] != b64cert {
		return assert.AnError
	}
	sig, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return err
	}

	block, _ := pem.Decode(certPEM)
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return err
	}

	payload := method + "." + base64.StdEncoding.EncodeToString([]byte(uri)) + "." + base64.StdEncoding.EncodeToString(body) + "." + b64cert
	digest := sha256.Sum256([]byte(payload))
	if !ecdsa.VerifyASN1(cert.PublicKey.(*ecdsa.PublicKey), digest[:], sig) {
		return assert.AnError
	}
	return nil
}
