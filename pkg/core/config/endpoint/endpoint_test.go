/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package endpoint

import (
	"testing"

	"github.com/hyperledger/fabric-devtools-go/pkg/msp/test/mockmsp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTLSEnabled(t *testing.T) {
	assert.True(t, IsTLSEnabled("grpcs://peer0.org1.example.com:7051"))
	assert.True(t, IsTLSEnabled("HTTPS://ca.org1.example.com:7054"))
	assert.False(t, IsTLSEnabled("grpc://localhost:7051"))
	assert.False(t, IsTLSEnabled("localhost:7051"))
}

func TestToAddress(t *testing.T) {
	assert.Equal(t, "localhost:7051", ToAddress("grpc://localhost:7051"))
	assert.Equal(t, "localhost:7051", ToAddress("grpcs://localhost:7051"))
	assert.Equal(t, "localhost:7051", ToAddress("localhost:7051"))
}

func TestAttemptSecured(t *testing.T) {
	assert.True(t, AttemptSecured("grpcs://localhost:7051", true))
	assert.False(t, AttemptSecured("grpc://localhost:7051", false))
	assert.True(t, AttemptSecured("localhost:7051", false))
	assert.False(t, AttemptSecured("localhost:7051", true))
}

func TestTLSConfigLoadBytes(t *testing.T) {
	enrollment, err := mockmsp.NewEnrollment("tlsca.org1.example.com")
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/crypto/tlsca.pem", enrollment.Certificate, 0600))

	cfg := &TLSConfig{Path: "/crypto/tlsca.pem"}
	require.NoError(t, cfg.LoadBytes(fs))
	assert.Equal(t, enrollment.Certificate, cfg.Bytes())

	cert, ok, err := cfg.TLSCert()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tlsca.org1.example.com", cert.Subject.CommonName)

	pool, err := cfg.CertPool()
	require.NoError(t, err)
	assert.NotNil(t, pool)

	// pem wins over path
	cfg = &TLSConfig{Path: "/missing.pem", Pem: string(enrollment.Certificate)}
	require.NoError(t, cfg.LoadBytes(fs))
	assert.Equal(t, enrollment.Certificate, cfg.Bytes())

	cfg = &TLSConfig{Path: "/missing.pem"}
	assert.ErrorContains(t, cfg.LoadBytes(fs), "failed to load pem bytes from path /missing.pem")

	empty := &TLSConfig{}
	require.NoError(t, empty.LoadBytes(fs))
	_, ok, err = empty.TLSCert()
	require.NoError(t, err)
	assert.False(t, ok)
	pool, err = empty.CertPool()
	require.NoError(t, err)
	assert.Nil(t, pool)
}
