/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package zaplog

import (
	"bytes"
	"testing"

	"github.com/hyperledger/fabric-devtools-go/pkg/core/logging/api"
	"github.com/stretchr/testify/assert"
)

func TestModuleLevels(t *testing.T) {
	var buf bytes.Buffer
	p := NewProvider(&buf)

	SetLevel("zaplog-test/debug", api.DEBUG)
	SetLevel("zaplog-test/error", api.ERROR)

	debugLogger := p.GetLogger("zaplog-test/debug")
	errorLogger := p.GetLogger("zaplog-test/error")

	debugLogger.Debugf("querying peer %s", "peer0")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "zaplog-test/debug")
	assert.Contains(t, buf.String(), "querying peer peer0")

	buf.Reset()
	errorLogger.Info("not", "written")
	errorLogger.Warnf("not %s", "written")
	assert.Empty(t, buf.String())

	errorLogger.Error("install", "rejected")
	assert.Contains(t, buf.String(), "ERROR")
	assert.Contains(t, buf.String(), "install rejected")

	assert.Equal(t, api.ERROR, GetLevel("zaplog-test/error"))
	assert.True(t, IsEnabledFor("zaplog-test/debug", api.DEBUG))
	assert.False(t, IsEnabledFor("zaplog-test/error", api.WARNING))
}

func TestDefaultLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewProvider(&buf).GetLogger("zaplog-test/unset")

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Infof("connected as %s", "admin")
	assert.Contains(t, buf.String(), "INFO")
	assert.Contains(t, buf.String(), "connected as admin")
}
