/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	reqContext "context"
	"time"

	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/context"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config"
	"github.com/hyperledger/fabric-devtools-go/pkg/fabsdk/metrics"
	"github.com/hyperledger/fabric-devtools-go/pkg/msp"
)

// app holds the global flags and the session shared by the commands
type app struct {
	fs          afero.Fs
	sessionOpts []context.Option
	caFactory   context.CAClientFactory
	registry    *prom.Registry
	metrics     *metrics.ClientMetrics

	configPath  string
	walletPath  string
	label       string
	logLevel    string
	metricsFile string
	timeout     time.Duration

	session *context.Session
}

func newApp(fs afero.Fs, sessionOpts ...context.Option) *app {
	registry := prom.NewRegistry()
	return &app{
		fs:          fs,
		sessionOpts: sessionOpts,
		registry:    registry,
		metrics:     metrics.NewClientMetrics(registry),
	}
}

func (a *app) profile() config.Provider {
	return config.FromFile(a.configPath, config.WithFs(a.fs))
}

func (a *app) wallet() (*msp.FileSystemWallet, error) {
	if a.walletPath == "" {
		return nil, errors.New("wallet directory is required")
	}
	return msp.NewFileSystemWallet(a.fs, a.walletPath)
}

func (a *app) applyLogLevel() error {
	if a.logLevel == "" {
		return nil
	}
	level, err := logging.LogLevel(a.logLevel)
	if err != nil {
		return errors.WithMessage(err, "invalid --log-level")
	}
	logging.SetLevel("", level)
	return nil
}

// requestContext bounds the command by the --timeout flag
func (a *app) requestContext(cmd *cobra.Command) (reqContext.Context, reqContext.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = reqContext.Background()
	}
	if a.timeout > 0 {
		return reqContext.WithTimeout(ctx, a.timeout)
	}
	return reqContext.WithCancel(ctx)
}

// withSession connects the identity of the wallet, runs fn and disconnects
func (a *app) withSession(cmd *cobra.Command, fn func(ctx reqContext.Context, session *context.Session) error) error {
	wallet, err := a.wallet()
	if err != nil {
		return err
	}

	a.session = context.NewSession(a.sessionOpts...)
	if err := a.session.Connect(a.profile(), wallet, a.label); err != nil {
		return err
	}
	defer func() {
		if err := a.session.Disconnect(); err != nil {
			logger.Warnf("Disconnecting session failed: %s", err)
		}
	}()

	// the level of the command line wins over the one of the profile
	if err := a.applyLogLevel(); err != nil {
		return err
	}

	ctx, cancel := a.requestContext(cmd)
	defer cancel()

	if err := fn(ctx, a.session); err != nil {
		return err
	}
	return a.writeMetrics()
}

func (a *app) writeMetrics() error {
	if a.metricsFile == "" {
		return nil
	}
	if err := prom.WriteToTextfile(a.metricsFile, a.registry); err != nil {
		return errors.Wrapf(err, "writing metrics to [%s] failed", a.metricsFile)
	}
	return nil
}
