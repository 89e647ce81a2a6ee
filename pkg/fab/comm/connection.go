/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package comm

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/hyperledger/fabric-devtools-go/pkg/client/common/verifier"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config/endpoint"
)

var logger = logging.NewLogger("fabdev/comm")

const (
	maxCallRecvMsgSize = 100 * 1024 * 1024
	maxCallSendMsgSize = 100 * 1024 * 1024

	defaultConnectTimeout = 3 * time.Second
)

type params struct {
	connectTimeout time.Duration
	block          bool
}

// Option configures a connection attempt
type Option func(p *params)

// WithConnectTimeout sets the time allowed to establish the connection
func WithConnectTimeout(value time.Duration) Option {
	return func(p *params) {
		logger.Debugf("ConnectTimeout: %s", value)
		if value > 0 {
			p.connectTimeout = value
		}
	}
}

// WithNonBlocking returns from Dial without waiting for the connection to be ready
func WithNonBlocking() Option {
	return func(p *params) {
		p.block = false
	}
}

// Dial opens a GRPC connection to the endpoint. A failure to connect is
// reported with the ConnectionFailed code of the given status group.
func Dial(ctx context.Context, group status.Group, cfg config.EndpointConfig, opts ...Option) (*grpc.ClientConn, error) {
	if cfg.URL == "" {
		return nil, errors.New("server URL not specified")
	}

	p := &params{connectTimeout: defaultConnectTimeout, block: true}
	for _, opt := range opts {
		opt(p)
	}

	dialOpts, err := DialOptions(cfg)
	if err != nil {
		return nil, err
	}
	if p.block {
		dialOpts = append(dialOpts, grpc.WithBlock())
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.connectTimeout)
	defer cancel()

	conn, err := grpc.DialContext(dialCtx, endpoint.ToAddress(cfg.URL), dialOpts...)
	if err != nil {
		return nil, errors.WithStack(status.New(group, status.ConnectionFailed.ToInt32(),
			"connection failed", []interface{}{cfg.URL, err.Error()}))
	}
	return conn, nil
}

// DialOptions returns the GRPC dial options of an endpoint of the connection profile
func DialOptions(cfg config.EndpointConfig) ([]grpc.DialOption, error) {
	var dialOpts []grpc.DialOption

	kap := keepalive.ClientParameters{
		Time:                cfg.KeepAliveTime(),
		Timeout:             cfg.KeepAliveTimeout(),
		PermitWithoutStream: true,
	}
	if kap.Time > 0 || kap.Timeout > 0 {
		dialOpts = append(dialOpts, grpc.WithKeepaliveParams(kap))
	}

	dialOpts = append(dialOpts, grpc.WithDefaultCallOptions(
		grpc.WaitForReady(!cfg.FailFast()),
		grpc.MaxCallRecvMsgSize(maxCallRecvMsgSize),
		grpc.MaxCallSendMsgSize(maxCallSendMsgSize)))

	if endpoint.AttemptSecured(cfg.URL, cfg.AllowInsecure()) {
		tlsConfig, err := TLSConfig(cfg)
		if err != nil {
			return nil, err
		}
		logger.Debugf("Creating a secure connection to [%s] with TLS HostOverride [%s]", cfg.URL, cfg.ServerHostOverride())
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
	} else {
		logger.Debugf("Creating an insecure connection [%s]", cfg.URL)
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	return dialOpts, nil
}

// TLSConfig returns the client TLS configuration of an endpoint. The root CAs
// are the endpoint's tlsCACerts, or the system pool when none are configured.
func TLSConfig(cfg config.EndpointConfig) (*tls.Config, error) {
	pool, err := cfg.TLSCACerts.CertPool()
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to load TLS CA certs of %s", cfg.URL)
	}
	//nolint:gosec
	return &tls.Config{
		RootCAs:    pool,
		ServerName: cfg.ServerHostOverride(),
		MinVersion: tls.VersionTLS12,

		VerifyPeerCertificate: verifier.VerifyPeerCertificate,
	}, nil
}
