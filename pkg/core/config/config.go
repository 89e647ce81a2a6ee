/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
)

var logger = logging.NewLogger("fabdev/config")

type options struct {
	envPrefix string
	fs        afero.Fs
}

const (
	cmdRoot = "FABDEV"
)

// Provider supplies the network configuration of a connection profile.
type Provider func() (*NetworkConfig, error)

// Option configures the package.
type Option func(opts *options) error

// FromReader loads configuration from in.
// configType can be "json" or "yaml".
func FromReader(in io.Reader, configType string, opts ...Option) Provider {
	return func() (*NetworkConfig, error) {
		return initFromReader(in, configType, opts...)
	}
}

// FromFile reads from named config file
func FromFile(name string, opts ...Option) Provider {
	return func() (*NetworkConfig, error) {
		if name == "" {
			return nil, errors.New("filename is required")
		}

		o, err := newOptions(opts...)
		if err != nil {
			return nil, err
		}

		v := newViper(o)
		v.SetConfigFile(name)

		// If a config file is found, read it in.
		err = v.MergeInConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "loading config file failed: %s", name)
		}

		return load(v, o, filepath.Dir(name))
	}
}

// FromRaw will initialize the configs from a byte array
func FromRaw(configBytes []byte, configType string, opts ...Option) Provider {
	return func() (*NetworkConfig, error) {
		buf := bytes.NewBuffer(configBytes)
		return initFromReader(buf, configType, opts...)
	}
}

func initFromReader(in io.Reader, configType string, opts ...Option) (*NetworkConfig, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	if configType == "" {
		return nil, errors.New("empty config type")
	}

	// read config from bytes array, but must set ConfigType
	// for viper to properly unmarshal the bytes array
	v := newViper(o)
	v.SetConfigType(configType)
	err = v.MergeConfig(in)
	if err != nil {
		return nil, errors.Wrap(err, "loading config failed")
	}

	return load(v, o, "")
}

// WithEnvPrefix defines the prefix for environment variable overrides.
// See viper SetEnvPrefix for more information.
func WithEnvPrefix(prefix string) Option {
	return func(opts *options) error {
		opts.envPrefix = prefix
		return nil
	}
}

// WithFs sets the filesystem the profile and the TLS certificates are read from.
func WithFs(fs afero.Fs) Option {
	return func(opts *options) error {
		if fs == nil {
			return errors.New("filesystem is required")
		}
		opts.fs = fs
		return nil
	}
}

func newOptions(opts ...Option) (*options, error) {
	o := &options{
		envPrefix: cmdRoot,
		fs:        afero.NewOsFs(),
	}

	for _, option := range opts {
		err := option(o)
		if err != nil {
			return nil, errors.WithMessage(err, "Error in options passed to load config")
		}
	}
	return o, nil
}

func newViper(o *options) *viper.Viper {
	myViper := viper.New()
	myViper.SetFs(o.fs)
	myViper.SetEnvPrefix(o.envPrefix)
	myViper.AutomaticEnv()
	replacer := strings.NewReplacer(".", "_")
	myViper.SetEnvKeyReplacer(replacer)
	return myViper
}

// load decodes each section separately. Entity names such as
// peer0.org1.example.com contain dots, which viper would otherwise
// treat as key separators.
func load(v *viper.Viper, o *options, baseDir string) (*NetworkConfig, error) {
	cfg := &NetworkConfig{
		Name:    v.GetString("name"),
		Version: v.GetString("version"),
	}

	sections := []struct {
		key    string
		target interface{}
	}{
		{"client", &cfg.Client},
		{"channels", &cfg.Channels},
		{"organizations", &cfg.Organizations},
		{"orderers", &cfg.Orderers},
		{"peers", &cfg.Peers},
		{"certificateAuthorities", &cfg.CertificateAuthorities},
	}
	for _, s := range sections {
		if err := v.UnmarshalKey(s.key, s.target, decodeHooks()); err != nil {
			return nil, errors.Wrapf(err, "failed to decode '%s' section of network config", s.key)
		}
	}

	if err := cfg.loadTLSCerts(o.fs, baseDir); err != nil {
		return nil, err
	}

	if err := setLogLevel(v); err != nil {
		return nil, err
	}

	logger.Debugf("loaded network config [%s]: %d peers, %d orderers, %d channels", cfg.Name, len(cfg.Peers), len(cfg.Orderers), len(cfg.Channels))
	return cfg, nil
}

func decodeHooks() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// setLogLevel will set the log level of the client
func setLogLevel(v *viper.Viper) error {
	loggingLevelString := v.GetString("client.logging.level")
	if loggingLevelString == "" {
		return nil
	}

	logLevel, err := logging.LogLevel(loggingLevelString)
	if err != nil {
		return errors.WithMessage(err, "invalid client.logging.level")
	}

	logging.SetLevel("", logLevel)
	return nil
}
