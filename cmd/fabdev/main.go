/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Command fabdev inspects a Fabric network and manages the legacy lifecycle of
// its chaincodes.
package main

import (
	reqContext "context"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/logging"
)

var logger = logging.NewLogger("fabdev/cli")

const defaultTimeout = 5 * time.Minute

func main() {
	if err := newRootCmd(newApp(afero.NewOsFs())).ExecuteContext(reqContext.Background()); err != nil {
		logger.Errorf("%s", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "fabdev",
		Short: "fabdev is a developer tool for Hyperledger Fabric networks",
		Long: `fabdev discovers the peers, channels and orderers of a Fabric network
described by a connection profile, and installs, instantiates and upgrades
chaincodes with the legacy lifecycle.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.applyLogLevel()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "connection profile of the network")
	flags.StringVarP(&a.walletPath, "wallet", "w", "wallet", "wallet directory")
	flags.StringVarP(&a.label, "identity", "i", "admin", "label of the wallet identity to connect as")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (CRITICAL, ERROR, WARNING, INFO, DEBUG)")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write the transaction metrics to this file")
	flags.DurationVar(&a.timeout, "timeout", defaultTimeout, "timeout of the command")

	root.AddCommand(
		newTopologyCmd(a),
		newChannelCmd(a),
		newChaincodeCmd(a),
		newIdentityCmd(a),
	)
	return root
}
