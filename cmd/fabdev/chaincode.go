/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	reqContext "context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hyperledger/fabric-devtools-go/pkg/client/channel"
	"github.com/hyperledger/fabric-devtools-go/pkg/client/resmgmt"
	"github.com/hyperledger/fabric-devtools-go/pkg/context"
)

func newChaincodeCmd(a *app) *cobra.Command {
	chaincodeCmd := &cobra.Command{
		Use:     "chaincode",
		Aliases: []string{"cc"},
		Short:   "Manage the chaincodes of the network",
	}
	chaincodeCmd.AddCommand(
		newChaincodeListCmd(a),
		newChaincodeInstalledCmd(a),
		newChaincodeInstallCmd(a),
		newChaincodeDeployCmd(a, "instantiate", "Instantiate an installed chaincode on a channel", (*resmgmt.Client).Instantiate),
		newChaincodeDeployCmd(a, "upgrade", "Upgrade an instantiated chaincode to an installed version", (*resmgmt.Client).Upgrade),
		newChaincodeMetadataCmd(a),
		newChaincodeTxCmd(a, "query", "Evaluate a chaincode function without ordering the transaction"),
		newChaincodeTxCmd(a, "invoke", "Submit a chaincode transaction and wait for its commit"),
	)
	return chaincodeCmd
}

func newChaincodeListCmd(a *app) *cobra.Command {
	var channelID string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the instantiated chaincodes of one channel, or of all channels",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx reqContext.Context, session *context.Session) error {
				rc, err := resmgmt.New(session.Provider())
				if err != nil {
					return err
				}

				var records []resmgmt.ChaincodeRecord
				if channelID != "" {
					records, err = rc.ListInstantiated(ctx, channelID)
				} else {
					records, err = rc.ListAllInstantiated(ctx)
				}
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "CHAINCODE\tCHANNEL")
				for _, r := range records {
					fmt.Fprintf(w, "%s\t%s\n", r.Label, r.Channel)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&channelID, "channel", "C", "", "channel name")
	return cmd
}

func newChaincodeInstalledCmd(a *app) *cobra.Command {
	var peer string
	cmd := &cobra.Command{
		Use:   "installed",
		Short: "List the chaincodes installed on a peer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if peer == "" {
				return errors.New("--peer is required")
			}
			return a.withSession(cmd, func(ctx reqContext.Context, session *context.Session) error {
				rc, err := resmgmt.New(session.Provider())
				if err != nil {
					return err
				}
				index, err := rc.ListInstalled(ctx, peer)
				if err != nil {
					return err
				}
				for _, name := range index.Names() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, strings.Join(index[name], ", "))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&peer, "peer", "p", "", "peer name")
	return cmd
}

func newChaincodeInstallCmd(a *app) *cobra.Command {
	var peer, packagePath string
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install a chaincode deployment spec package on a peer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if peer == "" || packagePath == "" {
				return errors.New("--peer and --package are required")
			}
			return a.withSession(cmd, func(ctx reqContext.Context, session *context.Session) error {
				rc, err := resmgmt.New(session.Provider(), resmgmt.WithFs(a.fs))
				if err != nil {
					return err
				}
				if err := rc.Install(ctx, packagePath, peer); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Installed %s on %s\n", packagePath, peer)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&peer, "peer", "p", "", "peer name")
	cmd.Flags().StringVar(&packagePath, "package", "", "chaincode package file")
	return cmd
}

type deployFunc func(rc *resmgmt.Client, ctx reqContext.Context, req resmgmt.InstantiateRequest, options ...resmgmt.RequestOption) ([]byte, error)

func newChaincodeDeployCmd(a *app, use, short string, deploy deployFunc) *cobra.Command {
	var (
		req           resmgmt.InstantiateRequest
		args          []string
		eventPeers    []string
		commitTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Channel == "" || req.Name == "" || req.Version == "" {
				return errors.New("--channel, --name and --version are required")
			}
			req.Args = toByteArgs(args)

			var opts []resmgmt.RequestOption
			if commitTimeout > 0 {
				opts = append(opts, resmgmt.WithTimeout(commitTimeout))
			}
			if len(eventPeers) > 0 {
				opts = append(opts, resmgmt.WithEventPeers(eventPeers...))
			}

			return a.withSession(cmd, func(ctx reqContext.Context, session *context.Session) error {
				rc, err := resmgmt.New(session.Provider(), resmgmt.WithMetrics(a.metrics))
				if err != nil {
					return err
				}
				payload, err := deploy(rc, ctx, req, opts...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s@%s committed on %s\n", req.Name, req.Version, req.Channel)
				if len(payload) > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				}
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&req.Channel, "channel", "C", "", "channel name")
	flags.StringVarP(&req.Name, "name", "n", "", "chaincode name")
	flags.StringVarP(&req.Version, "version", "v", "", "chaincode version")
	flags.StringVar(&req.Path, "path", "", "chaincode path")
	flags.StringVar(&req.Fcn, "fcn", "", "init function")
	flags.StringSliceVar(&args, "args", nil, "init function arguments")
	flags.StringSliceVar(&eventPeers, "event-peers", nil, "peers listened on for the commit event")
	flags.DurationVar(&commitTimeout, "commit-timeout", 0, "wait for the commit event (default: commit timeout of the channel)")
	return cmd
}

func newChaincodeMetadataCmd(a *app) *cobra.Command {
	var channelID, name string
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "List the contracts and transactions of a contract API chaincode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if channelID == "" || name == "" {
				return errors.New("--channel and --name are required")
			}
			return a.withSession(cmd, func(ctx reqContext.Context, session *context.Session) error {
				cc, err := channel.New(session.Provider(), channelID, channel.WithMetrics(a.metrics))
				if err != nil {
					return err
				}
				metadata, err := cc.GetMetadata(ctx, name)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if metadata == nil {
					fmt.Fprintf(out, "%s provides no contract metadata\n", name)
					return nil
				}
				for _, contractName := range metadata.ContractNames() {
					fmt.Fprintln(out, contractName)
					for _, tx := range metadata.Contracts[contractName].Transactions {
						fmt.Fprintf(out, "  %s\n", tx.Name)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&channelID, "channel", "C", "", "channel name")
	cmd.Flags().StringVarP(&name, "name", "n", "", "chaincode name")
	return cmd
}

func newChaincodeTxCmd(a *app, use, short string) *cobra.Command {
	var (
		channelID string
		req       channel.Request
		args      []string
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if channelID == "" {
				return errors.New("--channel is required")
			}
			req.Args = toByteArgs(args)

			return a.withSession(cmd, func(ctx reqContext.Context, session *context.Session) error {
				cc, err := channel.New(session.Provider(), channelID, channel.WithMetrics(a.metrics))
				if err != nil {
					return err
				}

				var resp channel.Response
				if use == "query" {
					resp, err = cc.Query(ctx, req)
				} else {
					resp, err = cc.Execute(ctx, req)
				}
				if err != nil {
					return err
				}
				logger.Debugf("Transaction [%s] returned %d bytes", resp.TransactionID, len(resp.Payload))
				fmt.Fprintln(cmd.OutOrStdout(), string(resp.Payload))
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&channelID, "channel", "C", "", "channel name")
	flags.StringVarP(&req.ChaincodeID, "name", "n", "", "chaincode name")
	flags.StringVar(&req.Fcn, "fcn", "", "chaincode function")
	flags.StringSliceVar(&args, "args", nil, "function arguments")
	return cmd
}

func toByteArgs(args []string) [][]byte {
	var byteArgs [][]byte
	for _, arg := range args {
		byteArgs = append(byteArgs, []byte(arg))
	}
	return byteArgs
}
