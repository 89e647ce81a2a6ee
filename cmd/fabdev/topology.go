/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	reqContext "context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hyperledger/fabric-devtools-go/pkg/client/discovery"
	"github.com/hyperledger/fabric-devtools-go/pkg/client/resmgmt"
	"github.com/hyperledger/fabric-devtools-go/pkg/context"
)

func newTopologyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "topology",
		Short: "List the peers, their channels and the orderers of the network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx reqContext.Context, session *context.Session) error {
				disc, err := discovery.New(session.Provider())
				if err != nil {
					return err
				}

				topology, err := disc.DiscoverTopology(ctx)
				if err != nil {
					return err
				}
				if _, err := disc.DiscoverChannelOrderers(ctx, topology); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Peers:")
				for _, peer := range disc.PeerNames() {
					fmt.Fprintf(out, "  %s: %s\n", peer, strings.Join(topology.Peers[peer], ", "))
				}
				fmt.Fprintln(out, "Channels:")
				for _, ch := range topology.ChannelNames() {
					fmt.Fprintf(out, "  %s: %s\n", ch, strings.Join(topology.Channels[ch], ", "))
				}
				fmt.Fprintln(out, "Orderers:")
				for _, o := range topology.OrdererNames() {
					fmt.Fprintf(out, "  %s\n", o)
				}
				return nil
			})
		},
	}
}

func newChannelCmd(a *app) *cobra.Command {
	channelCmd := &cobra.Command{
		Use:   "channel",
		Short: "Inspect the channels of the network",
	}

	var peer string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the channels joined by a peer",
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
				channels, err := rc.QueryChannels(ctx, peer)
				if err != nil {
					return err
				}
				for _, ch := range channels {
					fmt.Fprintln(cmd.OutOrStdout(), ch)
				}
				return nil
			})
		},
	}
	listCmd.Flags().StringVarP(&peer, "peer", "p", "", "peer name")

	var channel string
	orgsCmd := &cobra.Command{
		Use:   "orgs",
		Short: "List the MSP IDs of the application organizations of a channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if channel == "" {
				return errors.New("--channel is required")
			}
			return a.withSession(cmd, func(ctx reqContext.Context, session *context.Session) error {
				rc, err := resmgmt.New(session.Provider())
				if err != nil {
					return err
				}
				orgs, err := rc.GetOrganizations(ctx, channel)
				if err != nil {
					return err
				}
				for _, org := range orgs {
					fmt.Fprintln(cmd.OutOrStdout(), org)
				}
				return nil
			})
		},
	}
	orgsCmd.Flags().StringVarP(&channel, "channel", "C", "", "channel name")

	channelCmd.AddCommand(listCmd, orgsCmd)
	return channelCmd
}
