/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	reqContext "context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hyperledger/fabric-devtools-go/pkg/client/msp"
	"github.com/hyperledger/fabric-devtools-go/pkg/client/resmgmt"
	"github.com/hyperledger/fabric-devtools-go/pkg/context"
)

func newIdentityCmd(a *app) *cobra.Command {
	identityCmd := &cobra.Command{
		Use:   "identity",
		Short: "Enroll and register identities with the certificate authority",
	}
	identityCmd.AddCommand(newEnrollCmd(a), newRegisterCmd(a), newCAsCmd(a))
	return identityCmd
}

// newEnrollCmd does not connect a session: the enrolled identity may be the
// first one of the wallet
func newEnrollCmd(a *app) *cobra.Command {
	var enrollmentID, secret, label string
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Enroll an identity and store it in the wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if enrollmentID == "" || secret == "" {
				return errors.New("--id and --secret are required")
			}
			if label == "" {
				label = enrollmentID
			}

			wallet, err := a.wallet()
			if err != nil {
				return err
			}
			client, err := msp.New(context.BootstrapProvider(a.profile(), a.caFactory))
			if err != nil {
				return err
			}

			ctx, cancel := a.requestContext(cmd)
			defer cancel()

			enrollment, err := client.Enroll(ctx, enrollmentID, secret)
			if err != nil {
				return err
			}
			if err := client.Store(wallet, label, enrollment); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enrolled %s as %s\n", enrollmentID, label)
			return nil
		},
	}
	cmd.Flags().StringVar(&enrollmentID, "id", "", "enrollment ID")
	cmd.Flags().StringVar(&secret, "secret", "", "enrollment secret")
	cmd.Flags().StringVar(&label, "label", "", "wallet label (default: the enrollment ID)")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var enrollmentID, affiliation, secret string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a client identity, with the connected identity as registrar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if enrollmentID == "" {
				return errors.New("--id is required")
			}
			return a.withSession(cmd, func(ctx reqContext.Context, session *context.Session) error {
				client, err := msp.New(session.Provider())
				if err != nil {
					return err
				}

				var opts []msp.RegisterOption
				if secret != "" {
					opts = append(opts, msp.WithSecret(secret))
				}
				registered, err := client.Register(ctx, enrollmentID, affiliation, opts...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s with secret %s\n", enrollmentID, registered)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&enrollmentID, "id", "", "enrollment ID")
	cmd.Flags().StringVar(&affiliation, "affiliation", "", "affiliation of the identity")
	cmd.Flags().StringVar(&secret, "secret", "", "enrollment secret (default: generated by the CA)")
	return cmd
}

func newCAsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cas",
		Short: "List the certificate authorities of the connection profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx reqContext.Context, session *context.Session) error {
				rc, err := resmgmt.New(session.Provider())
				if err != nil {
					return err
				}
				names, err := rc.CertificateAuthorityNames()
				if err != nil {
					return err
				}

				client, err := msp.New(session.Provider())
				if err != nil {
					return err
				}
				current, err := client.CAName()
				if err != nil {
					logger.Debugf("No certificate authority for the client organization: %s", err)
				}
				for _, name := range names {
					marker := " "
					if name == current {
						marker = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
				}
				return nil
			})
		},
	}
}
