/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package fabdevtools provides developer tooling for Hyperledger Fabric networks.
//
// Packages for end developer usage
//
// pkg/context: A session bound to a connection profile and a wallet identity. The
// session hands out the client context used by the client packages below.
//
// pkg/client/discovery: Discovers the peers, channels and orderers of the network.
//
// pkg/client/resmgmt: Lists, installs, instantiates and upgrades chaincodes with the
// legacy lifecycle.
//
// pkg/client/channel: Evaluates and submits chaincode transactions on a channel.
//
// pkg/client/msp: Enrolls and registers identities with the certificate authority.
//
// Basic workflow
//
//      1) Create a context.Session and connect it with a connection profile, a
//         wallet and the label of the identity to connect as.
//      2) Create a client instance using its New func, passing session.Provider().
//      3) Use the funcs provided by each client.
//      4) Call session.Disconnect() to release the gRPC connections.
//
// The fabdev command in cmd/fabdev exposes the same operations on the command line.
package fabdevtools
