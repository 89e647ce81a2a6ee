/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package msp

// WalletIdentity is the credential material stored in a wallet under a label
type WalletIdentity struct {
	MSPID       string
	Certificate []byte
	PrivateKey  []byte
}

// Wallet stores identities used to connect to a network
type Wallet interface {
	Put(label string, id *WalletIdentity) error
	// Get returns ErrUserNotFound when no identity has the label
	Get(label string) (*WalletIdentity, error)
	Remove(label string) error
	Exists(label string) bool
	List() ([]string, error)
}
