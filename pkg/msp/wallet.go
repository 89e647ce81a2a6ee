/*
Copyright 2020 IBM All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package msp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
)

const (
	x509Type          = "X.509"
	dataFileExtension = ".id"
)

// X509Identity is the JSON form of an identity stored in a wallet
type X509Identity struct {
	Version     int         `json:"version"`
	MspID       string      `json:"mspId"`
	IDType      string      `json:"type"`
	Credentials credentials `json:"credentials"`
}

type credentials struct {
	Certificate string `json:"certificate"`
	Key         string `json:"privateKey"`
}

// NewX509Identity creates the wallet form of an enrollment
func NewX509Identity(mspID string, enrollment *msp.Enrollment) *msp.WalletIdentity {
	return &msp.WalletIdentity{
		MSPID:       mspID,
		Certificate: enrollment.Certificate,
		PrivateKey:  enrollment.PrivateKey,
	}
}

func toJSON(id *msp.WalletIdentity) ([]byte, error) {
	return json.Marshal(&X509Identity{
		Version:     1,
		MspID:       id.MSPID,
		IDType:      x509Type,
		Credentials: credentials{Certificate: string(id.Certificate), Key: string(id.PrivateKey)},
	})
}

func fromJSON(content []byte) (*msp.WalletIdentity, error) {
	x := &X509Identity{}
	if err := json.Unmarshal(content, x); err != nil {
		return nil, errors.Wrap(err, "Invalid identity format")
	}
	if x.IDType != x509Type {
		return nil, errors.Errorf("Invalid identity format: unsupported identity type: %s", x.IDType)
	}
	return &msp.WalletIdentity{
		MSPID:       x.MspID,
		Certificate: []byte(x.Credentials.Certificate),
		PrivateKey:  []byte(x.Credentials.Key),
	}, nil
}

// InMemoryWallet holds identities for the lifetime of the process
type InMemoryWallet struct {
	mutex   sync.RWMutex
	storage map[string][]byte
}

// NewInMemoryWallet creates an empty wallet that is not backed by a persistent store
func NewInMemoryWallet() *InMemoryWallet {
	return &InMemoryWallet{storage: make(map[string][]byte)}
}

// Put an identity into the wallet.
func (w *InMemoryWallet) Put(label string, id *msp.WalletIdentity) error {
	content, err := toJSON(id)
	if err != nil {
		return err
	}
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.storage[label] = content
	return nil
}

// Get an identity from the wallet.
func (w *InMemoryWallet) Get(label string) (*msp.WalletIdentity, error) {
	w.mutex.RLock()
	content, ok := w.storage[label]
	w.mutex.RUnlock()
	if !ok {
		return nil, errors.WithMessagef(msp.ErrUserNotFound, "label [%s]", label)
	}
	return fromJSON(content)
}

// Remove an identity from the wallet. If the identity does not exist, this method does nothing.
func (w *InMemoryWallet) Remove(label string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	delete(w.storage, label)
	return nil
}

// Exists returns true if the identity is in the wallet.
func (w *InMemoryWallet) Exists(label string) bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	_, ok := w.storage[label]
	return ok
}

// List all of the labels in the wallet.
func (w *InMemoryWallet) List() ([]string, error) {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	labels := make([]string, 0, len(w.storage))
	for label := range w.storage {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels, nil
}

// FileSystemWallet stores each identity as <label>.id in a directory
type FileSystemWallet struct {
	fs   afero.Fs
	path string
}

// NewFileSystemWallet creates a wallet in the directory path of fs, creating
// the directory if needed.
func NewFileSystemWallet(fs afero.Fs, path string) (*FileSystemWallet, error) {
	cleanPath := filepath.Clean(path)
	if err := fs.MkdirAll(cleanPath, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "failed to create wallet directory [%s]", cleanPath)
	}
	return &FileSystemWallet{fs: fs, path: cleanPath}, nil
}

func (w *FileSystemWallet) pathname(label string) string {
	return filepath.Join(w.path, label) + dataFileExtension
}

// Put an identity into the wallet.
func (w *FileSystemWallet) Put(label string, id *msp.WalletIdentity) error {
	content, err := toJSON(id)
	if err != nil {
		return err
	}
	return afero.WriteFile(w.fs, w.pathname(label), content, 0600)
}

// Get an identity from the wallet.
func (w *FileSystemWallet) Get(label string) (*msp.WalletIdentity, error) {
	content, err := afero.ReadFile(w.fs, w.pathname(label))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithMessagef(msp.ErrUserNotFound, "label [%s]", label)
		}
		return nil, err
	}
	return fromJSON(content)
}

// Remove an identity from the wallet. If the identity does not exist, this method does nothing.
func (w *FileSystemWallet) Remove(label string) error {
	_ = w.fs.Remove(w.pathname(label))
	return nil
}

// Exists tests the existence of an identity in the wallet.
func (w *FileSystemWallet) Exists(label string) bool {
	ok, err := afero.Exists(w.fs, w.pathname(label))
	return err == nil && ok
}

// List all of the labels in the wallet.
func (w *FileSystemWallet) List() ([]string, error) {
	files, err := afero.ReadDir(w.fs, w.path)
	if err != nil {
		return nil, err
	}

	var labels []string
	for _, file := range files {
		name := file.Name()
		if !file.IsDir() && filepath.Ext(name) == dataFileExtension {
			labels = append(labels, strings.TrimSuffix(name, dataFileExtension))
		}
	}
	return labels, nil
}
