// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"crypto/rand"

	"golang.org/x/crypto/ed25519"

	"github.com/metolius/ledgerd/fault"
)

// PrivateKey - base type for private keys
type PrivateKey struct {
	Test       bool
	PrivateKey ed25519.PrivateKey
}

// NewPrivateKey - generate a fresh ed25519 key pair
func NewPrivateKey(test bool) (*PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		return nil, err
	}
	return &PrivateKey{
		Test:       test,
		PrivateKey: priv,
	}, nil
}

// PrivateKeyFromBytes - wrap raw ed25519 private key bytes
func PrivateKeyFromBytes(test bool, priv []byte) (*PrivateKey, error) {
	if ed25519.PrivateKeySize != len(priv) {
		return nil, fault.ErrInvalidKeyLength
	}
	return &PrivateKey{
		Test:       test,
		PrivateKey: ed25519.PrivateKey(priv),
	}, nil
}

// Account - the public account matching this private key
func (private *PrivateKey) Account() *Account {
	public := private.PrivateKey.Public().(ed25519.PublicKey)
	return &Account{
		AccountInterface: &ED25519Account{
			Test:      private.Test,
			PublicKey: []byte(public),
		},
	}
}

// Sign - sign a message
func (private *PrivateKey) Sign(message []byte) Signature {
	return Signature(ed25519.Sign(private.PrivateKey, message))
}

// PrivateKeyBytes - fetch the private key as byte slice
func (private *PrivateKey) PrivateKeyBytes() []byte {
	return []byte(private.PrivateKey)
}

// IsTesting - return whether the private key is in test mode or not
func (private *PrivateKey) IsTesting() bool {
	return private.Test
}
