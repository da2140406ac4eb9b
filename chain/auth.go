// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/crypto/ed25519"
)

const AuthSize = ed25519.PublicKeyLen + ed25519.SignatureLen

// Auth is an ed25519 signature over the transaction digest.
type Auth struct {
	Signer    ed25519.PublicKey `json:"signer"`
	Signature ed25519.Signature `json:"signature"`
}

func (a *Auth) Address() codec.Address {
	return a.Signer.Address()
}

func (a *Auth) Marshal(p *codec.Packer) {
	p.PackFixedBytes(a.Signer[:])
	p.PackFixedBytes(a.Signature[:])
}

func UnmarshalAuth(p *codec.Packer) *Auth {
	var (
		a      Auth
		signer []byte
		sig    []byte
	)
	p.UnpackFixedBytes(ed25519.PublicKeyLen, &signer)
	copy(a.Signer[:], signer)
	p.UnpackFixedBytes(ed25519.SignatureLen, &sig)
	copy(a.Signature[:], sig)
	return &a
}
