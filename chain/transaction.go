// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
	"github.com/ava-labs/hypercounter/crypto/ed25519"
	"github.com/ava-labs/hypercounter/program"
	"github.com/ava-labs/hypercounter/state"
	"github.com/ava-labs/hypercounter/storage"
	"github.com/ava-labs/hypercounter/utils"
)

// Transaction is an ordered list of instructions executed atomically.
type Transaction struct {
	Timestamp    int64                  `json:"timestamp"`
	Instructions []*program.Instruction `json:"instructions"`
	Auth         []*Auth                `json:"auth"`

	digest    []byte
	bytes     []byte
	size      int
	id        ids.ID
	stateKeys state.Keys
}

func NewTx(timestamp int64, instructions ...*program.Instruction) *Transaction {
	return &Transaction{
		Timestamp:    timestamp,
		Instructions: instructions,
	}
}

func (t *Transaction) digestSize() int {
	size := consts.Uint64Len + consts.ByteLen
	for _, ix := range t.Instructions {
		size += ix.Size()
	}
	return size
}

// Digest is the message every signer signs.
func (t *Transaction) Digest() ([]byte, error) {
	if len(t.digest) > 0 {
		return t.digest, nil
	}
	if len(t.Instructions) == 0 {
		return nil, ErrNoInstructions
	}
	if len(t.Instructions) > MaxInstructions {
		return nil, ErrTooManyInstructions
	}
	p := codec.NewWriter(t.digestSize(), NetworkSizeLimit)
	t.marshalDigest(p)
	return p.Bytes(), p.Err()
}

func (t *Transaction) marshalDigest(p *codec.Packer) {
	p.PackInt64(t.Timestamp)
	p.PackByte(uint8(len(t.Instructions)))
	for _, ix := range t.Instructions {
		ix.Marshal(p)
	}
}

// Sign attaches a signature from every key in [keys] and returns the
// transaction reloaded from its bytes.
func (t *Transaction) Sign(keys ...ed25519.PrivateKey) (*Transaction, error) {
	if len(keys) > MaxSigners {
		return nil, ErrTooManySigners
	}
	msg, err := t.Digest()
	if err != nil {
		return nil, err
	}
	t.Auth = make([]*Auth, len(keys))
	for i, k := range keys {
		t.Auth[i] = &Auth{Signer: k.PublicKey(), Signature: ed25519.Sign(msg, k)}
	}

	// Ensure transaction is fully initialized and correct by reloading it from
	// bytes
	size := len(msg) + consts.ByteLen + len(t.Auth)*AuthSize
	p := codec.NewWriter(size, NetworkSizeLimit)
	if err := t.Marshal(p); err != nil {
		return nil, err
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return UnmarshalTx(codec.NewReader(p.Bytes(), NetworkSizeLimit))
}

func (t *Transaction) Bytes() []byte { return t.bytes }

func (t *Transaction) Size() int { return t.size }

func (t *Transaction) ID() ids.ID { return t.id }

// Signers verifies every signature and returns the addresses that signed.
func (t *Transaction) Signers() (set.Set[codec.Address], error) {
	msg, err := t.Digest()
	if err != nil {
		return nil, err
	}
	signers := set.NewSet[codec.Address](len(t.Auth))
	for _, auth := range t.Auth {
		addr := auth.Address()
		if signers.Contains(addr) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSigner, addr)
		}
		signers.Add(addr)
	}
	if len(t.Auth) >= ed25519.MinBatchSize {
		batch := ed25519.NewBatch(len(t.Auth))
		for _, auth := range t.Auth {
			batch.Add(msg, auth.Signer, auth.Signature)
		}
		if err := batch.Verify(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAuthFailed, err)
		}
		return signers, nil
	}
	for _, auth := range t.Auth {
		if !ed25519.Verify(msg, auth.Signer, auth.Signature) {
			return nil, fmt.Errorf("%w: invalid signature from %s", ErrAuthFailed, auth.Address())
		}
	}
	return signers, nil
}

// Accounts returns every address referenced by the instructions of [t], in
// first-seen order, with the union of the privileges requested for it.
func (t *Transaction) Accounts() []program.AccountMeta {
	var (
		metas []program.AccountMeta
		index = map[codec.Address]int{}
	)
	for _, ix := range t.Instructions {
		for _, meta := range ix.Accounts {
			i, ok := index[meta.Address]
			if !ok {
				index[meta.Address] = len(metas)
				metas = append(metas, meta)
				continue
			}
			metas[i].IsSigner = metas[i].IsSigner || meta.IsSigner
			metas[i].IsWritable = metas[i].IsWritable || meta.IsWritable
		}
	}
	return metas
}

// StateKeys returns the account keys [t] may touch. Writable accounts may be
// created, modified, or removed. Read-only accounts are only read.
func (t *Transaction) StateKeys() state.Keys {
	if t.stateKeys != nil {
		return t.stateKeys
	}
	stateKeys := make(state.Keys)
	for _, meta := range t.Accounts() {
		perm := state.Read
		if meta.IsWritable {
			perm = state.All
		}
		stateKeys.Add(string(storage.AccountKey(meta.Address)), perm)
	}
	t.stateKeys = stateKeys
	return stateKeys
}

func (t *Transaction) Marshal(p *codec.Packer) error {
	if len(t.bytes) > 0 {
		p.PackFixedBytes(t.bytes)
		return p.Err()
	}
	if len(t.Instructions) == 0 {
		return ErrNoInstructions
	}
	if len(t.Instructions) > MaxInstructions {
		return ErrTooManyInstructions
	}
	if len(t.Auth) > MaxSigners {
		return ErrTooManySigners
	}
	t.marshalDigest(p)
	p.PackByte(uint8(len(t.Auth)))
	for _, auth := range t.Auth {
		auth.Marshal(p)
	}
	return p.Err()
}

func UnmarshalTx(p *codec.Packer) (*Transaction, error) {
	start := p.Offset()
	tx := &Transaction{Timestamp: p.UnpackInt64(false)}
	numInstructions := p.UnpackByte()
	if numInstructions == 0 {
		return nil, ErrNoInstructions
	}
	if numInstructions > MaxInstructions {
		return nil, ErrTooManyInstructions
	}
	tx.Instructions = make([]*program.Instruction, numInstructions)
	for i := range tx.Instructions {
		ix, err := program.UnmarshalInstruction(p)
		if err != nil {
			return nil, fmt.Errorf("%w: could not unmarshal instruction %d", err, i)
		}
		tx.Instructions[i] = ix
	}
	digest := p.Offset()
	numAuth := p.UnpackByte()
	if numAuth > MaxSigners {
		return nil, ErrTooManySigners
	}
	tx.Auth = make([]*Auth, numAuth)
	for i := range tx.Auth {
		tx.Auth[i] = UnmarshalAuth(p)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	codecBytes := p.Bytes()
	tx.digest = codecBytes[start:digest]
	tx.bytes = codecBytes[start:p.Offset()]
	tx.size = len(tx.bytes)
	tx.id = utils.ToID(tx.bytes)
	return tx, nil
}

// Parse decodes a single transaction that spans all of [b].
func Parse(b []byte) (*Transaction, error) {
	p := codec.NewReader(b, NetworkSizeLimit)
	tx, err := UnmarshalTx(p)
	if err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, codec.ErrTrailingBytes
	}
	return tx, nil
}
