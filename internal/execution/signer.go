package execution

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/mr-tron/base58"
)

// KeypairSigner signs drafts with an in-memory ed25519 keypair, the
// format phantom/solana-keygen export: base58 of the 64-byte secret
// (seed followed by public key).
type KeypairSigner struct {
	key    ed25519.PrivateKey
	pubkey string
}

func NewKeypairSigner(secretBase58 string) (*KeypairSigner, error) {
	raw, err := base58.Decode(secretBase58)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key is %d bytes, want %d", len(raw), ed25519.PrivateKeySize)
	}
	key := ed25519.PrivateKey(raw)
	return &KeypairSigner{
		key:    key,
		pubkey: base58.Encode(key.Public().(ed25519.PublicKey)),
	}, nil
}

var _ TxSigner = (*KeypairSigner)(nil)

func (s *KeypairSigner) Pubkey() string { return s.pubkey }

// SignTransaction serializes the draft as a legacy transaction, signs
// the message and returns the base64 wire form SendTransaction expects.
func (s *KeypairSigner) SignTransaction(_ context.Context, draft TxDraft) (string, error) {
	msg, err := serializeMessage(draft)
	if err != nil {
		return "", err
	}
	sig := ed25519.Sign(s.key, msg)

	// Legacy wire form: compact array of signatures, then the message.
	// The fee payer is the only signer this gateway produces.
	tx := make([]byte, 0, 1+len(sig)+len(msg))
	tx = appendCompactU16(tx, 1)
	tx = append(tx, sig...)
	tx = append(tx, msg...)
	return base64.StdEncoding.EncodeToString(tx), nil
}

// accountEntry tracks how a pubkey is used across all instructions.
type accountEntry struct {
	pubkey   string
	signer   bool
	writable bool
	order    int // first-seen order, for a stable sort
}

// serializeMessage builds the legacy message: header, account keys
// sorted into signer/writable classes, blockhash, instructions with
// account and program indices.
func serializeMessage(draft TxDraft) ([]byte, error) {
	entries := map[string]*accountEntry{}
	touch := func(pubkey string, signer, writable bool) {
		e, ok := entries[pubkey]
		if !ok {
			e = &accountEntry{pubkey: pubkey, order: len(entries)}
			entries[pubkey] = e
		}
		e.signer = e.signer || signer
		e.writable = e.writable || writable
	}

	touch(draft.FeePayer, true, true)
	for _, ins := range draft.Instructions {
		for _, acc := range ins.Accounts {
			touch(acc.Pubkey, acc.Signer, acc.Writable)
		}
		touch(ins.ProgramID, false, false)
	}

	keys := make([]*accountEntry, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e)
	}
	// Message account order: writable signers, readonly signers,
	// writable non-signers, readonly non-signers. The fee payer leads.
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.pubkey == draft.FeePayer {
			return true
		}
		if b.pubkey == draft.FeePayer {
			return false
		}
		if a.signer != b.signer {
			return a.signer
		}
		if a.writable != b.writable {
			return a.writable
		}
		return a.order < b.order
	})

	index := make(map[string]int, len(keys))
	var numSigners, numReadonlySigners, numReadonlyUnsigned int
	for i, e := range keys {
		index[e.pubkey] = i
		if e.signer {
			numSigners++
			if !e.writable {
				numReadonlySigners++
			}
		} else if !e.writable {
			numReadonlyUnsigned++
		}
	}

	blockhash, err := base58.Decode(draft.RecentBlockhash)
	if err != nil {
		return nil, fmt.Errorf("decode blockhash: %w", err)
	}
	if len(blockhash) != 32 {
		return nil, fmt.Errorf("blockhash is %d bytes, want 32", len(blockhash))
	}

	msg := []byte{byte(numSigners), byte(numReadonlySigners), byte(numReadonlyUnsigned)}
	msg = appendCompactU16(msg, len(keys))
	for _, e := range keys {
		raw, err := base58.Decode(e.pubkey)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("bad account key %s", e.pubkey)
		}
		msg = append(msg, raw...)
	}
	msg = append(msg, blockhash...)

	msg = appendCompactU16(msg, len(draft.Instructions))
	for _, ins := range draft.Instructions {
		msg = append(msg, byte(index[ins.ProgramID]))
		msg = appendCompactU16(msg, len(ins.Accounts))
		for _, acc := range ins.Accounts {
			msg = append(msg, byte(index[acc.Pubkey]))
		}
		msg = appendCompactU16(msg, len(ins.Data))
		msg = append(msg, ins.Data...)
	}
	return msg, nil
}

// appendCompactU16 appends Solana's compact-u16 (shortvec) encoding.
func appendCompactU16(b []byte, v int) []byte {
	for {
		if v < 0x80 {
			return append(b, byte(v))
		}
		b = append(b, byte(v&0x7f)|0x80)
		v >>= 7
	}
}
