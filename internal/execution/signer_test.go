package execution

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/mr-tron/base58"
)

func newTestKeypair(t *testing.T) (*KeypairSigner, ed25519.PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer, err := NewKeypairSigner(base58.Encode(priv))
	if err != nil {
		t.Fatalf("NewKeypairSigner() error: %v", err)
	}
	return signer, pub
}

func testDraft(feePayer string) TxDraft {
	return TxDraft{
		RecentBlockhash: base58.Encode(bytes.Repeat([]byte{7}, 32)),
		FeePayer:        feePayer,
		Instructions: []Instruction{
			{
				ProgramID: systemProgram,
				Accounts: []AccountMeta{
					{Pubkey: feePayer, Signer: true, Writable: true},
					{Pubkey: tokenProgram, Writable: true},
				},
				Data: []byte{1, 2, 3},
			},
		},
	}
}

func TestKeypairSigner_RejectsBadKeys(t *testing.T) {
	if _, err := NewKeypairSigner("not-base58-!!!"); err == nil {
		t.Error("NewKeypairSigner(garbage) succeeded")
	}
	if _, err := NewKeypairSigner(base58.Encode([]byte{1, 2, 3})); err == nil {
		t.Error("NewKeypairSigner(short key) succeeded")
	}
}

func TestKeypairSigner_Pubkey(t *testing.T) {
	signer, pub := newTestKeypair(t)
	if signer.Pubkey() != base58.Encode(pub) {
		t.Errorf("Pubkey() = %s, want %s", signer.Pubkey(), base58.Encode(pub))
	}
}

func TestKeypairSigner_SignatureVerifies(t *testing.T) {
	signer, pub := newTestKeypair(t)

	encoded, err := signer.SignTransaction(context.Background(), testDraft(signer.Pubkey()))
	if err != nil {
		t.Fatalf("SignTransaction() error: %v", err)
	}

	tx, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("output is not base64: %v", err)
	}
	if tx[0] != 1 {
		t.Fatalf("signature count = %d, want 1", tx[0])
	}
	sig := tx[1 : 1+ed25519.SignatureSize]
	msg := tx[1+ed25519.SignatureSize:]
	if !ed25519.Verify(pub, msg, sig) {
		t.Error("signature does not verify against the message")
	}
}

func TestSerializeMessage_Layout(t *testing.T) {
	signer, _ := newTestKeypair(t)
	draft := testDraft(signer.Pubkey())

	msg, err := serializeMessage(draft)
	if err != nil {
		t.Fatalf("serializeMessage() error: %v", err)
	}

	// Header: 1 signer, 0 readonly signers, 1 readonly unsigned (the
	// program). Accounts: payer, token program, system program.
	if msg[0] != 1 || msg[1] != 0 || msg[2] != 1 {
		t.Errorf("header = %v, want [1 0 1]", msg[:3])
	}
	if msg[3] != 3 {
		t.Fatalf("account count = %d, want 3", msg[3])
	}

	// Fee payer leads the account table.
	payer, _ := base58.Decode(signer.Pubkey())
	if !bytes.Equal(msg[4:36], payer) {
		t.Error("fee payer is not the first account key")
	}

	// Blockhash sits after the 3 account keys.
	hashOff := 4 + 3*32
	if !bytes.Equal(msg[hashOff:hashOff+32], bytes.Repeat([]byte{7}, 32)) {
		t.Error("blockhash not found at expected offset")
	}
}

func TestSerializeMessage_BadBlockhash(t *testing.T) {
	signer, _ := newTestKeypair(t)
	draft := testDraft(signer.Pubkey())
	draft.RecentBlockhash = "tooshort"
	if _, err := serializeMessage(draft); err == nil {
		t.Error("serializeMessage() accepted a bad blockhash")
	}
}

func TestAppendCompactU16(t *testing.T) {
	tests := []struct {
		v    int
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xff, 0x01}},
		{16384, []byte{0x80, 0x80, 0x01}},
	}
	for _, tt := range tests {
		if got := appendCompactU16(nil, tt.v); !bytes.Equal(got, tt.want) {
			t.Errorf("appendCompactU16(%d) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
