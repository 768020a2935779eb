package solana

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Known pump.fun program accounts.
const (
	// PumpFunProgram is the pump.fun bonding curve program ID.
	PumpFunProgram = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
	// PumpFunGlobal is the pump.fun global state account.
	PumpFunGlobal = "4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf"
	// PumpFunFeeRecipient receives protocol fees on buys and sells.
	PumpFunFeeRecipient = "CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM"
	// MetaplexTokenMetadata is the Metaplex Token Metadata program ID.
	MetaplexTokenMetadata = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
)

// DeriveBondingCurveAddress derives the bonding curve PDA for a mint.
// Seeds: ["bonding-curve", mint].
func DeriveBondingCurveAddress(mint string) (string, error) {
	mintBytes, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decode mint: %w", err)
	}
	if len(mintBytes) != 32 {
		return "", fmt.Errorf("mint is not a 32-byte pubkey: %d bytes", len(mintBytes))
	}

	seeds := [][]byte{
		[]byte("bonding-curve"),
		mintBytes,
	}

	pda, err := DerivePDA(seeds, PumpFunProgram)
	if err != nil {
		return "", fmt.Errorf("derive bonding curve for %s: %w", mint, err)
	}
	return pda, nil
}

// DeriveMetadataAddress derives the Metaplex metadata PDA for a mint.
// Seeds: ["metadata", metadata_program, mint].
func DeriveMetadataAddress(mint string) (string, error) {
	mintBytes, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decode mint: %w", err)
	}
	programBytes, err := base58.Decode(MetaplexTokenMetadata)
	if err != nil {
		return "", fmt.Errorf("decode metadata program: %w", err)
	}

	seeds := [][]byte{
		[]byte("metadata"),
		programBytes,
		mintBytes,
	}

	pda, err := DerivePDA(seeds, MetaplexTokenMetadata)
	if err != nil {
		return "", fmt.Errorf("derive metadata for %s: %w", mint, err)
	}
	return pda, nil
}

// DerivePDA derives a Program Derived Address: concatenate seeds with a
// bump byte, the program ID and the "ProgramDerivedAddress" marker,
// SHA256, and take the first bump (descending from 255 through 0) whose
// hash is off the ed25519 curve.
func DerivePDA(seeds [][]byte, programID string) (string, error) {
	programBytes, err := base58.Decode(programID)
	if err != nil {
		return "", fmt.Errorf("decode program id: %w", err)
	}
	return derivePDA(seeds, programBytes, isOnCurve)
}

func derivePDA(seeds [][]byte, programBytes []byte, onCurve func([]byte) bool) (string, error) {
	for i := 255; i >= 0; i-- {
		data := make([]byte, 0, 128)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, byte(i))
		data = append(data, programBytes...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		if !onCurve(hash[:]) {
			return base58.Encode(hash[:]), nil
		}
	}

	return "", fmt.Errorf("no valid bump found")
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
