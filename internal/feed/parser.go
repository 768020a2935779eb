// Package feed watches the pump.fun program for new token launches and
// dispatches them to handler workers.
package feed

import (
	"encoding/base64"
	"encoding/binary"
	"strings"

	"github.com/mr-tron/base58"

	"solana-pump-sniper/internal/domain"
	"solana-pump-sniper/internal/solana"
)

// Creation is a parsed token launch: the on-chain event plus the
// metadata the program emits alongside it.
type Creation struct {
	Event  domain.TokenEvent
	Name   string
	Symbol string
	URI    string
}

// createEventDiscriminator identifies the anchor CreateEvent in program data logs.
var createEventDiscriminator = []byte{27, 114, 169, 77, 222, 235, 99, 118}

const programDataPrefix = "Program log: Program data: "

// alternate prefix emitted by some validators
const programDataPrefixShort = "Program data: "

// CreateParser extracts token launches from pump.fun transaction logs.
type CreateParser struct{}

// NewCreateParser creates a new launch parser.
func NewCreateParser() *CreateParser {
	return &CreateParser{}
}

// ParseCreation parses a launch from a log notification. Returns nil when
// the logs do not carry a pump.fun Create instruction.
func (p *CreateParser) ParseCreation(logs []string, txSig string, slot int64, observedAt int64) *Creation {
	if !containsCreateInstruction(logs) {
		return nil
	}

	for _, line := range logs {
		data, ok := extractProgramData(line)
		if !ok {
			continue
		}

		creation := p.decodeCreateEvent(data)
		if creation == nil {
			continue
		}

		creation.Event.TxSignature = txSig
		creation.Event.Slot = slot
		creation.Event.ObservedAt = observedAt
		return creation
	}

	return nil
}

// containsCreateInstruction checks for a Create instruction inside a
// pump.fun program invocation.
func containsCreateInstruction(logs []string) bool {
	inPumpFun := false
	for _, line := range logs {
		if strings.Contains(line, "Program "+solana.PumpFunProgram+" invoke") {
			inPumpFun = true
			continue
		}
		if strings.Contains(line, "Program "+solana.PumpFunProgram+" success") ||
			strings.Contains(line, "Program "+solana.PumpFunProgram+" failed") {
			inPumpFun = false
			continue
		}
		if inPumpFun && strings.Contains(line, "Program log: Instruction: Create") {
			return true
		}
	}
	return false
}

// extractProgramData pulls the base64 payload from a program data log line.
func extractProgramData(line string) ([]byte, bool) {
	var payload string
	switch {
	case strings.HasPrefix(line, programDataPrefix):
		payload = line[len(programDataPrefix):]
	case strings.HasPrefix(line, programDataPrefixShort):
		payload = line[len(programDataPrefixShort):]
	default:
		return nil, false
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}
	return data, true
}

// decodeCreateEvent decodes the anchor CreateEvent payload.
// Layout: discriminator(8) + name(4+len) + symbol(4+len) + uri(4+len)
// + mint(32) + bonding_curve(32) + user(32)
func (p *CreateParser) decodeCreateEvent(data []byte) *Creation {
	if len(data) < len(createEventDiscriminator) {
		return nil
	}
	for i, b := range createEventDiscriminator {
		if data[i] != b {
			return nil
		}
	}

	offset := len(createEventDiscriminator)

	name, offset, ok := readBorshString(data, offset)
	if !ok {
		return nil
	}
	symbol, offset, ok := readBorshString(data, offset)
	if !ok {
		return nil
	}
	uri, offset, ok := readBorshString(data, offset)
	if !ok {
		return nil
	}

	if offset+96 > len(data) {
		return nil
	}

	mint := base58.Encode(data[offset : offset+32])
	bondingCurve := base58.Encode(data[offset+32 : offset+64])
	creator := base58.Encode(data[offset+64 : offset+96])

	return &Creation{
		Event: domain.TokenEvent{
			Mint:         mint,
			BondingCurve: bondingCurve,
			Creator:      creator,
		},
		Name:   strings.TrimRight(name, "\x00"),
		Symbol: strings.TrimRight(symbol, "\x00"),
		URI:    strings.TrimRight(uri, "\x00"),
	}
}

// readBorshString reads a borsh string (4-byte LE length + data).
func readBorshString(data []byte, offset int) (string, int, bool) {
	if offset+4 > len(data) {
		return "", offset, false
	}
	length := binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	// Sanity bound; pump.fun metadata strings are short
	if length > 512 || offset+int(length) > len(data) {
		return "", offset, false
	}

	s := string(data[offset : offset+int(length)])
	return s, offset + int(length), true
}
