package decoder

import (
	"bytes"
	"testing"

	"github.com/exitwatch/prover/internal/domain"
)

func TestDecodeRoundTrip(t *testing.T) {
	validators := []domain.Validator{
		{ModuleID: 1, NodeOpID: 42, ValidatorIndex: 12345, Pubkey: fixedPubkey(0xAB)},
		{ModuleID: 3, NodeOpID: 1<<40 - 1, ValidatorIndex: 0, Pubkey: fixedPubkey(0xCD)},
	}
	packed := Encode(validators)

	decoded, err := Decode(packed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != len(validators) {
		t.Fatalf("expected %d records, got %d", len(validators), len(decoded))
	}
	for i, want := range validators {
		got := decoded[i]
		got.ExitDataIndex = 0 // positional field, not part of the round trip
		want.ExitDataIndex = 0
		if got != want {
			t.Fatalf("record %d: got %+v want %+v", i, got, want)
		}
	}

	reEncoded := Encode(decoded)
	if !bytes.Equal(reEncoded, packed) {
		t.Fatalf("re-encoded bytes do not match original packed bytes")
	}
}

func TestDecodeAssignsSequentialIndex(t *testing.T) {
	packed := make([]byte, recordSize*3)
	decoded, err := Decode(packed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, v := range decoded {
		if int(v.ExitDataIndex) != i {
			t.Fatalf("record %d has ExitDataIndex %d", i, v.ExitDataIndex)
		}
	}
}

func TestDecodeMalformedLength(t *testing.T) {
	_, err := Decode(make([]byte, recordSize+1))
	if !domain.IsKind(err, domain.KindMalformedExitData) {
		t.Fatalf("expected KindMalformedExitData, got %v", err)
	}
}

func TestDecodeStripsHexPrefix(t *testing.T) {
	validators := []domain.Validator{{ModuleID: 7, NodeOpID: 8, ValidatorIndex: 9, Pubkey: fixedPubkey(0xEE)}}
	packed := Encode(validators)

	decoded, err := Decode(append([]byte("0x"), packed...))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ValidatorIndex != 9 {
		t.Fatalf("unexpected decode result: %+v", decoded)
	}
}

func fixedPubkey(b byte) domain.Pubkey {
	var p domain.Pubkey
	for i := range p {
		p[i] = b
	}
	return p
}
