// Package decoder implements the packed exit-request byte layout emitted
// by the oracle contract (spec.md §4.3, C3 Exit-Request Decoder).
package decoder

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/exitwatch/prover/internal/domain"
)

const recordSize = 64

// Decode strips a leading "0x" if present and decodes packed into a
// sequence of Validator records, assigning ExitDataIndex sequentially
// starting at 0 (spec.md §4.3). A payload whose length is not a multiple
// of 64 bytes fails with domain.KindMalformedExitData.
func Decode(packed []byte) ([]domain.Validator, error) {
	if len(packed) >= 2 && packed[0] == '0' && (packed[1] == 'x' || packed[1] == 'X') {
		packed = packed[2:]
	}
	if len(packed)%recordSize != 0 {
		return nil, domain.Newf(domain.KindMalformedExitData,
			"decoder: packed exit data length %d is not a multiple of %d", len(packed), recordSize)
	}

	n := len(packed) / recordSize
	out := make([]domain.Validator, n)
	for i := 0; i < n; i++ {
		rec := packed[i*recordSize : (i+1)*recordSize]
		out[i] = decodeRecord(uint32(i), rec)
	}
	return out, nil
}

// DecodeHexString is Decode for a hex-encoded string, tolerating the
// optional "0x" prefix and surrounding whitespace.
func DecodeHexString(s string) ([]domain.Validator, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, domain.New(domain.KindMalformedExitData, err)
	}
	return Decode(b)
}

func decodeRecord(index uint32, rec []byte) domain.Validator {
	var v domain.Validator
	v.ExitDataIndex = index
	v.ModuleID = domain.ModuleID(uint32(rec[0])<<16 | uint32(rec[1])<<8 | uint32(rec[2]))
	v.NodeOpID = domain.NodeOpID(beUint40(rec[3:8]))
	v.ValidatorIndex = domain.ValidatorIndex(binary.BigEndian.Uint64(rec[8:16]))
	copy(v.Pubkey[:], rec[16:64])
	return v
}

// Encode is the inverse of Decode: given the same ordered validator
// records, it reproduces the original packed bytes (spec.md §8 round-trip
// property). ExitDataIndex is not re-serialized — it is positional.
func Encode(validators []domain.Validator) []byte {
	out := make([]byte, len(validators)*recordSize)
	for i, v := range validators {
		rec := out[i*recordSize : (i+1)*recordSize]
		rec[0] = byte(v.ModuleID >> 16)
		rec[1] = byte(v.ModuleID >> 8)
		rec[2] = byte(v.ModuleID)
		putBEUint40(rec[3:8], uint64(v.NodeOpID))
		binary.BigEndian.PutUint64(rec[8:16], uint64(v.ValidatorIndex))
		copy(rec[16:64], v.Pubkey[:])
	}
	return out
}

func beUint40(b []byte) uint64 {
	return uint64(b[0])<<32 | uint64(b[1])<<24 | uint64(b[2])<<16 | uint64(b[3])<<8 | uint64(b[4])
}

func putBEUint40(b []byte, v uint64) {
	b[0] = byte(v >> 32)
	b[1] = byte(v >> 24)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 8)
	b[4] = byte(v)
}

