package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Slot, Epoch and Timestamp are the three clocks the prover reasons about.
// All three are non-negative and measured from genesis.
type Slot uint64

type Epoch uint64

type Timestamp uint64

// ModuleID, NodeOpID and ValidatorIndex identify, respectively, a staking
// module registered with the staking router, a node operator inside that
// module, and a validator inside the beacon state.
type ModuleID uint32

type NodeOpID uint64

type ValidatorIndex uint64

// FarFutureEpoch is the consensus-layer sentinel for "this validator has not
// been scheduled to exit/withdraw". It must be preserved exactly when it
// appears on chain instead of being clamped or reinterpreted.
const FarFutureEpoch Epoch = 1<<64 - 1

// Pubkey is a BLS12-381 public key in its 48-byte compressed G1 form.
type Pubkey [48]byte

// Root is a 32-byte Merkle root / SSZ hash_tree_root.
type Root [32]byte

// ParseRoot decodes a hex-encoded root, with or without a leading 0x.
func ParseRoot(s string) (Root, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return Root{}, err
	}
	if len(b) != 32 {
		return Root{}, fmt.Errorf("root must be 32 bytes, got %d", len(b))
	}
	var r Root
	copy(r[:], b)
	return r, nil
}

// BeaconConfig is the set of chain constants the prover needs, immutable
// after startup. GenesisTime comes from the beacon node's genesis endpoint
// and SHARD_COMMITTEE_PERIOD_IN_SECONDS is read from the verifier contract
// at init (spec.md §3); the other fields come from the beacon node's
// /eth/v1/config/spec endpoint.
type BeaconConfig struct {
	GenesisTime                    Timestamp
	SecondsPerSlot                 uint64
	SlotsPerEpoch                  uint64
	SlotsPerHistoricalRoot          uint64
	CapellaForkEpoch               Epoch
	ShardCommitteePeriodInSeconds Timestamp
}

// SlotToTimestamp implements slot -> timestamp = genesisTime + slot*secondsPerSlot.
func (c BeaconConfig) SlotToTimestamp(s Slot) Timestamp {
	return c.GenesisTime + Timestamp(uint64(s)*c.SecondsPerSlot)
}

// EpochToSlot implements epoch -> slot = epoch*slotsPerEpoch.
func (c BeaconConfig) EpochToSlot(e Epoch) Slot {
	return Slot(uint64(e) * c.SlotsPerEpoch)
}

// SlotToEpoch is the inverse floor-division of EpochToSlot.
func (c BeaconConfig) SlotToEpoch(s Slot) Epoch {
	return Epoch(uint64(s) / c.SlotsPerEpoch)
}

// TimestampToSlot implements the floor((t - genesis) / secondsPerSlot) used
// throughout the deadline arithmetic (spec.md §3, §4.4 step 5).
func (c BeaconConfig) TimestampToSlot(t Timestamp) Slot {
	if t < c.GenesisTime {
		return 0
	}
	return Slot(uint64(t-c.GenesisTime) / c.SecondsPerSlot)
}

// CapellaForkSlot is the first slot of the Capella fork, the anchor for
// historical-summary index arithmetic (spec.md §4.2).
func (c BeaconConfig) CapellaForkSlot() Slot {
	return c.EpochToSlot(c.CapellaForkEpoch)
}
