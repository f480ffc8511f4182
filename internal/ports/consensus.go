// Package ports declares the facades the core consumes for everything
// spec.md §1 names as an external collaborator: consensus/execution
// transport, typed contract calls, signing, and persistence. The core
// depends only on these interfaces; internal/adapters provides concrete
// implementations.
package ports

import (
	"context"

	"github.com/exitwatch/prover/internal/domain"
)

// StateID identifies a beacon state/header/block by a finalized/head tag,
// a slot number, or a root hash (spec.md §4.1).
type StateID struct {
	Tag  string // "finalized", "head", "genesis", or "" if Slot/Root is set
	Slot *domain.Slot
	Root *domain.Root
}

func HeadID() StateID              { return StateID{Tag: "head"} }
func FinalizedID() StateID         { return StateID{Tag: "finalized"} }
func SlotID(s domain.Slot) StateID { return StateID{Slot: &s} }
func RootID(r domain.Root) StateID { return StateID{Root: &r} }

// ForkName is one of the fork identifiers supported per spec.md §4.1.
type ForkName string

const (
	ForkCapella ForkName = "capella"
	ForkDeneb   ForkName = "deneb"
	ForkElectra ForkName = "electra"
	ForkFulu    ForkName = "fulu"
)

// RawState is the not-yet-decoded response of GetState: the SSZ bytes plus
// the fork that governs how to deserialize them.
type RawState struct {
	Bytes []byte
	Fork  ForkName
}

// ConsensusClient is the low-level facade over one or more beacon-node HTTP
// endpoints (spec.md §1, §4.1). Callers (internal/beacon) own retry and
// failover across the endpoint list; ConsensusClient implementations
// perform a single endpoint's request and classify the result.
type ConsensusClient interface {
	GetBeaconHeader(ctx context.Context, id StateID) (domain.BeaconBlockHeader, error)
	GetBlockInfo(ctx context.Context, id StateID) (BlockInfo, error)
	GetState(ctx context.Context, id StateID) (RawState, error)
	GetGenesis(ctx context.Context) (GenesisInfo, error)
	GetConfig(ctx context.Context) (domain.BeaconConfig, error)
}

// BlockInfo is the subset of a beacon block the prover needs: its own
// header-equivalent fields plus the execution payload block hash used to
// resolve EL block numbers (spec.md §4.9 step 2).
type BlockInfo struct {
	Slot                  domain.Slot
	ExecutionBlockHash    [32]byte
	ExecutionBlockNumber  uint64
}

type GenesisInfo struct {
	GenesisTime           domain.Timestamp
	GenesisValidatorsRoot domain.Root
}
