package beacon

import (
	"github.com/attestantio/go-eth2-client/spec/altair"
	"github.com/attestantio/go-eth2-client/spec/capella"
	"github.com/attestantio/go-eth2-client/spec/deneb"
	"github.com/attestantio/go-eth2-client/spec/electra"
	"github.com/attestantio/go-eth2-client/spec/phase0"

	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/merkletree"
)

// validatorRegistryLimit and eth1DataVotesLimit mirror the consensus-layer
// list capacities merkletree/schema.go already names for the lists the
// proof builder walks into; this file needs them too for the lists it only
// reduces to a single opaque chunk.
const (
	validatorRegistryLimit = merkletree.ValidatorRegistryLimit
	eth1DataVotesLimit     = uint64(64 * 32) // EPOCHS_PER_ETH1_VOTING_PERIOD * SLOTS_PER_EPOCH
)

type hashTreeRooter interface {
	HashTreeRoot() ([32]byte, error)
}

// commonFields holds the Capella-layout fields (schema.go's 28-field
// layout, shared verbatim by Deneb) in container order, field 11
// (validators) and field 27 (historical_summaries) excluded since the
// caller walks into those directly.
type commonFields struct {
	genesisTime                  uint64
	genesisValidatorsRoot        domain.Root
	slot                         uint64
	fork                         hashTreeRooter
	latestBlockHeader            hashTreeRooter
	blockRoots                   []domain.Root
	stateRoots                   []domain.Root
	historicalRoots              []domain.Root
	eth1Data                     hashTreeRooter
	eth1DataVotes                []domain.Root
	eth1DepositIndex             uint64
	balances                     []uint64
	randaoMixes                  []domain.Root
	slashings                    []uint64
	previousEpochParticipation   []byte
	currentEpochParticipation    []byte
	justificationBits            []byte
	previousJustifiedCheckpoint  hashTreeRooter
	currentJustifiedCheckpoint   hashTreeRooter
	finalizedCheckpoint          hashTreeRooter
	inactivityScores             []uint64
	currentSyncCommittee         hashTreeRooter
	nextSyncCommittee            hashTreeRooter
	latestExecutionPayloadHeader hashTreeRooter
	nextWithdrawalIndex          uint64
	nextWithdrawalValidatorIndex uint64
}

// fieldChunksFromCommon computes hash_tree_root for every field in f,
// keyed by its schema.go index (validators=11 and historicalSummaries=27
// are never keys here).
func fieldChunksFromCommon(f commonFields) (map[int]domain.Root, error) {
	c := make(map[int]domain.Root, 26)

	c[0] = uint64Root(f.genesisTime)
	c[1] = f.genesisValidatorsRoot
	c[2] = uint64Root(f.slot)

	if err := putContainerRoot(c, 3, f.fork); err != nil {
		return nil, err
	}
	if err := putContainerRoot(c, 4, f.latestBlockHeader); err != nil {
		return nil, err
	}
	if err := putRootVectorChunk(c, 5, f.blockRoots); err != nil {
		return nil, err
	}
	if err := putRootVectorChunk(c, 6, f.stateRoots); err != nil {
		return nil, err
	}
	if err := putRootListChunkDirect(c, 7, f.historicalRoots, merkletree.HistoricalRootsLimit); err != nil {
		return nil, err
	}
	if err := putContainerRoot(c, 8, f.eth1Data); err != nil {
		return nil, err
	}
	if err := putRootListChunkDirect(c, 9, f.eth1DataVotes, eth1DataVotesLimit); err != nil {
		return nil, err
	}
	c[10] = uint64Root(f.eth1DepositIndex)
	// 11: validators, handled by the caller.
	if err := putUint64ListChunk(c, 12, f.balances, validatorRegistryLimit); err != nil {
		return nil, err
	}
	if err := putRootVectorChunk(c, 13, f.randaoMixes); err != nil {
		return nil, err
	}
	if err := putUint64VectorChunk(c, 14, f.slashings); err != nil {
		return nil, err
	}
	if err := putByteListChunk(c, 15, f.previousEpochParticipation, validatorRegistryLimit); err != nil {
		return nil, err
	}
	if err := putByteListChunk(c, 16, f.currentEpochParticipation, validatorRegistryLimit); err != nil {
		return nil, err
	}
	if err := putFixedBytesChunk(c, 17, f.justificationBits); err != nil {
		return nil, err
	}
	if err := putContainerRoot(c, 18, f.previousJustifiedCheckpoint); err != nil {
		return nil, err
	}
	if err := putContainerRoot(c, 19, f.currentJustifiedCheckpoint); err != nil {
		return nil, err
	}
	if err := putContainerRoot(c, 20, f.finalizedCheckpoint); err != nil {
		return nil, err
	}
	if err := putUint64ListChunk(c, 21, f.inactivityScores, validatorRegistryLimit); err != nil {
		return nil, err
	}
	if err := putContainerRoot(c, 22, f.currentSyncCommittee); err != nil {
		return nil, err
	}
	if err := putContainerRoot(c, 23, f.nextSyncCommittee); err != nil {
		return nil, err
	}
	if err := putContainerRoot(c, 24, f.latestExecutionPayloadHeader); err != nil {
		return nil, err
	}
	c[25] = uint64Root(f.nextWithdrawalIndex)
	c[26] = uint64Root(f.nextWithdrawalValidatorIndex)
	// 27: historical_summaries, handled by the caller.

	return c, nil
}

func capellaFieldChunks(s *capella.BeaconState, _ uint64) (map[int]domain.Root, error) {
	return fieldChunksFromCommon(commonFields{
		genesisTime:                  s.GenesisTime,
		genesisValidatorsRoot:        domain.Root(s.GenesisValidatorsRoot),
		slot:                         uint64(s.Slot),
		fork:                         s.Fork,
		latestBlockHeader:            s.LatestBlockHeader,
		blockRoots:                   toRoots(s.BlockRoots),
		stateRoots:                   toRoots(s.StateRoots),
		historicalRoots:              toRoots(s.HistoricalRoots),
		eth1Data:                     s.ETH1Data,
		eth1DataVotes:                containerRoots(s.ETH1DataVotes),
		eth1DepositIndex:             s.ETH1DepositIndex,
		balances:                     gweiToUint64(s.Balances),
		randaoMixes:                  toRoots(s.RANDAOMixes),
		slashings:                    gweiToUint64(s.Slashings),
		previousEpochParticipation:   flagsToBytes(s.PreviousEpochParticipation),
		currentEpochParticipation:    flagsToBytes(s.CurrentEpochParticipation),
		justificationBits:            []byte(s.JustificationBits),
		previousJustifiedCheckpoint:  s.PreviousJustifiedCheckpoint,
		currentJustifiedCheckpoint:   s.CurrentJustifiedCheckpoint,
		finalizedCheckpoint:          s.FinalizedCheckpoint,
		inactivityScores:             s.InactivityScores,
		currentSyncCommittee:         s.CurrentSyncCommittee,
		nextSyncCommittee:            s.NextSyncCommittee,
		latestExecutionPayloadHeader: s.LatestExecutionPayloadHeader,
		nextWithdrawalIndex:          uint64(s.NextWithdrawalIndex),
		nextWithdrawalValidatorIndex: uint64(s.NextWithdrawalValidatorIndex),
	})
}

func denebFieldChunks(s *deneb.BeaconState, _ uint64) (map[int]domain.Root, error) {
	return fieldChunksFromCommon(commonFields{
		genesisTime:                  s.GenesisTime,
		genesisValidatorsRoot:        domain.Root(s.GenesisValidatorsRoot),
		slot:                         uint64(s.Slot),
		fork:                         s.Fork,
		latestBlockHeader:            s.LatestBlockHeader,
		blockRoots:                   toRoots(s.BlockRoots),
		stateRoots:                   toRoots(s.StateRoots),
		historicalRoots:              toRoots(s.HistoricalRoots),
		eth1Data:                     s.ETH1Data,
		eth1DataVotes:                containerRoots(s.ETH1DataVotes),
		eth1DepositIndex:             s.ETH1DepositIndex,
		balances:                     gweiToUint64(s.Balances),
		randaoMixes:                  toRoots(s.RANDAOMixes),
		slashings:                    gweiToUint64(s.Slashings),
		previousEpochParticipation:   flagsToBytes(s.PreviousEpochParticipation),
		currentEpochParticipation:    flagsToBytes(s.CurrentEpochParticipation),
		justificationBits:            []byte(s.JustificationBits),
		previousJustifiedCheckpoint:  s.PreviousJustifiedCheckpoint,
		currentJustifiedCheckpoint:   s.CurrentJustifiedCheckpoint,
		finalizedCheckpoint:          s.FinalizedCheckpoint,
		inactivityScores:             s.InactivityScores,
		currentSyncCommittee:         s.CurrentSyncCommittee,
		nextSyncCommittee:            s.NextSyncCommittee,
		latestExecutionPayloadHeader: s.LatestExecutionPayloadHeader,
		nextWithdrawalIndex:          uint64(s.NextWithdrawalIndex),
		nextWithdrawalValidatorIndex: uint64(s.NextWithdrawalValidatorIndex),
	})
}

func electraFieldChunks(s *electra.BeaconState, _ uint64) (map[int]domain.Root, error) {
	c, err := fieldChunksFromCommon(commonFields{
		genesisTime:                  s.GenesisTime,
		genesisValidatorsRoot:        domain.Root(s.GenesisValidatorsRoot),
		slot:                         uint64(s.Slot),
		fork:                         s.Fork,
		latestBlockHeader:            s.LatestBlockHeader,
		blockRoots:                   toRoots(s.BlockRoots),
		stateRoots:                   toRoots(s.StateRoots),
		historicalRoots:              toRoots(s.HistoricalRoots),
		eth1Data:                     s.ETH1Data,
		eth1DataVotes:                containerRoots(s.ETH1DataVotes),
		eth1DepositIndex:             s.ETH1DepositIndex,
		balances:                     gweiToUint64(s.Balances),
		randaoMixes:                  toRoots(s.RANDAOMixes),
		slashings:                    gweiToUint64(s.Slashings),
		previousEpochParticipation:   flagsToBytes(s.PreviousEpochParticipation),
		currentEpochParticipation:    flagsToBytes(s.CurrentEpochParticipation),
		justificationBits:            []byte(s.JustificationBits),
		previousJustifiedCheckpoint:  s.PreviousJustifiedCheckpoint,
		currentJustifiedCheckpoint:   s.CurrentJustifiedCheckpoint,
		finalizedCheckpoint:          s.FinalizedCheckpoint,
		inactivityScores:             s.InactivityScores,
		currentSyncCommittee:         s.CurrentSyncCommittee,
		nextSyncCommittee:            s.NextSyncCommittee,
		latestExecutionPayloadHeader: s.LatestExecutionPayloadHeader,
		nextWithdrawalIndex:          uint64(s.NextWithdrawalIndex),
		nextWithdrawalValidatorIndex: uint64(s.NextWithdrawalValidatorIndex),
	})
	if err != nil {
		return nil, err
	}

	c[28] = uint64Root(s.DepositRequestsStartIndex)
	c[29] = uint64Root(uint64(s.DepositBalanceToConsume))
	c[30] = uint64Root(uint64(s.ExitBalanceToConsume))
	c[31] = uint64Root(uint64(s.EarliestExitEpoch))
	c[32] = uint64Root(uint64(s.ConsolidationBalanceToConsume))
	c[33] = uint64Root(uint64(s.EarliestConsolidationEpoch))
	if err := putRootListChunkDirect(c, 34, containerRoots(s.PendingDeposits), pendingDepositsLimit); err != nil {
		return nil, err
	}
	if err := putRootListChunkDirect(c, 35, containerRoots(s.PendingPartialWithdrawals), pendingPartialWithdrawalsLimit); err != nil {
		return nil, err
	}
	if err := putRootListChunkDirect(c, 36, containerRoots(s.PendingConsolidations), pendingConsolidationsLimit); err != nil {
		return nil, err
	}
	return c, nil
}

// Electra pending-* list capacities per the consensus-layer presets.
const (
	pendingDepositsLimit            = uint64(1) << 27
	pendingPartialWithdrawalsLimit  = uint64(1) << 27
	pendingConsolidationsLimit      = uint64(1) << 18
)

// --- generic leaf/list/vector reducers ---

func putContainerRoot(c map[int]domain.Root, idx int, v hashTreeRooter) error {
	root, err := v.HashTreeRoot()
	if err != nil {
		return domain.New(domain.KindStateDeserialization, err)
	}
	c[idx] = domain.Root(root)
	return nil
}

func putRootVectorChunk(c map[int]domain.Root, idx int, roots []domain.Root) error {
	root, err := merkletree.HashRootVector(roots)
	if err != nil {
		return err
	}
	c[idx] = root
	return nil
}

func putRootListChunkDirect(c map[int]domain.Root, idx int, roots []domain.Root, limit uint64) error {
	root, err := merkletree.HashRootList(roots, limit)
	if err != nil {
		return err
	}
	c[idx] = root
	return nil
}

func putUint64VectorChunk(c map[int]domain.Root, idx int, vals []uint64) error {
	root, err := merkletree.HashUint64Vector(vals)
	if err != nil {
		return err
	}
	c[idx] = root
	return nil
}

func putUint64ListChunk(c map[int]domain.Root, idx int, vals []uint64, limit uint64) error {
	root, err := merkletree.HashUint64List(vals, limit)
	if err != nil {
		return err
	}
	c[idx] = root
	return nil
}

func putByteListChunk(c map[int]domain.Root, idx int, b []byte, limit uint64) error {
	root, err := merkletree.HashByteList(b, limit)
	if err != nil {
		return err
	}
	c[idx] = root
	return nil
}

func putFixedBytesChunk(c map[int]domain.Root, idx int, b []byte) error {
	root, err := merkletree.HashFixedBytes(b)
	if err != nil {
		return err
	}
	c[idx] = root
	return nil
}

// --- type conversions between go-eth2-client's per-fork types and the
// uniform shapes commonFields expects ---

func uint64Root(v uint64) domain.Root {
	var r domain.Root
	for i := 0; i < 8; i++ {
		r[i] = byte(v)
		v >>= 8
	}
	return r
}

func toRoots(roots []phase0.Root) []domain.Root {
	out := make([]domain.Root, len(roots))
	for i, r := range roots {
		out[i] = domain.Root(r)
	}
	return out
}

func gweiToUint64(vals []phase0.Gwei) []uint64 {
	out := make([]uint64, len(vals))
	for i, v := range vals {
		out[i] = uint64(v)
	}
	return out
}

func flagsToBytes(flags []altair.ParticipationFlags) []byte {
	out := make([]byte, len(flags))
	for i, f := range flags {
		out[i] = byte(f)
	}
	return out
}

// containerRoots reduces a slice of pointers to fastssz-generated
// containers to their own hash_tree_root, skipping any that fail to hash.
// A skipped item changes the resulting list root. SSZDecoder leaves
// StateView.StateRoot unset, so merkletree's state-root comparison during
// tree assembly does not run for views it decodes and the change is not
// reported.
func containerRoots[T hashTreeRooter](items []T) []domain.Root {
	out := make([]domain.Root, 0, len(items))
	for _, item := range items {
		root, err := item.HashTreeRoot()
		if err != nil {
			continue
		}
		out = append(out, domain.Root(root))
	}
	return out
}
