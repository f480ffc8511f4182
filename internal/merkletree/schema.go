package merkletree

import (
	"github.com/exitwatch/prover/internal/ports"
)

// BeaconState container field layout, by fork. Only the two fields the
// proof builder ever walks into — Validators and HistoricalSummaries — are
// tracked; the rest of the container's field count still matters because
// gindex depends on *how many* fields precede and surround them.
//
// Deneb does not add top-level BeaconState fields relative to Capella (the
// blob additions live in the block body). Electra appends nine
// consolidation/pending-deposit fields after HistoricalSummaries, which
// does not move Validators' or HistoricalSummaries' own field index but
// does grow the container's field count past the next power of two,
// changing their gindex. Fulu's BeaconState container layout had not
// settled publicly at the time this was written; it is treated as
// identical to Electra's until a real divergence is known.
type stateSchema struct {
	fieldCount                int
	validatorsFieldIndex      int
	historicalSummariesIndex  int
}

var schemas = map[ports.ForkName]stateSchema{
	ports.ForkCapella: {fieldCount: 28, validatorsFieldIndex: 11, historicalSummariesIndex: 27},
	ports.ForkDeneb:   {fieldCount: 28, validatorsFieldIndex: 11, historicalSummariesIndex: 27},
	ports.ForkElectra: {fieldCount: 37, validatorsFieldIndex: 11, historicalSummariesIndex: 27},
	ports.ForkFulu:    {fieldCount: 37, validatorsFieldIndex: 11, historicalSummariesIndex: 27},
}

// containerFieldGindex computes the gindex of the n-th field (0-indexed) of
// a container with fieldCount fields: depth = ceil(log2(fieldCount)),
// gindex = 2^depth + n.
func containerFieldGindex(fieldCount, n int) uint64 {
	depth := 0
	for (1 << depth) < fieldCount {
		depth++
	}
	return (uint64(1) << uint64(depth)) + uint64(n)
}

// ValidatorsFieldGindex returns the gindex of BeaconState.validators within
// the state container for the given fork.
func ValidatorsFieldGindex(fork ports.ForkName) (uint64, error) {
	s, ok := schemas[fork]
	if !ok {
		return 0, unsupportedForkErr(fork)
	}
	return containerFieldGindex(s.fieldCount, s.validatorsFieldIndex), nil
}

// HistoricalSummariesFieldGindex returns the gindex of
// BeaconState.historical_summaries within the state container.
func HistoricalSummariesFieldGindex(fork ports.ForkName) (uint64, error) {
	s, ok := schemas[fork]
	if !ok {
		return 0, unsupportedForkErr(fork)
	}
	return containerFieldGindex(s.fieldCount, s.historicalSummariesIndex), nil
}

// Consensus-layer list capacities that determine each list's data-tree
// depth (ceil(log2(limit))).
const (
	ValidatorRegistryLimit  = uint64(1) << 40
	HistoricalRootsLimit    = uint64(1) << 24 // also governs historical_summaries
)

// ValidatorRegistryDepth / HistoricalSummariesDepth are the corresponding
// ceil(log2(limit)) depths of each list's data subtree (excluding the
// length mix-in).
const (
	ValidatorRegistryDepth  = 40
	HistoricalSummariesDepth = 24
)

// HistoricalSummary is a two-field container { block_summary_root,
// state_summary_root }; BlockSummaryRoot is field 0.
const HistoricalSummaryBlockRootFieldGindex = 2 // containerFieldGindex(2, 0)

func unsupportedForkErr(fork ports.ForkName) error {
	return &unsupportedForkError{fork: fork}
}

type unsupportedForkError struct{ fork ports.ForkName }

func (e *unsupportedForkError) Error() string {
	return "merkletree: unsupported fork " + string(e.fork)
}
