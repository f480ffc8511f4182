// Package gas implements the Gas Manager (spec.md §4.6, C6): a rolling
// cache of historical base fees used to decide whether the current base fee
// is "acceptable" to submit at, and the EIP-1559 fee parameters for a
// submission.
package gas

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/exitwatch/prover/internal/ports"
)

// Config holds the tunables spec.md §4.6 and §6 name.
type Config struct {
	// BlocksPerHour approximates the chain's block production rate, used to
	// decide whether a refresh is due. Spec default: 300.
	BlocksPerHour uint64

	// HistoryDays bounds how much history the cache retains.
	HistoryDays uint64

	// HistoryPercentile is the acceptability threshold, e.g. 30 for p30.
	HistoryPercentile float64

	// MaxBlockCount is the execution client's eth_feeHistory batch limit
	// (MAX_BLOCKCOUNT).
	MaxBlockCount uint64

	// PriorityFeePercentile, MinPriorityFee and MaxPriorityFee parametrize
	// the EIP-1559 maxPriorityFeePerGas computation.
	PriorityFeePercentile float64
	MinPriorityFee        *uint256.Int
	MaxPriorityFee        *uint256.Int
}

// Manager maintains the base-fee history cache and answers gas-acceptability
// and EIP-1559 parameter questions for the transaction executor. It is not
// safe for concurrent use.
type Manager struct {
	cfg    Config
	client ports.ExecutionClient

	// history is oldest-first, mirroring spec.md §4.6's
	// "gasFeeHistoryCache: [u256] (base-fees, oldest-first)".
	history                  []*uint256.Int
	lastFeeHistoryBlockNumber uint64
}

// New constructs a Manager with an empty cache.
func New(cfg Config, client ports.ExecutionClient) *Manager {
	return &Manager{cfg: cfg, client: client}
}

// Refresh implements spec.md §4.6's refresh rule. It is a no-op if fewer
// than cfg.BlocksPerHour blocks have elapsed since the last refresh.
func (m *Manager) Refresh(ctx context.Context) error {
	latest, err := m.client.BlockNumber(ctx)
	if err != nil {
		return err
	}
	if m.lastFeeHistoryBlockNumber != 0 && latest-m.lastFeeHistoryBlockNumber < m.cfg.BlocksPerHour {
		return nil
	}

	blocksSinceRefresh := latest
	if m.lastFeeHistoryBlockNumber != 0 {
		blocksSinceRefresh = latest - m.lastFeeHistoryBlockNumber
	}
	maxHistoryBlocks := m.cfg.HistoryDays * 24 * m.cfg.BlocksPerHour
	toFetch := blocksSinceRefresh
	if toFetch > maxHistoryBlocks {
		toFetch = maxHistoryBlocks
	}

	fetched, err := m.fetchBatches(ctx, latest, toFetch)
	if err != nil {
		return err
	}

	// Append the freshly fetched (oldest-first) fees, then keep only
	// maxHistoryBlocks entries: spec.md §4.6 "truncate oldest entries so the
	// cache length matches the new-fees prefix semantics".
	m.history = append(m.history, fetched...)
	if uint64(len(m.history)) > maxHistoryBlocks {
		m.history = m.history[uint64(len(m.history))-maxHistoryBlocks:]
	}
	m.lastFeeHistoryBlockNumber = latest
	return nil
}

// fetchBatches pulls count blocks ending at newestBlock in batches bounded
// by cfg.MaxBlockCount, dropping the extra trailing base fee each
// eth_feeHistory call returns (spec.md §4.6).
func (m *Manager) fetchBatches(ctx context.Context, newestBlock, count uint64) ([]*uint256.Int, error) {
	var out []*uint256.Int
	remaining := count
	cursor := newestBlock
	for remaining > 0 {
		batch := remaining
		if batch > m.cfg.MaxBlockCount {
			batch = m.cfg.MaxBlockCount
		}
		fh, err := m.client.FeeHistory(ctx, batch, cursor, nil)
		if err != nil {
			return nil, err
		}
		fees := fh.BaseFeePerGas
		if len(fees) > 0 {
			fees = fees[:len(fees)-1] // drop the trailing "next block" entry
		}
		out = append(fees, out...)

		remaining -= batch
		cursor -= batch
	}
	return out, nil
}

// Acceptable reports whether currentBaseFee is at or below the configured
// history percentile of the cached base fees (spec.md §4.6
// "Acceptability").
func (m *Manager) Acceptable(currentBaseFee *uint256.Int) bool {
	if len(m.history) == 0 {
		return true
	}
	threshold := Percentile(m.history, m.cfg.HistoryPercentile)
	return currentBaseFee.Cmp(threshold) <= 0
}

// Params is the resolved EIP-1559 fee pair for one submission.
type Params struct {
	MaxFeePerGas         *uint256.Int
	MaxPriorityFeePerGas *uint256.Int
}

// EIP1559Params computes spec.md §4.6's EIP-1559 parameters: a fresh
// 1-block fee-history call supplies the priority-fee reward, which is
// clamped into [MinPriorityFee, MaxPriorityFee]; maxFeePerGas is
// 2*currentBaseFee + maxPriorityFeePerGas.
func (m *Manager) EIP1559Params(ctx context.Context, currentBaseFee *uint256.Int) (Params, error) {
	latest, err := m.client.BlockNumber(ctx)
	if err != nil {
		return Params{}, err
	}
	fh, err := m.client.FeeHistory(ctx, 1, latest, []float64{m.cfg.PriorityFeePercentile})
	if err != nil {
		return Params{}, err
	}

	var reward *uint256.Int
	if len(fh.Reward) > 0 && len(fh.Reward[0]) > 0 {
		reward = fh.Reward[0][0]
	} else {
		reward = uint256.NewInt(0)
	}

	priority := clamp(reward, m.cfg.MinPriorityFee, m.cfg.MaxPriorityFee)

	maxFee := new(uint256.Int).Mul(currentBaseFee, uint256.NewInt(2))
	maxFee.Add(maxFee, priority)

	return Params{MaxFeePerGas: maxFee, MaxPriorityFeePerGas: priority}, nil
}

func clamp(v, lo, hi *uint256.Int) *uint256.Int {
	out := new(uint256.Int).Set(v)
	if out.Cmp(lo) < 0 {
		out.Set(lo)
	}
	if out.Cmp(hi) > 0 {
		out.Set(hi)
	}
	return out
}
