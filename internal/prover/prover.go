// Package prover implements the Prover Core (spec.md §4.8, C8): one
// accumulation pass that turns freshly observed exit-request events into
// deadline-slotted store entries, and one verification pass that proves and
// submits penalty assessments for every entry whose deadline has passed.
package prover

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/exitwatch/prover/internal/beacon"
	"github.com/exitwatch/prover/internal/deadline"
	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/logger"
	"github.com/exitwatch/prover/internal/metrics"
	"github.com/exitwatch/prover/internal/ports"
	"github.com/exitwatch/prover/internal/store"
	"github.com/exitwatch/prover/internal/tx"
)

// maxEventRangeSize is the widest EL block range queried in one
// ExitDataProcessingEvents call (spec.md §4.8.1 step 1).
const maxEventRangeSize = 10_000

// Config holds C8's own tunables; everything else (beacon config, gas,
// transport retries) is owned by the components Prover wires together.
type Config struct {
	ValidatorBatchSize int
	MaxSkipSlots       uint64
}

// Prover owns the Validator Store and ReportedSet across cycles, and the
// per-module registry dispatch table built once at startup (spec.md §4.4
// "populated at startup from the staking router").
type Prover struct {
	cfg       domain.BeaconConfig
	proverCfg Config

	beacon     *beacon.Reader
	contracts  ports.ContractClient
	client     ports.ExecutionClient
	executor   *tx.Executor
	registries map[domain.ModuleID]ports.NodeOperatorRegistry

	store    *store.ValidatorStore
	reported *store.ReportedSet

	metrics *metrics.Metrics
	log     zerolog.Logger
}

// New constructs a Prover. registries is the moduleId -> registry dispatch
// table from deadline.BuildRegistryTable, built once at startup. m may be
// nil, in which case submissions are not observed.
func New(
	cfg domain.BeaconConfig,
	proverCfg Config,
	beaconReader *beacon.Reader,
	contracts ports.ContractClient,
	client ports.ExecutionClient,
	executor *tx.Executor,
	registries map[domain.ModuleID]ports.NodeOperatorRegistry,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Prover {
	return &Prover{
		cfg:        cfg,
		proverCfg:  proverCfg,
		beacon:     beaconReader,
		contracts:  contracts,
		client:     client,
		executor:   executor,
		registries: registries,
		store:      store.New(),
		reported:   store.NewReportedSet(),
		metrics:    m,
		log:        log,
	}
}

// Stats exposes the store's current contents for the observability
// collector (spec.md §4.5 "Observability").
func (p *Prover) Stats() store.Stats { return p.store.Stats() }

// RunCycle runs one accumulation pass over (prevBlock, latestBlock] followed
// by one verification pass, per spec.md §4.8's per-cycle data flow. persist
// reports whether the caller (the Cycle Driver) should advance
// lastProcessedRoot: it is false only when the finalized state could not be
// decoded, which is treated as beacon-node data corruption rather than a
// program error (spec.md §4.8.2 step 1).
func (p *Prover) RunCycle(ctx context.Context, prevBlock, latestBlock uint64) (persist bool, err error) {
	finalizedView, finalizedHeader, err := p.beacon.GetStateView(ctx, ports.FinalizedID())
	if err != nil {
		if domain.IsKind(err, domain.KindStateDeserialization) {
			logger.LogError(p.log, "prover: finalized state deserialization failed, skipping cycle", err)
			return false, nil
		}
		return false, err
	}

	resolver := deadline.New(p.cfg, p.registries)
	if err := p.accumulate(ctx, prevBlock, latestBlock, finalizedView, resolver); err != nil {
		return false, err
	}

	if err := p.verify(ctx, finalizedView, finalizedHeader); err != nil {
		return false, err
	}

	if p.metrics != nil {
		p.metrics.ObserveStoreStats(p.store.Stats())
		p.metrics.ObserveHighGasFeeRetries(p.executor.HighGasFeeRetries())
	}

	return true, nil
}

// isSlotOld decides the proof mode per spec.md §3's slot-age rule.
func (p *Prover) isSlotOld(headSlot, deadlineSlot domain.Slot) bool {
	if deadlineSlot > headSlot {
		return false
	}
	return uint64(headSlot-deadlineSlot) >= p.cfg.SlotsPerHistoricalRoot
}

func batchWitnesses(witnesses []domain.ValidatorWitness, size int) [][]domain.ValidatorWitness {
	if size <= 0 {
		size = len(witnesses)
		if size == 0 {
			return nil
		}
	}
	var batches [][]domain.ValidatorWitness
	for len(witnesses) > 0 {
		n := size
		if n > len(witnesses) {
			n = len(witnesses)
		}
		batches = append(batches, witnesses[:n])
		witnesses = witnesses[n:]
	}
	return batches
}

func toExitRequestsData(req domain.ExitRequest) domain.ExitRequestsData {
	return domain.ExitRequestsData{Data: req.PackedData, DataFormat: uint64(req.DataFormat)}
}
