// Package cycle implements the Cycle Driver (spec.md §4.9, C9): the
// single-threaded daemon loop that advances the (prev, latest) root window,
// drives one Prover Core cycle over it, and persists progress: a ticker
// plus a select over ctx.Done(), running the five-step sequence spec.md
// §4.9 describes on every tick.
package cycle

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/logger"
	"github.com/exitwatch/prover/internal/metrics"
	"github.com/exitwatch/prover/internal/ports"
	"github.com/exitwatch/prover/internal/prover"
	"github.com/exitwatch/prover/internal/rootprovider"
)

// Config holds C9's own tunables (spec.md §6 daemonSleepIntervalMs, dryRun).
type Config struct {
	SleepInterval time.Duration
	DryRun        bool
}

// BeaconBlockInfo resolves a beacon header's execution-payload linkage
// (spec.md §4.9 step 2's first half); implemented by *beacon.Reader.
type BeaconBlockInfo interface {
	GetBlockInfo(ctx context.Context, id ports.StateID) (ports.BlockInfo, error)
}

// Driver runs the daemon loop.
type Driver struct {
	cfg       Config
	roots     *rootprovider.Provider
	beacon    BeaconBlockInfo
	client    ports.ExecutionClient
	core      *prover.Prover
	persister ports.RootPersister
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// New constructs a Driver. m may be nil, in which case sleeps are not
// observed.
func New(
	cfg Config,
	roots *rootprovider.Provider,
	beacon BeaconBlockInfo,
	client ports.ExecutionClient,
	core *prover.Prover,
	persister ports.RootPersister,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Driver {
	return &Driver{
		cfg:       cfg,
		roots:     roots,
		beacon:    beacon,
		client:    client,
		core:      core,
		persister: persister,
		metrics:   m,
		log:       log,
	}
}

// Run starts the periodic cycle loop (spec.md §4.9), returning when ctx is
// cancelled. The first cycle runs immediately rather than waiting for the
// first tick.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.SleepInterval)
	defer ticker.Stop()

	d.runCycle(ctx)
	for {
		select {
		case <-ticker.C:
			d.runCycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// runCycle implements the five-step sequence of spec.md §4.9. On any error
// it logs with one-shot semantics, counts an error_recovery sleep, and does
// not persist progress.
func (d *Driver) runCycle(ctx context.Context) {
	roots, ok := d.roots.NextRoots(ctx)
	if !ok {
		d.sleep(metrics.SleepReasonIdle)
		return
	}
	if roots.PrevRoot == roots.LatestRoot {
		d.sleep(metrics.SleepReasonNoNewRoot)
		return
	}

	prevBlock, err := d.resolveBlockNumber(ctx, roots.Prev)
	if err != nil {
		logger.LogError(d.log, "cycle: could not resolve prev root to an EL block number", err)
		d.sleep(metrics.SleepReasonErrorRecovery)
		return
	}
	latestBlock, err := d.resolveBlockNumber(ctx, roots.Latest)
	if err != nil {
		logger.LogError(d.log, "cycle: could not resolve latest root to an EL block number", err)
		d.sleep(metrics.SleepReasonErrorRecovery)
		return
	}

	persist, err := d.core.RunCycle(ctx, prevBlock, latestBlock)
	if err != nil {
		logger.LogError(d.log, "cycle: prover core cycle failed", err)
		d.sleep(metrics.SleepReasonErrorRecovery)
		return
	}

	if persist && !d.cfg.DryRun && d.persister != nil {
		root := ports.PersistedRoot{Root: [32]byte(roots.LatestRoot), Slot: uint64(roots.Latest.Slot)}
		if err := d.persister.Save(ctx, root); err != nil {
			d.log.Error().Err(err).Msg("cycle: could not persist lastProcessedRoot")
		}
	}

	d.sleep(metrics.SleepReasonIdle)
}

// resolveBlockNumber implements spec.md §4.9 step 2: beaconBlock's execution
// payload block hash resolved to an EL block number via getBlock(hash).
func (d *Driver) resolveBlockNumber(ctx context.Context, header domain.BeaconBlockHeader) (uint64, error) {
	info, err := d.beacon.GetBlockInfo(ctx, ports.SlotID(header.Slot))
	if err != nil {
		return 0, err
	}
	block, err := d.client.BlockByHash(ctx, info.ExecutionBlockHash)
	if err != nil {
		return 0, err
	}
	return block.Number, nil
}

func (d *Driver) sleep(reason metrics.SleepReason) {
	if d.metrics != nil {
		d.metrics.ObserveSleep(reason)
	}
}
