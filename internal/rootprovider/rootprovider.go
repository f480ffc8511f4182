// Package rootprovider implements the Root Provider (spec.md §4.10, C10):
// resolving the (prev, latest) pair of finalized beacon roots the Cycle
// Driver advances the prover's accumulation window across.
package rootprovider

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/exitwatch/prover/internal/beacon"
	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/merkletree"
	"github.com/exitwatch/prover/internal/ports"
)

// Bootstrap names the configured fallback source for prev when no persisted
// root exists (spec.md §6 "startRoot / startSlot / startEpoch"). At most one
// field should be set; Root takes priority over Slot over Epoch.
type Bootstrap struct {
	Root  *domain.Root
	Slot  *domain.Slot
	Epoch *domain.Epoch
}

// Config holds C10's own tunables.
type Config struct {
	Bootstrap         Bootstrap
	StartLookbackDays uint64
	SecondsPerSlot    uint64
}

// Roots is the (prev, latest) pair the Cycle Driver feeds to the Prover
// Core, each carrying both the header it was resolved from and that
// header's own hash_tree_root (what spec.md §4.9/§4.10 call "root" — a
// beacon block root, distinct from BeaconBlockHeader.StateRoot).
type Roots struct {
	Prev       domain.BeaconBlockHeader
	PrevRoot   domain.Root
	Latest     domain.BeaconBlockHeader
	LatestRoot domain.Root
}

// Provider resolves NextRoots per spec.md §4.10.
type Provider struct {
	cfg       Config
	beacon    *beacon.Reader
	persister ports.RootPersister
	log       zerolog.Logger
}

func New(cfg Config, beaconReader *beacon.Reader, persister ports.RootPersister, log zerolog.Logger) *Provider {
	return &Provider{cfg: cfg, beacon: beaconReader, persister: persister, log: log}
}

// NextRoots resolves latest from C1 and prev from the persisted > bootstrap >
// lookback fallback chain (spec.md §4.10). ok is false if any required fetch
// fails, signaling the caller to sleep rather than run a cycle.
func (p *Provider) NextRoots(ctx context.Context) (roots Roots, ok bool) {
	latestHeader, err := p.beacon.GetHeader(ctx, ports.FinalizedID())
	if err != nil {
		p.log.Warn().Err(err).Msg("rootprovider: could not fetch the finalized header")
		return Roots{}, false
	}
	latestRoot, err := merkletree.BeaconBlockHeaderHashTreeRoot(latestHeader)
	if err != nil {
		p.log.Warn().Err(err).Msg("rootprovider: could not hash the finalized header")
		return Roots{}, false
	}

	prevHeader, err := p.resolvePrev(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("rootprovider: could not resolve a prev root")
		return Roots{}, false
	}
	prevRoot, err := merkletree.BeaconBlockHeaderHashTreeRoot(prevHeader)
	if err != nil {
		p.log.Warn().Err(err).Msg("rootprovider: could not hash the prev header")
		return Roots{}, false
	}

	return Roots{Prev: prevHeader, PrevRoot: prevRoot, Latest: latestHeader, LatestRoot: latestRoot}, true
}

func (p *Provider) resolvePrev(ctx context.Context) (domain.BeaconBlockHeader, error) {
	if p.persister != nil {
		persisted, err := p.persister.Load(ctx)
		if err != nil {
			return domain.BeaconBlockHeader{}, err
		}
		if persisted != nil {
			return p.beacon.GetHeader(ctx, ports.RootID(domain.Root(persisted.Root)))
		}
	}

	if b := p.cfg.Bootstrap; b.Root != nil {
		return p.beacon.GetHeader(ctx, ports.RootID(*b.Root))
	}
	if b := p.cfg.Bootstrap; b.Slot != nil {
		return p.beacon.GetHeader(ctx, ports.SlotID(*b.Slot))
	}
	if b := p.cfg.Bootstrap; b.Epoch != nil {
		cfg, err := p.beacon.GetConfig(ctx)
		if err != nil {
			return domain.BeaconBlockHeader{}, err
		}
		return p.beacon.GetHeader(ctx, ports.SlotID(cfg.EpochToSlot(*b.Epoch)))
	}

	return p.lookbackHeader(ctx)
}

// lookbackHeader resolves the header at now - StartLookbackDays, rounded
// down to a slot, per spec.md §4.10 step 3.
func (p *Provider) lookbackHeader(ctx context.Context) (domain.BeaconBlockHeader, error) {
	genesis, err := p.beacon.GetGenesis(ctx)
	if err != nil {
		return domain.BeaconBlockHeader{}, err
	}

	lookback := time.Duration(p.cfg.StartLookbackDays) * 24 * time.Hour
	target := domain.Timestamp(time.Now().Unix()) - domain.Timestamp(lookback.Seconds())
	if target < genesis.GenesisTime {
		target = genesis.GenesisTime
	}

	cfg, err := p.beacon.GetConfig(ctx)
	if err != nil {
		return domain.BeaconBlockHeader{}, err
	}
	cfg.GenesisTime = genesis.GenesisTime
	if cfg.SecondsPerSlot == 0 {
		cfg.SecondsPerSlot = p.cfg.SecondsPerSlot
	}

	return p.beacon.GetHeader(ctx, ports.SlotID(cfg.TimestampToSlot(target)))
}
