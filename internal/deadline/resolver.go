// Package deadline implements the exit-deadline arithmetic of spec.md §4.4
// (C4 Deadline Resolver): turning a delivered exit request and a
// validator's activation epoch into the slot by which it was required to
// have exited.
package deadline

import (
	"context"

	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/ports"
)

// Resolver resolves deadlines for one cycle. It caches exitDeadlineThreshold
// lookups per (moduleID, nodeOpID) for its own lifetime only (spec.md §4.4
// step 3: "cached per (moduleId, nodeOpId) within a cycle") — the Prover
// Core constructs a fresh Resolver at the start of every accumulation pass.
type Resolver struct {
	cfg        domain.BeaconConfig
	registries map[domain.ModuleID]ports.NodeOperatorRegistry

	thresholdCache map[thresholdKey]domain.Timestamp
}

type thresholdKey struct {
	module domain.ModuleID
	nodeOp domain.NodeOpID
}

// New constructs a Resolver bound to cfg and the module dispatch table
// (spec.md §9 "Dynamic dispatch over modules").
func New(cfg domain.BeaconConfig, registries map[domain.ModuleID]ports.NodeOperatorRegistry) *Resolver {
	return &Resolver{
		cfg:            cfg,
		registries:     registries,
		thresholdCache: make(map[thresholdKey]domain.Timestamp),
	}
}

// Resolve implements spec.md §4.4 steps 1-6 for one validator.
func (r *Resolver) Resolve(ctx context.Context, v domain.Validator, deliveredTimestamp domain.Timestamp, activationEpoch domain.Epoch) (domain.DeadlineEntry, domain.Slot, error) {
	earliest := r.cfg.GenesisTime +
		domain.Timestamp(uint64(activationEpoch)*r.cfg.SlotsPerEpoch*r.cfg.SecondsPerSlot) +
		r.cfg.ShardCommitteePeriodInSeconds

	eligible := deliveredTimestamp
	if earliest > eligible {
		eligible = earliest
	}

	threshold, err := r.threshold(ctx, v.ModuleID, v.NodeOpID)
	if err != nil {
		return domain.DeadlineEntry{}, 0, err
	}

	exitDeadline := eligible + threshold
	exitDeadlineSlot := r.cfg.TimestampToSlot(exitDeadline)
	exitDeadlineEpoch := r.cfg.SlotToEpoch(exitDeadlineSlot)

	entry := domain.DeadlineEntry{
		Validator:         v,
		ActivationEpoch:   activationEpoch,
		ExitDeadlineEpoch: exitDeadlineEpoch,
		EligibleExitTime:  eligible,
	}
	return entry, exitDeadlineSlot, nil
}

func (r *Resolver) threshold(ctx context.Context, module domain.ModuleID, nodeOp domain.NodeOpID) (domain.Timestamp, error) {
	key := thresholdKey{module: module, nodeOp: nodeOp}
	if v, ok := r.thresholdCache[key]; ok {
		return v, nil
	}

	registry, ok := r.registries[module]
	if !ok {
		return 0, domain.Newf(domain.KindUnknownModule, "deadline: unknown module id %d", module)
	}

	v, err := registry.ExitDeadlineThreshold(ctx, nodeOp)
	if err != nil {
		return 0, err
	}
	r.thresholdCache[key] = v
	return v, nil
}
