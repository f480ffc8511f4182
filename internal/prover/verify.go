package prover

import (
	"context"

	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/merkletree"
	"github.com/exitwatch/prover/internal/metrics"
	"github.com/exitwatch/prover/internal/ports"
	"github.com/exitwatch/prover/internal/store"
	"github.com/exitwatch/prover/internal/tx"
)

// verify implements spec.md §4.8.2: walk every store entry whose deadline
// slot has passed, build ValidatorWitnesses for the ones still owed a
// penalty check, and submit them in current- or historical-mode batches.
func (p *Prover) verify(ctx context.Context, finalizedView merkletree.StateView, finalizedHeader domain.BeaconBlockHeader) error {
	finalizedSlot := finalizedHeader.Slot

	for _, se := range p.store.EligibleEntries(finalizedSlot) {
		if err := p.verifySlot(ctx, finalizedView, finalizedHeader, se); err != nil {
			return err
		}
	}

	p.store.Cleanup(finalizedSlot, p.reported)
	return nil
}

func (p *Prover) verifySlot(
	ctx context.Context,
	finalizedView merkletree.StateView,
	finalizedHeader domain.BeaconBlockHeader,
	se store.SlotGroups,
) error {
	deadlineSlot := se.Slot
	penalizableSlot := deadlineSlot + 1

	proofSlot, deadlineHeader, err := p.beacon.FindNextAvailableSlot(ctx, penalizableSlot, p.proverCfg.MaxSkipSlots)
	if err != nil {
		p.log.Error().Uint64("deadlineSlot", uint64(deadlineSlot)).Err(err).Msg("prover: could not find a proof slot for deadline, skipping group")
		return nil
	}

	deadlineView, _, err := p.beacon.GetStateView(ctx, ports.SlotID(proofSlot))
	if err != nil {
		if domain.IsKind(err, domain.KindStateDeserialization) {
			p.log.Warn().Uint64("proofSlot", uint64(proofSlot)).Msg("prover: proof-slot state deserialization failed, skipping group")
			return nil
		}
		return err
	}

	proofSlotTimestamp := p.cfg.SlotToTimestamp(proofSlot)

	var (
		witnesses    []domain.ValidatorWitness
		firstRequest domain.ExitRequest
		haveFirst    bool
	)
	for _, group := range se.Groups {
		if !haveFirst {
			firstRequest = group.ExitRequest
			haveFirst = true
		}
		for _, entry := range group.Entries {
			w, include, err := p.buildWitness(ctx, entry, deadlineView, proofSlotTimestamp)
			if err != nil {
				return err
			}
			if include {
				witnesses = append(witnesses, w)
			}
		}
	}
	if len(witnesses) == 0 {
		return nil
	}

	old := p.isSlotOld(finalizedHeader.Slot, deadlineSlot)
	exitData := toExitRequestsData(firstRequest)

	for _, batch := range batchWitnesses(witnesses, p.proverCfg.ValidatorBatchSize) {
		var call ports.CallMsg
		if old {
			call, err = p.buildHistoricalCall(ctx, finalizedView, finalizedHeader, deadlineHeader, deadlineSlot, batch, exitData)
		} else {
			call, err = p.buildCurrentCall(ctx, deadlineHeader, batch, exitData)
		}
		if err != nil {
			return err
		}

		req := tx.Request{
			Populate: func(ctx context.Context) (ports.CallMsg, error) { return call, nil },
			Emulate: func(ctx context.Context, call ports.CallMsg) error {
				_, err := p.client.Call(ctx, call)
				return err
			},
		}
		if err := p.executor.Execute(ctx, req); err != nil {
			return err
		}

		if p.metrics != nil {
			if old {
				p.metrics.ObserveSubmission(metrics.SubmissionModeHistorical)
			} else {
				p.metrics.ObserveSubmission(metrics.SubmissionModeCurrent)
			}
		}

		for _, w := range batch {
			p.reported.Add(w.Pubkey)
		}
	}

	return nil
}

// buildWitness applies the eligibility checks and penalty-applicability
// predicate of spec.md §4.8.2 step 3 for one deadline entry, returning
// include=false when the entry should be skipped this cycle (and possibly
// removed from ReportedSet) rather than submitted.
func (p *Prover) buildWitness(
	ctx context.Context,
	entry domain.DeadlineEntry,
	deadlineView merkletree.StateView,
	proofSlotTimestamp domain.Timestamp,
) (domain.ValidatorWitness, bool, error) {
	v := entry.Validator
	if int(v.ValidatorIndex) >= len(deadlineView.Validators) {
		p.log.Warn().Uint64("validatorIndex", uint64(v.ValidatorIndex)).Msg("prover: validator index out of range at proof slot, skipping")
		return domain.ValidatorWitness{}, false, nil
	}
	state := deadlineView.Validators[v.ValidatorIndex]

	if state.ExitEpoch < entry.ExitDeadlineEpoch {
		return domain.ValidatorWitness{}, false, nil
	}
	if proofSlotTimestamp < entry.EligibleExitTime {
		return domain.ValidatorWitness{}, false, nil
	}

	registry, ok := p.registries[v.ModuleID]
	if !ok {
		return domain.ValidatorWitness{}, false, domain.Newf(domain.KindUnknownModule, "prover: unknown module id %d", v.ModuleID)
	}

	secondsSinceEligible := uint64(proofSlotTimestamp - entry.EligibleExitTime)
	applicable, err := registry.IsValidatorExitDelayPenaltyApplicable(ctx, v.NodeOpID, proofSlotTimestamp, v.Pubkey, secondsSinceEligible)
	if err != nil {
		return domain.ValidatorWitness{}, false, err
	}
	if !applicable {
		p.reported.Remove(v.Pubkey)
		return domain.ValidatorWitness{}, false, nil
	}

	proof, err := merkletree.BuildValidatorProof(deadlineView, v.ValidatorIndex)
	if err != nil {
		return domain.ValidatorWitness{}, false, err
	}

	return domain.ValidatorWitness{
		ExitRequestIndex:           v.ExitDataIndex,
		WithdrawalCredentials:      state.WithdrawalCredentials,
		EffectiveBalance:           state.EffectiveBalance,
		Slashed:                    state.Slashed,
		ActivationEligibilityEpoch: state.ActivationEligibilityEpoch,
		ActivationEpoch:            state.ActivationEpoch,
		WithdrawableEpoch:          state.WithdrawableEpoch,
		ValidatorProof:             proof.Witnesses,
		ModuleID:                   v.ModuleID,
		NodeOpID:                   v.NodeOpID,
		Pubkey:                     v.Pubkey,
	}, true, nil
}

func (p *Prover) buildCurrentCall(
	ctx context.Context,
	deadlineHeader domain.BeaconBlockHeader,
	batch []domain.ValidatorWitness,
	exitData domain.ExitRequestsData,
) (ports.CallMsg, error) {
	provableHeader := domain.NewProvableHeader(p.cfg, deadlineHeader)
	return p.contracts.Verifier().PopulateVerifyValidatorExitDelay(ctx, provableHeader, batch, exitData)
}

func (p *Prover) buildHistoricalCall(
	ctx context.Context,
	finalizedView merkletree.StateView,
	finalizedHeader domain.BeaconBlockHeader,
	deadlineHeader domain.BeaconBlockHeader,
	deadlineSlot domain.Slot,
	batch []domain.ValidatorWitness,
	exitData domain.ExitRequestsData,
) (ports.CallMsg, error) {
	capellaSlot := p.cfg.CapellaForkSlot()
	summaryIndex := (uint64(deadlineSlot) - uint64(capellaSlot)) / p.cfg.SlotsPerHistoricalRoot
	summarySlot := domain.Slot(uint64(capellaSlot) + (summaryIndex+1)*p.cfg.SlotsPerHistoricalRoot)
	rootIndexInSummary := uint64(deadlineSlot) % p.cfg.SlotsPerHistoricalRoot

	summaryView, _, err := p.beacon.GetStateView(ctx, ports.SlotID(summarySlot))
	if err != nil {
		return ports.CallMsg{}, err
	}

	blockRootsDepth := merkletree.BlockRootsVectorDepth(p.cfg.SlotsPerHistoricalRoot)
	historicalProof, err := merkletree.BuildHistoricalStateProof(finalizedView, summaryView.BlockRoots, summaryIndex, rootIndexInSummary, blockRootsDepth)
	if err != nil {
		return ports.CallMsg{}, err
	}

	var rootGIndex *uint64
	if p.contracts.Verifier().HistoricalWitnessHasRootGIndex() {
		g := historicalProof.Gindex
		rootGIndex = &g
	}

	historicalWitness := domain.HistoricalHeaderWitness{
		Header:     deadlineHeader,
		Proof:      historicalProof.Witnesses,
		RootGIndex: rootGIndex,
	}
	provableFinalizedHeader := domain.NewProvableHeader(p.cfg, finalizedHeader)

	return p.contracts.Verifier().PopulateVerifyHistoricalValidatorExitDelay(ctx, provableFinalizedHeader, historicalWitness, batch, exitData)
}
