package prover

import (
	"context"

	"github.com/exitwatch/prover/internal/deadline"
	"github.com/exitwatch/prover/internal/decoder"
	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/logger"
	"github.com/exitwatch/prover/internal/merkletree"
	"github.com/exitwatch/prover/internal/ports"
)

// accumulate implements spec.md §4.8.1: split the block range into
// bounded chunks, decode every exit request observed within it, resolve
// each validator's deadline against finalizedView's activation epochs, and
// insert the results into the store grouped by deadline slot.
func (p *Prover) accumulate(
	ctx context.Context,
	prevBlock, latestBlock uint64,
	finalizedView merkletree.StateView,
	resolver *deadline.Resolver,
) error {
	for from := prevBlock + 1; from <= latestBlock; from += maxEventRangeSize {
		to := from + maxEventRangeSize - 1
		if to > latestBlock {
			to = latestBlock
		}

		events, err := p.contracts.Oracle().ExitDataProcessingEvents(ctx, from, to)
		if err != nil {
			return err
		}

		for _, ev := range events {
			if err := p.accumulateEvent(ctx, ev, finalizedView, resolver); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Prover) accumulateEvent(
	ctx context.Context,
	ev ports.ExitDataProcessingEvent,
	finalizedView merkletree.StateView,
	resolver *deadline.Resolver,
) error {
	req, ok, err := p.contracts.Oracle().DecodeExitRequestsTx(ctx, ev.TxHash)
	if err != nil {
		return err
	}
	if !ok {
		p.log.Warn().Hex("txHash", ev.TxHash[:]).Msg("prover: exit-request tx did not decode under either known format")
		return nil
	}

	delivered, err := p.contracts.Oracle().DeliveredTimestamp(ctx, req.ExitRequestsHash)
	if err != nil {
		return err
	}
	req.DeliveredTimestamp = delivered

	validators, err := decoder.Decode(req.PackedData)
	if err != nil {
		logger.LogError(p.log, "prover: malformed exit-request payload, skipping", err)
		return nil
	}

	groups := make(map[domain.Slot]domain.DeadlineGroup)
	for _, v := range validators {
		if int(v.ValidatorIndex) >= len(finalizedView.Validators) {
			p.log.Warn().Uint64("validatorIndex", uint64(v.ValidatorIndex)).Msg("prover: validator index out of range in finalized state, skipping")
			continue
		}
		activationEpoch := finalizedView.Validators[v.ValidatorIndex].ActivationEpoch

		entry, slot, err := resolver.Resolve(ctx, v, req.DeliveredTimestamp, activationEpoch)
		if err != nil {
			return err
		}

		group, ok := groups[slot]
		if !ok {
			group = domain.DeadlineGroup{ExitRequest: req}
		}
		group.Entries = append(group.Entries, entry)
		groups[slot] = group
	}

	p.store.Add(groups)
	return nil
}
