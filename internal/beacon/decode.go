package beacon

import (
	"github.com/attestantio/go-eth2-client/spec/capella"
	"github.com/attestantio/go-eth2-client/spec/deneb"
	"github.com/attestantio/go-eth2-client/spec/electra"
	"github.com/attestantio/go-eth2-client/spec/phase0"

	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/merkletree"
	"github.com/exitwatch/prover/internal/ports"
)

// SSZDecoder decodes RawState bytes using go-eth2-client's fork-versioned,
// fastssz-generated BeaconState types, then reduces every field other than
// validators and historical_summaries to its own hash_tree_root so the
// proof builder can treat StateView as an opaque container tree (spec.md
// §4.2's stateView input).
type SSZDecoder struct {
	SlotsPerHistoricalRoot uint64
}

func (d SSZDecoder) Decode(raw ports.RawState) (merkletree.StateView, domain.BeaconBlockHeader, error) {
	switch raw.Fork {
	case ports.ForkCapella:
		return d.decodeCapella(raw.Bytes)
	case ports.ForkDeneb:
		return d.decodeDeneb(raw.Bytes)
	case ports.ForkElectra, ports.ForkFulu:
		return d.decodeElectra(raw.Bytes)
	default:
		return merkletree.StateView{}, domain.BeaconBlockHeader{}, domain.Newf(domain.KindUnsupportedFork, "beacon: unsupported fork %q", raw.Fork)
	}
}

func (d SSZDecoder) decodeCapella(b []byte) (merkletree.StateView, domain.BeaconBlockHeader, error) {
	var state capella.BeaconState
	if err := state.UnmarshalSSZ(b); err != nil {
		return merkletree.StateView{}, domain.BeaconBlockHeader{}, domain.New(domain.KindStateDeserialization, err)
	}

	chunks, err := capellaFieldChunks(&state, d.SlotsPerHistoricalRoot)
	if err != nil {
		return merkletree.StateView{}, domain.BeaconBlockHeader{}, err
	}

	sv := merkletree.StateView{
		Fork:                ports.ForkCapella,
		Validators:          toValidatorStates(state.Validators),
		HistoricalSummaries: toHistoricalSummaries(state.HistoricalSummaries),
		FieldChunks:         chunks,
		BlockRoots:          toRoots(state.BlockRoots),
	}
	header := headerFromLatestBlockHeader(state.LatestBlockHeader, phase0.Root(sv.StateRoot))
	return sv, header, nil
}

func (d SSZDecoder) decodeDeneb(b []byte) (merkletree.StateView, domain.BeaconBlockHeader, error) {
	var state deneb.BeaconState
	if err := state.UnmarshalSSZ(b); err != nil {
		return merkletree.StateView{}, domain.BeaconBlockHeader{}, domain.New(domain.KindStateDeserialization, err)
	}

	chunks, err := denebFieldChunks(&state, d.SlotsPerHistoricalRoot)
	if err != nil {
		return merkletree.StateView{}, domain.BeaconBlockHeader{}, err
	}

	sv := merkletree.StateView{
		Fork:                ports.ForkDeneb,
		Validators:          toValidatorStates(state.Validators),
		HistoricalSummaries: toHistoricalSummaries(state.HistoricalSummaries),
		FieldChunks:         chunks,
		BlockRoots:          toRoots(state.BlockRoots),
	}
	header := headerFromLatestBlockHeader(state.LatestBlockHeader, phase0.Root(sv.StateRoot))
	return sv, header, nil
}

func (d SSZDecoder) decodeElectra(b []byte) (merkletree.StateView, domain.BeaconBlockHeader, error) {
	var state electra.BeaconState
	if err := state.UnmarshalSSZ(b); err != nil {
		return merkletree.StateView{}, domain.BeaconBlockHeader{}, domain.New(domain.KindStateDeserialization, err)
	}

	chunks, err := electraFieldChunks(&state, d.SlotsPerHistoricalRoot)
	if err != nil {
		return merkletree.StateView{}, domain.BeaconBlockHeader{}, err
	}

	sv := merkletree.StateView{
		Fork:                ports.ForkElectra,
		Validators:          toValidatorStates(state.Validators),
		HistoricalSummaries: toHistoricalSummaries(state.HistoricalSummaries),
		FieldChunks:         chunks,
		BlockRoots:          toRoots(state.BlockRoots),
	}
	header := headerFromLatestBlockHeader(state.LatestBlockHeader, phase0.Root(sv.StateRoot))
	return sv, header, nil
}

func toValidatorStates(validators []*phase0.Validator) []domain.ValidatorState {
	out := make([]domain.ValidatorState, len(validators))
	for i, v := range validators {
		out[i] = domain.ValidatorState{
			Pubkey:                     domain.Pubkey(v.PublicKey),
			WithdrawalCredentials:      domain.Root(bytesToRoot(v.WithdrawalCredentials)),
			EffectiveBalance:           uint64(v.EffectiveBalance),
			Slashed:                    v.Slashed,
			ActivationEligibilityEpoch: domain.Epoch(v.ActivationEligibilityEpoch),
			ActivationEpoch:            domain.Epoch(v.ActivationEpoch),
			ExitEpoch:                  domain.Epoch(v.ExitEpoch),
			WithdrawableEpoch:          domain.Epoch(v.WithdrawableEpoch),
		}
	}
	return out
}

func toHistoricalSummaries(summaries []*capella.HistoricalSummary) []domain.HistoricalSummary {
	out := make([]domain.HistoricalSummary, len(summaries))
	for i, s := range summaries {
		out[i] = domain.HistoricalSummary{
			BlockSummaryRoot: domain.Root(s.BlockSummaryRoot),
			StateSummaryRoot: domain.Root(s.StateSummaryRoot),
		}
	}
	return out
}

func headerFromLatestBlockHeader(h *phase0.BeaconBlockHeader, stateRoot phase0.Root) domain.BeaconBlockHeader {
	if h == nil {
		return domain.BeaconBlockHeader{}
	}
	return domain.BeaconBlockHeader{
		Slot:          domain.Slot(h.Slot),
		ProposerIndex: domain.ValidatorIndex(h.ProposerIndex),
		ParentRoot:    domain.Root(h.ParentRoot),
		StateRoot:     domain.Root(stateRoot),
		BodyRoot:      domain.Root(h.BodyRoot),
	}
}

func bytesToRoot(b []byte) [32]byte {
	var r [32]byte
	copy(r[:], b)
	return r
}
