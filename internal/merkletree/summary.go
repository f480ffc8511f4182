package merkletree

import "github.com/exitwatch/prover/internal/domain"

// SummaryIndex, SlotOfSummary and RootIndexInSummary implement the
// "Summary arithmetic" of spec.md §4.2.
func SummaryIndex(cfg domain.BeaconConfig, s domain.Slot) uint64 {
	return (uint64(s) - uint64(cfg.CapellaForkSlot())) / cfg.SlotsPerHistoricalRoot
}

func SlotOfSummary(cfg domain.BeaconConfig, summaryIndex uint64) domain.Slot {
	return cfg.CapellaForkSlot() + domain.Slot((summaryIndex+1)*cfg.SlotsPerHistoricalRoot)
}

func RootIndexInSummary(cfg domain.BeaconConfig, s domain.Slot) uint64 {
	return uint64(s) % cfg.SlotsPerHistoricalRoot
}

// IsSlotOld implements the "Slot-age decision" of spec.md §4.2: current
// mode uses the deadline block's own header; historical mode is required
// once the head has moved at least SLOTS_PER_HISTORICAL_ROOT slots past
// the deadline slot.
func IsSlotOld(cfg domain.BeaconConfig, currentHeadSlot, deadlineSlot domain.Slot) bool {
	if currentHeadSlot < deadlineSlot {
		return false
	}
	return uint64(currentHeadSlot-deadlineSlot) >= cfg.SlotsPerHistoricalRoot
}
