// Package store implements the Validator Store (spec.md §4.5, C5): the
// cycle-to-cycle map of deadline slot to the validator groups due at that
// slot, and the reported-set bookkeeping that lets cleanup forget
// validators once they stop being penalty-applicable.
package store

import (
	"sort"

	"github.com/exitwatch/prover/internal/domain"
)

// ValidatorStore holds, per deadline slot, the set of deadline groups that
// share that slot. It is not safe for concurrent use; the prover core owns
// one instance and drives it from a single goroutine per cycle.
type ValidatorStore struct {
	bySlot map[domain.Slot][]domain.DeadlineGroup
}

// New constructs an empty ValidatorStore.
func New() *ValidatorStore {
	return &ValidatorStore{bySlot: make(map[domain.Slot][]domain.DeadlineGroup)}
}

// Add appends each slot's groups to the store's existing groups for that
// slot (spec.md §4.5 "add(Map<Slot,DeadlineGroup>) appends to matching
// slots").
func (s *ValidatorStore) Add(groups map[domain.Slot]domain.DeadlineGroup) {
	for slot, g := range groups {
		s.bySlot[slot] = append(s.bySlot[slot], g)
	}
}

// SlotGroups is one deadline slot together with the deadline groups due at
// it, as returned by EligibleEntries.
type SlotGroups struct {
	Slot   domain.Slot
	Groups []domain.DeadlineGroup
}

// EligibleEntries returns, in ascending slot order, every tracked slot at
// or before headSlot together with its groups (spec.md §4.5
// "eligibleEntries(headSlot) -> [(Slot, [DeadlineGroup])]").
func (s *ValidatorStore) EligibleEntries(headSlot domain.Slot) []SlotGroups {
	slots := make([]domain.Slot, 0, len(s.bySlot))
	for slot := range s.bySlot {
		if slot <= headSlot {
			slots = append(slots, slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })

	out := make([]SlotGroups, len(slots))
	for i, slot := range slots {
		out[i] = SlotGroups{Slot: slot, Groups: s.bySlot[slot]}
	}
	return out
}

// Cleanup walks the eligible entries (slots <= headSlot) and, for each one,
// removes validator entries whose pubkey is not in reportedSet; slots left
// with no groups, and groups left with no entries, are dropped entirely
// (spec.md §4.5 "cleanup(reportedSet)").
func (s *ValidatorStore) Cleanup(headSlot domain.Slot, reportedSet *ReportedSet) {
	for slot, groups := range s.bySlot {
		if slot > headSlot {
			continue
		}
		kept := make([]domain.DeadlineGroup, 0, len(groups))
		for _, g := range groups {
			entries := make([]domain.DeadlineEntry, 0, len(g.Entries))
			for _, e := range g.Entries {
				if reportedSet.Contains(e.Validator.Pubkey) {
					entries = append(entries, e)
				}
			}
			if len(entries) > 0 {
				g.Entries = entries
				kept = append(kept, g)
			}
		}
		if len(kept) == 0 {
			delete(s.bySlot, slot)
		} else {
			s.bySlot[slot] = kept
		}
	}
}

// Stats summarizes the store's contents for the observability collector
// (spec.md §4.5 "Observability").
type Stats struct {
	Slots             int
	MinSlot           domain.Slot
	MaxSlot           domain.Slot
	TrackedValidators int
}

// Stats computes the current Stats snapshot. MinSlot and MaxSlot are zero
// when the store is empty.
func (s *ValidatorStore) Stats() Stats {
	st := Stats{Slots: len(s.bySlot)}
	first := true
	for slot, groups := range s.bySlot {
		if first || slot < st.MinSlot {
			st.MinSlot = slot
		}
		if first || slot > st.MaxSlot {
			st.MaxSlot = slot
		}
		first = false
		for _, g := range groups {
			st.TrackedValidators += len(g.Entries)
		}
	}
	return st
}
