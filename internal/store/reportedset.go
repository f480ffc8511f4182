package store

import "github.com/exitwatch/prover/internal/domain"

// ReportedSet tracks pubkeys that have been successfully submitted for a
// penalty assessment. A pubkey is added exactly once, on successful
// submission (spec.md §4.5 "Rationale for the not-in-set rule"), and
// removed once a later cycle's applicability check returns false.
type ReportedSet struct {
	pubkeys map[domain.Pubkey]struct{}
}

// NewReportedSet constructs an empty ReportedSet.
func NewReportedSet() *ReportedSet {
	return &ReportedSet{pubkeys: make(map[domain.Pubkey]struct{})}
}

// Add records pubkey as reported.
func (r *ReportedSet) Add(pubkey domain.Pubkey) {
	r.pubkeys[pubkey] = struct{}{}
}

// Remove forgets pubkey, e.g. once it is no longer penalty-applicable.
func (r *ReportedSet) Remove(pubkey domain.Pubkey) {
	delete(r.pubkeys, pubkey)
}

// Contains reports whether pubkey has been reported and not yet removed.
func (r *ReportedSet) Contains(pubkey domain.Pubkey) bool {
	_, ok := r.pubkeys[pubkey]
	return ok
}

// Len returns the number of currently reported pubkeys.
func (r *ReportedSet) Len() int {
	return len(r.pubkeys)
}
