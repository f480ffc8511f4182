package store

import (
	"testing"

	"github.com/exitwatch/prover/internal/domain"
)

func pk(b byte) domain.Pubkey {
	var p domain.Pubkey
	p[0] = b
	return p
}

func entry(pubkey domain.Pubkey) domain.DeadlineEntry {
	return domain.DeadlineEntry{Validator: domain.Validator{Pubkey: pubkey}}
}

func TestEligibleEntriesAscendingOrderAndThreshold(t *testing.T) {
	s := New()
	s.Add(map[domain.Slot]domain.DeadlineGroup{
		300: {Entries: []domain.DeadlineEntry{entry(pk(1))}},
		100: {Entries: []domain.DeadlineEntry{entry(pk(2))}},
		200: {Entries: []domain.DeadlineEntry{entry(pk(3))}},
	})

	got := s.EligibleEntries(200)
	if len(got) != 2 {
		t.Fatalf("expected 2 eligible slots at headSlot 200, got %d", len(got))
	}
	if got[0].Slot != 100 || got[1].Slot != 200 {
		t.Fatalf("expected ascending [100,200], got [%d,%d]", got[0].Slot, got[1].Slot)
	}
}

func TestAddAppendsToMatchingSlot(t *testing.T) {
	s := New()
	s.Add(map[domain.Slot]domain.DeadlineGroup{10: {Entries: []domain.DeadlineEntry{entry(pk(1))}}})
	s.Add(map[domain.Slot]domain.DeadlineGroup{10: {Entries: []domain.DeadlineEntry{entry(pk(2))}}})

	got := s.EligibleEntries(10)
	if len(got) != 1 || len(got[0].Groups) != 2 {
		t.Fatalf("expected 1 slot with 2 appended groups, got %+v", got)
	}
}

func TestCleanupDropsEntriesNotInReportedSet(t *testing.T) {
	s := New()
	reported := NewReportedSet()
	reported.Add(pk(1))

	s.Add(map[domain.Slot]domain.DeadlineGroup{
		10: {Entries: []domain.DeadlineEntry{entry(pk(1)), entry(pk(2))}},
	})

	s.Cleanup(10, reported)

	got := s.EligibleEntries(10)
	if len(got) != 1 || len(got[0].Groups) != 1 || len(got[0].Groups[0].Entries) != 1 {
		t.Fatalf("expected only pk(1)'s entry to survive, got %+v", got)
	}
	if got[0].Groups[0].Entries[0].Validator.Pubkey != pk(1) {
		t.Fatalf("unexpected surviving pubkey: %+v", got[0].Groups[0].Entries[0].Validator.Pubkey)
	}
}

func TestCleanupDropsEmptySlots(t *testing.T) {
	s := New()
	reported := NewReportedSet() // nothing reported

	s.Add(map[domain.Slot]domain.DeadlineGroup{
		10: {Entries: []domain.DeadlineEntry{entry(pk(1))}},
	})
	s.Cleanup(10, reported)

	if got := s.EligibleEntries(10); len(got) != 0 {
		t.Fatalf("expected slot to be dropped entirely, got %+v", got)
	}
	if stats := s.Stats(); stats.Slots != 0 {
		t.Fatalf("expected 0 slots in stats, got %d", stats.Slots)
	}
}

func TestCleanupIgnoresSlotsAboveHead(t *testing.T) {
	s := New()
	reported := NewReportedSet()

	s.Add(map[domain.Slot]domain.DeadlineGroup{
		50: {Entries: []domain.DeadlineEntry{entry(pk(1))}},
	})
	s.Cleanup(10, reported) // headSlot below the tracked slot

	if got := s.EligibleEntries(50); len(got) != 1 {
		t.Fatalf("expected slot 50 to remain untouched, got %+v", got)
	}
}

func TestStats(t *testing.T) {
	s := New()
	s.Add(map[domain.Slot]domain.DeadlineGroup{
		100: {Entries: []domain.DeadlineEntry{entry(pk(1)), entry(pk(2))}},
		300: {Entries: []domain.DeadlineEntry{entry(pk(3))}},
	})

	stats := s.Stats()
	if stats.Slots != 2 || stats.MinSlot != 100 || stats.MaxSlot != 300 || stats.TrackedValidators != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestReportedSetAddRemoveContains(t *testing.T) {
	rs := NewReportedSet()
	if rs.Contains(pk(1)) {
		t.Fatal("expected empty set to not contain pk(1)")
	}
	rs.Add(pk(1))
	if !rs.Contains(pk(1)) || rs.Len() != 1 {
		t.Fatalf("expected pk(1) to be tracked, len=%d", rs.Len())
	}
	rs.Remove(pk(1))
	if rs.Contains(pk(1)) || rs.Len() != 0 {
		t.Fatal("expected pk(1) to be forgotten after Remove")
	}
}
