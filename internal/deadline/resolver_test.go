package deadline

import (
	"context"
	"testing"

	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/ports"
)

type fakeRegistry struct {
	threshold domain.Timestamp
}

func (f *fakeRegistry) ExitDeadlineThreshold(ctx context.Context, nodeOpID domain.NodeOpID) (domain.Timestamp, error) {
	return f.threshold, nil
}

func (f *fakeRegistry) IsValidatorExitDelayPenaltyApplicable(ctx context.Context, nodeOpID domain.NodeOpID, proofSlotTimestamp domain.Timestamp, pubkey domain.Pubkey, secondsSinceEligible uint64) (bool, error) {
	return true, nil
}

func testConfig() domain.BeaconConfig {
	return domain.BeaconConfig{
		GenesisTime:                   1606824023,
		SecondsPerSlot:                12,
		SlotsPerEpoch:                 32,
		SlotsPerHistoricalRoot:        8192,
		CapellaForkEpoch:              0,
		ShardCommitteePeriodInSeconds: 256 * 32 * 12, // 98304
	}
}

// TestResolveScenario1 reproduces spec.md §8 scenario 1: current-mode
// single validator deadline arithmetic.
func TestResolveScenario1(t *testing.T) {
	cfg := testConfig()
	threshold := domain.Timestamp(4 * 86400)

	reg := &fakeRegistry{threshold: threshold}
	resolver := New(cfg, map[domain.ModuleID]ports.NodeOperatorRegistry{1: reg})

	v := domain.Validator{ModuleID: 1, NodeOpID: 7, ValidatorIndex: 99}
	activationEpoch := domain.Epoch(100)

	earliest := cfg.GenesisTime + domain.Timestamp(100*32*12) + cfg.ShardCommitteePeriodInSeconds
	if earliest != 1606960727 {
		t.Fatalf("earliest = %d, want 1606960727", earliest)
	}
	delivered := earliest + 10

	entry, deadlineSlot, err := resolver.Resolve(context.Background(), v, delivered, activationEpoch)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	wantEligible := delivered // delivered > earliest
	if entry.EligibleExitTime != wantEligible {
		t.Fatalf("eligible = %d, want %d", entry.EligibleExitTime, wantEligible)
	}

	wantDeadline := wantEligible + threshold
	wantSlot := domain.Slot(uint64(wantDeadline-cfg.GenesisTime) / cfg.SecondsPerSlot)
	if deadlineSlot != wantSlot {
		t.Fatalf("deadlineSlot = %d, want %d", deadlineSlot, wantSlot)
	}
	if entry.ExitDeadlineEpoch != cfg.SlotToEpoch(wantSlot) {
		t.Fatalf("exitDeadlineEpoch = %d, want %d", entry.ExitDeadlineEpoch, cfg.SlotToEpoch(wantSlot))
	}
}

func TestResolveUnknownModule(t *testing.T) {
	cfg := testConfig()
	resolver := New(cfg, map[domain.ModuleID]ports.NodeOperatorRegistry{})
	_, _, err := resolver.Resolve(context.Background(), domain.Validator{ModuleID: 5}, 0, 0)
	if !domain.IsKind(err, domain.KindUnknownModule) {
		t.Fatalf("expected KindUnknownModule, got %v", err)
	}
}

func TestThresholdCachedWithinResolver(t *testing.T) {
	cfg := testConfig()
	calls := 0
	reg := &countingRegistry{threshold: 100, calls: &calls}
	resolver := New(cfg, map[domain.ModuleID]ports.NodeOperatorRegistry{1: reg})

	v := domain.Validator{ModuleID: 1, NodeOpID: 9}
	for i := 0; i < 3; i++ {
		if _, _, err := resolver.Resolve(context.Background(), v, 0, 0); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 registry call, got %d", calls)
	}
}

type countingRegistry struct {
	threshold domain.Timestamp
	calls     *int
}

func (c *countingRegistry) ExitDeadlineThreshold(ctx context.Context, nodeOpID domain.NodeOpID) (domain.Timestamp, error) {
	*c.calls++
	return c.threshold, nil
}

func (c *countingRegistry) IsValidatorExitDelayPenaltyApplicable(ctx context.Context, nodeOpID domain.NodeOpID, proofSlotTimestamp domain.Timestamp, pubkey domain.Pubkey, secondsSinceEligible uint64) (bool, error) {
	return true, nil
}
