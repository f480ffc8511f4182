package cycle

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"github.com/exitwatch/prover/internal/beacon"
	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/merkletree"
	"github.com/exitwatch/prover/internal/metrics"
	"github.com/exitwatch/prover/internal/ports"
	"github.com/exitwatch/prover/internal/rootprovider"
)

type cycleFakeConsensus struct {
	finalized    domain.BeaconBlockHeader
	finalizedErr error
	byRoot       map[domain.Root]domain.BeaconBlockHeader
}

func (c *cycleFakeConsensus) GetBeaconHeader(ctx context.Context, id ports.StateID) (domain.BeaconBlockHeader, error) {
	if id.Tag == "finalized" {
		return c.finalized, c.finalizedErr
	}
	if id.Root != nil {
		if h, ok := c.byRoot[*id.Root]; ok {
			return h, nil
		}
	}
	return domain.BeaconBlockHeader{}, domain.Newf(domain.KindTransportRetryable, "no header for id")
}

func (c *cycleFakeConsensus) GetBlockInfo(ctx context.Context, id ports.StateID) (ports.BlockInfo, error) {
	return ports.BlockInfo{}, nil
}
func (c *cycleFakeConsensus) GetState(ctx context.Context, id ports.StateID) (ports.RawState, error) {
	return ports.RawState{}, nil
}
func (c *cycleFakeConsensus) GetGenesis(ctx context.Context) (ports.GenesisInfo, error) {
	return ports.GenesisInfo{}, nil
}
func (c *cycleFakeConsensus) GetConfig(ctx context.Context) (domain.BeaconConfig, error) {
	return domain.BeaconConfig{}, nil
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRunCycleSleepsIdleWhenRootsUnavailable(t *testing.T) {
	c := &cycleFakeConsensus{finalizedErr: domain.Newf(domain.KindTransportRetryable, "beacon node down")}
	reader := beacon.New([]ports.ConsensusClient{c}, beacon.Config{RetryDelay: time.Millisecond, MaxRetries: 1}, nil)
	roots := rootprovider.New(rootprovider.Config{}, reader, nil, zerolog.Nop())

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	d := New(Config{SleepInterval: time.Hour}, roots, nil, nil, nil, nil, m, zerolog.Nop())
	d.runCycle(context.Background())

	if got := counterValue(t, m.CycleSleepTotal.WithLabelValues(string(metrics.SleepReasonIdle))); got != 1 {
		t.Fatalf("expected one idle sleep, got %v", got)
	}
}

func TestRunCycleSleepsNoNewRootWhenPrevEqualsLatest(t *testing.T) {
	finalizedHeader := domain.BeaconBlockHeader{Slot: 500}
	finalizedRoot, err := merkletree.BeaconBlockHeaderHashTreeRoot(finalizedHeader)
	if err != nil {
		t.Fatalf("hash finalized header: %v", err)
	}

	c := &cycleFakeConsensus{
		finalized: finalizedHeader,
		byRoot:    map[domain.Root]domain.BeaconBlockHeader{finalizedRoot: finalizedHeader},
	}
	reader := beacon.New([]ports.ConsensusClient{c}, beacon.Config{RetryDelay: time.Millisecond, MaxRetries: 1}, nil)
	roots := rootprovider.New(rootprovider.Config{Bootstrap: rootprovider.Bootstrap{Root: &finalizedRoot}}, reader, nil, zerolog.Nop())

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	d := New(Config{SleepInterval: time.Hour}, roots, nil, nil, nil, nil, m, zerolog.Nop())
	d.runCycle(context.Background())

	if got := counterValue(t, m.CycleSleepTotal.WithLabelValues(string(metrics.SleepReasonNoNewRoot))); got != 1 {
		t.Fatalf("expected one no_new_root sleep, got %v", got)
	}
}
