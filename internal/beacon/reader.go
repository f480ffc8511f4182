// Package beacon implements the Beacon State Reader (spec.md §4.1, C1):
// retry-and-failover transport over a list of consensus-layer endpoints,
// the skip-slot walk, and StateView decoding for the Merkle proof builder.
package beacon

import (
	"context"
	"time"

	backoff "gopkg.in/cenkalti/backoff.v1"

	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/merkletree"
	"github.com/exitwatch/prover/internal/ports"
)

// Config holds C1's transport tunables (spec.md §6 "{el,cl}.retryDelayMs,
// responseTimeoutMs, maxRetries").
type Config struct {
	RetryDelay      time.Duration
	ResponseTimeout time.Duration
	MaxRetries      int
}

// Decoder turns RawState bytes into a merkletree.StateView. It is a
// separate interface so the fork-specific SSZ unmarshalling (which needs a
// concrete beacon-state Go type per fork, generated elsewhere) can be
// swapped without touching the retry/failover logic here.
type Decoder interface {
	Decode(raw ports.RawState) (merkletree.StateView, domain.BeaconBlockHeader, error)
}

// Reader implements failover across an ordered list of ConsensusClient
// endpoints, retrying each after a fixed delay (grounded on the teacher's
// use of cenkalti/backoff for beacon-endpoint retries) before advancing to
// the next endpoint.
type Reader struct {
	endpoints []ports.ConsensusClient
	cfg       Config
	decoder   Decoder
}

// New constructs a Reader over an ordered failover list of endpoints.
func New(endpoints []ports.ConsensusClient, cfg Config, decoder Decoder) *Reader {
	return &Reader{endpoints: endpoints, cfg: cfg, decoder: decoder}
}

// GetHeader fetches a beacon block header, failing over across endpoints
// (spec.md §4.1). A 404-equivalent (domain.KindSlotSkipped) is not retried
// across endpoints — it is a definitive answer, not a transport failure.
func (r *Reader) GetHeader(ctx context.Context, id ports.StateID) (domain.BeaconBlockHeader, error) {
	var result domain.BeaconBlockHeader
	err := r.withFailover(ctx, func(c ports.ConsensusClient) error {
		h, err := c.GetBeaconHeader(ctx, id)
		if err != nil {
			return err
		}
		result = h
		return nil
	})
	return result, err
}

// GetBlockInfo fetches a beacon block's execution-payload linkage
// (spec.md §4.9 step 2).
func (r *Reader) GetBlockInfo(ctx context.Context, id ports.StateID) (ports.BlockInfo, error) {
	var result ports.BlockInfo
	err := r.withFailover(ctx, func(c ports.ConsensusClient) error {
		b, err := c.GetBlockInfo(ctx, id)
		if err != nil {
			return err
		}
		result = b
		return nil
	})
	return result, err
}

// GetGenesis fetches the beacon chain's genesis parameters.
func (r *Reader) GetGenesis(ctx context.Context) (ports.GenesisInfo, error) {
	var result ports.GenesisInfo
	err := r.withFailover(ctx, func(c ports.ConsensusClient) error {
		g, err := c.GetGenesis(ctx)
		if err != nil {
			return err
		}
		result = g
		return nil
	})
	return result, err
}

// GetConfig fetches the beacon chain's spec constants.
func (r *Reader) GetConfig(ctx context.Context) (domain.BeaconConfig, error) {
	var result domain.BeaconConfig
	err := r.withFailover(ctx, func(c ports.ConsensusClient) error {
		cfg, err := c.GetConfig(ctx)
		if err != nil {
			return err
		}
		result = cfg
		return nil
	})
	return result, err
}

// GetStateView fetches and decodes a beacon state into a merkletree.StateView
// plus its header, failing over across endpoints for the raw fetch (spec.md
// §4.2's "stateView" input).
func (r *Reader) GetStateView(ctx context.Context, id ports.StateID) (merkletree.StateView, domain.BeaconBlockHeader, error) {
	var raw ports.RawState
	err := r.withFailover(ctx, func(c ports.ConsensusClient) error {
		s, err := c.GetState(ctx, id)
		if err != nil {
			return err
		}
		raw = s
		return nil
	})
	if err != nil {
		return merkletree.StateView{}, domain.BeaconBlockHeader{}, err
	}
	return r.decoder.Decode(raw)
}

// FindNextAvailableSlot walks forward from startSlot, skipping slots the
// beacon node reports as missed (domain.KindSlotSkipped), and returns the
// first slot that resolves to a real header (spec.md §4.8.2 "the skip-slot
// walk"). maxSkip bounds how far it is willing to walk.
func (r *Reader) FindNextAvailableSlot(ctx context.Context, startSlot domain.Slot, maxSkip uint64) (domain.Slot, domain.BeaconBlockHeader, error) {
	for i := uint64(0); i <= maxSkip; i++ {
		slot := domain.Slot(uint64(startSlot) + i)
		header, err := r.GetHeader(ctx, ports.SlotID(slot))
		if err == nil {
			return slot, header, nil
		}
		if !domain.IsKind(err, domain.KindSlotSkipped) {
			return 0, domain.BeaconBlockHeader{}, err
		}
	}
	return 0, domain.BeaconBlockHeader{}, domain.Newf(domain.KindSlotSkipped,
		"beacon: no available slot found within %d slots of %d", maxSkip, startSlot)
}

// withFailover tries op against each endpoint in order, retrying a given
// endpoint after a fixed cfg.RetryDelay up to cfg.MaxRetries before moving to
// the next. A domain.KindSlotSkipped result is returned immediately without
// failover: it is a definitive answer from a healthy node.
func (r *Reader) withFailover(ctx context.Context, op func(ports.ConsensusClient) error) error {
	var lastErr error
	for _, endpoint := range r.endpoints {
		err := r.withRetry(ctx, endpoint, op)
		if err == nil {
			return nil
		}
		if domain.IsKind(err, domain.KindSlotSkipped) {
			return err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = domain.Newf(domain.KindTransportRetryable, "beacon: no endpoints configured")
	}
	return lastErr
}

func (r *Reader) withRetry(ctx context.Context, endpoint ports.ConsensusClient, op func(ports.ConsensusClient) error) error {
	delay := r.cfg.RetryDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	b := backoff.NewConstantBackOff(delay)

	var attempts int
	var lastErr error
	operation := func() error {
		attempts++
		callCtx := ctx
		var cancel context.CancelFunc
		if r.cfg.ResponseTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, r.cfg.ResponseTimeout)
			defer cancel()
		}
		err := op(endpoint)
		if err == nil {
			return nil
		}
		lastErr = err
		if domain.IsKind(err, domain.KindSlotSkipped) {
			return nil // definitive, stop retrying but don't mask err below
		}
		if !domain.IsKind(err, domain.KindTransportRetryable) {
			return backoff.Permanent(err)
		}
		if r.cfg.MaxRetries > 0 && attempts >= r.cfg.MaxRetries {
			return backoff.Permanent(err)
		}
		_ = callCtx
		return err
	}

	if err := backoff.Retry(operation, b); err != nil {
		return err
	}
	if lastErr != nil && domain.IsKind(lastErr, domain.KindSlotSkipped) {
		return lastErr
	}
	return nil
}
