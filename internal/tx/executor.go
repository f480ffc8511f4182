// Package tx implements the Transaction Executor (spec.md §4.7, C7): the
// emulate/estimate/cap/sign/submit/confirm sequence shared by every
// contract write the prover makes, plus its retry policy.
package tx

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/gas"
	"github.com/exitwatch/prover/internal/logger"
	"github.com/exitwatch/prover/internal/ports"
)

// PopulateFunc builds (or rebuilds, on retry) the call to submit.
type PopulateFunc func(ctx context.Context) (ports.CallMsg, error)

// EmulateFunc re-runs call as a read-only contract call with the same
// arguments (spec.md §4.7 step 2).
type EmulateFunc func(ctx context.Context, call ports.CallMsg) error

// Request is one submission's populate/emulate pair.
type Request struct {
	Populate PopulateFunc
	Emulate  EmulateFunc
}

// Config holds the tunables spec.md §4.7 and §6 name.
type Config struct {
	DryRun         bool
	HardGasLimit   uint64
	Confirmations  uint64
	ConfirmTimeout time.Duration
	RetryDelay     time.Duration
	ChainID        uint64
}

// Executor runs Request values through the sequence of spec.md §4.7,
// retrying according to its retry policy. It is grounded on go-ethereum's
// accounts/abi/bind transact-options pattern: Signer plays the role of
// bind.TransactOpts' signer callback.
type Executor struct {
	cfg    Config
	client ports.ExecutionClient
	gas    *gas.Manager
	signer ports.Signer
	log    zerolog.Logger

	highGasFeeRetries uint64
}

// New constructs an Executor. signer may be nil, in which case every
// non-dry-run submission fails with domain.KindNoSigner (spec.md §4.7 step
// 4).
func New(cfg Config, client ports.ExecutionClient, gasManager *gas.Manager, signer ports.Signer, log zerolog.Logger) *Executor {
	return &Executor{cfg: cfg, client: client, gas: gasManager, signer: signer, log: log}
}

// Execute runs the retry loop described in spec.md §4.7 "Retry policy of
// the execute loop": HighGasFee retries after a delay (incrementing a
// counter), NoSigner terminates without retrying, and any other kind is
// surfaced immediately.
func (e *Executor) Execute(ctx context.Context, req Request) error {
	for {
		err := e.submitOnce(ctx, req)
		if err == nil {
			return nil
		}

		switch {
		case domain.IsKind(err, domain.KindNoSigner):
			logger.LogError(e.log, "transaction executor: no signer configured", err)
			return err
		case domain.IsKind(err, domain.KindHighGasFee):
			e.highGasFeeRetries++
			logger.LogError(e.log, "transaction executor: gas fee too high, retrying", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.cfg.RetryDelay):
			}
			continue
		default:
			return err
		}
	}
}

// HighGasFeeRetries reports the cumulative count of HighGasFee retries,
// exported by the observability collector as gas_high_fee_retries_total.
func (e *Executor) HighGasFeeRetries() uint64 { return e.highGasFeeRetries }

func (e *Executor) submitOnce(ctx context.Context, req Request) error {
	call, err := req.Populate(ctx)
	if err != nil {
		return err
	}

	if err := req.Emulate(ctx, call); err != nil {
		return domain.New(domain.KindEmulationFailed, err)
	}

	if e.cfg.DryRun {
		e.log.Info().
			Str("to", addrHex(call.To)).
			Int("data_len", len(call.Data)).
			Msg("dry run: would submit transaction")
		return nil
	}

	if e.signer == nil {
		return domain.New(domain.KindNoSigner, nil)
	}

	estimated, err := e.client.EstimateGas(ctx, call)
	if err != nil {
		estimated = e.cfg.HardGasLimit
	}
	estimatedWithBuffer := estimated * 12 / 10

	if estimatedWithBuffer > e.cfg.HardGasLimit {
		return domain.Newf(domain.KindGasLimitExceeded,
			"estimated gas %d (with buffer %d) exceeds hard limit %d",
			estimated, estimatedWithBuffer, e.cfg.HardGasLimit).
			WithContext("estimated", estimated).
			WithContext("estimatedWithBuffer", estimatedWithBuffer).
			WithContext("hardLimit", e.cfg.HardGasLimit)
	}

	latestNumber, err := e.client.BlockNumber(ctx)
	if err != nil {
		return err
	}
	latest, err := e.client.BlockByNumber(ctx, latestNumber)
	if err != nil {
		return err
	}
	if err := e.gas.Refresh(ctx); err != nil {
		return err
	}
	if !e.gas.Acceptable(latest.BaseFee) {
		return domain.New(domain.KindHighGasFee, nil).WithContext("baseFee", latest.BaseFee.String())
	}

	params, err := e.gas.EIP1559Params(ctx, latest.BaseFee)
	if err != nil {
		return err
	}

	raw, txHash, err := e.signer.SignTransaction(ctx, call, 0,
		params.MaxFeePerGas.Uint64(), params.MaxPriorityFeePerGas.Uint64(),
		estimatedWithBuffer, e.cfg.ChainID)
	if err != nil {
		return domain.New(domain.KindSendFailed, err)
	}

	sentHash, err := e.client.SendTransaction(ctx, raw)
	if err != nil {
		return domain.New(domain.KindSendFailed, err)
	}
	if sentHash != txHash {
		txHash = sentHash
	}

	return e.awaitConfirmations(ctx, txHash)
}

func (e *Executor) awaitConfirmations(ctx context.Context, txHash [32]byte) error {
	deadline := time.Now().Add(e.cfg.ConfirmTimeout)
	for {
		receipt, err := e.client.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			latest, err := e.client.BlockNumber(ctx)
			if err == nil && latest >= receipt.BlockNumber+e.cfg.Confirmations {
				if receipt.Status != 1 {
					return domain.Newf(domain.KindSendFailed, "transaction %x reverted", txHash)
				}
				return nil
			}
		}
		if time.Now().After(deadline) {
			return domain.Newf(domain.KindSendFailed, "transaction %x not confirmed within timeout", txHash)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func addrHex(a *[20]byte) string {
	if a == nil {
		return "<nil>"
	}
	const hextable = "0123456789abcdef"
	var out [42]byte
	out[0], out[1] = '0', 'x'
	for i, b := range *a {
		out[2+i*2] = hextable[b>>4]
		out[3+i*2] = hextable[b&0xf]
	}
	return string(out[:])
}
