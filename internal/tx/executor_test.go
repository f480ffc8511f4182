package tx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/gas"
	"github.com/exitwatch/prover/internal/ports"
)

type fakeClient struct {
	blockNumber       uint64
	baseFee           *uint256.Int
	historicalBaseFee *uint256.Int // defaults to baseFee if nil
	estimateGasErr    error
	estimateGas       uint64
	sendErr           error
	receiptStatus     uint64
	receiptAt         uint64
	feeHistoryReward  *uint256.Int
}

func (f *fakeClient) BlockNumber(ctx context.Context) (uint64, error) { return f.blockNumber, nil }

func (f *fakeClient) BlockByHash(ctx context.Context, hash [32]byte) (ports.BlockHeader, error) {
	return ports.BlockHeader{}, nil
}

func (f *fakeClient) BlockByNumber(ctx context.Context, number uint64) (ports.BlockHeader, error) {
	return ports.BlockHeader{Number: number, BaseFee: f.baseFee}, nil
}

func (f *fakeClient) FeeHistory(ctx context.Context, blockCount, newestBlock uint64, rewardPercentiles []float64) (ports.FeeHistory, error) {
	hist := f.historicalBaseFee
	if hist == nil {
		hist = f.baseFee
	}
	fees := make([]*uint256.Int, blockCount+1)
	for i := range fees {
		fees[i] = hist
	}
	reward := f.feeHistoryReward
	if reward == nil {
		reward = uint256.NewInt(1)
	}
	return ports.FeeHistory{BaseFeePerGas: fees, Reward: [][]*uint256.Int{{reward}}}, nil
}

func (f *fakeClient) Call(ctx context.Context, call ports.CallMsg) ([]byte, error) { return nil, nil }

func (f *fakeClient) EstimateGas(ctx context.Context, call ports.CallMsg) (uint64, error) {
	return f.estimateGas, f.estimateGasErr
}

func (f *fakeClient) SendTransaction(ctx context.Context, raw []byte) ([32]byte, error) {
	return [32]byte{1}, f.sendErr
}

func (f *fakeClient) TransactionReceipt(ctx context.Context, txHash [32]byte) (*ports.Receipt, error) {
	return &ports.Receipt{Status: f.receiptStatus, BlockNumber: f.receiptAt, TxHash: txHash}, nil
}

func (f *fakeClient) TransactionByHash(ctx context.Context, txHash [32]byte) (*ports.Transaction, error) {
	return nil, nil
}

func (f *fakeClient) FilterLogs(ctx context.Context, query ports.FilterQuery) ([]ports.Log, error) {
	return nil, nil
}

type fakeSigner struct{}

func (fakeSigner) Address() [20]byte { return [20]byte{} }
func (fakeSigner) SignTransaction(ctx context.Context, call ports.CallMsg, nonce uint64, maxFeePerGas, maxPriorityFeePerGas, gasLimit, chainID uint64) ([]byte, [32]byte, error) {
	return []byte{0xde, 0xad}, [32]byte{1}, nil
}

func baseConfig() Config {
	return Config{
		HardGasLimit:   1_000_000,
		Confirmations:  1,
		ConfirmTimeout: time.Second,
		RetryDelay:     time.Millisecond,
		ChainID:        1,
	}
}

func okRequest() Request {
	return Request{
		Populate: func(ctx context.Context) (ports.CallMsg, error) { return ports.CallMsg{}, nil },
		Emulate:  func(ctx context.Context, call ports.CallMsg) error { return nil },
	}
}

func TestExecuteEmulationFailedIsTerminal(t *testing.T) {
	client := &fakeClient{baseFee: uint256.NewInt(1)}
	gasMgr := gas.New(gas.Config{HistoryPercentile: 50}, client)
	ex := New(baseConfig(), client, gasMgr, fakeSigner{}, zerolog.Nop())

	req := Request{
		Populate: func(ctx context.Context) (ports.CallMsg, error) { return ports.CallMsg{}, nil },
		Emulate:  func(ctx context.Context, call ports.CallMsg) error { return errors.New("revert") },
	}

	err := ex.Execute(context.Background(), req)
	if !domain.IsKind(err, domain.KindEmulationFailed) {
		t.Fatalf("expected KindEmulationFailed, got %v", err)
	}
}

func TestExecuteDryRunSkipsSigning(t *testing.T) {
	client := &fakeClient{baseFee: uint256.NewInt(1)}
	gasMgr := gas.New(gas.Config{HistoryPercentile: 50}, client)
	cfg := baseConfig()
	cfg.DryRun = true
	ex := New(cfg, client, gasMgr, nil, zerolog.Nop())

	if err := ex.Execute(context.Background(), okRequest()); err != nil {
		t.Fatalf("dry run should succeed without a signer: %v", err)
	}
}

func TestExecuteNoSignerTerminatesWithoutRetry(t *testing.T) {
	client := &fakeClient{baseFee: uint256.NewInt(1)}
	gasMgr := gas.New(gas.Config{HistoryPercentile: 50}, client)
	ex := New(baseConfig(), client, gasMgr, nil, zerolog.Nop())

	err := ex.Execute(context.Background(), okRequest())
	if !domain.IsKind(err, domain.KindNoSigner) {
		t.Fatalf("expected KindNoSigner, got %v", err)
	}
}

func TestExecuteGasLimitExceededIsTerminal(t *testing.T) {
	client := &fakeClient{baseFee: uint256.NewInt(1), estimateGas: 10_000_000}
	gasMgr := gas.New(gas.Config{HistoryPercentile: 50}, client)
	cfg := baseConfig()
	cfg.HardGasLimit = 1000
	ex := New(cfg, client, gasMgr, fakeSigner{}, zerolog.Nop())

	err := ex.Execute(context.Background(), okRequest())
	if !domain.IsKind(err, domain.KindGasLimitExceeded) {
		t.Fatalf("expected KindGasLimitExceeded, got %v", err)
	}
}

func TestExecuteHighGasFeeRetriesThenSurfacesCount(t *testing.T) {
	client := &fakeClient{
		blockNumber:       1000,
		baseFee:           uint256.NewInt(1000),
		historicalBaseFee: uint256.NewInt(1), // far below current, so it's never acceptable
		estimateGas:       100,
	}
	gasMgr := gas.New(gas.Config{HistoryPercentile: 50, HistoryDays: 1, BlocksPerHour: 300, MaxBlockCount: 10}, client)
	cfg := baseConfig()
	cfg.RetryDelay = time.Millisecond

	ex := New(cfg, client, gasMgr, fakeSigner{}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := ex.Execute(ctx, okRequest())
	if err == nil {
		t.Fatal("expected HighGasFee to keep retrying until context deadline")
	}
	if ex.HighGasFeeRetries() == 0 {
		t.Fatal("expected at least one HighGasFee retry to be counted")
	}
}

func TestExecuteSuccessfulSubmission(t *testing.T) {
	client := &fakeClient{
		baseFee:       uint256.NewInt(1),
		estimateGas:   100,
		receiptStatus: 1,
		receiptAt:     1,
		blockNumber:   2,
	}
	gasMgr := gas.New(gas.Config{
		HistoryPercentile: 100,
		MinPriorityFee:    uint256.NewInt(0),
		MaxPriorityFee:    uint256.NewInt(1_000_000_000),
	}, client)
	ex := New(baseConfig(), client, gasMgr, fakeSigner{}, zerolog.Nop())

	if err := ex.Execute(context.Background(), okRequest()); err != nil {
		t.Fatalf("expected successful submission, got %v", err)
	}
}
