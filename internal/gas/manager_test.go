package gas

import (
	"context"
	"testing"

	"github.com/holiman/uint256"

	"github.com/exitwatch/prover/internal/ports"
)

type fakeExecClient struct {
	blockNumber uint64
	feeHistory  func(blockCount, newestBlock uint64) ports.FeeHistory
}

func (f *fakeExecClient) BlockNumber(ctx context.Context) (uint64, error) { return f.blockNumber, nil }

func (f *fakeExecClient) BlockByHash(ctx context.Context, hash [32]byte) (ports.BlockHeader, error) {
	return ports.BlockHeader{}, nil
}

func (f *fakeExecClient) BlockByNumber(ctx context.Context, number uint64) (ports.BlockHeader, error) {
	return ports.BlockHeader{}, nil
}

func (f *fakeExecClient) FeeHistory(ctx context.Context, blockCount, newestBlock uint64, rewardPercentiles []float64) (ports.FeeHistory, error) {
	return f.feeHistory(blockCount, newestBlock), nil
}

func (f *fakeExecClient) Call(ctx context.Context, call ports.CallMsg) ([]byte, error) { return nil, nil }

func (f *fakeExecClient) EstimateGas(ctx context.Context, call ports.CallMsg) (uint64, error) { return 0, nil }
func (f *fakeExecClient) SendTransaction(ctx context.Context, raw []byte) ([32]byte, error)    { return [32]byte{}, nil }
func (f *fakeExecClient) TransactionReceipt(ctx context.Context, txHash [32]byte) (*ports.Receipt, error) {
	return nil, nil
}

func (f *fakeExecClient) TransactionByHash(ctx context.Context, txHash [32]byte) (*ports.Transaction, error) {
	return nil, nil
}

func (f *fakeExecClient) FilterLogs(ctx context.Context, query ports.FilterQuery) ([]ports.Log, error) {
	return nil, nil
}

func TestRefreshSkipsWithinBlocksPerHour(t *testing.T) {
	calls := 0
	client := &fakeExecClient{
		blockNumber: 100,
		feeHistory: func(blockCount, newestBlock uint64) ports.FeeHistory {
			calls++
			return ports.FeeHistory{BaseFeePerGas: u256s(1, 2)}
		},
	}
	m := New(Config{BlocksPerHour: 300, HistoryDays: 1, MaxBlockCount: 1024}, client)
	m.lastFeeHistoryBlockNumber = 50 // within 300 of 100

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected refresh to be skipped, got %d fee history calls", calls)
	}
}

func TestRefreshFetchesAndDropsTrailingBlock(t *testing.T) {
	client := &fakeExecClient{
		blockNumber: 1000,
		feeHistory: func(blockCount, newestBlock uint64) ports.FeeHistory {
			// Return blockCount+1 entries, as eth_feeHistory does.
			fees := make([]*uint256.Int, blockCount+1)
			for i := range fees {
				fees[i] = uint256.NewInt(uint64(i) + 1)
			}
			return ports.FeeHistory{BaseFeePerGas: fees}
		},
	}
	m := New(Config{BlocksPerHour: 300, HistoryDays: 1, MaxBlockCount: 10}, client)

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	// blocksSinceRefresh (1000, since this is the first refresh) is below
	// the historyDays*24*blocksPerHour cap (7200), so the full 1000 fetched
	// blocks (in batches of 10, trailing entry dropped each time) survive.
	if len(m.history) != 1000 {
		t.Fatalf("history length = %d, want 1000", len(m.history))
	}
}

func TestAcceptableUsesHistoryPercentile(t *testing.T) {
	m := New(Config{HistoryPercentile: 50}, nil)
	m.history = u256s(10, 20, 30, 40, 50)

	if !m.Acceptable(uint256.NewInt(30)) {
		t.Fatal("expected base fee at p50 to be acceptable")
	}
	if m.Acceptable(uint256.NewInt(31)) {
		t.Fatal("expected base fee above p50 to be unacceptable")
	}
}

func TestAcceptableWithEmptyHistoryDefaultsToTrue(t *testing.T) {
	m := New(Config{HistoryPercentile: 50}, nil)
	if !m.Acceptable(uint256.NewInt(1_000_000)) {
		t.Fatal("expected empty history to be treated as acceptable")
	}
}

func TestEIP1559ParamsClampsAndDoublesBaseFee(t *testing.T) {
	client := &fakeExecClient{
		blockNumber: 100,
		feeHistory: func(blockCount, newestBlock uint64) ports.FeeHistory {
			return ports.FeeHistory{
				BaseFeePerGas: u256s(100),
				Reward:        [][]*uint256.Int{{uint256.NewInt(5000)}}, // above MaxPriorityFee
			}
		},
	}
	m := New(Config{
		PriorityFeePercentile: 50,
		MinPriorityFee:        uint256.NewInt(10),
		MaxPriorityFee:        uint256.NewInt(1000),
	}, client)

	params, err := m.EIP1559Params(context.Background(), uint256.NewInt(100))
	if err != nil {
		t.Fatalf("EIP1559Params: %v", err)
	}
	if params.MaxPriorityFeePerGas.Uint64() != 1000 {
		t.Fatalf("maxPriorityFeePerGas = %d, want clamped to 1000", params.MaxPriorityFeePerGas.Uint64())
	}
	if params.MaxFeePerGas.Uint64() != 200+1000 {
		t.Fatalf("maxFeePerGas = %d, want %d", params.MaxFeePerGas.Uint64(), 200+1000)
	}
}
