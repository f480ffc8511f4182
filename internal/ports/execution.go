package ports

import (
	"context"
	"math/big"

	"github.com/holiman/uint256"
)

// ExecutionClient is the facade over the execution-layer JSON-RPC endpoint
// (spec.md §1). internal/gas and internal/tx are its only callers.
type ExecutionClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	BlockByHash(ctx context.Context, hash [32]byte) (BlockHeader, error)
	BlockByNumber(ctx context.Context, number uint64) (BlockHeader, error)

	// FeeHistory mirrors eth_feeHistory: blockCount most-recent blocks
	// ending at newestBlock, with the given reward percentiles.
	FeeHistory(ctx context.Context, blockCount uint64, newestBlock uint64, rewardPercentiles []float64) (FeeHistory, error)

	// Call mirrors eth_call: a read-only invocation against the latest
	// state, used by the prover core's emulate step (spec.md §4.7 step 2).
	Call(ctx context.Context, call CallMsg) ([]byte, error)

	EstimateGas(ctx context.Context, call CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, raw []byte) ([32]byte, error)
	TransactionReceipt(ctx context.Context, txHash [32]byte) (*Receipt, error)

	// TransactionByHash fetches a transaction's raw body, used to decode
	// the oracle call data an event only identifies by hash (spec.md
	// §4.8.1 step 2).
	TransactionByHash(ctx context.Context, txHash [32]byte) (*Transaction, error)

	// FilterLogs mirrors eth_getLogs, used to discover ExitDataProcessing
	// events in an execution-layer block range (spec.md §4.8.1 step 2).
	FilterLogs(ctx context.Context, query FilterQuery) ([]Log, error)
}

type BlockHeader struct {
	Number    uint64
	Hash      [32]byte
	BaseFee   *uint256.Int
	Timestamp uint64
}

type FeeHistory struct {
	OldestBlock   uint64
	BaseFeePerGas []*uint256.Int // len = blockCount+1
	Reward        [][]*uint256.Int
}

type CallMsg struct {
	From     [20]byte
	To       *[20]byte
	Gas      uint64
	GasPrice *big.Int
	Value    *big.Int
	Data     []byte
}

type Receipt struct {
	Status      uint64 // 1 = success
	BlockNumber uint64
	TxHash      [32]byte
}

// Transaction is the subset of a transaction's raw body the oracle
// event-decode path needs: the target contract and the call data
// submitted against it.
type Transaction struct {
	To   *[20]byte
	Data []byte
}

// FilterQuery mirrors ethereum.FilterQuery's fields for eth_getLogs.
type FilterQuery struct {
	FromBlock uint64
	ToBlock   uint64
	Addresses [][20]byte
	Topics    [][][32]byte
}

// Log is one eth_getLogs result entry.
type Log struct {
	Address     [20]byte
	Topics      [][32]byte
	Data        []byte
	BlockNumber uint64
	TxHash      [32]byte
}
