package adapters

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"

	"github.com/exitwatch/prover/internal/ports"
)

// executionHTTPClient implements ports.ExecutionClient against a single
// execution-layer JSON-RPC endpoint via go-ethereum's ethclient.
type executionHTTPClient struct {
	client *ethclient.Client
}

// NewExecutionHTTPAdapter dials a single EL RPC endpoint.
func NewExecutionHTTPAdapter(ctx context.Context, endpoint string) (ports.ExecutionClient, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return &executionHTTPClient{client: client}, nil
}

func (e *executionHTTPClient) BlockNumber(ctx context.Context) (uint64, error) {
	return e.client.BlockNumber(ctx)
}

func (e *executionHTTPClient) BlockByHash(ctx context.Context, hash [32]byte) (ports.BlockHeader, error) {
	header, err := e.client.HeaderByHash(ctx, common.Hash(hash))
	if err != nil {
		return ports.BlockHeader{}, err
	}
	return headerToPort(header), nil
}

func (e *executionHTTPClient) BlockByNumber(ctx context.Context, number uint64) (ports.BlockHeader, error) {
	header, err := e.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return ports.BlockHeader{}, err
	}
	return headerToPort(header), nil
}

func headerToPort(header *types.Header) ports.BlockHeader {
	out := ports.BlockHeader{
		Number:    header.Number.Uint64(),
		Hash:      [32]byte(header.Hash()),
		Timestamp: header.Time,
	}
	if header.BaseFee != nil {
		if baseFee, overflow := uint256.FromBig(header.BaseFee); !overflow {
			out.BaseFee = baseFee
		}
	}
	return out
}

func (e *executionHTTPClient) FeeHistory(ctx context.Context, blockCount uint64, newestBlock uint64, rewardPercentiles []float64) (ports.FeeHistory, error) {
	hist, err := e.client.FeeHistory(ctx, blockCount, new(big.Int).SetUint64(newestBlock), rewardPercentiles)
	if err != nil {
		return ports.FeeHistory{}, err
	}

	out := ports.FeeHistory{OldestBlock: hist.OldestBlock.Uint64()}
	for _, b := range hist.BaseFee {
		u, _ := uint256.FromBig(b)
		out.BaseFeePerGas = append(out.BaseFeePerGas, u)
	}
	for _, row := range hist.Reward {
		var converted []*uint256.Int
		for _, r := range row {
			u, _ := uint256.FromBig(r)
			converted = append(converted, u)
		}
		out.Reward = append(out.Reward, converted)
	}
	return out, nil
}

func (e *executionHTTPClient) Call(ctx context.Context, call ports.CallMsg) ([]byte, error) {
	return e.client.CallContract(ctx, callMsgToEthereum(call), nil)
}

func (e *executionHTTPClient) EstimateGas(ctx context.Context, call ports.CallMsg) (uint64, error) {
	return e.client.EstimateGas(ctx, callMsgToEthereum(call))
}

func callMsgToEthereum(call ports.CallMsg) ethereum.CallMsg {
	msg := ethereum.CallMsg{
		From:     common.Address(call.From),
		Gas:      call.Gas,
		GasPrice: call.GasPrice,
		Value:    call.Value,
		Data:     call.Data,
	}
	if call.To != nil {
		to := common.Address(*call.To)
		msg.To = &to
	}
	return msg
}

func (e *executionHTTPClient) SendTransaction(ctx context.Context, raw []byte) ([32]byte, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return [32]byte{}, fmt.Errorf("decode raw transaction: %w", err)
	}
	if err := e.client.SendTransaction(ctx, tx); err != nil {
		return [32]byte{}, err
	}
	return [32]byte(tx.Hash()), nil
}

func (e *executionHTTPClient) TransactionReceipt(ctx context.Context, txHash [32]byte) (*ports.Receipt, error) {
	receipt, err := e.client.TransactionReceipt(ctx, common.Hash(txHash))
	if err != nil {
		if err == ethereum.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ports.Receipt{
		Status:      receipt.Status,
		BlockNumber: receipt.BlockNumber.Uint64(),
		TxHash:      [32]byte(receipt.TxHash),
	}, nil
}

func (e *executionHTTPClient) TransactionByHash(ctx context.Context, txHash [32]byte) (*ports.Transaction, error) {
	tx, _, err := e.client.TransactionByHash(ctx, common.Hash(txHash))
	if err != nil {
		if err == ethereum.NotFound {
			return nil, nil
		}
		return nil, err
	}
	out := &ports.Transaction{Data: tx.Data()}
	if to := tx.To(); to != nil {
		addr := [20]byte(*to)
		out.To = &addr
	}
	return out, nil
}

func (e *executionHTTPClient) FilterLogs(ctx context.Context, query ports.FilterQuery) ([]ports.Log, error) {
	q := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(query.FromBlock),
		ToBlock:   new(big.Int).SetUint64(query.ToBlock),
	}
	for _, a := range query.Addresses {
		q.Addresses = append(q.Addresses, common.Address(a))
	}
	for _, topicSet := range query.Topics {
		var hashes []common.Hash
		for _, t := range topicSet {
			hashes = append(hashes, common.Hash(t))
		}
		q.Topics = append(q.Topics, hashes)
	}

	logs, err := e.client.FilterLogs(ctx, q)
	if err != nil {
		return nil, err
	}

	out := make([]ports.Log, len(logs))
	for i, l := range logs {
		topics := make([][32]byte, len(l.Topics))
		for j, t := range l.Topics {
			topics[j] = [32]byte(t)
		}
		out[i] = ports.Log{
			Address:     [20]byte(l.Address),
			Topics:      topics,
			Data:        l.Data,
			BlockNumber: l.BlockNumber,
			TxHash:      [32]byte(l.TxHash),
		}
	}
	return out, nil
}
