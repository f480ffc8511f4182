package adapters

import (
	"context"
	"math/big"
	"testing"

	"github.com/exitwatch/prover/internal/ports"
)

type fakeOracleExecClient struct {
	receipts map[[32]byte]*ports.Receipt
	txs      map[[32]byte]*ports.Transaction
	logs     []ports.Log
}

func (f *fakeOracleExecClient) BlockNumber(ctx context.Context) (uint64, error) { return 0, nil }
func (f *fakeOracleExecClient) BlockByHash(ctx context.Context, hash [32]byte) (ports.BlockHeader, error) {
	return ports.BlockHeader{}, nil
}
func (f *fakeOracleExecClient) BlockByNumber(ctx context.Context, number uint64) (ports.BlockHeader, error) {
	return ports.BlockHeader{}, nil
}
func (f *fakeOracleExecClient) FeeHistory(ctx context.Context, blockCount, newestBlock uint64, rewardPercentiles []float64) (ports.FeeHistory, error) {
	return ports.FeeHistory{}, nil
}
func (f *fakeOracleExecClient) Call(ctx context.Context, call ports.CallMsg) ([]byte, error) {
	return nil, nil
}
func (f *fakeOracleExecClient) EstimateGas(ctx context.Context, call ports.CallMsg) (uint64, error) {
	return 0, nil
}
func (f *fakeOracleExecClient) SendTransaction(ctx context.Context, raw []byte) ([32]byte, error) {
	return [32]byte{}, nil
}
func (f *fakeOracleExecClient) TransactionReceipt(ctx context.Context, txHash [32]byte) (*ports.Receipt, error) {
	return f.receipts[txHash], nil
}
func (f *fakeOracleExecClient) TransactionByHash(ctx context.Context, txHash [32]byte) (*ports.Transaction, error) {
	return f.txs[txHash], nil
}
func (f *fakeOracleExecClient) FilterLogs(ctx context.Context, query ports.FilterQuery) ([]ports.Log, error) {
	return f.logs, nil
}

func mustOracleClient(t *testing.T, exec ports.ExecutionClient) *oracleClient {
	t.Helper()
	c, err := newOracleClient(exec, [20]byte{0xAA})
	if err != nil {
		t.Fatalf("newOracleClient: %v", err)
	}
	return c
}

func TestDecodeExitRequestsTxSubmitReportData(t *testing.T) {
	txHash := [32]byte{1}
	oracle := mustOracleClient(t, nil)

	body, err := oracle.abi.Pack("submitReportData", reportDataArg{
		ConsensusVersion: big.NewInt(1),
		RefSlot:          big.NewInt(100),
		RequestsCount:    big.NewInt(1),
		DataFormat:       big.NewInt(1),
		Data:             []byte{0xDE, 0xAD, 0xBE, 0xEF},
	}, big.NewInt(1))
	if err != nil {
		t.Fatalf("pack submitReportData: %v", err)
	}

	exec := &fakeOracleExecClient{
		receipts: map[[32]byte]*ports.Receipt{txHash: {Status: 1}},
		txs:      map[[32]byte]*ports.Transaction{txHash: {Data: body}},
	}
	oracle.exec = exec

	req, ok, err := oracle.DecodeExitRequestsTx(context.Background(), txHash)
	if err != nil {
		t.Fatalf("DecodeExitRequestsTx: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true for a submitReportData call")
	}
	if string(req.PackedData) != "\xde\xad\xbe\xef" {
		t.Fatalf("unexpected packed data: %x", req.PackedData)
	}
	if req.DataFormat != 1 {
		t.Fatalf("expected dataFormat 1, got %d", req.DataFormat)
	}
}

func TestDecodeExitRequestsTxSubmitExitRequestsData(t *testing.T) {
	txHash := [32]byte{2}
	oracle := mustOracleClient(t, nil)

	body, err := oracle.abi.Pack("submitExitRequestsData", submitExitRequestsDataArg{
		DataFormat: big.NewInt(2),
		Data:       []byte{0xCA, 0xFE},
	})
	if err != nil {
		t.Fatalf("pack submitExitRequestsData: %v", err)
	}

	exec := &fakeOracleExecClient{
		receipts: map[[32]byte]*ports.Receipt{txHash: {Status: 1}},
		txs:      map[[32]byte]*ports.Transaction{txHash: {Data: body}},
	}
	oracle.exec = exec

	req, ok, err := oracle.DecodeExitRequestsTx(context.Background(), txHash)
	if err != nil {
		t.Fatalf("DecodeExitRequestsTx: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true for a submitExitRequestsData call")
	}
	if string(req.PackedData) != "\xca\xfe" {
		t.Fatalf("unexpected packed data: %x", req.PackedData)
	}
	if req.DataFormat != 2 {
		t.Fatalf("expected dataFormat 2, got %d", req.DataFormat)
	}
}

func TestDecodeExitRequestsTxUnrecognizedSelectorSkips(t *testing.T) {
	txHash := [32]byte{3}
	oracle := mustOracleClient(t, nil)

	body, err := oracle.abi.Pack("getDeliveredTimestamp", [32]byte{})
	if err != nil {
		t.Fatalf("pack getDeliveredTimestamp: %v", err)
	}

	exec := &fakeOracleExecClient{
		receipts: map[[32]byte]*ports.Receipt{txHash: {Status: 1}},
		txs:      map[[32]byte]*ports.Transaction{txHash: {Data: body}},
	}
	oracle.exec = exec

	_, ok, err := oracle.DecodeExitRequestsTx(context.Background(), txHash)
	if err != nil {
		t.Fatalf("DecodeExitRequestsTx: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for an unrecognized selector")
	}
}

func TestDecodeExitRequestsTxFailedReceiptSkips(t *testing.T) {
	txHash := [32]byte{4}
	oracle := mustOracleClient(t, nil)
	oracle.exec = &fakeOracleExecClient{
		receipts: map[[32]byte]*ports.Receipt{txHash: {Status: 0}},
	}

	_, ok, err := oracle.DecodeExitRequestsTx(context.Background(), txHash)
	if err != nil {
		t.Fatalf("DecodeExitRequestsTx: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for a failed receipt")
	}
}

func TestExitDataProcessingEventsMapsLogs(t *testing.T) {
	oracle := mustOracleClient(t, nil)
	oracle.exec = &fakeOracleExecClient{
		logs: []ports.Log{
			{BlockNumber: 10, TxHash: [32]byte{5}},
			{BlockNumber: 11, TxHash: [32]byte{6}},
		},
	}

	events, err := oracle.ExitDataProcessingEvents(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("ExitDataProcessingEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].BlockNumber != 10 || events[0].TxHash != [32]byte{5} {
		t.Fatalf("unexpected event: %+v", events[0])
	}
}
