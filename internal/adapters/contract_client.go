package adapters

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/ports"
)

// contractClient aggregates the typed on-chain facades behind one value
// (spec.md §1), using go-ethereum's accounts/abi for encoding/decoding
// instead of abigen-generated bindings: the locator/oracle/verifier/
// staking-router/node-operator-registry ABIs are small enough that hand
// keeping them as ABI JSON fragments avoids a codegen step with no
// Solidity source to generate a binding from.
type contractClient struct {
	exec      ports.ExecutionClient
	locator   *locatorClient
	oracle    *oracleClient
	verifier  *verifierClient
	routerAbi gethabi.ABI
}

// NewContractClient wires every typed contract facade off of a single
// locator address (spec.md §6 lidoLocatorAddress), resolving the oracle and
// verifier addresses through it up front since both facades need their own
// contract address for eth_call/eth_getLogs, not just the locator's.
func NewContractClient(ctx context.Context, exec ports.ExecutionClient, locatorAddress [20]byte) (ports.ContractClient, error) {
	locator, err := newLocatorClient(exec, locatorAddress)
	if err != nil {
		return nil, err
	}
	oracleAddr, err := locator.OracleAddress(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve oracle address: %w", err)
	}
	verifierAddr, err := locator.VerifierAddress(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve verifier address: %w", err)
	}
	oracle, err := newOracleClient(exec, oracleAddr)
	if err != nil {
		return nil, err
	}
	verifier, err := newVerifierClient(exec, verifierAddr)
	if err != nil {
		return nil, err
	}
	routerAbi, err := gethabi.JSON(strings.NewReader(stakingRouterABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse staking router ABI: %w", err)
	}
	return &contractClient{
		exec:      exec,
		locator:   locator,
		oracle:    oracle,
		verifier:  verifier,
		routerAbi: routerAbi,
	}, nil
}

func (c *contractClient) Locator() ports.LocatorClient   { return c.locator }
func (c *contractClient) Oracle() ports.OracleClient     { return c.oracle }
func (c *contractClient) Verifier() ports.VerifierClient { return c.verifier }

func (c *contractClient) StakingModules(ctx context.Context) ([]ports.StakingModule, error) {
	routerAddr, err := c.locator.StakingRouterAddress(ctx)
	if err != nil {
		return nil, err
	}

	data, err := c.routerAbi.Pack("getStakingModules")
	if err != nil {
		return nil, fmt.Errorf("pack getStakingModules: %w", err)
	}
	out, err := c.exec.Call(ctx, ports.CallMsg{To: &routerAddr, Data: data})
	if err != nil {
		return nil, fmt.Errorf("call getStakingModules: %w", err)
	}

	type stakingModuleTuple struct {
		Id                   uint32
		StakingModuleAddress common.Address
	}
	var tuples []stakingModuleTuple
	if err := c.routerAbi.UnpackIntoInterface(&tuples, "getStakingModules", out); err != nil {
		return nil, fmt.Errorf("unpack getStakingModules: %w", err)
	}

	modules := make([]ports.StakingModule, 0, len(tuples))
	for _, m := range tuples {
		modules = append(modules, ports.StakingModule{
			ModuleID:        domain.ModuleID(m.Id),
			RegistryAddress: [20]byte(m.StakingModuleAddress),
		})
	}
	return modules, nil
}

func (c *contractClient) NodeOperatorRegistry(module ports.StakingModule) ports.NodeOperatorRegistry {
	return newNodeOperatorRegistry(c.exec, module.RegistryAddress)
}

// --- Locator -----------------------------------------------------------

type locatorClient struct {
	exec ports.ExecutionClient
	addr [20]byte
	abi  gethabi.ABI
}

func newLocatorClient(exec ports.ExecutionClient, addr [20]byte) (*locatorClient, error) {
	parsed, err := gethabi.JSON(strings.NewReader(locatorABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse locator ABI: %w", err)
	}
	return &locatorClient{exec: exec, addr: addr, abi: parsed}, nil
}

func (l *locatorClient) callAddress(ctx context.Context, method string) ([20]byte, error) {
	data, err := l.abi.Pack(method)
	if err != nil {
		return [20]byte{}, fmt.Errorf("pack %s: %w", method, err)
	}
	addr := l.addr
	out, err := l.exec.Call(ctx, ports.CallMsg{To: &addr, Data: data})
	if err != nil {
		return [20]byte{}, fmt.Errorf("call %s: %w", method, err)
	}
	results, err := l.abi.Unpack(method, out)
	if err != nil || len(results) != 1 {
		return [20]byte{}, fmt.Errorf("unpack %s: %w", method, err)
	}
	got, ok := results[0].(common.Address)
	if !ok {
		return [20]byte{}, fmt.Errorf("unexpected %s result type", method)
	}
	return [20]byte(got), nil
}

func (l *locatorClient) OracleAddress(ctx context.Context) ([20]byte, error) {
	return l.callAddress(ctx, "validatorsExitBusOracle")
}

func (l *locatorClient) VerifierAddress(ctx context.Context) ([20]byte, error) {
	return l.callAddress(ctx, "validatorExitDelayVerifier")
}

func (l *locatorClient) StakingRouterAddress(ctx context.Context) ([20]byte, error) {
	return l.callAddress(ctx, "stakingRouter")
}

func (l *locatorClient) ShardCommitteePeriodInSeconds(ctx context.Context) (domain.Timestamp, error) {
	verifierAddr, err := l.VerifierAddress(ctx)
	if err != nil {
		return 0, err
	}
	// The locator ABI doesn't carry this selector; it lives on the verifier
	// contract itself, so pack against a one-off ABI fragment instead.
	verifierAbi, err := gethabi.JSON(strings.NewReader(shardCommitteePeriodABIJSON))
	if err != nil {
		return 0, fmt.Errorf("parse shard committee period ABI: %w", err)
	}
	data, err := verifierAbi.Pack("SHARD_COMMITTEE_PERIOD_IN_SECONDS")
	if err != nil {
		return 0, fmt.Errorf("pack SHARD_COMMITTEE_PERIOD_IN_SECONDS: %w", err)
	}
	addr := verifierAddr
	out, err := l.exec.Call(ctx, ports.CallMsg{To: &addr, Data: data})
	if err != nil {
		return 0, fmt.Errorf("call SHARD_COMMITTEE_PERIOD_IN_SECONDS: %w", err)
	}
	results, err := verifierAbi.Unpack("SHARD_COMMITTEE_PERIOD_IN_SECONDS", out)
	if err != nil || len(results) != 1 {
		return 0, fmt.Errorf("unpack SHARD_COMMITTEE_PERIOD_IN_SECONDS: %w", err)
	}
	v, ok := results[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected SHARD_COMMITTEE_PERIOD_IN_SECONDS result type")
	}
	return domain.Timestamp(v.Uint64()), nil
}

// --- Oracle --------------------------------------------------------------

type oracleClient struct {
	exec ports.ExecutionClient
	addr [20]byte
	abi  gethabi.ABI

	submitReportDataID       [4]byte
	submitExitRequestsDataID [4]byte
	exitDataProcessingTopic  [32]byte
}

func newOracleClient(exec ports.ExecutionClient, addr [20]byte) (*oracleClient, error) {
	abi, err := gethabi.JSON(strings.NewReader(oracleABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse oracle ABI: %w", err)
	}
	c := &oracleClient{exec: exec, addr: addr, abi: abi}
	copy(c.submitReportDataID[:], abi.Methods["submitReportData"].ID)
	copy(c.submitExitRequestsDataID[:], abi.Methods["submitExitRequestsData"].ID)
	c.exitDataProcessingTopic = [32]byte(abi.Events["ExitDataProcessing"].ID)
	return c, nil
}

// ExitDataProcessingEvents issues an eth_getLogs query scoped to the oracle
// contract and the ExitDataProcessing event topic (spec.md §4.8.1 step 2).
func (o *oracleClient) ExitDataProcessingEvents(ctx context.Context, fromBlock, toBlock uint64) ([]ports.ExitDataProcessingEvent, error) {
	logs, err := o.exec.FilterLogs(ctx, ports.FilterQuery{
		FromBlock: fromBlock,
		ToBlock:   toBlock,
		Addresses: [][20]byte{o.addr},
		Topics:    [][][32]byte{{o.exitDataProcessingTopic}},
	})
	if err != nil {
		return nil, fmt.Errorf("filter ExitDataProcessing logs: %w", err)
	}
	events := make([]ports.ExitDataProcessingEvent, len(logs))
	for i, l := range logs {
		events[i] = ports.ExitDataProcessingEvent{BlockNumber: l.BlockNumber, TxHash: l.TxHash}
	}
	return events, nil
}

// submitReportDataArgs/submitExitRequestsDataArgs mirror the two call-data
// shapes the oracle's submit functions accept (spec.md §6): reportData
// nests dataFormat/data inside a wider report tuple, while exitRequestsData
// carries them directly.
type reportDataArg struct {
	ConsensusVersion *big.Int
	RefSlot          *big.Int
	RequestsCount    *big.Int
	DataFormat       *big.Int
	Data             []byte
}

type submitReportDataArgs struct {
	ReportData      reportDataArg
	ContractVersion *big.Int
}

type submitExitRequestsDataArg struct {
	DataFormat *big.Int
	Data       []byte
}

type submitExitRequestsDataArgs struct {
	Request submitExitRequestsDataArg
}

// DecodeExitRequestsTx fetches the transaction behind an ExitDataProcessing
// event and try-decodes its call data under either submitReportData or
// submitExitRequestsData, dispatching on the 4-byte selector rather than
// attempting one candidate and falling back on failure (spec.md §9 notes
// this is an equally valid reading of the "try in order" requirement).
// Unrecognized selectors and failed receipts are reported as ok=false so the
// caller can skip-and-log per spec.md §6.
func (o *oracleClient) DecodeExitRequestsTx(ctx context.Context, txHash [32]byte) (domain.ExitRequest, bool, error) {
	receipt, err := o.exec.TransactionReceipt(ctx, txHash)
	if err != nil {
		return domain.ExitRequest{}, false, err
	}
	if receipt == nil || receipt.Status != uint64(types.ReceiptStatusSuccessful) {
		return domain.ExitRequest{}, false, nil
	}

	tx, err := o.exec.TransactionByHash(ctx, txHash)
	if err != nil {
		return domain.ExitRequest{}, false, err
	}
	if tx == nil || len(tx.Data) < 4 {
		return domain.ExitRequest{}, false, nil
	}

	var selector [4]byte
	copy(selector[:], tx.Data[:4])
	body := tx.Data[4:]

	var (
		dataFormat *big.Int
		packed     []byte
	)
	switch selector {
	case o.submitReportDataID:
		var args submitReportDataArgs
		inputs := o.abi.Methods["submitReportData"].Inputs
		values, err := inputs.Unpack(body)
		if err != nil {
			return domain.ExitRequest{}, false, nil
		}
		if err := inputs.Copy(&args, values); err != nil {
			return domain.ExitRequest{}, false, nil
		}
		dataFormat, packed = args.ReportData.DataFormat, args.ReportData.Data
	case o.submitExitRequestsDataID:
		var args submitExitRequestsDataArgs
		inputs := o.abi.Methods["submitExitRequestsData"].Inputs
		values, err := inputs.Unpack(body)
		if err != nil {
			return domain.ExitRequest{}, false, nil
		}
		if err := inputs.Copy(&args, values); err != nil {
			return domain.ExitRequest{}, false, nil
		}
		dataFormat, packed = args.Request.DataFormat, args.Request.Data
	default:
		return domain.ExitRequest{}, false, nil
	}

	return domain.ExitRequest{
		ExitRequestsHash: domain.Root(crypto.Keccak256Hash(packed)),
		PackedData:       packed,
		DataFormat:       uint32(dataFormat.Uint64()),
	}, true, nil
}

func (o *oracleClient) DeliveredTimestamp(ctx context.Context, hash domain.Root) (domain.Timestamp, error) {
	data, err := o.abi.Pack("getDeliveredTimestamp", [32]byte(hash))
	if err != nil {
		return 0, fmt.Errorf("pack getDeliveredTimestamp: %w", err)
	}
	addr := o.addr
	out, err := o.exec.Call(ctx, ports.CallMsg{To: &addr, Data: data})
	if err != nil {
		return 0, fmt.Errorf("call getDeliveredTimestamp: %w", err)
	}
	results, err := o.abi.Unpack("getDeliveredTimestamp", out)
	if err != nil || len(results) != 1 {
		return 0, fmt.Errorf("unpack getDeliveredTimestamp: %w", err)
	}
	v, ok := results[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected getDeliveredTimestamp result type")
	}
	return domain.Timestamp(v.Uint64()), nil
}

// --- Verifier ------------------------------------------------------------

type verifierClient struct {
	exec ports.ExecutionClient
	addr [20]byte
	abi  gethabi.ABI
}

func newVerifierClient(exec ports.ExecutionClient, addr [20]byte) (*verifierClient, error) {
	abi, err := gethabi.JSON(strings.NewReader(verifierABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse verifier ABI: %w", err)
	}
	return &verifierClient{exec: exec, addr: addr, abi: abi}, nil
}

func (v *verifierClient) HistoricalWitnessHasRootGIndex() bool {
	method, ok := v.abi.Methods["verifyHistoricalValidatorExitDelay"]
	if !ok {
		return false
	}
	for _, input := range method.Inputs {
		if input.Type.T == gethabi.TupleTy {
			for _, field := range input.Type.TupleRawNames {
				if field == "rootGIndex" {
					return true
				}
			}
		}
	}
	return false
}

func (v *verifierClient) PopulateVerifyValidatorExitDelay(
	ctx context.Context,
	header domain.ProvableBeaconBlockHeader,
	witnesses []domain.ValidatorWitness,
	exitData domain.ExitRequestsData,
) (ports.CallMsg, error) {
	data, err := v.abi.Pack("verifyValidatorExitDelay", beaconBlockHeaderTuple(header.Header), witnessTuples(witnesses), exitRequestsDataTuple(exitData))
	if err != nil {
		return ports.CallMsg{}, fmt.Errorf("pack verifyValidatorExitDelay: %w", err)
	}
	addr := v.addr
	return ports.CallMsg{To: &addr, Data: data}, nil
}

func (v *verifierClient) PopulateVerifyHistoricalValidatorExitDelay(
	ctx context.Context,
	finalizedHeader domain.ProvableBeaconBlockHeader,
	historicalWitness domain.HistoricalHeaderWitness,
	witnesses []domain.ValidatorWitness,
	exitData domain.ExitRequestsData,
) (ports.CallMsg, error) {
	data, err := v.abi.Pack(
		"verifyHistoricalValidatorExitDelay",
		beaconBlockHeaderTuple(finalizedHeader.Header),
		historicalHeaderWitnessTuple(historicalWitness),
		witnessTuples(witnesses),
		exitRequestsDataTuple(exitData),
	)
	if err != nil {
		return ports.CallMsg{}, fmt.Errorf("pack verifyHistoricalValidatorExitDelay: %w", err)
	}
	addr := v.addr
	return ports.CallMsg{To: &addr, Data: data}, nil
}

// The tuple helper functions below translate domain proof types into the
// anonymous structs go-ethereum's abi.Pack expects for ABI tuples.

type beaconBlockHeaderArg struct {
	Slot          uint64
	ProposerIndex uint64
	ParentRoot    [32]byte
	StateRoot     [32]byte
	BodyRoot      [32]byte
}

func beaconBlockHeaderTuple(h domain.BeaconBlockHeader) beaconBlockHeaderArg {
	return beaconBlockHeaderArg{
		Slot:          uint64(h.Slot),
		ProposerIndex: uint64(h.ProposerIndex),
		ParentRoot:    [32]byte(h.ParentRoot),
		StateRoot:     [32]byte(h.StateRoot),
		BodyRoot:      [32]byte(h.BodyRoot),
	}
}

type validatorWitnessArg struct {
	ExitRequestIndex           uint32
	WithdrawalCredentials      [32]byte
	EffectiveBalance           uint64
	Slashed                    bool
	ActivationEligibilityEpoch uint64
	ActivationEpoch            uint64
	WithdrawableEpoch          uint64
	ValidatorProof             [][32]byte
	ModuleID                   uint32
	NodeOpID                   uint64
	Pubkey                     []byte
}

func witnessTuples(witnesses []domain.ValidatorWitness) []validatorWitnessArg {
	out := make([]validatorWitnessArg, len(witnesses))
	for i, w := range witnesses {
		proof := make([][32]byte, len(w.ValidatorProof))
		for j, p := range w.ValidatorProof {
			proof[j] = [32]byte(p)
		}
		pubkey := w.Pubkey
		out[i] = validatorWitnessArg{
			ExitRequestIndex:           w.ExitRequestIndex,
			WithdrawalCredentials:      [32]byte(w.WithdrawalCredentials),
			EffectiveBalance:           w.EffectiveBalance,
			Slashed:                    w.Slashed,
			ActivationEligibilityEpoch: uint64(w.ActivationEligibilityEpoch),
			ActivationEpoch:            uint64(w.ActivationEpoch),
			WithdrawableEpoch:          uint64(w.WithdrawableEpoch),
			ValidatorProof:             proof,
			ModuleID:                   uint32(w.ModuleID),
			NodeOpID:                   uint64(w.NodeOpID),
			Pubkey:                     pubkey[:],
		}
	}
	return out
}

type exitRequestsDataArg struct {
	Data       []byte
	DataFormat uint64
}

func exitRequestsDataTuple(d domain.ExitRequestsData) exitRequestsDataArg {
	return exitRequestsDataArg{Data: d.Data, DataFormat: d.DataFormat}
}

type historicalHeaderWitnessArg struct {
	Header     beaconBlockHeaderArg
	Proof      [][32]byte
	RootGIndex *big.Int
}

func historicalHeaderWitnessTuple(w domain.HistoricalHeaderWitness) historicalHeaderWitnessArg {
	proof := make([][32]byte, len(w.Proof))
	for i, p := range w.Proof {
		proof[i] = [32]byte(p)
	}
	gindex := new(big.Int)
	if w.RootGIndex != nil {
		gindex.SetUint64(*w.RootGIndex)
	}
	return historicalHeaderWitnessArg{
		Header:     beaconBlockHeaderTuple(w.Header),
		Proof:      proof,
		RootGIndex: gindex,
	}
}

// --- Node operator registry ----------------------------------------------

type nodeOperatorRegistryClient struct {
	exec ports.ExecutionClient
	addr [20]byte
	abi  gethabi.ABI
}

func newNodeOperatorRegistry(exec ports.ExecutionClient, addr [20]byte) *nodeOperatorRegistryClient {
	abi, _ := gethabi.JSON(strings.NewReader(nodeOperatorRegistryABIJSON))
	return &nodeOperatorRegistryClient{exec: exec, addr: addr, abi: abi}
}

func (r *nodeOperatorRegistryClient) ExitDeadlineThreshold(ctx context.Context, nodeOpID domain.NodeOpID) (domain.Timestamp, error) {
	data, err := r.abi.Pack("exitDeadlineThreshold", uint64(nodeOpID))
	if err != nil {
		return 0, fmt.Errorf("pack exitDeadlineThreshold: %w", err)
	}
	addr := r.addr
	out, err := r.exec.Call(ctx, ports.CallMsg{To: &addr, Data: data})
	if err != nil {
		return 0, fmt.Errorf("call exitDeadlineThreshold: %w", err)
	}
	results, err := r.abi.Unpack("exitDeadlineThreshold", out)
	if err != nil || len(results) != 1 {
		return 0, fmt.Errorf("unpack exitDeadlineThreshold: %w", err)
	}
	v, ok := results[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected exitDeadlineThreshold result type")
	}
	return domain.Timestamp(v.Uint64()), nil
}

func (r *nodeOperatorRegistryClient) IsValidatorExitDelayPenaltyApplicable(
	ctx context.Context,
	nodeOpID domain.NodeOpID,
	proofSlotTimestamp domain.Timestamp,
	pubkey domain.Pubkey,
	secondsSinceEligible uint64,
) (bool, error) {
	data, err := r.abi.Pack(
		"isValidatorExitDelayPenaltyApplicable",
		uint64(nodeOpID),
		uint64(proofSlotTimestamp),
		pubkey[:],
		new(big.Int).SetUint64(secondsSinceEligible),
	)
	if err != nil {
		return false, fmt.Errorf("pack isValidatorExitDelayPenaltyApplicable: %w", err)
	}
	addr := r.addr
	out, err := r.exec.Call(ctx, ports.CallMsg{To: &addr, Data: data})
	if err != nil {
		return false, fmt.Errorf("call isValidatorExitDelayPenaltyApplicable: %w", err)
	}
	results, err := r.abi.Unpack("isValidatorExitDelayPenaltyApplicable", out)
	if err != nil || len(results) != 1 {
		return false, fmt.Errorf("unpack isValidatorExitDelayPenaltyApplicable: %w", err)
	}
	v, ok := results[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected isValidatorExitDelayPenaltyApplicable result type")
	}
	return v, nil
}

const locatorABIJSON = `[
	{"type":"function","name":"validatorsExitBusOracle","inputs":[],"outputs":[{"type":"address"}],"stateMutability":"view"},
	{"type":"function","name":"validatorExitDelayVerifier","inputs":[],"outputs":[{"type":"address"}],"stateMutability":"view"},
	{"type":"function","name":"stakingRouter","inputs":[],"outputs":[{"type":"address"}],"stateMutability":"view"}
]`

const shardCommitteePeriodABIJSON = `[
	{"type":"function","name":"SHARD_COMMITTEE_PERIOD_IN_SECONDS","inputs":[],"outputs":[{"type":"uint256"}],"stateMutability":"view"}
]`

const stakingRouterABIJSON = `[
	{"type":"function","name":"getStakingModules","inputs":[],"outputs":[{"type":"tuple[]","components":[{"name":"id","type":"uint32"},{"name":"stakingModuleAddress","type":"address"}]}],"stateMutability":"view"}
]`

const oracleABIJSON = `[
	{"type":"function","name":"getDeliveredTimestamp","inputs":[{"type":"bytes32"}],"outputs":[{"type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"submitReportData","inputs":[
		{"name":"reportData","type":"tuple","components":[
			{"name":"consensusVersion","type":"uint256"},
			{"name":"refSlot","type":"uint256"},
			{"name":"requestsCount","type":"uint256"},
			{"name":"dataFormat","type":"uint256"},
			{"name":"data","type":"bytes"}
		]},
		{"name":"contractVersion","type":"uint256"}
	],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"submitExitRequestsData","inputs":[
		{"name":"request","type":"tuple","components":[
			{"name":"dataFormat","type":"uint256"},
			{"name":"data","type":"bytes"}
		]}
	],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"event","name":"ExitDataProcessing","anonymous":false,"inputs":[
		{"name":"exitRequestsHash","type":"bytes32","indexed":true}
	]}
]`

const headerComponents = `{"name":"slot","type":"uint64"},{"name":"proposerIndex","type":"uint64"},{"name":"parentRoot","type":"bytes32"},{"name":"stateRoot","type":"bytes32"},{"name":"bodyRoot","type":"bytes32"}`

const witnessComponents = `{"name":"exitRequestIndex","type":"uint32"},{"name":"withdrawalCredentials","type":"bytes32"},{"name":"effectiveBalance","type":"uint64"},{"name":"slashed","type":"bool"},{"name":"activationEligibilityEpoch","type":"uint64"},{"name":"activationEpoch","type":"uint64"},{"name":"withdrawableEpoch","type":"uint64"},{"name":"validatorProof","type":"bytes32[]"},{"name":"moduleId","type":"uint32"},{"name":"nodeOpId","type":"uint64"},{"name":"pubkey","type":"bytes"}`

const exitDataComponents = `{"name":"data","type":"bytes"},{"name":"dataFormat","type":"uint64"}`

const verifierABIJSON = `[
	{"type":"function","name":"verifyValidatorExitDelay","inputs":[
		{"name":"header","type":"tuple","components":[` + headerComponents + `]},
		{"name":"witnesses","type":"tuple[]","components":[` + witnessComponents + `]},
		{"name":"exitData","type":"tuple","components":[` + exitDataComponents + `]}
	],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"verifyHistoricalValidatorExitDelay","inputs":[
		{"name":"finalizedHeader","type":"tuple","components":[` + headerComponents + `]},
		{"name":"historicalWitness","type":"tuple","components":[{"name":"header","type":"tuple","components":[` + headerComponents + `]},{"name":"proof","type":"bytes32[]"},{"name":"rootGIndex","type":"uint256"}]},
		{"name":"witnesses","type":"tuple[]","components":[` + witnessComponents + `]},
		{"name":"exitData","type":"tuple","components":[` + exitDataComponents + `]}
	],"outputs":[],"stateMutability":"nonpayable"}
]`

const nodeOperatorRegistryABIJSON = `[
	{"type":"function","name":"exitDeadlineThreshold","inputs":[{"type":"uint64"}],"outputs":[{"type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"isValidatorExitDelayPenaltyApplicable","inputs":[{"type":"uint64"},{"type":"uint64"},{"type":"bytes"},{"type":"uint256"}],"outputs":[{"type":"bool"}],"stateMutability":"view"}
]`
