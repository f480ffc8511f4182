package ports

import (
	"context"

	"github.com/exitwatch/prover/internal/domain"
)

// ExitDataProcessingEvent is one oracle-emitted event observed in an EL
// block range (spec.md §4.8.1 step 2).
type ExitDataProcessingEvent struct {
	BlockNumber uint64
	TxHash      [32]byte
}

// OracleClient is the typed facade over the exit-request oracle contract
// (spec.md §4.8.1).
type OracleClient interface {
	// ExitDataProcessingEvents returns events in [fromBlock, toBlock], inclusive.
	ExitDataProcessingEvents(ctx context.Context, fromBlock, toBlock uint64) ([]ExitDataProcessingEvent, error)

	// DecodeExitRequestsTx decodes the transaction identified by txHash as
	// submitReportData or submitExitRequestsData, chosen by its 4-byte
	// selector (spec.md §4.8.1 step 2 / §6). ok is false if the selector
	// matches neither, the matching format does not decode, or the receipt
	// status was not success.
	DecodeExitRequestsTx(ctx context.Context, txHash [32]byte) (req domain.ExitRequest, ok bool, err error)

	// DeliveredTimestamp looks up an exit request's delivery timestamp by
	// its hash (spec.md §3).
	DeliveredTimestamp(ctx context.Context, hash domain.Root) (domain.Timestamp, error)
}

// StakingModule is one entry of the staking router's module list
// (spec.md §4.4, §9).
type StakingModule struct {
	ModuleID        domain.ModuleID
	RegistryAddress [20]byte
}

// NodeOperatorRegistry is the per-module facade used by the deadline
// resolver and the eligibility check (spec.md §4.4 step 3, §4.8.2).
type NodeOperatorRegistry interface {
	ExitDeadlineThreshold(ctx context.Context, nodeOpID domain.NodeOpID) (domain.Timestamp, error)

	IsValidatorExitDelayPenaltyApplicable(
		ctx context.Context,
		nodeOpID domain.NodeOpID,
		proofSlotTimestamp domain.Timestamp,
		pubkey domain.Pubkey,
		secondsSinceEligible uint64,
	) (bool, error)
}

// VerifierClient is the typed facade over the on-chain verifier contract
// that receives proofs and assesses penalties (spec.md §6).
type VerifierClient interface {
	// HistoricalWitnessHasRootGIndex reports whether the client's verifier
	// ABI declares a rootGIndex field in the HistoricalHeaderWitness struct
	// (spec.md §9 open question).
	HistoricalWitnessHasRootGIndex() bool

	PopulateVerifyValidatorExitDelay(
		ctx context.Context,
		header domain.ProvableBeaconBlockHeader,
		witnesses []domain.ValidatorWitness,
		exitData domain.ExitRequestsData,
	) (CallMsg, error)

	PopulateVerifyHistoricalValidatorExitDelay(
		ctx context.Context,
		finalizedHeader domain.ProvableBeaconBlockHeader,
		historicalWitness domain.HistoricalHeaderWitness,
		witnesses []domain.ValidatorWitness,
		exitData domain.ExitRequestsData,
	) (CallMsg, error)
}

// LocatorClient resolves every other contract address from the single
// configured root address at init (spec.md §6 lidoLocatorAddress, §9).
type LocatorClient interface {
	OracleAddress(ctx context.Context) ([20]byte, error)
	VerifierAddress(ctx context.Context) ([20]byte, error)
	StakingRouterAddress(ctx context.Context) ([20]byte, error)
	ShardCommitteePeriodInSeconds(ctx context.Context) (domain.Timestamp, error)
}

// ContractClient aggregates the contract-facing facades the core needs
// behind one injectable value, mirroring spec.md §1's "typed ContractClient
// facade" description.
type ContractClient interface {
	Locator() LocatorClient
	Oracle() OracleClient
	Verifier() VerifierClient
	StakingModules(ctx context.Context) ([]StakingModule, error)
	NodeOperatorRegistry(module StakingModule) NodeOperatorRegistry
}
