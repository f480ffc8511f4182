package domain

// ExitRequest mirrors an oracle-emitted exit request record (spec.md §3).
// DeliveredTimestamp is filled in separately by the beacon reader's oracle
// lookup, since the event itself only carries the hash.
type ExitRequest struct {
	ExitRequestsHash   Root
	PackedData         []byte
	DataFormat         uint32
	DeliveredTimestamp Timestamp
}

// Validator is one decoded entry from an ExitRequest's packed payload
// (spec.md §3, decoded by internal/decoder).
type Validator struct {
	ExitDataIndex  uint32
	ModuleID       ModuleID
	NodeOpID       NodeOpID
	ValidatorIndex ValidatorIndex
	Pubkey         Pubkey
}

// DeadlineEntry is one Validator together with the deadline arithmetic
// resolved for it by internal/deadline (spec.md §3 DeadlineGroup.entries).
type DeadlineEntry struct {
	Validator          Validator
	ActivationEpoch    Epoch
	ExitDeadlineEpoch  Epoch
	EligibleExitTime   Timestamp
}

// DeadlineGroup is the set of validator entries that share both an exit
// request and a deadline slot (spec.md §3).
type DeadlineGroup struct {
	ExitRequest ExitRequest
	Entries     []DeadlineEntry
}

// ValidatorState is the subset of an on-chain validator record (as read
// from the beacon state at the proof slot) the prover needs. It is kept
// distinct from Validator, which is the oracle-decoded exit-request entry:
// ValidatorState is read fresh from beacon state each cycle.
type ValidatorState struct {
	Pubkey                     Pubkey
	WithdrawalCredentials      Root
	EffectiveBalance           uint64
	Slashed                    bool
	ActivationEligibilityEpoch Epoch
	ActivationEpoch            Epoch
	ExitEpoch                  Epoch
	WithdrawableEpoch          Epoch
}

// HistoricalSummary is one entry of BeaconState.historical_summaries: a
// root of a past span's block roots and state roots (spec.md GLOSSARY).
type HistoricalSummary struct {
	BlockSummaryRoot Root
	StateSummaryRoot Root
}

// BeaconBlockHeader is the consensus-layer block header type, used both
// standalone and embedded in ProvableBeaconBlockHeader /
// HistoricalHeaderWitness (spec.md §3).
type BeaconBlockHeader struct {
	Slot          Slot
	ProposerIndex ValidatorIndex
	ParentRoot    Root
	StateRoot     Root
	BodyRoot      Root
}

// ProvableBeaconBlockHeader pairs a header with the timestamp at which its
// state roots become queryable on the execution layer (spec.md §3):
// rootsTimestamp = genesisTime + (slot+1)*secondsPerSlot.
type ProvableBeaconBlockHeader struct {
	Header         BeaconBlockHeader
	RootsTimestamp Timestamp
}

// NewProvableHeader derives RootsTimestamp from cfg and header.Slot.
func NewProvableHeader(cfg BeaconConfig, header BeaconBlockHeader) ProvableBeaconBlockHeader {
	return ProvableBeaconBlockHeader{
		Header:         header,
		RootsTimestamp: cfg.GenesisTime + Timestamp((uint64(header.Slot)+1)*cfg.SecondsPerSlot),
	}
}

// HistoricalHeaderWitness proves that a historical block header's root is
// contained in the finalized state's
// historicalSummaries[summaryIndex].blockSummaryRoot (spec.md §3, §9).
//
// RootGIndex is populated only when the verifier ABI compiled into the
// contract client declares the field (spec.md §9 open question); that ABI
// always declares it. The contract client packs a nil RootGIndex as 0.
type HistoricalHeaderWitness struct {
	Header     BeaconBlockHeader
	Proof      []Root
	RootGIndex *uint64
}

// ValidatorWitness is the payload submitted to the verifier contract for
// one validator (spec.md §3).
type ValidatorWitness struct {
	ExitRequestIndex           uint32
	WithdrawalCredentials      Root
	EffectiveBalance           uint64
	Slashed                    bool
	ActivationEligibilityEpoch Epoch
	ActivationEpoch            Epoch
	WithdrawableEpoch          Epoch
	ValidatorProof             []Root
	ModuleID                   ModuleID
	NodeOpID                   NodeOpID
	Pubkey                     Pubkey
}

// ExitRequestsData is the contract-level encoding of an ExitRequest's
// packed payload (spec.md §6).
type ExitRequestsData struct {
	Data       []byte
	DataFormat uint64
}
