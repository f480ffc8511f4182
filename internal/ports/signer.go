package ports

import "context"

// Signer signs a populated call into a raw, submittable transaction
// (spec.md §4.7 step 4, §6 txSignerPrivateKey). A nil Signer configured on
// the executor means emulation-only deployment (spec.md §7 NoSigner).
type Signer interface {
	Address() [20]byte
	SignTransaction(ctx context.Context, call CallMsg, nonce uint64, maxFeePerGas, maxPriorityFeePerGas uint64, gasLimit uint64, chainID uint64) ([]byte, [32]byte, error)
}

// RootPersister durably stores the single lastProcessedRoot value
// (spec.md §6 "Persisted state").
type RootPersister interface {
	Load(ctx context.Context) (*PersistedRoot, error)
	Save(ctx context.Context, root PersistedRoot) error
}

type PersistedRoot struct {
	Root [32]byte
	Slot uint64
}
