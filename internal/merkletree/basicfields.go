package merkletree

import (
	ssz "github.com/ferranbt/fastssz"

	"github.com/exitwatch/prover/internal/domain"
)

// The functions below hash_tree_root the handful of basic-type vector/list
// shapes BeaconState carries outside of Validators and HistoricalSummaries
// (block_roots, balances, randao_mixes, justification_bits, and so on),
// using the same raw ssz.Hasher calls fastssz's generator itself emits for
// these shapes, so internal/beacon's decoder can assemble StateView's
// FieldChunks without per-fork generated bindings.

// HashUint64Vector hashes a fixed-length vector of uint64 (e.g. Slashings):
// no length mix-in, since the vector's length is part of its type.
func HashUint64Vector(vals []uint64) (domain.Root, error) {
	hh := ssz.NewHasher()
	indx := hh.Index()
	for _, v := range vals {
		hh.AppendUint64(v)
	}
	hh.FillUpTo32()
	hh.Merkleize(indx)
	return hashRootOf(hh)
}

// HashUint64List hashes a variable-length list of uint64 (e.g. Balances,
// InactivityScores), mixing in the item count per SSZ list semantics.
func HashUint64List(vals []uint64, limit uint64) (domain.Root, error) {
	hh := ssz.NewHasher()
	indx := hh.Index()
	for _, v := range vals {
		hh.AppendUint64(v)
	}
	hh.FillUpTo32()
	return hashRootWithMixin(hh, indx, uint64(len(vals)), chunkLimit(limit, 4))
}

// HashRootVector hashes a fixed-length vector of 32-byte roots (e.g.
// block_roots, state_roots, randao_mixes).
func HashRootVector(roots []domain.Root) (domain.Root, error) {
	hh := ssz.NewHasher()
	indx := hh.Index()
	for _, r := range roots {
		hh.Append(r[:])
	}
	hh.Merkleize(indx)
	return hashRootOf(hh)
}

// HashRootList hashes a variable-length list of 32-byte roots or container
// roots (e.g. historical_roots, eth1_data_votes with each vote pre-reduced
// to its own hash_tree_root), mixing in the item count.
func HashRootList(roots []domain.Root, limit uint64) (domain.Root, error) {
	hh := ssz.NewHasher()
	indx := hh.Index()
	for _, r := range roots {
		hh.Append(r[:])
	}
	return hashRootWithMixin(hh, indx, uint64(len(roots)), limit)
}

// HashFixedBytes hashes a short fixed-size byte blob that fits in a single
// 32-byte chunk (e.g. a Bitvector4 justification_bits field).
func HashFixedBytes(b []byte) (domain.Root, error) {
	hh := ssz.NewHasher()
	indx := hh.Index()
	hh.PutBytes(b)
	hh.Merkleize(indx)
	return hashRootOf(hh)
}

// HashByteList hashes a variable-length list of single bytes (e.g.
// altair participation-flags vectors), mixing in the item count.
func HashByteList(b []byte, itemLimit uint64) (domain.Root, error) {
	hh := ssz.NewHasher()
	indx := hh.Index()
	hh.PutBytes(b)
	hh.FillUpTo32()
	return hashRootWithMixin(hh, indx, uint64(len(b)), chunkLimit(itemLimit, 32))
}

// chunkLimit converts an item-count limit into a chunk-count limit given
// itemsPerChunk basic-type items per 32-byte chunk.
func chunkLimit(itemLimit, itemsPerChunk uint64) uint64 {
	return (itemLimit + itemsPerChunk - 1) / itemsPerChunk
}

func hashRootOf(hh *ssz.Hasher) (domain.Root, error) {
	root, err := hh.HashRoot()
	if err != nil {
		return domain.Root{}, domain.New(domain.KindProofInternalError, err)
	}
	return domain.Root(root), nil
}

func hashRootWithMixin(hh *ssz.Hasher, indx int, num, limit uint64) (domain.Root, error) {
	hh.MerkleizeWithMixin(indx, num, limit)
	return hashRootOf(hh)
}
