package merkletree

import (
	"crypto/sha256"

	"github.com/exitwatch/prover/internal/domain"
)

// SingleProof is a Merkle witness list for one leaf at one gindex against
// one root (spec.md §4.2, §3 ValidatorProof/HistoricalHeaderWitness.proof).
type SingleProof struct {
	Root      domain.Root
	Gindex    uint64
	Leaf      domain.Root
	Witnesses []domain.Root
}

// Prove builds a SingleProof for gindex against tree and immediately
// verifies it before returning — spec.md §4.2's "local verification is
// mandatory before a proof leaves C2". A verification failure here is
// domain.KindProofInternalError: it indicates a tree-layout bug, not a
// network condition, and is therefore fatal rather than retried.
func Prove(tree *Node, gindex uint64) (SingleProof, error) {
	leafNode, ok := Get(tree, gindex)
	if !ok {
		return SingleProof{}, domain.Newf(domain.KindProofInternalError, "merkletree: gindex %d not found in tree", gindex)
	}
	witnesses, err := Witnesses(tree, gindex)
	if err != nil {
		return SingleProof{}, err
	}
	proof := SingleProof{
		Root:      tree.Hash(),
		Gindex:    gindex,
		Leaf:      leafNode.Hash(),
		Witnesses: witnesses,
	}
	if err := VerifyProof(proof); err != nil {
		return SingleProof{}, err
	}
	return proof, nil
}

// VerifyProof recomputes pair-hashes bottom-up from leaf and witnesses,
// using gindex bit-parity to decide concatenation order, consuming exactly
// Depth(gindex) witnesses, and requires the accumulated value equal Root
// (spec.md §4.2, §8 invariants 2 and 3).
func VerifyProof(p SingleProof) error {
	if !IsValidLeaf(p.Gindex) {
		return domain.Newf(domain.KindProofInternalError, "merkletree: invalid gindex %d", p.Gindex)
	}
	if len(p.Witnesses) != Depth(p.Gindex) {
		return domain.Newf(domain.KindProofInternalError,
			"merkletree: expected %d witnesses for gindex %d, got %d", Depth(p.Gindex), p.Gindex, len(p.Witnesses))
	}

	acc := p.Leaf
	g := p.Gindex
	for i := 0; i < len(p.Witnesses); i++ {
		sibling := p.Witnesses[i]
		var left, right domain.Root
		if IsRightChild(g) {
			left, right = sibling, acc
		} else {
			left, right = acc, sibling
		}
		h := sha256.New()
		h.Write(left[:])
		h.Write(right[:])
		copy(acc[:], h.Sum(nil))
		g = Parent(g)
	}
	if g != 1 {
		return domain.Newf(domain.KindProofInternalError, "merkletree: walk did not terminate at root, got gindex %d", g)
	}
	if acc != p.Root {
		return domain.Newf(domain.KindProofInternalError, "merkletree: recomputed root %x does not match expected root %x", acc, p.Root)
	}
	return nil
}
