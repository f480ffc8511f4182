// Package merkletree implements the generalized-index binary Merkle tree
// conventions spec.md §4.2 describes: root = gindex 1, left child = 2*g,
// right child = 2*g+1, and a leaf's witness count is floor(log2(gindex)).
package merkletree

import "math/bits"

// Depth returns floor(log2(gindex)), i.e. the number of sibling witnesses
// needed to prove a leaf at this gindex (spec.md §4.2, §8 invariant 3).
func Depth(gindex uint64) int {
	if gindex == 0 {
		return 0
	}
	return bits.Len64(gindex) - 1
}

// IsValidLeaf reports whether gindex's most-significant bit marks it as a
// leaf candidate (spec.md §4.2): any gindex >= 1 qualifies structurally,
// the check exists to reject 0.
func IsValidLeaf(gindex uint64) bool {
	return gindex >= 1
}

// Parent returns the gindex of g's parent; g must not be the root (1).
func Parent(g uint64) uint64 { return g / 2 }

// IsRightChild reports whether g is the right child of its parent — the
// gindex bit-parity that decides sibling concatenation order (spec.md §4.2
// local verification).
func IsRightChild(g uint64) bool { return g%2 == 1 }

// Concat combines an outer gindex (the field's position inside a container)
// with an inner gindex (the position inside that field's own subtree) into
// one absolute gindex, per spec.md §4.2's historical-state-proof step
// ("concatenates the two sub-gindices into one absolute gindex"). innerDepth
// is Depth(inner).
func Concat(outer, inner uint64) uint64 {
	d := uint64(Depth(inner))
	return outer<<d | (inner &^ (1 << d))
}
