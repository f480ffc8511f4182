package merkletree

import (
	"crypto/sha256"

	"github.com/exitwatch/prover/internal/domain"
)

// Node is one node of a complete binary Merkle tree. A leaf node has
// Left == Right == nil. Composite nodes cache their hash so Hash is O(1)
// after the first computation, and a tree patched with SetNode recomputes
// only the hashes along the patched path.
type Node struct {
	hash        domain.Root
	hashValid   bool
	Left, Right *Node
}

// LeafNode builds a leaf holding value directly.
func LeafNode(value domain.Root) *Node {
	return &Node{hash: value, hashValid: true}
}

// BranchNode builds a composite node from two children.
func BranchNode(left, right *Node) *Node {
	return &Node{Left: left, Right: right}
}

// Hash returns the node's value, computing and caching it from the
// children on first access.
func (n *Node) Hash() domain.Root {
	if n.hashValid {
		return n.hash
	}
	var left, right domain.Root
	if n.Left != nil {
		left = n.Left.Hash()
	}
	if n.Right != nil {
		right = n.Right.Hash()
	}
	h := sha256.New()
	h.Write(left[:])
	h.Write(right[:])
	var out domain.Root
	copy(out[:], h.Sum(nil))
	n.hash = out
	n.hashValid = true
	return out
}

// VectorTree builds a complete binary tree over leaves, padding with
// zero-value leaves up to the next power of two — the standard SSZ
// merkleization of a fixed-size vector of 32-byte chunks.
func VectorTree(leaves []domain.Root) *Node {
	n := len(leaves)
	if n == 0 {
		return LeafNode(domain.Root{})
	}
	size := 1
	for size < n {
		size *= 2
	}
	nodes := make([]*Node, size)
	for i := 0; i < size; i++ {
		if i < n {
			nodes[i] = LeafNode(leaves[i])
		} else {
			nodes[i] = LeafNode(domain.Root{})
		}
	}
	for len(nodes) > 1 {
		next := make([]*Node, len(nodes)/2)
		for i := range next {
			next[i] = BranchNode(nodes[2*i], nodes[2*i+1])
		}
		nodes = next
	}
	return nodes[0]
}

// zeroNodeCache returns zeroNodes[0..depth], where zeroNodes[0] is a leaf of
// 32 zero bytes and zeroNodes[d] is the (shared, immutable) root of an
// all-zero subtree of depth d. Padding deep, mostly-empty vectors (e.g. the
// validator registry's depth-40 data subtree) with this cache avoids
// materializing 2^depth nodes for the parts of the tree that are empty.
func zeroNodeCache(depth int) []*Node {
	nodes := make([]*Node, depth+1)
	nodes[0] = LeafNode(domain.Root{})
	for d := 1; d <= depth; d++ {
		nodes[d] = BranchNode(nodes[d-1], nodes[d-1])
	}
	return nodes
}

// VectorNodeAtDepth builds the Merkle tree of leaves against a fixed depth
// (2^depth capacity), using shared zero subtrees for the unused tail. This
// is VectorTree generalized to a depth that may exceed what len(leaves)
// alone would require, which is what SSZ list/vector data subtrees with a
// large declared limit need (spec.md §4.2, §9).
func VectorNodeAtDepth(leaves []*Node, depth int) *Node {
	zeros := zeroNodeCache(depth)
	if len(leaves) == 0 {
		return zeros[depth]
	}
	layer := leaves
	for level := 0; level < depth; level++ {
		next := make([]*Node, (len(layer)+1)/2)
		for i := range next {
			li, ri := 2*i, 2*i+1
			left, right := zeros[level], zeros[level]
			if li < len(layer) {
				left = layer[li]
			}
			if ri < len(layer) {
				right = layer[ri]
			}
			next[i] = BranchNode(left, right)
		}
		layer = next
	}
	return layer[0]
}

// NodeTree builds a complete binary tree directly over Node leaves, padding
// with zero leaves up to the next power of two — the Node-typed counterpart
// of VectorTree, used to assemble a container whose fields are themselves
// composite subtrees rather than flat 32-byte values.
func NodeTree(leaves []*Node) *Node {
	n := len(leaves)
	if n == 0 {
		return LeafNode(domain.Root{})
	}
	size := 1
	for size < n {
		size *= 2
	}
	nodes := make([]*Node, size)
	for i := 0; i < size; i++ {
		if i < n {
			nodes[i] = leaves[i]
		} else {
			nodes[i] = LeafNode(domain.Root{})
		}
	}
	for len(nodes) > 1 {
		next := make([]*Node, len(nodes)/2)
		for i := range next {
			next[i] = BranchNode(nodes[2*i], nodes[2*i+1])
		}
		nodes = next
	}
	return nodes[0]
}

// Get walks from root down to gindex and returns the node found there.
func Get(root *Node, gindex uint64) (*Node, bool) {
	path := bitsFromRoot(gindex)
	n := root
	for _, right := range path {
		if n == nil {
			return nil, false
		}
		if right {
			n = n.Right
		} else {
			n = n.Left
		}
	}
	if n == nil {
		return nil, false
	}
	return n, true
}

// SetNode returns a new tree, structurally sharing every subtree except the
// path from root to gindex, with the node at gindex replaced by replacement.
// It never mutates root, per spec.md §9 ("original views must remain
// immutable"); only the patched copy is mutable from the caller's
// perspective, and even that is just newly-allocated nodes along one path.
func SetNode(root *Node, gindex uint64, replacement *Node) *Node {
	path := bitsFromRoot(gindex)
	return setAlongPath(root, path, replacement)
}

func setAlongPath(n *Node, path []bool, replacement *Node) *Node {
	if len(path) == 0 {
		return replacement
	}
	if n == nil {
		n = &Node{}
	}
	right := path[0]
	if right {
		newRight := setAlongPath(n.Right, path[1:], replacement)
		return BranchNode(n.Left, newRight)
	}
	newLeft := setAlongPath(n.Left, path[1:], replacement)
	return BranchNode(newLeft, n.Right)
}

// Witnesses collects the sibling hash at every step from root to gindex,
// ordered leaf-to-root (spec.md §4.2/§8 invariant 3: len == Depth(gindex)).
func Witnesses(root *Node, gindex uint64) ([]domain.Root, error) {
	path := bitsFromRoot(gindex)
	var out []domain.Root
	n := root
	// Collect siblings top-down first, then reverse to leaf-to-root order.
	var topDown []domain.Root
	for _, right := range path {
		if n == nil {
			return nil, domain.Newf(domain.KindProofInternalError, "merkletree: nil node while walking gindex %d", gindex)
		}
		if right {
			topDown = append(topDown, siblingHash(n.Left))
			n = n.Right
		} else {
			topDown = append(topDown, siblingHash(n.Right))
			n = n.Left
		}
	}
	out = make([]domain.Root, len(topDown))
	for i, h := range topDown {
		out[len(topDown)-1-i] = h
	}
	return out, nil
}

func siblingHash(n *Node) domain.Root {
	if n == nil {
		return domain.Root{}
	}
	return n.Hash()
}

// bitsFromRoot decomposes gindex into the root-to-leaf path of
// false=left/true=right steps, per the gindex convention 2*g/2*g+1.
func bitsFromRoot(gindex uint64) []bool {
	depth := Depth(gindex)
	path := make([]bool, depth)
	for i := depth - 1; i >= 0; i-- {
		path[i] = gindex&1 == 1
		gindex >>= 1
	}
	return path
}
