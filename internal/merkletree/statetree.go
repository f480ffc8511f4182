package merkletree

import (
	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/ports"
)

// StateView is the typed, decoded form of a beacon state that the Merkle
// proof builder consumes (spec.md §4.2's "stateView" parameter). It is
// produced by internal/beacon from the raw SSZ bytes ConsensusClient
// returns: Validators and HistoricalSummaries are fully decoded because the
// proof builder needs to walk into them, while every other top-level field
// only needs to contribute its own hash_tree_root to the container tree.
type StateView struct {
	Fork                ports.ForkName
	StateRoot           domain.Root
	Validators          []domain.ValidatorState
	HistoricalSummaries []domain.HistoricalSummary

	// BlockRoots is the decoded block_roots vector. It is carried alongside
	// FieldChunks (which only has this vector's own hash_tree_root) because
	// buildHistoricalStateProof needs to materialize a summary state's
	// block_roots subtree, not just its hash (spec.md §4.2).
	BlockRoots []domain.Root

	// FieldChunks holds hash_tree_root (or, for basic-type fields, the
	// packed-and-padded value) for every BeaconState field except
	// Validators and HistoricalSummaries, keyed by field index within the
	// fork's container layout (internal/merkletree/schema.go).
	FieldChunks map[int]domain.Root
}

// lengthChunk is the SSZ length mix-in: the list length as a little-endian
// uint64 right-padded to 32 bytes.
func lengthChunk(n int) domain.Root {
	var r domain.Root
	v := uint64(n)
	for i := 0; i < 8; i++ {
		r[i] = byte(v)
		v >>= 8
	}
	return r
}

// buildTree assembles the full container Node tree for sv: every field
// leaf is its own hash_tree_root except Validators and HistoricalSummaries,
// which are materialized as BranchNode(dataSubtree, lengthLeaf) so the
// proof builder can walk further down into them.
func (sv StateView) buildTree() (*Node, error) {
	schema, ok := schemas[sv.Fork]
	if !ok {
		return nil, unsupportedForkErr(sv.Fork)
	}

	validatorLeaves := make([]*Node, len(sv.Validators))
	for i, v := range sv.Validators {
		root, err := ValidatorHashTreeRoot(v)
		if err != nil {
			return nil, err
		}
		validatorLeaves[i] = LeafNode(root)
	}
	validatorsDataNode := VectorNodeAtDepth(validatorLeaves, ValidatorRegistryDepth)
	validatorsFieldNode := BranchNode(validatorsDataNode, LeafNode(lengthChunk(len(sv.Validators))))

	summaryLeaves := make([]*Node, len(sv.HistoricalSummaries))
	for i, s := range sv.HistoricalSummaries {
		summaryLeaves[i] = BranchNode(LeafNode(s.BlockSummaryRoot), LeafNode(s.StateSummaryRoot))
	}
	summariesDataNode := VectorNodeAtDepth(summaryLeaves, HistoricalSummariesDepth)
	summariesFieldNode := BranchNode(summariesDataNode, LeafNode(lengthChunk(len(sv.HistoricalSummaries))))

	fields := make([]*Node, schema.fieldCount)
	for j := 0; j < schema.fieldCount; j++ {
		switch j {
		case schema.validatorsFieldIndex:
			fields[j] = validatorsFieldNode
		case schema.historicalSummariesIndex:
			fields[j] = summariesFieldNode
		default:
			chunk, ok := sv.FieldChunks[j]
			if !ok {
				return nil, domain.Newf(domain.KindStateDeserialization, "merkletree: missing field chunk %d for fork %s", j, sv.Fork)
			}
			fields[j] = LeafNode(chunk)
		}
	}

	tree := NodeTree(fields)
	if sv.StateRoot != (domain.Root{}) && tree.Hash() != sv.StateRoot {
		return nil, domain.Newf(domain.KindProofInternalError,
			"merkletree: assembled state tree root %x does not match expected state root %x", tree.Hash(), sv.StateRoot)
	}
	return tree, nil
}

// BuildValidatorProof computes the gindex of validators[validatorIndex]
// inside stateView's SSZ tree and returns the witnessed SingleProof
// (spec.md §4.2).
func BuildValidatorProof(stateView StateView, validatorIndex domain.ValidatorIndex) (SingleProof, error) {
	if int(validatorIndex) >= len(stateView.Validators) {
		return SingleProof{}, domain.Newf(domain.KindProofInternalError,
			"merkletree: validator index %d out of range (have %d)", validatorIndex, len(stateView.Validators))
	}
	tree, err := stateView.buildTree()
	if err != nil {
		return SingleProof{}, err
	}
	gindex, err := validatorLeafGindex(stateView.Fork, validatorIndex)
	if err != nil {
		return SingleProof{}, err
	}
	return Prove(tree, gindex)
}

func validatorLeafGindex(fork ports.ForkName, validatorIndex domain.ValidatorIndex) (uint64, error) {
	fieldGindex, err := ValidatorsFieldGindex(fork)
	if err != nil {
		return 0, err
	}
	dataRootGindex := 2 * fieldGindex
	localLeaf := (uint64(1) << ValidatorRegistryDepth) + uint64(validatorIndex)
	return Concat(dataRootGindex, localLeaf), nil
}

func historicalSummaryBlockRootGindex(fork ports.ForkName, summaryIndex uint64) (uint64, error) {
	fieldGindex, err := HistoricalSummariesFieldGindex(fork)
	if err != nil {
		return 0, err
	}
	dataRootGindex := 2 * fieldGindex
	localSummaryContainer := (uint64(1) << HistoricalSummariesDepth) + summaryIndex
	summaryContainerGindex := Concat(dataRootGindex, localSummaryContainer)
	return summaryContainerGindex * 2, nil // field 0 (block_summary_root) of a 2-field container
}

// BlockRootsVectorDepth is the depth of the (8192-slot) block_roots vector
// materialized inside a summary state, i.e. ceil(log2(SLOTS_PER_HISTORICAL_ROOT)).
// spec.md's SLOTS_PER_HISTORICAL_ROOT is a BeaconConfig field; callers pass
// its depth explicitly because it can in principle vary by network preset.
func BlockRootsVectorDepth(slotsPerHistoricalRoot uint64) int {
	depth := 0
	for (uint64(1) << depth) < slotsPerHistoricalRoot {
		depth++
	}
	return depth
}

// BuildHistoricalStateProof proves that
// summaryStateView.blockRoots[rootIndexInSummary] is contained within
// finalizedStateView.historicalSummaries[summaryIndex].blockSummaryRoot
// (spec.md §4.2, §9). The finalized state's tree stores that entry's
// block_summary_root as an opaque 32-byte chunk; this function patches a
// working copy of the finalized tree by replacing the node at that chunk's
// gindex with the real, materialized block_roots subtree from the summary
// state, then proves the concatenated absolute gindex over the patched
// tree. The two input views are never mutated.
func BuildHistoricalStateProof(
	finalizedStateView StateView,
	summaryBlockRoots []domain.Root,
	summaryIndex uint64,
	rootIndexInSummary uint64,
	blockRootsDepth int,
) (SingleProof, error) {
	finalizedTree, err := finalizedStateView.buildTree()
	if err != nil {
		return SingleProof{}, err
	}

	blockSummaryGindex, err := historicalSummaryBlockRootGindex(finalizedStateView.Fork, summaryIndex)
	if err != nil {
		return SingleProof{}, err
	}

	blockRootsLeaves := make([]*Node, len(summaryBlockRoots))
	for i, r := range summaryBlockRoots {
		blockRootsLeaves[i] = LeafNode(r)
	}
	blockRootsNode := VectorNodeAtDepth(blockRootsLeaves, blockRootsDepth)

	existing, ok := Get(finalizedTree, blockSummaryGindex)
	if !ok {
		return SingleProof{}, domain.Newf(domain.KindProofInternalError, "merkletree: historical summary %d not found in finalized tree", summaryIndex)
	}
	if existing.Hash() != blockRootsNode.Hash() {
		return SingleProof{}, domain.Newf(domain.KindStateDeserialization,
			"merkletree: summary state block_roots root %x does not match finalized historicalSummaries[%d].blockSummaryRoot %x",
			blockRootsNode.Hash(), summaryIndex, existing.Hash())
	}

	patched := SetNode(finalizedTree, blockSummaryGindex, blockRootsNode)

	localLeaf := (uint64(1) << uint64(blockRootsDepth)) + rootIndexInSummary
	absoluteGindex := Concat(blockSummaryGindex, localLeaf)

	return Prove(patched, absoluteGindex)
}
