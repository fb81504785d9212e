package splitrollup

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/iden3/go-iden3-crypto/keccak256"

	"github.com/optimistiq/go-rolluptree/tree"
)

// The mergedLeaves digest is hard-wired to keccak256 no matter which parent
// function the tree uses. External optimistic roll-up provers compute the
// same digest, so substituting the tree hash here would break compatibility.

// Merge folds leaves into a rolling keccak digest: each step hashes the
// 64-byte concatenation of the running digest and the leaf, both as 32-byte
// big-endian words
func Merge(base common.Hash, leaves []common.Hash) common.Hash {
	merged := base
	for _, leaf := range leaves {
		merged = common.BytesToHash(keccak256.Hash(merged.Bytes(), leaf.Bytes()))
	}
	return merged
}

// SubTreeHash hashes a padded sub-tree as one flat byte run
func SubTreeHash(subTree []common.Hash) common.Hash {
	flat := make([]byte, 0, len(subTree)*common.HashLength)
	for _, leaf := range subTree {
		flat = append(flat, leaf.Bytes()...)
	}
	return common.BytesToHash(keccak256.Hash(flat))
}

// MergeSubTrees folds the digest over sub-tree hashes instead of individual
// leaves. Appending the same leaves as N singles or as sub-trees of depth d
// yields different digests on purpose: the digest binds how the sequence was
// rolled up, not just its content.
func MergeSubTrees(base common.Hash, leaves []common.Hash, subTreeDepth uint8) common.Hash {
	merged := base
	for _, subTree := range tree.SplitToSubTrees(leaves, subTreeDepth) {
		merged = common.BytesToHash(keccak256.Hash(merged.Bytes(), SubTreeHash(subTree).Bytes()))
	}
	return merged
}

// MergeResult returns both digests for one batch: the per-leaf fold and the
// per-sub-tree fold
func MergeResult(base common.Hash, leaves []common.Hash, subTreeDepth uint8) (common.Hash, common.Hash) {
	return Merge(base, leaves), MergeSubTrees(base, leaves, subTreeDepth)
}
