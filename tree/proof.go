package tree

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/optimistiq/go-rolluptree/hasher"
)

// ComputeRoot folds a leaf up the tree. At each level the corresponding bit
// of index decides whether the running node is a left child (bit 0, sibling
// to the right) or a right child (bit 1, sibling to the left). The number of
// levels hashed equals len(siblings).
func ComputeRoot(h hasher.Hasher, leaf common.Hash, index uint64, siblings []common.Hash) common.Hash {
	node := leaf
	path := index
	for _, sibling := range siblings {
		if path&1 == 0 {
			node = h.Parent(node, sibling)
		} else {
			node = h.Parent(sibling, node)
		}
		path >>= 1
	}
	return node
}

// VerifyProof reports whether leaf at index hashes up to root through siblings
func VerifyProof(h hasher.Hasher, root, leaf common.Hash, index uint64, siblings []common.Hash) bool {
	return ComputeRoot(h, leaf, index, siblings) == root
}

// VerifyStartingLeaf checks that index is the next empty slot under root and
// that siblings is its frontier. Every level where the index bit is 0 must
// hold the pre-hashed zero of that level (an empty right sibling), every
// level where the bit is 1 must hold a node other than that level's
// pre-hashed zero (a populated left sibling), and the empty leaf must hash up
// to root through the vector.
func VerifyStartingLeaf(h hasher.Hasher, root common.Hash, index uint64, siblings []common.Hash) error {
	depth := hasher.Depth(h)
	if len(siblings) != int(depth) {
		return fmt.Errorf("%w: expected %d, got %d", ErrSiblingsLength, depth, len(siblings))
	}
	zeroes := h.PreHashedZeroes()
	path := index
	for level := 0; level < int(depth); level++ {
		if path&1 == 0 {
			if siblings[level] != zeroes[level] {
				return fmt.Errorf(
					"%w: right sibling at level %d should be empty", ErrInvalidStartingProof, level,
				)
			}
		} else if siblings[level] == zeroes[level] {
			return fmt.Errorf(
				"%w: left sibling at level %d should not be empty", ErrInvalidStartingProof, level,
			)
		}
		path >>= 1
	}
	if !VerifyProof(h, root, zeroes[0], index, siblings) {
		return fmt.Errorf("%w: siblings do not roll up to the root", ErrInvalidStartingProof)
	}
	return nil
}

// VerifyStartingSubTreeLeaf is the sub-tree flavour of VerifyStartingLeaf.
// The index must be aligned to the sub-tree size, the vector covers levels
// subTreeDepth..depth-1 and the empty node hashed up is the empty sub-tree
// root. The vector length must be exactly depth-subTreeDepth.
func VerifyStartingSubTreeLeaf(
	h hasher.Hasher, root common.Hash, index uint64, subTreeDepth uint8, siblings []common.Hash,
) error {
	depth := hasher.Depth(h)
	if subTreeDepth > depth {
		return fmt.Errorf("sub-tree depth %d exceeds tree depth %d", subTreeDepth, depth)
	}
	if index%(uint64(1)<<subTreeDepth) != 0 {
		return fmt.Errorf("%w: index %d, sub-tree size %d", ErrUnalignedIndex, index, uint64(1)<<subTreeDepth)
	}
	levels := int(depth - subTreeDepth)
	if len(siblings) != levels {
		return fmt.Errorf("%w: expected %d, got %d", ErrSiblingsLength, levels, len(siblings))
	}
	zeroes := h.PreHashedZeroes()
	subTreePath := index >> subTreeDepth
	path := subTreePath
	for level := 0; level < levels; level++ {
		if path&1 == 0 {
			if siblings[level] != zeroes[level+int(subTreeDepth)] {
				return fmt.Errorf(
					"%w: right sibling at level %d should be empty", ErrInvalidStartingProof, level,
				)
			}
		} else if siblings[level] == zeroes[level+int(subTreeDepth)] {
			return fmt.Errorf(
				"%w: left sibling at level %d should not be empty", ErrInvalidStartingProof, level,
			)
		}
		path >>= 1
	}
	if !VerifyProof(h, root, zeroes[subTreeDepth], subTreePath, siblings) {
		return fmt.Errorf("%w: siblings do not roll up to the root", ErrInvalidStartingProof)
	}
	return nil
}
