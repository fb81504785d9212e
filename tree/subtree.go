package tree

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/optimistiq/go-rolluptree/hasher"
	"github.com/optimistiq/go-rolluptree/tree/types"
)

// sub-trees at least this deep compute their two halves concurrently
const parallelSubTreeDepth = 10

// SplitToSubTrees groups leaves into chunks of the sub-tree size, left to
// right. The final chunk is right-padded with the zero leaf.
func SplitToSubTrees(leaves []common.Hash, subTreeDepth uint8) [][]common.Hash {
	subTreeSize := int(uint64(1) << subTreeDepth)
	numSubTrees := (len(leaves) + subTreeSize - 1) / subTreeSize
	subTrees := make([][]common.Hash, 0, numSubTrees)
	for i := 0; i < numSubTrees; i++ {
		subTree := make([]common.Hash, subTreeSize)
		copy(subTree, leaves[i*subTreeSize:min((i+1)*subTreeSize, len(leaves))])
		subTrees = append(subTrees, subTree)
	}
	return subTrees
}

// SubTreeRoot computes the depth-subTreeDepth Merkle root of leaves, which
// may be shorter than the sub-tree size. Entirely empty subtrees resolve to
// the pre-hashed zero of their level without calling the parent function.
func SubTreeRoot(h hasher.Hasher, subTreeDepth uint8, leaves []common.Hash) (common.Hash, error) {
	treeSize := uint64(1) << subTreeDepth
	if uint64(len(leaves)) > treeSize {
		return common.Hash{}, fmt.Errorf(
			"%w: %d leaves, sub-tree size %d", ErrTooManyLeaves, len(leaves), treeSize,
		)
	}
	zeroes := h.PreHashedZeroes()
	if len(leaves) == 0 {
		return zeroes[subTreeDepth], nil
	}
	if subTreeDepth >= parallelSubTreeDepth {
		return subTreeRootParallel(h, subTreeDepth, leaves)
	}
	return subTreeRootSeq(h, subTreeDepth, leaves), nil
}

// subTreeRootSeq sweeps a heap-ordered node buffer bottom-up. Nodes are
// numbered 1..2*treeSize-1 with the leaves occupying the upper half; the
// threshold of the last live node is shifted right one level at a time, and
// any parent above it is an entirely empty subtree resolved from the zero
// table. len(leaves) must be in [1, treeSize].
func subTreeRootSeq(h hasher.Hasher, subTreeDepth uint8, leaves []common.Hash) common.Hash {
	zeroes := h.PreHashedZeroes()
	treeSize := uint64(1) << subTreeDepth
	nodes := make([]common.Hash, treeSize<<1)
	copy(nodes[treeSize:], leaves)
	for i := treeSize + uint64(len(leaves)); i < treeSize<<1; i++ {
		nodes[i] = zeroes[0]
	}

	lastLive := treeSize + uint64(len(leaves)) - 1
	rowSize := treeSize
	for level := 0; level < int(subTreeDepth); level++ {
		rowSize >>= 1
		lastLive >>= 1
		for i := rowSize; i < rowSize<<1; i++ {
			if i > lastLive {
				nodes[i] = zeroes[level+1]
			} else {
				nodes[i] = h.Parent(nodes[2*i], nodes[2*i+1])
			}
		}
	}
	return nodes[1]
}

// subTreeRootParallel computes the two halves of the sub-tree concurrently.
// The right half is only scheduled when it holds any leaf; otherwise it is
// the empty subtree root, as in the sequential sweep.
func subTreeRootParallel(h hasher.Hasher, subTreeDepth uint8, leaves []common.Hash) (common.Hash, error) {
	zeroes := h.PreHashedZeroes()
	halfSize := uint64(1) << (subTreeDepth - 1)

	var left, right common.Hash
	right = zeroes[subTreeDepth-1]

	g := errgroup.Group{}
	g.Go(func() error {
		left = subTreeRootSeq(h, subTreeDepth-1, leaves[:min(uint64(len(leaves)), halfSize)])
		return nil
	})
	if uint64(len(leaves)) > halfSize {
		g.Go(func() error {
			right = subTreeRootSeq(h, subTreeDepth-1, leaves[halfSize:])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return common.Hash{}, err
	}
	return h.Parent(left, right), nil
}

// AppendSubTree splices a full sub-tree at an aligned index. It runs the
// single-leaf walk starting from the sub-tree root, over levels
// subTreeDepth..depth-1, and advances the index by the sub-tree size.
func AppendSubTree(
	h hasher.Hasher, index uint64, subTreeDepth uint8, subTreeLeaves []common.Hash, siblings []common.Hash,
) (common.Hash, uint64, types.Siblings, error) {
	depth := hasher.Depth(h)
	subTreeSize := uint64(1) << subTreeDepth
	if index%subTreeSize != 0 {
		return common.Hash{}, 0, nil, fmt.Errorf(
			"%w: index %d, sub-tree size %d", ErrUnalignedIndex, index, subTreeSize,
		)
	}
	if index >= Capacity(h) {
		return common.Hash{}, 0, nil, fmt.Errorf(
			"%w: index %d, capacity %d", ErrTreeFull, index, Capacity(h),
		)
	}
	levels := int(depth - subTreeDepth)
	if len(siblings) != levels {
		return common.Hash{}, 0, nil, fmt.Errorf(
			"%w: expected %d, got %d", ErrSiblingsLength, levels, len(siblings),
		)
	}

	node, err := SubTreeRoot(h, subTreeDepth, subTreeLeaves)
	if err != nil {
		return common.Hash{}, 0, nil, err
	}

	zeroes := h.PreHashedZeroes()
	subTreePath := index >> subTreeDepth
	newSiblings := make(types.Siblings, levels)
	copy(newSiblings, siblings)
	carry := true
	for level := 0; level < levels; level++ {
		if (subTreePath>>level)&1 == 0 {
			if carry {
				newSiblings[level] = node
				carry = false
			}
			node = h.Parent(node, zeroes[level+int(subTreeDepth)])
		} else {
			if carry {
				newSiblings[level] = zeroes[level+int(subTreeDepth)]
			}
			node = h.Parent(siblings[level], node)
		}
	}
	return node, index + subTreeSize, newSiblings, nil
}

// AppendSubTreeLeaves splits leaves into sub-trees and folds AppendSubTree
// over them, threading the frontier. Like AppendLeaves it trusts the supplied
// siblings; run VerifyStartingSubTreeLeaf first for unproven vectors. The
// returned index is rounded up to the next sub-tree boundary.
func AppendSubTreeLeaves(
	h hasher.Hasher, index uint64, subTreeDepth uint8, leaves []common.Hash, siblings []common.Hash,
) (common.Hash, uint64, types.Siblings, error) {
	subTrees := SplitToSubTrees(leaves, subTreeDepth)
	if free := Capacity(h) - index; uint64(len(subTrees))<<subTreeDepth > free {
		return common.Hash{}, 0, nil, fmt.Errorf(
			"%w: %d sub-trees of %d leaves, %d slots left",
			ErrTreeFull, len(subTrees), uint64(1)<<subTreeDepth, free,
		)
	}

	var (
		root common.Hash
		err  error
	)
	next := types.Siblings(siblings).Clone()
	for _, subTree := range subTrees {
		root, index, next, err = AppendSubTree(h, index, subTreeDepth, subTree, next)
		if err != nil {
			return common.Hash{}, 0, nil, err
		}
	}
	if len(subTrees) == 0 {
		root = ComputeRoot(h, h.PreHashedZeroes()[subTreeDepth], index>>subTreeDepth, siblings)
	}
	return root, index, next, nil
}

// RollUpSubTree verifies the empty-sub-tree starting proof and appends the
// batch sub-tree by sub-tree, returning the new root
func RollUpSubTree(
	h hasher.Hasher, prevRoot common.Hash, index uint64, subTreeDepth uint8,
	leaves []common.Hash, siblings []common.Hash,
) (common.Hash, error) {
	if err := VerifyStartingSubTreeLeaf(h, prevRoot, index, subTreeDepth, siblings); err != nil {
		return common.Hash{}, err
	}
	root, _, _, err := AppendSubTreeLeaves(h, index, subTreeDepth, leaves, siblings)
	if err != nil {
		return common.Hash{}, err
	}
	return root, nil
}
