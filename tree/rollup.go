package tree

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/optimistiq/go-rolluptree/hasher"
	"github.com/optimistiq/go-rolluptree/tree/types"
)

// Append inserts a single leaf at index and returns the new root, the next
// insertion index and the frontier for it. At every level where the index bit
// is 0 the running node is paired with the empty sibling; where the bit is 1
// it joins the populated left sibling on the right. The returned frontier is
// the starting-leaf proof of index+1: the levels of the trailing run of 1 bits
// in index become empty, the first level with a 0 bit takes the running node,
// and every level above it is carried over unchanged.
func Append(
	h hasher.Hasher, index uint64, leaf common.Hash, siblings []common.Hash,
) (common.Hash, uint64, types.Siblings, error) {
	depth := hasher.Depth(h)
	if index >= Capacity(h) {
		return common.Hash{}, 0, nil, fmt.Errorf("%w: index %d, capacity %d", ErrTreeFull, index, Capacity(h))
	}
	if len(siblings) != int(depth) {
		return common.Hash{}, 0, nil, fmt.Errorf(
			"%w: expected %d, got %d", ErrSiblingsLength, depth, len(siblings),
		)
	}

	zeroes := h.PreHashedZeroes()
	newSiblings := make(types.Siblings, depth)
	copy(newSiblings, siblings)
	node := leaf
	carry := true
	for level := 0; level < int(depth); level++ {
		if (index>>level)&1 == 0 {
			if carry {
				// the node becomes the populated left sibling of index+1
				newSiblings[level] = node
				carry = false
			}
			node = h.Parent(node, zeroes[level])
		} else {
			if carry {
				// index+1 has bit 0 here, so its sibling is empty
				newSiblings[level] = zeroes[level]
			}
			node = h.Parent(siblings[level], node)
		}
	}
	return node, index + 1, newSiblings, nil
}

// AppendLeaves folds Append over leaves, threading the frontier. It does NOT
// verify that siblings is the frontier of any particular root; callers that
// hold an unproven vector must run VerifyStartingLeaf first.
func AppendLeaves(
	h hasher.Hasher, index uint64, leaves []common.Hash, siblings []common.Hash,
) (common.Hash, uint64, types.Siblings, error) {
	if free := Capacity(h) - index; uint64(len(leaves)) > free {
		return common.Hash{}, 0, nil, fmt.Errorf(
			"%w: %d leaves, %d slots left", ErrTreeFull, len(leaves), free,
		)
	}

	var (
		root common.Hash
		err  error
	)
	next := types.Siblings(siblings).Clone()
	for _, leaf := range leaves {
		root, index, next, err = Append(h, index, leaf, next)
		if err != nil {
			return common.Hash{}, 0, nil, err
		}
	}
	if len(leaves) == 0 {
		root = ComputeRoot(h, h.PreHashedZeroes()[0], index, siblings)
	}
	return root, index, next, nil
}

// RollUp verifies the starting-leaf proof for (prevRoot, index, siblings) and
// appends the batch, returning the new root
func RollUp(
	h hasher.Hasher, prevRoot common.Hash, index uint64, leaves []common.Hash, siblings []common.Hash,
) (common.Hash, error) {
	if err := VerifyStartingLeaf(h, prevRoot, index, siblings); err != nil {
		return common.Hash{}, err
	}
	root, _, _, err := AppendLeaves(h, index, leaves, siblings)
	if err != nil {
		return common.Hash{}, err
	}
	return root, nil
}
