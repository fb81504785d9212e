// Package tree implements the append-only Merkle tree roll-up engine: pure
// functions that advance the root of a fixed-depth, left-filled binary tree
// by appending leaves, given only the current root, the next insertion index
// and the sibling path of the first empty slot.
package tree

import (
	"errors"

	"github.com/optimistiq/go-rolluptree/hasher"
	"github.com/optimistiq/go-rolluptree/tree/types"
)

var (
	// ErrInvalidStartingProof signals that the supplied siblings are not the
	// frontier of the given (root, index) pair
	ErrInvalidStartingProof = errors.New("invalid starting leaf proof")
	// ErrUnalignedIndex signals a sub-tree insertion at an index that is not
	// a multiple of the sub-tree size
	ErrUnalignedIndex = errors.New("index is not aligned to the sub-tree size")
	// ErrTreeFull signals an append past the 2^depth capacity
	ErrTreeFull = errors.New("tree is full")
	// ErrSiblingsLength signals a siblings vector whose length does not match
	// the levels being hashed
	ErrSiblingsLength = errors.New("unexpected siblings length")
	// ErrTooManyLeaves signals more leaves than a sub-tree of the requested
	// depth can hold
	ErrTooManyLeaves = errors.New("too many leaves for the sub-tree depth")
)

// Tree is the public state of an append-only tree
type Tree = types.Checkpoint

// NewTree returns the state of an empty tree: the root of the fully empty
// tree and insertion index 0
func NewTree(h hasher.Hasher) Tree {
	zeroes := h.PreHashedZeroes()
	return Tree{
		Root:  zeroes[len(zeroes)-1],
		Index: 0,
	}
}

// Capacity returns the number of leaves a tree hashed with h can hold
func Capacity(h hasher.Hasher) uint64 {
	return uint64(1) << hasher.Depth(h)
}

// EmptySiblings returns the frontier of an empty tree: the pre-hashed zero
// at every level
func EmptySiblings(h hasher.Hasher) types.Siblings {
	zeroes := h.PreHashedZeroes()
	siblings := make(types.Siblings, hasher.Depth(h))
	copy(siblings, zeroes)
	return siblings
}
