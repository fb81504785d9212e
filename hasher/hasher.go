package hasher

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrZeroTableLength is returned when a pre-hashed zero table does not
	// contain depth+1 entries
	ErrZeroTableLength = errors.New("pre-hashed zero table must have depth+1 entries")
	// ErrZeroTableMismatch is returned when a pre-hashed zero table entry is
	// not the parent of the two entries below it
	ErrZeroTableMismatch = errors.New("pre-hashed zero table entry mismatch")
)

// ParentFunc is a two-to-one hash combining the left and right children into
// their parent node
type ParentFunc func(left, right common.Hash) common.Hash

// Hasher is the hash capability consumed by the roll-up engine: the parent
// function plus the roots of perfectly empty subtrees at every level.
// PreHashedZeroes()[0] is the empty leaf, PreHashedZeroes()[i] the root of an
// empty subtree of depth i. The table has Depth()+1 entries, so its last
// entry is the root of a fully empty tree.
type Hasher interface {
	Parent(left, right common.Hash) common.Hash
	PreHashedZeroes() []common.Hash
}

// Depth returns the tree depth a hasher is built for
func Depth(h Hasher) uint8 {
	return uint8(len(h.PreHashedZeroes()) - 1)
}

// GenerateZeroHashes returns the table of empty subtree roots for the given
// parent function. Position 0 holds the zero leaf, position i+1 the parent of
// two position-i entries, up to and including the empty root at position depth.
func GenerateZeroHashes(depth uint8, parent ParentFunc) []common.Hash {
	zeroHashes := []common.Hash{
		{},
	}
	for i := 1; i <= int(depth); i++ {
		zeroHashes = append(zeroHashes, parent(zeroHashes[i-1], zeroHashes[i-1]))
	}
	return zeroHashes
}

// ValidateZeroTable checks that an externally supplied table has exactly
// depth+1 entries and that every entry is the parent of two copies of the one
// below it
func ValidateZeroTable(table []common.Hash, depth uint8, parent ParentFunc) error {
	if len(table) != int(depth)+1 {
		return fmt.Errorf("%w: expected %d, got %d", ErrZeroTableLength, depth+1, len(table))
	}
	for i := 0; i < int(depth); i++ {
		if parent(table[i], table[i]) != table[i+1] {
			return fmt.Errorf("%w at level %d", ErrZeroTableMismatch, i+1)
		}
	}
	return nil
}

// hasher pairs a parent function with its zero table
type hasher struct {
	parent ParentFunc
	zeroes []common.Hash
}

// New builds a Hasher from a parent function, generating the zero table for
// the given depth
func New(depth uint8, parent ParentFunc) Hasher {
	return &hasher{
		parent: parent,
		zeroes: GenerateZeroHashes(depth, parent),
	}
}

// NewWithTable builds a Hasher from a parent function and an externally
// provided pre-hashed zero table, validating the table first
func NewWithTable(depth uint8, parent ParentFunc, table []common.Hash) (Hasher, error) {
	if err := ValidateZeroTable(table, depth, parent); err != nil {
		return nil, err
	}
	zeroes := make([]common.Hash, len(table))
	copy(zeroes, table)
	return &hasher{parent: parent, zeroes: zeroes}, nil
}

func (h *hasher) Parent(left, right common.Hash) common.Hash {
	return h.parent(left, right)
}

func (h *hasher) PreHashedZeroes() []common.Hash {
	return h.zeroes
}
