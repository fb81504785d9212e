package types

import "github.com/ethereum/go-ethereum/common"

const (
	// DefaultDepth is the canonical tree depth; capacity is 2^31 leaves
	DefaultDepth uint8 = 31
)

// Siblings is the bottom-to-top path of co-nodes needed to hash a leaf up to
// the root. For a full tree it has one entry per level; in sub-tree mode it
// has depth-subTreeDepth entries.
type Siblings []common.Hash

// Clone returns an owned copy of the siblings vector
func (s Siblings) Clone() Siblings {
	if s == nil {
		return nil
	}
	c := make(Siblings, len(s))
	copy(c, s)
	return c
}

// Checkpoint is the state of an append-only tree: its root and the number of
// leaves already written. The next append occupies slot Index.
type Checkpoint struct {
	Root  common.Hash `meddler:"root,hash"`
	Index uint64      `meddler:"position"`
}
