package tree

import (
	"github.com/ethereum/go-ethereum/common"

	rtcommon "github.com/optimistiq/go-rolluptree/common"
	"github.com/optimistiq/go-rolluptree/hasher"
)

// naiveRoot computes the root of a depth-deep tree holding leaves at its
// leftmost slots, by plain recursion. It is the reference the engine is
// checked against.
func naiveRoot(h hasher.Hasher, depth uint8, leaves []common.Hash) common.Hash {
	zeroes := h.PreHashedZeroes()
	if len(leaves) == 0 {
		return zeroes[depth]
	}
	if depth == 0 {
		return leaves[0]
	}
	half := 1 << (depth - 1)
	left := leaves
	right := []common.Hash{}
	if len(leaves) > half {
		left = leaves[:half]
		right = leaves[half:]
	}
	return h.Parent(naiveRoot(h, depth-1, left), naiveRoot(h, depth-1, right))
}

// naiveSiblings derives the frontier of slot index from the already appended
// leaves: populated left siblings are recomputed as subtree roots, empty
// right siblings come from the zero table
func naiveSiblings(h hasher.Hasher, index uint64, leaves []common.Hash) []common.Hash {
	zeroes := h.PreHashedZeroes()
	depth := hasher.Depth(h)
	siblings := make([]common.Hash, depth)
	for level := uint8(0); level < depth; level++ {
		if (index>>level)&1 == 0 {
			siblings[level] = zeroes[level]
		} else {
			from := (index>>level - 1) << level
			to := (index >> level) << level
			siblings[level] = naiveRoot(h, level, leaves[from:to])
		}
	}
	return siblings
}

// leavesFromSeed expands a seed into n distinct pseudo-random leaves
func leavesFromSeed(seed uint64, n int) []common.Hash {
	leaves := make([]common.Hash, n)
	prev := rtcommon.Uint64ToHash(seed)
	for i := range leaves {
		prev = hasher.KeccakParent(prev, rtcommon.Uint64ToHash(uint64(i)))
		leaves[i] = prev
	}
	return leaves
}
