package tree

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	rtcommon "github.com/optimistiq/go-rolluptree/common"
	"github.com/optimistiq/go-rolluptree/hasher"
)

func TestComputeRootRoundTrip(t *testing.T) {
	t.Parallel()

	h := hasher.NewKeccak(8)
	leaves := leavesFromSeed(1, 100)
	for _, index := range []uint64{0, 1, 42, 99} {
		siblings := naiveSiblings(h, index, leaves[:index])
		root := ComputeRoot(h, leaves[index], index, siblings)
		require.True(t, VerifyProof(h, root, leaves[index], index, siblings))
		require.False(t, VerifyProof(h, root, leaves[index], index+1, siblings))
		require.False(t, VerifyProof(h, root, rtcommon.Uint64ToHash(123), index, siblings))
	}
}

func TestVerifyStartingLeaf(t *testing.T) {
	t.Parallel()

	h := hasher.NewKeccak(8)
	leaves := leavesFromSeed(2, 37)

	for index := uint64(0); index <= uint64(len(leaves)); index++ {
		root := naiveRoot(h, 8, leaves[:index])
		siblings := naiveSiblings(h, index, leaves[:index])
		require.NoError(t, VerifyStartingLeaf(h, root, index, siblings))
	}
}

func TestVerifyStartingLeafRejectsWrongIndex(t *testing.T) {
	t.Parallel()

	h := hasher.NewKeccak(8)
	leaves := leavesFromSeed(3, 5)
	root := naiveRoot(h, 8, leaves)

	// frontier of index 5 presented as if it were index 4 or 6
	siblings := naiveSiblings(h, 5, leaves)
	require.ErrorIs(t, VerifyStartingLeaf(h, root, 4, siblings), ErrInvalidStartingProof)
	require.ErrorIs(t, VerifyStartingLeaf(h, root, 6, siblings), ErrInvalidStartingProof)
}

func TestVerifyStartingLeafRejectsTamperedSiblings(t *testing.T) {
	t.Parallel()

	h := hasher.NewKeccak(8)
	leaves := leavesFromSeed(4, 6)
	root := naiveRoot(h, 8, leaves)
	siblings := naiveSiblings(h, 6, leaves)

	// an empty level claimed to be populated
	tampered := append([]common.Hash{}, siblings...)
	tampered[0] = rtcommon.Uint64ToHash(1)
	require.ErrorIs(t, VerifyStartingLeaf(h, root, 6, tampered), ErrInvalidStartingProof)

	// a populated level claimed to be empty
	tampered = append([]common.Hash{}, siblings...)
	tampered[1] = h.PreHashedZeroes()[1]
	require.ErrorIs(t, VerifyStartingLeaf(h, root, 6, tampered), ErrInvalidStartingProof)

	// consistent bit pattern but wrong node value
	tampered = append([]common.Hash{}, siblings...)
	tampered[1] = rtcommon.Uint64ToHash(999)
	require.ErrorIs(t, VerifyStartingLeaf(h, root, 6, tampered), ErrInvalidStartingProof)

	// wrong vector length
	require.ErrorIs(t, VerifyStartingLeaf(h, root, 6, siblings[:7]), ErrSiblingsLength)
}

func TestVerifyStartingSubTreeLeaf(t *testing.T) {
	t.Parallel()

	h := hasher.NewKeccak(8)
	zeroes := h.PreHashedZeroes()

	// empty tree, sub-tree depth 2: siblings are Z[2..7]
	siblings := make([]common.Hash, 6)
	copy(siblings, zeroes[2:8])
	require.NoError(t, VerifyStartingSubTreeLeaf(h, zeroes[8], 0, 2, siblings))

	// unaligned index
	require.ErrorIs(t, VerifyStartingSubTreeLeaf(h, zeroes[8], 3, 2, siblings), ErrUnalignedIndex)

	// over-long vector is rejected, not sliced
	require.ErrorIs(
		t, VerifyStartingSubTreeLeaf(h, zeroes[8], 0, 2, append(siblings, zeroes[0])), ErrSiblingsLength,
	)

	// populated tree: append one full sub-tree, frontier moves to index 4
	leaves := leavesFromSeed(5, 4)
	root := naiveRoot(h, 8, leaves)
	newRoot, index, next, err := AppendSubTree(h, 0, 2, leaves, siblings)
	require.NoError(t, err)
	require.Equal(t, root, newRoot)
	require.Equal(t, uint64(4), index)
	require.NoError(t, VerifyStartingSubTreeLeaf(h, root, 4, 2, next))
}
