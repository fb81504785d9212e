package splitrollup

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/optimistiq/go-rolluptree/hasher"
	"github.com/optimistiq/go-rolluptree/tree"
	"github.com/optimistiq/go-rolluptree/tree/types"
)

const testDepth uint8 = 8

func newTestTree(t *testing.T) (hasher.Hasher, tree.Tree) {
	t.Helper()
	h := hasher.NewKeccak(testDepth)
	return h, tree.NewTree(h)
}

func TestSplitRollUpMatchesSingleShot(t *testing.T) {
	t.Parallel()

	h, tr := newTestTree(t)
	first := someLeaves(2)
	second := someLeaves(4)[2:]
	all := append(append([]common.Hash{}, first...), second...)

	split := New(tr.Root, tr.Index)
	require.NoError(t, split.Update(h, tree.EmptySiblings(h), first))

	// the second call needs the frontier of the intermediate state
	_, _, siblings, err := tree.AppendLeaves(h, 0, first, tree.EmptySiblings(h))
	require.NoError(t, err)
	require.NoError(t, split.Update(h, siblings, second))

	singleShot, err := tree.RollUp(h, tr.Root, tr.Index, all, tree.EmptySiblings(h))
	require.NoError(t, err)
	require.Equal(t, singleShot, split.Result.Root)
	require.Equal(t, uint64(len(all)), split.Result.Index)
	require.Equal(t, Merge(common.Hash{}, all), split.MergedLeaves)
}

func TestSplitRollUpCachedMatchesProofPerUpdate(t *testing.T) {
	t.Parallel()

	h, tr := newTestTree(t)
	first := someLeaves(3)
	second := someLeaves(5)[3:]

	cached := &SplitRollUp{}
	require.NoError(t, cached.InitWithSiblings(h, tr.Root, tr.Index, tree.EmptySiblings(h)))
	require.NoError(t, cached.UpdateCached(h, first))
	require.NoError(t, cached.UpdateCached(h, second))

	proven := New(tr.Root, tr.Index)
	require.NoError(t, proven.Update(h, tree.EmptySiblings(h), append(append([]common.Hash{}, first...), second...)))

	require.Equal(t, proven.Result, cached.Result)
	require.Equal(t, proven.MergedLeaves, cached.MergedLeaves)

	// the written-back frontier is the current result's starting proof
	require.NoError(t, tree.VerifyStartingLeaf(h, cached.Result.Root, cached.Result.Index, cached.Siblings))
}

func TestUpdateCachedRequiresInit(t *testing.T) {
	t.Parallel()

	h, tr := newTestTree(t)
	split := New(tr.Root, tr.Index)
	require.ErrorIs(t, split.UpdateCached(h, someLeaves(1)), ErrSiblingsNotInitialised)
	require.ErrorIs(t, split.UpdateSubTreeCached(h, 2, someLeaves(1)), ErrSiblingsNotInitialised)
}

func TestUpdateDoesNotAdvanceOnInvalidProof(t *testing.T) {
	t.Parallel()

	h, tr := newTestTree(t)
	split := New(tr.Root, tr.Index)
	require.NoError(t, split.Update(h, tree.EmptySiblings(h), someLeaves(2)))
	before := *split

	// stale frontier: belongs to index 0, not to the current result
	err := split.Update(h, tree.EmptySiblings(h), someLeaves(1))
	require.ErrorIs(t, err, tree.ErrInvalidStartingProof)
	require.Equal(t, before.Result, split.Result)
	require.Equal(t, before.MergedLeaves, split.MergedLeaves)
}

func TestSplitRollUpSubTree(t *testing.T) {
	t.Parallel()

	h, tr := newTestTree(t)
	const subTreeDepth uint8 = 2
	leaves := someLeaves(6)

	siblings := make(types.Siblings, testDepth-subTreeDepth)
	copy(siblings, h.PreHashedZeroes()[subTreeDepth:])

	split := New(tr.Root, tr.Index)
	require.NoError(t, split.UpdateSubTree(h, subTreeDepth, siblings, leaves))

	// 6 leaves round up to two sub-trees of 4
	require.Equal(t, uint64(8), split.Result.Index)
	expected, err := tree.RollUpSubTree(h, tr.Root, tr.Index, subTreeDepth, leaves, siblings)
	require.NoError(t, err)
	require.Equal(t, expected, split.Result.Root)
	require.Equal(t, MergeSubTrees(common.Hash{}, leaves, subTreeDepth), split.MergedLeaves)

	// cached flavour reaches the same state
	cached := &SplitRollUp{}
	require.NoError(t, cached.InitWithSubTreeSiblings(h, tr.Root, tr.Index, subTreeDepth, siblings))
	require.NoError(t, cached.UpdateSubTreeCached(h, subTreeDepth, leaves[:4]))
	require.NoError(t, cached.UpdateSubTreeCached(h, subTreeDepth, leaves[4:]))
	require.Equal(t, split.Result, cached.Result)
	require.Equal(t, split.MergedLeaves, cached.MergedLeaves)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	h, tr := newTestTree(t)
	leaves := someLeaves(4)

	split := New(tr.Root, tr.Index)
	require.NoError(t, split.Update(h, tree.EmptySiblings(h), leaves))

	// a claim built from the same inputs verifies
	opru := NewOPRU(split.Start, split.Result, split.MergedLeaves)
	ok, err := split.Verify(opru)
	require.NoError(t, err)
	require.True(t, ok)

	// wrong result root is the boolean outcome, not an error
	bad := opru
	bad.Result.Root = common.Hash{}
	ok, err = split.Verify(bad)
	require.NoError(t, err)
	require.False(t, ok)

	// everything else is a typed error
	bad = opru
	bad.Start.Index = 7
	_, err = split.Verify(bad)
	require.ErrorIs(t, err, ErrStartMismatch)

	bad = opru
	bad.MergedLeaves = common.Hash{}
	_, err = split.Verify(bad)
	require.ErrorIs(t, err, ErrMergedLeavesMismatch)

	bad = opru
	bad.Result.Index++
	_, err = split.Verify(bad)
	require.ErrorIs(t, err, ErrResultIndexMismatch)
}

func TestVerifyRejectsWrongResultIndexBeforeRoot(t *testing.T) {
	t.Parallel()

	h, tr := newTestTree(t)
	split := New(tr.Root, tr.Index)
	require.NoError(t, split.Update(h, tree.EmptySiblings(h), someLeaves(2)))

	// same root, different index: still an index mismatch
	bad := NewOPRU(split.Start, types.Checkpoint{Root: split.Result.Root, Index: 3}, split.MergedLeaves)
	_, err := split.Verify(bad)
	require.ErrorIs(t, err, ErrResultIndexMismatch)
}
