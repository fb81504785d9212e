// Package splitrollup implements the accumulator that lets one logical
// roll-up span many transactions. The accumulator tracks the start and
// current checkpoints plus a rolling keccak digest of every appended leaf,
// and can be compared against an optimistic roll-up claim.
package splitrollup

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/optimistiq/go-rolluptree/hasher"
	"github.com/optimistiq/go-rolluptree/tree"
	"github.com/optimistiq/go-rolluptree/tree/types"
)

var (
	// ErrSiblingsNotInitialised is returned by the cached-sibling updates
	// when no frontier has been stored yet
	ErrSiblingsNotInitialised = errors.New("on-chain siblings not initialised")
	// ErrStartMismatch is returned by Verify when the claim starts from a
	// different checkpoint
	ErrStartMismatch = errors.New("start checkpoint mismatch")
	// ErrMergedLeavesMismatch is returned by Verify when the claim binds a
	// different leaf sequence
	ErrMergedLeavesMismatch = errors.New("merged leaves mismatch")
	// ErrResultIndexMismatch is returned by Verify when the claim ends at a
	// different index
	ErrResultIndexMismatch = errors.New("result index mismatch")
)

// OPRU is an optimistic roll-up claim: an off-chain prover asserts that
// applying the leaves bound by MergedLeaves to Start yields Result
type OPRU struct {
	Start        types.Checkpoint
	Result       types.Checkpoint
	MergedLeaves common.Hash
}

// NewOPRU builds a claim from its three components
func NewOPRU(start, result types.Checkpoint, mergedLeaves common.Hash) OPRU {
	return OPRU{
		Start:        start,
		Result:       result,
		MergedLeaves: mergedLeaves,
	}
}

// SplitRollUp accumulates a roll-up across calls. Siblings is only populated
// in the sibling-cached variant, where it holds the current frontier (length
// depth, or depth-subTreeDepth in sub-tree mode).
type SplitRollUp struct {
	Start        types.Checkpoint
	Result       types.Checkpoint
	MergedLeaves common.Hash
	Siblings     types.Siblings
}

// New returns an accumulator initialised at the given checkpoint, storing no
// siblings. Each update must carry its own proven sibling vector.
func New(root common.Hash, index uint64) *SplitRollUp {
	s := &SplitRollUp{}
	s.Init(root, index)
	return s
}

// Init resets the accumulator to a checkpoint: start and result coincide and
// the digest is zero
func (s *SplitRollUp) Init(root common.Hash, index uint64) {
	checkpoint := types.Checkpoint{Root: root, Index: index}
	s.Start = checkpoint
	s.Result = checkpoint
	s.MergedLeaves = common.Hash{}
	s.Siblings = nil
}

// InitWithSiblings initialises the sibling-cached variant: the starting-leaf
// proof is verified once here and the frontier is persisted, so later
// UpdateCached calls skip the proof
func (s *SplitRollUp) InitWithSiblings(
	h hasher.Hasher, root common.Hash, index uint64, siblings []common.Hash,
) error {
	if err := tree.VerifyStartingLeaf(h, root, index, siblings); err != nil {
		return err
	}
	s.Init(root, index)
	s.Siblings = types.Siblings(siblings).Clone()
	return nil
}

// InitWithSubTreeSiblings is the sub-tree flavour of InitWithSiblings: the
// cached frontier covers levels subTreeDepth and above, and later updates
// must use UpdateSubTreeCached with the same sub-tree depth
func (s *SplitRollUp) InitWithSubTreeSiblings(
	h hasher.Hasher, root common.Hash, index uint64, subTreeDepth uint8, siblings []common.Hash,
) error {
	if err := tree.VerifyStartingSubTreeLeaf(h, root, index, subTreeDepth, siblings); err != nil {
		return err
	}
	s.Init(root, index)
	s.Siblings = types.Siblings(siblings).Clone()
	return nil
}

// Update performs one proof-per-update step: the caller supplies the frontier
// of the current result checkpoint, the starting-leaf proof is re-verified,
// and the batch is appended
func (s *SplitRollUp) Update(h hasher.Hasher, siblings []common.Hash, leaves []common.Hash) error {
	if err := tree.VerifyStartingLeaf(h, s.Result.Root, s.Result.Index, siblings); err != nil {
		return err
	}
	root, index, _, err := tree.AppendLeaves(h, s.Result.Index, leaves, siblings)
	if err != nil {
		return err
	}
	s.Result = types.Checkpoint{Root: root, Index: index}
	s.MergedLeaves = Merge(s.MergedLeaves, leaves)
	return nil
}

// UpdateCached appends a batch using the stored frontier and writes the
// advanced frontier back. The cached vector is trusted as-is: it was proven
// by InitWithSiblings and every later write is the engine's own output, so
// re-deriving the starting proof here would only repeat work. Caching pays
// off when hashing is expensive enough that one starting proof per call
// outweighs persisting the frontier between calls.
func (s *SplitRollUp) UpdateCached(h hasher.Hasher, leaves []common.Hash) error {
	if len(s.Siblings) == 0 {
		return ErrSiblingsNotInitialised
	}
	if len(s.Siblings) != int(hasher.Depth(h)) {
		return fmt.Errorf(
			"%w: cached frontier has %d levels, tree has %d",
			tree.ErrSiblingsLength, len(s.Siblings), hasher.Depth(h),
		)
	}
	root, index, siblings, err := tree.AppendLeaves(h, s.Result.Index, leaves, s.Siblings)
	if err != nil {
		return err
	}
	s.Result = types.Checkpoint{Root: root, Index: index}
	s.MergedLeaves = Merge(s.MergedLeaves, leaves)
	s.Siblings = siblings
	return nil
}

// UpdateSubTree is the proof-per-update step at sub-tree granularity. The
// digest folds over sub-tree hashes, so the same leaves appended through
// Update would yield a different MergedLeaves.
func (s *SplitRollUp) UpdateSubTree(
	h hasher.Hasher, subTreeDepth uint8, siblings []common.Hash, leaves []common.Hash,
) error {
	if err := tree.VerifyStartingSubTreeLeaf(h, s.Result.Root, s.Result.Index, subTreeDepth, siblings); err != nil {
		return err
	}
	root, index, _, err := tree.AppendSubTreeLeaves(h, s.Result.Index, subTreeDepth, leaves, siblings)
	if err != nil {
		return err
	}
	s.Result = types.Checkpoint{Root: root, Index: index}
	s.MergedLeaves = MergeSubTrees(s.MergedLeaves, leaves, subTreeDepth)
	return nil
}

// UpdateSubTreeCached appends sub-trees through the stored frontier, which
// must have been initialised with InitWithSubTreeSiblings for the same
// sub-tree depth
func (s *SplitRollUp) UpdateSubTreeCached(h hasher.Hasher, subTreeDepth uint8, leaves []common.Hash) error {
	if len(s.Siblings) == 0 {
		return ErrSiblingsNotInitialised
	}
	if len(s.Siblings) != int(hasher.Depth(h)-subTreeDepth) {
		return fmt.Errorf(
			"%w: cached frontier has %d levels, expected %d",
			tree.ErrSiblingsLength, len(s.Siblings), hasher.Depth(h)-subTreeDepth,
		)
	}
	root, index, siblings, err := tree.AppendSubTreeLeaves(h, s.Result.Index, subTreeDepth, leaves, s.Siblings)
	if err != nil {
		return err
	}
	s.Result = types.Checkpoint{Root: root, Index: index}
	s.MergedLeaves = MergeSubTrees(s.MergedLeaves, leaves, subTreeDepth)
	s.Siblings = siblings
	return nil
}

// Verify compares the accumulator against a claim. Start, MergedLeaves and
// the result index must match exactly; any difference there means the claim
// talks about a different roll-up and is surfaced as a typed error. Only the
// result root equality is the verdict.
func (s *SplitRollUp) Verify(opru OPRU) (bool, error) {
	if s.Start != opru.Start {
		return false, fmt.Errorf(
			"%w: accumulator %v/%d, claim %v/%d",
			ErrStartMismatch, s.Start.Root, s.Start.Index, opru.Start.Root, opru.Start.Index,
		)
	}
	if s.MergedLeaves != opru.MergedLeaves {
		return false, fmt.Errorf(
			"%w: accumulator %v, claim %v", ErrMergedLeavesMismatch, s.MergedLeaves, opru.MergedLeaves,
		)
	}
	if s.Result.Index != opru.Result.Index {
		return false, fmt.Errorf(
			"%w: accumulator %d, claim %d", ErrResultIndexMismatch, s.Result.Index, opru.Result.Index,
		)
	}
	return s.Result.Root == opru.Result.Root, nil
}
