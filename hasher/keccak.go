package hasher

import (
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// KeccakParent hashes the 64-byte concatenation of both children with
// legacy keccak256
func KeccakParent(left, right common.Hash) common.Hash {
	var parent common.Hash
	h := sha3.NewLegacyKeccak256()
	h.Write(left[:])
	h.Write(right[:])
	copy(parent[:], h.Sum(nil))
	return parent
}

// NewKeccak returns the keccak256 hasher for the given tree depth
func NewKeccak(depth uint8) Hasher {
	return New(depth, KeccakParent)
}
