package hasher

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iden3/go-iden3-crypto/constants"
	"github.com/iden3/go-iden3-crypto/poseidon"
)

// PoseidonParent hashes both children as bn254 field elements. Node values
// are reduced into the field before hashing, so hashes of arbitrary 256-bit
// inputs are total.
func PoseidonParent(left, right common.Hash) common.Hash {
	l := new(big.Int).Mod(new(big.Int).SetBytes(left[:]), constants.Q)
	r := new(big.Int).Mod(new(big.Int).SetBytes(right[:]), constants.Q)
	parent, err := poseidon.Hash([]*big.Int{l, r})
	if err != nil {
		// two reduced field elements are always a valid input
		panic(err)
	}
	return common.BigToHash(parent)
}

// NewPoseidon returns the poseidon hasher for the given tree depth
func NewPoseidon(depth uint8) Hasher {
	return New(depth, PoseidonParent)
}
