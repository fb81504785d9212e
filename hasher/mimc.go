package hasher

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iden3/go-iden3-crypto/constants"
	"github.com/iden3/go-iden3-crypto/mimc7"
)

// MiMC7Parent hashes both children with MiMC7 over bn254, reducing the
// inputs into the field first
func MiMC7Parent(left, right common.Hash) common.Hash {
	l := new(big.Int).Mod(new(big.Int).SetBytes(left[:]), constants.Q)
	r := new(big.Int).Mod(new(big.Int).SetBytes(right[:]), constants.Q)
	parent, err := mimc7.Hash([]*big.Int{l, r}, nil)
	if err != nil {
		// two reduced field elements are always a valid input
		panic(err)
	}
	return common.BigToHash(parent)
}

// NewMiMC7 returns the MiMC7 hasher for the given tree depth
func NewMiMC7(depth uint8) Hasher {
	return New(depth, MiMC7Parent)
}
