package common

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Uint64ToBytes converts a uint64 to a byte slice
func Uint64ToBytes(num uint64) []byte {
	const uint64ByteSize = 8

	bytes := make([]byte, uint64ByteSize)
	binary.BigEndian.PutUint64(bytes, num)

	return bytes
}

// BytesToUint64 converts a byte slice to a uint64
func BytesToUint64(bytes []byte) uint64 {
	return binary.BigEndian.Uint64(bytes)
}

// Uint32ToBytes converts a uint32 to a byte slice in big-endian order
func Uint32ToBytes(num uint32) []byte {
	const uint32ByteSize = 4

	key := make([]byte, uint32ByteSize)
	binary.BigEndian.PutUint32(key, num)

	return key
}

// BytesToUint32 converts a byte slice to a uint32
func BytesToUint32(bytes []byte) uint32 {
	return binary.BigEndian.Uint32(bytes)
}

// HashToBig interprets a hash as a 256-bit big-endian unsigned integer
func HashToBig(h common.Hash) *big.Int {
	return new(big.Int).SetBytes(h[:])
}

// Uint64ToHash encodes a uint64 as a 32-byte big-endian hash
func Uint64ToHash(num uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(num))
}
