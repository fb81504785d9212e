package db

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	sqlite "github.com/mattn/go-sqlite3"
	"github.com/russross/meddler"

	"github.com/optimistiq/go-rolluptree/tree/types"
)

// init registers tags to be used to read/write from SQL DBs using meddler
func init() {
	meddler.Default = meddler.SQLite
	meddler.Register("bigint", BigIntMeddler{})
	meddler.Register("hash", HashMeddler{})
	meddler.Register("siblings", SiblingsMeddler{})
}

func SQLiteErr(err error) (*sqlite.Error, bool) {
	sqliteErr := &sqlite.Error{}
	if ok := errors.As(err, sqliteErr); ok {
		return sqliteErr, true
	}
	if driverErr, ok := meddler.DriverErr(err); ok {
		return sqliteErr, errors.As(driverErr, sqliteErr)
	}
	return sqliteErr, false
}

// BigIntMeddler encodes or decodes the field value to or from string
type BigIntMeddler struct{}

// PreRead is called before a Scan operation for fields that have the BigIntMeddler
func (b BigIntMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	// give a pointer to a string to grab the raw data
	return new(string), nil
}

// PostRead is called after a Scan operation for fields that have the BigIntMeddler
func (b BigIntMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	ptr, ok := scanTarget.(*string)
	if !ok {
		return errors.New("scanTarget is not *string")
	}
	if ptr == nil {
		return fmt.Errorf("BigIntMeddler.PostRead: nil pointer")
	}
	field, ok := fieldPtr.(**big.Int)
	if !ok {
		return errors.New("fieldPtr is not *big.Int")
	}
	decimal := 10
	*field, ok = new(big.Int).SetString(*ptr, decimal)
	if !ok {
		return fmt.Errorf("big.Int.SetString failed on \"%v\"", *ptr)
	}
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the BigIntMeddler
func (b BigIntMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	field, ok := fieldPtr.(*big.Int)
	if !ok {
		return nil, errors.New("fieldPtr is not *big.Int")
	}

	return field.String(), nil
}

// HashMeddler encodes or decodes the field value to or from string
type HashMeddler struct{}

// PreRead is called before a Scan operation for fields that have the HashMeddler
func (b HashMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	// give a pointer to a string to grab the raw data
	return new(string), nil
}

// PostRead is called after a Scan operation for fields that have the HashMeddler
func (b HashMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	ptr, ok := scanTarget.(*string)
	if !ok {
		return errors.New("scanTarget is not *string")
	}
	if ptr == nil {
		return fmt.Errorf("HashMeddler.PostRead: nil pointer")
	}
	field, ok := fieldPtr.(*common.Hash)
	if !ok {
		return errors.New("fieldPtr is not common.Hash")
	}
	*field = common.HexToHash(*ptr)
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the HashMeddler
func (b HashMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	field, ok := fieldPtr.(common.Hash)
	if !ok {
		return nil, errors.New("fieldPtr is not common.Hash")
	}
	return field.Hex(), nil
}

// SiblingsMeddler encodes or decodes a variable-length sibling vector to or
// from a comma-separated hex string. An empty string round-trips to a nil
// vector (accumulator without cached frontier).
type SiblingsMeddler struct{}

// PreRead is called before a Scan operation for fields that have the SiblingsMeddler
func (b SiblingsMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	// give a pointer to a string to grab the raw data
	return new(string), nil
}

// PostRead is called after a Scan operation for fields that have the SiblingsMeddler
func (b SiblingsMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	ptr, ok := scanTarget.(*string)
	if !ok {
		return errors.New("scanTarget is not *string")
	}
	if ptr == nil {
		return errors.New("SiblingsMeddler.PostRead: nil pointer")
	}
	field, ok := fieldPtr.(*types.Siblings)
	if !ok {
		return errors.New("fieldPtr is not types.Siblings")
	}
	if *ptr == "" {
		*field = nil
		return nil
	}
	strHashes := strings.Split(*ptr, ",")
	siblings := make(types.Siblings, len(strHashes))
	for i, strHash := range strHashes {
		siblings[i] = common.HexToHash(strHash)
	}
	*field = siblings
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the SiblingsMeddler
func (b SiblingsMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	field, ok := fieldPtr.(types.Siblings)
	if !ok {
		return nil, errors.New("fieldPtr is not types.Siblings")
	}
	var s string
	for _, f := range field {
		s += f.Hex() + ","
	}
	s = strings.TrimSuffix(s, ",")
	return s, nil
}
