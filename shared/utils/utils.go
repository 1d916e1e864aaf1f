package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	accountNumberBase  = 1_000_000_000
	accountNumberRange = 900_000_000
)

var mobileNumberPattern = regexp.MustCompile(`^$|^[0-9]{10}$`)

// GenerateAccountNumber returns a pseudo-random 10-digit account number in
// [1000000000, 1900000000). Uniqueness is not guaranteed.
func GenerateAccountNumber() int64 {
	num, err := rand.Int(rand.Reader, big.NewInt(accountNumberRange))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is unusable.
		panic("failed to read random account number: " + err.Error())
	}
	return accountNumberBase + num.Int64()
}

// ValidateAccountNumber reports whether n is in the range handed out by GenerateAccountNumber.
func ValidateAccountNumber(n int64) bool {
	return n >= accountNumberBase && n < accountNumberBase+accountNumberRange
}

// ValidateMobileNumber accepts the empty string or exactly ten digits.
func ValidateMobileNumber(mobileNumber string) bool {
	return mobileNumberPattern.MatchString(mobileNumber)
}
