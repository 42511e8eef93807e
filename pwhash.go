// Copyright (c) 2022 Shivaram Lingamneni <slingamn@cs.stanford.edu>
// released under the MIT license

// Package pwhash verifies the legacy password hashes produced by phpBB3's
// `phpbb_check_hash` scheme: salted, iterated MD5 in the 34-byte `$H$...`
// format (phpass emits the identical `$P$...` variant). It verifies only;
// minting new hashes in this format is deliberately unsupported.
package pwhash

import (
	"crypto/md5"
	"crypto/subtle"
	"errors"
)

var (
	// ErrInvalidFormat means the stored hash is the wrong length or does not
	// begin with a recognized prefix.
	ErrInvalidFormat = errors.New("malformed phpBB3 password hash")
	// ErrInvalidCharacter means a byte outside the itoa64 alphabet appears in
	// the iteration-count, salt, or digest field of the stored hash.
	ErrInvalidCharacter = errors.New("invalid itoa64 character in password hash")
	// ErrInvalidRounds means the iteration-count character maps outside the
	// supported range of exponents.
	ErrInvalidRounds = errors.New("iteration count out of range")
	// ErrPasswordTooLong means the candidate password exceeds MaxPasswordLength.
	ErrPasswordTooLong = errors.New("password too long")
)

// MaxPasswordLength is the longest candidate password CheckHash will
// consider, in bytes; phpBB applies the same cap before hashing.
const MaxPasswordLength = 4096

const (
	// a stored hash is "$H$", the iteration-count character, 8 characters of
	// salt, then the 22-character itoa64 encoding of the 16-byte digest
	encodedLength = 34
	saltOffset    = 4
	digestOffset  = 12

	// bounds on the iteration-count exponent, as enforced by phpass: below 7
	// the stretching is implausibly weak, above 30 implausibly expensive
	minCountLog2 = 7
	maxCountLog2 = 30
)

// CheckHash verifies a plaintext password against a stored phpBB3 hash.
// It returns (true, nil) on a match, (false, nil) on a clean mismatch, and
// (false, err) if the stored hash is malformed, so callers can distinguish a
// corrupted database record from a wrong password. The recomputed digest is
// compared against the stored one in constant time. CPU cost is proportional
// to the iteration count embedded in the hash (for the phpBB3 default of
// 2^11, about 2000 chained MD5 invocations). Safe for concurrent use.
func CheckHash(storedHash string, password []byte) (bool, error) {
	if len(password) > MaxPasswordLength {
		return false, ErrPasswordTooLong
	}

	rounds, salt, digest, err := parseHash(storedHash)
	if err != nil {
		return false, err
	}

	candidate := itoa64Encode(iterateMD5(salt, password, rounds))
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(digest)) == 1, nil
}

// parseHash splits a stored hash into its iteration count, salt, and digest
// fields, validating all of them up front: a corrupted record must fail
// before any MD5 work happens. The 8 salt characters are used as raw ASCII
// bytes (phpBB never bit-unpacks them), but they and the stored digest must
// still be drawn from the itoa64 alphabet.
func parseHash(storedHash string) (rounds int, salt, digest string, err error) {
	if len(storedHash) != encodedLength {
		return 0, "", "", ErrInvalidFormat
	}
	if prefix := storedHash[:3]; prefix != "$H$" && prefix != "$P$" {
		return 0, "", "", ErrInvalidFormat
	}

	countLog2 := itoa64Index[storedHash[3]]
	if countLog2 < 0 {
		return 0, "", "", ErrInvalidCharacter
	}
	if countLog2 < minCountLog2 || countLog2 > maxCountLog2 {
		return 0, "", "", ErrInvalidRounds
	}

	for i := saltOffset; i < encodedLength; i++ {
		if itoa64Index[storedHash[i]] < 0 {
			return 0, "", "", ErrInvalidCharacter
		}
	}

	return 1 << uint(countLog2), storedHash[saltOffset:digestOffset], storedHash[digestOffset:], nil
}

// iterateMD5 computes md5(salt || password), then reapplies
// md5(digest || password) rounds more times; a stored count of 1<<n costs
// 1<<n + 1 MD5 invocations in total. One scratch buffer is reused across
// rounds, and nothing is cached between calls: the repeated work is the
// scheme's brute-force defense.
func iterateMD5(salt string, password []byte, rounds int) []byte {
	buf := make([]byte, 0, md5.Size+len(password))
	buf = append(buf, salt...)
	buf = append(buf, password...)
	sum := md5.Sum(buf)
	for i := 0; i < rounds; i++ {
		buf = append(buf[:0], sum[:]...)
		buf = append(buf, password...)
		sum = md5.Sum(buf)
	}
	return sum[:]
}
