package domain

import (
	"fmt"
	"strings"
)

type HashType string
type AttackMode string
type SearchStatus string

const (
	//Hash types
	HashMD5        HashType = "md5"
	HashSHA1       HashType = "sha1"
	HashSHA256     HashType = "sha256"
	HashSHA512     HashType = "sha512"
	HashSHA3256    HashType = "sha3-256"
	HashBLAKE2b256 HashType = "blake2b-256"

	// Attack modes. Mask and Hybrid are recognized but not implemented.
	ModeBruteForce AttackMode = "bruteforce"
	ModeDictionary AttackMode = "dictionary"
	ModeMask       AttackMode = "mask"
	ModeHybrid     AttackMode = "hybrid"

	//Search status
	StatusIdle      SearchStatus = "IDLE"
	StatusRunning   SearchStatus = "RUNNING"
	StatusSucceeded SearchStatus = "SUCCEEDED"
	StatusExhausted SearchStatus = "EXHAUSTED"
	StatusCancelled SearchStatus = "CANCELLED"
)

var (
	CharsetLower   = "abcdefghijklmnopqrstuvwxyz"
	CharsetUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	CharsetDigits  = "0123456789"
	CharsetSpecial = "!@#$%^&*()_+-=[]{}|;:,.<>?"
	CharsetAll     = CharsetLower + CharsetUpper + CharsetDigits + CharsetSpecial

	// CharsetDefault matches the classic tool default of lowercase letters and digits.
	CharsetDefault = CharsetLower + CharsetDigits
)

// ParseAttackMode resolves a user-supplied mode name. Mask and hybrid parse
// successfully so callers can report them as unsupported rather than unknown.
func ParseAttackMode(s string) (AttackMode, error) {
	switch m := AttackMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeBruteForce, ModeDictionary, ModeMask, ModeHybrid:
		return m, nil
	case "exhaustive":
		return ModeBruteForce, nil
	}
	return "", fmt.Errorf("%w: %q (available: bruteforce, dictionary)", ErrInvalidMode, s)
}

// Supported reports whether the mode has a candidate source.
func (m AttackMode) Supported() bool {
	return m == ModeBruteForce || m == ModeDictionary
}

// Terminal reports whether the status ends a search.
func (s SearchStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusExhausted || s == StatusCancelled
}

type CrackingError string

const (
	ErrInvalidHash     CrackingError = "INVALID_HASH"
	ErrUnsupportedHash CrackingError = "UNSUPPORTED_HASH"
	ErrInvalidMode     CrackingError = "INVALID_MODE"
	ErrUnsupportedMode CrackingError = "UNSUPPORTED_MODE"
	ErrInvalidConfig   CrackingError = "INVALID_CONFIG"
	ErrInvalidWordlist CrackingError = "INVALID_WORDLIST"
	ErrSearchRunning   CrackingError = "SEARCH_RUNNING"
)

func (e CrackingError) Error() string {
	return string(e)

}
