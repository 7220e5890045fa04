// Package hashing maps candidate strings to lowercase hex digests.
package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
)

// Hasher builds a fresh hash.Hash for one algorithm.
type Hasher struct {
	Type domain.HashType
	Size int
	New  func() hash.Hash
}

var registry = map[domain.HashType]Hasher{}

func register(h Hasher) { registry[h.Type] = h }

func init() {
	register(Hasher{Type: domain.HashMD5, Size: md5.Size, New: md5.New})
	register(Hasher{Type: domain.HashSHA1, Size: sha1.Size, New: sha1.New})
	register(Hasher{Type: domain.HashSHA256, Size: sha256.Size, New: sha256.New})
	register(Hasher{Type: domain.HashSHA512, Size: sha512.Size, New: sha512.New})
	register(Hasher{Type: domain.HashSHA3256, Size: 32, New: sha3.New256})
	register(Hasher{Type: domain.HashBLAKE2b256, Size: blake2b.Size256, New: func() hash.Hash {
		// A nil key never fails.
		h, _ := blake2b.New256(nil)
		return h
	}})
}

// Lookup returns the hasher registered for alg, matching names case-insensitively.
func Lookup(alg domain.HashType) (Hasher, error) {
	if h, ok := registry[domain.HashType(strings.ToLower(string(alg)))]; ok {
		return h, nil
	}
	return Hasher{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedHash, alg)
}

// Supported lists the registered algorithm names in sorted order.
func Supported() []domain.HashType {
	out := make([]domain.HashType, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Digest returns the lowercase hex digest of candidate.
//
// An unknown algorithm returns candidate unchanged. Callers that need a hard
// failure should use Lookup first; the search service does.
func Digest(candidate string, alg domain.HashType) string {
	h, err := Lookup(alg)
	if err != nil {
		return candidate
	}
	return h.Sum(candidate)
}

// Sum hashes candidate with a fresh state, so it is safe for concurrent use.
func (h Hasher) Sum(candidate string) string {
	d := h.New()
	d.Write([]byte(candidate))
	return hex.EncodeToString(d.Sum(nil))
}

// Identify guesses the algorithm from the hex length of a digest. Lengths
// shared by several algorithms resolve to the SHA-2 member.
func Identify(target string) domain.HashType {
	target = strings.TrimSpace(target)
	if _, err := hex.DecodeString(target); err != nil {
		return ""
	}
	switch len(target) {
	case md5.Size * 2:
		return domain.HashMD5
	case sha1.Size * 2:
		return domain.HashSHA1
	case sha256.Size * 2:
		return domain.HashSHA256
	case sha512.Size * 2:
		return domain.HashSHA512
	}
	return ""
}

// Service exposes the package functions through port.HashService.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Identify(target string) domain.HashType {
	return Identify(target)
}

func (s *Service) Digest(candidate string, alg domain.HashType) string {
	return Digest(candidate, alg)
}

// Verify compares the digest of candidate with target, ignoring hex case.
func (s *Service) Verify(candidate, target string, alg domain.HashType) bool {
	return strings.EqualFold(Digest(candidate, alg), strings.TrimSpace(target))
}

func (s *Service) Supports(alg domain.HashType) bool {
	_, err := Lookup(alg)
	return err == nil
}

// DigestSize returns the digest length in bytes, or 0 for an unknown algorithm.
func (s *Service) DigestSize(alg domain.HashType) int {
	h, err := Lookup(alg)
	if err != nil {
		return 0
	}
	return h.Size
}
