package algorithm

import (
	"context"
	"math"
	"math/bits"
	"sync/atomic"

	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
)

// BruteForce enumerates every string over the alphabet for each length in
// [MinLength, MaxLength], shortest first, leftmost position varying slowest.
type BruteForce struct {
	settings     domain.SearchConfig
	alphabet     []rune
	currentLen   atomic.Int64
	produced     atomic.Uint64
	combinations uint64
}

func NewBruteForce(settings domain.SearchConfig) *BruteForce {
	charset := settings.Alphabet
	if charset == "" {
		charset = domain.CharsetDefault
	}

	b := &BruteForce{
		settings: settings,
		alphabet: []rune(charset),
	}
	b.calculateTotalCombinations()
	return b
}

func (b *BruteForce) Start(ctx context.Context) (<-chan string, <-chan error) {
	passwords := make(chan string)
	errors := make(chan error)

	go func() {
		defer close(passwords)
		defer close(errors)

		for length := b.settings.MinLength; length <= b.settings.MaxLength; length++ {
			b.currentLen.Store(int64(length))
			if !b.generatePasswords(ctx, length, passwords) {
				return
			}
		}
	}()

	return passwords, errors
}

// generatePasswords walks all strings of one length like an odometer and
// reports false once ctx is done.
func (b *BruteForce) generatePasswords(ctx context.Context, length int, passwords chan<- string) bool {
	if length <= 0 || len(b.alphabet) == 0 {
		return ctx.Err() == nil
	}

	idx := make([]int, length)
	current := make([]rune, length)
	for i := range current {
		current[i] = b.alphabet[0]
	}

	for {
		if ctx.Err() != nil {
			return false
		}
		select {
		case passwords <- string(current):
			b.produced.Add(1)
		case <-ctx.Done():
			return false
		}

		pos := length - 1
		for ; pos >= 0; pos-- {
			idx[pos]++
			if idx[pos] < len(b.alphabet) {
				current[pos] = b.alphabet[idx[pos]]
				break
			}
			idx[pos] = 0
			current[pos] = b.alphabet[0]
		}
		if pos < 0 {
			return true
		}
	}
}

// calculateTotalCombinations stores |alphabet|^MaxLength, saturating at
// MaxUint64. Shorter lengths are deliberately not added in, so the figure
// undercounts multi-length searches; progress output depends on this value.
func (b *BruteForce) calculateTotalCombinations() {
	n := uint64(len(b.alphabet))
	total := uint64(1)
	for i := 0; i < b.settings.MaxLength; i++ {
		hi, lo := bits.Mul64(total, n)
		if hi != 0 {
			total = math.MaxUint64
			break
		}
		total = lo
	}
	if b.settings.MaxLength < 1 || n == 0 {
		total = 0
	}
	b.combinations = total
}

func (b *BruteForce) Total() uint64 {
	return b.combinations
}

func (b *BruteForce) Produced() uint64 {
	return b.produced.Load()
}

// CurrentLength is the candidate length being generated.
func (b *BruteForce) CurrentLength() int {
	return int(b.currentLen.Load())
}

func (b *BruteForce) Name() domain.AttackMode {
	return domain.ModeBruteForce
}
