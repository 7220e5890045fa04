package algorithm

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
)

// collect drains a source, failing the test on error or timeout.
func collect(t *testing.T, ctx context.Context, s Source) []string {
	t.Helper()

	passwords, errs := s.Start(ctx)

	var results []string
	for {
		select {
		case password, ok := <-passwords:
			if !ok {
				return results
			}
			results = append(results, password)
		case err, ok := <-errs:
			if ok && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !ok {
				errs = nil
			}
		case <-ctx.Done():
			t.Fatal("Test timed out")
		}
	}
}

func TestBruteForce_Start(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.SearchConfig
		want     []string
	}{
		{
			name: "Single character lowercase",
			settings: domain.SearchConfig{
				MinLength: 1,
				MaxLength: 1,
				Alphabet:  "ab",
			},
			want: []string{"a", "b"},
		},
		{
			name: "Two character digits",
			settings: domain.SearchConfig{
				MinLength: 2,
				MaxLength: 2,
				Alphabet:  "12",
			},
			want: []string{"11", "12", "21", "22"},
		},
		{
			name: "Variable length passwords",
			settings: domain.SearchConfig{
				MinLength: 1,
				MaxLength: 2,
				Alphabet:  "ab",
			},
			want: []string{"a", "b", "aa", "ab", "ba", "bb"},
		},
		{
			name: "Alphabet order is positional, not sorted",
			settings: domain.SearchConfig{
				MinLength: 2,
				MaxLength: 2,
				Alphabet:  "ba",
			},
			want: []string{"bb", "ba", "ab", "aa"},
		},
		{
			name: "Multibyte alphabet",
			settings: domain.SearchConfig{
				MinLength: 1,
				MaxLength: 2,
				Alphabet:  "äß",
			},
			want: []string{"ä", "ß", "ää", "äß", "ßä", "ßß"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBruteForce(tt.settings)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			results := collect(t, ctx, b)
			assert.Equal(t, tt.want, results)
			assert.Equal(t, uint64(len(tt.want)), b.Produced())
		})
	}
}

func TestBruteForce_NoDuplicates(t *testing.T) {
	b := NewBruteForce(domain.SearchConfig{MinLength: 1, MaxLength: 3, Alphabet: "xyz"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	results := collect(t, ctx, b)
	require.Len(t, results, 3+9+27)

	seen := make(map[string]bool, len(results))
	for _, r := range results {
		assert.False(t, seen[r], "duplicate candidate %q", r)
		seen[r] = true
	}
	assert.Equal(t, 3, b.CurrentLength())
}

func TestBruteForce_Stop(t *testing.T) {
	b := NewBruteForce(domain.SearchConfig{
		MinLength: 1,
		MaxLength: 8,
		Alphabet:  domain.CharsetLower,
	})

	ctx, cancel := context.WithCancel(context.Background())
	passwords, _ := b.Start(ctx)

	<-passwords
	<-passwords
	cancel()

	done := make(chan struct{})
	go func() {
		for range passwords {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("cancel didn't terminate password generation")
	}
	assert.LessOrEqual(t, b.Produced(), uint64(3))
}

func TestBruteForce_Name(t *testing.T) {
	b := NewBruteForce(domain.SearchConfig{})
	assert.Equal(t, domain.ModeBruteForce, b.Name())
}

func TestBruteForce_DefaultCharset(t *testing.T) {
	b := NewBruteForce(domain.SearchConfig{
		MinLength: 1,
		MaxLength: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	results := collect(t, ctx, b)
	assert.Len(t, results, len(domain.CharsetDefault))
}

func TestBruteForce_CombinationsCalculation(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.SearchConfig
		want     uint64
	}{
		// |alphabet|^max only; the one-character strings are not counted.
		{"ab up to 2", domain.SearchConfig{MinLength: 1, MaxLength: 2, Alphabet: "ab"}, 4},
		{"single char", domain.SearchConfig{MinLength: 1, MaxLength: 2, Alphabet: "a"}, 1},
		{"default tool settings", domain.SearchConfig{MinLength: 1, MaxLength: 6, Alphabet: domain.CharsetDefault}, 2176782336},
		{"saturates", domain.SearchConfig{MinLength: 1, MaxLength: 64, Alphabet: domain.CharsetAll}, math.MaxUint64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewBruteForce(tt.settings).Total())
		})
	}
}

func TestNewSource(t *testing.T) {
	s, err := NewSource(domain.SearchConfig{Mode: domain.ModeBruteForce, Alphabet: "a", MinLength: 1, MaxLength: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeBruteForce, s.Name())

	for _, mode := range []domain.AttackMode{domain.ModeMask, domain.ModeHybrid} {
		_, err := NewSource(domain.SearchConfig{Mode: mode})
		assert.ErrorIs(t, err, domain.ErrUnsupportedMode)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	}

	for _, mode := range []domain.AttackMode{"rainbow", ""} {
		_, err = NewSource(domain.SearchConfig{Mode: mode})
		assert.ErrorIs(t, err, domain.ErrInvalidMode, mode)
		assert.NotErrorIs(t, err, domain.ErrUnsupportedMode, mode)
	}

	d, err := NewSource(domain.SearchConfig{Mode: domain.ModeDictionary, WordlistPath: "missing.txt"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeDictionary, d.Name())
}
