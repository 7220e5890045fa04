package algorithm

import (
	"context"
	"fmt"

	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
)

// Source produces the candidates for one attack mode. Every call to Start
// begins a fresh pass; a pass cannot be resumed.
type Source interface {
	Start(ctx context.Context) (<-chan string, <-chan error)
	// Total is the candidate count used for progress display.
	Total() uint64
	Produced() uint64
	Name() domain.AttackMode
}

// NewSource builds the candidate source for cfg.Mode.
func NewSource(cfg domain.SearchConfig) (Source, error) {
	if !cfg.Mode.Supported() {
		if _, err := domain.ParseAttackMode(string(cfg.Mode)); err != nil {
			return nil, &domain.ConfigError{
				Field:  "mode",
				Reason: fmt.Sprintf("unknown mode %q", cfg.Mode),
				Err:    domain.ErrInvalidMode,
			}
		}
		return nil, &domain.ConfigError{
			Field:  "mode",
			Reason: fmt.Sprintf("%s attacks are not implemented", cfg.Mode),
			Err:    domain.ErrUnsupportedMode,
		}
	}

	if cfg.Mode == domain.ModeDictionary {
		return NewDictionary(cfg)
	}
	return NewBruteForce(cfg), nil
}
