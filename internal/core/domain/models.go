package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultMinLength        = 1
	DefaultMaxLength        = 6
	DefaultWorkers          = 8
	DefaultQueueCapacity    = 4096
	DefaultProgressInterval = 100 * time.Millisecond
)

// SearchConfig describes one search. It is built by the caller before Run
// and passed by value, so a running search never observes later edits.
type SearchConfig struct {
	Mode             AttackMode
	Alphabet         string
	MinLength        int
	MaxLength        int
	WordlistPath     string
	WordlistEncoding string
	TargetHash       string
	HashType         HashType
	Workers          int
	// QueueCapacity bounds the work queue; 0 means unbounded.
	QueueCapacity    int
	ProgressInterval time.Duration
}

// ConfigError is returned when a SearchConfig cannot start a search.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidConfig, e.Err}
	}
	return []error{ErrInvalidConfig}
}

func configErr(field, reason string, cause error) error {
	return &ConfigError{Field: field, Reason: reason, Err: cause}
}

// Validate checks every field the selected mode depends on. Algorithm names
// are checked by the caller against the hashing registry.
func (c SearchConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.TargetHash) == "" {
		errs = append(errs, configErr("target", "target hash not set", ErrInvalidHash))
	}
	if c.Workers < 1 {
		errs = append(errs, configErr("threads", fmt.Sprintf("must be at least 1, got %d", c.Workers), nil))
	}
	if c.QueueCapacity < 0 {
		errs = append(errs, configErr("queue", fmt.Sprintf("capacity must not be negative, got %d", c.QueueCapacity), nil))
	}

	switch c.Mode {
	case ModeBruteForce:
		if c.MinLength < 1 {
			errs = append(errs, configErr("min", fmt.Sprintf("must be at least 1, got %d", c.MinLength), nil))
		}
		if c.MaxLength < 1 {
			errs = append(errs, configErr("max", fmt.Sprintf("must be at least 1, got %d", c.MaxLength), nil))
		}
		if c.MinLength > c.MaxLength {
			errs = append(errs, configErr("min", fmt.Sprintf("%d exceeds max %d", c.MinLength, c.MaxLength), nil))
		}
		if err := validateAlphabet(c.Alphabet); err != nil {
			errs = append(errs, err)
		}
	case ModeDictionary:
		if strings.TrimSpace(c.WordlistPath) == "" {
			errs = append(errs, configErr("wordlist", "wordlist not set for dictionary attack", ErrInvalidWordlist))
		}
	case ModeMask, ModeHybrid:
		errs = append(errs, configErr("mode", fmt.Sprintf("%s attacks are not implemented", c.Mode), ErrUnsupportedMode))
	case "":
		errs = append(errs, configErr("mode", "mode not set", ErrInvalidMode))
	default:
		errs = append(errs, configErr("mode", fmt.Sprintf("unknown mode %q", c.Mode), ErrInvalidMode))
	}

	return errors.Join(errs...)
}

func validateAlphabet(alphabet string) error {
	if alphabet == "" {
		return configErr("charset", "must not be empty", nil)
	}
	if !utf8.ValidString(alphabet) {
		return configErr("charset", "must be valid UTF-8", nil)
	}
	seen := make(map[rune]struct{}, len(alphabet))
	for _, r := range alphabet {
		if _, dup := seen[r]; dup {
			return configErr("charset", fmt.Sprintf("duplicate character %q", r), nil)
		}
		seen[r] = struct{}{}
	}
	return nil
}

type ResourceMetrics struct {
	CPUUsage         float64
	MemoryUsageMB    int64
	SystemMemPercent float64
	AttemptsPerSec   int64
	TotalAttempts    int64
	ActiveThreads    int
	LastUpdated      time.Time
}

// SearchResult is what a finished search hands back to its caller.
type SearchResult struct {
	RunID     string          `json:"runId"`
	Mode      AttackMode      `json:"mode"`
	HashType  HashType        `json:"hashType"`
	Status    SearchStatus    `json:"status"`
	Found     bool            `json:"found"`
	Password  string          `json:"password,omitempty"`
	Attempts  uint64          `json:"attempts"`
	Total     uint64          `json:"total"`
	Elapsed   time.Duration   `json:"elapsed"`
	StartTime time.Time       `json:"startTime"`
	Warnings  []string        `json:"warnings,omitempty"`
	Metrics   ResourceMetrics `json:"metrics"`
}
