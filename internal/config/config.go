// Package config holds the user-editable settings of the tool. Settings is
// the mutable builder the shell edits with "set"; SearchConfig turns it into
// the immutable value a search runs with.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
	"github.com/bruteforce-framework/bruteforce/internal/core/hashing"
)

const EnvPrefix = "BRUTEFORCE"

// Settings mirrors the configuration file, environment and flags.
type Settings struct {
	Mode        string `mapstructure:"mode"`
	Charset     string `mapstructure:"charset"`
	Min         int    `mapstructure:"min"`
	Max         int    `mapstructure:"max"`
	Threads     int    `mapstructure:"threads"`
	Target      string `mapstructure:"target"`
	Wordlist    string `mapstructure:"wordlist"`
	Algorithm   string `mapstructure:"algorithm"`
	Encoding    string `mapstructure:"encoding"`
	Queue       int    `mapstructure:"queue"`
	Output      string `mapstructure:"output"`
	LogLevel    string `mapstructure:"log-level"`
	LogJSON     bool   `mapstructure:"log-json"`
	MetricsAddr string `mapstructure:"metrics-addr"`
}

// NewViper returns a viper instance with defaults and BRUTEFORCE_* env
// lookup, so "max" is also read from BRUTEFORCE_MAX.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	Defaults(v)
	return v
}

func Defaults(v *viper.Viper) {
	v.SetDefault("mode", string(domain.ModeBruteForce))
	v.SetDefault("charset", domain.CharsetDefault)
	v.SetDefault("min", domain.DefaultMinLength)
	v.SetDefault("max", domain.DefaultMaxLength)
	v.SetDefault("threads", domain.DefaultWorkers)
	v.SetDefault("target", "")
	v.SetDefault("wordlist", "")
	v.SetDefault("algorithm", "")
	v.SetDefault("encoding", "")
	v.SetDefault("queue", domain.DefaultQueueCapacity)
	v.SetDefault("output", "")
	v.SetDefault("log-level", "warn")
	v.SetDefault("log-json", false)
	v.SetDefault("metrics-addr", "")
}

// Load reads path, if set, into v and decodes the merged settings.
func Load(v *viper.Viper, path string) (*Settings, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &s, nil
}

// Set applies one "set <option> <value>" command.
func (s *Settings) Set(option, value string) error {
	option = strings.ToLower(strings.TrimSpace(option))
	value = strings.TrimSpace(value)

	switch option {
	case "mode":
		mode, err := domain.ParseAttackMode(value)
		if err != nil {
			return &domain.ConfigError{Field: option, Reason: "available modes are bruteforce, dictionary", Err: err}
		}
		s.Mode = string(mode)
	case "charset":
		if value == "" {
			return &domain.ConfigError{Field: option, Reason: "must not be empty"}
		}
		s.Charset = value
	case "min":
		return setPositive(&s.Min, option, value)
	case "max":
		return setPositive(&s.Max, option, value)
	case "threads":
		return setPositive(&s.Threads, option, value)
	case "queue":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return &domain.ConfigError{Field: option, Reason: fmt.Sprintf("%q is not a capacity", value)}
		}
		s.Queue = n
	case "target":
		s.Target = value
	case "wordlist":
		s.Wordlist = value
	case "algorithm":
		if strings.EqualFold(value, "auto") {
			value = ""
		}
		if value != "" {
			if _, err := hashing.Lookup(domain.HashType(value)); err != nil {
				return &domain.ConfigError{Field: option, Reason: fmt.Sprintf("unsupported algorithm %q", value), Err: err}
			}
		}
		s.Algorithm = strings.ToLower(value)
	case "encoding":
		s.Encoding = value
	case "output":
		s.Output = value
	default:
		return &domain.ConfigError{Field: "option", Reason: fmt.Sprintf("unknown option %q", option)}
	}
	return nil
}

func setPositive(dst *int, option, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return &domain.ConfigError{Field: option, Reason: fmt.Sprintf("%q is not a number", value), Err: err}
	}
	if n < 1 {
		return &domain.ConfigError{Field: option, Reason: fmt.Sprintf("must be at least 1, got %d", n)}
	}
	*dst = n
	return nil
}

// SearchConfig builds the value handed to a search. Later edits to s do not
// affect it.
func (s *Settings) SearchConfig() (domain.SearchConfig, error) {
	mode, err := domain.ParseAttackMode(s.Mode)
	if err != nil && s.Mode != "" {
		return domain.SearchConfig{}, &domain.ConfigError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", s.Mode), Err: err}
	}

	cfg := domain.SearchConfig{
		Mode:             mode,
		Alphabet:         s.Charset,
		MinLength:        s.Min,
		MaxLength:        s.Max,
		WordlistPath:     s.Wordlist,
		WordlistEncoding: s.Encoding,
		TargetHash:       s.Target,
		HashType:         domain.HashType(s.Algorithm),
		Workers:          s.Threads,
		QueueCapacity:    s.Queue,
		ProgressInterval: domain.DefaultProgressInterval,
	}
	if err := cfg.Validate(); err != nil {
		return domain.SearchConfig{}, err
	}
	return cfg, nil
}

// Option is one row of "show options".
type Option struct {
	Name  string
	Value string
}

// Describe lists the settings in display order.
func (s *Settings) Describe() []Option {
	return []Option{
		{"Mode", orNotSet(s.Mode)},
		{"Charset", s.Charset},
		{"Min length", strconv.Itoa(s.Min)},
		{"Max length", strconv.Itoa(s.Max)},
		{"Threads", strconv.Itoa(s.Threads)},
		{"Target", orNotSet(s.Target)},
		{"Wordlist", orNotSet(s.Wordlist)},
		{"Algorithm", orDefault(s.Algorithm, "auto")},
		{"Encoding", orDefault(s.Encoding, "utf-8")},
		{"Output", orNotSet(s.Output)},
	}
}

func orNotSet(v string) string {
	return orDefault(v, "Not set")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
