package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, string(domain.ModeBruteForce), s.Mode)
	assert.Equal(t, domain.CharsetDefault, s.Charset)
	assert.Equal(t, domain.DefaultMinLength, s.Min)
	assert.Equal(t, domain.DefaultMaxLength, s.Max)
	assert.Equal(t, domain.DefaultWorkers, s.Threads)
	assert.Equal(t, domain.DefaultQueueCapacity, s.Queue)
	assert.Equal(t, "warn", s.LogLevel)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bruteforce.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: dictionary\nwordlist: words.txt\nthreads: 3\nlog-level: debug\n"), 0644))
	t.Setenv("BRUTEFORCE_THREADS", "5")
	t.Setenv("BRUTEFORCE_METRICS_ADDR", ":9100")

	s, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "dictionary", s.Mode)
	assert.Equal(t, "words.txt", s.Wordlist)
	assert.Equal(t, 5, s.Threads, "environment overrides the file")
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, ":9100", s.MetricsAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSettings_Set(t *testing.T) {
	tests := []struct {
		option  string
		value   string
		check   func(t *testing.T, s *Settings)
		wantErr bool
	}{
		{option: "mode", value: "dictionary", check: func(t *testing.T, s *Settings) { assert.Equal(t, "dictionary", s.Mode) }},
		{option: "MODE", value: "exhaustive", check: func(t *testing.T, s *Settings) { assert.Equal(t, "bruteforce", s.Mode) }},
		{option: "mode", value: "rainbow", wantErr: true},
		{option: "charset", value: "AbC", check: func(t *testing.T, s *Settings) { assert.Equal(t, "AbC", s.Charset) }},
		{option: "charset", value: " ", wantErr: true},
		{option: "min", value: "2", check: func(t *testing.T, s *Settings) { assert.Equal(t, 2, s.Min) }},
		{option: "max", value: "abc", wantErr: true},
		{option: "threads", value: "0", wantErr: true},
		{option: "threads", value: "16", check: func(t *testing.T, s *Settings) { assert.Equal(t, 16, s.Threads) }},
		{option: "queue", value: "0", check: func(t *testing.T, s *Settings) { assert.Equal(t, 0, s.Queue) }},
		{option: "queue", value: "-1", wantErr: true},
		{option: "target", value: "5F4DCC3B5AA765D61D8327DEB882CF99", check: func(t *testing.T, s *Settings) {
			assert.Equal(t, "5F4DCC3B5AA765D61D8327DEB882CF99", s.Target)
		}},
		{option: "wordlist", value: "/tmp/My Words.txt", check: func(t *testing.T, s *Settings) { assert.Equal(t, "/tmp/My Words.txt", s.Wordlist) }},
		{option: "algorithm", value: "SHA256", check: func(t *testing.T, s *Settings) { assert.Equal(t, "sha256", s.Algorithm) }},
		{option: "algorithm", value: "auto", check: func(t *testing.T, s *Settings) { assert.Empty(t, s.Algorithm) }},
		{option: "algorithm", value: "crc32", wantErr: true},
		{option: "encoding", value: "windows-1252", check: func(t *testing.T, s *Settings) { assert.Equal(t, "windows-1252", s.Encoding) }},
		{option: "colour", value: "red", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.option+"="+tt.value, func(t *testing.T) {
			s, err := Load(NewViper(), "")
			require.NoError(t, err)

			err = s.Set(tt.option, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestSettings_SearchConfig(t *testing.T) {
	s, err := Load(NewViper(), "")
	require.NoError(t, err)

	_, err = s.SearchConfig()
	assert.ErrorIs(t, err, domain.ErrInvalidHash, "target is required")

	require.NoError(t, s.Set("target", "5f4dcc3b5aa765d61d8327deb882cf99"))
	cfg, err := s.SearchConfig()
	require.NoError(t, err)
	assert.Equal(t, domain.ModeBruteForce, cfg.Mode)
	assert.Equal(t, domain.DefaultWorkers, cfg.Workers)

	require.NoError(t, s.Set("max", "2"))
	assert.Equal(t, domain.DefaultMaxLength, cfg.MaxLength, "built config is independent of later edits")

	require.NoError(t, s.Set("mode", "dictionary"))
	_, err = s.SearchConfig()
	assert.ErrorIs(t, err, domain.ErrInvalidWordlist)

	require.NoError(t, s.Set("mode", "mask"))
	_, err = s.SearchConfig()
	assert.ErrorIs(t, err, domain.ErrUnsupportedMode)
}

func TestSettings_Describe(t *testing.T) {
	s, err := Load(NewViper(), "")
	require.NoError(t, err)

	rows := s.Describe()
	require.NotEmpty(t, rows)
	assert.Equal(t, Option{"Mode", "bruteforce"}, rows[0])

	byName := map[string]string{}
	for _, r := range rows {
		byName[r.Name] = r.Value
	}
	assert.Equal(t, "Not set", byName["Target"])
	assert.Equal(t, "auto", byName["Algorithm"])
}
