package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agusespa/prchunker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "round_robin", cfg.Policy)
	assert.Equal(t, "hunk", cfg.ChangedLines)
	assert.False(t, cfg.Filter.Enabled)
	assert.Equal(t, 200, cfg.Filter.MinLines)
	assert.Equal(t, 800, cfg.Filter.MaxLines)
	assert.Equal(t, "-", cfg.Output.Path)
	assert.Equal(t, "markdown", cfg.Output.Format)
	assert.Equal(t, 50, cfg.Output.MaxExcerptLines)
	assert.Empty(t, cfg.Reviewers)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
reviewers = ["alice", "bob"]
policy = "bucketed"
include_nested = true
exclude = ["vendor/**"]

[filter]
enabled = true
min_lines = 5
max_lines = 10

[output]
format = "json"

[github]
repository = "acme/widgets"
pr = 42
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob"}, cfg.Reviewers)
	assert.Equal(t, "bucketed", cfg.Policy)
	assert.True(t, cfg.IncludeNested)
	assert.Equal(t, []string{"vendor/**"}, cfg.Exclude)
	assert.True(t, cfg.Filter.Enabled)
	assert.Equal(t, 5, cfg.Filter.MinLines)
	assert.Equal(t, 10, cfg.Filter.MaxLines)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 50, cfg.Output.MaxExcerptLines)
	assert.Equal(t, "acme/widgets", cfg.GitHub.Repository)
	assert.Equal(t, 42, cfg.GitHub.PR)
}

func TestLoad_EnvAndOverrides(t *testing.T) {
	path := writeConfig(t, `
policy = "bucketed"

[filter]
min_lines = 5
max_lines = 10
`)
	t.Setenv("PRCHUNKER_FILTER__MAX_LINES", "30")
	t.Setenv("PRCHUNKER_POLICY", "round_robin")

	cfg, err := Load(path, map[string]any{
		"filter.min_lines": 12,
		"reviewers":        []string{"carol"},
	})
	require.NoError(t, err)

	assert.Equal(t, "round_robin", cfg.Policy)
	assert.Equal(t, 12, cfg.Filter.MinLines)
	assert.Equal(t, 30, cfg.Filter.MaxLines)
	assert.Equal(t, []string{"carol"}, cfg.Reviewers)
}

func TestLoad_EnvLists(t *testing.T) {
	path := writeConfig(t, `
reviewers = ["carol"]
exclude = ["**/testdata/**"]
`)
	t.Setenv("PRCHUNKER_REVIEWERS", "alice, bob")
	t.Setenv("PRCHUNKER_DEFAULT_REVIEWERS", "dave")
	t.Setenv("PRCHUNKER_INCLUDE", "src/**,,lib/**")
	t.Setenv("PRCHUNKER_EXCLUDE", "")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob"}, cfg.Reviewers)
	assert.Equal(t, []string{"dave"}, cfg.DefaultReviewers)
	assert.Equal(t, []string{"src/**", "lib/**"}, cfg.Include)
	assert.Empty(t, cfg.Exclude)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), nil)
	assert.Error(t, err)
}

func TestLoad_InvalidToml(t *testing.T) {
	path := writeConfig(t, `reviewers = [`)

	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestEffectiveReviewers(t *testing.T) {
	cfg := &Config{DefaultReviewers: []string{"team"}}
	assert.Equal(t, []string{"team"}, cfg.EffectiveReviewers())

	cfg.Reviewers = []string{"alice"}
	assert.Equal(t, []string{"alice"}, cfg.EffectiveReviewers())
}

func validConfig() *Config {
	return &Config{
		Reviewers:    []string{"alice"},
		Policy:       "round_robin",
		ChangedLines: "hunk",
		Filter:       FilterConfig{MinLines: 200, MaxLines: 800},
		Output:       OutputConfig{Path: "-", Format: "markdown", MaxExcerptLines: 50},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"default reviewers only", func(c *Config) { c.Reviewers, c.DefaultReviewers = nil, []string{"team"} }, false},
		{"no reviewers", func(c *Config) { c.Reviewers = nil }, true},
		{"duplicate reviewers", func(c *Config) { c.Reviewers = []string{"a", "a"} }, true},
		{"max below min", func(c *Config) { c.Filter.MinLines, c.Filter.MaxLines = 10, 5 }, true},
		{"negative min", func(c *Config) { c.Filter.MinLines = -1 }, true},
		{"unknown policy", func(c *Config) { c.Policy = "lottery" }, true},
		{"unknown line mode", func(c *Config) { c.ChangedLines = "words" }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"negative excerpt", func(c *Config) { c.Output.MaxExcerptLines = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidConfiguration)
		})
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	require.NoError(t, InitConfig(path))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Reviewers)
	assert.NoError(t, cfg.Validate())

	assert.Error(t, InitConfig(path), "must not overwrite")
}
