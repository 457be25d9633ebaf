package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/agusespa/prchunker/internal/assign"
	"github.com/agusespa/prchunker/internal/types"
	"github.com/agusespa/prchunker/internal/utils"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultFileName = "prchunker.toml"
	EnvPrefix       = "PRCHUNKER_"
)

type Config struct {
	Reviewers         []string `koanf:"reviewers"`
	DefaultReviewers  []string `koanf:"default_reviewers"`
	Policy            string   `koanf:"policy"`
	IncludeNested     bool     `koanf:"include_nested"`
	SuppressEnclosing bool     `koanf:"suppress_enclosing"`
	ChangedLines      string   `koanf:"changed_lines"`
	Include           []string `koanf:"include"`
	Exclude           []string `koanf:"exclude"`
	Workers           int      `koanf:"workers"`

	Filter FilterConfig `koanf:"filter"`
	Output OutputConfig `koanf:"output"`
	Log    LogConfig    `koanf:"log"`
	GitHub GitHubConfig `koanf:"github"`
}

type FilterConfig struct {
	Enabled  bool `koanf:"enabled"`
	MinLines int  `koanf:"min_lines"`
	MaxLines int  `koanf:"max_lines"`
}

type OutputConfig struct {
	Path            string `koanf:"path"`   // "-" writes to stdout
	Format          string `koanf:"format"` // markdown, text, json or html
	MaxExcerptLines int    `koanf:"max_excerpt_lines"`
}

type LogConfig struct {
	Debug bool   `koanf:"debug"`
	File  string `koanf:"file"`
}

type GitHubConfig struct {
	Repository string `koanf:"repository"` // owner/name
	Token      string `koanf:"token"`
	PR         int    `koanf:"pr"`
	Comment    bool   `koanf:"comment"`
}

func defaults() map[string]any {
	return map[string]any{
		"policy":                   string(assign.PolicyRoundRobin),
		"changed_lines":            string(utils.LineModeHunk),
		"workers":                  0,
		"filter.enabled":           false,
		"filter.min_lines":         200,
		"filter.max_lines":         800,
		"output.path":              "-",
		"output.format":            "markdown",
		"output.max_excerpt_lines": 50,
	}
}

// Load reads defaults, then the TOML file, then PRCHUNKER_* environment
// variables, then overrides, each layer replacing the previous. An empty path
// looks for prchunker.toml in the working directory and the home directory.
// Overrides use dotted keys such as "filter.min_lines".
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config %s: %w", path, err)
		}
	} else {
		for _, candidate := range []string{"./" + DefaultFileName, "$HOME/." + DefaultFileName} {
			candidate = os.ExpandEnv(candidate)
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if err := k.Load(file.Provider(candidate), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config %s: %w", candidate, err)
			}
			break
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("error applying overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps PRCHUNKER_FILTER__MIN_LINES to filter.min_lines.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// listKeys hold []string values. Their environment variables are comma
// separated, e.g. PRCHUNKER_REVIEWERS=alice,bob.
var listKeys = map[string]bool{
	"reviewers":         true,
	"default_reviewers": true,
	"include":           true,
	"exclude":           true,
}

func envValue(name, value string) (string, any) {
	key := envKey(name)
	if !listKeys[key] {
		return key, value
	}
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// EffectiveReviewers returns the configured reviewers, falling back to
// default_reviewers when none are set.
func (c *Config) EffectiveReviewers() []string {
	if len(c.Reviewers) > 0 {
		return c.Reviewers
	}
	return c.DefaultReviewers
}

// Validate checks everything that must hold before any file is processed.
// Failures are *types.ConfigError values.
func (c *Config) Validate() error {
	var errs []error

	if err := assign.ValidateReviewers(c.EffectiveReviewers()); err != nil {
		errs = append(errs, err)
	}
	if _, err := assign.ParsePolicy(c.Policy); err != nil {
		errs = append(errs, err)
	}
	if _, err := utils.ParseLineMode(c.ChangedLines); err != nil {
		errs = append(errs, err)
	}
	if c.Filter.MinLines < 0 {
		errs = append(errs, &types.ConfigError{Field: "filter.min_lines", Reason: fmt.Sprintf("must not be negative, got %d", c.Filter.MinLines)})
	}
	if c.Filter.MaxLines < c.Filter.MinLines {
		errs = append(errs, &types.ConfigError{Field: "filter.max_lines", Reason: fmt.Sprintf("%d is below min_lines %d", c.Filter.MaxLines, c.Filter.MinLines)})
	}
	if c.Workers < 0 {
		errs = append(errs, &types.ConfigError{Field: "workers", Reason: fmt.Sprintf("must not be negative, got %d", c.Workers)})
	}
	if c.Output.MaxExcerptLines < 0 {
		errs = append(errs, &types.ConfigError{Field: "output.max_excerpt_lines", Reason: fmt.Sprintf("must not be negative, got %d", c.Output.MaxExcerptLines)})
	}

	return errors.Join(errs...)
}

// InitConfig writes a sample configuration file. It refuses to overwrite.
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# prchunker configuration

reviewers = ["alice", "bob"]
# Used when no reviewers are given on the command line or above.
default_reviewers = []

# round_robin or bucketed
policy = "round_robin"

# Report methods nested in functions as separate chunks.
include_nested = false
# Drop a class chunk when all of its changed lines fall inside its reported methods.
suppress_enclosing = false
# hunk: every line of a hunk's new range counts as changed
# added: only lines added by the diff count
changed_lines = "hunk"

include = []
exclude = ["**/testdata/**"]

# 0 uses one worker per CPU.
workers = 0

[filter]
enabled = false
min_lines = 200
max_lines = 800

[output]
path = "-"
format = "markdown"
max_excerpt_lines = 50

[log]
debug = false
file = ""

[github]
repository = ""
pr = 0
comment = false
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0o644)
}
