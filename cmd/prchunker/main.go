package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/agusespa/prchunker/internal/agent"
	"github.com/agusespa/prchunker/internal/github"
	"github.com/agusespa/prchunker/internal/logging"
	"github.com/agusespa/prchunker/internal/tools"
	"github.com/agusespa/prchunker/pkg/config"
	"github.com/agusespa/prchunker/pkg/spinner"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var version = "dev"

// sharedFlags are accepted by every analyzing command and override the config file.
func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to configuration file (default: ./prchunker.toml or ~/.prchunker.toml)"},
		&cli.StringSliceFlag{Name: "reviewer", Aliases: []string{"r"}, Usage: "Reviewer to assign chunks to (repeatable)"},
		&cli.StringFlag{Name: "policy", Usage: "Distribution policy: round_robin or bucketed"},
		&cli.IntFlag{Name: "min-lines", Usage: "Smallest chunk kept when filtering"},
		&cli.IntFlag{Name: "max-lines", Usage: "Largest chunk kept when filtering"},
		&cli.BoolFlag{Name: "filter", Usage: "Drop chunks outside --min-lines/--max-lines"},
		&cli.BoolFlag{Name: "nested", Usage: "Also report definitions nested in function bodies"},
		&cli.BoolFlag{Name: "suppress-enclosing", Usage: "Drop a class chunk when its changed lines all fall in reported methods"},
		&cli.StringFlag{Name: "changed-lines", Usage: "Which lines count as changed: hunk or added"},
		&cli.StringSliceFlag{Name: "include", Usage: "Only analyze paths matching this glob (repeatable)"},
		&cli.StringSliceFlag{Name: "exclude", Usage: "Skip paths matching this glob (repeatable)"},
		&cli.IntFlag{Name: "workers", Usage: "Files analyzed in parallel (0: one per CPU)"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Report path, - for stdout"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Report format: markdown, text, json or html"},
		&cli.BoolFlag{Name: "debug", Usage: "Verbose logging"},
		&cli.StringFlag{Name: "log-file", Usage: "Also write logs to this file"},
	}
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"policy":             "policy",
	"min-lines":          "filter.min_lines",
	"max-lines":          "filter.max_lines",
	"filter":             "filter.enabled",
	"nested":             "include_nested",
	"suppress-enclosing": "suppress_enclosing",
	"changed-lines":      "changed_lines",
	"workers":            "workers",
	"output":             "output.path",
	"format":             "output.format",
	"debug":              "log.debug",
	"log-file":           "log.file",
	"repo":               "github.repository",
	"pr":                 "github.pr",
	"token":              "github.token",
	"comment":            "github.comment",
}

var sliceFlagKeys = map[string]string{
	"reviewer": "reviewers",
	"include":  "include",
	"exclude":  "exclude",
}

func overrides(cCtx *cli.Context) map[string]any {
	values := make(map[string]any)
	for name, key := range flagKeys {
		if !cCtx.IsSet(name) {
			continue
		}
		values[key] = cCtx.Value(name)
	}
	for name, key := range sliceFlagKeys {
		if cCtx.IsSet(name) {
			values[key] = cCtx.StringSlice(name)
		}
	}
	return values
}

// setup loads the configuration and builds the logger for a command. The
// returned cleanup closes the log file.
func setup(cCtx *cli.Context) (*config.Config, zerolog.Logger, func(), error) {
	cfg, err := config.Load(cCtx.String("config"), overrides(cCtx))
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	logger, closer, err := logging.New(logging.Options{Debug: cfg.Log.Debug, File: cfg.Log.File})
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	// the spinner stands in for info logs on an interactive terminal
	if showProgress(cfg) && cfg.Log.File == "" {
		logger = logger.Level(zerolog.WarnLevel)
	}

	return cfg, logger, func() { _ = closer.Close() }, nil
}

// showProgress is true when stderr is a terminal that debug logs do not
// already fill.
func showProgress(cfg *config.Config) bool {
	return !cfg.Log.Debug && isatty.IsTerminal(os.Stderr.Fd())
}

func runAgent(cCtx *cli.Context, cfg *config.Config, chunkAgent *agent.ChunkAgent) error {
	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt)
	defer stop()

	var s *spinner.Spinner
	if showProgress(cfg) {
		s = spinner.New(os.Stderr, "Starting")
		chunkAgent.SetProgress(s.Update)
		s.Start()
	}

	report, err := chunkAgent.Run(ctx)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	agent.PrintSummary(os.Stderr, report)
	return nil
}

func localAction(cCtx *cli.Context) error {
	cfg, logger, cleanup, err := setup(cCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	dir := cCtx.String("dir")
	registry := tools.NewDefaultRegistry(dir)

	var source *tools.GitSource
	if cCtx.Bool("staged") {
		if cCtx.IsSet("base") || cCtx.IsSet("head") {
			return fmt.Errorf("--staged cannot be combined with --base or --head")
		}
		source = tools.NewStagedGitSource(registry, logger)
	} else {
		source = tools.NewGitSource(registry, cCtx.String("base"), cCtx.String("head"), logger)
	}

	chunkAgent := agent.NewChunkAgent(source, registry, tools.NewParserRegistry(), cfg, logger)
	return runAgent(cCtx, cfg, chunkAgent)
}

func githubAction(cCtx *cli.Context) error {
	cfg, logger, cleanup, err := setup(cCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.GitHub.Repository == "" {
		return fmt.Errorf("repository is required (--repo or GITHUB_REPOSITORY)")
	}
	if cfg.GitHub.PR <= 0 {
		return fmt.Errorf("pull request number is required (--pr or PR_NUMBER)")
	}

	client := github.NewClient(cfg.GitHub.Token)
	source, err := github.NewPRSource(client, cfg.GitHub.Repository, cfg.GitHub.PR, logger)
	if err != nil {
		return err
	}

	chunkAgent := agent.NewChunkAgent(source, tools.NewDefaultRegistry("."), tools.NewParserRegistry(), cfg, logger)
	if cfg.GitHub.Comment {
		publisher, err := github.NewCommentPublisher(client, cfg.GitHub.Repository, cfg.GitHub.PR)
		if err != nil {
			return err
		}
		chunkAgent.SetPublisher(publisher)
	}

	return runAgent(cCtx, cfg, chunkAgent)
}

func initAction(cCtx *cli.Context) error {
	path := config.DefaultFileName
	if cCtx.NArg() > 0 {
		path = cCtx.Args().First()
	}
	if err := config.InitConfig(path); err != nil {
		return err
	}
	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

func newApp() *cli.App {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print version",
	}
	cli.VersionPrinter = func(cCtx *cli.Context) {
		fmt.Printf("prchunker version %s\n", cCtx.App.Version)
	}

	return &cli.App{
		Name:    "prchunker",
		Usage:   "Split a change into reviewable chunks and assign them to reviewers",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "local",
				Usage:     "Chunk the diff between two revisions, or the staged changes, of a local repository",
				UsageText: "prchunker local [options]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Value: ".", Usage: "Path to local Git repo"},
					&cli.StringFlag{Name: "base", Aliases: []string{"b"}, Value: "main", Usage: "Base revision"},
					&cli.StringFlag{Name: "head", Value: "HEAD", Usage: "Head revision"},
					&cli.BoolFlag{Name: "staged", Usage: "Chunk the staged changes instead of a revision range"},
				}, sharedFlags()...),
				Action: localAction,
			},
			{
				Name:      "github",
				Aliases:   []string{"gh"},
				Usage:     "Chunk a GitHub pull request",
				UsageText: "prchunker github --repo owner/name --pr 42 [options]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "repo", EnvVars: []string{"GITHUB_REPOSITORY"}, Usage: "Repository as owner/name"},
					&cli.IntFlag{Name: "pr", EnvVars: []string{"PR_NUMBER"}, Usage: "Pull request number"},
					&cli.StringFlag{Name: "token", EnvVars: []string{"GITHUB_TOKEN", "PAT_TOKEN"}, Usage: "GitHub token"},
					&cli.BoolFlag{Name: "comment", Usage: "Post the report as a pull request comment"},
				}, sharedFlags()...),
				Action: githubAction,
			},
			{
				Name:        "spans",
				Usage:       "List the function and class spans of files",
				UsageText:   "prchunker spans [options] <path> [path...]",
				Description: "Directories are walked recursively, honoring .gitignore. Unsupported files found while walking are ignored.",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "nested", Usage: "Also list definitions nested in function bodies"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "Output format: text or json"},
				},
				Action: spansAction,
			},
			{
				Name:      "init",
				Usage:     "Write a sample configuration file",
				UsageText: "prchunker init [path]",
				Action:    initAction,
			},
		},
	}
}

func main() {
	app := newApp()
	if err := app.RunContext(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
