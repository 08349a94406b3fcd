package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starward/gwiki/internal"
	"github.com/starward/gwiki/internal/artifacts"
	"github.com/starward/gwiki/internal/builder"
	"github.com/starward/gwiki/internal/index"
	"github.com/starward/gwiki/internal/mcpserver"
	"github.com/starward/gwiki/internal/storage"
	"github.com/starward/gwiki/internal/validator"
	"github.com/starward/gwiki/internal/wikiservice"
	pkgconfig "github.com/starward/gwiki/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) && !cmd.IsSet("config") {
		// No config file at the default location: run on defaults.
		return cfg, nil
	}
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// newService wires storage, index, artifacts and builder for one-shot
// commands. The caller must Close the returned DB.
func newService(cfg *internal.Config, logger *slog.Logger) (*wikiservice.Service, *index.DB, error) {
	store, err := storage.NewFS(cfg.Wiki.Path, cfg.Wiki.Ext)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}

	var art *artifacts.Writer
	if cfg.Artifacts.Dir != "" {
		art, err = artifacts.NewWriter(cfg.Artifacts.Dir)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("init artifacts: %w", err)
		}
	}

	b := builder.New(store, db, art, cfg.Ledger.Path, logger)
	return wikiservice.New(b, store, db), db, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.App.LogLevel}))

	svc, db, err := newService(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return svc.Rebuild(ctx)
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// No database or artifacts here; the ledger is still saved so first
	// observations made during validation are not lost.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store, err := storage.NewFS(cfg.Wiki.Path, cfg.Wiki.Ext)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	b := builder.New(store, nil, nil, cfg.Ledger.Path, logger)
	res, err := b.Run()
	if err != nil {
		return err
	}

	// Broken links are report output, not a failure; only I/O errors
	// change the exit code.
	out := validator.Render(res.Reports)
	if out == "" {
		out = "no broken links"
	}
	fmt.Println(out)
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol; logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))

	svc, db, err := newService(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := svc.Rebuild(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}
	return mcpserver.New(svc).ServeStdio()
}

const defaultConfigPath = "config/config.yaml"

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: defaultConfigPath,
		Value:       defaultConfigPath,
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "gwiki",
		Usage: "Personal knowledge base indexer with link graph, backlinks, and reference validation",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server with file watching and SSE updates",
				Action: runServe,
			},
			{
				Name:   "build",
				Usage:  "Run one full build pass: index, graph, artifacts, ledger",
				Action: runBuild,
			},
			{
				Name:   "validate",
				Usage:  "Report references that do not resolve to a known document",
				Action: runValidate,
			},
			{
				Name:   "mcp",
				Usage:  "Serve GWiki tools over the Model Context Protocol on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
