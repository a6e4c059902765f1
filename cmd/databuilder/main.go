package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/databuilder/internal/config"
	"git.home.luguber.info/inful/databuilder/internal/database"
	"git.home.luguber.info/inful/databuilder/internal/export"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Export struct {
		Target string `short:"t" help:"Export only the named target"`
		Group  string `short:"g" help:"Export only the named group of the target"`
	} `cmd:"" help:"Export configured targets from the database"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Validate struct{} `cmd:"" help:"Validate the configuration without exporting"`

	Watch struct {
		Target   string        `short:"t" help:"Export only the named target on each change"`
		Debounce time.Duration `help:"Quiet period before re-exporting" default:"2s"`
	} `cmd:"" help:"Re-export whenever the database or configuration changes"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "export":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runExport(cfg, CLI.Export.Target, CLI.Export.Group); err != nil {
			slog.Error("Export failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "validate":
		if _, err := config.Load(CLI.Config); err != nil {
			slog.Error("Configuration is invalid", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration is valid", "path", CLI.Config)
	case "watch":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runWatch(cfg, CLI.Watch.Target, CLI.Watch.Debounce); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	}
}

func runExport(cfg *config.Config, targetName, groupName string) error {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}()

	targets := cfg.Targets
	if targetName != "" {
		target := cfg.TargetByName(targetName)
		if target == nil {
			return fmt.Errorf("target %q not found in configuration", targetName)
		}
		targets = []config.Target{*target}
	}
	if groupName != "" && targetName == "" {
		return fmt.Errorf("--group requires --target")
	}

	ctx := context.Background()
	for i := range targets {
		target := &targets[i]
		slog.Info("Exporting target",
			"target", target.Name,
			"exporter", target.Exporter,
			"output", target.Output)

		report, err := export.New(cfg, target, db).Run(ctx, groupName)
		if report != nil {
			fmt.Fprintln(os.Stdout, report.Summary())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func runInit(configPath string, force bool) error {
	slog.Info("Initializing configuration", "path", configPath, "force", force)
	return config.Init(configPath, force)
}

// runWatch re-exports on database or config file changes. Events are
// debounced: SQLite touches the file several times per transaction and a
// run should start only after the writer went quiet.
func runWatch(cfg *config.Config, targetName string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			slog.Warn("Failed to close watcher", "error", err)
		}
	}()

	if err := watcher.Add(cfg.Database); err != nil {
		return fmt.Errorf("watch database: %w", err)
	}
	if err := watcher.Add(CLI.Config); err != nil {
		return fmt.Errorf("watch configuration: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runExport(cfg, targetName, ""); err != nil {
		slog.Error("Initial export failed", "error", err)
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	slog.Info("Watching for changes", "database", cfg.Database, "config", CLI.Config)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutdown signal received")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("Change detected", "path", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		case <-pending:
			// Reload so config edits take effect on the next run.
			fresh, err := config.Load(CLI.Config)
			if err != nil {
				slog.Error("Configuration reload failed, keeping previous", "error", err)
				fresh = cfg
			} else {
				cfg = fresh
			}
			if err := runExport(fresh, targetName, ""); err != nil {
				slog.Error("Export failed", "error", err)
			}
		}
	}
}
