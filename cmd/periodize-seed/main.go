package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/meltforce/periodize/internal/config"
	"github.com/meltforce/periodize/internal/seed"
	"github.com/meltforce/periodize/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	catalogDir := flag.String("dir", "catalog", "directory containing catalog YAML files")
	force := flag.Bool("force", false, "re-apply files even if unchanged since the last run")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("periodize-seed", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	info, err := os.Stat(*catalogDir)
	if err != nil || !info.IsDir() {
		log.Error("catalog directory not found", "path", *catalogDir)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := seed.OpenStateDB(filepath.Join(homeDir, ".periodize-seed"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	loader := seed.NewLoader(db, log)

	files, err := catalogFiles(*catalogDir)
	if err != nil {
		log.Error("listing catalog files failed", "error", err)
		os.Exit(1)
	}

	var applied, skipped, errored int
	var totals seed.Stats
	for _, path := range files {
		rel, _ := filepath.Rel(*catalogDir, path)

		fi, err := os.Stat(path)
		if err != nil {
			log.Error("stat failed", "file", rel, "error", err)
			errored++
			continue
		}
		hash, err := seed.HashFile(path)
		if err != nil {
			log.Error("hashing failed", "file", rel, "error", err)
			errored++
			continue
		}

		if !*force {
			done, err := state.IsApplied(rel, fi.Size(), hash)
			if err != nil {
				log.Error("state check failed", "file", rel, "error", err)
				errored++
				continue
			}
			if done {
				skipped++
				continue
			}
		}

		stats, err := loader.LoadFile(ctx, path)
		if err != nil {
			log.Error("applying catalog file failed", "file", rel, "error", err)
			errored++
			continue
		}
		if err := state.MarkApplied(rel, fi.Size(), hash, stats); err != nil {
			log.Warn("recording applied file failed", "file", rel, "error", err)
		}
		applied++
		totals.Exercises += stats.Exercises
		totals.Templates += stats.Templates
	}

	fmt.Println()
	fmt.Println("=== Seed Summary ===")
	fmt.Printf("  Files total:    %d\n", len(files))
	fmt.Printf("  Files applied:  %d\n", applied)
	fmt.Printf("  Files skipped:  %d (unchanged)\n", skipped)
	fmt.Printf("  Files errored:  %d\n", errored)
	fmt.Println()
	fmt.Printf("  Exercises:      %d\n", totals.Exercises)
	fmt.Printf("  Templates:      %d\n", totals.Templates)
	if files, catalog, err := state.Totals(); err == nil {
		fmt.Printf("  Catalog state:  %d files, %d exercises, %d templates\n",
			files, catalog.Exercises, catalog.Templates)
	}
	fmt.Println()

	if errored > 0 {
		os.Exit(1)
	}
	log.Info("seed complete")
}

// catalogFiles lists the YAML files under dir in a stable order.
func catalogFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
