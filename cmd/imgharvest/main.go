package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"imgharvest/pkg/config"
	"imgharvest/pkg/download"
	"imgharvest/pkg/fsutil"
	"imgharvest/pkg/harvest"
	"imgharvest/pkg/logger"
	"imgharvest/pkg/store"
)

// Exit codes: 0 when the full target was downloaded, 1 when candidates ran
// out first, 2 when there was nothing to download, 3 on usage/config errors.
const (
	exitComplete = 0
	exitPartial  = 1
	exitEmpty    = 2
	exitUsage    = 3
)

var (
	configFile    = flag.String("config", "", "Path to configuration file")
	inputPath     = flag.String("input", "", "Path to the newline-delimited webpage URL list")
	target        = flag.Int("target", 0, "Number of images to download")
	concurrent    = flag.Int("concurrent", 0, "Maximum concurrent requests")
	originalsRoot = flag.String("originals", "", "Root directory for original images")
	outputRoot    = flag.String("output", "", "Root directory for rotated images")
	logLevel      = flag.String("log-level", "", "Log level (debug, info, warn, error)")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	flags := make(map[string]interface{})
	if *inputPath != "" {
		flags["input"] = *inputPath
	}
	if *target > 0 {
		flags["target"] = *target
	}
	if *concurrent > 0 {
		flags["concurrent"] = *concurrent
	}
	if *originalsRoot != "" {
		flags["originals"] = *originalsRoot
	}
	if *outputRoot != "" {
		flags["output"] = *outputRoot
	}
	if *logLevel != "" {
		flags["log-level"] = *logLevel
	}

	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return exitUsage
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return exitUsage
	}
	log := logger.GetLogger()

	log.InfoWithFields("Image harvest starting", map[string]interface{}{
		"input":       cfg.Harvest.InputPath,
		"target":      cfg.Download.TargetImageCount,
		"originals":   cfg.Output.OriginalsRoot,
		"output":      cfg.Output.OutputRoot,
		"concurrency": cfg.Harvest.MaxConcurrent,
		"timeout":     cfg.Harvest.RequestTimeout,
	})

	pages, err := fsutil.ReadLineList(cfg.Harvest.InputPath)
	if err != nil {
		log.WithError(err).Error("Failed to read webpage URL list")
		return exitUsage
	}
	if len(pages) == 0 {
		log.WithField("input", cfg.Harvest.InputPath).Error("Webpage URL list is empty")
		return exitEmpty
	}

	ctx := context.Background()

	fetcher := harvest.NewFetcher(cfg.Harvest.RequestTimeout, cfg.Harvest.UserAgent, log)
	harvester := harvest.NewHarvester(fetcher, cfg.Harvest.MaxConcurrent, log)

	results := harvester.HarvestAll(ctx, pages)
	candidates := harvest.Mix(results)

	log.InfoWithFields("Harvest pass finished", map[string]interface{}{
		"pages":           len(pages),
		"pages_harvested": len(results),
		"pages_failed":    len(pages) - len(results),
		"candidates":      len(candidates),
	})

	writer := store.NewWriter(fetcher, cfg.Output.OriginalsRoot, cfg.Output.OutputRoot, log)
	batcher := download.NewBatcher(writer, cfg.Download.MaxConcurrent, log)

	summary := batcher.Run(ctx, candidates, cfg.Download.TargetImageCount)

	switch summary.Outcome {
	case download.OutcomeComplete:
		log.InfoWithFields("Run complete", map[string]interface{}{
			"downloaded": summary.Successes,
			"failed":     summary.Errors,
		})
		return exitComplete
	case download.OutcomePartial:
		log.WarnWithFields("Candidates exhausted before reaching target", map[string]interface{}{
			"downloaded": summary.Successes,
			"failed":     summary.Errors,
			"target":     cfg.Download.TargetImageCount,
		})
		return exitPartial
	default:
		log.Warn("No images available to download")
		return exitEmpty
	}
}
