package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/autocheckrh/reconciler/internal/extract"
	"github.com/autocheckrh/reconciler/internal/fetch"
	"github.com/autocheckrh/reconciler/internal/pipeline"
	"github.com/autocheckrh/reconciler/internal/report"
	"github.com/autocheckrh/reconciler/internal/throttle"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetches all receipt links and reconciles the comparison sheet",
		Long: `Runs the full pipeline: loads the target list, fetches every receipt
under the worker pool, extracts fields, reconciles the comparison sheet when
one is configured, and writes the clean sheet, diagnostic log, and result
sheet under sequentially numbered names.`,
		RunE: runRun,
	}
}

func runRun(cmd *cobra.Command, _ []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg, logger := a.cfg, a.logger

	targets, err := report.ReadTargets(cfg.Input.Targets)
	if err != nil {
		return fmt.Errorf("load targets: %w", err)
	}
	if len(targets) == 0 {
		return fmt.Errorf("no targets found in %s", cfg.Input.Targets)
	}

	// a missing comparison sheet degrades to a crawl-only run
	header, refs, err := report.ReadReferences(cfg.Input.References)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load references: %w", err)
		}
		logger.Warn("comparison sheet not found; crawl-only run",
			zap.String("path", cfg.Input.References))
	}

	registry := throttle.NewRegistry(cfg.Fetch.PerHostDelay)
	fetcher := fetch.New(fetch.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Timeout(),
	}, registry, logger)
	extractor := extract.New(extract.Mode(cfg.Extract.Mode))

	p := pipeline.New(fetcher, extractor, pipeline.Config{
		Workers:   cfg.Fetch.Workers,
		Tolerance: cfg.Matching.Tolerance,
	}, logger)
	out := p.Run(cmd.Context(), targets, refs)

	cleanPath, err := report.NextSeqPath(cfg.Output.Dir, cfg.Output.CleanPrefix, ".csv")
	if err != nil {
		return err
	}
	if err := report.WriteClean(cleanPath, out.Records); err != nil {
		return err
	}

	logPath, err := report.NextSeqPath(cfg.Output.LogDir, cfg.Output.CleanPrefix+"_log", ".log")
	if err != nil {
		return err
	}
	if err := report.WriteLog(logPath, out.LogRows); err != nil {
		return err
	}

	logger.Info("crawl outputs written",
		zap.String("clean", cleanPath),
		zap.String("log", logPath),
	)

	if len(refs) == 0 {
		return nil
	}
	resultPath, err := report.NextSeqPath(cfg.Output.Dir, cfg.Output.ResultPrefix, ".csv")
	if err != nil {
		return err
	}
	if err := report.WriteResults(resultPath, header, out.Rows); err != nil {
		return err
	}
	logger.Info("reconciliation written", zap.String("results", resultPath))
	return nil
}
