package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/autocheckrh/reconciler/internal/pipeline"
	"github.com/autocheckrh/reconciler/internal/report"
)

func newReconcileCmd() *cobra.Command {
	var cleanSheet string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconciles the comparison sheet against an existing clean sheet",
		Long: `Matches and classifies the comparison sheet against a clean sheet
produced by a previous run, without fetching anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg, logger := a.cfg, a.logger

			header, refs, err := report.ReadReferences(cfg.Input.References)
			if err != nil {
				return fmt.Errorf("load references: %w", err)
			}
			records, err := report.ReadClean(cleanSheet)
			if err != nil {
				return fmt.Errorf("load clean sheet: %w", err)
			}
			logger.Info("loaded inputs",
				zap.Int("references", len(refs)),
				zap.Int("records", len(records)),
			)

			rows := pipeline.Reconcile(refs, records, cfg.Matching.Tolerance)

			resultPath, err := report.NextSeqPath(cfg.Output.Dir, cfg.Output.ResultPrefix, ".csv")
			if err != nil {
				return err
			}
			if err := report.WriteResults(resultPath, header, rows); err != nil {
				return err
			}
			logger.Info("reconciliation written", zap.String("results", resultPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&cleanSheet, "planilha", "outputs/planilha_feita-1.csv", "clean sheet from a previous run")
	return cmd
}
