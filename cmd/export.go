package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/autocheckrh/reconciler/internal/report"
)

func newExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <results.csv>",
		Short: "Renders a reconciliation result CSV as a styled XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			csvPath := args[0]
			out := outPath
			if out == "" {
				out = strings.TrimSuffix(csvPath, ".csv") + ".xlsx"
			}
			if err := report.ExportXLSX(csvPath, out); err != nil {
				return err
			}
			a.logger.Info("workbook written", zap.String("path", out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output workbook path (default: input with .xlsx extension)")
	return cmd
}
