package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/fit-screener/internal/report"
	"github.com/spigell/fit-screener/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Work with stored reports",
}

var reportExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored report as JSON or Markdown",
	Run: func(cmd *cobra.Command, _ []string) {
		exportReport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportExportCmd)

	reportExportCmd.Flags().String("fingerprint", "", "report fingerprint")
	reportExportCmd.Flags().StringP("format", "f", string(report.FormatMarkdown), "json or markdown")
	reportExportCmd.Flags().StringP("out", "o", "", "output file (default is stdout)")
	reportExportCmd.MarkFlagRequired("fingerprint")
}

func exportReport(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := setup()

	format, err := report.ParseFormat(flagString(cmd, "format"))
	if err != nil {
		logger.Fatal("parsing the format", zap.Error(err))
	}

	st, err := store.Open(ctx, config.Store)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer st.Close()

	cache, closeCache, err := openCache(ctx, config.Cache, st, logger)
	if err != nil {
		logger.Fatal("opening the report cache", zap.Error(err))
	}
	defer closeCache()

	fingerprint := flagString(cmd, "fingerprint")
	rep, ok, err := cache.Get(ctx, fingerprint)
	if err != nil {
		logger.Fatal("loading the report", zap.Error(err))
	}
	if !ok {
		logger.Fatal("loading the report", zap.Error(errors.New("report not found")), zap.String("fingerprint", fingerprint))
	}

	out := flagString(cmd, "out")
	if out == "" {
		if err := report.Write(os.Stdout, rep, format); err != nil {
			logger.Fatal("writing the report", zap.Error(err))
		}
		return
	}

	if err := exportToFile(rep, format, out); err != nil {
		logger.Fatal("writing the report", zap.Error(err))
	}
	logger.Info("report exported", zap.String("filename", out))
}
