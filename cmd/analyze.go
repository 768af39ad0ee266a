package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/fit-screener/internal/document"
	"github.com/spigell/fit-screener/internal/report"
	"github.com/spigell/fit-screener/internal/scoring"
	"github.com/spigell/fit-screener/internal/screening"
	"github.com/spigell/fit-screener/internal/store"
)

const (
	PromptExportJSON     = "Export JSON"
	PromptExportMarkdown = "Export Markdown"
	PromptDone           = "Done"
)

var errExit = errors.New("exit requested")

var analyzePrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptExportJSON, PromptExportMarkdown, PromptDone},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a GitHub user against a project",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("project", "p", "", "project id or name")
	analyzeCmd.Flags().StringP("github", "g", "", "GitHub login of the candidate")
	analyzeCmd.Flags().StringP("resume", "r", "", "resume file (pdf or text)")
	analyzeCmd.Flags().StringP("linkedin", "l", "", "LinkedIn profile export (pdf or text), optional")
	analyzeCmd.Flags().Bool("reanalyze", false, "ignore the cached report and analyse again")
	analyzeCmd.Flags().BoolP("yes", "y", false, "do not ask what to do with the report")
	analyzeCmd.Flags().StringP("out-dir", "o", ".", "directory for exported reports")

	for _, name := range []string{"project", "github", "resume"} {
		analyzeCmd.MarkFlagRequired(name)
	}
}

func analyze(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := setup()

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

	screener, err := newScreener(ctx, config, st, cache, logger)
	if err != nil {
		var cfgErr *scoring.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.Fatal("invalid scoring configuration", zap.String("field", cfgErr.Field), zap.Error(err))
		}
		logger.Fatal("building the screener", zap.Error(err))
	}

	project, err := st.GetProject(ctx, flagString(cmd, "project"))
	if err != nil {
		logger.Fatal("looking up the project", zap.Error(err))
	}

	resume, err := document.ReadFile(flagString(cmd, "resume"))
	if err != nil {
		logger.Fatal("reading the resume", zap.Error(err))
	}

	req := screening.Request{
		Project:     project,
		GitHubLogin: flagString(cmd, "github"),
		Resume:      resume,
		Reanalyze:   flagBool(cmd, "reanalyze"),
	}

	if path := flagString(cmd, "linkedin"); path != "" {
		linkedin, err := document.ReadFile(path)
		if err != nil {
			// LinkedIn is optional; analyse without it.
			logger.Warn("skipping the linkedin export", zap.String("path", path), zap.Error(err))
		} else {
			req.LinkedIn, req.HasLinkedIn = linkedin, true
		}
	}

	logger.Info("starting the analysis",
		zap.String("version", version),
		zap.String("project", project.Name),
		zap.String("model", screener.Model()),
	)

	result, err := screener.Analyze(ctx, req)
	if err != nil {
		logger.Fatal("analysis failed", zap.Error(err))
	}

	rep := result.Report
	logger.Info("fit score",
		zap.String("candidate", rep.GitHubLogin),
		zap.Float64("base", rep.Breakdown.Base),
		zap.Int("adjustment", rep.Score.Adjustment),
		zap.Float64("final", rep.FinalScore()),
		zap.String("confidence", string(rep.Confidence())),
		zap.Bool("cached", result.Cached),
		zap.String("fingerprint", rep.Fingerprint),
	)

	if flagBool(cmd, "yes") {
		return
	}

	outDir := flagString(cmd, "out-dir")
	for {
		_, action, err := analyzePrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, rep, outDir, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, rep *report.Report, outDir string, logger *zap.Logger) error {
	switch action {
	case PromptExportJSON:
		return exportToDir(rep, report.FormatJSON, outDir, logger)
	case PromptExportMarkdown:
		return exportToDir(rep, report.FormatMarkdown, outDir, logger)
	case PromptDone:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func exportToDir(rep *report.Report, format report.Format, dir string, logger *zap.Logger) error {
	name := fmt.Sprintf("%s-%s%s", rep.GitHubLogin, shortFingerprint(rep.Fingerprint), format.Extension())
	path := filepath.Join(dir, name)
	if err := exportToFile(rep, format, path); err != nil {
		return err
	}
	logger.Info("report exported", zap.String("filename", path))
	return nil
}

func exportToFile(rep *report.Report, format report.Format, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := report.Write(f, rep, format); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}
