package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/fit-screener/internal/document"
	"github.com/spigell/fit-screener/internal/store"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage hiring projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project from a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		createProject(cmd)
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Run: func(_ *cobra.Command, _ []string) {
		listProjects()
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd, projectListCmd)

	projectCreateCmd.Flags().StringP("name", "n", "", "project name")
	projectCreateCmd.Flags().StringP("job-file", "f", "", "job description file (pdf or text)")
	projectCreateCmd.MarkFlagRequired("name")
	projectCreateCmd.MarkFlagRequired("job-file")
}

func createProject(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := setup()

	jd, err := document.ReadFile(flagString(cmd, "job-file"))
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}

	st, err := store.Open(ctx, config.Store)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer st.Close()

	project, err := st.CreateProject(ctx, store.NewProject{
		Name:           strings.TrimSpace(flagString(cmd, "name")),
		JobDescription: jd,
	})
	if err != nil {
		logger.Fatal("creating the project", zap.Error(err))
	}

	logger.Info("project created", zap.String("id", project.ID), zap.String("name", project.Name))
}

func listProjects() {
	ctx := context.Background()
	logger, config := setup()

	st, err := store.Open(ctx, config.Store)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer st.Close()

	projects, err := st.ListProjects(ctx)
	if err != nil {
		logger.Fatal("listing projects", zap.Error(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.CreatedAt)
	}
	w.Flush()
}
