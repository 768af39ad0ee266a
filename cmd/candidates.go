package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/fit-screener/internal/store"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List the analysed candidates of a project, best fit first",
	Run: func(cmd *cobra.Command, _ []string) {
		listCandidates(cmd)
	},
}

func init() {
	rootCmd.AddCommand(candidatesCmd)

	candidatesCmd.Flags().StringP("project", "p", "", "project id or name")
	candidatesCmd.MarkFlagRequired("project")
}

func listCandidates(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := setup()

	st, err := store.Open(ctx, config.Store)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer st.Close()

	project, err := st.GetProject(ctx, flagString(cmd, "project"))
	if err != nil {
		logger.Fatal("looking up the project", zap.Error(err))
	}

	candidates, err := st.ListCandidates(ctx, project.ID)
	if err != nil {
		logger.Fatal("listing candidates", zap.Error(err))
	}

	logger.Debug("candidates loaded", zap.String("project", project.Name), zap.Int("count", len(candidates)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GITHUB\tNAME\tSCORE\tCONFIDENCE\tFINGERPRINT\tUPDATED")
	for _, c := range candidates {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\t%s\n",
			c.GitHubLogin, c.Name, c.FitScore, c.Confidence, shortFingerprint(c.Fingerprint), c.UpdatedAt)
	}
	w.Flush()
}
