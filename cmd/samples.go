package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/refcache/postgres"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Enrollment sample inspection commands",
}

var samplesSimilarCmd = &cobra.Command{
	Use:   "similar <capture.json>",
	Short: "Find enrolled samples geometrically closest to a capture",
	Long: `Find the enrolled samples whose geometric signature is closest to the
given capture, using the pgvector index. Useful for spotting duplicate
or conflicting enrollments before they cause misidentification.

Examples:
  facegate samples similar capture.json
  facegate samples similar capture.json --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runSamplesSimilar,
}

func init() {
	rootCmd.AddCommand(samplesCmd)
	samplesCmd.AddCommand(samplesSimilarCmd)

	samplesSimilarCmd.Flags().Int("limit", 10, "Maximum number of results")
}

func runSamplesSimilar(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	limit := mustGetInt(cmd, "limit")

	capture, err := readCapture(args[0])
	if err != nil {
		return err
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := postgres.NewSampleRepository(pool)
	results, err := repo.FindSimilar(ctx, capture, limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No enrolled samples found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SAMPLE\tIDENTITY\tNAME\tDISTANCE")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\n", r.SampleID, r.IdentityID, r.IdentityName, r.Distance)
	}
	w.Flush()
	return nil
}
