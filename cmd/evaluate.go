package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/facematch"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <dir>",
	Short: "Run the matcher over a directory of capture files",
	Long: `Run the matcher over every capture JSON file in a directory and print
a per-file report. Useful for threshold calibration: point it at a
directory of captures with known subjects and inspect the scores.

Examples:
  # Evaluate all captures in a directory
  facegate evaluate ./captures

  # JSON output for further processing
  facegate evaluate ./captures --json`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().Bool("json", false, "Output results as JSON")
}

// EvaluationRow is the per-capture outcome of an evaluation run.
type EvaluationRow struct {
	File       string  `json:"file"`
	Matched    bool    `json:"matched"`
	Identity   string  `json:"identity,omitempty"`
	Confidence float64 `json:"confidence"`
	Quality    float64 `json:"quality"`
	Error      string  `json:"error,omitempty"`
}

// EvaluationReport summarizes an evaluation run.
type EvaluationReport struct {
	Captures   int             `json:"captures"`
	Matches    int             `json:"matches"`
	Rejections int             `json:"rejections"`
	Errors     int             `json:"errors"`
	DurationMs int64           `json:"duration_ms"`
	Rows       []EvaluationRow `json:"rows"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	jsonOutput := mustGetBool(cmd, "json")

	cache, err := loadSnapshotCache(cfg)
	if err != nil {
		return err
	}
	scorer := facematch.NewScorer(cfg.Engine.Params())

	files, err := filepath.Glob(filepath.Join(args[0], "*.json"))
	if err != nil {
		return fmt.Errorf("listing captures: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no capture files found in %s", args[0])
	}
	sort.Strings(files)

	var bar *progressbar.ProgressBar
	if !jsonOutput {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Evaluating captures"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		)
	}

	start := time.Now()
	report := EvaluationReport{Captures: len(files)}

	for _, file := range files {
		row := EvaluationRow{File: filepath.Base(file)}

		capture, err := readCapture(file)
		if err != nil {
			row.Error = err.Error()
			report.Errors++
		} else {
			result := scorer.Match(capture, cache.Candidates())
			row.Matched = result.Matched
			row.Identity = result.IdentityName
			row.Confidence = result.Confidence
			row.Quality = result.QualityScore
			if result.Matched {
				report.Matches++
			} else {
				report.Rejections++
				row.Identity = result.BestCandidateName
				row.Confidence = result.BestCandidateScore
			}
		}
		report.Rows = append(report.Rows, row)

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	report.DurationMs = time.Since(start).Milliseconds()

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tRESULT\tIDENTITY\tCONFIDENCE\tQUALITY")
	for _, row := range report.Rows {
		switch {
		case row.Error != "":
			fmt.Fprintf(w, "%s\tERROR\t%s\t\t\n", row.File, row.Error)
		case row.Matched:
			fmt.Fprintf(w, "%s\tMATCH\t%s\t%.4f\t%.4f\n", row.File, row.Identity, row.Confidence, row.Quality)
		default:
			fmt.Fprintf(w, "%s\tno match\t%s\t%.4f\t%.4f\n", row.File, row.Identity, row.Confidence, row.Quality)
		}
	}
	w.Flush()

	fmt.Printf("\n%d captures, %d matches, %d rejections, %d errors in %dms\n",
		report.Captures, report.Matches, report.Rejections, report.Errors, report.DurationMs)
	return nil
}
