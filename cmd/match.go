package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/facematch"
)

var matchCmd = &cobra.Command{
	Use:   "match <capture.json>",
	Short: "Verify a landmark capture against the local cache",
	Long: `Verify a single landmark capture against the reference cache snapshot.

The capture file is a JSON landmark set as produced by the detector
service. The exit code is 0 for a match and 2 for a rejection, so the
command can gate scripts directly.

Examples:
  # Verify a capture
  facegate match capture.json

  # Stricter threshold, JSON output for scripting
  facegate match capture.json --threshold 0.85 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Float64("threshold", 0, "Override the match threshold (0 = configured value)")
	matchCmd.Flags().Bool("json", false, "Output the full result as JSON")
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	jsonOutput := mustGetBool(cmd, "json")

	capture, err := readCapture(args[0])
	if err != nil {
		return err
	}

	cache, err := loadSnapshotCache(cfg)
	if err != nil {
		return err
	}

	params := cfg.Engine.Params()
	if t := mustGetFloat64(cmd, "threshold"); t > 0 {
		params.Threshold = t
	}
	scorer := facematch.NewScorer(params)

	result := scorer.Match(capture, cache.Candidates())

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	} else if result.Matched {
		fmt.Printf("MATCH  %s (%s)\n", result.IdentityName, result.IdentityID)
		fmt.Printf("  Confidence: %.4f\n", result.Confidence)
		fmt.Printf("  Landmarks:  %d matched\n", result.MatchedLandmarkCount)
		fmt.Printf("  Quality:    %.4f\n", result.QualityScore)
	} else {
		fmt.Println("NO MATCH")
		fmt.Printf("  Candidates evaluated: %d\n", result.CandidatesEvaluated)
		if result.BestCandidateName != "" {
			fmt.Printf("  Best candidate: %s (%.4f)\n", result.BestCandidateName, result.BestCandidateScore)
		}
	}

	if !result.Matched {
		os.Exit(2)
	}
	return nil
}
