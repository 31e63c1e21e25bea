package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/landmark"
	"github.com/kozaktomas/facegate/internal/refcache/postgres"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <capture.json>...",
	Short: "Enroll an identity from landmark captures",
	Long: `Enroll an identity into the PostgreSQL enrollment database. All given
captures replace the identity's previous samples in one transaction;
partial updates are not possible. Three to five captures from slightly
different angles give the voting aggregation something to work with.

Examples:
  facegate enroll --id emp-042 --name "Jana Dvořáková" cap1.json cap2.json cap3.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("id", "", "Identity id (required)")
	enrollCmd.Flags().String("name", "", "Identity display name (required)")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	identityID := mustGetString(cmd, "id")
	identityName := mustGetString(cmd, "name")

	if identityID == "" || identityName == "" {
		return errors.New("--id and --name are required")
	}

	captures := make([]landmark.Set, 0, len(args))
	for _, path := range args {
		capture, err := readCapture(path)
		if err != nil {
			return err
		}
		if !capture.HasCore() {
			return fmt.Errorf("capture %s is missing core landmarks", path)
		}
		captures = append(captures, capture)
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := postgres.NewSampleRepository(pool)
	if err := repo.ReplaceIdentitySamples(ctx, identityID, identityName, captures); err != nil {
		return fmt.Errorf("enrollment failed: %w", err)
	}

	fmt.Printf("Enrolled %s (%s) with %d samples\n", identityName, identityID, len(captures))
	fmt.Println("Run 'facegate cache sync' to refresh the local snapshot")
	return nil
}
