package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/refcache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Reference cache management commands",
	Long:  `Commands for managing the local reference cache snapshot.`,
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the on-disk cache snapshot",
	RunE:  runCacheStatus,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	cacheStatusCmd.Flags().Bool("json", false, "Output as JSON")
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	jsonOutput := mustGetBool(cmd, "json")

	if cfg.Cache.SnapshotPath == "" {
		return fmt.Errorf("FACEGATE_SNAPSHOT_PATH environment variable is required")
	}

	meta, err := refcache.ReadSnapshotMeta(cfg.Cache.SnapshotPath)
	if err != nil {
		return err
	}
	if meta == nil {
		fmt.Printf("No cache snapshot at %s\n", cfg.Cache.SnapshotPath)
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}

	fmt.Printf("Snapshot:   %s\n", cfg.Cache.SnapshotPath)
	fmt.Printf("Version:    %d\n", meta.Version)
	fmt.Printf("Identities: %d\n", meta.IdentityCount)
	fmt.Printf("Samples:    %d\n", meta.SampleCount)
	fmt.Printf("Saved at:   %s\n", meta.SavedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
