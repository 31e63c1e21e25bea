package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/detector"
	"github.com/kozaktomas/facegate/internal/facematch"
	"github.com/kozaktomas/facegate/internal/refcache"
	"github.com/kozaktomas/facegate/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the verification API server",
	Long: `Start the Facegate verification server.

The server loads the reference cache (from the disk snapshot when
present, otherwise from the enrollment database) and serves match
requests over HTTP. With an enrollment source configured the cache can
be refreshed at runtime without restarting.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().String("source", "", "Enrollment source for runtime refresh (postgres or legacy, empty = snapshot only)")
}

// initialCache loads the starting snapshot. A missing snapshot is fine
// when an enrollment source is configured; the first refresh fills it.
func initialCache(cfg *config.Config) *refcache.Cache {
	if cfg.Cache.SnapshotPath == "" {
		return nil
	}
	cache, err := refcache.LoadSnapshot(cfg.Cache.SnapshotPath)
	if err != nil {
		fmt.Printf("No usable cache snapshot: %v\n", err)
		return nil
	}
	fmt.Printf("Loaded cache snapshot: version %d, %d identities, %d samples\n",
		cache.Version(), cache.IdentityCount(), cache.SampleCount())
	return cache
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")
	source := mustGetString(cmd, "source")

	holder := refcache.NewHolder(initialCache(cfg))

	var refresher *refcache.Refresher
	if source != "" {
		provider, closer, err := newProvider(cfg, source)
		if err != nil {
			return err
		}
		defer closer.Close()
		refresher = refcache.NewRefresher(provider, holder, cfg.Cache.SnapshotPath)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		cache, refreshed, err := refresher.Refresh(ctx)
		cancel()
		if err != nil {
			if holder.Snapshot() == nil {
				return fmt.Errorf("initial cache load failed: %w", err)
			}
			fmt.Printf("Warning: initial refresh failed, serving from snapshot: %v\n", err)
		} else if refreshed {
			fmt.Printf("Refreshed cache to version %d (%d samples)\n", cache.Version(), cache.SampleCount())
		}
	}

	if holder.Snapshot() == nil {
		return fmt.Errorf("no reference cache available: configure FACEGATE_SNAPSHOT_PATH or --source")
	}

	var det detector.Detector
	if cfg.Detector.URL != "" {
		client, err := detector.NewClient(&cfg.Detector)
		if err != nil {
			return fmt.Errorf("detector setup failed: %w", err)
		}
		det = client
		fmt.Printf("Landmark detector: %s\n", cfg.Detector.URL)
	} else {
		fmt.Println("No landmark detector configured, image matching disabled")
	}

	scorer := facematch.NewScorer(cfg.Engine.Params())
	server := web.NewServer(cfg, host, port, scorer, holder, refresher, det)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Facegate API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
