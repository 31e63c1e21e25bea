package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/config"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "List and look up enrolled identities",
}

var identitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List identities in the local cache snapshot",
	RunE:  runIdentitiesList,
}

var identitiesFindCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Look up an identity id by display name",
	Long: `Look up an enrolled identity by display name. Matching ignores case,
diacritics and dashes, so "jana dvorakova" finds "Jana Dvořáková".

Examples:
  facegate identities find "Jana Dvořáková"
  facegate identities find "jana dvorakova"`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentitiesFind,
}

func init() {
	rootCmd.AddCommand(identitiesCmd)
	identitiesCmd.AddCommand(identitiesListCmd)
	identitiesCmd.AddCommand(identitiesFindCmd)
}

func runIdentitiesList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	cache, err := loadSnapshotCache(cfg)
	if err != nil {
		return err
	}

	type row struct {
		name    string
		samples int
	}
	byID := make(map[string]*row)
	for _, s := range cache.Samples() {
		r, ok := byID[s.IdentityID]
		if !ok {
			r = &row{name: s.IdentityName}
			byID[s.IdentityID] = r
		}
		r.samples++
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSAMPLES")
	for _, id := range ids {
		fmt.Fprintf(w, "%s\t%s\t%d\n", id, byID[id].name, byID[id].samples)
	}
	w.Flush()

	fmt.Printf("\n%d identities, %d samples (cache version %d)\n",
		cache.IdentityCount(), cache.SampleCount(), cache.Version())
	return nil
}

func runIdentitiesFind(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	cache, err := loadSnapshotCache(cfg)
	if err != nil {
		return err
	}

	id, displayName, ok := cache.FindIdentityByName(args[0])
	if !ok {
		fmt.Printf("No identity matching %q\n", args[0])
		os.Exit(2)
	}

	fmt.Printf("%s\t%s\n", id, displayName)
	return nil
}
