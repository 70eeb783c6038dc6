// file: cmd/cache.go
// version: 1.0.0
// guid: c8f6a0d4-2a8b-48cf-9d08-02cc9915d9fc

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jdfalk/library-catalog/internal/cache"
	"github.com/jdfalk/library-catalog/internal/config"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the metadata cache",
	}

	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry count, size and oldest entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(contextOrBackground(cmd), config.AppConfig)
			if err != nil {
				return err
			}
			defer store.Close()
			printStats(cmd.OutOrStdout(), store.Stats(contextOrBackground(cmd)))
			return nil
		},
	}

	cacheClearExpiredCmd = &cobra.Command{
		Use:   "clear-expired",
		Short: "Remove entries older than the TTL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl := config.AppConfig.CacheTTL
			if cmd.Flags().Changed("ttl") {
				ttl, _ = cmd.Flags().GetDuration("ttl")
			}
			if ttl < 0 {
				return errors.New("ttl must not be negative")
			}
			store, err := openStore(contextOrBackground(cmd), config.AppConfig)
			if err != nil {
				return err
			}
			defer store.Close()
			removed := store.ClearExpired(contextOrBackground(cmd), ttl)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries\n", removed)
			return nil
		},
	}

	cacheClearAllCmd = &cobra.Command{
		Use:   "clear-all",
		Short: "Remove every cached entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("yes")
			if !force {
				ok, err := promptYesNo(cmd.InOrStdin(), cmd.OutOrStdout(), "Remove every cached entry")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			store, err := openStore(contextOrBackground(cmd), config.AppConfig)
			if err != nil {
				return err
			}
			defer store.Close()
			removed := store.ClearAll(contextOrBackground(cmd))
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", removed)
			return nil
		},
	}

	cacheInspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Show raw cache keys and values",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			prefix, _ := cmd.Flags().GetString("prefix")
			if limit <= 0 {
				return errors.New("limit must be positive")
			}
			if err := config.AppConfig.Validate(); err != nil {
				return err
			}
			backend, err := openBackend(contextOrBackground(cmd), config.AppConfig)
			if err != nil {
				return err
			}
			defer backend.Close()
			return inspectBackend(contextOrBackground(cmd), cmd.OutOrStdout(), backend, prefix, limit)
		},
	}
)

func init() {
	cacheClearExpiredCmd.Flags().Duration("ttl", 0, "age after which entries are removed (default from cache.ttl)")
	cacheClearAllCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	cacheInspectCmd.Flags().Int("limit", 5, "Number of records to display")
	cacheInspectCmd.Flags().String("prefix", cache.KeyPrefix, "Key prefix to inspect")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearExpiredCmd)
	cacheCmd.AddCommand(cacheClearAllCmd)
	cacheCmd.AddCommand(cacheInspectCmd)
}

func printStats(w io.Writer, st cache.Stats) {
	fmt.Fprintf(w, "Entries:      %d\n", st.Count)
	fmt.Fprintf(w, "Total size:   %d bytes\n", st.TotalSizeBytes)
	if st.OldestEntry != nil {
		fmt.Fprintf(w, "Oldest entry: %s\n", st.OldestEntry.Format(time.RFC3339))
	} else {
		fmt.Fprintln(w, "Oldest entry: (none)")
	}
}

// errStopScan ends an inspection once limit entries were printed.
var errStopScan = errors.New("stop scan")

func inspectBackend(ctx context.Context, w io.Writer, backend cache.Backend, prefix string, limit int) error {
	count := 0
	err := backend.Scan(ctx, prefix, func(key string, val []byte) error {
		fmt.Fprintf(w, "Key: %s\n", key)
		fmt.Fprintf(w, "Value length: %d bytes\n", len(val))
		fmt.Fprintf(w, "Value preview: %s\n", truncateString(string(val), 500))
		fmt.Fprintln(w, "---")
		count++
		if count >= limit {
			return errStopScan
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return fmt.Errorf("scan error: %w", err)
	}
	if count == 0 {
		fmt.Fprintln(w, "No keys matched the requested prefix.")
	}
	return nil
}

func promptYesNo(in io.Reader, out io.Writer, action string) (bool, error) {
	fmt.Fprintf(out, "%s? Type 'yes' to confirm: ", action)
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes", nil
}
