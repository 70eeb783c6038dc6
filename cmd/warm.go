// file: cmd/warm.go
// version: 1.0.0
// guid: 2ae22cbb-c33c-4759-9829-5abcfb661c0a

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jdfalk/library-catalog/internal/config"
	"github.com/jdfalk/library-catalog/internal/isbn"
	"github.com/jdfalk/library-catalog/internal/metadata"
)

// warmSummary counts the outcome of a warm run.
type warmSummary struct {
	Total       int
	Resolved    int
	Invalid     int
	Unavailable int
	Missing     []string
}

var warmCmd = &cobra.Command{
	Use:   "warm <file>",
	Short: "Pre-fill the cache from a list of identifiers",
	Long: `Read one identifier per line and resolve each, so later scans are served
from the cache. Blank lines and lines starting with # are skipped. Use - to
read from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open identifier list: %w", err)
			}
			defer f.Close()
			in = f
		}

		ids, err := readIdentifiers(in)
		if err != nil {
			return err
		}

		// Every line is a distinct lookup, so debouncing is disabled.
		a, err := buildApp(contextOrBackground(cmd), config.AppConfig, 0)
		if err != nil {
			return err
		}
		defer a.Close()

		quiet, _ := cmd.Flags().GetBool("quiet")
		out := cmd.ErrOrStderr()
		if quiet {
			out = io.Discard
		}
		bar := progressbar.NewOptions(len(ids),
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("Resolving"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		summary := warmIdentifiers(contextOrBackground(cmd), a.resolver.Resolve, ids, func() { _ = bar.Add(1) })
		_ = bar.Finish()

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Processed %d identifiers: %d resolved, %d unavailable, %d invalid\n",
			summary.Total, summary.Resolved, summary.Unavailable, summary.Invalid)
		for _, id := range summary.Missing {
			fmt.Fprintf(w, "  missing: %s\n", id)
		}
		return nil
	},
}

func init() {
	warmCmd.Flags().BoolP("quiet", "q", false, "hide the progress bar")
}

func readIdentifiers(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read identifier list: %w", err)
	}
	return ids, nil
}

// warmIdentifiers resolves each id in order and stops early when ctx is
// cancelled.
func warmIdentifiers(ctx context.Context, resolve func(context.Context, string) *metadata.BookMetadata,
	ids []string, tick func()) warmSummary {
	var s warmSummary
	for _, raw := range ids {
		if ctx.Err() != nil {
			break
		}
		s.Total++
		switch {
		case !isbn.IsValid(raw):
			s.Invalid++
		case resolve(ctx, raw) != nil:
			s.Resolved++
		default:
			s.Unavailable++
			s.Missing = append(s.Missing, raw)
		}
		tick()
	}
	return s
}
