// file: cmd/resolve.go
// version: 1.0.0
// guid: 584c06e3-6834-4164-a0c7-8d5cc0f48f96

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jdfalk/library-catalog/internal/config"
	"github.com/jdfalk/library-catalog/internal/metadata"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var resolveCmd = &cobra.Command{
	Use:   "resolve <identifier>",
	Short: "Resolve an ISBN into book metadata",
	Long: `Resolve a scanned or typed ISBN. Separators and whitespace are ignored.
The cache is consulted first; providers are only contacted on a miss.
Exits non-zero when no metadata is available.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		if err := checkOutputFormat(format); err != nil {
			return err
		}

		a, err := buildApp(contextOrBackground(cmd), config.AppConfig, 0)
		if err != nil {
			return err
		}
		defer a.Close()

		meta := a.resolver.Resolve(contextOrBackground(cmd), args[0])
		return printResult(cmd.OutOrStdout(), meta, format)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <title>",
	Short: "Look up the best metadata match for a title",
	Long:  `Search Google Books by title and print the best-scoring match. Title searches are not cached.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		if err := checkOutputFormat(format); err != nil {
			return err
		}

		a, err := buildApp(contextOrBackground(cmd), config.AppConfig, 0)
		if err != nil {
			return err
		}
		defer a.Close()

		meta := a.resolver.SearchByTitle(contextOrBackground(cmd), strings.Join(args, " "))
		return printResult(cmd.OutOrStdout(), meta, format)
	},
}

func init() {
	for _, c := range []*cobra.Command{resolveCmd, searchCmd} {
		c.Flags().StringP("output", "o", "text", "output format: text, json or yaml")
	}
}

func checkOutputFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (supported: text, json, yaml)", format)
	}
}

// printResult writes meta in the requested format, or returns
// errUnavailable when meta is nil.
func printResult(w io.Writer, meta *metadata.BookMetadata, format string) error {
	if meta == nil {
		return errUnavailable
	}
	switch format {
	case "json":
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		return enc.Close()
	default:
		printMetadataField(w, "Title", meta.Title)
		printMetadataField(w, "Authors", meta.Authors)
		printMetadataField(w, "Publisher", meta.Publisher)
		printMetadataField(w, "Published", meta.PublishedDate)
		printMetadataField(w, "Identifier", meta.Identifier)
		pages := ""
		if meta.PageCount > 0 {
			pages = strconv.Itoa(meta.PageCount)
		}
		printMetadataField(w, "Pages", pages)
		printMetadataField(w, "Categories", meta.Categories)
		printMetadataField(w, "Thumbnail", meta.Thumbnail)
		printMetadataField(w, "Description", truncateString(meta.Description, 300))
		printMetadataField(w, "Source", string(meta.Source))
		return nil
	}
}

func printMetadataField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-12s %s\n", label+":", formatMetadataValue(value))
}

func formatMetadataValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(empty)"
	}
	return value
}

// truncateString keeps at most max runes of in.
func truncateString(in string, max int) string {
	if utf8.RuneCountInString(in) <= max {
		return in
	}
	return string([]rune(in)[:max]) + "..."
}
