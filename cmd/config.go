// file: cmd/config.go
// version: 1.0.0
// guid: e88a1e05-8e1e-4a69-893c-2e54370426e0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jdfalk/library-catalog/internal/config"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Show, validate or save the effective configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfig(cmd.OutOrStdout(), config.AppConfig)
		},
	}

	configValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.AppConfig.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid.")
			return nil
		},
	}

	configSaveCmd = &cobra.Command{
		Use:   "save",
		Short: "Write the effective configuration next to the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.SaveConfigToFile()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved configuration to %s\n", path)
			return nil
		},
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configSaveCmd)
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

func printConfig(w io.Writer, c config.Config) error {
	view := map[string]any{
		"cache": map[string]any{
			"backend":      c.CacheBackend,
			"path":         c.CachePath,
			"ttl":          c.CacheTTL.String(),
			"postgres_dsn": maskSecret(c.PostgresDSN),
		},
		"enable_sqlite3_i_know_the_risks": c.EnableSQLite,
		"resolver": map[string]any{
			"debounce_window": c.DebounceWindow.String(),
		},
		"retry": map[string]any{
			"max_retries": c.MaxRetries,
			"base_delay":  c.BaseDelay.String(),
			"max_delay":   c.MaxDelay.String(),
		},
		"fetch": map[string]any{
			"timeout": c.FetchTimeout.String(),
		},
		"providers": map[string]any{
			"google_books": map[string]any{
				"base_url": c.GoogleBooksBaseURL,
				"api_key":  maskSecret(c.GoogleBooksAPIKey),
			},
			"open_library": map[string]any{
				"base_url":            c.OpenLibraryBaseURL,
				"user_agent":          c.OpenLibraryUserAgent,
				"requests_per_second": c.OpenLibraryRequestsPerSecond,
			},
		},
		"server": map[string]any{
			"host":                  c.Host,
			"port":                  c.Port,
			"rate_limit_per_minute": c.RateLimitPerMinute,
			"rate_limit_burst":      c.RateLimitBurst,
		},
		"basic_auth_enabled":  c.BasicAuthEnabled,
		"basic_auth_username": c.BasicAuthUsername,
		"basic_auth_password": maskSecret(c.BasicAuthPassword),
		"log_level":           c.LogLevel,
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
