// file: cmd/root.go
// version: 2.0.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/library-catalog/internal/config"
)

// EnvPrefix prefixes every environment override, e.g. CATALOG_SERVER_PORT.
const EnvPrefix = "CATALOG"

var cfgFile string
var cacheBackend string
var cachePath string
var enableSQLite bool
var logLevel string

// errUnavailable makes the process exit non-zero when no metadata was found.
var errUnavailable = errors.New("metadata unavailable")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "library-catalog",
	Short: "Resolve book identifiers into catalog metadata",
	Long: `Library Catalog turns scanned or typed ISBNs into book metadata.

Lookups go to a persistent cache first, then to Google Books and Open
Library in that order. Results are cached so repeat scans never touch
the network.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.library-catalog.yaml)")
	rootCmd.PersistentFlags().StringVar(&cacheBackend, "cache-backend", "pebble", "cache backend: pebble (default), sqlite, postgres or memory")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache-path", "", "path to the cache (default: user cache dir)")
	rootCmd.PersistentFlags().BoolVar(&enableSQLite, "enable-sqlite3-i-know-the-risks", false, "enable the SQLite3 cache backend (WARNING: cross-compilation issues, PebbleDB recommended)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	_ = viper.BindPFlag("cache.backend", rootCmd.PersistentFlags().Lookup("cache-backend"))
	_ = viper.BindPFlag("cache.path", rootCmd.PersistentFlags().Lookup("cache-path"))
	_ = viper.BindPFlag("enable_sqlite3_i_know_the_risks", rootCmd.PersistentFlags().Lookup("enable-sqlite3-i-know-the-risks"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(warmCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	// A .env file in the working directory supplies environment overrides.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] Failed to load .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".library-catalog")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	config.InitConfig()
	if err := config.LoadConfigFromFile(); err != nil {
		log.Printf("[WARN] %v", err)
	}
	setupLogging(config.AppConfig.LogLevel)
}
