// file: cmd/serve.go
// version: 1.0.0
// guid: 82bc963b-314a-45ce-a3d8-089c1ccb9374

package cmd

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/library-catalog/internal/config"
	"github.com/jdfalk/library-catalog/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Start the HTTP API that resolves identifiers for scanner clients and exposes cache maintenance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.AppConfig.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		a, err := buildApp(contextOrBackground(cmd), config.AppConfig, -1)
		if err != nil {
			return err
		}
		defer a.Close()

		config.Publish(config.AppConfig)
		watchConfig()

		if config.AppConfig.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}

		fmt.Printf("Using cache: %s (%s)\n", config.AppConfig.CachePath, config.AppConfig.CacheBackend)
		fmt.Println("Starting library catalog server...")

		srv := server.NewServer(a.resolver, a.store)
		cfg := server.ServerConfig{
			Host:         config.AppConfig.Host,
			Port:         strconv.Itoa(config.AppConfig.Port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Override with command line flags if provided
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetString("port")
		}
		if cmd.Flags().Changed("host") {
			cfg.Host, _ = cmd.Flags().GetString("host")
		}
		if d, err := cmd.Flags().GetDuration("read-timeout"); err == nil && cmd.Flags().Changed("read-timeout") {
			cfg.ReadTimeout = d
		}
		if d, err := cmd.Flags().GetDuration("write-timeout"); err == nil && cmd.Flags().Changed("write-timeout") {
			cfg.WriteTimeout = d
		}
		if d, err := cmd.Flags().GetDuration("idle-timeout"); err == nil && cmd.Flags().Changed("idle-timeout") {
			cfg.IdleTimeout = d
		}

		return srv.Start(cfg)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "port to run the server on (default from server.port)")
	serveCmd.Flags().String("host", "", "host to bind the server to (default from server.host)")
	serveCmd.Flags().Duration("read-timeout", 15*time.Second, "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().Duration("write-timeout", 30*time.Second, "write timeout (e.g. 30s, 1m)")
	serveCmd.Flags().Duration("idle-timeout", 60*time.Second, "idle timeout (e.g. 60s, 2m)")
}

// watchConfig reloads settings when the config file changes. Settings read
// per request (basic auth, log level) take effect immediately; the cache
// backend and provider wiring need a restart.
func watchConfig() {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		reloadConfig(e.Name)
	})
	viper.WatchConfig()
	log.Printf("[INFO] Watching %s for changes", viper.ConfigFileUsed())
}

// reloadConfig builds and validates the new settings before publishing them,
// so handlers never observe a config that failed validation.
func reloadConfig(name string) {
	prev := config.Current()
	next := config.Load()
	if err := config.ApplyConfigFile(&next); err != nil {
		log.Printf("[WARN] %v", err)
	}
	if err := next.Validate(); err != nil {
		log.Printf("[WARN] Ignoring config change in %s: %v", name, err)
		return
	}
	config.Publish(next)
	setupLogging(next.LogLevel)
	if prev.CacheBackend != next.CacheBackend || prev.CachePath != next.CachePath {
		log.Printf("[WARN] Cache settings changed in %s; restart to apply", name)
	}
	log.Printf("[INFO] Reloaded configuration from %s", name)
}

// contextOrBackground guards commands invoked without ExecuteContext.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
