// file: internal/config/persistence.go
// version: 2.0.0
// guid: 9c8d7e6f-5a4b-3c2d-1e0f-9a8b7c6d5e4f

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFilePath returns the path to the YAML config file next to the cache.
func ConfigFilePath() string {
	return configFilePathFor(&AppConfig)
}

func configFilePathFor(c *Config) string {
	if c.CachePath != "" && c.CacheBackend != "postgres" && c.CacheBackend != "memory" {
		return filepath.Join(filepath.Dir(c.CachePath), "config.yaml")
	}
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return ""
	}
	return filepath.Join(base, "library-catalog", "config.yaml")
}

// LoadConfigFromFile loads settings from the YAML config file as a fallback.
// File values only fill in settings that are still empty.
func LoadConfigFromFile() error {
	return ApplyConfigFile(&AppConfig)
}

// ApplyConfigFile fills empty settings in c from the YAML config file next
// to c's cache.
func ApplyConfigFile(c *Config) error {
	path := configFilePathFor(c)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig map[string]any
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		log.Printf("[WARN] Failed to parse config file %s: %v", path, err)
		return nil
	}

	applied := 0

	stringFallbacks := map[string]*string{
		"google_books_api_key":    &c.GoogleBooksAPIKey,
		"open_library_user_agent": &c.OpenLibraryUserAgent,
		"postgres_dsn":            &c.PostgresDSN,
		"basic_auth_username":     &c.BasicAuthUsername,
		"basic_auth_password":     &c.BasicAuthPassword,
	}
	for key, ptr := range stringFallbacks {
		if *ptr == "" {
			if val, ok := fileConfig[key].(string); ok && val != "" {
				*ptr = val
				applied++
				log.Printf("[INFO] Loaded %s from config file", key)
			}
		}
	}

	if !c.BasicAuthEnabled {
		if val, ok := fileConfig["basic_auth_enabled"].(bool); ok && val {
			c.BasicAuthEnabled = true
			applied++
			log.Printf("[INFO] Loaded basic_auth_enabled from config file")
		}
	}

	if applied > 0 {
		log.Printf("[INFO] Applied %d settings from config file %s", applied, path)
	}
	return nil
}

// SaveConfigToFile writes the current settings to the YAML config file.
// Secrets are stored in plaintext here; file permissions restrict access.
func SaveConfigToFile() (string, error) {
	path := ConfigFilePath()
	if path == "" {
		return "", fmt.Errorf("cannot determine config file path")
	}

	fileConfig := map[string]any{
		"cache_backend":                   AppConfig.CacheBackend,
		"cache_path":                      AppConfig.CachePath,
		"cache_ttl":                       AppConfig.CacheTTL.String(),
		"enable_sqlite3_i_know_the_risks": AppConfig.EnableSQLite,
		"debounce_window":                 AppConfig.DebounceWindow.String(),
		"max_retries":                     AppConfig.MaxRetries,
		"base_delay":                      AppConfig.BaseDelay.String(),
		"max_delay":                       AppConfig.MaxDelay.String(),
		"fetch_timeout":                   AppConfig.FetchTimeout.String(),
		"google_books_base_url":           AppConfig.GoogleBooksBaseURL,
		"open_library_base_url":           AppConfig.OpenLibraryBaseURL,
		"open_library_user_agent":         AppConfig.OpenLibraryUserAgent,
		"host":                            AppConfig.Host,
		"port":                            AppConfig.Port,
		"rate_limit_per_minute":           AppConfig.RateLimitPerMinute,
		"rate_limit_burst":                AppConfig.RateLimitBurst,
		"basic_auth_enabled":              AppConfig.BasicAuthEnabled,
		"log_level":                       AppConfig.LogLevel,
		"saved_at":                        time.Now().UTC().Format(time.RFC3339),
	}

	// Only write secrets if they're set
	if AppConfig.GoogleBooksAPIKey != "" {
		fileConfig["google_books_api_key"] = AppConfig.GoogleBooksAPIKey
	}
	if AppConfig.PostgresDSN != "" {
		fileConfig["postgres_dsn"] = AppConfig.PostgresDSN
	}
	if AppConfig.BasicAuthUsername != "" {
		fileConfig["basic_auth_username"] = AppConfig.BasicAuthUsername
	}
	if AppConfig.BasicAuthPassword != "" {
		fileConfig["basic_auth_password"] = AppConfig.BasicAuthPassword
	}

	data, err := yaml.Marshal(fileConfig)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("[INFO] Saved config to %s", path)
	return path, nil
}
