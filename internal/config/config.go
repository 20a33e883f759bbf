// Package config loads the server configuration from
// ~/.mcp-base64/config.yaml, creating a default file on first run and
// optionally reloading it when it changes on disk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the tunable defaults for the conversion tools.
type Config struct {
	// DefaultWrapColumn is applied to encode output when the caller does
	// not pass wrap_column. Zero disables wrapping.
	DefaultWrapColumn int `yaml:"default_wrap_column"`
	// MaxInputSizeKB bounds acquired input. Zero means unbounded.
	MaxInputSizeKB int `yaml:"max_input_size_kb"`
	// CacheTTLMinutes controls how long memoised renderings are kept.
	CacheTTLMinutes int `yaml:"cache_ttl_minutes"`
	// AutoReload re-reads the config file when it changes on disk.
	AutoReload bool `yaml:"auto_reload"`
}

// Default returns the configuration written on first run.
func Default() Config {
	return Config{
		DefaultWrapColumn: 0,
		MaxInputSizeKB:    51200, // 50MB
		CacheTTLMinutes:   30,
		AutoReload:        false,
	}
}

var (
	mu      sync.RWMutex
	current = Default()
	once    sync.Once
)

// Init loads the configuration file, creating it with defaults if missing,
// and starts the auto-reload watcher when enabled. Load problems are
// logged and the defaults kept; a bad config file never stops the server.
func Init(logger *logrus.Logger) {
	once.Do(func() {
		path := Path()
		if err := load(path); err != nil {
			logger.WithError(err).WithField("path", path).Warn("Using default configuration")
			return
		}
		logger.WithField("path", path).Debug("Configuration loaded")

		if Get().AutoReload {
			go watch(path, logger)
		}
	})
}

// Get returns the current configuration.
func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Path returns the config file location, honouring the MCP_BASE64_CONFIG
// environment variable.
func Path() string {
	if custom := os.Getenv("MCP_BASE64_CONFIG"); custom != "" {
		return custom
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".mcp-base64", "config.yaml")
}

// MaxInputSizeBytes converts the configured limit to bytes.
func (c Config) MaxInputSizeBytes() int64 {
	return int64(c.MaxInputSizeKB) * 1024
}

func load(path string) error {
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	mu.Lock()
	current = cfg
	mu.Unlock()
	return nil
}

// ensureConfigFile writes the default configuration if no file exists yet.
func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}

// watch reloads the config whenever the file is written. Watcher failures
// only disable auto-reload; the loaded configuration stays in effect.
func watch(path string, logger *logrus.Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.WithError(err).Warn("Config auto-reload disabled: cannot create watcher")
		return
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file, which drops a
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.WithError(err).Warn("Config auto-reload disabled: cannot watch config directory")
		return
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := load(path); err != nil {
				logger.WithError(err).Warn("Config reload failed, keeping previous configuration")
				continue
			}
			logger.Info("Configuration reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.WithError(err).Debug("Config watcher error")
		}
	}
}
