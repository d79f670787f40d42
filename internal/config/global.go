// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"sync"
)

var (
	globalMu sync.Mutex
	// globalConfig caches the loaded configuration for the process lifetime.
	globalConfig *Config
	// configPath is the resolved path of the cached config, "" for defaults.
	configPath string

	// configFilePathOverride forces loading from a specific file (--config flag).
	configFilePathOverride string
	// configDirOverride allows tests to override the config directory.
	// This is necessary because os.UserHomeDir() doesn't reliably respect
	// the HOME environment variable on all platforms (e.g., macOS in CI).
	configDirOverride string
)

// Load returns the process-wide configuration, loading it on first call and
// caching the result. CLI handlers that need request-scoped loading should use
// a Provider instead.
func Load() (*Config, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: configFilePathOverride,
	})
	if err != nil {
		return nil, err
	}

	globalConfig = cfg
	configPath = path
	return cfg, nil
}

// GetConfigPath returns the path of the cached config file, "" when defaults
// are in effect or Load has not run yet.
func GetConfigPath() string {
	globalMu.Lock()
	defer globalMu.Unlock()
	return configPath
}

// SetConfigFilePathOverride sets a custom config file path (--config flag)
// and drops the cache so the next Load honors it.
func SetConfigFilePathOverride(path string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	configFilePathOverride = path
	globalConfig = nil
	configPath = ""
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing to bypass os.UserHomeDir() which
// doesn't reliably respect the HOME env var on all platforms (e.g., macOS in CI).
func SetConfigDirOverride(dir string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	configDirOverride = dir
	globalConfig = nil
	configPath = ""
}

// Reset clears overrides and the cache. Call from test cleanup to restore defaults.
func Reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	configFilePathOverride = ""
	configDirOverride = ""
	globalConfig = nil
	configPath = ""
}
