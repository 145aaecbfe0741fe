// Package config provides centralized configuration management for the
// appraisals service. Embedded defaults are overlaid by an optional user
// config file, then by APPRAISALS_* environment variables and finally by
// runtime overrides.
package config

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fulmenhq/gofulmen/appidentity"
	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/hayeswinckle/appraisals/internal/appid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var (
	// appConfig holds the current application configuration
	appConfig   *Config
	configMu    sync.RWMutex
	appIdentity *appidentity.Identity
)

// envAliases are short names kept alongside the dotted-path variables.
var envAliases = map[string]string{
	"HOST":         "server.host",
	"PORT":         "server.port",
	"LOG_LEVEL":    "logging.level",
	"LOG_PROFILE":  "logging.profile",
	"METRICS_PORT": "metrics.port",
}

// Load loads configuration from defaults, the user config file and the
// environment. Safe to call multiple times.
func Load(ctx context.Context, runtimeOverrides ...map[string]any) (*Config, error) {
	return LoadFile(ctx, "", runtimeOverrides...)
}

// LoadFile is Load with an explicit config file. An explicit file that cannot
// be read is an error; discovered user files are optional.
func LoadFile(ctx context.Context, path string, runtimeOverrides ...map[string]any) (*Config, error) {
	if appIdentity == nil {
		identity, err := appid.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load app identity: %w", err)
		}
		appIdentity = identity
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultsYAML)); err != nil {
		return nil, fmt.Errorf("failed to read embedded defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if found := findUserConfig(); found != "" {
		v.SetConfigFile(found)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", found, err)
		}
	}

	prefix := envPrefix()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for alias, key := range envAliases {
		if value, ok := os.LookupEnv(prefix + "_" + alias); ok && strings.TrimSpace(value) != "" {
			v.Set(key, value)
		}
	}

	for _, overrides := range runtimeOverrides {
		applyOverrides(v, "", overrides)
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setConfig(cfg)

	return cfg, nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// EnvPrefix returns the environment variable prefix without the trailing
// underscore, e.g. APPRAISALS.
func EnvPrefix() string {
	return envPrefix()
}

func envPrefix() string {
	prefix := "APPRAISALS"
	if appIdentity != nil && strings.TrimSpace(appIdentity.EnvPrefix) != "" {
		prefix = appIdentity.EnvPrefix
	}
	return strings.TrimSuffix(prefix, "_")
}

// applyOverrides sets nested override maps as dotted viper keys so they take
// precedence over env and file values.
func applyOverrides(v *viper.Viper, parent string, overrides map[string]any) {
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		full := key
		if parent != "" {
			full = parent + "." + key
		}
		if nested, ok := overrides[key].(map[string]any); ok {
			applyOverrides(v, full, nested)
			continue
		}
		v.Set(full, overrides[key])
	}
}

// findUserConfig returns the first existing user config file.
func findUserConfig() string {
	for _, candidate := range getUserConfigPaths() {
		if st, err := os.Stat(candidate); err == nil {
			if st.IsDir() {
				candidate = filepath.Join(candidate, "config.yaml")
				if _, err := os.Stat(candidate); err != nil {
					continue
				}
			}
			return candidate
		}
	}
	return ""
}

// getUserConfigPaths returns the list of user config file paths to check
// Uses gofulmen/config for XDG-compliant path discovery
func getUserConfigPaths() []string {
	configName, binaryName := appNamesForPaths()

	var legacyNames []string
	if binaryName != configName {
		legacyNames = append(legacyNames, binaryName)
	}

	paths := gfconfig.GetAppConfigPaths(configName, legacyNames...)
	return append(paths, filepath.Join("config", "config.yaml"))
}

// appNamesForPaths returns the config name and binary name from app identity,
// falling back to "appraisals" if not set.
func appNamesForPaths() (configName string, binaryName string) {
	configName = "appraisals"
	binaryName = "appraisals"
	if appIdentity == nil {
		return configName, binaryName
	}

	if strings.TrimSpace(appIdentity.ConfigName) != "" {
		configName = appIdentity.ConfigName
	}
	if strings.TrimSpace(appIdentity.BinaryName) != "" {
		binaryName = appIdentity.BinaryName
	}
	return configName, binaryName
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configName, _ := appNamesForPaths()
	configDir := gfconfig.GetAppConfigDir(configName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}
