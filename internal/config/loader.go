package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const envPrefix = "ORCAWEB"

// Load builds the effective configuration.
//
// Precedence, highest first: runtime override maps, environment variables
// (ORCAWEB_* plus the legacy aliases ORCASLICER_BIN, PROFILES_DIR, TEMP_DIR
// and BUNDLED_PROFILES_DIR), an optional orcaslicer-web.yaml config file,
// built-in defaults.
func Load(ctx context.Context, overrides ...map[string]any) (*Config, error) {
	_ = ctx

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("orcaslicer-web")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/orcaslicer-web")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	// Runtime overrides win over everything else.
	for _, override := range overrides {
		for key, value := range flatten("", override) {
			v.Set(key, value)
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", "30s")
	// A slice response can be held open for the full engine budget.
	v.SetDefault("server.write_timeout", "330s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_upload_bytes", int64(100*1024*1024))

	v.SetDefault("slicer.binary", "/opt/orcaslicer/AppRun")
	v.SetDefault("slicer.bundled_profiles_dir", "/opt/orcaslicer/resources/profiles")
	v.SetDefault("slicer.display", ":99")
	v.SetDefault("slicer.timeout", "300s")

	v.SetDefault("profiles.dir", "/data/profiles")
	v.SetDefault("workspace.dir", "/tmp/slicing")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindLegacyEnv keeps the environment variable names the original
// deployment used working alongside the ORCAWEB_ prefixed ones.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("slicer.binary", "ORCAWEB_SLICER_BINARY", "ORCASLICER_BIN")
	_ = v.BindEnv("slicer.bundled_profiles_dir", "ORCAWEB_SLICER_BUNDLED_PROFILES_DIR", "BUNDLED_PROFILES_DIR")
	_ = v.BindEnv("profiles.dir", "ORCAWEB_PROFILES_DIR", "PROFILES_DIR")
	_ = v.BindEnv("workspace.dir", "ORCAWEB_WORKSPACE_DIR", "TEMP_DIR")
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Slicer.Timeout <= 0 {
		return fmt.Errorf("slicer timeout must be positive, got %s", cfg.Slicer.Timeout)
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", cfg.Server.MaxUploadBytes)
	}
	return nil
}

// flatten converts a nested override map into dotted viper keys.
func flatten(prefix string, in map[string]any) map[string]any {
	out := make(map[string]any)
	for key, value := range in {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range flatten(full, nested) {
				out[k] = v
			}
			continue
		}
		out[full] = value
	}
	return out
}
