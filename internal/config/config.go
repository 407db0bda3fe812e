// Package config loads service configuration with layered precedence:
// runtime overrides > environment variables > config file > defaults.
package config

import "time"

// Config is the effective service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Slicer    SlicerConfig    `mapstructure:"slicer" yaml:"slicer"`
	Profiles  ProfilesConfig  `mapstructure:"profiles" yaml:"profiles"`
	Workspace WorkspaceConfig `mapstructure:"workspace" yaml:"workspace"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// MaxUploadBytes caps multipart upload size (models and profiles).
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// SlicerConfig configures the external slicing engine.
type SlicerConfig struct {
	// Binary is the path to the engine executable.
	Binary string `mapstructure:"binary" yaml:"binary"`

	// BundledProfilesDir is the engine installation's factory profile tree.
	BundledProfilesDir string `mapstructure:"bundled_profiles_dir" yaml:"bundled_profiles_dir"`

	// Display is the display server exported to the engine (DISPLAY).
	Display string `mapstructure:"display" yaml:"display"`

	// Timeout is the per-job wall-clock budget.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ProfilesConfig configures the on-disk profile repository.
type ProfilesConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// WorkspaceConfig configures the transient per-job workspace root.
type WorkspaceConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// LoggingConfig configures the service logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}
