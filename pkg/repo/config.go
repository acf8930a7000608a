package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config stores repository-local settings read from .kiwi/config.toml.
type Config struct {
	Core CoreConfig `toml:"core"`
	Log  LogConfig  `toml:"log"`
}

// CoreConfig controls how the working tree is scanned.
type CoreConfig struct {
	// HiddenPrefix marks entries skipped by `add .` and status. An empty
	// prefix disables hidden-entry exclusion; the control directory is
	// always skipped.
	HiddenPrefix string `toml:"hidden_prefix"`
}

// LogConfig selects the CLI's diagnostic logger.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

// DefaultConfig returns the settings written by Init.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{HiddenPrefix: "."},
		Log:  LogConfig{Level: "warn", Format: "text"},
	}
}

func (r *Repo) configPath() string {
	return filepath.Join(r.KiwiDir, "config.toml")
}

// ReadConfig reads .kiwi/config.toml. Missing config, or keys missing from
// it, fall back to DefaultConfig.
func (r *Repo) ReadConfig() (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(r.configPath(), cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		r.logger().Warn("config: unknown keys", "keys", fmt.Sprint(undecoded))
	}
	return cfg, nil
}

// WriteConfig atomically writes .kiwi/config.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tmp, err := os.CreateTemp(r.KiwiDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}
