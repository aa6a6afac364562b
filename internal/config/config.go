package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the only persisted config file schema.
type Config struct {
	MaxLines       int    `toml:"max_lines"`       // scrollback cap; 0 = unbounded
	SpillThreshold int64  `toml:"spill_threshold"` // resident bytes before spilling
	SpillDir       string `toml:"spill_dir"`
	Width          int    `toml:"width"` // terminal columns; 0 = detect
	Source         string `toml:"-"`
}

func Default() Config {
	return Config{
		MaxLines: 10000,
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".scrollkeep", "config.toml")
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	return applyEnv(cfg), nil
}

// applyEnv 环境变量优先于配置文件。
func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv("SCROLLKEEP_SPILL_DIR")); env != "" {
		cfg.SpillDir = env
	}
	if env := strings.TrimSpace(os.Getenv("SCROLLKEEP_MAX_LINES")); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n >= 0 {
			cfg.MaxLines = n
		}
	}
	return cfg
}
