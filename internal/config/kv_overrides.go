package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "max_lines":
			if n, err := strconv.Atoi(val); err == nil && n >= 0 {
				cfg.MaxLines = n
			}
		case "spill_threshold":
			if n, err := strconv.ParseInt(val, 10, 64); err == nil && n >= 0 {
				cfg.SpillThreshold = n
			}
		case "spill_dir":
			cfg.SpillDir = val
		case "width":
			if n, err := strconv.Atoi(val); err == nil && n >= 0 {
				cfg.Width = n
			}
		}
	}
	return cfg
}
