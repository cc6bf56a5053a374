// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: config.go — startup configuration
//
// Purpose:
//   - Loads the JSON startup config with sonnet, the same drop-in fast JSON
//     codec syncharvester.go uses to decode JSON-RPC payloads, and applies
//     environment-variable overrides for container deployments.
//
// Notes:
//   - Config is read once at startup and never mutated at runtime (spec §6:
//     CAP/MAX_THREADS/RETIRE_BATCH/etc are start-time constants).
//
// ─────────────────────────────────────────────────────────────────────────────

package config

import (
	"os"
	"strconv"

	"github.com/sugawarayuuta/sonnet"

	"lfkv/constants"
)

// Config is the full set of process-start tunables.
type Config struct {
	ListenAddr           string `json:"listen_addr"`
	AdminAddr            string `json:"admin_addr"`
	AdminTokenHash       string `json:"admin_token_hash"`
	TableCapacity        int    `json:"table_capacity"`
	MaxThreads           int    `json:"max_threads"`
	RetireBatch          int    `json:"retire_batch"`
	PinWorkers           bool   `json:"pin_workers"`
	MetricsDBPath        string `json:"metrics_db_path"`
	MetricsFlushInterval int    `json:"metrics_flush_interval_ms"`
}

// Default returns a Config populated with constants package defaults.
func Default() Config {
	return Config{
		ListenAddr:           constants.DefaultListenAddr,
		AdminAddr:            constants.DefaultAdminAddr,
		TableCapacity:        constants.DefaultCapacity,
		MaxThreads:           constants.DefaultMaxThreads,
		RetireBatch:          constants.DefaultRetireBatch,
		PinWorkers:           false,
		MetricsDBPath:        "metrics.db",
		MetricsFlushInterval: constants.DefaultMetricsFlushIntervalMS,
	}
}

// Load reads path as JSON into a Config seeded with Default(), then applies
// any LFKV_* environment overrides on top. A missing file is not an error:
// Load falls back to Default() plus environment overrides, so a bare binary
// with no config file still boots.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, err
			}
		} else if err := sonnet.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LFKV_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("LFKV_ADMIN_ADDR"); v != "" {
		cfg.AdminAddr = v
	}
	if v := os.Getenv("LFKV_ADMIN_TOKEN_HASH"); v != "" {
		cfg.AdminTokenHash = v
	}
	if v := os.Getenv("LFKV_TABLE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TableCapacity = n
		}
	}
	if v := os.Getenv("LFKV_MAX_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxThreads = n
		}
	}
	if v := os.Getenv("LFKV_RETIRE_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RetireBatch = n
		}
	}
	if v := os.Getenv("LFKV_PIN_WORKERS"); v != "" {
		cfg.PinWorkers = v == "1" || v == "true"
	}
	if v := os.Getenv("LFKV_METRICS_DB_PATH"); v != "" {
		cfg.MetricsDBPath = v
	}
	if v := os.Getenv("LFKV_METRICS_FLUSH_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MetricsFlushInterval = n
		}
	}
}
