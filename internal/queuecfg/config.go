// Package queuecfg loads configuration for the queuebench driver.
// Settings are layered: defaults → queue-bench.hujson → environment variables (env vars win).
// The hujson file format is JSON with comments and trailing commas, so a committed
// queue-bench.hujson can carry inline notes explaining a chosen shard count.
package queuecfg

import (
	"encoding/json"
	"log"
	"os"
	"strconv"

	"github.com/tailscale/hujson"
)

// BenchConfig holds the full queuebench driver configuration.
type BenchConfig struct {
	Variant         string `json:"variant"`
	Capacity        int    `json:"capacity"`
	Shards          int    `json:"shards"`
	OrderShards     int    `json:"orderShards"`
	Writers         int    `json:"writers"`
	Readers         int    `json:"readers"`
	DurationSeconds int    `json:"durationSeconds"`
	LogLevel        string `json:"logLevel"`
}

// ConfigFileName is the default bench config file name.
const ConfigFileName = "queue-bench.hujson"

// Load returns config with defaults overridden by queue-bench.hujson and env vars.
func Load() *BenchConfig {
	cfg := defaults()
	loadFile(cfg, ConfigFileName)
	loadEnv(cfg)
	return cfg
}

func defaults() *BenchConfig {
	return &BenchConfig{
		Variant:         "1lock",
		Capacity:        1024,
		Shards:          0, // 0 means resolveShardCount picks GOMAXPROCS-derived power of two
		OrderShards:     4,
		Writers:         4,
		Readers:         4,
		DurationSeconds: 10,
		LogLevel:        "info",
	}
}

func loadFile(cfg *BenchConfig, path string) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a fixed, operator-controlled config name
	if err != nil {
		return // file is optional
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		log.Printf("[queuecfg] warning: %s is not valid JSONC: %v", path, err)
		return
	}

	if err := json.Unmarshal(standardized, cfg); err != nil {
		log.Printf("[queuecfg] warning: could not parse %s: %v", path, err)
		return
	}

	log.Printf("[queuecfg] loaded %s", path)
}

func loadEnv(cfg *BenchConfig) {
	if v := os.Getenv("QUEUEBENCH_VARIANT"); v != "" {
		cfg.Variant = v
	}
	if v := os.Getenv("QUEUEBENCH_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Capacity = n
		}
	}
	if v := os.Getenv("QUEUEBENCH_SHARDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Shards = n
		}
	}
	if v := os.Getenv("QUEUEBENCH_ORDER_SHARDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.OrderShards = n
		}
	}
	if v := os.Getenv("QUEUEBENCH_WRITERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Writers = n
		}
	}
	if v := os.Getenv("QUEUEBENCH_READERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Readers = n
		}
	}
	if v := os.Getenv("QUEUEBENCH_DURATION_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DurationSeconds = n
		}
	}
	if v := os.Getenv("QUEUEBENCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// ValidVariants lists the variant names accepted by cmd/queuebench.
var ValidVariants = map[string]bool{
	"1lock":         true,
	"2lock":         true,
	"1lock-sharded": true,
	"2lock-sharded": true,
	"split-sharded": true,
}
