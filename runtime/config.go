package runtime

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ExecMode selects where the socket transport expects its peers.
type ExecMode int

const (
	// ExecLocal means every peer binds to 127.0.0.1 (single-machine
	// testing/demo runs).
	ExecLocal ExecMode = iota
	// ExecRemote means peers are spread across STARTMPC_HOST_LIST.
	ExecRemote
)

// Config is the runtime's resolved command-line-plus-environment
// configuration, per spec.md §6.
type Config struct {
	Threads   int
	PFactor   int
	BatchSize int

	ExecMode  ExecMode
	HostCount int
	HostRank  int
	BasePort  int
	HostList  []string
}

// DefaultBatchSizeLAN and DefaultBatchSizeWAN are the batch_size
// defaults spec.md §6 assigns when the argument is omitted, tuned for
// each transport's relative round-trip cost.
const (
	DefaultBatchSizeLAN = -12
	DefaultBatchSizeWAN = -1
)

// ConfigFromArgs parses `program threads p_factor batch_size [extra...]`
// per spec.md §6, defaulting threads=1, p_factor=1 and batch_size to
// defaultBatchSize when fewer than three positional arguments are
// given, then layers the socket-backend environment variables on top.
func ConfigFromArgs(args []string, defaultBatchSize int) (Config, error) {
	cfg := Config{Threads: 1, PFactor: 1, BatchSize: defaultBatchSize}

	if len(args) >= 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return Config{}, fmt.Errorf("runtime: invalid threads %q: %w", args[0], err)
		}
		cfg.Threads = v
	}
	if len(args) >= 2 {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return Config{}, fmt.Errorf("runtime: invalid p_factor %q: %w", args[1], err)
		}
		cfg.PFactor = v
	}
	if len(args) >= 3 {
		v, err := strconv.Atoi(args[2])
		if err != nil {
			return Config{}, fmt.Errorf("runtime: invalid batch_size %q: %w", args[2], err)
		}
		cfg.BatchSize = v
	}

	if cfg.Threads < 1 {
		return Config{}, fmt.Errorf("runtime: threads must be >= 1, got %d", cfg.Threads)
	}
	if cfg.PFactor < 1 {
		return Config{}, fmt.Errorf("runtime: p_factor must be >= 1, got %d", cfg.PFactor)
	}

	if err := cfg.loadEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) loadEnv() error {
	if v := os.Getenv("STARTMPC_EXEC_MODE"); v != "" {
		mode, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("runtime: invalid STARTMPC_EXEC_MODE %q: %w", v, err)
		}
		cfg.ExecMode = ExecMode(mode)
	}
	if v := os.Getenv("STARTMPC_HOST_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("runtime: invalid STARTMPC_HOST_COUNT %q: %w", v, err)
		}
		cfg.HostCount = n
	}
	if v := os.Getenv("STARTMPC_HOST_RANK"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("runtime: invalid STARTMPC_HOST_RANK %q: %w", v, err)
		}
		cfg.HostRank = n
	}
	if v := os.Getenv("STARTMPC_BASE_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("runtime: invalid STARTMPC_BASE_PORT %q: %w", v, err)
		}
		cfg.BasePort = n
	}
	if v := os.Getenv("STARTMPC_HOST_LIST"); v != "" {
		cfg.HostList = strings.Split(v, ",")
	}
	if cfg.ExecMode == ExecRemote && len(cfg.HostList) == 0 {
		return fmt.Errorf("runtime: STARTMPC_EXEC_MODE=1 requires STARTMPC_HOST_LIST")
	}
	return nil
}

// PortRange returns the TCP port span the socket backend may use:
// base_port .. base_port + host_count^2 * threads, per spec.md §6.
func (cfg Config) PortRange() (low, high int) {
	span := cfg.HostCount * cfg.HostCount * cfg.Threads
	return cfg.BasePort, cfg.BasePort + span
}
