// Package config loads the prover's environment-variable configuration
// surface (spec.md §6): a single fail-fast loader returning a flat
// struct, validated with fmt.Errorf rather than a schema library.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/exitwatch/prover/internal/domain"
)

// Config holds every key spec.md §6 names.
type Config struct {
	ChainID  uint64
	ForkName string

	ELRPCURLs []string
	CLAPIURLs []string

	ELRetryDelay      time.Duration
	ELResponseTimeout time.Duration
	ELMaxRetries      int
	CLRetryDelay      time.Duration
	CLResponseTimeout time.Duration
	CLMaxRetries      int

	LidoLocatorAddress [20]byte

	TxSignerPrivateKey string // empty means emulation-only

	TxMinGasPriorityFee       uint64
	TxMaxGasPriorityFee       uint64
	TxGasPriorityFeePercentile float64

	TxGasFeeHistoryDays       uint64
	TxGasFeeHistoryPercentile float64

	TxGasLimit uint64

	ValidatorBatchSize      int
	MaxTransactionSizeBytes int

	TxMiningWaitingTimeout time.Duration
	TxConfirmations        uint64

	StartRoot         *domain.Root
	StartSlot         *domain.Slot
	StartEpoch        *domain.Epoch
	StartLookbackDays uint64

	DaemonSleepInterval time.Duration
	DryRun              bool

	HTTPPort int
}

const (
	defaultDaemonSleepInterval = 5 * time.Minute
	minDaemonSleepInterval     = 10 * time.Second
)

// Load reads Config from the environment, failing fast on any missing or
// malformed required value.
func Load() (*Config, error) {
	var cfg Config
	var err error

	if cfg.ChainID, err = requiredUint("CHAIN_ID"); err != nil {
		return nil, err
	}
	cfg.ForkName = strings.TrimSpace(os.Getenv("FORK_NAME"))
	if cfg.ForkName == "" {
		return nil, fmt.Errorf("FORK_NAME is required")
	}

	if cfg.ELRPCURLs, err = requiredList("EL_RPC_URLS"); err != nil {
		return nil, err
	}
	if cfg.CLAPIURLs, err = requiredList("CL_API_URLS"); err != nil {
		return nil, err
	}

	cfg.ELRetryDelay = optionalDurationMs("EL_RETRY_DELAY_MS", 500*time.Millisecond)
	cfg.ELResponseTimeout = optionalDurationMs("EL_RESPONSE_TIMEOUT_MS", 10*time.Second)
	cfg.ELMaxRetries = optionalInt("EL_MAX_RETRIES", 3)
	cfg.CLRetryDelay = optionalDurationMs("CL_RETRY_DELAY_MS", 500*time.Millisecond)
	cfg.CLResponseTimeout = optionalDurationMs("CL_RESPONSE_TIMEOUT_MS", 10*time.Second)
	cfg.CLMaxRetries = optionalInt("CL_MAX_RETRIES", 3)

	locator, err := requiredAddress("LIDO_LOCATOR_ADDRESS")
	if err != nil {
		return nil, err
	}
	cfg.LidoLocatorAddress = locator

	cfg.TxSignerPrivateKey = strings.TrimSpace(os.Getenv("TX_SIGNER_PRIVATE_KEY"))

	cfg.TxMinGasPriorityFee = uint64(optionalInt("TX_MIN_GAS_PRIORITY_FEE", 0))
	cfg.TxMaxGasPriorityFee = uint64(optionalInt("TX_MAX_GAS_PRIORITY_FEE", 2_000_000_000))
	cfg.TxGasPriorityFeePercentile = optionalFloat("TX_GAS_PRIORITY_FEE_PERCENTILE", 50)

	cfg.TxGasFeeHistoryDays = uint64(optionalInt("TX_GAS_FEE_HISTORY_DAYS", 3))
	cfg.TxGasFeeHistoryPercentile = optionalFloat("TX_GAS_FEE_HISTORY_PERCENTILE", 30)

	if cfg.TxGasLimit, err = requiredUint("TX_GAS_LIMIT"); err != nil {
		return nil, err
	}

	cfg.ValidatorBatchSize = optionalInt("VALIDATOR_BATCH_SIZE", 50)
	if cfg.ValidatorBatchSize <= 0 {
		return nil, fmt.Errorf("VALIDATOR_BATCH_SIZE must be positive")
	}
	cfg.MaxTransactionSizeBytes = optionalInt("MAX_TRANSACTION_SIZE_BYTES", 100_000)

	cfg.TxMiningWaitingTimeout = optionalDurationMs("TX_MINING_WAITING_TIMEOUT_MS", 3*time.Minute)
	cfg.TxConfirmations = uint64(optionalInt("TX_CONFIRMATIONS", 1))

	if err := cfg.loadBootstrap(); err != nil {
		return nil, err
	}
	cfg.StartLookbackDays = uint64(optionalInt("START_LOOKBACK_DAYS", 7))

	sleepMs := optionalInt("DAEMON_SLEEP_INTERVAL_MS", int(defaultDaemonSleepInterval/time.Millisecond))
	cfg.DaemonSleepInterval = time.Duration(sleepMs) * time.Millisecond
	if cfg.DaemonSleepInterval < minDaemonSleepInterval {
		return nil, fmt.Errorf("DAEMON_SLEEP_INTERVAL_MS must be at least %s", minDaemonSleepInterval)
	}

	cfg.DryRun = optionalBool("DRY_RUN", false)
	cfg.HTTPPort = optionalInt("HTTP_PORT", 9090)

	return &cfg, nil
}

// loadBootstrap parses at most one of START_ROOT / START_SLOT / START_EPOCH
// (spec.md §6); all three absent means the lookback window is used.
func (cfg *Config) loadBootstrap() error {
	if v := strings.TrimSpace(os.Getenv("START_ROOT")); v != "" {
		root, err := domain.ParseRoot(v)
		if err != nil {
			return fmt.Errorf("invalid START_ROOT %q: %w", v, err)
		}
		cfg.StartRoot = &root
		return nil
	}
	if v := strings.TrimSpace(os.Getenv("START_SLOT")); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid START_SLOT %q: %w", v, err)
		}
		slot := domain.Slot(n)
		cfg.StartSlot = &slot
		return nil
	}
	if v := strings.TrimSpace(os.Getenv("START_EPOCH")); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid START_EPOCH %q: %w", v, err)
		}
		epoch := domain.Epoch(n)
		cfg.StartEpoch = &epoch
		return nil
	}
	return nil
}

func requiredUint(key string) (uint64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func requiredList(key string) ([]string, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil, fmt.Errorf("%s is required (comma-separated list)", key)
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no valid entries parsed from %s", key)
	}
	return out, nil
}

func requiredAddress(key string) ([20]byte, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return [20]byte{}, fmt.Errorf("%s is required", key)
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(v, "0x"), "0X")
	b, err := hex.DecodeString(trimmed)
	if err != nil || len(b) != 20 {
		return [20]byte{}, fmt.Errorf("invalid %s %q: expected a 20-byte hex address", key, v)
	}
	var addr [20]byte
	copy(addr[:], b)
	return addr, nil
}

func optionalInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func optionalFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func optionalBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func optionalDurationMs(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(n) * time.Millisecond
}
