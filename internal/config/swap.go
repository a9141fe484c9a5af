package config

import (
	"errors"
	"strconv"
	"time"
)

// SwapConfig carries the execution knobs shared by all venues.
type SwapConfig struct {
	// DefaultSlippageBps applies only at the HTTP boundary when a request
	// omits slippage. Engine entry points always take it explicitly.
	DefaultSlippageBps uint16

	// MaxPriorityFeeMicroLamports caps the Solana compute budget price.
	MaxPriorityFeeMicroLamports uint64

	// MaxRetries bounds network-level resubmission attempts. Zero still
	// sends exactly once.
	MaxRetries uint

	// Execute gates fund movement: false (the default) simulates instead
	// of sending.
	Execute bool

	ConfirmTimeout      time.Duration
	ConfirmPollInterval time.Duration
}

func (sc *SwapConfig) Load() error {
	sc.DefaultSlippageBps = uint16(loadUint("SWAP_DEFAULT_SLIPPAGE_BPS", 50))
	sc.MaxPriorityFeeMicroLamports = loadUint("SWAP_MAX_PRIORITY_FEE_MICRO_LAMPORTS", 1_500_000)
	sc.MaxRetries = uint(loadUint("SWAP_MAX_RETRIES", 20))
	sc.Execute = getEnvOrDefault("SWAP_EXECUTE", "false") == "true"
	sc.ConfirmTimeout = time.Duration(loadUint("SWAP_CONFIRM_TIMEOUT_SECONDS", 60)) * time.Second
	sc.ConfirmPollInterval = time.Duration(loadUint("SWAP_CONFIRM_POLL_MILLIS", 2000)) * time.Millisecond
	return sc.Validate()
}

func (sc *SwapConfig) Validate() error {
	if sc.DefaultSlippageBps >= 10_000 {
		return errors.New("default slippage must be below 100%")
	}
	if sc.ConfirmTimeout <= 0 || sc.ConfirmPollInterval <= 0 {
		return errors.New("confirmation poll bounds must be positive")
	}
	return nil
}

func loadUint(key string, def uint64) uint64 {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}
