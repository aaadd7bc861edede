package config

import (
	"os"
	"strconv"
)

// #region config

// Config holds process-level behavior toggles read once from the
// environment, with explicit fallbacks. This mirrors the reference's
// ORCHESTRATOR_ENABLED kill-switch convention.
type Config struct {
	// Enabled is the kill switch: when false, Orchestrator.Run still
	// advances mode but always selects no candidate, so no physics runs.
	Enabled bool

	// RecoveryLockCycles overrides MIN_RECOVERY_LOCK_CYCLES.
	RecoveryLockCycles int
}

// #endregion config

// #region defaults

const defaultRecoveryLockCycles = 3

// #endregion defaults

// #region loader

// Load reads ARBITER_ENABLED and ARBITER_RECOVERY_LOCK_CYCLES from the
// environment, falling back to enabled=true and 3 cycles respectively.
// Malformed values fall back silently to the default rather than erroring;
// this process-level toggle is not on the cycle's control path (§7).
func Load() Config {
	cfg := Config{
		Enabled:            true,
		RecoveryLockCycles: defaultRecoveryLockCycles,
	}

	if v := os.Getenv("ARBITER_ENABLED"); v == "false" {
		cfg.Enabled = false
	}

	if v := os.Getenv("ARBITER_RECOVERY_LOCK_CYCLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RecoveryLockCycles = n
		}
	}

	return cfg
}

// #endregion loader
