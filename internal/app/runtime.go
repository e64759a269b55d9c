package app

import (
	"os"
	"sync"
	"sync/atomic"
)

const testModeEnv = "KORD_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode reports whether KORD_TEST_MODE=1 is set.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode re-reads the flag after the environment changed.
func RefreshTestMode() {
	detectTestMode()
}

// ApplyTestMode rewrites cfg for hermetic runs: the in-memory backend, no
// marketplace delay, and no assistant credentials. It reports whether
// anything was changed.
func ApplyTestMode(cfg *Config) bool {
	if cfg == nil || !InTestMode() {
		return false
	}
	cfg.StoreBackend = BackendMemory
	cfg.MarketplaceSyncDelay = 0
	cfg.GeminiAPIKey = ""
	return true
}
