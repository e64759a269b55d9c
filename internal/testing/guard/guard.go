// Package guard switches the process into test mode when imported, so test
// binaries never open real backends or log every request.
package guard

import "os"

const testModeEnv = "KORD_TEST_MODE"

func init() {
	if os.Getenv(testModeEnv) == "" {
		_ = os.Setenv(testModeEnv, "1")
	}
}

// Enabled reports whether test mode is active.
func Enabled() bool {
	return os.Getenv(testModeEnv) == "1"
}
