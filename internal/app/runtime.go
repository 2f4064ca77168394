package app

import (
	"os"
	"sync"
)

// TestModeEnv marks a process started by the test helper package. Startup
// skips live Postgres and Redis connections and rate limiting is disabled.
const TestModeEnv = "KASIR_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return os.Getenv(TestModeEnv) == "1"
})

// InTestMode reports whether the process runs under the test helper package.
func InTestMode() bool {
	return testMode()
}
