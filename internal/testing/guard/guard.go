// Package guard flips STOREFRONT_TEST_MODE on for any test binary importing it,
// so cmd entrypoints exit before dialing redis or the backend.
package guard

import (
	"os"
	"sync"
)

// EnvVar is the flag read by app.InTestMode.
const EnvVar = "STOREFRONT_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(EnvVar) == "" {
			_ = os.Setenv(EnvVar, "1")
		}
	})
}
