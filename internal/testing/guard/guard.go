// Package guard switches the binary into test mode when imported from tests,
// so running `go test ./...` never starts a server or opens a store.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("USERAPI_TEST_MODE") == "" {
			_ = os.Setenv("USERAPI_TEST_MODE", "1")
		}
	})
}
