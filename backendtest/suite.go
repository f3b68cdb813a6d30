// Package backendtest provides a conformance test suite for core.Backend
// implementations.
//
// Providers call TestSuite from their own tests with a constructor that
// returns a fresh, empty backend:
//
//	func TestConformance(t *testing.T) {
//	    backendtest.TestSuite(t, func() core.Backend {
//	        return memory.New("test")
//	    })
//	}
//
// The suite validates the contract objfs relies on, not backend-specific
// behavior. Differences between providers are declared in Config.
package backendtest

import (
	"testing"

	"github.com/jmgilman/objfs/core"
)

// Config describes provider characteristics the suite adapts to.
type Config struct {
	// StrictDelete indicates DeleteObject on a missing key returns
	// core.ErrNotExist. S3 deletes are idempotent and return nil.
	StrictDelete bool

	// SkipTests lists test names to skip, e.g. "Listing/Direct".
	SkipTests []string
}

// DefaultConfig returns the configuration matching Swift-like backends.
func DefaultConfig() Config {
	return Config{StrictDelete: true}
}

// S3Config returns the configuration matching S3-like backends.
func S3Config() Config {
	return Config{StrictDelete: false}
}

// TestSuite runs all conformance tests with DefaultConfig.
func TestSuite(t *testing.T, newBackend func() core.Backend) {
	TestSuiteWithConfig(t, newBackend, DefaultConfig())
}

// TestSuiteWithConfig runs all conformance tests. Each group receives a
// fresh backend from newBackend.
func TestSuiteWithConfig(t *testing.T, newBackend func() core.Backend, config Config) {
	shouldSkip := func(name string) bool {
		for _, skip := range config.SkipTests {
			if skip == name {
				return true
			}
		}
		return false
	}

	groups := []struct {
		name string
		fn   func(*testing.T, core.Backend, Config, func(string) bool)
	}{
		{"Objects", testObjects},
		{"Listing", testListing},
		{"Copy", testCopy},
		{"BulkDelete", testBulkDelete},
	}

	for _, g := range groups {
		g := g
		t.Run(g.name, func(t *testing.T) {
			if shouldSkip(g.name) {
				t.Skip("Skipped by provider configuration")
				return
			}
			g.fn(t, newBackend(), config, shouldSkip)
		})
	}
}
