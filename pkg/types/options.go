package types

import "time"

const (
	// DefaultParallel is the concurrency cap applied to both the registry
	// resolution phase and the install/test phase.
	DefaultParallel = 5

	// DefaultDepth bounds how far discovery descends into nested
	// node_modules directories.
	DefaultDepth = 4
)

// Options contains common pkgvet options.
type Options struct {
	// Audit target
	Dir   string
	Depth int

	// Scheduling
	Parallel int
	Timeout  time.Duration

	// Test execution
	RunTests   bool
	TestOutput bool

	// Registry
	RegistryURL string

	// Output configuration
	Warnings bool
	DumpFile string

	// Config file (mirrors flags, lower precedence)
	ConfigFile string
}
