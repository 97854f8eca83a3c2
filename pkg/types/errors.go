package types

import (
	"errors"
	"fmt"
)

// ErrNoPackages indicates that discovery found no manifests at all. It is the
// only per-run fatal condition; everything else degrades into report findings.
var ErrNoPackages = errors.New("no package manifests discovered")

// FindingsError is returned by the audit command when the produced report
// contains findings. It carries the counts so main can derive the exit code.
type FindingsError struct {
	Errors   int
	Warnings int
	// IncludeWarnings mirrors the --warnings flag: when set, warnings count
	// toward the exit code as well.
	IncludeWarnings bool
}

func (e *FindingsError) Error() string {
	if e.IncludeWarnings {
		return fmt.Sprintf("audit found %d error(s) and %d warning(s)", e.Errors, e.Warnings)
	}
	return fmt.Sprintf("audit found %d error(s)", e.Errors)
}

// ExitCode returns the process exit status for these findings, capped to stay
// within the portable exit-status range.
func (e *FindingsError) ExitCode() int {
	code := e.Errors
	if e.IncludeWarnings {
		code += e.Warnings
	}
	if code > 125 {
		code = 125
	}
	return code
}
