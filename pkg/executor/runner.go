// Package executor runs each candidate's install-and-test cycle through an
// external toolchain and records the classified outcome into the report.
package executor

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Runner abstracts external process execution so tests can substitute fakes.
type Runner interface {
	// Run executes the command in dir, returning nil on exit status zero.
	Run(ctx context.Context, dir, name string, args ...string) error
	// Output executes the command in dir and returns its trimmed stdout.
	Output(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec. A non-zero Timeout bounds each
// invocation; a hung toolchain then surfaces as a failed run instead of
// stalling its slot forever.
type ExecRunner struct {
	Timeout time.Duration
	// Forward streams child stdout/stderr to the controlling terminal.
	Forward bool
}

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if r.Forward {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	log.Debugf("running %s %s in %s", name, strings.Join(args, " "), dir)
	return cmd.Run()
}

func (r *ExecRunner) Output(ctx context.Context, dir, name string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	return strings.TrimSpace(string(out)), err
}

// DetectRuntime returns the node version available on PATH (e.g. "v20.11.0"),
// or "" when node is not runnable. Engine constraint checks are skipped in
// that case.
func DetectRuntime(ctx context.Context, r Runner) string {
	out, err := r.Output(ctx, "", "node", "--version")
	if err != nil {
		log.Debugf("node runtime not detected: %v", err)
		return ""
	}
	return out
}
