package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/pkgvet/pkgvet/pkg/inspect"
	"github.com/pkgvet/pkgvet/pkg/manifest"
	"github.com/pkgvet/pkgvet/pkg/report"
	"github.com/pkgvet/pkgvet/pkg/tree"
)

// Status is the terminal state of one processed candidate.
type Status string

const (
	StatusParseFailed   Status = "ParseFailed"
	StatusSkipped       Status = "Skipped"
	StatusDuplicate     Status = "Duplicate"
	StatusNotTestable   Status = "NotTestable"
	StatusInspected     Status = "Inspected"
	StatusInstallFailed Status = "InstallFailed"
	StatusTestFailed    Status = "TestFailed"
	StatusTestPassed    Status = "TestPassed"
)

// Executor processes flattened candidates against the shared report.
type Executor struct {
	Report    *report.Report
	Inspector *inspect.Inspector
	Runner    Runner

	// WorkDir is the audit root; dependency chains are rendered relative
	// to it.
	WorkDir string

	// RunTests enables the external install/test cycle. When false the
	// executor only inspects and annotates.
	RunTests bool
}

// Process audits a single candidate. Findings land in the report; nothing
// here propagates an error that could abort sibling candidates.
func (e *Executor) Process(ctx context.Context, cand *tree.Candidate) Status {
	m, err := manifest.Load(cand.Path)
	if err != nil {
		e.Report.AddGlobalError(err.Error())
		log.Warnf("skipping candidate: %v", err)
		return StatusParseFailed
	}

	testable, vr, first := e.Inspector.Inspect(m, e.Report)
	if vr == nil {
		return StatusSkipped
	}

	e.Report.AppendChain(vr, DependencyChain(e.WorkDir, cand.Path))

	installed := m.Version()
	if installed == "" {
		installed = report.NoVersion
	}
	if cand.Latest != "" && e.Report.RecordLatest(vr, cand.Latest) {
		if inspect.IsOutdated(installed, cand.Latest) {
			e.Report.AppendWarning(vr, fmt.Sprintf("version is outdated: %s < %s", installed, cand.Latest))
		}
	}

	if !first {
		return StatusDuplicate
	}
	if !testable {
		return StatusNotTestable
	}
	if !e.RunTests {
		return StatusInspected
	}

	dir := filepath.Dir(cand.Path)
	if err := e.Runner.Run(ctx, dir, "npm", "install"); err != nil {
		e.Report.AppendError(vr, fmt.Sprintf("install failed for %s@%s: %v", m.Name(), installed, err))
		return StatusInstallFailed
	}
	if err := e.Runner.Run(ctx, dir, "npm", "test"); err != nil {
		e.Report.AppendError(vr, fmt.Sprintf("tests failed for %s@%s: %v", m.Name(), installed, err))
		return StatusTestFailed
	}
	e.Report.SetTestsPassing(vr, true)
	return StatusTestPassed
}

// DependencyChain renders a human-readable path describing how a candidate
// was reached from the audit root: the working-directory prefix, manifest
// filename, and node_modules markers are stripped, leaving the package
// directories joined by " > ". The root manifest renders as ".".
func DependencyChain(workDir, manifestPath string) string {
	rel := manifestPath
	if workDir != "" {
		if r, err := filepath.Rel(workDir, manifestPath); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, "package.json")

	var parts []string
	for _, seg := range strings.Split(rel, "node_modules/") {
		if seg = strings.Trim(seg, "/"); seg != "" && seg != "." {
			parts = append(parts, seg)
		}
	}
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, " > ")
}
