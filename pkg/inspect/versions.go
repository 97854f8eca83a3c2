package inspect

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkgvet/pkgvet/pkg/manifest"
	"github.com/pkgvet/pkgvet/pkg/report"
)

// CheckDependencyVersions classifies every declared constraint in the named
// dependency section. Findings are appended in declaration order:
//
//	"" or "*"    -> error (accepts anything)
//	">" prefix   -> error (unbounded above)
//	"<" prefix   -> warning (upper bound only)
//	"~" prefix   -> warning (tilde range)
//
// Exact and caret constraints produce no finding.
func CheckDependencyVersions(rep *report.Report, vr *report.VersionReport, m *manifest.Manifest, section string) {
	for _, dep := range m.Dependencies(section) {
		constraint := strings.TrimSpace(dep.Constraint)
		switch {
		case constraint == "" || constraint == "*":
			rep.AppendError(vr, fmt.Sprintf("wildcard version for dependency %s in %s", dep.Name, section))
		case strings.HasPrefix(constraint, ">"):
			rep.AppendError(vr, fmt.Sprintf("overly permissive version range %q for dependency %s in %s", constraint, dep.Name, section))
		case strings.HasPrefix(constraint, "<"):
			rep.AppendWarning(vr, fmt.Sprintf("upper-bound-only version range %q for dependency %s in %s", constraint, dep.Name, section))
		case strings.HasPrefix(constraint, "~"):
			rep.AppendWarning(vr, fmt.Sprintf("tilde version range %q for dependency %s in %s", constraint, dep.Name, section))
		}
	}
}

// IsValidVersion checks strict semver compliance (no leading "v", all three
// numeric components present), matching what npm accepts as a publishable
// version.
func IsValidVersion(version string) bool {
	_, err := semver.StrictNewVersion(strings.TrimSpace(version))
	return err == nil
}

// IsOutdated reports whether latest strictly exceeds installed under semver
// ordering. Unparseable or sentinel inputs never count as outdated.
func IsOutdated(installed, latest string) bool {
	if installed == report.NoVersion || latest == report.LatestUnknown {
		return false
	}
	iv, err := semver.NewVersion(strings.TrimSpace(installed))
	if err != nil {
		return false
	}
	lv, err := semver.NewVersion(strings.TrimSpace(latest))
	if err != nil {
		return false
	}
	return lv.GreaterThan(iv)
}
