// Package inspect classifies manifest hygiene findings for one module at a
// time and folds them into the shared report.
package inspect

import (
	"fmt"
	"strings"

	"github.com/pkgvet/pkgvet/pkg/manifest"
	"github.com/pkgvet/pkgvet/pkg/report"
)

// CheckAttribute resolves a dotted field path on the manifest. A missing field
// becomes an error when required, otherwise a warning. A present field is
// stored on the version report under its normalized key (dots replaced with
// underscores).
func CheckAttribute(rep *report.Report, vr *report.VersionReport, m *manifest.Manifest, dotted string, required bool) {
	value, ok := m.Field(dotted)
	if !ok {
		msg := fmt.Sprintf("manifest missing: %s", dotted)
		if required {
			rep.AppendError(vr, msg)
		} else {
			rep.AppendWarning(vr, msg)
		}
		return
	}
	rep.SetField(vr, strings.ReplaceAll(dotted, ".", "_"), value)
}
