package intent

import (
	"github.com/termai/termai/internal/patterns"
	"github.com/termai/termai/internal/probe"
)

// analyzeGaps computes missing fields for the category against the
// snapshot. Required gaps come first, helpful gaps trail; within each
// group the requirements-table order is preserved.
func analyzeGaps(cat patterns.Category, snap *probe.Snapshot) []Gap {
	req, ok := patterns.Requirements[cat]
	if !ok {
		return nil
	}

	var gaps []Gap
	for _, f := range req.Required {
		if !fieldSatisfied(f, snap) {
			gaps = append(gaps, Gap{Field: f, Importance: ImportanceRequired, Prompt: patterns.GapPrompts[f]})
		}
	}
	for _, f := range req.Helpful {
		if !fieldSatisfied(f, snap) {
			gaps = append(gaps, Gap{Field: f, Importance: ImportanceHelpful, Prompt: patterns.GapPrompts[f]})
		}
	}
	return gaps
}

// fieldSatisfied applies the fixed satisfaction rule per field.
func fieldSatisfied(f patterns.Field, snap *probe.Snapshot) bool {
	if snap == nil {
		return false
	}
	switch f {
	case patterns.FieldErrorOutput:
		return len(snap.State.RecentErrors) > 0
	case patterns.FieldProjectKind:
		return snap.Project.Kind != "" && snap.Project.Kind != patterns.ProjectNone
	case patterns.FieldPackageManager:
		return snap.Project.PackageManager != ""
	case patterns.FieldToolVersions:
		return len(snap.Toolchain) > 0
	case patterns.FieldRecentCommands:
		return len(snap.State.RecentCommands) > 0
	case patterns.FieldGitState:
		return snap.Git.IsRepo
	case patterns.FieldConfigFiles:
		return len(snap.Files) > 0
	case patterns.FieldOSKind:
		return snap.Environment.OS != ""
	default:
		return false
	}
}
