package probe

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/termai/termai/internal/fileutil"
	"github.com/termai/termai/internal/patterns"
)

// DetectProject scans cwd for project markers in the fixed order; the
// first marker file that exists wins.
func DetectProject(cwd string) Project {
	for _, m := range patterns.ProjectMarkers {
		if !fileutil.FileExists(filepath.Join(cwd, m.File)) {
			continue
		}
		p := Project{
			Kind:            m.Kind,
			PackageManager:  m.PackageManager,
			PrimaryLanguage: m.Language,
		}
		if m.Kind == patterns.ProjectNode {
			p.Framework = nodeFramework(cwd)
			if usesTypeScript(cwd) {
				p.PrimaryLanguage = "typescript"
			}
		}
		return p
	}
	return Project{Kind: patterns.ProjectNone}
}

// nodeFramework inspects package.json dependencies for well-known
// frameworks. Best effort; empty on any parse problem.
func nodeFramework(cwd string) string {
	raw, err := os.ReadFile(filepath.Join(cwd, "package.json"))
	if err != nil {
		return ""
	}

	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return ""
	}

	deps := make(map[string]struct{}, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for k := range pkg.Dependencies {
		deps[k] = struct{}{}
	}
	for k := range pkg.DevDependencies {
		deps[k] = struct{}{}
	}

	for _, fw := range []string{"next", "react", "vue", "svelte", "angular", "express", "fastify", "nest"} {
		if _, ok := deps[fw]; ok {
			return fw
		}
	}
	return ""
}

func usesTypeScript(cwd string) bool {
	return fileutil.FileExists(filepath.Join(cwd, "tsconfig.json"))
}
