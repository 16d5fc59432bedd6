package probe_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termai/termai/internal/patterns"
	"github.com/termai/termai/internal/probe"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestDetectProject(t *testing.T) {
	for scenario, test := range map[string]struct {
		files map[string]string
		want  probe.Project
	}{
		"empty directory": {
			files: map[string]string{},
			want:  probe.Project{Kind: patterns.ProjectNone},
		},
		"node via package.json": {
			files: map[string]string{"package.json": "{}"},
			want: probe.Project{
				Kind:            patterns.ProjectNode,
				PackageManager:  "npm",
				PrimaryLanguage: "javascript",
			},
		},
		"yarn without package.json": {
			files: map[string]string{"yarn.lock": ""},
			want: probe.Project{
				Kind:            patterns.ProjectNode,
				PackageManager:  "yarn",
				PrimaryLanguage: "javascript",
			},
		},
		"package.json outranks yarn.lock": {
			files: map[string]string{"package.json": "{}", "yarn.lock": ""},
			want: probe.Project{
				Kind:            patterns.ProjectNode,
				PackageManager:  "npm",
				PrimaryLanguage: "javascript",
			},
		},
		"go module": {
			files: map[string]string{"go.mod": "module example.com/x\n"},
			want: probe.Project{
				Kind:            patterns.ProjectGo,
				PackageManager:  "go modules",
				PrimaryLanguage: "go",
			},
		},
		"node outranks go": {
			files: map[string]string{"package.json": "{}", "go.mod": "module x\n"},
			want: probe.Project{
				Kind:            patterns.ProjectNode,
				PackageManager:  "npm",
				PrimaryLanguage: "javascript",
			},
		},
		"rust crate": {
			files: map[string]string{"Cargo.toml": "[package]\n"},
			want: probe.Project{
				Kind:            patterns.ProjectRust,
				PackageManager:  "cargo",
				PrimaryLanguage: "rust",
			},
		},
		"bare makefile": {
			files: map[string]string{"Makefile": "all:\n"},
			want:  probe.Project{Kind: patterns.ProjectMake, PackageManager: "make"},
		},
	} {
		t.Run(scenario, func(t *testing.T) {
			assert.Equal(t, test.want, probe.DetectProject(writeFiles(t, test.files)))
		})
	}
}

func TestDetectProjectNodeFramework(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"package.json": `{"dependencies": {"next": "14.0.0", "lodash": "4.17.21"}}`,
	})

	p := probe.DetectProject(dir)
	assert.Equal(t, patterns.ProjectNode, p.Kind)
	assert.Equal(t, "next", p.Framework)
}

func TestDetectProjectNodeDevDependencyFramework(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"package.json": `{"devDependencies": {"svelte": "4.0.0"}}`,
	})

	assert.Equal(t, "svelte", probe.DetectProject(dir).Framework)
}

func TestDetectProjectTypeScript(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"package.json":  "{}",
		"tsconfig.json": "{}",
	})

	p := probe.DetectProject(dir)
	assert.Equal(t, patterns.ProjectNode, p.Kind)
	assert.Equal(t, "typescript", p.PrimaryLanguage)
}

func TestDetectProjectMalformedPackageJSON(t *testing.T) {
	dir := writeFiles(t, map[string]string{"package.json": "{not json"})

	p := probe.DetectProject(dir)
	assert.Equal(t, patterns.ProjectNode, p.Kind)
	assert.Empty(t, p.Framework)
}
