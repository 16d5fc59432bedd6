package config

import (
	"os"
	"path/filepath"

	"github.com/termai/termai/internal/build"
	"github.com/termai/termai/internal/fileutil"
)

// pathResolver decides the directory layout from the environment, a
// legacy dot-directory, or XDG defaults, in that order.
type pathResolver struct {
	Paths
	dataHome   string
	configHome string
	warnings   []string
}

func newPathResolver(appHomeEnv, legacyPath, dataHome, configHome string) pathResolver {
	r := pathResolver{dataHome: dataHome, configHome: configHome}

	switch {
	case os.Getenv(appHomeEnv) != "":
		r.ConfigDir = os.Getenv(appHomeEnv)
		r.setHomePaths()
	case fileutil.IsDir(legacyPath):
		r.warnings = append(r.warnings, "Legacy "+legacyPath+" detected; consider moving to XDG paths")
		r.ConfigDir = legacyPath
		r.setHomePaths()
	default:
		r.ConfigDir = filepath.Join(configHome, build.Slug)
		r.setXDGPaths()
	}
	return r
}

// setHomePaths keeps everything under the single app home directory.
func (r *pathResolver) setHomePaths() {
	r.DataDir = filepath.Join(r.ConfigDir, "data")
	r.LogDir = filepath.Join(r.ConfigDir, "logs")
}

func (r *pathResolver) setXDGPaths() {
	r.DataDir = filepath.Join(r.dataHome, build.Slug)
	r.LogDir = filepath.Join(r.dataHome, build.Slug, "logs")
}
