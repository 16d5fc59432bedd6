package probe

import (
	"os"
	"path/filepath"

	"github.com/termai/termai/internal/patterns"
)

// configFileCap bounds how much of each recognized config file is
// included in a snapshot.
const configFileCap = 2048

// configFiles collects recognized configuration files from cwd with
// contents truncated to the cap.
func configFiles(cwd string) []ConfigFile {
	var files []ConfigFile
	for _, name := range patterns.ConfigFileNames {
		raw, err := os.ReadFile(filepath.Join(cwd, name))
		if err != nil {
			continue
		}
		cf := ConfigFile{Name: name, Content: string(raw)}
		if len(cf.Content) > configFileCap {
			cf.Content = cf.Content[:configFileCap]
			cf.Truncated = true
		}
		files = append(files, cf)
	}
	return files
}
