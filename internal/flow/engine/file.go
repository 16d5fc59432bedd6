package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/termai/termai/internal/fileutil"
	"github.com/termai/termai/internal/flow"
)

const maxFileReadBytes = 10 << 20

// runFileNode performs the node's file operation after interpolation.
// Every path is normalized and must land under the user's home
// directory or the process working directory; anything else fails with
// ErrPathEscape before the filesystem is touched.
func runFileNode(data *flow.FileNodeData, path, content string) (*flow.FileResult, error) {
	resolved, err := resolveFilePath(path)
	if err != nil {
		return nil, err
	}

	result := &flow.FileResult{FilePath: resolved}

	switch data.Operation {
	case flow.FileRead:
		raw, err := os.ReadFile(resolved)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, resolved)
			}
			return nil, err
		}
		if len(raw) > maxFileReadBytes {
			raw = raw[:maxFileReadBytes]
		}
		result.Content = string(raw)

	case flow.FileWrite:
		if err := os.MkdirAll(filepath.Dir(resolved), 0750); err != nil {
			return nil, err
		}
		if err := fileutil.WriteFileAtomic(resolved, []byte(content), 0600); err != nil {
			return nil, err
		}
		result.BytesWritten = len(content)

	case flow.FileAppend:
		if err := os.MkdirAll(filepath.Dir(resolved), 0750); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(resolved, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, err
		}
		n, werr := f.WriteString(content)
		cerr := f.Close()
		if werr != nil {
			return nil, werr
		}
		if cerr != nil {
			return nil, cerr
		}
		result.BytesWritten = n

	case flow.FileDelete:
		// Deleting an absent file is a no-op.
		if err := os.Remove(resolved); err != nil && !os.IsNotExist(err) {
			return nil, err
		}

	case flow.FileExists:
		exists := fileutil.FileExists(resolved)
		result.Exists = &exists

	default:
		return nil, fmt.Errorf("unknown file operation %q", data.Operation)
	}

	return result, nil
}

// resolveFilePath expands ~, makes the path absolute against the
// process working directory, and enforces containment.
func resolveFilePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("file node requires a path")
	}

	home := fileutil.MustGetUserHomeDir()
	if path == "~" {
		path = home
	} else if strings.HasPrefix(path, "~/") {
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(fileutil.MustGetwd(), path)
	}
	path = filepath.Clean(path)

	if !pathWithin(path, home) && !pathWithin(path, fileutil.MustGetwd()) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, path)
	}
	return path, nil
}

func pathWithin(path, root string) bool {
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
