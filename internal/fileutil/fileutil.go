package fileutil

import (
	"os"
	"path/filepath"
	"strings"
)

// MustGetUserHomeDir returns the current user's home directory.
// Returns an empty string if it cannot be determined.
func MustGetUserHomeDir() string {
	hd, _ := os.UserHomeDir()
	return hd
}

// MustGetwd returns the current working directory.
// Returns an empty string if it cannot be determined.
func MustGetwd() string {
	wd, _ := os.Getwd()
	return wd
}

// IsDir returns true if path is a directory.
func IsDir(path string) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return false
	}
	return stat.IsDir()
}

// FileExists returns true if file exists.
func FileExists(file string) bool {
	_, err := os.Stat(file)
	return !os.IsNotExist(err)
}

// MustTempDir returns a temporary directory.
// This function is used only for testing.
func MustTempDir(pattern string) string {
	t, err := os.MkdirTemp("", pattern)
	if err != nil {
		panic(err)
	}
	return t
}

// ResolvePath expands a leading ~ to the user home directory and makes
// the path absolute. An empty input stays empty.
func ResolvePath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		return MustGetUserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(MustGetUserHomeDir(), path[2:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// TruncString returns a string truncated to max bytes.
func TruncString(val string, max int) string {
	if len(val) > max {
		return val[:max]
	}
	return val
}

// WriteFileAtomic writes data to file via a temporary sibling and rename,
// creating parent directories as needed.
func WriteFileAtomic(file string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(file)+".tmp")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), file)
}
