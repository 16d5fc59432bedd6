package stringutil

import (
	"regexp"
	"strings"
)

var versionRe = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?(?:[-+~][0-9A-Za-z.\-]+)?`)

// FirstVersionToken extracts the first dotted version token (e.g. "1.22.3")
// from command output. Returns an empty string if none is found.
func FirstVersionToken(out string) string {
	return versionRe.FindString(out)
}

// FirstLine returns the first line of s without the trailing newline.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimRight(s[:i], "\r")
	}
	return s
}

var ansiRe = regexp.MustCompile(`\x1b(?:\[[0-9;?]*[ -/]*[@-~]|\][^\x07\x1b]*(?:\x07|\x1b\\)?|[@-_])`)

// StripANSI removes ANSI escape sequences (CSI, OSC and two-byte
// sequences) from s.
func StripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// TailLines returns the last n lines of s. The result preserves the
// original line content without trailing newlines.
func TailLines(s string, n int) []string {
	if n <= 0 {
		return nil
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
