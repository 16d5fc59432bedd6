package terminal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectShellFamily(t *testing.T) {
	for scenario, test := range map[string]struct {
		path string
		want ShellFamily
	}{
		"bash":           {"/bin/bash", ShellBash},
		"plain sh":       {"/bin/sh", ShellBash},
		"zsh":            {"/usr/bin/zsh", ShellZsh},
		"fish":           {"/opt/homebrew/bin/fish", ShellFish},
		"pwsh":           {"/usr/local/bin/pwsh", ShellPowershell},
		"uppercase":      {"/bin/BASH", ShellBash},
		"unknown":        {"/bin/nushell", ShellUnknown},
		"empty":          {"", ShellUnknown},
		"versioned bash": {"/usr/local/bin/bash5", ShellBash},
	} {
		t.Run(scenario, func(t *testing.T) {
			assert.Equal(t, test.want, DetectShellFamily(test.path))
		})
	}
}

func TestIntegrationPreamble(t *testing.T) {
	for _, family := range []ShellFamily{ShellBash, ShellZsh, ShellFish, ShellPowershell} {
		preamble := integrationPreamble(family)
		assert.NotEmpty(t, preamble, "family %s", family)
		assert.Contains(t, preamble, "]7;file://", "family %s must emit OSC-7", family)

		// Setup lines start with a space so the shell keeps them out
		// of history.
		for _, line := range strings.Split(strings.TrimRight(preamble, "\r"), "\r") {
			assert.True(t, strings.HasPrefix(line, " "), "line %q", line)
		}
	}

	assert.Empty(t, integrationPreamble(ShellUnknown))
}

func TestCommandHistoryFeed(t *testing.T) {
	var h commandHistory

	completed := h.Feed([]byte("ls -la\r"))
	assert.Equal(t, []string{"ls -la"}, completed)

	// Backspace edits the line in place.
	completed = h.Feed([]byte("cat xx\x7f\x7fyy\r"))
	assert.Equal(t, []string{"cat yy"}, completed)

	// ^C abandons the line.
	completed = h.Feed([]byte("rm -rf /\x03echo safe\r"))
	assert.Equal(t, []string{"echo safe"}, completed)

	// Arrow-key escape sequences are not part of the command text.
	completed = h.Feed([]byte("ec\x1b[Aho hi\r"))
	assert.Equal(t, []string{"echo hi"}, completed)

	// Partial input stays buffered until a newline arrives.
	assert.Empty(t, h.Feed([]byte("git sta")))
	assert.Equal(t, []string{"git status"}, h.Feed([]byte("tus\n")))
}
