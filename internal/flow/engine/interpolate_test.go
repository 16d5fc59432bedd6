package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/termai/termai/internal/flow"
)

func interpolationResults() map[string]*flow.NodeResult {
	exists := true
	return map[string]*flow.NodeResult{
		"build": {
			Status: flow.NodeSuccess,
			Shell: &flow.ShellResult{
				Stdout:   "ok\n",
				Stderr:   "",
				ExitCode: 0,
				Cwd:      "/srv/app",
			},
		},
		"review": {
			Status: flow.NodeSuccess,
			AI:     &flow.AIResult{Response: "ship it", Provider: "mock", Model: "m1"},
		},
		"gate": {
			Status: flow.NodeSuccess,
			Branch: &flow.BranchResult{ConditionResult: true, Evaluated: "0 === 0"},
		},
		"check": {
			Status: flow.NodeSuccess,
			File:   &flow.FileResult{FilePath: "/tmp/x", Exists: &exists},
		},
		"unfinished": {Status: flow.NodePending},
	}
}

func TestInterpolate(t *testing.T) {
	results := interpolationResults()

	for scenario, test := range map[string]struct {
		in   string
		want string
	}{
		"shell stdout":        {"out: {{build.stdout}}", "out: ok\n"},
		"shell exit code":     {"{{build.exitCode}}", "0"},
		"shell cwd":           {"cd {{build.cwd}}", "cd /srv/app"},
		"ai response":         {"{{review.response}}", "ship it"},
		"branch result":       {"{{gate.conditionResult}}", "true"},
		"file exists pointer": {"{{check.exists}}", "true"},
		"whitespace in braces": {"{{ build.exitCode }}", "0"},
		"multiple refs":       {"{{build.exitCode}}-{{review.response}}", "0-ship it"},
		"no placeholders":     {"plain text", "plain text"},
	} {
		t.Run(scenario, func(t *testing.T) {
			assert.Equal(t, test.want, Interpolate(test.in, results))
		})
	}
}

// Unresolvable references collapse to the empty string instead of
// failing the node.
func TestInterpolateIsTotal(t *testing.T) {
	results := interpolationResults()

	for scenario, test := range map[string]struct {
		in   string
		want string
	}{
		"unknown node":        {"[{{ghost.stdout}}]", "[]"},
		"unknown field":       {"[{{build.nope}}]", "[]"},
		"deep missing path":   {"[{{build.stdout.deeper.still}}]", "[]"},
		"unfinished node":     {"[{{unfinished.stdout}}]", "[]"},
		"empty ref":           {"[{{}}]", "[{{}}]"},
		"bare node ref whole": {"[{{gate}}]", `[{"conditionResult":true,"evaluated":"0 === 0"}]`},
	} {
		t.Run(scenario, func(t *testing.T) {
			assert.Equal(t, test.want, Interpolate(test.in, results))
		})
	}

	assert.NotPanics(t, func() {
		Interpolate("{{a.b.c.d.e.f}} {{}} {{.}} {{..}}", results)
	})
}
