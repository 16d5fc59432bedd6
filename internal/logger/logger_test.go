package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termai/termai/internal/logger"
)

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.WithQuiet(), logger.WithWriter(&buf), logger.WithFormat("json"))

	log.Info("session opened", "sessionId", "s-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "session opened", line["msg"])
	assert.Equal(t, "s-1", line["sessionId"])
	assert.Equal(t, "INFO", line["level"])
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.WithQuiet(), logger.WithWriter(&buf), logger.WithFormat("text"))

	log.Warnf("flow %s rejected", "alpha")

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "flow alpha rejected")
}

func TestLoggerDebugLevel(t *testing.T) {
	var silent, verbose bytes.Buffer

	logger.NewLogger(logger.WithQuiet(), logger.WithWriter(&silent)).
		Debug("hidden")
	logger.NewLogger(logger.WithQuiet(), logger.WithWriter(&verbose), logger.WithDebug()).
		Debug("shown")

	assert.Empty(t, silent.String())
	assert.Contains(t, verbose.String(), "shown")
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.WithQuiet(), logger.WithWriter(&buf), logger.WithFormat("json")).
		With("executionId", "e-9")

	log.Info("node finished", "nodeId", "a")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "e-9", line["executionId"])
	assert.Equal(t, "a", line["nodeId"])
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.WithQuiet(), logger.WithWriter(&buf), logger.WithFormat("json"))

	ctx := logger.WithLogger(context.Background(), log)
	ctx = logger.WithValues(ctx, "flowId", "deploy")
	logger.Info(ctx, "flow saved")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "flow saved", line["msg"])
	assert.Equal(t, "deploy", line["flowId"])
}

func TestFromContextFallsBack(t *testing.T) {
	// Logging through a bare context must not panic.
	assert.NotNil(t, logger.FromContext(context.Background()))
}

func TestWithValuesOddPairs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.WithQuiet(), logger.WithWriter(&buf), logger.WithFormat("json"))

	ctx := logger.WithValues(logger.WithLogger(context.Background(), log), "dangling")
	logger.Info(ctx, "still logs")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "MISSING_VALUE", line["dangling"])
}

func TestGuardedWriterConcurrency(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.WithQuiet(), logger.WithWriter(&buf), logger.WithFormat("json"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			log.Info("tick", "n", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 20)
	for _, l := range lines {
		var parsed map[string]any
		assert.NoError(t, json.Unmarshal([]byte(l), &parsed))
	}
}
