package engine_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termai/termai/internal/flow"
	"github.com/termai/termai/internal/flow/engine"
	"github.com/termai/termai/internal/llm"
	"github.com/termai/termai/internal/terminal"
)

func shellNode(id, command string) flow.Node {
	return flow.Node{ID: id, Type: flow.NodeShell, Data: flow.ShellNodeData{Command: command}}
}

func shellNodeContinue(id, command string) flow.Node {
	return flow.Node{ID: id, Type: flow.NodeShell, Data: flow.ShellNodeData{Command: command, ContinueOnError: true}}
}

func branchNode(id, condition string) flow.Node {
	return flow.Node{ID: id, Type: flow.NodeBranch, Data: flow.BranchNodeData{Condition: condition}}
}

func edge(id, source, target string, handle flow.Handle) flow.Edge {
	return flow.Edge{ID: id, Source: source, Target: target, SourceHandle: handle}
}

func TestExecuteLinearFlow(t *testing.T) {
	f := &flow.Flow{
		ID: "linear",
		Nodes: []flow.Node{
			shellNode("a", "echo first"),
			shellNode("b", "echo got:{{a.stdout}}"),
		},
		Edges: []flow.Edge{edge("e1", "a", "b", "")},
	}

	exec, err := engine.New().Execute(context.Background(), f, engine.ExecuteOptions{})
	require.NoError(t, err)
	assert.Equal(t, flow.ExecutionCompleted, exec.Status)
	require.NotNil(t, exec.EndedAt)

	a := exec.Results["a"]
	require.Equal(t, flow.NodeSuccess, a.Status)
	assert.Contains(t, a.Shell.Stdout, "first")

	// The second node saw the first node's interpolated output.
	b := exec.Results["b"]
	require.Equal(t, flow.NodeSuccess, b.Status)
	assert.Contains(t, b.Shell.Stdout, "got:first")
}

func TestExecuteBranchRouting(t *testing.T) {
	f := &flow.Flow{
		ID: "routing",
		Nodes: []flow.Node{
			shellNode("a", "true"),
			branchNode("b", "{{a.exitCode}} === 0"),
			shellNode("c", "echo ok"),
			shellNode("d", "echo bad"),
		},
		Edges: []flow.Edge{
			edge("e1", "a", "b", ""),
			edge("e2", "b", "c", flow.HandleTrue),
			edge("e3", "b", "d", flow.HandleFalse),
		},
	}

	exec, err := engine.New().Execute(context.Background(), f, engine.ExecuteOptions{})
	require.NoError(t, err)
	assert.Equal(t, flow.ExecutionCompleted, exec.Status)

	branch := exec.Results["b"]
	require.Equal(t, flow.NodeSuccess, branch.Status)
	require.NotNil(t, branch.Branch)
	assert.True(t, branch.Branch.ConditionResult)
	assert.Equal(t, "0 === 0", branch.Branch.Evaluated)

	assert.Equal(t, flow.NodeSuccess, exec.Results["c"].Status)
	assert.Contains(t, exec.Results["c"].Shell.Stdout, "ok")

	// The successor on the opposite handle never executes.
	d := exec.Results["d"]
	assert.Equal(t, flow.NodeSkipped, d.Status)
	assert.Nil(t, d.Shell)
}

func TestExecuteFanInWithFailure(t *testing.T) {
	f := &flow.Flow{
		ID: "fanin",
		Nodes: []flow.Node{
			shellNode("a", "true"),
			shellNode("b", "false"),
			shellNode("c", "echo c"),
			shellNode("d", "echo d"),
		},
		Edges: []flow.Edge{
			edge("e1", "a", "b", ""),
			edge("e2", "a", "c", ""),
			edge("e3", "b", "d", ""),
			edge("e4", "c", "d", ""),
		},
	}

	exec, err := engine.New().Execute(context.Background(), f, engine.ExecuteOptions{})
	require.NoError(t, err)

	assert.Equal(t, flow.NodeFailed, exec.Results["b"].Status)
	assert.Equal(t, flow.NodeSuccess, exec.Results["c"].Status)
	assert.Equal(t, flow.NodeSkipped, exec.Results["d"].Status)
	assert.Equal(t, flow.ExecutionFailed, exec.Status)
	assert.Contains(t, exec.Error, "b")
}

func TestExecuteContinueOnError(t *testing.T) {
	f := &flow.Flow{
		ID: "continue",
		Nodes: []flow.Node{
			shellNodeContinue("a", "false"),
			shellNode("b", "echo survived"),
		},
		Edges: []flow.Edge{edge("e1", "a", "b", "")},
	}

	exec, err := engine.New().Execute(context.Background(), f, engine.ExecuteOptions{})
	require.NoError(t, err)

	assert.Equal(t, flow.NodeFailed, exec.Results["a"].Status)
	assert.Equal(t, flow.NodeSuccess, exec.Results["b"].Status)

	// Downstream ran, but a failed node still fails the execution.
	assert.Equal(t, flow.ExecutionFailed, exec.Status)
}

func TestExecuteSkipPropagation(t *testing.T) {
	f := &flow.Flow{
		ID: "skip-chain",
		Nodes: []flow.Node{
			shellNode("a", "false"),
			shellNode("b", "echo b"),
			shellNode("c", "echo c"),
		},
		Edges: []flow.Edge{
			edge("e1", "a", "b", ""),
			edge("e2", "b", "c", ""),
		},
	}

	exec, err := engine.New().Execute(context.Background(), f, engine.ExecuteOptions{})
	require.NoError(t, err)

	assert.Equal(t, flow.NodeFailed, exec.Results["a"].Status)
	assert.Equal(t, flow.NodeSkipped, exec.Results["b"].Status)
	assert.Equal(t, flow.NodeSkipped, exec.Results["c"].Status)
}

func TestExecuteEmptyFlow(t *testing.T) {
	exec, err := engine.New().Execute(context.Background(), &flow.Flow{ID: "empty"}, engine.ExecuteOptions{})
	require.ErrorIs(t, err, engine.ErrNoEntry)
	assert.Equal(t, flow.ExecutionFailed, exec.Status)
}

func TestExecuteRejectsInvalidGraph(t *testing.T) {
	f := &flow.Flow{
		ID: "cyclic",
		Nodes: []flow.Node{
			shellNode("a", "true"),
			shellNode("b", "true"),
		},
		Edges: []flow.Edge{
			edge("e1", "a", "b", ""),
			edge("e2", "b", "a", ""),
		},
	}
	exec, err := engine.New().Execute(context.Background(), f, engine.ExecuteOptions{})
	require.ErrorIs(t, err, flow.ErrGraphInvalid)
	assert.Equal(t, flow.ExecutionFailed, exec.Status)
}

func TestExecuteNoDoubleExecution(t *testing.T) {
	// Diamond fan-out/fan-in: the join node runs exactly once.
	f := &flow.Flow{
		ID: "diamond",
		Nodes: []flow.Node{
			shellNode("a", "echo a"),
			shellNode("b", "echo b"),
			shellNode("c", "echo c"),
			shellNode("d", "echo d"),
		},
		Edges: []flow.Edge{
			edge("e1", "a", "b", ""),
			edge("e2", "a", "c", ""),
			edge("e3", "b", "d", ""),
			edge("e4", "c", "d", ""),
		},
	}

	var mu sync.Mutex
	running := map[string]int{}
	terminal := map[string]int{}
	eng := engine.New(engine.WithNodeListener(func(_, nodeID string, status flow.NodeStatus) {
		mu.Lock()
		defer mu.Unlock()
		if status == flow.NodeRunning {
			running[nodeID]++
		} else if status.Terminal() {
			terminal[nodeID]++
		}
	}))

	exec, err := eng.Execute(context.Background(), f, engine.ExecuteOptions{})
	require.NoError(t, err)
	assert.Equal(t, flow.ExecutionCompleted, exec.Status)

	mu.Lock()
	defer mu.Unlock()
	for _, id := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, 1, running[id], "node %s running events", id)
		assert.Equal(t, 1, terminal[id], "node %s terminal events", id)
	}
}

func TestExecuteShellTimeout(t *testing.T) {
	f := &flow.Flow{
		ID: "slow",
		Nodes: []flow.Node{{
			ID:   "a",
			Type: flow.NodeShell,
			Data: flow.ShellNodeData{Command: "sleep 5", TimeoutMillis: 200},
		}},
	}

	start := time.Now()
	exec, err := engine.New().Execute(context.Background(), f, engine.ExecuteOptions{})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 3*time.Second)
	res := exec.Results["a"]
	assert.Equal(t, flow.NodeFailed, res.Status)
	assert.Contains(t, res.Error, "timed-out")
	assert.Equal(t, flow.ExecutionFailed, exec.Status)
}

func TestExecuteCancellation(t *testing.T) {
	f := &flow.Flow{
		ID: "cancellable",
		Nodes: []flow.Node{
			shellNode("a", "sleep 1"),
			shellNode("b", "echo never"),
		},
		Edges: []flow.Edge{edge("e1", "a", "b", "")},
	}

	execID := make(chan string, 1)
	var once sync.Once
	eng := engine.New(engine.WithNodeListener(func(id, _ string, status flow.NodeStatus) {
		if status == flow.NodeRunning {
			once.Do(func() { execID <- id })
		}
	}))

	type outcome struct {
		exec *flow.Execution
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		exec, err := eng.Execute(context.Background(), f, engine.ExecuteOptions{})
		done <- outcome{exec, err}
	}()

	select {
	case id := <-execID:
		require.NoError(t, eng.Cancel(id))
	case <-time.After(5 * time.Second):
		t.Fatal("execution never started")
	}

	select {
	case out := <-done:
		require.NoError(t, out.err)
		assert.Equal(t, flow.ExecutionCancelled, out.exec.Status)
		assert.Equal(t, flow.NodeSkipped, out.exec.Results["b"].Status)
	case <-time.After(10 * time.Second):
		t.Fatal("execution did not finish after cancel")
	}
}

func TestCancelUnknownExecution(t *testing.T) {
	err := engine.New().Cancel("no-such-id")
	assert.ErrorIs(t, err, engine.ErrExecutionNotFound)
}

// fakeCapability is a deterministic stand-in for an LLM provider.
type fakeCapability struct {
	reply string
	err   error
	last  string
}

func (f *fakeCapability) Chat(_ context.Context, messages []llm.Message, _ string) (string, error) {
	if len(messages) > 0 {
		f.last = messages[len(messages)-1].Content
	}
	return f.reply, f.err
}

func (f *fakeCapability) Provider() string { return "fake" }
func (f *fakeCapability) Model() string    { return "fake-1" }

func TestExecuteAINode(t *testing.T) {
	cap := &fakeCapability{reply: "looks good"}
	f := &flow.Flow{
		ID: "ai",
		Nodes: []flow.Node{
			shellNode("a", "echo data"),
			{ID: "b", Type: flow.NodeAI, Data: flow.AINodeData{Prompt: "review {{a.stdout}}"}},
		},
		Edges: []flow.Edge{edge("e1", "a", "b", "")},
	}

	exec, err := engine.New(engine.WithCapability(cap)).Execute(context.Background(), f, engine.ExecuteOptions{})
	require.NoError(t, err)
	assert.Equal(t, flow.ExecutionCompleted, exec.Status)

	res := exec.Results["b"]
	require.Equal(t, flow.NodeSuccess, res.Status)
	require.NotNil(t, res.AI)
	assert.Equal(t, "looks good", res.AI.Response)
	assert.Equal(t, "fake", res.AI.Provider)
	assert.Contains(t, cap.last, "review data")
}

func TestExecuteAINodeWithoutCapability(t *testing.T) {
	f := &flow.Flow{
		ID:    "ai-missing",
		Nodes: []flow.Node{{ID: "a", Type: flow.NodeAI, Data: flow.AINodeData{Prompt: "hi"}}},
	}

	exec, err := engine.New().Execute(context.Background(), f, engine.ExecuteOptions{})
	require.NoError(t, err)

	res := exec.Results["a"]
	assert.Equal(t, flow.NodeFailed, res.Status)
	assert.True(t, strings.Contains(res.Error, engine.ErrLLMUnavailable.Error()))
	assert.Equal(t, flow.ExecutionFailed, exec.Status)
}

func TestExecuteAINodeErrorContinues(t *testing.T) {
	cap := &fakeCapability{err: errors.New("rate limited")}
	f := &flow.Flow{
		ID: "ai-continue",
		Nodes: []flow.Node{
			{ID: "a", Type: flow.NodeAI, Data: flow.AINodeData{Prompt: "hi", ContinueOnError: true}},
			shellNode("b", "echo after"),
		},
		Edges: []flow.Edge{edge("e1", "a", "b", "")},
	}

	exec, err := engine.New(engine.WithCapability(cap)).Execute(context.Background(), f, engine.ExecuteOptions{})
	require.NoError(t, err)

	assert.Equal(t, flow.NodeFailed, exec.Results["a"].Status)
	assert.Equal(t, flow.NodeSuccess, exec.Results["b"].Status)
}

// exclusiveSession admits one agent command at a time, like the real
// arbiter, and counts any overlapping call it had to refuse.
type exclusiveSession struct {
	mu      sync.Mutex
	active  bool
	calls   int
	refused int
}

func (s *exclusiveSession) WriteAgent(_ context.Context, input string, _ terminal.AgentWriteOptions) (terminal.AgentResult, error) {
	s.mu.Lock()
	if s.active {
		s.refused++
		s.mu.Unlock()
		return terminal.AgentResult{}, terminal.ErrBusy
	}
	s.active = true
	s.calls++
	s.mu.Unlock()

	// Hold the session long enough for a racing node to overlap.
	time.Sleep(20 * time.Millisecond)

	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	return terminal.AgentResult{Output: "ran " + input + "\n", Cwd: "/tmp"}, nil
}

func (s *exclusiveSession) InterruptAgent() {}
func (s *exclusiveSession) Cwd() string     { return "/tmp" }

func TestExecuteFanOutSharesSession(t *testing.T) {
	// b and c become ready in the same scheduling pass; both must run
	// through the single attached session without tripping its
	// one-command-at-a-time rule.
	session := &exclusiveSession{}
	f := &flow.Flow{
		ID: "session-fan-out",
		Nodes: []flow.Node{
			shellNode("a", "echo start"),
			shellNode("b", "echo left"),
			shellNode("c", "echo right"),
		},
		Edges: []flow.Edge{
			edge("e1", "a", "b", ""),
			edge("e2", "a", "c", ""),
		},
	}

	exec, err := engine.New().Execute(context.Background(), f, engine.ExecuteOptions{Session: session})
	require.NoError(t, err)

	assert.Equal(t, flow.ExecutionCompleted, exec.Status)
	for _, id := range []string{"a", "b", "c"} {
		res := exec.Results[id]
		require.Equal(t, flow.NodeSuccess, res.Status, "node %s: %s", id, res.Error)
	}
	assert.Contains(t, exec.Results["b"].Shell.Stdout, "left")
	assert.Contains(t, exec.Results["c"].Shell.Stdout, "right")

	assert.Equal(t, 3, session.calls)
	assert.Zero(t, session.refused)
}
