package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/termai/termai/internal/flow"
	"github.com/termai/termai/internal/llm"
	"github.com/termai/termai/internal/logger"
	"github.com/termai/termai/internal/terminal"
)

// TerminalSession is the slice of the session arbiter the engine needs
// for shell nodes and cancellation.
type TerminalSession interface {
	WriteAgent(ctx context.Context, input string, opts terminal.AgentWriteOptions) (terminal.AgentResult, error)
	InterruptAgent()
	Cwd() string
}

// ExecutionSaver persists finished executions. The engine saves at most
// once per execution, after the terminal status is set.
type ExecutionSaver interface {
	Save(ctx context.Context, exec *flow.Execution) error
}

// NodeListener observes per-node status transitions as they happen.
type NodeListener func(executionID, nodeID string, status flow.NodeStatus)

// ExecuteOptions carries the per-run attachments.
type ExecuteOptions struct {
	// Session, when set, runs shell nodes inside the user's PTY.
	Session   TerminalSession
	SessionID string
}

// Engine runs validated flows. Independent ready nodes execute
// concurrently; results are applied by the scheduling goroutine only,
// so the results map needs no locking of its own.
type Engine struct {
	capability llm.Capability
	saver      ExecutionSaver
	listener   NodeListener

	mu   sync.Mutex
	runs map[string]*run
}

// Option configures the engine.
type Option func(*Engine)

// WithCapability binds the LLM used by ai nodes.
func WithCapability(c llm.Capability) Option {
	return func(e *Engine) { e.capability = c }
}

// WithExecutionSaver persists each execution once it reaches a
// terminal status.
func WithExecutionSaver(s ExecutionSaver) Option {
	return func(e *Engine) { e.saver = s }
}

// WithNodeListener registers a transition observer.
func WithNodeListener(l NodeListener) Option {
	return func(e *Engine) { e.listener = l }
}

func New(opts ...Option) *Engine {
	e := &Engine{runs: make(map[string]*run)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run is the mutable state of one execution, owned by its scheduler
// goroutine except for the cancellation flag.
type run struct {
	exec     *flow.Execution
	flow     *flow.Flow
	nodes    map[string]*flow.Node
	incoming map[string][]flow.Edge
	outgoing map[string][]flow.Edge
	session  TerminalSession

	// sessionMu serializes shell nodes on the attached session: the
	// arbiter admits one agent command at a time, so concurrently
	// ready shell nodes queue here instead of racing into ErrBusy.
	sessionMu sync.Mutex

	cancelMu  sync.Mutex
	cancelled bool
}

func (r *run) cancel() {
	r.cancelMu.Lock()
	already := r.cancelled
	r.cancelled = true
	r.cancelMu.Unlock()
	if !already && r.session != nil {
		r.session.InterruptAgent()
	}
}

func (r *run) isCancelled() bool {
	r.cancelMu.Lock()
	defer r.cancelMu.Unlock()
	return r.cancelled
}

type nodeDone struct {
	nodeID string
	result *flow.NodeResult
}

// Execute validates f, then runs it to a terminal status. The returned
// execution is complete; callers inspect Status and Results. Fatal
// setup errors (invalid graph, empty entry set) are returned alongside
// a failed execution record.
func (e *Engine) Execute(ctx context.Context, f *flow.Flow, opts ExecuteOptions) (*flow.Execution, error) {
	exec := &flow.Execution{
		ID:        ulid.Make().String(),
		FlowID:    f.ID,
		SessionID: opts.SessionID,
		StartedAt: time.Now().UTC(),
		Status:    flow.ExecutionRunning,
		Results:   make(map[string]*flow.NodeResult, len(f.Nodes)),
	}
	for _, n := range f.Nodes {
		exec.Results[n.ID] = &flow.NodeResult{Status: flow.NodePending}
	}

	warnings, err := flow.Validate(f)
	if err != nil {
		e.finish(ctx, exec, flow.ExecutionFailed, err.Error())
		return exec, err
	}
	for _, w := range warnings {
		logger.Warn(ctx, "Flow warning", "flowId", f.ID, "warning", w)
	}

	entries := flow.EntryNodes(f)
	if len(entries) == 0 {
		e.finish(ctx, exec, flow.ExecutionFailed, ErrNoEntry.Error())
		return exec, ErrNoEntry
	}

	r := &run{
		exec:     exec,
		flow:     f,
		nodes:    make(map[string]*flow.Node, len(f.Nodes)),
		incoming: make(map[string][]flow.Edge),
		outgoing: make(map[string][]flow.Edge),
		session:  opts.Session,
	}
	for i := range f.Nodes {
		n := &f.Nodes[i]
		r.nodes[n.ID] = n
	}
	for _, edge := range f.Edges {
		r.incoming[edge.Target] = append(r.incoming[edge.Target], edge)
		r.outgoing[edge.Source] = append(r.outgoing[edge.Source], edge)
	}

	e.mu.Lock()
	e.runs[exec.ID] = r
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.runs, exec.ID)
		e.mu.Unlock()
	}()

	logger.Info(ctx, "Execution started", "executionId", exec.ID, "flowId", f.ID, "nodes", len(f.Nodes))
	e.schedule(ctx, r, opts)

	status := flow.ExecutionCompleted
	var reason string
	if r.isCancelled() {
		status = flow.ExecutionCancelled
	} else {
		for id, res := range exec.Results {
			if res.Status == flow.NodeFailed {
				status = flow.ExecutionFailed
				reason = fmt.Sprintf("node %s: %s", id, res.Error)
				break
			}
		}
	}
	e.finish(ctx, exec, status, reason)
	return exec, nil
}

// Cancel flips the execution to cancelled. In-flight shell nodes get a
// PTY interrupt; in-flight AI nodes run out and have their payloads
// dropped.
func (e *Engine) Cancel(executionID string) error {
	e.mu.Lock()
	r, ok := e.runs[executionID]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrExecutionNotFound, executionID)
	}
	r.cancel()
	return nil
}

// schedule drives the run: it dispatches every ready node, blocks for
// one completion, applies it, and repeats until nothing reachable is
// pending or running.
func (e *Engine) schedule(ctx context.Context, r *run, opts ExecuteOptions) {
	reachable := flow.ReachableFrom(r.flow, flow.EntryNodes(r.flow))
	doneCh := make(chan nodeDone, len(r.nodes))
	inflight := 0

	for {
		progressed := false
		for id := range r.nodes {
			if !reachable[id] || r.exec.Results[id].Status != flow.NodePending {
				continue
			}
			switch e.gate(r, id) {
			case gateRun:
				if r.isCancelled() {
					e.setStatus(r, id, flow.NodeSkipped, "")
					progressed = true
					continue
				}
				e.setStatus(r, id, flow.NodeRunning, "")
				inflight++
				progressed = true
				e.dispatch(ctx, r, id, opts, doneCh)
			case gateSkip:
				e.setStatus(r, id, flow.NodeSkipped, "")
				progressed = true
			case gateWait:
			}
		}

		if progressed {
			continue
		}
		if inflight == 0 {
			return
		}

		done := <-doneCh
		inflight--
		e.apply(r, done)
	}
}

type gateVerdict int

const (
	gateWait gateVerdict = iota
	gateRun
	gateSkip
)

// gate decides whether a pending node can run. Every predecessor must
// be terminal; a skipped predecessor, a failed predecessor without
// continueOnError, or a branch edge routed the other way skips the
// node instead.
func (e *Engine) gate(r *run, nodeID string) gateVerdict {
	for _, edge := range r.incoming[nodeID] {
		pred := r.exec.Results[edge.Source]
		if !pred.Status.Terminal() {
			return gateWait
		}
		switch pred.Status {
		case flow.NodeSkipped:
			return gateSkip
		case flow.NodeFailed:
			if !r.nodes[edge.Source].Data.ContinuesOnError() {
				return gateSkip
			}
		case flow.NodeSuccess:
			if pred.Branch != nil && !branchTakes(edge, pred.Branch.ConditionResult) {
				return gateSkip
			}
		}
	}
	return gateRun
}

// branchTakes reports whether a branch edge is on the routed path. The
// default handle is routed unconditionally.
func branchTakes(edge flow.Edge, conditionResult bool) bool {
	switch edge.EffectiveHandle() {
	case flow.HandleTrue:
		return conditionResult
	case flow.HandleFalse:
		return !conditionResult
	default:
		return true
	}
}

// dispatch interpolates the node against the current result snapshot
// and runs it in its own goroutine. Interpolation happens here, on the
// scheduling goroutine, so workers never read the shared results map.
func (e *Engine) dispatch(ctx context.Context, r *run, nodeID string, opts ExecuteOptions, doneCh chan<- nodeDone) {
	node := r.nodes[nodeID]
	results := r.exec.Results

	if e.listener != nil {
		e.listener(r.exec.ID, nodeID, flow.NodeRunning)
	}

	res := &flow.NodeResult{Status: flow.NodeRunning, StartedAt: time.Now().UTC()}

	switch data := node.Data.(type) {
	case flow.ShellNodeData:
		d := data
		d.Command = Interpolate(data.Command, results)
		d.Cwd = Interpolate(data.Cwd, results)
		go func() {
			if opts.Session != nil {
				r.sessionMu.Lock()
				defer r.sessionMu.Unlock()
			}
			shellRes, err := e.runShellNode(ctx, &d, d.Command, opts)
			res.Shell = shellRes
			settle(res, err)
			doneCh <- nodeDone{nodeID: nodeID, result: res}
		}()

	case flow.AINodeData:
		d := data
		d.Prompt = Interpolate(data.Prompt, results)
		d.SystemPrompt = Interpolate(data.SystemPrompt, results)
		go func() {
			aiRes, err := e.runAINode(ctx, &d, d.Prompt)
			res.AI = aiRes
			settle(res, err)
			doneCh <- nodeDone{nodeID: nodeID, result: res}
		}()

	case flow.BranchNodeData:
		evaluated := Interpolate(data.Condition, results)
		go func() {
			res.Branch = &flow.BranchResult{
				ConditionResult: EvaluateCondition(evaluated),
				Evaluated:       evaluated,
			}
			settle(res, nil)
			doneCh <- nodeDone{nodeID: nodeID, result: res}
		}()

	case flow.FileNodeData:
		d := data
		d.FilePath = Interpolate(data.FilePath, results)
		d.Content = Interpolate(data.Content, results)
		go func() {
			fileRes, err := runFileNode(&d, d.FilePath, d.Content)
			res.File = fileRes
			settle(res, err)
			doneCh <- nodeDone{nodeID: nodeID, result: res}
		}()

	default:
		settle(res, fmt.Errorf("unknown node type %q", node.Type))
		doneCh <- nodeDone{nodeID: nodeID, result: res}
	}
}

func settle(res *flow.NodeResult, err error) {
	res.DurationMS = time.Since(res.StartedAt).Milliseconds()
	if err != nil {
		res.Status = flow.NodeFailed
		res.Error = err.Error()
		return
	}
	res.Status = flow.NodeSuccess
}

// apply records a worker's result. AI payloads arriving after a cancel
// are dropped and the node is recorded skipped.
func (e *Engine) apply(r *run, done nodeDone) {
	res := done.result
	node := r.nodes[done.nodeID]
	if r.isCancelled() && node.Type == flow.NodeAI {
		res = &flow.NodeResult{
			Status:     flow.NodeSkipped,
			StartedAt:  res.StartedAt,
			DurationMS: res.DurationMS,
		}
	}
	r.exec.Results[done.nodeID] = res
	if e.listener != nil {
		e.listener(r.exec.ID, done.nodeID, res.Status)
	}
}

func (e *Engine) setStatus(r *run, nodeID string, status flow.NodeStatus, errMsg string) {
	res := r.exec.Results[nodeID]
	res.Status = status
	if errMsg != "" {
		res.Error = errMsg
	}
	if e.listener != nil && status != flow.NodeRunning {
		e.listener(r.exec.ID, nodeID, status)
	}
}

func (e *Engine) finish(ctx context.Context, exec *flow.Execution, status flow.ExecutionStatus, reason string) {
	now := time.Now().UTC()
	exec.EndedAt = &now
	exec.Status = status
	exec.Error = reason

	logger.Info(ctx, "Execution finished",
		"executionId", exec.ID,
		"status", string(status),
		"duration", now.Sub(exec.StartedAt).String(),
	)

	if e.saver != nil {
		if err := e.saver.Save(ctx, exec); err != nil {
			logger.Error(ctx, "Failed to persist execution", "executionId", exec.ID, "err", err)
		}
	}
}
