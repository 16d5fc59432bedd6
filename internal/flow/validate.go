package flow

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Structural validation errors; all wrap ErrGraphInvalid so callers
// can reject a save with a single errors.Is check.
var (
	ErrGraphInvalid = errors.New("flow: invalid graph")

	ErrCycleDetected       = fmt.Errorf("%w: cycle detected", ErrGraphInvalid)
	ErrUnknownEndpoint     = fmt.Errorf("%w: edge references unknown node", ErrGraphInvalid)
	ErrDuplicateNodeID     = fmt.Errorf("%w: duplicate node id", ErrGraphInvalid)
	ErrBranchHandleTaken   = fmt.Errorf("%w: branch handle has multiple edges", ErrGraphInvalid)
	ErrInvalidSourceHandle = fmt.Errorf("%w: non-branch node emits non-default handle", ErrGraphInvalid)
)

// Validate checks flow structure. It returns the first hard error, or
// nil plus warnings for non-fatal findings (unreachable nodes). Saves
// must reject flows whose Validate returns an error; no partial write.
func Validate(f *Flow) ([]string, error) {
	byID := make(map[string]*Node, len(f.Nodes))
	for i := range f.Nodes {
		n := &f.Nodes[i]
		if _, dup := byID[n.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNodeID, n.ID)
		}
		byID[n.ID] = n
	}

	handleSeen := make(map[string]map[Handle]bool)
	for _, e := range f.Edges {
		src, ok := byID[e.Source]
		if !ok {
			return nil, fmt.Errorf("%w: source %q", ErrUnknownEndpoint, e.Source)
		}
		if _, ok := byID[e.Target]; !ok {
			return nil, fmt.Errorf("%w: target %q", ErrUnknownEndpoint, e.Target)
		}

		handle := e.EffectiveHandle()
		if src.Type == NodeBranch {
			if handleSeen[e.Source] == nil {
				handleSeen[e.Source] = make(map[Handle]bool)
			}
			if handleSeen[e.Source][handle] {
				return nil, fmt.Errorf("%w: node %q handle %q", ErrBranchHandleTaken, e.Source, handle)
			}
			handleSeen[e.Source][handle] = true
		} else if handle != HandleDefault {
			return nil, fmt.Errorf("%w: node %q handle %q", ErrInvalidSourceHandle, e.Source, handle)
		}
	}

	if hasCycle(f) {
		return nil, ErrCycleDetected
	}

	return unreachableWarnings(f), nil
}

// hasCycle runs Kahn's algorithm; leftover positive in-degrees mean a
// directed cycle.
func hasCycle(f *Flow) bool {
	inDegree := make(map[string]int, len(f.Nodes))
	out := make(map[string][]string)
	for _, n := range f.Nodes {
		inDegree[n.ID] = 0
	}
	for _, e := range f.Edges {
		out[e.Source] = append(out[e.Source], e.Target)
		inDegree[e.Target]++
	}

	var q []string
	for id, deg := range inDegree {
		if deg == 0 {
			q = append(q, id)
		}
	}

	visited := 0
	for len(q) > 0 {
		id := q[0]
		q = q[1:]
		visited++
		for _, next := range out[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				q = append(q, next)
			}
		}
	}

	return visited != len(f.Nodes)
}

// EntryNodes returns nodes with zero incoming edges.
func EntryNodes(f *Flow) []Node {
	hasIncoming := make(map[string]bool)
	for _, e := range f.Edges {
		hasIncoming[e.Target] = true
	}
	return lo.Filter(f.Nodes, func(n Node, _ int) bool {
		return !hasIncoming[n.ID]
	})
}

// ReachableFrom returns the set of node ids reachable from the entry
// set, entries included.
func ReachableFrom(f *Flow, entries []Node) map[string]bool {
	out := make(map[string][]string)
	for _, e := range f.Edges {
		out[e.Source] = append(out[e.Source], e.Target)
	}

	reached := make(map[string]bool)
	queue := lo.Map(entries, func(n Node, _ int) string { return n.ID })
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reached[id] {
			continue
		}
		reached[id] = true
		queue = append(queue, out[id]...)
	}
	return reached
}

// unreachableWarnings flags nodes that no entry point can reach.
func unreachableWarnings(f *Flow) []string {
	if len(f.Nodes) == 0 {
		return nil
	}
	reached := ReachableFrom(f, EntryNodes(f))
	var warnings []string
	for _, n := range f.Nodes {
		if !reached[n.ID] {
			warnings = append(warnings, fmt.Sprintf("node %q is unreachable from any entry point", n.ID))
		}
	}
	return warnings
}
