// Package flow defines the workflow data model: flows as directed
// acyclic multigraphs of typed nodes, plus execution records. Graph
// structure is validated on save; execution lives in the engine
// subpackage.
package flow

import (
	"encoding/json"
	"fmt"
	"time"
)

// NodeType discriminates the node data union.
type NodeType string

const (
	NodeShell  NodeType = "shell"
	NodeAI     NodeType = "ai"
	NodeBranch NodeType = "branch"
	NodeFile   NodeType = "file"
)

// Handle names an output port. Non-branch nodes emit only the default
// handle; branch nodes additionally route true and false.
type Handle string

const (
	HandleDefault Handle = "default"
	HandleTrue    Handle = "true"
	HandleFalse   Handle = "false"
)

// FileOp is a file node operation.
type FileOp string

const (
	FileRead   FileOp = "read"
	FileWrite  FileOp = "write"
	FileAppend FileOp = "append"
	FileExists FileOp = "exists"
	FileDelete FileOp = "delete"
)

// Flow is a saved workflow. Saves rewrite the whole record.
type Flow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Folder    string    `json:"folder,omitempty"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Node is one step of a flow. Data is a tagged variant matching Type.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Data     NodeData `json:"data"`
	Position Position `json:"position"`
}

// Position is the node's canvas placement.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge connects two nodes through a source handle.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle Handle `json:"sourceHandle,omitempty"`
}

// EffectiveHandle normalizes the empty handle to default.
func (e Edge) EffectiveHandle() Handle {
	if e.SourceHandle == "" {
		return HandleDefault
	}
	return e.SourceHandle
}

// NodeData is the per-type payload. Implementations are ShellNodeData,
// AINodeData, BranchNodeData and FileNodeData.
type NodeData interface {
	nodeData()

	// ContinuesOnError reports whether downstream nodes may proceed
	// past a failure of this node's successor gating.
	ContinuesOnError() bool
}

// ShellNodeData runs a command in the attached terminal session (or a
// child process when no session is attached).
type ShellNodeData struct {
	Command string `json:"command"`

	// TimeoutMillis bounds execution; zero means the 60 s default.
	TimeoutMillis int64 `json:"timeout,omitempty"`

	Cwd             string `json:"cwd,omitempty"`
	ContinueOnError bool   `json:"continueOnError,omitempty"`
}

// AINodeData calls the bound LLM capability.
type AINodeData struct {
	Prompt          string `json:"prompt"`
	SystemPrompt    string `json:"systemPrompt,omitempty"`
	Provider        string `json:"provider,omitempty"`
	Model           string `json:"model,omitempty"`
	ContinueOnError bool   `json:"continueOnError,omitempty"`
}

// BranchNodeData evaluates a restricted condition and routes the true
// or false handle.
type BranchNodeData struct {
	Condition string `json:"condition"`
}

// FileNodeData performs a file operation rooted in the user home or
// the process working directory.
type FileNodeData struct {
	Operation       FileOp `json:"operation"`
	FilePath        string `json:"filePath"`
	Content         string `json:"content,omitempty"`
	ContinueOnError bool   `json:"continueOnError,omitempty"`
}

func (ShellNodeData) nodeData()  {}
func (AINodeData) nodeData()     {}
func (BranchNodeData) nodeData() {}
func (FileNodeData) nodeData()   {}

func (d ShellNodeData) ContinuesOnError() bool { return d.ContinueOnError }
func (d AINodeData) ContinuesOnError() bool    { return d.ContinueOnError }
func (BranchNodeData) ContinuesOnError() bool  { return false }
func (d FileNodeData) ContinuesOnError() bool  { return d.ContinueOnError }

// Timeout returns the shell timeout as a duration, zero when unset.
func (d ShellNodeData) Timeout() time.Duration {
	return time.Duration(d.TimeoutMillis) * time.Millisecond
}

// nodeAlias avoids recursion in the custom (un)marshalers.
type nodeAlias struct {
	ID       string          `json:"id"`
	Type     NodeType        `json:"type"`
	Data     json.RawMessage `json:"data"`
	Position Position        `json:"position"`
}

// MarshalJSON encodes the data variant inline under "data".
func (n Node) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(n.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(nodeAlias{ID: n.ID, Type: n.Type, Data: raw, Position: n.Position})
}

// UnmarshalJSON decodes the data variant according to the type tag.
func (n *Node) UnmarshalJSON(b []byte) error {
	var alias nodeAlias
	if err := json.Unmarshal(b, &alias); err != nil {
		return err
	}

	n.ID = alias.ID
	n.Type = alias.Type
	n.Position = alias.Position

	if len(alias.Data) == 0 {
		alias.Data = json.RawMessage("{}")
	}

	switch alias.Type {
	case NodeShell:
		var d ShellNodeData
		if err := json.Unmarshal(alias.Data, &d); err != nil {
			return err
		}
		n.Data = d
	case NodeAI:
		var d AINodeData
		if err := json.Unmarshal(alias.Data, &d); err != nil {
			return err
		}
		n.Data = d
	case NodeBranch:
		var d BranchNodeData
		if err := json.Unmarshal(alias.Data, &d); err != nil {
			return err
		}
		n.Data = d
	case NodeFile:
		var d FileNodeData
		if err := json.Unmarshal(alias.Data, &d); err != nil {
			return err
		}
		n.Data = d
	default:
		return fmt.Errorf("unknown node type %q", alias.Type)
	}
	return nil
}
