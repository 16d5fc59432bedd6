// Package execstore is the append-only store for finished executions,
// one JSON file per execution id. Listing is ordered by file
// modification time, most recent first.
package execstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/termai/termai/internal/fileutil"
	"github.com/termai/termai/internal/flow"
	"github.com/termai/termai/internal/logger"
)

var ErrExecutionNotFound = errors.New("execstore: execution not found")

const lockTimeout = 5 * time.Second

// Store persists execution records. A directory-level advisory lock
// serializes writers across processes; records are never rewritten
// after their first save.
type Store struct {
	dir  string
	lock *flock.Flock
}

func New(dir string) (*Store, error) {
	execDir := filepath.Join(dir, "executions")
	if err := os.MkdirAll(execDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create executions directory: %w", err)
	}
	return &Store{
		dir:  execDir,
		lock: flock.New(filepath.Join(execDir, ".lock")),
	}, nil
}

// Save writes the execution once. A second save of the same id is
// refused to keep the store append-only.
func (s *Store) Save(ctx context.Context, exec *flow.Execution) error {
	if exec.ID == "" {
		return errors.New("execstore: execution has no id")
	}

	lctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := s.lock.TryLockContext(lctx, 50*time.Millisecond)
	if err != nil || !locked {
		return fmt.Errorf("failed to lock execution store: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	target := s.path(exec.ID)
	if fileutil.FileExists(target) {
		return fmt.Errorf("execstore: execution %s already recorded", exec.ID)
	}

	raw, err := json.MarshalIndent(exec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode execution %s: %w", exec.ID, err)
	}
	if err := fileutil.WriteFileAtomic(target, raw, 0600); err != nil {
		return fmt.Errorf("failed to write execution %s: %w", exec.ID, err)
	}
	logger.Debug(ctx, "Execution saved", "executionId", exec.ID, "path", target)
	return nil
}

// Load reads one execution record by id.
func (s *Store) Load(_ context.Context, id string) (*flow.Execution, error) {
	raw, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrExecutionNotFound, id)
		}
		return nil, err
	}
	var exec flow.Execution
	if err := json.Unmarshal(raw, &exec); err != nil {
		return nil, fmt.Errorf("failed to decode execution %s: %w", id, err)
	}
	return &exec, nil
}

// List returns up to limit executions, newest first by modification
// time. A limit of zero or less returns everything.
func (s *Store) List(_ context.Context, limit int) ([]*flow.Execution, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	candidates := make([]candidate, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			path:    filepath.Join(s.dir, entry.Name()),
			modTime: info.ModTime(),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime.After(candidates[j].modTime)
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	execs := make([]*flow.Execution, 0, len(candidates))
	for _, c := range candidates {
		raw, err := os.ReadFile(c.path)
		if err != nil {
			continue
		}
		var exec flow.Execution
		if err := json.Unmarshal(raw, &exec); err != nil {
			continue
		}
		execs = append(execs, &exec)
	}
	return execs, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
