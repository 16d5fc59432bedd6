// Package flowstore persists flows as one JSON file per flow under a
// root directory, optionally grouped into sanitized sub-folders.
package flowstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/termai/termai/internal/fileutil"
	"github.com/termai/termai/internal/flow"
	"github.com/termai/termai/internal/logger"
)

var (
	ErrFlowNotFound  = errors.New("flowstore: flow not found")
	ErrInvalidFlowID = errors.New("flowstore: invalid flow id")
)

const defaultCacheSize = 64

// Flow ids become file names, so they carry the same character
// restrictions as folders.
var idRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var folderStripRe = regexp.MustCompile(`[^A-Za-z0-9_/-]+`)

// Store reads and writes flow records. Saves are atomic whole-record
// writes; a rejected flow never leaves a partial file behind.
type Store struct {
	flowsDir string
	cache    *lru.Cache[string, *flow.Flow]
}

type Option func(*Store)

// WithCacheSize overrides the decoded-flow cache capacity.
func WithCacheSize(n int) Option {
	return func(s *Store) {
		if cache, err := lru.New[string, *flow.Flow](n); err == nil {
			s.cache = cache
		}
	}
}

// New creates the store rooted at dir; flows live under dir/flows.
func New(dir string, opts ...Option) (*Store, error) {
	flowsDir := filepath.Join(dir, "flows")
	if err := os.MkdirAll(flowsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create flows directory: %w", err)
	}
	cache, err := lru.New[string, *flow.Flow](defaultCacheSize)
	if err != nil {
		return nil, err
	}
	s := &Store{flowsDir: flowsDir, cache: cache}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SanitizeFolder reduces a requested folder to the permitted alphabet
// (alphanumerics, underscore, hyphen, slash) and strips any traversal.
func SanitizeFolder(folder string) string {
	folder = folderStripRe.ReplaceAllString(folder, "")
	parts := strings.Split(folder, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "/")
}

// Save validates and writes the flow. An invalid graph is rejected
// before anything touches disk.
func (s *Store) Save(ctx context.Context, f *flow.Flow) error {
	if !idRe.MatchString(f.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidFlowID, f.ID)
	}
	warnings, err := flow.Validate(f)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		logger.Warn(ctx, "Flow warning", "flowId", f.ID, "warning", w)
	}

	f.Folder = SanitizeFolder(f.Folder)
	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	// A save may move the flow into a different folder; drop any
	// previous copy so the id stays unique in the tree.
	if prev, err := s.locate(f.ID); err == nil && prev != s.path(f) {
		_ = os.Remove(prev)
	}

	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode flow %s: %w", f.ID, err)
	}

	target := s.path(f)
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(target, raw, 0600); err != nil {
		return fmt.Errorf("failed to write flow %s: %w", f.ID, err)
	}

	// The cache holds its own copy; the caller keeps mutating f.
	if cached, err := cloneFlow(f); err == nil {
		s.cache.Add(f.ID, cached)
	}
	logger.Debug(ctx, "Flow saved", "flowId", f.ID, "path", target)
	return nil
}

// Load returns the flow with the given id, searching every folder.
// Each call returns an independent copy; mutating it affects neither
// the cache nor a later Load.
func (s *Store) Load(_ context.Context, id string) (*flow.Flow, error) {
	if cached, ok := s.cache.Get(id); ok {
		if f, err := cloneFlow(cached); err == nil {
			return f, nil
		}
	}
	path, err := s.locate(id)
	if err != nil {
		return nil, err
	}
	f, err := s.read(path)
	if err != nil {
		return nil, err
	}
	if cached, err := cloneFlow(f); err == nil {
		s.cache.Add(id, cached)
	}
	return f, nil
}

// List returns every stored flow ordered by most recent update.
func (s *Store) List(_ context.Context) ([]*flow.Flow, error) {
	matches, err := doublestar.Glob(os.DirFS(s.flowsDir), "**/*.json")
	if err != nil {
		return nil, err
	}
	flows := make([]*flow.Flow, 0, len(matches))
	for _, rel := range matches {
		f, err := s.read(filepath.Join(s.flowsDir, rel))
		if err != nil {
			continue
		}
		flows = append(flows, f)
	}
	sort.Slice(flows, func(i, j int) bool {
		return flows[i].UpdatedAt.After(flows[j].UpdatedAt)
	})
	return flows, nil
}

// Delete removes the flow file and evicts the cache entry. Deleting an
// unknown id returns ErrFlowNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	path, err := s.locate(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	s.cache.Remove(id)
	logger.Debug(ctx, "Flow deleted", "flowId", id, "path", path)
	return nil
}

func (s *Store) path(f *flow.Flow) string {
	if f.Folder != "" {
		return filepath.Join(s.flowsDir, filepath.FromSlash(f.Folder), f.ID+".json")
	}
	return filepath.Join(s.flowsDir, f.ID+".json")
}

func (s *Store) locate(id string) (string, error) {
	if !idRe.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFlowID, id)
	}
	matches, err := doublestar.Glob(os.DirFS(s.flowsDir), "**/"+id+".json")
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrFlowNotFound, id)
	}
	return filepath.Join(s.flowsDir, matches[0]), nil
}

// cloneFlow deep-copies a flow through its JSON form.
func cloneFlow(f *flow.Flow) (*flow.Flow, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	var c flow.Flow
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) read(path string) (*flow.Flow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f flow.Flow
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode flow file %s: %w", path, err)
	}
	return &f, nil
}
