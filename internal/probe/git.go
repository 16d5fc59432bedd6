package probe

import (
	"context"
	"errors"

	git "github.com/go-git/go-git/v5"

	"github.com/termai/termai/internal/logger"
)

// gitState reads repository state via go-git. Outside a repository the
// zero value is returned.
func gitState(ctx context.Context, cwd string) GitState {
	repo, err := git.PlainOpenWithOptions(cwd, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if !errors.Is(err, git.ErrRepositoryNotExists) {
			logger.Debug(ctx, "Git probe failed", "err", err)
		}
		return GitState{}
	}

	state := GitState{IsRepo: true}

	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		state.Branch = head.Name().Short()
	}

	if remotes, err := repo.Remotes(); err == nil {
		state.HasRemote = len(remotes) > 0
	}

	wt, err := repo.Worktree()
	if err != nil {
		return state
	}
	status, err := wt.Status()
	if err != nil {
		logger.Debug(ctx, "Git status failed", "err", err)
		return state
	}

	for _, fs := range status {
		if fs.Staging == git.Untracked {
			state.Untracked++
			continue
		}
		if fs.Staging != git.Unmodified {
			state.Staged++
		}
		if fs.Worktree != git.Unmodified {
			state.Unstaged++
		}
	}
	state.HasChanges = state.Staged > 0 || state.Unstaged > 0 || state.Untracked > 0

	return state
}
