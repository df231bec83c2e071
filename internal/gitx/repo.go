// Package gitx wraps the go-git primitives the release pipeline consumes:
// branch and working-tree inspection, tag lookup at HEAD, and remote tag
// verification and push.
package gitx

import (
	"context"
	"errors"
	"fmt"
	"sort"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Repo provides read access and tag pushes for a local working copy.
type Repo struct {
	repo *git.Repository
}

// Open locates the repository containing dir.
func Open(dir string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository at %s: %w", dir, err)
	}
	return &Repo{repo: repo}, nil
}

// Branch returns the name of the currently checked-out branch. A detached
// HEAD is an error: the pipeline needs a branch to classify the run.
func (r *Repo) Branch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached at %s", head.Hash())
	}
	return head.Name().Short(), nil
}

// IsClean reports whether the working tree has no uncommitted changes.
func (r *Repo) IsClean() (bool, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("read worktree status: %w", err)
	}
	return status.IsClean(), nil
}

// TagsAtHead returns the names of all tags pointing at the current HEAD
// commit, annotated tags resolved to their targets, sorted for determinism.
func (r *Repo) TagsAtHead() ([]string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if tagObj, tagErr := r.repo.TagObject(ref.Hash()); tagErr == nil {
			target = tagObj.Target
		}
		if target == head.Hash() {
			tags = append(tags, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk tags: %w", err)
	}

	sort.Strings(tags)
	return tags, nil
}

// RemoteHasTag reports whether the named remote already advertises the tag.
func (r *Repo) RemoteHasTag(ctx context.Context, remoteName, tag string) (bool, error) {
	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return false, fmt.Errorf("resolve remote %q: %w", remoteName, err)
	}

	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("list refs on remote %q: %w", remoteName, err)
	}

	want := plumbing.NewTagReferenceName(tag)
	for _, ref := range refs {
		if ref.Name() == want {
			return true, nil
		}
	}
	return false, nil
}

// PushTag pushes a single tag ref to the named remote. Pushing a tag the
// remote already has is not an error.
func (r *Repo) PushTag(ctx context.Context, remoteName, tag string) error {
	refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", tag, tag))
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push tag %s to %q: %w", tag, remoteName, err)
	}
	return nil
}

// EnsureRemoteTag verifies the tag exists on the remote, pushing it when
// absent. It reports whether a push happened.
func (r *Repo) EnsureRemoteTag(ctx context.Context, remoteName, tag string) (bool, error) {
	present, err := r.RemoteHasTag(ctx, remoteName, tag)
	if err != nil {
		return false, err
	}
	if present {
		return false, nil
	}
	if err := r.PushTag(ctx, remoteName, tag); err != nil {
		return false, err
	}
	return true, nil
}
