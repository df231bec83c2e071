package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeProjectFixture creates a committed repository holding a version file
// and the given settings document, returning the settings path.
func writeProjectFixture(t *testing.T, settings string) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "version.yaml"), []byte("version: 1.2.3\n"), 0o644))
	cfgPath := filepath.Join(dir, "slipway.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(settings), 0o644))

	commitAll(t, repo, "initial")

	return cfgPath
}

func commitAll(t *testing.T, repo *git.Repository, message string) {
	t.Helper()

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&git.AddOptions{All: true}))

	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "slipway",
			Email: "slipway@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

func checkoutBranch(t *testing.T, dir, name string) {
	t.Helper()

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	}))
}
