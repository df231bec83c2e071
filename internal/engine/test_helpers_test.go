package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/slipway-io/slipway/internal/config"
	"github.com/slipway-io/slipway/internal/gitx"
	"github.com/slipway-io/slipway/internal/logger"
	"github.com/slipway-io/slipway/internal/model"
	"github.com/slipway-io/slipway/internal/plugin"
	"github.com/slipway-io/slipway/internal/registry"
)

type fixture struct {
	dir  string
	repo *git.Repository
	gx   *gitx.Repo
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Options{Level: "debug", Writer: io.Discard})
	require.NoError(t, err)
	return log
}

func newFixture(t *testing.T, version string, tags ...string) *fixture {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	content := fmt.Sprintf("version: %s\n", version)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "version.yaml"), []byte(content), 0o644))

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, worktree.AddWithOptions(&git.AddOptions{All: true}))
	hash, err := worktree.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	for _, tag := range tags {
		_, err = repo.CreateTag(tag, hash, nil)
		require.NoError(t, err)
	}

	gx, err := gitx.Open(dir)
	require.NoError(t, err)

	return &fixture{dir: dir, repo: repo, gx: gx}
}

func (fx *fixture) addRemote(t *testing.T) {
	t.Helper()
	remoteDir := t.TempDir()
	_, err := git.PlainInit(remoteDir, true)
	require.NoError(t, err)
	_, err = fx.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{remoteDir},
	})
	require.NoError(t, err)
}

func (fx *fixture) deleteRemoteTag(t *testing.T, tag string) {
	t.Helper()
	refSpec := gitconfig.RefSpec(":refs/tags/" + tag)
	err := fx.repo.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refSpec},
	})
	require.NoError(t, err)
}

func (fx *fixture) remoteHasTag(t *testing.T, tag string) bool {
	t.Helper()
	present, err := fx.gx.RemoteHasTag(context.Background(), "origin", tag)
	require.NoError(t, err)
	return present
}

func testConfig(entries ...config.PluginEntry) *config.Config {
	return &config.Config{
		Project:   "demo",
		Projects:  []string{"version.yaml"},
		Artifacts: "artifacts",
		Remote:    "origin",
		Plugins:   config.EntryList(entries),
	}
}

func entryOn(name string, stage config.Stage, branches ...string) config.PluginEntry {
	return config.PluginEntry{
		Name:     name,
		Enabled:  true,
		Stage:    stage,
		Branches: config.BranchList(branches),
	}
}

type scriptedPlugin struct {
	run func(ctx context.Context, inv *plugin.Invocation) error
}

func (p *scriptedPlugin) Run(ctx context.Context, inv *plugin.Invocation) error {
	if p.run == nil {
		return nil
	}
	return p.run(ctx, inv)
}

func scripted(run func(ctx context.Context, inv *plugin.Invocation) error) plugin.Factory {
	return func() plugin.Plugin {
		return &scriptedPlugin{run: run}
	}
}

func newEngine(t *testing.T, fx *fixture, cfg *config.Config, catalog *plugin.Catalog, reporter Reporter) *Engine {
	t.Helper()
	log := newTestLogger(t)
	eng, err := New(Options{
		Config:    cfg,
		Registry:  registry.FromConfig(cfg),
		Invoker:   plugin.NewInvoker(log, catalog),
		Repo:      fx.gx,
		Log:       log,
		Reporter:  reporter,
		WorkDir:   fx.dir,
		ConfigDir: fx.dir,
	})
	require.NoError(t, err)
	return eng
}

type recordingReporter struct {
	events []string
}

func (r *recordingReporter) PluginStarted(name string, _ config.Stage) {
	r.events = append(r.events, "start:"+name)
}

func (r *recordingReporter) PluginFinished(result model.PluginResult) {
	r.events = append(r.events, "finish:"+result.Plugin+":"+string(result.Status))
}
