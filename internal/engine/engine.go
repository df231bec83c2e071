// Package engine drives a release run: it builds the shared context once,
// walks the configured entries in declared order, performs one-time release
// initialization when the first runnable publisher is reached, and applies
// the per-stage failure policy around each invocation.
package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slipway-io/slipway/internal/config"
	"github.com/slipway-io/slipway/internal/gitx"
	"github.com/slipway-io/slipway/internal/logger"
	"github.com/slipway-io/slipway/internal/model"
	"github.com/slipway-io/slipway/internal/plugin"
	"github.com/slipway-io/slipway/internal/registry"
	"github.com/slipway-io/slipway/internal/release"
	"github.com/slipway-io/slipway/pkg/errors"
)

// Reporter receives invocation lifecycle events for presentation. The
// engine tolerates a nil reporter.
type Reporter interface {
	PluginStarted(name string, stage config.Stage)
	PluginFinished(result model.PluginResult)
}

// Options carries the collaborators an Engine needs.
type Options struct {
	Config    *config.Config
	Registry  *registry.Registry
	Invoker   *plugin.Invoker
	Repo      *gitx.Repo
	Log       *logger.Logger
	Reporter  Reporter
	WorkDir   string
	ConfigDir string
}

// Engine executes one release run, strictly sequentially.
type Engine struct {
	cfg       *config.Config
	reg       *registry.Registry
	invoker   *plugin.Invoker
	repo      *gitx.Repo
	log       *logger.Logger
	reporter  Reporter
	workDir   string
	configDir string
}

// New validates the options and creates an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("engine: config is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("engine: registry is required")
	}
	if opts.Invoker == nil {
		return nil, fmt.Errorf("engine: invoker is required")
	}
	if opts.Repo == nil {
		return nil, fmt.Errorf("engine: repository is required")
	}
	return &Engine{
		cfg:       opts.Config,
		reg:       opts.Registry,
		invoker:   opts.Invoker,
		repo:      opts.Repo,
		log:       opts.Log,
		reporter:  opts.Reporter,
		workDir:   opts.WorkDir,
		configDir: opts.ConfigDir,
	}, nil
}

// Run executes the configured entries in declared order. It returns the run
// summary and the first error encountered, which is nil only on full
// success. A context-build failure aborts before any plugin is invoked.
func (e *Engine) Run(ctx context.Context) (*model.RunSummary, error) {
	started := time.Now()
	runID := uuid.NewString()
	log := e.log.WithFields(map[string]any{"run_id": runID})

	builder := release.NewBuilder(e.cfg, e.reg, e.repo, e.log, e.workDir, e.configDir)
	rctx, err := builder.Build()
	if err != nil {
		return nil, err
	}

	summary := &model.RunSummary{
		RunID:           runID,
		Project:         rctx.Project,
		Branch:          rctx.Branch,
		Version:         rctx.Version,
		Tag:             rctx.Tag,
		ReleaseBranch:   rctx.IsReleaseBranch,
		ReleaseBranches: rctx.ReleaseBranches,
		ArtifactsDir:    rctx.ArtifactsDir,
	}

	finish := func(runErr error) (*model.RunSummary, error) {
		summary.ReleaseExecuted = releaseExecuted(summary.Results)
		summary.Err = runErr
		summary.Duration = time.Since(started)
		e.logOutcome(log, summary, rctx)
		return summary, runErr
	}

	releaseInitialized := false
	var firstErr error

	for _, entry := range e.reg.Entries() {
		// The latch fires once, on the first publisher that would
		// actually run, even when several publishers are configured.
		if !releaseInitialized && registry.IsPublishCapable(entry) && e.invoker.Runnable(entry, rctx.Branch) {
			if err := e.initReleaseStage(ctx, rctx, log); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return finish(firstErr)
			}
			releaseInitialized = true
		}

		if e.reporter != nil {
			e.reporter.PluginStarted(entry.Name, entry.Stage)
		}
		result := e.invoker.Invoke(ctx, entry, rctx)
		summary.Results = append(summary.Results, *result)
		if e.reporter != nil {
			e.reporter.PluginFinished(*result)
		}

		if result.Err == nil {
			continue
		}
		if firstErr == nil {
			firstErr = result.Err
		}

		// An unresolvable plugin cannot run at all; that never aborts
		// the run, whatever its stage.
		var rerr *errors.ResolutionError
		if stderrors.As(result.Err, &rerr) {
			continue
		}

		if PolicyFor(entry.Stage).AbortOnFailure {
			log.Error(result.Err, fmt.Sprintf("plugin %q failed in stage %s, aborting run", entry.Name, entry.Stage))
			return finish(firstErr)
		}
		log.Error(result.Err, fmt.Sprintf("plugin %q failed, continuing with remaining entries", entry.Name))
	}

	return finish(firstErr)
}

// initReleaseStage makes sure the resolved tag exists on the remote and
// defaults the release output directory from the artifacts directory unless
// an earlier plugin already set it.
func (e *Engine) initReleaseStage(ctx context.Context, rctx *release.Context, log *logger.Logger) error {
	log.WithFields(map[string]any{
		"tag":    rctx.Tag,
		"remote": e.cfg.Remote,
	}).Info("initializing release stage")

	pushed, err := e.repo.EnsureRemoteTag(ctx, e.cfg.Remote, rctx.Tag)
	if err != nil {
		return fmt.Errorf("ensure tag %s on remote %q: %w", rctx.Tag, e.cfg.Remote, err)
	}
	if pushed {
		log.Info(fmt.Sprintf("pushed tag %s to %s", rctx.Tag, e.cfg.Remote))
	}

	if rctx.ReleaseDir == "" {
		rctx.ReleaseDir = rctx.ArtifactsDir
	}
	return nil
}

func (e *Engine) logOutcome(log *logger.Logger, summary *model.RunSummary, rctx *release.Context) {
	fields := map[string]any{
		"succeeded":        summary.CountByStatus(model.StatusSuccess),
		"skipped":          summary.CountByStatus(model.StatusSkipped),
		"failed":           summary.CountByStatus(model.StatusFailed),
		"artifacts":        summary.ArtifactsDir,
		"release_executed": summary.ReleaseExecuted,
	}
	if summary.Ok() {
		log.WithFields(fields).Info("run complete")
	} else {
		log.WithFields(fields).Warn("run finished with errors")
	}

	if rctx.IsNonReleaseBranch && !summary.ReleaseExecuted {
		if len(rctx.ReleaseBranches) > 0 {
			log.Info(fmt.Sprintf("release plugins run on branch %q", rctx.ReleaseBranches[0]))
		} else {
			log.Info("no publish-capable plugin has allowed branches configured")
		}
	}
}

func releaseExecuted(results []model.PluginResult) bool {
	for _, r := range results {
		if r.Stage != config.StageRelease {
			continue
		}
		if r.Status == model.StatusSuccess || r.Status == model.StatusFailed {
			return true
		}
	}
	return false
}
