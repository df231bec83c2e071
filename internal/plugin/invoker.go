package plugin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slipway-io/slipway/internal/config"
	"github.com/slipway-io/slipway/internal/logger"
	"github.com/slipway-io/slipway/internal/model"
	"github.com/slipway-io/slipway/internal/registry"
	"github.com/slipway-io/slipway/internal/release"
	"github.com/slipway-io/slipway/pkg/errors"
)

// Invoker resolves configured entries against its catalogs, validates
// whether each entry may run, and calls the plugin. It reports failures in
// the result and never decides whether the run continues; that policy
// belongs to the engine.
type Invoker struct {
	catalogs []*Catalog
	log      *logger.Logger
}

// NewInvoker creates an Invoker that resolves names against the given
// catalogs in order. The built-in catalog goes first; an override catalog,
// when present, is only consulted for names the built-ins do not provide.
func NewInvoker(log *logger.Logger, catalogs ...*Catalog) *Invoker {
	return &Invoker{catalogs: catalogs, log: log}
}

// Resolve finds the factory for a plugin name across the catalogs.
func (iv *Invoker) Resolve(name string) (Factory, bool) {
	for _, catalog := range iv.catalogs {
		if catalog == nil {
			continue
		}
		if factory, ok := catalog.Lookup(name); ok {
			return factory, true
		}
	}
	return nil, false
}

// Runnable reports whether the entry passes the branch and enablement
// checks on the given branch. It performs no resolution, no logging, and no
// side effects, so the engine can probe entries ahead of invocation.
func (iv *Invoker) Runnable(entry config.PluginEntry, branch string) bool {
	if strings.TrimSpace(entry.Name) == "" || !entry.Enabled {
		return false
	}
	if registry.IsPublishCapable(entry) {
		return len(entry.Branches) > 0 && entry.Branches.Contains(branch)
	}
	return true
}

// Invoke validates the entry, resolves its plugin, and runs it with a fresh
// instance. Skip reasons are logged here. The returned result carries the
// outcome; the caller applies its own failure policy.
func (iv *Invoker) Invoke(ctx context.Context, entry config.PluginEntry, rctx *release.Context) *model.PluginResult {
	started := time.Now()
	result := &model.PluginResult{
		Plugin:    entry.Name,
		Stage:     entry.Stage,
		Timestamp: started,
	}

	if strings.TrimSpace(entry.Name) == "" {
		iv.log.Warn("skipping plugin entry with no name")
		return skipped(result, started, "entry has no name")
	}

	log := iv.log.WithPlugin(entry.Name)

	if !entry.Enabled {
		log.Info("plugin disabled, skipping")
		return skipped(result, started, "disabled")
	}

	if registry.IsPublishCapable(entry) {
		if len(entry.Branches) == 0 {
			log.Info("publish plugin has no allowed branches, skipping")
			return skipped(result, started, "no allowed branches")
		}
		if !entry.Branches.Contains(rctx.Branch) {
			log.Info(fmt.Sprintf("branch %q is not in the allowed branches, skipping", rctx.Branch))
			return skipped(result, started, fmt.Sprintf("branch %q not allowed", rctx.Branch))
		}
	}

	factory, ok := iv.Resolve(entry.Name)
	if !ok {
		err := errors.NewResolutionError(entry.Name)
		log.Error(err, "plugin resolution failed")
		result.Status = model.StatusFailed
		result.Err = err
		result.Message = err.Error()
		result.Duration = time.Since(started)
		return result
	}

	inv := &Invocation{
		Settings: settingsFor(entry),
		Release:  rctx,
		Log:      log,
	}

	log.Debug("invoking plugin")
	if err := factory().Run(ctx, inv); err != nil {
		wrapped := errors.NewPluginError(entry.Name, err)
		log.Error(wrapped, "plugin failed")
		result.Status = model.StatusFailed
		result.Err = wrapped
		result.Message = err.Error()
		result.Duration = time.Since(started)
		return result
	}

	result.Status = model.StatusSuccess
	result.Duration = time.Since(started)
	return result
}

func skipped(result *model.PluginResult, started time.Time, message string) *model.PluginResult {
	result.Status = model.StatusSkipped
	result.Message = message
	result.Duration = time.Since(started)
	return result
}

// settingsFor shallow-copies every field of the entry into the settings bag
// the plugin receives. The typed fields win over raw duplicates so plugins
// observe the normalized values.
func settingsFor(entry config.PluginEntry) Settings {
	bag := make(Settings, len(entry.Settings)+4)
	for key, value := range entry.Settings {
		bag[key] = value
	}
	bag["name"] = entry.Name
	bag["enabled"] = entry.Enabled
	bag["stage"] = string(entry.Stage)
	if len(entry.Branches) > 0 {
		bag["branches"] = []string(entry.Branches)
	}
	return bag
}
