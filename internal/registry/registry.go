// Package registry holds the canonical ordered view of the configured plugin
// entries and answers classification questions about them: which entries are
// publish-capable, which branches release them, and which archive naming
// pattern applies. It is a pure read model over the parsed configuration.
package registry

import (
	"github.com/slipway-io/slipway/internal/config"
)

// DefaultArchivePattern names release archives when no entry declares a
// custom archive_name.
const DefaultArchivePattern = "{project}-v{version}.zip"

// archiveNameKey is the per-entry settings key for a custom archive pattern.
const archiveNameKey = "archive_name"

// publishKinds is the fixed set of plugin names that publish an artifact
// externally and are therefore branch-gated.
var publishKinds = map[string]struct{}{
	"publish":     {},
	"scm-release": {},
}

// Registry is the normalized, ordered collection of configured plugin
// entries. Declaration order is preserved and never changed.
type Registry struct {
	entries []config.PluginEntry
}

// New builds a registry from already-parsed entries.
func New(entries []config.PluginEntry) *Registry {
	return &Registry{entries: append([]config.PluginEntry(nil), entries...)}
}

// FromConfig builds a registry from the settings document.
func FromConfig(cfg *config.Config) *Registry {
	if cfg == nil {
		return New(nil)
	}
	return New(cfg.Plugins)
}

// Entries returns the plugin entries in declaration order.
func (r *Registry) Entries() []config.PluginEntry {
	return r.entries
}

// Len returns the number of configured entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// IsPublishCapable reports whether the entry names a publish-kind plugin.
// Only publish-kind plugins are branch-gated.
func IsPublishCapable(entry config.PluginEntry) bool {
	_, ok := publishKinds[entry.Name]
	return ok
}

// PublishKinds returns the fixed publish-kind plugin names.
func PublishKinds() []string {
	return []string{"publish", "scm-release"}
}

// BranchAllowed reports whether the entry may run on the given branch.
// Publish-capable entries require the branch to be listed; an empty branch
// list means they never run. Every other entry is unrestricted.
func BranchAllowed(entry config.PluginEntry, branch string) bool {
	if !IsPublishCapable(entry) {
		return true
	}
	return entry.Branches.Contains(branch)
}

// ReleaseBranches returns the union of allowed branches across all
// publish-capable entries, in first-seen order. A branch listed here is a
// branch on which at least one publisher is configured to run.
func (r *Registry) ReleaseBranches() []string {
	seen := make(map[string]struct{})
	var branches []string
	for _, entry := range r.entries {
		if !IsPublishCapable(entry) {
			continue
		}
		for _, branch := range entry.Branches {
			if _, dup := seen[branch]; dup {
				continue
			}
			seen[branch] = struct{}{}
			branches = append(branches, branch)
		}
	}
	return branches
}

// ArchivePattern returns the archive naming pattern for a run on the given
// branch: the first enabled, branch-allowed entry declaring archive_name
// wins, otherwise DefaultArchivePattern.
func (r *Registry) ArchivePattern(branch string) string {
	for _, entry := range r.entries {
		if !entry.Enabled || !BranchAllowed(entry, branch) {
			continue
		}
		if pattern, ok := entry.Settings[archiveNameKey].(string); ok && pattern != "" {
			return pattern
		}
	}
	return DefaultArchivePattern
}
