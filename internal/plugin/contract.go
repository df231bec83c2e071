// Package plugin defines the contract between the engine and the release
// plugins: the single-method interface every plugin implements, the catalogs
// plugins are resolved from, and the invoker that validates and calls them.
package plugin

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/slipway-io/slipway/internal/logger"
	"github.com/slipway-io/slipway/internal/release"
)

// Plugin is the single entrypoint every release plugin implements. A plugin
// signals failure through the returned error and publishes its results by
// mutating the shared release context on the invocation.
type Plugin interface {
	Run(ctx context.Context, inv *Invocation) error
}

// Factory produces a fresh plugin instance. The invoker calls it once per
// invocation so no state leaks between entries that share a name.
type Factory func() Plugin

// Settings is the loosely-typed bag of configuration fields forwarded to a
// plugin: every field of its configuration entry, verbatim.
type Settings map[string]any

// Invocation is the argument a plugin receives: its own settings, the shared
// release context to read and extend, and a logger scoped to the plugin.
type Invocation struct {
	Settings Settings
	Release  *release.Context
	Log      *logger.Logger
}

// String returns the named setting when it is a string.
func (s Settings) String(key string) (string, bool) {
	v, ok := s[key].(string)
	return v, ok
}

// StringOr returns the named string setting or fallback when absent.
func (s Settings) StringOr(key, fallback string) string {
	if v, ok := s.String(key); ok && v != "" {
		return v
	}
	return fallback
}

// Bool returns the named setting as a bool, false when absent or mistyped.
func (s Settings) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// IntOr returns the named setting as an int, fallback when absent. YAML
// decoding may deliver numbers as int or float64 depending on the source.
func (s Settings) IntOr(key string, fallback int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// StringSlice returns the named setting as a list of strings. A bare string
// becomes a single-element list, mirroring how branch lists are configured.
func (s Settings) StringSlice(key string) []string {
	switch v := s[key].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Decode unmarshals the settings bag into a typed struct via a YAML
// round-trip, so plugins declare their configuration shape once with the
// same tags the configuration file uses.
func (s Settings) Decode(out any) error {
	raw, err := yaml.Marshal(map[string]any(s))
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	return nil
}
