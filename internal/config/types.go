package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Stage buckets plugin entries by failure policy. The set is closed: adding a
// stage means adding a constant here and a policy row in the engine.
type Stage string

const (
	// StageBuild marks gating steps that prepare artifacts.
	StageBuild Stage = "Build"
	// StageTest marks gating steps that validate the tree.
	StageTest Stage = "Test"
	// StageRelease marks publish steps that run independently of each other.
	StageRelease Stage = "Release"
)

// Stages lists every valid stage value.
func Stages() []Stage {
	return []Stage{StageBuild, StageTest, StageRelease}
}

// Valid reports whether the stage is a member of the closed set.
func (s Stage) Valid() bool {
	switch s {
	case StageBuild, StageTest, StageRelease:
		return true
	}
	return false
}

// Config represents the full slipway settings document.
type Config struct {
	Project   string    `yaml:"project" validate:"required,min=1,max=100"`
	Projects  []string  `yaml:"projects" validate:"required,min=1,dive,min=1"`
	Artifacts string    `yaml:"artifacts,omitempty"`
	Remote    string    `yaml:"remote,omitempty"`
	Plugins   EntryList `yaml:"plugins,omitempty" validate:"omitempty,dive"`
}

// PluginEntry describes one configured pipeline step. The engine reads the
// typed fields; everything the user wrote, typed fields included, is retained
// verbatim in Settings and forwarded to the plugin at invocation time.
type PluginEntry struct {
	Name     string         `yaml:"name"`
	Enabled  bool           `yaml:"enabled"`
	Stage    Stage          `yaml:"stage" validate:"release_stage"`
	Branches BranchList     `yaml:"branches" validate:"omitempty,dive,min=1"`
	Settings map[string]any `yaml:"-"`
}

// UnmarshalYAML decodes an entry, applies defaults, and captures the raw
// mapping. An entry without a stage lands in Release; an entry without
// enabled stays disabled.
func (e *PluginEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("plugin entry must be a mapping, got %s", kindName(value.Kind))
	}

	type rawEntry struct {
		Name     string     `yaml:"name"`
		Enabled  bool       `yaml:"enabled"`
		Stage    string     `yaml:"stage"`
		Branches BranchList `yaml:"branches"`
	}

	var raw rawEntry
	if err := value.Decode(&raw); err != nil {
		return err
	}

	settings := make(map[string]any)
	if err := value.Decode(&settings); err != nil {
		return err
	}

	e.Name = raw.Name
	e.Enabled = raw.Enabled
	e.Stage = Stage(raw.Stage)
	if raw.Stage == "" {
		e.Stage = StageRelease
	}
	e.Branches = raw.Branches
	e.Settings = settings

	return nil
}

// EntryList normalizes the loosely-shaped plugins value: absent, a single
// mapping, or a sequence all decode to an ordered list. Declaration order is
// preserved.
type EntryList []PluginEntry

// UnmarshalYAML accepts a mapping (one entry) or a sequence of mappings.
func (l *EntryList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		var entry PluginEntry
		if err := value.Decode(&entry); err != nil {
			return err
		}
		*l = EntryList{entry}
		return nil
	case yaml.SequenceNode:
		entries := make([]PluginEntry, 0, len(value.Content))
		for _, node := range value.Content {
			var entry PluginEntry
			if err := node.Decode(&entry); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		*l = EntryList(entries)
		return nil
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
	}
	return fmt.Errorf("plugins must be a mapping or a sequence, got %s", kindName(value.Kind))
}

// BranchList accepts a bare branch name or a list of branch names. A bare
// string becomes a one-element list; it is never split apart.
type BranchList []string

// UnmarshalYAML decodes either shape.
func (b *BranchList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*b = nil
			return nil
		}
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*b = BranchList{single}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*b = BranchList(many)
		return nil
	}
	return fmt.Errorf("branches must be a string or a list of strings, got %s", kindName(value.Kind))
}

// Contains reports whether the list names the given branch.
func (b BranchList) Contains(branch string) bool {
	for _, candidate := range b {
		if candidate == branch {
			return true
		}
	}
	return false
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
