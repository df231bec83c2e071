package release

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/slipway-io/slipway/internal/config"
	"github.com/slipway-io/slipway/internal/gitx"
	"github.com/slipway-io/slipway/internal/logger"
	"github.com/slipway-io/slipway/internal/project"
	"github.com/slipway-io/slipway/internal/registry"
	"github.com/slipway-io/slipway/pkg/errors"
)

// releaseTagPattern is the strict shape a tag must have to count as a
// release tag on a release branch.
var releaseTagPattern = regexp.MustCompile(`^v\d+\.\d+\.\d+$`)

// Builder assembles the shared context from configuration, project
// descriptors, and the state of the working copy.
type Builder struct {
	cfg       *config.Config
	reg       *registry.Registry
	repo      *gitx.Repo
	log       *logger.Logger
	workDir   string
	configDir string
}

// NewBuilder creates a Builder rooted at workDir. Project file patterns and
// relative directories resolve against configDir.
func NewBuilder(cfg *config.Config, reg *registry.Registry, repo *gitx.Repo, log *logger.Logger, workDir, configDir string) *Builder {
	return &Builder{
		cfg:       cfg,
		reg:       reg,
		repo:      repo,
		log:       log,
		workDir:   workDir,
		configDir: configDir,
	}
}

// Build resolves the full context for one run. Any error it returns is fatal
// for the run: no plugin may be invoked without a complete context.
func (b *Builder) Build() (*Context, error) {
	files, err := project.ResolveFiles(b.configDir, b.cfg.Projects)
	if err != nil {
		return nil, err
	}

	// The first project file is canonical for the version.
	version, err := project.ReadVersion(files[0])
	if err != nil {
		return nil, err
	}

	branch, err := b.repo.Branch()
	if err != nil {
		return nil, err
	}

	releaseBranches := b.reg.ReleaseBranches()
	isRelease := slices.Contains(releaseBranches, branch)

	clean, err := b.repo.IsClean()
	if err != nil {
		return nil, err
	}
	if !clean {
		if isRelease {
			return nil, errors.NewValidationError("worktree",
				fmt.Sprintf("uncommitted changes on release branch %q", branch), nil)
		}
		b.log.Warn(fmt.Sprintf("working tree has uncommitted changes on branch %q", branch))
	}

	tag, err := b.resolveTag(branch, version, isRelease)
	if err != nil {
		return nil, err
	}

	artifactsDir := b.cfg.Artifacts
	if !filepath.IsAbs(artifactsDir) {
		artifactsDir = filepath.Join(b.configDir, artifactsDir)
	}
	if err := os.MkdirAll(artifactsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts directory %s: %w", artifactsDir, err)
	}

	pattern := b.reg.ArchivePattern(branch)
	archiveName := strings.NewReplacer(
		"{project}", b.cfg.Project,
		"{version}", version,
		"{branch}", branch,
	).Replace(pattern)

	b.log.WithFields(map[string]any{
		"branch":  branch,
		"version": version,
		"tag":     tag,
		"release": isRelease,
	}).Info("release context ready")

	return &Context{
		WorkDir:            b.workDir,
		ConfigDir:          b.configDir,
		Project:            b.cfg.Project,
		Branch:             branch,
		Version:            version,
		Tag:                tag,
		ProjectFiles:       files,
		ArtifactsDir:       artifactsDir,
		ArchiveName:        archiveName,
		IsReleaseBranch:    isRelease,
		IsNonReleaseBranch: !isRelease,
		ReleaseBranches:    releaseBranches,
	}, nil
}

// resolveTag determines the tag for this run. On a release branch the tag
// must exist at HEAD in the strict release shape and its numeric portion
// must equal the project version. On any other branch the tag is synthesized
// from the version and is not required to exist in source control.
func (b *Builder) resolveTag(branch, version string, isRelease bool) (string, error) {
	want := "v" + version
	if !isRelease {
		return want, nil
	}

	tags, err := b.repo.TagsAtHead()
	if err != nil {
		return "", err
	}

	var candidates []string
	for _, t := range tags {
		if releaseTagPattern.MatchString(t) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return "", errors.NewValidationError("tag",
			fmt.Sprintf("no vMAJOR.MINOR.PATCH tag at HEAD on release branch %q", branch), nil)
	}

	tag := candidates[0]
	if slices.Contains(candidates, want) {
		tag = want
	}
	if tag != want {
		return "", errors.NewValidationError("tag",
			fmt.Sprintf("tag %s does not match project version %s", tag, version), nil)
	}
	return tag, nil
}
