// Package pack bundles build outputs into versioned tarballs and records
// them on the shared release context for downstream plugins.
package pack

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/slipway-io/slipway/internal/plugin"
	"github.com/slipway-io/slipway/internal/release"
	"github.com/slipway-io/slipway/pkg/errors"
)

// Config holds the plugin settings. Include and Symbols are glob patterns
// resolved against the configuration directory.
type Config struct {
	Include []string `yaml:"include"`
	Symbols []string `yaml:"symbols"`
}

// PackPlugin builds the primary package tarball and an optional symbols
// tarball next to it.
type PackPlugin struct{}

// New creates the plugin instance.
func New() plugin.Plugin {
	return &PackPlugin{}
}

func (p *PackPlugin) Run(ctx context.Context, inv *plugin.Invocation) error {
	var cfg Config
	if err := inv.Settings.Decode(&cfg); err != nil {
		return err
	}

	rctx := inv.Release

	include := cfg.Include
	if len(include) == 0 {
		include = projectDirs(rctx.ProjectFiles)
	}

	files, err := collectFiles(rctx.ConfigDir, rctx.ArtifactsDir, include)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.NewValidationError("include", "no files matched the include patterns", nil)
	}

	packageFile := filepath.Join(rctx.ArtifactsDir, fmt.Sprintf("%s-v%s.tar.gz", rctx.Project, rctx.Version))
	if err := writeTarball(packageFile, rctx.ConfigDir, files); err != nil {
		return err
	}
	rctx.PackageFile = packageFile
	rctx.AddArchiveInput(packageFile)
	inv.Log.WithFields(map[string]any{"package": packageFile, "files": len(files)}).Info("package written")

	if len(cfg.Symbols) > 0 {
		symbolFiles, err := collectFiles(rctx.ConfigDir, rctx.ArtifactsDir, cfg.Symbols)
		if err != nil {
			return err
		}
		if len(symbolFiles) > 0 {
			symbolsFile := filepath.Join(rctx.ArtifactsDir, fmt.Sprintf("%s-v%s-symbols.tar.gz", rctx.Project, rctx.Version))
			if err := writeTarball(symbolsFile, rctx.ConfigDir, symbolFiles); err != nil {
				return err
			}
			rctx.SymbolsFile = symbolsFile
			rctx.AddArchiveInput(symbolsFile)
			inv.Log.WithFields(map[string]any{"symbols": symbolsFile, "files": len(symbolFiles)}).Info("symbols written")
		}
	}

	return nil
}

func projectDirs(projectFiles []string) []string {
	var dirs []string
	for _, file := range projectFiles {
		dir := filepath.Dir(file)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// collectFiles expands the patterns into a sorted, deduplicated list of
// regular files. Directory matches are walked recursively, skipping hidden
// directories and the artifacts directory so a package never embeds itself.
func collectFiles(baseDir, artifactsDir string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(baseDir, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.NewValidationError("include", fmt.Sprintf("invalid pattern %q", pattern), err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", match, err)
			}
			if !info.IsDir() {
				add(match)
				continue
			}
			err = filepath.WalkDir(match, func(path string, entry fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if entry.IsDir() {
					if strings.HasPrefix(entry.Name(), ".") || path == artifactsDir {
						return filepath.SkipDir
					}
					return nil
				}
				add(path)
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walk %s: %w", match, err)
			}
		}
	}

	slices.Sort(files)
	return files, nil
}

// writeTarball streams the files into a gzip-compressed tarball. Entry
// names are relative to baseDir when possible. The partial output file is
// removed on any failure.
func writeTarball(dest, baseDir string, files []string) (err error) {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for _, file := range files {
		if err = addFile(tw, baseDir, file); err != nil {
			return err
		}
	}

	if err = tw.Close(); err != nil {
		return fmt.Errorf("finalize tarball %s: %w", dest, err)
	}
	if err = gz.Close(); err != nil {
		return fmt.Errorf("finalize compression for %s: %w", dest, err)
	}
	return nil
}

func addFile(tw *tar.Writer, baseDir, file string) error {
	info, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("stat %s: %w", file, err)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("tar header for %s: %w", file, err)
	}
	header.Name = entryName(baseDir, file)

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write header for %s: %w", file, err)
	}

	src, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer src.Close()

	if _, err := io.Copy(tw, src); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}

func entryName(baseDir, file string) string {
	rel, err := filepath.Rel(baseDir, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(file)
	}
	return filepath.ToSlash(rel)
}
