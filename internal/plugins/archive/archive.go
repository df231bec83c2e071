// Package archive assembles the final release archive from the inputs
// collected during the run and writes a checksum next to it.
package archive

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/slipway-io/slipway/internal/plugin"
	"github.com/slipway-io/slipway/pkg/errors"
)

// Config holds the plugin settings. Include patterns add files beyond the
// archive inputs earlier plugins registered on the shared context.
type Config struct {
	Include []string `yaml:"include"`
}

// ArchivePlugin zips the collected inputs into the release directory.
type ArchivePlugin struct{}

// New creates the plugin instance.
func New() plugin.Plugin {
	return &ArchivePlugin{}
}

func (p *ArchivePlugin) Run(ctx context.Context, inv *plugin.Invocation) error {
	var cfg Config
	if err := inv.Settings.Decode(&cfg); err != nil {
		return err
	}

	rctx := inv.Release

	inputs := slices.Clone(rctx.ArchiveInputs)
	for _, pattern := range cfg.Include {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(rctx.ConfigDir, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return errors.NewValidationError("include", fmt.Sprintf("invalid pattern %q", pattern), err)
		}
		for _, match := range matches {
			if !slices.Contains(inputs, match) {
				inputs = append(inputs, match)
			}
		}
	}
	if len(inputs) == 0 {
		return errors.NewValidationError("include", "nothing to archive: no inputs collected and no include patterns matched", nil)
	}
	slices.Sort(inputs)

	releaseDir := rctx.ReleaseDir
	if releaseDir == "" {
		releaseDir = rctx.ArtifactsDir
	}
	if err := os.MkdirAll(releaseDir, 0o755); err != nil {
		return fmt.Errorf("create release directory %s: %w", releaseDir, err)
	}

	archivePath := filepath.Join(releaseDir, rctx.ArchiveName)
	if err := writeZip(archivePath, inputs, inv); err != nil {
		return err
	}

	checksumPath, err := writeChecksum(archivePath)
	if err != nil {
		return err
	}

	rctx.ArchiveFile = archivePath
	rctx.AddReleaseAsset(archivePath)
	rctx.AddReleaseAsset(checksumPath)
	inv.Log.WithFields(map[string]any{
		"archive": archivePath,
		"entries": len(inputs),
	}).Info("release archive written")
	return nil
}

// writeZip stores each input flat under its base name. A second input with
// a base name already present is skipped with a warning rather than
// corrupting the archive. The partial file is removed on failure.
func writeZip(dest string, inputs []string, inv *plugin.Invocation) (err error) {
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

	zw := zip.NewWriter(out)
	seen := make(map[string]bool)

	for _, input := range inputs {
		name := filepath.Base(input)
		if seen[name] {
			inv.Log.Warn(fmt.Sprintf("duplicate archive entry %q from %s, skipping", name, input))
			continue
		}
		seen[name] = true
		if err = addEntry(zw, name, input); err != nil {
			return err
		}
	}

	if err = zw.Close(); err != nil {
		return fmt.Errorf("finalize archive %s: %w", dest, err)
	}
	return nil
}

func addEntry(zw *zip.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat archive input %s: %w", path, err)
	}
	if info.IsDir() {
		return errors.NewValidationError("include", fmt.Sprintf("archive input %q is a directory", path), nil)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("archive header for %s: %w", path, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create archive entry %s: %w", name, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive input %s: %w", path, err)
	}
	defer src.Close()

	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("write archive entry %s: %w", name, err)
	}
	return nil
}

// writeChecksum writes "<hex>  <filename>" beside the archive in the usual
// shasum format and returns the checksum file path.
func writeChecksum(archivePath string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", archivePath, err)
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", archivePath, err)
	}

	checksumPath := archivePath + ".sha256"
	content := fmt.Sprintf("%x  %s\n", hash.Sum(nil), filepath.Base(archivePath))
	if err := os.WriteFile(checksumPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", checksumPath, err)
	}
	return checksumPath, nil
}
