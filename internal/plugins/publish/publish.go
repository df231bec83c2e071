// Package publish uploads the produced package file to a package feed.
package publish

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/slipway-io/slipway/internal/plugin"
	"github.com/slipway-io/slipway/pkg/errors"
)

const (
	defaultTimeoutSeconds = 60
	responseSnippetBytes  = 512
)

// Config holds the plugin settings. The API key may be given inline or read
// from the environment variable named by APIKeyEnv.
type Config struct {
	Feed           string `yaml:"feed"`
	APIKey         string `yaml:"api_key"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PublishPlugin pushes the package to the configured feed.
type PublishPlugin struct{}

// New creates the plugin instance.
func New() plugin.Plugin {
	return &PublishPlugin{}
}

func (p *PublishPlugin) Run(ctx context.Context, inv *plugin.Invocation) error {
	var cfg Config
	if err := inv.Settings.Decode(&cfg); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Feed) == "" {
		return errors.NewValidationError("feed", "publish plugin requires a feed URL", nil)
	}

	rctx := inv.Release
	if rctx.PackageFile == "" {
		return errors.NewValidationError("package",
			"no package file in context: a packaging plugin must run before publish", nil)
	}

	file, err := os.Open(rctx.PackageFile)
	if err != nil {
		return fmt.Errorf("open package %s: %w", rctx.PackageFile, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat package %s: %w", rctx.PackageFile, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, cfg.Feed, file)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/octet-stream")
	if key := apiKey(cfg); key != "" {
		req.Header.Set("X-Api-Key", key)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds
	}
	client := &http.Client{Timeout: time.Duration(timeout) * time.Second}

	inv.Log.WithFields(map[string]any{
		"feed":    cfg.Feed,
		"package": filepath.Base(rctx.PackageFile),
	}).Info("publishing package")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("upload to %s: %w", cfg.Feed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, responseSnippetBytes))
		return fmt.Errorf("feed rejected package: %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	rctx.PublishCompleted = true
	inv.Log.Info("package published")
	return nil
}

func apiKey(cfg Config) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	if cfg.APIKeyEnv != "" {
		return os.Getenv(cfg.APIKeyEnv)
	}
	return ""
}
