// Package scmrelease creates a release on the source-control forge for the
// resolved tag and uploads the collected release assets to it.
package scmrelease

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/slipway-io/slipway/internal/logger"
	"github.com/slipway-io/slipway/internal/plugin"
	"github.com/slipway-io/slipway/internal/release"
	"github.com/slipway-io/slipway/pkg/errors"
)

const (
	defaultTimeoutSeconds = 60
	responseSnippetBytes  = 512
)

// Config holds the plugin settings. Repo is the "owner/name" path on the
// forge, API the base URL of its REST API.
type Config struct {
	API            string `yaml:"api"`
	Repo           string `yaml:"repo"`
	Token          string `yaml:"token"`
	TokenEnv       string `yaml:"token_env"`
	Name           string `yaml:"name"`
	Draft          bool   `yaml:"draft"`
	ReuseExisting  *bool  `yaml:"reuse_existing"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ReleasePlugin talks to the forge API.
type ReleasePlugin struct{}

// New creates the plugin instance.
func New() plugin.Plugin {
	return &ReleasePlugin{}
}

type forgeRelease struct {
	ID int64 `json:"id"`
}

func (p *ReleasePlugin) Run(ctx context.Context, inv *plugin.Invocation) error {
	var cfg Config
	if err := inv.Settings.Decode(&cfg); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.API) == "" {
		return errors.NewValidationError("api", "scm-release plugin requires the forge API base URL", nil)
	}
	if strings.TrimSpace(cfg.Repo) == "" {
		return errors.NewValidationError("repo", "scm-release plugin requires the repository path", nil)
	}

	token := cfg.Token
	if token == "" && cfg.TokenEnv != "" {
		token = os.Getenv(cfg.TokenEnv)
	}
	if token == "" {
		return errors.NewValidationError("token", "scm-release plugin requires a token or token_env", nil)
	}

	rctx := inv.Release
	assets := releaseAssets(rctx)
	if len(assets) == 0 {
		return errors.NewValidationError("assets",
			"no release assets in context: an archive or packaging plugin must run before scm-release", nil)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds
	}
	client := &forgeClient{
		http:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
		base:  strings.TrimSuffix(cfg.API, "/"),
		repo:  cfg.Repo,
		token: token,
	}

	reuse := cfg.ReuseExisting == nil || *cfg.ReuseExisting
	name := cfg.Name
	if name == "" {
		name = rctx.Tag
	}

	id, created, err := client.ensureRelease(ctx, rctx.Tag, name, cfg.Draft, reuse)
	if err != nil {
		return err
	}
	if created {
		inv.Log.WithFields(map[string]any{"tag": rctx.Tag, "id": id}).Info("release created")
	} else {
		inv.Log.WithFields(map[string]any{"tag": rctx.Tag, "id": id}).Info("reusing existing release")
	}

	for _, asset := range assets {
		if err := client.uploadAsset(ctx, id, asset, reuse, inv.Log); err != nil {
			return err
		}
	}

	rctx.PublishCompleted = true
	inv.Log.WithFields(map[string]any{"assets": len(assets)}).Info("release assets uploaded")
	return nil
}

// releaseAssets returns the paths to attach: everything collected during
// the run, falling back to the archive and then the bare package when
// nothing was registered.
func releaseAssets(rctx *release.Context) []string {
	if len(rctx.ReleaseAssets) > 0 {
		return rctx.ReleaseAssets
	}
	if rctx.ArchiveFile != "" {
		return []string{rctx.ArchiveFile}
	}
	if rctx.PackageFile != "" {
		return []string{rctx.PackageFile}
	}
	return nil
}

type forgeClient struct {
	http  *http.Client
	base  string
	repo  string
	token string
}

func (c *forgeClient) releasesURL() string {
	return fmt.Sprintf("%s/repos/%s/releases", c.base, c.repo)
}

// ensureRelease creates the release for the tag, or looks up the existing
// one when the forge reports a conflict and reuse is allowed. It reports
// whether a new release was created.
func (c *forgeClient) ensureRelease(ctx context.Context, tag, name string, draft, reuse bool) (int64, bool, error) {
	payload, err := json.Marshal(map[string]any{
		"tag_name": tag,
		"name":     name,
		"draft":    draft,
	})
	if err != nil {
		return 0, false, fmt.Errorf("encode release payload: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.releasesURL(), "application/json", bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return 0, false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		var created forgeRelease
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			return 0, false, fmt.Errorf("decode release response: %w", err)
		}
		return created.ID, true, nil
	case resp.StatusCode == http.StatusConflict && reuse:
		id, err := c.findByTag(ctx, tag)
		return id, false, err
	default:
		return 0, false, responseError("create release", resp)
	}
}

func (c *forgeClient) findByTag(ctx context.Context, tag string) (int64, error) {
	lookupURL := fmt.Sprintf("%s/tags/%s", c.releasesURL(), url.PathEscape(tag))
	resp, err := c.do(ctx, http.MethodGet, lookupURL, "", nil, 0)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, responseError("look up release by tag", resp)
	}

	var existing forgeRelease
	if err := json.NewDecoder(resp.Body).Decode(&existing); err != nil {
		return 0, fmt.Errorf("decode release lookup response: %w", err)
	}
	return existing.ID, nil
}

func (c *forgeClient) uploadAsset(ctx context.Context, id int64, asset string, reuse bool, log *logger.Logger) error {
	file, err := os.Open(asset)
	if err != nil {
		return fmt.Errorf("open release asset %s: %w", asset, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat release asset %s: %w", asset, err)
	}

	name := filepath.Base(asset)
	uploadURL := fmt.Sprintf("%s/%d/assets?name=%s", c.releasesURL(), id, url.QueryEscape(name))

	resp, err := c.do(ctx, http.MethodPost, uploadURL, "application/octet-stream", file, info.Size())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict && reuse {
		log.Warn(fmt.Sprintf("asset %q already attached to the release, skipping", name))
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(fmt.Sprintf("upload asset %q", name), resp)
	}
	return nil
}

func (c *forgeClient) do(ctx context.Context, method, rawURL, contentType string, body io.Reader, length int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	if length > 0 {
		req.ContentLength = length
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "token "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	return resp, nil
}

func responseError(action string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, responseSnippetBytes))
	return fmt.Errorf("%s: forge returned %s: %s", action, resp.Status, strings.TrimSpace(string(snippet)))
}
