// Package sitebuilder pushes rendered page documents to the systeme.io
// site builder API. Each update is fire-and-forget: non-2xx responses and
// transport failures are logged and swallowed so a publish cycle always
// reaches every page.
package sitebuilder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HUSIN-Network/systemeio-publisher/internal/platform/observability"
)

// DefaultTimeout caps each page update request.
const DefaultTimeout = 60 * time.Second

const apiKeyHeader = "X-API-Key"

// Config carries the remote site coordinates and credentials.
type Config struct {
	BaseURL   string
	WebsiteID string
	APIKey    string

	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration

	// HTTPClient overrides the timeout-configured default; tests use it.
	HTTPClient *http.Client

	Logger *zap.Logger
}

// Client issues page updates against the site builder API.
type Client struct {
	baseURL   string
	websiteID string
	apiKey    string
	http      *http.Client
	logger    *zap.Logger
}

// PageUpdate names a logical page and carries the HTML document replacing
// its remote content.
type PageUpdate struct {
	Name   string
	PageID string
	HTML   string
}

type pageContent struct {
	Content string `json:"content"`
}

// NewClient validates the configuration and constructs a Client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("sitebuilder: base url is required")
	}
	websiteID := strings.TrimSpace(cfg.WebsiteID)
	if websiteID == "" {
		return nil, errors.New("sitebuilder: website id is required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("sitebuilder: api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:   baseURL,
		websiteID: websiteID,
		apiKey:    apiKey,
		http:      httpClient,
		logger:    logger,
	}, nil
}

// UpdatePage PUTs the page HTML to
// {base}/sites/{websiteID}/pages/{pageID}. An empty page ID is a logged
// skip. A non-nil error reports request construction problems only; the
// remote outcome, success or failure, is logged and never propagated.
func (c *Client) UpdatePage(ctx context.Context, page PageUpdate) error {
	pageID := strings.TrimSpace(page.PageID)
	if pageID == "" {
		c.logger.Info("skipping page update, no page id configured",
			zap.String("page", page.Name))
		return nil
	}

	endpoint, err := url.JoinPath(c.baseURL, "sites", c.websiteID, "pages", pageID)
	if err != nil {
		return fmt.Errorf("sitebuilder: build page url: %w", err)
	}
	payload, err := json.Marshal(pageContent{Content: page.HTML})
	if err != nil {
		return fmt.Errorf("sitebuilder: encode page content: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sitebuilder: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("page update failed",
			zap.String("page", page.Name),
			zap.String("page_id", observability.SanitizePageID(pageID)),
			zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("page update rejected",
			zap.String("page", page.Name),
			zap.String("page_id", observability.SanitizePageID(pageID)),
			zap.Int("status", resp.StatusCode),
			zap.String("body", observability.SanitizeSnippet(drainBody(resp.Body))))
		return nil
	}

	c.logger.Info("page updated",
		zap.String("page", page.Name),
		zap.String("page_id", observability.SanitizePageID(pageID)),
		zap.Int("status", resp.StatusCode))
	return nil
}

func drainBody(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
