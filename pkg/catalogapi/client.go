package catalogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
)

const (
	DefaultBaseURL              = "https://rkdoors.pythonanywhere.com/api"
	defaultTimeout              = 10 * time.Second
	responseBodyReadLimit int64 = 1024
)

// Door mirrors one element of GET /doors/.
type Door struct {
	ID           json.Number `json:"id"`
	Name         string      `json:"name"`
	Price        string      `json:"price"`
	ImageURL     string      `json:"image_url"`
	Category     json.Number `json:"category"`
	CategoryName string      `json:"category_name"`
	Description  string      `json:"description"`
}

// Category mirrors one element of GET /categories/.
type Category struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
	Slug string      `json:"slug"`
}

// Client reads the public door catalog.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the catalog base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout bounds every request. Expiry surfaces as a TIMEOUT error.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    DefaultBaseURL,
		timeout:    defaultTimeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// FetchDoors returns the raw door list.
func (c *Client) FetchDoors(ctx context.Context) ([]Door, error) {
	var doors []Door
	if err := c.getJSON(ctx, "doors/", &doors); err != nil {
		return nil, err
	}
	return doors, nil
}

// FetchCategories returns the raw category list.
func (c *Client) FetchCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.getJSON(ctx, "categories/", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	what := strings.TrimSuffix(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+what+" request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.WrapRemote(err, "failed to fetch "+what)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			fmt.Sprintf("failed to fetch %s: %d", what, resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.WrapRemote(err, "decode "+what+" response")
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), strings.TrimLeft(path, "/"))
}
