// Package fedora is a REST client for a Fedora 3 style archival repository.
// It implements dri.Archive.
package fedora

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tendant/simple-dri/pkg/dri"
)

// Config holds connection settings for the repository.
type Config struct {
	BaseURL  string        // e.g. http://localhost:8080/fedora
	Username string        // basic auth user, optional
	Password string        // basic auth password
	Timeout  time.Duration // per request timeout (default 30s)
}

// StatusError is returned when the repository answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("fedora: %s %s: status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fedora: %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Client talks to the repository REST API.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption is a functional option for configuring a Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client from config.
func New(config Config, opts ...ClientOption) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("fedora: base URL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("fedora: invalid base URL: %w", err)
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		username:   config.Username,
		password:   config.Password,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ dri.Archive = (*Client)(nil)

// CreateObject creates an empty object and returns the pid assigned by the
// repository.
func (c *Client) CreateObject(ctx context.Context, namespace, label string) (string, error) {
	q := url.Values{}
	q.Set("namespace", namespace)
	q.Set("label", label)

	body, err := c.do(ctx, "/objects/new", q, nil, "", -1)
	if err != nil {
		return "", err
	}

	pid := strings.TrimSpace(string(body))
	if pid == "" {
		return "", fmt.Errorf("fedora: empty pid in create object response")
	}
	c.logger.Debug("Created archive object", "pid", pid, "namespace", namespace)
	return pid, nil
}

// AddMetadataDatastream attaches content as an inline XML datastream.
func (c *Client) AddMetadataDatastream(ctx context.Context, pid, dsID string, content []byte) error {
	q := url.Values{}
	q.Set("controlGroup", "X")
	q.Set("dsLabel", dsID)
	q.Set("mimeType", "text/xml")

	_, err := c.do(ctx, datastreamPath(pid, dsID), q, bytes.NewReader(content), "text/xml", int64(len(content)))
	return err
}

// AddMediaDatastream uploads media as a managed content datastream.
func (c *Client) AddMediaDatastream(ctx context.Context, pid, dsID string, media dri.MediaFile) error {
	mimeType := media.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	q := url.Values{}
	q.Set("controlGroup", "M")
	q.Set("dsLabel", media.Name)
	q.Set("mimeType", mimeType)

	size := media.Size
	if size <= 0 {
		size = -1
	}
	_, err := c.do(ctx, datastreamPath(pid, dsID), q, media.Reader, mimeType, size)
	return err
}

func datastreamPath(pid, dsID string) string {
	return "/objects/" + url.PathEscape(pid) + "/datastreams/" + url.PathEscape(dsID)
}

// do sends a POST and returns the response body. size < 0 means unknown.
func (c *Client) do(ctx context.Context, path string, query url.Values, body io.Reader, contentType string, size int64) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("fedora: failed to create request: %w", err)
	}
	if size >= 0 {
		req.ContentLength = size
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fedora: POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fedora: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Method:     http.MethodPost,
			URL:        path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}
	return respBody, nil
}
