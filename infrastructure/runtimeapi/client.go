// Package runtimeapi hosts bridge handlers behind the AWS Lambda Runtime API:
// it polls for invocations, dispatches them through a registry and posts the
// outcome back.
package runtimeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/internal/invocation"
)

// Runtime API paths and headers.
const (
	apiVersion = "2018-06-01"

	HeaderRequestID          = "Lambda-Runtime-Aws-Request-Id"
	HeaderDeadlineMs         = "Lambda-Runtime-Deadline-Ms"
	HeaderFunctionARN        = "Lambda-Runtime-Invoked-Function-Arn"
	HeaderTraceID            = "Lambda-Runtime-Trace-Id"
	HeaderClientContext      = "Lambda-Runtime-Client-Context"
	HeaderCognitoIdentity    = "Lambda-Runtime-Cognito-Identity"
	HeaderFunctionErrorType  = "Lambda-Runtime-Function-Error-Type"
	contentTypeJSON          = "application/json"
	defaultUserAgent         = "lambda-bridge"
	maxErrorBodyPreviewBytes = 512
)

// Invocation is one event handed out by the Runtime API.
type Invocation struct {
	Deadline        time.Time
	RequestID       string
	FunctionARN     string
	TraceID         string
	ClientContext   string
	CognitoIdentity string
	Payload         []byte
}

// Client talks to the Runtime API.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	httpClient *http.Client
	userAgent  string
}

func defaultClientConfig() clientConfig {
	return clientConfig{
		// The next call long-polls until an event arrives, so no timeout.
		httpClient: &http.Client{},
		userAgent:  defaultUserAgent,
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cfg *clientConfig) {
		if c != nil {
			cfg.httpClient = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(cfg *clientConfig) {
		cfg.userAgent = ua
	}
}

// NewClient returns a client for the Runtime API at api, the host:port in
// AWS_LAMBDA_RUNTIME_API.
func NewClient(api string, opts ...ClientOption) *Client {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{
		http:      cfg.httpClient,
		baseURL:   "http://" + api + "/" + apiVersion + "/runtime",
		userAgent: cfg.userAgent,
	}
}

// Next blocks until the next invocation is available.
func (c *Client) Next(ctx context.Context) (*Invocation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/invocation/next", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build next request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get next invocation: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read invocation payload: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("next", resp.StatusCode, body)
	}

	inv := &Invocation{
		RequestID:       resp.Header.Get(HeaderRequestID),
		FunctionARN:     resp.Header.Get(HeaderFunctionARN),
		TraceID:         resp.Header.Get(HeaderTraceID),
		ClientContext:   resp.Header.Get(HeaderClientContext),
		CognitoIdentity: resp.Header.Get(HeaderCognitoIdentity),
		Payload:         body,
	}
	if inv.RequestID == "" {
		return nil, fmt.Errorf("next invocation has no %s header", HeaderRequestID)
	}
	if raw := resp.Header.Get(HeaderDeadlineMs); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s header %q: %w", HeaderDeadlineMs, raw, err)
		}
		inv.Deadline = invocation.DeadlineFromUnixMillis(ms)
	}
	return inv, nil
}

// Respond posts a successful result for requestID.
func (c *Client) Respond(ctx context.Context, requestID string, body []byte) error {
	return c.post(ctx, "/invocation/"+requestID+"/response", body, "")
}

// Fail posts a failed result for requestID.
func (c *Client) Fail(ctx context.Context, requestID string, exc *entities.HostException) error {
	return c.postError(ctx, "/invocation/"+requestID+"/error", exc)
}

// InitError reports a failure that happened before the first invocation.
func (c *Client) InitError(ctx context.Context, exc *entities.HostException) error {
	return c.postError(ctx, "/init/error", exc)
}

func (c *Client) postError(ctx context.Context, path string, exc *entities.HostException) error {
	body, err := json.Marshal(exc)
	if err != nil {
		return fmt.Errorf("failed to marshal error body: %w", err)
	}
	return c.post(ctx, path, body, exc.Type)
}

func (c *Client) post(ctx context.Context, path string, body []byte, errorType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)
	if errorType != "" {
		req.Header.Set(HeaderFunctionErrorType, errorType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyPreviewBytes))
		return statusError(path, resp.StatusCode, preview)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func statusError(op string, status int, body []byte) error {
	if len(body) > maxErrorBodyPreviewBytes {
		body = body[:maxErrorBodyPreviewBytes]
	}
	return fmt.Errorf("runtime api %s: unexpected status %d: %s", op, status, bytes.TrimSpace(body))
}
