// Package api is the HTTP client for the ApplyNinja backend. It covers only
// the request/response contracts the workflows depend on.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/applyninja/ninja/internal/profile"
)

// DefaultBaseURL is where the backend listens when run locally.
const DefaultBaseURL = "http://localhost:8080"

// Options configures the backend client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
	UserAgent  string
}

// Client performs HTTP calls to the ApplyNinja backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger
	userAgent  string
}

// Credentials identify the account the automation agent logs in with.
type Credentials struct {
	Identifier string
	Secret     string
}

// HistoryEntry is one application logged by the agent.
type HistoryEntry struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Status  string `json:"status"`
	Date    string `json:"date"`
}

// ContactMessage is a support request.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Health is the backend's health report.
type Health struct {
	Status    string `json:"status"`
	EnvLoaded bool   `json:"env_loaded"`
}

type envelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type deployRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewClient constructs a client with defaults for unset options. No request
// timeout is applied; callers cancel through the context.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("api: base url must be http(s): %q", opts.BaseURL)
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "ninja"
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
		userAgent:  userAgent,
	}, nil
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload sends a resume for analysis and returns the analysis payload as a
// profile record.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (*profile.Record, error) {
	const op = "upload"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("resume", filename)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read file: %w", err)}
	}
	if err := mw.Close(); err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	resp, raw, err := c.do(ctx, op, http.MethodPost, "/api/upload", &body, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, &ServerError{Op: op, Status: resp.StatusCode, StatusText: statusText(resp)}
	}

	rec, err := profile.ParseRecord(raw)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if msg := errorField(rec); msg != "" {
		return nil, &ServerError{Op: op, Status: resp.StatusCode, StatusText: statusText(resp), Message: msg}
	}
	c.logger.Debug().Str("op", op).Int("fields", rec.Len()).Msg("api: analysis received")
	return rec, nil
}

// VerifyPayment asks the backend to confirm payment for the current user.
func (c *Client) VerifyPayment(ctx context.Context) (string, error) {
	return c.message(ctx, "verify-payment", http.MethodPost, "/api/verify-payment", nil)
}

// DeployAgent starts the automation agent and blocks until the backend
// reports the run finished.
func (c *Client) DeployAgent(ctx context.Context, creds Credentials) (string, error) {
	payload, err := json.Marshal(deployRequest{Email: creds.Identifier, Password: creds.Secret})
	if err != nil {
		return "", &TransportError{Op: "deploy", Err: err}
	}
	return c.message(ctx, "deploy", http.MethodPost, "/api/linkedin-apply", payload)
}

// StopAgent asks the backend to halt the running agent after its current
// action.
func (c *Client) StopAgent(ctx context.Context) (string, error) {
	return c.message(ctx, "stop", http.MethodPost, "/api/stop-bot", nil)
}

// Contact sends a support message.
func (c *Client) Contact(ctx context.Context, msg ContactMessage) (string, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", &TransportError{Op: "contact", Err: err}
	}
	return c.message(ctx, "contact", http.MethodPost, "/api/contact", payload)
}

// History fetches the server-side application log, newest first.
func (c *Client) History(ctx context.Context) ([]HistoryEntry, error) {
	const op = "history"
	resp, raw, err := c.do(ctx, op, http.MethodGet, "/api/history", nil, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, serverError(op, resp, raw)
	}
	var entries []HistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return entries, nil
}

// ClearHistory deletes the server-side application log.
func (c *Client) ClearHistory(ctx context.Context) error {
	_, err := c.message(ctx, "clear-history", http.MethodDelete, "/api/history", nil)
	return err
}

// Health queries the backend health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	const op = "health"
	resp, raw, err := c.do(ctx, op, http.MethodGet, "/health", nil, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, serverError(op, resp, raw)
	}
	var h Health
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &h, nil
}

// message performs a call whose body is {message} on success or {error}
// on failure. The error field wins regardless of status code.
func (c *Client) message(ctx context.Context, op, method, path string, payload []byte) (string, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	resp, raw, err := c.do(ctx, op, method, path, body, contentType)
	if err != nil {
		return "", err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return "", &ServerError{Op: op, Status: resp.StatusCode, StatusText: statusText(resp)}
		}
		return "", &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if env.Error != "" {
		return "", &ServerError{Op: op, Status: resp.StatusCode, StatusText: statusText(resp), Message: env.Error}
	}
	if resp.StatusCode >= 300 {
		return "", &ServerError{Op: op, Status: resp.StatusCode, StatusText: statusText(resp)}
	}
	return env.Message, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, &TransportError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("op", op).Msg("api: request failed")
		return nil, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("api: response")
	return resp, raw, nil
}

func serverError(op string, resp *http.Response, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != "" {
		return &ServerError{Op: op, Status: resp.StatusCode, StatusText: statusText(resp), Message: env.Error}
	}
	return &ServerError{Op: op, Status: resp.StatusCode, StatusText: statusText(resp)}
}

// statusText returns the reason phrase, e.g. "Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func errorField(rec *profile.Record) string {
	raw, ok := rec.Get("error")
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" || string(raw) == "false" {
		return ""
	}
	return string(raw)
}

// IsCanceled reports whether err came from context cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
