// Package api implements the outbound HTTP surface of the TaskFlow client:
// a gateway channel wrapping net/http with bearer-token injection and
// authorization-failure handling, plus typed call surfaces for the identity
// service and the knowledge-base content service.
package api

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

	"github.com/google/uuid"

	"github.com/prolianceltd/taskflow-cli/internal/common"
	"github.com/prolianceltd/taskflow-cli/internal/logging"
)

// DefaultTimeout bounds every request on a channel unless the config says
// otherwise.
const DefaultTimeout = 10 * time.Second

// TokenSource supplies the bearer token for outgoing requests and absorbs
// server-signaled invalidation. session.Store satisfies it.
type TokenSource interface {
	Token() string
	Clear()
}

// Channel is one outbound call channel: base URL, fixed timeout, bearer
// injection, and a response rule for authorization failures. The client runs
// two of them, a general channel for the identity service and a content
// channel for the knowledge-base service. They share configuration but not
// behavior: on the content channel, requests whose path denotes knowledge-base
// resources never clear the session, so public article reads cannot force a
// logout loop.
type Channel struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        logging.Logger

	// publicFragment, when non-empty, exempts any request whose path
	// contains it from the 401 session-clear rule.
	publicFragment string

	// onUnauthorized runs after a 401 clears the session (navigation back
	// to the login entry point).
	onUnauthorized func()
}

// ChannelOption customizes a Channel.
type ChannelOption func(*Channel)

// WithPublicPathBypass exempts paths containing fragment from the 401
// session-clear rule.
func WithPublicPathBypass(fragment string) ChannelOption {
	return func(c *Channel) { c.publicFragment = fragment }
}

// WithUnauthorizedHook registers fn to run after a 401 clears the session.
func WithUnauthorizedHook(fn func()) ChannelOption {
	return func(c *Channel) { c.onUnauthorized = fn }
}

// NewChannel creates a call channel rooted at baseURL. A zero timeout selects
// DefaultTimeout.
func NewChannel(baseURL string, timeout time.Duration, tokens TokenSource, log logging.Logger, opts ...ChannelOption) *Channel {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Channel{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error is a non-2xx response from a remote service. Message carries the
// server-supplied text when one was present, so the UI can show it verbatim.
type Error struct {
	Status    int
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("remote error (status %d)", e.Status)
}

// Is maps HTTP statuses onto the shared sentinels for errors.Is matching.
func (e *Error) Is(target error) bool {
	switch target {
	case common.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case common.ErrNotFound:
		return e.Status == http.StatusNotFound
	default:
		return false
	}
}

// ServerMessage returns the server-supplied message from err when err is an
// api.Error carrying one, else "".
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// Get issues a GET request and decodes the JSON response into out (skipped
// when out is nil).
func (c *Channel) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Channel) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Channel) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE request.
func (c *Channel) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Channel) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if token := c.tokens.Token(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("%w: %s %s: %v", common.ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !c.publicPath(path) {
		c.tokens.Clear()
		c.log.Info(ctx, "session cleared after unauthorized response", "path", path, "request_id", requestID)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return &Error{Status: resp.StatusCode, Message: serverMessage(raw), RequestID: requestID}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Channel) publicPath(path string) bool {
	return c.publicFragment != "" && strings.Contains(path, c.publicFragment)
}

// serverMessage extracts the most specific human-readable message a remote
// service put into an error body: non_field_errors first, then message, then
// detail.
func serverMessage(body []byte) string {
	var payload struct {
		NonFieldErrors []string `json:"non_field_errors"`
		Message        string   `json:"message"`
		Detail         string   `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch {
	case len(payload.NonFieldErrors) > 0:
		return payload.NonFieldErrors[0]
	case payload.Message != "":
		return payload.Message
	default:
		return payload.Detail
	}
}
