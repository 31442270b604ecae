// Package client talks to the WeLearn REST API on behalf of the learner CLI.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"welearn/internal/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrUnavailable wraps transport failures: unreachable host, timeout,
// connection reset. Callers show a generic message for it.
var ErrUnavailable = errors.New("service unavailable")

// APIError is a non-2xx response. Message is meant to be shown verbatim.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  domain.ValidationErrors
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsCode reports whether err is an APIError with the given domain code.
func IsCode(err error, code domain.ErrorCode) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == string(code)
}

type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors"`
}

// Client is a thin JSON client built on the fiber HTTP agent.
type Client struct {
	baseURL string
	timeout time.Duration
	token   func() string
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout caps every request. A shorter context deadline wins.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithToken sets the bearer token source, read on every request.
func WithToken(token func() string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for baseURL, e.g. http://localhost:8090/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 10 * time.Second,
		token:   func() string { return "" },
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if tok := c.token(); tok != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+tok)
	}
	if body != nil {
		a.JSON(body)
	}
	a.Timeout(c.timeoutFor(ctx))

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	start := time.Now()
	status, respBody, errs := a.Bytes()
	if len(errs) > 0 {
		c.log.Warn("Request failed", zap.String("method", method), zap.String("path", path), zap.Errors("errors", errs))
		return fmt.Errorf("%w: %v", ErrUnavailable, errors.Join(errs...))
	}
	c.log.Debug("Request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	)

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return decodeError(status, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) timeoutFor(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}

func decodeError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		apiErr.Code = eb.Code
		apiErr.Message = eb.Message
		apiErr.Fields = eb.Errors
	}
	if apiErr.Message == "" && len(apiErr.Fields) > 0 {
		apiErr.Message = apiErr.Fields.Error()
	}
	return apiErr
}
