// Package gateway is the HTTP client for the todo API. Every operation
// returns either a parsed value or a *gateway.Error.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/frezix0/TodoReact/internal/logging"
	"github.com/frezix0/TodoReact/internal/model"
)

// DefaultTimeout bounds a single request when no option overrides it.
const DefaultTimeout = 10 * time.Second

// apiPrefix is the path prefix of every resource route.
const apiPrefix = "/api"

// Client is a thin HTTP client for the todo API. It performs exactly one
// attempt per call: no retries and no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
	requestID  func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request outcomes.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = logging.Component(log, "gateway")
	}
}

// New creates a client for the API rooted at baseURL
// (e.g., http://127.0.0.1:8000).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		log:       logging.Component(nil, "gateway"),
		requestID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health probes the server's health endpoint.
func (c *Client) Health(ctx context.Context) (*model.Health, error) {
	var h model.Health
	if err := c.getEntity(ctx, "/health", nil, &h, "status"); err != nil {
		return nil, err
	}
	return &h, nil
}

// getEntity performs a GET and decodes a JSON object that must carry the
// given fields.
func (c *Client) getEntity(
	ctx context.Context,
	path string,
	query url.Values,
	result any,
	required ...string,
) error {
	raw, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decodeObject(opName(http.MethodGet, path), raw, result, required...)
}

// sendEntity performs a request with a JSON body and decodes a JSON object
// that must carry the given fields.
func (c *Client) sendEntity(
	ctx context.Context,
	method string,
	path string,
	body any,
	result any,
	required ...string,
) error {
	raw, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	return decodeObject(opName(method, path), raw, result, required...)
}

// do builds the request, executes it once, maps failures to *Error and
// returns the raw response body on success.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body any,
) (json.RawMessage, error) {
	op := opName(method, path)

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e := newError(CodeInvalidRequest, "", nil)
			e.Op = op
			e.Err = fmt.Errorf("marshaling request body: %w", err)
			return nil, e
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		e := newError(CodeInvalidRequest, "", nil)
		e.Op = op
		e.Err = fmt.Errorf("creating request: %w", err)
		return nil, e
	}

	requestID := c.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.WithFields(logrus.Fields{
		"op":         op,
		"request_id": requestID,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		gwErr := transportError(op, err)
		log.WithError(err).WithField("code", gwErr.Code).Warn("request failed")
		return nil, gwErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		gwErr := transportError(op, fmt.Errorf("reading response body: %w", err))
		log.WithError(err).Warn("reading response failed")
		return nil, gwErr
	}

	log = log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gwErr := statusError(op, resp.StatusCode, respBody)
		log.WithField("code", gwErr.Code).Warn(gwErr.Message)
		return nil, gwErr
	}

	log.Debug("request completed")
	return respBody, nil
}

// decodeObject unmarshals raw into result after checking that raw is a
// JSON object containing every required field.
func decodeObject(op string, raw json.RawMessage, result any, required ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return malformedError(op, fmt.Errorf("decoding response object: %w", err))
	}
	for _, name := range required {
		v, ok := fields[name]
		if !ok || string(v) == "null" {
			return malformedError(op, fmt.Errorf("response is missing %q", name))
		}
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return malformedError(op, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// decodeArray unmarshals a JSON array of objects, each of which must carry
// the required fields.
func decodeArray[T any](op string, raw json.RawMessage, required ...string) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, malformedError(op, fmt.Errorf("decoding response array: %w", err))
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		if err := decodeObject(op, item, &v, required...); err != nil {
			gwErr, _ := AsError(err)
			gwErr.Err = fmt.Errorf("item %d: %w", i, gwErr.Err)
			return nil, gwErr
		}
		out = append(out, v)
	}
	return out, nil
}

func opName(method, path string) string {
	return method + " " + path
}

func todoPath(id int64) string {
	return fmt.Sprintf("%s/todos/%d", apiPrefix, id)
}

func categoryPath(id int64) string {
	return fmt.Sprintf("%s/categories/%d", apiPrefix, id)
}
