package apiclient

import (
	"baobab_academy/pkg/logger"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// UnauthorizedHandler runs once for every 401 answer, before the error is returned.
type UnauthorizedHandler func(ctx context.Context)

// Client talks to the course API. It never retries and imposes no timeout of
// its own; deadlines come from the caller's context.
type Client struct {
	BaseURL        string
	HTTP           *http.Client
	Tokens         TokenStore
	onUnauthorized UnauthorizedHandler
	log            *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTP = hc }
}

func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.Tokens = store }
}

// WithUnauthorizedHandler replaces the default 401 handling; pass a no-op in tests.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) { c.onUnauthorized = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a client for baseURL, e.g. "http://localhost:8080/api".
// Unless overridden, a 401 clears the token store and logs a redirect to sign-in.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{},
		Tokens:  NewMemoryTokenStore(""),
		log:     logger.Log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.onUnauthorized == nil {
		c.onUnauthorized = c.clearCredentials
	}
	return c
}

func (c *Client) clearCredentials(ctx context.Context) {
	if err := c.Tokens.Clear(); err != nil {
		c.log.Warn("Failed to clear credentials", zap.Error(err))
	}
	c.log.Info("Session expired, sign in again")
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	r := request{method: method, path: path}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("encode request: %w", err)
		}
		r.body = bytes.NewReader(b)
		r.contentType = "application/json"
	}
	return r, nil
}

func multipartRequest(path string, f File) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(f.Name)))
	ct := f.ContentType
	if ct == "" {
		ct = http.DetectContentType(f.Data)
	}
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return request{}, err
	}
	if _, err := part.Write(f.Data); err != nil {
		return request{}, err
	}
	if err := w.Close(); err != nil {
		return request{}, err
	}
	return request{method: http.MethodPost, path: path, body: &buf, contentType: w.FormDataContentType()}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// call performs r and decodes the envelope once: data into T on success,
// an *APIError otherwise.
func call[T any](ctx context.Context, c *Client, r request) (T, error) {
	var zero T

	u := c.BaseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return zero, &APIError{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token := c.Tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.log.Debug("Request failed", zap.String("method", r.method), zap.String("path", r.path), zap.Error(err))
		return zero, &APIError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &APIError{Kind: KindTransport, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.onUnauthorized(ctx)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return zero, &APIError{Kind: KindServer, StatusCode: resp.StatusCode, Message: "Réponse du serveur illisible", Err: err}
		}
		return zero, &APIError{Kind: KindServer, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return zero, failure(resp.StatusCode, env)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return zero, nil
	}
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return zero, &APIError{Kind: KindServer, StatusCode: resp.StatusCode, Message: "Données de réponse inattendues", Err: err}
	}
	return out, nil
}

// failure tags a rejected call: a string map in data means field errors.
func failure(status int, env envelope) *APIError {
	var fields map[string]string
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &fields) == nil && len(fields) > 0 {
		return &APIError{Kind: KindValidation, StatusCode: status, Message: env.Message, FieldErrors: fields}
	}
	return &APIError{Kind: KindServer, StatusCode: status, Message: env.Message}
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortDir != "" {
		v.Set("sortDir", q.SortDir)
	}
	if q.CategoryID != "" {
		v.Set("categoryId", q.CategoryID)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}
