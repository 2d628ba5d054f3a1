// Package bcclient is a ballchasing.com REST client.
package bcclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://ballchasing.com/api"
	defaultTimeout = 30 * time.Second
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ballchasing API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ballchasing API error %d", e.StatusCode)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client talks to the API with one guild's token.
type Client struct {
	baseURL string
	token   string
	http    *fasthttp.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient shares a fasthttp client across tokens.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLimiter paces requests. Share one limiter per token.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithTimeout bounds requests whose context has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    NewHTTPClient(defaultTimeout),
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient builds the fasthttp client shared by every guild's Client.
func NewHTTPClient(timeout time.Duration) *fasthttp.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &fasthttp.Client{
		Name:                "rsc-league-bot",
		MaxConnsPerHost:     16,
		ReadTimeout:         timeout,
		WriteTimeout:        timeout,
		MaxIdleConnDuration: time.Minute,
	}
}

type request struct {
	method      string
	path        string
	query       *fasthttp.Args
	body        []byte
	contentType string
}

type response struct {
	status int
	body   []byte
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}

func (c *Client) do(ctx context.Context, r request) (response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return response{}, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url(r.path))
	if r.query != nil {
		req.URI().SetQueryStringBytes(r.query.QueryString())
	}
	req.Header.SetMethod(r.method)
	req.Header.Set("Authorization", c.token)
	if r.body != nil {
		req.SetBody(r.body)
		req.Header.SetContentType(r.contentType)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return response{}, fmt.Errorf("ballchasing %s %s: %w", r.method, r.path, err)
	}

	return response{
		status: resp.StatusCode(),
		body:   append([]byte(nil), resp.Body()...),
	}, nil
}

func apiError(resp response) *APIError {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(resp.body, &body)
	return &APIError{StatusCode: resp.status, Message: body.Error, Body: resp.body}
}

func success(status int) bool { return status >= 200 && status < 300 }

func doJSON[T any](ctx context.Context, c *Client, r request) (*T, error) {
	resp, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	if !success(resp.status) {
		return nil, apiError(resp)
	}
	var result T
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode ballchasing response: %w", err)
	}
	return &result, nil
}

func jsonBody(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ballchasing request: %w", err)
	}
	return b, nil
}

// Identity is the account that owns the token.
type Identity struct {
	SteamID   string `json:"steam_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	ChosenOne bool   `json:"chosen_one"`
}

// Ping checks the token and returns its owner.
func (c *Client) Ping(ctx context.Context) (Identity, error) {
	id, err := doJSON[Identity](ctx, c, request{method: fasthttp.MethodGet, path: "/"})
	if err != nil {
		return Identity{}, err
	}
	return *id, nil
}
