// Package erpclean is a client for the ERPClean Easy API.
//
// A Client holds the session (tokens, environment, default modes) and
// exposes one method per remote operation. Every call goes through the same
// executor, so headers, URL building, body encoding and error
// interpretation behave identically across operations.
package erpclean

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/erpclean/erpclean-go/pkg/httpclient"
)

// Client talks to the ERPClean Easy API. It is safe for concurrent use.
type Client struct {
	mu       sync.RWMutex
	cfg      Config
	executor *Executor
	log      Logger
}

type clientOptions struct {
	cfg       Config
	baseURLs  BaseURLs
	transport httpclient.Client
	timeout   time.Duration
	log       Logger
}

// Option configures the client.
type Option func(*clientOptions)

// WithToken sets the access token sent as the access-token header.
func WithToken(token string) Option {
	return func(o *clientOptions) { o.cfg.AccessToken = token }
}

// WithUserToken sets the bearer token sent in the Authorization header.
func WithUserToken(token string) Option {
	return func(o *clientOptions) { o.cfg.UserToken = token }
}

// WithEnvironment selects the backend environment.
func WithEnvironment(env Environment) Option {
	return func(o *clientOptions) { o.cfg.Environment = env }
}

// WithDebug attaches transport diagnostics to every response.
func WithDebug(on bool) Option {
	return func(o *clientOptions) { o.cfg.Debug = on }
}

// WithBaseURLs replaces the whole environment table.
func WithBaseURLs(urls BaseURLs) Option {
	return func(o *clientOptions) { o.baseURLs = urls.clone() }
}

// WithBaseURL overrides the base URL of a single environment.
func WithBaseURL(env Environment, url string) Option {
	return func(o *clientOptions) {
		if o.baseURLs == nil {
			o.baseURLs = DefaultBaseURLs()
		}
		o.baseURLs[env] = url
	}
}

// WithHTTPClient sets the transport. It takes precedence over WithTimeout.
func WithHTTPClient(c httpclient.Client) Option {
	return func(o *clientOptions) { o.transport = c }
}

// WithTimeout bounds every HTTP call. Default: 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithLogger sets the logger used for request and failure logging.
func WithLogger(log Logger) Option {
	return func(o *clientOptions) { o.log = log }
}

// New builds a client. The environment must be set, through WithEnvironment
// or SetEnvironment, before the first call.
func New(opts ...Option) *Client {
	o := &clientOptions{
		cfg:     Config{Decode: true},
		timeout: httpclient.DefaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.baseURLs == nil {
		o.baseURLs = DefaultBaseURLs()
	}
	if o.transport == nil {
		o.transport = httpclient.NewRestyClient(o.timeout)
	}
	log := ensureLogger(o.log)
	return &Client{
		cfg:      o.cfg,
		executor: NewExecutor(o.transport, o.baseURLs, log),
		log:      log,
	}
}

// Config returns a copy of the current session state.
func (c *Client) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// SetToken sets the access token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.cfg.AccessToken = token
	c.mu.Unlock()
}

// SetUserToken sets the user bearer token.
func (c *Client) SetUserToken(token string) {
	c.mu.Lock()
	c.cfg.UserToken = token
	c.mu.Unlock()
}

// SetEnvironment switches environments. Unknown values are rejected and
// leave the current environment untouched.
func (c *Client) SetEnvironment(env Environment) error {
	if !env.Valid() {
		return configError("", "unknown environment "+env.String(), nil)
	}
	c.mu.Lock()
	c.cfg.Environment = env
	c.mu.Unlock()
	return nil
}

// SetUpload sets the default body encoding for calls without an explicit UploadMode.
func (c *Client) SetUpload(on bool) {
	c.mu.Lock()
	c.cfg.Upload = on
	c.mu.Unlock()
}

// SetDebug sets the default debug mode.
func (c *Client) SetDebug(on bool) {
	c.mu.Lock()
	c.cfg.Debug = on
	c.mu.Unlock()
}

// SetDecode sets the default response decoding mode.
func (c *Client) SetDecode(on bool) {
	c.mu.Lock()
	c.cfg.Decode = on
	c.mu.Unlock()
}

// snapshot copies the session and applies per-call options to the copy.
func (c *Client) snapshot(opts []CallOption) Config {
	cfg := c.Config()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Do executes an arbitrary request and returns the normalized response
// without applying the result rule. Use it for routes that have no method.
func (c *Client) Do(ctx context.Context, spec RequestSpec, opts ...CallOption) (*Response, error) {
	return c.executor.Execute(ctx, c.snapshot(opts), spec)
}

// Get performs a GET on path.
func (c *Client) Get(ctx context.Context, path string, params []QueryParam, headers ...Header) (*Response, error) {
	return c.Do(ctx, RequestSpec{Method: "GET", Path: path, Params: params, Headers: headers})
}

// Post performs a POST on path.
func (c *Client) Post(ctx context.Context, path string, body Payload, params []QueryParam, headers ...Header) (*Response, error) {
	return c.Do(ctx, RequestSpec{Method: "POST", Path: path, Body: body, Params: params, Headers: headers})
}

// Put performs a PUT on path. PUT bodies are always JSON.
func (c *Client) Put(ctx context.Context, path string, body Payload, params []QueryParam, headers ...Header) (*Response, error) {
	return c.Do(ctx, RequestSpec{Method: "PUT", Path: path, Body: body, Params: params, Headers: headers}, UploadMode(false))
}

// Delete performs a DELETE on path.
func (c *Client) Delete(ctx context.Context, path string, params []QueryParam, headers ...Header) (*Response, error) {
	return c.Do(ctx, RequestSpec{Method: "DELETE", Path: path, Params: params, Headers: headers})
}

// Options performs an OPTIONS on path.
func (c *Client) Options(ctx context.Context, path string, params []QueryParam, headers ...Header) (*Response, error) {
	return c.Do(ctx, RequestSpec{Method: "OPTIONS", Path: path, Params: params, Headers: headers})
}

// withOp stamps the operation name on client errors.
func withOp(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		e.Op = op
	}
	return err
}
