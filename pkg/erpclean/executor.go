package erpclean

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/erpclean/erpclean-go/pkg/httpclient"
)

const (
	contentTypeJSON      = "application/json"
	contentTypeMultipart = "multipart/form-data"
)

// Config is the per-client session state. The executor only ever sees a
// copy taken at call time.
type Config struct {
	AccessToken string
	UserToken   string
	Environment Environment
	// Upload sends bodies as multipart form data instead of JSON.
	Upload bool
	// Debug attaches transport diagnostics to every Response.
	Debug bool
	// Decode parses response bodies as JSON. When false, 200 answers keep
	// their raw bytes while error answers are still decoded.
	Decode bool
}

// CallOption adjusts the config copy used for a single call.
type CallOption func(*Config)

// UploadMode switches a single call to multipart form encoding.
func UploadMode(on bool) CallOption {
	return func(c *Config) { c.Upload = on }
}

// DecodeMode turns JSON decoding of a 200 answer on or off for a single call.
func DecodeMode(on bool) CallOption {
	return func(c *Config) { c.Decode = on }
}

// DebugMode toggles transport diagnostics for a single call.
func DebugMode(on bool) CallOption {
	return func(c *Config) { c.Debug = on }
}

// Executor turns a RequestSpec into an HTTP call and normalizes the answer.
type Executor struct {
	transport httpclient.Client
	baseURLs  BaseURLs
	log       Logger
}

// NewExecutor wires an executor. A nil transport falls back to resty with the default timeout.
func NewExecutor(transport httpclient.Client, baseURLs BaseURLs, log Logger) *Executor {
	if transport == nil {
		transport = httpclient.NewRestyClient(httpclient.DefaultTimeout)
	}
	if baseURLs == nil {
		baseURLs = DefaultBaseURLs()
	}
	return &Executor{
		transport: transport,
		baseURLs:  baseURLs.clone(),
		log:       ensureLogger(log),
	}
}

// URL resolves the full request URL for env.
func (e *Executor) URL(env Environment, path string, params []QueryParam) (string, error) {
	base, err := e.baseURLs.Resolve(env)
	if err != nil {
		return "", err
	}
	return buildURL(base, path, params), nil
}

// Execute performs the call described by spec with cfg. HTTP error statuses
// are not errors here; only configuration and transport failures are.
func (e *Executor) Execute(ctx context.Context, cfg Config, spec RequestSpec) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	method, err := normalizeMethod(spec.Method)
	if err != nil {
		return nil, err
	}
	url, err := e.URL(cfg.Environment, spec.Path, spec.Params)
	if err != nil {
		return nil, err
	}

	req := &httpclient.Request{
		Method: method,
		URL:    url,
		Header: buildHeaders(cfg, spec.Headers),
		Trace:  cfg.Debug,
	}
	if method == http.MethodPost || method == http.MethodPut {
		if err := encodeBody(req, cfg.Upload, spec.Body); err != nil {
			return nil, err
		}
	}

	e.log.DebugObj("api request dispatched", "api_request", map[string]any{
		"method": method,
		"url":    url,
		"upload": cfg.Upload,
	})

	start := time.Now()
	resp, err := e.transport.Do(ctx, req)
	if err != nil {
		e.log.ErrorObj("api request failed", "api_transport_error", map[string]any{
			"method": method,
			"url":    url,
			"error":  err.Error(),
		})
		return nil, &Error{
			Kind:    KindTransport,
			Op:      method + " " + spec.Path,
			Message: fmt.Sprintf("%s %s: %v", method, url, err),
			Err:     err,
		}
	}

	out := normalize(resp, cfg)
	e.log.DebugObj("api response received", "api_response", map[string]any{
		"method":     method,
		"url":        url,
		"http_code":  out.HTTPCode,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return out, nil
}

func normalizeMethod(m string) (string, error) {
	m = strings.ToUpper(strings.TrimSpace(m))
	switch m {
	case "":
		return http.MethodGet, nil
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return m, nil
	default:
		return "", configError("", fmt.Sprintf("unsupported http method %q", m), nil)
	}
}

func buildHeaders(cfg Config, extra []Header) http.Header {
	h := http.Header{}
	h.Add("access-token", cfg.AccessToken)
	h.Add("Authorization", "Bearer "+cfg.UserToken)
	h.Add("Accept", contentTypeJSON)
	if cfg.Upload {
		h.Add("Content-Type", contentTypeMultipart)
	} else {
		h.Add("Content-Type", contentTypeJSON)
	}
	for _, x := range extra {
		if strings.TrimSpace(x.Name) == "" {
			continue
		}
		h.Add(x.Name, x.Value)
	}
	return h
}

func encodeBody(req *httpclient.Request, upload bool, body Payload) error {
	if upload {
		req.Multipart = true
		req.Form = formParts(flattenForm(body))
		return nil
	}
	if body == nil {
		req.Body = []byte("{}")
		return nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return configError("", fmt.Sprintf("encode request body: %v", err), err)
	}
	req.Body = raw
	return nil
}

func normalize(resp httpclient.Response, cfg Config) *Response {
	raw := resp.Body()
	out := &Response{
		HTTPCode: resp.StatusCode(),
		Raw:      raw,
	}
	if !cfg.Decode && out.HTTPCode == http.StatusOK {
		out.Body = raw
	} else {
		out.Body = decodeBody(raw)
	}
	if cfg.Debug {
		out.Info = resp.Info()
	}
	return out
}
