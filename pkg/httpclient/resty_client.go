package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds every call unless the caller picks another value.
const DefaultTimeout = 30 * time.Second

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Do performs the request. Only transport failures are returned as errors;
// every HTTP status, including 4xx and 5xx, comes back as a Response.
func (r *RestyClient) Do(ctx context.Context, in *Request) (Response, error) {
	if in == nil {
		return nil, fmt.Errorf("nil request")
	}
	method := strings.ToUpper(strings.TrimSpace(in.Method))
	if method == "" {
		method = http.MethodGet
	}

	req := r.client.R().SetContext(ctx)
	for name, values := range in.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if in.Trace {
		req.EnableTrace()
	}

	switch {
	case in.Multipart:
		fields := make(map[string]string, len(in.Form))
		for _, part := range in.Form {
			if part.IsFile() {
				req.SetMultipartField(part.Name, part.FileName, part.ContentType, bytes.NewReader(part.Content))
				continue
			}
			fields[part.Name] = part.Value
		}
		req.SetMultipartFormData(fields)
	case in.Body != nil:
		req.SetBody(in.Body)
	}

	resp, err := req.Execute(method, in.URL)
	if err != nil {
		return nil, err
	}
	adapter := &restyResponseAdapter{resp: resp}
	if in.Trace {
		adapter.info = traceInfo(method, in.URL, resp)
	}
	return adapter, nil
}

func traceInfo(method, url string, resp *resty.Response) *Info {
	ti := resp.Request.TraceInfo()
	info := &Info{
		URL:          url,
		Method:       method,
		HTTPCode:     resp.StatusCode(),
		Proto:        resp.Proto(),
		ContentType:  resp.Header().Get("Content-Type"),
		Size:         resp.Size(),
		DNSLookup:    ti.DNSLookup,
		ConnTime:     ti.ConnTime,
		TLSHandshake: ti.TLSHandshake,
		ServerTime:   ti.ServerTime,
		TotalTime:    ti.TotalTime,
		ConnReused:   ti.IsConnReused,
	}
	if ti.RemoteAddr != nil {
		info.RemoteAddr = ti.RemoteAddr.String()
	}
	return info
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
	info *Info
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
func (r *restyResponseAdapter) Info() *Info         { return r.info }
