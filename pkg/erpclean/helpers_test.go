package erpclean

import (
	"context"
	"net/http"
	"sync"

	"github.com/erpclean/erpclean-go/pkg/httpclient"
)

type fakeResponse struct {
	status int
	body   string
	info   *httpclient.Info
}

func (r fakeResponse) Body() []byte           { return []byte(r.body) }
func (r fakeResponse) StatusCode() int        { return r.status }
func (r fakeResponse) Header() http.Header    { return http.Header{} }
func (r fakeResponse) Info() *httpclient.Info { return r.info }

// fakeTransport records requests and answers through respond.
type fakeTransport struct {
	mu      sync.Mutex
	reqs    []*httpclient.Request
	respond func(req *httpclient.Request) (fakeResponse, error)
}

func (f *fakeTransport) Do(_ context.Context, req *httpclient.Request) (httpclient.Response, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	respond := f.respond
	f.mu.Unlock()

	if respond == nil {
		return fakeResponse{status: http.StatusOK, body: `{}`}, nil
	}
	resp, err := respond(req)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (f *fakeTransport) requests() []*httpclient.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*httpclient.Request, len(f.reqs))
	copy(out, f.reqs)
	return out
}

func answer(status int, body string) func(*httpclient.Request) (fakeResponse, error) {
	return func(*httpclient.Request) (fakeResponse, error) {
		return fakeResponse{status: status, body: body}, nil
	}
}

func newTestClient(ft *fakeTransport, opts ...Option) *Client {
	base := []Option{
		WithHTTPClient(ft),
		WithEnvironment(Sandbox),
		WithBaseURL(Sandbox, "https://api.test/api"),
		WithToken("tok"),
		WithUserToken("usr"),
	}
	return New(append(base, opts...)...)
}

func formValue(req *httpclient.Request, name string) (httpclient.FormPart, bool) {
	for _, p := range req.Form {
		if p.Name == name {
			return p, true
		}
	}
	return httpclient.FormPart{}, false
}
