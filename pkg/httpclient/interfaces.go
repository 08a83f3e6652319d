package httpclient

import (
	"context"
	"net/http"
	"time"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
	// Info is nil unless the request asked for a trace.
	Info() *Info
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req *Request) (Response, error)
}

// Request describes one outgoing call. Header values are sent in order;
// repeated names are appended, not replaced.
type Request struct {
	Method    string
	URL       string
	Header    http.Header
	Body      []byte
	Multipart bool
	Form      []FormPart
	Trace     bool
}

// FormPart is a single multipart field. Parts with a FileName are sent as files.
type FormPart struct {
	Name        string
	Value       string
	FileName    string
	ContentType string
	Content     []byte
}

// IsFile reports whether the part carries file content.
func (p FormPart) IsFile() bool { return p.FileName != "" }

// Info carries transport diagnostics for a single call.
type Info struct {
	URL          string        `json:"url"`
	Method       string        `json:"method"`
	HTTPCode     int           `json:"http_code"`
	Proto        string        `json:"proto,omitempty"`
	ContentType  string        `json:"content_type,omitempty"`
	Size         int64         `json:"size_download"`
	DNSLookup    time.Duration `json:"namelookup_time"`
	ConnTime     time.Duration `json:"connect_time"`
	TLSHandshake time.Duration `json:"appconnect_time"`
	ServerTime   time.Duration `json:"starttransfer_time"`
	TotalTime    time.Duration `json:"total_time"`
	RemoteAddr   string        `json:"primary_ip,omitempty"`
	ConnReused   bool          `json:"conn_reused"`
}
