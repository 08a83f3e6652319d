package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRestyClientSendsHeadersInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Values("X-Trace")
		if len(got) != 2 || got[0] != "a" || got[1] != "b" {
			t.Fatalf("expected appended X-Trace values [a b], got %v", got)
		}
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok":false}`))
	}))
	defer srv.Close()

	h := http.Header{}
	h.Add("X-Trace", "a")
	h.Add("X-Trace", "b")

	resp, err := NewRestyClient(2*time.Second).Do(context.Background(), &Request{
		Method: http.MethodGet,
		URL:    srv.URL,
		Header: h,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusTeapot {
		t.Fatalf("expected status 418, got %d", resp.StatusCode())
	}
	if string(resp.Body()) != `{"ok":false}` {
		t.Fatalf("unexpected body %q", resp.Body())
	}
	if resp.Info() != nil {
		t.Fatalf("expected no trace info when trace disabled")
	}
}

func TestRestyClientSendsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Fatalf("expected PUT, got %s", r.Method)
		}
		raw, _ := io.ReadAll(r.Body)
		if string(raw) != `{"a":1}` {
			t.Fatalf("unexpected body %q", raw)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if _, err := NewRestyClient(time.Second).Do(context.Background(), &Request{
		Method: http.MethodPut,
		URL:    srv.URL,
		Header: h,
		Body:   []byte(`{"a":1}`),
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestRestyClientMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Fatalf("expected multipart content type, got %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("items[0][name]"); got != "x" {
			t.Fatalf("expected items[0][name]=x, got %q", got)
		}
		files := r.MultipartForm.File["xmls[0]"]
		if len(files) != 1 || files[0].Filename != "nfe.xml" {
			t.Fatalf("expected uploaded nfe.xml, got %#v", files)
		}
		f, _ := files[0].Open()
		defer f.Close()
		raw, _ := io.ReadAll(f)
		if string(raw) != "<nfe/>" {
			t.Fatalf("unexpected file content %q", raw)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := NewRestyClient(time.Second).Do(context.Background(), &Request{
		Method:    http.MethodPost,
		URL:       srv.URL,
		Multipart: true,
		Form: []FormPart{
			{Name: "items[0][name]", Value: "x"},
			{Name: "xmls[0]", FileName: "nfe.xml", ContentType: "application/xml", Content: []byte("<nfe/>")},
		},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestRestyClientTraceInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := NewRestyClient(time.Second).Do(context.Background(), &Request{
		Method: http.MethodGet,
		URL:    srv.URL,
		Trace:  true,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	info := resp.Info()
	if info == nil {
		t.Fatalf("expected trace info")
	}
	if info.HTTPCode != http.StatusOK || info.Method != http.MethodGet || info.URL != srv.URL {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.ContentType != "application/json" {
		t.Fatalf("unexpected content type %q", info.ContentType)
	}
}

func TestRestyClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := NewRestyClient(time.Second).Do(context.Background(), &Request{Method: http.MethodGet, URL: url}); err == nil {
		t.Fatalf("expected transport error against closed server")
	}
}
