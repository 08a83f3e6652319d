package erpclean

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/erpclean/erpclean-go/pkg/httpclient"
)

// DebugInfo holds transport diagnostics attached when debug mode is on.
type DebugInfo = httpclient.Info

// Response is the normalized result of one call.
type Response struct {
	HTTPCode int
	// Body is the decoded JSON document (maps, slices, json.Number, ...).
	// When decoding is turned off and the status is 200 it holds the raw
	// []byte payload instead.
	Body any
	Raw  []byte
	Info *DebugInfo
}

type responseJSON struct {
	Body     any        `json:"body"`
	HTTPCode int        `json:"httpCode"`
	Info     *DebugInfo `json:"info,omitempty"`
	Raw      string     `json:"raw,omitempty"`
}

// MarshalJSON renders the response as {"body": ..., "httpCode": ..., "info": ...}.
func (r *Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toJSON())
}

func (r *Response) toJSON() responseJSON {
	out := responseJSON{Body: r.Body, HTTPCode: r.HTTPCode, Info: r.Info}
	if raw, ok := r.Body.([]byte); ok {
		out.Body = string(raw)
	}
	return out
}

// Decode unmarshals the raw payload into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(bytes.TrimSpace(r.Raw)) == 0 {
		return fmt.Errorf("empty response body")
	}
	return json.Unmarshal(r.Raw, v)
}

// Field returns a top-level field of an object body.
func (r *Response) Field(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	m, ok := r.Body.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

// decodeBody parses a JSON payload. Invalid or empty payloads decode to nil.
func decodeBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// Interpret applies the result rule shared by every operation: 200 is
// success, otherwise the error message comes from body.message, then from
// body.errors joined by CRLF, then from the whole serialized response. An
// empty message counts as absent.
func Interpret(op string, resp *Response) (*Response, error) {
	if resp == nil {
		return nil, &Error{Kind: KindUnrecognizedResponse, Op: op, Message: "empty response"}
	}
	if resp.HTTPCode == http.StatusOK {
		return resp, nil
	}

	if msg, ok := resp.Field("message"); ok && msg != nil && msg != "" {
		return nil, &Error{
			Kind:     KindRemote,
			Op:       op,
			Message:  messageText(msg),
			HTTPCode: resp.HTTPCode,
			Response: resp,
		}
	}
	if errs, ok := resp.Field("errors"); ok && errs != nil {
		return nil, &Error{
			Kind:     KindRemote,
			Op:       op,
			Message:  strings.Join(collectErrors(errs), "\r\n"),
			HTTPCode: resp.HTTPCode,
			Response: resp,
		}
	}

	return nil, &Error{
		Kind:     KindUnrecognizedResponse,
		Op:       op,
		Message:  serializeResponse(resp),
		HTTPCode: resp.HTTPCode,
		Response: resp,
	}
}

func messageText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if raw, err := json.Marshal(v); err == nil {
		return string(raw)
	}
	return fmt.Sprint(v)
}

// collectErrors flattens an errors field. Lists keep their order, objects
// (field -> messages) are visited in key order.
func collectErrors(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return []string{x}
	case []any:
		var out []string
		for _, item := range x {
			out = append(out, collectErrors(item)...)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			out = append(out, collectErrors(x[k])...)
		}
		return out
	default:
		return []string{formatScalar(x)}
	}
}

func serializeResponse(resp *Response) string {
	out := resp.toJSON()
	if out.Body == nil && len(resp.Raw) > 0 {
		out.Raw = readBodySnippet(resp.Raw)
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf("unexpected response (status %d)", resp.HTTPCode)
	}
	return string(raw)
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
