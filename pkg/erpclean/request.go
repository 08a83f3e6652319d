package erpclean

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Payload is a request body. Values may be scalars, nested maps or slices, or File.
type Payload map[string]any

// File is a file part for upload operations such as ImportNFeXML.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Header is an extra request header. Extra headers are appended after the defaults.
type Header struct {
	Name  string
	Value string
}

// QueryParam is one query string entry. Order is preserved.
type QueryParam struct {
	Name  string
	Value any
}

// Param is shorthand for QueryParam{Name: name, Value: value}.
func Param(name string, value any) QueryParam {
	return QueryParam{Name: name, Value: value}
}

// RequestSpec describes one call to the API.
type RequestSpec struct {
	Path    string
	Method  string
	Body    Payload
	Params  []QueryParam
	Headers []Header
}

// include reports whether the parameter is sent. Empty names, nil values
// (typed nil pointers included), empty strings and empty collections are
// skipped; numeric and boolean zero values are kept.
func (p QueryParam) include() bool {
	if p.Name == "" || p.Value == nil {
		return false
	}
	v := indirect(p.Value)
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return !rv.IsNil() && rv.Len() > 0
	case reflect.Array:
		return rv.Len() > 0
	case reflect.Func, reflect.Chan:
		return false
	}
	return true
}

// indirect follows pointers down to the pointed-to value; a nil pointer yields nil.
func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// encodeQuery joins the surviving parameters as name=value pairs, each side
// escaped on its own.
func encodeQuery(params []QueryParam) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if !p.include() {
			continue
		}
		parts = append(parts, url.QueryEscape(p.Name)+"="+url.QueryEscape(formatScalar(indirect(p.Value))))
	}
	return strings.Join(parts, "&")
}

// buildURL joins base, path and query. A leading slash is added to path when missing.
func buildURL(base, path string, params []QueryParam) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := base + path
	if q := encodeQuery(params); q != "" {
		u += "?" + q
	}
	return u
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(x).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(x).Uint(), 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// isBlank reports whether a required field counts as missing.
func isBlank(v any) bool {
	if v == nil {
		return true
	}
	switch x := v.(type) {
	case string:
		return x == "" || x == "0"
	case bool:
		return !x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	case File:
		return len(x.Content) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == 0 || math.IsNaN(f)
	}
	return false
}
