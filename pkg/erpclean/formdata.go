package erpclean

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/erpclean/erpclean-go/pkg/httpclient"
)

type formField struct {
	name  string
	value any
}

// flattenForm rewrites a body into bracket-named form fields the way
// multipart encoders expect them: {"a": {"b": 1}} becomes a[b]=1 and
// {"items": [{"name": "x"}]} becomes items[0][name]=x. Each pass expands one
// level; passes repeat while any structured value is left.
func flattenForm(body Payload) []formField {
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]formField, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, formField{name: k, value: body[k]})
	}

	for {
		next, again := flattenPass(fields)
		fields = next
		if !again {
			return fields
		}
	}
}

func flattenPass(fields []formField) ([]formField, bool) {
	out := make([]formField, 0, len(fields))
	again := false
	for _, f := range fields {
		children, structured := expand(f.value)
		if !structured {
			out = append(out, f)
			continue
		}
		for _, c := range children {
			out = append(out, formField{name: f.name + "[" + c.name + "]", value: c.value})
			if _, nested := expand(c.value); nested {
				again = true
			}
		}
	}
	return out, again
}

// expand returns the direct children of a structured value. Scalars, byte
// slices and files are leaves.
func expand(v any) ([]formField, bool) {
	switch x := v.(type) {
	case nil, string, []byte, bool, json.Number, File, *File:
		return nil, false
	case Payload:
		return expandMap(map[string]any(x)), true
	case map[string]any:
		return expandMap(x), true
	case []any:
		out := make([]formField, len(x))
		for i, item := range x {
			out[i] = formField{name: strconv.Itoa(i), value: item}
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]formField, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = formField{name: strconv.Itoa(i), value: rv.Index(i).Interface()}
		}
		return out, true
	case reflect.Map:
		out := make([]formField, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out = append(out, formField{name: fmt.Sprint(iter.Key().Interface()), value: iter.Value().Interface()})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
		return out, true
	case reflect.Struct:
		m, err := structToMap(rv.Interface())
		if err != nil {
			return nil, false
		}
		return expandMap(m), true
	}
	return nil, false
}

func expandMap(m map[string]any) []formField {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]formField, len(keys))
	for i, k := range keys {
		out[i] = formField{name: k, value: m[k]}
	}
	return out
}

func structToMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// formParts turns flattened fields into multipart parts.
func formParts(fields []formField) []httpclient.FormPart {
	parts := make([]httpclient.FormPart, 0, len(fields))
	for _, f := range fields {
		switch x := f.value.(type) {
		case File:
			parts = append(parts, filePart(f.name, x))
		case *File:
			if x == nil {
				parts = append(parts, httpclient.FormPart{Name: f.name})
				continue
			}
			parts = append(parts, filePart(f.name, *x))
		default:
			parts = append(parts, httpclient.FormPart{Name: f.name, Value: formatScalar(f.value)})
		}
	}
	return parts
}

func filePart(name string, f File) httpclient.FormPart {
	fileName := f.Name
	if fileName == "" {
		fileName = name
	}
	return httpclient.FormPart{
		Name:        name,
		FileName:    fileName,
		ContentType: f.ContentType,
		Content:     f.Content,
	}
}
