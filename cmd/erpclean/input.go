package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/erpclean/erpclean-go/pkg/erpclean"
)

// loadPayload reads a JSON object from path, or from stdin when path is "-".
// An empty path yields a nil payload.
func loadPayload(path string, stdin io.Reader) (erpclean.Payload, error) {
	var (
		raw []byte
		err error
	)
	switch path {
	case "":
		return nil, nil
	case "-":
		raw, err = io.ReadAll(stdin)
	default:
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data erpclean.Payload
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return data, nil
}

// attachFiles reads each field=path spec and appends the file to the
// []erpclean.File list stored under field.
func attachFiles(data erpclean.Payload, specs []string) (erpclean.Payload, error) {
	if len(specs) == 0 {
		return data, nil
	}
	if data == nil {
		data = erpclean.Payload{}
	}
	for _, spec := range specs {
		field, path, ok := strings.Cut(spec, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" || path == "" {
			return nil, fmt.Errorf("invalid --file %q (want field=path)", spec)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read file for %s: %w", field, err)
		}
		file := erpclean.File{
			Name:        filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Content:     content,
		}
		files, _ := data[field].([]erpclean.File)
		data[field] = append(files, file)
	}
	return data, nil
}

// parseParams turns name=value pairs into query parameters, keeping order.
func parseParams(specs []string) ([]erpclean.QueryParam, error) {
	out := make([]erpclean.QueryParam, 0, len(specs))
	for _, spec := range specs {
		name, value, ok := strings.Cut(spec, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --param %q (want name=value)", spec)
		}
		out = append(out, erpclean.Param(strings.TrimSpace(name), value))
	}
	return out, nil
}

// writeBody prints a decoded body as indented JSON and a raw body as is.
func writeBody(w io.Writer, resp *erpclean.Response) error {
	if resp == nil {
		return nil
	}
	if raw, ok := resp.Body.([]byte); ok {
		_, err := w.Write(raw)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(resp.Body)
}
