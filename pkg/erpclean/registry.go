package erpclean

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// baseURLFile represents the structure of the base URL override file.
type baseURLFile struct {
	Environments []EnvironmentURL `json:"environments" yaml:"environments"`
}

// EnvironmentURL is a single entry of the base URL override file.
type EnvironmentURL struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// LoadBaseURLs reads a YAML or JSON file of environment overrides and merges
// it over the default table.
//
//	environments:
//	  - name: sandbox
//	    url: https://sandbox.example/api
func LoadBaseURLs(path string) (BaseURLs, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("base urls file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open base urls file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read base urls file: %w", err)
	}

	parsed, err := parseBaseURLFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Environments) == 0 {
		return nil, errors.New("base urls file contains no environments entries")
	}

	urls := DefaultBaseURLs()
	seen := make(map[Environment]bool, len(parsed.Environments))
	for i, entry := range parsed.Environments {
		env, err := ParseEnvironment(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("environments[%d]: %w", i, err)
		}
		u := strings.TrimSpace(entry.URL)
		if u == "" {
			return nil, fmt.Errorf("environments[%d]: url is required for %s", i, env)
		}
		if seen[env] {
			return nil, fmt.Errorf("duplicate environment %q", env)
		}
		seen[env] = true
		urls[env] = u
	}
	return urls, nil
}

type unmarshalFn func([]byte, any) error

// parseBaseURLFile attempts to decode the file content.
func parseBaseURLFile(data []byte, ext string) (baseURLFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out baseURLFile
		if err := d.fn(data, &out); err == nil {
			return out, nil
		}
	}

	return baseURLFile{}, errors.New("base urls file format not recognized (expected YAML or JSON)")
}
