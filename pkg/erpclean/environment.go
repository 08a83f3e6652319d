package erpclean

import (
	"fmt"
	"strconv"
	"strings"
)

// Environment selects which backend the client talks to.
type Environment int

const (
	Production Environment = iota + 1
	Local
	Sandbox
	Dusk
)

var environmentNames = map[Environment]string{
	Production: "production",
	Local:      "local",
	Sandbox:    "sandbox",
	Dusk:       "dusk",
}

func (e Environment) String() string {
	if name, ok := environmentNames[e]; ok {
		return name
	}
	return "environment(" + strconv.Itoa(int(e)) + ")"
}

// Valid reports whether e is one of the four known environments.
func (e Environment) Valid() bool {
	_, ok := environmentNames[e]
	return ok
}

// ParseEnvironment accepts an environment name or its numeric code (1-4).
func ParseEnvironment(s string) (Environment, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, configError("", "environment is not set", nil)
	}
	if n, err := strconv.Atoi(s); err == nil {
		if env := Environment(n); env.Valid() {
			return env, nil
		}
		return 0, configError("", fmt.Sprintf("unknown environment %d", n), nil)
	}
	for env, name := range environmentNames {
		if name == s {
			return env, nil
		}
	}
	return 0, configError("", fmt.Sprintf("unknown environment %q", s), nil)
}

// BaseURLs maps each environment to the API root that paths are joined to.
type BaseURLs map[Environment]string

// DefaultBaseURLs returns a fresh copy of the built-in environment table.
func DefaultBaseURLs() BaseURLs {
	return BaseURLs{
		Production: "https://api.fuganholi-easy.com.br/api",
		Local:      "http://api.nfservice.com.br/api",
		Sandbox:    "https://api.sandbox.fuganholi-easy.com.br/api",
		Dusk:       "https://api.dusk.fuganholi-easy.com.br/api",
	}
}

// Resolve returns the base URL for env. Unknown or unset environments and
// environments without an entry are configuration errors.
func (b BaseURLs) Resolve(env Environment) (string, error) {
	if env == 0 {
		return "", configError("", "environment is not set", nil)
	}
	if !env.Valid() {
		return "", configError("", fmt.Sprintf("unknown environment %d", int(env)), nil)
	}
	base := strings.TrimRight(strings.TrimSpace(b[env]), "/")
	if base == "" {
		return "", configError("", fmt.Sprintf("no base url configured for %s", env), nil)
	}
	return base, nil
}

func (b BaseURLs) clone() BaseURLs {
	out := make(BaseURLs, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
