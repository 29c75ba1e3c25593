// Package vars implements named variable resolution and ${name} template
// expansion. A resolver chain is an ordered list of resolvers where the first
// successful lookup wins.
package vars

import (
	"fmt"
	"os"
	"strings"

	"github.com/glorpus-work/javup/pkg/errors"
	"github.com/glorpus-work/javup/pkg/platform"
)

// Resolver resolves the variable with the given name.
type Resolver interface {
	Resolve(name string) (string, error)
}

// notFound builds the error returned when a variable cannot be resolved.
func notFound(name string) error {
	return fmt.Errorf("variable %q: %w", name, errors.ErrVarNotFound)
}

// Static resolves variables from a fixed in-memory map.
type Static struct {
	vars map[string]string
}

// NewStatic creates an empty Static resolver.
func NewStatic() *Static {
	return &Static{vars: make(map[string]string)}
}

// Set registers the value for the given variable name.
func (s *Static) Set(name, value string) *Static {
	s.vars[name] = value
	return s
}

// Resolve implements Resolver.
func (s *Static) Resolve(name string) (string, error) {
	if value, ok := s.vars[name]; ok {
		return value, nil
	}
	return "", notFound(name)
}

// OSEnv resolves variables from the process environment.
type OSEnv struct{}

// Resolve implements Resolver.
func (OSEnv) Resolve(name string) (string, error) {
	if value, ok := os.LookupEnv(name); ok {
		return value, nil
	}
	return "", notFound(name)
}

// Prefixed strips a prefix from the variable name and delegates the rest to
// another resolver. Names without the prefix are not resolved.
type Prefixed struct {
	prefix string
	next   Resolver
}

// NewPrefixed creates a Prefixed resolver delegating to next.
func NewPrefixed(prefix string, next Resolver) *Prefixed {
	return &Prefixed{prefix: prefix, next: next}
}

// Resolve implements Resolver.
func (p *Prefixed) Resolve(name string) (string, error) {
	if stripped, ok := strings.CutPrefix(name, p.prefix); ok {
		return p.next.Resolve(stripped)
	}
	return "", notFound(name)
}

// Platform resolves the built-in platform constants.
type Platform struct{}

// Resolve implements Resolver.
func (Platform) Resolve(name string) (string, error) {
	switch name {
	case "JU_ARCH":
		return platform.HostArch(), nil
	case "JU_FAMILY":
		return platform.Family(platform.HostOS()), nil
	case "JU_OS":
		return platform.HostOS(), nil
	default:
		return "", notFound(name)
	}
}

// AsIs echoes every variable back as its unexpanded ${name} form. Putting it
// at the end of a chain makes expansion lenient: unknown variables survive
// verbatim instead of failing.
type AsIs struct{}

// Resolve implements Resolver.
func (AsIs) Resolve(name string) (string, error) {
	return "${" + name + "}", nil
}

// Chain tries each resolver in order and returns the first success.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(name string) (string, error) {
	for _, r := range c {
		if value, err := r.Resolve(name); err == nil {
			return value, nil
		}
	}
	return "", notFound(name)
}
