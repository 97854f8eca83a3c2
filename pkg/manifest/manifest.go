// Package manifest loads and exposes package.json documents. A manifest is
// read-only after Load; callers query fields by dotted path (e.g.
// "repository.url") and read dependency sections in declaration order.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Well-known dependency sections.
const (
	SectionDependencies    = "dependencies"
	SectionDevDependencies = "devDependencies"
)

// ParseError indicates a manifest file that could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is (or wraps) a manifest ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Dependency is one entry of a dependency section, in declaration order.
type Dependency struct {
	Name       string
	Constraint string
}

// Manifest is one parsed package.json document.
type Manifest struct {
	path string
	raw  map[string]any
	deps map[string][]Dependency
}

// Load reads and decodes the package.json at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	m := &Manifest{
		path: path,
		raw:  raw,
		deps: make(map[string][]Dependency, 2),
	}
	for _, section := range []string{SectionDependencies, SectionDevDependencies} {
		ordered, err := orderedSection(data, section)
		if err != nil {
			return nil, &ParseError{Path: path, Err: errors.Wrapf(err, "section %s", section)}
		}
		m.deps[section] = ordered
	}
	return m, nil
}

// Path returns the on-disk location this manifest was loaded from.
func (m *Manifest) Path() string { return m.path }

// Field resolves a dotted field path by walking nested objects. A missing key
// at any level returns (nil, false); absence is expected, not an error.
func (m *Manifest) Field(dotted string) (any, bool) {
	cur := any(m.raw)
	for _, key := range strings.Split(dotted, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func (m *Manifest) stringField(dotted string) string {
	v, ok := m.Field(dotted)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Name returns the package name, or "" when absent.
func (m *Manifest) Name() string { return m.stringField("name") }

// Version returns the declared version, or "" when absent.
func (m *Manifest) Version() string { return m.stringField("version") }

// Description returns the package description, or "" when absent.
func (m *Manifest) Description() string { return m.stringField("description") }

// TestScript returns the scripts.test command, or "" when absent.
func (m *Manifest) TestScript() string { return m.stringField("scripts.test") }

// EngineConstraint returns the declared node runtime constraint. Both the
// modern "engines" object and the legacy singular "engine" spelling occur in
// the wild, so both are honored.
func (m *Manifest) EngineConstraint() string {
	if c := m.stringField("engines.node"); c != "" {
		return c
	}
	return m.stringField("engine.node")
}

// Dependencies returns the named section's entries in declaration order. An
// absent section yields an empty slice.
func (m *Manifest) Dependencies(section string) []Dependency {
	return m.deps[section]
}

// orderedSection re-scans the raw document to recover the declaration order of
// a dependency section, which json.Unmarshal into a map discards.
func orderedSection(data []byte, section string) ([]Dependency, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	// Consume the opening brace of the top-level object.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)
		if key != section {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}
		return decodeDependencyObject(dec)
	}
	return nil, nil
}

func decodeDependencyObject(dec *json.Decoder) ([]Dependency, error) {
	open, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := open.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("dependency section is not an object")
	}

	var out []Dependency
	for dec.More() {
		nameTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := nameTok.(string)

		var constraint string
		if err := dec.Decode(&constraint); err != nil {
			return nil, fmt.Errorf("constraint for %s is not a string: %w", name, err)
		}
		out = append(out, Dependency{Name: name, Constraint: constraint})
	}
	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}
