// Package manifest reads the project manifest (Pargo.toml) and keeps the
// nested Cargo.toml's dependency table in line with it.
package manifest

import (
	"bytes"
	"os"
	"reflect"

	"github.com/BurntSushi/toml"

	"github.com/pargo/cargo-pargo/internal/errs"
	"github.com/pargo/cargo-pargo/internal/fsutil"
	"github.com/pargo/cargo-pargo/internal/layout"
)

// ContextPrefix leads from the nested cargo project back to the project root
const ContextPrefix = "../.."

// Table is a decoded TOML table
type Table = map[string]any

// Project is the decoded Pargo.toml
type Project struct {
	Dependencies Table         `toml:"dependencies"`
	Script       *ScriptConfig `toml:"script"`

	// Pargo is the [pargo] table older manifests use instead of [script]
	Pargo *ScriptConfig `toml:"pargo"`
}

// ScriptConfig configures the script to compile
type ScriptConfig struct {
	Path string `toml:"path"`
}

// ScriptPath returns the declared script path, falling back to pargo.rs
func (p *Project) ScriptPath() string {
	if p.Script != nil && p.Script.Path != "" {
		return p.Script.Path
	}
	if p.Pargo != nil && p.Pargo.Path != "" {
		return p.Pargo.Path
	}
	return layout.DefaultScript
}

// LoadProject reads and parses a Pargo.toml
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.IO("read", path, err)
	}

	var p Project
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, errs.Parse("decode", path, err)
	}
	if p.Dependencies == nil {
		p.Dependencies = Table{}
	}

	return &p, nil
}

// LoadDescription reads a Cargo.toml as a generic document so that fields
// cargo-pargo does not know about survive a rewrite.
func LoadDescription(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.IO("read", path, err)
	}

	doc := Table{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Parse("decode", path, err)
	}

	return doc, nil
}

// SaveDescription encodes doc and replaces the file at path
func SaveDescription(path string, doc Table) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return errs.Parse("encode", path, err)
	}
	return fsutil.WriteFile(path, buf.Bytes(), 0644)
}

// Dependencies returns the dependency table of a build description, empty if absent
func Dependencies(doc Table) Table {
	if deps, ok := doc["dependencies"].(Table); ok {
		return deps
	}
	return Table{}
}

// Rewrite returns a copy of deps in which every local path dependency points
// from the nested cargo project back into the project root. Entries that are
// not tables, and path values that are not strings, are copied unchanged.
func Rewrite(deps Table) Table {
	out := make(Table, len(deps))
	for name, spec := range deps {
		spec = copyValue(spec)
		if t, ok := spec.(Table); ok {
			if p, ok := t["path"].(string); ok {
				t["path"] = ContextPrefix + "/" + p
			}
		}
		out[name] = spec
	}
	return out
}

// Merge returns a copy of doc whose dependencies are replaced by deps
func Merge(doc Table, deps Table) Table {
	out := copyValue(doc).(Table)
	if out == nil {
		out = Table{}
	}
	out["dependencies"] = copyValue(deps)
	return out
}

// EqualDependencies compares two dependency tables structurally. Key order
// never matters; a nil table equals an empty one.
func EqualDependencies(a, b Table) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func copyValue(v any) any {
	switch val := v.(type) {
	case Table:
		if val == nil {
			return Table(nil)
		}
		out := make(Table, len(val))
		for k, e := range val {
			out[k] = copyValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = copyValue(e)
		}
		return out
	case []Table:
		out := make([]Table, len(val))
		for i, e := range val {
			out[i] = copyValue(e).(Table)
		}
		return out
	default:
		return v
	}
}
