// Package staleness decides whether the nested cargo project still reflects
// the declared script and dependencies. Both checks only read.
package staleness

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/pargo/cargo-pargo/internal/fingerprint"
	"github.com/pargo/cargo-pargo/internal/layout"
	"github.com/pargo/cargo-pargo/internal/manifest"
)

// ErrMissingCopy marks a script check that found no copy in the nested
// project, which means it has not been populated yet.
var ErrMissingCopy = errors.New("script copy missing")

// Detector runs staleness checks for one project root
type Detector struct {
	layout layout.Layout
}

// NewDetector creates a detector for the given layout
func NewDetector(l layout.Layout) *Detector {
	return &Detector{layout: l}
}

// ScriptStale reports whether the declared script differs from the copy in
// the nested project. A missing copy is returned as ErrMissingCopy joined
// with the io error.
func (d *Detector) ScriptStale(script string) (bool, error) {
	declared, err := fingerprint.File(d.layout.Script(script))
	if err != nil {
		return false, err
	}

	copied, err := fingerprint.File(d.layout.ScriptCopy())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: %w", ErrMissingCopy, err)
		}
		return false, err
	}

	return declared != copied, nil
}

// ManifestStale reports whether the rewritten dependencies of Pargo.toml
// differ from the dependencies in the nested Cargo.toml.
func (d *Detector) ManifestStale() (bool, error) {
	project, err := manifest.LoadProject(d.layout.Manifest())
	if err != nil {
		return false, err
	}

	desc, err := manifest.LoadDescription(d.layout.Description())
	if err != nil {
		return false, err
	}

	want := manifest.Rewrite(project.Dependencies)
	return !manifest.EqualDependencies(want, manifest.Dependencies(desc)), nil
}
