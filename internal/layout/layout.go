// Package layout resolves the paths cargo-pargo reads and writes below a project root.
package layout

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pargo/cargo-pargo/internal/errs"
)

const (
	// ManifestFile is the project manifest at the root
	ManifestFile = "Pargo.toml"
	// StateDir holds everything cargo-pargo generates
	StateDir = ".pargo"
	// ContextName is the package name of the nested cargo project
	ContextName = "pargo"
	// DescriptionFile is the build description cargo reads
	DescriptionFile = "Cargo.toml"
	// DefaultScript is the script path used when the manifest does not name one
	DefaultScript = "pargo.rs"
)

// Layout resolves every path cargo-pargo touches below a project root
type Layout struct {
	Root string
}

// New returns the layout rooted at root
func New(root string) Layout {
	return Layout{Root: root}
}

// Manifest returns the path of Pargo.toml
func (l Layout) Manifest() string {
	return filepath.Join(l.Root, ManifestFile)
}

// StateDir returns the path of .pargo
func (l Layout) StateDir() string {
	return filepath.Join(l.Root, StateDir)
}

// ContextDir returns the nested cargo project directory
func (l Layout) ContextDir() string {
	return filepath.Join(l.StateDir(), ContextName)
}

// ScriptCopy returns where the script is copied inside the nested project
func (l Layout) ScriptCopy() string {
	return filepath.Join(l.ContextDir(), "src", "main.rs")
}

// Description returns the nested Cargo.toml
func (l Layout) Description() string {
	return filepath.Join(l.ContextDir(), DescriptionFile)
}

// Artifact returns the compiled script executable
func (l Layout) Artifact() string {
	name := ContextName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(l.ContextDir(), "target", "debug", name)
}

// Script resolves a script path declared in the manifest against the root
func (l Layout) Script(declared string) string {
	if declared == "" {
		declared = DefaultScript
	}
	if filepath.IsAbs(declared) {
		return declared
	}
	return filepath.Join(l.Root, declared)
}

// HasManifest reports whether Pargo.toml exists, i.e. whether this is a script project
func (l Layout) HasManifest() (bool, error) {
	return exists(l.Manifest())
}

// Initialized reports whether the nested cargo project exists
func (l Layout) Initialized() (bool, error) {
	return exists(l.ContextDir())
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errs.IO("stat", path, err)
}
