// Package root finds the directory cargo-pargo treats as the project root.
//
// A directory is marked when it holds a Cargo.toml or any Rust source file.
// Starting from the working directory the walk climbs through marked
// directories and settles on the outermost one of that unbroken run, so a
// script project that contains nested crates resolves to its top.
package root

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pargo/cargo-pargo/internal/errs"
	"github.com/pargo/cargo-pargo/internal/layout"
)

// SourceExtension marks Rust source files
const SourceExtension = ".rs"

// Candidate is one directory visited by the upward walk
type Candidate struct {
	Dir    string
	Marked bool
}

// IsSourceFile returns true if name is a Rust source file
func IsSourceFile(name string) bool {
	return strings.HasSuffix(name, SourceExtension)
}

// IsMarked reports whether dir contains a build description or a source file
func IsMarked(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, errs.IO("read dir", dir, err)
	}

	for _, entry := range entries {
		if entry.Name() == layout.DescriptionFile || IsSourceFile(entry.Name()) {
			return true, nil
		}
	}
	return false, nil
}

// Candidates walks upward from start and returns every directory visited.
// The walk stops after the first unmarked directory, or at the filesystem
// root when every ancestor is marked.
func Candidates(start string) ([]Candidate, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, errs.IO("resolve", start, err)
	}

	var visited []Candidate
	for {
		marked, err := IsMarked(dir)
		if err != nil {
			return nil, err
		}
		visited = append(visited, Candidate{Dir: dir, Marked: marked})
		if !marked {
			return visited, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return visited, nil
		}
		dir = parent
	}
}

// Select picks the root from a walk: the last marked candidate of the run
// that begins at the start directory. An unmarked start directory is its
// own root.
func Select(candidates []Candidate) string {
	if len(candidates) == 0 {
		return ""
	}

	selected := candidates[0].Dir
	for _, c := range candidates {
		if !c.Marked {
			break
		}
		selected = c.Dir
	}
	return selected
}

// Locate returns the project root for start
func Locate(start string) (string, error) {
	candidates, err := Candidates(start)
	if err != nil {
		return "", err
	}
	return Select(candidates), nil
}
