//go:build integration

package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/pargo/cargo-pargo/internal/testutil"
)

const defaultTimeout = 10 * time.Minute

// Harness builds cargo-pargo once and runs it against scratch projects with
// the real cargo toolchain.
type Harness struct {
	t      *testing.T
	binary string
}

// NewHarness builds the cargo-pargo binary, skipping the test when cargo or
// go is not on PATH
func NewHarness(ctx context.Context, t *testing.T) *Harness {
	t.Helper()

	for _, tool := range []string{"cargo", "go"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not found on PATH", tool)
		}
	}

	moduleRoot, err := testutil.FindModuleRoot()
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}

	binary := filepath.Join(t.TempDir(), "cargo-pargo")
	cmd := exec.CommandContext(ctx, "go", "build", "-o", binary, "./cmd/cargo-pargo")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build cargo-pargo: %v\n%s", err, out)
	}

	return &Harness{t: t, binary: binary}
}

// Result is the outcome of one cargo-pargo invocation
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run invokes cargo-pargo in dir with args
func (h *Harness) Run(ctx context.Context, dir string, args ...string) Result {
	h.t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, h.binary, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "PARGO_CONFIG=", "PARGO_LOG_FORMAT=text", "PARGO_LOG_LEVEL=info")

	err := cmd.Run()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			h.t.Fatalf("run cargo-pargo: %v", err)
		}
		code = exitErr.ExitCode()
	}

	h.t.Logf("cargo-pargo %v in %s -> %d\nstderr:\n%s", args, dir, code, stderr.String())
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

// Project writes a script project into a fresh directory and returns it
func (h *Harness) Project(files map[string]string) string {
	h.t.Helper()
	dir := h.t.TempDir()
	testutil.WriteTree(h.t, dir, files)
	return dir
}

// MustExist fails the test if path does not exist
func (h *Harness) MustExist(path string) {
	h.t.Helper()
	if _, err := os.Stat(path); err != nil {
		h.t.Fatal(fmt.Errorf("expected %s to exist: %w", path, err))
	}
}
