// Package cargo runs the wrapped build tool and the compiled script as child
// processes. Every command gets an explicit working directory; the wrapper's
// own working directory is never changed.
package cargo

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"runtime"
	"syscall"

	"github.com/pargo/cargo-pargo/internal/errs"
)

// Tool is the build tool invocation contract
type Tool interface {
	// Init creates a new binary project called name inside dir
	Init(ctx context.Context, dir, name string) error
	// Build compiles the project in dir
	Build(ctx context.Context, dir string) error
	// Forward runs the tool in dir with args unchanged and returns its exit code
	Forward(ctx context.Context, dir string, args []string) (int, error)
}

// Client implements Tool by shelling out to cargo
type Client struct {
	binary string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewClient creates a client for the cargo binary at binary ("cargo" when empty)
func NewClient(binary string) *Client {
	if binary == "" {
		binary = "cargo"
	}
	return &Client{
		binary: binary,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// WithOutput redirects the child's stdout and stderr
func (c *Client) WithOutput(stdout, stderr io.Writer) *Client {
	c.stdout = stdout
	c.stderr = stderr
	return c
}

// Binary returns the cargo binary the client invokes
func (c *Client) Binary() string {
	return c.binary
}

// Init runs `cargo init <name>` in dir
func (c *Client) Init(ctx context.Context, dir, name string) error {
	return c.step(ctx, dir, "init", name)
}

// Build runs `cargo build` in dir
func (c *Client) Build(ctx context.Context, dir string) error {
	return c.step(ctx, dir, "build")
}

// Forward runs cargo with args and hands back its exit status
func (c *Client) Forward(ctx context.Context, dir string, args []string) (int, error) {
	cmd := command(ctx, c.binary, args...)
	cmd.Dir = dir
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr
	return wait(cmd, c.binary)
}

// step runs a cargo subcommand whose failure aborts the wrapper. Its output
// goes to stderr so the script's stdout stays clean.
func (c *Client) step(ctx context.Context, dir string, args ...string) error {
	cmd := command(ctx, c.binary, args...)
	cmd.Dir = dir
	cmd.Stdout = c.stderr
	cmd.Stderr = c.stderr

	code, err := wait(cmd, c.binary)
	if err != nil {
		return err
	}
	if code != 0 {
		return errs.Subprocess(c.binary+" "+args[0], code, "")
	}
	return nil
}

// RunArtifact spawns the compiled script in dir with args and inherited
// stdio, and returns its exit code.
func RunArtifact(ctx context.Context, path, dir string, args []string) (int, error) {
	cmd := command(ctx, path, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return wait(cmd, path)
}

// command builds a child whose context cancellation interrupts it instead of
// killing it, so the child can run its own cleanup and pick its exit code.
func command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Cancel = func() error {
		if runtime.GOOS == "windows" {
			return cmd.Process.Kill()
		}
		return cmd.Process.Signal(os.Interrupt)
	}
	return cmd
}

// wait starts cmd and converts its outcome into an exit code. A process that
// could not be started is a spawn error; a process that ran and failed is
// reported through the code only.
func wait(cmd *exec.Cmd, name string) (int, error) {
	if err := cmd.Start(); err != nil {
		return -1, errs.Spawn("start", name, err)
	}

	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	}
	if cmd.ProcessState != nil && cmd.ProcessState.Exited() {
		// cancelled, but the child still exited cleanly on its own terms
		return cmd.ProcessState.ExitCode(), nil
	}
	return -1, errs.Spawn("wait", name, err)
}
