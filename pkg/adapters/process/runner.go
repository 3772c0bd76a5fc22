package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/aretw0/cback/pkg/ports"
)

// ErrEmptyCommand is returned when there is nothing to execute.
var ErrEmptyCommand = errors.New("empty command")

// Runner implements ports.CommandRunner by executing local processes.
type Runner struct {
	baseDir string
	env     map[string]string
}

var _ ports.CommandRunner = (*Runner)(nil)

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithEnv adds variables to the inherited environment of every process.
func WithEnv(env map[string]string) RunnerOption {
	return func(r *Runner) {
		if r.env == nil {
			r.env = make(map[string]string, len(env))
		}
		for k, v := range env {
			r.env[k] = v
		}
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes argv and waits for it. Stdout and stderr are merged into output lines.
// A process that ran and exited non-zero returns its exit code with a nil error.
func (r *Runner) Run(ctx context.Context, argv []string) (int, []string, error) {
	return r.run(ctx, argv, nil)
}

func (r *Runner) run(ctx context.Context, argv []string, extra map[string]string) (int, []string, error) {
	if len(argv) == 0 {
		return -1, nil, ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), envList(r.env)...)
	cmd.Env = append(cmd.Env, envList(extra)...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	lines := splitLines(out.Bytes())
	if err == nil {
		return 0, lines, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return exitErr.ExitCode(), lines, nil
	}
	if ctx.Err() != nil {
		return -1, lines, ctx.Err()
	}
	return -1, lines, fmt.Errorf("execution failed: %w", err)
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

func splitLines(b []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
