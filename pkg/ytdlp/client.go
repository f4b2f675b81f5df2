// Package ytdlp shells out to the external extraction tool. The tool is a
// black box: given a URL and command-line directives it returns either a JSON
// description of available streams or a direct media URL. Several non-zero
// exit codes are meaningful inputs to the callers' retry ladders, so Run
// reports them as a tagged Result instead of an error.
package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Result is the terminal state of one tool invocation.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	// TimedOut is set when the invocation exceeded its budget and the
	// process was killed.
	TimedOut bool
}

// Ok reports whether the tool exited zero.
func (r *Result) Ok() bool { return r != nil && r.ExitCode == 0 && !r.TimedOut }

// StderrTail returns the last few stderr lines for diagnostics.
func (r *Result) StderrTail(maxLines int) string {
	lines := strings.Split(strings.TrimSpace(string(r.Stderr)), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}

// ExecError is a spawn-level failure: the binary was missing, the context was
// cancelled before exit, or the process could not be started at all.
type ExecError struct {
	Cmd   string
	Args  []string
	Cause error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("ytdlp: command failed: %s %s: %v", e.Cmd, strings.Join(e.Args, " "), e.Cause)
}

func (e *ExecError) Unwrap() error { return e.Cause }

// Client wraps the external extraction tool binary.
type Client struct {
	// Path to the tool executable. Defaults to "yt-dlp" (PATH lookup).
	Path string

	// CookiesFile, when set, is passed with --cookies on every invocation.
	CookiesFile string

	// CookiesFromBrowser, when set, is passed with --cookies-from-browser.
	CookiesFromBrowser string

	// ExtraArgs are always appended before per-call args.
	ExtraArgs []string

	// DefaultTimeout bounds invocations whose caller passes no explicit
	// timeout. Zero means one minute.
	DefaultTimeout time.Duration

	execFn func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error)
}

func New() *Client {
	return &Client{Path: "yt-dlp"}
}

// PathOrDefault returns the configured path or "yt-dlp" if unset.
func (c *Client) PathOrDefault() string {
	if strings.TrimSpace(c.Path) == "" {
		return "yt-dlp"
	}
	return c.Path
}

// Run invokes the tool once with a timeout and returns its tagged result.
// A non-zero exit is not an error; callers classify stderr themselves.
// The process is killed when the timeout elapses or ctx is cancelled, and
// never outlives the bounded wait.
func (c *Client) Run(ctx context.Context, timeout time.Duration, args ...string) (*Result, error) {
	if timeout <= 0 {
		timeout = c.DefaultTimeout
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fullArgs := make([]string, 0, len(c.ExtraArgs)+len(args)+4)
	fullArgs = append(fullArgs, c.ExtraArgs...)
	if c.CookiesFile != "" {
		fullArgs = append(fullArgs, "--cookies", c.CookiesFile)
	} else if c.CookiesFromBrowser != "" {
		fullArgs = append(fullArgs, "--cookies-from-browser", c.CookiesFromBrowser)
	}
	fullArgs = append(fullArgs, args...)

	name := c.PathOrDefault()

	if c.execFn != nil {
		stdout, stderr, code, err := c.execFn(runCtx, name, fullArgs...)
		if err != nil {
			return nil, &ExecError{Cmd: name, Args: fullArgs, Cause: err}
		}
		return &Result{ExitCode: code, Stdout: stdout, Stderr: stderr, TimedOut: runCtx.Err() != nil}, nil
	}

	slog.Debug("ytdlp: executing", "cmd", name, "args", fullArgs)
	cmd := exec.CommandContext(runCtx, name, fullArgs...)
	// Leave a short window for the process to die after the kill signal.
	cmd.WaitDelay = 5 * time.Second

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	res := &Result{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes()}

	if runCtx.Err() != nil {
		res.TimedOut = errors.Is(runCtx.Err(), context.DeadlineExceeded)
		if ctx.Err() != nil {
			// Caller cancellation, not a tool outcome.
			return nil, &ExecError{Cmd: name, Args: fullArgs, Cause: ctx.Err()}
		}
		res.ExitCode = -1
		return res, nil
	}

	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			res.ExitCode = ee.ExitCode()
			return res, nil
		}
		return nil, &ExecError{Cmd: name, Args: fullArgs, Cause: err}
	}
	return res, nil
}

// Version returns `--version` output, mainly for health reporting.
func (c *Client) Version(ctx context.Context) (string, error) {
	res, err := c.Run(ctx, 15*time.Second, "--version")
	if err != nil {
		return "", err
	}
	if !res.Ok() {
		return "", &ExecError{Cmd: c.PathOrDefault(), Args: []string{"--version"}, Cause: fmt.Errorf("exit %d: %s", res.ExitCode, res.StderrTail(3))}
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}
