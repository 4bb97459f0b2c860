// Package exec runs external commands such as git and
// reports their output.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Ex executes the named command in the given directory
// and returns combined stdout+stderr output. Pass empty
// dir to use the current working directory.
func Ex(
	ctx context.Context,
	dir string,
	name string,
	arg ...string,
) (string, error) {
	const errCtx = "executing command"

	slog.Debug(
		"executing",
		"cmd", name,
		"args", strings.Join(arg, " "),
		"dir", dir,
	)

	cmd := exec.CommandContext(ctx, name, arg...)
	if dir != "" {
		cmd.Dir = dir
	}

	by, err := cmd.CombinedOutput()

	slog.Debug("output", "result", string(by))

	if err != nil {
		return string(by), fmt.Errorf(
			"%s: %s %s: %w: %s",
			errCtx, name, strings.Join(arg, " "), err,
			strings.TrimSpace(string(by)),
		)
	}

	return string(by), nil
}

// Out executes the named command like Ex but returns
// only stdout, with surrounding whitespace trimmed.
// Stderr is folded into the error on failure.
func Out(
	ctx context.Context,
	dir string,
	name string,
	arg ...string,
) (string, error) {
	return out(ctx, dir, "", name, arg)
}

// OutHidden executes the named command like Out. Every
// occurrence of hidden in the logged arguments and in
// the returned error is replaced with Mask. An empty
// hidden masks nothing.
func OutHidden(
	ctx context.Context,
	dir string,
	hidden string,
	name string,
	arg ...string,
) (string, error) {
	return out(ctx, dir, hidden, name, arg)
}

// Mask stands in for hidden values in logs and errors.
const Mask = "<redacted>"

func out(
	ctx context.Context,
	dir string,
	hidden string,
	name string,
	arg []string,
) (string, error) {
	const errCtx = "executing command"

	shown := strings.Join(maskArgs(arg, hidden), " ")

	slog.Debug(
		"executing",
		"cmd", name,
		"args", shown,
		"dir", dir,
	)

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, arg...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if dir != "" {
		cmd.Dir = dir
	}

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf(
			"%s: %s %s: %w: %s",
			errCtx, name, shown, err,
			mask(strings.TrimSpace(stderr.String()), hidden),
		)
	}

	return strings.TrimSpace(stdout.String()), nil
}

func maskArgs(arg []string, hidden string) []string {
	if hidden == "" {
		return arg
	}

	masked := make([]string, len(arg))
	for i, a := range arg {
		masked[i] = mask(a, hidden)
	}

	return masked
}

func mask(s string, hidden string) string {
	if hidden == "" {
		return s
	}

	return strings.ReplaceAll(s, hidden, Mask)
}

// ExitCode returns the exit status carried by err, or
// -1 when err does not come from a finished process.
func ExitCode(err error) int {
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return -1
	}

	return ee.ExitCode()
}

