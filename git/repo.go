package git

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/byte4ever/gitreq/exec"
)

const (
	section = "req"

	// Exit status of "git config --get" for a missing
	// key.
	exitMissingKey = 1
	// Exit status of "git config --unset" for a
	// missing key.
	exitNothingToUnset = 5
)

// Repo is a local git repository. Create with Open.
type Repo struct {
	// Dir is the top-level directory of the working
	// tree.
	Dir string
	// RemoteName is the name of the upstream remote.
	RemoteName string

	global bool
}

// Open locates the repository containing dir. An empty
// remoteName selects "origin".
func Open(
	ctx context.Context,
	dir string,
	remoteName string,
) (*Repo, error) {
	const errCtx = "opening repository"

	top, err := exec.Out(
		ctx, dir, "git", "rev-parse", "--show-toplevel",
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if remoteName == "" {
		remoteName = "origin"
	}

	return &Repo{
		Dir:        top,
		RemoteName: remoteName,
	}, nil
}

// Global returns a copy of r whose config accessors
// read and write the user's global git config.
func (r *Repo) Global() *Repo {
	g := *r
	g.global = true

	return &g
}

// OriginURL returns the URL of the repository's
// upstream remote.
func (r *Repo) OriginURL(ctx context.Context) (string, error) {
	const errCtx = "reading remote url"

	url, err := exec.Out(
		ctx, r.Dir, "git", "remote", "get-url", r.RemoteName,
	)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %s: %w", errCtx, r.RemoteName, err,
		)
	}

	return url, nil
}

// GetConfig reads req.<key>. The boolean is false when
// the key is not set.
func (r *Repo) GetConfig(
	ctx context.Context,
	key string,
) (string, bool, error) {
	return r.get(ctx, configKey("", key))
}

// SetConfig writes req.<key>.
func (r *Repo) SetConfig(
	ctx context.Context,
	key string,
	value string,
) error {
	return r.set(ctx, configKey("", key), value)
}

// UnsetConfig removes req.<key>. Removing a missing key
// is not an error.
func (r *Repo) UnsetConfig(ctx context.Context, key string) error {
	return r.unset(ctx, configKey("", key))
}

// GetScopedConfig reads req.<scope>.<key>.
func (r *Repo) GetScopedConfig(
	ctx context.Context,
	scope string,
	key string,
) (string, bool, error) {
	return r.get(ctx, configKey(scope, key))
}

// SetScopedConfig writes req.<scope>.<key>.
func (r *Repo) SetScopedConfig(
	ctx context.Context,
	scope string,
	key string,
	value string,
) error {
	return r.set(ctx, configKey(scope, key), value)
}

// UnsetScopedConfig removes req.<scope>.<key>.
func (r *Repo) UnsetScopedConfig(
	ctx context.Context,
	scope string,
	key string,
) error {
	return r.unset(ctx, configKey(scope, key))
}

// FetchRef fetches ref from the remote into the local
// branch, creating it or fast-forwarding it. A branch
// holding commits the ref lacks is left untouched and
// an error is returned.
func (r *Repo) FetchRef(
	ctx context.Context,
	ref string,
	branch string,
) error {
	const errCtx = "fetching request"

	refspec := fmt.Sprintf("%s:refs/heads/%s", ref, branch)

	if _, err := exec.Ex(
		ctx, r.Dir, "git", "fetch", r.RemoteName, refspec,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Checkout switches the working tree to branch.
func (r *Repo) Checkout(ctx context.Context, branch string) error {
	const errCtx = "checking out branch"

	if _, err := exec.Ex(
		ctx, r.Dir, "git", "checkout", branch,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// CurrentBranch returns the checked out branch name, or
// "HEAD" when detached.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	const errCtx = "reading current branch"

	br, err := exec.Out(
		ctx, r.Dir, "git", "rev-parse", "--abbrev-ref", "HEAD",
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return br, nil
}

// IsClean reports whether the working tree has no
// uncommitted changes.
func (r *Repo) IsClean(ctx context.Context) bool {
	out, err := exec.Out(
		ctx, r.Dir, "git", "status", "--porcelain",
	)
	if err != nil {
		slog.Error(
			"failed to check repo status",
			"error", err,
		)

		return false
	}

	return out == ""
}

func (r *Repo) get(
	ctx context.Context,
	key string,
) (string, bool, error) {
	const errCtx = "reading git config"

	val, err := exec.Out(
		ctx, r.Dir, "git", r.configArgs("--get", key)...,
	)
	if err != nil {
		if exec.ExitCode(err) == exitMissingKey {
			return "", false, nil
		}

		return "", false, fmt.Errorf(
			"%s: %s: %w", errCtx, key, err,
		)
	}

	return val, true, nil
}

func (r *Repo) set(
	ctx context.Context,
	key string,
	value string,
) error {
	const errCtx = "writing git config"

	// Values may be API tokens.
	if _, err := exec.OutHidden(
		ctx, r.Dir, value, "git", r.configArgs(key, value)...,
	); err != nil {
		return fmt.Errorf("%s: %s: %w", errCtx, key, err)
	}

	return nil
}

func (r *Repo) unset(ctx context.Context, key string) error {
	const errCtx = "removing git config"

	_, err := exec.Out(
		ctx, r.Dir, "git", r.configArgs("--unset", key)...,
	)
	if err != nil && exec.ExitCode(err) != exitNothingToUnset {
		return fmt.Errorf("%s: %s: %w", errCtx, key, err)
	}

	return nil
}

func (r *Repo) configArgs(args ...string) []string {
	where := "--local"
	if r.global {
		where = "--global"
	}

	return append([]string{"config", where}, args...)
}

// configKey builds req.<key> or req.<scope>.<key>.
func configKey(scope string, key string) string {
	parts := []string{section}
	if scope != "" {
		parts = append(parts, scope)
	}

	return strings.Join(append(parts, key), ".")
}
