package gitreq

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/byte4ever/gitreq/credential"
	"github.com/byte4ever/gitreq/remote"
	"github.com/byte4ever/gitreq/resolver"
)

// Worktree fetches and switches branches. *git.Repo
// satisfies it.
type Worktree interface {
	FetchRef(ctx context.Context, ref string, branch string) error
	Checkout(ctx context.Context, branch string) error
	CurrentBranch(ctx context.Context) (string, error)
	IsClean(ctx context.Context) bool
}

// ScopedSetter writes domain scoped settings.
// *git.Repo satisfies it.
type ScopedSetter interface {
	SetScopedConfig(
		ctx context.Context,
		scope string,
		key string,
		value string,
	) error
}

// Unsetter removes settings. *git.Repo satisfies it.
type Unsetter interface {
	UnsetConfig(ctx context.Context, key string) error
	UnsetScopedConfig(
		ctx context.Context,
		scope string,
		key string,
	) error
}

// Checkout fetches the head of request id into its
// local branch and switches to it. It returns the
// branch name. The branch cannot be refreshed while it
// is checked out.
func Checkout(
	ctx context.Context,
	rm remote.Remote,
	wt Worktree,
	id int64,
) (string, error) {
	const errCtx = "checking out request"

	if id <= 0 {
		return "", fmt.Errorf(
			"%s: invalid request id %d", errCtx, id,
		)
	}

	branch, err := rm.RequestBranch(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	ref, err := rm.FetchRef(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	current, err := wt.CurrentBranch(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if current == branch {
		return "", fmt.Errorf(
			"%s: %s is checked out, switch away to refresh it",
			errCtx, branch,
		)
	}

	if !wt.IsClean(ctx) {
		slog.Warn(
			"working tree has uncommitted changes",
			"branch", current,
		)
	}

	slog.Debug(
		"fetching request",
		"id", id,
		"ref", ref,
		"branch", branch,
	)

	if err := wt.FetchRef(ctx, ref, branch); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := wt.Checkout(ctx, branch); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return branch, nil
}

// SetProjectID stores a manual project identity for
// domain. GitLab identities must be positive integers.
func SetProjectID(
	ctx context.Context,
	s ScopedSetter,
	kind remote.Kind,
	domain string,
	id string,
) error {
	const errCtx = "setting project id"

	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, " \t\n") {
		return fmt.Errorf(
			"%s: invalid project id %q", errCtx, id,
		)
	}

	if kind == remote.KindGitLab {
		if n, err := strconv.ParseInt(id, 10, 64); err != nil || n <= 0 {
			return fmt.Errorf(
				"%s: invalid project id %q: gitlab ids are numeric",
				errCtx, id,
			)
		}
	}

	if err := s.SetScopedConfig(
		ctx, domain, resolver.ProjectIDKey, id,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Clear drops the cached project identity of domain
// from local, including the legacy unscoped key. With
// token set it also drops the API token from global.
func Clear(
	ctx context.Context,
	local Unsetter,
	global Unsetter,
	domain string,
	token bool,
) error {
	const errCtx = "clearing settings"

	if err := local.UnsetScopedConfig(
		ctx, domain, resolver.ProjectIDKey,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := local.UnsetConfig(
		ctx, resolver.ProjectIDKey,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if !token {
		return nil
	}

	if err := global.UnsetScopedConfig(
		ctx, domain, credential.TokenKey,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Debug("removed api token", "domain", domain)

	return nil
}
