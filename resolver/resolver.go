package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/byte4ever/gitreq/config"
	"github.com/byte4ever/gitreq/remote"
	"github.com/byte4ever/gitreq/remote/bitbucket"
	"github.com/byte4ever/gitreq/remote/github"
	"github.com/byte4ever/gitreq/remote/gitlab"
	"github.com/byte4ever/gitreq/remote/origin"
)

// ProjectIDKey is the scoped config key holding a
// cached project identity.
const ProjectIDKey = "projectid"

const (
	githubDomain    = "github.com"
	bitbucketDomain = "bitbucket.org"
)

// Settings reads and writes the repository's git-req
// config. *git.Repo satisfies it.
type Settings interface {
	GetConfig(
		ctx context.Context,
		key string,
	) (string, bool, error)
	GetScopedConfig(
		ctx context.Context,
		scope string,
		key string,
	) (string, bool, error)
	SetScopedConfig(
		ctx context.Context,
		scope string,
		key string,
		value string,
	) error
}

// TokenSource hands out the API token for a domain.
// *credential.Resolver satisfies it.
type TokenSource interface {
	Token(ctx context.Context, domain string) (string, error)
}

// Options configures a Resolver.
type Options struct {
	// Config carries the host overrides.
	Config config.Config
	// Settings is the repository-local config.
	Settings Settings
	// Tokens supplies API tokens.
	Tokens TokenSource
	// HTTPClient is handed to every provider. Nil
	// selects each provider's default.
	HTTPClient *http.Client
}

// Resolver builds remotes from origin URLs.
type Resolver struct {
	cfg      config.Config
	settings Settings
	tokens   TokenSource
	client   *http.Client
}

// New returns a Resolver.
func New(opts Options) *Resolver {
	return &Resolver{
		cfg:      opts.Config,
		settings: opts.Settings,
		tokens:   opts.Tokens,
		client:   opts.HTTPClient,
	}
}

// Kind returns the provider serving domain and the
// API root override configured for it, if any.
func (r *Resolver) Kind(domain string) (remote.Kind, string, error) {
	if h, ok := r.cfg.Host(domain); ok {
		kind, err := h.Kind()
		if err != nil {
			return remote.KindUnknown, "", fmt.Errorf(
				"host %s: %w", domain, err,
			)
		}

		return kind, h.APIRoot, nil
	}

	switch strings.ToLower(domain) {
	case githubDomain:
		return remote.KindGitHub, "", nil
	case bitbucketDomain:
		return remote.KindBitbucket, "", nil
	default:
		return remote.KindGitLab, "", nil
	}
}

// Resolve classifies rawOrigin and returns the remote
// serving it.
func (r *Resolver) Resolve(
	ctx context.Context,
	rawOrigin string,
) (remote.Remote, error) {
	const errCtx = "resolving remote"

	o, err := origin.Parse(rawOrigin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	kind, apiRoot, err := r.Kind(o.Domain)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Debug(
		"classified origin",
		"origin", o.Raw,
		"domain", o.Domain,
		"kind", kind.String(),
	)

	var rm remote.Remote

	switch kind {
	case remote.KindGitHub:
		rm, err = r.github(ctx, o, apiRoot)
	case remote.KindBitbucket:
		rm, err = r.bitbucket(ctx, o, apiRoot)
	default:
		rm, err = r.gitlab(ctx, o, apiRoot)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Debug("resolved remote", "remote", rm)

	return rm, nil
}

func (r *Resolver) github(
	ctx context.Context,
	o origin.Origin,
	apiRoot string,
) (remote.Remote, error) {
	slug, err := o.Slug()
	if err != nil {
		return nil, err
	}

	tok, err := r.tokens.Token(ctx, o.Domain)
	if err != nil {
		return nil, err
	}

	cfg := github.Config{
		Repo:        slug,
		AccessToken: tok,
		HTTPClient:  r.client,
	}

	switch {
	case apiRoot != "":
		cfg.APIRoot = githubAPIRoot(apiRoot)
	case !strings.EqualFold(o.Domain, githubDomain):
		cfg.EnterpriseHost = o.Domain
	}

	return github.NewProvider(cfg)
}

// githubAPIRoot turns a bare instance URL into the
// GitHub Enterprise REST base. Roots with a path and
// api.github.com are kept as is.
func githubAPIRoot(apiRoot string) string {
	u, err := url.Parse(apiRoot)
	if err != nil || strings.Trim(u.Path, "/") != "" ||
		strings.EqualFold(u.Hostname(), "api.github.com") {
		return apiRoot
	}

	return strings.TrimSuffix(apiRoot, "/") + "/api/v3"
}

func (r *Resolver) bitbucket(
	ctx context.Context,
	o origin.Origin,
	apiRoot string,
) (remote.Remote, error) {
	slug, err := o.Slug()
	if err != nil {
		return nil, err
	}

	tok, err := r.tokens.Token(ctx, o.Domain)
	if err != nil {
		return nil, err
	}

	return bitbucket.NewProvider(bitbucket.Config{
		APIRoot:     apiRoot,
		Repo:        slug,
		AccessToken: tok,
		HTTPClient:  r.client,
	})
}

// gitlab builds the GitLab remote and makes sure its
// project ID is resolved and stored before returning.
func (r *Resolver) gitlab(
	ctx context.Context,
	o origin.Origin,
	apiRoot string,
) (remote.Remote, error) {
	name, err := o.Name()
	if err != nil {
		return nil, err
	}

	ns, err := o.Namespace()
	if err != nil {
		return nil, err
	}

	cached, err := r.cachedProjectID(ctx, o.Domain)
	if err != nil {
		return nil, err
	}

	tok, err := r.tokens.Token(ctx, o.Domain)
	if err != nil {
		return nil, err
	}

	host := apiRoot
	if host == "" {
		host = "https://" + o.Domain
	}

	pv, err := gitlab.NewProvider(gitlab.Config{
		Host:        host,
		Domain:      o.Domain,
		Namespace:   ns,
		Name:        name,
		AccessToken: tok,
		ProjectID:   cached,
		HTTPClient:  r.client,
	})
	if err != nil {
		return nil, err
	}

	if cached != "" {
		return pv, nil
	}

	id, err := pv.ProjectID(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.settings.SetScopedConfig(
		ctx, o.Domain, ProjectIDKey, id,
	); err != nil {
		return nil, fmt.Errorf("caching project id: %w", err)
	}

	slog.Debug(
		"cached project id",
		"domain", o.Domain,
		"id", id,
	)

	return pv, nil
}

// cachedProjectID returns req.<domain>.projectid, or
// the legacy req.projectid when the scoped key is not
// set.
func (r *Resolver) cachedProjectID(
	ctx context.Context,
	domain string,
) (string, error) {
	const errCtx = "reading cached project id"

	id, ok, err := r.settings.GetScopedConfig(
		ctx, domain, ProjectIDKey,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if ok && strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id), nil
	}

	id, ok, err = r.settings.GetConfig(ctx, ProjectIDKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if ok && strings.TrimSpace(id) != "" {
		slog.Debug("using legacy project id", "id", id)

		return strings.TrimSpace(id), nil
	}

	return "", nil
}
