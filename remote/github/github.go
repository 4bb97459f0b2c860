package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"

	"github.com/byte4ever/gitreq/remote"
)

// Config holds the settings needed to create a GitHub
// pull request provider.
type Config struct {
	// Repo is the owner/name slug of the repository.
	Repo string
	// AccessToken is a personal access token or
	// GitHub App token used for authentication.
	AccessToken string
	// EnterpriseHost is an optional GitHub Enterprise
	// hostname (e.g. "git.corp.example.com"). Leave
	// empty for github.com.
	EnterpriseHost string
	// APIRoot overrides the REST API root URL. It
	// takes precedence over EnterpriseHost.
	APIRoot string
	// HTTPClient is the transport to use. The token
	// header is added on top of it.
	HTTPClient *http.Client
}

// Provider lists pull requests on GitHub.
//
// Pattern: Strategy -- implements remote.Remote.
type Provider struct {
	client *gh.Client
	owner  string
	name   string
}

var _ remote.Remote = (*Provider)(nil)

// NewProvider validates cfg and returns a Provider
// ready to query pull requests.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating github provider"

	owner, name, ok := strings.Cut(cfg.Repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set as owner/name, got %q",
			errCtx, cfg.Repo,
		)
	}

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	base := http.DefaultTransport
	if cfg.HTTPClient != nil && cfg.HTTPClient.Transport != nil {
		base = cfg.HTTPClient.Transport
	}

	client := gh.NewClient(&http.Client{
		Transport: &tokenTransport{
			token: cfg.AccessToken,
			base:  base,
		},
	})

	switch {
	case cfg.APIRoot != "":
		root := cfg.APIRoot
		if !strings.HasSuffix(root, "/") {
			root += "/"
		}

		u, err := url.Parse(root)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: api root: %w", errCtx, err,
			)
		}

		client.BaseURL = u

	case cfg.EnterpriseHost != "":
		baseURL := "https://" +
			cfg.EnterpriseHost + "/api/v3/"
		uploadURL := "https://" +
			cfg.EnterpriseHost + "/api/uploads/"

		var err error

		client, err = client.WithEnterpriseURLs(
			baseURL, uploadURL,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: enterprise urls: %w",
				errCtx, err,
			)
		}
	}

	return &Provider{
		client: client,
		owner:  owner,
		name:   name,
	}, nil
}

// Kind implements remote.Remote.
func (p *Provider) Kind() remote.Kind {
	return remote.KindGitHub
}

// ProjectID returns the owner/name slug. GitHub
// addresses repositories by slug, so it is always
// available.
func (p *Provider) ProjectID(context.Context) (string, error) {
	return p.owner + "/" + p.name, nil
}

// RequestBranch returns the local pr/<id> branch name.
func (p *Provider) RequestBranch(
	_ context.Context,
	id int64,
) (string, error) {
	return BranchName(id), nil
}

// FetchRef returns the pull/<id>/head ref GitHub keeps
// for every pull request.
func (p *Provider) FetchRef(
	_ context.Context,
	id int64,
) (string, error) {
	return fmt.Sprintf("pull/%d/head", id), nil
}

// ListRequests returns the open pull requests of the
// repository.
func (p *Provider) ListRequests(
	ctx context.Context,
) ([]remote.MergeRequest, error) {
	const errCtx = "listing github pull requests"

	slog.Debug("querying pull requests", "remote", p)

	prs, _, err := p.client.PullRequests.List(
		ctx, p.owner, p.name,
		&gh.PullRequestListOptions{State: "open"},
	)
	if err != nil {
		return nil, wrapErr(errCtx, err)
	}

	mrs := make([]remote.MergeRequest, 0, len(prs))
	for i, pr := range prs {
		if pr == nil || pr.Number == nil || pr.Title == nil {
			return nil, fmt.Errorf(
				"%s: pull request %d: missing number or title: %w",
				errCtx, i, remote.ErrUnexpectedResponse,
			)
		}

		mrs = append(mrs, toMergeRequest(pr))
	}

	return mrs, nil
}

// LogValue implements slog.LogValuer. The token is not
// part of the value.
func (p *Provider) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", p.Kind().String()),
		slog.String("repo", p.owner+"/"+p.name),
		slog.String("api", p.client.BaseURL.String()),
	)
}

// tokenTransport adds the "Authorization: token"
// header GitHub accepts for personal access tokens.
type tokenTransport struct {
	token string
	base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *tokenTransport) RoundTrip(
	req *http.Request,
) (*http.Response, error) {
	r2 := req.Clone(req.Context())
	r2.Header.Set("Authorization", "token "+t.token)

	return t.base.RoundTrip(r2)
}

// wrapErr maps a go-github error onto the remote error
// taxonomy.
func wrapErr(errCtx string, err error) error {
	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return fmt.Errorf(
			"%s: status %d: %w",
			errCtx, er.Response.StatusCode,
			remote.ErrUnexpectedResponse,
		)
	}

	var ue *url.Error
	if errors.As(err, &ue) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf(
			"%s: %w: %w", errCtx, remote.ErrTransport, err,
		)
	}

	return fmt.Errorf(
		"%s: %w: %w",
		errCtx, remote.ErrUnexpectedResponse, err,
	)
}
