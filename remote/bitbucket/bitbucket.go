package bitbucket

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/gitreq/remote"
)

// DefaultAPIRoot is the Bitbucket Cloud repositories
// endpoint.
const DefaultAPIRoot = "https://api.bitbucket.org/2.0/repositories"

// maxPages bounds how many pages ListRequests follows.
const maxPages = 50

// Config holds the settings needed to create a
// Bitbucket pull request provider.
type Config struct {
	// APIRoot is the repositories endpoint the
	// owner/name slug is appended to. Defaults to
	// DefaultAPIRoot.
	APIRoot string
	// Repo is the owner/name slug of the repository.
	Repo string
	// AccessToken is a repository or workspace access
	// token sent as a bearer token.
	AccessToken string
	// HTTPClient replaces http.DefaultClient.
	HTTPClient *http.Client
}

// Provider lists pull requests on Bitbucket.
//
// Pattern: Strategy -- implements remote.Remote.
type Provider struct {
	root   string
	repo   string
	token  string
	client *http.Client
}

var _ remote.Remote = (*Provider)(nil)

// NewProvider validates cfg and returns a Provider
// ready to query pull requests.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating bitbucket provider"

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

	root := cfg.APIRoot
	if root == "" {
		root = DefaultAPIRoot
	}

	if u, err := url.Parse(root); err != nil || u.Host == "" {
		return nil, fmt.Errorf(
			"%s: invalid api root %q", errCtx, root,
		)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &Provider{
		root:   strings.TrimSuffix(root, "/"),
		repo:   cfg.Repo,
		token:  cfg.AccessToken,
		client: client,
	}, nil
}

// Kind implements remote.Remote.
func (p *Provider) Kind() remote.Kind {
	return remote.KindBitbucket
}

// ProjectID returns the owner/name slug.
func (p *Provider) ProjectID(context.Context) (string, error) {
	return p.repo, nil
}

// RequestBranch returns the local pullrequests/<id>
// branch name.
func (p *Provider) RequestBranch(
	_ context.Context,
	id int64,
) (string, error) {
	return BranchName(id), nil
}

// FetchRef returns the source branch of the pull
// request, read from the single pull request endpoint.
func (p *Provider) FetchRef(
	ctx context.Context,
	id int64,
) (string, error) {
	const errCtx = "querying bitbucket pull request"

	var pr pullRequest

	if err := p.get(
		ctx,
		fmt.Sprintf("pullrequests/%d", id),
		nil,
		&pr,
	); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if pr.SourceBranch == "" {
		return "", fmt.Errorf(
			"%s: no source branch for #%d: %w",
			errCtx, id, remote.ErrUnexpectedResponse,
		)
	}

	return pr.SourceBranch, nil
}

// ListRequests returns the open pull requests of the
// repository.
func (p *Provider) ListRequests(
	ctx context.Context,
) ([]remote.MergeRequest, error) {
	const errCtx = "listing bitbucket pull requests"

	slog.Debug("querying pull requests", "remote", p)

	endpoint := p.endpoint(
		"pullrequests",
		url.Values{"state": {"OPEN"}},
	)

	mrs := make([]remote.MergeRequest, 0)
	seen := make(map[string]struct{})

	for endpoint != "" {
		if _, ok := seen[endpoint]; ok {
			return nil, fmt.Errorf(
				"%s: page %q repeats: %w",
				errCtx, endpoint, remote.ErrUnexpectedResponse,
			)
		}

		if len(seen) == maxPages {
			return nil, fmt.Errorf(
				"%s: more than %d pages: %w",
				errCtx, maxPages, remote.ErrUnexpectedResponse,
			)
		}

		seen[endpoint] = struct{}{}

		var pg page

		if err := p.fetch(ctx, endpoint, &pg); err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		for _, pr := range pg.Values {
			mrs = append(mrs, toMergeRequest(pr))
		}

		if pg.Next != "" && !strings.HasPrefix(pg.Next, p.root+"/") {
			return nil, fmt.Errorf(
				"%s: next page %q outside api root: %w",
				errCtx, pg.Next, remote.ErrUnexpectedResponse,
			)
		}

		endpoint = pg.Next
	}

	return mrs, nil
}

// LogValue implements slog.LogValuer. The token is not
// part of the value.
func (p *Provider) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", p.Kind().String()),
		slog.String("repo", p.repo),
		slog.String("api", p.root),
	)
}

// get issues an authenticated GET for path below the
// repository and decodes the JSON body into v.
func (p *Provider) get(
	ctx context.Context,
	path string,
	query url.Values,
	v any,
) error {
	return p.fetch(ctx, p.endpoint(path, query), v)
}

func (p *Provider) endpoint(path string, query url.Values) string {
	endpoint := p.root + "/" + p.repo + "/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	return endpoint
}

// fetch issues an authenticated GET against endpoint
// and decodes the JSON body into v.
func (p *Provider) fetch(
	ctx context.Context,
	endpoint string,
	v any,
) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		endpoint,
		http.NoBody,
	)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf(
			"send request: %w: %w", remote.ErrTransport, err,
		)
	}

	defer resp.Body.Close() //nolint:errcheck

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf(
			"read body: %w: %w", remote.ErrTransport, err,
		)
	}

	slog.Debug(
		"bitbucket response",
		"status", resp.Status,
		"bytes", len(rb),
	)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(
			"status %d: %w",
			resp.StatusCode, remote.ErrUnexpectedResponse,
		)
	}

	if err := json.Unmarshal(rb, v); err != nil {
		return fmt.Errorf(
			"%w: %w", remote.ErrUnexpectedResponse, err,
		)
	}

	return nil
}

