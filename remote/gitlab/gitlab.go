package gitlab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/byte4ever/gitreq/remote"
)

const defaultHost = "https://gitlab.com"

// Config holds the settings needed to create a GitLab
// merge request provider.
type Config struct {
	// Host is the base URL of the GitLab instance
	// (e.g. "https://gitlab.com"). The /api/v4 suffix
	// is optional.
	Host string
	// Domain names the instance in error guidance.
	// Defaults to the host name of Host.
	Domain string
	// Namespace is the group or user owning the
	// project.
	Namespace string
	// Name is the project name.
	Name string
	// AccessToken is a personal or project access
	// token used for authentication.
	AccessToken string
	// ProjectID is a previously resolved numeric
	// project ID. Leave empty to resolve on first use.
	ProjectID string
	// HTTPClient replaces the default pooled client.
	HTTPClient *http.Client
}

// Provider lists merge requests on GitLab.
//
// Pattern: Strategy -- implements remote.Remote.
type Provider struct {
	client    *gl.Client
	domain    string
	namespace string
	name      string
	projectID *int64
}

var _ remote.Remote = (*Provider)(nil)

// NewProvider validates cfg and returns a Provider
// ready to query merge requests.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating gitlab provider"

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	if cfg.Name == "" {
		return nil, fmt.Errorf(
			"%s: project name must be set", errCtx,
		)
	}

	if cfg.Namespace == "" {
		return nil, fmt.Errorf(
			"%s: namespace must be set: %w",
			errCtx, remote.ErrMalformedOrigin,
		)
	}

	host := cfg.Host
	if host == "" {
		host = defaultHost
	}

	hu, err := url.Parse(host)
	if err != nil || hu.Hostname() == "" {
		return nil, fmt.Errorf(
			"%s: invalid host %q", errCtx, host,
		)
	}

	opts := []gl.ClientOptionFunc{
		gl.WithBaseURL(host),
		gl.WithoutRetries(),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, gl.WithHTTPClient(cfg.HTTPClient))
	}

	client, err := gl.NewClient(cfg.AccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: new client: %w", errCtx, err,
		)
	}

	domain := cfg.Domain
	if domain == "" {
		domain = hu.Hostname()
	}

	pv := &Provider{
		client:    client,
		domain:    domain,
		namespace: cfg.Namespace,
		name:      cfg.Name,
	}

	if cfg.ProjectID != "" {
		id, err := strconv.ParseInt(cfg.ProjectID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: project id %q is not numeric",
				errCtx, cfg.ProjectID,
			)
		}

		pv.projectID = &id
	}

	return pv, nil
}

// Kind implements remote.Remote.
func (p *Provider) Kind() remote.Kind {
	return remote.KindGitLab
}

// ProjectID returns the numeric project ID, resolving
// and caching it on first use.
func (p *Provider) ProjectID(ctx context.Context) (string, error) {
	id, err := p.projectIDInt(ctx)
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(id, 10), nil
}

// RequestBranch returns the source branch of the merge
// request with the given project-scoped IID.
func (p *Provider) RequestBranch(
	ctx context.Context,
	id int64,
) (string, error) {
	const errCtx = "querying gitlab merge request"

	pid, err := p.projectIDInt(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	mr, resp, err := p.client.MergeRequests.GetMergeRequest(
		pid, id, nil, gl.WithContext(ctx),
	)
	if err != nil {
		return "", wrapErr(errCtx, resp, err)
	}

	got, err := toMergeRequest(&mr.BasicMergeRequest)
	if err != nil {
		return "", fmt.Errorf(
			"%s: !%d: %w", errCtx, id, err,
		)
	}

	return got.SourceBranch, nil
}

// FetchRef returns the merge-requests/<id>/head ref
// GitLab keeps for every merge request, forks
// included.
func (p *Provider) FetchRef(
	_ context.Context,
	id int64,
) (string, error) {
	return fmt.Sprintf("merge-requests/%d/head", id), nil
}

// ListRequests returns the opened merge requests of the
// project.
func (p *Provider) ListRequests(
	ctx context.Context,
) ([]remote.MergeRequest, error) {
	const errCtx = "listing gitlab merge requests"

	pid, err := p.projectIDInt(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Debug("querying merge requests", "remote", p)

	mrs, resp, err := p.client.MergeRequests.ListProjectMergeRequests(
		pid,
		&gl.ListProjectMergeRequestsOptions{
			State: gl.Ptr("opened"),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return nil, wrapErr(errCtx, resp, err)
	}

	out := make([]remote.MergeRequest, 0, len(mrs))
	for _, mr := range mrs {
		got, err := toMergeRequest(mr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		out = append(out, got)
	}

	return out, nil
}

// LogValue implements slog.LogValuer. The token is not
// part of the value.
func (p *Provider) LogValue() slog.Value {
	id := "unresolved"
	if p.projectID != nil {
		id = strconv.FormatInt(*p.projectID, 10)
	}

	return slog.GroupValue(
		slog.String("kind", p.Kind().String()),
		slog.String("namespace", p.namespace),
		slog.String("name", p.name),
		slog.String("project_id", id),
		slog.String("api", p.client.BaseURL().String()),
	)
}

func (p *Provider) projectIDInt(ctx context.Context) (int64, error) {
	if p.projectID != nil {
		return *p.projectID, nil
	}

	id, err := p.resolveProjectID(ctx)
	if err != nil {
		return 0, err
	}

	p.projectID = &id

	return id, nil
}

// statusOf returns the HTTP status of a refused API
// call, or 0 when the request never got an answer.
// The client reports a 404 as the bare gl.ErrNotFound.
func statusOf(resp *gl.Response, err error) int {
	if resp != nil && resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode
	}

	if errors.Is(err, gl.ErrNotFound) {
		return http.StatusNotFound
	}

	var er *gl.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return er.Response.StatusCode
	}

	return 0
}

// wrapErr maps a client error onto the remote error
// taxonomy.
func wrapErr(errCtx string, resp *gl.Response, err error) error {
	if code := statusOf(resp, err); code != 0 {
		return fmt.Errorf(
			"%s: status %d: %w",
			errCtx, code, remote.ErrUnexpectedResponse,
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
