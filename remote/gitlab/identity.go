package gitlab

import (
	"context"
	"fmt"
	"log/slog"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/byte4ever/gitreq/remote"
)

const (
	kindUser  = "user"
	kindGroup = "group"
)

// resolveProjectID looks the project up by its
// namespace/name path. A refused lookup is not an
// error: it triggers the namespace search, whose
// failures all carry the manual configuration hint.
func (p *Provider) resolveProjectID(ctx context.Context) (int64, error) {
	const errCtx = "resolving gitlab project id"

	slog.Debug("looking up project by path", "remote", p)

	prj, resp, err := p.client.Projects.GetProject(
		p.namespace+"/"+p.name, nil, gl.WithContext(ctx),
	)
	if err == nil {
		if prj.ID == 0 {
			return 0, fmt.Errorf(
				"%s: project without id: %w",
				errCtx, remote.ErrUnexpectedResponse,
			)
		}

		slog.Debug("resolved project id", "id", prj.ID)

		return prj.ID, nil
	}

	code := statusOf(resp, err)
	if code == 0 {
		return 0, wrapErr(errCtx, resp, err)
	}

	slog.Debug(
		"project lookup refused, searching namespace",
		"status", code,
		"namespace", p.namespace,
	)

	id, err := p.searchProjectID(ctx)
	if err != nil {
		return 0, &remote.IdentityError{
			Domain: p.domain,
			Err:    fmt.Errorf("%s: %w", errCtx, err),
		}
	}

	return id, nil
}

// searchProjectID resolves the namespace, lists its
// projects and returns the first exact name match.
func (p *Provider) searchProjectID(ctx context.Context) (int64, error) {
	const errCtx = "searching namespace"

	ns, resp, err := p.client.Namespaces.GetNamespace(
		p.namespace, gl.WithContext(ctx),
	)
	if err != nil {
		if code := statusOf(resp, err); code != 0 {
			return 0, fmt.Errorf(
				"%s: %q: status %d: %w",
				errCtx, p.namespace, code,
				remote.ErrUnresolvableNamespace,
			)
		}

		return 0, wrapErr(errCtx, resp, err)
	}

	if ns.ID == 0 || ns.Kind == "" {
		return 0, fmt.Errorf(
			"%s: %q without id or kind: %w",
			errCtx, p.namespace, remote.ErrUnresolvableNamespace,
		)
	}

	var projects []*gl.Project

	switch ns.Kind {
	case kindUser:
		projects, resp, err = p.client.Projects.ListUserProjects(
			ns.ID, nil, gl.WithContext(ctx),
		)
	case kindGroup:
		projects, resp, err = p.client.Groups.ListGroupProjects(
			ns.ID,
			&gl.ListGroupProjectsOptions{
				Search: gl.Ptr(p.name),
			},
			gl.WithContext(ctx),
		)
	default:
		slog.Error(
			"unknown namespace kind",
			"namespace", p.namespace,
			"kind", ns.Kind,
		)

		return 0, fmt.Errorf(
			"%s: %q has kind %q: %w",
			errCtx, p.namespace, ns.Kind,
			remote.ErrUnresolvableNamespace,
		)
	}

	if err != nil {
		if code := statusOf(resp, err); code != 0 {
			return 0, fmt.Errorf(
				"%s: listing projects of %s %q: status %d: %w",
				errCtx, ns.Kind, p.namespace, code,
				remote.ErrProjectNotFound,
			)
		}

		return 0, wrapErr(errCtx, resp, err)
	}

	for _, prj := range projects {
		if prj.Name == p.name && prj.ID != 0 {
			slog.Debug(
				"found project in namespace",
				"id", prj.ID,
				"path", prj.PathWithNamespace,
			)

			return prj.ID, nil
		}
	}

	return 0, fmt.Errorf(
		"%s: no project named %q in %s %q: %w",
		errCtx, p.name, ns.Kind, p.namespace,
		remote.ErrProjectNotFound,
	)
}
