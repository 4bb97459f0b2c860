// Package gitlab implements remote.Remote for gitlab.com and self-hosted
// GitLab instances.
//
// GitLab addresses projects by a numeric ID. The ID is looked up by path
// first; when that lookup is refused the provider falls back to resolving
// the namespace and scanning its projects for an exact name match. Callers
// are expected to persist the resolved ID (see Config.ProjectID) so the
// search runs at most once per repository.
package gitlab
