package remote

import (
	"context"
	"fmt"
	"strings"
)

// Pattern: Strategy -- one implementation per hosting
// provider behind a fixed capability set.

// Remote lists and addresses the merge requests of the
// project behind a git origin.
type Remote interface {
	// Kind reports which provider the remote talks to.
	Kind() Kind

	// ProjectID returns the identity the provider API
	// uses to address the project, resolving it on
	// first use.
	ProjectID(ctx context.Context) (string, error)

	// RequestBranch returns the local branch name for
	// the request with the given id.
	RequestBranch(ctx context.Context, id int64) (string, error)

	// FetchRef returns the ref on the remote that
	// holds the head of the request with the given id.
	FetchRef(ctx context.Context, id int64) (string, error)

	// ListRequests returns the open requests of the
	// project.
	ListRequests(ctx context.Context) ([]MergeRequest, error)
}

// MergeRequest is the provider independent view of an
// open merge or pull request.
type MergeRequest struct {
	ID           int64   `json:"id" yaml:"id"`
	Title        string  `json:"title" yaml:"title"`
	Description  *string `json:"description" yaml:"description"`
	SourceBranch string  `json:"source_branch" yaml:"source_branch"`
}

// Kind identifies a hosting provider.
type Kind int

const (
	// KindUnknown is the zero value; no remote has it.
	KindUnknown Kind = iota
	// KindGitHub is github.com or GitHub Enterprise.
	KindGitHub
	// KindGitLab is gitlab.com or a self-hosted GitLab.
	KindGitLab
	// KindBitbucket is Bitbucket Cloud.
	KindBitbucket
)

// String returns the lower-case provider name.
func (k Kind) String() string {
	switch k {
	case KindGitHub:
		return "github"
	case KindGitLab:
		return "gitlab"
	case KindBitbucket:
		return "bitbucket"
	default:
		return "unknown"
	}
}

// ParseKind maps a provider name (case-insensitive) to
// its Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "github":
		return KindGitHub, nil
	case "gitlab":
		return KindGitLab, nil
	case "bitbucket":
		return KindBitbucket, nil
	default:
		return KindUnknown, fmt.Errorf(
			"unknown provider %q: must be github, "+
				"gitlab or bitbucket",
			name,
		)
	}
}
