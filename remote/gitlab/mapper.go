package gitlab

import (
	"fmt"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/byte4ever/gitreq/remote"
)

// toMergeRequest keeps the project-scoped IID, not the
// global ID, and the source branch verbatim. GitLab
// sends a null description as an empty string, so both
// map to nil.
func toMergeRequest(
	mr *gl.BasicMergeRequest,
) (remote.MergeRequest, error) {
	if mr == nil || mr.IID == 0 || mr.Title == "" ||
		mr.SourceBranch == "" {
		return remote.MergeRequest{}, fmt.Errorf(
			"merge request missing iid, title or source branch: %w",
			remote.ErrUnexpectedResponse,
		)
	}

	out := remote.MergeRequest{
		ID:           mr.IID,
		Title:        mr.Title,
		SourceBranch: mr.SourceBranch,
	}

	if mr.Description != "" {
		desc := mr.Description
		out.Description = &desc
	}

	return out, nil
}
