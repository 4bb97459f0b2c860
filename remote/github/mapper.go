package github

import (
	"fmt"

	gh "github.com/google/go-github/v68/github"

	"github.com/byte4ever/gitreq/remote"
)

// BranchName is the local branch a pull request is
// checked out into.
func BranchName(id int64) string {
	return fmt.Sprintf("pr/%d", id)
}

func toMergeRequest(pr *gh.PullRequest) remote.MergeRequest {
	id := int64(pr.GetNumber())

	return remote.MergeRequest{
		ID:           id,
		Title:        pr.GetTitle(),
		Description:  pr.Body,
		SourceBranch: BranchName(id),
	}
}
