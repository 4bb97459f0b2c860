package bitbucket

// PullRequestForTest is an alias for pullRequest.
type PullRequestForTest = pullRequest

// ToMergeRequestForTest exposes toMergeRequest.
var ToMergeRequestForTest = toMergeRequest

// MaxPagesForTest exposes maxPages.
const MaxPagesForTest = maxPages
