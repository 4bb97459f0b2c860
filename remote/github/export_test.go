package github

// ToMergeRequestForTest exposes toMergeRequest.
var ToMergeRequestForTest = toMergeRequest
