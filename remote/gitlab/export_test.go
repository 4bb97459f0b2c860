package gitlab

// ToMergeRequestForTest exposes toMergeRequest.
var ToMergeRequestForTest = toMergeRequest
