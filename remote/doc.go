// Package remote defines the capability set shared by the supported git
// hosting providers and the normalized MergeRequest model they produce.
//
// The Remote interface has exactly three implementations, one per Kind, in
// the github, gitlab and bitbucket sub-packages. The origin sub-package
// classifies origin URLs. Errors returned by every implementation wrap one of
// the sentinel errors declared here so callers can branch with errors.Is.
package remote
