// Package git wraps the git plumbing git-req depends on: reading a remote's
// URL, reading and writing git-req settings in the repository-local or
// global git config, and fetching and checking out request branches.
//
// Settings live under the "req" section. Scoped settings add the provider
// domain as subsection, e.g. req.gitlab.com.projectid.
package git
