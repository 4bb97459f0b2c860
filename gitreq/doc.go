// Package gitreq implements the git-req commands on top of a resolved
// remote.Remote: listing open requests, checking one out, and managing the
// cached project identity and API token of a domain.
package gitreq
