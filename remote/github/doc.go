// Package github implements remote.Remote for GitHub (cloud or enterprise).
// The project identity is the owner/name slug taken from the origin, so no
// lookup is ever needed. Pull requests are checked out through the
// pull/<n>/head refs GitHub publishes, into local pr/<n> branches.
package github
