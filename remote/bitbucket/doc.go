// Package bitbucket implements remote.Remote for Bitbucket Cloud over its
// 2.0 REST API with bearer token authentication. The project identity is the
// owner/name slug taken from the origin. Pull requests are checked out into
// local pullrequests/<n> branches fetched from their source branch.
package bitbucket
