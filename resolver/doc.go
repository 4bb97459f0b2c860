// Package resolver turns a git origin URL into a ready remote.Remote.
//
// Resolution is strictly sequential: the origin is classified, the provider
// is picked from the configured host overrides or the built-in domain
// mapping, the API token is obtained, and only then is the provider client
// built. GitLab project IDs are resolved eagerly and persisted in the
// repository config as req.<domain>.projectid so later invocations skip the
// lookup.
package resolver
