// Package config loads the git-req configuration file.
//
// The file is read from $XDG_CONFIG_HOME/git-req/config.toml, falling back to
// ~/.config/git-req/config.toml. A missing file yields Default().
//
// # Key Settings
//
//   - format: template for "git-req list" lines. Tags are {id}, {title},
//     {branch} and {description} (default: "{id}\t{title}")
//
// # Hosts
//
// The [hosts] table pins a provider (and optionally an API root) to a
// domain. Domains not listed use the built-in mapping: github.com is GitHub,
// bitbucket.org is Bitbucket and everything else is GitLab.
//
//	[hosts."git.corp.example.com"]
//	provider = "github"
//	api_root = "https://git.corp.example.com/api/v3"
//
// What api_root points at depends on the provider:
//
//   - gitlab: the instance URL, e.g. "https://gitlab.corp.example.com".
//     The client appends /api/v4.
//   - github: the REST base, e.g. "https://git.corp.example.com/api/v3".
//     A URL without a path gets /api/v3 appended.
//   - bitbucket: the repositories endpoint the owner/name slug is
//     appended to, e.g. "https://api.bitbucket.org/2.0/repositories".
package config
