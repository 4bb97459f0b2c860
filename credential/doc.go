// Package credential supplies the API token used to talk to a provider
// domain. Tokens come from a Store; on a miss the Resolver asks a Prompter
// once, trims the answer, persists it and hands it out for the rest of the
// invocation.
package credential
