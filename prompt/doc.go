// Package prompt asks for secrets on the controlling terminal with a masked
// bubbletea text input. Without a terminal nothing is asked and the caller
// gets remote.ErrCredentialMissing.
package prompt
