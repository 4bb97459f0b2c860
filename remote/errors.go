package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedOrigin reports an origin URL without
	// a domain, project name or required namespace.
	ErrMalformedOrigin = errors.New("malformed origin")

	// ErrTransport reports a request that could not be
	// sent or whose response never arrived.
	ErrTransport = errors.New("transport failure")

	// ErrUnexpectedResponse reports a response whose
	// status or body does not match what was asked for.
	ErrUnexpectedResponse = errors.New(
		"failed to read response",
	)

	// ErrUnresolvableNamespace reports a GitLab
	// namespace that cannot be looked up or has an
	// unsupported kind.
	ErrUnresolvableNamespace = errors.New(
		"unresolvable namespace",
	)

	// ErrProjectNotFound reports a GitLab project that
	// neither the direct lookup nor the namespace
	// search could find.
	ErrProjectNotFound = errors.New("project not found")

	// ErrCredentialMissing reports that no API token is
	// stored and none could be asked for.
	ErrCredentialMissing = errors.New("credential missing")
)

// IdentityError is returned when a project identity
// cannot be resolved. Its message tells the user how to
// configure the identity by hand.
type IdentityError struct {
	Domain string
	Err    error
}

// Error implements error.
func (e *IdentityError) Error() string {
	return fmt.Sprintf(
		"unable to get the project ID from the %s API: "+
			"%v\nfind the numeric project ID on the "+
			"project's settings page and store it with: "+
			"git config req.%s.projectid <id>",
		e.Domain, e.Err, e.Domain,
	)
}

// Unwrap returns the underlying error.
func (e *IdentityError) Unwrap() error {
	return e.Err
}
