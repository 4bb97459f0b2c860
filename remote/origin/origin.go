package origin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/byte4ever/gitreq/remote"
)

var (
	// scheme://, user@ and the host up to the first
	// ':' or '/'.
	domainRe = regexp.MustCompile(
		`^(?:([A-Za-z][A-Za-z0-9+.-]*)://)?` +
			`(?:[^@/\s]+@)?([^@:/\s]+)`,
	)
	portRe   = regexp.MustCompile(`^:\d+(?:/|$)`)
	suffixRe = regexp.MustCompile(`\.git\w*$`)
)

// Origin is a classified origin URL.
type Origin struct {
	// Raw is the URL as configured on the remote.
	Raw string
	// Domain is the provider host, without user or
	// port.
	Domain string

	path string
}

// Parse classifies raw. It fails with
// remote.ErrMalformedOrigin when no domain can be
// extracted; a missing project path is only reported
// by the accessors that need it.
func Parse(raw string) (Origin, error) {
	const errCtx = "parsing origin"

	trimmed := strings.TrimSpace(raw)

	loc := domainRe.FindStringSubmatchIndex(trimmed)
	if loc == nil {
		return Origin{}, fmt.Errorf(
			"%s: %q: %w",
			errCtx, raw, remote.ErrMalformedOrigin,
		)
	}

	hasScheme := loc[2] >= 0
	rest := trimmed[loc[1]:]

	if strings.HasPrefix(rest, "://") ||
		(rest != "" && !strings.HasPrefix(rest, ":") &&
			!strings.HasPrefix(rest, "/")) {
		return Origin{}, fmt.Errorf(
			"%s: %q: %w",
			errCtx, raw, remote.ErrMalformedOrigin,
		)
	}

	if hasScheme && portRe.MatchString(rest) {
		rest = rest[len(portRe.FindString(rest)):]
		if rest != "" {
			rest = "/" + rest
		}
	}

	return Origin{
		Raw:    raw,
		Domain: trimmed[loc[4]:loc[5]],
		path:   projectPath(rest),
	}, nil
}

// Path returns the project path without the .git
// suffix, e.g. "owner/repo". It is empty when the
// origin carries no path.
func (o Origin) Path() string {
	return o.path
}

// Slug returns the owner/name form used by GitHub and
// Bitbucket, preserving every embedded slash.
func (o Origin) Slug() (string, error) {
	const errCtx = "extracting project slug"

	if !strings.Contains(o.path, "/") {
		return "", fmt.Errorf(
			"%s: %q has no owner/name path: %w",
			errCtx, o.Raw, remote.ErrMalformedOrigin,
		)
	}

	return o.path, nil
}

// Name returns the last path segment, the GitLab
// project name.
func (o Origin) Name() (string, error) {
	const errCtx = "extracting project name"

	segs := o.segments()
	if len(segs) == 0 {
		return "", fmt.Errorf(
			"%s: %q has no project path: %w",
			errCtx, o.Raw, remote.ErrMalformedOrigin,
		)
	}

	return segs[len(segs)-1], nil
}

// Namespace returns the path segment immediately
// preceding the project name.
func (o Origin) Namespace() (string, error) {
	const errCtx = "extracting project namespace"

	segs := o.segments()
	if len(segs) < 2 {
		return "", fmt.Errorf(
			"%s: %q has no namespace segment: %w",
			errCtx, o.Raw, remote.ErrMalformedOrigin,
		)
	}

	return segs[len(segs)-2], nil
}

// String returns the raw URL.
func (o Origin) String() string {
	return o.Raw
}

func (o Origin) segments() []string {
	if o.path == "" {
		return nil
	}

	return strings.Split(o.path, "/")
}

// projectPath strips the host separator, the .git
// suffix and surrounding slashes from rest.
func projectPath(rest string) string {
	if rest == "" {
		return ""
	}

	p := strings.Trim(rest[1:], "/")
	p = suffixRe.ReplaceAllString(p, "")
	p = strings.Trim(p, "/")

	if strings.ContainsAny(p, " \t\n") ||
		strings.Contains(p, "//") {
		return ""
	}

	return p
}
