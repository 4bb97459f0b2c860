// Package origin classifies git origin URLs. It accepts SSH style
// (git@host:ns/name.git), scheme style (https://host/ns/name.git,
// ssh://git@host:22/ns/name.git) and extracts the provider domain, the
// project path and its segments.
package origin
