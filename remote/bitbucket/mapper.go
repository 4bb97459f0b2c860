package bitbucket

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/gitreq/remote"
)

var errMissingField = errors.New("missing required field")

// BranchName is the local branch a pull request is
// checked out into.
func BranchName(id int64) string {
	return fmt.Sprintf("pullrequests/%d", id)
}

// page is one page of the pull request listing. A bare
// JSON array is accepted as well.
type page struct {
	Values []pullRequest
	Next   string
}

// UnmarshalJSON implements json.Unmarshaler.
func (pg *page) UnmarshalJSON(b []byte) error {
	if t := bytes.TrimSpace(b); len(t) > 0 && t[0] == '[' {
		var values []pullRequest
		if err := json.Unmarshal(t, &values); err != nil {
			return err
		}

		*pg = page{Values: values}

		return nil
	}

	var raw struct {
		Values *[]pullRequest `json:"values"`
		Next   string         `json:"next"`
	}

	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	if raw.Values == nil {
		return fmt.Errorf("page: values: %w", errMissingField)
	}

	*pg = page{Values: *raw.Values, Next: raw.Next}

	return nil
}

// pullRequest is the subset of the Bitbucket pull
// request payload git-req uses.
type pullRequest struct {
	ID           int64
	Title        string
	Summary      *string
	SourceBranch string
}

// UnmarshalJSON rejects payloads without id or title.
// The summary is either a plain string or a rendered
// content object whose raw text is kept.
func (pr *pullRequest) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID      *int64          `json:"id"`
		Title   *string         `json:"title"`
		Summary json.RawMessage `json:"summary"`
		Source  struct {
			Branch struct {
				Name string `json:"name"`
			} `json:"branch"`
		} `json:"source"`
	}

	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	if raw.ID == nil || raw.Title == nil {
		return fmt.Errorf("pull request: %w", errMissingField)
	}

	summary, err := decodeSummary(raw.Summary)
	if err != nil {
		return fmt.Errorf("pull request summary: %w", err)
	}

	*pr = pullRequest{
		ID:           *raw.ID,
		Title:        *raw.Title,
		Summary:      summary,
		SourceBranch: raw.Source.Branch.Name,
	}

	return nil
}

func decodeSummary(b json.RawMessage) (*string, error) {
	t := bytes.TrimSpace(b)
	if len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return nil, nil
	}

	if t[0] == '"' {
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return nil, err
		}

		return &s, nil
	}

	var content struct {
		Raw *string `json:"raw"`
	}

	if err := json.Unmarshal(t, &content); err != nil {
		return nil, err
	}

	return content.Raw, nil
}

func toMergeRequest(pr pullRequest) remote.MergeRequest {
	return remote.MergeRequest{
		ID:           pr.ID,
		Title:        pr.Title,
		Description:  pr.Summary,
		SourceBranch: BranchName(pr.ID),
	}
}
