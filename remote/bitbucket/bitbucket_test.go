package bitbucket_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/gitreq/remote"
	bb "github.com/byte4ever/gitreq/remote/bitbucket"
)

func TestNewProvider_valid(t *testing.T) {
	t.Parallel()

	pv, err := bb.NewProvider(bb.Config{
		Repo:        "shorsher/test",
		AccessToken: "tok",
	})

	require.NoError(t, err)
	assert.Equal(t, remote.KindBitbucket, pv.Kind())
	assert.Contains(t, pv.LogValue().String(), bb.DefaultAPIRoot)
	assert.NotContains(t, pv.LogValue().String(), "tok")
}

func TestNewProvider_invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     bb.Config
		wantErr string
	}{
		{
			name:    "missing repo",
			cfg:     bb.Config{AccessToken: "tok"},
			wantErr: "owner/name",
		},
		{
			name:    "repo without owner",
			cfg:     bb.Config{Repo: "/test", AccessToken: "tok"},
			wantErr: "owner/name",
		},
		{
			name:    "missing token",
			cfg:     bb.Config{Repo: "shorsher/test"},
			wantErr: "access token",
		},
		{
			name: "bad api root",
			cfg: bb.Config{
				Repo:        "shorsher/test",
				AccessToken: "tok",
				APIRoot:     "not a url",
			},
			wantErr: "invalid api root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pv, err := bb.NewProvider(tt.cfg)

			assert.Nil(t, pv)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestProvider_identity(t *testing.T) {
	t.Parallel()

	pv := newProvider(t, "https://example.invalid/2.0/repositories")

	id, err := pv.ProjectID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "shorsher/test", id)

	br, err := pv.RequestBranch(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "pullrequests/12", br)
}

func TestProvider_ListRequests(t *testing.T) {
	t.Parallel()

	var (
		gotAuth  string
		gotState string
	)

	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	mux.HandleFunc(
		"/2.0/repositories/shorsher/test/pullrequests",
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				_, _ = fmt.Fprint(w, `{"values": [
					{"id": 3, "title": "", "summary": null}
				]}`)

				return
			}

			gotAuth = r.Header.Get("Authorization")
			gotState = r.URL.Query().Get("state")

			_, _ = fmt.Fprintf(w, `{
				"values": [
					{"id": 1, "title": "Fix typo", "summary": {"raw": "see #2", "markup": "markdown"},
					 "source": {"branch": {"name": "fix/typo"}}},
					{"id": 2, "title": "Plain", "summary": "text"}
				],
				"next": "%s/2.0/repositories/shorsher/test/pullrequests?page=2"
			}`, ts.URL)
		},
	)

	pv := newProvider(t, ts.URL+"/2.0/repositories")

	mrs, err := pv.ListRequests(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "OPEN", gotState)

	require.Len(t, mrs, 3)
	assert.Equal(t, int64(1), mrs[0].ID)
	assert.Equal(t, "Fix typo", mrs[0].Title)
	require.NotNil(t, mrs[0].Description)
	assert.Equal(t, "see #2", *mrs[0].Description)
	assert.Equal(t, "pullrequests/1", mrs[0].SourceBranch)
	require.NotNil(t, mrs[1].Description)
	assert.Equal(t, "text", *mrs[1].Description)
	assert.Equal(t, "pullrequests/3", mrs[2].SourceBranch)
	assert.Nil(t, mrs[2].Description)
}

func TestProvider_ListRequests_bare_array(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = fmt.Fprint(w, `[{"id": 5, "title": "t"}]`)
		},
	))
	t.Cleanup(ts.Close)

	mrs, err := newProvider(t, ts.URL).ListRequests(
		context.Background(),
	)

	require.NoError(t, err)
	require.Len(t, mrs, 1)
	assert.Equal(t, "pullrequests/5", mrs[0].SourceBranch)
}

func TestProvider_ListRequests_errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"type": "error"}`,
			wantErr: "status 401",
		},
		{
			name:    "missing title",
			status:  http.StatusOK,
			body:    `{"values": [{"id": 1}]}`,
			wantErr: "missing required field",
		},
		{
			name:    "missing values",
			status:  http.StatusOK,
			body:    `{"size": 0}`,
			wantErr: "missing required field",
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    `<html></html>`,
			wantErr: "failed to read response",
		},
		{
			name:    "foreign next page",
			status:  http.StatusOK,
			body:    `{"values": [], "next": "https://evil.example/x"}`,
			wantErr: "outside api root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ts := httptest.NewServer(http.HandlerFunc(
				func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = fmt.Fprint(w, tt.body)
				},
			))
			t.Cleanup(ts.Close)

			_, err := newProvider(t, ts.URL).ListRequests(
				context.Background(),
			)

			require.ErrorIs(t, err, remote.ErrUnexpectedResponse)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestProvider_ListRequests_bounded_paging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		next     func(root string, page int) string
		wantErr  string
		wantHits int32
	}{
		{
			name: "repeated next page",
			next: func(root string, _ int) string {
				return root + "/shorsher/test/pullrequests?page=2"
			},
			wantErr:  "repeats",
			wantHits: 2,
		},
		{
			name: "endless next pages",
			next: func(root string, page int) string {
				return fmt.Sprintf(
					"%s/shorsher/test/pullrequests?page=%d",
					root, page+1,
				)
			},
			wantErr:  "more than",
			wantHits: bb.MaxPagesForTest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32

			ts := httptest.NewServer(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					hits.Add(1)

					page, _ := strconv.Atoi(r.URL.Query().Get("page"))

					_, _ = fmt.Fprintf(
						w, `{"values": [], "next": %q}`,
						tt.next("http://"+r.Host, page),
					)
				},
			))
			t.Cleanup(ts.Close)

			_, err := newProvider(t, ts.URL).ListRequests(
				context.Background(),
			)

			require.ErrorIs(t, err, remote.ErrUnexpectedResponse)
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Equal(t, tt.wantHits, hits.Load())
		})
	}
}

func TestProvider_ListRequests_transport(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.NotFoundHandler())
	root := ts.URL
	ts.Close()

	_, err := newProvider(t, root).ListRequests(context.Background())

	assert.ErrorIs(t, err, remote.ErrTransport)
}

func TestProvider_FetchRef(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/shorsher/test/pullrequests/7",
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = fmt.Fprint(w, `{"id": 7, "title": "x",
				"source": {"branch": {"name": "feature/x"}}}`)
		},
	)
	mux.HandleFunc(
		"/shorsher/test/pullrequests/8",
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = fmt.Fprint(w, `{"id": 8, "title": "x"}`)
		},
	)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	pv := newProvider(t, ts.URL)

	ref, err := pv.FetchRef(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "feature/x", ref)

	_, err = pv.FetchRef(context.Background(), 8)
	require.ErrorIs(t, err, remote.ErrUnexpectedResponse)

	_, err = pv.FetchRef(context.Background(), 9)
	assert.ErrorIs(t, err, remote.ErrUnexpectedResponse)
}

func TestToMergeRequest_branch_ignores_content(t *testing.T) {
	t.Parallel()

	for _, title := range []string{"", "pr/1", "pullrequests/99"} {
		got := bb.ToMergeRequestForTest(bb.PullRequestForTest{
			ID:           42,
			Title:        title,
			SourceBranch: "real-branch",
		})

		assert.Equal(t, "pullrequests/42", got.SourceBranch)
		assert.Equal(t, title, got.Title)
	}
}

func newProvider(tb testing.TB, root string) *bb.Provider {
	tb.Helper()

	pv, err := bb.NewProvider(bb.Config{
		APIRoot:     root,
		Repo:        "shorsher/test",
		AccessToken: "tok",
	})
	require.NoError(tb, err)

	return pv
}
