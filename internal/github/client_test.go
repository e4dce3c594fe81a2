package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	gogithub "github.com/google/go-github/v68/github"
	"github.com/ryo246912/gh-pr-status/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// httpRequester mimics go-gh's RESTClient against a test server
type httpRequester struct {
	base   string
	client *http.Client
}

func (r httpRequester) RequestWithContext(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = r.base + "/" + strings.TrimPrefix(path, "/")
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, url)
	}
	return resp, nil
}

func newTestClient(server *httptest.Server) *Client {
	return NewClientWith(httpRequester{base: server.URL, client: server.Client()}, nil, logging.Logger{})
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestParseLinkHeader(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected map[string]string
	}{
		{
			name:     "empty header",
			header:   "",
			expected: map[string]string{},
		},
		{
			name:   "next and last",
			header: `<https://api.github.com/repositories/1/pulls?page=2>; rel="next", <https://api.github.com/repositories/1/pulls?page=5>; rel="last"`,
			expected: map[string]string{
				"next": "https://api.github.com/repositories/1/pulls?page=2",
				"last": "https://api.github.com/repositories/1/pulls?page=5",
			},
		},
		{
			name:     "extra whitespace",
			header:   `   <https://x/y?page=3> ;   rel="prev"  `,
			expected: map[string]string{"prev": "https://x/y?page=3"},
		},
		{
			name:     "malformed entries are skipped",
			header:   `https://x/y; rel="next", <https://x/z>; rel="first"`,
			expected: map[string]string{"first": "https://x/z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLinkHeader(tt.header))
		})
	}
}

func paginatedServer(t *testing.T, pageSizes []int, failPage int) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 0 {
			page = 1
		}
		if page == failPage {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		offset := 0
		for i := 0; i < page-1; i++ {
			offset += pageSizes[i]
		}
		items := make([]int, pageSizes[page-1])
		for i := range items {
			items[i] = offset + i
		}
		if page < len(pageSizes) {
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?page=%d>; rel="next", <%s/items?page=%d>; rel="last"`, server.URL, page+1, server.URL, len(pageSizes)))
		}
		writeJSON(t, w, items)
	}))
	return server
}

func TestFetchAll(t *testing.T) {
	t.Run("three pages are concatenated in order", func(t *testing.T) {
		server := paginatedServer(t, []int{10, 10, 5}, 0)
		defer server.Close()

		items, err := FetchAll[int](context.Background(), NewFetcher(httpRequester{base: server.URL, client: server.Client()}), "items")
		require.NoError(t, err)
		require.Len(t, items, 25)
		for i, item := range items {
			assert.Equal(t, i, item)
		}
	})

	t.Run("no next relation returns the first page", func(t *testing.T) {
		server := paginatedServer(t, []int{7}, 0)
		defer server.Close()

		items, err := FetchAll[int](context.Background(), NewFetcher(httpRequester{base: server.URL, client: server.Client()}), "items")
		require.NoError(t, err)
		assert.Len(t, items, 7)
	})

	t.Run("a failing page discards everything", func(t *testing.T) {
		server := paginatedServer(t, []int{10, 10, 5}, 2)
		defer server.Close()

		items, err := FetchAll[int](context.Background(), NewFetcher(httpRequester{base: server.URL, client: server.Client()}), "items")
		assert.Error(t, err)
		assert.Nil(t, items)
	})

	t.Run("per_page is requested on the first page", func(t *testing.T) {
		var query string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.RawQuery
			writeJSON(t, w, []int{})
		}))
		defer server.Close()

		_, err := FetchAll[int](context.Background(), NewFetcher(httpRequester{base: server.URL, client: server.Client()}), "items?state=open")
		require.NoError(t, err)
		assert.Equal(t, "state=open&per_page=100", query)
	})
}

func TestFetcher_PagesStopsOnLoop(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", fmt.Sprintf(`<%s/items?per_page=100>; rel="next"`, server.URL))
		writeJSON(t, w, []int{1})
	}))
	defer server.Close()

	fetcher := NewFetcher(httpRequester{base: server.URL, client: server.Client()})
	pages := 0
	var lastErr error
	for _, err := range fetcher.Pages(context.Background(), server.URL+"/items?per_page=100") {
		if err != nil {
			lastErr = err
			break
		}
		pages++
	}
	assert.Equal(t, 1, pages)
	assert.ErrorContains(t, lastErr, "pagination loop")
}

func TestResolveEndpoints(t *testing.T) {
	repo := &gogithub.Repository{
		FullName:    gogithub.Ptr("octo/app"),
		StatusesURL: gogithub.Ptr("https://api.github.com/repos/octo/app/statuses/{sha}"),
	}

	t.Run("provided urls are used as-is", func(t *testing.T) {
		pr := &gogithub.PullRequest{
			Number:            gogithub.Ptr(7),
			URL:               gogithub.Ptr("https://api.github.com/repos/octo/app/pulls/7"),
			IssueURL:          gogithub.Ptr("https://api.github.com/repos/octo/app/issues/7"),
			CommentsURL:       gogithub.Ptr("https://api.github.com/repos/octo/app/issues/7/comments"),
			ReviewCommentsURL: gogithub.Ptr("https://api.github.com/repos/octo/app/pulls/7/comments"),
			CommitsURL:        gogithub.Ptr("https://api.github.com/repos/octo/app/pulls/7/commits"),
			StatusesURL:       gogithub.Ptr("https://api.github.com/repos/octo/app/statuses/abc"),
			Head:              &gogithub.PullRequestBranch{SHA: gogithub.Ptr("abc")},
			Base:              &gogithub.PullRequestBranch{Repo: repo},
		}

		e := ResolveEndpoints(pr)
		assert.Equal(t, ShapeProvided, e.Shape)
		assert.Equal(t, "https://api.github.com/repos/octo/app/pulls/7/commits", e.Commits)
		assert.Equal(t, "https://api.github.com/repos/octo/app/statuses/abc", e.Statuses)
		assert.Equal(t, "https://api.github.com/repos/octo/app/pulls/7/reviews", e.Reviews)
		assert.Equal(t, "https://api.github.com/repos/octo/app/issues/7/labels", e.Labels)
	})

	t.Run("missing urls are derived", func(t *testing.T) {
		pr := &gogithub.PullRequest{
			Number: gogithub.Ptr(7),
			URL:    gogithub.Ptr("https://api.github.com/repos/octo/app/pulls/7"),
			Head:   &gogithub.PullRequestBranch{SHA: gogithub.Ptr("deadbeef")},
			Base:   &gogithub.PullRequestBranch{Repo: repo},
		}

		e := ResolveEndpoints(pr)
		assert.Equal(t, ShapeDerived, e.Shape)
		assert.Equal(t, "https://api.github.com/repos/octo/app/pulls/7/commits", e.Commits)
		assert.Equal(t, "https://api.github.com/repos/octo/app/statuses/deadbeef", e.Statuses)
		assert.Equal(t, "repos/octo/app/issues/7/comments", e.Comments)
		assert.Equal(t, "repos/octo/app/issues/7/labels", e.Labels)
	})
}

func TestClient_PullDetailAndReviews(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/repos/octo/app/issues/1/comments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{{"body": ":+1:", "user": map[string]any{"login": "alice"}}})
	})
	mux.HandleFunc("/repos/octo/app/pulls/1/comments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{})
	})
	mux.HandleFunc("/repos/octo/app/pulls/1/commits", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{{"sha": "c1", "parents": []map[string]any{{"sha": "base"}}}})
	})
	mux.HandleFunc("/repos/octo/app/statuses/head1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{{"context": "ci", "state": "success"}})
	})
	mux.HandleFunc("/repos/octo/app/pulls/1/reviews", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	pr := &gogithub.PullRequest{
		Number: gogithub.Ptr(1),
		URL:    gogithub.Ptr(server.URL + "/repos/octo/app/pulls/1"),
		User:   &gogithub.User{Login: gogithub.Ptr("bob")},
		Head:   &gogithub.PullRequestBranch{SHA: gogithub.Ptr("head1"), Ref: gogithub.Ptr("feature")},
		Base: &gogithub.PullRequestBranch{Ref: gogithub.Ptr("main"), Repo: &gogithub.Repository{
			FullName:    gogithub.Ptr("octo/app"),
			StatusesURL: gogithub.Ptr(server.URL + "/repos/octo/app/statuses/{sha}"),
		}},
	}

	client := newTestClient(server)

	bundle, err := client.PullDetail(context.Background(), pr)
	require.NoError(t, err)
	assert.Equal(t, "octo/app", bundle.Repo)
	assert.Equal(t, "bob", bundle.Author)
	require.Len(t, bundle.Comments, 1)
	assert.Equal(t, "alice", bundle.Comments[0].GetUser().GetLogin())
	require.Len(t, bundle.Commits, 1)
	assert.Equal(t, "base", bundle.Commits[0].Parents[0].GetSHA())
	require.Len(t, bundle.Statuses, 1)

	reviews := client.Reviews(context.Background(), pr)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestClient_PullDetailFailure(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/commits") {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, []map[string]any{})
	})

	pr := &gogithub.PullRequest{
		Number: gogithub.Ptr(2),
		Head:   &gogithub.PullRequestBranch{SHA: gogithub.Ptr("h")},
		Base:   &gogithub.PullRequestBranch{Repo: &gogithub.Repository{FullName: gogithub.Ptr("octo/app")}},
	}

	_, err := newTestClient(server).PullDetail(context.Background(), pr)
	assert.ErrorContains(t, err, "failed to fetch commits")
}

func TestClient_CurrentUserAndBranchHead(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"login": "octocat"})
	})
	mux.HandleFunc("/repos/octo/app/commits/main", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"sha": "abc123"})
	})

	client := newTestClient(server)

	login, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", login)

	sha, err := client.BranchHead(context.Background(), "octo/app", "main")
	require.NoError(t, err)
	assert.Equal(t, "abc123", sha)

	_, err = client.BranchHead(context.Background(), "octo/app", "missing")
	assert.Error(t, err)
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		owner       string
		repo        string
		expectError bool
	}{
		{name: "valid", input: "octo/app", owner: "octo", repo: "app"},
		{name: "bare owner", input: "octo", expectError: true},
		{name: "empty name", input: "octo/", expectError: true},
		{name: "too many parts", input: "a/b/c", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := SplitRepo(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}
