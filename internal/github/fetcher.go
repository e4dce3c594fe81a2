package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
)

const perPage = 100

// Requester issues authenticated requests. *api.RESTClient from go-gh satisfies it
// and returns an *api.HTTPError for non-2xx responses.
type Requester interface {
	RequestWithContext(ctx context.Context, method string, path string, body io.Reader) (*http.Response, error)
}

// Page is one response of a paginated listing
type Page struct {
	URL   string
	Body  []byte
	Links map[string]string
}

// Fetcher walks Link-header pagination. It never caches.
type Fetcher struct {
	requester Requester
}

// NewFetcher creates a fetcher over requester
func NewFetcher(requester Requester) *Fetcher {
	return &Fetcher{requester: requester}
}

// Get decodes a single (unpaginated) document into v
func (f *Fetcher) Get(ctx context.Context, path string, v any) error {
	page, err := f.page(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(page.Body, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// Pages yields every page starting at path, following rel="next" until it is absent.
// Ranging again re-issues all requests. A next URL that was already visited ends the
// sequence with an error.
func (f *Fetcher) Pages(ctx context.Context, path string) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		visited := make(map[string]bool)
		next := withPerPage(path)
		for next != "" {
			if visited[next] {
				yield(Page{}, fmt.Errorf("pagination loop detected at %s", next))
				return
			}
			visited[next] = true

			page, err := f.page(ctx, next)
			if err != nil {
				yield(Page{}, err)
				return
			}
			if !yield(page, nil) {
				return
			}
			next = page.Links["next"]
		}
	}
}

// FetchAll concatenates the items of every page in page order.
// A failure on any page discards what was already fetched.
func FetchAll[T any](ctx context.Context, f *Fetcher, path string) ([]T, error) {
	all := []T{}
	for page, err := range f.Pages(ctx, path) {
		if err != nil {
			return nil, err
		}
		var items []T
		if err := json.Unmarshal(page.Body, &items); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", page.URL, err)
		}
		all = append(all, items...)
	}
	return all, nil
}

func (f *Fetcher) page(ctx context.Context, path string) (Page, error) {
	resp, err := f.requester.RequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Page{}, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Page{
		URL:   path,
		Body:  body,
		Links: ParseLinkHeader(resp.Header.Get("Link")),
	}, nil
}

func withPerPage(path string) string {
	if strings.Contains(path, "per_page=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sper_page=%d", path, sep, perPage)
}
