// Package stars fetches a GitHub user's starred repositories and exports
// their URLs to a plain text file.
package stars

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/go-github/v60/github"

	"github.com/sosacrazy126/gptme/pkg/log"
	"github.com/sosacrazy126/gptme/pkg/retry"
)

const perPage = 100

type Fetcher struct {
	client  *github.Client
	retrier *retry.Retrier
}

// NewFetcher builds a fetcher against api.github.com. An empty token means
// unauthenticated requests, which GitHub rate-limits aggressively.
func NewFetcher(token string) *Fetcher {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return NewFetcherWithClient(client)
}

// NewFetcherWithClient accepts a pre-configured client, used by tests to
// point at a local server.
func NewFetcherWithClient(client *github.Client) *Fetcher {
	return &Fetcher{
		client:  client,
		retrier: retry.NewDefaultRetrier(),
	}
}

// Starred collects starred repository URLs in API order, stopping after
// maxPages pages. maxPages <= 0 means no limit.
func (f *Fetcher) Starred(ctx context.Context, username string, maxPages int) ([]string, error) {
	var urls []string

	page := 1
	for {
		if maxPages > 0 && page > maxPages {
			break
		}

		repos, next, err := f.fetchPage(ctx, username, page)
		if err != nil {
			return nil, err
		}
		urls = append(urls, repos...)

		if next == 0 {
			break
		}
		page = next
	}

	log.FromCtx(ctx).Info().
		Str("user", username).
		Int("count", len(urls)).
		Msg("fetched starred repositories")
	return urls, nil
}

// AllStarred walks the user's entire star history and returns unique URLs
// sorted alphabetically.
func (f *Fetcher) AllStarred(ctx context.Context, username string) ([]string, error) {
	urls, err := f.Starred(ctx, username, 0)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(urls))
	unique := urls[:0]
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		unique = append(unique, u)
	}

	sort.Strings(unique)
	return unique, nil
}

// fetchPage retrieves one page with backoff. It returns the page's URLs and
// the next page number, zero when this was the last page.
func (f *Fetcher) fetchPage(ctx context.Context, username string, page int) ([]string, int, error) {
	opts := &github.ActivityListStarredOptions{
		ListOptions: github.ListOptions{Page: page, PerPage: perPage},
	}

	var (
		starred []*github.StarredRepository
		resp    *github.Response
	)
	err := f.retrier.Do(ctx, func() error {
		var err error
		starred, resp, err = f.client.Activity.ListStarred(ctx, username, opts)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list starred page %d for %s: %w", page, username, err)
	}

	urls := make([]string, 0, len(starred))
	for _, s := range starred {
		if u := s.GetRepository().GetHTMLURL(); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, resp.NextPage, nil
}

// WriteURLs writes one URL per line.
func WriteURLs(path string, urls []string) error {
	var b strings.Builder
	for _, u := range urls {
		b.WriteString(u)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write starred repos: %w", err)
	}
	return nil
}
