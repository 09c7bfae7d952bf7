package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

func callf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

const testBase = "https://example.org/wiki"

// fakeFetcher serves canned HTML by URL and records every request.
type fakeFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	f.fetched = append(f.fetched, url)
	body, ok := f.pages[url]
	if !ok {
		return nil, eris.Errorf("fetch: no page at %s", url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}
