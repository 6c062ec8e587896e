package httpx

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// FetchObserver is told about every completed fetch. status is 0 when no
// response was received.
type FetchObserver func(ctx context.Context, host string, status int, elapsed time.Duration, err error)

type observedFetcher struct {
	inner    Fetcher
	observer FetchObserver
}

func NewObservedFetcher(inner Fetcher, observer FetchObserver) Fetcher {
	return &observedFetcher{inner: inner, observer: observer}
}

func (f *observedFetcher) Fetch(ctx context.Context, rawURL string, opts FetchOptions) (*Page, error) {
	start := time.Now()
	page, err := f.inner.Fetch(ctx, rawURL, opts)
	if f.observer != nil {
		host := rawURL
		if u, perr := url.Parse(rawURL); perr == nil {
			host = strings.ToLower(u.Hostname())
		}
		status := 0
		if page != nil {
			status = page.StatusCode
		}
		f.observer(ctx, host, status, time.Since(start), err)
	}
	return page, err
}
