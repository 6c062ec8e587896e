package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/domain"
)

const defaultMaxRedirects = 5

// Page is a fetched upstream document.
type Page struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

type FetchOptions struct {
	UserAgent string
	// Referer defaults to the origin of the requested URL.
	Referer string
	Timeout time.Duration
}

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts FetchOptions) (*Page, error)
}

// PageFetcher performs a single bounded GET per call, following redirects.
// A non-2xx answer returns the page together with a *domain.UpstreamError.
type PageFetcher struct {
	client       Client
	maxRedirects int
	userAgent    string
}

func NewPageFetcher(client Client, userAgent string) *PageFetcher {
	return &PageFetcher{
		client:       client,
		maxRedirects: defaultMaxRedirects,
		userAgent:    userAgent,
	}
}

func (f *PageFetcher) Fetch(ctx context.Context, rawURL string, opts FetchOptions) (*Page, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	referer := opts.Referer
	if referer == "" {
		referer = Origin(target) + "/"
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = f.userAgent
	}

	for hop := 0; ; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", ua)
		req.Header.Set("Referer", referer)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept-Encoding", "gzip, deflate, br, zstd")

		resp, err := f.client.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("fetch %s: %w", target, ctxErr)
			}
			return nil, fmt.Errorf("fetch %s: %w", target, err)
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", target, err)
		}

		if isRedirect(resp.StatusCode) {
			loc := resp.Header.Get("Location")
			if loc == "" || hop >= f.maxRedirects {
				return nil, domain.NewUpstreamError(target.String(), resp.StatusCode)
			}
			next, err := target.Parse(loc)
			if err != nil {
				return nil, fmt.Errorf("invalid redirect from %s: %w", target, err)
			}
			target = next
			continue
		}

		page := &Page{
			URL:        target.String(),
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return page, domain.NewUpstreamError(target.String(), resp.StatusCode)
		}
		return page, nil
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// Origin returns scheme://host of u.
func Origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
