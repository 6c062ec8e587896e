package dispatcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/common"
	"github.com/NeuralTrust/TrustFrame/pkg/domain"
	"github.com/NeuralTrust/TrustFrame/pkg/domain/mediation"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/cache"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/httpx"
	"github.com/NeuralTrust/TrustFrame/pkg/dispatcher/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const mobileUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

type fixture struct {
	dispatcher *Dispatcher
	fetcher    *mocks.MockFetcher
	framing    *cache.FramingPolicyStore
}

func newFixture(t *testing.T, breakers *httpx.HostBreakers) fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	registry, err := NewRegistry([]Provider{
		{Name: "VidCloud", Hosts: []string{"vidcloud.example"}, Mode: ModeScrape},
		{Name: "sharecloudy", Hosts: []string{"sharecloudy.example"}, Mode: ModeUnframe},
	})
	require.NoError(t, err)

	fetcher := new(mocks.MockFetcher)
	framing := cache.NewFramingPolicyStore(nil, time.Hour, logger)
	d := New(Config{ScrapeTimeout: time.Second}, registry, fetcher, framing, breakers, logger)
	return fixture{dispatcher: d, fetcher: fetcher, framing: framing}
}

func request(t *testing.T, raw string, opts ...mediation.Option) *mediation.Request {
	t.Helper()
	req, err := mediation.NewRequest(raw, opts...)
	require.NoError(t, err)
	return req
}

func TestResolve_DirectManifestWithoutNetwork(t *testing.T) {
	f := newFixture(t, nil)
	raw := "https://cdn.example.com/live/stream.m3u8?token=abc"

	got := f.dispatcher.Resolve(context.Background(), request(t, raw))

	assert.True(t, got.Success)
	assert.Equal(t, StrategyDirect, got.Strategy)
	assert.Equal(t, raw, got.StreamURL)
	assert.Equal(t, SourceDirect, got.Source)
	assert.False(t, got.GuardRequired)
	f.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_ScrapeMatch(t *testing.T) {
	f := newFixture(t, nil)
	raw := "https://vidcloud.example/embed/77"
	f.fetcher.On("Fetch", mock.Anything, raw, mock.MatchedBy(func(o httpx.FetchOptions) bool {
		return o.Referer == "https://vidcloud.example/" && o.UserAgent == common.DefaultDesktopUserAgent
	})).Return(&httpx.Page{
		URL:        raw,
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       []byte(`<script>player.setup({ file: "https://cdn2.example.net/hls/index.m3u8" });</script>`),
	}, nil).Once()

	ctx := context.WithValue(context.Background(), common.ClientUAContextKey, mobileUA)
	got := f.dispatcher.Resolve(ctx, request(t, raw))

	assert.True(t, got.Success)
	assert.Equal(t, StrategyScrape, got.Strategy)
	assert.Equal(t, "https://cdn2.example.net/hls/index.m3u8", got.HLSURL)
	assert.Equal(t, got.HLSURL, got.StreamURL)
	assert.Equal(t, SourceScraped, got.Source)
	assert.Equal(t, "quoted-manifest", got.Pattern)
	f.fetcher.AssertExpectations(t)
}

func TestResolve_ScrapeMatchRelativeFile(t *testing.T) {
	f := newFixture(t, nil)
	raw := "https://vidcloud.example/embed/79"
	f.fetcher.On("Fetch", mock.Anything, raw, mock.Anything).Return(&httpx.Page{
		URL:        raw,
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       []byte(`<script>jwplayer("p").setup({ file: "/media/79/720p.mp4", image: "/media/79.jpg" });</script>`),
	}, nil).Once()

	got := f.dispatcher.Resolve(context.Background(), request(t, raw))

	assert.True(t, got.Success)
	assert.Equal(t, StrategyScrape, got.Strategy)
	assert.Equal(t, "https://vidcloud.example/media/79/720p.mp4", got.StreamURL)
	assert.Equal(t, "file", got.Pattern)
	f.fetcher.AssertExpectations(t)
}

func TestResolve_ScrapeMissFallsBackToIframe(t *testing.T) {
	f := newFixture(t, nil)
	raw := "https://vidcloud.example/embed/78"
	f.fetcher.On("Fetch", mock.Anything, raw, mock.Anything).Return(&httpx.Page{
		URL:        raw,
		StatusCode: http.StatusOK,
		Body:       []byte(`<html><body><div id="player"></div></body></html>`),
	}, nil).Once()

	got := f.dispatcher.Resolve(context.Background(), request(t, raw))

	assert.False(t, got.Success)
	assert.True(t, got.Fallback)
	assert.Equal(t, raw, got.OriginalURL)
	assert.Equal(t, raw, got.IframeURL)
	assert.True(t, got.GuardRequired)
	assert.Equal(t, domain.ErrNoStreamFound.Error(), got.Error)
	assert.Equal(t, ReasonNoStream, got.Reason())
}

func TestResolve_UpstreamFailureFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		page   *httpx.Page
		err    error
		status int
		reason string
	}{
		{name: "timeout", err: context.DeadlineExceeded, reason: ReasonTimeout},
		{name: "server error", page: &httpx.Page{StatusCode: 500}, err: domain.NewUpstreamError("https://vidcloud.example/embed/1", 500), status: 500, reason: ReasonUpstreamStatus},
		{name: "network", err: errors.New("connection refused"), reason: ReasonNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			raw := "https://vidcloud.example/embed/1"
			f.fetcher.On("Fetch", mock.Anything, raw, mock.Anything).Return(tt.page, tt.err).Once()

			got := f.dispatcher.Resolve(context.Background(), request(t, raw))
			assert.True(t, got.Fallback)
			assert.Equal(t, raw, got.IframeURL)
			assert.NotEmpty(t, got.Error)
			assert.Equal(t, tt.status, got.UpstreamStatus())
			assert.Equal(t, tt.reason, got.Reason())
		})
	}
}

func TestResolve_ScrapeHonoursDeadline(t *testing.T) {
	f := newFixture(t, nil)
	raw := "https://vidcloud.example/embed/slow"
	f.fetcher.On("Fetch", mock.Anything, raw, mock.Anything).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		<-ctx.Done()
	}).Return(nil, context.DeadlineExceeded).Once()
	f.dispatcher.cfg.ScrapeTimeout = 20 * time.Millisecond

	start := time.Now()
	got := f.dispatcher.Resolve(context.Background(), request(t, raw))
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, got.Fallback)
}

func TestResolve_OpenBreakerSkipsFetch(t *testing.T) {
	f := newFixture(t, httpx.NewHostBreakers(time.Minute, 1))
	raw := "https://vidcloud.example/embed/9"
	f.fetcher.On("Fetch", mock.Anything, raw, mock.Anything).Return(nil, errors.New("connection reset")).Once()

	first := f.dispatcher.Resolve(context.Background(), request(t, raw))
	assert.True(t, first.Fallback)

	second := f.dispatcher.Resolve(context.Background(), request(t, raw))
	assert.True(t, second.Fallback)
	assert.Contains(t, second.Error, domain.ErrCircuitOpen.Error())
	assert.Equal(t, ReasonCircuitOpen, second.Reason())
	f.fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestResolve_UnframeProvider(t *testing.T) {
	f := newFixture(t, nil)
	raw := "https://www.sharecloudy.example/e/abc?x=1"

	got := f.dispatcher.Resolve(context.Background(), request(t, raw))

	assert.True(t, got.Success)
	assert.Equal(t, StrategyUnframe, got.Strategy)
	assert.Equal(t, "/proxy/sharecloudy?url=https%3A%2F%2Fwww.sharecloudy.example%2Fe%2Fabc%3Fx%3D1", got.IframeURL)
	f.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_ExplicitProvider(t *testing.T) {
	f := newFixture(t, nil)
	raw := "https://mirror.example.org/e/abc"

	got := f.dispatcher.Resolve(context.Background(), request(t, raw, mediation.WithProvider("ShareCloudy")))
	assert.Equal(t, StrategyUnframe, got.Strategy)
	assert.Contains(t, got.IframeURL, "/proxy/sharecloudy?url=")
}

func TestResolve_PassthroughRequiresGuard(t *testing.T) {
	f := newFixture(t, nil)
	raw := "https://player.example.org/v/1"

	got := f.dispatcher.Resolve(context.Background(), request(t, raw))
	assert.True(t, got.Success)
	assert.Equal(t, StrategyPassthrough, got.Strategy)
	assert.Equal(t, raw, got.IframeURL)
	assert.Equal(t, SourceIframe, got.Source)
	assert.True(t, got.GuardRequired)
}

func TestResolve_DeclaredSourceTypes(t *testing.T) {
	f := newFixture(t, nil)

	sanitized := f.dispatcher.Resolve(context.Background(),
		request(t, "https://vidcloud.example/embed/1", mediation.WithSourceType(mediation.SourceEmbedSanitized)))
	assert.Equal(t, StrategySanitize, sanitized.Strategy)
	assert.Equal(t, "/proxy/sanitized?url=https%3A%2F%2Fvidcloud.example%2Fembed%2F1", sanitized.IframeURL)

	raw := f.dispatcher.Resolve(context.Background(),
		request(t, "https://vidcloud.example/embed/1", mediation.WithSourceType(mediation.SourceEmbedRaw)))
	assert.Equal(t, StrategyPassthrough, raw.Strategy)
	assert.True(t, raw.GuardRequired)

	f.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_LearnsFramingHostileHosts(t *testing.T) {
	f := newFixture(t, nil)
	raw := "https://vidcloud.example/embed/5"
	f.fetcher.On("Fetch", mock.Anything, raw, mock.Anything).Return(&httpx.Page{
		URL:        raw,
		StatusCode: http.StatusOK,
		Header:     http.Header{"X-Frame-Options": []string{"SAMEORIGIN"}},
		Body:       []byte(`<html></html>`),
	}, nil).Once()

	got := f.dispatcher.Resolve(context.Background(), request(t, raw))
	assert.True(t, got.Fallback)
	assert.Equal(t, StrategyUnframe, got.Strategy)
	assert.Equal(t, "/proxy/unframe?url=https%3A%2F%2Fvidcloud.example%2Fembed%2F5", got.IframeURL)

	hostile, err := f.framing.Hostile(context.Background(), "vidcloud.example")
	require.NoError(t, err)
	assert.True(t, hostile)

	later := f.dispatcher.Resolve(context.Background(),
		request(t, "https://vidcloud.example/other", mediation.WithSourceType(mediation.SourceEmbedRaw)))
	assert.Equal(t, StrategyUnframe, later.Strategy)
}

func TestExtract(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.dispatcher.Extract(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrMissingURL)

	_, err = f.dispatcher.Extract(context.Background(), "ftp://x.example/a")
	assert.True(t, domain.IsInvalidInputError(err))

	raw := "https://any.example.net/embed/3"
	f.fetcher.On("Fetch", mock.Anything, raw, mock.Anything).Return(&httpx.Page{StatusCode: 404},
		domain.NewUpstreamError(raw, 404)).Once()
	got, err := f.dispatcher.Extract(context.Background(), raw)
	require.NoError(t, err)
	assert.True(t, got.Fallback)
	assert.Equal(t, 404, got.UpstreamStatus())
}

func TestRegistry(t *testing.T) {
	_, err := NewRegistry([]Provider{{Name: "a", Mode: ModeScrape}, {Name: "A", Mode: ModeUnframe}})
	assert.Error(t, err)

	_, err = NewRegistry([]Provider{{Name: "a", Mode: "mirror"}})
	assert.Error(t, err)

	r, err := NewRegistry([]Provider{
		{Name: "omega", Hosts: []string{" Omega.Example "}, Mode: ModeUnframe},
		{Name: "alpha", Hosts: []string{"alpha.example"}, Mode: ModeScrape},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "omega"}, r.Names())

	_, err = r.Lookup("zeta")
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)

	p, ok := r.Match("", "cdn.omega.example")
	require.True(t, ok)
	assert.Equal(t, "omega", p.Name)

	_, ok = r.Match("", "notomega.example")
	assert.False(t, ok)
}

func TestFetch_ClearsFramingVerdictWhenRestrictionDisappears(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.framing.Remember(ctx, "vidcloud.example", "x-frame-options"))

	raw := "https://vidcloud.example/embed/6"
	target, err := mediation.ParseTargetURL(raw)
	require.NoError(t, err)

	// An error page without headers says nothing about the framing policy.
	f.fetcher.On("Fetch", mock.Anything, raw, mock.Anything).Return(&httpx.Page{
		URL: raw, StatusCode: http.StatusServiceUnavailable, Header: http.Header{},
	}, domain.NewUpstreamError(raw, http.StatusServiceUnavailable)).Once()
	_, _ = f.dispatcher.Fetch(ctx, target, time.Second)
	hostile, _ := f.framing.Hostile(ctx, "vidcloud.example")
	assert.True(t, hostile)

	f.fetcher.On("Fetch", mock.Anything, raw, mock.Anything).Return(&httpx.Page{
		URL: raw, StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte("<html></html>"),
	}, nil).Once()
	_, err = f.dispatcher.Fetch(ctx, target, time.Second)
	require.NoError(t, err)
	hostile, _ = f.framing.Hostile(ctx, "vidcloud.example")
	assert.False(t, hostile)
}
