package http

import (
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/NeuralTrust/TrustFrame/pkg/common"
	"github.com/NeuralTrust/TrustFrame/pkg/domain"
	"github.com/NeuralTrust/TrustFrame/pkg/handlers/http/response"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, deps testDeps, raw string) (*nethttp.Response, response.StreamOutput) {
	t.Helper()
	app := newApp(nethttp.MethodGet, "/extract-stream", NewExtractStreamHandler(deps.logger, deps.dispatcher))
	target := "/extract-stream"
	if raw != "" {
		target += "?url=" + url.QueryEscape(raw)
	}
	resp, body := do(t, app, httptest.NewRequest(nethttp.MethodGet, target, nil))
	var out response.StreamOutput
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return resp, out
}

func TestExtractStreamHandler_Found(t *testing.T) {
	const page = "https://vidcloud.example/embed/3"
	deps := newTestDeps(t)
	deps.fetcher.On("Fetch", mock.Anything, page, mock.Anything).Return(&httpx.Page{
		URL:        page,
		StatusCode: nethttp.StatusOK,
		Header:     nethttp.Header{},
		Body:       []byte(`<script>var source = "https://cdn.example.net/v/master.m3u8";</script>`),
	}, nil).Once()

	resp, out := extract(t, deps, page)

	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "scrape", resp.Header.Get(common.StrategyHeader))
	assert.True(t, out.Success)
	assert.Equal(t, "https://cdn.example.net/v/master.m3u8", out.StreamURL)
	assert.Equal(t, out.StreamURL, out.HLSURL)
	assert.Equal(t, "scraped", out.Source)
	assert.False(t, out.Fallback)
}

func TestExtractStreamHandler_Fallbacks(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "upstream 404", err: domain.NewUpstreamError("x", nethttp.StatusNotFound), status: nethttp.StatusNotFound},
		{name: "upstream 500", err: domain.NewUpstreamError("x", nethttp.StatusInternalServerError), status: nethttp.StatusOK},
		{name: "network", err: errors.New("dial tcp: i/o timeout"), status: nethttp.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const page = "https://vidcloud.example/embed/4"
			deps := newTestDeps(t)
			deps.fetcher.On("Fetch", mock.Anything, page, mock.Anything).Return(nil, tt.err).Once()

			resp, out := extract(t, deps, page)

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.False(t, out.Success)
			if tt.status == nethttp.StatusNotFound {
				assert.False(t, out.Fallback)
				assert.Empty(t, out.IframeURL)
			} else {
				assert.True(t, out.Fallback)
				assert.Equal(t, page, out.IframeURL)
			}
			assert.Equal(t, page, out.OriginalURL)
			assert.NotEmpty(t, out.Error)
		})
	}
}

func TestExtractStreamHandler_Direct(t *testing.T) {
	deps := newTestDeps(t)
	resp, out := extract(t, deps, "https://cdn.example.net/live/index.m3u8")

	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.True(t, out.Success)
	assert.Equal(t, "direct", out.Source)
	deps.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractStreamHandler_BadInput(t *testing.T) {
	deps := newTestDeps(t)
	for _, raw := range []string{"", "not a url", "mailto:a@b.c"} {
		resp, out := extract(t, deps, raw)
		assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode, raw)
		assert.False(t, out.Success)
		assert.NotEmpty(t, out.Error)
	}
}
