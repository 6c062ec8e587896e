package http

import (
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/TrustFrame/pkg/common"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const embedURL = "https://sharecloudy.example/e/abc"

func TestEmbedProxyHandler_Unframes(t *testing.T) {
	deps := newTestDeps(t)
	deps.fetcher.On("Fetch", mock.Anything, embedURL, mock.Anything).Return(&httpx.Page{
		URL:        embedURL,
		StatusCode: nethttp.StatusOK,
		Header:     nethttp.Header{"X-Frame-Options": []string{"DENY"}},
		Body: []byte(`<html><head><meta http-equiv="X-Frame-Options" content="DENY">` +
			`<script src="/player.js"></script></head><body></body></html>`),
	}, nil).Once()

	app := newApp(nethttp.MethodGet, "/proxy/sharecloudy",
		NewEmbedProxyHandler(deps.logger, deps.dispatcher, EmbedProxyConfig{}, "sharecloudy"))
	resp, body := do(t, app, httptest.NewRequest(nethttp.MethodGet, "/proxy/sharecloudy?url="+embedURL, nil))

	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Header.Get(common.FallbackHeader))
	assert.NotContains(t, body, "X-Frame-Options")
	assert.Contains(t, body, "https://sharecloudy.example/player.js")
	deps.fetcher.AssertExpectations(t)
}

func TestEmbedProxyHandler_FailureServesFallback(t *testing.T) {
	tests := []struct {
		name   string
		cfg    EmbedProxyConfig
		status int
	}{
		{name: "default status", cfg: EmbedProxyConfig{}, status: nethttp.StatusOK},
		{name: "configured status", cfg: EmbedProxyConfig{FailureStatus: nethttp.StatusBadGateway}, status: nethttp.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps(t)
			deps.fetcher.On("Fetch", mock.Anything, embedURL, mock.Anything).
				Return(nil, errors.New("connection reset")).Once()

			app := newApp(nethttp.MethodGet, "/proxy/unframe",
				NewEmbedProxyHandler(deps.logger, deps.dispatcher, tt.cfg, "unframe"))
			resp, body := do(t, app, httptest.NewRequest(nethttp.MethodGet, "/proxy/unframe?url="+embedURL, nil))

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "true", resp.Header.Get(common.FallbackHeader))
			assert.Contains(t, body, `<iframe src="https://sharecloudy.example/e/abc"`)
		})
	}
}

func TestEmbedProxyHandler_InvalidURL(t *testing.T) {
	deps := newTestDeps(t)
	app := newApp(nethttp.MethodGet, "/proxy/unframe",
		NewEmbedProxyHandler(deps.logger, deps.dispatcher, EmbedProxyConfig{}, "unframe"))

	for _, target := range []string{"/proxy/unframe", "/proxy/unframe?url=ftp://x.example/a", "/proxy/unframe?url=/relative"} {
		resp, _ := do(t, app, httptest.NewRequest(nethttp.MethodGet, target, nil))
		assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode, target)
	}
	deps.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}
