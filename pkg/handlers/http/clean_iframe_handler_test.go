package http

import (
	"encoding/json"
	nethttp "net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanIframeHandler(t *testing.T) {
	deps := newTestDeps(t)
	app := newApp(nethttp.MethodPost, "/proxy/clean-iframe",
		NewCleanIframeHandler(deps.logger, deps.sanitizer, "clean_iframe"))

	doc := `<html><head><script src="https://pagead2.googlesyndication.com/pagead/show_ads.js"></script></head>` +
		`<body onload="initPopup()"><div id="player"></div><script src="/js/player.js"></script></body></html>`
	payload, _ := json.Marshal(map[string]string{"html": doc, "url": "https://embed.example.com/e/1"})

	resp, body := do(t, app, jsonRequest(nethttp.MethodPost, "/proxy/clean-iframe", string(payload)))

	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
	assert.NotContains(t, body, "googlesyndication")
	assert.NotContains(t, body, "onload")
	assert.Contains(t, body, "https://embed.example.com/js/player.js")
}

func TestCleanIframeHandler_BadInput(t *testing.T) {
	deps := newTestDeps(t)
	app := newApp(nethttp.MethodPost, "/proxy/content-security",
		NewCleanIframeHandler(deps.logger, deps.sanitizer, "content_security"))

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "malformed json", body: `{"html":`, want: ErrInvalidJsonPayload},
		{name: "missing html", body: `{"url":"https://embed.example.com/e/1"}`, want: "html is required"},
		{name: "missing url", body: `{"html":"<p>x</p>"}`, want: "url is required"},
		{name: "relative url", body: `{"html":"<p>x</p>","url":"/e/1"}`, want: "invalid url"},
		{name: "unsupported scheme", body: `{"html":"<p>x</p>","url":"ftp://embed.example.com/e/1"}`, want: "scheme must be http or https"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, jsonRequest(nethttp.MethodPost, "/proxy/content-security", tt.body))
			assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body, tt.want)
		})
	}
}

func TestCleanIframeHandler_TrimsSourceURL(t *testing.T) {
	deps := newTestDeps(t)
	app := newApp(nethttp.MethodPost, "/proxy/clean-iframe",
		NewCleanIframeHandler(deps.logger, deps.sanitizer, "clean_iframe"))

	payload, _ := json.Marshal(map[string]string{
		"html": `<html><body><img src="/poster.jpg"></body></html>`,
		"url":  "  https://embed.example.com/e/7  ",
	})
	resp, body := do(t, app, jsonRequest(nethttp.MethodPost, "/proxy/clean-iframe", string(payload)))

	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "https://embed.example.com/poster.jpg")
}
