package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/NeuralTrust/TrustFrame/docs"
	"github.com/NeuralTrust/TrustFrame/pkg/config"
	handlers "github.com/NeuralTrust/TrustFrame/pkg/handlers/http"
	"github.com/NeuralTrust/TrustFrame/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedHandler string

func (h namedHandler) Handle(c *fiber.Ctx) error {
	return c.SendString(string(h))
}

type headerMiddleware struct{}

func (headerMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Chain", "on")
		return c.Next()
	}
}

func transport() handlers.HandlerTransport {
	return handlers.HandlerTransport{
		CleanIframeHandler:     namedHandler("clean-iframe"),
		ContentSecurityHandler: namedHandler("content-security"),
		SanitizedHandler:       namedHandler("sanitized"),
		ResolveHandler:         namedHandler("resolve"),
		ExtractStreamHandler:   namedHandler("extract-stream"),
		GuardPolicyHandler:     namedHandler("guard-policy"),
		GuardDecideHandler:     namedHandler("guard-decide"),
		GetVersionHandler:      namedHandler("version"),
		EmbedProxyHandlers: map[string]handlers.Handler{
			"unframe":     namedHandler("unframe"),
			"sharecloudy": namedHandler("sharecloudy"),
		},
	}
}

func TestProxyRouter_BuildRoutes(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	mw := &middleware.Transport{RequestContextMiddleware: headerMiddleware{}}
	require.NoError(t, NewProxyRouter(mw, transport(), &config.Config{}).BuildRoutes(app))

	tests := []struct {
		method  string
		path    string
		body    string
		chained bool
	}{
		{method: http.MethodPost, path: CleanIframePath, body: "clean-iframe", chained: true},
		{method: http.MethodPost, path: ContentSecurityPath, body: "content-security", chained: true},
		{method: http.MethodGet, path: SanitizedPath + "?url=x", body: "sanitized", chained: true},
		{method: http.MethodGet, path: ResolvePath + "?url=x", body: "resolve", chained: true},
		{method: http.MethodGet, path: ExtractStreamPath + "?url=x", body: "extract-stream", chained: true},
		{method: http.MethodGet, path: GuardPolicyPath, body: "guard-policy", chained: true},
		{method: http.MethodPost, path: GuardDecidePath, body: "guard-decide", chained: true},
		{method: http.MethodGet, path: "/proxy/unframe?url=x", body: "unframe", chained: true},
		{method: http.MethodGet, path: "/proxy/sharecloudy?url=x", body: "sharecloudy", chained: true},
		{method: http.MethodGet, path: VersionPath, body: "version"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil))
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.body, string(body))
			if tt.chained {
				assert.Equal(t, "on", resp.Header.Get("X-Chain"))
			} else {
				assert.Empty(t, resp.Header.Get("X-Chain"))
			}
		})
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, HealthPath, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/proxy/unknown?url=x", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProxyRouter_RejectsReservedProviderRoute(t *testing.T) {
	tr := transport()
	tr.EmbedProxyHandlers["resolve"] = namedHandler("shadow")

	err := NewProxyRouter(nil, tr, &config.Config{}).BuildRoutes(fiber.New())
	assert.Error(t, err)
}

func TestProxyRouter_MissingHandlers(t *testing.T) {
	err := NewProxyRouter(nil, handlers.HandlerTransport{}, &config.Config{}).BuildRoutes(fiber.New())
	assert.ErrorIs(t, err, ErrInvalidHandlerTransport)
}

func TestProxyRouter_Docs(t *testing.T) {
	disabled := fiber.New(fiber.Config{DisableStartupMessage: true})
	require.NoError(t, NewProxyRouter(nil, transport(), &config.Config{}).BuildRoutes(disabled))
	resp, err := disabled.Test(httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cfg := &config.Config{}
	cfg.Server.DocsEnabled = true
	enabled := fiber.New(fiber.Config{DisableStartupMessage: true})
	require.NoError(t, NewProxyRouter(nil, transport(), cfg).BuildRoutes(enabled))
	resp, err = enabled.Test(httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "/guard/decide")
}
