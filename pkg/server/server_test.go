package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NeuralTrust/TrustFrame/pkg/config"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRouter struct{ path string }

func (r staticRouter) BuildRoutes(app *fiber.App) error {
	app.Post(r.path, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return nil
}

func TestNewProxyServer_BodyLimit(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{}
	cfg.Server.BodyLimit = 16
	s := NewProxyServer(ProxyServerDI{
		Config:  cfg,
		Logger:  logger,
		Routers: nil,
	})
	s.WithRouters(staticRouter{path: "/echo"})

	small := httptest.NewRequest(http.MethodPost, "/echo", nil)
	resp, err := s.App().Test(small)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	big := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("this body is well over sixteen bytes"))
	resp, err = s.App().Test(big)
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	_ = s.Shutdown()
}
