package http

import (
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/dispatcher"
	"github.com/NeuralTrust/TrustFrame/pkg/dispatcher/mocks"
	"github.com/NeuralTrust/TrustFrame/pkg/guard"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/cache"
	"github.com/NeuralTrust/TrustFrame/pkg/patterns"
	"github.com/NeuralTrust/TrustFrame/pkg/sanitizer"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type testDeps struct {
	logger     *logrus.Logger
	table      *patterns.Table
	fetcher    *mocks.MockFetcher
	dispatcher *dispatcher.Dispatcher
	sanitizer  *sanitizer.Sanitizer
	evaluator  *guard.Evaluator
	policy     guard.RoutePolicy
}

func newTestDeps(t *testing.T) testDeps {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	table, err := patterns.Default()
	require.NoError(t, err)

	registry, err := dispatcher.NewRegistry([]dispatcher.Provider{
		{Name: "vidcloud", Hosts: []string{"vidcloud.example"}, Mode: dispatcher.ModeScrape},
		{Name: "sharecloudy", Hosts: []string{"sharecloudy.example"}, Mode: dispatcher.ModeUnframe},
	})
	require.NoError(t, err)

	fetcher := new(mocks.MockFetcher)
	framing := cache.NewFramingPolicyStore(nil, time.Hour, logger)
	d := dispatcher.New(dispatcher.Config{ScrapeTimeout: time.Second}, registry, fetcher, framing, nil, logger)

	return testDeps{
		logger:     logger,
		table:      table,
		fetcher:    fetcher,
		dispatcher: d,
		sanitizer:  sanitizer.New(table),
		evaluator:  guard.NewEvaluator(table, []string{"partner.example.net"}),
		policy: guard.RoutePolicy{
			PlaybackRoutes:     []string{"/watch", "/live"},
			ContentGuardRoutes: []string{"/watch"},
		},
	}
}

func newApp(method, path string, h Handler) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Add(method, path, h.Handle)
	return app
}

func do(t *testing.T, app *fiber.App, req *nethttp.Request) (*nethttp.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, string(body)
}

func jsonRequest(method, target, body string) *nethttp.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
