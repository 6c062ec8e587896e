package router

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/config"
	handlers "github.com/NeuralTrust/TrustFrame/pkg/handlers/http"
	"github.com/NeuralTrust/TrustFrame/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

const (
	HealthPath          = "/health"
	PingPath            = "/__/ping"
	VersionPath         = "/version"
	DocsPath            = "/docs/*"
	CleanIframePath     = "/proxy/clean-iframe"
	ContentSecurityPath = "/proxy/content-security"
	SanitizedPath       = "/proxy/sanitized"
	ResolvePath         = "/proxy/resolve"
	ExtractStreamPath   = "/extract-stream"
	GuardPolicyPath     = "/guard/policy"
	GuardDecidePath     = "/guard/decide"
	ProxyPrefix         = "/proxy/"
)

// reservedProxyRoutes cannot be claimed by an embed proxy provider.
var reservedProxyRoutes = map[string]struct{}{
	"clean-iframe":     {},
	"content-security": {},
	"sanitized":        {},
	"resolve":          {},
}

type proxyRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
	config              *config.Config
}

func NewProxyRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
	cfg *config.Config,
) ServerRouter {
	return &proxyRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
		config:              cfg,
	}
}

func (r *proxyRouter) BuildRoutes(router *fiber.App) error {
	h := r.handlerTransport
	if h.CleanIframeHandler == nil || h.ContentSecurityHandler == nil || h.SanitizedHandler == nil ||
		h.ExtractStreamHandler == nil || h.ResolveHandler == nil {
		return ErrInvalidHandlerTransport
	}

	router.Get(HealthPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	router.Get(PingPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"message": "pong",
		})
	})

	if h.GetVersionHandler != nil {
		router.Get(VersionPath, h.GetVersionHandler.Handle)
	}

	if r.config != nil && r.config.Server.DocsEnabled {
		router.Get(DocsPath, swagger.HandlerDefault)
	}

	if r.middlewareTransport != nil {
		if mws := r.middlewareTransport.GetMiddlewares(); len(mws) > 0 {
			router.Use(mws...)
		}
	}

	router.Post(CleanIframePath, h.CleanIframeHandler.Handle)
	router.Post(ContentSecurityPath, h.ContentSecurityHandler.Handle)
	router.Get(SanitizedPath, h.SanitizedHandler.Handle)
	router.Get(ResolvePath, h.ResolveHandler.Handle)
	router.Get(ExtractStreamPath, h.ExtractStreamHandler.Handle)

	if h.GuardPolicyHandler != nil {
		router.Get(GuardPolicyPath, h.GuardPolicyHandler.Handle)
	}
	if h.GuardDecideHandler != nil {
		router.Post(GuardDecidePath, h.GuardDecideHandler.Handle)
	}

	names := make([]string, 0, len(h.EmbedProxyHandlers))
	for name := range h.EmbedProxyHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, reserved := reservedProxyRoutes[name]; reserved {
			return fmt.Errorf("embed proxy route %q collides with a built-in route", name)
		}
		router.Get(ProxyPrefix+name, h.EmbedProxyHandlers[name].Handle)
	}

	return nil
}
