package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Document sanitizer
	CleanIframeHandler     Handler
	ContentSecurityHandler Handler
	SanitizedHandler       Handler

	// Embed proxy, keyed by route name ("unframe" plus one per provider)
	EmbedProxyHandlers map[string]Handler

	// Dispatcher
	ExtractStreamHandler Handler
	ResolveHandler       Handler

	// Runtime guard
	GuardPolicyHandler Handler
	GuardDecideHandler Handler

	GetVersionHandler Handler
}
