package middleware

import "github.com/gofiber/fiber/v2"

type Middleware interface {
	Middleware() fiber.Handler
}

type Transport struct {
	RecoverMiddleware        Middleware
	CORSMiddleware           Middleware
	RequestContextMiddleware Middleware
	MetricsMiddleware        Middleware
	RateLimitMiddleware      Middleware
}

// GetMiddlewares returns the chain in the order it must run.
func (t *Transport) GetMiddlewares() []interface{} {
	var out []interface{}
	for _, m := range []Middleware{
		t.RecoverMiddleware,
		t.CORSMiddleware,
		t.RequestContextMiddleware,
		t.MetricsMiddleware,
		t.RateLimitMiddleware,
	} {
		if m != nil {
			out = append(out, m.Middleware())
		}
	}
	return out
}
