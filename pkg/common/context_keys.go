package common

type contextKey string

const (
	RequestIDContextKey contextKey = "request_id"
	LatencyContextKey   contextKey = "__execution_time"
	ClientUAContextKey  contextKey = "client_user_agent"
)
