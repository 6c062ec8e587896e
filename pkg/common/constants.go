package common

import "time"

const (
	FramingPolicyTTL = 6 * time.Hour

	DefaultScrapeTimeout   = 15 * time.Second
	DefaultSanitizeTimeout = 20 * time.Second

	RequestIDHeader  = "X-Request-Id"
	FallbackHeader   = "X-Mediation-Fallback"
	StrategyHeader   = "X-Mediation-Strategy"
	PatternVerHeader = "X-Pattern-Version"

	DefaultDesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)
