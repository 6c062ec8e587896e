package sanitizer

// DefaultPolicy is the CSP injected into every sanitized document.
const DefaultPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline' 'unsafe-eval'; " +
	"style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' data:; " +
	"connect-src 'self' https:; media-src 'self' https:; frame-src 'self' https:; " +
	"frame-ancestors 'self'; base-uri 'self'; form-action 'self';"

// HeaderBundle is the fixed set of response headers that travels with a
// rewritten document. Empty fields are not written.
type HeaderBundle struct {
	ContentSecurityPolicy string `json:"content_security_policy,omitempty"`
	FrameOptions          string `json:"frame_options,omitempty"`
	CacheControl          string `json:"cache_control,omitempty"`
	Pragma                string `json:"pragma,omitempty"`
	Expires               string `json:"expires,omitempty"`
	ContentTypeOptions    string `json:"content_type_options,omitempty"`
	AllowOrigin           string `json:"allow_origin,omitempty"`
}

// ProtectiveHeaders is used for sanitized documents served into a
// same-origin iframe.
func ProtectiveHeaders(policy string) HeaderBundle {
	return HeaderBundle{
		ContentSecurityPolicy: policy,
		FrameOptions:          "SAMEORIGIN",
		CacheControl:          "no-cache, no-store, must-revalidate",
		Pragma:                "no-cache",
		Expires:               "0",
		ContentTypeOptions:    "nosniff",
	}
}

// EmbedHeaders is used for unframed provider pages. It drops every
// embedding restriction.
func EmbedHeaders() HeaderBundle {
	return HeaderBundle{
		CacheControl:       "no-store",
		Pragma:             "no-cache",
		Expires:            "0",
		ContentTypeOptions: "nosniff",
		AllowOrigin:        "*",
	}
}

func (h HeaderBundle) Apply(set func(key, value string)) {
	pairs := [][2]string{
		{"Content-Security-Policy", h.ContentSecurityPolicy},
		{"X-Frame-Options", h.FrameOptions},
		{"Cache-Control", h.CacheControl},
		{"Pragma", h.Pragma},
		{"Expires", h.Expires},
		{"X-Content-Type-Options", h.ContentTypeOptions},
		{"Access-Control-Allow-Origin", h.AllowOrigin},
	}
	for _, p := range pairs {
		if p[1] != "" {
			set(p[0], p[1])
		}
	}
}
