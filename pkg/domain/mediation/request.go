package mediation

import (
	"net/url"
	"strings"
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/domain"
	"github.com/google/uuid"
)

type SourceType string

const (
	SourceHLSDirect      SourceType = "hls-direct"
	SourceEmbedSanitized SourceType = "embed-sanitized"
	SourceEmbedRaw       SourceType = "embed-raw"
	SourceUnknown        SourceType = ""
)

func ParseSourceType(s string) (SourceType, error) {
	switch SourceType(strings.ToLower(strings.TrimSpace(s))) {
	case SourceHLSDirect:
		return SourceHLSDirect, nil
	case SourceEmbedSanitized:
		return SourceEmbedSanitized, nil
	case SourceEmbedRaw:
		return SourceEmbedRaw, nil
	case SourceUnknown:
		return SourceUnknown, nil
	default:
		return SourceUnknown, domain.NewInvalidInputError("type", s, "unsupported source type")
	}
}

// Request is a single playback attempt. It is immutable once built.
type Request struct {
	id         uuid.UUID
	url        *url.URL
	rawURL     string
	sourceType SourceType
	provider   string
	html       string
	createdAt  time.Time
}

type Option func(*Request)

func WithSourceType(t SourceType) Option {
	return func(r *Request) { r.sourceType = t }
}

func WithProvider(name string) Option {
	return func(r *Request) { r.provider = strings.ToLower(strings.TrimSpace(name)) }
}

func WithHTML(html string) Option {
	return func(r *Request) { r.html = html }
}

func NewRequest(rawURL string, opts ...Option) (*Request, error) {
	u, err := ParseTargetURL(rawURL)
	if err != nil {
		return nil, err
	}
	r := &Request{
		id:        uuid.New(),
		url:       u,
		rawURL:    strings.TrimSpace(rawURL),
		createdAt: time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Request) ID() uuid.UUID          { return r.id }
func (r *Request) RawURL() string         { return r.rawURL }
func (r *Request) SourceType() SourceType { return r.sourceType }
func (r *Request) Provider() string       { return r.provider }
func (r *Request) HTML() string           { return r.html }
func (r *Request) CreatedAt() time.Time   { return r.createdAt }

// URL returns a copy so callers cannot mutate the request.
func (r *Request) URL() *url.URL {
	u := *r.url
	return &u
}

func (r *Request) Host() string {
	return strings.ToLower(r.url.Hostname())
}

// Origin is scheme://host[:port] of the target.
func (r *Request) Origin() string {
	return r.url.Scheme + "://" + r.url.Host
}

// ParseTargetURL accepts only absolute http(s) URLs with a host.
func ParseTargetURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, domain.ErrMissingURL
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, domain.NewInvalidInputError("url", trimmed, "malformed url")
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, domain.NewInvalidInputError("url", trimmed, "must be an absolute url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, domain.NewInvalidInputError("url", trimmed, "scheme must be http or https")
	}
	return u, nil
}
