package guard

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/NeuralTrust/TrustFrame/pkg/patterns"
)

type ResourceKind string

const (
	ResourceMedia      ResourceKind = "media"
	ResourceManifest   ResourceKind = "manifest"
	ResourceImage      ResourceKind = "image"
	ResourceScript     ResourceKind = "script"
	ResourceStylesheet ResourceKind = "stylesheet"
	ResourceFrame      ResourceKind = "frame"
	ResourceXHR        ResourceKind = "xhr"
)

var payloadURLRe = regexp.MustCompile(`https?://[^\s"'<>\\]+`)

// Evaluator holds the stateless part of the guards: every decision is a
// function of the pattern table, the allow list and its arguments.
type Evaluator struct {
	table        *patterns.Table
	allowDomains []string
}

func NewEvaluator(table *patterns.Table, allowDomains []string) *Evaluator {
	domains := make([]string, 0, len(allowDomains))
	for _, d := range allowDomains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "."))
		if d != "" {
			domains = append(domains, d)
		}
	}
	return &Evaluator{table: table, allowDomains: domains}
}

func (e *Evaluator) Table() *patterns.Table {
	return e.table
}

func (e *Evaluator) AllowDomains() []string {
	return append([]string(nil), e.allowDomains...)
}

// AllowListed matches host against the allow list, subdomains included.
func (e *Evaluator) AllowListed(host string) bool {
	host = strings.ToLower(host)
	for _, d := range e.allowDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Navigation decides a window-open or top-level navigation to rawURL made
// from the page at baseURL. Same-origin and allow-listed targets pass,
// known ad signatures are blocked and everything else is allowed.
func (e *Evaluator) Navigation(rawURL, baseURL string, userInitiated bool) patterns.Decision {
	target := strings.TrimSpace(rawURL)
	if target == "" || strings.EqualFold(target, "about:blank") {
		if userInitiated {
			return patterns.Decision{Verdict: patterns.VerdictClean, Rule: "blank-with-gesture", Match: target}
		}
		return patterns.Blocked(patterns.VerdictSuspicious, "blank-without-gesture", target)
	}

	base, _ := url.Parse(baseURL)
	u, err := url.Parse(target)
	if err != nil {
		return e.table.Classify(patterns.TargetURL, target)
	}
	if base != nil {
		u = base.ResolveReference(u)
	}

	if strings.EqualFold(u.Scheme, "javascript") {
		return e.table.Classify(patterns.TargetScript, u.Opaque)
	}
	if base != nil && base.Host != "" && sameOrigin(base, u) {
		return patterns.Allowed("same-origin", u.Scheme+"://"+u.Host)
	}
	if e.AllowListed(u.Hostname()) {
		return patterns.Allowed("allow-domain", u.Hostname())
	}
	return e.table.Classify(patterns.TargetURL, u.String())
}

// Message decides a cross-frame message received from origin by a page
// whose own origin is selfOrigin.
func (e *Evaluator) Message(origin, selfOrigin, payload string) patterns.Decision {
	if origin != "" && strings.EqualFold(origin, selfOrigin) {
		return patterns.Allowed("same-origin", origin)
	}
	if u, err := url.Parse(origin); err == nil && e.AllowListed(u.Hostname()) {
		return patterns.Allowed("allow-domain", u.Hostname())
	}
	if d := e.table.Classify(patterns.TargetMessage, payload); d.Blocked {
		return d
	}
	for _, link := range payloadURLRe.FindAllString(payload, -1) {
		if d := e.Navigation(link, selfOrigin, false); d.Blocked {
			return d
		}
	}
	return patterns.Clean()
}

// Resource decides a network load from the hosting page. Media and
// manifests always pass. Passive resources are only blocked on ad-network
// or download verdicts so keyword hits never break thumbnails.
func (e *Evaluator) Resource(rawURL string, kind ResourceKind) patterns.Decision {
	if kind == ResourceMedia || kind == ResourceManifest {
		return patterns.Decision{Verdict: patterns.VerdictClean, Rule: "media-exempt"}
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err == nil && e.AllowListed(u.Hostname()) {
		return patterns.Allowed("allow-domain", u.Hostname())
	}
	d := e.table.Classify(patterns.TargetURL, rawURL)
	if !d.Blocked {
		return d
	}
	switch kind {
	case ResourceScript, ResourceFrame:
		return d
	}
	if d.Verdict == patterns.VerdictAdDomain || d.Verdict == patterns.VerdictDownloadTrigger {
		return d
	}
	return patterns.Decision{Verdict: d.Verdict, Rule: d.Rule, Match: d.Match}
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}
