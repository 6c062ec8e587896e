package sanitizer

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/NeuralTrust/TrustFrame/pkg/domain"
	"github.com/NeuralTrust/TrustFrame/pkg/patterns"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var defaultHandlerAttributes = []string{"onload", "onclick", "onmouseover", "onfocus"}

// Result is the rewritten document plus the headers it must be served with.
type Result struct {
	HTML    string
	Headers HeaderBundle
	Report  Report
}

// Report counts the mutations applied to a document.
type Report struct {
	ScriptsRemoved  int `json:"scripts_removed"`
	HandlersRemoved int `json:"handlers_removed"`
	AnchorsRemoved  int `json:"anchors_removed"`
	Neutralized     int `json:"neutralized"`
	MetasRemoved    int `json:"metas_removed"`
	URLsRewritten   int `json:"urls_rewritten"`
}

func (r Report) Changed() bool {
	return r.ScriptsRemoved+r.HandlersRemoved+r.AnchorsRemoved+r.Neutralized+r.MetasRemoved+r.URLsRewritten > 0
}

type Option func(*Sanitizer)

func WithPolicy(policy string) Option {
	return func(s *Sanitizer) {
		if strings.TrimSpace(policy) != "" {
			s.policy = policy
		}
	}
}

func WithHandlerAttributes(attrs ...string) Option {
	return func(s *Sanitizer) {
		if len(attrs) == 0 {
			return
		}
		s.handlerAttrs = make([]string, 0, len(attrs))
		for _, a := range attrs {
			s.handlerAttrs = append(s.handlerAttrs, strings.ToLower(strings.TrimSpace(a)))
		}
	}
}

// Sanitizer rewrites third-party documents for same-origin embedding. It
// holds no per-call state and is safe for concurrent use.
type Sanitizer struct {
	table        *patterns.Table
	policy       string
	handlerAttrs []string
}

func New(table *patterns.Table, opts ...Option) *Sanitizer {
	s := &Sanitizer{
		table:        table,
		policy:       DefaultPolicy,
		handlerAttrs: defaultHandlerAttributes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sanitizer) Policy() string {
	return s.policy
}

// Sanitize applies the rewrite steps in order. Later steps assume the
// content removed by earlier ones is gone.
func (s *Sanitizer) Sanitize(rawHTML, sourceURL string) (*Result, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, domain.NewInvalidInputError("html", "", "must not be empty")
	}
	base, err := parseSourceURL(sourceURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	var report Report
	report.ScriptsRemoved = s.stripScripts(doc, base)
	report.HandlersRemoved = s.stripHandlers(doc)
	report.AnchorsRemoved = s.stripAnchors(doc, base)
	report.Neutralized = s.neutralize(doc)
	report.MetasRemoved = stripFramingMetas(doc)
	report.URLsRewritten = rewriteURLs(doc, base, "src", "href")
	injectPolicy(doc, s.policy)

	out, err := render(doc)
	if err != nil {
		return nil, err
	}
	return &Result{
		HTML:    out,
		Headers: ProtectiveHeaders(s.policy),
		Report:  report,
	}, nil
}

func (s *Sanitizer) stripScripts(doc *goquery.Document, base *url.URL) int {
	removed := 0
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if s.table.Matches(patterns.TargetScript, sel.Text()) ||
			(src != "" && s.table.Matches(patterns.TargetURL, refSubject(base, src))) {
			sel.Remove()
			removed++
		}
	})
	return removed
}

func (s *Sanitizer) stripHandlers(doc *goquery.Document) int {
	removed := 0
	doc.Find(attrSelector(s.handlerAttrs)).Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range s.handlerAttrs {
			if v, ok := sel.Attr(attr); ok && s.table.Matches(patterns.TargetHandler, v) {
				sel.RemoveAttr(attr)
				removed++
			}
		}
	})
	return removed
}

func (s *Sanitizer) stripAnchors(doc *goquery.Document, base *url.URL) int {
	removed := 0
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if s.table.Matches(patterns.TargetAnchor, refSubject(base, href)) {
			sel.Remove()
			removed++
		}
	})
	return removed
}

func (s *Sanitizer) neutralize(doc *goquery.Document) int {
	n := neutralizer{table: s.table}
	total := 0
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		code := sel.Text()
		rewritten, count := n.rewrite(code)
		if count == 0 {
			return
		}
		setText(sel.Get(0), rewritten)
		total += count
	})
	doc.Find(attrSelector(s.handlerAttrs)).Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range s.handlerAttrs {
			v, ok := sel.Attr(attr)
			if !ok {
				continue
			}
			if rewritten, count := n.rewrite(v); count > 0 {
				sel.SetAttr(attr, rewritten)
				total += count
			}
		}
	})
	return total
}

// stripFramingMetas removes every X-Frame-Options and CSP meta, including
// report-only policies, so that exactly one policy remains after injection.
func stripFramingMetas(doc *goquery.Document) int {
	removed := 0
	doc.Find("meta[http-equiv]").Each(func(_ int, sel *goquery.Selection) {
		equiv, _ := sel.Attr("http-equiv")
		switch strings.ToLower(strings.TrimSpace(equiv)) {
		case "x-frame-options", "content-security-policy", "content-security-policy-report-only":
			sel.Remove()
			removed++
		}
	})
	return removed
}

func rewriteURLs(doc *goquery.Document, base *url.URL, attrs ...string) int {
	rewritten := 0
	doc.Find(attrSelector(attrs)).Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range attrs {
			v, ok := sel.Attr(attr)
			if !ok {
				continue
			}
			if abs, changed := absolutize(base, v); changed && abs != v {
				sel.SetAttr(attr, abs)
				rewritten++
			}
		}
	})
	return rewritten
}

func injectPolicy(doc *goquery.Document, policy string) {
	meta := &html.Node{
		Type:     html.ElementNode,
		Data:     "meta",
		DataAtom: atom.Meta,
		Attr: []html.Attribute{
			{Key: "http-equiv", Val: "Content-Security-Policy"},
			{Key: "content", Val: policy},
		},
	}
	head := ensureHead(doc)
	head.InsertBefore(meta, head.FirstChild)
}

// ensureHead returns the document head, creating it when the parser did
// not produce one.
func ensureHead(doc *goquery.Document) *html.Node {
	if head := doc.Find("head").First(); head.Length() > 0 {
		return head.Get(0)
	}
	head := &html.Node{Type: html.ElementNode, Data: "head", DataAtom: atom.Head}
	root := doc.Find("html").First()
	if root.Length() == 0 {
		doc.Nodes[0].AppendChild(head)
		return head
	}
	n := root.Get(0)
	n.InsertBefore(head, n.FirstChild)
	return head
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func attrSelector(attrs []string) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = "[" + a + "]"
	}
	return strings.Join(parts, ",")
}

func render(doc *goquery.Document) (string, error) {
	var buf bytes.Buffer
	for _, n := range doc.Nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("failed to render document: %w", err)
		}
	}
	return buf.String(), nil
}
