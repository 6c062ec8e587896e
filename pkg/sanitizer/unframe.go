package sanitizer

import (
	"fmt"
	"strings"

	"github.com/NeuralTrust/TrustFrame/pkg/domain"
	"github.com/PuerkitoBio/goquery"
)

// Unframe removes the signals that stop a page from being framed and makes
// its asset references absolute. It does not touch scripts.
func Unframe(rawHTML, pageURL string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", domain.NewInvalidInputError("html", "", "must not be empty")
	}
	base, err := parseSourceURL(pageURL)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}

	doc.Find("meta[http-equiv]").Each(func(_ int, sel *goquery.Selection) {
		equiv, _ := sel.Attr("http-equiv")
		switch strings.ToLower(strings.TrimSpace(equiv)) {
		case "x-frame-options":
			sel.Remove()
		case "content-security-policy", "content-security-policy-report-only":
			content, _ := sel.Attr("content")
			policy := StripFrameAncestors(content)
			if policy == "" {
				sel.Remove()
				return
			}
			sel.SetAttr("content", policy)
		}
	})
	rewriteURLs(doc, base, "src", "href", "action", "poster")

	return render(doc)
}

// StripFrameAncestors drops the frame-ancestors directive from a CSP value.
func StripFrameAncestors(policy string) string {
	var kept []string
	for _, directive := range strings.Split(policy, ";") {
		d := strings.TrimSpace(directive)
		if d == "" {
			continue
		}
		name := strings.ToLower(strings.Fields(d)[0])
		if name == "frame-ancestors" {
			continue
		}
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "; ") + ";"
}

// HasFramingRestriction reports whether response headers forbid framing
// by a foreign origin.
func HasFramingRestriction(frameOptions, csp string) bool {
	switch strings.ToUpper(strings.TrimSpace(frameOptions)) {
	case "DENY", "SAMEORIGIN":
		return true
	}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(frameOptions)), "ALLOW-FROM") {
		return true
	}
	for _, directive := range strings.Split(csp, ";") {
		fields := strings.Fields(directive)
		if len(fields) == 0 || strings.ToLower(fields[0]) != "frame-ancestors" {
			continue
		}
		for _, src := range fields[1:] {
			if src == "*" || strings.EqualFold(src, "https:") {
				return false
			}
		}
		return true
	}
	return false
}
