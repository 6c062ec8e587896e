package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/valyala/fastjson"
)

// Match is a stream URL found in an embed page.
type Match struct {
	URL     string `json:"url"`
	Pattern string `json:"pattern"`
}

type pattern struct {
	name string
	re   *regexp.Regexp
	// media limits the match to values that look like a playable stream.
	media bool
	// absolute accepts values written as absolute or protocol-relative URLs,
	// plus relative ones with a media extension. Player flags such as
	// hls: "auto" are skipped.
	absolute bool
}

var (
	mediaURLRe = regexp.MustCompile(`(?i)\.(m3u8|mpd|mp4)([?#]|$)`)

	orderedPatterns = []pattern{
		{name: "quoted-manifest", re: regexp.MustCompile(`(?i)["']((?:https?:)?(?:\\?/){2}[^"'\s<>]+?\.m3u8(?:\?[^"'\s<>]*)?)["']`)},
		{name: "file", re: regexp.MustCompile(`(?i)["']?\bfile["']?\s*[:=]\s*["']([^"']+)["']`), media: true},
		{name: "source", re: regexp.MustCompile(`(?i)["']?\b(?:source|src)["']?\s*[:=]\s*["']([^"']+)["']`), media: true},
		{name: "hls", re: regexp.MustCompile(`(?i)["']?\bhls(?:_?url)?["']?\s*[:=]\s*["']([^"']+)["']`), absolute: true},
	}

	jsonKeys = []string{"file", "src", "contentUrl", "hls", "hls_url", "url"}
)

// Extractor scans embed page bodies for a direct stream URL. The patterns are
// tried in order and the first hit wins.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(body string, pageURL *url.URL) (Match, bool) {
	for _, p := range orderedPatterns {
		for _, m := range p.re.FindAllStringSubmatch(body, -1) {
			candidate, ok := normalize(m[1], pageURL)
			if !ok {
				continue
			}
			if p.media && !mediaURLRe.MatchString(candidate) {
				continue
			}
			if p.absolute && !writtenAbsolute(m[1]) && !mediaURLRe.MatchString(candidate) {
				continue
			}
			return Match{URL: candidate, Pattern: p.name}, true
		}
	}
	if m, ok := e.fromJSONBlobs(body, pageURL); ok {
		return m, true
	}
	return Match{}, false
}

// fromJSONBlobs walks player configuration embedded as JSON script blocks.
func (e *Extractor) fromJSONBlobs(body string, pageURL *url.URL) (Match, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Match{}, false
	}
	var (
		found Match
		ok    bool
	)
	doc.Find(`script[type="application/json"], script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		v, err := fastjson.Parse(sel.Text())
		if err != nil {
			return true
		}
		found, ok = walkJSON(v, pageURL)
		return !ok
	})
	return found, ok
}

func walkJSON(v *fastjson.Value, pageURL *url.URL) (Match, bool) {
	switch v.Type() {
	case fastjson.TypeObject:
		obj := v.GetObject()
		for _, key := range jsonKeys {
			s := obj.Get(key)
			if s == nil || s.Type() != fastjson.TypeString {
				continue
			}
			candidate, ok := normalize(string(s.GetStringBytes()), pageURL)
			if ok && mediaURLRe.MatchString(candidate) {
				return Match{URL: candidate, Pattern: "json:" + key}, true
			}
		}
		var (
			found Match
			ok    bool
		)
		obj.Visit(func(_ []byte, child *fastjson.Value) {
			if !ok {
				found, ok = walkJSON(child, pageURL)
			}
		})
		return found, ok
	case fastjson.TypeArray:
		for _, item := range v.GetArray() {
			if m, ok := walkJSON(item, pageURL); ok {
				return m, true
			}
		}
	}
	return Match{}, false
}

func writtenAbsolute(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(raw, `\/`, "/")))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "//")
}

// normalize unescapes JSON-style slashes and resolves protocol-relative and
// relative references against the page.
func normalize(raw string, pageURL *url.URL) (string, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, `\/`, "/"))
	s = strings.ReplaceAll(s, `\u0026`, "&")
	s = strings.ReplaceAll(s, "&amp;", "&")
	if s == "" {
		return "", false
	}
	if strings.HasPrefix(s, "//") {
		scheme := "https"
		if pageURL != nil && pageURL.Scheme != "" {
			scheme = pageURL.Scheme
		}
		s = scheme + ":" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	if !u.IsAbs() {
		if pageURL == nil {
			return "", false
		}
		u = pageURL.ResolveReference(u)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return u.String(), true
}

// IsManifestURL reports whether a URL already points at a stream manifest.
func IsManifestURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	return strings.HasSuffix(p, ".m3u8") || strings.HasSuffix(p, ".mpd") || strings.Contains(p, ".m3u8/")
}
