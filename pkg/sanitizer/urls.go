package sanitizer

import (
	"net/url"
	"strings"

	"github.com/NeuralTrust/TrustFrame/pkg/domain"
	"github.com/NeuralTrust/TrustFrame/pkg/domain/mediation"
)

func parseSourceURL(raw string) (*url.URL, error) {
	u, err := mediation.ParseTargetURL(raw)
	if err != nil {
		if domain.IsInvalidInputError(err) {
			return nil, err
		}
		return nil, domain.NewInvalidInputError("url", raw, err.Error())
	}
	return u, nil
}

// absolutize resolves ref against base. It reports false when ref is
// already absolute or is not a navigable reference.
func absolutize(base *url.URL, ref string) (string, bool) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return ref, false
	}
	if strings.HasPrefix(trimmed, "//") {
		return base.Scheme + ":" + trimmed, true
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme != "" {
		return ref, false
	}
	return base.ResolveReference(parsed).String(), true
}

// refSubject is the string a reference is classified on. Same-origin
// references are reduced to their request URI so the page's own host never
// decides the verdict, and the result is the same before and after the
// reference is made absolute.
func refSubject(base *url.URL, ref string) string {
	abs, _ := absolutize(base, ref)
	u, err := url.Parse(strings.TrimSpace(abs))
	if err != nil || u.Host == "" {
		return ref
	}
	if strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host) {
		return u.RequestURI()
	}
	return abs
}
