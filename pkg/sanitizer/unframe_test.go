package sanitizer

import (
	"testing"

	"github.com/NeuralTrust/TrustFrame/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnframe(t *testing.T) {
	in := `<html><head>
<meta http-equiv="X-Frame-Options" content="SAMEORIGIN">
<meta http-equiv="Content-Security-Policy" content="default-src 'self'; frame-ancestors 'none'">
<meta http-equiv="Content-Security-Policy" content="frame-ancestors 'self'">
<script src="/assets/app.js"></script>
</head><body>
<video poster="thumbs/1.jpg"></video>
<form action="submit"></form>
<script>window.open("https://example.org")</script>
</body></html>`

	out, err := Unframe(in, "https://omega.example.com/e/123")
	require.NoError(t, err)
	doc := parse(t, out)

	assert.Equal(t, 0, doc.Find(`meta[http-equiv="X-Frame-Options"]`).Length())
	csp := doc.Find(`meta[http-equiv="Content-Security-Policy"]`)
	require.Equal(t, 1, csp.Length())
	assert.Equal(t, "default-src 'self';", csp.AttrOr("content", ""))

	assert.Equal(t, "https://omega.example.com/assets/app.js", doc.Find("script[src]").AttrOr("src", ""))
	assert.Equal(t, "https://omega.example.com/e/thumbs/1.jpg", doc.Find("video").AttrOr("poster", ""))
	assert.Equal(t, "https://omega.example.com/e/submit", doc.Find("form").AttrOr("action", ""))
	assert.Contains(t, out, `window.open("https://example.org")`)
}

func TestUnframe_InvalidInput(t *testing.T) {
	_, err := Unframe("", "https://omega.example.com")
	assert.True(t, domain.IsInvalidInputError(err))

	_, err = Unframe("<p>x</p>", "omega.example.com/e/1")
	assert.True(t, domain.IsInvalidInputError(err))
}

func TestStripFrameAncestors(t *testing.T) {
	assert.Equal(t, "", StripFrameAncestors("frame-ancestors 'none'"))
	assert.Equal(t, "default-src 'self'; img-src *;", StripFrameAncestors("default-src 'self'; FRAME-ANCESTORS 'self'; img-src *"))
	assert.Equal(t, "", StripFrameAncestors(" ; "))
}

func TestHasFramingRestriction(t *testing.T) {
	tests := []struct {
		name     string
		xfo      string
		csp      string
		expected bool
	}{
		{"none", "", "", false},
		{"deny", "DENY", "", true},
		{"sameorigin lowercase", "sameorigin", "", true},
		{"allow-from", "ALLOW-FROM https://a.example", "", true},
		{"frame-ancestors none", "", "default-src *; frame-ancestors 'none'", true},
		{"frame-ancestors wildcard", "", "frame-ancestors *", false},
		{"unrelated csp", "", "default-src 'self'", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HasFramingRestriction(tt.xfo, tt.csp))
		})
	}
}
