package http

import (
	"bytes"
	"html/template"
)

var fallbackTemplate = template.Must(template.New("fallback").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Player</title>
<style>html,body{margin:0;height:100%;background:#000}iframe{border:0;width:100%;height:100%}p{color:#bbb;font:14px sans-serif;text-align:center;padding-top:40vh}</style>
</head>
<body>
{{- if .URL}}
<iframe src="{{.URL}}" allow="autoplay; fullscreen; encrypted-media; picture-in-picture" allowfullscreen></iframe>
{{- else}}
<p>This player is temporarily unavailable.</p>
{{- end}}
</body>
</html>
`))

func renderFallback(rawURL string) string {
	var buf bytes.Buffer
	if err := fallbackTemplate.Execute(&buf, struct{ URL string }{URL: rawURL}); err != nil {
		return "<!DOCTYPE html><html><body><p>This player is temporarily unavailable.</p></body></html>"
	}
	return buf.String()
}
