package window

import (
	"bytes"
	"html/template"
	"net/url"
)

var errorPageTmpl = template.Must(template.New("error").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>cfdshell</title>
<style>body{font-family:sans-serif;background:#1e1e2e;color:#cdd6f4;padding:3em}h1{color:#f38ba8}</style>
</head><body><h1>{{.Title}}</h1><p>{{.Message}}</p></body></html>`))

var loadingPageTmpl = template.Must(template.New("loading").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>cfdshell</title>
<style>body{font-family:sans-serif;background:#1e1e2e;color:#cdd6f4;padding:3em}</style>
</head><body><p>{{.}}</p></body></html>`))

// ErrorPage renders msg as a data URL.
func ErrorPage(msg string) string {
	var buf bytes.Buffer
	_ = errorPageTmpl.Execute(&buf, struct{ Title, Message string }{"cfdshell could not start", msg})
	return dataURL(buf.String())
}

// LoadingPage is shown while the service is not yet reachable.
func LoadingPage() string {
	var buf bytes.Buffer
	_ = loadingPageTmpl.Execute(&buf, "Starting the trading service...")
	return dataURL(buf.String())
}

func dataURL(html string) string {
	return "data:text/html," + url.PathEscape(html)
}
