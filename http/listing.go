package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sagarc03/statica"
)

const listingHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Index of {{.Path}}</title>
</head>
<body>
<h1>Index of {{.Path}}</h1>
<ul>
{{- if .Parent}}
<li><a href="{{.Parent}}">../</a></li>
{{- end}}
{{- range .Entries}}
<li><a href="{{.Href}}">{{.Name}}</a>{{if not .IsDir}} <small>{{bytes .Size}}</small>{{end}} <small>{{ago .ModTime}}</small></li>
{{- end}}
</ul>
<hr><center>statica</center>
</body>
</html>`

var listingTemplate = template.Must(template.New("listing").Funcs(template.FuncMap{
	"bytes": func(n int64) string {
		if n < 0 {
			return "0 B"
		}
		return humanize.Bytes(uint64(n))
	},
	"ago": humanize.Time,
}).Parse(listingHTML))

type listingEntry struct {
	Name    string
	Href    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

type listingPage struct {
	Path    string
	Parent  string
	Entries []listingEntry
}

// renderListing enumerates dir (relative to the root) and renders it as
// HTML. urlPath is the request path the links are built from.
func renderListing(ctx context.Context, storage Storage, dir, urlPath string) ([]byte, error) {
	entries, err := storage.ReadDir(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("render listing: %w", err)
	}

	base := path.Clean("/" + urlPath)
	page := listingPage{
		Path:    base,
		Entries: make([]listingEntry, 0, len(entries)),
	}

	if base != "/" {
		page.Parent = escapePath(path.Dir(base))
	}

	for _, e := range entries {
		name := e.Name
		href := path.Join(base, e.Name)
		if e.IsDir {
			name += "/"
			href += "/"
		}

		page.Entries = append(page.Entries, listingEntry{
			Name:    name,
			Href:    escapePath(href),
			Size:    e.Size,
			ModTime: e.ModTime,
			IsDir:   e.IsDir,
		})
	}

	var buf bytes.Buffer
	if err := listingTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("render listing: %w: %w", statica.ErrInternal, err)
	}

	return buf.Bytes(), nil
}

func escapePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}
