// Package assets embeds the debug inspector's single HTML page and
// minifies it once at program start with github.com/tdewolff/minify/v2,
// in place of embedding a whole built frontend tree verbatim — a single
// tiny inspector page served straight out of memory.
package assets

import (
	"bytes"
	"embed"
	"io/fs"
	"sync"
	"testing/fstest"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

//go:embed index.html
var raw embed.FS

var (
	once    sync.Once
	builtFS fs.FS
	buildErr error
)

// FS returns an in-memory filesystem serving the minified inspector
// page at "/". Minification runs once, memoised.
func FS() (fs.FS, error) {
	once.Do(func() {
		builtFS, buildErr = build()
	})
	return builtFS, buildErr
}

func build() (fs.FS, error) {
	src, err := raw.ReadFile("index.html")
	if err != nil {
		return nil, err
	}

	m := minify.New()
	m.AddFunc("text/html", html.Minify)

	var out bytes.Buffer
	if err := m.Minify("text/html", &out, bytes.NewReader(src)); err != nil {
		return nil, err
	}

	return fstest.MapFS{
		"index.html": &fstest.MapFile{Data: out.Bytes()},
	}, nil
}
