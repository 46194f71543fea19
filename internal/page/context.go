// Package page carries per-document identity through parsing, template
// expansion, and rendering.
package page

import (
	"fmt"
	"path"
	"strings"

	"github.com/wikitools/wikigen/internal/html"
)

// Context describes the document being generated. Template expansion reads
// it to resolve magic names like SUBPAGENAME against the page.
type Context struct {
	// InputPath is the source file path relative to the wiki root.
	InputPath string
	// Title is the page title: the path without its extension, with
	// underscores read as spaces.
	Title string
	// Route is where the rendered page lands under the output root.
	Route html.RoutePath
	// SubPageName is the last slash-separated segment of the title.
	SubPageName string
}

// NewContext derives a page context from a source path relative to the wiki
// root. wikiDir is the directory pages are served under.
func NewContext(wikiDir, inputPath string) *Context {
	rel := strings.TrimSuffix(inputPath, path.Ext(inputPath))
	title := strings.ReplaceAll(strings.ReplaceAll(rel, "\\", "/"), "_", " ")
	return &Context{
		InputPath:   inputPath,
		Title:       title,
		Route:       html.PageRoute(wikiDir, title),
		SubPageName: subPageName(title),
	}
}

func subPageName(title string) string {
	if i := strings.LastIndexByte(title, '/'); i >= 0 {
		return title[i+1:]
	}
	return title
}

func (c *Context) String() string {
	return fmt.Sprintf("%s (%s)", c.Title, c.InputPath)
}
