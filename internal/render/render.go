// Package render converts resolved wikitext trees into HTML documents and
// wraps them in the site shell.
package render

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/wikitools/wikigen/internal/html"
	"github.com/wikitools/wikigen/internal/page"
	"github.com/wikitools/wikigen/internal/templates"
	"github.com/wikitools/wikigen/internal/wikitext"
)

// Renderer maps wikitext nodes to HTML elements. Template invocations still
// present in the tree are expanded through the registry as they are met.
type Renderer struct {
	registry *templates.Registry
	wikiDir  string
	logger   *slog.Logger
}

// NewRenderer builds a renderer. wikiDir is the directory pages are served
// under, used for internal link targets.
func NewRenderer(registry *templates.Registry, wikiDir string, logger *slog.Logger) *Renderer {
	return &Renderer{registry: registry, wikiDir: wikiDir, logger: logger}
}

// Render converts a document's top-level nodes.
func (r *Renderer) Render(nodes []wikitext.Node, ctx *page.Context) (html.Element, error) {
	children, err := r.children(nodes, ctx)
	if err != nil {
		return html.Element{}, err
	}
	return html.Group(children...), nil
}

func (r *Renderer) children(nodes []wikitext.Node, ctx *page.Context) ([]html.Element, error) {
	out := make([]html.Element, 0, len(nodes))
	for _, n := range nodes {
		el, err := r.node(n, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

func (r *Renderer) node(n wikitext.Node, ctx *page.Context) (html.Element, error) {
	switch t := n.(type) {
	case *wikitext.Fragment:
		els, err := r.children(t.Children, ctx)
		if err != nil {
			return html.Element{}, err
		}
		return html.Group(els...), nil
	case *wikitext.Template:
		res, err := r.registry.Instantiate(t.Name, t.Parameters, ctx)
		if err != nil {
			return html.Element{}, fmt.Errorf("expand template %q: %w", t.Name, err)
		}
		return r.node(res, ctx)
	case *wikitext.TemplateParameterUse:
		// A placeholder surviving to render time shows its source form.
		return html.Text(wikitext.ToWikitext(t)), nil
	case *wikitext.Heading:
		return r.wrap("h"+strconv.Itoa(t.Level), t.Children, ctx)
	case *wikitext.Link:
		href := html.PageRoute(r.wikiDir, t.Title).URLPath()
		return html.El("a", html.Attrs("href", href), html.Raw(t.Text)), nil
	case *wikitext.ExtLink:
		text := t.Text
		if text == "" {
			text = t.Link
		}
		return html.El("a", html.Attrs("href", t.Link), html.Raw(text)), nil
	case *wikitext.Bold:
		return r.wrap("strong", t.Children, ctx)
	case *wikitext.Italic:
		return r.wrap("em", t.Children, ctx)
	case *wikitext.Blockquote:
		return r.wrap("blockquote", t.Children, ctx)
	case *wikitext.Superscript:
		return r.wrap("sup", t.Children, ctx)
	case *wikitext.Subscript:
		return r.wrap("sub", t.Children, ctx)
	case *wikitext.Small:
		return r.wrap("small", t.Children, ctx)
	case *wikitext.Preformatted:
		return r.wrap("pre", t.Children, ctx)
	case *wikitext.Tag:
		els, err := r.children(t.Children, ctx)
		if err != nil {
			return html.Element{}, err
		}
		return html.El(t.Name, r.attrs(t.Attributes), els...), nil
	case *wikitext.Text:
		return html.Raw(t.Text), nil
	case *wikitext.Table:
		return r.table(t, ctx)
	case *wikitext.OrderedList:
		return r.list("ol", t.Items, ctx)
	case *wikitext.UnorderedList:
		return r.list("ul", t.Items, ctx)
	case *wikitext.Redirect:
		href := html.PageRoute(r.wikiDir, t.Target).URLPath()
		return html.El("a", html.Attrs("href", href), html.Text("REDIRECT: "+t.Target)), nil
	case *wikitext.HorizontalDivider:
		return html.El("hr", nil), nil
	case *wikitext.ParagraphBreak:
		return html.El("br", nil), nil
	case *wikitext.Newline:
		return html.El("br", nil), nil
	default:
		return html.Element{}, fmt.Errorf("render: unhandled node %T", n)
	}
}

func (r *Renderer) wrap(tag string, children []wikitext.Node, ctx *page.Context) (html.Element, error) {
	els, err := r.children(children, ctx)
	if err != nil {
		return html.Element{}, err
	}
	return html.El(tag, nil, els...), nil
}

func (r *Renderer) table(t *wikitext.Table, ctx *page.Context) (html.Element, error) {
	var captions []html.Element
	for _, c := range t.Captions {
		els, err := r.children(c.Content, ctx)
		if err != nil {
			return html.Element{}, err
		}
		captions = append(captions, html.El("th", r.nodeAttrs(c.Attributes), els...))
	}

	var rows []html.Element
	for _, row := range t.Rows {
		var cells []html.Element
		for _, cell := range row.Cells {
			els, err := r.children(cell.Content, ctx)
			if err != nil {
				return html.Element{}, err
			}
			cells = append(cells, html.El("td", r.nodeAttrs(cell.Attributes), els...))
		}
		rows = append(rows, html.El("tr", r.nodeAttrs(row.Attributes), cells...))
	}

	return html.El("table", r.nodeAttrs(t.Attributes),
		html.El("thead", nil, html.El("tr", nil, captions...)),
		html.El("tbody", nil, rows...),
	), nil
}

func (r *Renderer) list(tag string, items []*wikitext.ListItem, ctx *page.Context) (html.Element, error) {
	els := make([]html.Element, 0, len(items))
	for _, item := range items {
		children, err := r.children(item.Content, ctx)
		if err != nil {
			return html.Element{}, err
		}
		els = append(els, html.El("li", nil, children...))
	}
	return html.El(tag, nil, els...), nil
}

// attrs parses raw attribute text. Malformed attribute text is dropped with
// a warning rather than failing the page.
func (r *Renderer) attrs(raw string) []html.Attribute {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	attrs, err := html.ParseAttributes(raw)
	if err != nil {
		r.logger.Warn("dropping malformed attributes", "attrs", raw, "error", err)
		return nil
	}
	return attrs
}

func (r *Renderer) nodeAttrs(nodes []wikitext.Node) []html.Attribute {
	return r.attrs(wikitext.NodesToWikitext(nodes))
}
