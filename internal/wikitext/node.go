// Package wikitext defines the parsed node tree for wiki markup, the parser
// and serializer that move between text and tree form, and the traversal
// helpers the template engine is built on.
package wikitext

import "fmt"

// Node is one node in a parsed wikitext tree. The set of implementations is
// closed: every consumer (traversal, substitution, serialization, rendering)
// switches over all of them, so adding a variant means updating each switch.
type Node interface {
	node()
}

// TemplateParameter is a single argument at a template invocation site.
// Value is the raw text as written; it is never parsed at capture time.
// Positional arguments are named "1", "2", ... during parsing.
type TemplateParameter struct {
	Name  string
	Value string
}

// Fragment groups children without contributing any markup of its own.
type Fragment struct {
	Children []Node
}

// Template is an unresolved invocation of a named template.
type Template struct {
	Name       string
	Parameters []TemplateParameter
}

// TemplateParameterUse is an unresolved parameter placeholder inside a
// template body. A nil Default means no default was written; an empty
// non-nil Default means an explicit empty one.
type TemplateParameterUse struct {
	Name    string
	Default []Node
}

// Text is opaque literal content.
type Text struct {
	Text string
}

type Heading struct {
	Level    int
	Children []Node
}

// Link is an internal page link. Title is the target page title and Text the
// display label.
type Link struct {
	Text  string
	Title string
}

// ExtLink is an external link. An empty Text displays the URL itself.
type ExtLink struct {
	Link string
	Text string
}

type Bold struct {
	Children []Node
}

type Italic struct {
	Children []Node
}

type Blockquote struct {
	Children []Node
}

type Superscript struct {
	Children []Node
}

type Subscript struct {
	Children []Node
}

type Small struct {
	Children []Node
}

type Preformatted struct {
	Children []Node
}

// Tag is an inline HTML element without a dedicated variant. Attributes is
// the raw attribute text between the tag name and the closing bracket.
type Tag struct {
	Name       string
	Attributes string
	Children   []Node
}

// Table and its supporting structs. Attribute positions hold node sequences
// so that template invocations written there expand through the same
// substitution pass as everything else.
type Table struct {
	Attributes []Node
	Captions   []*TableCaption
	Rows       []*TableRow
}

type TableCaption struct {
	Attributes []Node
	Content    []Node
}

type TableRow struct {
	Attributes []Node
	Cells      []*TableCell
}

type TableCell struct {
	Attributes []Node
	Content    []Node
}

type OrderedList struct {
	Items []*ListItem
}

type UnorderedList struct {
	Items []*ListItem
}

type ListItem struct {
	Content []Node
}

// Redirect is the whole-document #REDIRECT directive.
type Redirect struct {
	Target string
}

type HorizontalDivider struct{}

// ParagraphBreak separates two paragraphs (a blank line in the source).
// Newline is a bare line break inside one paragraph.
type ParagraphBreak struct{}

type Newline struct{}

func (*Fragment) node()             {}
func (*Template) node()             {}
func (*TemplateParameterUse) node() {}
func (*Text) node()                 {}
func (*Heading) node()              {}
func (*Link) node()                 {}
func (*ExtLink) node()              {}
func (*Bold) node()                 {}
func (*Italic) node()               {}
func (*Blockquote) node()           {}
func (*Superscript) node()          {}
func (*Subscript) node()            {}
func (*Small) node()                {}
func (*Preformatted) node()         {}
func (*Tag) node()                  {}
func (*Table) node()                {}
func (*OrderedList) node()          {}
func (*UnorderedList) node()        {}
func (*Redirect) node()             {}
func (*HorizontalDivider) node()    {}
func (*ParagraphBreak) node()       {}
func (*Newline) node()              {}

// Clone returns a deep copy of n. Cached template trees are cloned before
// every instantiation so substitution never mutates the cache.
func Clone(n Node) Node {
	switch t := n.(type) {
	case *Fragment:
		return &Fragment{Children: CloneNodes(t.Children)}
	case *Template:
		params := make([]TemplateParameter, len(t.Parameters))
		copy(params, t.Parameters)
		return &Template{Name: t.Name, Parameters: params}
	case *TemplateParameterUse:
		var def []Node
		if t.Default != nil {
			def = CloneNodes(t.Default)
		}
		return &TemplateParameterUse{Name: t.Name, Default: def}
	case *Text:
		return &Text{Text: t.Text}
	case *Heading:
		return &Heading{Level: t.Level, Children: CloneNodes(t.Children)}
	case *Link:
		return &Link{Text: t.Text, Title: t.Title}
	case *ExtLink:
		return &ExtLink{Link: t.Link, Text: t.Text}
	case *Bold:
		return &Bold{Children: CloneNodes(t.Children)}
	case *Italic:
		return &Italic{Children: CloneNodes(t.Children)}
	case *Blockquote:
		return &Blockquote{Children: CloneNodes(t.Children)}
	case *Superscript:
		return &Superscript{Children: CloneNodes(t.Children)}
	case *Subscript:
		return &Subscript{Children: CloneNodes(t.Children)}
	case *Small:
		return &Small{Children: CloneNodes(t.Children)}
	case *Preformatted:
		return &Preformatted{Children: CloneNodes(t.Children)}
	case *Tag:
		return &Tag{Name: t.Name, Attributes: t.Attributes, Children: CloneNodes(t.Children)}
	case *Table:
		out := &Table{Attributes: CloneNodes(t.Attributes)}
		for _, c := range t.Captions {
			out.Captions = append(out.Captions, &TableCaption{
				Attributes: CloneNodes(c.Attributes),
				Content:    CloneNodes(c.Content),
			})
		}
		for _, r := range t.Rows {
			row := &TableRow{Attributes: CloneNodes(r.Attributes)}
			for _, c := range r.Cells {
				row.Cells = append(row.Cells, &TableCell{
					Attributes: CloneNodes(c.Attributes),
					Content:    CloneNodes(c.Content),
				})
			}
			out.Rows = append(out.Rows, row)
		}
		return out
	case *OrderedList:
		return &OrderedList{Items: cloneItems(t.Items)}
	case *UnorderedList:
		return &UnorderedList{Items: cloneItems(t.Items)}
	case *Redirect:
		return &Redirect{Target: t.Target}
	case *HorizontalDivider:
		return &HorizontalDivider{}
	case *ParagraphBreak:
		return &ParagraphBreak{}
	case *Newline:
		return &Newline{}
	default:
		panic(fmt.Sprintf("wikitext: clone of unknown node %T", n))
	}
}

// CloneNodes deep-copies a node sequence. A nil input stays nil.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Clone(n)
	}
	return out
}

func cloneItems(items []*ListItem) []*ListItem {
	out := make([]*ListItem, len(items))
	for i, it := range items {
		out[i] = &ListItem{Content: CloneNodes(it.Content)}
	}
	return out
}
