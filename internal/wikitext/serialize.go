package wikitext

import (
	"fmt"
	"strconv"
	"strings"
)

// ToWikitext serializes a node back to markup text. The output is normalized
// rather than byte-faithful: reparsing serialized output yields an equivalent
// tree, which is what template expansion's textual roundtrips rely on.
func ToWikitext(n Node) string {
	w := &wtWriter{}
	w.node(n)
	return w.b.String()
}

// NodesToWikitext serializes a node sequence.
func NodesToWikitext(nodes []Node) string {
	w := &wtWriter{}
	w.nodes(nodes)
	return w.b.String()
}

type wtWriter struct {
	b strings.Builder
}

func (w *wtWriter) raw(s string) {
	w.b.WriteString(s)
}

func (w *wtWriter) nodes(nodes []Node) {
	for _, n := range nodes {
		w.node(n)
	}
}

// freshLine starts a new line unless the output already sits at one.
func (w *wtWriter) freshLine() {
	s := w.b.String()
	if len(s) > 0 && !strings.HasSuffix(s, "\n") {
		w.b.WriteByte('\n')
	}
}

// newlineSep emits a single line break, collapsing with one already written.
func (w *wtWriter) newlineSep() {
	if !strings.HasSuffix(w.b.String(), "\n") {
		w.b.WriteByte('\n')
	}
}

// paragraphSep emits a blank line, collapsing with breaks already written.
func (w *wtWriter) paragraphSep() {
	s := w.b.String()
	switch {
	case s == "":
		w.b.WriteByte('\n')
	case !strings.HasSuffix(s, "\n"):
		w.b.WriteString("\n\n")
	case !strings.HasSuffix(s, "\n\n"):
		w.b.WriteByte('\n')
	}
}

func (w *wtWriter) node(n Node) {
	switch t := n.(type) {
	case *Fragment:
		w.nodes(t.Children)
	case *Text:
		w.raw(t.Text)
	case *Template:
		w.template(t)
	case *TemplateParameterUse:
		w.raw("{{{")
		w.raw(t.Name)
		if t.Default != nil {
			w.raw("|")
			w.raw(NodesToWikitext(t.Default))
		}
		w.raw("}}}")
	case *Heading:
		w.freshLine()
		marks := strings.Repeat("=", t.Level)
		w.raw(marks)
		w.raw(" ")
		w.nodes(t.Children)
		w.raw(" ")
		w.raw(marks)
		w.raw("\n")
	case *Link:
		if t.Text == t.Title {
			w.raw("[[" + t.Title + "]]")
		} else {
			w.raw("[[" + t.Title + "|" + t.Text + "]]")
		}
	case *ExtLink:
		if t.Text == "" {
			w.raw("[" + t.Link + "]")
		} else {
			w.raw("[" + t.Link + " " + t.Text + "]")
		}
	case *Bold:
		w.raw("'''")
		w.nodes(t.Children)
		w.raw("'''")
	case *Italic:
		w.raw("''")
		w.nodes(t.Children)
		w.raw("''")
	case *Blockquote:
		w.wrapped("blockquote", t.Children)
	case *Superscript:
		w.wrapped("sup", t.Children)
	case *Subscript:
		w.wrapped("sub", t.Children)
	case *Small:
		w.wrapped("small", t.Children)
	case *Preformatted:
		w.wrapped("pre", t.Children)
	case *Tag:
		w.raw("<" + t.Name)
		if t.Attributes != "" {
			w.raw(" " + t.Attributes)
		}
		if t.Children == nil {
			w.raw(" />")
			return
		}
		w.raw(">")
		w.nodes(t.Children)
		w.raw("</" + t.Name + ">")
	case *Table:
		w.table(t)
	case *OrderedList:
		w.freshLine()
		w.list(n, "")
	case *UnorderedList:
		w.freshLine()
		w.list(n, "")
	case *Redirect:
		w.freshLine()
		w.raw("#REDIRECT [[" + t.Target + "]]\n")
	case *HorizontalDivider:
		w.freshLine()
		w.raw("----\n")
	case *ParagraphBreak:
		w.paragraphSep()
	case *Newline:
		w.newlineSep()
	default:
		panic(fmt.Sprintf("wikitext: cannot serialize node type %T", n))
	}
}

func (w *wtWriter) wrapped(tag string, children []Node) {
	w.raw("<" + tag + ">")
	w.nodes(children)
	w.raw("</" + tag + ">")
}

// template writes an invocation, emitting arguments positionally when their
// names match the positional ordinals they occupy and their values carry no
// "=" that would change meaning on reparse.
func (w *wtWriter) template(t *Template) {
	w.raw("{{")
	w.raw(t.Name)
	next := 1
	for _, p := range t.Parameters {
		if p.Name == strconv.Itoa(next) && !strings.ContainsRune(p.Value, '=') {
			w.raw("|" + p.Value)
			next++
			continue
		}
		w.raw("|" + p.Name + "=" + p.Value)
	}
	w.raw("}}")
}

func (w *wtWriter) table(t *Table) {
	w.freshLine()
	w.raw("{|")
	if len(t.Attributes) > 0 {
		w.raw(" " + NodesToWikitext(t.Attributes))
	}
	w.raw("\n")
	for _, c := range t.Captions {
		w.raw("|+ ")
		if len(c.Attributes) > 0 {
			w.raw(NodesToWikitext(c.Attributes) + " | ")
		}
		w.raw(NodesToWikitext(c.Content))
		w.raw("\n")
	}
	for _, r := range t.Rows {
		w.raw("|-")
		if len(r.Attributes) > 0 {
			w.raw(" " + NodesToWikitext(r.Attributes))
		}
		w.raw("\n")
		for _, c := range r.Cells {
			w.raw("| ")
			if len(c.Attributes) > 0 {
				w.raw(NodesToWikitext(c.Attributes) + " | ")
			}
			w.raw(NodesToWikitext(c.Content))
			w.raw("\n")
		}
	}
	w.raw("|}\n")
}

// list writes one list. prefix carries the markers of enclosing lists so
// nested items reconstruct their full depth.
func (w *wtWriter) list(n Node, prefix string) {
	var items []*ListItem
	var marker string
	switch t := n.(type) {
	case *OrderedList:
		items, marker = t.Items, "#"
	case *UnorderedList:
		items, marker = t.Items, "*"
	}
	linePrefix := prefix + marker
	for _, item := range items {
		var inlineParts []Node
		var nested []Node
		for _, c := range item.Content {
			switch c.(type) {
			case *OrderedList, *UnorderedList:
				nested = append(nested, c)
			default:
				inlineParts = append(inlineParts, c)
			}
		}
		w.freshLine()
		w.raw(linePrefix + " ")
		w.nodes(inlineParts)
		w.raw("\n")
		for _, sub := range nested {
			w.list(sub, linePrefix)
		}
	}
}
