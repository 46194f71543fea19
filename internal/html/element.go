// Package html builds the generated output documents. Elements form a plain
// tree: build with El, Text, Raw, and Group, wrap in a Document, and write it
// to a route under the output root.
package html

import (
	stdhtml "html"
	"strings"
)

// Element is one output node: a tag with attributes and children, a text
// leaf, or an untagged group. Text leaves are escaped unless Raw is set.
type Element struct {
	Tag      string
	Attrs    []Attribute
	Children []Element
	Text     string
	Raw      bool
}

// El builds a tag element.
func El(tag string, attrs []Attribute, children ...Element) Element {
	return Element{Tag: tag, Attrs: attrs, Children: children}
}

// Text builds an escaped text node.
func Text(s string) Element {
	return Element{Text: s}
}

// Raw builds a node written without escaping.
func Raw(s string) Element {
	return Element{Text: s, Raw: true}
}

// Group gathers children without a wrapping tag.
func Group(children ...Element) Element {
	return Element{Children: children}
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

func (e Element) write(b *strings.Builder) {
	if e.Tag == "" {
		if e.Text != "" {
			if e.Raw {
				b.WriteString(e.Text)
			} else {
				b.WriteString(stdhtml.EscapeString(e.Text))
			}
		}
		for _, c := range e.Children {
			c.write(b)
		}
		return
	}
	b.WriteByte('<')
	b.WriteString(e.Tag)
	for _, a := range e.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		if a.Value != "" {
			b.WriteString(`="`)
			b.WriteString(stdhtml.EscapeString(a.Value))
			b.WriteByte('"')
		}
	}
	if voidElements[e.Tag] {
		b.WriteString(" />")
		return
	}
	b.WriteByte('>')
	for _, c := range e.Children {
		c.write(b)
	}
	b.WriteString("</")
	b.WriteString(e.Tag)
	b.WriteByte('>')
}

// String renders the element alone, without a document wrapper.
func (e Element) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}
