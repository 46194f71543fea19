package wikitext

import (
	"fmt"
	"strings"
)

// Visit walks the tree depth first in pre-order, calling fn for every node.
// Table internals and attribute node lists are covered. Defaults inside
// TemplateParameterUse are not descended into: they stay opaque until
// substitution serializes them.
func Visit(n Node, fn func(Node)) {
	fn(n)
	switch t := n.(type) {
	case *Fragment:
		visitAll(t.Children, fn)
	case *Heading:
		visitAll(t.Children, fn)
	case *Bold:
		visitAll(t.Children, fn)
	case *Italic:
		visitAll(t.Children, fn)
	case *Blockquote:
		visitAll(t.Children, fn)
	case *Superscript:
		visitAll(t.Children, fn)
	case *Subscript:
		visitAll(t.Children, fn)
	case *Small:
		visitAll(t.Children, fn)
	case *Preformatted:
		visitAll(t.Children, fn)
	case *Tag:
		visitAll(t.Children, fn)
	case *Table:
		visitAll(t.Attributes, fn)
		for _, c := range t.Captions {
			visitAll(c.Attributes, fn)
			visitAll(c.Content, fn)
		}
		for _, r := range t.Rows {
			visitAll(r.Attributes, fn)
			for _, c := range r.Cells {
				visitAll(c.Attributes, fn)
				visitAll(c.Content, fn)
			}
		}
	case *OrderedList:
		for _, it := range t.Items {
			visitAll(it.Content, fn)
		}
	case *UnorderedList:
		for _, it := range t.Items {
			visitAll(it.Content, fn)
		}
	case *Template, *TemplateParameterUse, *Text, *Link, *ExtLink,
		*Redirect, *HorizontalDivider, *ParagraphBreak, *Newline:
	default:
		panic(fmt.Sprintf("wikitext: visit of unknown node %T", n))
	}
}

func visitAll(nodes []Node, fn func(Node)) {
	for _, n := range nodes {
		Visit(n, fn)
	}
}

// VisitAndReplace rebuilds the tree depth first, applying fn to every node.
// When fn returns a different node, the replacement subtree is spliced in
// as-is and not descended into; when it returns the node unchanged, the
// node keeps its identity and its children are rebuilt in place. Defaults
// inside TemplateParameterUse are never traversed.
func VisitAndReplace(n Node, fn func(Node) (Node, error)) (Node, error) {
	out, err := fn(n)
	if err != nil {
		return nil, err
	}
	if out != n {
		return out, nil
	}
	switch t := n.(type) {
	case *Fragment:
		if t.Children, err = visitAndReplaceAll(t.Children, fn); err != nil {
			return nil, err
		}
	case *Heading:
		if t.Children, err = visitAndReplaceAll(t.Children, fn); err != nil {
			return nil, err
		}
	case *Bold:
		if t.Children, err = visitAndReplaceAll(t.Children, fn); err != nil {
			return nil, err
		}
	case *Italic:
		if t.Children, err = visitAndReplaceAll(t.Children, fn); err != nil {
			return nil, err
		}
	case *Blockquote:
		if t.Children, err = visitAndReplaceAll(t.Children, fn); err != nil {
			return nil, err
		}
	case *Superscript:
		if t.Children, err = visitAndReplaceAll(t.Children, fn); err != nil {
			return nil, err
		}
	case *Subscript:
		if t.Children, err = visitAndReplaceAll(t.Children, fn); err != nil {
			return nil, err
		}
	case *Small:
		if t.Children, err = visitAndReplaceAll(t.Children, fn); err != nil {
			return nil, err
		}
	case *Preformatted:
		if t.Children, err = visitAndReplaceAll(t.Children, fn); err != nil {
			return nil, err
		}
	case *Tag:
		if t.Children, err = visitAndReplaceAll(t.Children, fn); err != nil {
			return nil, err
		}
	case *Table:
		if t.Attributes, err = visitAndReplaceAll(t.Attributes, fn); err != nil {
			return nil, err
		}
		for _, c := range t.Captions {
			if c.Attributes, err = visitAndReplaceAll(c.Attributes, fn); err != nil {
				return nil, err
			}
			if c.Content, err = visitAndReplaceAll(c.Content, fn); err != nil {
				return nil, err
			}
		}
		for _, r := range t.Rows {
			if r.Attributes, err = visitAndReplaceAll(r.Attributes, fn); err != nil {
				return nil, err
			}
			for _, c := range r.Cells {
				if c.Attributes, err = visitAndReplaceAll(c.Attributes, fn); err != nil {
					return nil, err
				}
				if c.Content, err = visitAndReplaceAll(c.Content, fn); err != nil {
					return nil, err
				}
			}
		}
	case *OrderedList:
		for _, it := range t.Items {
			if it.Content, err = visitAndReplaceAll(it.Content, fn); err != nil {
				return nil, err
			}
		}
	case *UnorderedList:
		for _, it := range t.Items {
			if it.Content, err = visitAndReplaceAll(it.Content, fn); err != nil {
				return nil, err
			}
		}
	case *Template, *TemplateParameterUse, *Text, *Link, *ExtLink,
		*Redirect, *HorizontalDivider, *ParagraphBreak, *Newline:
	default:
		panic(fmt.Sprintf("wikitext: visit-and-replace of unknown node %T", n))
	}
	return n, nil
}

func visitAndReplaceAll(nodes []Node, fn func(Node) (Node, error)) ([]Node, error) {
	for i, n := range nodes {
		out, err := VisitAndReplace(n, fn)
		if err != nil {
			return nil, err
		}
		nodes[i] = out
	}
	return nodes, nil
}

// ContainsUnresolved reports whether any Template or TemplateParameterUse
// node remains anywhere in the tree. Instantiation is complete exactly when
// this returns false.
func ContainsUnresolved(n Node) bool {
	found := false
	Visit(n, func(n Node) {
		switch n.(type) {
		case *Template, *TemplateParameterUse:
			found = true
		}
	})
	return found
}

// ContainsTable reports whether a Table appears anywhere in the tree.
func ContainsTable(n Node) bool {
	found := false
	Visit(n, func(n Node) {
		if _, ok := n.(*Table); ok {
			found = true
		}
	})
	return found
}

// PlainText flattens the visible text of a tree, with single spaces standing
// in for structural boundaries. Used for search indexing.
func PlainText(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		plainText(n, &b)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func plainText(n Node, b *strings.Builder) {
	switch t := n.(type) {
	case *Text:
		b.WriteString(t.Text)
	case *Link:
		b.WriteString(t.Text)
		b.WriteByte(' ')
	case *ExtLink:
		b.WriteString(t.Text)
		b.WriteByte(' ')
	case *Fragment:
		plainTextAll(t.Children, b)
	case *Heading:
		plainTextAll(t.Children, b)
		b.WriteByte(' ')
	case *Bold:
		plainTextAll(t.Children, b)
	case *Italic:
		plainTextAll(t.Children, b)
	case *Blockquote:
		plainTextAll(t.Children, b)
		b.WriteByte(' ')
	case *Superscript:
		plainTextAll(t.Children, b)
	case *Subscript:
		plainTextAll(t.Children, b)
	case *Small:
		plainTextAll(t.Children, b)
	case *Preformatted:
		plainTextAll(t.Children, b)
		b.WriteByte(' ')
	case *Tag:
		plainTextAll(t.Children, b)
	case *Table:
		for _, c := range t.Captions {
			plainTextAll(c.Content, b)
			b.WriteByte(' ')
		}
		for _, r := range t.Rows {
			for _, c := range r.Cells {
				plainTextAll(c.Content, b)
				b.WriteByte(' ')
			}
		}
	case *OrderedList:
		for _, it := range t.Items {
			plainTextAll(it.Content, b)
			b.WriteByte(' ')
		}
	case *UnorderedList:
		for _, it := range t.Items {
			plainTextAll(it.Content, b)
			b.WriteByte(' ')
		}
	case *Template, *TemplateParameterUse, *Redirect:
	case *HorizontalDivider, *ParagraphBreak, *Newline:
		b.WriteByte(' ')
	}
}

func plainTextAll(nodes []Node, b *strings.Builder) {
	for _, n := range nodes {
		plainText(n, b)
	}
}
