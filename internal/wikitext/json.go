package wikitext

import (
	"fmt"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
)

// NodesJSON converts a node sequence into generic JSON values, the form ojg
// marshals and JSONPath expressions evaluate against.
func NodesJSON(nodes []Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeJSON(n))
	}
	return out
}

// DumpJSON renders a node sequence as indented JSON with sorted keys, so
// dumps of the same document are byte-stable.
func DumpJSON(nodes []Node) ([]byte, error) {
	s, err := oj.Marshal(NodesJSON(nodes), &ojg.Options{Sort: true, Indent: 2})
	if err != nil {
		return nil, fmt.Errorf("marshal document tree: %w", err)
	}
	return s, nil
}

func nodeJSON(n Node) map[string]any {
	switch t := n.(type) {
	case *Fragment:
		return map[string]any{"kind": "fragment", "children": NodesJSON(t.Children)}
	case *Text:
		return map[string]any{"kind": "text", "text": t.Text}
	case *Template:
		params := make([]any, 0, len(t.Parameters))
		for _, p := range t.Parameters {
			params = append(params, map[string]any{"name": p.Name, "value": p.Value})
		}
		return map[string]any{"kind": "template", "name": t.Name, "parameters": params}
	case *TemplateParameterUse:
		m := map[string]any{"kind": "parameter", "name": t.Name}
		if t.Default != nil {
			m["default"] = NodesJSON(t.Default)
		}
		return m
	case *Heading:
		return map[string]any{"kind": "heading", "level": t.Level, "children": NodesJSON(t.Children)}
	case *Link:
		return map[string]any{"kind": "link", "title": t.Title, "text": t.Text}
	case *ExtLink:
		return map[string]any{"kind": "ext-link", "link": t.Link, "text": t.Text}
	case *Bold:
		return map[string]any{"kind": "bold", "children": NodesJSON(t.Children)}
	case *Italic:
		return map[string]any{"kind": "italic", "children": NodesJSON(t.Children)}
	case *Blockquote:
		return map[string]any{"kind": "blockquote", "children": NodesJSON(t.Children)}
	case *Superscript:
		return map[string]any{"kind": "superscript", "children": NodesJSON(t.Children)}
	case *Subscript:
		return map[string]any{"kind": "subscript", "children": NodesJSON(t.Children)}
	case *Small:
		return map[string]any{"kind": "small", "children": NodesJSON(t.Children)}
	case *Preformatted:
		return map[string]any{"kind": "preformatted", "children": NodesJSON(t.Children)}
	case *Tag:
		m := map[string]any{"kind": "tag", "name": t.Name, "attributes": t.Attributes}
		if t.Children != nil {
			m["children"] = NodesJSON(t.Children)
		}
		return m
	case *Table:
		captions := make([]any, 0, len(t.Captions))
		for _, c := range t.Captions {
			captions = append(captions, map[string]any{
				"attributes": NodesJSON(c.Attributes),
				"content":    NodesJSON(c.Content),
			})
		}
		rows := make([]any, 0, len(t.Rows))
		for _, r := range t.Rows {
			cells := make([]any, 0, len(r.Cells))
			for _, c := range r.Cells {
				cells = append(cells, map[string]any{
					"attributes": NodesJSON(c.Attributes),
					"content":    NodesJSON(c.Content),
				})
			}
			rows = append(rows, map[string]any{
				"attributes": NodesJSON(r.Attributes),
				"cells":      cells,
			})
		}
		return map[string]any{
			"kind":       "table",
			"attributes": NodesJSON(t.Attributes),
			"captions":   captions,
			"rows":       rows,
		}
	case *OrderedList:
		return map[string]any{"kind": "ordered-list", "items": itemsJSON(t.Items)}
	case *UnorderedList:
		return map[string]any{"kind": "unordered-list", "items": itemsJSON(t.Items)}
	case *Redirect:
		return map[string]any{"kind": "redirect", "target": t.Target}
	case *HorizontalDivider:
		return map[string]any{"kind": "horizontal-divider"}
	case *ParagraphBreak:
		return map[string]any{"kind": "paragraph-break"}
	case *Newline:
		return map[string]any{"kind": "newline"}
	default:
		panic(fmt.Sprintf("wikitext: cannot encode node type %T", n))
	}
}

func itemsJSON(items []*ListItem) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, NodesJSON(item.Content))
	}
	return out
}
