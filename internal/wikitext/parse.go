package wikitext

import (
	"fmt"
	"strconv"
	"strings"
)

// Config selects the markup dialect. One immutable value is shared by every
// parse in a generation run.
type Config struct {
	// Protocols recognized at the start of an external link target.
	Protocols []string
	// RedirectAliases are line prefixes (matched case-insensitively) that
	// turn a line into a redirect directive, e.g. "#REDIRECT".
	RedirectAliases []string
}

// DefaultConfig returns the dialect used by the documentation wiki.
func DefaultConfig() *Config {
	return &Config{
		Protocols:       []string{"https://", "http://", "ftp://", "mailto:"},
		RedirectAliases: []string{"#redirect"},
	}
}

// ParseError reports markup the grammar rejected. Text carries the offending
// source so failures during template roundtrips stay diagnosable.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	text := e.Text
	if len(text) > 160 {
		text = text[:160] + "…"
	}
	return fmt.Sprintf("parse wikitext: %s in %q", e.Reason, text)
}

// voidTags never take children; an opening tag alone is complete.
var voidTags = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true, "meta": true,
	"link": true, "source": true, "wbr": true, "col": true, "embed": true,
}

// Parse turns wikitext source into a node sequence.
func Parse(src string, cfg *Config) ([]Node, error) {
	p := &parser{cfg: cfg, src: src}
	return p.parseBlocks()
}

type parser struct {
	cfg *Config
	src string
	pos int
}

// parseBlocks drives the line-oriented block grammar. Every iteration starts
// at the beginning of a line. Newline runs between lines become Newline or
// ParagraphBreak nodes; the newline terminating a block construct (heading,
// table, list, divider, redirect) is part of that construct's syntax and
// produces no node.
func (p *parser) parseBlocks() ([]Node, error) {
	var nodes []Node
	if p.consumeBlankRun() > 0 {
		nodes = append(nodes, &ParagraphBreak{})
	}
	for p.pos < len(p.src) {
		line, isBlock, err := p.parseBlockLine()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, line...)

		nl := p.consumeBlankRun()
		switch {
		case isBlock && nl >= 2:
			nodes = append(nodes, &ParagraphBreak{})
		case !isBlock && nl == 1:
			nodes = append(nodes, &Newline{})
		case !isBlock && nl >= 2:
			nodes = append(nodes, &ParagraphBreak{})
		}
	}
	return nodes, nil
}

// consumeBlankRun advances past newlines and whitespace-only lines, returning
// the number of newline characters consumed.
func (p *parser) consumeBlankRun() int {
	n := 0
	for p.pos < len(p.src) {
		if p.src[p.pos] == '\n' {
			n++
			p.pos++
			continue
		}
		j := p.pos
		for j < len(p.src) && (p.src[j] == ' ' || p.src[j] == '\t' || p.src[j] == '\r') {
			j++
		}
		if j > p.pos && (j >= len(p.src) || p.src[j] == '\n') {
			p.pos = j
			continue
		}
		break
	}
	return n
}

// parseBlockLine parses one construct starting at the current line. The bool
// result reports whether it was a block construct (its trailing newline is
// structural) or inline paragraph content.
func (p *parser) parseBlockLine() ([]Node, bool, error) {
	rest := p.src[p.pos:]
	switch {
	case strings.HasPrefix(rest, "{|"):
		t, err := p.parseTable()
		if err != nil {
			return nil, false, err
		}
		return []Node{t}, true, nil
	case p.redirectAlias(rest) != "":
		if n := p.parseRedirect(); n != nil {
			return []Node{n}, true, nil
		}
		// Alias without a link target is ordinary text.
		return p.parseContentLine()
	case isDividerLine(p.peekLine()):
		p.pos += len(p.peekLine())
		return []Node{&HorizontalDivider{}}, true, nil
	case strings.HasPrefix(rest, "="):
		if h, ok, err := p.parseHeading(); ok || err != nil {
			if err != nil {
				return nil, false, err
			}
			return []Node{h}, true, nil
		}
		return p.parseContentLine()
	case rest[0] == '*' || rest[0] == '#':
		lists, err := p.parseLists()
		if err != nil {
			return nil, false, err
		}
		return lists, true, nil
	default:
		return p.parseContentLine()
	}
}

// peekLine returns the raw text from the current position to the end of the
// current physical line, without advancing.
func (p *parser) peekLine() string {
	if i := strings.IndexByte(p.src[p.pos:], '\n'); i >= 0 {
		return p.src[p.pos : p.pos+i]
	}
	return p.src[p.pos:]
}

func isDividerLine(line string) bool {
	trimmed := strings.TrimRight(line, " \t\r")
	if len(trimmed) < 4 {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != '-' {
			return false
		}
	}
	return true
}

// redirectAlias returns the matching alias when rest begins with one of the
// configured redirect directives.
func (p *parser) redirectAlias(rest string) string {
	for _, alias := range p.cfg.RedirectAliases {
		if len(rest) >= len(alias) && strings.EqualFold(rest[:len(alias)], alias) {
			return alias
		}
	}
	return ""
}

// parseRedirect consumes a "#REDIRECT [[Target]]" line. Returns nil without
// advancing when the line carries no link target.
func (p *parser) parseRedirect() Node {
	line := p.peekLine()
	alias := p.redirectAlias(line)
	rest := line[len(alias):]
	open := strings.Index(rest, "[[")
	if open < 0 {
		return nil
	}
	close_ := strings.Index(rest[open+2:], "]]")
	if close_ < 0 {
		return nil
	}
	target := rest[open+2 : open+2+close_]
	if i := strings.IndexByte(target, '|'); i >= 0 {
		target = target[:i]
	}
	p.pos += len(line)
	return &Redirect{Target: strings.TrimSpace(target)}
}

// parseHeading recognizes "== Title ==" lines. The level is the smaller of
// the leading and trailing runs of '=', capped at six.
func (p *parser) parseHeading() (Node, bool, error) {
	line := strings.TrimRight(p.peekLine(), " \t\r")
	lead := 0
	for lead < len(line) && line[lead] == '=' {
		lead++
	}
	trail := 0
	for trail < len(line)-lead && line[len(line)-1-trail] == '=' {
		trail++
	}
	level := lead
	if trail < level {
		level = trail
	}
	if level > 6 {
		level = 6
	}
	if level == 0 || len(line) < 2*level+1 {
		return nil, false, nil
	}
	inner := strings.TrimSpace(line[level : len(line)-level])
	if inner == "" {
		return nil, false, nil
	}
	children, err := p.parseInlineString(inner)
	if err != nil {
		return nil, false, err
	}
	p.pos += len(p.peekLine())
	return &Heading{Level: level, Children: children}, true, nil
}

// parseContentLine consumes one logical line of paragraph content. A logical
// line extends past physical newlines while a template, link, or tag opened
// on it is still unclosed.
func (p *parser) parseContentLine() ([]Node, bool, error) {
	end := p.scanLogicalLineEnd()
	chunk := p.src[p.pos:end]
	nodes, err := p.parseInlineString(chunk)
	if err != nil {
		return nil, false, err
	}
	p.pos = end
	return nodes, false, nil
}

// scanLogicalLineEnd finds the newline terminating the current logical line,
// skipping newlines inside balanced {{ }}, [[ ]], comments, and open tags.
func (p *parser) scanLogicalLineEnd() int {
	i := p.pos
	braces, brackets, tags := 0, 0, 0
	for i < len(p.src) {
		rest := p.src[i:]
		switch {
		case strings.HasPrefix(rest, "<!--"):
			if end := strings.Index(rest[4:], "-->"); end >= 0 {
				i += 4 + end + 3
			} else {
				i = len(p.src)
			}
		case strings.HasPrefix(rest, "{{"):
			braces++
			i += 2
		case strings.HasPrefix(rest, "}}"):
			if braces > 0 {
				braces--
			}
			i += 2
		case strings.HasPrefix(rest, "[["):
			brackets++
			i += 2
		case strings.HasPrefix(rest, "]]"):
			if brackets > 0 {
				brackets--
			}
			i += 2
		case rest[0] == '<':
			open, close_, width := scanTagToken(rest)
			if close_ && tags > 0 {
				tags--
			} else if open {
				tags++
			}
			i += width
		case rest[0] == '\n':
			if braces == 0 && brackets == 0 && tags == 0 {
				return i
			}
			i++
		default:
			i++
		}
	}
	return len(p.src)
}

// scanTagToken inspects a "<" at the start of s. It reports whether the token
// opens a tag that needs a closer, whether it is a closing tag, and how many
// bytes to skip.
func scanTagToken(s string) (open, close_ bool, width int) {
	if len(s) < 2 {
		return false, false, 1
	}
	if s[1] == '/' {
		gt := tagEnd(s)
		if gt < 0 {
			return false, false, 1
		}
		return false, true, gt + 1
	}
	if !isTagNameStart(s[1]) {
		return false, false, 1
	}
	gt := tagEnd(s)
	if gt < 0 {
		return false, false, 1
	}
	name := tagName(s[1:])
	if strings.HasSuffix(strings.TrimRight(s[:gt], " \t"), "/") || voidTags[strings.ToLower(name)] {
		return false, false, gt + 1
	}
	return true, false, gt + 1
}

// tagEnd returns the index of the '>' closing the tag token, or -1 when the
// line ends first. Tag tokens do not span lines.
func tagEnd(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '>':
			return i
		case '\n':
			return -1
		}
	}
	return -1
}

func isTagNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func tagName(s string) string {
	i := 0
	for i < len(s) && (isTagNameStart(s[i]) || s[i] >= '0' && s[i] <= '9') {
		i++
	}
	return s[:i]
}

// --- lists ---

type listLine struct {
	markers string
	content string
}

// parseLists consumes a run of consecutive list lines and builds the list
// nodes. Sibling runs of different markers at depth one produce separate
// lists.
func (p *parser) parseLists() ([]Node, error) {
	var lines []listLine
	for p.pos < len(p.src) {
		if p.src[p.pos] != '*' && p.src[p.pos] != '#' {
			break
		}
		line := p.peekLine()
		d := 0
		for d < len(line) && (line[d] == '*' || line[d] == '#') {
			d++
		}
		lines = append(lines, listLine{markers: line[:d], content: strings.TrimSpace(line[d:])})
		p.pos += len(line)
		if p.pos < len(p.src) && p.src[p.pos] == '\n' {
			// The newline between two list lines is structural, but only
			// consume it when the next line continues the list.
			next := p.pos + 1
			if next < len(p.src) && (p.src[next] == '*' || p.src[next] == '#') {
				p.pos = next
				continue
			}
		}
		break
	}
	var nodes []Node
	for i := 0; i < len(lines); {
		list, consumed, err := p.buildList(lines[i:], 1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, list)
		i += consumed
	}
	return nodes, nil
}

// buildList assembles one list from lines whose marker depth is at least
// depth. Deeper runs become nested list nodes appended to the enclosing
// item's content.
func (p *parser) buildList(lines []listLine, depth int) (Node, int, error) {
	marker := lines[0].markers[depth-1]
	var items []*ListItem
	i := 0
	for i < len(lines) {
		d := len(lines[i].markers)
		if d < depth || lines[i].markers[depth-1] != marker {
			break
		}
		if d == depth {
			content, err := p.parseInlineString(lines[i].content)
			if err != nil {
				return nil, 0, err
			}
			items = append(items, &ListItem{Content: content})
			i++
			continue
		}
		// Deeper line: nest under the most recent item.
		if len(items) == 0 {
			items = append(items, &ListItem{})
		}
		sub, consumed, err := p.buildList(lines[i:], depth+1)
		if err != nil {
			return nil, 0, err
		}
		last := items[len(items)-1]
		last.Content = append(last.Content, sub)
		i += consumed
	}
	if marker == '#' {
		return &OrderedList{Items: items}, i, nil
	}
	return &UnorderedList{Items: items}, i, nil
}

// --- tables ---

// parseTable consumes a "{| ... |}" block. Lines inside the table are
// structural when they start with a table marker; anything else continues the
// current cell.
func (p *parser) parseTable() (Node, error) {
	start := p.pos
	p.pos += 2
	t := &Table{}
	attrText := strings.TrimSpace(p.peekLine())
	p.pos += len(p.peekLine())
	if attrText != "" {
		attrs, err := p.parseInlineString(attrText)
		if err != nil {
			return nil, err
		}
		t.Attributes = attrs
	}

	var row *TableRow
	var cell *TableCell
	blanks := 0
	for {
		if p.pos >= len(p.src) {
			return nil, &ParseError{Text: p.src[start:], Reason: "unterminated table"}
		}
		if p.src[p.pos] == '\n' {
			p.pos++
		}
		blanks += p.countBlankLines()
		if p.pos >= len(p.src) {
			return nil, &ParseError{Text: p.src[start:], Reason: "unterminated table"}
		}

		line := p.peekLine()
		switch {
		case strings.HasPrefix(line, "|}"):
			p.pos += len(line)
			t.Rows = pruneEmptyRows(t.Rows)
			return t, nil
		case strings.HasPrefix(line, "{|"):
			// Nested table, collected into the current cell.
			if cell == nil {
				return nil, &ParseError{Text: line, Reason: "table start outside a cell"}
			}
			nested, err := p.parseTable()
			if err != nil {
				return nil, err
			}
			cell.Content = append(cell.Content, nested)
		case strings.HasPrefix(line, "|+"):
			caption, err := p.parseCaptionLine(line[2:])
			if err != nil {
				return nil, err
			}
			t.Captions = append(t.Captions, caption)
			p.pos += len(line)
			cell = nil
		case strings.HasPrefix(line, "|-"):
			attrs, err := p.parseAttrChunk(line[2:])
			if err != nil {
				return nil, err
			}
			row = &TableRow{Attributes: attrs}
			t.Rows = append(t.Rows, row)
			p.pos += len(line)
			cell = nil
		case strings.HasPrefix(line, "!"):
			if row == nil {
				row = &TableRow{}
				t.Rows = append(t.Rows, row)
			}
			cells, err := p.parseCellLine(line[1:], "!!")
			if err != nil {
				return nil, err
			}
			row.Cells = append(row.Cells, cells...)
			if len(cells) > 0 {
				cell = cells[len(cells)-1]
			}
			p.pos += len(line)
		case strings.HasPrefix(line, "|"):
			if row == nil {
				row = &TableRow{}
				t.Rows = append(t.Rows, row)
			}
			cells, err := p.parseCellLine(line[1:], "||")
			if err != nil {
				return nil, err
			}
			row.Cells = append(row.Cells, cells...)
			if len(cells) > 0 {
				cell = cells[len(cells)-1]
			}
			p.pos += len(line)
		default:
			// With a cell open, the line continues that cell's content.
			// At structural position, a template invocation joins the
			// current row's attribute list so expansion gets a turn at it;
			// anything else there is malformed.
			if cell == nil {
				if !strings.HasPrefix(line, "{{") {
					return nil, &ParseError{Text: line, Reason: "table content outside a cell"}
				}
				attrs, err := p.parseInlineString(line)
				if err != nil {
					return nil, err
				}
				if row == nil {
					row = &TableRow{}
					t.Rows = append(t.Rows, row)
				}
				row.Attributes = append(row.Attributes, attrs...)
				p.pos += len(line)
				break
			}
			more, err := p.parseInlineString(line)
			if err != nil {
				return nil, err
			}
			if blanks > 0 {
				cell.Content = append(cell.Content, &ParagraphBreak{})
			} else {
				cell.Content = append(cell.Content, &Newline{})
			}
			cell.Content = append(cell.Content, more...)
			p.pos += len(line)
		}
		blanks = 0
	}
}

// countBlankLines consumes whitespace-only lines, returning how many were
// skipped. Unlike consumeBlankRun it leaves the newline before the next
// content line unconsumed only when it terminates input.
func (p *parser) countBlankLines() int {
	n := 0
	for p.pos < len(p.src) {
		line := p.peekLine()
		if strings.TrimSpace(line) != "" {
			break
		}
		n++
		p.pos += len(line)
		if p.pos < len(p.src) && p.src[p.pos] == '\n' {
			p.pos++
		}
	}
	return n
}

// pruneEmptyRows drops rows that picked up neither cells nor attribute
// content, such as a trailing "|-" before "|}".
func pruneEmptyRows(rows []*TableRow) []*TableRow {
	out := rows[:0]
	for _, r := range rows {
		if len(r.Cells) > 0 || len(r.Attributes) > 0 {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseCaptionLine parses the text after "|+". An optional attribute segment
// is separated from the caption content by a single top-level pipe.
func (p *parser) parseCaptionLine(rest string) (*TableCaption, error) {
	attrText, content := splitCellAttributes(rest)
	caption := &TableCaption{}
	var err error
	if attrText != "" {
		if caption.Attributes, err = p.parseInlineString(attrText); err != nil {
			return nil, err
		}
	}
	if caption.Content, err = p.parseInlineString(strings.TrimSpace(content)); err != nil {
		return nil, err
	}
	return caption, nil
}

// parseCellLine parses the text after a leading "|" or "!". Cells on the same
// line are separated by sep ("||" or "!!"); each may carry an attribute
// segment before a single top-level pipe.
func (p *parser) parseCellLine(rest string, sep string) ([]*TableCell, error) {
	var cells []*TableCell
	for _, chunk := range splitTopLevel(rest, sep) {
		attrText, content := splitCellAttributes(chunk)
		cell := &TableCell{}
		var err error
		if attrText != "" {
			if cell.Attributes, err = p.parseInlineString(attrText); err != nil {
				return nil, err
			}
		}
		if cell.Content, err = p.parseInlineString(strings.TrimSpace(content)); err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// parseAttrChunk parses a raw attribute segment into nodes, so template
// invocations written in attribute position take part in expansion.
func (p *parser) parseAttrChunk(s string) ([]Node, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return p.parseInlineString(s)
}

// splitCellAttributes splits a cell chunk at its first top-level single pipe.
// The double-pipe separator never reaches here; pipes inside braces and
// brackets do not count.
func splitCellAttributes(chunk string) (attrs, content string) {
	i := topLevelIndex(chunk, "|")
	if i < 0 {
		return "", chunk
	}
	return strings.TrimSpace(chunk[:i]), chunk[i+1:]
}

// splitTopLevel splits s on sep occurrences outside {{ }}, {{{ }}}, and
// [[ ]] pairs.
func splitTopLevel(s, sep string) []string {
	var parts []string
	start := 0
	double, triple, brackets := 0, 0, 0
	for i := 0; i < len(s); {
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, "{{{"):
			triple++
			i += 3
		case strings.HasPrefix(rest, "{{"):
			double++
			i += 2
		case strings.HasPrefix(rest, "}}}") && triple > 0:
			triple--
			i += 3
		case strings.HasPrefix(rest, "}}"):
			if double > 0 {
				double--
			}
			i += 2
		case strings.HasPrefix(rest, "[["):
			brackets++
			i += 2
		case strings.HasPrefix(rest, "]]"):
			if brackets > 0 {
				brackets--
			}
			i += 2
		case double == 0 && triple == 0 && brackets == 0 && strings.HasPrefix(rest, sep):
			parts = append(parts, s[start:i])
			i += len(sep)
			start = i
		default:
			i++
		}
	}
	return append(parts, s[start:])
}

// topLevelIndex returns the index of the first occurrence of sep outside
// braces and brackets, or -1.
func topLevelIndex(s, sep string) int {
	double, triple, brackets := 0, 0, 0
	for i := 0; i < len(s); {
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, "{{{"):
			triple++
			i += 3
		case strings.HasPrefix(rest, "{{"):
			double++
			i += 2
		case strings.HasPrefix(rest, "}}}") && triple > 0:
			triple--
			i += 3
		case strings.HasPrefix(rest, "}}"):
			if double > 0 {
				double--
			}
			i += 2
		case strings.HasPrefix(rest, "[["):
			brackets++
			i += 2
		case strings.HasPrefix(rest, "]]"):
			if brackets > 0 {
				brackets--
			}
			i += 2
		case double == 0 && triple == 0 && brackets == 0 && strings.HasPrefix(rest, sep):
			return i
		default:
			i++
		}
	}
	return -1
}

// --- inline ---

func (p *parser) parseInlineString(s string) ([]Node, error) {
	ip := &inline{cfg: p.cfg, src: s}
	nodes, _, err := ip.parseNodes("")
	return nodes, err
}

type inline struct {
	cfg *Config
	src string
	pos int
}

// parseNodes parses inline markup until stop appears at nesting level zero,
// or until the end of input when stop is empty. The bool result reports
// whether stop was found.
func (p *inline) parseNodes(stop string) ([]Node, bool, error) {
	var nodes []Node
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, &Text{Text: text.String()})
			text.Reset()
		}
	}
	for p.pos < len(p.src) {
		rest := p.src[p.pos:]
		if stop != "" && strings.HasPrefix(rest, stop) {
			flush()
			p.pos += len(stop)
			return nodes, true, nil
		}
		switch {
		case strings.HasPrefix(rest, "<!--"):
			if end := strings.Index(rest[4:], "-->"); end >= 0 {
				p.pos += 4 + end + 3
			} else {
				p.pos = len(p.src)
			}
		case strings.HasPrefix(rest, "{{{"):
			n, err := p.parseParameterUse()
			if err != nil {
				return nil, false, err
			}
			flush()
			nodes = append(nodes, n)
		case strings.HasPrefix(rest, "{{"):
			n, err := p.parseTemplate()
			if err != nil {
				return nil, false, err
			}
			flush()
			nodes = append(nodes, n)
		case strings.HasPrefix(rest, "[["):
			n, err := p.parseLink()
			if err != nil {
				return nil, false, err
			}
			flush()
			nodes = append(nodes, n)
		case rest[0] == '[' && p.extLinkAhead():
			n, err := p.parseExtLink()
			if err != nil {
				return nil, false, err
			}
			flush()
			nodes = append(nodes, n)
		case strings.HasPrefix(rest, "'''"):
			save := p.pos
			p.pos += 3
			children, found, err := p.parseNodes("'''")
			if err != nil {
				return nil, false, err
			}
			if !found {
				p.pos = save + 3
				text.WriteString("'''")
				continue
			}
			flush()
			nodes = append(nodes, &Bold{Children: children})
		case strings.HasPrefix(rest, "''"):
			save := p.pos
			p.pos += 2
			children, found, err := p.parseNodes("''")
			if err != nil {
				return nil, false, err
			}
			if !found {
				p.pos = save + 2
				text.WriteString("''")
				continue
			}
			flush()
			nodes = append(nodes, &Italic{Children: children})
		case rest[0] == '<':
			n, literal, err := p.parseTag()
			if err != nil {
				return nil, false, err
			}
			if literal {
				text.WriteByte('<')
				p.pos++
				continue
			}
			flush()
			nodes = append(nodes, n)
		case rest[0] == '\n':
			flush()
			nodes = append(nodes, &Newline{})
			p.pos++
		default:
			text.WriteByte(rest[0])
			p.pos++
		}
	}
	flush()
	return nodes, stop == "", nil
}

// parseTemplate consumes "{{Name|params...}}". Parameter values are captured
// as raw text; positional parameters are named "1", "2", and so on.
func (p *inline) parseTemplate() (Node, error) {
	start := p.pos
	p.pos += 2
	inner, ok := p.scanBraced("}}")
	if !ok {
		return nil, &ParseError{Text: p.src[start:], Reason: "unclosed template"}
	}
	segs := splitTopLevel(inner, "|")
	name := strings.TrimSpace(segs[0])
	if name == "" {
		return nil, &ParseError{Text: p.src[start:p.pos], Reason: "empty template name"}
	}
	var params []TemplateParameter
	ordinal := 0
	for _, seg := range segs[1:] {
		if k := topLevelIndex(seg, "="); k >= 0 {
			params = append(params, TemplateParameter{
				Name:  strings.TrimSpace(seg[:k]),
				Value: strings.TrimSpace(seg[k+1:]),
			})
			continue
		}
		ordinal++
		params = append(params, TemplateParameter{Name: strconv.Itoa(ordinal), Value: seg})
	}
	return &Template{Name: name, Parameters: params}, nil
}

// parseParameterUse consumes "{{{name|default}}}". The default, when written,
// is parsed into nodes; a pipe with nothing after it is an explicit empty
// default.
func (p *inline) parseParameterUse() (Node, error) {
	start := p.pos
	p.pos += 3
	inner, ok := p.scanBraced("}}}")
	if !ok {
		return nil, &ParseError{Text: p.src[start:], Reason: "unclosed parameter placeholder"}
	}
	name := inner
	var defaultSrc *string
	if i := topLevelIndex(inner, "|"); i >= 0 {
		name = inner[:i]
		rest := inner[i+1:]
		defaultSrc = &rest
	}
	use := &TemplateParameterUse{Name: strings.TrimSpace(name)}
	if defaultSrc != nil {
		sub := &inline{cfg: p.cfg, src: *defaultSrc}
		nodes, _, err := sub.parseNodes("")
		if err != nil {
			return nil, err
		}
		if nodes == nil {
			nodes = []Node{}
		}
		use.Default = nodes
	}
	return use, nil
}

// scanBraced advances past the text up to closer at nesting level zero and
// returns it. Both double and triple brace pairs nest.
func (p *inline) scanBraced(closer string) (string, bool) {
	double, triple, brackets := 0, 0, 0
	start := p.pos
	for i := p.pos; i < len(p.src); {
		rest := p.src[i:]
		if double == 0 && triple == 0 && brackets == 0 && strings.HasPrefix(rest, closer) {
			p.pos = i + len(closer)
			return p.src[start:i], true
		}
		switch {
		case strings.HasPrefix(rest, "{{{"):
			triple++
			i += 3
		case strings.HasPrefix(rest, "{{"):
			double++
			i += 2
		case strings.HasPrefix(rest, "}}}") && triple > 0:
			triple--
			i += 3
		case strings.HasPrefix(rest, "}}"):
			if double > 0 {
				double--
			}
			i += 2
		case strings.HasPrefix(rest, "[["):
			brackets++
			i += 2
		case strings.HasPrefix(rest, "]]"):
			if brackets > 0 {
				brackets--
			}
			i += 2
		default:
			i++
		}
	}
	return "", false
}

// parseLink consumes "[[Title|Text]]". The display text stays raw; nested
// markup inside it is not modeled.
func (p *inline) parseLink() (Node, error) {
	start := p.pos
	p.pos += 2
	depth := 1
	i := p.pos
	for i < len(p.src) && depth > 0 {
		switch {
		case strings.HasPrefix(p.src[i:], "[["):
			depth++
			i += 2
		case strings.HasPrefix(p.src[i:], "]]"):
			depth--
			i += 2
		default:
			i++
		}
	}
	if depth != 0 {
		return nil, &ParseError{Text: p.src[start:], Reason: "unclosed internal link"}
	}
	inner := p.src[p.pos : i-2]
	p.pos = i
	title, text := inner, inner
	if k := strings.IndexByte(inner, '|'); k >= 0 {
		title = inner[:k]
		text = inner[k+1:]
	}
	return &Link{Text: text, Title: strings.TrimSpace(title)}, nil
}

func (p *inline) extLinkAhead() bool {
	rest := p.src[p.pos+1:]
	for _, proto := range p.cfg.Protocols {
		if len(rest) >= len(proto) && strings.EqualFold(rest[:len(proto)], proto) {
			return true
		}
	}
	return false
}

// parseExtLink consumes "[url]" or "[url display text]".
func (p *inline) parseExtLink() (Node, error) {
	start := p.pos
	p.pos++
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return nil, &ParseError{Text: p.src[start:], Reason: "unclosed external link"}
	}
	inner := p.src[p.pos : p.pos+end]
	p.pos += end + 1
	link, text := inner, ""
	if k := strings.IndexByte(inner, ' '); k >= 0 {
		link = inner[:k]
		text = strings.TrimSpace(inner[k+1:])
	}
	return &ExtLink{Link: link, Text: text}, nil
}

// parseTag handles "<name attrs>...</name>", self-closing and void tags, and
// falls back to literal text for anything that is not a tag. Tags whose names
// have dedicated node variants map to them when they carry no attributes.
func (p *inline) parseTag() (Node, bool, error) {
	rest := p.src[p.pos:]
	if len(rest) < 2 || !isTagNameStart(rest[1]) {
		return nil, true, nil
	}
	gt := tagEnd(rest)
	if gt < 0 {
		return nil, true, nil
	}
	name := tagName(rest[1:])
	inside := strings.TrimSpace(rest[1+len(name) : gt])
	selfClosed := strings.HasSuffix(inside, "/")
	attrs := strings.TrimSpace(strings.TrimSuffix(inside, "/"))
	p.pos += gt + 1

	if selfClosed || voidTags[strings.ToLower(name)] {
		return &Tag{Name: name, Attributes: attrs}, false, nil
	}

	children, found, err := p.parseNodes("</" + name + ">")
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, &ParseError{Text: rest, Reason: fmt.Sprintf("unclosed tag <%s>", name)}
	}
	if children == nil {
		children = []Node{}
	}
	if attrs == "" {
		switch strings.ToLower(name) {
		case "sup":
			return &Superscript{Children: children}, false, nil
		case "sub":
			return &Subscript{Children: children}, false, nil
		case "small":
			return &Small{Children: children}, false, nil
		case "blockquote":
			return &Blockquote{Children: children}, false, nil
		case "pre":
			return &Preformatted{Children: children}, false, nil
		}
	}
	return &Tag{Name: name, Attributes: attrs, Children: children}, false, nil
}
