package wikitext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) []Node {
	t.Helper()
	nodes, err := Parse(src, DefaultConfig())
	require.NoError(t, err)
	return nodes
}

func TestParse_PlainText(t *testing.T) {
	nodes := mustParse(t, "Hello world")
	require.Len(t, nodes, 1)
	assert.Equal(t, &Text{Text: "Hello world"}, nodes[0])
}

func TestParse_LineAndParagraphBreaks(t *testing.T) {
	nodes := mustParse(t, "a\nb")
	assert.Equal(t, []Node{&Text{Text: "a"}, &Newline{}, &Text{Text: "b"}}, nodes)

	nodes = mustParse(t, "a\n\nb")
	assert.Equal(t, []Node{&Text{Text: "a"}, &ParagraphBreak{}, &Text{Text: "b"}}, nodes)

	// Runs of blank lines collapse into one paragraph break.
	nodes = mustParse(t, "a\n\n\n\nb")
	assert.Equal(t, []Node{&Text{Text: "a"}, &ParagraphBreak{}, &Text{Text: "b"}}, nodes)
}

func TestParse_TrailingAndLeadingBreaks(t *testing.T) {
	assert.Equal(t, []Node{&Text{Text: "a"}, &Newline{}}, mustParse(t, "a\n"))
	assert.Equal(t, []Node{&Text{Text: "a"}, &ParagraphBreak{}}, mustParse(t, "a\n\n"))
	assert.Equal(t, []Node{&ParagraphBreak{}, &Text{Text: "a"}}, mustParse(t, "\na"))
}

func TestParse_Headings(t *testing.T) {
	nodes := mustParse(t, "== Title ==")
	require.Len(t, nodes, 1)
	assert.Equal(t, &Heading{Level: 2, Children: []Node{&Text{Text: "Title"}}}, nodes[0])

	nodes = mustParse(t, "=top=")
	assert.Equal(t, &Heading{Level: 1, Children: []Node{&Text{Text: "top"}}}, nodes[0])

	nodes = mustParse(t, "====== deep ======")
	assert.Equal(t, &Heading{Level: 6, Children: []Node{&Text{Text: "deep"}}}, nodes[0])
}

func TestParse_HeadingConsumesItsNewline(t *testing.T) {
	nodes := mustParse(t, "== Title ==\ncontent")
	assert.Equal(t, []Node{
		&Heading{Level: 2, Children: []Node{&Text{Text: "Title"}}},
		&Text{Text: "content"},
	}, nodes)

	nodes = mustParse(t, "== Title ==\n\ncontent")
	assert.Equal(t, []Node{
		&Heading{Level: 2, Children: []Node{&Text{Text: "Title"}}},
		&ParagraphBreak{},
		&Text{Text: "content"},
	}, nodes)
}

func TestParse_BoldAndItalic(t *testing.T) {
	nodes := mustParse(t, "'''b''' and ''i''")
	assert.Equal(t, []Node{
		&Bold{Children: []Node{&Text{Text: "b"}}},
		&Text{Text: " and "},
		&Italic{Children: []Node{&Text{Text: "i"}}},
	}, nodes)
}

func TestParse_NestedQuotes(t *testing.T) {
	nodes := mustParse(t, "'''''both'''''")
	require.Len(t, nodes, 1)
	bold, ok := nodes[0].(*Bold)
	require.True(t, ok)
	require.Len(t, bold.Children, 1)
	assert.Equal(t, &Italic{Children: []Node{&Text{Text: "both"}}}, bold.Children[0])
}

func TestParse_UnclosedQuotesAreLiteral(t *testing.T) {
	nodes := mustParse(t, "a '''b")
	assert.Equal(t, []Node{&Text{Text: "a '''b"}}, nodes)
}

func TestParse_Links(t *testing.T) {
	nodes := mustParse(t, "[[Page]]")
	assert.Equal(t, []Node{&Link{Text: "Page", Title: "Page"}}, nodes)

	nodes = mustParse(t, "see [[Lua/Functions|the functions]]")
	assert.Equal(t, []Node{
		&Text{Text: "see "},
		&Link{Text: "the functions", Title: "Lua/Functions"},
	}, nodes)
}

func TestParse_ExternalLinks(t *testing.T) {
	nodes := mustParse(t, "[https://example.com Example site]")
	assert.Equal(t, []Node{&ExtLink{Link: "https://example.com", Text: "Example site"}}, nodes)

	nodes = mustParse(t, "[https://example.com]")
	assert.Equal(t, []Node{&ExtLink{Link: "https://example.com"}}, nodes)

	// A bracket without a known protocol is plain text.
	nodes = mustParse(t, "[note]")
	assert.Equal(t, []Node{&Text{Text: "[note]"}}, nodes)
}

func TestParse_Template(t *testing.T) {
	nodes := mustParse(t, "{{Foo}}")
	require.Len(t, nodes, 1)
	tpl, ok := nodes[0].(*Template)
	require.True(t, ok)
	assert.Equal(t, "Foo", tpl.Name)
	assert.Empty(t, tpl.Parameters)
}

func TestParse_TemplateParameters(t *testing.T) {
	nodes := mustParse(t, "{{Foo|x|k = v}}")
	require.Len(t, nodes, 1)
	tpl := nodes[0].(*Template)
	assert.Equal(t, []TemplateParameter{
		{Name: "1", Value: "x"},
		{Name: "k", Value: "v"},
	}, tpl.Parameters)
}

func TestParse_PositionalValuesKeptVerbatim(t *testing.T) {
	nodes := mustParse(t, "{{Foo| x }}")
	tpl := nodes[0].(*Template)
	assert.Equal(t, []TemplateParameter{{Name: "1", Value: " x "}}, tpl.Parameters)
}

func TestParse_NestedTemplateInValue(t *testing.T) {
	nodes := mustParse(t, "{{A|x={{B|1}}}}")
	tpl := nodes[0].(*Template)
	assert.Equal(t, []TemplateParameter{{Name: "x", Value: "{{B|1}}"}}, tpl.Parameters)
}

func TestParse_PlaceholderInValue(t *testing.T) {
	nodes := mustParse(t, "{{T|a={{{x|d}}}}}")
	tpl := nodes[0].(*Template)
	assert.Equal(t, []TemplateParameter{{Name: "a", Value: "{{{x|d}}}"}}, tpl.Parameters)
}

func TestParse_TemplateSpanningLines(t *testing.T) {
	nodes := mustParse(t, "{{Foo\n|a=1\n|b=2\n}}")
	require.Len(t, nodes, 1)
	tpl := nodes[0].(*Template)
	assert.Equal(t, "Foo", tpl.Name)
	assert.Equal(t, []TemplateParameter{
		{Name: "a", Value: "1"},
		{Name: "b", Value: "2"},
	}, tpl.Parameters)
}

func TestParse_ParameterUse(t *testing.T) {
	nodes := mustParse(t, "{{{name}}}")
	assert.Equal(t, []Node{&TemplateParameterUse{Name: "name"}}, nodes)

	nodes = mustParse(t, "{{{name|World}}}")
	assert.Equal(t, []Node{&TemplateParameterUse{
		Name:    "name",
		Default: []Node{&Text{Text: "World"}},
	}}, nodes)
}

func TestParse_ParameterUseEmptyDefault(t *testing.T) {
	nodes := mustParse(t, "{{{name|}}}")
	require.Len(t, nodes, 1)
	use := nodes[0].(*TemplateParameterUse)
	require.NotNil(t, use.Default)
	assert.Len(t, use.Default, 0)
}

func TestParse_CommentsAreStripped(t *testing.T) {
	nodes := mustParse(t, "a<!-- hidden -->b")
	assert.Equal(t, []Node{&Text{Text: "ab"}}, nodes)
}

func TestParse_Tags(t *testing.T) {
	nodes := mustParse(t, "x<sup>2</sup>")
	assert.Equal(t, []Node{
		&Text{Text: "x"},
		&Superscript{Children: []Node{&Text{Text: "2"}}},
	}, nodes)

	nodes = mustParse(t, `<span class="x">y</span>`)
	assert.Equal(t, []Node{&Tag{
		Name:       "span",
		Attributes: `class="x"`,
		Children:   []Node{&Text{Text: "y"}},
	}}, nodes)
}

func TestParse_SelfClosingAndVoidTags(t *testing.T) {
	nodes := mustParse(t, "a<br />b")
	assert.Equal(t, []Node{
		&Text{Text: "a"},
		&Tag{Name: "br"},
		&Text{Text: "b"},
	}, nodes)

	nodes = mustParse(t, "a<br>b")
	assert.Equal(t, []Node{
		&Text{Text: "a"},
		&Tag{Name: "br"},
		&Text{Text: "b"},
	}, nodes)
}

func TestParse_StrayAngleBracketIsLiteral(t *testing.T) {
	nodes := mustParse(t, "a < b")
	assert.Equal(t, []Node{&Text{Text: "a < b"}}, nodes)
}

func TestParse_Redirect(t *testing.T) {
	nodes := mustParse(t, "#REDIRECT [[Main Page]]")
	assert.Equal(t, []Node{&Redirect{Target: "Main Page"}}, nodes)

	// The directive matches case-insensitively.
	nodes = mustParse(t, "#redirect [[Main Page]]")
	assert.Equal(t, []Node{&Redirect{Target: "Main Page"}}, nodes)
}

func TestParse_RedirectWithoutTargetIsText(t *testing.T) {
	nodes := mustParse(t, "#REDIRECT nowhere")
	assert.Equal(t, []Node{&Text{Text: "#REDIRECT nowhere"}}, nodes)
}

func TestParse_HorizontalDivider(t *testing.T) {
	assert.Equal(t, []Node{&HorizontalDivider{}}, mustParse(t, "----"))
	assert.Equal(t, []Node{&HorizontalDivider{}}, mustParse(t, "--------"))
	assert.Equal(t, []Node{&Text{Text: "---"}}, mustParse(t, "---"))
}

func TestParse_UnorderedList(t *testing.T) {
	nodes := mustParse(t, "* a\n* b")
	assert.Equal(t, []Node{&UnorderedList{Items: []*ListItem{
		{Content: []Node{&Text{Text: "a"}}},
		{Content: []Node{&Text{Text: "b"}}},
	}}}, nodes)
}

func TestParse_OrderedList(t *testing.T) {
	nodes := mustParse(t, "# one\n# two")
	assert.Equal(t, []Node{&OrderedList{Items: []*ListItem{
		{Content: []Node{&Text{Text: "one"}}},
		{Content: []Node{&Text{Text: "two"}}},
	}}}, nodes)
}

func TestParse_NestedList(t *testing.T) {
	nodes := mustParse(t, "* a\n** b\n* c")
	assert.Equal(t, []Node{&UnorderedList{Items: []*ListItem{
		{Content: []Node{
			&Text{Text: "a"},
			&UnorderedList{Items: []*ListItem{{Content: []Node{&Text{Text: "b"}}}}},
		}},
		{Content: []Node{&Text{Text: "c"}}},
	}}}, nodes)
}

func TestParse_MixedMarkerListsSplit(t *testing.T) {
	nodes := mustParse(t, "* a\n# b")
	require.Len(t, nodes, 2)
	assert.IsType(t, &UnorderedList{}, nodes[0])
	assert.IsType(t, &OrderedList{}, nodes[1])
}

func TestParse_Table(t *testing.T) {
	src := "{| class=\"wikitable\"\n" +
		"|+ Caption\n" +
		"|-\n" +
		"! Name !! Value\n" +
		"|-\n" +
		"| align=\"right\" | A || B\n" +
		"|-\n" +
		"| {{Temp}} | C\n" +
		"|}"
	nodes := mustParse(t, src)
	require.Len(t, nodes, 1)
	table, ok := nodes[0].(*Table)
	require.True(t, ok)

	assert.Equal(t, []Node{&Text{Text: `class="wikitable"`}}, table.Attributes)
	require.Len(t, table.Captions, 1)
	assert.Equal(t, []Node{&Text{Text: "Caption"}}, table.Captions[0].Content)

	// Header cells become a plain row.
	require.Len(t, table.Rows, 3)
	require.Len(t, table.Rows[0].Cells, 2)
	assert.Equal(t, []Node{&Text{Text: "Name"}}, table.Rows[0].Cells[0].Content)
	assert.Equal(t, []Node{&Text{Text: "Value"}}, table.Rows[0].Cells[1].Content)

	require.Len(t, table.Rows[1].Cells, 2)
	assert.Equal(t, []Node{&Text{Text: `align="right"`}}, table.Rows[1].Cells[0].Attributes)
	assert.Equal(t, []Node{&Text{Text: "A"}}, table.Rows[1].Cells[0].Content)
	assert.Equal(t, []Node{&Text{Text: "B"}}, table.Rows[1].Cells[1].Content)

	// A template in attribute position stays a template node.
	require.Len(t, table.Rows[2].Cells, 1)
	require.Len(t, table.Rows[2].Cells[0].Attributes, 1)
	tpl, ok := table.Rows[2].Cells[0].Attributes[0].(*Template)
	require.True(t, ok)
	assert.Equal(t, "Temp", tpl.Name)
	assert.Equal(t, []Node{&Text{Text: "C"}}, table.Rows[2].Cells[0].Content)
}

// A template invocation at row position parses into the enclosing row's
// attribute list instead of failing the document.
func TestParse_TemplateAtRowPosition(t *testing.T) {
	nodes := mustParse(t, "{|\n{{Rows}}\n|}")
	table := nodes[0].(*Table)
	require.Len(t, table.Rows, 1)
	assert.Empty(t, table.Rows[0].Cells)
	require.Len(t, table.Rows[0].Attributes, 1)
	tpl, ok := table.Rows[0].Attributes[0].(*Template)
	require.True(t, ok)
	assert.Equal(t, "Rows", tpl.Name)
}

func TestParse_TemplateBetweenRowMarkerAndCells(t *testing.T) {
	nodes := mustParse(t, "{|\n|-\n{{Style}}\n| a\n|}")
	table := nodes[0].(*Table)
	require.Len(t, table.Rows, 1)
	require.Len(t, table.Rows[0].Attributes, 1)
	assert.Equal(t, "Style", table.Rows[0].Attributes[0].(*Template).Name)
	require.Len(t, table.Rows[0].Cells, 1)
	assert.Equal(t, []Node{&Text{Text: "a"}}, table.Rows[0].Cells[0].Content)
}

func TestParse_TableCellContinuationLines(t *testing.T) {
	src := "{|\n| first\nstill first\n| second\n|}"
	nodes := mustParse(t, src)
	table := nodes[0].(*Table)
	require.Len(t, table.Rows, 1)
	require.Len(t, table.Rows[0].Cells, 2)
	assert.Equal(t, []Node{
		&Text{Text: "first"},
		&Newline{},
		&Text{Text: "still first"},
	}, table.Rows[0].Cells[0].Content)
}

func TestParse_NestedTable(t *testing.T) {
	src := "{|\n| outer\n{|\n| inner\n|}\n| next\n|}"
	nodes := mustParse(t, src)
	table := nodes[0].(*Table)
	require.Len(t, table.Rows, 1)
	require.Len(t, table.Rows[0].Cells, 2)
	first := table.Rows[0].Cells[0].Content
	require.Len(t, first, 2)
	assert.Equal(t, &Text{Text: "outer"}, first[0])
	inner, ok := first[1].(*Table)
	require.True(t, ok)
	require.Len(t, inner.Rows, 1)
	assert.Equal(t, []Node{&Text{Text: "inner"}}, inner.Rows[0].Cells[0].Content)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unclosed template":    "{{Foo",
		"unclosed placeholder": "{{{name",
		"unterminated table":   "{| class=\"x\"\n| cell",
		"content outside cell": "{|\nstray\n|}",
		"unclosed tag":         "<span>oops",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(src, DefaultConfig())
			require.Error(t, err)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestParse_ErrorCarriesOffendingText(t *testing.T) {
	_, err := Parse("{{Broken", DefaultConfig())
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Text, "{{Broken")
}
