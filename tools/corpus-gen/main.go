// corpus-gen writes a randomized but well-formed wiki source tree. The output
// builds with `wikigen build` and doubles as a parser fuzz corpus: every page
// is generated from the node tree and serialized, so it is valid by
// construction.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/wikitools/wikigen/internal/wikitext"
)

func main() {
	outDir := flag.String("out", "corpus", "Output directory for the generated wiki")
	pageCount := flag.Int("pages", 20, "Number of content pages")
	tplCount := flag.Int("templates", 5, "Number of templates")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	g := &generator{
		rng:       rand.New(rand.NewSource(*seed)),
		templates: *tplCount,
	}

	// Templates first; page bodies invoke them by name.
	for i := 0; i < *tplCount; i++ {
		writeFile(*outDir, templateName(i)+".wikitext", g.templateBody(i))
	}
	for i := 0; i < *pageCount; i++ {
		name := fmt.Sprintf("wiki/Page_%02d", i)
		if g.rng.Intn(10) == 0 && i > 0 {
			writeFile(*outDir, name+".wikitext", fmt.Sprintf("#REDIRECT [[Page %02d]]\n", g.rng.Intn(i)))
			continue
		}
		writeFile(*outDir, name+".wikitext", g.pageBody())
	}
	writeFile(*outDir, "wiki/Main_Page.wikitext", g.pageBody())

	fmt.Printf("Generated %d pages and %d templates in %s\n", *pageCount+1, *tplCount, *outDir)
}

func templateName(i int) string {
	return fmt.Sprintf("wiki/Templates/T%d", i)
}

func writeFile(root, name, content string) {
	full := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

type generator struct {
	rng       *rand.Rand
	templates int
}

var words = []string{
	"cell", "sheet", "formula", "value", "range", "engine", "parser",
	"token", "scope", "module", "binding", "layout", "anchor", "frame",
}

func (g *generator) word() string {
	return words[g.rng.Intn(len(words))]
}

func (g *generator) sentence() string {
	n := 4 + g.rng.Intn(8)
	out := make([]byte, 0, n*8)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, g.word()...)
	}
	return string(append(out, '.'))
}

// templateBody builds a template source. Bodies only invoke higher-numbered
// templates, so the generated set is acyclic by construction.
func (g *generator) templateBody(i int) string {
	nodes := []wikitext.Node{
		&wikitext.Text{Text: g.word() + " "},
		&wikitext.TemplateParameterUse{
			Name:    "1",
			Default: []wikitext.Node{&wikitext.Text{Text: g.word()}},
		},
	}
	if next := i + 1; next < g.templates && g.rng.Intn(2) == 0 {
		nodes = append(nodes,
			&wikitext.Text{Text: " "},
			g.invocation(next, next),
		)
	}
	return wikitext.NodesToWikitext(nodes)
}

// invocation builds a template call; minTpl keeps template bodies acyclic.
func (g *generator) invocation(minTpl, maxTpl int) *wikitext.Template {
	idx := minTpl
	if maxTpl > minTpl {
		idx = minTpl + g.rng.Intn(maxTpl-minTpl)
	}
	tpl := &wikitext.Template{Name: fmt.Sprintf("Templates/T%d", idx)}
	if g.rng.Intn(2) == 0 {
		tpl.Parameters = []wikitext.TemplateParameter{{Name: "1", Value: g.word()}}
	}
	return tpl
}

func (g *generator) pageBody() string {
	var nodes []wikitext.Node
	sections := 1 + g.rng.Intn(3)
	for s := 0; s < sections; s++ {
		if s > 0 {
			nodes = append(nodes, &wikitext.Heading{Level: 2, Children: []wikitext.Node{&wikitext.Text{Text: g.word()}}})
		}
		nodes = append(nodes, g.paragraph()...)
		nodes = append(nodes, &wikitext.ParagraphBreak{})
	}
	switch g.rng.Intn(3) {
	case 0:
		nodes = append(nodes, g.list())
	case 1:
		nodes = append(nodes, g.table())
	}
	return wikitext.NodesToWikitext(nodes)
}

func (g *generator) paragraph() []wikitext.Node {
	nodes := []wikitext.Node{&wikitext.Text{Text: g.sentence() + " "}}
	switch g.rng.Intn(4) {
	case 0:
		nodes = append(nodes, &wikitext.Bold{Children: []wikitext.Node{&wikitext.Text{Text: g.word()}}})
	case 1:
		title := fmt.Sprintf("Page %02d", g.rng.Intn(10))
		nodes = append(nodes, &wikitext.Link{Title: title, Text: g.word()})
	case 2:
		nodes = append(nodes, &wikitext.ExtLink{Link: "https://example.com", Text: g.word()})
	case 3:
		if g.templates > 0 {
			nodes = append(nodes, g.invocation(0, g.templates))
		}
	}
	nodes = append(nodes, &wikitext.Text{Text: " " + g.sentence()})
	return nodes
}

func (g *generator) list() wikitext.Node {
	items := make([]*wikitext.ListItem, 2+g.rng.Intn(3))
	for i := range items {
		items[i] = &wikitext.ListItem{Content: []wikitext.Node{&wikitext.Text{Text: g.sentence()}}}
	}
	if g.rng.Intn(2) == 0 {
		return &wikitext.OrderedList{Items: items}
	}
	return &wikitext.UnorderedList{Items: items}
}

func (g *generator) table() wikitext.Node {
	t := &wikitext.Table{
		Attributes: []wikitext.Node{&wikitext.Text{Text: `class="wikitable"`}},
		Captions: []*wikitext.TableCaption{
			{Content: []wikitext.Node{&wikitext.Text{Text: "Name"}}},
			{Content: []wikitext.Node{&wikitext.Text{Text: "Value"}}},
		},
	}
	for r := 0; r < 1+g.rng.Intn(3); r++ {
		row := &wikitext.TableRow{}
		for c := 0; c < 2; c++ {
			cell := &wikitext.TableCell{Content: []wikitext.Node{&wikitext.Text{Text: g.word()}}}
			if g.templates > 0 && g.rng.Intn(4) == 0 {
				cell.Content = []wikitext.Node{g.invocation(0, g.templates)}
			}
			row.Cells = append(row.Cells, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
