package templates

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/wikitools/wikigen/internal/page"
	"github.com/wikitools/wikigen/internal/wikitext"
)

// magicSubPageName resolves from the page context without touching the
// store. The name matches case-insensitively.
const magicSubPageName = "subpagename"

// ErrCycle is wrapped by expansion failures caused by self-referential
// templates.
var ErrCycle = errors.New("template cycle")

// CycleError reports a template name that was re-entered while its own
// expansion was still in progress.
type CycleError struct {
	Name  string
	Stack []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("template cycle at %q (expanding %s)", e.Name, strings.Join(e.Stack, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// Registry parses templates on first use and instantiates them against
// invocation arguments and the page being generated. Parsed trees are cached
// by normalized name; every instantiation works on a deep clone, so the
// cache is never mutated after insertion.
type Registry struct {
	cfg    *wikitext.Config
	loader Loader

	mu    sync.Mutex
	cache map[string]*wikitext.Fragment
}

// NewRegistry builds a registry over a template source.
func NewRegistry(loader Loader, cfg *wikitext.Config) *Registry {
	return &Registry{
		cfg:    cfg,
		loader: loader,
		cache:  make(map[string]*wikitext.Fragment),
	}
}

// expandState tracks the chain of template names currently expanding. A name
// seen twice on the chain is a cycle and fails fast instead of recursing
// until the stack gives out.
type expandState struct {
	active map[string]bool
	stack  []string
}

func newExpandState() *expandState {
	return &expandState{active: make(map[string]bool)}
}

func (s *expandState) enter(key, name string) {
	s.active[key] = true
	s.stack = append(s.stack, name)
}

func (s *expandState) leave(key string) {
	delete(s.active, key)
	s.stack = s.stack[:len(s.stack)-1]
}

// Instantiate expands the named template with the given arguments. The
// returned tree contains no Template or TemplateParameterUse nodes.
func (r *Registry) Instantiate(name string, params []wikitext.TemplateParameter, ctx *page.Context) (wikitext.Node, error) {
	return r.instantiateName(name, params, ctx, newExpandState())
}

// InstantiateNode expands every invocation inside an already parsed tree.
// An already resolved tree is returned as-is. The input is worked on in
// place; callers keeping the original should pass a clone.
func (r *Registry) InstantiateNode(node wikitext.Node, params []wikitext.TemplateParameter, ctx *page.Context) (wikitext.Node, error) {
	return r.instantiate(node, params, ctx, newExpandState())
}

// ResolveTree expands every template invocation in a document's node
// sequence, leaving all other nodes in place. Parameter placeholders written
// directly in a page are not touched; they only mean something inside a
// template body.
func (r *Registry) ResolveTree(nodes []wikitext.Node, ctx *page.Context) ([]wikitext.Node, error) {
	frag := &wikitext.Fragment{Children: wikitext.CloneNodes(nodes)}
	out, err := wikitext.VisitAndReplace(frag, func(n wikitext.Node) (wikitext.Node, error) {
		tpl, ok := n.(*wikitext.Template)
		if !ok {
			return n, nil
		}
		res, err := r.Instantiate(tpl.Name, tpl.Parameters, ctx)
		if err != nil {
			return nil, err
		}
		return unwrapFragment(res), nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*wikitext.Fragment).Children, nil
}

// instantiateName resolves a template name to its tree and expands it.
// The magic sub-page name short-circuits to the page context before any
// store lookup.
func (r *Registry) instantiateName(name string, params []wikitext.TemplateParameter, ctx *page.Context, st *expandState) (wikitext.Node, error) {
	if strings.EqualFold(name, magicSubPageName) {
		return &wikitext.Text{Text: ctx.SubPageName}, nil
	}
	key := Normalize(name)
	if st.active[key] {
		stack := append(append([]string{}, st.stack...), name)
		return nil, &CycleError{Name: name, Stack: stack}
	}
	tree, err := r.lookup(name, key)
	if err != nil {
		return nil, err
	}
	st.enter(key, name)
	defer st.leave(key)
	return r.instantiate(tree, params, ctx, st)
}

// lookup returns a private deep clone of the named template's parsed tree,
// parsing and caching it on first use.
func (r *Registry) lookup(name, key string) (*wikitext.Fragment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tree, ok := r.cache[key]; ok {
		return wikitext.Clone(tree).(*wikitext.Fragment), nil
	}
	src, err := r.loader.Load(name)
	if err != nil {
		return nil, err
	}
	nodes, err := wikitext.Parse(src, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", name, err)
	}
	tree := &wikitext.Fragment{Children: nodes}
	r.cache[key] = tree
	return wikitext.Clone(tree).(*wikitext.Fragment), nil
}

// instantiate runs the expansion loop on a tree that is already a private
// copy. After one substitution pass, trees holding a table iterate
// substitution in place until the serialized form stops changing; everything
// else roundtrips through text so invocations that arrived as raw argument
// values parse into real nodes, then recurses.
func (r *Registry) instantiate(node wikitext.Node, params []wikitext.TemplateParameter, ctx *page.Context, st *expandState) (wikitext.Node, error) {
	if !wikitext.ContainsUnresolved(node) {
		return node, nil
	}
	node, err := r.substitute(node, params, ctx, st)
	if err != nil {
		return nil, err
	}
	if wikitext.ContainsTable(node) {
		// Partially substituted table markup does not survive a whole-tree
		// reparse, so the textual roundtrip is off the table path.
		for {
			before := wikitext.ToWikitext(node)
			if node, err = r.substitute(node, params, ctx, st); err != nil {
				return nil, err
			}
			if wikitext.ToWikitext(node) == before {
				break
			}
		}
		if err := r.reparseTableCells(node, ctx, st); err != nil {
			return nil, err
		}
		return node, nil
	}
	text := wikitext.ToWikitext(node)
	nodes, err := wikitext.Parse(text, r.cfg)
	if err != nil {
		return nil, err
	}
	return r.instantiate(&wikitext.Fragment{Children: nodes}, params, ctx, st)
}

// substitute is one pass: every Template node is replaced by its expansion
// and every TemplateParameterUse by its argument, magic value, or default.
// Replacements are spliced in without being revisited within the pass.
func (r *Registry) substitute(node wikitext.Node, params []wikitext.TemplateParameter, ctx *page.Context, st *expandState) (wikitext.Node, error) {
	return wikitext.VisitAndReplace(node, func(n wikitext.Node) (wikitext.Node, error) {
		switch t := n.(type) {
		case *wikitext.Template:
			res, err := r.instantiateName(t.Name, t.Parameters, ctx, st)
			if err != nil {
				return nil, err
			}
			return unwrapFragment(res), nil
		case *wikitext.TemplateParameterUse:
			return r.resolvePlaceholder(t, params, ctx), nil
		default:
			return n, nil
		}
	})
}

// resolvePlaceholder picks the value for {{{name|default}}}: the matching
// argument wins, then the magic sub-page name, then the serialized default,
// then the empty string. Names match arguments case-sensitively; argument
// values substitute as opaque text and are never reparsed here.
func (r *Registry) resolvePlaceholder(use *wikitext.TemplateParameterUse, params []wikitext.TemplateParameter, ctx *page.Context) wikitext.Node {
	for _, p := range params {
		if p.Name == use.Name {
			return &wikitext.Text{Text: p.Value}
		}
	}
	if strings.EqualFold(use.Name, magicSubPageName) {
		return &wikitext.Text{Text: ctx.SubPageName}
	}
	if use.Default != nil {
		return &wikitext.Text{Text: wikitext.NodesToWikitext(use.Default)}
	}
	return &wikitext.Text{Text: ""}
}

func unwrapFragment(n wikitext.Node) wikitext.Node {
	if frag, ok := n.(*wikitext.Fragment); ok && len(frag.Children) == 1 {
		return frag.Children[0]
	}
	return n
}

// reparseTableCells finishes the table path. Because argument values
// substitute as opaque text, a cell may be left holding markup characters
// that deserve structure: such cells are reparsed in isolation and expanded
// again. Row and cell boundaries never reenter the parser, so a stray pipe
// in a value cannot corrupt the table shape.
func (r *Registry) reparseTableCells(node wikitext.Node, ctx *page.Context, st *expandState) error {
	var tables []*wikitext.Table
	wikitext.Visit(node, func(n wikitext.Node) {
		if t, ok := n.(*wikitext.Table); ok {
			tables = append(tables, t)
		}
	})
	for _, t := range tables {
		for _, row := range t.Rows {
			for _, cell := range row.Cells {
				if err := r.reparseCell(cell, ctx, st); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *Registry) reparseCell(cell *wikitext.TableCell, ctx *page.Context, st *expandState) error {
	text := wikitext.NodesToWikitext(cell.Content)
	if !strings.Contains(text, "[[") && !strings.Contains(text, "''") &&
		!strings.Contains(text, "{{") {
		return nil
	}
	nodes, err := wikitext.Parse(text, r.cfg)
	if err != nil {
		return err
	}
	res, err := r.instantiate(&wikitext.Fragment{Children: nodes}, nil, ctx, st)
	if err != nil {
		return err
	}
	if frag, ok := res.(*wikitext.Fragment); ok {
		cell.Content = frag.Children
	} else {
		cell.Content = []wikitext.Node{res}
	}
	return nil
}
