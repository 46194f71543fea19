// Package site orchestrates a whole build: static assets, page generation
// with template expansion, build artifacts, and the optional search index.
package site

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/natefinch/atomic"

	"github.com/wikitools/wikigen/internal/config"
	"github.com/wikitools/wikigen/internal/html"
	"github.com/wikitools/wikigen/internal/page"
	"github.com/wikitools/wikigen/internal/render"
	"github.com/wikitools/wikigen/internal/search"
	"github.com/wikitools/wikigen/internal/templates"
	"github.com/wikitools/wikigen/internal/wikitext"
)

// Stats summarizes what one build produced.
type Stats struct {
	Pages     int
	Redirects int
	Assets    int
}

// Generator builds a site from a source tree into an output directory on
// disk. The source holds the wiki and static directories named in the
// configuration.
type Generator struct {
	source billy.Filesystem
	output string
	cfg    *config.Config
	markup *wikitext.Config
	logger *slog.Logger
}

// NewGenerator wires a generator over a source filesystem.
func NewGenerator(source billy.Filesystem, output string, cfg *config.Config, logger *slog.Logger) *Generator {
	return &Generator{
		source: source,
		output: output,
		cfg:    cfg,
		markup: wikitext.DefaultConfig(),
		logger: logger,
	}
}

// Generate builds the whole site. The output directory is recreated from
// scratch; a build that fails part way leaves no stale pages from an earlier
// run behind.
func (g *Generator) Generate() (*Stats, error) {
	if err := os.RemoveAll(g.output); err != nil {
		return nil, fmt.Errorf("clear output %s: %w", g.output, err)
	}
	if err := os.MkdirAll(g.output, 0o755); err != nil {
		return nil, fmt.Errorf("create output %s: %w", g.output, err)
	}

	stats := &Stats{}
	var err error
	if stats.Assets, err = g.copyStatic(); err != nil {
		return nil, err
	}
	if err := g.generateWiki(stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// copyStatic mirrors the static tree into the output root. A site with no
// static directory is fine.
func (g *Generator) copyStatic() (int, error) {
	staticDir := g.cfg.Paths.Static
	if _, err := g.source.Stat(staticDir); err != nil {
		if os.IsNotExist(err) {
			g.logger.Debug("no static directory, skipping", "path", staticDir)
			return 0, nil
		}
		return 0, fmt.Errorf("stat static directory %s: %w", staticDir, err)
	}
	staticFS, err := g.source.Chroot(staticDir)
	if err != nil {
		return 0, fmt.Errorf("open static directory %s: %w", staticDir, err)
	}

	copied := 0
	err = util.Walk(staticFS, ".", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		data, err := util.ReadFile(staticFS, p)
		if err != nil {
			return fmt.Errorf("read asset %s: %w", p, err)
		}
		dst := filepath.Join(g.output, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create asset directory: %w", err)
		}
		if err := atomic.WriteFile(dst, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("write asset %s: %w", dst, err)
		}
		copied++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("copy static assets: %w", err)
	}
	g.logger.Info("copied static assets", "count", copied)
	return copied, nil
}

func (g *Generator) generateWiki(stats *Stats) error {
	wikiDir := g.cfg.Paths.Wiki
	if _, err := g.source.Stat(wikiDir); err != nil {
		return fmt.Errorf("wiki directory %s: %w", wikiDir, err)
	}
	wikiFS, err := g.source.Chroot(wikiDir)
	if err != nil {
		return fmt.Errorf("open wiki directory %s: %w", wikiDir, err)
	}

	loader, err := templates.NewFSLoader(wikiFS)
	if err != nil {
		return err
	}
	g.logger.Info("scanned wiki tree", "templates", loader.Len())

	registry := templates.NewRegistry(loader, g.markup)
	renderer := render.NewRenderer(registry, wikiDir, g.logger)

	var indexer *search.Indexer
	if g.cfg.Search.Enabled {
		indexer, err = search.NewIndexer(filepath.Join(g.output, g.cfg.Search.Database))
		if err != nil {
			return err
		}
		defer func() { _ = indexer.Close() }()
	}

	err = util.Walk(wikiFS, ".", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || path.Ext(p) != ".wikitext" {
			return nil
		}
		redirected, err := g.generatePage(wikiFS, registry, renderer, indexer, p)
		if err != nil {
			return fmt.Errorf("generate %s: %w", p, err)
		}
		if redirected {
			stats.Redirects++
		} else {
			stats.Pages++
		}
		return nil
	})
	if err != nil {
		return err
	}

	// The wiki root serves a redirect to the configured main page.
	mainURL := html.PageRoute(wikiDir, g.cfg.Site.MainPage).URLPath()
	indexRoute := html.RoutePath{Dirs: []string{wikiDir}, File: "index.html"}
	if err := render.RedirectPage(mainURL).WriteToRoute(g.output, indexRoute); err != nil {
		return fmt.Errorf("write index redirect: %w", err)
	}

	if indexer != nil {
		if err := indexer.Flush(); err != nil {
			return fmt.Errorf("write search index: %w", err)
		}
		g.logger.Info("wrote search index", "database", g.cfg.Search.Database)
	}
	return nil
}

// generatePage builds one document: parse, dump the parsed tree, then either
// emit a redirect stub or expand templates and render the full page.
func (g *Generator) generatePage(wikiFS billy.Filesystem, registry *templates.Registry, renderer *render.Renderer, indexer *search.Indexer, inputPath string) (bool, error) {
	src, err := util.ReadFile(wikiFS, inputPath)
	if err != nil {
		return false, fmt.Errorf("read: %w", err)
	}
	nodes, err := wikitext.Parse(string(src), g.markup)
	if err != nil {
		return false, fmt.Errorf("parse: %w", err)
	}

	ctx := page.NewContext(g.cfg.Paths.Wiki, inputPath)
	g.logger.Debug("generating page", "title", ctx.Title, "route", ctx.Route.URLPath())

	if err := g.writeDump(ctx, nodes); err != nil {
		return false, err
	}

	// A document that is nothing but a redirect becomes a stub page.
	if len(nodes) == 1 {
		if r, ok := nodes[0].(*wikitext.Redirect); ok {
			to := html.PageRoute(g.cfg.Paths.Wiki, r.Target).URLPath()
			if err := render.RedirectPage(to).WriteToRoute(g.output, ctx.Route); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	resolved, err := registry.ResolveTree(nodes, ctx)
	if err != nil {
		return false, err
	}
	inner, err := renderer.Render(resolved, ctx)
	if err != nil {
		return false, err
	}
	if err := render.Layout(g.cfg, ctx.Title, inner).WriteToRoute(g.output, ctx.Route); err != nil {
		return false, err
	}

	if indexer != nil {
		indexer.AddPage(ctx.Title, ctx.Route.URLPath(), wikitext.PlainText(resolved))
	}
	return false, nil
}

// writeDump records the parsed tree next to the page as a build artifact.
func (g *Generator) writeDump(ctx *page.Context, nodes []wikitext.Node) error {
	data, err := wikitext.DumpJSON(nodes)
	if err != nil {
		return err
	}
	route := ctx.Route
	route.File = strings.TrimSuffix(route.File, ".html") + ".json"
	full := filepath.Join(g.output, route.FilePath())
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create dump directory: %w", err)
	}
	if err := atomic.WriteFile(full, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write dump %s: %w", full, err)
	}
	return nil
}
