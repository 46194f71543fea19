package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/wikitools/wikigen/internal/page"
	"github.com/wikitools/wikigen/internal/templates"
	"github.com/wikitools/wikigen/internal/wikitext"
)

var (
	dumpExpand  bool
	dumpWiki    string
	dumpSubpage string
	dumpQuery   string
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Print a wikitext file's parsed tree as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		src, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		markup := wikitext.DefaultConfig()
		nodes, err := wikitext.Parse(string(src), markup)
		if err != nil {
			return err
		}

		if dumpExpand {
			nodes, err = expandDump(nodes, input, markup)
			if err != nil {
				return err
			}
		}

		if dumpQuery != "" {
			x, err := jp.ParseString(dumpQuery)
			if err != nil {
				return fmt.Errorf("invalid jsonpath %q: %w", dumpQuery, err)
			}
			data, err := oj.Marshal(x.Get(wikitext.NodesJSON(nodes)), &ojg.Options{Sort: true, Indent: 2})
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		data, err := wikitext.DumpJSON(nodes)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

// expandDump resolves template invocations against the wiki tree before
// dumping. Templates are looked up relative to --wiki, or the file's own
// directory when unset.
func expandDump(nodes []wikitext.Node, input string, markup *wikitext.Config) ([]wikitext.Node, error) {
	root := dumpWiki
	if root == "" {
		root = filepath.Dir(input)
	}
	rel, err := filepath.Rel(root, input)
	if err != nil {
		return nil, fmt.Errorf("locate %s under %s: %w", input, root, err)
	}

	loader, err := templates.NewFSLoader(osfs.New(root))
	if err != nil {
		return nil, err
	}
	registry := templates.NewRegistry(loader, markup)

	ctx := page.NewContext(filepath.Base(root), filepath.ToSlash(rel))
	if dumpSubpage != "" {
		ctx.SubPageName = dumpSubpage
	}
	return registry.ResolveTree(nodes, ctx)
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpExpand, "expand", false, "Resolve template invocations before dumping")
	dumpCmd.Flags().StringVar(&dumpWiki, "wiki", "", "Wiki root templates resolve against (default: the file's directory)")
	dumpCmd.Flags().StringVar(&dumpSubpage, "subpage", "", "Value substituted for the SUBPAGENAME magic name")
	dumpCmd.Flags().StringVar(&dumpQuery, "query", "", "JSONPath expression applied to the dumped tree")
	rootCmd.AddCommand(dumpCmd)
}
