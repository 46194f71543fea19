package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/wikitools/wikigen/internal/config"
	"github.com/wikitools/wikigen/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build [source] [output]",
	Short: "Generate the static site from a source tree",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := "."
		if len(args) > 0 {
			source = args[0]
		}

		// Unless --config points elsewhere, the configuration lives in the
		// source tree.
		if !cmd.Flags().Changed("config") {
			configPath = filepath.Join(source, "site.hcl")
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		output := cfg.Paths.Output
		if len(args) > 1 {
			output = args[1]
		}

		start := time.Now()
		fmt.Printf("Building %s from %s...\n", output, source)

		gen := site.NewGenerator(osfs.New(source), output, cfg, logger)
		stats, err := gen.Generate()
		if err != nil {
			return err
		}

		fmt.Printf("Done in %v: %d pages, %d redirects, %d assets.\n",
			time.Since(start), stats.Pages, stats.Redirects, stats.Assets)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
