package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wikitools/wikigen/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [index.db] [term]",
	Short: "Query a generated search index",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, err := search.Query(args[0], args[1])
		if err != nil {
			return err
		}
		if len(pages) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, p := range pages {
			fmt.Printf("%s\t%s\n", p.Route, p.Title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
