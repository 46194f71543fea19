package main

import "github.com/wikitools/wikigen/cmd"

func main() {
	cmd.Execute()
}
