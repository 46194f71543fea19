// Package config loads the optional site.hcl file that customizes a build.
// Every setting has a default, so a site with no config file still builds.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Site holds the values woven into every generated page shell.
type Site struct {
	// Title prefixes every document title.
	Title string
	// Brand is the navbar brand text, linked to the wiki root.
	Brand string
	// MainPage is the page title the root index redirects to.
	MainPage string
	// WebsiteURL is the navbar's outbound link.
	WebsiteURL string
}

// Paths locates the source trees and the output root. Command-line
// arguments take precedence over these.
type Paths struct {
	Wiki   string
	Static string
	Output string
}

// Search controls the optional index artifact written after a build.
type Search struct {
	Enabled  bool
	Database string
}

// Config is the merged result of defaults and site.hcl.
type Config struct {
	Site   Site
	Paths  Paths
	Search Search
}

// Default returns the configuration used when site.hcl is absent.
func Default() *Config {
	return &Config{
		Site: Site{
			Title:      "Documentation",
			Brand:      "Wiki",
			MainPage:   "Main_Page",
			WebsiteURL: "/",
		},
		Paths: Paths{
			Wiki:   "wiki",
			Static: "static",
			Output: "output",
		},
		Search: Search{
			Enabled:  false,
			Database: "search.db",
		},
	}
}

// fileRoot decodes the top-level blocks of site.hcl. All attributes are
// pointers so absent values fall back to defaults instead of zeroing them.
type fileRoot struct {
	Site   *siteBlock   `hcl:"site,block"`
	Paths  *pathsBlock  `hcl:"paths,block"`
	Search *searchBlock `hcl:"search,block"`
}

type siteBlock struct {
	Title      *string `hcl:"title,optional"`
	Brand      *string `hcl:"brand,optional"`
	MainPage   *string `hcl:"main_page,optional"`
	WebsiteURL *string `hcl:"website_url,optional"`
}

type pathsBlock struct {
	Wiki   *string `hcl:"wiki,optional"`
	Static *string `hcl:"static,optional"`
	Output *string `hcl:"output,optional"`
}

type searchBlock struct {
	Enabled  *bool   `hcl:"enabled,optional"`
	Database *string `hcl:"database,optional"`
}

// Load reads path and merges it over the defaults. A missing file is not an
// error; the defaults come back unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("error accessing config %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, diags)
	}

	if b := root.Site; b != nil {
		setString(&cfg.Site.Title, b.Title)
		setString(&cfg.Site.Brand, b.Brand)
		setString(&cfg.Site.MainPage, b.MainPage)
		setString(&cfg.Site.WebsiteURL, b.WebsiteURL)
	}
	if b := root.Paths; b != nil {
		setString(&cfg.Paths.Wiki, b.Wiki)
		setString(&cfg.Paths.Static, b.Static)
		setString(&cfg.Paths.Output, b.Output)
	}
	if b := root.Search; b != nil {
		if b.Enabled != nil {
			cfg.Search.Enabled = *b.Enabled
		}
		setString(&cfg.Search.Database, b.Database)
	}
	return cfg, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
