package render

import (
	"github.com/wikitools/wikigen/internal/config"
	"github.com/wikitools/wikigen/internal/html"
)

// Layout wraps rendered page content in the site shell: bootstrap navbar,
// page heading, and script/stylesheet references served from the static
// tree.
func Layout(cfg *config.Config, pageTitle string, inner html.Element) html.Document {
	title := cfg.Site.Title + " - " + pageTitle
	return html.NewDocument(
		html.El("html", html.Attrs("lang", "en"),
			html.El("head", nil,
				html.El("meta", html.Attrs("charset", "UTF-8")),
				html.El("meta", html.Attrs("name", "viewport", "content", "width=device-width, initial-scale=1.0")),
				html.El("title", nil, html.Text(title)),
				html.El("link", html.Attrs("href", "/style/bootstrap.min.css", "rel", "stylesheet")),
			),
			html.El("body", nil,
				navbar(cfg),
				html.El("div", html.Attrs("class", "container mt-4"),
					html.El("h1", nil, html.Text(pageTitle)),
					inner,
				),
				html.El("script", html.Attrs("src", "/js/bootstrap.bundle.min.js")),
			),
		),
	)
}

func navbar(cfg *config.Config) html.Element {
	return html.El("nav", html.Attrs("class", "navbar navbar-expand-lg navbar-dark bg-dark"),
		html.El("div", html.Attrs("class", "container"),
			html.El("a", html.Attrs("class", "navbar-brand", "href", "/"+cfg.Paths.Wiki),
				html.Text(cfg.Site.Brand)),
			html.El("button", html.Attrs(
				"class", "navbar-toggler",
				"type", "button",
				"data-bs-toggle", "collapse",
				"data-bs-target", "#navbarNav",
				"aria-controls", "navbarNav",
				"aria-expanded", "false",
				"aria-label", "Toggle navigation",
			),
				html.El("span", html.Attrs("class", "navbar-toggler-icon")),
			),
			html.El("div", html.Attrs("class", "collapse navbar-collapse", "id", "navbarNav"),
				html.El("ul", html.Attrs("class", "navbar-nav ms-auto"),
					html.El("li", html.Attrs("class", "nav-item"),
						html.El("a", html.Attrs("class", "nav-link", "href", cfg.Site.WebsiteURL),
							html.Text("Website")),
					),
				),
			),
		),
	)
}

// RedirectPage builds the meta-refresh stub written for redirect documents
// and the root index.
func RedirectPage(toURL string) html.Document {
	return html.NewDocument(
		html.El("html", nil,
			html.El("head", nil,
				html.El("title", nil, html.Text("Redirecting...")),
				html.El("meta", html.Attrs("charset", "utf-8")),
				html.El("meta", html.Attrs("http-equiv", "refresh", "content", "0; url="+toURL)),
			),
			html.El("body", nil,
				html.El("p", nil, html.Text("Redirecting...")),
				html.El("p", nil,
					html.El("a", html.Attrs("href", toURL, "title", "Click here if you are not redirected"),
						html.Text("Click here")),
				),
			),
		),
	)
}
