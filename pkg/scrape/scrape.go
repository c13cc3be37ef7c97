// Package scrape extracts a recipe's title and raw ingredient lines from
// page markup. It understands schema.org Recipe data in JSON-LD form (the
// dominant convention on recipe sites) and falls back to microdata
// itemprop annotations for older pages.
package scrape

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/entrhq/grocer/pkg/models"
)

// Error is a scrape failure: the markup held no extractable ingredients or
// was not usable at all.
type Error struct {
	URL    string
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func unsupported(url string) *Error {
	return &Error{URL: url, Reason: fmt.Sprintf(
		"could not parse a recipe from %s; the page may not contain a recipe, "+
			"or try saving the page HTML and using: grocer add --html path/to/saved.html", url)}
}

// Scrape extracts a recipe from rawHTML. The url is recorded as provenance
// and used as the title of last resort.
func Scrape(rawHTML, url string) (models.Recipe, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return models.Recipe{}, &Error{URL: url, Reason: fmt.Sprintf("unparsable HTML from %s: %v", url, err)}
	}

	title, ingredients := fromJSONLD(doc)
	if len(ingredients) == 0 {
		ingredients = fromMicrodata(doc)
	}
	if len(ingredients) == 0 {
		return models.Recipe{}, unsupported(url)
	}

	if title == "" {
		title = documentTitle(doc)
	}
	if title == "" {
		title = url
	}

	return models.Recipe{
		Title:          title,
		URL:            url,
		RawIngredients: ingredients,
		Scale:          1.0,
	}, nil
}

// fromMicrodata collects itemprop="recipeIngredient" (and the legacy
// "ingredients" spelling) text content in document order.
func fromMicrodata(doc *html.Node) []string {
	var ingredients []string
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		prop := attr(n, "itemprop")
		if prop != "recipeIngredient" && prop != "ingredients" {
			return
		}
		if text := strings.Join(strings.Fields(textContent(n)), " "); text != "" {
			ingredients = append(ingredients, text)
		}
	})
	return ingredients
}

// documentTitle prefers og:title, then the <title> element.
func documentTitle(doc *html.Node) string {
	var ogTitle, title string
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.Data {
		case "meta":
			if attr(n, "property") == "og:title" && ogTitle == "" {
				ogTitle = strings.TrimSpace(attr(n, "content"))
			}
		case "title":
			if title == "" {
				title = strings.TrimSpace(textContent(n))
			}
		}
	})
	if ogTitle != "" {
		return ogTitle
	}
	return title
}

// walk visits every node of the tree in document order.
func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, visit)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var builder strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			builder.WriteString(c.Data)
		}
	})
	return builder.String()
}
