package scrape

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
)

// fromJSONLD finds the first schema.org Recipe object in the document's
// JSON-LD script blocks and returns its name and ingredient lines.
//
// Real-world JSON-LD is messy: the top level may be an object, an array, or
// a container with an @graph; @type may be a string or an array; a block
// that fails to decode is skipped rather than failing the scrape.
func fromJSONLD(doc *html.Node) (title string, ingredients []string) {
	walk(doc, func(n *html.Node) {
		if len(ingredients) > 0 {
			return
		}
		if n.Type != html.ElementNode || n.Data != "script" {
			return
		}
		if !strings.EqualFold(attr(n, "type"), "application/ld+json") {
			return
		}

		var payload interface{}
		if err := json.Unmarshal([]byte(textContent(n)), &payload); err != nil {
			return
		}
		if recipe := findRecipeNode(payload); recipe != nil {
			title, _ = recipe["name"].(string)
			ingredients = stringList(recipe["recipeIngredient"])
			if len(ingredients) == 0 {
				// Pre-2017 schema.org spelling.
				ingredients = stringList(recipe["ingredients"])
			}
		}
	})
	return title, ingredients
}

// findRecipeNode searches a decoded JSON-LD value for the first object
// typed as a Recipe, descending into arrays and @graph containers.
func findRecipeNode(v interface{}) map[string]interface{} {
	switch node := v.(type) {
	case map[string]interface{}:
		if hasType(node, "Recipe") {
			return node
		}
		if graph, ok := node["@graph"]; ok {
			return findRecipeNode(graph)
		}
	case []interface{}:
		for _, item := range node {
			if recipe := findRecipeNode(item); recipe != nil {
				return recipe
			}
		}
	}
	return nil
}

// hasType reports whether the node's @type is, or contains, want.
func hasType(node map[string]interface{}, want string) bool {
	switch t := node["@type"].(type) {
	case string:
		return strings.EqualFold(t, want)
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}
	return false
}

// stringList coerces a JSON value into a cleaned list of strings, dropping
// blanks and collapsing internal whitespace.
func stringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return []string{strings.Join(strings.Fields(s), " ")}
		}
		return nil
	}

	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			if cleaned := strings.Join(strings.Fields(s), " "); cleaned != "" {
				out = append(out, cleaned)
			}
		}
	}
	return out
}
