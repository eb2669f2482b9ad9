package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// skipped elements never contribute visible text
var invisible = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"template": true,
}

// textOf returns the visible text under n, text nodes joined by spaces
func textOf(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && invisible[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.TrimSpace(buf.String())
}

// collapseSpace replaces every whitespace run with a single space
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func hasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, class := range strings.Fields(attr(n, "class")) {
		if class == className {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// matches supports the two selector forms extraction needs: "tag" and ".class"
func matches(n *html.Node, selector string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if class, ok := strings.CutPrefix(selector, "."); ok {
		return hasClass(n, class)
	}
	return n.Data == selector
}

// findAll returns the outermost nodes matching selector; matches nested
// inside an earlier match are skipped so their text is not counted twice
func findAll(n *html.Node, selector string) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if matches(node, selector) {
			results = append(results, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}

func findFirst(n *html.Node, selector string) *html.Node {
	if all := findAll(n, selector); len(all) > 0 {
		return all[0]
	}
	return nil
}
