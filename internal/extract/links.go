package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is an outbound link found in an article
type Link struct {
	URL      string `json:"url"`
	Text     string `json:"text,omitempty"`
	Host     string `json:"host"`
	External bool   `json:"external"`
}

// links collects http(s) links under n, resolved against base and deduplicated
func links(n *html.Node, base *url.URL) []Link {
	var out []Link
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if resolved := resolveURL(base, strings.TrimSpace(attr(n, "href"))); resolved != nil {
				u := resolved.String()
				if !seen[u] {
					seen[u] = true
					out = append(out, Link{
						URL:      u,
						Text:     collapseSpace(textOf(n)),
						Host:     resolved.Host,
						External: resolved.Host != base.Host,
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return out
}

// resolveURL resolves href against base; anchors, javascript: and mailto:
// links and non-http schemes resolve to nil
func resolveURL(base *url.URL, href string) *url.URL {
	if href == "" || strings.HasPrefix(href, "#") {
		return nil
	}
	if strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return nil
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return nil
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil
	}
	resolved.Fragment = ""
	return resolved
}
