package htmlutil

import (
	"golang.org/x/net/html"
)

// FirstText returns the contents of the first text node under node in
// document order. Scraped values like link labels come from the first
// text node only, so markup nested after it cannot leak into them.
func FirstText(node *html.Node) (string, bool) {
	if node == nil {
		return "", false
	}
	if node.Type == html.TextNode {
		return node.Data, true
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if text, ok := FirstText(child); ok {
			return text, true
		}
	}
	return "", false
}

// FirstChildText returns the contents of the first text node that is a
// direct child of node, ignoring text buried in child elements.
func FirstChildText(node *html.Node) (string, bool) {
	if node == nil {
		return "", false
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			return child.Data, true
		}
	}
	return "", false
}
