package content

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DetectHTML is the default DetectorFunc. It parses s as an HTML body
// fragment and reports markup when the fragment contains anything beyond a
// single bare paragraph: multiple elements, a non-paragraph root element,
// or nested elements inside the paragraph.
func DetectHTML(s string) bool {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return false
	}
	var root *html.Node
	elements := 0
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			elements++
			if root == nil {
				root = n
			}
		}
	}
	if root == nil {
		return false
	}
	if elements > 1 || root.Data != "p" {
		return true
	}
	for ch := root.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode {
			return true
		}
	}
	return false
}
