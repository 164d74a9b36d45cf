package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Parse parses raw HTML into a document.
func Parse(raw []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(raw))
}

// VisibleText returns the text nodes below sel joined by sep, skipping
// script, style and template content.
func VisibleText(sel *goquery.Selection, sep string) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, sep)
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		*parts = append(*parts, n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "template", "noscript":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// IsEmpty reports whether the document body carries no visible text. The
// HTML parser always synthesizes a body, so a page without one counts as
// empty too.
func IsEmpty(doc *goquery.Document) bool {
	body := doc.Find("body")
	if body.Length() == 0 {
		return true
	}
	return strings.TrimSpace(VisibleText(body, "")) == ""
}

// IsEmptyHTML parses raw and applies IsEmpty. Unparseable input is empty.
func IsEmptyHTML(raw []byte) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}
	doc, err := Parse(raw)
	if err != nil {
		return true
	}
	return IsEmpty(doc)
}

// PlainText converts an HTML fragment into space-separated visible text.
func PlainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return VisibleText(doc.Selection, " ")
}

// OuterHTML concatenates the outer HTML of every node of sel.
func OuterHTML(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Each(func(_ int, s *goquery.Selection) {
		h, err := goquery.OuterHtml(s)
		if err == nil {
			b.WriteString(h)
		}
	})
	return b.String()
}

// FindNext returns the first node after n in document order, descendants
// included, that satisfies match.
func FindNext(n *html.Node, match func(*html.Node) bool) *html.Node {
	for cur := nextInOrder(n); cur != nil; cur = nextInOrder(cur) {
		if match(cur) {
			return cur
		}
	}
	return nil
}

func nextInOrder(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// IsElement returns a matcher for element nodes named tag.
func IsElement(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

// NodeText returns the trimmed visible text of n.
func NodeText(n *html.Node) string {
	var parts []string
	collectText(n, &parts)
	return strings.TrimSpace(strings.Join(parts, ""))
}
