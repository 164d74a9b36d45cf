// Package extract holds the field strategies and text policies shared by
// both magazine extractors.
//
// A field is read by an ordered list of Strategy functions. Each one tries a
// single markup variant and reports ok=false when that variant is absent;
// First returns the first value found. Strategies never panic on missing
// nodes, so a document from any era yields a record with nulls rather than
// an error.
package extract

import "github.com/PuerkitoBio/goquery"

// Strategy extracts one field value from a parsed document.
type Strategy[T any] func(doc *goquery.Document) (T, bool)

// First runs strategies in order and returns the first value found.
func First[T any](doc *goquery.Document, strategies ...Strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := s(doc); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Ptr returns a pointer to v when ok, else nil.
func Ptr[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}

// MetaContent returns a strategy reading the content attribute of the first
// element matching selector.
func MetaContent(selector string) Strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		return NonEmpty(doc.Find(selector).First().AttrOr("content", ""))
	}
}

// Attr returns a strategy reading attr of the first element matching selector.
func Attr(selector, attr string) Strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		return NonEmpty(doc.Find(selector).First().AttrOr(attr, ""))
	}
}

// Text returns a strategy reading the trimmed text of the first element
// matching selector.
func Text(selector string) Strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		return NonEmpty(doc.Find(selector).First().Text())
	}
}
