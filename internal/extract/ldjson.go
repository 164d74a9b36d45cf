package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NewsArticle holds the fields read from an embedded schema.org NewsArticle.
type NewsArticle struct {
	Headline string
	Sections []string
	Authors  []string
}

var authorSeparators = regexp.MustCompile(`[,\s]+`)

// ParseNewsArticle decodes the first ld+json script and returns its first
// NewsArticle object. found is false when no such object exists; err is set
// when the script holds invalid JSON.
func ParseNewsArticle(doc *goquery.Document) (NewsArticle, bool, error) {
	script := doc.Find(`script[type="application/ld+json"]`).First()
	if script.Length() == 0 {
		return NewsArticle{}, false, nil
	}
	var data any
	if err := json.Unmarshal([]byte(strings.TrimSpace(script.Text())), &data); err != nil {
		return NewsArticle{}, false, fmt.Errorf("decode ld+json: %w", err)
	}

	var entry map[string]any
	switch v := data.(type) {
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok && m["@type"] == "NewsArticle" {
				entry = m
				break
			}
		}
	case map[string]any:
		if v["@type"] == "NewsArticle" {
			entry = v
		}
	}
	if entry == nil {
		return NewsArticle{}, false, nil
	}

	var out NewsArticle
	if h, ok := entry["headline"].(string); ok {
		out.Headline = strings.TrimSpace(h)
	}
	switch s := entry["articleSection"].(type) {
	case string:
		out.Sections = append(out.Sections, s)
	case []any:
		for _, item := range s {
			if str, ok := item.(string); ok {
				out.Sections = append(out.Sections, str)
			}
		}
	}
	authors, _ := entry["author"].([]any)
	for _, a := range authors {
		person, ok := a.(map[string]any)
		if !ok || person["@type"] != "Person" {
			continue
		}
		name, _ := person["name"].(string)
		if name = CleanAuthorName(name); name != "" {
			out.Authors = append(out.Authors, name)
		}
	}
	return out, true, nil
}

// CleanAuthorName collapses commas and whitespace runs into single spaces.
func CleanAuthorName(name string) string {
	return strings.TrimSpace(authorSeparators.ReplaceAllString(name, " "))
}
