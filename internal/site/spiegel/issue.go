package spiegel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/JakeFAU/magazine-corpus/internal/corpus"
	"github.com/JakeFAU/magazine-corpus/internal/extract"
	"github.com/JakeFAU/magazine-corpus/internal/ledger"
)

var (
	issueDatePattern   = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
	readingTimePattern = regexp.MustCompile(`\d{1,2}\s?Min`)
)

// IssueResult is the issue-level extraction of one index.html.
type IssueResult struct {
	// Found is false when the index file does not exist.
	Found        bool
	Issue        *corpus.Issue
	Date         *time.Time
	ReadingTimes map[string]string
	Defects      ledger.Defects
}

// ExtractIssue reads the issue record from the index page at path. Missing
// title, URL or date yield a partial record and a defect. origin absolutizes
// teaser links for the reading time lookup.
func ExtractIssue(path, key, origin string) (IssueResult, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return IssueResult{}, nil
		}
		return IssueResult{}, fmt.Errorf("read issue page: %w", err)
	}
	res := IssueResult{Found: true, ReadingTimes: map[string]string{}}
	if strings.TrimSpace(string(raw)) == "" {
		res.Defects.Note(key, ledger.CategoryIssueMetadata, fmt.Sprintf("empty issue page for [%s]", key))
		return res, nil
	}
	doc, err := extract.Parse(raw)
	if err != nil {
		return IssueResult{}, fmt.Errorf("parse issue page: %w", err)
	}

	title := extract.Ptr(extract.First(doc, extract.Attr("main#Inhalt section", "aria-label")))
	var subtitle *string
	if title != nil {
		subtitle = issueSubtitle(doc, *title)
	}
	issueURL := extract.Ptr(extract.First(doc, extract.Attr(`link[rel="canonical"]`, "href")))
	res.Date = issueDate(doc)

	if title == nil || issueURL == nil || res.Date == nil {
		res.Defects.Note(key, ledger.CategoryIssueMetadata, fmt.Sprintf(
			"missing or defective issue data. URL: [%s], Date: [%s]", deref(issueURL), formatDate(res.Date)))
	}

	doc.Find("article").Each(func(_ int, art *goquery.Selection) {
		href, ok := art.Find("a[href]").First().Attr("href")
		if !ok {
			return
		}
		abs := href
		if !strings.HasPrefix(href, "http") {
			abs = origin + href
		}
		abs = strings.ReplaceAll(abs, "?"+articleMarker, "")
		if m := readingTimePattern.FindString(art.Text()); m != "" {
			res.ReadingTimes[abs] = m
		}
	})

	var published *string
	if res.Date != nil {
		published = ptr(res.Date.Format(time.DateOnly))
	}
	res.Issue = &corpus.Issue{
		Number:          key,
		Title:           title,
		Subtitle:        subtitle,
		URL:             issueURL,
		PublicationDate: published,
		Articles:        corpus.Articles{},
	}
	return res, nil
}

// issueSubtitle follows the cover image to the heading repeating the title
// and returns the paragraph after it.
func issueSubtitle(doc *goquery.Document, title string) *string {
	var img *html.Node
	doc.Find("img[title]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.AttrOr("title", "") == title {
			img = s.Nodes[0]
			return false
		}
		return true
	})
	if img == nil {
		return nil
	}
	heading := extract.FindNext(img, func(n *html.Node) bool {
		return extract.IsElement("h2")(n) && extract.NodeText(n) == title
	})
	if heading == nil {
		return nil
	}
	p := extract.FindNext(heading, extract.IsElement("p"))
	if p == nil {
		return nil
	}
	return ptr(extract.NodeText(p))
}

func issueDate(doc *goquery.Document) *time.Time {
	var out *time.Time
	doc.Find("span.relative.bottom-px").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := issueDatePattern.FindString(s.Text())
		if m == "" {
			return true
		}
		if t, ok := extract.ParseGermanDate(m); ok {
			out = &t
			return false
		}
		return true
	})
	return out
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "null"
	}
	return t.Format(time.DateOnly)
}

func deref(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}

func ptr[T any](v T) *T {
	return &v
}
