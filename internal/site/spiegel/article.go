package spiegel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/magazine-corpus/internal/corpus"
	"github.com/JakeFAU/magazine-corpus/internal/extract"
)

var (
	titleSuffix      = regexp.MustCompile(`(?i) - DER SPIEGEL`)
	backToIssue      = regexp.MustCompile(`(?i)\s*Zur\s*Ausgabe\s*`)
	articleNumberRef = regexp.MustCompile(`Artikel\s*([0-9]+)\s*/\s*([0-9]+)`)
	minUpdatedAt     = regexp.MustCompile(`(?i)"minUpdatedAt"\s*:\s*\d+`)
)

// Job is one article file of one issue. It is immutable once built.
type Job struct {
	IssueKey     string
	Folder       string
	File         string
	IssueDate    *time.Time
	ReadingTimes map[string]string
}

// ExtractArticle reads one article file. It never fails outright: read
// errors become a Failure, missing fields become nulls and defects.
func ExtractArticle(job Job, now time.Time) corpus.Outcome {
	out := corpus.Outcome{UnitKey: job.IssueKey, ArticleKey: extract.NullArticleKey, File: job.File}

	raw, err := os.ReadFile(filepath.Join(job.Folder, job.File))
	if err != nil {
		out.Failure = fmt.Sprintf("error: %v", err)
		return out
	}
	doc, err := extract.Parse(raw)
	if err != nil {
		out.Failure = fmt.Sprintf("error: %v", err)
		return out
	}
	if extract.IsEmpty(doc) {
		return out
	}

	a := &corpus.Article{
		IsPaywall:       false,
		IsButtonLike:    false,
		IsAdvertisement: true,
	}
	a.Title = articleTitle(doc)
	a.URL = extract.Ptr(extract.First(doc, extract.MetaContent(`meta[property="og:url"]`)))
	a.PublicationDate = publicationDate(doc)

	exclusions, found := backToIssueTexts(doc)
	if !found {
		out.Defects.Article(job.IssueKey, job.File, "no 'Zur Ausgabe' link found")
	}
	a.Text, a.WordCount, a.CharacterCount = articleBody(doc, exclusions)

	a.Subtitle = extract.DedupeSubtitle(description(doc), a.Title, a.Text)

	news, ok, err := extract.ParseNewsArticle(doc)
	switch {
	case err != nil:
		out.Defects.Article(job.IssueKey, job.File, "unparsable ld+json: "+err.Error())
	case ok:
		if news.Headline != "" && (a.Title == nil || news.Headline != *a.Title) {
			a.Kicker = ptr(news.Headline)
		}
		a.Authors = nilIfEmpty(news.Authors)
		a.Categories = nilIfEmpty(news.Sections)
	}

	if m := articleNumberRef.FindStringSubmatch(doc.Text()); m != nil {
		pos, _ := strconv.Atoi(m[1])
		total, _ := strconv.Atoi(m[2])
		a.Number = ptr(extract.ArticleNumber(pos, total))
	}
	a.Keywords = keywords(doc)

	if a.URL != nil {
		if rt := job.ReadingTimes[*a.URL]; rt != "" {
			a.ReadingTime = ptr(rt)
			a.IsReadingTime = true
		}
	}
	a.IsCopyrighted = extract.IsCopyrighted(job.IssueDate, now)
	a.IsComment = commentsEnabled(doc)
	a.IsButtonSave = hasBookmarkButton(doc)
	a.IsButtonCopyLink = hasCopyLinkButton(doc)
	a.IsButtonSendEmail = extract.HasEmailCTA(doc)
	a.PlatformsSharing = extract.SharingPlatforms(doc)
	a.DateOfLastUpdate = lastUpdate(doc)

	if a.Number != nil {
		out.ArticleKey = extract.ArticleKey(a.Number)
	} else {
		out.Defects.Article(job.IssueKey, extract.NullArticleKey,
			fmt.Sprintf("article number missing for [%s]", deref(a.Title)))
	}
	if a.Title == nil || a.URL == nil || a.Text == nil {
		ref := job.File
		if a.Title != nil {
			ref = fmt.Sprintf("%s (%s)", *a.Title, job.File)
		}
		out.Defects.Article(job.IssueKey, ref,
			fmt.Sprintf("missing or defective article data. See: [%s]", deref(a.URL)))
	}
	out.Article = a
	return out
}

func articleTitle(doc *goquery.Document) *string {
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return nil
	}
	return extract.Ptr(extract.NonEmpty(titleSuffix.ReplaceAllString(strings.TrimSpace(sel.Text()), "")))
}

func publicationDate(doc *goquery.Document) *string {
	v, ok := extract.First(doc, extract.MetaContent(`meta[name="last-modified"]`))
	if !ok {
		return nil
	}
	ts, ok := extract.ParseISO(v)
	if !ok {
		return nil
	}
	return ptr(ts.ISO())
}

// backToIssueTexts returns the paragraph texts of the block around the
// "Zur Ausgabe" link. Those paragraphs are navigation, not article body.
func backToIssueTexts(doc *goquery.Document) (map[string]bool, bool) {
	link := doc.Find("a[title]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return backToIssue.MatchString(s.AttrOr("title", "")) && backToIssue.MatchString(s.Text())
	}).First()
	if link.Length() == 0 {
		return nil, false
	}
	block := link.Parent()
	if goquery.NodeName(block) != "div" {
		block = link.Closest("div")
	}
	texts := make(map[string]bool)
	block.Find("p").Each(func(_ int, p *goquery.Selection) {
		texts[strings.TrimSpace(p.Text())] = true
	})
	return texts, true
}

// articleBody keeps every paragraph not excluded and returns its HTML with
// word and character counts of the non-empty texts.
func articleBody(doc *goquery.Document, exclusions map[string]bool) (*string, int, int) {
	kept := doc.Find("p").FilterFunction(func(_ int, p *goquery.Selection) bool {
		return !exclusions[strings.TrimSpace(p.Text())]
	})
	if kept.Length() == 0 {
		return nil, 0, 0
	}
	texts := kept.Map(func(_ int, p *goquery.Selection) string { return p.Text() })
	words, chars := extract.Counts(texts)
	return ptr(extract.OuterHTML(kept)), words, chars
}

func description(doc *goquery.Document) *string {
	sel := doc.Find(`meta[name="description"]`).First()
	if sel.Length() == 0 {
		return nil
	}
	v := strings.TrimSpace(sel.AttrOr("content", ""))
	v = strings.TrimSpace(strings.TrimRight(v, "…"))
	if v == "" {
		return nil
	}
	return &v
}

func keywords(doc *goquery.Document) []string {
	sel := doc.Find(`meta[name="news_keywords"]`).First()
	content, ok := sel.Attr("content")
	if !ok {
		return nil
	}
	parts := strings.Split(content, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func commentsEnabled(doc *goquery.Document) bool {
	script := doc.Find(`script[type="application/settings+json"]`).First()
	if script.Length() == 0 {
		return false
	}
	var settings struct {
		IsCommentsEnabled *bool `json:"isCommentsEnabled"`
	}
	if err := json.Unmarshal([]byte(script.Text()), &settings); err != nil || settings.IsCommentsEnabled == nil {
		return false
	}
	return *settings.IsCommentsEnabled
}

func hasBookmarkButton(doc *goquery.Document) bool {
	found := buttonMatches(doc, "bookmarkbutton", "data-component")
	return found || doc.Find("[data-bookmark-button-el]").Length() > 0
}

func hasCopyLinkButton(doc *goquery.Document) bool {
	return buttonMatches(doc, "copylink", "x-ref") || extract.HasCopyLinkCTA(doc)
}

// buttonMatches reports a button whose class list holds marker, or whose
// attr contains it, ignoring case.
func buttonMatches(doc *goquery.Document, marker, attr string) bool {
	var found bool
	doc.Find("button").EachWithBreak(func(_ int, b *goquery.Selection) bool {
		for _, cls := range strings.Fields(b.AttrOr("class", "")) {
			if strings.ToLower(cls) == marker {
				found = true
				return false
			}
		}
		if strings.Contains(strings.ToLower(b.AttrOr(attr, "")), marker) {
			found = true
			return false
		}
		return true
	})
	return found
}

func lastUpdate(doc *goquery.Document) *string {
	var out *string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		body := s.Text()
		if !minUpdatedAt.MatchString(body) {
			return true
		}
		var data struct {
			General struct {
				Consent struct {
					MinUpdatedAt json.Number `json:"minUpdatedAt"`
				} `json:"consent"`
			} `json:"general"`
		}
		if err := json.Unmarshal([]byte(body), &data); err == nil {
			if sec, err := data.General.Consent.MinUpdatedAt.Int64(); err == nil && sec != 0 {
				out = ptr(extract.UnixISO(sec))
			}
		}
		return false
	})
	return out
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
