package stern

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/magazine-corpus/internal/corpus"
	"github.com/JakeFAU/magazine-corpus/internal/extract"
)

const notSet = "not_set"

// keywordNoise are ad keywords every article carries.
var keywordNoise = []string{"stern", "ct_article", "onecore"}

// ExtractArticle reads one article file of a listing. It never fails
// outright: read errors become a Failure, missing fields become nulls and
// defects.
func ExtractArticle(job Job, now time.Time) corpus.Outcome {
	number := extract.ArticleNumber(job.Position, job.Total)
	out := corpus.Outcome{UnitKey: job.ListingURL, ArticleKey: extract.ArticleKey(&number), File: job.File}

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
		Number:          &number,
		IsPaywall:       false,
		IsComment:       false,
		IsButtonLike:    false,
		IsAdvertisement: true,
	}
	a.Title = extract.Ptr(extract.First(doc, extract.MetaContent(`meta[name="ob_headline"]`)))
	a.Kicker = extract.Ptr(extract.First(doc, extract.MetaContent(`meta[name="ob_kicker"]`), titleKicker))
	a.URL = extract.Ptr(extract.First(doc, extract.Attr(`link[rel="canonical"]`, "href")))

	var published *time.Time
	if v, ok := extract.First(doc, extract.MetaContent(`meta[name="last-modified"]`)); ok {
		if ts, ok := extract.ParseISO(v); ok {
			naive := ts.Naive()
			a.PublicationDate = ptr(naive.ISO())
			published = &naive.Time
		}
	}
	a.IsCopyrighted = extract.IsCopyrighted(published, now)
	a.Authors = authors(doc)

	if gtm, ok := gtmContent(doc); ok {
		a.Categories = gtm.categories()
		a.Keywords = gtm.keywords()
		if gtm.LastUpdateDate != "" {
			a.DateOfLastUpdate = ptr(gtm.LastUpdateDate)
		}
	}
	if rt, ok := readingTime(doc); ok {
		a.ReadingTime = &rt
		a.IsReadingTime = true
	}

	body := doc.Find("div.text-element.u-richtext, h2.subheadline-element")
	if body.Length() > 0 {
		a.Text = ptr(extract.OuterHTML(body))
		a.WordCount, a.CharacterCount = extract.Counts(body.Map(func(_ int, s *goquery.Selection) string {
			return s.Text()
		}))
	}
	a.Subtitle = extract.DedupeSubtitle(intro(doc), a.Title, a.Text)

	a.IsButtonSave = doc.Find("i.icon-bookmark").Length() > 0
	a.IsButtonCopyLink = doc.Find("i.icon-link").Length() > 0
	a.IsButtonSendEmail = false
	a.PlatformsSharing = extract.SharingPlatforms(doc)

	if a.Title == nil || a.URL == nil || a.Text == nil {
		ref := job.File
		if a.Title != nil {
			ref = fmt.Sprintf("%s (%s)", *a.Title, job.File)
		}
		url := "null"
		if a.URL != nil {
			url = *a.URL
		}
		out.Defects.Article(job.ListingURL, ref, fmt.Sprintf("missing or defective article data. See: [%s]", url))
	}
	out.Article = a
	return out
}

func titleKicker(doc *goquery.Document) (string, bool) {
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return "", false
	}
	return extract.NonEmpty(strings.ReplaceAll(sel.Text(), "| STERN.de", ""))
}

func intro(doc *goquery.Document) *string {
	sel := doc.Find("div.intro.typo-intro.u-richtext")
	if sel.Length() == 0 {
		return nil
	}
	return extract.Ptr(extract.NonEmpty(extract.CollapseSpace(extract.VisibleText(sel, " "))))
}

func authors(doc *goquery.Document) []string {
	var out []string
	add := func(_ int, s *goquery.Selection) {
		if name, ok := extract.NonEmpty(s.Text()); ok {
			out = append(out, name)
		}
	}
	byline := doc.Find("div.authors.typo-article-info").First()
	byline.Find("a.authors__list-link").Each(add)
	byline.Find("span.typo-article-info-bold").Each(add)
	doc.Find("div.authors__original-source, div.authors__shortcode").Each(add)
	return out
}

type gtm struct {
	MainSection    string `json:"main_section"`
	SubSection1    string `json:"sub_section_1"`
	SubSection2    string `json:"sub_section_2"`
	SubSection3    string `json:"sub_section_3"`
	AdKeywords     string `json:"ad_keywords"`
	LastUpdateDate string `json:"last_update_date"`
}

// gtmContent decodes the tag manager payload embedded in <ws-gtm>.
func gtmContent(doc *goquery.Document) (gtm, bool) {
	script := doc.Find(`ws-gtm script[type="application/json"]`).First()
	if script.Length() == 0 {
		return gtm{}, false
	}
	var payload struct {
		Content *gtm `json:"content"`
	}
	if err := json.Unmarshal([]byte(script.Text()), &payload); err != nil || payload.Content == nil {
		return gtm{}, false
	}
	return *payload.Content, true
}

func (g gtm) categories() []string {
	var out []string
	if g.MainSection != "" {
		out = append(out, g.MainSection)
	}
	for _, s := range []string{g.SubSection1, g.SubSection2, g.SubSection3} {
		if s != "" && s != notSet {
			out = append(out, s)
		}
	}
	return out
}

func (g gtm) keywords() []string {
	var out []string
	for _, kw := range strings.Split(g.AdKeywords, ",") {
		kw = strings.TrimSpace(kw)
		if kw == "" || slices.Contains(keywordNoise, kw) {
			continue
		}
		out = append(out, kw)
	}
	return out
}

func readingTime(doc *goquery.Document) (string, bool) {
	var out string
	doc.Find("ul.authors__meta-data.u-blanklist li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		txt := strings.TrimSpace(li.Text())
		if strings.HasSuffix(txt, "Min") {
			out = txt
			return false
		}
		return true
	})
	return out, out != ""
}

func ptr[T any](v T) *T {
	return &v
}
