package extract

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

type platform struct {
	name     string
	patterns []*regexp.Regexp
}

func sharingPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^sharing:\s*` + name + `(?:\.(com|de|net))?$`)
}

// platforms is the fixed table matched against share attributes.
var platforms = []platform{
	{"Facebook", []*regexp.Regexp{sharingPattern(`Facebook`)}},
	{"Twitter", []*regexp.Regexp{sharingPattern(`Twitter`), regexp.MustCompile(`(?i)^sharing:\s*X\.com$`)}},
	{"TikTok", []*regexp.Regexp{sharingPattern(`Tik\s*Tok`)}},
	{"Instagram", []*regexp.Regexp{sharingPattern(`Instagram`)}},
	{"Reddit", []*regexp.Regexp{sharingPattern(`Reddit`)}},
	{"Youtube", []*regexp.Regexp{sharingPattern(`You\s*tube`)}},
	{"Pinterest", []*regexp.Regexp{sharingPattern(`Pinterest`)}},
	{"Tumblr", []*regexp.Regexp{sharingPattern(`Tumblr`)}},
	{"LinkedIn", []*regexp.Regexp{sharingPattern(`Linke?d\s*In`)}},
}

var (
	copyLinkCTA = regexp.MustCompile(`(?i)^sharing:\s*Link\s*kopieren$`)
	emailCTA    = regexp.MustCompile(`(?i)^sharing:\s*(E\s*-?\s*Mail|Email)$`)
)

// SharingPlatforms lists the platforms offered by a[data-sara-cta] share
// links, in table order. It returns nil when none is found.
func SharingPlatforms(doc *goquery.Document) []string {
	var ctas []string
	doc.Find("a[data-sara-cta]").Each(func(_ int, s *goquery.Selection) {
		ctas = append(ctas, s.AttrOr("data-sara-cta", ""))
	})
	var found []string
	for _, p := range platforms {
		if anyMatch(ctas, p.patterns...) {
			found = append(found, p.name)
		}
	}
	return found
}

// HasCopyLinkCTA reports a share link labelled "Link kopieren".
func HasCopyLinkCTA(doc *goquery.Document) bool {
	return anyMatch(attrValues(doc, "[data-sara-cta]", "data-sara-cta"), copyLinkCTA)
}

// HasEmailCTA reports an a[data-sara-cta] e-mail share link.
func HasEmailCTA(doc *goquery.Document) bool {
	return anyMatch(attrValues(doc, "a[data-sara-cta]", "data-sara-cta"), emailCTA)
}

func attrValues(doc *goquery.Document, selector, attr string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.AttrOr(attr, ""))
	})
	return out
}

func anyMatch(values []string, patterns ...*regexp.Regexp) bool {
	for _, v := range values {
		for _, p := range patterns {
			if p.MatchString(v) {
				return true
			}
		}
	}
	return false
}
