package extract

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SimilarityThreshold is the ratio above which a subtitle counts as a copy
// of the lead text.
const SimilarityThreshold = 0.85

// leadWindowSlack is how far past the subtitle length the lead text is
// compared.
const leadWindowSlack = 200

var nonComparable = regexp.MustCompile(`[^\p{L}\p{N}_ .,]`)

// DedupeSubtitle returns subtitle, or nil when it only repeats the title or
// the opening of the body. bodyHTML is the stored article text; without it
// only the title comparison applies.
func DedupeSubtitle(subtitle *string, title *string, bodyHTML *string) *string {
	if subtitle == nil {
		return nil
	}
	sub := NormalizeTypography(*subtitle)
	t := ""
	if title != nil {
		t = NormalizeTypography(*title)
	}
	if strings.ToLower(sub) == strings.ToLower(t) {
		return nil
	}
	if bodyHTML == nil || *bodyHTML == "" {
		return subtitle
	}
	if RepeatsLead(sub, PlainText(*bodyHTML)) {
		return nil
	}
	return subtitle
}

// RepeatsLead reports whether subtitle is contained in, or very similar to,
// the opening of plain.
func RepeatsLead(subtitle, plain string) bool {
	subCmp := nonComparable.ReplaceAllString(strings.ToLower(subtitle), "")
	lead := whitespaceRun.ReplaceAllString(strings.ToLower(plain), " ")
	leadCmp := nonComparable.ReplaceAllString(Truncate(lead, len([]rune(subCmp))+leadWindowSlack), "")
	if strings.Contains(leadCmp, subCmp) {
		return true
	}
	return Similarity(subCmp, leadCmp) > SimilarityThreshold
}

// Similarity returns the character-level sequence matching ratio of a and b,
// 2*M/T as computed by difflib.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcher(runes(a), runes(b))
	return m.Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
