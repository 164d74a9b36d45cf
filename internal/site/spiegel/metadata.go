package spiegel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JakeFAU/magazine-corpus/internal/corpus"
)

// Provenance names who produced the corpus.
type Provenance struct {
	ScraperName         string
	InstitutionName     string
	SupervisorPrimary   string
	SupervisorSecondary string
}

const (
	notesGeneralEN = "article_text: The text is saved with its HTML-formatting-elements. At the end of the text there are also sometimes captions from pictures in the printed issues. Mostly the accompanying pictures are missing on the website. || word_count: Every whitespace is used as a separator, so the count is not very accurate. For example: the German number '500 000' (english: 500,000) is counted as two words."
	notesGeneralDE = "article_text: Der Text wird mit den HTML-Formatierungs-Elementen gespeichert. Ebenso sind am Textende manchmal Bildunterschriften aus den urspruenglichen Druckausgaben vorhanden. Die dazugehoerigen Bilder fehlen allerdings meistens auf den Websites. || word_count: Jedes Leerzeichen wird als Trennzeichen verwendet. Daher ist die Zaehlung nicht sehr akkurat. Zum Beispiel: Die Zahl '500 000' wird als zwei Woerter gezaehlt."
)

// doubleIssues lists issues that were bound into the previous one and are
// therefore absent from the archive.
var doubleIssues = [][2]string{
	{"1948-03", "1948-02"}, {"1960-02", "1960-01"}, {"1962-02", "1962-01"},
	{"1963-02", "1963-01"}, {"1964-02", "1964-01"}, {"1965-02", "1965-01"},
	{"1966-02", "1966-01"}, {"1967-02", "1967-01"}, {"1969-02", "1969-01"},
	{"1970-02", "1970-01"}, {"1971-02", "1971-01"}, {"1972-02", "1972-01"},
	{"1974-02", "1974-01"}, {"1975-02", "1975-01"}, {"1976-02", "1976-01"},
	{"1976-21", "1976-20"}, {"1977-02", "1977-01"}, {"1978-13", "1978-12"},
	{"1980-02", "1980-01"}, {"1981-02", "1981-01"},
}

func doubleIssueList(part string) string {
	items := make([]string, 0, len(doubleIssues))
	for _, d := range doubleIssues {
		items = append(items, fmt.Sprintf("%s (%s %s)", d[0], part, d[1]))
	}
	return strings.Join(items, ", ") + "."
}

// GeneralMetadata returns the provenance block written into every year file.
func GeneralMetadata(p Provenance, now time.Time) corpus.GeneralMetadata {
	return corpus.GeneralMetadata{
		DataScrapingDate:    now.Format(time.DateOnly),
		ScraperName:         p.ScraperName,
		InstitutionName:     p.InstitutionName,
		SupervisorPrimary:   p.SupervisorPrimary,
		SupervisorSecondary: p.SupervisorSecondary,
		NotesGeneralEN:      notesGeneralEN,
		NotesGeneralDE:      notesGeneralDE,
		NotesSpecificEN: "Following issues are nonexistent in this textcorpus, because they are part of double-issues. " +
			"Sometimes two issues were released as one bigger issue, bound together, which isn't represented in the HTML. " +
			"Following issues are affected: " + doubleIssueList("part of"),
		NotesSpecificDE: "Folgende Ausgaben existieren nicht im Textkorpus, da sie Teil von Doppelausgaben waren. " +
			"Manchmal wurden zwei Ausgaben als eine gebundene veroeffentlicht, was nicht im HTML repraesentiert ist. " +
			"Folgende sind betroffen: " + doubleIssueList("Teil von"),
	}
}

// YearLabel is the top-level key of the year file of year.
func YearLabel(year int) string {
	return YearLabelPrefix + strconv.Itoa(year)
}

func yearFileName(year int) string {
	return fmt.Sprintf("spiegel-%d.json", year)
}
