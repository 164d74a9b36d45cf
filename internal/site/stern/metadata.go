package stern

import (
	"fmt"
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
	notesGeneralEN = "author: Is no author mentioned, usually a news agency is mentioned instead. Sometimes the text type is also stated in this data. || category: Unlike in the dataset of Der Spiegel, the articles here would normally be organized by category-year-month-page. To maintain a certain degree of consistency, it is ordered chronologically, so the year is the primary file name, followed by a month-category-page hierarchy. || word_count: Every whitespace is used as a separator, so the count is not very accurate. For example: the German number '500 000' (english: 500,000) is counted as two words. || is_copyrighted: It is the German copyright."
	notesGeneralDE = "author: Sind keine Autoren direkt genannt, werden meist Nachrichtenagenturen genannt. Manchmal steht hier auch die Textsorte dabei. || category: Im Gegensatz zum Spiegel waeren die Artikel hier normalerweise nach Rubrik-Jahr-Monat-Seite gegliedert. Um ein gewisses Mass an Einheitlichkeit zu haben, wurde es chronologisch geordnet, also ist das Jahr ausschlaggebend fuer die Datei, danach folgt die Hierarchie Monat-Rubrik-Seite (month-category-page). || word_count: Jedes Leerzeichen wird als Trennzeichen verwendet. Daher ist die Zaehlung nicht sehr akkurat. Zum Beispiel: Die Zahl '500 000' wird als zwei Woerter gezaehlt. || is_copyrighted: Es handelt sich um deutsches Urheberrecht."
	notesSpecificEN = "Especially in the early years of the Stern archive there are few articles. It is not known whether this was due to the small scale of Stern Online at the time."
	notesSpecificDE = "Vor allem in den ersten Jahren des Stern-Archivs gibt es wenige Artikel. Ob das am damaligen geringen Umfang von Stern Online liegt, ist nicht bekannt."
)

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
		NotesSpecificEN:     notesSpecificEN,
		NotesSpecificDE:     notesSpecificDE,
	}
}

// YearLabel is the top-level key of the year file of year.
func YearLabel(year int) string {
	return fmt.Sprintf("%s%d", YearLabelPrefix, year)
}

// MonthKey is the unit key of one month inside a year file.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%s%d - %02d", YearLabelPrefix, year, month)
}

func yearFileName(year int) string {
	return fmt.Sprintf("stern-%d.json", year)
}
