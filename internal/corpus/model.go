// Package corpus defines the per-year corpus documents and the passes that
// write, sort and annotate them.
package corpus

import (
	"maps"
	"slices"

	"github.com/JakeFAU/magazine-corpus/internal/jsonfile"
)

// Article is one extracted article. Nullable fields are written as null.
type Article struct {
	Title             *string  `json:"article_title"`
	Subtitle          *string  `json:"article_subtitle"`
	Kicker            *string  `json:"article_kicker"`
	Number            *string  `json:"article_number"`
	URL               *string  `json:"article_url"`
	PublicationDate   *string  `json:"article_publication_date"`
	Authors           []string `json:"author"`
	Categories        []string `json:"article_category"`
	Keywords          []string `json:"keywords"`
	IsReadingTime     bool     `json:"is_reading_time"`
	ReadingTime       *string  `json:"reading_time"`
	IsCopyrighted     *bool    `json:"is_copyrighted"`
	IsPaywall         bool     `json:"is_paywall"`
	IsComment         bool     `json:"is_comment"`
	IsButtonLike      bool     `json:"is_button_like"`
	IsButtonSave      bool     `json:"is_button_save"`
	IsButtonCopyLink  bool     `json:"is_button_copy_link"`
	IsButtonSendEmail bool     `json:"is_button_send_email"`
	PlatformsSharing  []string `json:"platforms_sharing"`
	IsAdvertisement   bool     `json:"is_advertisement"`
	DateOfLastUpdate  *string  `json:"date_of_last_update"`
	WordCount         int      `json:"word_count"`
	CharacterCount    int      `json:"character_count_with_whitespaces"`
	Text              *string  `json:"article_text"`
}

// Articles maps an article key to its record. It encodes in ArticleOrder.
type Articles map[string]*Article

// MarshalJSON writes the articles sorted by article number.
func (a Articles) MarshalJSON() ([]byte, error) {
	obj, err := jsonfile.OrderedMap(a, SortedKeys(a, ArticleOrder))
	if err != nil {
		return nil, err
	}
	return obj.MarshalJSON()
}

// Issue is one weekly print issue.
type Issue struct {
	Number          string   `json:"issue_number"`
	Title           *string  `json:"issue_title"`
	Subtitle        *string  `json:"issue_subtitle"`
	URL             *string  `json:"issue_url"`
	PublicationDate *string  `json:"issue_publication_date"`
	Articles        Articles `json:"article"`
}

// ArticleSet returns the issue's articles, allocating the map if needed.
func (i *Issue) ArticleSet() Articles {
	if i.Articles == nil {
		i.Articles = make(Articles)
	}
	return i.Articles
}

// Page is one paginated category archive listing.
type Page struct {
	Category string   `json:"category"`
	Year     string   `json:"year"`
	Month    string   `json:"month"`
	Page     string   `json:"page"`
	Articles Articles `json:"article"`
}

// ArticleSet returns the page's articles, allocating the map if needed.
func (p *Page) ArticleSet() Articles {
	if p.Articles == nil {
		p.Articles = make(Articles)
	}
	return p.Articles
}

// Pages groups the listings of one month, keyed by listing URL.
type Pages map[string]*Page

// MarshalJSON writes the pages in NaturalOrder of their URLs.
func (p Pages) MarshalJSON() ([]byte, error) {
	obj, err := jsonfile.OrderedMap(p, SortedKeys(p, NaturalOrder))
	if err != nil {
		return nil, err
	}
	return obj.MarshalJSON()
}

// GeneralMetadata is the provenance block of a year file.
type GeneralMetadata struct {
	DataScrapingDate    string `json:"data_scraping_date"`
	ScraperName         string `json:"scraper_name"`
	InstitutionName     string `json:"institution_name"`
	SupervisorPrimary   string `json:"supervisor_name_primary,omitempty"`
	SupervisorSecondary string `json:"supervisor_name_secondary,omitempty"`
	NotesGeneralEN      string `json:"notes_on_general_data_en"`
	NotesGeneralDE      string `json:"notes_on_general_data_de"`
	NotesSpecificEN     string `json:"notes_on_specific_data_en"`
	NotesSpecificDE     string `json:"notes_on_specific_data_de"`
	FileSizeInKibibyte  *int64 `json:"file_size_in_kibibyte"`
}

// SortedKeys returns the keys of m arranged by order.
func SortedKeys[V any](m map[string]V, order Order) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, order)
	return keys
}
