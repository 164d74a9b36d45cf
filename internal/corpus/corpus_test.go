package corpus

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/magazine-corpus/internal/clock"
	"github.com/JakeFAU/magazine-corpus/internal/jsonfile"
	"github.com/JakeFAU/magazine-corpus/internal/ledger"
)

var yearPattern = regexp.MustCompile(`^weekly-\d{4}\.json$`)

func str(s string) *string { return &s }

func sampleYear() *YearFile[*Issue] {
	y := NewYearFile[*Issue]("Der Spiegel - 1980", IssueOrder)
	y.General = GeneralMetadata{DataScrapingDate: "2024-05-06", ScraperName: "tester"}
	y.Units["1980-10"] = &Issue{Number: "1980-10", Title: str("Ausgabe 10")}
	y.Units["1980-02"] = &Issue{
		Number: "1980-02",
		Title:  str("Ausgabe 2"),
		Articles: Articles{
			"article - 010-012": {Title: str("zehn"), Text: str("<p>a & b</p>")},
			"article - 002-012": {Title: str("zwei")},
			"article - null":    {Title: str("ohne Nummer")},
		},
	}
	return y
}

func TestIssueOrder(t *testing.T) {
	t.Parallel()
	keys := []string{"1980-10", "1979-52", "broken", "1980-2"}
	got := SortedKeys(map[string]int{keys[0]: 0, keys[1]: 0, keys[2]: 0, keys[3]: 0}, IssueOrder)
	assert.Equal(t, []string{"1979-52", "1980-2", "1980-10", "broken"}, got)
}

func TestArticleOrder(t *testing.T) {
	t.Parallel()
	m := map[string]int{
		"article - 010-012": 0,
		"article - null":    0,
		"article - 002-012": 0,
		"article - 002-003": 0,
	}
	assert.Equal(t, []string{
		"article - 002-003",
		"article - 002-012",
		"article - 010-012",
		"article - null",
	}, SortedKeys(m, ArticleOrder))
}

func TestNaturalOrder(t *testing.T) {
	t.Parallel()
	m := map[string]int{
		"https://x/politik/archiv/?month=3&year=2019&pageNum=10": 0,
		"https://x/politik/archiv/?month=3&year=2019&pageNum=2":  0,
		"https://x/politik/archiv/?month=3&year=2019":            0,
		"https://x/kultur/archiv/?month=3&year=2019":             0,
	}
	assert.Equal(t, []string{
		"https://x/kultur/archiv/?month=3&year=2019",
		"https://x/politik/archiv/?month=3&year=2019",
		"https://x/politik/archiv/?month=3&year=2019&pageNum=2",
		"https://x/politik/archiv/?month=3&year=2019&pageNum=10",
	}, SortedKeys(m, NaturalOrder))
	assert.Equal(t, -1, NaturalOrder("a07", "a7"))
}

func TestYearFileEncoding(t *testing.T) {
	t.Parallel()
	data, err := jsonfile.Marshal(sampleYear())
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "{\n    \"Der Spiegel - 1980\": {\n        \"general_metadata\": {"))
	assert.Less(t, strings.Index(out, `"1980-02"`), strings.Index(out, `"1980-10"`))
	assert.Less(t, strings.Index(out, `"article - 002-012"`), strings.Index(out, `"article - 010-012"`))
	assert.Less(t, strings.Index(out, `"article - 010-012"`), strings.Index(out, `"article - null"`))
	assert.Contains(t, out, `"article_text": "<p>a & b</p>"`)
	assert.Contains(t, out, `"file_size_in_kibibyte": null`)
	assert.NotContains(t, out, "supervisor_name_primary")
	assert.Less(t, strings.Index(out, `"article_title"`), strings.Index(out, `"article_subtitle"`))
}

func TestYearFileRoundTrip(t *testing.T) {
	t.Parallel()
	first, err := jsonfile.Marshal(sampleYear())
	require.NoError(t, err)

	var decoded YearFile[*Issue]
	require.NoError(t, decoded.UnmarshalJSON(first))
	decoded.Order = IssueOrder
	assert.Equal(t, "Der Spiegel - 1980", decoded.Label)
	require.Len(t, decoded.Units, 2)

	second, err := jsonfile.Marshal(&decoded)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestYearFileRejectsEmptyObject(t *testing.T) {
	t.Parallel()
	var y YearFile[*Issue]
	assert.ErrorIs(t, y.UnmarshalJSON([]byte(`{}`)), ErrNoYearLabel)
}

func TestMerge(t *testing.T) {
	t.Parallel()
	issue := &Issue{Number: "1980-05"}
	units := map[string]*Issue{"1980-05": issue}
	lookup := func(key string) ArticleHolder {
		if u, ok := units[key]; ok {
			return u
		}
		return nil
	}

	var jobDefects ledger.Defects
	jobDefects.Article("1980-05", "article - null", "missing article number")

	outcomes := []Outcome{
		{UnitKey: "1980-05", ArticleKey: "article - 001-002", Article: &Article{Title: str("eins")}},
		{UnitKey: "1980-05", ArticleKey: "article - null", Article: &Article{Title: str("null")}, Defects: jobDefects},
		{UnitKey: "1980-05", ArticleKey: "article - 002-002"},
		{UnitKey: "1980-05", File: "broken.html", Failure: "panic: boom"},
		{UnitKey: "1980-06", ArticleKey: "article - 001-001", Article: &Article{}},
	}

	var defects ledger.Defects
	s := Merge(outcomes, lookup, &defects, zap.NewNop())

	assert.Equal(t, Summary{Articles: 2, Empty: 1, Failures: 2}, s)
	assert.Len(t, issue.Articles, 2)
	assert.Contains(t, issue.Articles, "article - null")

	g := defects.Group("1980-05")
	require.NotNil(t, g)
	assert.Equal(t, "empty article found", g.Notes[ledger.CategoryArticle])
	assert.Equal(t, "missing article number", g.Articles["article - null"])
	assert.Equal(t, "panic: boom", g.Articles["broken.html"])
	require.NotNil(t, defects.Group("1980-06"))
}

func TestWriteYearSkipsExistingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "weekly-1980.json")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o600))
	before, err := os.Stat(path)
	require.NoError(t, err)

	written, err := WriteYear(path, sampleYear())
	require.NoError(t, err)
	assert.False(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func newPostPass(dir string) PostPass[*Issue] {
	return PostPass[*Issue]{
		Dir:     dir,
		Pattern: yearPattern,
		Order:   IssueOrder,
		Clock:   clock.Fixed(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)),
		Logger:  zap.NewNop(),
	}
}

func TestSortIsIdempotent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "weekly-1980.json")
	// Unsorted input with general metadata last.
	raw := `{"Der Spiegel - 1980": {
		"1980-10": {"issue_number": "1980-10", "issue_title": null, "issue_subtitle": null, "issue_url": null, "issue_publication_date": null, "article": {}},
		"1980-02": {"issue_number": "1980-02", "issue_title": "zwei", "issue_subtitle": null, "issue_url": null, "issue_publication_date": null,
			"article": {"article - 002-002": {"article_title": "b"}, "article - 001-002": {"article_title": "a"}}},
		"general_metadata": {"data_scraping_date": "2024-05-06", "file_size_in_kibibyte": null}
	}}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o600))

	p := newPostPass(dir)
	n, defects, err := p.Sort()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, defects.Empty())

	first, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(first)
	assert.Less(t, strings.Index(out, "general_metadata"), strings.Index(out, `"1980-02"`))
	assert.Less(t, strings.Index(out, `"1980-02"`), strings.Index(out, `"1980-10"`))
	assert.Less(t, strings.Index(out, `"article - 001-002"`), strings.Index(out, `"article - 002-002"`))

	_, _, err = p.Sort()
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestSortReportsEmptyFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weekly-1950.json"), []byte("  \n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weekly-1951.json"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weekly-1952.json"), []byte("{broken"), 0o600))

	n, defects, err := newPostPass(dir).Sort()
	require.NoError(t, err)
	assert.Zero(t, n)

	for file, reason := range map[string]string{
		"weekly-1950.json": ReasonEmpty,
		"weekly-1951.json": ReasonEmpty,
		"weekly-1952.json": ReasonInvalid,
	} {
		g := defects.Group(file)
		require.NotNil(t, g, file)
		assert.Equal(t, reason, g.Notes["reason"], file)
		assert.Equal(t, "2024-05-06T07:08:09.000000", g.Notes["timestamp"], file)
	}
}

func TestAnnotateSetsFileSize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "weekly-1980.json")
	y := sampleYear()
	y.Units["1980-02"].Articles["article - 002-012"].Text = str(strings.Repeat("x", 4096))
	_, err := WriteYear(path, y)
	require.NoError(t, err)

	n, err := newPostPass(dir).Annotate()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	info, err := os.Stat(path)
	require.NoError(t, err)
	got, err := ReadYearFile[*Issue](path, IssueOrder)
	require.NoError(t, err)
	require.NotNil(t, got.General.FileSizeInKibibyte)
	assert.Equal(t, info.Size()/1024, *got.General.FileSizeInKibibyte)
}

func TestAnnotateIsStableAcrossRuns(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "weekly-1980.json")
	y := sampleYear()
	// The unannotated file is one byte past 3 KiB; replacing the null size
	// with a digit shrinks it below.
	y.Units["1980-02"].Articles["article - 002-012"].Text = str("")
	base, err := jsonfile.Marshal(y)
	require.NoError(t, err)
	require.Less(t, len(base), 3*1024)
	y.Units["1980-02"].Articles["article - 002-012"].Text = str(strings.Repeat("x", 3*1024+1-len(base)))
	_, err = WriteYear(path, y)
	require.NoError(t, err)

	pp := newPostPass(dir)
	_, err = pp.Annotate()
	require.NoError(t, err)
	once, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = pp.Annotate()
	require.NoError(t, err)
	twice, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(once), string(twice))

	got, err := ReadYearFile[*Issue](path, IssueOrder)
	require.NoError(t, err)
	require.NotNil(t, got.General.FileSizeInKibibyte)
	assert.Equal(t, int64(len(once))/1024, *got.General.FileSizeInKibibyte)
	assert.Equal(t, int64(2), *got.General.FileSizeInKibibyte)
}
