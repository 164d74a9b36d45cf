package stern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingDir(paths Paths, l Listing) string {
	return filepath.Join(paths.RawDir(), filepath.FromSlash(l.Folder()))
}

func TestScanListings(t *testing.T) {
	t.Parallel()

	paths := Paths{Root: t.TempDir()}
	for _, l := range []Listing{
		{Category: "politik", Year: 2015, Month: 3, Page: 1},
		{Category: "politik", Year: 2015, Month: 3},
		{Category: "kultur", Year: 2015, Month: 3},
		{Category: "kultur", Year: 2016, Month: 1},
	} {
		require.NoError(t, os.MkdirAll(listingDir(paths, l), 0o750))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(paths.RawDir(), "unknown_listing"), 0o750))

	years, err := ScanListings(paths.RawDir())
	require.NoError(t, err)
	require.Len(t, years, 2)
	march := years[2015][3]
	require.Len(t, march, 3)
	assert.Equal(t, "kultur_2015_03_page0", march[0].FolderName())
	assert.Equal(t, "politik_2015_03_page0", march[1].FolderName())
	assert.Equal(t, "politik_2015_03_page1", march[2].FolderName())
	assert.Equal(t, listingDir(paths, march[2].Listing), march[2].Path)
	assert.Len(t, years[2016][1], 1)

	rec := march[2].Record()
	assert.Equal(t, "politik", rec.Category)
	assert.Equal(t, "2015", rec.Year)
	assert.Equal(t, "03", rec.Month)
	assert.Equal(t, "01", rec.Page)
	assert.Empty(t, rec.Articles)
}

func TestBuildJobsNumbersAllFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"), "<html><body>Listing</body></html>")
	writeFile(t, filepath.Join(dir, "c.html"), articlePage("C", "c"))
	writeFile(t, filepath.Join(dir, "a.html"), articlePage("A", "a"))
	writeFile(t, filepath.Join(dir, "b.html"), "")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	ld := ListingDir{Listing: Listing{Category: "politik", Year: 2015, Month: 3}, Path: dir}
	jobs, err := BuildJobs(ld, testOrigin)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, Job{ListingURL: testListing, Folder: dir, File: "a.html", Position: 1, Total: 3}, jobs[0])
	assert.Equal(t, Job{ListingURL: testListing, Folder: dir, File: "c.html", Position: 3, Total: 3}, jobs[1])
}

func TestBuildJobsMissingFolder(t *testing.T) {
	t.Parallel()

	_, err := BuildJobs(ListingDir{Path: filepath.Join(t.TempDir(), "gone")}, testOrigin)
	assert.Error(t, err)
}
