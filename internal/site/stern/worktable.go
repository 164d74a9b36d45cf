package stern

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/JakeFAU/magazine-corpus/internal/corpus"
	"github.com/JakeFAU/magazine-corpus/internal/download"
	"github.com/JakeFAU/magazine-corpus/internal/extract"
)

var listingFolderPattern = regexp.MustCompile(`^(\w+)_(\d{4})_(\d{2})_page(\d+)$`)

// ListingDir is one downloaded listing folder.
type ListingDir struct {
	Listing
	Path string
}

// Record returns the empty page record of the listing.
func (d ListingDir) Record() *corpus.Page {
	return &corpus.Page{
		Category: d.Category,
		Year:     strconv.Itoa(d.Year),
		Month:    fmt.Sprintf("%02d", d.Month),
		Page:     fmt.Sprintf("%02d", d.Page),
		Articles: corpus.Articles{},
	}
}

// ScanListings walks dir and groups every listing folder by year and month.
// Folders not named <cat>_<y>_<MM>_page<P> are ignored. Listings inside a
// month are sorted by folder name.
func ScanListings(dir string) (map[int]map[int][]ListingDir, error) {
	out := make(map[int]map[int][]ListingDir)
	err := filepath.WalkDir(dir, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !e.IsDir() {
			return nil
		}
		m := listingFolderPattern.FindStringSubmatch(e.Name())
		if m == nil {
			return nil
		}
		year, _ := strconv.Atoi(m[2])
		month, _ := strconv.Atoi(m[3])
		page, _ := strconv.Atoi(m[4])
		if out[year] == nil {
			out[year] = make(map[int][]ListingDir)
		}
		out[year][month] = append(out[year][month], ListingDir{
			Listing: Listing{Category: m[1], Year: year, Month: month, Page: page},
			Path:    p,
		})
		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("scan listing folders: %w", err)
	}
	for _, months := range out {
		for _, dirs := range months {
			slices.SortFunc(dirs, func(a, b ListingDir) int {
				return strings.Compare(a.FolderName(), b.FolderName())
			})
		}
	}
	return out, nil
}

// Job is one article file of one listing. Position and Total number the
// file among all article files of the folder.
type Job struct {
	ListingURL string
	Folder     string
	File       string
	Position   int
	Total      int
}

// BuildJobs returns one job per non-empty article file of the listing.
// Empty documents keep their place in the numbering but get no job.
func BuildJobs(dir ListingDir, origin string) ([]Job, error) {
	entries, err := os.ReadDir(dir.Path)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".html") && e.Name() != download.IndexFile {
			files = append(files, e.Name())
		}
	}
	slices.Sort(files)

	listingURL := dir.URL(origin)
	var jobs []Job
	for i, f := range files {
		raw, err := os.ReadFile(filepath.Join(dir.Path, f))
		if err != nil || extract.IsEmptyHTML(raw) {
			continue
		}
		jobs = append(jobs, Job{
			ListingURL: listingURL,
			Folder:     dir.Path,
			File:       f,
			Position:   i + 1,
			Total:      len(files),
		})
	}
	return jobs, nil
}
