package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/JakeFAU/magazine-corpus/internal/jsonfile"
)

// Defect categories used across both sites.
const (
	CategoryIssueMetadata = "metadata - issue"
	CategoryIssue         = "Issue"
	CategoryArticle       = "Article"
	CategoryNavigation    = "navigation"

	articleBucket = "article_data_dict"
)

// Group collects the defects of one issue or page.
type Group struct {
	// Notes maps a category to its message.
	Notes map[string]string
	// Articles maps an article reference to its message.
	Articles map[string]string
}

// MarshalJSON flattens notes next to the article bucket.
func (g *Group) MarshalJSON() ([]byte, error) {
	obj := &jsonfile.Object{}
	keys := make([]string, 0, len(g.Notes))
	for k := range g.Notes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := obj.Set(k, g.Notes[k]); err != nil {
			return nil, err
		}
	}
	if len(g.Articles) > 0 {
		if err := obj.Set(articleBucket, g.Articles); err != nil {
			return nil, err
		}
	}
	return obj.MarshalJSON()
}

// UnmarshalJSON reverses MarshalJSON. Non-string notes are kept as raw JSON.
func (g *Group) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode defect group: %w", err)
	}
	for k, v := range raw {
		if k == articleBucket {
			var articles map[string]string
			if err := json.Unmarshal(v, &articles); err != nil {
				return fmt.Errorf("decode %s: %w", articleBucket, err)
			}
			for ref, msg := range articles {
				g.setArticle(ref, msg)
			}
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			s = string(v)
		}
		g.setNote(k, s)
	}
	return nil
}

func (g *Group) setNote(category, msg string) {
	if g.Notes == nil {
		g.Notes = make(map[string]string)
	}
	g.Notes[category] = msg
}

func (g *Group) setArticle(ref, msg string) {
	if g.Articles == nil {
		g.Articles = make(map[string]string)
	}
	g.Articles[ref] = msg
}

// Defects is the data-quality ledger of one extraction call or one run.
// The zero value is ready to use. Extraction functions return their own
// Defects and the caller merges them, so nothing is shared between workers.
type Defects struct {
	groups map[string]*Group
}

func (d *Defects) group(owner string) *Group {
	if d.groups == nil {
		d.groups = make(map[string]*Group)
	}
	g, ok := d.groups[owner]
	if !ok {
		g = &Group{}
		d.groups[owner] = g
	}
	return g
}

// Note records a category-level defect for owner.
func (d *Defects) Note(owner, category, msg string) {
	d.group(owner).setNote(category, msg)
}

// Article records an article-level defect for owner.
func (d *Defects) Article(owner, ref, msg string) {
	d.group(owner).setArticle(ref, msg)
}

// Merge copies every entry of other into d. Entries of other win.
func (d *Defects) Merge(other Defects) {
	for owner, g := range other.groups {
		if g == nil {
			continue
		}
		dst := d.group(owner)
		for k, v := range g.Notes {
			dst.setNote(k, v)
		}
		for k, v := range g.Articles {
			dst.setArticle(k, v)
		}
	}
}

// Empty reports whether no defect was recorded.
func (d Defects) Empty() bool {
	return len(d.groups) == 0
}

// Len returns the number of individual defect messages.
func (d Defects) Len() int {
	n := 0
	for _, g := range d.groups {
		if g == nil {
			continue
		}
		n += len(g.Notes) + len(g.Articles)
	}
	return n
}

// Group returns the defects recorded for owner, or nil.
func (d Defects) Group(owner string) *Group {
	return d.groups[owner]
}

// MarshalJSON encodes the ledger keyed by owner.
func (d Defects) MarshalJSON() ([]byte, error) {
	if d.groups == nil {
		return []byte("{}"), nil
	}
	return jsonfile.MarshalCompact(d.groups)
}

// UnmarshalJSON decodes a ledger keyed by owner.
func (d *Defects) UnmarshalJSON(data []byte) error {
	var groups map[string]*Group
	if err := json.Unmarshal(data, &groups); err != nil {
		return fmt.Errorf("decode defects: %w", err)
	}
	d.groups = groups
	return nil
}

// FlushDefects merges d into the defect ledger at path. Nothing is written
// when d is empty.
func FlushDefects(path string, d Defects) error {
	if d.Empty() {
		return nil
	}
	var existing Defects
	if _, err := jsonfile.Read(path, &existing); err != nil && !errors.Is(err, jsonfile.ErrEmpty) {
		return fmt.Errorf("load defect ledger: %w", err)
	}
	existing.Merge(d)
	if err := jsonfile.Write(path, existing); err != nil {
		return fmt.Errorf("write defect ledger: %w", err)
	}
	return nil
}
