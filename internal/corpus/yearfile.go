package corpus

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JakeFAU/magazine-corpus/internal/jsonfile"
)

const generalMetadataKey = "general_metadata"

// ErrNoYearLabel is returned when a year file has no top-level label.
var ErrNoYearLabel = errors.New("year file has no label")

// YearFile is the corpus document of one year:
//
//	{"<Label>": {"general_metadata": {...}, "<unit key>": <unit>, ...}}
//
// Units are written in Order, after the general metadata.
type YearFile[U any] struct {
	Label   string
	General GeneralMetadata
	Units   map[string]U
	Order   Order
}

// NewYearFile returns an empty year file.
func NewYearFile[U any](label string, order Order) *YearFile[U] {
	return &YearFile[U]{
		Label: label,
		Units: make(map[string]U),
		Order: order,
	}
}

// MarshalJSON writes the label, the general metadata, then the sorted units.
func (y *YearFile[U]) MarshalJSON() ([]byte, error) {
	order := y.Order
	if order == nil {
		order = NaturalOrder
	}
	inner := &jsonfile.Object{}
	if err := inner.Set(generalMetadataKey, y.General); err != nil {
		return nil, err
	}
	for _, key := range SortedKeys(y.Units, order) {
		if err := inner.Set(key, y.Units[key]); err != nil {
			return nil, err
		}
	}
	outer := &jsonfile.Object{}
	if err := outer.Set(y.Label, inner); err != nil {
		return nil, err
	}
	return outer.MarshalJSON()
}

// UnmarshalJSON reads a year file. Order is left untouched.
func (y *YearFile[U]) UnmarshalJSON(data []byte) error {
	var outer map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return fmt.Errorf("decode year file: %w", err)
	}
	if len(outer) == 0 {
		return ErrNoYearLabel
	}
	if len(outer) > 1 {
		return fmt.Errorf("year file has %d labels", len(outer))
	}
	y.Units = make(map[string]U)
	for label, members := range outer {
		y.Label = label
		for key, raw := range members {
			if key == generalMetadataKey {
				if err := json.Unmarshal(raw, &y.General); err != nil {
					return fmt.Errorf("decode %s: %w", generalMetadataKey, err)
				}
				continue
			}
			var unit U
			if err := json.Unmarshal(raw, &unit); err != nil {
				return fmt.Errorf("decode unit %q: %w", key, err)
			}
			y.Units[key] = unit
		}
	}
	return nil
}

// ReadYearFile loads the year file at path.
func ReadYearFile[U any](path string, order Order) (*YearFile[U], error) {
	y := &YearFile[U]{Order: order}
	found, err := jsonfile.Read(path, y)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("read %s: %w", path, errNotFound)
	}
	return y, nil
}

var errNotFound = errors.New("year file not found")
