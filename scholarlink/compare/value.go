package compare

import (
	"encoding/json"
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Value is the closed set of field value types that comparators accept.
// Records expose their fields as Values so that every comparator call site
// is checked against the same small union instead of failing on arbitrary
// input at scoring time.
type Value interface {
	isValue()
}

// String is a name, institution, or other free-text field.
type String string

// Numeric is a positive scalar such as a year or a count.
type Numeric float64

// YearTuple is a singleton year (length 1) or a year range (length 2).
type YearTuple []int

// YearCategory is one (year, category) observation, e.g. an institution
// affiliation in a given year.
type YearCategory struct {
	Year     int
	Category string
}

// TupleSet is a set of (year, category) observations.
type TupleSet []YearCategory

// Keywords is a set of keyword strings.
type Keywords struct {
	mapset.Set[string]
}

// Strings is a flat collection of strings, e.g. all reported institutions
// or coauthor names for one record.
type Strings []string

func (String) isValue()    {}
func (Numeric) isValue()   {}
func (YearTuple) isValue() {}
func (TupleSet) isValue()  {}
func (Keywords) isValue()  {}
func (Strings) isValue()   {}

// NewKeywords builds a Keywords value from the given terms.
func NewKeywords(terms ...string) Keywords {
	return Keywords{mapset.NewSet(terms...)}
}

// MarshalJSON encodes the set as a sorted array so label files diff
// cleanly. The embedded interface must not receive the call: it is nil
// for every zero-value Keywords.
func (k Keywords) MarshalJSON() ([]byte, error) {
	if k.Set == nil {
		return []byte("null"), nil
	}
	terms := k.ToSlice()
	sort.Strings(terms)
	return json.Marshal(terms)
}

// UnmarshalJSON accepts the array form written by MarshalJSON. null
// restores the zero value.
func (k *Keywords) UnmarshalJSON(data []byte) error {
	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		return fmt.Errorf("decoding keywords: %w", err)
	}
	if terms == nil {
		k.Set = nil
		return nil
	}
	k.Set = mapset.NewSet(terms...)
	return nil
}
