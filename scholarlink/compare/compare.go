package compare

import (
	"errors"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var (
	// ErrTypeMismatch is returned when a comparator receives two values of
	// different kinds. Variables need to be of the same type.
	ErrTypeMismatch = errors.New("variables need to be of the same type")

	// ErrBadTupleLengths is returned by RangeMembership when neither input
	// is a length-1 tuple.
	ErrBadTupleLengths = errors.New("tuples are of wrong length")
)

// IgnoreUniversity strips generic university prefixes before comparing
// institution names, so that "university of chicago" and "chicago" score
// as near-identical.
var IgnoreUniversity = regexp.MustCompile("university of|university")

// RangeMargin extends a year range by +/- this many years in
// RangeMembership.
const RangeMargin = 4

// StringDistance returns 1 minus the Jaro-Winkler similarity of a and b,
// optionally stripping ignore from both sides first. The second return is
// false when the similarity cannot be computed (both strings empty after
// stripping); the caller treats that as "no information" rather than an
// error so that one malformed field never aborts a scoring pass.
func StringDistance(a, b string, ignore *regexp.Regexp) (float64, bool) {
	if ignore != nil {
		a = strings.TrimSpace(ignore.ReplaceAllString(a, ""))
		b = strings.TrimSpace(ignore.ReplaceAllString(b, ""))
	}
	if a == "" && b == "" {
		return 0, false
	}
	return 1 - matchr.JaroWinkler(a, b, false), true
}

// NumericDistance returns the absolute difference of the base-10 logs of x
// and y. Both inputs must be positive; the result is NaN otherwise.
func NumericDistance(x, y float64) float64 {
	return math.Abs(math.Log10(x) - math.Log10(y))
}

// TypedDistance compares two values depending on their kind. Strings score
// via StringDistance, numerics via NumericDistance; any other combination
// is ErrTypeMismatch. This is the single dispatch point for the set and
// tuple combinators. The boolean is false when a string comparison had no
// information.
func TypedDistance(a, b Value, ignore *regexp.Regexp) (float64, bool, error) {
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		if !ok {
			return 0, false, ErrTypeMismatch
		}
		d, ok := StringDistance(string(av), string(bv), ignore)
		return d, ok, nil
	case Numeric:
		bv, ok := b.(Numeric)
		if !ok {
			return 0, false, ErrTypeMismatch
		}
		return NumericDistance(float64(av), float64(bv)), true, nil
	default:
		return 0, false, ErrTypeMismatch
	}
}

// RangeMembership checks whether the single year in the length-1 tuple
// falls within the range formed by the length-2 tuple, extended by margin
// on both sides. The arguments may come in either order. It returns 1 or 0,
// or ErrBadTupleLengths when no argument has length 1.
func RangeMembership(a, b YearTuple, margin int) (float64, error) {
	var value int
	var bounds YearTuple

	switch {
	case len(a) == 1:
		value, bounds = a[0], b
	case len(b) == 1:
		value, bounds = b[0], a
	default:
		return 0, ErrBadTupleLengths
	}

	if len(bounds) == 0 {
		return 0, ErrBadTupleLengths
	}

	lo, hi := bounds[0], bounds[0]
	for _, y := range bounds {
		lo = min(lo, y)
		hi = max(hi, y)
	}

	if value >= lo-margin && value <= hi+margin {
		return 1, nil
	}
	return 0, nil
}

// RangeMembershipLenient wraps RangeMembership for labelling-time use,
// where the upstream sampler occasionally compares a record against itself
// and hands over two length-2 tuples. The error is logged and reported as
// "no information" instead of aborting the pass. Keep this separate from
// the strict variant: scoring uses RangeMembership and must fail loudly.
func RangeMembershipLenient(a, b YearTuple, margin int) (float64, bool) {
	out, err := RangeMembership(a, b, margin)
	if err != nil {
		slog.Warn("range comparison on degenerate input, treating as missing",
			"a", a, "b", b, "error", err)
		return 0, false
	}
	return out, true
}

// KeywordOverlap returns 1 if any keyword in a also occurs in b, else 0.
func KeywordOverlap(a, b Keywords) float64 {
	if a.Set == nil || b.Set == nil {
		return 0
	}
	if a.Intersect(b.Set).Cardinality() > 0 {
		return 1
	}
	return 0
}

// FieldWindowMatch returns 1 if any pair of observations across a and b
// shares a category with the year of a within [-5, +7] of the year of b.
// Used for matching grant fields against publication fields, where output
// typically trails funding.
func FieldWindowMatch(a, b TupleSet) float64 {
	for _, ta := range a {
		for _, tb := range b {
			if ta.Category != tb.Category {
				continue
			}
			if ta.Year >= tb.Year-5 && ta.Year <= tb.Year+7 {
				return 1
			}
		}
	}
	return 0
}
