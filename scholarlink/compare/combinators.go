package compare

import "regexp"

// UnmatchedSentinel is the starting value for "distance of the closest
// pair" searches. A large finite number rather than +Inf, so that empty
// collections produce a well-behaved (never winning) distance without
// float edge cases downstream.
const UnmatchedSentinel = 1e8

// ValueComparator computes a distance between two single values. The
// boolean is false when no information could be extracted from the pair.
type ValueComparator func(a, b Value) (float64, bool, error)

// CollectionComparator computes a distance between two flat collections.
type CollectionComparator func(a, b []Value) (float64, error)

// MinOverPairs lifts a single-value comparator into a comparator over two
// collections that returns the distance between the two least distant
// elements. Pairs with no information are skipped; the result does not
// depend on the iteration order of either collection.
func MinOverPairs(cmp ValueComparator) CollectionComparator {
	return func(a, b []Value) (float64, error) {
		out := float64(UnmatchedSentinel)
		for _, i := range a {
			for _, j := range b {
				d, ok, err := cmp(i, j)
				if err != nil {
					return 0, err
				}
				if ok && d < out {
					out = d
				}
			}
		}
		return out, nil
	}
}

// Position selects which entry of a (year, category) tuple a set-of-tuples
// comparator operates on.
type Position int

const (
	// PositionYear compares the numeric entries only.
	PositionYear Position = iota
	// PositionCategory compares the category strings only.
	PositionCategory
	// PositionBoth multiplies the per-position distances of each cross
	// pair and keeps the smallest product.
	PositionBoth
)

// TupleSetDistance builds a comparator over two sets of (year, category)
// tuples. For a fixed position it is the minimum distance between the
// selected entries across all cross pairs; for PositionBoth it is the
// minimum, over all cross pairs, of the product of the year distance and
// the category distance.
func TupleSetDistance(pos Position, ignore *regexp.Regexp) func(a, b TupleSet) float64 {
	return func(a, b TupleSet) float64 {
		out := float64(UnmatchedSentinel)
		for _, ta := range a {
			for _, tb := range b {
				d, ok := tupleEntryDistance(ta, tb, pos, ignore)
				if ok && d < out {
					out = d
				}
			}
		}
		return out
	}
}

func tupleEntryDistance(ta, tb YearCategory, pos Position, ignore *regexp.Regexp) (float64, bool) {
	switch pos {
	case PositionYear:
		return NumericDistance(float64(ta.Year), float64(tb.Year)), true
	case PositionCategory:
		return StringDistance(ta.Category, tb.Category, ignore)
	default:
		ds, ok := StringDistance(ta.Category, tb.Category, nil)
		if !ok {
			return 0, false
		}
		return NumericDistance(float64(ta.Year), float64(tb.Year)) * ds, true
	}
}

// The three named variants used by the linking schemas. The category
// variant ignores generic university prefixes; the year and overall
// variants compare the raw entries, matching the upstream feature
// definitions for grant links.
var (
	SetDistanceString  = TupleSetDistance(PositionCategory, IgnoreUniversity)
	SetDistanceNumeric = TupleSetDistance(PositionYear, nil)
	SetDistanceOverall = TupleSetDistance(PositionBoth, nil)
)

// InstitutionDistance is the distance between the two closest institution
// names across two flat collections, with generic university prefixes
// stripped before comparing.
func InstitutionDistance(a, b Strings) float64 {
	out := float64(UnmatchedSentinel)
	for _, i := range a {
		for _, j := range b {
			d, ok := StringDistance(i, j, IgnoreUniversity)
			if ok && d < out {
				out = d
			}
		}
	}
	return out
}
