package compare_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"scholarlink/scholarlink/compare"
)

func TestKeywordsJSON(t *testing.T) {
	data, err := json.Marshal(compare.NewKeywords("b", "a"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["a","b"]` {
		t.Fatalf("got %s, want sorted array", data)
	}

	var k compare.Keywords
	if err := json.Unmarshal(data, &k); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if k.Cardinality() != 2 || !k.Contains("a") {
		t.Fatalf("set not restored: %v", k)
	}

	data, err = json.Marshal(compare.Keywords{})
	if err != nil {
		t.Fatalf("marshal zero value: %v", err)
	}
	if string(data) != "null" {
		t.Fatalf("got %s, want null", data)
	}
	var zero compare.Keywords
	if err := json.Unmarshal(data, &zero); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if zero.Set != nil {
		t.Fatalf("null should restore the zero value")
	}
}

func TestStringDistanceIdentity(t *testing.T) {
	for _, s := range []string{"smith", "university of chicago", "a", "van der berg"} {
		d, ok := compare.StringDistance(s, s, nil)
		if !ok {
			t.Fatalf("no information for %q", s)
		}
		if d != 0 {
			t.Errorf("StringDistance(%q, %q) = %v, want 0", s, s, d)
		}
	}
}

func TestStringDistanceNoInformation(t *testing.T) {
	if _, ok := compare.StringDistance("", "", nil); ok {
		t.Error("expected no information for two empty strings")
	}
	if _, ok := compare.StringDistance("university", "university of", compare.IgnoreUniversity); ok {
		t.Error("expected no information when both sides are stripped empty")
	}
}

func TestNumericDistance(t *testing.T) {
	cases := [][2]float64{{1994, 2006}, {1, 10}, {1950, 1951}}
	for _, c := range cases {
		if d1, d2 := compare.NumericDistance(c[0], c[1]), compare.NumericDistance(c[1], c[0]); d1 != d2 {
			t.Errorf("NumericDistance not symmetric for %v: %v vs %v", c, d1, d2)
		}
	}
	if d := compare.NumericDistance(1994, 1994); d != 0 {
		t.Errorf("NumericDistance(x, x) = %v, want 0", d)
	}
	if d := compare.NumericDistance(1, 10); math.Abs(d-1) > 1e-12 {
		t.Errorf("NumericDistance(1, 10) = %v, want 1", d)
	}
}

func TestTypedDistanceMismatch(t *testing.T) {
	pairs := [][2]compare.Value{
		{compare.String("smith"), compare.Numeric(1994)},
		{compare.Numeric(1994), compare.String("smith")},
		{compare.YearTuple{1994}, compare.Numeric(1994)},
	}
	for _, p := range pairs {
		if _, _, err := compare.TypedDistance(p[0], p[1], nil); !errors.Is(err, compare.ErrTypeMismatch) {
			t.Errorf("TypedDistance(%v, %v) error = %v, want ErrTypeMismatch", p[0], p[1], err)
		}
	}
}

func TestRangeMembership(t *testing.T) {
	short := compare.YearTuple{1999}
	long := compare.YearTuple{1995, 2005}

	got, err := compare.RangeMembership(short, long, compare.RangeMargin)
	if err != nil || got != 1 {
		t.Errorf("RangeMembership((1999,), (1995,2005)) = %v, %v, want 1", got, err)
	}

	outside := compare.YearTuple{1990}
	got, err = compare.RangeMembership(outside, long, compare.RangeMargin)
	if err != nil || got != 0 {
		t.Errorf("RangeMembership((1990,), (1995,2005)) = %v, %v, want 0", got, err)
	}

	// 1991 is exactly min(range) - margin
	boundary := compare.YearTuple{1991}
	got, err = compare.RangeMembership(boundary, long, compare.RangeMargin)
	if err != nil || got != 1 {
		t.Errorf("RangeMembership((1991,), (1995,2005)) = %v, %v, want 1", got, err)
	}
}

func TestRangeMembershipSymmetric(t *testing.T) {
	short := compare.YearTuple{1999}
	long := compare.YearTuple{1995, 2005}

	a, errA := compare.RangeMembership(short, long, compare.RangeMargin)
	b, errB := compare.RangeMembership(long, short, compare.RangeMargin)
	if errA != nil || errB != nil || a != b {
		t.Errorf("RangeMembership not symmetric: %v (%v) vs %v (%v)", a, errA, b, errB)
	}
}

func TestRangeMembershipBadLengths(t *testing.T) {
	a := compare.YearTuple{1995, 2005}
	b := compare.YearTuple{1990, 2000}
	if _, err := compare.RangeMembership(a, b, compare.RangeMargin); !errors.Is(err, compare.ErrBadTupleLengths) {
		t.Errorf("expected ErrBadTupleLengths, got %v", err)
	}

	if _, ok := compare.RangeMembershipLenient(a, b, compare.RangeMargin); ok {
		t.Error("lenient variant should report no information on degenerate input")
	}
	if got, ok := compare.RangeMembershipLenient(compare.YearTuple{1999}, a, compare.RangeMargin); !ok || got != 1 {
		t.Errorf("lenient variant on valid input = %v, %v, want 1, true", got, ok)
	}

	empty := compare.YearTuple{}
	if _, err := compare.RangeMembership(compare.YearTuple{1999}, empty, compare.RangeMargin); !errors.Is(err, compare.ErrBadTupleLengths) {
		t.Errorf("empty counterpart: expected ErrBadTupleLengths, got %v", err)
	}
	if _, ok := compare.RangeMembershipLenient(compare.YearTuple{1999}, empty, compare.RangeMargin); ok {
		t.Error("lenient variant should report no information for an empty counterpart")
	}
}

func TestKeywordOverlap(t *testing.T) {
	if got := compare.KeywordOverlap(compare.NewKeywords("a", "b"), compare.NewKeywords("b", "c")); got != 1 {
		t.Errorf("KeywordOverlap({a,b}, {b,c}) = %v, want 1", got)
	}
	if got := compare.KeywordOverlap(compare.NewKeywords("a"), compare.NewKeywords("c")); got != 0 {
		t.Errorf("KeywordOverlap({a}, {c}) = %v, want 0", got)
	}
	if got := compare.KeywordOverlap(compare.Keywords{}, compare.NewKeywords("a")); got != 0 {
		t.Errorf("KeywordOverlap on missing set = %v, want 0", got)
	}
}

func TestFieldWindowMatch(t *testing.T) {
	mag := compare.TupleSet{{2006, "biology"}, {2008, "ecology"}}
	nsf := compare.TupleSet{{1998, "chemistry"}, {2010, "sociology"}, {2008, "biology"}}

	if got := compare.FieldWindowMatch(mag, nsf); got != 1 {
		t.Errorf("FieldWindowMatch = %v, want 1 (biology 2006 within window of 2008)", got)
	}

	if got := compare.FieldWindowMatch(
		compare.TupleSet{{2006, "biology"}},
		compare.TupleSet{{2020, "biology"}},
	); got != 0 {
		t.Errorf("FieldWindowMatch outside window = %v, want 0", got)
	}
}

func TestSetDistanceNumericCrossMin(t *testing.T) {
	a := compare.TupleSet{{1994, "X"}, {2006, "Y"}}
	b := compare.TupleSet{{1995, "X"}, {2010, "Z"}}

	want := compare.NumericDistance(1994, 1995)
	if got := compare.SetDistanceNumeric(a, b); math.Abs(got-want) > 1e-12 {
		t.Errorf("SetDistanceNumeric = %v, want %v", got, want)
	}

	// invariant to iteration order of either set
	aRev := compare.TupleSet{{2006, "Y"}, {1994, "X"}}
	bRev := compare.TupleSet{{2010, "Z"}, {1995, "X"}}
	if got := compare.SetDistanceNumeric(aRev, bRev); math.Abs(got-want) > 1e-12 {
		t.Errorf("SetDistanceNumeric order-dependent: %v, want %v", got, want)
	}
}

func TestSetDistanceOverall(t *testing.T) {
	a := compare.TupleSet{{1994, "stanford"}, {2006, "yale"}}
	b := compare.TupleSet{{1994, "stanford"}, {2010, "duke"}}

	// identical tuple present: both per-position distances are 0
	if got := compare.SetDistanceOverall(a, b); got != 0 {
		t.Errorf("SetDistanceOverall with exact tuple match = %v, want 0", got)
	}
}

func TestInstitutionDistanceIgnoresUniversity(t *testing.T) {
	a := compare.Strings{"university of chicago", "massachusetts institute of technology"}
	b := compare.Strings{"university of schicago", "new york university"}

	want, ok := compare.StringDistance("chicago", "schicago", nil)
	if !ok {
		t.Fatal("no information for chicago/schicago")
	}

	if got := compare.InstitutionDistance(a, b); math.Abs(got-want) > 1e-12 {
		t.Errorf("InstitutionDistance = %v, want %v (chicago vs schicago)", got, want)
	}
}

func TestMinOverPairsEmpty(t *testing.T) {
	cmp := func(a, b compare.Value) (float64, bool, error) {
		return compare.TypedDistance(a, b, nil)
	}
	d, err := compare.MinOverPairs(cmp)(nil, []compare.Value{compare.String("x")})
	if err != nil {
		t.Fatal(err)
	}
	if d != compare.UnmatchedSentinel {
		t.Errorf("empty collection distance = %v, want sentinel %v", d, compare.UnmatchedSentinel)
	}
}
