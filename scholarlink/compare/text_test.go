package compare_test

import (
	"math"
	"testing"

	"scholarlink/scholarlink/compare"
)

func TestTextSimilarityIdenticalTitle(t *testing.T) {
	got := compare.TextSimilarity(
		[]string{"essays on the economics of science"},
		[]string{"essays on the economics of science"},
	)
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("identical titles similarity = %v, want 1", got)
	}
}

func TestTextSimilarityDisjoint(t *testing.T) {
	got := compare.TextSimilarity(
		[]string{"protein folding dynamics"},
		[]string{"medieval trade routes"},
	)
	if got != 0 {
		t.Errorf("disjoint titles similarity = %v, want 0", got)
	}
}

func TestTextSimilarityPicksBestPair(t *testing.T) {
	dissertations := []string{"labor market returns schooling"}
	papers := []string{
		"quantum chromodynamics on the lattice",
		"returns to schooling in the labor market",
	}

	got := compare.TextSimilarity(dissertations, papers)
	onlyBad := compare.TextSimilarity(dissertations, papers[:1])
	if got <= onlyBad {
		t.Errorf("similarity %v should exceed unrelated-only similarity %v", got, onlyBad)
	}
	if got <= 0.3 {
		t.Errorf("similarity to near-identical title = %v, suspiciously low", got)
	}
}

func TestTextSimilarityStemming(t *testing.T) {
	// stemmed unigrams should align "economics"/"economic"
	a := compare.TextSimilarity([]string{"economic growth"}, []string{"economics growth"})
	if a <= 0.5 {
		t.Errorf("stemmed similarity = %v, want > 0.5", a)
	}
}

func TestYearTitleSimilarity(t *testing.T) {
	x := compare.TupleSet{{2001, "essays on auctions"}}
	y := compare.TupleSet{{2003, "essays on auctions"}, {2005, "fisheries management"}}

	if got := compare.YearTitleSimilarity(x, y); math.Abs(got-1) > 1e-9 {
		t.Errorf("YearTitleSimilarity = %v, want 1", got)
	}
}
