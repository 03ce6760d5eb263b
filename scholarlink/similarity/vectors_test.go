package similarity

import (
	"math"
	"testing"
)

func vec(pairs map[int64]float64) *TopicVector {
	v := NewTopicVector()
	for f, w := range pairs {
		v.Add(f, w)
	}
	return v
}

func TestCosineIdentical(t *testing.T) {
	a := vec(map[int64]float64{1: 1, 2: 2})
	got := Cosine(a, a)
	// The epsilon in the norms keeps this slightly below 1.
	if got <= 0.99 || got > 1 {
		t.Fatalf("self-cosine = %v", got)
	}
}

func TestCosineOrthogonal(t *testing.T) {
	a := vec(map[int64]float64{1: 1})
	b := vec(map[int64]float64{2: 1})
	if got := Cosine(a, b); got != 0 {
		t.Fatalf("disjoint vectors should score 0, got %v", got)
	}
}

func TestCosineEmptyVectorIsZeroNotNaN(t *testing.T) {
	a := vec(map[int64]float64{1: 1})
	empty := NewTopicVector()
	if got := Cosine(a, empty); got != 0 || math.IsNaN(got) {
		t.Fatalf("empty comparison should be 0, got %v", got)
	}
	if got := Cosine(empty, empty); got != 0 || math.IsNaN(got) {
		t.Fatalf("empty self-comparison should be 0, got %v", got)
	}
}

func TestCosineSymmetric(t *testing.T) {
	a := vec(map[int64]float64{1: 1, 2: 3})
	b := vec(map[int64]float64{2: 2, 3: 1})
	if Cosine(a, b) != Cosine(b, a) {
		t.Fatal("cosine should be symmetric")
	}
}

func TestNormalizeDividesByPaperCount(t *testing.T) {
	v := vec(map[int64]float64{1: 10, 2: 20})
	v.PaperCount = 10
	v.Normalize()
	if v.Weights[1] != 1 || v.Weights[2] != 2 {
		t.Fatalf("got %v", v.Weights)
	}
}

func TestNormalizationIsScaleInvariant(t *testing.T) {
	// Same topic mix at 10x the volume should compare identically.
	a := vec(map[int64]float64{1: 1, 2: 2})
	a.PaperCount = 3
	b := vec(map[int64]float64{1: 10, 2: 20})
	b.PaperCount = 30
	a.Normalize()
	b.Normalize()

	probe := vec(map[int64]float64{1: 1, 2: 1})
	if got, want := Cosine(a, probe), Cosine(b, probe); math.Abs(got-want) > 1e-12 {
		t.Fatalf("scale changed similarity: %v vs %v", got, want)
	}
}

func TestSplitPrePost(t *testing.T) {
	if SplitPrePost(1999, 2000) != PeriodPre {
		t.Fatal("year before degree year should be pre")
	}
	if SplitPrePost(2000, 2000) != PeriodPost {
		t.Fatal("degree year itself should be post")
	}
	if SplitPrePost(2005, 2000) != PeriodPost {
		t.Fatal("year after degree year should be post")
	}
}
