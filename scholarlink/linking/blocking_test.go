package linking

import (
	"fmt"
	"reflect"
	"testing"
)

func namedRecord(key, first, last string) *Record {
	return &Record{Key: key, FirstName: first, LastName: last}
}

func TestNameIndexRanksCloseNamesFirst(t *testing.T) {
	pop := []*Record{
		namedRecord("0", "mary", "smith"),
		namedRecord("1", "maria", "smith"),
		namedRecord("2", "wei", "zhang"),
		namedRecord("3", "mary", "smithson"),
	}
	idx := buildNameIndex(pop)
	hits := idx.query("mary smith", 2)
	if len(hits) == 0 || hits[0] != 0 {
		t.Fatalf("exact name should rank first, got %v", hits)
	}
	for _, h := range hits {
		if h == 2 {
			t.Fatalf("unrelated name made the top hits: %v", hits)
		}
	}
}

func TestPlausibleLastNames(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"smith", "smith", true},
		{"smith", "smyth", true},
		{"smith", "zhang", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got := plausibleLastNames(
			namedRecord("a", "x", tc.a),
			namedRecord("b", "x", tc.b),
		)
		if got != tc.want {
			t.Errorf("plausibleLastNames(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func blockingPopulations(n int) ([]*Record, []*Record) {
	lastNames := []string{"smith", "mueller", "zhang", "ortiz", "nair", "okafor", "varga", "keller"}
	popA := make([]*Record, 0, n)
	popB := make([]*Record, 0, n)
	for i := 0; i < n; i++ {
		last := lastNames[i%len(lastNames)]
		popA = append(popA, namedRecord(fmt.Sprintf("a%d", i), fmt.Sprintf("fa%d", i), last))
		popB = append(popB, namedRecord(fmt.Sprintf("b%d", i), fmt.Sprintf("fb%d", i), last))
	}
	return popA, popB
}

func TestBlockPairsDeterministic(t *testing.T) {
	popA, popB := blockingPopulations(40)
	cfg := BlockingConfig{SampleSize: 100, BlockedProportion: 0.66, Seed: 58352}

	first := BlockPairs(popA, popB, cfg)
	second := BlockPairs(popA, popB, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same seed and populations should produce the same sample")
	}
	if len(first) == 0 {
		t.Fatal("empty sample")
	}
	if len(first) > cfg.SampleSize {
		t.Fatalf("sample of %d exceeds requested size %d", len(first), cfg.SampleSize)
	}
}

func TestBlockPairsNoDuplicates(t *testing.T) {
	popA, popB := blockingPopulations(20)
	pairs := BlockPairs(popA, popB, BlockingConfig{SampleSize: 200, BlockedProportion: 0.66, Seed: 1})
	seen := make(map[[2]string]struct{}, len(pairs))
	for _, p := range pairs {
		key := [2]string{p.A.Key, p.B.Key}
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate pair %v", key)
		}
		seen[key] = struct{}{}
	}
}

func TestBlockPairsRespectsLastNameFilter(t *testing.T) {
	popA := []*Record{namedRecord("a0", "mary", "smith")}
	popB := []*Record{
		namedRecord("b0", "mary", "smith"),
		namedRecord("b1", "mary", "zhang"),
	}
	pairs := BlockPairs(popA, popB, BlockingConfig{SampleSize: 1, BlockedProportion: 1.0, Seed: 1})
	if len(pairs) != 1 || pairs[0].B.Key != "b0" {
		t.Fatalf("blocked share should only carry plausible last names, got %v", pairs)
	}
}

func TestBlockPairsEmptyPopulation(t *testing.T) {
	pop := []*Record{namedRecord("a0", "mary", "smith")}
	cfg := BlockingConfig{SampleSize: 10, BlockedProportion: 0.5, Seed: 1}
	if pairs := BlockPairs(pop, nil, cfg); len(pairs) != 0 {
		t.Fatalf("got %v, want none", pairs)
	}
	if pairs := BlockPairs(nil, pop, cfg); len(pairs) != 0 {
		t.Fatalf("got %v, want none", pairs)
	}
}

func TestAllPairsFiltersImplausibleNames(t *testing.T) {
	popA := []*Record{namedRecord("a0", "mary", "smith")}
	popB := []*Record{
		namedRecord("b0", "maria", "smyth"),
		namedRecord("b1", "wei", "zhang"),
	}
	pairs := AllPairs(popA, popB)
	if len(pairs) != 1 || pairs[0].B.Key != "b0" {
		t.Fatalf("got %v", pairs)
	}
}
