package linking

import (
	"os"
	"reflect"
	"testing"
)

// oracleLabeller answers from ground truth: a pair matches when both keys
// share the same suffix.
type oracleLabeller struct {
	questions int
}

func (o *oracleLabeller) Decide(a, b *Record) (LabelDecision, error) {
	o.questions++
	if a.FirstName == b.FirstName && a.LastName == b.LastName && a.Year == b.Year {
		return DecisionMatch, nil
	}
	return DecisionDistinct, nil
}

func testPopulations() ([]*Record, []*Record) {
	people := []struct {
		first, last string
		year        float64
	}{
		{"mary", "smith", 1994},
		{"john", "mueller", 1998},
		{"ana", "ortiz", 2003},
		{"wei", "zhang", 2008},
		{"priya", "nair", 2011},
		{"tom", "okafor", 1991},
	}
	popA := make([]*Record, 0, len(people))
	popB := make([]*Record, 0, len(people))
	for i, p := range people {
		popA = append(popA, &Record{Key: "a" + p.last, FirstName: p.first, LastName: p.last, Year: p.year})
		// B carries the same person, sometimes with a typo'd last name.
		last := p.last
		if i%2 == 0 {
			last = p.last + "s"
		}
		popB = append(popB, &Record{Key: "b" + p.last, FirstName: p.first, LastName: last, Year: p.year})
	}
	return popA, popB
}

func trainedEngine(t *testing.T, root string) *Engine {
	t.Helper()
	fp := Fingerprint{LinkingType: LinkGraduates, Field: "chemistry", StartYear: 1990, EndYear: 2015}
	eng, err := NewEngine(fp, false)
	if err != nil {
		t.Fatal(err)
	}
	popA, popB := testPopulations()
	candidates := BlockPairs(popA, popB, BlockingConfig{SampleSize: 36, BlockedProportion: 0.66, Seed: 58352})
	cfg := DefaultActive
	cfg.MaxQuestions = 36
	if err := eng.LoadOrTrain(root, candidates, &oracleLabeller{}, cfg); err != nil {
		t.Fatal(err)
	}
	return eng
}

func TestEngineEndToEnd(t *testing.T) {
	root := t.TempDir()
	eng := trainedEngine(t, root)

	popA, popB := testPopulations()
	links, err := eng.Link(popA, popB, MergeOneToOne, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) == 0 {
		t.Fatal("no links emitted")
	}

	seenA := make(map[string]struct{})
	seenB := make(map[string]struct{})
	for _, l := range links {
		if _, dup := seenA[l.A]; dup {
			t.Fatalf("one_to_one emitted %s twice", l.A)
		}
		if _, dup := seenB[l.B]; dup {
			t.Fatalf("one_to_one emitted %s twice", l.B)
		}
		seenA[l.A] = struct{}{}
		seenB[l.B] = struct{}{}
		if l.A[1:] != l.B[1:] {
			t.Errorf("wrong link %s -> %s (score %v)", l.A, l.B, l.Score)
		}
		if l.Score < eng.Model.Threshold {
			t.Errorf("emitted link below threshold: %v", l)
		}
	}
}

func TestEngineReusesFittedModel(t *testing.T) {
	root := t.TempDir()
	eng := trainedEngine(t, root)

	fresh, err := NewEngine(eng.Fingerprint, false)
	if err != nil {
		t.Fatal(err)
	}
	// No labeller: a cache miss would fail instead of silently retraining.
	if err := fresh.LoadOrTrain(root, nil, nil, DefaultActive); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fresh.Model.Weights, eng.Model.Weights) {
		t.Fatal("cached model differs from the fitted one")
	}

	if _, err := os.Stat(eng.Fingerprint.LabelsPath(root)); err != nil {
		t.Fatalf("labels were not persisted: %v", err)
	}
}

func TestEngineDeterministicLinks(t *testing.T) {
	root := t.TempDir()
	eng := trainedEngine(t, root)
	popA, popB := testPopulations()

	first, err := eng.Link(popA, popB, MergeOneToOne, 0)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.Link(popA, popB, MergeOneToOne, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same inputs should produce the same links")
	}
}

func TestEngineGazetteerTopK(t *testing.T) {
	root := t.TempDir()
	eng := trainedEngine(t, root)
	popA, popB := testPopulations()

	links, err := eng.Link(popA, popB, MergeGazetteer, 2)
	if err != nil {
		t.Fatal(err)
	}
	perA := make(map[string]int)
	for _, l := range links {
		perA[l.A]++
		if perA[l.A] > 2 {
			t.Fatalf("gazetteer emitted more than 2 links for %s", l.A)
		}
	}
}
