package linking

import (
	"math"
	"path/filepath"
	"testing"
)

func trainingSchema(t *testing.T) *Schema {
	t.Helper()
	schema, err := BuildSchema(LinkGraduates, FeatureFlags{}, false)
	if err != nil {
		t.Fatal(err)
	}
	return schema
}

// syntheticLabels builds clearly separable training data: matches are
// same-name same-year pairs, distinct pairs differ in everything.
func syntheticLabels() *TrainingLabels {
	labels := &TrainingLabels{}
	names := []struct{ first, last string }{
		{"mary", "smith"}, {"john", "mueller"}, {"ana", "ortiz"},
		{"wei", "zhang"}, {"priya", "nair"}, {"tom", "okafor"},
	}
	for i, n := range names {
		year := float64(1990 + i)
		labels.Match = append(labels.Match, LabelledPair{
			A: Record{Key: "a" + n.last, FirstName: n.first, LastName: n.last, Year: year},
			B: Record{Key: "b" + n.last, FirstName: n.first, LastName: n.last, Year: year},
		})
		other := names[(i+1)%len(names)]
		labels.Distinct = append(labels.Distinct, LabelledPair{
			A: Record{Key: "a" + n.last, FirstName: n.first, LastName: n.last, Year: year},
			B: Record{Key: "b" + other.last, FirstName: other.first, LastName: other.last, Year: year + 8},
		})
	}
	return labels
}

func fitModel(t *testing.T, schema *Schema) *Model {
	t.Helper()
	vectors, ys, err := syntheticLabels().Vectors(schema)
	if err != nil {
		t.Fatal(err)
	}
	model := &Model{}
	if err := model.Fit(schema, vectors, ys, DefaultTrain); err != nil {
		t.Fatal(err)
	}
	return model
}

func TestModelSeparatesObviousPairs(t *testing.T) {
	schema := trainingSchema(t)
	model := fitModel(t, schema)

	match, err := schema.Vector(
		&Record{Key: "x", FirstName: "lena", LastName: "varga", Year: 1997},
		&Record{Key: "y", FirstName: "lena", LastName: "varga", Year: 1997},
	)
	if err != nil {
		t.Fatal(err)
	}
	distinct, err := schema.Vector(
		&Record{Key: "x", FirstName: "lena", LastName: "varga", Year: 1997},
		&Record{Key: "z", FirstName: "bob", LastName: "keller", Year: 2010},
	)
	if err != nil {
		t.Fatal(err)
	}

	matchScore, err := model.Score(match)
	if err != nil {
		t.Fatal(err)
	}
	distinctScore, err := model.Score(distinct)
	if err != nil {
		t.Fatal(err)
	}
	if matchScore <= distinctScore {
		t.Fatalf("match scored %v, distinct scored %v", matchScore, distinctScore)
	}
	if matchScore < model.Threshold {
		t.Fatalf("obvious match %v fell below threshold %v", matchScore, model.Threshold)
	}
	if distinctScore >= model.Threshold {
		t.Fatalf("obvious non-match %v cleared threshold %v", distinctScore, model.Threshold)
	}
}

func TestThresholdKeepsRequestedRecall(t *testing.T) {
	schema := trainingSchema(t)
	labels := syntheticLabels()
	vectors, ys, err := labels.Vectors(schema)
	if err != nil {
		t.Fatal(err)
	}
	model := &Model{}
	if err := model.Fit(schema, vectors, ys, DefaultTrain); err != nil {
		t.Fatal(err)
	}

	kept := 0
	total := 0
	for i, vec := range vectors {
		if ys[i] != 1 {
			continue
		}
		total++
		score, err := model.Score(vec)
		if err != nil {
			t.Fatal(err)
		}
		if score >= model.Threshold {
			kept++
		}
	}
	if float64(kept) < DefaultTrain.Recall*float64(total) {
		t.Fatalf("threshold keeps %d of %d matches, wanted recall %v", kept, total, DefaultTrain.Recall)
	}
}

func TestModelScoreImputesMissing(t *testing.T) {
	schema := trainingSchema(t)
	model := fitModel(t, schema)

	vec, err := schema.Vector(
		&Record{Key: "x", FirstName: "lena", LastName: "varga", Year: 1997},
		&Record{Key: "y", FirstName: "lena", LastName: "varga", MiddleName: strPtr("k"), Year: 1997},
	)
	if err != nil {
		t.Fatal(err)
	}
	hasNaN := false
	for _, v := range vec {
		if math.IsNaN(v) {
			hasNaN = true
		}
	}
	if !hasNaN {
		t.Fatal("expected at least one missing feature in the test vector")
	}
	score, err := model.Score(vec)
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(score) || score < 0 || score > 1 {
		t.Fatalf("score %v is not a probability", score)
	}
}

func TestModelSaveLoadRoundtrip(t *testing.T) {
	schema := trainingSchema(t)
	model := fitModel(t, schema)

	path := filepath.Join(t.TempDir(), "model")
	if err := model.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadModel(path, schema)
	if err != nil {
		t.Fatal(err)
	}

	vec, err := schema.Vector(
		&Record{Key: "x", FirstName: "mary", LastName: "smith", Year: 1990},
		&Record{Key: "y", FirstName: "mary", LastName: "smith", Year: 1990},
	)
	if err != nil {
		t.Fatal(err)
	}
	want, err := model.Score(vec)
	if err != nil {
		t.Fatal(err)
	}
	got, err := loaded.Score(vec)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(want-got) > 1e-12 {
		t.Fatalf("loaded model scores %v, original %v", got, want)
	}
}

func TestLoadModelRejectsSchemaMismatch(t *testing.T) {
	schema := trainingSchema(t)
	model := fitModel(t, schema)
	path := filepath.Join(t.TempDir(), "model")
	if err := model.Save(path); err != nil {
		t.Fatal(err)
	}

	other, err := BuildSchema(LinkGraduates, FeatureFlags{Keywords: true}, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := LoadModel(path, other); err == nil {
		t.Fatal("loading a model against a different schema should fail")
	}
}

func TestFitRejectsEmptyTraining(t *testing.T) {
	model := &Model{}
	if err := model.Fit(trainingSchema(t), nil, nil, DefaultTrain); err != ErrNoTrainingData {
		t.Fatalf("expected ErrNoTrainingData, got %v", err)
	}
}
