package linking

import (
	"errors"
	"log/slog"
	"math"
)

// LabelDecision is one answer from a labeller.
type LabelDecision int

const (
	DecisionMatch LabelDecision = iota
	DecisionDistinct
	DecisionUnsure
	DecisionFinish
)

// Labeller answers match/distinct questions about candidate pairs. The
// console labeller in cmd/train implements it; tests use a scripted one.
type Labeller interface {
	Decide(a, b *Record) (LabelDecision, error)
}

var ErrLabellingAborted = errors.New("labelling session aborted")

// ActiveConfig bounds an active-learning session.
type ActiveConfig struct {
	// RefitEvery retrains the model after this many new labels.
	RefitEvery int
	// MaxQuestions stops the session even if the labeller never finishes.
	MaxQuestions int
	Train        TrainConfig
}

var DefaultActive = ActiveConfig{
	RefitEvery:   5,
	MaxQuestions: 200,
	Train:        DefaultTrain,
}

// LabelActively runs an uncertainty-sampling loop: score every unlabelled
// candidate, ask about the pair the current model is least sure of, refit
// periodically, and return the accumulated labels. Before the first fit
// it asks about pairs in blocking order.
func LabelActively(schema *Schema, candidates []CandidatePair, labels *TrainingLabels, labeller Labeller, cfg ActiveConfig) (*Model, error) {
	if cfg.RefitEvery <= 0 {
		cfg.RefitEvery = DefaultActive.RefitEvery
	}
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = DefaultActive.MaxQuestions
	}

	asked := make(map[[2]string]struct{}, labels.Len())
	for _, p := range labels.Match {
		asked[[2]string{p.A.Key, p.B.Key}] = struct{}{}
	}
	for _, p := range labels.Distinct {
		asked[[2]string{p.A.Key, p.B.Key}] = struct{}{}
	}

	model := &Model{}
	refit := func() error {
		if labels.Len() == 0 {
			return nil
		}
		vectors, ys, err := labels.Vectors(schema)
		if err != nil {
			return err
		}
		if !hasBothClasses(ys) {
			return nil
		}
		return model.Fit(schema, vectors, ys, cfg.Train)
	}
	if err := refit(); err != nil {
		return nil, err
	}

	sinceRefit := 0
	for question := 0; question < cfg.MaxQuestions; question++ {
		pair, ok := nextQuestion(schema, model, candidates, asked)
		if !ok {
			break
		}

		decision, err := labeller.Decide(pair.A, pair.B)
		if err != nil {
			return nil, err
		}
		asked[[2]string{pair.A.Key, pair.B.Key}] = struct{}{}

		switch decision {
		case DecisionMatch:
			labels.Match = append(labels.Match, LabelledPair{A: *pair.A, B: *pair.B})
		case DecisionDistinct:
			labels.Distinct = append(labels.Distinct, LabelledPair{A: *pair.A, B: *pair.B})
		case DecisionUnsure:
			continue
		case DecisionFinish:
			question = cfg.MaxQuestions
		}

		sinceRefit++
		if sinceRefit >= cfg.RefitEvery || question >= cfg.MaxQuestions {
			if err := refit(); err != nil {
				return nil, err
			}
			sinceRefit = 0
		}
	}

	if len(model.Weights) == 0 {
		if err := refit(); err != nil {
			return nil, err
		}
	}
	if len(model.Weights) == 0 {
		return nil, ErrNoTrainingData
	}
	slog.Info("labelling session done", "matches", len(labels.Match), "distinct", len(labels.Distinct))
	return model, nil
}

func hasBothClasses(labels []float64) bool {
	var pos, neg bool
	for _, y := range labels {
		if y == 1 {
			pos = true
		} else {
			neg = true
		}
	}
	return pos && neg
}

// nextQuestion picks the unlabelled pair whose score is closest to 0.5,
// or the first unlabelled pair while the model is unfitted.
func nextQuestion(schema *Schema, model *Model, candidates []CandidatePair, asked map[[2]string]struct{}) (CandidatePair, bool) {
	var best CandidatePair
	bestGap := math.Inf(1)
	found := false

	for _, pair := range candidates {
		if _, done := asked[[2]string{pair.A.Key, pair.B.Key}]; done {
			continue
		}
		if len(model.Weights) == 0 {
			return pair, true
		}
		vec, err := schema.Vector(pair.A, pair.B)
		if err != nil {
			continue
		}
		score, err := model.Score(vec)
		if err != nil {
			continue
		}
		gap := math.Abs(score - 0.5)
		if gap < bestGap {
			bestGap = gap
			best = pair
			found = true
		}
	}
	return best, found
}
