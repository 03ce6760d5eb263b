package linking

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"scholarlink/scholarlink/monitoring"
)

// Engine carries the schema and fitted model for one linking setting and
// runs the score-then-merge pipeline over record populations.
type Engine struct {
	Fingerprint Fingerprint
	Schema      *Schema
	Model       *Model
}

// NewEngine builds the feature schema implied by the fingerprint. The
// lenient flag relaxes year-range checks during labelling, where source
// data is still being inspected by hand.
func NewEngine(fp Fingerprint, lenient bool) (*Engine, error) {
	schema, err := BuildSchema(fp.LinkingType, fp.Flags, lenient)
	if err != nil {
		return nil, fmt.Errorf("building schema: %w", err)
	}
	return &Engine{Fingerprint: fp, Schema: schema}, nil
}

// LoadModel restores a previously fitted model for this fingerprint.
func (e *Engine) LoadModel(root string) error {
	model, err := LoadModel(e.Fingerprint.ModelPath(root), e.Schema)
	if err != nil {
		return err
	}
	e.Model = model
	return nil
}

// Train runs a labelling session over candidate pairs, fits the model and
// persists both the model and the accumulated labels under root. Existing
// labels for the same fingerprint are reused as a starting point.
func (e *Engine) Train(root string, candidates []CandidatePair, labeller Labeller, cfg ActiveConfig) error {
	labelsPath := e.Fingerprint.LabelsPath(root)
	labels, err := LoadLabels(labelsPath)
	if err != nil {
		return fmt.Errorf("loading labels: %w", err)
	}
	if labels.Len() > 0 {
		slog.Info("reusing existing labels", "path", labelsPath, "count", labels.Len())
	}

	model, err := LabelActively(e.Schema, candidates, labels, labeller, cfg)
	if err != nil {
		return err
	}
	e.Model = model

	if err := os.MkdirAll(e.Fingerprint.dir(root), 0755); err != nil {
		return err
	}
	if err := labels.Save(labelsPath); err != nil {
		return fmt.Errorf("saving labels: %w", err)
	}
	if err := model.Save(e.Fingerprint.ModelPath(root)); err != nil {
		return fmt.Errorf("saving model: %w", err)
	}
	return nil
}

// LoadOrTrain restores the model for this fingerprint if one exists, and
// otherwise runs a training session. Only settings changes retrain.
func (e *Engine) LoadOrTrain(root string, candidates []CandidatePair, labeller Labeller, cfg ActiveConfig) error {
	err := e.LoadModel(root)
	if err == nil {
		slog.Info("reusing fitted model", "path", e.Fingerprint.ModelPath(root))
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if labeller == nil {
		return fmt.Errorf("no model at %s and no labeller to train one", e.Fingerprint.ModelPath(root))
	}
	return e.Train(root, candidates, labeller, cfg)
}

// ScorePairs scores candidate pairs and keeps those at or above the
// model's threshold. Pairs whose features cannot be computed are skipped
// with a warning rather than failing the pass.
func (e *Engine) ScorePairs(pairs []CandidatePair) ([]ScoredPair, error) {
	if e.Model == nil {
		return nil, ErrModelNotFitted
	}
	lt := string(e.Fingerprint.LinkingType)
	scored := make([]ScoredPair, 0, len(pairs))
	for _, pair := range pairs {
		monitoring.PairsScored.WithLabelValues(lt).Inc()
		vec, err := e.Schema.Vector(pair.A, pair.B)
		if err != nil {
			monitoring.ComparatorFaults.WithLabelValues(lt).Inc()
			slog.Warn("skipping pair", "a", pair.A.Key, "b", pair.B.Key, "error", err)
			continue
		}
		score, err := e.Model.Score(vec)
		if err != nil {
			return nil, err
		}
		if score >= e.Model.Threshold {
			scored = append(scored, ScoredPair{A: pair.A.Key, B: pair.B.Key, Score: score})
		}
	}
	return scored, nil
}

// Link runs the full pass: enumerate admissible pairs, score them, then
// collapse under the merge mode.
func (e *Engine) Link(popA, popB []*Record, mode MergeMode, topK int) ([]Link, error) {
	pairs := AllPairs(popA, popB)
	slog.Info("scoring candidate pairs", "pairs", len(pairs), "a", len(popA), "b", len(popB))
	scored, err := e.ScorePairs(pairs)
	if err != nil {
		return nil, err
	}
	return Merge(scored, mode, topK)
}
