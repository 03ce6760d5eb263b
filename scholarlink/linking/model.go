package linking

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
)

var (
	ErrNoTrainingData = errors.New("no labelled pairs to train on")
	ErrModelNotFitted = errors.New("model has not been fitted")
)

// TrainConfig controls the scoring model fit.
type TrainConfig struct {
	// Recall is the fraction of labelled matches the classification
	// threshold must keep.
	Recall float64
	// Epochs and LearningRate drive the gradient fit. The defaults are
	// deliberately conservative; the feature space is small.
	Epochs       int
	LearningRate float64
	// L2 is the ridge penalty on the weights.
	L2 float64
}

var DefaultTrain = TrainConfig{
	Recall:       0.9,
	Epochs:       2000,
	LearningRate: 0.05,
	L2:           1e-4,
}

// Model scores candidate pairs with a logistic regression over the schema's
// feature vector. Features are standardized at fit time; missing values
// are imputed with the training mean, which after standardization makes
// them neutral to the score.
type Model struct {
	FeatureNames []string  `json:"feature_names"`
	Means        []float64 `json:"means"`
	Stds         []float64 `json:"stds"`
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	Threshold    float64   `json:"threshold"`
	Recall       float64   `json:"recall"`
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// standardize imputes NaNs with the feature mean then centers and scales.
func (m *Model) standardize(vec []float64) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		if math.IsNaN(v) {
			v = m.Means[i]
		}
		out[i] = (v - m.Means[i]) / m.Stds[i]
	}
	return out
}

// Fit trains the model on labelled feature vectors. Labels are 1 for a
// match, 0 for a distinct pair.
func (m *Model) Fit(schema *Schema, vectors [][]float64, labels []float64, cfg TrainConfig) error {
	if len(vectors) == 0 || len(vectors) != len(labels) {
		return ErrNoTrainingData
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = DefaultTrain.Epochs
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = DefaultTrain.LearningRate
	}
	if cfg.Recall <= 0 {
		cfg.Recall = DefaultTrain.Recall
	}

	dim := len(vectors[0])
	m.FeatureNames = schema.Names()
	if len(m.FeatureNames) != dim {
		return fmt.Errorf("schema has %d features, vectors have %d", len(m.FeatureNames), dim)
	}

	m.Means = make([]float64, dim)
	m.Stds = make([]float64, dim)
	for j := 0; j < dim; j++ {
		var sum float64
		var n int
		for _, vec := range vectors {
			if !math.IsNaN(vec[j]) {
				sum += vec[j]
				n++
			}
		}
		if n > 0 {
			m.Means[j] = sum / float64(n)
		}
		var varsum float64
		for _, vec := range vectors {
			if !math.IsNaN(vec[j]) {
				d := vec[j] - m.Means[j]
				varsum += d * d
			}
		}
		if n > 1 {
			m.Stds[j] = math.Sqrt(varsum / float64(n-1))
		}
		if m.Stds[j] == 0 {
			m.Stds[j] = 1
		}
	}

	std := make([][]float64, len(vectors))
	for i, vec := range vectors {
		std[i] = m.standardize(vec)
	}

	m.Weights = make([]float64, dim)
	m.Bias = 0
	n := float64(len(std))
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		grad := make([]float64, dim)
		var gradBias float64
		for i, x := range std {
			z := m.Bias
			for j, w := range m.Weights {
				z += w * x[j]
			}
			err := sigmoid(z) - labels[i]
			for j := range grad {
				grad[j] += err * x[j]
			}
			gradBias += err
		}
		for j := range m.Weights {
			m.Weights[j] -= cfg.LearningRate * (grad[j]/n + cfg.L2*m.Weights[j])
		}
		m.Bias -= cfg.LearningRate * gradBias / n
	}

	m.Recall = cfg.Recall
	m.Threshold = m.recallThreshold(std, labels, cfg.Recall)
	return nil
}

// recallThreshold picks the highest score cutoff that still keeps the
// requested fraction of labelled matches above it.
func (m *Model) recallThreshold(std [][]float64, labels []float64, recall float64) float64 {
	matchScores := make([]float64, 0)
	for i, x := range std {
		if labels[i] == 1 {
			matchScores = append(matchScores, m.scoreStd(x))
		}
	}
	if len(matchScores) == 0 {
		return 0.5
	}
	// Descending, then keep the score at the recall quantile.
	sort.Sort(sort.Reverse(sort.Float64Slice(matchScores)))
	idx := int(math.Ceil(recall*float64(len(matchScores)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(matchScores) {
		idx = len(matchScores) - 1
	}
	return matchScores[idx]
}

func (m *Model) scoreStd(x []float64) float64 {
	z := m.Bias
	for j, w := range m.Weights {
		z += w * x[j]
	}
	return sigmoid(z)
}

// Score returns the match probability for a raw feature vector.
func (m *Model) Score(vec []float64) (float64, error) {
	if len(m.Weights) == 0 {
		return 0, ErrModelNotFitted
	}
	if len(vec) != len(m.Weights) {
		return 0, fmt.Errorf("vector has %d features, model expects %d", len(vec), len(m.Weights))
	}
	return m.scoreStd(m.standardize(vec)), nil
}

// Save writes the fitted model as JSON.
func (m *Model) Save(path string) error {
	if len(m.Weights) == 0 {
		return ErrModelNotFitted
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadModel reads a model previously written by Save and checks its
// feature list against the schema that will produce score vectors.
func LoadModel(path string, schema *Schema) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", path, err)
	}
	names := schema.Names()
	if len(names) != len(m.FeatureNames) {
		return nil, fmt.Errorf("model %s was fitted on %d features, schema has %d", path, len(m.FeatureNames), len(names))
	}
	for i, name := range names {
		if m.FeatureNames[i] != name {
			return nil, fmt.Errorf("model %s feature %d is %q, schema expects %q", path, i, m.FeatureNames[i], name)
		}
	}
	return &m, nil
}
