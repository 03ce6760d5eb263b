package linking

import (
	"encoding/json"
	"fmt"
	"os"
)

// LabelledPair records one human decision about a candidate pair, keyed
// by the records so labels survive re-blocking.
type LabelledPair struct {
	A Record `json:"a"`
	B Record `json:"b"`
}

// TrainingLabels is the persisted outcome of a labelling session.
type TrainingLabels struct {
	Match    []LabelledPair `json:"match"`
	Distinct []LabelledPair `json:"distinct"`
}

func (t *TrainingLabels) Len() int {
	return len(t.Match) + len(t.Distinct)
}

// Vectors turns the labels into (features, label) training rows.
func (t *TrainingLabels) Vectors(schema *Schema) ([][]float64, []float64, error) {
	vectors := make([][]float64, 0, t.Len())
	labels := make([]float64, 0, t.Len())
	for _, p := range t.Match {
		vec, err := schema.Vector(&p.A, &p.B)
		if err != nil {
			return nil, nil, fmt.Errorf("featurizing match %s/%s: %w", p.A.Key, p.B.Key, err)
		}
		vectors = append(vectors, vec)
		labels = append(labels, 1)
	}
	for _, p := range t.Distinct {
		vec, err := schema.Vector(&p.A, &p.B)
		if err != nil {
			return nil, nil, fmt.Errorf("featurizing distinct %s/%s: %w", p.A.Key, p.B.Key, err)
		}
		vectors = append(vectors, vec)
		labels = append(labels, 0)
	}
	return vectors, labels, nil
}

// Save writes the labels as JSON so a later run can reuse or extend them.
func (t *TrainingLabels) Save(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding labels: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadLabels reads a label file written by Save. A missing file is not an
// error; it yields an empty label set for a fresh session.
func LoadLabels(path string) (*TrainingLabels, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &TrainingLabels{}, nil
	}
	if err != nil {
		return nil, err
	}
	var t TrainingLabels
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding labels %s: %w", path, err)
	}
	return &t, nil
}
