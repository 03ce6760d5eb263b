package svd

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/mat"

	"scholarlink/scholarlink/similarity"
)

// RandomSeed is recorded with every fitted model. The factorization
// itself is deterministic; the seed pins any upstream sampling that fed
// the fit matrix, so a model can be tied back to its sample.
const RandomSeed = 58352

var (
	ErrNoData           = errors.New("no triplets to fit on")
	ErrBadComponents    = errors.New("component count must be positive and at most the column count")
	ErrColumnsCommitted = errors.New("column mapping does not cover the input fields")
)

// Triplet is one sparse matrix entry: (row entity, topic field, score).
type Triplet struct {
	RowId   int64
	FieldId int64
	Value   float64
}

// Model holds a fitted truncated-SVD projection. Columns is the
// committed field-id to column mapping fixed at fit time; every
// Transform call uses it unchanged, since it defines the feature space.
type Model struct {
	Columns     map[int64]int
	NComponents int
	Seed        int64

	projection *mat.Dense // p x k
}

// Embeddings are the reduced vectors, row-aligned with RowIds.
type Embeddings struct {
	RowIds  []int64
	Vectors *mat.Dense // n x k
}

func buildMatrix(triplets []Triplet, columns map[int64]int, strict bool) ([]int64, *mat.Dense, error) {
	rowIds := make([]int64, 0)
	rowIndex := make(map[int64]int)
	for _, t := range triplets {
		if _, ok := rowIndex[t.RowId]; !ok {
			rowIndex[t.RowId] = 0
			rowIds = append(rowIds, t.RowId)
		}
	}
	sort.Slice(rowIds, func(i, j int) bool { return rowIds[i] < rowIds[j] })
	for i, id := range rowIds {
		rowIndex[id] = i
	}

	x := mat.NewDense(len(rowIds), len(columns), nil)
	for _, t := range triplets {
		col, ok := columns[t.FieldId]
		if !ok {
			if strict {
				return nil, nil, fmt.Errorf("%w: field %d unseen at fit time", ErrColumnsCommitted, t.FieldId)
			}
			continue
		}
		x.Set(rowIndex[t.RowId], col, t.Value)
	}
	return rowIds, x, nil
}

// Fit commits the column mapping, factorizes, and returns the model with
// the embeddings of the fit rows. Row and column order are derived by
// sorting ids, so the same triplets always produce the same mapping.
func Fit(triplets []Triplet, nComponents int) (*Model, *Embeddings, error) {
	if len(triplets) == 0 {
		return nil, nil, ErrNoData
	}

	fieldIds := make([]int64, 0)
	seen := make(map[int64]struct{})
	for _, t := range triplets {
		if _, dup := seen[t.FieldId]; !dup {
			seen[t.FieldId] = struct{}{}
			fieldIds = append(fieldIds, t.FieldId)
		}
	}
	sort.Slice(fieldIds, func(i, j int) bool { return fieldIds[i] < fieldIds[j] })

	columns := make(map[int64]int, len(fieldIds))
	for i, f := range fieldIds {
		columns[f] = i
	}

	rowIds, x, err := buildMatrix(triplets, columns, true)
	if err != nil {
		return nil, nil, err
	}

	// The thin factorization yields min(rows, cols) singular vectors; more
	// components than that cannot be extracted.
	rank := min(len(rowIds), len(fieldIds))
	if nComponents < 1 || nComponents > rank {
		return nil, nil, fmt.Errorf("%w: %d components over rank %d", ErrBadComponents, nComponents, rank)
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, nil, errors.New("svd factorization failed")
	}
	var v mat.Dense
	svd.VTo(&v)

	projection := mat.NewDense(len(fieldIds), nComponents, nil)
	projection.Copy(v.Slice(0, len(fieldIds), 0, nComponents))

	model := &Model{
		Columns:     columns,
		NComponents: nComponents,
		Seed:        RandomSeed,
		projection:  projection,
	}

	var embedded mat.Dense
	embedded.Mul(x, projection)
	return model, &Embeddings{RowIds: rowIds, Vectors: &embedded}, nil
}

// Transform projects new triplets through the committed column mapping.
// A field id unseen at fit time is an error: it means the caller is
// mixing feature spaces.
func (m *Model) Transform(triplets []Triplet) (*Embeddings, error) {
	if len(triplets) == 0 {
		return nil, ErrNoData
	}
	rowIds, x, err := buildMatrix(triplets, m.Columns, true)
	if err != nil {
		return nil, err
	}
	var embedded mat.Dense
	embedded.Mul(x, m.projection)
	return &Embeddings{RowIds: rowIds, Vectors: &embedded}, nil
}

// Reducer adapts the model into the similarity engine's vector hook:
// component index becomes the topic id of the reduced vector. Unseen
// fields are dropped here rather than failing, since topic tables can
// grow after the model was fitted.
func (m *Model) Reducer() func(*similarity.TopicVector) *similarity.TopicVector {
	return func(v *similarity.TopicVector) *similarity.TopicVector {
		if v == nil {
			return nil
		}
		x := mat.NewDense(1, len(m.Columns), nil)
		for fieldId, w := range v.Weights {
			if col, ok := m.Columns[fieldId]; ok {
				x.Set(0, col, w)
			}
		}
		var embedded mat.Dense
		embedded.Mul(x, m.projection)

		out := similarity.NewTopicVector()
		out.PaperCount = v.PaperCount
		for k := 0; k < m.NComponents; k++ {
			if w := embedded.At(0, k); w != 0 {
				out.Add(int64(k), w)
			}
		}
		return out
	}
}

type persistedModel struct {
	Columns     map[int64]int
	NComponents int
	Seed        int64
	Rows        int
	Data        []float64
}

// Save writes the model, column mapping included, as gob.
func (m *Model) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, cols := m.projection.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, m.projection.RawRowView(i)...)
	}
	p := persistedModel{
		Columns:     m.Columns,
		NComponents: m.NComponents,
		Seed:        m.Seed,
		Rows:        rows,
		Data:        data,
	}
	if err := gob.NewEncoder(f).Encode(p); err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	return nil
}

// Load restores a model written by Save.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var p persistedModel
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", path, err)
	}
	return &Model{
		Columns:     p.Columns,
		NComponents: p.NComponents,
		Seed:        p.Seed,
		projection:  mat.NewDense(p.Rows, p.NComponents, p.Data),
	}, nil
}
