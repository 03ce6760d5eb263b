package linking

import (
	"fmt"
	"math"

	"scholarlink/scholarlink/compare"
)

// FeatureKind is the closed set of feature types a schema may declare.
type FeatureKind int

const (
	// FeatureString scores the Jaro-Winkler distance of two strings.
	FeatureString FeatureKind = iota
	// FeatureExact scores 1 on exact string equality, else 0.
	FeatureExact
	// FeatureNumeric scores the log-scale distance of two positive scalars.
	FeatureNumeric
	// FeatureSet scores keyword overlap.
	FeatureSet
	// FeatureCustom scores with a caller-supplied comparator.
	FeatureCustom
	// FeatureInteraction is the product of two previously declared
	// feature values.
	FeatureInteraction
)

// Getter extracts one field value from a record; ok is false when the
// field is missing, in which case the feature contributes neutrally and no
// comparator ever sees the missing value.
type Getter func(*Record) (compare.Value, bool)

// CustomComparator scores two present field values; ok=false means the
// pair carried no information.
type CustomComparator func(a, b compare.Value) (float64, bool)

// Feature is one entry of a linking schema.
type Feature struct {
	Name       string
	Kind       FeatureKind
	Get        Getter
	Compare    CustomComparator // FeatureCustom only
	HasMissing bool

	// Interaction names the two features whose product this feature is.
	Interaction [2]string
}

// Schema is the ordered list of features that build the feature vector
// for a candidate pair.
type Schema struct {
	features []Feature
	index    map[string]int
}

// NewSchema validates the feature list. An Interaction referencing a name
// that is not declared as a non-interaction feature is a configuration
// error: it would silently score as zero forever, so it fails here, before
// any expensive work.
func NewSchema(features []Feature) (*Schema, error) {
	index := make(map[string]int, len(features))
	for i, f := range features {
		if f.Kind == FeatureInteraction {
			continue
		}
		if f.Name == "" {
			return nil, fmt.Errorf("feature %d has no name", i)
		}
		if _, dup := index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate feature name %q", f.Name)
		}
		index[f.Name] = i
	}

	for i, f := range features {
		if f.Kind != FeatureInteraction {
			continue
		}
		for _, ref := range f.Interaction {
			j, ok := index[ref]
			if !ok {
				return nil, fmt.Errorf("interaction %d references undefined feature %q", i, ref)
			}
			if features[j].Kind == FeatureInteraction {
				return nil, fmt.Errorf("interaction %d references interaction %q", i, ref)
			}
		}
	}

	return &Schema{features: features, index: index}, nil
}

// Names returns the feature names in vector order. Interactions are named
// "a*b".
func (s *Schema) Names() []string {
	names := make([]string, len(s.features))
	for i, f := range s.features {
		if f.Kind == FeatureInteraction {
			names[i] = f.Interaction[0] + "*" + f.Interaction[1]
		} else {
			names[i] = f.Name
		}
	}
	return names
}

// Len returns the feature vector length.
func (s *Schema) Len() int { return len(s.features) }

// Vector computes the feature vector for one candidate pair. Missing
// fields and no-information comparisons are marked NaN; the model imputes
// them neutrally at scoring time. Comparator errors propagate: a type or
// length mismatch at scoring time means the populations were loaded wrong.
func (s *Schema) Vector(a, b *Record) ([]float64, error) {
	out := make([]float64, len(s.features))

	for i, f := range s.features {
		if f.Kind == FeatureInteraction {
			continue
		}
		va, okA := f.Get(a)
		vb, okB := f.Get(b)
		if !okA || !okB {
			if !f.HasMissing {
				return nil, fmt.Errorf("feature %q: missing value on a field not declared as optional", f.Name)
			}
			out[i] = math.NaN()
			continue
		}

		d, ok, err := scoreFeature(f, va, vb)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", f.Name, err)
		}
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = d
	}

	for i, f := range s.features {
		if f.Kind != FeatureInteraction {
			continue
		}
		x := out[s.index[f.Interaction[0]]]
		y := out[s.index[f.Interaction[1]]]
		out[i] = x * y // NaN propagates
	}

	return out, nil
}

func scoreFeature(f Feature, va, vb compare.Value) (float64, bool, error) {
	switch f.Kind {
	case FeatureString:
		sa, okA := va.(compare.String)
		sb, okB := vb.(compare.String)
		if !okA || !okB {
			return 0, false, compare.ErrTypeMismatch
		}
		d, ok := compare.StringDistance(string(sa), string(sb), nil)
		return d, ok, nil
	case FeatureExact:
		if va == vb {
			return 1, true, nil
		}
		return 0, true, nil
	case FeatureNumeric:
		na, okA := va.(compare.Numeric)
		nb, okB := vb.(compare.Numeric)
		if !okA || !okB {
			return 0, false, compare.ErrTypeMismatch
		}
		return compare.NumericDistance(float64(na), float64(nb)), true, nil
	case FeatureSet:
		ka, okA := va.(compare.Keywords)
		kb, okB := vb.(compare.Keywords)
		if !okA || !okB {
			return 0, false, compare.ErrTypeMismatch
		}
		return compare.KeywordOverlap(ka, kb), true, nil
	case FeatureCustom:
		d, ok := f.Compare(va, vb)
		return d, ok, nil
	default:
		return 0, false, fmt.Errorf("unknown feature kind %d", f.Kind)
	}
}
