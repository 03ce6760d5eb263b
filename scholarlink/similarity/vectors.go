package similarity

import "math"

// Period splits an author's topic activity relative to the degree year.
const (
	PeriodPre  = "pre"
	PeriodPost = "post"
)

var Periods = []string{PeriodPre, PeriodPost}

// cosineEpsilon keeps the norm product away from zero so that empty
// vectors compare as 0 rather than NaN. It is part of the output values,
// not just a numerical guard.
const cosineEpsilon = 1e-7

// TopicVector is a sparse topic-weight vector with the paper count that
// produced it. Weights are raw sums until Normalize.
type TopicVector struct {
	Weights    map[int64]float64
	PaperCount int
}

func NewTopicVector() *TopicVector {
	return &TopicVector{Weights: make(map[int64]float64)}
}

func (v *TopicVector) Add(fieldId int64, weight float64) {
	v.Weights[fieldId] += weight
}

// Normalize divides every weight by the paper count, so that prolific
// authors do not dominate purely by volume.
func (v *TopicVector) Normalize() {
	if v.PaperCount == 0 {
		return
	}
	n := float64(v.PaperCount)
	for f, w := range v.Weights {
		v.Weights[f] = w / n
	}
}

// Cosine computes AB / (sqrt(AA + eps) * sqrt(BB + eps)).
func Cosine(a, b *TopicVector) float64 {
	var ab, aa, bb float64
	for f, wa := range a.Weights {
		aa += wa * wa
		if wb, ok := b.Weights[f]; ok {
			ab += wa * wb
		}
	}
	for _, wb := range b.Weights {
		bb += wb * wb
	}
	return ab / (math.Sqrt(aa+cosineEpsilon) * math.Sqrt(bb+cosineEpsilon))
}

// SplitPrePost buckets a year against the degree year.
func SplitPrePost(year, degreeYear int) string {
	if year < degreeYear {
		return PeriodPre
	}
	return PeriodPost
}
