package linking

import (
	"math"
	"math/rand"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// CandidatePair is one ordered pair proposed for scoring. Transient within
// a scoring pass, never persisted.
type CandidatePair struct {
	A *Record
	B *Record
}

// BlockingConfig bounds the candidate sample used for training. The same
// seed with the same populations yields the same pairs.
type BlockingConfig struct {
	// SampleSize is the total number of candidate pairs to propose.
	SampleSize int
	// BlockedProportion is the fraction of SampleSize proposed by the
	// name index rather than at random.
	BlockedProportion float64
	// Seed drives the random part of the sample.
	Seed int64
	// CandidatesPerRecord caps index hits per left record.
	CandidatesPerRecord int
}

// DefaultBlocking mirrors the proportions used for the production links.
var DefaultBlocking = BlockingConfig{
	SampleSize:          100_000,
	BlockedProportion:   0.66,
	Seed:                58352,
	CandidatesPerRecord: 5,
}

const (
	blockingNgram = 4
	bm25K1        = 1.2
	bm25B         = 0.75

	// maxLastNameDistance rejects index hits whose last names are too far
	// apart even for a fuzzy match, before any feature work.
	maxLastNameDistance = 0.5
)

type recordCount struct {
	recordId int
	count    int
}

// nameIndex is a char-ngram inverted index over record names with BM25
// scoring, used as the cheap blocking pre-filter.
type nameIndex struct {
	records  []*Record
	index    map[string][]recordCount
	recLens  []int
	totalLen int
}

func blockingKey(r *Record) string {
	return r.FirstName + " " + r.LastName
}

func tokenizeName(str string, ngram int) []string {
	var cleaned strings.Builder
	for _, char := range strings.ToLower(str) {
		if unicode.IsPunct(char) {
			cleaned.WriteRune(' ')
		} else {
			cleaned.WriteRune(char)
		}
	}

	tokens := make([]string, 0)
	for _, word := range strings.Fields(cleaned.String()) {
		tokens = append(tokens, word)
		for i := 1; i < len(word); i++ {
			tokens = append(tokens, word[max(0, i-ngram):i])
		}
	}
	return tokens
}

func buildNameIndex(records []*Record) *nameIndex {
	idx := &nameIndex{
		records: records,
		index:   make(map[string][]recordCount),
		recLens: make([]int, 0, len(records)),
	}

	for recId, record := range records {
		tokens := tokenizeName(blockingKey(record), blockingNgram)
		idx.recLens = append(idx.recLens, len(tokens))
		idx.totalLen += len(tokens)

		counts := make(map[string]int)
		for _, token := range tokens {
			counts[token]++
		}
		for token, cnt := range counts {
			idx.index[token] = append(idx.index[token], recordCount{recId, cnt})
		}
	}

	return idx
}

func idf(tf, n float64) float64 {
	return math.Log(1.0 + (n-tf+0.5)/(tf+0.5))
}

func bm25(idf, recTf, docLen, avgLen float64) float64 {
	num := recTf * (bm25K1 + 1.0)
	denom := recTf + bm25K1*(1.0-bm25B+bm25B*docLen/avgLen)
	return idf * num / denom
}

// query returns up to topk record ids ordered by score, ties broken by id
// so that the blocking sample is reproducible.
func (idx *nameIndex) query(name string, topk int) []int {
	scores := make(map[int]float64)
	n := float64(len(idx.records))
	avgLen := float64(idx.totalLen) / math.Max(n, 1)

	for _, token := range tokenizeName(name, blockingNgram) {
		postings, ok := idx.index[token]
		if !ok {
			continue
		}
		tokenIdf := idf(float64(len(postings)), n)
		for _, p := range postings {
			scores[p.recordId] += bm25(tokenIdf, float64(p.count), float64(idx.recLens[p.recordId]), avgLen)
		}
	}

	candidates := make([]int, 0, len(scores))
	for id := range scores {
		candidates = append(candidates, id)
	}
	sort.Slice(candidates, func(i, j int) bool {
		si, sj := scores[candidates[i]], scores[candidates[j]]
		if si != sj {
			return si > sj
		}
		return candidates[i] < candidates[j]
	})

	if len(candidates) > topk {
		candidates = candidates[:topk]
	}
	return candidates
}

func plausibleLastNames(a, b *Record) bool {
	la, lb := strings.ToLower(a.LastName), strings.ToLower(b.LastName)
	longest := max(len(la), len(lb))
	if longest == 0 {
		return false
	}
	d := float64(levenshtein.ComputeDistance(la, lb)) / float64(longest)
	return d <= maxLastNameDistance
}

// BlockPairs proposes candidate pairs between two populations: a blocked
// share from the name index plus a random share, deduplicated, in a
// deterministic order.
func BlockPairs(popA, popB []*Record, cfg BlockingConfig) []CandidatePair {
	if cfg.CandidatesPerRecord <= 0 {
		cfg.CandidatesPerRecord = DefaultBlocking.CandidatesPerRecord
	}
	if len(popA) == 0 || len(popB) == 0 {
		return nil
	}

	idx := buildNameIndex(popB)

	seen := make(map[[2]string]struct{})
	pairs := make([]CandidatePair, 0, cfg.SampleSize)
	add := func(a, b *Record) bool {
		key := [2]string{a.Key, b.Key}
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		pairs = append(pairs, CandidatePair{A: a, B: b})
		return true
	}

	nBlocked := int(float64(cfg.SampleSize) * cfg.BlockedProportion)
	for _, a := range popA {
		if len(pairs) >= nBlocked {
			break
		}
		for _, id := range idx.query(blockingKey(a), cfg.CandidatesPerRecord) {
			b := popB[id]
			if !plausibleLastNames(a, b) {
				continue
			}
			add(a, b)
			if len(pairs) >= nBlocked {
				break
			}
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	attempts := 0
	for len(pairs) < cfg.SampleSize && attempts < 10*cfg.SampleSize {
		attempts++
		a := popA[rng.Intn(len(popA))]
		b := popB[rng.Intn(len(popB))]
		add(a, b)
	}

	return pairs
}

// AllPairs enumerates the admissible candidate pairs for a scoring pass:
// every cross pair that shares at least one blocking-index hit or passes
// the last-name plausibility check. For the population sizes used here
// the quadratic scan is dominated by feature computation.
func AllPairs(popA, popB []*Record) []CandidatePair {
	pairs := make([]CandidatePair, 0)
	for _, a := range popA {
		for _, b := range popB {
			if plausibleLastNames(a, b) {
				pairs = append(pairs, CandidatePair{A: a, B: b})
			}
		}
	}
	return pairs
}
