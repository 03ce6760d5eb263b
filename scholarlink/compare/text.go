package compare

import (
	"math"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// A conservative stopword list for titles of scientific papers and
// dissertations. Anything stronger risks stripping meaningful short terms
// from chemistry and math titles.
var titleStopwords = map[string]struct{}{
	"and": {}, "for": {}, "to": {}, "of": {}, "from": {}, "a": {},
	"an": {}, "in": {}, "the": {}, "by": {}, "or": {}, "other": {},
	"too": {}, "very": {}, "really": {}, "this": {}, "that": {}, "it": {},
}

// tokenizeTitle lowercases, strips punctuation, removes stopwords, stems
// each remaining word and emits unigrams plus bigrams.
func tokenizeTitle(doc string) []string {
	var cleaned strings.Builder
	for _, r := range strings.ToLower(doc) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cleaned.WriteRune(r)
		} else {
			cleaned.WriteRune(' ')
		}
	}

	words := make([]string, 0)
	for _, w := range strings.Fields(cleaned.String()) {
		if _, stop := titleStopwords[w]; stop {
			continue
		}
		words = append(words, english.Stem(w, false))
	}

	tokens := make([]string, 0, 2*len(words))
	tokens = append(tokens, words...)
	for i := 1; i < len(words); i++ {
		tokens = append(tokens, words[i-1]+" "+words[i])
	}
	return tokens
}

// TextSimilarity builds a shared tf-idf vector space over docsA and docsB
// and returns the maximum cosine similarity between any document in docsA
// and any document in docsB. Used to compare dissertation titles against
// paper titles, where a single strong title match is informative and the
// rest of either corpus is noise.
func TextSimilarity(docsA, docsB []string) float64 {
	if len(docsA) == 0 || len(docsB) == 0 {
		return 0
	}

	corpus := make([][]string, 0, len(docsA)+len(docsB))
	for _, d := range append(append([]string{}, docsA...), docsB...) {
		corpus = append(corpus, tokenizeTitle(d))
	}

	// document frequencies over the shared corpus
	df := make(map[string]int)
	termCounts := make([]map[string]float64, len(corpus))
	for i, toks := range corpus {
		counts := make(map[string]float64)
		for _, t := range toks {
			counts[t]++
		}
		for t := range counts {
			df[t]++
		}
		termCounts[i] = counts
	}

	n := float64(len(corpus))
	vectors := make([]map[string]float64, len(corpus))
	for i, counts := range termCounts {
		vec := make(map[string]float64, len(counts))
		var norm float64
		for t, tf := range counts {
			idf := math.Log((1+n)/(1+float64(df[t]))) + 1
			w := tf * idf
			vec[t] = w
			norm += w * w
		}
		norm = math.Sqrt(norm)
		if norm > 0 {
			for t := range vec {
				vec[t] /= norm
			}
		}
		vectors[i] = vec
	}

	best := 0.0
	for i := 0; i < len(docsA); i++ {
		for j := len(docsA); j < len(corpus); j++ {
			if s := dot(vectors[i], vectors[j]); s > best {
				best = s
			}
		}
	}
	return best
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var out float64
	for t, w := range a {
		out += w * b[t]
	}
	return out
}

// YearTitleSimilarity compares two collections of (year, title) tuples by
// title text only.
func YearTitleSimilarity(x, y TupleSet) float64 {
	docsA := make([]string, 0, len(x))
	for _, t := range x {
		docsA = append(docsA, t.Category)
	}
	docsB := make([]string, 0, len(y))
	for _, t := range y {
		docsB = append(docsB, t.Category)
	}
	return TextSimilarity(docsA, docsB)
}
