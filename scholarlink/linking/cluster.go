package linking

import (
	"fmt"
	"sort"
)

// ScoredPair is a candidate pair that cleared the model threshold.
type ScoredPair struct {
	A     string
	B     string
	Score float64
}

// MergeMode selects how scored pairs collapse into links.
type MergeMode string

const (
	// MergeOneToOne assigns each A to at most one B and vice versa,
	// greedily by descending score.
	MergeOneToOne MergeMode = "one_to_one"
	// MergeManyToOne keeps the best B for each A; a B may serve many As.
	MergeManyToOne MergeMode = "many_to_one"
	// MergeGazetteer keeps the top K Bs per A above the threshold.
	MergeGazetteer MergeMode = "gazetteer"
)

// ParseMergeMode validates a mode name from configuration, before any
// scoring work starts.
func ParseMergeMode(s string) (MergeMode, error) {
	switch m := MergeMode(s); m {
	case MergeOneToOne, MergeManyToOne, MergeGazetteer:
		return m, nil
	default:
		return "", fmt.Errorf("unknown merge mode %q", s)
	}
}

// Link is one emitted match.
type Link struct {
	A     string
	B     string
	Score float64
}

// sortPairs orders by descending score with deterministic tie-breaks on
// the pair keys.
func sortPairs(pairs []ScoredPair) []ScoredPair {
	out := make([]ScoredPair, len(pairs))
	copy(out, pairs)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Merge collapses scored pairs into links under the given mode. topK is
// only consulted for the gazetteer mode.
func Merge(pairs []ScoredPair, mode MergeMode, topK int) ([]Link, error) {
	switch mode {
	case MergeOneToOne:
		return mergeOneToOne(pairs), nil
	case MergeManyToOne:
		return mergeManyToOne(pairs), nil
	case MergeGazetteer:
		if topK <= 0 {
			topK = 1
		}
		return mergeGazetteer(pairs, topK), nil
	default:
		return nil, fmt.Errorf("unknown merge mode %q", mode)
	}
}

func mergeOneToOne(pairs []ScoredPair) []Link {
	takenA := make(map[string]struct{})
	takenB := make(map[string]struct{})
	links := make([]Link, 0)
	for _, p := range sortPairs(pairs) {
		if _, used := takenA[p.A]; used {
			continue
		}
		if _, used := takenB[p.B]; used {
			continue
		}
		takenA[p.A] = struct{}{}
		takenB[p.B] = struct{}{}
		links = append(links, Link{A: p.A, B: p.B, Score: p.Score})
	}
	return links
}

func mergeManyToOne(pairs []ScoredPair) []Link {
	takenA := make(map[string]struct{})
	links := make([]Link, 0)
	for _, p := range sortPairs(pairs) {
		if _, used := takenA[p.A]; used {
			continue
		}
		takenA[p.A] = struct{}{}
		links = append(links, Link{A: p.A, B: p.B, Score: p.Score})
	}
	return links
}

func mergeGazetteer(pairs []ScoredPair, topK int) []Link {
	perA := make(map[string]int)
	links := make([]Link, 0)
	for _, p := range sortPairs(pairs) {
		if perA[p.A] >= topK {
			continue
		}
		perA[p.A]++
		links = append(links, Link{A: p.A, B: p.B, Score: p.Score})
	}
	return links
}
