package linking

import (
	"log/slog"
	"strings"
)

func exactNameKey(r *Record) string {
	return strings.ToLower(strings.TrimSpace(r.FirstName)) + "|" + strings.ToLower(strings.TrimSpace(r.LastName))
}

// PrelinkExactNames emits links for names that appear exactly once in each
// population, with score 1, and returns both populations with the linked
// records removed. Ambiguous names fall through to model scoring.
func PrelinkExactNames(popA, popB []*Record) ([]Link, []*Record, []*Record) {
	countA := make(map[string]int)
	countB := make(map[string]int)
	firstA := make(map[string]*Record)
	firstB := make(map[string]*Record)
	for _, r := range popA {
		k := exactNameKey(r)
		countA[k]++
		firstA[k] = r
	}
	for _, r := range popB {
		k := exactNameKey(r)
		countB[k]++
		firstB[k] = r
	}

	linked := make(map[string]struct{})
	links := make([]Link, 0)
	for _, r := range popA {
		k := exactNameKey(r)
		if countA[k] != 1 || countB[k] != 1 {
			continue
		}
		links = append(links, Link{A: firstA[k].Key, B: firstB[k].Key, Score: 1})
		linked[k] = struct{}{}
	}

	keep := func(pop []*Record) []*Record {
		out := make([]*Record, 0, len(pop))
		for _, r := range pop {
			if _, done := linked[exactNameKey(r)]; !done {
				out = append(out, r)
			}
		}
		return out
	}

	restA, restB := keep(popA), keep(popB)
	slog.Info("exact-name prelinking", "links", len(links), "remaining_a", len(restA), "remaining_b", len(restB))
	return links, restA, restB
}
