// Package scorer implements the chunked fuzzy matcher and empty-query
// alphabetical fallback (spec.md §4.3), feeding matches into a Ranker.
package scorer

import "strings"

// Tuning constants (spec.md §6).
const (
	MatchChunkSize           = 512
	EmptyQueryBatch          = 128
	MaxRenderedResults       = 2000
	PrefilterEnableThreshold = 1000
)

// allowedTyposFor returns the typo budget for a query of the given rune
// length, per spec.md §4.3's table, clamped to len-1.
func allowedTyposFor(queryLen int) int {
	var t int
	switch {
	case queryLen <= 1:
		t = 0
	case queryLen <= 4:
		t = 1
	case queryLen <= 7:
		t = 2
	case queryLen <= 12:
		t = 3
	default:
		t = 4
	}
	if max := queryLen - 1; t > max {
		t = max
	}
	if t < 0 {
		t = 0
	}
	return t
}

// matchConfig is the per-query, dataset-size-dependent matching
// configuration (spec.md §4.3).
type matchConfig struct {
	allowedTypos int
	usePrefilter bool
}

func configFor(queryLen, datasetSize int) matchConfig {
	at := allowedTyposFor(queryLen)
	if datasetSize >= PrefilterEnableThreshold {
		return matchConfig{allowedTypos: at, usePrefilter: true}
	}
	// Below the threshold, the prefilter is skipped and typos are
	// effectively unlimited (spec.md §4.3: "otherwise no prefilter and
	// unlimited typos") — queryLen is used as a budget that can never be
	// exceeded by a query's own missing-character count.
	return matchConfig{allowedTypos: queryLen, usePrefilter: false}
}

// prefilterPasses is a cheap pre-check: a query can only match target if at
// most cfg.allowedTypos of its runes are entirely absent from target.
func prefilterPasses(queryRunes []rune, targetRunes map[rune]bool, cfg matchConfig) bool {
	if !cfg.usePrefilter {
		return true
	}
	missing := 0
	for _, r := range queryRunes {
		if !targetRunes[r] {
			missing++
			if missing > cfg.allowedTypos {
				return false
			}
		}
	}
	return true
}

func runeSet(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, r := range s {
		set[r] = true
	}
	return set
}

// matchScore computes a fuzzy match score for queryRunes (already
// lowercased) against target (already lowercased). It returns ok=false for
// a zero or negative score — a row with no match is never handed to the
// Ranker (spec.md §8 "Zero-score filtering").
//
// The algorithm is a greedy in-order subsequence match: query characters
// must appear in target in order, earning points for each hit (boosted by
// consecutive runs and boundary characters — '/', '_', '-', '.', ' ' — the way
// fuzzy path matchers commonly reward word/segment starts), tolerating up
// to cfg.allowedTypos query characters that are never found at all.
func matchScore(queryRunes []rune, target string, cfg matchConfig) (uint16, bool) {
	if len(queryRunes) == 0 {
		return 0, false
	}
	t := []rune(target)

	qi := 0
	consecutive := 0
	score := 0
	for ti := 0; ti < len(t) && qi < len(queryRunes); ti++ {
		if t[ti] != queryRunes[qi] {
			consecutive = 0
			continue
		}
		points := 1 + consecutive*2
		if ti == 0 || isBoundary(t[ti-1]) {
			points += 3
		}
		score += points
		consecutive++
		qi++
	}

	if qi < len(queryRunes) {
		missing := len(queryRunes) - qi
		if missing > cfg.allowedTypos {
			return 0, false
		}
		score -= missing * 2
	}

	if score <= 0 {
		return 0, false
	}
	if score > 0xFFFF {
		score = 0xFFFF
	}
	return uint16(score), true
}

func isBoundary(r rune) bool {
	switch r {
	case '/', '_', '-', '.', ' ':
		return true
	default:
		return false
	}
}

func toLowerRunes(s string) []rune {
	return []rune(strings.ToLower(s))
}
