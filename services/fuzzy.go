package services

import "strings"

// fuzzyThreshold is the fraction of the longer string that may differ for a
// candidate to still count as a match. 0.4 is deliberately lenient: "leg day"
// vs "Leg Dayy" must match, "Arm Day" vs "Leg Day" must not.
const fuzzyThreshold = 0.4

// levenshteinDistance is the classic two-row edit distance.
func levenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// normalizedDistance returns edit distance divided by the longer length,
// case-insensitive. 0 is identical, 1 is completely different.
func normalizedDistance(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 0
	}

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}

	return float64(levenshteinDistance(a, b)) / float64(longest)
}

// bestMatch returns the index of the closest candidate within the threshold,
// or ok=false when nothing clears it.
func bestMatch(query string, candidates []string) (int, bool) {
	bestIdx := -1
	bestScore := fuzzyThreshold

	for i, cand := range candidates {
		score := normalizedDistance(query, cand)
		if score <= bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	return bestIdx, bestIdx >= 0
}
