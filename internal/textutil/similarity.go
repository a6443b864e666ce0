package textutil

// Similarity computes a symmetric character-level edit similarity between
// two strings based on their longest common subsequence:
// 2*LCS(a,b) / (len(a)+len(b)). Returns 1 for identical non-empty inputs
// and 0 when either input is empty.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	ra := []rune(a)
	rb := []rune(b)

	// Two-row LCS dynamic program; candidate titles are short so the
	// quadratic cost is bounded.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}
