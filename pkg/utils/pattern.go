package utils

// SimpleMatch reports whether s matches pattern, where each '*' in pattern
// matches any run of characters, including '/' and the empty run. A pattern
// without '*' must equal s exactly.
func SimpleMatch(pattern, s string) bool {
	if pattern == "" {
		return s == ""
	}

	p, i := 0, 0
	star, mark := -1, 0
	for i < len(s) {
		switch {
		case p < len(pattern) && pattern[p] == '*':
			star = p
			mark = i
			p++
		case p < len(pattern) && pattern[p] == s[i]:
			p++
			i++
		case star >= 0:
			// backtrack: let the last star swallow one more character
			p = star + 1
			mark++
			i = mark
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
