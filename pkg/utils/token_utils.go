package utils

import (
	"strings"

	"github.com/stockassist/platform/pkg/constants"
)

// ExtractBearer returns the token behind the "Bearer " prefix. The second
// result is false when the header is empty or carries another scheme.
func ExtractBearer(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, constants.BearerPrefix) {
		return "", false
	}
	return authHeader[len(constants.BearerPrefix):], true
}

// WithBearer prefixes a compact JWT with the bearer scheme marker.
func WithBearer(token string) string {
	return constants.BearerPrefix + token
}

// JoinAuthorities encodes an authority list into its claim form.
func JoinAuthorities(authorities []string) string {
	return strings.Join(authorities, constants.AuthoritySeparator)
}

// SplitAuthorities decodes the claim form back into a list, dropping blanks.
func SplitAuthorities(joined string) []string {
	if joined == "" {
		return []string{}
	}
	parts := strings.Split(joined, constants.AuthoritySeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
