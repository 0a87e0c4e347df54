package version

import (
	"strconv"
	"strings"
)

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/sitevault/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/sitevault/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/sitevault/internal/version.Date={{.Date}}
)

// Ordinal converts a dotted version string into a packed int64 so two
// versions can be compared numerically. Up to four numeric segments are
// read; trailing qualifiers such as "-beta1" or "-rc2" are ignored for
// ordering. Returns -1 when no leading numeric segment exists.
func Ordinal(v string) int64 {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" {
		return -1
	}

	segments := strings.SplitN(v, ".", 5)
	var ordinal int64 = -1
	for i := 0; i < 4; i++ {
		var n int64
		if i < len(segments) {
			n = leadingNumber(segments[i])
			if n < 0 {
				if i == 0 {
					return -1
				}
				n = 0
			}
		}
		if ordinal < 0 {
			ordinal = 0
		}
		ordinal = ordinal*10000 + n%10000
	}
	return ordinal
}

// leadingNumber parses the leading digit run of s, so "5-beta1" yields 5.
// Returns -1 when s does not start with a digit.
func leadingNumber(s string) int64 {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return -1
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return -1
	}
	return n
}
