package autoupdate

import (
	"strconv"
	"strings"
)

// parseNumericVersion breaks a dotted version into its numeric parts.
// Non-numeric parts count as 0.
func parseNumericVersion(v string) []int {
	parts := strings.Split(v, ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		nums[i], _ = strconv.Atoi(p)
	}
	return nums
}

// CompareVersions compares two dotted numeric versions.
// Missing trailing parts count as 0, so "1.2" equals "1.2.0".
// Returns: -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
func CompareVersions(v1, v2 string) int {
	a := parseNumericVersion(v1)
	b := parseNumericVersion(v2)

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	for i := 0; i < maxLen; i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}

		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}
