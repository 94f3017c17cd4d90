// Package version compares configuration versions and computes and executes
// migration chains between them.
package version

import (
	"strconv"
	"strings"
)

// Comparison is the outcome of comparing two version strings.
type Comparison struct {
	IsNewer    bool
	IsOlder    bool
	IsEqual    bool
	Difference [3]int
}

// Compare parses each version as three integers (missing or invalid parts
// count as 0) and compares the triples lexicographically. The result is
// antisymmetric: Compare(a,b).IsNewer == Compare(b,a).IsOlder.
func Compare(a, b string) Comparison {
	pa := parseTriple(a)
	pb := parseTriple(b)

	cmp := Comparison{
		Difference: [3]int{pa[0] - pb[0], pa[1] - pb[1], pa[2] - pb[2]},
	}

	for i := 0; i < 3; i++ {
		if pa[i] > pb[i] {
			cmp.IsNewer = true
			return cmp
		}
		if pa[i] < pb[i] {
			cmp.IsOlder = true
			return cmp
		}
	}
	cmp.IsEqual = true
	return cmp
}

func parseTriple(v string) [3]int {
	var out [3]int
	parts := strings.Split(v, ".")
	for i := 0; i < 3 && i < len(parts); i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			continue
		}
		out[i] = n
	}
	return out
}
