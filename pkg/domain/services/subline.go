package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// SublineName builds the name of the k-th (1-based) virtual sub-line of a PO line
func SublineName(line string, k int) string {
	return fmt.Sprintf("%s-%d", line, k)
}

// BaseLine returns the part of a PO line before the first "-"
func BaseLine(line string) string {
	if i := strings.Index(line, "-"); i >= 0 {
		return line[:i]
	}
	return line
}

// AssignSublines returns a sorted copy of items in which every group of
// records sharing a key is renamed "{line}-{k}", k = 1..N in sort order.
// Groups with a single member keep their line. The input slice is not
// modified; assign receives each copy together with its new line name.
func AssignSublines[T any](
	items []T,
	keyOf func(T) (group string, line string),
	less func(a, b T) bool,
	assign func(item T, subline string) T,
) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		gi, _ := keyOf(sorted[i])
		gj, _ := keyOf(sorted[j])
		if gi != gj {
			return gi < gj
		}
		return less(sorted[i], sorted[j])
	})

	sizes := make(map[string]int, len(sorted))
	for _, it := range sorted {
		g, _ := keyOf(it)
		sizes[g]++
	}

	seen := make(map[string]int, len(sizes))
	out := make([]T, len(sorted))
	for i, it := range sorted {
		g, line := keyOf(it)
		if sizes[g] == 1 {
			out[i] = assign(it, line)
			continue
		}
		seen[g]++
		out[i] = assign(it, SublineName(line, seen[g]))
	}
	return out
}

// LineComparator orders PO line names numerically, so "10-2" sorts before "10-10"
type LineComparator struct {
	linePattern *regexp.Regexp
}

// NewLineComparator creates a comparator for "N" and "N-k" style line names
func NewLineComparator() *LineComparator {
	return &LineComparator{
		linePattern: regexp.MustCompile(`^(\d+)(?:-(\d+))?$`),
	}
}

// Compare returns -1, 0 or 1. Names that are not numeric fall back to string order.
func (lc *LineComparator) Compare(a, b string) int {
	if a == b {
		return 0
	}
	baseA, subA, errA := lc.parse(a)
	baseB, subB, errB := lc.parse(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	switch {
	case baseA < baseB:
		return -1
	case baseA > baseB:
		return 1
	case subA < subB:
		return -1
	case subA > subB:
		return 1
	}
	return 0
}

// Less is Compare(a, b) < 0, convenient for sort callbacks
func (lc *LineComparator) Less(a, b string) bool {
	return lc.Compare(a, b) < 0
}

func (lc *LineComparator) parse(line string) (int, int, error) {
	m := lc.linePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid line format: %s", line)
	}
	base, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid line number %s: %w", line, err)
	}
	sub := 0
	if m[2] != "" {
		if sub, err = strconv.Atoi(m[2]); err != nil {
			return 0, 0, fmt.Errorf("invalid sub-line number %s: %w", line, err)
		}
	}
	return base, sub, nil
}
