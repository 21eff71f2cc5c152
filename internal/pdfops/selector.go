package pdfops

import (
	"fmt"
	"sort"
)

// pagesToSelector converts a list of 1-based page numbers into the
// compact range selectors pdfcpu expects ("1-3", "7"). Pages are
// deduplicated and sorted; an empty input yields an empty selector.
func pagesToSelector(pages []int) []string {
	if len(pages) == 0 {
		return nil
	}

	uniq := make([]int, 0, len(pages))
	seen := make(map[int]bool, len(pages))
	for _, p := range pages {
		if p >= 1 && !seen[p] {
			seen[p] = true
			uniq = append(uniq, p)
		}
	}
	sort.Ints(uniq)

	var out []string
	for i := 0; i < len(uniq); {
		j := i
		for j+1 < len(uniq) && uniq[j+1] == uniq[j]+1 {
			j++
		}
		if i == j {
			out = append(out, fmt.Sprintf("%d", uniq[i]))
		} else {
			out = append(out, fmt.Sprintf("%d-%d", uniq[i], uniq[j]))
		}
		i = j + 1
	}
	return out
}

// pageOrderSelector converts an explicit page order into per-page
// selectors, preserving order and duplicates (pdfcpu's collect honors
// both).
func pageOrderSelector(order []int) []string {
	out := make([]string, 0, len(order))
	for _, p := range order {
		out = append(out, fmt.Sprintf("%d", p))
	}
	return out
}
