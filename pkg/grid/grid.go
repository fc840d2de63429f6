// Package grid maps flat character streams onto fixed-width text panes.
package grid

import "strings"

// GetGridCoords returns the column and row of the index-th cell in a grid
// cols cells wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Wrap splits s at newlines and then hard-wraps each line to cols runes.
// Tabs become four spaces. A trailing newline does not add an empty row.
func Wrap(s string, cols int) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\t", "    ")
	s = strings.TrimSuffix(s, "\n")

	var rows []string
	for _, line := range strings.Split(s, "\n") {
		runes := []rune(line)
		if len(runes) == 0 {
			rows = append(rows, "")
			continue
		}
		start := len(rows)
		for i, r := range runes {
			x, y := GetGridCoords(i, cols)
			if x == 0 {
				rows = append(rows, "")
			}
			rows[start+y] += string(r)
		}
	}
	return rows
}
