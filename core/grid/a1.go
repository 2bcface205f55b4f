package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnLetters converts a 1-based column number to its letter form (1 -> A, 27 -> AA).
func ColumnLetters(col int) string {
	if col <= 0 {
		return ""
	}
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

// ColumnNumber converts column letters to a 1-based column number (A -> 1, AA -> 27).
func ColumnNumber(letters string) (int, error) {
	if letters == "" {
		return 0, fmt.Errorf("empty column letters")
	}
	n := 0
	for _, r := range strings.ToUpper(letters) {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column letters %q", letters)
		}
		n = n*26 + int(r-'A'+1)
	}
	return n, nil
}

// ParseA1 parses a single cell reference such as "B12".
func ParseA1(ref string) (Position, error) {
	i := 0
	for i < len(ref) && ((ref[i] >= 'A' && ref[i] <= 'Z') || (ref[i] >= 'a' && ref[i] <= 'z')) {
		i++
	}
	if i == 0 || i == len(ref) {
		return Position{}, fmt.Errorf("invalid A1 reference %q", ref)
	}
	col, err := ColumnNumber(ref[:i])
	if err != nil {
		return Position{}, err
	}
	row, err := strconv.Atoi(ref[i:])
	if err != nil || row <= 0 {
		return Position{}, fmt.Errorf("invalid A1 reference %q", ref)
	}
	return Position{Row: row, Col: col}, nil
}

// QuoteSheet quotes a worksheet name for use in an A1 range.
func QuoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
