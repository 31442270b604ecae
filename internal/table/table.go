// Package table filters, sorts and pages rows of tabular data shown in
// admin tables and ranking views.
package table

import (
	"fmt"
	"sort"
	"strings"
)

// Row is one record keyed by column.
type Row map[string]any

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// Text returns the lowercased string form of row[key], "" when missing.
func (r Row) Text(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return strings.ToLower(fmt.Sprint(v))
}

// Filter keeps rows where any value contains term, case-insensitively.
// The input slice is never modified.
func Filter(rows []Row, term string) []Row {
	term = strings.ToLower(term)
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if term == "" || row.matches(term) {
			out = append(out, row)
		}
	}
	return out
}

func (r Row) matches(term string) bool {
	for key := range r {
		if strings.Contains(r.Text(key), term) {
			return true
		}
	}
	return false
}

// Sort returns a stably sorted copy of rows ordered by the lowercased
// string form of row[key]. Rows with equal keys keep their input order in
// both directions.
func Sort(rows []Row, key string, dir Direction) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Text(key), out[j].Text(key)
		if dir == Desc {
			return a > b
		}
		return a < b
	})
	return out
}

// SortState tracks the active sort column of a table.
type SortState struct {
	Key       string
	Direction Direction
	// NumericKeys are best-first columns that default to descending.
	NumericKeys map[string]bool
}

// NewSortState returns a state sorted by key in its default direction.
func NewSortState(key string, numericKeys ...string) *SortState {
	s := &SortState{NumericKeys: make(map[string]bool, len(numericKeys))}
	for _, k := range numericKeys {
		s.NumericKeys[k] = true
	}
	s.Key = key
	s.Direction = s.defaultDirection(key)
	return s
}

func (s *SortState) defaultDirection(key string) Direction {
	if s.NumericKeys[key] {
		return Desc
	}
	return Asc
}

// Toggle flips the direction when key is already active, otherwise it
// switches to key in that column's default direction.
func (s *SortState) Toggle(key string) {
	if key == s.Key {
		s.Direction = s.Direction.Reverse()
		return
	}
	s.Key = key
	s.Direction = s.defaultDirection(key)
}

// Apply sorts rows by the current state.
func (s *SortState) Apply(rows []Row) []Row {
	if s.Key == "" {
		return Filter(rows, "")
	}
	if s.NumericKeys[s.Key] {
		return SortNumeric(rows, s.Key, s.Direction)
	}
	return Sort(rows, s.Key, s.Direction)
}

// SortNumeric is Sort for integer columns. Non-numeric or missing values
// sort as zero.
func SortNumeric(rows []Row, key string, dir Direction) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := number(out[i][key]), number(out[j][key])
		if dir == Desc {
			return a > b
		}
		return a < b
	})
	return out
}

func number(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

// Paginate returns the 1-based page of size rows and the total page count.
func Paginate(rows []Row, page, size int) ([]Row, int) {
	if size <= 0 {
		return rows, 1
	}
	pages := (len(rows) + size - 1) / size
	if page < 1 || page > pages {
		return []Row{}, pages
	}
	start := (page - 1) * size
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], pages
}
