// Package filter holds the pure derivation functions presentation uses to
// narrow an already-fetched sequence. Filters preserve input order and
// compose by plain chaining.
package filter

import (
	"strings"
	"time"
)

// Text keeps items where any of the strings produced by fields contains
// query, case-insensitively. An empty query keeps everything.
func Text[T any](items []T, query string, fields func(T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range fields(it) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// Equal keeps items whose key equals want.
func Equal[T any, V comparable](items []T, want V, key func(T) V) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if key(it) == want {
			out = append(out, it)
		}
	}
	return out
}

// InYear keeps items dated in year.
func InYear[T any](items []T, year int, date func(T) time.Time) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if date(it).Year() == year {
			out = append(out, it)
		}
	}
	return out
}

// InMonth keeps items dated in the given year and 1-based month.
func InMonth[T any](items []T, year, month int, date func(T) time.Time) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		d := date(it)
		if d.Year() == year && int(d.Month()) == month {
			out = append(out, it)
		}
	}
	return out
}
