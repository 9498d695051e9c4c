// Package season derives and encodes the quarter-year competitive periods
// that partition player statistics.
package season

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	Winter Type = "WINTER"
	Spring Type = "SPRING"
	Summer Type = "SUMMER"
	Autumn Type = "AUTUMN"
)

// Cyclic order within a year; stepping past the ends wraps the year.
var order = []Type{Winter, Spring, Summer, Autumn}

type Season struct {
	Year int  `json:"year"`
	Type Type `json:"type"`
}

// Current maps now onto fixed calendar quarters: Jan-Mar WINTER, Apr-Jun
// SPRING, Jul-Sep SUMMER, Oct-Dec AUTUMN.
func Current(now time.Time) Season {
	var t Type
	switch {
	case now.Month() <= time.March:
		t = Winter
	case now.Month() <= time.June:
		t = Spring
	case now.Month() <= time.September:
		t = Summer
	default:
		t = Autumn
	}
	return Season{Year: now.Year(), Type: t}
}

// Key serializes the season as "{year}-{type}".
func (s Season) Key() string {
	return fmt.Sprintf("%d-%s", s.Year, s.Type)
}

// ParseKey is the inverse of Key, splitting on the first '-'.
func ParseKey(key string) (Season, error) {
	yearPart, typePart, ok := strings.Cut(key, "-")
	if !ok {
		return Season{}, fmt.Errorf("invalid season key %q", key)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return Season{}, fmt.Errorf("invalid season year in key %q: %w", key, err)
	}
	t := Type(typePart)
	if indexOf(t) < 0 {
		return Season{}, fmt.Errorf("invalid season type in key %q", key)
	}
	return Season{Year: year, Type: t}, nil
}

// Next steps one season forward (direction +1) or back (direction -1),
// wrapping the year at AUTUMN->WINTER and WINTER->AUTUMN.
func (s Season) Next(direction int) Season {
	idx := indexOf(s.Type)
	next := (idx + direction + len(order)) % len(order)

	year := s.Year
	if direction > 0 && idx == len(order)-1 {
		year++
	} else if direction < 0 && idx == 0 {
		year--
	}
	return Season{Year: year, Type: order[next]}
}

func indexOf(t Type) int {
	for i, v := range order {
		if v == t {
			return i
		}
	}
	return -1
}
