package model

import (
	"regexp"
	"slices"
	"strings"
)

// Ranker orders buildings, and rooms within a building, for display. Users
// scan top to bottom looking for usable space now, so free entries come
// first and closed buildings sink to the bottom regardless of any other
// attribute. Both sorts are stable so identical input always yields the
// identical order.
type Ranker interface {
	SortBuildings(buildings []Building)
	SortRooms(rooms []Room)
}

func NewRanker() Ranker {
	return &displayRanker{}
}

type displayRanker struct{}

func (r *displayRanker) SortBuildings(buildings []Building) {
	slices.SortStableFunc(buildings, compareBuildings)
}

func (r *displayRanker) SortRooms(rooms []Room) {
	slices.SortStableFunc(rooms, compareRooms)
}

func compareBuildings(a, b Building) int {
	if c := trueFirst(!a.IsClosed, !b.IsClosed); c != 0 {
		return c
	}
	if c := trueFirst(a.Free, b.Free); c != 0 {
		return c
	}
	if c := trueFirst(a.AvailableSoon, b.AvailableSoon); c != 0 {
		return c
	}
	return strings.Compare(displayKey(a.Code), displayKey(b.Code))
}

// compareRooms has no final key: ties keep the original input order, which
// is why the sort above must be stable.
func compareRooms(a, b Room) int {
	if c := trueFirst(a.Free, b.Free); c != 0 {
		return c
	}
	return trueFirst(a.AvailableSoon, b.AvailableSoon)
}

func trueFirst(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// displayKey normalizes a building code for the lexicographic tie-break:
// the literal "polo" prefix and all non-alphanumeric characters are
// stripped, the rest trimmed and case-folded.
func displayKey(code string) string {
	code = strings.TrimPrefix(code, "polo")
	code = nonAlphanumeric.ReplaceAllString(code, "")
	return strings.ToLower(strings.TrimSpace(code))
}
