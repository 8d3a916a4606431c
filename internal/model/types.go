package model

import "time"

// Lesson is a scheduled occupancy interval for a room, as supplied by the
// upstream calendar feed. Intervals are half-open: a lesson blocks the room
// for [Start, End).
type Lesson struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Professor string    `json:"professor"`
	Summary   string    `json:"summary,omitempty"`
}

// Covers reports whether the lesson is in progress at the given instant.
func (l Lesson) Covers(now time.Time) bool {
	return !l.Start.After(now) && l.End.After(now)
}

// RoomStatus is the availability classification of a single room at one
// instant. AvailableSoon is only ever set when Free is false. Unknown marks
// a room whose lesson list contained records that could not be interpreted;
// classification still ran over the remaining ones.
type RoomStatus struct {
	Free          bool `json:"free"`
	AvailableSoon bool `json:"availableSoon"`
	Unknown       bool `json:"unknown,omitempty"`
}

// Room is a schedulable space inside a building.
type Room struct {
	Name    string   `json:"room"`
	Lessons []Lesson `json:"lessons"`
	RoomStatus
}

// BuildingStatus is the folded availability of a building. IsClosed depends
// only on the opening-hours calendar; Free and AvailableSoon depend only on
// room occupancy. A closed building reports neither free nor available soon.
type BuildingStatus struct {
	Free          bool `json:"free"`
	AvailableSoon bool `json:"availableSoon"`
	IsClosed      bool `json:"isClosed"`
}

// Building groups the rooms of one campus location. Coordinates are
// [longitude, latitude], the order the upstream provider uses. Distance is
// an optional upstream-computed kilometer figure and is carried through
// untouched.
type Building struct {
	Code        string     `json:"building_code"`
	Name        string     `json:"building"`
	Coordinates [2]float64 `json:"coordinates"`
	Distance    float64    `json:"distance,omitempty"`
	Rooms       []Room     `json:"rooms"`
	BuildingStatus
}

// Snapshot is one classified and ranked batch of buildings. It is built
// fresh per request and never mutated afterwards.
type Snapshot struct {
	Buildings []Building `json:"buildings"`
}
