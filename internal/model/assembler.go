package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"
)

// Assembler runs the whole classification pass: calendar, per-room
// classification, per-building aggregation and final ranking, as one pure
// transformation of (raw snapshot, now). An empty snapshot assembles to an
// empty snapshot; a building with no rooms is simply not free.
type Assembler interface {
	Assemble(raw RawSnapshot, now time.Time) Snapshot
}

func NewAssembler(calendar Calendar, soonWindow time.Duration) Assembler {
	return &snapshotAssembler{
		calendar:   calendar,
		classifier: NewClassifier(),
		aggregator: NewAggregator(),
		ranker:     NewRanker(),
		soonWindow: soonWindow,
	}
}

type snapshotAssembler struct {
	calendar   Calendar
	classifier Classifier
	aggregator Aggregator
	ranker     Ranker
	soonWindow time.Duration
}

func (a *snapshotAssembler) Assemble(raw RawSnapshot, now time.Time) Snapshot {
	buildings := make([]Building, 0, len(raw.Buildings))

	for _, rawBuilding := range raw.Buildings {
		closed := a.calendar.IsClosed(rawBuilding.Code, now)
		rooms := a.assembleRooms(rawBuilding, now)

		building := Building{
			Code:        rawBuilding.Code,
			Name:        rawBuilding.Name,
			Coordinates: rawBuilding.Coordinates,
			Distance:    rawBuilding.Distance,
			Rooms:       rooms,
		}
		building.BuildingStatus = a.aggregator.Aggregate(rooms, closed)
		buildings = append(buildings, building)
	}

	snapshot := Snapshot{Buildings: buildings}
	a.ranker.SortBuildings(snapshot.Buildings)
	return snapshot
}

// assembleRooms classifies every room of one building. Room names are
// visited in sorted order so that assembly is deterministic over the
// provider's unordered room mapping.
func (a *snapshotAssembler) assembleRooms(rawBuilding RawBuilding, now time.Time) []Room {
	names := lo.Keys(rawBuilding.Rooms)
	slices.Sort(names)

	rooms := make([]Room, 0, len(names))
	for _, name := range names {
		lessons, unknown := parseLessons(rawBuilding.Rooms[name], now.Location())

		room := Room{Name: name, Lessons: displayLessons(lessons, now)}
		room.RoomStatus = a.classifier.Classify(lessons, now, a.soonWindow)
		room.Unknown = unknown
		rooms = append(rooms, room)
	}

	a.ranker.SortRooms(rooms)
	return rooms
}

// parseLessons converts raw lessons, dropping any record that cannot be
// interpreted. A dropped record marks the room unknown but never aborts the
// rest of the snapshot.
func parseLessons(raw []RawLesson, loc *time.Location) (lessons []Lesson, unknown bool) {
	lessons = make([]Lesson, 0, len(raw))
	for _, rawLesson := range raw {
		lesson, err := parseLesson(rawLesson, loc)
		if err != nil {
			unknown = true
			continue
		}
		lessons = append(lessons, lesson)
	}
	return lessons, unknown
}

// lessonLayouts are the timestamp shapes the provider is known to emit.
var lessonLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseLesson(raw RawLesson, loc *time.Location) (Lesson, error) {
	start, err := parseTimestamp(raw.Start, loc)
	if err != nil {
		return Lesson{}, fmt.Errorf("invalid lesson start: %w", err)
	}
	end, err := parseTimestamp(raw.End, loc)
	if err != nil {
		return Lesson{}, fmt.Errorf("invalid lesson end: %w", err)
	}
	if end.Before(start) {
		return Lesson{}, fmt.Errorf("lesson ends at %v before it starts at %v", end, start)
	}

	return Lesson{
		Start:     start,
		End:       end,
		Professor: raw.Professor,
		Summary:   raw.Summary,
	}, nil
}

func parseTimestamp(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range lessonLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}

// displayLessons keeps the lessons still relevant for display (ongoing or
// upcoming) in start order; ended ones only matter for history.
func displayLessons(lessons []Lesson, now time.Time) []Lesson {
	relevant := lo.Filter(lessons, func(lesson Lesson, _ int) bool {
		return lesson.End.After(now)
	})
	slices.SortStableFunc(relevant, func(a, b Lesson) int {
		return a.Start.Compare(b.Start)
	})
	return relevant
}
