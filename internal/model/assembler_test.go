package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func rawLesson(start, end string) RawLesson {
	return RawLesson{Start: start, End: end, Professor: "ROSSI", Summary: "Analisi I"}
}

func TestAssemble(t *testing.T) {
	assembler := NewAssembler(NewCalendar(DefaultRules), soonWindow)

	t.Run("Monday morning scenario", func(t *testing.T) {
		//**Arrange
		raw := RawSnapshot{Buildings: []RawBuilding{{
			Code:        "poloA",
			Name:        "Polo A",
			Coordinates: [2]float64{10.3898, 43.7210},
			Rooms: map[string][]RawLesson{
				"IngA11": {rawLesson("2025-01-06 09:00:00", "2025-01-06 11:00:00")},
				"IngA12": {},
			},
		}}}

		//**Act
		snapshot := assembler.Assemble(raw, at(6, 10, 0))

		//**Assert
		assert.Len(t, snapshot.Buildings, 1)
		poloA := snapshot.Buildings[0]
		assert.True(t, poloA.Free)
		assert.False(t, poloA.AvailableSoon)
		assert.False(t, poloA.IsClosed)

		// The free room ranks first.
		assert.Equal(t, "IngA12", poloA.Rooms[0].Name)
		assert.True(t, poloA.Rooms[0].Free)
		assert.Equal(t, "IngA11", poloA.Rooms[1].Name)
		assert.False(t, poloA.Rooms[1].Free)
		assert.False(t, poloA.Rooms[1].AvailableSoon)
	})

	t.Run("Closed building outranks nothing", func(t *testing.T) {
		// Sunday morning: poloA is closed by policy, poloF is open.
		raw := RawSnapshot{Buildings: []RawBuilding{
			{Code: "poloA", Rooms: map[string][]RawLesson{"A1": {}}},
			{Code: "poloF", Rooms: map[string][]RawLesson{"F1": {}}},
		}}

		snapshot := assembler.Assemble(raw, at(12, 9, 0))

		assert.Equal(t, "poloF", snapshot.Buildings[0].Code)
		assert.True(t, snapshot.Buildings[0].Free)
		assert.Equal(t, "poloA", snapshot.Buildings[1].Code)
		assert.True(t, snapshot.Buildings[1].IsClosed)
		assert.False(t, snapshot.Buildings[1].Free)
	})

	t.Run("Malformed lesson is scoped to its room", func(t *testing.T) {
		raw := RawSnapshot{Buildings: []RawBuilding{{
			Code: "poloB",
			Rooms: map[string][]RawLesson{
				"B1": {
					rawLesson("not a timestamp", "2025-01-06 11:00:00"),
					rawLesson("2025-01-06 09:00:00", "2025-01-06 11:00:00"),
				},
				"B2": {rawLesson("2025-01-06 11:00:00", "2025-01-06 09:00:00")},
			},
		}}}

		snapshot := assembler.Assemble(raw, at(6, 10, 0))

		rooms := snapshot.Buildings[0].Rooms
		byName := map[string]Room{}
		for _, room := range rooms {
			byName[room.Name] = room
		}

		// B1 still classifies as occupied from its surviving lesson.
		assert.True(t, byName["B1"].Unknown)
		assert.False(t, byName["B1"].Free)
		// B2's only lesson ends before it starts, so nothing occupies it.
		assert.True(t, byName["B2"].Unknown)
		assert.True(t, byName["B2"].Free)
	})

	t.Run("Empty snapshot", func(t *testing.T) {
		snapshot := assembler.Assemble(RawSnapshot{}, at(6, 10, 0))

		assert.Empty(t, snapshot.Buildings)
	})

	t.Run("Building with no rooms", func(t *testing.T) {
		raw := RawSnapshot{Buildings: []RawBuilding{{Code: "poloA"}}}

		snapshot := assembler.Assemble(raw, at(6, 10, 0))

		status := snapshot.Buildings[0].BuildingStatus
		assert.Equal(t, BuildingStatus{}, status)
	})

	t.Run("Ended lessons drop from the display list", func(t *testing.T) {
		raw := RawSnapshot{Buildings: []RawBuilding{{
			Code: "poloA",
			Rooms: map[string][]RawLesson{
				"A1": {
					rawLesson("2025-01-06 14:00:00", "2025-01-06 16:00:00"),
					rawLesson("2025-01-06 07:00:00", "2025-01-06 08:00:00"),
					rawLesson("2025-01-06 11:00:00", "2025-01-06 13:00:00"),
				},
			},
		}}}

		snapshot := assembler.Assemble(raw, at(6, 10, 0))

		lessons := snapshot.Buildings[0].Rooms[0].Lessons
		assert.Len(t, lessons, 2)
		assert.Equal(t, at(6, 11, 0), lessons[0].Start)
		assert.Equal(t, at(6, 14, 0), lessons[1].Start)
	})

	t.Run("Assembly is deterministic", func(t *testing.T) {
		raw := RawSnapshot{Buildings: []RawBuilding{{
			Code: "poloA",
			Rooms: map[string][]RawLesson{
				"A3": {}, "A1": {}, "A2": {},
				"A4": {rawLesson("2025-01-06 09:00:00", "2025-01-06 11:00:00")},
			},
		}}}
		now := at(6, 10, 0)

		first := assembler.Assemble(raw, now)
		second := assembler.Assemble(raw, now)

		assert.Equal(t, first, second)
	})
}

func TestParseTimestamp(t *testing.T) {
	loc := time.UTC

	for _, value := range []string{
		"2025-01-06T10:00:00Z",
		"2025-01-06 10:00:00",
		"2025-01-06T10:00:00",
	} {
		parsed, err := parseTimestamp(value, loc)
		assert.Nil(t, err)
		assert.Equal(t, at(6, 10, 0), parsed)
	}

	_, err := parseTimestamp("06/01/2025", loc)
	assert.NotNil(t, err)
}
