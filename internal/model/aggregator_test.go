package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func room(free, soon bool) Room {
	return Room{RoomStatus: RoomStatus{Free: free, AvailableSoon: soon}}
}

func TestAggregate(t *testing.T) {
	aggregator := NewAggregator()

	t.Run("Any free room frees the building", func(t *testing.T) {
		status := aggregator.Aggregate([]Room{room(false, false), room(true, false)}, false)

		assert.Equal(t, BuildingStatus{Free: true}, status)
	})

	t.Run("Free dominates available soon", func(t *testing.T) {
		status := aggregator.Aggregate([]Room{room(true, false), room(false, true)}, false)

		assert.True(t, status.Free)
		assert.False(t, status.AvailableSoon)
	})

	t.Run("Available soon only without free rooms", func(t *testing.T) {
		status := aggregator.Aggregate([]Room{room(false, true), room(false, false)}, false)

		assert.False(t, status.Free)
		assert.True(t, status.AvailableSoon)
	})

	t.Run("Closed dominates everything", func(t *testing.T) {
		status := aggregator.Aggregate([]Room{room(true, false), room(false, true)}, true)

		assert.Equal(t, BuildingStatus{IsClosed: true}, status)
	})

	t.Run("No rooms", func(t *testing.T) {
		status := aggregator.Aggregate(nil, false)

		assert.Equal(t, BuildingStatus{}, status)
	})
}
