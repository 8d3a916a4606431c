package model

import "github.com/samber/lo"

// Aggregator folds room statuses and the calendar verdict into a building
// summary. Closed dominates everything; free dominates available-soon: a
// building is flagged available-soon only while it has zero free rooms.
type Aggregator interface {
	Aggregate(rooms []Room, closed bool) BuildingStatus
}

func NewAggregator() Aggregator {
	return &anyRoomAggregator{}
}

type anyRoomAggregator struct{}

func (a *anyRoomAggregator) Aggregate(rooms []Room, closed bool) BuildingStatus {
	if closed {
		return BuildingStatus{IsClosed: true}
	}

	anyFree := lo.SomeBy(rooms, func(room Room) bool { return room.Free })
	anySoon := lo.SomeBy(rooms, func(room Room) bool { return room.AvailableSoon })

	return BuildingStatus{
		Free:          anyFree,
		AvailableSoon: anySoon && !anyFree,
	}
}
