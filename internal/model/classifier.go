package model

import (
	"time"

	"github.com/samber/lo"
)

// Classifier decides whether a room is usable at a given instant based on
// its lesson list. The list does not have to be sorted.
type Classifier interface {
	Classify(lessons []Lesson, now time.Time, soonWindow time.Duration) RoomStatus
}

func NewClassifier() Classifier {
	return &intervalClassifier{}
}

type intervalClassifier struct{}

func (c *intervalClassifier) Classify(lessons []Lesson, now time.Time, soonWindow time.Duration) RoomStatus {
	covering := lo.Filter(lessons, func(lesson Lesson, _ int) bool {
		return lesson.Covers(now)
	})
	if len(covering) == 0 {
		return RoomStatus{Free: true}
	}

	// Overlapping covering lessons are malformed input; the room frees up
	// at the earliest end among them.
	release := lo.MinBy(covering, func(a, b Lesson) bool {
		return a.End.Before(b.End)
	}).End

	return RoomStatus{AvailableSoon: release.Sub(now) <= soonWindow}
}
