package server

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"aulepi/internal/cineca"
	"aulepi/internal/metrics"
	"aulepi/internal/model"
)

const feedTimeLayout = "2006-01-02 15:04:05"

// daySnapshot returns the raw snapshot for now's date, downloading and
// parsing the calendars only when the cache has nothing for that date.
func (s *Server) daySnapshot(ctx context.Context, now time.Time) (model.RawSnapshot, error) {
	key := "calendar:" + now.Format(time.DateOnly)

	cached, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("calendar cache read failed", "error", err)
	}
	if hit {
		metrics.CacheHitsTotal.Inc()
		return model.SnapshotFromBytes(cached)
	}
	metrics.CacheMissesTotal.Inc()

	raw, err := s.refreshDay(ctx, now)
	if err != nil {
		metrics.UpstreamFailuresTotal.Inc()
		return model.RawSnapshot{}, err
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		return model.RawSnapshot{}, fmt.Errorf("cannot serialize snapshot: %w", err)
	}
	if err := s.cache.Set(ctx, key, payload, untilMidnight(now)); err != nil {
		s.logger.Warn("calendar cache write failed", "error", err)
	}
	return raw, nil
}

// refreshDay downloads every building's feed and shapes it into a raw
// snapshot, then lets the room registry fill in the rooms the feed did not
// mention today.
func (s *Server) refreshDay(ctx context.Context, now time.Time) (model.RawSnapshot, error) {
	calendars, err := s.client.FetchDay(ctx, now)
	if err != nil {
		return model.RawSnapshot{}, err
	}

	raw := model.RawSnapshot{}
	codes := make([]string, 0, len(calendars))
	for code := range calendars {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	for _, code := range codes {
		events := s.parser.Parse(calendars[code], now)

		rooms := map[string][]model.RawLesson{}
		for _, event := range events {
			rooms[event.Room] = append(rooms[event.Room], model.RawLesson{
				Start:     event.Start.Format(feedTimeLayout),
				End:       event.End.Format(feedTimeLayout),
				Professor: event.Professor,
				Summary:   event.Summary,
			})
		}

		raw.Buildings = append(raw.Buildings, model.RawBuilding{
			Code:        code,
			Name:        strings.TrimPrefix(code, "polo"),
			Coordinates: cineca.Coordinates[code],
			Rooms:       rooms,
		})
	}

	s.registry.Seed(&raw, cineca.Coordinates)
	if added, err := s.registry.Record(raw); err != nil {
		s.logger.Warn("cannot persist room registry", "error", err)
	} else if added > 0 {
		s.logger.Info("room registry grew", "added", added)
	}

	return raw, nil
}

func untilMidnight(now time.Time) time.Duration {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return midnight.Sub(now)
}
