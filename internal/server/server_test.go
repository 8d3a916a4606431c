package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"aulepi/internal/cache"
	"aulepi/internal/config"
	"aulepi/internal/model"
	"aulepi/internal/registry"
)

type fakeClient struct {
	calendars map[string]string
	err       error
	calls     int
}

func (f *fakeClient) FetchDay(_ context.Context, _ time.Time) (map[string]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.calendars, nil
}

// Monday 2025-01-06, 10:00 in Rome.
var testNow = time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)

func feedFor(room, building string, start, end time.Time) string {
	return "BEGIN:VCALENDAR\n" +
		"BEGIN:VEVENT\n" +
		fmt.Sprintf("DTSTART:%v\n", start.UTC().Format("20060102T150405Z")) +
		fmt.Sprintf("DTEND:%v\n", end.UTC().Format("20060102T150405Z")) +
		"SUMMARY:Analisi I\n" +
		"DESCRIPTION:M. Rossi\n" +
		fmt.Sprintf("LOCATION:%v - %v\n", room, building) +
		"END:VEVENT\n" +
		"END:VCALENDAR\n"
}

func newTestServer(t *testing.T, client *fakeClient) *Server {
	t.Helper()

	loc, err := time.LoadLocation("Europe/Rome")
	assert.Nil(t, err)

	roomRegistry, err := registry.NewRegistry(path.Join(t.TempDir(), "rooms.csv"))
	assert.Nil(t, err)

	cfg := &config.Server{AllowedOrigins: []string{"*"}, SoonWindowMinutes: 30}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assembler := model.NewAssembler(model.NewCalendar(model.DefaultRules), 30*time.Minute)

	s := New(cfg, logger, loc, client, cache.NewMemory(), roomRegistry, assembler)
	s.clock = func() time.Time { return testNow }
	return s
}

func TestOpenClassrooms(t *testing.T) {
	t.Run("Classified and ranked response", func(t *testing.T) {
		//**Arrange
		client := &fakeClient{calendars: map[string]string{
			"poloA": feedFor("IngA11", "poloA", testNow.Add(-time.Hour), testNow.Add(time.Hour)),
			"poloB": feedFor("B1", "poloB", testNow.Add(-2*time.Hour), testNow.Add(-time.Hour)),
		}}
		s := newTestServer(t, client)

		//**Act
		recorder := httptest.NewRecorder()
		s.Router().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/open-classrooms", nil))

		//**Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		var buildings []model.Building
		assert.Nil(t, json.NewDecoder(recorder.Body).Decode(&buildings))
		assert.Len(t, buildings, 2)

		// poloB's only lesson already ended, so it is free and ranks first.
		assert.Equal(t, "poloB", buildings[0].Code)
		assert.True(t, buildings[0].Free)
		assert.Equal(t, "poloA", buildings[1].Code)
		assert.False(t, buildings[1].Free)
		assert.Equal(t, "IngA11", buildings[1].Rooms[0].Name)
		assert.Equal(t, "ROSSI", buildings[1].Rooms[0].Lessons[0].Professor)
	})

	t.Run("Second request hits the cache", func(t *testing.T) {
		client := &fakeClient{calendars: map[string]string{
			"poloA": feedFor("IngA11", "poloA", testNow.Add(-time.Hour), testNow.Add(time.Hour)),
		}}
		s := newTestServer(t, client)
		router := s.Router()

		for i := 0; i < 2; i++ {
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/open-classrooms", nil))
			assert.Equal(t, http.StatusOK, recorder.Code)
		}

		assert.Equal(t, 1, client.calls)
	})

	t.Run("Upstream failure is a bad gateway", func(t *testing.T) {
		s := newTestServer(t, &fakeClient{err: fmt.Errorf("platform down")})

		recorder := httptest.NewRecorder()
		s.Router().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/open-classrooms", nil))

		assert.Equal(t, http.StatusBadGateway, recorder.Code)
	})
}

func TestOpenClassroomsNearby(t *testing.T) {
	t.Run("Distances annotated", func(t *testing.T) {
		client := &fakeClient{calendars: map[string]string{
			"poloA": feedFor("IngA11", "poloA", testNow.Add(-time.Hour), testNow.Add(time.Hour)),
		}}
		s := newTestServer(t, client)

		body := strings.NewReader(`{"lat": 43.7230, "lng": 10.3966}`)
		recorder := httptest.NewRecorder()
		s.Router().ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/open-classrooms", body))

		assert.Equal(t, http.StatusOK, recorder.Code)

		var buildings []model.Building
		assert.Nil(t, json.NewDecoder(recorder.Body).Decode(&buildings))
		assert.Len(t, buildings, 1)
		assert.Greater(t, buildings[0].Distance, 0.0)
		assert.Less(t, buildings[0].Distance, 5.0)
	})

	t.Run("Missing coordinates", func(t *testing.T) {
		s := newTestServer(t, &fakeClient{})

		body := strings.NewReader(`{"lat": 43.7230}`)
		recorder := httptest.NewRecorder()
		s.Router().ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/open-classrooms", body))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestUtilityRoutes(t *testing.T) {
	s := newTestServer(t, &fakeClient{})
	router := s.Router()

	t.Run("Test route", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/test", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Test route is working!")
	})

	t.Run("Health", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Request id echoes back", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/health", nil)
		request.Header.Set("X-Request-ID", "abc-123")
		router.ServeHTTP(recorder, request)

		assert.Equal(t, "abc-123", recorder.Header().Get("X-Request-ID"))
	})
}

func TestUntilMidnight(t *testing.T) {
	now := time.Date(2025, time.January, 6, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, 30*time.Minute, untilMidnight(now))
}
