// Package server exposes the classified snapshot over HTTP for the map
// frontend: fetch the day's calendars once, classify per request, rank, and
// serve.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"aulepi/internal/cache"
	"aulepi/internal/cineca"
	"aulepi/internal/config"
	"aulepi/internal/ics"
	"aulepi/internal/metrics"
	"aulepi/internal/model"
	"aulepi/internal/registry"
)

type Server struct {
	cfg       *config.Server
	logger    *slog.Logger
	loc       *time.Location
	client    cineca.Client
	parser    ics.Parser
	assembler model.Assembler
	cache     cache.Cache
	registry  registry.Registry
	clock     func() time.Time
}

func New(
	cfg *config.Server,
	logger *slog.Logger,
	loc *time.Location,
	client cineca.Client,
	calendarCache cache.Cache,
	roomRegistry registry.Registry,
	assembler model.Assembler,
) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logger,
		loc:       loc,
		client:    client,
		parser:    ics.NewParser(loc),
		assembler: assembler,
		cache:     calendarCache,
		registry:  roomRegistry,
		clock:     time.Now,
	}
}

// Router wires routes, request-id and logging middleware, and CORS.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/api/test", s.handleTest).Methods(http.MethodGet)
	router.HandleFunc("/api/open-classrooms", s.handleOpenClassrooms).Methods(http.MethodGet)
	router.HandleFunc("/api/open-classrooms", s.handleOpenClassroomsNearby).Methods(http.MethodPost)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	router.Use(s.requestID, s.logRequests)

	return handlers.CORS(
		handlers.AllowedOrigins(s.cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(router)
}
