// Package api provides the JuniperReader REST API and WebSocket server.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/FocuswithJustin/JuniperReader/core/annotation"
	"github.com/FocuswithJustin/JuniperReader/core/corpus"
	"github.com/FocuswithJustin/JuniperReader/core/playback"
	"github.com/FocuswithJustin/JuniperReader/core/verseindex"
	"github.com/FocuswithJustin/JuniperReader/internal/cache"
	"github.com/FocuswithJustin/JuniperReader/internal/logging"
)

// searchCacheTTL bounds staleness of memoized search responses. The
// corpus is immutable for the life of the process, so the TTL only
// matters for memory turnover.
const (
	searchCacheTTL  = 5 * time.Minute
	searchCacheSize = 256
)

// Server wires the corpus, search index, annotation store and playback
// coordinator behind HTTP handlers.
type Server struct {
	cfg      Config
	corp     *corpus.Corpus
	index    *verseindex.Index
	store    *annotation.Store
	coord    *playback.Coordinator
	hub      *Hub
	searches *cache.TTLCache[string, SearchResult]
}

// NewServer creates a server over an already-loaded corpus and store.
// The coordinator's position changes are mirrored to WebSocket clients.
func NewServer(cfg Config, c *corpus.Corpus, store *annotation.Store, coord *playback.Coordinator) *Server {
	s := &Server{
		cfg:      cfg,
		corp:     c,
		index:    verseindex.Build(c),
		store:    store,
		coord:    coord,
		hub:      NewHub(),
		searches: cache.New[string, SearchResult](searchCacheTTL, searchCacheSize),
	}
	if coord != nil {
		coord.OnPositionChange(s.hub.PositionListener(c))
	}
	return s
}

// Handler returns the full route tree wrapped in the logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /books", s.handleBooks)
	mux.HandleFunc("GET /books/{book}", s.handleBook)
	mux.HandleFunc("GET /books/{book}/chapters/{chapter}", s.handleChapter)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /random", s.handleRandom)
	mux.HandleFunc("GET /resolve", s.handleResolve)
	mux.HandleFunc("GET /annotations/{kind}", s.handleListAnnotations)
	mux.HandleFunc("PUT /annotations/{kind}/{book}/{chapter}/{verse}", s.handlePutAnnotation)
	mux.HandleFunc("DELETE /annotations/{kind}/{book}/{chapter}/{verse}", s.handleDeleteAnnotation)
	mux.HandleFunc("POST /playback/start", s.handlePlaybackStart)
	mux.HandleFunc("POST /playback/stop", s.handlePlaybackStop)
	mux.HandleFunc("GET /playback/position", s.handlePlaybackPosition)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	var handler http.Handler = mux
	handler = corsMiddleware(s.cfg.AllowedOrigins, handler)
	handler = logging.Middleware(handler)
	return handler
}

// Start runs the hub and listens on the configured port. It blocks
// until the listener fails.
func (s *Server) Start() error {
	go s.hub.Run()

	logging.ServerStartup("rest_api", "http", s.cfg.Port,
		"books", len(s.corp.Books),
		"verses", s.index.Len())

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	return http.ListenAndServe(addr, s.Handler())
}

// corsMiddleware sets CORS headers. An empty origin list allows all
// origins.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(allowed) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
