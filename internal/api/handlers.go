package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/JuniperReader/core/annotation"
	"github.com/FocuswithJustin/JuniperReader/core/corpus"
	jrerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/core/navigation"
	"github.com/FocuswithJustin/JuniperReader/core/ref"
	"github.com/FocuswithJustin/JuniperReader/core/search"
	"github.com/FocuswithJustin/JuniperReader/core/sqlite"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// BookInfo describes one book of the corpus.
type BookInfo struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Chapters int    `json:"chapters"`
}

// VerseInfo is a single verse with its address.
type VerseInfo struct {
	Address  corpus.Address `json:"address"`
	BookName string         `json:"book_name"`
	Text     string         `json:"text"`
}

// SearchResult is the JSON shape of a search response.
type SearchResult struct {
	Insufficient bool        `json:"insufficient"`
	Tokens       []string    `json:"tokens,omitempty"`
	Matches      []VerseInfo `json:"matches"`
}

// PlaybackStatus reports the coordinator state and current position.
type PlaybackStatus struct {
	State   string          `json:"state"`
	Address *corpus.Address `json:"address,omitempty"`
	Text    string          `json:"text,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "not_found", "unknown endpoint")
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"service": "juniper-reader-api",
		"title":   s.corp.Title,
		"endpoints": []string{
			"/health", "/books", "/search", "/random", "/resolve",
			"/annotations/{kind}", "/playback/start", "/playback/stop",
			"/playback/position", "/ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "healthy",
		"books":   len(s.corp.Books),
		"verses":  s.index.Len(),
		"storage": sqlite.Description(),
	}
	if err := s.store.LastError(); err != nil {
		status["status"] = "degraded"
		status["storage_error"] = err.Error()
	}
	respond(w, http.StatusOK, status)
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	books := make([]BookInfo, len(s.corp.Books))
	for i, b := range s.corp.Books {
		books[i] = BookInfo{
			Index:    i,
			ID:       b.ID,
			Name:     b.DisplayName,
			Chapters: len(b.Chapters),
		}
	}
	respondList(w, books, len(books))
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	bi, err := strconv.Atoi(r.PathValue("book"))
	if err != nil || bi < 0 || bi >= len(s.corp.Books) {
		respondError(w, http.StatusNotFound, "not_found", "no such book")
		return
	}
	b := s.corp.Books[bi]
	verses := make([]int, len(b.Chapters))
	for i, ch := range b.Chapters {
		verses[i] = len(ch)
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"index":        bi,
		"id":           b.ID,
		"name":         b.DisplayName,
		"chapters":     len(b.Chapters),
		"verse_counts": verses,
	})
}

func (s *Server) handleChapter(w http.ResponseWriter, r *http.Request) {
	bi, err1 := strconv.Atoi(r.PathValue("book"))
	ci, err2 := strconv.Atoi(r.PathValue("chapter"))
	if err1 != nil || err2 != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "book and chapter must be integers")
		return
	}
	if bi < 0 || bi >= len(s.corp.Books) || ci < 0 || ci >= len(s.corp.Books[bi].Chapters) {
		respondError(w, http.StatusNotFound, "not_found", "no such chapter")
		return
	}
	b := s.corp.Books[bi]
	verses := make([]VerseInfo, len(b.Chapters[ci]))
	for vi, text := range b.Chapters[ci] {
		verses[vi] = VerseInfo{
			Address:  corpus.Address{Book: bi, Chapter: ci, Verse: vi},
			BookName: b.DisplayName,
			Text:     text,
		}
	}
	respondList(w, verses, len(verses))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	tokens := search.Tokenize(query)
	key := strings.Join(tokens, " ")

	if cached, ok := s.searches.Get(key); ok {
		respondList(w, cached, len(cached.Matches))
		return
	}

	res := search.Search(query, s.index)
	out := SearchResult{
		Insufficient: res.Insufficient,
		Tokens:       res.Tokens,
		Matches:      make([]VerseInfo, len(res.Entries)),
	}
	for i, e := range res.Entries {
		out.Matches[i] = VerseInfo{Address: e.Address, BookName: e.BookName, Text: e.Text}
	}
	if res.Insufficient {
		// Distinct from an empty result set: the query never ran.
		respond(w, http.StatusUnprocessableEntity, out)
		return
	}
	s.searches.Set(key, out)
	respondList(w, out, len(out.Matches))
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	e, ok := s.index.RandomEntry()
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "corpus has no verses")
		return
	}
	respond(w, http.StatusOK, VerseInfo{Address: e.Address, BookName: e.BookName, Text: e.Text})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ref")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "missing ref parameter")
		return
	}
	parsed, err := ref.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_reference", err.Error())
		return
	}
	addr, err := parsed.Resolve(s.corp)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, jrerrors.ErrNotFound) {
			status = http.StatusNotFound
		}
		respondError(w, status, "resolution_failed", err.Error())
		return
	}
	chain, err := navigation.Resolve(addr, s.corp)
	if err != nil {
		respondError(w, http.StatusNotFound, "resolution_failed", err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"address":   addr,
		"book_name": s.corp.Books[addr.Book].DisplayName,
		"text":      addr.Text(s.corp),
		"chain":     chain,
	})
}

func (s *Server) handleListAnnotations(w http.ResponseWriter, r *http.Request) {
	kind := annotation.Kind(r.PathValue("kind"))
	if !kind.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid_kind", "kind must be note, bookmark or favorite")
		return
	}
	list := s.store.ListByKind(kind)
	respondList(w, list, len(list))
}

// putAnnotationRequest is the PUT body for creating or updating an
// annotation. Only notes carry a body.
type putAnnotationRequest struct {
	CustomText *string `json:"custom_text,omitempty"`
}

func (s *Server) handlePutAnnotation(w http.ResponseWriter, r *http.Request) {
	kind, addr, ok := s.annotationTarget(w, r)
	if !ok {
		return
	}

	var req putAnnotationRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
			return
		}
	}

	ann, err := s.store.Upsert(kind, addr, annotation.Payload{
		BookName:     s.corp.Books[addr.Book].DisplayName,
		SnapshotText: addr.Text(s.corp),
		CustomText:   req.CustomText,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	respond(w, http.StatusOK, ann)
}

func (s *Server) handleDeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	kind, addr, ok := s.annotationTarget(w, r)
	if !ok {
		return
	}
	if err := s.store.Remove(kind, addr); err != nil {
		respondError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "removed"})
}

// annotationTarget parses the kind and verse address path segments,
// writing the error response itself when they are invalid.
func (s *Server) annotationTarget(w http.ResponseWriter, r *http.Request) (annotation.Kind, corpus.Address, bool) {
	kind := annotation.Kind(r.PathValue("kind"))
	if !kind.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid_kind", "kind must be note, bookmark or favorite")
		return "", corpus.Address{}, false
	}
	bi, err1 := strconv.Atoi(r.PathValue("book"))
	ci, err2 := strconv.Atoi(r.PathValue("chapter"))
	vi, err3 := strconv.Atoi(r.PathValue("verse"))
	if err1 != nil || err2 != nil || err3 != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "address segments must be integers")
		return "", corpus.Address{}, false
	}
	addr := corpus.Address{Book: bi, Chapter: ci, Verse: vi}
	if !addr.Valid(s.corp) {
		respondError(w, http.StatusNotFound, "not_found", "address outside corpus")
		return "", corpus.Address{}, false
	}
	return kind, addr, true
}

// playbackStartRequest targets playback either by reference string or
// by explicit address. The reference wins when both are present.
type playbackStartRequest struct {
	Ref     string          `json:"ref,omitempty"`
	Address *corpus.Address `json:"address,omitempty"`
}

func (s *Server) handlePlaybackStart(w http.ResponseWriter, r *http.Request) {
	if s.coord == nil {
		respondError(w, http.StatusServiceUnavailable, "playback_unavailable", "no narrator configured")
		return
	}

	var req playbackStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	var addr corpus.Address
	switch {
	case req.Ref != "":
		parsed, err := ref.Parse(req.Ref)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_reference", err.Error())
			return
		}
		addr, err = parsed.Resolve(s.corp)
		if err != nil {
			respondError(w, http.StatusNotFound, "resolution_failed", err.Error())
			return
		}
	case req.Address != nil:
		addr = *req.Address
	default:
		respondError(w, http.StatusBadRequest, "invalid_request", "provide ref or address")
		return
	}

	if err := s.coord.Start(addr); err != nil {
		respondError(w, http.StatusBadRequest, "playback_failed", err.Error())
		return
	}
	respond(w, http.StatusOK, s.playbackStatus())
}

func (s *Server) handlePlaybackStop(w http.ResponseWriter, r *http.Request) {
	if s.coord == nil {
		respondError(w, http.StatusServiceUnavailable, "playback_unavailable", "no narrator configured")
		return
	}
	s.coord.Stop()
	respond(w, http.StatusOK, s.playbackStatus())
}

func (s *Server) handlePlaybackPosition(w http.ResponseWriter, r *http.Request) {
	if s.coord == nil {
		respondError(w, http.StatusServiceUnavailable, "playback_unavailable", "no narrator configured")
		return
	}
	respond(w, http.StatusOK, s.playbackStatus())
}

func (s *Server) playbackStatus() PlaybackStatus {
	status := PlaybackStatus{State: s.coord.State().String()}
	if addr, ok := s.coord.CurrentAddress(); ok {
		status.Address = &addr
		status.Text = addr.Text(s.corp)
	}
	return status
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	writeResponse(w, status, APIResponse{
		Success: status < http.StatusBadRequest,
		Data:    data,
	})
}

func respondList(w http.ResponseWriter, data interface{}, total int) {
	writeResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeResponse(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

func writeResponse(w http.ResponseWriter, status int, resp APIResponse) {
	if resp.Meta == nil {
		resp.Meta = &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
