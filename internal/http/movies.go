package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lhollands/mediaserver/internal/domain"
	"github.com/lhollands/mediaserver/internal/repository"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type movieCreateRequest struct {
	Title       string `json:"title"`
	ReleaseYear int    `json:"releaseYear"`
}

type movieResponse struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseYear int     `json:"releaseYear"`
	LastUpdated *string `json:"lastUpdated,omitempty"`
}

type enrichedMovieResponse struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	ReleaseYear int      `json:"releaseYear"`
	IMDBScore   *float64 `json:"imdbScore"`
	IMDBVotes   *int64   `json:"imdbVotes"`
	RTScore     *float64 `json:"rtScore"`
	InTop250    bool     `json:"inTop250"`
	InTop100    bool     `json:"inTop100"`
}

type movieListResponse struct {
	Items []movieResponse `json:"items"`
}

type enrichedListResponse struct {
	Items []enrichedMovieResponse `json:"items"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.repo.Movies.List(r.Context())
	if err != nil {
		s.logger.Printf("list movies error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list movies")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieListResponse(movies))
}

func (s *Server) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "missing q parameter")
		return
	}

	movies, err := s.repo.Movies.Search(r.Context(), term)
	if err != nil {
		s.logger.Printf("search movies error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to search movies")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieListResponse(movies))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required")
		return
	}
	if req.ReleaseYear < 1880 || req.ReleaseYear > time.Now().Year()+1 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "releaseYear is out of range")
		return
	}

	id, err := s.repo.Movies.Add(r.Context(), title, req.ReleaseYear)
	if err != nil {
		s.logger.Printf("create movie error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create movie")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/movies/%d", id))
	s.respondJSON(w, http.StatusCreated, movieResponse{ID: id, Title: title, ReleaseYear: req.ReleaseYear})
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	enriched, err := s.enricher.EnrichOne(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("enrich movie %d error: %v", id, err)
		s.respondError(w, http.StatusBadGateway, "ENRICHMENT_FAILED", "Failed to refresh movie rating")
		return
	}
	s.respondJSON(w, http.StatusOK, toEnrichedResponse(enriched))
}

func (s *Server) handleEnrichedMovies(w http.ResponseWriter, r *http.Request) {
	enriched, err := s.enricher.EnrichAll(r.Context())
	if err != nil {
		s.logger.Printf("enrich all error: %v", err)
		s.respondError(w, http.StatusBadGateway, "ENRICHMENT_FAILED", "Failed to refresh movie ratings")
		return
	}
	s.respondJSON(w, http.StatusOK, toEnrichedListResponse(enriched))
}

func (s *Server) handleSortedMovies(w http.ResponseWriter, r *http.Request) {
	metric, err := metricParam(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	enriched, err := s.enricher.SortByRating(r.Context(), metric)
	if err != nil {
		s.logger.Printf("sorted movies error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sort movies")
		return
	}
	s.respondJSON(w, http.StatusOK, toEnrichedListResponse(enriched))
}

func (s *Server) handleTopMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	scope, err := domain.ParseRankScope(strings.TrimSpace(query.Get("scope")))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "scope must be one of top250, top100, both")
		return
	}
	metric, err := metricParam(query)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	enriched, err := s.enricher.FilterByRank(r.Context(), scope, metric)
	if err != nil {
		s.logger.Printf("top movies error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to filter movies")
		return
	}
	s.respondJSON(w, http.StatusOK, toEnrichedListResponse(enriched))
}

// metricParam reads the "by" query parameter, defaulting to IMDB ordering.
func metricParam(query url.Values) (domain.RatingMetric, error) {
	raw := strings.TrimSpace(query.Get("by"))
	if raw == "" {
		return domain.MetricIMDB, nil
	}
	metric, err := domain.ParseRatingMetric(raw)
	if err != nil {
		return "", fmt.Errorf("by must be IMDB or RT")
	}
	return metric, nil
}

func decodeIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id parameter")
	}
	return id, nil
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

func (s *Server) verifyBearer(header string) bool {
	if header == "" {
		return false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token == s.cfg.AuthToken
}

func toMovieResponse(movie domain.Movie) movieResponse {
	resp := movieResponse{
		ID:          movie.ID,
		Title:       movie.Title,
		ReleaseYear: movie.ReleaseYear,
	}
	if movie.LastUpdated != nil {
		formatted := movie.LastUpdated.Format("2006-01-02")
		resp.LastUpdated = &formatted
	}
	return resp
}

func toMovieListResponse(movies []domain.Movie) movieListResponse {
	items := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, toMovieResponse(movie))
	}
	return movieListResponse{Items: items}
}

func toEnrichedResponse(enriched domain.EnrichedMovie) enrichedMovieResponse {
	return enrichedMovieResponse{
		ID:          enriched.ID,
		Title:       enriched.Title,
		ReleaseYear: enriched.ReleaseYear,
		IMDBScore:   enriched.Rating.IMDBScore,
		IMDBVotes:   enriched.Rating.IMDBVotes,
		RTScore:     enriched.Rating.RTScore,
		InTop250:    enriched.Rating.InTop250,
		InTop100:    enriched.Rating.InTop100,
	}
}

func toEnrichedListResponse(enriched []domain.EnrichedMovie) enrichedListResponse {
	items := make([]enrichedMovieResponse, 0, len(enriched))
	for _, movie := range enriched {
		items = append(items, toEnrichedResponse(movie))
	}
	return enrichedListResponse{Items: items}
}
