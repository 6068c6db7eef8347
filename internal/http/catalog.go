package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/lhollands/mediaserver/internal/domain"
	"github.com/lhollands/mediaserver/internal/repository"
)

type songResponse struct {
	ID      int     `json:"id"`
	Title   string  `json:"title"`
	Artists *string `json:"artists,omitempty"`
	Length  *int    `json:"length,omitempty"`
}

type artistResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	SongCount int64  `json:"songCount"`
}

type albumResponse struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	SongCount int64   `json:"songCount"`
	Artists   *string `json:"artists,omitempty"`
}

type tvShowResponse struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	EpisodeCount int64  `json:"episodeCount"`
}

type tvEpisodeResponse struct {
	MediaID int     `json:"mediaId"`
	Title   string  `json:"title"`
	Season  int     `json:"season"`
	Episode int     `json:"episode"`
	AirDate *string `json:"airDate,omitempty"`
}

type podcastResponse struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	URI          *string `json:"uri,omitempty"`
	EpisodeCount int64   `json:"episodeCount"`
}

type podcastEpisodeResponse struct {
	MediaID   int        `json:"mediaId"`
	Title     string     `json:"title"`
	URI       *string    `json:"uri,omitempty"`
	Published *time.Time `json:"published,omitempty"`
	Length    *int       `json:"length,omitempty"`
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.repo.Catalog.ListSongs(r.Context())
	if err != nil {
		s.logger.Printf("list songs error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list songs")
		return
	}
	items := make([]songResponse, 0, len(songs))
	for _, song := range songs {
		items = append(items, toSongResponse(song))
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	song, err := s.repo.Catalog.GetSong(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("get song %d error: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch song")
		return
	}
	s.respondJSON(w, http.StatusOK, toSongResponse(song))
}

func (s *Server) handleListArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := s.repo.Catalog.ListArtists(r.Context())
	if err != nil {
		s.logger.Printf("list artists error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list artists")
		return
	}
	items := make([]artistResponse, 0, len(artists))
	for _, artist := range artists {
		items = append(items, artistResponse{ID: artist.ID, Name: artist.Name, SongCount: artist.SongCount})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.repo.Catalog.ListAlbums(r.Context())
	if err != nil {
		s.logger.Printf("list albums error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list albums")
		return
	}
	items := make([]albumResponse, 0, len(albums))
	for _, album := range albums {
		items = append(items, albumResponse{ID: album.ID, Title: album.Title, SongCount: album.SongCount, Artists: album.Artists})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleAlbumSongs(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	songs, err := s.repo.Catalog.AlbumSongs(r.Context(), id)
	if err != nil {
		s.logger.Printf("album songs %d error: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch album songs")
		return
	}
	items := make([]songResponse, 0, len(songs))
	for _, song := range songs {
		items = append(items, toSongResponse(song))
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleAlbumGenres(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	genres, err := s.repo.Catalog.AlbumGenres(r.Context(), id)
	if err != nil {
		s.logger.Printf("album genres %d error: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch album genres")
		return
	}
	if genres == nil {
		genres = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"genres": genres})
}

func (s *Server) handleListTVShows(w http.ResponseWriter, r *http.Request) {
	shows, err := s.repo.Catalog.ListTVShows(r.Context())
	if err != nil {
		s.logger.Printf("list tvshows error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list tv shows")
		return
	}
	items := make([]tvShowResponse, 0, len(shows))
	for _, show := range shows {
		items = append(items, tvShowResponse{ID: show.ID, Title: show.Title, EpisodeCount: show.EpisodeCount})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleTVShowEpisodes(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	episodes, err := s.repo.Catalog.TVShowEpisodes(r.Context(), id)
	if err != nil {
		s.logger.Printf("tvshow episodes %d error: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch episodes")
		return
	}
	items := make([]tvEpisodeResponse, 0, len(episodes))
	for _, ep := range episodes {
		items = append(items, toTVEpisodeResponse(ep))
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleListPodcasts(w http.ResponseWriter, r *http.Request) {
	podcasts, err := s.repo.Catalog.ListPodcasts(r.Context())
	if err != nil {
		s.logger.Printf("list podcasts error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list podcasts")
		return
	}
	items := make([]podcastResponse, 0, len(podcasts))
	for _, podcast := range podcasts {
		items = append(items, podcastResponse{ID: podcast.ID, Title: podcast.Title, URI: podcast.URI, EpisodeCount: podcast.EpisodeCount})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handlePodcastEpisodes(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	episodes, err := s.repo.Catalog.PodcastEpisodes(r.Context(), id)
	if err != nil {
		s.logger.Printf("podcast episodes %d error: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch episodes")
		return
	}
	items := make([]podcastEpisodeResponse, 0, len(episodes))
	for _, ep := range episodes {
		items = append(items, podcastEpisodeResponse{MediaID: ep.MediaID, Title: ep.Title, URI: ep.URI, Published: ep.Published, Length: ep.Length})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func toSongResponse(song domain.Song) songResponse {
	return songResponse{ID: song.ID, Title: song.Title, Artists: song.Artists, Length: song.Length}
}

func toTVEpisodeResponse(ep domain.TVEpisode) tvEpisodeResponse {
	resp := tvEpisodeResponse{
		MediaID: ep.MediaID,
		Title:   ep.Title,
		Season:  ep.Season,
		Episode: ep.Episode,
	}
	if ep.AirDate != nil {
		formatted := ep.AirDate.Format("2006-01-02")
		resp.AirDate = &formatted
	}
	return resp
}
