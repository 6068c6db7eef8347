package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lhollands/mediaserver/internal/domain"
)

// CatalogRepository serves the non-movie browsing queries: songs, albums,
// artists, TV shows, and podcasts.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// ListSongs returns every song with its performing artists aggregated.
func (r *CatalogRepository) ListSongs(ctx context.Context) ([]domain.Song, error) {
	const query = `
        SELECT s.song_id, s.song_title, string_agg(a.artist_name, ',') AS artists, s.length
        FROM mediaserver.song s
            LEFT OUTER JOIN mediaserver.song_artists sa ON (s.song_id = sa.song_id)
            LEFT OUTER JOIN mediaserver.artist a ON (sa.performing_artist_id = a.artist_id)
        GROUP BY s.song_id, s.song_title, s.length
        ORDER BY s.song_id
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	var results []domain.Song
	for rows.Next() {
		var song domain.Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Artists, &song.Length); err != nil {
			return nil, err
		}
		results = append(results, song)
	}
	return results, rows.Err()
}

// GetSong fetches one song with its artists.
func (r *CatalogRepository) GetSong(ctx context.Context, id int) (domain.Song, error) {
	const query = `
        SELECT s.song_id, s.song_title, string_agg(a.artist_name, ', ') AS artists, s.length
        FROM mediaserver.song s
            LEFT OUTER JOIN mediaserver.song_artists sa ON (s.song_id = sa.song_id)
            LEFT OUTER JOIN mediaserver.artist a ON (sa.performing_artist_id = a.artist_id)
        WHERE s.song_id = $1
        GROUP BY s.song_id, s.song_title, s.length
    `
	var song domain.Song
	err := r.pool.QueryRow(ctx, query, id).Scan(&song.ID, &song.Title, &song.Artists, &song.Length)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Song{}, ErrNotFound
		}
		return domain.Song{}, err
	}
	return song, nil
}

// ListArtists returns every artist with the number of songs they perform on.
func (r *CatalogRepository) ListArtists(ctx context.Context) ([]domain.Artist, error) {
	const query = `
        SELECT a.artist_id, a.artist_name, count(sa.song_id) AS count
        FROM mediaserver.artist a
            LEFT OUTER JOIN mediaserver.song_artists sa ON (a.artist_id = sa.performing_artist_id)
        GROUP BY a.artist_id, a.artist_name
        ORDER BY a.artist_name
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer rows.Close()

	var results []domain.Artist
	for rows.Next() {
		var artist domain.Artist
		if err := rows.Scan(&artist.ID, &artist.Name, &artist.SongCount); err != nil {
			return nil, err
		}
		results = append(results, artist)
	}
	return results, rows.Err()
}

// ListAlbums returns every album with song counts and contributing artists.
func (r *CatalogRepository) ListAlbums(ctx context.Context) ([]domain.Album, error) {
	const query = `
        SELECT al.album_id, al.album_title, count(DISTINCT als.song_id) AS count,
               string_agg(DISTINCT a.artist_name, ',') AS artists
        FROM mediaserver.album al
            LEFT OUTER JOIN mediaserver.album_songs als ON (al.album_id = als.album_id)
            LEFT OUTER JOIN mediaserver.song_artists sa ON (als.song_id = sa.song_id)
            LEFT OUTER JOIN mediaserver.artist a ON (sa.performing_artist_id = a.artist_id)
        GROUP BY al.album_id, al.album_title
        ORDER BY al.album_id
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var results []domain.Album
	for rows.Next() {
		var album domain.Album
		if err := rows.Scan(&album.ID, &album.Title, &album.SongCount, &album.Artists); err != nil {
			return nil, err
		}
		results = append(results, album)
	}
	return results, rows.Err()
}

// AlbumSongs returns the songs of one album in track order.
func (r *CatalogRepository) AlbumSongs(ctx context.Context, albumID int) ([]domain.Song, error) {
	const query = `
        SELECT s.song_id, s.song_title, string_agg(a.artist_name, ', ') AS artists, s.length
        FROM mediaserver.album_songs als
            JOIN mediaserver.song s USING (song_id)
            LEFT OUTER JOIN mediaserver.song_artists sa ON (s.song_id = sa.song_id)
            LEFT OUTER JOIN mediaserver.artist a ON (sa.performing_artist_id = a.artist_id)
        WHERE als.album_id = $1
        GROUP BY s.song_id, s.song_title, s.length, als.track_num
        ORDER BY als.track_num
    `
	rows, err := r.pool.Query(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("album songs: %w", err)
	}
	defer rows.Close()

	var results []domain.Song
	for rows.Next() {
		var song domain.Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Artists, &song.Length); err != nil {
			return nil, err
		}
		results = append(results, song)
	}
	return results, rows.Err()
}

// AlbumGenres returns the distinct genres of the songs on one album.
func (r *CatalogRepository) AlbumGenres(ctx context.Context, albumID int) ([]string, error) {
	const query = `
        SELECT DISTINCT s.genre
        FROM mediaserver.album_songs als
            JOIN mediaserver.song s USING (song_id)
        WHERE als.album_id = $1 AND s.genre IS NOT NULL
        ORDER BY s.genre
    `
	rows, err := r.pool.Query(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("album genres: %w", err)
	}
	defer rows.Close()

	var genres []string
	for rows.Next() {
		var genre string
		if err := rows.Scan(&genre); err != nil {
			return nil, err
		}
		genres = append(genres, genre)
	}
	return genres, rows.Err()
}

// ListTVShows returns every TV show with its episode count.
func (r *CatalogRepository) ListTVShows(ctx context.Context) ([]domain.TVShow, error) {
	const query = `
        SELECT t.tvshow_id, t.tvshow_title, count(e.media_id) AS count
        FROM mediaserver.tvshow t
            LEFT OUTER JOIN mediaserver.tvepisode e ON (t.tvshow_id = e.tvshow_id)
        GROUP BY t.tvshow_id, t.tvshow_title
        ORDER BY t.tvshow_id
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tvshows: %w", err)
	}
	defer rows.Close()

	var results []domain.TVShow
	for rows.Next() {
		var show domain.TVShow
		if err := rows.Scan(&show.ID, &show.Title, &show.EpisodeCount); err != nil {
			return nil, err
		}
		results = append(results, show)
	}
	return results, rows.Err()
}

// TVShowEpisodes returns one show's episodes ordered by season and episode.
func (r *CatalogRepository) TVShowEpisodes(ctx context.Context, tvshowID int) ([]domain.TVEpisode, error) {
	const query = `
        SELECT media_id, tvshow_episode_title, season, episode, air_date
        FROM mediaserver.tvepisode
        WHERE tvshow_id = $1
        ORDER BY season, episode
    `
	rows, err := r.pool.Query(ctx, query, tvshowID)
	if err != nil {
		return nil, fmt.Errorf("tvshow episodes: %w", err)
	}
	defer rows.Close()

	var results []domain.TVEpisode
	for rows.Next() {
		var ep domain.TVEpisode
		if err := rows.Scan(&ep.MediaID, &ep.Title, &ep.Season, &ep.Episode, &ep.AirDate); err != nil {
			return nil, err
		}
		results = append(results, ep)
	}
	return results, rows.Err()
}

// ListPodcasts returns every podcast with its episode count.
func (r *CatalogRepository) ListPodcasts(ctx context.Context) ([]domain.Podcast, error) {
	const query = `
        SELECT p.podcast_id, p.podcast_title, p.podcast_uri, count(e.media_id) AS count
        FROM mediaserver.podcast p
            LEFT OUTER JOIN mediaserver.podcastepisode e ON (p.podcast_id = e.podcast_id)
        GROUP BY p.podcast_id, p.podcast_title, p.podcast_uri
        ORDER BY p.podcast_id
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list podcasts: %w", err)
	}
	defer rows.Close()

	var results []domain.Podcast
	for rows.Next() {
		var podcast domain.Podcast
		if err := rows.Scan(&podcast.ID, &podcast.Title, &podcast.URI, &podcast.EpisodeCount); err != nil {
			return nil, err
		}
		results = append(results, podcast)
	}
	return results, rows.Err()
}

// PodcastEpisodes returns one podcast's episodes, newest first.
func (r *CatalogRepository) PodcastEpisodes(ctx context.Context, podcastID int) ([]domain.PodcastEpisode, error) {
	const query = `
        SELECT media_id, podcast_id, podcast_episode_title, podcast_episode_uri,
               podcast_episode_published_date, podcast_episode_length
        FROM mediaserver.podcastepisode
        WHERE podcast_id = $1
        ORDER BY podcast_episode_published_date DESC NULLS LAST, media_id
    `
	rows, err := r.pool.Query(ctx, query, podcastID)
	if err != nil {
		return nil, fmt.Errorf("podcast episodes: %w", err)
	}
	defer rows.Close()

	var results []domain.PodcastEpisode
	for rows.Next() {
		var ep domain.PodcastEpisode
		if err := rows.Scan(&ep.MediaID, &ep.PodcastID, &ep.Title, &ep.URI, &ep.Published, &ep.Length); err != nil {
			return nil, err
		}
		results = append(results, ep)
	}
	return results, rows.Err()
}
