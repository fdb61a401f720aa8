package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Genre is a named album category.
type Genre struct {
	ID   int
	Name string
}

// Album groups songs under an artist and genre.
type Album struct {
	ID          int
	Title       string
	Artist      string
	ReleaseYear int
	GenreID     int
	AlbumCover  string
	CreatedAt   time.Time
}

// Song belongs to exactly one album; SongFile is the hosted media URL.
type Song struct {
	ID        int
	AlbumID   int
	Title     string
	SongFile  string
	CreatedAt time.Time
}

// AddGenre inserts a genre and returns its id.
func (s *Store) AddGenre(ctx context.Context, name string) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("genre name is required: %w", ErrInvalid)
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	result, err := s.conn.ExecContext(ctx, "INSERT INTO genres (name) VALUES (?)", name)
	if err != nil {
		s.logger.WithError(err).WithField("name", name).Error("Failed to insert genre")
		return 0, fmt.Errorf("failed to insert genre: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get genre insert ID: %w", err)
	}
	return int(id), nil
}

// AllGenres returns every genre ordered by name.
func (s *Store) AllGenres(ctx context.Context) ([]Genre, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, "SELECT id, name FROM genres ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	var genres []Genre
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// DeleteGenreByID removes a genre. A genre still referenced by albums
// cannot be deleted and fails with ErrConflict.
func (s *Store) DeleteGenreByID(ctx context.Context, id int) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var inUse int
	if err := s.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM albums WHERE genre_id = ?", id).Scan(&inUse); err != nil {
		return fmt.Errorf("failed to check genre references: %w", err)
	}
	if inUse > 0 {
		return fmt.Errorf("genre %d referenced by %d albums: %w", id, inUse, ErrConflict)
	}

	result, err := s.conn.ExecContext(ctx, "DELETE FROM genres WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete genre %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for genre delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("genre %d: %w", id, ErrNotFound)
	}
	return nil
}

// AddAlbum inserts an album and returns its id. Empty text fields become
// NULL; the cover URL is stored verbatim.
func (s *Store) AddAlbum(ctx context.Context, album Album) (int, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	result, err := s.conn.ExecContext(ctx, `
		INSERT INTO albums (title, artist, release_year, genre_id, album_cover)
		VALUES (?, ?, ?, ?, ?)`,
		nullIfEmpty(album.Title), nullIfEmpty(album.Artist),
		nullIfZero(album.ReleaseYear), nullIfZero(album.GenreID), album.AlbumCover)
	if err != nil {
		s.logger.WithError(err).Error("Failed to insert album")
		return 0, fmt.Errorf("failed to insert album: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get album insert ID: %w", err)
	}
	return int(id), nil
}

// AllAlbums returns every album. Listing handlers order by date themselves.
func (s *Store) AllAlbums(ctx context.Context) ([]Album, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, title, artist, release_year, genre_id, album_cover, created_at
		FROM albums`)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()
	return scanAlbumRows(rows)
}

// AlbumsByGenre returns the albums of a single genre.
func (s *Store) AlbumsByGenre(ctx context.Context, genreID int) ([]Album, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, title, artist, release_year, genre_id, album_cover, created_at
		FROM albums WHERE genre_id = ?`, genreID)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums for genre %d: %w", genreID, err)
	}
	defer rows.Close()
	return scanAlbumRows(rows)
}

// AlbumByID returns a single album, or ErrNotFound.
func (s *Store) AlbumByID(ctx context.Context, id int) (*Album, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.conn.QueryRowContext(ctx, `
		SELECT id, title, artist, release_year, genre_id, album_cover, created_at
		FROM albums WHERE id = ?`, id)

	album, err := scanAlbumRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("album %d: %w", id, ErrNotFound)
	}
	if err != nil {
		s.logger.WithError(err).WithField("album_id", id).Error("Failed to get album")
		return nil, fmt.Errorf("failed to get album %d: %w", id, err)
	}
	return album, nil
}

// DeleteAlbumByID removes an album and, through the schema's CASCADE rule,
// its songs.
func (s *Store) DeleteAlbumByID(ctx context.Context, id int) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	result, err := s.conn.ExecContext(ctx, "DELETE FROM albums WHERE id = ?", id)
	if err != nil {
		s.logger.WithError(err).WithField("album_id", id).Error("Failed to delete album")
		return fmt.Errorf("failed to delete album %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for album delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("album %d: %w", id, ErrNotFound)
	}
	return nil
}

// AddSong inserts a song and returns the id of the album it belongs to,
// which is what the redirect after creation needs. The target album must
// exist.
func (s *Store) AddSong(ctx context.Context, song Song) (int, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if song.AlbumID <= 0 {
		return 0, fmt.Errorf("song requires an album: %w", ErrInvalid)
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO songs (album_id, title, song_file)
		VALUES (?, ?, ?)`,
		song.AlbumID, nullIfEmpty(song.Title), song.SongFile)
	if err != nil {
		s.logger.WithError(err).WithField("album_id", song.AlbumID).Error("Failed to insert song")
		return 0, fmt.Errorf("failed to insert song: %w", err)
	}
	return song.AlbumID, nil
}

// AllSongs returns every song.
func (s *Store) AllSongs(ctx context.Context) ([]Song, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, album_id, title, song_file, created_at FROM songs`)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()
	return scanSongRows(rows)
}

// SongsByAlbum returns the songs of one album.
func (s *Store) SongsByAlbum(ctx context.Context, albumID int) ([]Song, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, album_id, title, song_file, created_at
		FROM songs WHERE album_id = ?`, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs for album %d: %w", albumID, err)
	}
	defer rows.Close()
	return scanSongRows(rows)
}

// DeleteSongByID removes a song and returns the album id it belonged to so
// the caller can redirect back to the album's song list.
func (s *Store) DeleteSongByID(ctx context.Context, id int) (int, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var albumID int
	err := s.conn.QueryRowContext(ctx,
		"SELECT album_id FROM songs WHERE id = ?", id).Scan(&albumID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up song %d: %w", id, err)
	}

	if _, err := s.conn.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", id); err != nil {
		s.logger.WithError(err).WithField("song_id", id).Error("Failed to delete song")
		return 0, fmt.Errorf("failed to delete song %d: %w", id, err)
	}
	return albumID, nil
}

func scanAlbumRows(rows *sql.Rows) ([]Album, error) {
	var albums []Album
	for rows.Next() {
		album, err := scanAlbumRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		albums = append(albums, *album)
	}
	return albums, rows.Err()
}

func scanAlbumRow(scan func(dest ...any) error) (*Album, error) {
	var album Album
	var title, artist, cover sql.NullString
	var year, genreID sql.NullInt64
	if err := scan(&album.ID, &title, &artist, &year, &genreID, &cover, &album.CreatedAt); err != nil {
		return nil, err
	}
	album.Title = title.String
	album.Artist = artist.String
	album.ReleaseYear = int(year.Int64)
	album.GenreID = int(genreID.Int64)
	album.AlbumCover = cover.String
	return &album, nil
}

func scanSongRows(rows *sql.Rows) ([]Song, error) {
	var songs []Song
	for rows.Next() {
		var song Song
		var title, file sql.NullString
		if err := rows.Scan(&song.ID, &song.AlbumID, &title, &file, &song.CreatedAt); err != nil {
			return nil, err
		}
		song.Title = title.String
		song.SongFile = file.String
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// nullIfZero normalizes unset numeric form fields to NULL.
func nullIfZero(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
