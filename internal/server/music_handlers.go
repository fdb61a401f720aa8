package server

import (
	"errors"
	"net/http"
	"strconv"

	"yourtune/internal/mediahost"
	"yourtune/internal/store"
)

// handleAlbumList shows all albums newest first, optionally narrowed to a
// single genre via the ?genre= query parameter.
func (s *Server) handleAlbumList(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}

	var albums []store.Album
	var err error
	if raw := r.URL.Query().Get("genre"); raw != "" {
		genreID, convErr := strconv.Atoi(raw)
		if convErr != nil || genreID <= 0 {
			data["Message"] = noResults
			s.render(w, r, "albums.html", data)
			return
		}
		data["GenreFilter"] = genreID
		albums, err = s.store.AlbumsByGenre(r.Context(), genreID)
	} else {
		albums, err = s.store.AllAlbums(r.Context())
	}

	if err != nil || len(albums) == 0 {
		if err != nil {
			s.logger.WithError(err).Error("Failed to list albums")
		}
		data["Message"] = noResults
	} else {
		sortAlbumsByDateDesc(albums)
		data["Albums"] = albums
	}
	s.render(w, r, "albums.html", data)
}

// handlePodcasts is the album listing restricted to the podcast genre.
func (s *Server) handlePodcasts(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	albums, err := s.store.AlbumsByGenre(r.Context(), s.cfg.Site.PodcastGenreID)
	if err != nil || len(albums) == 0 {
		if err != nil {
			s.logger.WithError(err).Error("Failed to list podcasts")
		}
		data["Message"] = noResults
	} else {
		sortAlbumsByDateDesc(albums)
		data["Albums"] = albums
	}
	s.render(w, r, "podcasts.html", data)
}

// handleAlbumForm shows the create form with the genre list for the
// dropdown. No genres yet is not an error, the select just comes up empty.
func (s *Server) handleAlbumForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if genres, err := s.store.AllGenres(r.Context()); err == nil {
		data["Genres"] = genres
	}
	s.render(w, r, "album_form.html", data)
}

// handleAlbumAdd uploads the optional cover first, then creates the album.
func (s *Server) handleAlbumAdd(w http.ResponseWriter, r *http.Request) {
	if err := parseUploadForm(r); err != nil {
		s.renderAlbumFormError(w, r, "invalid form submission")
		return
	}

	coverURL, err := s.uploadOrEmpty(r, "albumCover", mediahost.KindImage)
	if err != nil {
		s.logger.WithError(err).Error("Album cover upload failed")
		s.renderAlbumFormError(w, r, "cover upload failed, album was not created")
		return
	}

	album := store.Album{
		Title:       sanitizeInput(r.FormValue("title")),
		Artist:      sanitizeInput(r.FormValue("artist")),
		ReleaseYear: atoiOrZero(r.FormValue("releaseYear")),
		GenreID:     atoiOrZero(r.FormValue("genre")),
		AlbumCover:  coverURL,
	}
	if _, err := s.store.AddAlbum(r.Context(), album); err != nil {
		s.logger.WithError(err).Error("Failed to create album")
		s.renderAlbumFormError(w, r, "unable to create album")
		return
	}

	http.Redirect(w, r, "/albums", http.StatusSeeOther)
}

func (s *Server) renderAlbumFormError(w http.ResponseWriter, r *http.Request, message string) {
	data := map[string]any{"ErrorMessage": message}
	if genres, err := s.store.AllGenres(r.Context()); err == nil {
		data["Genres"] = genres
	}
	s.render(w, r, "album_form.html", data)
}

// handleAlbumManage lists albums with delete links.
func (s *Server) handleAlbumManage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if albums, err := s.store.AllAlbums(r.Context()); err == nil && len(albums) > 0 {
		sortAlbumsByDateDesc(albums)
		data["Albums"] = albums
	} else {
		data["Message"] = noResults
	}
	s.render(w, r, "update_albums.html", data)
}

// handleAlbumByID shows one album together with its songs.
func (s *Server) handleAlbumByID(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}

	data := map[string]any{}
	album, err := s.store.AlbumByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.WithError(err).WithField("album_id", id).Error("Failed to get album")
		}
		data["Message"] = noResults
	} else {
		data["Album"] = album
	}

	if songs, err := s.store.SongsByAlbum(r.Context(), id); err == nil && len(songs) > 0 {
		sortSongsByDateDesc(songs)
		data["Songs"] = songs
	} else {
		data["SongsMessage"] = noResults
	}

	s.render(w, r, "album.html", data)
}

// handleAlbumDelete removes an album and its songs.
func (s *Server) handleAlbumDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		http.Error(w, "ERROR - ALBUM DELETE FAILURE", http.StatusInternalServerError)
		return
	}

	if err := s.store.DeleteAlbumByID(r.Context(), id); err != nil {
		s.logger.WithError(err).WithField("album_id", id).Error("Failed to delete album")
		http.Error(w, "ERROR - ALBUM DELETE FAILURE", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/albums", http.StatusSeeOther)
}

// handleSongForm shows the create form with the album list for the
// dropdown.
func (s *Server) handleSongForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if albums, err := s.store.AllAlbums(r.Context()); err == nil {
		sortAlbumsByDateDesc(albums)
		data["Albums"] = albums
	}
	s.render(w, r, "song_form.html", data)
}

// handleSongAdd uploads the media file first, then creates the song and
// redirects to the owning album's song list.
func (s *Server) handleSongAdd(w http.ResponseWriter, r *http.Request) {
	if err := parseUploadForm(r); err != nil {
		s.renderSongFormError(w, r, "invalid form submission")
		return
	}

	fileURL, err := s.uploadOrEmpty(r, "songFile", mediahost.KindMedia)
	if err != nil {
		s.logger.WithError(err).Error("Song upload failed")
		s.renderSongFormError(w, r, "song upload failed, song was not created")
		return
	}

	song := store.Song{
		AlbumID:  atoiOrZero(r.FormValue("album")),
		Title:    sanitizeInput(r.FormValue("title")),
		SongFile: fileURL,
	}
	albumID, err := s.store.AddSong(r.Context(), song)
	if err != nil {
		s.logger.WithError(err).Error("Failed to create song")
		s.renderSongFormError(w, r, "unable to create song")
		return
	}

	http.Redirect(w, r, "/songs/"+strconv.Itoa(albumID), http.StatusSeeOther)
}

func (s *Server) renderSongFormError(w http.ResponseWriter, r *http.Request, message string) {
	data := map[string]any{"ErrorMessage": message}
	if albums, err := s.store.AllAlbums(r.Context()); err == nil {
		sortAlbumsByDateDesc(albums)
		data["Albums"] = albums
	}
	s.render(w, r, "song_form.html", data)
}

// handleSongManage lists all songs with delete links.
func (s *Server) handleSongManage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if songs, err := s.store.AllSongs(r.Context()); err == nil && len(songs) > 0 {
		sortSongsByDateDesc(songs)
		data["Songs"] = songs
	} else {
		data["Message"] = noResults
	}
	s.render(w, r, "update_songs.html", data)
}

// handleSongsByAlbum shows the songs of one album. The song list and the
// album header degrade independently.
func (s *Server) handleSongsByAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}

	data := map[string]any{}
	if songs, err := s.store.SongsByAlbum(r.Context(), id); err == nil && len(songs) > 0 {
		sortSongsByDateDesc(songs)
		data["Songs"] = songs
	} else {
		data["Message"] = noResults
	}

	if album, err := s.store.AlbumByID(r.Context(), id); err == nil {
		data["Album"] = album
	} else {
		data["AlbumMessage"] = noResults
	}

	s.render(w, r, "songs.html", data)
}

// handleSongDelete removes a song and returns to its album's song list.
func (s *Server) handleSongDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		http.Error(w, "ERROR - SONG DELETE FAILURE", http.StatusInternalServerError)
		return
	}

	albumID, err := s.store.DeleteSongByID(r.Context(), id)
	if err != nil {
		s.logger.WithError(err).WithField("song_id", id).Error("Failed to delete song")
		http.Error(w, "ERROR - SONG DELETE FAILURE", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/songs/"+strconv.Itoa(albumID), http.StatusSeeOther)
}
