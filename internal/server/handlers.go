package server

import (
	"errors"
	"net/http"
	"sort"

	"yourtune/internal/mediahost"
	"yourtune/internal/store"
)

var errUploadsDisabled = errors.New("media uploads are not configured")

// noResults is the placeholder handed to views when a fetch fails; pages
// degrade section by section instead of erroring out.
const noResults = "no results"

// render assembles the final view-data object and executes the page. The
// current path and session identity are passed in explicitly; nothing
// route-related lives in shared state.
func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["ActivePath"] = r.URL.Path
	if user, ok := s.sessions.FromRequest(r); ok {
		data["User"] = user
	}

	if err := s.renderer.Render(w, page, data); err != nil {
		s.logger.WithError(err).WithField("page", page).Error("Render failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// uploadOrEmpty runs the upload-then-create sequence's first step: no file
// means the bridge is skipped and the URL is empty; an upload failure is
// returned so the caller can abort the dependent create.
func (s *Server) uploadOrEmpty(r *http.Request, field string, kind mediahost.Kind) (string, error) {
	data, filename, err := formFile(r, field)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", nil
	}
	if s.uploads == nil {
		return "", errUploadsDisabled
	}
	return s.uploads.Upload(r.Context(), data, filename, kind)
}

// sortNewsByDateDesc orders posts newest first. The gateway guarantees no
// order, so every listing sorts after fetch.
func sortNewsByDateDesc(posts []store.NewsPost) {
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].NewsDate.After(posts[j].NewsDate)
	})
}

func sortAlbumsByDateDesc(albums []store.Album) {
	sort.Slice(albums, func(i, j int) bool {
		return albums[i].CreatedAt.After(albums[j].CreatedAt)
	})
}

func sortSongsByDateDesc(songs []store.Song) {
	sort.Slice(songs, func(i, j int) bool {
		return songs[i].CreatedAt.After(songs[j].CreatedAt)
	})
}

// handleHome renders the landing page: latest news, the genre list and a
// handful of highlighted albums and podcasts. Each section fails
// independently into its placeholder.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	limit := s.cfg.Site.HighlightCount

	if news, err := s.store.AllNews(r.Context()); err == nil && len(news) > 0 {
		sortNewsByDateDesc(news)
		data["AllNews"] = news
	} else {
		data["Message"] = noResults
	}

	if genres, err := s.store.AllGenres(r.Context()); err == nil && len(genres) > 0 {
		data["Genres"] = genres
	} else {
		data["GenresMessage"] = noResults
	}

	if albums, err := s.store.AllAlbums(r.Context()); err == nil {
		sortAlbumsByDateDesc(albums)
		data["Albums"] = firstAlbums(albums, limit)
	}

	if podcasts, err := s.store.AlbumsByGenre(r.Context(), s.cfg.Site.PodcastGenreID); err == nil {
		sortAlbumsByDateDesc(podcasts)
		data["Podcasts"] = firstAlbums(podcasts, limit)
	}

	s.render(w, r, "home.html", data)
}

func firstAlbums(albums []store.Album, n int) []store.Album {
	if n > 0 && len(albums) > n {
		return albums[:n]
	}
	return albums
}

// handleNotFound renders the 404 page for any unmatched path.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	s.render(w, r, "404.html", nil)
}
