package server

import (
	"errors"
	"net/http"

	"yourtune/internal/store"
)

// handleGenreList shows every genre with delete links for signed-in users.
func (s *Server) handleGenreList(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if genres, err := s.store.AllGenres(r.Context()); err == nil && len(genres) > 0 {
		data["Genres"] = genres
	} else {
		if err != nil {
			s.logger.WithError(err).Error("Failed to list genres")
		}
		data["Message"] = noResults
	}
	s.render(w, r, "genres.html", data)
}

func (s *Server) handleGenreForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "genre_form.html", nil)
}

// handleGenreAdd creates a genre from the form and returns to the list.
func (s *Server) handleGenreAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderFormError(w, r, "genre_form.html", "invalid form submission")
		return
	}

	name := sanitizeInput(r.FormValue("name"))
	if _, err := s.store.AddGenre(r.Context(), name); err != nil {
		if errors.Is(err, store.ErrInvalid) {
			s.renderFormError(w, r, "genre_form.html", "genre name is required")
			return
		}
		s.logger.WithError(err).Error("Failed to create genre")
		http.Error(w, "Unable to Add Genre", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/genres", http.StatusSeeOther)
}

// handleGenreDelete removes a genre. Genres still referenced by albums
// stay put and the request fails.
func (s *Server) handleGenreDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		http.Error(w, "ERROR - GENRE DELETE FAILURE", http.StatusInternalServerError)
		return
	}

	if err := s.store.DeleteGenreByID(r.Context(), id); err != nil {
		s.logger.WithError(err).WithField("genre_id", id).Error("Failed to delete genre")
		http.Error(w, "ERROR - GENRE DELETE FAILURE", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/genres", http.StatusSeeOther)
}
