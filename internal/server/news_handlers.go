package server

import (
	"errors"
	"net/http"
	"strconv"

	"yourtune/internal/mediahost"
	"yourtune/internal/store"
)

// handleNewsList shows every news post, newest first.
func (s *Server) handleNewsList(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if news, err := s.store.AllNews(r.Context()); err == nil && len(news) > 0 {
		sortNewsByDateDesc(news)
		data["AllNews"] = news
	} else {
		if err != nil {
			s.logger.WithError(err).Error("Failed to list news")
		}
		data["Message"] = noResults
	}
	s.render(w, r, "news.html", data)
}

// handleNewsForm shows the empty create form.
func (s *Server) handleNewsForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "add_news.html", nil)
}

// handleNewsAdd uploads the optional feature image first, then creates the
// post. A failed upload aborts the whole operation so a post never ends up
// pointing at media that was never stored.
func (s *Server) handleNewsAdd(w http.ResponseWriter, r *http.Request) {
	if err := parseUploadForm(r); err != nil {
		s.renderFormError(w, r, "add_news.html", "invalid form submission")
		return
	}

	imageURL, err := s.uploadOrEmpty(r, "featureImage", mediahost.KindImage)
	if err != nil {
		s.logger.WithError(err).Error("Feature image upload failed")
		s.renderFormError(w, r, "add_news.html", "image upload failed, post was not created")
		return
	}

	post := store.NewsPost{
		Title:        sanitizeInput(r.FormValue("newsTitle")),
		Brief:        sanitizeInput(r.FormValue("newsBrief")),
		Body:         sanitizeInput(r.FormValue("newsBody")),
		FeatureImage: imageURL,
	}
	if _, err := s.store.AddNews(r.Context(), post); err != nil {
		s.logger.WithError(err).Error("Failed to create news post")
		s.renderFormError(w, r, "add_news.html", "unable to create news post")
		return
	}

	http.Redirect(w, r, "/news", http.StatusSeeOther)
}

// handleNewsByID shows a single post alongside the full list. An unknown
// or malformed id degrades to the placeholder instead of erroring.
func (s *Server) handleNewsByID(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}

	if id, err := parsePathID(r); err != nil {
		data["Message"] = noResults
	} else if post, err := s.store.NewsByID(r.Context(), id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.WithError(err).WithField("news_id", id).Error("Failed to get news post")
		}
		data["Message"] = noResults
	} else {
		data["Post"] = post
	}

	if news, err := s.store.AllNews(r.Context()); err == nil && len(news) > 0 {
		sortNewsByDateDesc(news)
		data["AllNews"] = news
	}

	s.render(w, r, "news_post.html", data)
}

// handleNewsManage lists posts with delete links for signed-in users.
func (s *Server) handleNewsManage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if news, err := s.store.AllNews(r.Context()); err == nil && len(news) > 0 {
		sortNewsByDateDesc(news)
		data["AllNews"] = news
	} else {
		data["Message"] = noResults
	}
	s.render(w, r, "update_news.html", data)
}

// handleNewsDelete removes a post and returns to the manage view. Any
// failure, a bad id or a missing row included, surfaces as the 500 text.
func (s *Server) handleNewsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		http.Error(w, "Unable to Remove News / News not found", http.StatusInternalServerError)
		return
	}

	if err := s.store.DeleteNewsByID(r.Context(), id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.WithError(err).WithField("news_id", id).Error("Failed to delete news post")
		}
		http.Error(w, "Unable to Remove News / News not found", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/news/update", http.StatusSeeOther)
}

// renderFormError re-renders a form page with an error message and the
// submitted values so the user does not retype everything.
func (s *Server) renderFormError(w http.ResponseWriter, r *http.Request, page, message string) {
	data := map[string]any{"ErrorMessage": message}
	if r.Form != nil {
		form := map[string]string{}
		for key := range r.Form {
			form[key] = r.FormValue(key)
		}
		data["Form"] = form
	}
	s.render(w, r, page, data)
}

func atoiOrZero(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}
