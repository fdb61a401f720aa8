package server

import (
	"net/http"

	"yourtune/internal/session"
)

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register.html", nil)
}

// handleRegister creates an account. Success and failure both re-render
// the registration page with a status message; no session is established.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "register.html", map[string]any{
			"ErrorMessage": "invalid form submission",
		})
		return
	}

	err := s.store.RegisterUser(r.Context(),
		sanitizeInput(r.FormValue("userName")),
		r.FormValue("password"),
		r.FormValue("password2"),
		sanitizeInput(r.FormValue("email")))
	if err != nil {
		s.render(w, r, "register.html", map[string]any{
			"ErrorMessage": "USER REGISTRATION FAILED ERROR: " + err.Error(),
			"UserName":     r.FormValue("userName"),
			"Email":        r.FormValue("email"),
		})
		return
	}

	s.render(w, r, "register.html", map[string]any{
		"SuccessMessage": "USER SUCCESSFULLY CREATED!",
	})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", nil)
}

// handleLogin verifies credentials, records the login in the user's
// history and establishes the session cookie. Failure re-renders the form
// and sets no cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "login.html", map[string]any{
			"ErrorMessage": "invalid form submission",
		})
		return
	}

	username := sanitizeInput(r.FormValue("userName"))
	user, err := s.store.LoginUser(r.Context(), username, r.FormValue("password"), r.UserAgent())
	if err != nil {
		// Unknown user and wrong password read identically so the form
		// cannot be used to enumerate accounts
		s.logger.WithField("username", username).Info("Login rejected")
		s.render(w, r, "login.html", map[string]any{
			"ErrorMessage": "invalid username or password",
			"UserName":     username,
		})
		return
	}

	if err := s.sessions.Establish(w, session.User{
		Username:     user.Username,
		Email:        user.Email,
		LoginHistory: user.LoginHistory,
	}); err != nil {
		s.logger.WithError(err).Error("Failed to establish session")
		s.render(w, r, "login.html", map[string]any{
			"ErrorMessage": "unable to sign in",
			"UserName":     username,
		})
		return
	}

	http.Redirect(w, r, "/albums", http.StatusSeeOther)
}

// handleLogout clears the session cookie and returns to the login page.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Destroy(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleLoginHistory shows the signed-in user's recent logins, most
// recent first.
func (s *Server) handleLoginHistory(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login_history.html", nil)
}
