package http

import (
	"errors"
	"log/slog"
	"net/http"

	"housefund/internal/services"
)

type authPage struct {
	Error   string
	Success string
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderPage(w, r, "login.html", authPage{})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			s.renderPage(w, r, "login.html", authPage{Error: "Invalid request format"})
			return
		}
		username := sanitizeInput(r.Form.Get("username"))
		password := r.Form.Get("password")

		acct, err := s.accounts.Login(r.Context(), username, password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				w.WriteHeader(http.StatusUnauthorized)
				s.renderPage(w, r, "login.html", authPage{Error: "Invalid username or password"})
				return
			}
			slog.ErrorContext(r.Context(), "Login failed", "username", username, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			s.renderPage(w, r, "login.html", authPage{Error: "Something went wrong, try again"})
			return
		}

		token, err := s.sessions.Create(acct.Username)
		if err != nil {
			slog.ErrorContext(r.Context(), "Session creation failed", "username", acct.Username, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			s.renderPage(w, r, "login.html", authPage{Error: "Something went wrong, try again"})
			return
		}
		s.setSessionCookie(w, token)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderPage(w, r, "register.html", authPage{})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			s.renderPage(w, r, "register.html", authPage{Error: "Invalid request format"})
			return
		}
		username := sanitizeInput(r.Form.Get("username"))
		password := r.Form.Get("password")
		confirm := r.Form.Get("confirm_password")

		err := s.accounts.Register(r.Context(), username, password, confirm)
		switch {
		case err == nil:
			s.renderPage(w, r, "login.html", authPage{Success: "Account created, you can sign in now"})
		case errors.Is(err, services.ErrAlreadyExists):
			w.WriteHeader(http.StatusConflict)
			s.renderPage(w, r, "register.html", authPage{Error: "That username is already taken"})
		case errors.Is(err, services.ErrPasswordMismatch):
			w.WriteHeader(http.StatusUnprocessableEntity)
			s.renderPage(w, r, "register.html", authPage{Error: "Passwords do not match"})
		case errors.Is(err, services.ErrInvalidInput):
			w.WriteHeader(http.StatusUnprocessableEntity)
			s.renderPage(w, r, "register.html", authPage{Error: "Username and password are required"})
		default:
			slog.ErrorContext(r.Context(), "Registration failed", "username", username, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			s.renderPage(w, r, "register.html", authPage{Error: "Something went wrong, try again"})
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderPage(w, r, "forgot.html", authPage{})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			s.renderPage(w, r, "forgot.html", authPage{Error: "Invalid request format"})
			return
		}
		username := sanitizeInput(r.Form.Get("username"))
		password := r.Form.Get("password")
		confirm := r.Form.Get("confirm_password")

		err := s.accounts.ResetPassword(r.Context(), username, password, confirm)
		switch {
		case err == nil:
			// Any open sessions for the account are no longer trusted
			s.sessions.DeleteUser(username)
			s.renderPage(w, r, "login.html", authPage{Success: "Password updated, sign in with the new one"})
		case errors.Is(err, services.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			s.renderPage(w, r, "forgot.html", authPage{Error: "No account with that username"})
		case errors.Is(err, services.ErrPasswordMismatch):
			w.WriteHeader(http.StatusUnprocessableEntity)
			s.renderPage(w, r, "forgot.html", authPage{Error: "Passwords do not match"})
		case errors.Is(err, services.ErrInvalidInput):
			w.WriteHeader(http.StatusUnprocessableEntity)
			s.renderPage(w, r, "forgot.html", authPage{Error: "Username and new password are required"})
		default:
			slog.ErrorContext(r.Context(), "Password reset failed", "username", username, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			s.renderPage(w, r, "forgot.html", authPage{Error: "Something went wrong, try again"})
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
