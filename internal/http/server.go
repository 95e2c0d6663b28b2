// Package http serves the household fund web UI and its JSON series
// endpoints.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"housefund/internal/auth"
	"housefund/internal/cache"
	"housefund/internal/core"
	"housefund/internal/services"
	appweb "housefund/web"
)

const sessionCookie = "housefund_session"

type Server struct {
	http.Server
	templates    *template.Template
	accounts     *services.AccountService
	sessions     *auth.SessionManager
	secureCookie bool
	rateLimiter  *rateLimiter

	// Chart aggregates are cheap but recomputed on every dashboard
	// poll, so they get a small cache purged on every ledger write.
	categoryCache *cache.LRUCache[[]core.CategoryAmount]
	monthCache    *cache.LRUCache[[]core.MonthAmount]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server.
func NewServer(addr string, accounts *services.AccountService, sessions *auth.SessionManager, secureCookie bool) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		accounts:         accounts,
		sessions:         sessions,
		secureCookie:     secureCookie,
		rateLimiter:      newRateLimiter(),
		categoryCache:    cache.NewLRUCache[[]core.CategoryAmount](16, 5*time.Minute),
		monthCache:       cache.NewLRUCache[[]core.MonthAmount](16, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/register", s.withSecurityHeaders(s.handleRegister))
	mux.HandleFunc("/forgot", s.withSecurityHeaders(s.handleForgotPassword))
	mux.HandleFunc("/logout", s.withSecurityHeaders(s.handleLogout))

	mux.HandleFunc("/", s.withSecurityHeaders(s.requireSession(s.handleDashboard)))
	mux.HandleFunc("/credits", s.withSecurityHeaders(s.requireSession(s.handleAddCredit)))
	mux.HandleFunc("/debits", s.withSecurityHeaders(s.requireSession(s.handleAddDebit)))
	// UI partials
	mux.HandleFunc("/ui/credits", s.withSecurityHeaders(s.requireSession(s.handleCreditList)))
	mux.HandleFunc("/ui/debits", s.withSecurityHeaders(s.requireSession(s.handleDebitList)))
	// Chart series
	mux.HandleFunc("/api/series/categories", s.withSecurityHeaders(s.requireSession(s.handleCategorySeries)))
	mux.HandleFunc("/api/series/months", s.withSecurityHeaders(s.requireSession(s.handleMonthSeries)))

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			categoriesCleaned := s.categoryCache.CleanExpired()
			monthsCleaned := s.monthCache.CleanExpired()
			if categoriesCleaned > 0 || monthsCleaned > 0 {
				slog.Debug("Cache cleanup completed",
					"category_entries_removed", categoriesCleaned,
					"month_entries_removed", monthsCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateSeries drops the chart caches after a ledger write.
func (s *Server) invalidateSeries() {
	s.categoryCache.Purge()
	s.monthCache.Purge()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
