// Package server exposes the club's data layer as a JSON HTTP API. Reads are
// open; mutations sit behind the admin gate.
package server

import (
	"encoding/json"
	"net/http"

	"bitstorm/internal/auth"
	"bitstorm/internal/constants"
	"bitstorm/internal/domain"
	"bitstorm/internal/repository"
	"bitstorm/internal/service"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	matches  *repository.MatchRepository
	media    *repository.MediaRepository
	mediaSvc *service.MediaService
	visitors *service.VisitorService
	gate     *auth.Gate
	logger   zerolog.Logger
}

func New(
	matches *repository.MatchRepository,
	media *repository.MediaRepository,
	mediaSvc *service.MediaService,
	visitors *service.VisitorService,
	gate *auth.Gate,
	logger zerolog.Logger,
) *Server {
	return &Server{
		matches:  matches,
		media:    media,
		mediaSvc: mediaSvc,
		visitors: visitors,
		gate:     gate,
		logger:   logger,
	}
}

// Register mounts all routes on mux. requireAdmin wraps the mutating ones.
func (s *Server) Register(mux *http.ServeMux, requireAdmin func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/me", s.handleMe)

	mux.HandleFunc("GET /api/matches", s.handleListMatches)
	mux.HandleFunc("GET /api/matches/recent", s.handleRecentMatches)
	mux.HandleFunc("GET /api/matches/stats", s.handleMatchStats)
	mux.HandleFunc("GET /api/matches/years", s.handleMatchYears)
	mux.HandleFunc("GET /api/matches/months", s.handleMatchMonths)
	mux.Handle("POST /api/matches", requireAdmin(http.HandlerFunc(s.handleCreateMatch)))
	mux.Handle("PUT /api/matches/{id}", requireAdmin(http.HandlerFunc(s.handleUpdateMatch)))
	mux.Handle("DELETE /api/matches/{id}", requireAdmin(http.HandlerFunc(s.handleDeleteMatch)))

	mux.HandleFunc("GET /api/media", s.handleListMedia)
	mux.HandleFunc("GET /api/media/recent", s.handleRecentMedia)
	mux.Handle("POST /api/media", requireAdmin(http.HandlerFunc(s.handleCreateMedia)))
	mux.Handle("PUT /api/media/{id}", requireAdmin(http.HandlerFunc(s.handleUpdateMedia)))
	mux.Handle("DELETE /api/media/{id}", requireAdmin(http.HandlerFunc(s.handleDeleteMedia)))

	mux.HandleFunc("POST /api/visit", s.handleVisit)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
}

// -------- auth --------

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := s.gate.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"user": s.gate.CurrentUser(r.Context())})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.gate.Logout(r.Context()); err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := s.gate.CurrentUser(r.Context())
	if user == nil {
		s.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// -------- visitors --------

func (s *Server) handleVisit(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if c, err := r.Cookie(constants.SessionCookie); err == nil {
		sessionID = c.Value
	}
	if sessionID == "" {
		id, err := gonanoid.New()
		if err != nil {
			s.writeInternalError(w, r, err)
			return
		}
		sessionID = id
		http.SetCookie(w, &http.Cookie{
			Name:     constants.SessionCookie,
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
		})
	}

	total, isNew, err := s.visitors.Count(r.Context(), sessionID)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":      total,
		"formatted":  service.FormatCount(total),
		"newVisitor": isNew,
	})
}

// -------- summary --------

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	g, ctx := errgroup.WithContext(r.Context())

	var (
		stats         domain.MatchStats
		recentMatches []domain.Match
		recentMedia   []domain.MediaItem
	)
	g.Go(func() error {
		var err error
		stats, err = s.matches.Stats(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		recentMatches, err = s.matches.GetRecent(ctx, constants.RecentMatchesLimit)
		return err
	})
	g.Go(func() error {
		var err error
		recentMedia, err = s.media.GetRecent(ctx, constants.RecentMediaLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.writeInternalError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"stats":         stats,
		"recentMatches": recentMatches,
		"recentMedia":   recentMedia,
	})
}

// -------- helpers --------

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	s.writeError(w, http.StatusInternalServerError, "internal error")
}
