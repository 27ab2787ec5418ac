package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bitstorm/internal/domain"
	"bitstorm/internal/filter"
	"bitstorm/internal/repository"
)

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.matches.GetAll(r.Context())
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}

	q := r.URL.Query()
	if yearStr := q.Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		if monthStr := q.Get("month"); monthStr != "" {
			month, err := strconv.Atoi(monthStr)
			if err != nil || month < 1 || month > 12 {
				s.writeError(w, http.StatusBadRequest, "invalid month")
				return
			}
			matches = filter.InMonth(matches, year, month, domain.Match.Day)
		} else {
			matches = filter.InYear(matches, year, domain.Match.Day)
		}
	}
	matches = filter.Text(matches, q.Get("q"), func(m domain.Match) []string {
		return []string{m.Opponent, m.Venue, m.ManOfTheMatch}
	})
	if result := q.Get("result"); result != "" {
		matches = filter.Equal(matches, domain.Result(result), func(m domain.Match) domain.Result {
			return m.Result
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (s *Server) handleRecentMatches(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	matches, err := s.matches.GetRecent(r.Context(), limit)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (s *Server) handleMatchStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.matches.Stats(r.Context())
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMatchYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.matches.AvailableYears(r.Context())
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	if years == nil {
		years = []int{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"years": years})
}

func (s *Server) handleMatchMonths(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	months, err := s.matches.AvailableMonths(r.Context(), year)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	if months == nil {
		months = []int{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"months": months})
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var form repository.MatchForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateMatchForm(&form); msg != "" {
		s.writeError(w, http.StatusBadRequest, msg)
		return
	}

	match, err := s.matches.Add(r.Context(), form)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, match)
}

func (s *Server) handleUpdateMatch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}

	var upd repository.MatchUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateMatchUpdate(&upd); msg != "" {
		s.writeError(w, http.StatusBadRequest, msg)
		return
	}

	match, err := s.matches.Update(r.Context(), id, upd)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	if match == nil {
		s.writeError(w, http.StatusNotFound, "match not found")
		return
	}
	s.writeJSON(w, http.StatusOK, match)
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}

	found, err := s.matches.Delete(r.Context(), id)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "match not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// validateMatchForm is the form collaborator's contract: required parseable
// date, non-blank text fields, a valid result, and at least one non-blank
// key event after trimming. The repository trusts what passes here.
func validateMatchForm(form *repository.MatchForm) string {
	if _, err := time.Parse(domain.DateLayout, form.Date); err != nil {
		return "date is required (YYYY-MM-DD)"
	}
	if !form.Result.Valid() {
		return "result must be one of won, lost, tied"
	}
	for field, value := range map[string]string{
		"opponent":      form.Opponent,
		"venue":         form.Venue,
		"ourScore":      form.OurScore,
		"opponentScore": form.OpponentScore,
		"manOfTheMatch": form.ManOfTheMatch,
	} {
		if strings.TrimSpace(value) == "" {
			return field + " is required"
		}
	}

	form.KeyEvents = trimKeyEvents(form.KeyEvents)
	if len(form.KeyEvents) == 0 {
		return "at least one key event is required"
	}
	return ""
}

func validateMatchUpdate(upd *repository.MatchUpdate) string {
	if upd.Date != nil {
		if _, err := time.Parse(domain.DateLayout, *upd.Date); err != nil {
			return "date must be YYYY-MM-DD"
		}
	}
	if upd.Result != nil && !upd.Result.Valid() {
		return "result must be one of won, lost, tied"
	}
	if upd.KeyEvents != nil {
		upd.KeyEvents = trimKeyEvents(upd.KeyEvents)
		if len(upd.KeyEvents) == 0 {
			return "key events cannot all be blank"
		}
	}
	return ""
}

func trimKeyEvents(events []string) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		if t := strings.TrimSpace(e); t != "" {
			out = append(out, t)
		}
	}
	return out
}
