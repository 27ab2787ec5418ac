package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"bitstorm/internal/assets"
	"bitstorm/internal/domain"
	"bitstorm/internal/filter"
	"bitstorm/internal/repository"
)

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	items, err := s.media.GetAll(r.Context())
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}

	q := r.URL.Query()
	if category := q.Get("category"); category != "" {
		c := domain.Category(category)
		if !c.Valid() {
			s.writeError(w, http.StatusBadRequest, "invalid category")
			return
		}
		items = filter.Equal(items, c, func(it domain.MediaItem) domain.Category {
			return it.Category
		})
	}
	if mediaType := q.Get("type"); mediaType != "" {
		t := domain.MediaType(mediaType)
		if !t.Valid() {
			s.writeError(w, http.StatusBadRequest, "invalid type")
			return
		}
		items = filter.Equal(items, t, func(it domain.MediaItem) domain.MediaType {
			return it.Type
		})
	}
	items = filter.Text(items, q.Get("q"), func(it domain.MediaItem) []string {
		return []string{it.Caption, it.Alt}
	})

	s.writeJSON(w, http.StatusOK, map[string]any{"media": items})
}

func (s *Server) handleRecentMedia(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := s.media.GetRecent(r.Context(), limit)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"media": items})
}

type createMediaRequest struct {
	Src      string           `json:"src"`
	Alt      string           `json:"alt"`
	Caption  string           `json:"caption"`
	Category domain.Category  `json:"category"`
	Type     domain.MediaType `json:"type"`
	Asset    *assetPayload    `json:"asset"`
}

type assetPayload struct {
	Name    string `json:"name"`
	Content string `json:"content"` // base64
}

func (s *Server) handleCreateMedia(w http.ResponseWriter, r *http.Request) {
	var req createMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Category.Valid() {
		s.writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	if !req.Type.Valid() {
		s.writeError(w, http.StatusBadRequest, "invalid type")
		return
	}
	if req.Src == "" && req.Asset == nil {
		s.writeError(w, http.StatusBadRequest, "src or asset is required")
		return
	}

	var file *assets.File
	if req.Asset != nil {
		if strings.TrimSpace(req.Asset.Name) == "" {
			s.writeError(w, http.StatusBadRequest, "asset name is required")
			return
		}
		content, err := base64.StdEncoding.DecodeString(req.Asset.Content)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "asset content must be base64")
			return
		}
		file = &assets.File{
			Name:        req.Asset.Name,
			Content:     content,
			Category:    req.Category,
			Description: req.Caption,
		}
	}

	item := domain.MediaItem{
		Src:      req.Src,
		Alt:      req.Alt,
		Caption:  req.Caption,
		Category: req.Category,
		Type:     req.Type,
	}
	created, err := s.mediaSvc.Add(r.Context(), item, file)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateMedia(w http.ResponseWriter, r *http.Request) {
	var upd repository.MediaUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if upd.Category != nil && !upd.Category.Valid() {
		s.writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	if upd.Type != nil && !upd.Type.Valid() {
		s.writeError(w, http.StatusBadRequest, "invalid type")
		return
	}

	item, err := s.mediaSvc.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "media item not found")
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	found, err := s.mediaSvc.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "media item not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
