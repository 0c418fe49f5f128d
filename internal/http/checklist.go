package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/abbakary/portals/internal/model"
)

const categoryCacheKey = "portal:categories"

type checklistItemPayload struct {
	ID            string `json:"id"`
	CategoryID    string `json:"category"`
	CategoryName  string `json:"category_name,omitempty"`
	Code          string `json:"code"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	RequiresPhoto bool   `json:"requires_photo"`
	IsActive      bool   `json:"is_active"`
}

type categoryPayload struct {
	ID           string                 `json:"id"`
	Code         string                 `json:"code"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	DisplayOrder int                    `json:"display_order"`
	Items        []checklistItemPayload `json:"items"`
}

func itemPayload(item model.ChecklistItem, categoryName string) checklistItemPayload {
	return checklistItemPayload{
		ID:            item.ID,
		CategoryID:    item.CategoryID,
		CategoryName:  categoryName,
		Code:          item.Code,
		Title:         item.Title,
		Description:   item.Description,
		RequiresPhoto: item.RequiresPhoto,
		IsActive:      item.IsActive,
	}
}

// handleListCategories serves the public category tree. The payload only
// changes when the seeder or an admin touches the checklist, so it is
// cached in redis when a client is configured.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	if cached := s.cachedCategories(r.Context()); cached != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}

	categories, err := s.store.Queries.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	items, err := s.store.Queries.ListChecklistItems(r.Context(), false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	byCategory := make(map[string][]checklistItemPayload, len(categories))
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	for _, item := range items {
		byCategory[item.CategoryID] = append(byCategory[item.CategoryID], itemPayload(item, names[item.CategoryID]))
	}

	resp := make([]categoryPayload, 0, len(categories))
	for _, c := range categories {
		categoryItems := byCategory[c.ID]
		if categoryItems == nil {
			categoryItems = []checklistItemPayload{}
		}
		resp = append(resp, categoryPayload{
			ID:           c.ID,
			Code:         c.Code,
			Name:         c.Name,
			Description:  c.Description,
			DisplayOrder: c.DisplayOrder,
			Items:        categoryItems,
		})
	}

	s.storeCategories(r.Context(), resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListChecklistItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Queries.ListChecklistItems(r.Context(), true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	categories, err := s.store.Queries.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	resp := make([]checklistItemPayload, 0, len(items))
	for _, item := range items {
		resp = append(resp, itemPayload(item, names[item.CategoryID]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) cachedCategories(ctx context.Context) []byte {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, categoryCacheKey).Bytes()
	if err != nil {
		return nil
	}
	return cached
}

func (s *Server) storeCategories(ctx context.Context, payload []categoryPayload) {
	if s.cache == nil {
		return
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, categoryCacheKey, encoded, s.cfg.ReferenceCacheTTL).Err()
}
