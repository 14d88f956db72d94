package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/interfaces"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
	badgerstore "github.com/balma1115/marketingplatformproject-sub003/internal/storage/badger"
)

// KeywordHandler manages tracked keywords and serves their rank history
type KeywordHandler struct {
	keywords interfaces.KeywordStorage
	ranks    interfaces.RankStorage
	logger   arbor.ILogger
}

func NewKeywordHandler(keywords interfaces.KeywordStorage, ranks interfaces.RankStorage, logger arbor.ILogger) *KeywordHandler {
	return &KeywordHandler{keywords: keywords, ranks: ranks, logger: logger}
}

type createKeywordRequest struct {
	UserID      string             `json:"user_id"`
	ServiceType models.ServiceType `json:"service_type"`
	Text        string             `json:"text"`
	TargetID    string             `json:"target_id"`
	TargetName  string             `json:"target_name"`
}

// Create registers a new keyword for tracking
func (h *KeywordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createKeywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Text == "" || req.TargetName == "" {
		writeError(w, http.StatusBadRequest, "user_id, text and target_name are required")
		return
	}
	if !models.ValidServiceType(req.ServiceType) {
		writeError(w, http.StatusBadRequest, "unknown service_type")
		return
	}

	keyword := &models.Keyword{
		UserID:      req.UserID,
		ServiceType: req.ServiceType,
		Text:        req.Text,
		TargetID:    req.TargetID,
		TargetName:  req.TargetName,
		Active:      true,
	}
	if err := h.keywords.SaveKeyword(r.Context(), keyword); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save keyword")
		writeError(w, http.StatusInternalServerError, "failed to save keyword")
		return
	}

	writeJSON(w, http.StatusCreated, keyword)
}

// List returns a user's keywords for one service type, inactive included
func (h *KeywordHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	serviceType := models.ServiceType(r.URL.Query().Get("service_type"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if !models.ValidServiceType(serviceType) {
		writeError(w, http.StatusBadRequest, "unknown service_type")
		return
	}

	keywords, err := h.keywords.ListKeywords(r.Context(), userID, serviceType)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list keywords")
		writeError(w, http.StatusInternalServerError, "failed to list keywords")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"keywords": keywords,
		"total":    len(keywords),
	})
}

// Delete removes a keyword and stops tracking it
func (h *KeywordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "keyword id is required")
		return
	}

	err := h.keywords.DeleteKeyword(r.Context(), id)
	if errors.Is(err, badgerstore.ErrKeywordNotFound) {
		writeError(w, http.StatusNotFound, "keyword not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("keyword_id", id).Msg("Failed to delete keyword")
		writeError(w, http.StatusInternalServerError, "failed to delete keyword")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// History returns the recent rank rows for one keyword, newest first
func (h *KeywordHandler) History(w http.ResponseWriter, r *http.Request) {
	keywordID := r.PathValue("id")
	if keywordID == "" {
		writeError(w, http.StatusBadRequest, "keyword id is required")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	history, err := h.ranks.GetRankHistory(r.Context(), keywordID, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("keyword_id", keywordID).Msg("Failed to load rank history")
		writeError(w, http.StatusInternalServerError, "failed to load rank history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"keyword_id": keywordID,
		"history":    history,
		"total":      len(history),
	})
}
