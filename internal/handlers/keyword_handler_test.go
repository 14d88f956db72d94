package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
	badgerstore "github.com/balma1115/marketingplatformproject-sub003/internal/storage/badger"
)

func newKeywordFixture(t *testing.T) (*http.ServeMux, *badgerstore.Manager) {
	t.Helper()
	storage, err := badgerstore.NewManager(common.BadgerConfig{Path: t.TempDir()}, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	handler := NewKeywordHandler(storage.KeywordStorage(), storage.RankStorage(), arbor.NewLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/keywords", handler.Create)
	mux.HandleFunc("GET /api/keywords", handler.List)
	mux.HandleFunc("DELETE /api/keywords/{id}", handler.Delete)
	mux.HandleFunc("GET /api/rankings/{id}", handler.History)
	return mux, storage
}

func TestKeywordHandler_CreateAndList(t *testing.T) {
	mux, _ := newKeywordFixture(t)

	body := `{"user_id":"user-1","service_type":"smartplace","text":"강남 치과","target_id":"1045278956","target_name":"미소치과"}`
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest("POST", "/api/keywords", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, recorder.Code)
	var created models.Keyword
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.ID, "kw_"))
	assert.True(t, created.Active, "new keywords start active")

	recorder = httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/keywords?user_id=user-1&service_type=smartplace", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), created.ID)
}

func TestKeywordHandler_CreateValidation(t *testing.T) {
	mux, _ := newKeywordFixture(t)

	cases := []string{
		`not json`,
		`{"user_id":"","service_type":"smartplace","text":"a","target_name":"b"}`,
		`{"user_id":"u","service_type":"bogus","text":"a","target_name":"b"}`,
		`{"user_id":"u","service_type":"smartplace","text":"","target_name":"b"}`,
	}
	for _, body := range cases {
		recorder := httptest.NewRecorder()
		mux.ServeHTTP(recorder, httptest.NewRequest("POST", "/api/keywords", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "body %q must be rejected", body)
	}
}

func TestKeywordHandler_Delete(t *testing.T) {
	mux, storage := newKeywordFixture(t)
	ctx := context.Background()

	keyword := &models.Keyword{UserID: "user-1", ServiceType: models.ServiceSmartPlace, Text: "강남 치과", TargetName: "미소치과", Active: true}
	require.NoError(t, storage.KeywordStorage().SaveKeyword(ctx, keyword))

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest("DELETE", "/api/keywords/"+keyword.ID, nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest("DELETE", "/api/keywords/"+keyword.ID, nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestKeywordHandler_History(t *testing.T) {
	mux, storage := newKeywordFixture(t)
	ctx := context.Background()

	rank := 4
	result := &models.RankResult{Keyword: "강남 치과", OrganicRank: &rank, Found: true, CheckedAt: time.Now()}
	require.NoError(t, storage.RankStorage().SaveRankResult(ctx, "kw_hist", "user-1", result, "2026-08-31"))

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/rankings/kw_hist", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var payload struct {
		KeywordID string               `json:"keyword_id"`
		History   []*models.RankRecord `json:"history"`
		Total     int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.Equal(t, 1, payload.Total)
	require.NotNil(t, payload.History[0].OrganicRank)
	assert.Equal(t, 4, *payload.History[0].OrganicRank)
}
