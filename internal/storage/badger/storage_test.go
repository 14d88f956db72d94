package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(common.BadgerConfig{Path: t.TempDir()}, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager
}

func sampleKeyword(id, userID string, serviceType models.ServiceType, active bool) *models.Keyword {
	return &models.Keyword{
		ID:          id,
		UserID:      userID,
		ServiceType: serviceType,
		Text:        "강남 치과",
		TargetID:    "1045278956",
		TargetName:  "미소치과",
		Active:      active,
	}
}

func TestKeywordStore_SaveAndGet(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	store := manager.KeywordStorage()

	keyword := sampleKeyword("", "user-1", models.ServiceSmartPlace, true)
	require.NoError(t, store.SaveKeyword(ctx, keyword))
	assert.NotEmpty(t, keyword.ID, "an id must be generated on first save")
	assert.False(t, keyword.CreatedAt.IsZero())

	loaded, err := store.GetKeyword(ctx, keyword.ID)
	require.NoError(t, err)
	assert.Equal(t, "강남 치과", loaded.Text)
	assert.Equal(t, "1045278956", loaded.TargetID)
}

func TestKeywordStore_GetUnknown(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.KeywordStorage().GetKeyword(context.Background(), "kw_missing")
	assert.ErrorIs(t, err, ErrKeywordNotFound)
}

func TestKeywordStore_ListActiveFiltersInactive(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	store := manager.KeywordStorage()

	require.NoError(t, store.SaveKeyword(ctx, sampleKeyword("kw_1", "user-1", models.ServiceSmartPlace, true)))
	require.NoError(t, store.SaveKeyword(ctx, sampleKeyword("kw_2", "user-1", models.ServiceSmartPlace, false)))
	require.NoError(t, store.SaveKeyword(ctx, sampleKeyword("kw_3", "user-1", models.ServiceBlog, true)))
	require.NoError(t, store.SaveKeyword(ctx, sampleKeyword("kw_4", "user-2", models.ServiceSmartPlace, true)))

	active, err := store.ListActiveKeywords(ctx, "user-1", models.ServiceSmartPlace)
	require.NoError(t, err)
	require.Len(t, active, 1, "inactive, other-service and other-user keywords must be filtered")
	assert.Equal(t, "kw_1", active[0].ID)

	all, err := store.ListKeywords(ctx, "user-1", models.ServiceSmartPlace)
	require.NoError(t, err)
	assert.Len(t, all, 2, "the unfiltered list includes inactive keywords")
}

func TestKeywordStore_ListTrackedUsers(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	store := manager.KeywordStorage()

	require.NoError(t, store.SaveKeyword(ctx, sampleKeyword("kw_1", "user-b", models.ServiceSmartPlace, true)))
	require.NoError(t, store.SaveKeyword(ctx, sampleKeyword("kw_2", "user-a", models.ServiceSmartPlace, true)))
	require.NoError(t, store.SaveKeyword(ctx, sampleKeyword("kw_3", "user-a", models.ServiceSmartPlace, true)))
	require.NoError(t, store.SaveKeyword(ctx, sampleKeyword("kw_4", "user-c", models.ServiceSmartPlace, false)))

	userIDs, err := store.ListTrackedUsers(ctx, models.ServiceSmartPlace)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-a", "user-b"}, userIDs, "distinct active users, sorted")
}

func TestKeywordStore_UpdateLastTrackedAt(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	store := manager.KeywordStorage()

	require.NoError(t, store.SaveKeyword(ctx, sampleKeyword("kw_1", "user-1", models.ServiceSmartPlace, true)))
	require.NoError(t, store.SaveKeyword(ctx, sampleKeyword("kw_2", "user-1", models.ServiceSmartPlace, true)))

	stamp := time.Date(2026, 8, 31, 2, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateLastTrackedAt(ctx, "user-1", models.ServiceSmartPlace, stamp))

	for _, id := range []string{"kw_1", "kw_2"} {
		keyword, err := store.GetKeyword(ctx, id)
		require.NoError(t, err)
		assert.True(t, keyword.LastTrackedAt.Equal(stamp))
	}
}

func TestKeywordStore_Delete(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	store := manager.KeywordStorage()

	require.NoError(t, store.SaveKeyword(ctx, sampleKeyword("kw_1", "user-1", models.ServiceSmartPlace, true)))
	require.NoError(t, store.DeleteKeyword(ctx, "kw_1"))

	_, err := store.GetKeyword(ctx, "kw_1")
	assert.ErrorIs(t, err, ErrKeywordNotFound)

	assert.ErrorIs(t, store.DeleteKeyword(ctx, "kw_1"), ErrKeywordNotFound)
}

func rankOf(n int) *int { return &n }

func TestRankStore_OneRowPerKeywordPerDate(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	store := manager.RankStorage()

	first := &models.RankResult{Keyword: "강남 치과", OrganicRank: rankOf(5), Found: true, CheckedAt: time.Now()}
	require.NoError(t, store.SaveRankResult(ctx, "kw_1", "user-1", first, "2026-08-31"))

	// A rerun on the same day replaces the row
	second := &models.RankResult{Keyword: "강남 치과", OrganicRank: rankOf(3), Found: true, CheckedAt: time.Now()}
	require.NoError(t, store.SaveRankResult(ctx, "kw_1", "user-1", second, "2026-08-31"))

	history, err := store.GetRankHistory(ctx, "kw_1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].OrganicRank)
	assert.Equal(t, 3, *history[0].OrganicRank)
}

func TestRankStore_HistoryNewestFirstAndBounded(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	store := manager.RankStorage()

	base := time.Date(2026, 8, 1, 2, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		day := base.AddDate(0, 0, i)
		result := &models.RankResult{
			Keyword:     "강남 치과",
			OrganicRank: rankOf(i + 1),
			Found:       true,
			CheckedAt:   day,
		}
		require.NoError(t, store.SaveRankResult(ctx, "kw_1", "user-1", result, day.Format("2006-01-02")))
	}

	history, err := store.GetRankHistory(ctx, "kw_1", 5)
	require.NoError(t, err)
	require.Len(t, history, 5)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i-1].CheckedAt.After(history[i].CheckedAt), "history must be newest first")
	}
	assert.Equal(t, 8, *history[0].OrganicRank)
}

func TestRankStore_NotFoundRowKeepsNilRanks(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	store := manager.RankStorage()

	result := &models.RankResult{Keyword: "강남 치과", Found: false, CheckedAt: time.Now()}
	require.NoError(t, store.SaveRankResult(ctx, "kw_1", "user-1", result, "2026-08-31"))

	history, err := store.GetRankHistory(ctx, "kw_1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].OrganicRank, "absent ranks persist as nil, never zero")
	assert.Nil(t, history[0].AdRank)
	assert.False(t, history[0].Found)
}

func TestManager_ResetOnStartup(t *testing.T) {
	path := t.TempDir()
	ctx := context.Background()

	manager, err := NewManager(common.BadgerConfig{Path: path}, arbor.NewLogger())
	require.NoError(t, err)
	require.NoError(t, manager.KeywordStorage().SaveKeyword(ctx, sampleKeyword("kw_1", "user-1", models.ServiceSmartPlace, true)))
	require.NoError(t, manager.Close())

	reopened, err := NewManager(common.BadgerConfig{Path: path, ResetOnStartup: true}, arbor.NewLogger())
	require.NoError(t, err)
	defer reopened.Close()

	_, err = reopened.KeywordStorage().GetKeyword(ctx, "kw_1")
	assert.ErrorIs(t, err, ErrKeywordNotFound)
}

func TestKeywordStore_GeneratedIDsArePrefixed(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	store := manager.KeywordStorage()

	keyword := sampleKeyword("", "user-1", models.ServiceSmartPlace, true)
	require.NoError(t, store.SaveKeyword(ctx, keyword))
	assert.Equal(t, "kw_", keyword.ID[:3], fmt.Sprintf("unexpected id %s", keyword.ID))
}
