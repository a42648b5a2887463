package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudscope/internal/common"
	"fraudscope/internal/model"
	"fraudscope/internal/service"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRun() *model.Run {
	return &model.Run{
		CreatedAt:      time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		BackendURL:     "http://localhost:8000",
		InputRows:      100,
		OutputRows:     100,
		TotalProviders: 3,
		FraudCount:     2,
		FraudRatePct:   66.67,
		TotalSavings:   120000,
	}
}

func samplePredictions() []model.Prediction {
	return []model.Prediction{
		{Provider: "PRV001", Prediccion: 1, ProbabilidadFraude: 0.91},
		{Provider: "PRV002", Prediccion: 1, ProbabilidadFraude: 0.73},
		{Provider: "PRV003", Prediccion: 0, ProbabilidadFraude: 0.08},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSaveAndGetRun(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	id, err := store.SaveRun(ctx, sampleRun(), samplePredictions())
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := store.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "http://localhost:8000", got.BackendURL)
	assert.Equal(t, 3, got.TotalProviders)
	assert.Equal(t, 2, got.FraudCount)
	assert.InDelta(t, 66.67, got.FraudRatePct, 0.001)
	assert.InDelta(t, 120000, got.TotalSavings, 0.001)
}

func TestGetRunNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetRun(context.Background(), 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetLatestRun(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.SaveRun(ctx, sampleRun(), nil)
	require.NoError(t, err)

	second := sampleRun()
	second.TotalProviders = 7
	latestID, err := store.SaveRun(ctx, second, nil)
	require.NoError(t, err)

	latest, err := store.GetLatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, latestID, latest.ID)
	assert.Equal(t, 7, latest.TotalProviders)
}

func TestGetLatestRunEmpty(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetLatestRun(context.Background())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := store.SaveRun(ctx, sampleRun(), nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := store.ListRuns(ctx, service.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)

	limited, err := store.ListRuns(ctx, service.RunFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, ids[1], limited[0].ID)
}

func TestGetRunPredictionsOrdering(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	id, err := store.SaveRun(ctx, sampleRun(), samplePredictions())
	require.NoError(t, err)

	predictions, err := store.GetRunPredictions(ctx, id)
	require.NoError(t, err)
	require.Len(t, predictions, 3)
	assert.Equal(t, "PRV001", predictions[0].Provider)
	assert.Equal(t, "PRV003", predictions[2].Provider)
	assert.True(t, predictions[0].IsFraud())
	assert.False(t, predictions[2].IsFraud())
}

func TestSaveRunRejectsNil(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.SaveRun(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestPredictionsIsolatedPerRun(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	first, err := store.SaveRun(ctx, sampleRun(), samplePredictions())
	require.NoError(t, err)
	second, err := store.SaveRun(ctx, sampleRun(), samplePredictions()[:1])
	require.NoError(t, err)

	firstPreds, err := store.GetRunPredictions(ctx, first)
	require.NoError(t, err)
	secondPreds, err := store.GetRunPredictions(ctx, second)
	require.NoError(t, err)
	assert.Len(t, firstPreds, 3)
	assert.Len(t, secondPreds, 1)
}
