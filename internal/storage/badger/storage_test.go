package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()
	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })
	return manager
}

func storedReport(id, ticker string, at time.Time, score float64) *models.StoredReport {
	return &models.StoredReport{
		ID:           id,
		Ticker:       ticker,
		CompanyName:  ticker + " Inc",
		GeneratedAt:  at,
		QualityScore: score,
		Markdown:     "# Pre-Calculated Metrics for " + ticker,
	}
}

func TestReportStorageSaveAndGet(t *testing.T) {
	ctx := context.Background()
	reports := newTestManager(t).ReportStorage()

	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, reports.SaveReport(ctx, storedReport("rpt_1", " acme ", at, 72.5)))

	got, err := reports.GetReport(ctx, "rpt_1")
	require.NoError(t, err)
	assert.Equal(t, "ACME", got.Ticker)
	assert.Equal(t, 72.5, got.QualityScore)
	assert.True(t, at.Equal(got.GeneratedAt))

	_, err = reports.GetReport(ctx, "rpt_missing")
	assert.ErrorIs(t, err, interfaces.ErrReportNotFound)

	assert.Error(t, reports.SaveReport(ctx, &models.StoredReport{Ticker: "ACME"}), "id required")
	assert.Error(t, reports.SaveReport(ctx, &models.StoredReport{ID: "rpt_2"}), "ticker required")
}

func TestReportStorageLatestAndList(t *testing.T) {
	ctx := context.Background()
	reports := newTestManager(t).ReportStorage()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, reports.SaveReport(ctx, storedReport("rpt_a1", "ACME", base, 60)))
	require.NoError(t, reports.SaveReport(ctx, storedReport("rpt_b1", "BETA", base.Add(time.Hour), 40)))
	require.NoError(t, reports.SaveReport(ctx, storedReport("rpt_a2", "ACME", base.Add(2*time.Hour), 65)))

	latest, err := reports.GetLatest(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "rpt_a2", latest.ID)

	_, err = reports.GetLatest(ctx, "ZZZ")
	assert.ErrorIs(t, err, interfaces.ErrReportNotFound)

	all, err := reports.ListReports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"rpt_a2", "rpt_b1", "rpt_a1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	limited, err := reports.ListReports(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	acme, err := reports.ListByTicker(ctx, "ACME", 0)
	require.NoError(t, err)
	assert.Len(t, acme, 2)

	count, err := reports.CountReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, reports.DeleteReport(ctx, "rpt_a2"))
	latest, err = reports.GetLatest(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, "rpt_a1", latest.ID)
	assert.ErrorIs(t, reports.DeleteReport(ctx, "rpt_a2"), interfaces.ErrReportNotFound)
}

func TestResponseCache(t *testing.T) {
	ctx := context.Background()
	cache := newTestManager(t).ResponseCache()

	_, ok, err := cache.Get(ctx, "income:ACME")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "income:ACME", []byte(`{"income_statements":[]}`), 0))
	value, ok, err := cache.Get(ctx, "income:ACME")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"income_statements":[]}`, string(value))

	require.NoError(t, cache.Delete(ctx, "income:ACME"))
	_, ok, _ = cache.Get(ctx, "income:ACME")
	assert.False(t, ok)
	assert.NoError(t, cache.Delete(ctx, "income:ACME"), "deleting a missing key is fine")
}

func TestResponseCacheExpires(t *testing.T) {
	ctx := context.Background()
	cache := newTestManager(t).ResponseCache()

	require.NoError(t, cache.Set(ctx, "prices:ACME", []byte("{}"), time.Second))
	_, ok, err := cache.Get(ctx, "prices:ACME")
	require.NoError(t, err)
	assert.True(t, ok)

	// badger stores expiry with one-second resolution
	time.Sleep(2100 * time.Millisecond)

	_, ok, err = cache.Get(ctx, "prices:ACME")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResponseCacheDeletePrefix(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)
	cache := manager.ResponseCache()

	require.NoError(t, cache.Set(ctx, "ACME:income", []byte("1"), time.Hour))
	require.NoError(t, cache.Set(ctx, "ACME:prices", []byte("2"), time.Hour))
	require.NoError(t, cache.Set(ctx, "BETA:income", []byte("3"), time.Hour))
	require.NoError(t, manager.ReportStorage().SaveReport(ctx, storedReport("rpt_1", "ACME", time.Now(), 50)))

	require.NoError(t, cache.DeletePrefix(ctx, "ACME:"))

	_, ok, _ := cache.Get(ctx, "ACME:income")
	assert.False(t, ok)
	_, ok, _ = cache.Get(ctx, "BETA:income")
	assert.True(t, ok)

	_, err := manager.ReportStorage().GetReport(ctx, "rpt_1")
	assert.NoError(t, err, "reports live outside the cache prefix")
}
