package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/finsight/internal/models"
)

// ErrReportNotFound is returned when no stored report matches the lookup
var ErrReportNotFound = errors.New("report not found")

// ReportStorage - interface for rendered analysis persistence
type ReportStorage interface {
	SaveReport(ctx context.Context, report *models.StoredReport) error
	GetReport(ctx context.Context, id string) (*models.StoredReport, error)

	// GetLatest returns the most recently generated report for ticker
	GetLatest(ctx context.Context, ticker string) (*models.StoredReport, error)

	// ListReports returns reports newest first; limit <= 0 means all
	ListReports(ctx context.Context, limit int) ([]models.StoredReport, error)
	ListByTicker(ctx context.Context, ticker string, limit int) ([]models.StoredReport, error)

	DeleteReport(ctx context.Context, id string) error
	CountReports(ctx context.Context) (int, error)
}

// ResponseCache - interface for short-lived provider payloads
type ResponseCache interface {
	// Get returns the cached payload and whether it was present and unexpired
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key; ttl <= 0 stores without expiry
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every entry whose key starts with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

// StorageManager - interface for the storage backend as a whole
type StorageManager interface {
	ReportStorage() ReportStorage
	ResponseCache() ResponseCache
	Close() error
}
