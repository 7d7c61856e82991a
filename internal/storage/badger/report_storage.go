package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
)

// ReportStorage implements interfaces.ReportStorage with badgerhold
type ReportStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewReportStorage creates a new ReportStorage instance
func NewReportStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ReportStorage {
	return &ReportStorage{
		db:     db,
		logger: logger,
	}
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// SaveReport inserts or replaces a report by ID
func (s *ReportStorage) SaveReport(ctx context.Context, report *models.StoredReport) error {
	if report == nil || report.ID == "" {
		return errors.New("report id is required")
	}
	report.Ticker = normalizeTicker(report.Ticker)
	if report.Ticker == "" {
		return errors.New("report ticker is required")
	}

	if err := s.db.Store().Upsert(report.ID, report); err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}

	s.logger.Debug().
		Str("report_id", report.ID).
		Str("ticker", report.Ticker).
		Msg("Report saved")
	return nil
}

// GetReport retrieves a report by ID
func (s *ReportStorage) GetReport(ctx context.Context, id string) (*models.StoredReport, error) {
	var report models.StoredReport
	err := s.db.Store().Get(id, &report)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, interfaces.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}
	return &report, nil
}

// GetLatest returns the newest report for ticker
func (s *ReportStorage) GetLatest(ctx context.Context, ticker string) (*models.StoredReport, error) {
	reports, err := s.ListByTicker(ctx, ticker, 1)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, interfaces.ErrReportNotFound
	}
	return &reports[0], nil
}

// ListReports returns reports ordered by GeneratedAt DESC
func (s *ReportStorage) ListReports(ctx context.Context, limit int) ([]models.StoredReport, error) {
	return s.find(badgerhold.Where("ID").Ne(""), limit)
}

// ListByTicker returns one ticker's reports ordered by GeneratedAt DESC
func (s *ReportStorage) ListByTicker(ctx context.Context, ticker string, limit int) ([]models.StoredReport, error) {
	return s.find(badgerhold.Where("Ticker").Eq(normalizeTicker(ticker)).Index("Ticker"), limit)
}

func (s *ReportStorage) find(query *badgerhold.Query, limit int) ([]models.StoredReport, error) {
	query = query.SortBy("GeneratedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var reports []models.StoredReport
	if err := s.db.Store().Find(&reports, query); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// DeleteReport removes a report by ID
func (s *ReportStorage) DeleteReport(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.StoredReport{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return interfaces.ErrReportNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	return nil
}

// CountReports returns the number of stored reports
func (s *ReportStorage) CountReports(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.StoredReport{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return int(count), nil
}
