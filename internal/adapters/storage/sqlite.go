package storage

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// SQLiteAdapter implements ports.ReportStore using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// ReportModel is the GORM model for optimization reports. The topology and
// the finding lists are stored as JSON columns; changes get their own table
// so the change history stays queryable per device.
type ReportModel struct {
	ID                  string `gorm:"primaryKey"`
	Timestamp           time.Time
	SwitchesAnalyzed    int
	CurrentRoot         string
	CurrentRootPriority int
	OptimalRoot         string
	OptimalRootReason   string
	ChangesRequired     int
	LoopsDetected       bool
	BlockedPortsCount   int
	TopologyJSON        string
	IssuesJSON          string
	RecommendationsJSON string
	CurrentDiagram      string
	OptimalDiagram      string

	Changes []ChangeModel `gorm:"foreignKey:ReportID"`
}

// ChangeModel stores one recommended priority change of a report.
type ChangeModel struct {
	ID              uint   `gorm:"primaryKey"`
	ReportID        string `gorm:"index"`
	DeviceID        string `gorm:"index"`
	DeviceName      string
	CurrentPriority int
	NewPriority     int
	HierarchyTier   int
	Reason          string
}

// NewSQLiteAdapter initializes the database and migrates the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&ReportModel{}, &ChangeModel{}); err != nil {
		return nil, err
	}

	db.Exec("CREATE INDEX IF NOT EXISTS idx_report_models_timestamp ON report_models(timestamp)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_change_models_device_id ON change_models(device_id)")

	return &SQLiteAdapter{db: db}, nil
}

// SaveReport persists a report together with its change plan.
func (a *SQLiteAdapter) SaveReport(ctx context.Context, report *domain.STPOptimizationReport) error {
	model, err := toModel(report)
	if err != nil {
		return err
	}
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&model).Error
	})
}

// GetReport retrieves a report by ID, including its changes.
func (a *SQLiteAdapter) GetReport(ctx context.Context, id string) (*domain.STPOptimizationReport, error) {
	var model ReportModel
	if err := a.db.WithContext(ctx).Preload("Changes").First(&model, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return toDomain(model)
}

// ListReports returns the most recent report summaries, newest first.
// limit <= 0 returns everything.
func (a *SQLiteAdapter) ListReports(ctx context.Context, limit int) ([]domain.ReportSummary, error) {
	query := a.db.WithContext(ctx).Model(&ReportModel{}).Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []ReportModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	summaries := make([]domain.ReportSummary, len(models))
	for i, m := range models {
		summaries[i] = domain.ReportSummary{
			ID:               m.ID,
			Timestamp:        m.Timestamp,
			SwitchesAnalyzed: m.SwitchesAnalyzed,
			CurrentRoot:      m.CurrentRoot,
			OptimalRoot:      m.OptimalRoot,
			ChangesRequired:  m.ChangesRequired,
			LoopsDetected:    m.LoopsDetected,
		}
	}
	return summaries, nil
}

// Close closes the underlying database connection.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
