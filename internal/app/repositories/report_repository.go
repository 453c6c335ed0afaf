package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walkandtalk/walktalk/internal/app/mappers"
	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/models/dto"
)

// ReportRepository stores abuse reports filed against content or users
type ReportRepository interface {
	Create(ctx context.Context, report models.Report) (*models.Report, error)
	ForReporter(ctx context.Context, reporterID string) ([]models.Report, error)
}

// PgReportRepository implements ReportRepository over Postgres
type PgReportRepository struct {
	db *pgxpool.Pool
}

var _ ReportRepository = (*PgReportRepository)(nil)

// NewReportRepository creates a new PgReportRepository
func NewReportRepository(db *pgxpool.Pool) *PgReportRepository {
	return &PgReportRepository{db: db}
}

// Create persists a report
func (r *PgReportRepository) Create(ctx context.Context, report models.Report) (*models.Report, error) {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}

	row := mappers.ReportToRow(report)
	err := r.db.QueryRow(ctx,
		"INSERT INTO reports (id, reporter_id, content_type, content_id, reason) VALUES ($1, $2, $3, $4, $5) RETURNING created_at",
		row.ID, row.ReporterID, row.ContentType, row.ContentID, row.Reason,
	).Scan(&report.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating report: %w", err)
	}
	return &report, nil
}

// ForReporter retrieves the reports a user has filed, newest first
func (r *PgReportRepository) ForReporter(ctx context.Context, reporterID string) ([]models.Report, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, reporter_id, content_type, content_id, reason, created_at FROM reports WHERE reporter_id = $1 ORDER BY created_at DESC",
		reporterID,
	)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var row dto.ReportRow
		if err := rows.Scan(&row.ID, &row.ReporterID, &row.ContentType, &row.ContentID, &row.Reason, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning report row: %w", err)
		}
		report, err := mappers.ReportToDomain(row)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}
	return reports, nil
}
