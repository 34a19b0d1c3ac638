package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/perfscan/internal/model"
)

// ArchivedAudit describes an archived audit report without its raw results.
type ArchivedAudit struct {
	ID         int64
	WebsiteID  int64
	URL        string
	Digest     string
	ArchivedAt time.Time
}

// SaveAuditReport archives an audit report and returns its archive ID.
// A report whose raw results were already archived for the same website is
// not stored again; its existing ID is returned with created set to false.
func (tdb *TaskDB) SaveAuditReport(ctx context.Context, report *model.AuditReport) (id int64, created bool, err error) {
	if report == nil {
		return 0, false, errors.New("audit report is nil")
	}

	digest := report.Digest()

	query := `
	INSERT INTO audit_reports (website_id, url, digest, raw_results, audited_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(website_id, digest) DO NOTHING
	`

	result, err := tdb.db.ExecContext(ctx, query,
		report.WebsiteID,
		report.URL,
		digest,
		string(report.RawResults),
		formatTimestamp(report.AuditedAt),
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to save audit report: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to check archived rows: %w", err)
	}
	if affected > 0 {
		id, err := result.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("failed to read audit report id: %w", err)
		}
		return id, true, nil
	}

	err = tdb.db.QueryRowContext(ctx,
		`SELECT id FROM audit_reports WHERE website_id = ? AND digest = ?`,
		report.WebsiteID, digest,
	).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to find archived audit report: %w", err)
	}
	return id, false, nil
}

// GetAuditReport loads an archived audit report. The returned report's ID
// is the archive ID.
func (tdb *TaskDB) GetAuditReport(ctx context.Context, id int64) (*model.AuditReport, error) {
	query := `
	SELECT id, website_id, url, raw_results, audited_at
	FROM audit_reports
	WHERE id = ?
	`

	var (
		report    model.AuditReport
		raw       string
		auditedAt sql.NullString
	)
	err := tdb.db.QueryRowContext(ctx, query, id).Scan(
		&report.ID,
		&report.WebsiteID,
		&report.URL,
		&raw,
		&auditedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrAuditReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit report: %w", err)
	}

	report.RawResults = []byte(raw)
	if auditedAt.Valid {
		report.AuditedAt = parseTimestamp(auditedAt.String)
	}
	return &report, nil
}

// ListAuditReports returns the archived reports of a website, newest first.
func (tdb *TaskDB) ListAuditReports(ctx context.Context, websiteID int64) ([]ArchivedAudit, error) {
	query := `
	SELECT id, website_id, url, digest, archived_at
	FROM audit_reports
	WHERE website_id = ?
	ORDER BY id DESC
	`

	rows, err := tdb.db.QueryContext(ctx, query, websiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit reports: %w", err)
	}
	defer rows.Close()

	var results []ArchivedAudit
	for rows.Next() {
		var a ArchivedAudit
		var archivedAt sql.NullString
		if err := rows.Scan(&a.ID, &a.WebsiteID, &a.URL, &a.Digest, &archivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit report: %w", err)
		}
		a.ArchivedAt = parseTimestamp(archivedAt.String)
		results = append(results, a)
	}
	return results, rows.Err()
}
