package sqlite

import (
	"context"
	"fmt"

	"github.com/example/roombot/internal/persistence"
)

// AuditRepository implements persistence.AuditRepository using SQLite.
type AuditRepository struct {
	pool   *ConnectionPool
	retry  *RetryHelper
	mapper *ErrorMapper
}

// NewAuditRepository creates a new SQLite audit repository
func NewAuditRepository(pool *ConnectionPool, retry *RetryHelper) *AuditRepository {
	return &AuditRepository{pool: pool, retry: retry, mapper: NewErrorMapper()}
}

// AppendAudit stores one processed-command record.
func (r *AuditRepository) AppendAudit(ctx context.Context, entry persistence.AuditEntry) error {
	return r.retry.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, `
			INSERT INTO audit_logs (requester_name, requester_id, raw_text, command_kind, success,
				response, error_detail, source_addr, elapsed_ms, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.RequesterName,
			entry.RequesterID,
			entry.RawText,
			entry.CommandKind,
			entry.Success,
			entry.Response,
			entry.ErrorDetail,
			entry.SourceAddr,
			entry.ElapsedMS,
			formatTime(entry.CreatedAt),
		)
		return err
	})
}

// ListAudit returns up to limit entries, newest first.
func (r *AuditRepository) ListAudit(ctx context.Context, limit int) ([]persistence.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.pool.DB().QueryContext(ctx, `
		SELECT id, requester_name, requester_id, raw_text, command_kind, success,
			response, error_detail, source_addr, elapsed_ms, created_at
		FROM audit_logs
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.AuditEntry
	for rows.Next() {
		var (
			entry     persistence.AuditEntry
			createdAt string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.RequesterName,
			&entry.RequesterID,
			&entry.RawText,
			&entry.CommandKind,
			&entry.Success,
			&entry.Response,
			&entry.ErrorDetail,
			&entry.SourceAddr,
			&entry.ElapsedMS,
			&createdAt,
		); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return entries, nil
}
