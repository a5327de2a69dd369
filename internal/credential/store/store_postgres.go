package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"gympass/internal/credential/models"
	"gympass/internal/sentinel"
)

// PostgresStore persists credentials in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, record models.Record) error {
	signed, err := json.Marshal(record.Signed)
	if err != nil {
		return fmt.Errorf("marshal signed credential: %w", err)
	}

	query := `
		INSERT INTO credentials (
			id, holder_did, benefit_id, membership_id,
			status, revocation_reason, signed, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.HolderDID,
		record.BenefitID,
		record.MembershipID,
		string(record.Status),
		nullable(record.RevocationReason),
		signed,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Record, error) {
	query := `
		SELECT id, holder_did, benefit_id, membership_id,
		       status, revocation_reason, signed, created_at, updated_at
		FROM credentials
		WHERE id = $1
	`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter, page, pageSize int) (*models.Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	where := "TRUE"
	args := []interface{}{}
	idx := 1

	if filter.HolderDID != "" {
		where += fmt.Sprintf(" AND holder_did = $%d", idx)
		args = append(args, filter.HolderDID)
		idx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, string(*filter.Status))
		idx++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (id ILIKE $%d OR holder_did ILIKE $%d OR benefit_id ILIKE $%d OR signed->'credential'->'credentialSubject'->>'benefitName' ILIKE $%d)", idx, idx, idx, idx)
		args = append(args, "%"+filter.Search+"%")
		idx++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM credentials WHERE " + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count credentials: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, holder_did, benefit_id, membership_id,
		       status, revocation_reason, signed, created_at, updated_at
		FROM credentials
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, idx, idx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	records := make([]models.Record, 0, pageSize)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list credentials: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	return &models.Page{
		Records:  records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// SetStatus transitions a record's status. The status guard in the WHERE
// clause makes revocation exactly-once under concurrency: the second revoker
// matches zero rows and is told the record was already revoked.
func (s *PostgresStore) SetStatus(ctx context.Context, id string, status models.Status, reason string) error {
	query := `
		UPDATE credentials
		SET status = $2, revocation_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`
	result, err := s.db.ExecContext(ctx, query, id, string(status), nullable(reason))
	if err != nil {
		return fmt.Errorf("update credential status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credential status: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM credentials WHERE id = $1)", id).Scan(&exists); err != nil {
			return fmt.Errorf("check credential exists: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM credentials WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var record models.Record
	var status string
	var reason sql.NullString
	var signed []byte

	if err := row.Scan(
		&record.ID,
		&record.HolderDID,
		&record.BenefitID,
		&record.MembershipID,
		&status,
		&reason,
		&signed,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}

	record.Status = models.Status(status)
	if reason.Valid {
		record.RevocationReason = reason.String
	}
	if err := json.Unmarshal(signed, &record.Signed); err != nil {
		return nil, fmt.Errorf("unmarshal signed credential: %w", err)
	}
	return &record, nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
