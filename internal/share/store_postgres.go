package share

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gympass/internal/sentinel"
)

// PostgresStore persists share links in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed share store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, share Share) error {
	query := `
		INSERT INTO share_links (share_id, credential_id, jwt_snapshot, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (share_id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		share.ShareID,
		share.CredentialID,
		share.JWTSnapshot,
		share.ExpiresAt,
		share.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert share: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert share: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, shareID string) (*Share, error) {
	query := `
		SELECT share_id, credential_id, jwt_snapshot, expires_at, created_at
		FROM share_links
		WHERE share_id = $1
	`

	var share Share
	err := s.db.QueryRowContext(ctx, query, shareID).Scan(
		&share.ShareID,
		&share.CredentialID,
		&share.JWTSnapshot,
		&share.ExpiresAt,
		&share.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select share: %w", err)
	}
	return &share, nil
}

func (s *PostgresStore) Delete(ctx context.Context, shareID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM share_links WHERE share_id = $1`, shareID)
	if err != nil {
		return fmt.Errorf("delete share: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete share: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByCredential(ctx context.Context, credentialID string) ([]Share, error) {
	query := `
		SELECT share_id, credential_id, jwt_snapshot, expires_at, created_at
		FROM share_links
		WHERE credential_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, credentialID)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	var shares []Share
	for rows.Next() {
		var share Share
		if err := rows.Scan(
			&share.ShareID,
			&share.CredentialID,
			&share.JWTSnapshot,
			&share.ExpiresAt,
			&share.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return shares, nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM share_links WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired shares: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired shares: %w", err)
	}
	return int(affected), nil
}

func (s *PostgresStore) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE expires_at >= $1),
			COUNT(*) FILTER (WHERE expires_at < $1),
			COUNT(*) FILTER (WHERE expires_at >= $1 AND expires_at <= $2)
		FROM share_links
	`

	var stats Stats
	err := s.db.QueryRowContext(ctx, query, now, now.Add(24*time.Hour)).Scan(
		&stats.ActiveCount,
		&stats.ExpiredCount,
		&stats.ExpiringWithin24h,
	)
	if err != nil {
		return nil, fmt.Errorf("share stats: %w", err)
	}
	return &stats, nil
}
