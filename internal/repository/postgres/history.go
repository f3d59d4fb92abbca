package postgres

import (
	"context"
	"fmt"

	"github.com/agrosavjet/agro-bot/internal/domain"
)

type HistoryRepo struct {
	db *DB
}

func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Create(ctx context.Context, rec *domain.QueryRecord) error {
	query := `
        INSERT INTO query_history (user_id, query, search_type, success, source_count)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `

	err := r.db.Pool.QueryRow(ctx, query,
		rec.UserID,
		rec.Query,
		rec.SearchType,
		rec.Success,
		rec.SourceCount,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("create history record: %w", err)
	}

	return nil
}

func (r *HistoryRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.QueryRecord, error) {
	query := `
        SELECT id, user_id, query, search_type, success, source_count, created_at
        FROM query_history
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `

	rows, err := r.db.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var records []domain.QueryRecord
	for rows.Next() {
		var rec domain.QueryRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Query,
			&rec.SearchType,
			&rec.Success,
			&rec.SourceCount,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return records, nil
}

func (r *HistoryRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM query_history WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}

func (r *HistoryRepo) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	result, err := r.db.Pool.Exec(ctx,
		`DELETE FROM query_history WHERE created_at < NOW() - make_interval(days => $1)`, days,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old history: %w", err)
	}
	return result.RowsAffected(), nil
}
