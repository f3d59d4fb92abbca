package repository

import (
	"context"

	"github.com/agrosavjet/agro-bot/internal/domain"
)

type HistoryRepository interface {
	Create(ctx context.Context, rec *domain.QueryRecord) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.QueryRecord, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}
