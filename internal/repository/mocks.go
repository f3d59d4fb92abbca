package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agrosavjet/agro-bot/internal/domain"
)

type MockHistoryRepository struct {
	mu      sync.RWMutex
	records []domain.QueryRecord
	nextID  int64

	CreateErr error
	ListErr   error
}

func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{nextID: 1}
}

func (m *MockHistoryRepository) Create(ctx context.Context, rec *domain.QueryRecord) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = m.nextID
	m.nextID++
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *MockHistoryRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.QueryRecord, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.QueryRecord
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}

	// newest first, like the SQL implementation
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockHistoryRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cnt := 0
	for _, rec := range m.records {
		if rec.UserID == userID {
			cnt++
		}
	}
	return cnt, nil
}

func (m *MockHistoryRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -days)
	var kept []domain.QueryRecord
	var removed int64
	for _, rec := range m.records {
		if rec.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return removed, nil
}

var _ HistoryRepository = (*MockHistoryRepository)(nil)
