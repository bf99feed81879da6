package storage

import (
	"context"
	"sync"

	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
)

// MemoryStorage keeps the last maxItems analyses in memory
type MemoryStorage struct {
	mu       sync.RWMutex
	records  map[string]*models.AnalysisRecordDTO
	order    []string // oldest first
	maxItems int
}

func NewMemoryStorage(maxItems int) *MemoryStorage {
	return &MemoryStorage{
		records:  make(map[string]*models.AnalysisRecordDTO),
		maxItems: maxItems,
	}
}

func (s *MemoryStorage) Save(_ context.Context, rec *models.AnalysisRecordDTO) (string, error) {
	stored := prepare(rec)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[stored.ID]; !exists {
		s.order = append(s.order, stored.ID)
	}
	s.records[stored.ID] = stored

	// Evict oldest
	for s.maxItems > 0 && len(s.order) > s.maxItems {
		delete(s.records, s.order[0])
		s.order = s.order[1:]
	}
	return stored.ID, nil
}

func (s *MemoryStorage) Get(_ context.Context, userID, id string) (*models.AnalysisRecordDTO, error) {
	if userID == "" {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok || rec.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// List returns the user's summaries, newest first
func (s *MemoryStorage) List(_ context.Context, userID string, limit int) ([]models.AnalysisSummaryDTO, error) {
	out := []models.AnalysisSummaryDTO{}
	if userID == "" {
		return out, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if rec := s.records[s.order[i]]; rec.UserID == userID {
			out = append(out, rec.Summary())
		}
	}
	return out, nil
}

func (s *MemoryStorage) Close() error { return nil }
