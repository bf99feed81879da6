package storage

import (
	"context"
	"errors"
	"time"

	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("analysis not found")

// Store keeps the analysis history. Records are snapshots of returned
// results; the orchestrator itself never persists anything.
//
// Get and List are scoped to the owner: a record of another user is
// ErrNotFound, and an empty userID owns nothing.
type Store interface {
	Save(ctx context.Context, rec *models.AnalysisRecordDTO) (string, error)
	Get(ctx context.Context, userID, id string) (*models.AnalysisRecordDTO, error)
	List(ctx context.Context, userID string, limit int) ([]models.AnalysisSummaryDTO, error)
	Close() error
}

// prepare copies the record and assigns id and timestamp when missing
func prepare(rec *models.AnalysisRecordDTO) *models.AnalysisRecordDTO {
	stored := *rec
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	return &stored
}
