package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/adoptimizer/adoptimizer/internal/storage/models"
)

// HistoryRepository stores prediction results, optimizer actions, and
// recommendation texts for later retrieval.
type HistoryRepository interface {
	SavePrediction(ctx context.Context, record *models.PredictionRecord) error
	ListPredictions(ctx context.Context, userID, limit int) ([]*models.PredictionRecord, error)
	SaveOptimization(ctx context.Context, record *models.OptimizationActionRecord) error
	ListOptimizations(ctx context.Context, userID, limit int) ([]*models.OptimizationActionRecord, error)
	SaveRecommendation(ctx context.Context, rec *models.Recommendation) error
	ListRecommendations(ctx context.Context, userID, limit int) ([]*models.Recommendation, error)
}

type historyRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *sql.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// SavePrediction stores a prediction record, assigning an ID if unset.
func (r *historyRepository) SavePrediction(ctx context.Context, record *models.PredictionRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO predictions (id, user_id, input_json, result_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.InputJSON,
		record.ResultJSON,
		record.CreatedAt,
	)
	return err
}

// ListPredictions returns a user's most recent predictions, newest first.
func (r *historyRepository) ListPredictions(ctx context.Context, userID, limit int) ([]*models.PredictionRecord, error) {
	query := `
		SELECT id, user_id, input_json, result_json, created_at
		FROM predictions
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.PredictionRecord
	for rows.Next() {
		record := &models.PredictionRecord{}
		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.InputJSON,
			&record.ResultJSON,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SaveOptimization stores one optimizer budget action.
func (r *historyRepository) SaveOptimization(ctx context.Context, record *models.OptimizationActionRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO optimization_actions
			(id, user_id, campaign, action, confidence, predicted_ctr, predicted_cpc, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.Campaign,
		record.Action,
		record.Confidence,
		record.PredictedCTR,
		record.PredictedCPC,
		record.CreatedAt,
	)
	return err
}

// ListOptimizations returns a user's most recent optimizer actions, newest first.
func (r *historyRepository) ListOptimizations(ctx context.Context, userID, limit int) ([]*models.OptimizationActionRecord, error) {
	query := `
		SELECT id, user_id, campaign, action, confidence, predicted_ctr, predicted_cpc, created_at
		FROM optimization_actions
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.OptimizationActionRecord
	for rows.Next() {
		record := &models.OptimizationActionRecord{}
		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Campaign,
			&record.Action,
			&record.Confidence,
			&record.PredictedCTR,
			&record.PredictedCPC,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SaveRecommendation stores a recommendation text for a campaign.
func (r *historyRepository) SaveRecommendation(ctx context.Context, rec *models.Recommendation) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO recommendations (user_id, campaign_name, recommendation_text, confidence_score, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		rec.UserID,
		rec.CampaignName,
		rec.RecommendationText,
		rec.ConfidenceScore,
		rec.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = int(id)

	return nil
}

// ListRecommendations returns a user's most recent recommendations, newest first.
func (r *historyRepository) ListRecommendations(ctx context.Context, userID, limit int) ([]*models.Recommendation, error) {
	query := `
		SELECT id, user_id, campaign_name, recommendation_text, confidence_score, created_at
		FROM recommendations
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.Recommendation
	for rows.Next() {
		rec := &models.Recommendation{}
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.CampaignName,
			&rec.RecommendationText,
			&rec.ConfidenceScore,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}
