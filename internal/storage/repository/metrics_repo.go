package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/adoptimizer/adoptimizer/internal/storage/models"
)

// avgConversionValue is the assumed revenue per conversion used for ROAS.
const avgConversionValue = 50.0

// MetricsRepository provides methods for managing campaign metrics.
type MetricsRepository interface {
	Insert(ctx context.Context, metric *models.CampaignMetric) error
	Summary(ctx context.Context, userID, days int) (*models.MetricsSummary, error)
	CampaignAggregates(ctx context.Context, userID, days int) ([]*models.CampaignAggregate, error)
	SeedSampleData(ctx context.Context, userID int, days int, seed int64) error
}

type metricsRepository struct {
	db *sql.DB
}

// NewMetricsRepository creates a new metrics repository.
func NewMetricsRepository(db *sql.DB) MetricsRepository {
	return &metricsRepository{db: db}
}

// Insert stores one day of campaign metrics.
func (r *metricsRepository) Insert(ctx context.Context, metric *models.CampaignMetric) error {
	if metric.CreatedAt.IsZero() {
		metric.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO campaign_metrics
			(user_id, date, impressions, clicks, spend, conversions, platform, campaign_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		metric.UserID,
		metric.Date,
		metric.Impressions,
		metric.Clicks,
		metric.Spend,
		metric.Conversions,
		metric.Platform,
		metric.CampaignName,
		metric.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	metric.ID = int(id)

	return nil
}

// Summary aggregates a user's metrics over the last `days` days. Rates with a
// zero denominator come back as zero rather than an error.
func (r *metricsRepository) Summary(ctx context.Context, userID, days int) (*models.MetricsSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(impressions), 0),
			COALESCE(SUM(clicks), 0),
			COALESCE(SUM(spend), 0),
			COALESCE(SUM(conversions), 0),
			CASE WHEN SUM(impressions) > 0
				THEN CAST(SUM(clicks) AS REAL) / SUM(impressions) ELSE 0 END,
			CASE WHEN SUM(clicks) > 0
				THEN SUM(spend) / SUM(clicks) ELSE 0 END,
			CASE WHEN SUM(clicks) > 0
				THEN CAST(SUM(conversions) AS REAL) / SUM(clicks) ELSE 0 END,
			CASE WHEN SUM(spend) > 0
				THEN (SUM(conversions) * ?) / SUM(spend) ELSE 0 END
		FROM campaign_metrics
		WHERE user_id = ? AND date >= DATE('now', ?)
	`
	row := r.db.QueryRowContext(ctx, query, avgConversionValue, userID, dayOffset(days))

	summary := &models.MetricsSummary{}
	err := row.Scan(
		&summary.TotalImpressions,
		&summary.TotalClicks,
		&summary.TotalSpend,
		&summary.TotalConversions,
		&summary.CTR,
		&summary.CPC,
		&summary.EngagementRate,
		&summary.ROAS,
	)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// CampaignAggregates rolls up metrics per campaign over the last `days` days,
// ordered by spend descending.
func (r *metricsRepository) CampaignAggregates(ctx context.Context, userID, days int) ([]*models.CampaignAggregate, error) {
	query := `
		SELECT
			campaign_name,
			platform,
			COALESCE(SUM(impressions), 0),
			COALESCE(SUM(clicks), 0),
			COALESCE(SUM(spend), 0),
			COALESCE(SUM(conversions), 0),
			CASE WHEN SUM(impressions) > 0
				THEN CAST(SUM(clicks) AS REAL) / SUM(impressions) ELSE 0 END,
			CASE WHEN SUM(clicks) > 0
				THEN SUM(spend) / SUM(clicks) ELSE 0 END,
			CASE WHEN SUM(clicks) > 0
				THEN CAST(SUM(conversions) AS REAL) / SUM(clicks) ELSE 0 END
		FROM campaign_metrics
		WHERE user_id = ? AND date >= DATE('now', ?)
		GROUP BY campaign_name, platform
		ORDER BY SUM(spend) DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, dayOffset(days))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggregates []*models.CampaignAggregate
	for rows.Next() {
		agg := &models.CampaignAggregate{}
		err := rows.Scan(
			&agg.CampaignName,
			&agg.Platform,
			&agg.Impressions,
			&agg.Clicks,
			&agg.Spend,
			&agg.Conversions,
			&agg.CTR,
			&agg.CPC,
			&agg.EngagementRate,
		)
		if err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}

var samplePlatforms = []string{"Google Ads", "Facebook", "LinkedIn"}

var sampleCampaigns = []string{
	"Brand Awareness",
	"Lead Generation Q3",
	"Retargeting",
	"Product Launch",
}

// SeedSampleData inserts deterministic demo metrics for a user, one row per
// campaign per day.
func (r *metricsRepository) SeedSampleData(ctx context.Context, userID int, days int, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	now := time.Now().UTC()

	for d := 0; d < days; d++ {
		date := now.AddDate(0, 0, -d).Format("2006-01-02")
		for i, campaign := range sampleCampaigns {
			impressions := 1000 + rng.Intn(49000)
			clicks := 10 + rng.Intn(impressions/20)
			conversions := rng.Intn(clicks/5 + 1)
			spend := 50 + rng.Float64()*950

			metric := &models.CampaignMetric{
				UserID:       userID,
				Date:         date,
				Impressions:  impressions,
				Clicks:       clicks,
				Spend:        spend,
				Conversions:  conversions,
				Platform:     samplePlatforms[i%len(samplePlatforms)],
				CampaignName: campaign,
			}
			if err := r.Insert(ctx, metric); err != nil {
				return err
			}
		}
	}
	return nil
}

// dayOffset formats a day count as a sqlite date modifier, e.g. "-30 days".
func dayOffset(days int) string {
	if days <= 0 {
		days = 30
	}
	return fmt.Sprintf("-%d days", days)
}
