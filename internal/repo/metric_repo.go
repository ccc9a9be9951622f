package repo

import (
	"context"
	"database/sql"

	"github.com/petwell/petwell/internal/model"
)

// MetricRepo reads pet health metrics recorded by the data-entry
// collaborator. LatestTime drives the weekly-plan freshness gate.
type MetricRepo struct {
	db *sql.DB
}

func NewMetricRepo(db *sql.DB) *MetricRepo {
	return &MetricRepo{db: db}
}

// LatestTime returns the newest recorded_at for a pet in unix milliseconds,
// or zero when the pet has no metrics at all.
func (r *MetricRepo) LatestTime(ctx context.Context, petID string) (int64, error) {
	const query = `SELECT COALESCE(MAX(recorded_at), 0) FROM pet_metrics WHERE pet_id = $1`
	var latest int64
	if err := r.db.QueryRowContext(ctx, query, petID).Scan(&latest); err != nil {
		return 0, err
	}
	return latest, nil
}

func (r *MetricRepo) ListRecent(ctx context.Context, petID string, limit int) ([]model.PetMetric, error) {
	const query = `
		SELECT pet_id, kind, value, unit, recorded_at
		FROM pet_metrics
		WHERE pet_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, petID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var metrics []model.PetMetric
	for rows.Next() {
		var m model.PetMetric
		if err := rows.Scan(&m.PetID, &m.Kind, &m.Value, &m.Unit, &m.RecordedAt); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
