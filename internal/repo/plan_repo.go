package repo

import (
	"context"
	"database/sql"

	"github.com/petwell/petwell/internal/model"
	appErr "github.com/petwell/petwell/internal/pkg/errors"
)

type PlanRepo struct {
	db *sql.DB
}

func NewPlanRepo(db *sql.DB) *PlanRepo {
	return &PlanRepo{db: db}
}

// Upsert keeps exactly one row per (pet_id, week_start). Regenerating the
// same week overwrites summary/plan/sources and bumps mtime, never ctime.
func (r *PlanRepo) Upsert(ctx context.Context, plan *model.WeeklyPlan) error {
	const query = `
		INSERT INTO weekly_plans (pet_id, week_start, summary, plan, sources, ctime, mtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pet_id, week_start) DO UPDATE SET
			summary = EXCLUDED.summary,
			plan = EXCLUDED.plan,
			sources = EXCLUDED.sources,
			mtime = EXCLUDED.mtime
	`
	var sources interface{}
	if len(plan.Sources) > 0 {
		sources = []byte(plan.Sources)
	}
	_, err := r.db.ExecContext(ctx, query,
		plan.PetID, plan.WeekStart, []byte(plan.Summary), []byte(plan.Plan),
		sources, plan.Ctime, plan.Mtime,
	)
	return err
}

const planColumns = `pet_id, to_char(week_start, 'YYYY-MM-DD'), summary, plan, sources, ctime, mtime`

func (r *PlanRepo) Get(ctx context.Context, petID, weekStart string) (*model.WeeklyPlan, error) {
	query := `SELECT ` + planColumns + ` FROM weekly_plans WHERE pet_id = $1 AND week_start = $2`
	return scanPlan(r.db.QueryRowContext(ctx, query, petID, weekStart))
}

// GetLatest returns the most recent plan for a pet regardless of week.
func (r *PlanRepo) GetLatest(ctx context.Context, petID string) (*model.WeeklyPlan, error) {
	query := `SELECT ` + planColumns + ` FROM weekly_plans WHERE pet_id = $1 ORDER BY week_start DESC LIMIT 1`
	return scanPlan(r.db.QueryRowContext(ctx, query, petID))
}

func scanPlan(row *sql.Row) (*model.WeeklyPlan, error) {
	var plan model.WeeklyPlan
	var summary, planBlob, sources []byte
	if err := row.Scan(&plan.PetID, &plan.WeekStart, &summary, &planBlob, &sources, &plan.Ctime, &plan.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	plan.Summary = summary
	plan.Plan = planBlob
	if len(sources) > 0 {
		plan.Sources = sources
	}
	return &plan, nil
}
