package job

import (
	"context"
	"errors"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/petwell/petwell/internal/pkg/errors"
	"github.com/petwell/petwell/internal/repo"
	"github.com/petwell/petwell/internal/service"
)

// PlanRefreshJob regenerates the current-week care plan for every pet.
// Pets whose metrics are stale or whose plan the agent declines are
// skipped, not failed: the owner can still trigger a forced run by hand.
type PlanRefreshJob struct {
	pets  *repo.PetRepo
	plans *service.PlanService
}

func NewPlanRefreshJob(pets *repo.PetRepo, plans *service.PlanService) *PlanRefreshJob {
	return &PlanRefreshJob{pets: pets, plans: plans}
}

func (j *PlanRefreshJob) Name() string {
	return "plan_refresh"
}

func (j *PlanRefreshJob) Run(ctx context.Context) error {
	pets, err := j.pets.ListAll(ctx)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx)
	var generated, skipped, failed int
	for _, pet := range pets {
		res, err := j.plans.Generate(ctx, pet.OwnerID, pet.ID, false)
		if err != nil {
			if errors.Is(err, appErr.ErrMetricsOutdated) {
				skipped++
				continue
			}
			failed++
			logger.Error("plan refresh failed for pet", zap.String("pet_id", pet.ID), zap.Error(err))
			continue
		}
		if !res.Allow {
			skipped++
			continue
		}
		generated++
	}
	logger.Info("plan refresh pass finished",
		zap.Int("pets", len(pets)),
		zap.Int("generated", generated),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))
	return nil
}
