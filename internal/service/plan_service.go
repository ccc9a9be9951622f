package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/petwell/petwell/internal/ai"
	"github.com/petwell/petwell/internal/model"
	"github.com/petwell/petwell/internal/repo"
	appErr "github.com/petwell/petwell/internal/pkg/errors"
)

const planSystemPrompt = `You are a veterinary care planner. Using the pet's
profile, recent metrics and any records you retrieve with your tools, decide
whether a weekly care plan can responsibly be produced. Respond with ONE JSON
object and nothing else:
{"allow": true|false, "reason": "why, when declining", "summary": {...},
"plan": {"monday": [..], "tuesday": [..], "wednesday": [..], "thursday": [..],
"friday": [..], "saturday": [..], "sunday": [..]}, "sources": [..]}
Decline (allow=false) when the data suggests the pet needs an examination
before a routine plan, and say why.`

const recentMetricsForPlan = 20

// PlanService is the weekly-plan state machine: freshness gate, agent
// generation, idempotent upsert, best-effort re-index of the derived text.
type PlanService struct {
	plans     *repo.PlanRepo
	metrics   *repo.MetricRepo
	pets      *repo.PetRepo
	chat      *ChatService
	documents *DocumentService
	freshness time.Duration
	now       func() time.Time
}

func NewPlanService(plans *repo.PlanRepo, metrics *repo.MetricRepo, pets *repo.PetRepo, chat *ChatService, documents *DocumentService, freshnessDays int) *PlanService {
	if freshnessDays <= 0 {
		freshnessDays = 7
	}
	return &PlanService{
		plans:     plans,
		metrics:   metrics,
		pets:      pets,
		chat:      chat,
		documents: documents,
		freshness: time.Duration(freshnessDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

type PlanResult struct {
	Allow     bool            `json:"allow"`
	Reason    string          `json:"reason,omitempty"`
	WeekStart string          `json:"week_start,omitempty"`
	Summary   json.RawMessage `json:"summary,omitempty"`
	Plan      json.RawMessage `json:"plan,omitempty"`
}

type planAgentOutput struct {
	Allow   *bool           `json:"allow"`
	Reason  string          `json:"reason"`
	Summary json.RawMessage `json:"summary"`
	Plan    json.RawMessage `json:"plan"`
	Sources json.RawMessage `json:"sources"`
}

// Generate runs the weekly-plan request for one pet. Unless force is set,
// stale metrics stop the request before the agent is ever invoked.
func (s *PlanService) Generate(ctx context.Context, ownerID, petID string, force bool) (*PlanResult, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(petID) == "" {
		return nil, appErr.ErrInvalid
	}
	logger := logutil.GetLogger(ctx).With(zap.String("owner_id", ownerID), zap.String("pet_id", petID))

	profile, err := s.pets.GetProfile(ctx, ownerID, petID)
	if err != nil {
		return nil, err
	}

	latest, err := s.metrics.LatestTime(ctx, petID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	fresh := latest > 0 && now.Sub(time.UnixMilli(latest)) <= s.freshness
	if !fresh && !force {
		logger.Info("plan generation gated on stale metrics", zap.Int64("latest_metric", latest))
		return nil, appErr.ErrMetricsOutdated
	}

	recent, err := s.metrics.ListRecent(ctx, petID, recentMetricsForPlan)
	if err != nil {
		return nil, err
	}

	output, err := s.chat.RunEphemeral(ctx, Binding{OwnerID: ownerID, PetID: petID}, planSystemPrompt, s.planRequest(profile, recent, now))
	if err != nil {
		return nil, err
	}

	var parsed planAgentOutput
	if err := ai.ExtractJSONObject(output, &parsed); err != nil {
		logger.Error("agent output did not parse", zap.Error(err))
		return nil, appErr.ErrMalformedAgentOutput
	}
	if parsed.Allow == nil {
		logger.Error("agent output missing allow field")
		return nil, appErr.ErrMalformedAgentOutput
	}
	if !*parsed.Allow {
		logger.Info("agent declined plan generation", zap.String("reason", parsed.Reason))
		return &PlanResult{Allow: false, Reason: parsed.Reason}, nil
	}
	if len(parsed.Summary) == 0 || len(parsed.Plan) == 0 {
		return nil, appErr.ErrMalformedAgentOutput
	}

	weekStart := weekStartOf(now)
	stamp := now.UnixMilli()
	plan := &model.WeeklyPlan{
		PetID:     petID,
		WeekStart: weekStart,
		Summary:   parsed.Summary,
		Plan:      parsed.Plan,
		Sources:   parsed.Sources,
		Ctime:     stamp,
		Mtime:     stamp,
	}
	if err := s.plans.Upsert(ctx, plan); err != nil {
		logger.Error("plan upsert failed", zap.Error(err))
		return nil, err
	}
	logger.Info("weekly plan stored", zap.String("week_start", weekStart))

	s.reindexPlan(ctx, ownerID, petID, weekStart, parsed)

	return &PlanResult{
		Allow:     true,
		WeekStart: weekStart,
		Summary:   parsed.Summary,
		Plan:      parsed.Plan,
	}, nil
}

func (s *PlanService) planRequest(profile *model.PetProfile, metrics []model.PetMetric, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("Produce this week's care plan.\n\nPET PROFILE:\n")
	sb.WriteString(ProfileSummary(profile))
	sb.WriteString("\n\nRECENT METRICS:\n")
	if len(metrics) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, m := range metrics {
		sb.WriteString(fmt.Sprintf("- %s: %.2f %s at %s\n",
			m.Kind, m.Value, m.Unit, time.UnixMilli(m.RecordedAt).UTC().Format("2006-01-02")))
	}
	sb.WriteString(fmt.Sprintf("\nWeek starting %s.", weekStartOf(now)))
	return sb.String()
}

// reindexPlan writes the stored plan's text back into the personal corpus so
// later searches can retrieve it. Stable ids make regeneration overwrite
// instead of duplicate. Failures here are logged and swallowed; the plan row
// is already committed.
func (s *PlanService) reindexPlan(ctx context.Context, ownerID, petID, weekStart string, parsed planAgentOutput) {
	meta := map[string]string{"week_start": weekStart}
	_, err := s.documents.Upsert(ctx, ownerID, model.CorpusPersonal, []DocumentInput{
		{
			ID:       fmt.Sprintf("plan_summary:%s:%s", petID, weekStart),
			PetID:    petID,
			DocType:  model.DocTypePlanSummary,
			Content:  s.renderPlanText(ctx, "summary", weekStart, parsed.Summary),
			Metadata: meta,
		},
		{
			ID:       fmt.Sprintf("plan_schedule:%s:%s", petID, weekStart),
			PetID:    petID,
			DocType:  model.DocTypePlanSchedule,
			Content:  s.renderPlanText(ctx, "schedule", weekStart, parsed.Plan),
			Metadata: meta,
		},
	})
	if err != nil {
		logutil.GetLogger(ctx).Warn("plan re-index failed",
			zap.String("pet_id", petID),
			zap.String("week_start", weekStart),
			zap.Error(err),
		)
	}
}

// renderPlanText flattens a stored JSON fragment into prose before it goes
// into the search index. Rendering is best effort; when the generator is
// missing or fails the raw JSON is indexed instead.
func (s *PlanService) renderPlanText(ctx context.Context, section, weekStart string, payload json.RawMessage) string {
	prompt := fmt.Sprintf(
		"Rewrite this weekly pet-care %s as two or three plain sentences an owner can read. Keep every activity and quantity, add nothing.\n\n%s",
		section, string(payload))
	text, err := s.chat.manager.Generate(ctx, prompt)
	if err != nil {
		logutil.GetLogger(ctx).Warn("plan text rendering failed, indexing raw payload",
			zap.String("section", section), zap.Error(err))
		text = string(payload)
	}
	return fmt.Sprintf("Weekly care %s for week of %s: %s", section, weekStart, text)
}

// Get returns the plan for the given week, defaulting to the current one.
func (s *PlanService) Get(ctx context.Context, ownerID, petID, weekStart string) (*model.WeeklyPlan, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(petID) == "" {
		return nil, appErr.ErrInvalid
	}
	if _, err := s.pets.GetProfile(ctx, ownerID, petID); err != nil {
		return nil, err
	}
	if weekStart == "" {
		weekStart = weekStartOf(s.now())
	}
	return s.plans.Get(ctx, petID, weekStart)
}

// weekStartOf aligns a timestamp to its Monday in UTC.
func weekStartOf(t time.Time) string {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format("2006-01-02")
}
