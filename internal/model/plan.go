package model

import "encoding/json"

// WeeklyPlan is the per-pet care plan artifact. Exactly one row exists per
// (pet_id, week_start); regeneration overwrites in place.
type WeeklyPlan struct {
	PetID     string          `json:"pet_id"`
	WeekStart string          `json:"week_start"`
	Summary   json.RawMessage `json:"summary"`
	Plan      json.RawMessage `json:"plan"`
	Sources   json.RawMessage `json:"sources,omitempty"`
	Ctime     int64           `json:"ctime"`
	Mtime     int64           `json:"mtime"`
}
