package service

import (
	"fmt"
	"strings"

	"github.com/petwell/petwell/internal/model"
)

// BuildContext renders blended retrieval results into a prompt block bounded
// by budget characters. Every included item keeps its provenance tag; an
// item that would cross the budget is dropped whole, never clipped. The
// optional profile paragraph and nearby-services block are appended after
// the budgeted part.
func BuildContext(budget int, blended []model.ScoredDocument, profile *model.PetProfile, services []model.RankedService) string {
	var sb strings.Builder
	used := 0
	for _, doc := range blended {
		item := fmt.Sprintf("[%s/%s] %s\n\n", doc.Corpus, doc.DocType, strings.TrimSpace(doc.Content))
		if budget > 0 && used+len(item) > budget {
			break
		}
		sb.WriteString(item)
		used += len(item)
	}
	if profile != nil {
		sb.WriteString("PET PROFILE:\n")
		sb.WriteString(ProfileSummary(profile))
		sb.WriteString("\n\n")
	}
	if len(services) > 0 {
		sb.WriteString("NEARBY SERVICES:\n")
		for _, svc := range services {
			sb.WriteString(fmt.Sprintf("- %s (%s), %.1f km\n", svc.Name, svc.Category, svc.DistanceKm))
		}
	}
	return strings.TrimSpace(sb.String())
}

// ProfileSummary flattens a profile into one compact paragraph for prompts.
func ProfileSummary(p *model.PetProfile) string {
	parts := []string{fmt.Sprintf("%s is a %s", p.Name, p.Species)}
	if p.Breed != "" {
		parts = append(parts, fmt.Sprintf("breed %s", p.Breed))
	}
	if p.Sex != "" {
		parts = append(parts, p.Sex)
	}
	if p.BirthDate != "" {
		parts = append(parts, fmt.Sprintf("born %s", p.BirthDate))
	}
	if p.WeightKg > 0 {
		parts = append(parts, fmt.Sprintf("weighing %.1f kg", p.WeightKg))
	}
	summary := strings.Join(parts, ", ") + "."
	if p.Notes != "" {
		summary += " " + strings.TrimSpace(p.Notes)
	}
	return summary
}
