package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/petwell/petwell/internal/ai"
	appErr "github.com/petwell/petwell/internal/pkg/errors"
)

const (
	toolSearchRecords  = "search_records"
	toolPetProfile     = "pet_profile"
	toolNearbyServices = "nearby_services"
)

func (s *ChatService) toolDefs() []ai.ToolDef {
	return []ai.ToolDef{
		{
			Name:        toolSearchRecords,
			Description: "Search the owner's pet records and shared pet-care knowledge. Returns the most relevant snippets.",
			Params: []ai.ToolParam{
				{Name: "query", Type: "string", Description: "What to look for", Required: true},
				{Name: "top_k", Type: "integer", Description: "Maximum number of results"},
				{Name: "doc_types", Type: "string", Description: "Comma-separated document type filter"},
			},
		},
		{
			Name:        toolPetProfile,
			Description: "Look up the bound pet's profile: species, breed, age, weight, notes.",
		},
		{
			Name:        toolNearbyServices,
			Description: "List pet services near the owner's location, closest first. Requires the caller to have shared coordinates.",
			Params: []ai.ToolParam{
				{Name: "category", Type: "string", Description: "Service category filter, e.g. vet or grooming"},
				{Name: "limit", Type: "integer", Description: "Maximum number of services"},
			},
		},
	}
}

func (s *ChatService) executeTool(ctx context.Context, binding Binding, call ai.ToolCall) (map[string]interface{}, error) {
	switch call.Name {
	case toolSearchRecords:
		return s.toolSearch(ctx, binding, call.Args)
	case toolPetProfile:
		return s.toolProfile(ctx, binding)
	case toolNearbyServices:
		return s.toolNearby(ctx, binding, call.Args)
	default:
		// An unknown tool name is a contract violation by the model.
		return nil, fmt.Errorf("%w: unknown tool %s", appErr.ErrMalformedAgentOutput, call.Name)
	}
}

func (s *ChatService) toolSearch(ctx context.Context, binding Binding, args map[string]interface{}) (map[string]interface{}, error) {
	query := argString(args, "query")
	if query == "" {
		return map[string]interface{}{"error": "query is required"}, nil
	}
	topK := argInt(args, "top_k")
	if topK <= 0 {
		topK = binding.TopK
	}
	docTypes := binding.DocTypes
	if raw := argString(args, "doc_types"); raw != "" {
		docTypes = splitCSV(raw)
	}
	results, err := s.retrieval.Search(ctx, SearchInput{
		OwnerID:  binding.OwnerID,
		Query:    query,
		PetID:    binding.PetID,
		DocTypes: docTypes,
		TopK:     topK,
	})
	if err != nil {
		return nil, err
	}
	items := make([]map[string]interface{}, 0, len(results))
	for _, doc := range results {
		items = append(items, map[string]interface{}{
			"corpus":   string(doc.Corpus),
			"doc_type": doc.DocType,
			"content":  doc.Content,
			"score":    doc.Score,
		})
	}
	return map[string]interface{}{"count": len(items), "results": items}, nil
}

func (s *ChatService) toolProfile(ctx context.Context, binding Binding) (map[string]interface{}, error) {
	if binding.PetID == "" {
		return map[string]interface{}{"error": "no pet bound to this conversation"}, nil
	}
	profile, err := s.pets.GetProfile(ctx, binding.OwnerID, binding.PetID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return map[string]interface{}{"error": "pet not found"}, nil
		}
		return nil, err
	}
	return map[string]interface{}{
		"name":       profile.Name,
		"species":    profile.Species,
		"breed":      profile.Breed,
		"sex":        profile.Sex,
		"birth_date": profile.BirthDate,
		"weight_kg":  profile.WeightKg,
		"notes":      profile.Notes,
	}, nil
}

func (s *ChatService) toolNearby(ctx context.Context, binding Binding, args map[string]interface{}) (map[string]interface{}, error) {
	if binding.Lat == nil || binding.Lng == nil {
		return map[string]interface{}{"error": "caller did not share coordinates"}, nil
	}
	ranked, err := s.retrieval.NearbyServices(ctx, *binding.Lat, *binding.Lng, argString(args, "category"), argInt(args, "limit"))
	if err != nil {
		return nil, err
	}
	items := make([]map[string]interface{}, 0, len(ranked))
	for _, svc := range ranked {
		items = append(items, map[string]interface{}{
			"name":        svc.Name,
			"category":    svc.Category,
			"address":     svc.Address,
			"distance_km": svc.DistanceKm,
		})
	}
	return map[string]interface{}{"count": len(items), "services": items}, nil
}

func argString(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// argInt tolerates the number encodings different providers emit.
func argInt(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n
		}
	}
	return 0
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
