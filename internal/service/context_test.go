package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petwell/petwell/internal/model"
)

func TestBuildContextKeepsProvenanceTags(t *testing.T) {
	blended := []model.ScoredDocument{
		{Document: model.Document{DocType: model.DocTypeChatNote, Content: "Momo scratched her ear"}, Corpus: model.CorpusPersonal},
		{Document: model.Document{DocType: model.DocTypeKnowledge, Content: "Ear scratching can indicate mites"}, Corpus: model.CorpusShared},
	}
	out := BuildContext(8000, blended, nil, nil)
	require.Contains(t, out, "[personal/chat_note] Momo scratched her ear")
	require.Contains(t, out, "[shared/knowledge] Ear scratching can indicate mites")
}

func TestBuildContextDropsWholeItemsAtBudget(t *testing.T) {
	blended := []model.ScoredDocument{
		{Document: model.Document{DocType: model.DocTypeChatNote, Content: strings.Repeat("a", 50)}, Corpus: model.CorpusPersonal},
		{Document: model.Document{DocType: model.DocTypeChatNote, Content: strings.Repeat("b", 500)}, Corpus: model.CorpusPersonal},
	}
	out := BuildContext(100, blended, nil, nil)
	require.Contains(t, out, strings.Repeat("a", 50))
	// The oversized second item is dropped whole, never clipped.
	require.NotContains(t, out, "b")
}

func TestBuildContextAppendsProfileAndServices(t *testing.T) {
	profile := &model.PetProfile{
		Name: "Momo", Species: "cat", Breed: "mixed", Sex: "female",
		BirthDate: "2021-03-01", WeightKg: 4.2, Notes: "Indoor only.",
	}
	services := []model.RankedService{
		{ServiceLocation: model.ServiceLocation{Name: "Happy Vet", Category: "vet"}, DistanceKm: 1.25},
	}
	out := BuildContext(8000, nil, profile, services)
	require.Contains(t, out, "PET PROFILE:")
	require.Contains(t, out, "Momo is a cat, breed mixed, female, born 2021-03-01, weighing 4.2 kg. Indoor only.")
	require.Contains(t, out, "NEARBY SERVICES:")
	require.Contains(t, out, "- Happy Vet (vet), 1.2 km")
}

func TestBuildContextEmpty(t *testing.T) {
	require.Equal(t, "", BuildContext(8000, nil, nil, nil))
}
