package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petwell/petwell/internal/model"
	"github.com/petwell/petwell/internal/repo"
)

func TestDocumentRepoUpsertIdempotent(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	docs := repo.NewDocumentRepo(db)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	doc := model.Document{
		ID:        "doc-1",
		OwnerID:   "owner-1",
		PetID:     "pet-1",
		DocType:   model.DocTypeChatNote,
		Content:   "Momo sneezed twice today",
		Metadata:  map[string]string{"source": "chat"},
		Embedding: testVector(1),
		Ctime:     now,
		Mtime:     now,
	}
	n, err := docs.Upsert(ctx, model.CorpusPersonal, []model.Document{doc})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Same id again: content and mtime move, ctime and ownership stay.
	doc.Content = "Momo sneezed and refused food"
	doc.Mtime = now + 1000
	doc.Ctime = now + 1000
	doc.OwnerID = "someone-else"
	_, err = docs.Upsert(ctx, model.CorpusPersonal, []model.Document{doc})
	require.NoError(t, err)

	fetched, err := docs.Query(ctx, model.CorpusPersonal, repo.DocumentFilter{OwnerID: "owner-1"})
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	require.Equal(t, "Momo sneezed and refused food", fetched[0].Content)
	require.Equal(t, "owner-1", fetched[0].OwnerID)
	require.Equal(t, now, fetched[0].Ctime)
	require.Equal(t, now+1000, fetched[0].Mtime)
	require.Equal(t, "chat", fetched[0].Metadata["source"])
}

func TestDocumentRepoQueryFilters(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	docs := repo.NewDocumentRepo(db)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	seed := []model.Document{
		{ID: "a", OwnerID: "owner-1", PetID: "pet-1", DocType: model.DocTypeChatNote, Content: "a", Ctime: now, Mtime: now},
		{ID: "b", OwnerID: "owner-1", PetID: "pet-2", DocType: model.DocTypeMetricNote, Content: "b", Ctime: now, Mtime: now + 1},
		{ID: "c", OwnerID: "owner-1", PetID: "", DocType: model.DocTypeChatNote, Content: "c", Ctime: now, Mtime: now + 2},
		{ID: "d", OwnerID: "owner-2", PetID: "pet-9", DocType: model.DocTypeChatNote, Content: "d", Ctime: now, Mtime: now + 3},
	}
	_, err := docs.Upsert(ctx, model.CorpusPersonal, seed)
	require.NoError(t, err)

	// Owner filter.
	got, err := docs.Query(ctx, model.CorpusPersonal, repo.DocumentFilter{OwnerID: "owner-1"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Pet filter keeps pet-less rows.
	got, err = docs.Query(ctx, model.CorpusPersonal, repo.DocumentFilter{OwnerID: "owner-1", PetID: "pet-1"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Doc type filter.
	got, err = docs.Query(ctx, model.CorpusPersonal, repo.DocumentFilter{
		OwnerID:  "owner-1",
		DocTypes: []string{model.DocTypeMetricNote},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "b", got[0].ID)
}

func TestDocumentRepoQueryPetFilterWithLimit(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	docs := repo.NewDocumentRepo(db)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	// Newer rows for other pets must not crowd the limit window, so the pet
	// filter has to apply before the limit.
	seed := []model.Document{
		{ID: "mine", OwnerID: "owner-1", PetID: "pet-1", DocType: model.DocTypeChatNote, Content: "mine", Ctime: now, Mtime: now},
		{ID: "unbound", OwnerID: "owner-1", PetID: "", DocType: model.DocTypeChatNote, Content: "unbound", Ctime: now, Mtime: now + 1},
		{ID: "other-1", OwnerID: "owner-1", PetID: "pet-2", DocType: model.DocTypeChatNote, Content: "x", Ctime: now, Mtime: now + 2},
		{ID: "other-2", OwnerID: "owner-1", PetID: "pet-2", DocType: model.DocTypeChatNote, Content: "x", Ctime: now, Mtime: now + 3},
		{ID: "other-3", OwnerID: "owner-1", PetID: "pet-2", DocType: model.DocTypeChatNote, Content: "x", Ctime: now, Mtime: now + 4},
	}
	_, err := docs.Upsert(ctx, model.CorpusPersonal, seed)
	require.NoError(t, err)

	got, err := docs.Query(ctx, model.CorpusPersonal, repo.DocumentFilter{
		OwnerID: "owner-1",
		PetID:   "pet-1",
		Limit:   2,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "unbound", got[0].ID)
	require.Equal(t, "mine", got[1].ID)
}

func TestDocumentRepoSearchVectors(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	docs := repo.NewDocumentRepo(db)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	seed := []model.Document{
		{ID: "close", OwnerID: "owner-1", PetID: "pet-1", DocType: model.DocTypeChatNote, Content: "close", Embedding: testVector(1), Ctime: now, Mtime: now},
		{ID: "far", OwnerID: "owner-1", PetID: "pet-1", DocType: model.DocTypeChatNote, Content: "far", Embedding: testVector(500), Ctime: now, Mtime: now},
		{ID: "other-owner", OwnerID: "owner-2", PetID: "pet-9", DocType: model.DocTypeChatNote, Content: "hidden", Embedding: testVector(1), Ctime: now, Mtime: now},
		{ID: "no-embedding", OwnerID: "owner-1", PetID: "pet-1", DocType: model.DocTypeChatNote, Content: "raw", Ctime: now, Mtime: now},
	}
	_, err := docs.Upsert(ctx, model.CorpusPersonal, seed)
	require.NoError(t, err)

	results, err := docs.SearchVectors(ctx, model.CorpusPersonal, testVector(1),
		repo.DocumentFilter{OwnerID: "owner-1", PetID: "pet-1"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "close", results[0].ID)
	require.Equal(t, "far", results[1].ID)
	require.Greater(t, results[0].Score, results[1].Score)
	require.Equal(t, model.CorpusPersonal, results[0].Corpus)
	require.InDelta(t, 1.0, results[0].Score, 0.001)
}
