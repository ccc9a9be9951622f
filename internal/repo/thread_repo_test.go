package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petwell/petwell/internal/model"
	appErr "github.com/petwell/petwell/internal/pkg/errors"
	"github.com/petwell/petwell/internal/repo"
)

func TestThreadRepoSaveAndGet(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	threads := repo.NewThreadRepo(db)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	_, err := threads.Get(ctx, "t-1")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	thread := &model.ChatThread{
		ThreadID: "t-1",
		OwnerID:  "owner-1",
		PetID:    "pet-1",
		Messages: []model.ChatMessage{
			{Role: model.RoleUser, Text: "is sneezing normal?", Ctime: now},
			{Role: model.RoleAssistant, Text: "Occasional sneezing is fine.", Ctime: now},
		},
		Ctime: now,
		Mtime: now,
	}
	require.NoError(t, threads.Save(ctx, thread))

	got, err := threads.Get(ctx, "t-1")
	require.NoError(t, err)
	require.Equal(t, "owner-1", got.OwnerID)
	require.Len(t, got.Messages, 2)
	require.Equal(t, model.RoleAssistant, got.Messages[1].Role)

	// A later save rewrites the whole history, last write wins.
	thread.Messages = append(thread.Messages,
		model.ChatMessage{Role: model.RoleUser, Text: "and coughing?", Ctime: now + 1000},
		model.ChatMessage{Role: model.RoleAssistant, Text: "Coughing deserves a vet visit.", Ctime: now + 1000},
	)
	thread.Mtime = now + 1000
	require.NoError(t, threads.Save(ctx, thread))

	got, err = threads.Get(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 4)
	require.Equal(t, now+1000, got.Mtime)
}
