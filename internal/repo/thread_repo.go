package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/petwell/petwell/internal/model"
	appErr "github.com/petwell/petwell/internal/pkg/errors"
)

// ThreadRepo owns conversational checkpoints. One row per thread_id; a
// committed turn rewrites the whole message history (last write wins).
type ThreadRepo struct {
	db *sql.DB
}

func NewThreadRepo(db *sql.DB) *ThreadRepo {
	return &ThreadRepo{db: db}
}

func (r *ThreadRepo) Get(ctx context.Context, threadID string) (*model.ChatThread, error) {
	const query = `
		SELECT thread_id, owner_id, pet_id, messages, checkpoint, ctime, mtime
		FROM chat_threads
		WHERE thread_id = $1
	`
	row := r.db.QueryRowContext(ctx, query, threadID)
	var thread model.ChatThread
	var messages, checkpoint []byte
	if err := row.Scan(&thread.ThreadID, &thread.OwnerID, &thread.PetID, &messages, &checkpoint, &thread.Ctime, &thread.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(messages, &thread.Messages); err != nil {
		return nil, err
	}
	if len(checkpoint) > 0 {
		thread.Checkpoint = checkpoint
	}
	return &thread, nil
}

func (r *ThreadRepo) Save(ctx context.Context, thread *model.ChatThread) error {
	messages, err := json.Marshal(thread.Messages)
	if err != nil {
		return err
	}
	var checkpoint interface{}
	if len(thread.Checkpoint) > 0 {
		checkpoint = []byte(thread.Checkpoint)
	}
	const query = `
		INSERT INTO chat_threads (thread_id, owner_id, pet_id, messages, checkpoint, ctime, mtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (thread_id) DO UPDATE SET
			messages = EXCLUDED.messages,
			checkpoint = EXCLUDED.checkpoint,
			mtime = EXCLUDED.mtime
	`
	_, err = r.db.ExecContext(ctx, query,
		thread.ThreadID, thread.OwnerID, thread.PetID, messages, checkpoint,
		thread.Ctime, thread.Mtime,
	)
	return err
}
