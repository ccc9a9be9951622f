package model

import "encoding/json"

// ChatThread holds one conversation's committed history. Threads never share
// state; a turn that fails mid-flight appends nothing.
type ChatThread struct {
	ThreadID   string          `json:"thread_id"`
	OwnerID    string          `json:"owner_id"`
	PetID      string          `json:"pet_id,omitempty"`
	Messages   []ChatMessage   `json:"messages"`
	Checkpoint json.RawMessage `json:"checkpoint,omitempty"`
	Ctime      int64           `json:"ctime"`
	Mtime      int64           `json:"mtime"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role  string `json:"role"`
	Text  string `json:"text"`
	Ctime int64  `json:"ctime"`
}
