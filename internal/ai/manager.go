package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ManagerConfig struct {
	Timeout       int
	MaxInputChars int
	MaxToolTurns  int
}

// Manager fronts one configured provider with per-call timeouts. It is the
// only path the rest of the code uses to reach a model.
type Manager struct {
	chat     IChatModel
	gen      IGenerator
	embedder IEmbedder
	cfg      ManagerConfig
}

func NewManager(chat IChatModel, gen IGenerator, embedder IEmbedder, cfg ManagerConfig) *Manager {
	return &Manager{
		chat:     chat,
		gen:      gen,
		embedder: embedder,
		cfg:      cfg,
	}
}

func (m *Manager) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if m.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	return m.embedder.Embed(ctx, text, taskType)
}

func (m *Manager) Generate(ctx context.Context, prompt string) (string, error) {
	if m.gen == nil {
		return "", fmt.Errorf("generator not configured")
	}
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	resp, err := m.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}

// Chat runs one model step of a tool-calling conversation. The agent loop
// above decides whether the returned tool calls get executed.
func (m *Manager) Chat(ctx context.Context, system string, messages []ChatMessage, tools []ToolDef) (*ChatResponse, error) {
	if m.chat == nil {
		return nil, fmt.Errorf("chat model not configured")
	}
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	return m.chat.Chat(ctx, system, messages, tools)
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
}

func (m *Manager) MaxInputChars() int {
	return m.cfg.MaxInputChars
}

func (m *Manager) MaxToolTurns() int {
	if m.cfg.MaxToolTurns <= 0 {
		return 6
	}
	return m.cfg.MaxToolTurns
}

func (m *Manager) EmbeddingModelName() string {
	if m.embedder == nil {
		return ""
	}
	return m.embedder.ModelName()
}

// ExtractJSONObject pulls the first JSON object out of model output,
// tolerating markdown code fences and surrounding prose.
func ExtractJSONObject(output string, dst interface{}) error {
	clean := strings.TrimSpace(output)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no json object in output")
	}
	if err := json.Unmarshal([]byte(clean[start:end+1]), dst); err != nil {
		return fmt.Errorf("parse json object: %w", err)
	}
	return nil
}
