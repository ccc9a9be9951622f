package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned when a provider is not configured or the
// upstream call failed. Callers surface it generically and never retry here.
var ErrUnavailable = errors.New("ai provider unavailable")

const (
	RoleUser  = "user"
	RoleModel = "model"
	RoleTool  = "tool"
)

// ChatMessage is one provider-agnostic turn in a tool-calling conversation.
// A model message may carry tool calls; a tool message carries their results.
type ChatMessage struct {
	Role        string       `json:"role"`
	Text        string       `json:"text,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// ToolCall carries the provider-issued call ID so results can be matched
// back even when the model calls the same tool twice in one step.
type ToolCall struct {
	ID   string                 `json:"id,omitempty"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

type ToolResult struct {
	ID      string                 `json:"id,omitempty"`
	Name    string                 `json:"name"`
	Content map[string]interface{} `json:"content"`
}

// ToolDef declares a callable tool to the model. Params is a flat object
// schema, which is all the built-in tools need.
type ToolDef struct {
	Name        string
	Description string
	Params      []ToolParam
}

type ToolParam struct {
	Name        string
	Type        string // "string", "number", "integer", "boolean"
	Description string
	Required    bool
}

// ChatResponse is a single model step: either a final answer (no tool calls)
// or a batch of tool calls to execute before the next step.
type ChatResponse struct {
	Text      string
	ToolCalls []ToolCall
}

type IProvider interface {
	Name() string
	Generate(ctx context.Context, model string, prompt string) (string, error)
	Chat(ctx context.Context, model string, system string, messages []ChatMessage, tools []ToolDef) (*ChatResponse, error)
	Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error)
}

type IGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type IChatModel interface {
	Chat(ctx context.Context, system string, messages []ChatMessage, tools []ToolDef) (*ChatResponse, error)
}

type IEmbedder interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
	ModelName() string
}

type generator struct {
	provider IProvider
	model    string
}

func NewGenerator(p IProvider, model string) IGenerator {
	return &generator{provider: p, model: model}
}

func (g *generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.provider.Generate(ctx, g.model, prompt)
}

type chatModel struct {
	provider IProvider
	model    string
}

func NewChatModel(p IProvider, model string) IChatModel {
	return &chatModel{provider: p, model: model}
}

func (m *chatModel) Chat(ctx context.Context, system string, messages []ChatMessage, tools []ToolDef) (*ChatResponse, error) {
	return m.provider.Chat(ctx, m.model, system, messages, tools)
}

type embedder struct {
	provider IProvider
	model    string
}

func NewEmbedder(p IProvider, model string) IEmbedder {
	return &embedder{provider: p, model: model}
}

func (e *embedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return e.provider.Embed(ctx, e.model, text, taskType)
}

func (e *embedder) ModelName() string {
	return e.model
}

type ProviderFactory func(args interface{}) (IProvider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (IProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}
