package service

import (
	"context"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/petwell/petwell/internal/ai"
	"github.com/petwell/petwell/internal/model"
	"github.com/petwell/petwell/internal/repo"
	appErr "github.com/petwell/petwell/internal/pkg/errors"
)

const chatSystemPrompt = `You are a careful pet-care assistant.
You answer questions about one owner's pets using the tools available to you:
search_records for the owner's history and shared pet-care knowledge,
pet_profile for the pet's basic facts, nearby_services for services around
the owner. Ground every recommendation in retrieved records or shared
knowledge, say so when you are unsure, and advise seeing a veterinarian for
anything urgent. Answer in the language of the question.`

// Binding is the typed per-call context the agent operates in. It is
// validated at the boundary; the model never sees raw identifiers it did
// not already have.
type Binding struct {
	OwnerID  string
	PetID    string
	TopK     int
	DocTypes []string
	Lat      *float64
	Lng      *float64
}

type ConverseInput struct {
	Binding
	ThreadID string
	Message  string
}

// retriever is the ranked read path the agent leans on, both for seeding a
// turn and for the search_records and nearby_services tools.
type retriever interface {
	Search(ctx context.Context, in SearchInput) ([]model.ScoredDocument, error)
	NearbyServices(ctx context.Context, lat, lng float64, category string, limit int) ([]model.RankedService, error)
	ContextBudget() int
}

// ChatService runs the bounded tool-calling loop and owns thread
// checkpoints. Turns on different threads never see each other; concurrent
// turns on one thread are the caller's problem and resolve last-write-wins
// at the store.
type ChatService struct {
	manager   *ai.Manager
	threads   *repo.ThreadRepo
	retrieval retriever
	pets      *repo.PetRepo
}

func NewChatService(manager *ai.Manager, threads *repo.ThreadRepo, retrieval retriever, pets *repo.PetRepo) *ChatService {
	return &ChatService{
		manager:   manager,
		threads:   threads,
		retrieval: retrieval,
		pets:      pets,
	}
}

// Converse runs one turn on a thread, creating the thread lazily on first
// use. Only a fully successful turn is committed; any failure leaves the
// thread's prior history untouched.
func (s *ChatService) Converse(ctx context.Context, in ConverseInput) (string, error) {
	if strings.TrimSpace(in.ThreadID) == "" || strings.TrimSpace(in.OwnerID) == "" {
		return "", appErr.ErrInvalid
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return "", appErr.ErrInvalid
	}
	if max := s.manager.MaxInputChars(); max > 0 && len(message) > max {
		return "", appErr.ErrInvalid
	}

	thread, err := s.threads.Get(ctx, in.ThreadID)
	switch {
	case err == nil:
		if thread.OwnerID != in.OwnerID {
			return "", appErr.ErrNotFound
		}
	case appErr.IsNotFound(err):
		thread = &model.ChatThread{
			ThreadID: in.ThreadID,
			OwnerID:  in.OwnerID,
			PetID:    in.PetID,
			Ctime:    time.Now().UnixMilli(),
		}
	default:
		return "", err
	}

	history := make([]ai.ChatMessage, 0, len(thread.Messages)+1)
	for _, msg := range thread.Messages {
		role := ai.RoleUser
		if msg.Role == model.RoleAssistant {
			role = ai.RoleModel
		}
		history = append(history, ai.ChatMessage{Role: role, Text: msg.Text})
	}
	history = append(history, ai.ChatMessage{Role: ai.RoleUser, Text: message})

	reply, err := s.runToolLoop(ctx, in.Binding, chatSystemPrompt, history)
	if err != nil {
		return "", err
	}

	now := time.Now().UnixMilli()
	thread.Messages = append(thread.Messages,
		model.ChatMessage{Role: model.RoleUser, Text: message, Ctime: now},
		model.ChatMessage{Role: model.RoleAssistant, Text: reply, Ctime: now},
	)
	thread.Mtime = now
	if thread.Ctime == 0 {
		thread.Ctime = now
	}
	if err := s.threads.Save(ctx, thread); err != nil {
		return "", err
	}
	return reply, nil
}

// RunEphemeral runs the same tool loop without any thread state. The weekly
// plan orchestrator uses it for one-shot structured generations.
func (s *ChatService) RunEphemeral(ctx context.Context, binding Binding, system, userMessage string) (string, error) {
	history := []ai.ChatMessage{{Role: ai.RoleUser, Text: userMessage}}
	return s.runToolLoop(ctx, binding, system, history)
}

// runToolLoop seeds the turn with a budgeted context block retrieved against
// the latest user message, then drives the model until it answers without
// tool calls or the iteration cap trips. A cap breach is a fatal turn
// failure, not a silent truncation.
func (s *ChatService) runToolLoop(ctx context.Context, binding Binding, system string, history []ai.ChatMessage) (string, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("owner_id", binding.OwnerID))
	if block := s.turnContext(ctx, binding, lastUserText(history)); block != "" {
		system = system + "\n\nCONTEXT:\n" + block
	}
	tools := s.toolDefs()
	working := append([]ai.ChatMessage(nil), history...)

	for turn := 0; turn < s.manager.MaxToolTurns(); turn++ {
		resp, err := s.manager.Chat(ctx, system, working, tools)
		if err != nil {
			logger.Error("model call failed", zap.Int("turn", turn), zap.Error(err))
			return "", appErr.ErrAIUnavailable
		}
		if len(resp.ToolCalls) == 0 {
			text := strings.TrimSpace(resp.Text)
			if text == "" {
				return "", appErr.ErrMalformedAgentOutput
			}
			return text, nil
		}

		working = append(working, ai.ChatMessage{
			Role:      ai.RoleModel,
			Text:      resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		results := make([]ai.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			logger.Debug("executing tool call", zap.Int("turn", turn), zap.String("tool", call.Name))
			content, err := s.executeTool(ctx, binding, call)
			if err != nil {
				logger.Error("tool call failed", zap.String("tool", call.Name), zap.Error(err))
				return "", err
			}
			results = append(results, ai.ToolResult{ID: call.ID, Name: call.Name, Content: content})
		}
		working = append(working, ai.ChatMessage{Role: ai.RoleTool, ToolResults: results})
	}
	logger.Warn("tool loop exceeded iteration cap")
	return "", appErr.ErrToolLoopExceeded
}

// turnContext retrieves against the user's latest message and renders the
// blended records, the bound pet's profile, and nearby services into one
// budgeted block. Retrieval trouble degrades to an unseeded turn; the same
// data stays reachable through the tools.
func (s *ChatService) turnContext(ctx context.Context, binding Binding, query string) string {
	if query == "" {
		return ""
	}
	logger := logutil.GetLogger(ctx).With(zap.String("owner_id", binding.OwnerID))
	blended, err := s.retrieval.Search(ctx, SearchInput{
		OwnerID:  binding.OwnerID,
		Query:    query,
		PetID:    binding.PetID,
		DocTypes: binding.DocTypes,
		TopK:     binding.TopK,
	})
	if err != nil {
		logger.Warn("turn context retrieval failed", zap.Error(err))
		blended = nil
	}
	var profile *model.PetProfile
	if binding.PetID != "" {
		p, err := s.pets.GetProfile(ctx, binding.OwnerID, binding.PetID)
		switch {
		case err == nil:
			profile = p
		case !appErr.IsNotFound(err):
			logger.Warn("turn context profile lookup failed", zap.Error(err))
		}
	}
	var services []model.RankedService
	if binding.Lat != nil && binding.Lng != nil {
		ranked, err := s.retrieval.NearbyServices(ctx, *binding.Lat, *binding.Lng, "", 0)
		if err != nil {
			logger.Warn("turn context services lookup failed", zap.Error(err))
		} else {
			services = ranked
		}
	}
	return BuildContext(s.retrieval.ContextBudget(), blended, profile, services)
}

func lastUserText(history []ai.ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == ai.RoleUser {
			return strings.TrimSpace(history[i].Text)
		}
	}
	return ""
}
