package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newOpenAIStub(t *testing.T, captured *openAIChatRequest, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestOpenAIChatDecodesToolCallIDs(t *testing.T) {
	var captured openAIChatRequest
	srv := newOpenAIStub(t, &captured, `{"choices":[{"message":{"content":"","tool_calls":[
		{"id":"call_x1","type":"function","function":{"name":"search_records","arguments":"{\"query\":\"ear\"}"}},
		{"id":"call_x2","type":"function","function":{"name":"search_records","arguments":"{\"query\":\"diet\"}"}}
	]}}]}`)
	defer srv.Close()

	p := &openAIProvider{apiKey: "test-key", baseURL: srv.URL}
	resp, err := p.Chat(context.Background(), "gpt-test", "system", []ChatMessage{{Role: RoleUser, Text: "hi"}}, nil)
	require.NoError(t, err)

	// Two calls to the same tool stay distinguishable by provider ID.
	require.Len(t, resp.ToolCalls, 2)
	require.Equal(t, "call_x1", resp.ToolCalls[0].ID)
	require.Equal(t, "call_x2", resp.ToolCalls[1].ID)
	require.Equal(t, "ear", resp.ToolCalls[0].Args["query"])
	require.Equal(t, "diet", resp.ToolCalls[1].Args["query"])
}

func TestOpenAIChatReplaysToolCallIDs(t *testing.T) {
	var captured openAIChatRequest
	srv := newOpenAIStub(t, &captured, `{"choices":[{"message":{"content":"done"}}]}`)
	defer srv.Close()

	history := []ChatMessage{
		{Role: RoleUser, Text: "find vets"},
		{Role: RoleModel, ToolCalls: []ToolCall{
			{ID: "call_x1", Name: "nearby_services", Args: map[string]interface{}{"category": "vet"}},
			{ID: "call_x2", Name: "nearby_services", Args: map[string]interface{}{"category": "grooming"}},
		}},
		{Role: RoleTool, ToolResults: []ToolResult{
			{ID: "call_x1", Name: "nearby_services", Content: map[string]interface{}{"count": 1}},
			{ID: "call_x2", Name: "nearby_services", Content: map[string]interface{}{"count": 0}},
		}},
	}

	p := &openAIProvider{apiKey: "test-key", baseURL: srv.URL}
	resp, err := p.Chat(context.Background(), "gpt-test", "system", history, nil)
	require.NoError(t, err)
	require.Equal(t, "done", resp.Text)

	// system + user + assistant + one tool message per result.
	require.Len(t, captured.Messages, 5)
	assistant := captured.Messages[2]
	require.Len(t, assistant.ToolCalls, 2)
	require.Equal(t, "call_x1", assistant.ToolCalls[0].ID)
	require.Equal(t, "call_x2", assistant.ToolCalls[1].ID)
	require.Equal(t, "call_x1", captured.Messages[3].ToolCallID)
	require.Equal(t, "call_x2", captured.Messages[4].ToolCallID)
}

func TestOpenAIChatFallsBackToNameDerivedIDs(t *testing.T) {
	var captured openAIChatRequest
	srv := newOpenAIStub(t, &captured, `{"choices":[{"message":{"content":"ok"}}]}`)
	defer srv.Close()

	// Histories persisted before call IDs were recorded carry none.
	history := []ChatMessage{
		{Role: RoleUser, Text: "hi"},
		{Role: RoleModel, ToolCalls: []ToolCall{{Name: "pet_profile"}}},
		{Role: RoleTool, ToolResults: []ToolResult{{Name: "pet_profile", Content: map[string]interface{}{"name": "Momo"}}}},
	}

	p := &openAIProvider{apiKey: "test-key", baseURL: srv.URL}
	_, err := p.Chat(context.Background(), "gpt-test", "", history, nil)
	require.NoError(t, err)

	require.Len(t, captured.Messages, 3)
	require.Equal(t, "call_pet_profile", captured.Messages[1].ToolCalls[0].ID)
	require.Equal(t, "call_pet_profile", captured.Messages[2].ToolCallID)
}
