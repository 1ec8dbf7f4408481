package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("stream must be false")
		}
		if req.Model != "test-model" {
			t.Errorf("got model %q", req.Model)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   "test-model",
			Message: Message{Role: "assistant", Content: "Olá!"},
			Done:    true,

			PromptEvalCount: 12,
			EvalCount:       5,
		})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL)
	resp, err := client.Chat(context.Background(), "test-model", []Message{
		{Role: "user", Content: "oi"},
	}, nil)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if resp.Message.Content != "Olá!" {
		t.Errorf("got content %q", resp.Message.Content)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 5 {
		t.Errorf("got tokens %d/%d", resp.InputTokens, resp.OutputTokens)
	}
}

func TestOllamaChatNativeToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg Message
		msg.Role = "assistant"
		var tc ToolCall
		tc.Function.Name = "get_menu"
		tc.Function.Arguments = map[string]any{}
		msg.ToolCalls = []ToolCall{tc}
		json.NewEncoder(w).Encode(ollamaChatResponse{Model: "m", Message: msg, Done: true})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL)
	resp, err := client.Chat(context.Background(), "m", nil, nil)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(resp.Message.ToolCalls) != 1 || resp.Message.ToolCalls[0].Function.Name != "get_menu" {
		t.Errorf("got tool calls %+v", resp.Message.ToolCalls)
	}
}

func TestOllamaChatAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL)
	if _, err := client.Chat(context.Background(), "missing", nil, nil); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestParseTextToolCalls(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantCalls int
		wantName  string
	}{
		{
			name:      "single object",
			content:   `{"name": "get_menu", "arguments": {}}`,
			wantCalls: 1,
			wantName:  "get_menu",
		},
		{
			name:      "array",
			content:   `[{"name": "get_pizza_info", "arguments": {"sabor": "calabresa"}}]`,
			wantCalls: 1,
			wantName:  "get_pizza_info",
		},
		{
			name:      "tagged",
			content:   `<tool_call>{"name": "get_menu", "arguments": {}}</tool_call>`,
			wantCalls: 1,
			wantName:  "get_menu",
		},
		{
			name:      "tagged without closing tag",
			content:   `<tool_call>{"name": "get_menu", "arguments": {}}`,
			wantCalls: 1,
			wantName:  "get_menu",
		},
		{"plain text", "Olá! Como posso ajudar?", 0, ""},
		{"empty", "", 0, ""},
		{"json without name", `{"foo": "bar"}`, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := parseTextToolCalls(tt.content)
			if len(calls) != tt.wantCalls {
				t.Fatalf("got %d calls, want %d", len(calls), tt.wantCalls)
			}
			if tt.wantCalls > 0 && calls[0].Function.Name != tt.wantName {
				t.Errorf("got name %q, want %q", calls[0].Function.Name, tt.wantName)
			}
		})
	}
}

func TestOllamaPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"models": []}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL)
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
