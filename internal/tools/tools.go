// Package tools defines the tools the agent can call and the registry
// that resolves and executes them. Every registered handler returns a
// JSON payload; failures become a {"error": ...} envelope so a failing
// tool call can never abort a turn.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/beautypizza/bella/internal/menu"
	"github.com/beautypizza/bella/internal/orderapi"
)

// Tool represents a callable tool.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Handler     func(ctx context.Context, args map[string]any) (string, error) `json:"-"`
}

// Registry holds available tools.
type Registry struct {
	tools  map[string]*Tool
	kb     *menu.Store
	orders *orderapi.Client
	logger *slog.Logger
}

// NewRegistry creates a tool registry wired to the knowledge base and
// order service. All builtin tools are registered once, at construction.
func NewRegistry(kb *menu.Store, orders *orderapi.Client, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		tools:  make(map[string]*Tool),
		kb:     kb,
		orders: orders,
		logger: logger,
	}
	r.registerBuiltins()
	return r
}

// Register adds a tool to the registry. Re-registering a name overwrites
// the previous entry (last write wins).
func (r *Registry) Register(t *Tool) {
	if _, exists := r.tools[t.Name]; exists {
		r.logger.Warn("tool re-registered", "tool", t.Name)
	}
	r.tools[t.Name] = t
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// AllToolNames returns the registered tool names.
func (r *Registry) AllToolNames() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns a new registry containing only the named tools.
// Unknown names are silently skipped, so tool-name lists and registry
// contents can evolve independently.
func (r *Registry) Resolve(names []string) *Registry {
	sub := &Registry{
		tools:  make(map[string]*Tool, len(names)),
		kb:     r.kb,
		orders: r.orders,
		logger: r.logger,
	}
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			sub.tools[name] = t
		}
	}
	return sub
}

// List returns all tools in the wire shape the LLM providers expect.
func (r *Registry) List() []map[string]any {
	names := r.AllToolNames()
	result := make([]map[string]any, 0, len(names))
	for _, name := range names {
		t := r.tools[name]
		result = append(result, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		})
	}
	return result
}

// Execute runs a tool by name with given arguments.
func (r *Registry) Execute(ctx context.Context, name string, argsJSON string) (string, error) {
	tool := r.tools[name]
	if tool == nil {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	var args map[string]any
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
	}

	return tool.Handler(ctx, args)
}

// jsonResult marshals a success payload.
func jsonResult(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(b), nil
}

// errorResult builds the structured error envelope. It is a successful
// tool result from the model's point of view.
func errorResult(format string, args ...any) (string, error) {
	return jsonResult(map[string]string{"error": fmt.Sprintf(format, args...)})
}

// argString extracts a string argument.
func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// argInt extracts an integer argument. JSON numbers decode as float64.
func argInt(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
