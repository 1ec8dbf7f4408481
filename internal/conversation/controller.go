package conversation

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/beautypizza/bella/internal/llm"
	"github.com/beautypizza/bella/internal/tools"
)

const apology = "Desculpe, ocorreu um erro. Pode repetir por favor?"

// defaults when the config leaves them zero
const (
	defaultMaxToolRounds    = 10
	defaultHistoryExchanges = 10
)

// Conversation drives one customer session: it owns the state machine,
// the bounded history and the model/tool loop. Turns are serialized by
// the internal mutex.
type Conversation struct {
	mu sync.Mutex

	id       string
	state    *State
	history  []llm.Message
	client   llm.Client
	model    string
	registry *tools.Registry

	maxToolRounds    int
	historyExchanges int
	logger           *slog.Logger
}

func New(id string, client llm.Client, model string, registry *tools.Registry, maxToolRounds, historyExchanges int, logger *slog.Logger) *Conversation {
	if maxToolRounds <= 0 {
		maxToolRounds = defaultMaxToolRounds
	}
	if historyExchanges <= 0 {
		historyExchanges = defaultHistoryExchanges
	}
	return &Conversation{
		id:               id,
		state:            NewState(),
		client:           client,
		model:            model,
		registry:         registry,
		maxToolRounds:    maxToolRounds,
		historyExchanges: historyExchanges,
		logger:           logger.With("session", id),
	}
}

// ID returns the session identifier.
func (c *Conversation) ID() string { return c.id }

// State returns a copy of the current session state.
func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.state.clone()
}

// Reset discards the session's state and history.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Reset()
	c.history = nil
}

// Turn processes one user message and returns the assistant's reply.
// Any failure mid-turn rolls the state back to the pre-turn snapshot
// and yields an apology, so a bad turn never corrupts the session.
func (c *Conversation) Turn(ctx context.Context, message string) (reply string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	turnID, idErr := uuid.NewV7()
	if idErr != nil {
		turnID = uuid.New()
	}
	logger := c.logger.With("turn", turnID.String())

	snapshot := c.state.clone()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("turn panicked", "panic", r)
			c.state = snapshot
			reply, err = apology, nil
		}
	}()

	if rule := Detect(c.state, message); rule != "" {
		logger.Debug("transition", "rule", rule, "stage", c.state.Stage.String())
	}

	system := Synthesize(c.state)
	enriched := Enrich(c.state, message)

	messages := make([]llm.Message, 0, len(c.history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: system})
	messages = append(messages, c.history...)
	messages = append(messages, llm.Message{Role: "user", Content: enriched})

	scoped := c.registry.Resolve(AllowedTools(c.state.Stage))
	toolDefs := scoped.List()

	tctx := tools.WithSession(ctx, &tools.SessionInfo{
		ConversationID: c.id,
		ClientName:     c.state.ClientName,
		ClientDocument: c.state.ClientDocument,
		PendingItems:   len(c.state.PendingItems),
		OrderID:        c.state.OrderID,
	})

	var resp *llm.ChatResponse
	for round := 0; round < c.maxToolRounds; round++ {
		resp, err = c.client.Chat(ctx, c.model, messages, toolDefs)
		if err != nil {
			logger.Error("model call failed", "error", err)
			c.state = snapshot
			return apology, nil
		}
		if len(resp.Message.ToolCalls) == 0 {
			break
		}

		messages = append(messages, resp.Message)
		for _, call := range resp.Message.ToolCalls {
			args, mErr := json.Marshal(call.Function.Arguments)
			if mErr != nil {
				args = []byte("{}")
			}
			logger.Debug("tool call", "tool", call.Function.Name)
			result, tErr := scoped.Execute(tctx, call.Function.Name, string(args))
			if tErr != nil {
				result = `{"error": "ferramenta indisponível"}`
			}
			c.observeToolResult(call.Function.Name, result)
			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}
	if resp == nil {
		c.state = snapshot
		return apology, nil
	}

	// The round budget ran out with the model still asking for tools.
	// One last call without tools forces a text answer so the turn
	// never comes back empty.
	if len(resp.Message.ToolCalls) > 0 {
		resp, err = c.client.Chat(ctx, c.model, messages, nil)
		if err != nil {
			logger.Error("final model call failed", "error", err)
			c.state = snapshot
			return apology, nil
		}
	}

	final := resp.Message.Content
	if rule := ExtractFromResponse(c.state, final); rule != "" {
		logger.Info("order confirmed", "order_id", c.state.OrderID)
	}

	c.history = append(c.history,
		llm.Message{Role: "user", Content: enriched},
		llm.Message{Role: "assistant", Content: final},
	)
	if max := c.historyExchanges * 2; len(c.history) > max {
		c.history = c.history[len(c.history)-max:]
	}

	return final, nil
}

// observeToolResult keeps the state in sync with what the tools did:
// a successful price lookup while choosing pizzas records a pending
// item, and a successful order creation pins the order id.
func (c *Conversation) observeToolResult(name, result string) {
	switch name {
	case "get_pizza_price":
		if c.state.Stage != StageBrowsingMenu && c.state.Stage != StageCollectingItems {
			return
		}
		var priced struct {
			Flavor string  `json:"sabor"`
			Size   string  `json:"tamanho"`
			Crust  string  `json:"borda"`
			Price  float64 `json:"preco"`
			Error  string  `json:"error"`
		}
		if json.Unmarshal([]byte(result), &priced) != nil || priced.Error != "" || priced.Flavor == "" {
			return
		}
		c.state.addPendingItem(PendingItem{
			Flavor:    priced.Flavor,
			Size:      priced.Size,
			Crust:     priced.Crust,
			Quantity:  1,
			UnitPrice: priced.Price,
		})

	case "create_order":
		var created struct {
			ID    int    `json:"id"`
			Error string `json:"error"`
		}
		if json.Unmarshal([]byte(result), &created) != nil || created.Error != "" {
			return
		}
		c.state.setOrderID(created.ID)
	}
}
