package tools

import "context"

type contextKey string

const sessionKey contextKey = "session"

// SessionInfo carries the deterministic conversation facts a tool needs
// to enforce ordering invariants. The registry never trusts the model's
// word for these — the turn controller sets them from its own state.
type SessionInfo struct {
	ConversationID string
	ClientName     string
	ClientDocument string
	PendingItems   int
	OrderID        int
}

// WithSession adds the session info to the context. Nil info is ignored.
func WithSession(ctx context.Context, info *SessionInfo) context.Context {
	if info == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey, info)
}

// SessionFromContext extracts the session info from the context.
// Returns nil when no session was set (direct tool invocation).
func SessionFromContext(ctx context.Context) *SessionInfo {
	if info, ok := ctx.Value(sessionKey).(*SessionInfo); ok {
		return info
	}
	return nil
}
