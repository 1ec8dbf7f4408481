package conversation

import (
	"fmt"
	"strings"
)

// Enrich prepends a machine-readable context header to the user message
// so the model never loses track of the active order or customer
// between turns. Idempotent: an already-enriched message passes through.
func Enrich(s *State, message string) string {
	var parts []string
	if s.OrderID != 0 {
		parts = append(parts, fmt.Sprintf("[PEDIDO ATIVO: #%d]", s.OrderID))
	}
	if s.ClientName != "" {
		parts = append(parts, fmt.Sprintf("[CLIENTE: %s]", s.ClientName))
	}
	if s.AwaitingConfirmation {
		parts = append(parts, "[AGUARDANDO CONFIRMAÇÃO]")
	}
	if len(parts) == 0 {
		return message
	}

	header := strings.Join(parts, " | ")
	if strings.HasPrefix(message, header) {
		return message
	}
	return header + "\n" + message
}
