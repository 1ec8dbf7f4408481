package conversation

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	confirmationRE = regexp.MustCompile(`#(\d+)`)
	digitsRE       = regexp.MustCompile(`\d`)
)

// parseNameDocument pulls a customer name and document out of a
// comma-separated utterance like "João Silva, 12345678900". The name is
// whatever precedes the first comma; the document is the first segment
// carrying a run of at least six digits, stripped to digits only.
func parseNameDocument(message string) (name, document string, ok bool) {
	parts := strings.Split(message, ",")
	if len(parts) < 2 {
		return "", "", false
	}

	name = strings.TrimSpace(parts[0])
	if name == "" || digitsRE.MatchString(name) {
		return "", "", false
	}

	for _, part := range parts[1:] {
		var b strings.Builder
		for _, r := range part {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		// Documents are at least six digits; shorter runs are house
		// numbers or quantities.
		if b.Len() >= 6 {
			return name, b.String(), true
		}
	}
	return "", "", false
}

// extractOrderConfirmation recognizes the agent announcing a created
// order, e.g. "Pedido #42 criado com sucesso!".
func extractOrderConfirmation(response string) (int, bool) {
	if !strings.Contains(strings.ToLower(response), "pedido") {
		return 0, false
	}
	m := confirmationRE.FindStringSubmatch(response)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
