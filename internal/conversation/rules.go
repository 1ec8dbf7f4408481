package conversation

import (
	"regexp"
	"strconv"
	"strings"
)

// Order references the customer may drop into free text. Checked in
// order; the first capture wins.
var orderRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)pedido\s+#?(\d+)`),
	regexp.MustCompile(`(?i)c[óo]digo\s+#?(\d+)`),
	regexp.MustCompile(`(?i)n[úu]mero\s+#?(\d+)`),
	regexp.MustCompile(`#(\d+)`),
}

var (
	menuKeywords = []string{
		"cardápio", "cardapio", "menu", "sabores", "opções", "opcoes",
	}
	itemIntentKeywords = []string{
		"quero", "vou querer", "gostaria", "me vê", "me ve", "pizza", "pedir",
	}
	decisionKeywords = []string{
		"quero", "vou pedir", "escolhi", "decidi", "essa", "esse",
	}
	closingKeywords = []string{
		"só isso", "so isso", "apenas isso", "é isso", "e isso", "sim",
		"finalizar", "confirmar", "fechar pedido", "mais nada",
	}
	affirmativeKeywords = []string{
		"sim", "correto", "confirma", "confirmo", "pode", "finaliza",
		"tudo certo", "isso mesmo", "certinho",
	}
	addressMarkers = []string{
		"rua", "avenida", "av.", "av ", "número", "numero", "n°", "nº",
	}
)

var digitRunRE = regexp.MustCompile(`\d{6,}`)

func containsAny(text string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}

// findOrderRef extracts an order id referenced in free text, or 0.
func findOrderRef(text string) int {
	for _, re := range orderRefPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			id, err := strconv.Atoi(m[1])
			if err == nil && id > 0 {
				return id
			}
		}
	}
	return 0
}

// Detect runs the ordered rule table against one user message and
// mutates the state accordingly. It returns the name of the rule that
// fired, or "" when the message left the stage untouched. The model is
// never consulted: transitions come only from here and from
// ExtractFromResponse.
func Detect(s *State, message string) string {
	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return ""
	}

	// An explicit order reference beats everything else, from any
	// stage, including a finalized one. The first referenced id stays
	// pinned either way.
	if id := findOrderRef(text); id != 0 {
		s.setOrderID(id)
		s.Stage = StageCreatingOrder
		return "order_reference"
	}

	switch s.Stage {
	case StageInitial:
		if containsAny(text, menuKeywords) != "" {
			s.Stage = StageBrowsingMenu
			return "menu_request"
		}
		if containsAny(text, itemIntentKeywords) != "" {
			s.Stage = StageCollectingItems
			return "item_intent"
		}

	case StageBrowsingMenu:
		if containsAny(text, decisionKeywords) != "" {
			s.Stage = StageCollectingItems
			return "item_decision"
		}

	case StageCollectingItems:
		if containsAny(text, closingKeywords) != "" {
			s.Stage = StageCollectingCustomerInfo
			s.AwaitingConfirmation = false
			return "items_closed"
		}

	case StageCollectingCustomerInfo:
		// Confirmation is checked before the opportunistic "name,
		// document" parse: a confirming message may itself carry commas
		// and a long digit run (a CEP, a phone number) and must not
		// restage the customer data.
		name, doc := s.ClientName, s.ClientDocument
		if name == "" {
			name = s.stagedName
		}
		if doc == "" {
			doc = s.stagedDocument
		}
		if name != "" && doc != "" &&
			(containsAny(text, addressMarkers) != "" || digitRunRE.MatchString(text)) &&
			containsAny(text, affirmativeKeywords) != "" {
			s.promoteStaged()
			s.Stage = StageCreatingOrder
			s.AwaitingConfirmation = false
			return "customer_confirmed"
		}
		if name, doc, ok := parseNameDocument(message); ok {
			s.stagedName = name
			s.stagedDocument = doc
			s.AwaitingConfirmation = true
			return "customer_data"
		}
	}

	return ""
}

// ExtractFromResponse inspects the agent's reply after a turn. While an
// order is being created, a reply announcing "pedido ... #N" finalizes
// the flow and pins the order id.
func ExtractFromResponse(s *State, response string) string {
	if s.Stage != StageCreatingOrder {
		return ""
	}
	if id, ok := extractOrderConfirmation(response); ok {
		s.setOrderID(id)
		s.Stage = StageFinalized
		return "order_confirmed"
	}
	return ""
}
