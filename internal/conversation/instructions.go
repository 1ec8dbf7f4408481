package conversation

import (
	"fmt"
	"strings"
)

const persona = `Você é Bella, a atendente virtual da pizzaria Beauty Pizza.
Seja simpática, objetiva e sempre responda em português brasileiro.
NUNCA invente sabores, tamanhos, bordas ou preços: toda informação de
cardápio vem exclusivamente das ferramentas disponíveis.
NUNCA invente um código de pedido; só informe códigos retornados pelas
ferramentas.`

// stageTools maps each stage to the tool names the model may call
// during it. The registry filters to exactly this set, so a tool the
// stage forbids simply does not exist for the model.
var stageTools = map[Stage][]string{
	StageInitial:                {"get_menu", "get_pizza_info"},
	StageBrowsingMenu:           {"get_menu", "get_pizza_info", "get_pizza_price"},
	StageCollectingItems:        {"get_menu", "get_pizza_info", "get_pizza_price"},
	StageCollectingCustomerInfo: {},
	StageCreatingOrder: {
		"create_order", "add_pizza_to_order", "get_order", "get_order_items",
		"get_order_total", "update_delivery_address", "remove_item_from_order",
	},
	StageFinalized: {
		"get_order", "get_order_items", "get_order_total",
		"update_delivery_address", "remove_item_from_order",
	},
}

// AllowedTools returns the tool names the given stage permits.
func AllowedTools(stage Stage) []string {
	return stageTools[stage]
}

// Synthesize builds the system instructions for one turn. Pure function
// of the state: same state, same instructions.
func Synthesize(s *State) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\n")

	switch s.Stage {
	case StageInitial:
		b.WriteString(`ETAPA ATUAL: Início do atendimento.
Cumprimente o cliente e pergunte como pode ajudar.
Se o cliente pedir o cardápio, use get_menu.
NÃO crie pedidos nesta etapa.`)

	case StageBrowsingMenu:
		b.WriteString(`ETAPA ATUAL: Apresentação do cardápio.
Use get_menu para listar sabores, tamanhos e bordas.
Use get_pizza_info para detalhar um sabor específico.
Ajude o cliente a escolher, mas NÃO crie pedidos nesta etapa.`)

	case StageCollectingItems:
		b.WriteString(`ETAPA ATUAL: Montagem do pedido.
Para cada pizza desejada, confirme sabor, tamanho e borda e use
get_pizza_price para informar o preço exato.
Pergunte se o cliente deseja mais alguma coisa.
NÃO crie o pedido ainda; primeiro o cliente precisa encerrar a escolha.`)

	case StageCollectingCustomerInfo:
		b.WriteString(`ETAPA ATUAL: Coleta de dados do cliente.
Peça o nome completo e o CPF ou RG do cliente, e o endereço de entrega
(rua, número, complemento e ponto de referência).
Repita os dados recebidos e peça confirmação.
NÃO use nenhuma ferramenta nesta etapa.`)

	case StageCreatingOrder:
		b.WriteString(`ETAPA ATUAL: Criação do pedido.
Use create_order com o nome e o documento do cliente, depois
add_pizza_to_order para cada pizza escolhida e update_delivery_address
para o endereço informado.
Ao final, informe o código no formato 'Pedido #XXXXX criado com sucesso!'
e o total com get_order_total.`)

	case StageFinalized:
		b.WriteString(`ETAPA ATUAL: Pedido finalizado.
O pedido já existe; use get_order, get_order_items e get_order_total para
responder dúvidas, e update_delivery_address ou remove_item_from_order se
o cliente pedir ajustes.
NÃO crie um novo pedido nesta conversa.`)
	}

	if len(s.PendingItems) > 0 {
		b.WriteString("\n\nPIZZAS ESCOLHIDAS ATÉ AGORA:\n")
		for _, it := range s.PendingItems {
			fmt.Fprintf(&b, "- %dx Pizza %s %s, borda %s (R$ %.2f cada)\n",
				it.Quantity, it.Flavor, it.Size, it.Crust, it.UnitPrice)
		}
	}

	if s.ClientName != "" {
		fmt.Fprintf(&b, "\nCLIENTE: %s", s.ClientName)
		if s.ClientDocument != "" {
			fmt.Fprintf(&b, " (documento %s)", s.ClientDocument)
		}
	}
	if s.OrderID != 0 {
		fmt.Fprintf(&b, "\nPEDIDO ATIVO: #%d", s.OrderID)
	}

	return b.String()
}
