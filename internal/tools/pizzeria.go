package tools

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/beautypizza/bella/internal/orderapi"
)

// registerBuiltins wires the pizzeria tool set. Descriptions are what the
// model sees; they stay in Portuguese to match the conversation language.
func (r *Registry) registerBuiltins() {
	r.Register(&Tool{
		Name:        "get_menu",
		Description: "Retorna o cardápio completo da pizzaria com todas as pizzas disponíveis, sabores, ingredientes, tamanhos e bordas",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: r.handleGetMenu,
	})

	r.Register(&Tool{
		Name:        "get_pizza_info",
		Description: "Retorna informações detalhadas de uma pizza específica pelo sabor, incluindo ingredientes, descrição e preços por tamanho e borda",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"sabor": map[string]any{
					"type":        "string",
					"description": "O sabor da pizza (ex: Calabresa, Margherita)",
				},
			},
			"required": []string{"sabor"},
		},
		Handler: r.handleGetPizzaInfo,
	})

	r.Register(&Tool{
		Name:        "get_pizza_price",
		Description: "Retorna o preço específico de uma pizza com sabor, tamanho e borda específicos",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"sabor": map[string]any{
					"type":        "string",
					"description": "O sabor da pizza",
				},
				"tamanho": map[string]any{
					"type":        "string",
					"description": "O tamanho (ex: Pequena, Média, Grande, Gigante)",
				},
				"borda": map[string]any{
					"type":        "string",
					"description": "O tipo de borda (ex: Tradicional, Catupiry Recheada)",
				},
			},
			"required": []string{"sabor", "tamanho", "borda"},
		},
		Handler: r.handleGetPizzaPrice,
	})

	r.Register(&Tool{
		Name:        "create_order",
		Description: "Cria um novo pedido para o cliente após confirmação explícita. Retorna o código do pedido criado. IMPORTANTE: Informe ao cliente o código do pedido no formato 'Pedido #XXXXX criado com sucesso!'",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"client_name": map[string]any{
					"type":        "string",
					"description": "Nome completo do cliente",
				},
				"client_document": map[string]any{
					"type":        "string",
					"description": "CPF ou RG do cliente (somente dígitos)",
				},
				"delivery_date": map[string]any{
					"type":        "string",
					"description": "Data de entrega no formato YYYY-MM-DD (opcional, padrão: hoje)",
				},
			},
			"required": []string{"client_name", "client_document"},
		},
		Handler: r.handleCreateOrder,
	})

	r.Register(&Tool{
		Name:        "add_pizza_to_order",
		Description: "Adiciona uma pizza ao pedido especificando o ID do pedido, sabor, tamanho, borda e quantidade",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"order_id": map[string]any{
					"type":        "integer",
					"description": "O ID do pedido",
				},
				"pizza_flavor": map[string]any{
					"type":        "string",
					"description": "O sabor da pizza",
				},
				"size": map[string]any{
					"type":        "string",
					"description": "O tamanho da pizza",
				},
				"crust": map[string]any{
					"type":        "string",
					"description": "O tipo de borda",
				},
				"quantity": map[string]any{
					"type":        "integer",
					"description": "Quantidade (padrão 1)",
				},
			},
			"required": []string{"order_id", "pizza_flavor", "size", "crust"},
		},
		Handler: r.handleAddPizzaToOrder,
	})

	r.Register(&Tool{
		Name:        "get_order",
		Description: "Retorna os detalhes do pedido, incluindo pizzas, cliente e endereço",
		Parameters:  orderIDParams(),
		Handler:     r.handleGetOrder,
	})

	r.Register(&Tool{
		Name:        "get_order_items",
		Description: "Lista todos os itens (pizzas) que já foram adicionados ao pedido",
		Parameters:  orderIDParams(),
		Handler:     r.handleGetOrderItems,
	})

	r.Register(&Tool{
		Name:        "get_order_total",
		Description: "Calcula e retorna o valor total do pedido pelo ID",
		Parameters:  orderIDParams(),
		Handler:     r.handleGetOrderTotal,
	})

	r.Register(&Tool{
		Name:        "update_delivery_address",
		Description: "Atualiza o endereço de entrega do pedido com rua, número, complemento e ponto de referência",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"order_id": map[string]any{
					"type":        "integer",
					"description": "O ID do pedido",
				},
				"street_name": map[string]any{
					"type":        "string",
					"description": "Nome da rua ou avenida",
				},
				"number": map[string]any{
					"type":        "string",
					"description": "Número do endereço",
				},
				"complement": map[string]any{
					"type":        "string",
					"description": "Complemento (apto, bloco) — opcional",
				},
				"reference_point": map[string]any{
					"type":        "string",
					"description": "Ponto de referência — opcional",
				},
			},
			"required": []string{"order_id", "street_name", "number"},
		},
		Handler: r.handleUpdateDeliveryAddress,
	})

	r.Register(&Tool{
		Name:        "remove_item_from_order",
		Description: "Remove um item específico do pedido pelo ID do item",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"order_id": map[string]any{
					"type":        "integer",
					"description": "O ID do pedido",
				},
				"item_id": map[string]any{
					"type":        "integer",
					"description": "O ID do item a remover",
				},
			},
			"required": []string{"order_id", "item_id"},
		},
		Handler: r.handleRemoveItemFromOrder,
	})
}

func orderIDParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"order_id": map[string]any{
				"type":        "integer",
				"description": "O ID do pedido",
			},
		},
		"required": []string{"order_id"},
	}
}

// Tool handlers

func (r *Registry) handleGetMenu(ctx context.Context, _ map[string]any) (string, error) {
	pizzas, err := r.kb.ListPizzas(ctx)
	if err != nil {
		return errorResult("Não foi possível obter o cardápio: %v", err)
	}
	sizes, err := r.kb.ListSizes(ctx)
	if err != nil {
		return errorResult("Não foi possível obter o cardápio: %v", err)
	}
	crusts, err := r.kb.ListCrusts(ctx)
	if err != nil {
		return errorResult("Não foi possível obter o cardápio: %v", err)
	}

	return jsonResult(map[string]any{
		"pizzas":   pizzas,
		"tamanhos": sizes,
		"bordas":   crusts,
	})
}

func (r *Registry) handleGetPizzaInfo(ctx context.Context, args map[string]any) (string, error) {
	flavor := argString(args, "sabor")
	if flavor == "" {
		return errorResult("O sabor da pizza é obrigatório")
	}

	pizza, err := r.kb.GetPizzaByFlavor(ctx, flavor)
	if err != nil {
		return errorResult("Erro ao buscar informações da pizza: %v", err)
	}
	if pizza == nil {
		return errorResult("Pizza com sabor '%s' não encontrada no cardápio", flavor)
	}

	sizes, err := r.kb.ListSizes(ctx)
	if err != nil {
		return errorResult("Erro ao buscar informações da pizza: %v", err)
	}
	crusts, err := r.kb.ListCrusts(ctx)
	if err != nil {
		return errorResult("Erro ao buscar informações da pizza: %v", err)
	}

	type priceEntry struct {
		Size  string  `json:"tamanho"`
		Crust string  `json:"borda"`
		Price float64 `json:"preco"`
	}
	var prices []priceEntry
	for _, sz := range sizes {
		for _, c := range crusts {
			price, ok, err := r.kb.GetPrice(ctx, pizza.ID, sz.ID, c.ID)
			if err != nil {
				return errorResult("Erro ao buscar informações da pizza: %v", err)
			}
			if ok {
				prices = append(prices, priceEntry{Size: sz.Name, Crust: c.Type, Price: price})
			}
		}
	}

	return jsonResult(map[string]any{
		"pizza":  pizza,
		"precos": prices,
	})
}

func (r *Registry) handleGetPizzaPrice(ctx context.Context, args map[string]any) (string, error) {
	flavor := argString(args, "sabor")
	size := argString(args, "tamanho")
	crust := argString(args, "borda")
	if flavor == "" || size == "" || crust == "" {
		return errorResult("Sabor, tamanho e borda são obrigatórios")
	}

	item, err := r.kb.GetPricedItem(ctx, flavor, size, crust)
	if err != nil {
		return errorResult("Erro ao buscar preço da pizza: %v", err)
	}
	if item == nil {
		return errorResult("Não foi possível encontrar preço para pizza %s, tamanho %s, borda %s", flavor, size, crust)
	}

	return jsonResult(map[string]any{
		"sabor":   item.Flavor,
		"tamanho": item.Size,
		"borda":   item.Crust,
		"preco":   item.Price,
	})
}

func (r *Registry) handleCreateOrder(ctx context.Context, args map[string]any) (string, error) {
	name := strings.TrimSpace(argString(args, "client_name"))
	document := digitsOnly(argString(args, "client_document"))
	if name == "" || document == "" {
		return errorResult("Nome e documento do cliente são obrigatórios para criar o pedido")
	}

	// Second line of defense: the state machine decides what is allowed,
	// not the model. Refuse creation while the conversation has not
	// collected every required field.
	if info := SessionFromContext(ctx); info != nil {
		if info.ClientName == "" || info.ClientDocument == "" {
			return errorResult("Os dados do cliente ainda não foram confirmados. Colete nome e documento antes de criar o pedido")
		}
		if info.PendingItems == 0 {
			return errorResult("Nenhuma pizza foi escolhida ainda. Adicione pelo menos uma pizza antes de criar o pedido")
		}
	}

	deliveryDate := normalizeDeliveryDate(argString(args, "delivery_date"), time.Now())

	// Idempotent reuse: an open order for this (document, date) pair is
	// returned instead of creating a duplicate.
	if existing, err := r.orders.FilterOrders(ctx, document, deliveryDate); err == nil {
		for i := range existing {
			if !isFinalized(existing[i].Status) {
				r.logger.Info("reusing open order", "order_id", existing[i].ID, "delivery_date", deliveryDate)
				return orderCreatedResult(&existing[i], true)
			}
		}
	}

	order, err := r.orders.CreateOrder(ctx, name, document, deliveryDate)
	if err != nil {
		return errorResult("Não foi possível criar o pedido: %v", err)
	}

	r.logger.Info("order created", "order_id", order.ID, "delivery_date", deliveryDate)
	return orderCreatedResult(order, false)
}

func (r *Registry) handleAddPizzaToOrder(ctx context.Context, args map[string]any) (string, error) {
	orderID, ok := argInt(args, "order_id")
	if !ok || orderID <= 0 {
		return errorResult("O ID do pedido é obrigatório")
	}
	flavor := argString(args, "pizza_flavor")
	size := argString(args, "size")
	crust := argString(args, "crust")
	if flavor == "" || size == "" || crust == "" {
		return errorResult("Sabor, tamanho e borda são obrigatórios")
	}
	quantity, ok := argInt(args, "quantity")
	if !ok || quantity <= 0 {
		quantity = 1
	}

	item, err := r.kb.GetPricedItem(ctx, flavor, size, crust)
	if err != nil {
		return errorResult("Não foi possível adicionar pizza ao pedido: %v", err)
	}
	if item == nil {
		return errorResult("Não foi possível encontrar preço para pizza %s, tamanho %s, borda %s", flavor, size, crust)
	}

	order, err := r.orders.AddItem(ctx, orderID, item.Flavor, item.Size, item.Crust, quantity, item.Price)
	if err != nil {
		return errorResult("Não foi possível adicionar pizza ao pedido: %v", err)
	}

	return jsonResult(order)
}

func (r *Registry) handleGetOrder(ctx context.Context, args map[string]any) (string, error) {
	orderID, ok := argInt(args, "order_id")
	if !ok || orderID <= 0 {
		return errorResult("O ID do pedido é obrigatório")
	}

	order, err := r.orders.GetOrder(ctx, orderID)
	if err != nil {
		return errorResult("Não foi possível obter detalhes do pedido: %v", err)
	}
	return jsonResult(order)
}

func (r *Registry) handleGetOrderItems(ctx context.Context, args map[string]any) (string, error) {
	orderID, ok := argInt(args, "order_id")
	if !ok || orderID <= 0 {
		return errorResult("O ID do pedido é obrigatório")
	}

	items, err := r.orders.GetItems(ctx, orderID)
	if err != nil {
		return errorResult("Não foi possível obter os itens do pedido: %v", err)
	}
	return jsonResult(map[string]any{"items": items})
}

func (r *Registry) handleGetOrderTotal(ctx context.Context, args map[string]any) (string, error) {
	orderID, ok := argInt(args, "order_id")
	if !ok || orderID <= 0 {
		return errorResult("O ID do pedido é obrigatório")
	}

	total, err := r.orders.GetTotal(ctx, orderID)
	if err != nil {
		return errorResult("Não foi possível calcular o total do pedido: %v", err)
	}
	return jsonResult(map[string]string{"total": total})
}

func (r *Registry) handleUpdateDeliveryAddress(ctx context.Context, args map[string]any) (string, error) {
	orderID, ok := argInt(args, "order_id")
	if !ok || orderID <= 0 {
		return errorResult("O ID do pedido é obrigatório")
	}
	street := strings.TrimSpace(argString(args, "street_name"))
	number := strings.TrimSpace(argString(args, "number"))
	if street == "" || number == "" {
		return errorResult("Rua e número são obrigatórios para o endereço de entrega")
	}

	addr := orderapi.Address{
		StreetName:     street,
		Number:         number,
		Complement:     strings.TrimSpace(argString(args, "complement")),
		ReferencePoint: strings.TrimSpace(argString(args, "reference_point")),
	}

	order, err := r.orders.UpdateAddress(ctx, orderID, addr)
	if err != nil {
		return errorResult("Não foi possível atualizar o endereço: %v", err)
	}
	return jsonResult(order)
}

func (r *Registry) handleRemoveItemFromOrder(ctx context.Context, args map[string]any) (string, error) {
	orderID, ok := argInt(args, "order_id")
	if !ok || orderID <= 0 {
		return errorResult("O ID do pedido é obrigatório")
	}
	itemID, ok := argInt(args, "item_id")
	if !ok || itemID <= 0 {
		return errorResult("O ID do item é obrigatório")
	}

	if err := r.orders.RemoveItem(ctx, orderID, itemID); err != nil {
		return errorResult("Não foi possível remover item do pedido: %v", err)
	}
	return jsonResult(map[string]any{"removed": itemID})
}

// orderCreatedResult formats the create_order payload, including the
// message the model is instructed to relay verbatim.
func orderCreatedResult(order *orderapi.Order, reused bool) (string, error) {
	status := "created"
	if reused {
		status = "reused"
	}
	return jsonResult(map[string]any{
		"id":              order.ID,
		"client_name":     order.ClientName,
		"client_document": order.ClientDocument,
		"delivery_date":   order.DeliveryDate,
		"status_beauty":   status,
		"mensagem_pedido": "Pedido #" + strconv.Itoa(order.ID) + " criado com sucesso! Informe este código ao cliente.",
	})
}

// normalizeDeliveryDate parses a YYYY-MM-DD date. Malformed or past
// dates become today rather than an error.
func normalizeDeliveryDate(s string, now time.Time) string {
	today := now.Format("2006-01-02")
	if s == "" {
		return today
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return today
	}
	if parsed.Format("2006-01-02") < today {
		return today
	}
	return parsed.Format("2006-01-02")
}

// isFinalized reports whether an order status means the order can no
// longer be reused for new items.
func isFinalized(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "finalizado", "finalized", "entregue", "delivered", "cancelado", "cancelled":
		return true
	}
	return false
}

// digitsOnly strips every non-digit character.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
