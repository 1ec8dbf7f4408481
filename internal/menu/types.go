package menu

// Pizza is a menu entry from the pizzas table.
type Pizza struct {
	ID          int    `json:"id"`
	Flavor      string `json:"sabor"`
	Description string `json:"descricao"`
	Ingredients string `json:"ingredientes"`
}

// Size is a pizza size from the tamanhos table.
type Size struct {
	ID   int    `json:"id"`
	Name string `json:"tamanho"`
}

// Crust is a crust type from the bordas table.
type Crust struct {
	ID   int    `json:"id"`
	Type string `json:"tipo"`
}

// PricedItem is a fully resolved pizza selection with its unit price.
// It is never persisted by the core — only passed through to order
// creation calls.
type PricedItem struct {
	PizzaID     int     `json:"pizza_id"`
	Flavor      string  `json:"sabor"`
	Description string  `json:"descricao"`
	Ingredients string  `json:"ingredientes"`
	SizeID      int     `json:"tamanho_id"`
	Size        string  `json:"tamanho"`
	CrustID     int     `json:"borda_id"`
	Crust       string  `json:"borda"`
	Price       float64 `json:"preco"`
}
