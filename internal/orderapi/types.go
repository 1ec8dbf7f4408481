package orderapi

// Order is an order record from the order service.
type Order struct {
	ID             int      `json:"id"`
	ClientName     string   `json:"client_name"`
	ClientDocument string   `json:"client_document"`
	DeliveryDate   string   `json:"delivery_date"`
	Status         string   `json:"status,omitempty"`
	TotalPrice     string   `json:"total_price,omitempty"`
	Items          []Item   `json:"items,omitempty"`
	Address        *Address `json:"delivery_address,omitempty"`
}

// Item is a single order line.
type Item struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Address is a delivery address.
type Address struct {
	StreetName     string `json:"street_name"`
	Number         string `json:"number"`
	Complement     string `json:"complement,omitempty"`
	ReferencePoint string `json:"reference_point,omitempty"`
}
