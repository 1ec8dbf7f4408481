// Package conversation implements the dialogue flow that keeps the
// order-taking assistant on rails: a per-session state machine decides
// which stage the conversation is in, which tools the model may use and
// what its instructions look like, so the model narrates while the code
// decides.
package conversation

// Stage identifies where an order conversation currently stands.
// Stages only move forward; unmatched input leaves them alone.
type Stage int

const (
	StageInitial Stage = iota
	StageBrowsingMenu
	StageCollectingItems
	StageCollectingCustomerInfo
	StageCreatingOrder
	StageFinalized
)

func (s Stage) String() string {
	switch s {
	case StageInitial:
		return "initial"
	case StageBrowsingMenu:
		return "browsing_menu"
	case StageCollectingItems:
		return "collecting_items"
	case StageCollectingCustomerInfo:
		return "collecting_customer_info"
	case StageCreatingOrder:
		return "creating_order"
	case StageFinalized:
		return "finalized"
	}
	return "unknown"
}

// PendingItem is a pizza the customer settled on before the order
// exists on the order service.
type PendingItem struct {
	Flavor    string  `json:"flavor"`
	Size      string  `json:"size"`
	Crust     string  `json:"crust"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Address mirrors the delivery address collected during the dialogue.
type Address struct {
	StreetName     string `json:"street_name"`
	Number         string `json:"number"`
	Complement     string `json:"complement,omitempty"`
	ReferencePoint string `json:"reference_point,omitempty"`
}

// State is everything the flow remembers about one session. It is not
// safe for concurrent use; Conversation serializes access.
type State struct {
	Stage                Stage
	OrderID              int // 0 means no order yet
	ClientName           string
	ClientDocument       string
	PendingItems         []PendingItem
	DeliveryAddress      *Address
	AwaitingConfirmation bool

	// Opportunistically parsed from free text before the customer
	// confirms them.
	stagedName     string
	stagedDocument string
}

func NewState() *State {
	return &State{Stage: StageInitial}
}

// Reset returns the state to a fresh conversation.
func (s *State) Reset() {
	*s = State{Stage: StageInitial}
}

// setOrderID records the active order. A session tracks exactly one
// order; a second id never displaces the first.
func (s *State) setOrderID(id int) {
	if s.OrderID == 0 && id > 0 {
		s.OrderID = id
	}
}

// promoteStaged moves opportunistically parsed customer data into the
// confirmed fields.
func (s *State) promoteStaged() {
	if s.ClientName == "" && s.stagedName != "" {
		s.ClientName = s.stagedName
	}
	if s.ClientDocument == "" && s.stagedDocument != "" {
		s.ClientDocument = s.stagedDocument
	}
}

// addPendingItem records a priced pizza, merging duplicates of the same
// flavor, size and crust.
func (s *State) addPendingItem(item PendingItem) {
	for i := range s.PendingItems {
		p := &s.PendingItems[i]
		if p.Flavor == item.Flavor && p.Size == item.Size && p.Crust == item.Crust {
			if item.Quantity > 0 {
				p.Quantity += item.Quantity
			}
			return
		}
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	s.PendingItems = append(s.PendingItems, item)
}

// clone snapshots the state so a failed turn can be rolled back.
func (s *State) clone() *State {
	cp := *s
	cp.PendingItems = append([]PendingItem(nil), s.PendingItems...)
	if s.DeliveryAddress != nil {
		addr := *s.DeliveryAddress
		cp.DeliveryAddress = &addr
	}
	return &cp
}
