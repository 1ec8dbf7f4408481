package conversation

import "testing"

func TestEnrich(t *testing.T) {
	tests := []struct {
		name  string
		state func() *State
		msg   string
		want  string
	}{
		{
			name:  "bare state passes through",
			state: NewState,
			msg:   "oi",
			want:  "oi",
		},
		{
			name: "active order",
			state: func() *State {
				s := NewState()
				s.OrderID = 42
				return s
			},
			msg:  "cadê minha pizza?",
			want: "[PEDIDO ATIVO: #42]\ncadê minha pizza?",
		},
		{
			name: "order and customer",
			state: func() *State {
				s := NewState()
				s.OrderID = 42
				s.ClientName = "Maria Souza"
				return s
			},
			msg:  "oi",
			want: "[PEDIDO ATIVO: #42] | [CLIENTE: Maria Souza]\noi",
		},
		{
			name: "awaiting confirmation",
			state: func() *State {
				s := NewState()
				s.AwaitingConfirmation = true
				return s
			},
			msg:  "sim",
			want: "[AGUARDANDO CONFIRMAÇÃO]\nsim",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Enrich(tt.state(), tt.msg); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnrichIdempotent(t *testing.T) {
	s := NewState()
	s.OrderID = 7
	s.ClientName = "Ana"

	once := Enrich(s, "mensagem")
	twice := Enrich(s, once)
	if once != twice {
		t.Errorf("enrichment is not idempotent:\n%q\n%q", once, twice)
	}
}
