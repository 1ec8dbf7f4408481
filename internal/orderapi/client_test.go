package orderapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateOrder(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/orders/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Order{
			ID:             42,
			ClientName:     gotBody["client_name"],
			ClientDocument: gotBody["client_document"],
			DeliveryDate:   gotBody["delivery_date"],
			Status:         "pending",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	order, err := client.CreateOrder(context.Background(), "Maria Souza", "12345678900", "2026-09-01")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if order.ID != 42 {
		t.Errorf("got id %d, want 42", order.ID)
	}
	if gotBody["client_name"] != "Maria Souza" {
		t.Errorf("got client_name %q", gotBody["client_name"])
	}
	if gotBody["delivery_date"] != "2026-09-01" {
		t.Errorf("got delivery_date %q", gotBody["delivery_date"])
	}
}

func TestAddItemNameComposition(t *testing.T) {
	tests := []struct {
		name     string
		flavor   string
		size     string
		crust    string
		wantName string
	}{
		{"traditional crust omitted", "Calabresa", "Grande", "Tradicional", "Pizza Calabresa Grande"},
		{"stuffed crust included", "Margherita", "Média", "Catupiry Recheada", "Pizza Margherita Média - Borda Catupiry Recheada"},
		{"empty crust omitted", "Portuguesa", "Pequena", "", "Pizza Portuguesa Pequena"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPatch || r.URL.Path != "/api/orders/7/add-items/" {
					t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				}
				var body struct {
					Items []Item `json:"items"`
				}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("decode body: %v", err)
				}
				if len(body.Items) != 1 {
					t.Fatalf("got %d items, want 1", len(body.Items))
				}
				got = body.Items[0].Name
				json.NewEncoder(w).Encode(Order{ID: 7, Items: body.Items})
			}))
			defer server.Close()

			client := NewClient(server.URL, 5*time.Second, testLogger())
			if _, err := client.AddItem(context.Background(), 7, tt.flavor, tt.size, tt.crust, 1, 45.90); err != nil {
				t.Fatalf("AddItem: %v", err)
			}
			if got != tt.wantName {
				t.Errorf("got item name %q, want %q", got, tt.wantName)
			}
		})
	}
}

func TestGetTotalDefaultsToZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Order{ID: 9})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	total, err := client.GetTotal(context.Background(), 9)
	if err != nil {
		t.Fatalf("GetTotal: %v", err)
	}
	if total != "0.00" {
		t.Errorf("got total %q, want %q", total, "0.00")
	}
}

func TestGetStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Order{ID: 4, Status: "finalizado"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	status, err := client.GetStatus(context.Background(), 4)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status != "finalizado" {
		t.Errorf("got status %q", status)
	}
}

func TestFilterOrders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders/filter/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("client_document") != "12345678900" {
			t.Errorf("got client_document %q", q.Get("client_document"))
		}
		if q.Get("delivery_date") != "2026-09-01" {
			t.Errorf("got delivery_date %q", q.Get("delivery_date"))
		}
		json.NewEncoder(w).Encode([]Order{{ID: 1, Status: "pending"}, {ID: 2, Status: "finalizado"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	orders, err := client.FilterOrders(context.Background(), "12345678900", "2026-09-01")
	if err != nil {
		t.Fatalf("FilterOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
}

func TestRemoveItem(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Method != http.MethodDelete || r.URL.Path != "/api/orders/3/items/11/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	if err := client.RemoveItem(context.Background(), 3, 11); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if !called {
		t.Error("server never called")
	}
}

func TestUpdateAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/orders/5/update-address/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Address Address `json:"delivery_address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Address.StreetName != "Rua das Flores" {
			t.Errorf("got street %q", body.Address.StreetName)
		}
		json.NewEncoder(w).Encode(Order{ID: 5, Address: &body.Address})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	order, err := client.UpdateAddress(context.Background(), 5, Address{
		StreetName: "Rua das Flores",
		Number:     "123",
	})
	if err != nil {
		t.Fatalf("UpdateAddress: %v", err)
	}
	if order.Address == nil || order.Address.Number != "123" {
		t.Errorf("address not echoed back: %+v", order.Address)
	}
}

func TestErrorStatusSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "order not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	if _, err := client.GetOrder(context.Background(), 999); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
