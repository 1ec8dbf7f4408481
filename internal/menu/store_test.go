package menu

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "menu.db"), testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.EnsureSeeded(context.Background(), ""); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	return store
}

func TestEnsureSeededIdempotent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	// Second seeding must not duplicate rows.
	if err := store.EnsureSeeded(ctx, ""); err != nil {
		t.Fatalf("second EnsureSeeded: %v", err)
	}

	pizzas, err := store.ListPizzas(ctx)
	if err != nil {
		t.Fatalf("ListPizzas: %v", err)
	}
	if len(pizzas) != 5 {
		t.Errorf("got %d pizzas, want 5", len(pizzas))
	}
}

func TestListMenu(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	sizes, err := store.ListSizes(ctx)
	if err != nil {
		t.Fatalf("ListSizes: %v", err)
	}
	if len(sizes) != 4 {
		t.Errorf("got %d sizes, want 4", len(sizes))
	}

	crusts, err := store.ListCrusts(ctx)
	if err != nil {
		t.Fatalf("ListCrusts: %v", err)
	}
	if len(crusts) != 3 {
		t.Errorf("got %d crusts, want 3", len(crusts))
	}
}

func TestGetPizzaByFlavor(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		flavor     string
		wantFlavor string
		wantNil    bool
	}{
		{"exact", "Calabresa", "Calabresa", false},
		{"case insensitive", "calabresa", "Calabresa", false},
		{"fuzzy typo", "margerita", "Margherita", false},
		{"partial", "quatro queijos", "Quatro Queijos", false},
		{"fragment below threshold", "frango", "", true},
		{"unknown", "estrogonofe", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pizza, err := store.GetPizzaByFlavor(ctx, tt.flavor)
			if err != nil {
				t.Fatalf("GetPizzaByFlavor(%q): %v", tt.flavor, err)
			}
			if tt.wantNil {
				if pizza != nil {
					t.Fatalf("got %+v, want nil", pizza)
				}
				return
			}
			if pizza == nil {
				t.Fatalf("got nil, want %q", tt.wantFlavor)
			}
			if pizza.Flavor != tt.wantFlavor {
				t.Errorf("got flavor %q, want %q", pizza.Flavor, tt.wantFlavor)
			}
		})
	}
}

func TestGetPricedItem(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		flavor  string
		size    string
		crust   string
		wantNil bool
	}{
		{"full match", "Calabresa", "Grande", "Tradicional", false},
		{"fuzzy crust", "frango com catupiry", "grande", "catupiry", false},
		{"fuzzy everything", "margerita", "media", "cheddar", false},
		{"unknown flavor", "estrogonofe", "Grande", "Tradicional", true},
		{"unknown size", "Calabresa", "colossal", "Tradicional", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := store.GetPricedItem(ctx, tt.flavor, tt.size, tt.crust)
			if err != nil {
				t.Fatalf("GetPricedItem: %v", err)
			}
			if tt.wantNil {
				if item != nil {
					t.Fatalf("got %+v, want nil", item)
				}
				return
			}
			if item == nil {
				t.Fatal("got nil, want a priced item")
			}
			if item.Price <= 0 {
				t.Errorf("got price %.2f, want > 0", item.Price)
			}
		})
	}
}

func TestGetPricedItemResolvesCanonicalNames(t *testing.T) {
	store := testStore(t)

	item, err := store.GetPricedItem(context.Background(), "frango catupiry", "grande", "catupiry")
	if err != nil {
		t.Fatalf("GetPricedItem: %v", err)
	}
	if item == nil {
		t.Fatal("got nil, want a priced item")
	}
	if item.Flavor != "Frango com Catupiry" {
		t.Errorf("got flavor %q, want %q", item.Flavor, "Frango com Catupiry")
	}
	if item.Size != "Grande" {
		t.Errorf("got size %q, want %q", item.Size, "Grande")
	}
	if item.Crust != "Catupiry Recheada" {
		t.Errorf("got crust %q, want %q", item.Crust, "Catupiry Recheada")
	}
}
