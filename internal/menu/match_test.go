package menu

import "testing"

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
	}{
		{"calabresa", "calabresa", 1.0},
		{"margherita", "margherita", 1.0},
		{"catupiry", "catupiry recheada", 0.6},
	}

	for _, tt := range tests {
		got := similarity(tt.a, tt.b)
		if got < tt.min {
			t.Errorf("similarity(%q, %q) = %.3f, want >= %.3f", tt.a, tt.b, got, tt.min)
		}
	}
}

func TestBestMatch(t *testing.T) {
	crusts := []string{"Tradicional", "Catupiry Recheada", "Cheddar Recheada"}

	tests := []struct {
		name      string
		term      string
		threshold float64
		wantIdx   int
	}{
		{"exact", "tradicional", crustThreshold, 0},
		{"partial crust name", "catupiry", crustThreshold, 1},
		{"cheddar shorthand", "cheddar", crustThreshold, 2},
		{"nonsense below threshold", "abacaxi com pepperoni", crustThreshold, -1},
		{"empty term", "", crustThreshold, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, _ := bestMatch(tt.term, crusts, tt.threshold)
			if idx != tt.wantIdx {
				t.Errorf("bestMatch(%q) = %d, want %d", tt.term, idx, tt.wantIdx)
			}
		})
	}
}

func TestBestMatchFlavors(t *testing.T) {
	flavors := []string{"Margherita", "Calabresa", "Portuguesa", "Quatro Queijos", "Frango com Catupiry"}

	tests := []struct {
		name    string
		term    string
		wantIdx int
	}{
		{"exact", "calabresa", 1},
		{"typo", "margerita", 0},
		{"full compound name", "frango com catupiry", 4},
		// Fragments of a longer name stay below the 0.7 bar and must
		// be rejected, not promoted by substring containment.
		{"fragment frango", "frango", -1},
		{"fragment catupiry", "catupiry", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ratio := bestMatch(tt.term, flavors, flavorThreshold)
			if idx != tt.wantIdx {
				t.Errorf("bestMatch(%q) = %d (ratio %.3f), want %d", tt.term, idx, ratio, tt.wantIdx)
			}
		})
	}
}

func TestBestMatchSizes(t *testing.T) {
	sizes := []string{"Pequena", "Média", "Grande", "Gigante"}

	tests := []struct {
		term    string
		wantIdx int
	}{
		{"grande", 2},
		{"média", 1},
		{"media", 1}, // unaccented spelling still matches
		{"gigante", 3},
		{"tamanho família", -1},
	}

	for _, tt := range tests {
		idx, _ := bestMatch(tt.term, sizes, sizeThreshold)
		if idx != tt.wantIdx {
			t.Errorf("bestMatch(%q) = %d, want %d", tt.term, idx, tt.wantIdx)
		}
	}
}
