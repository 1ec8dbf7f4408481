// Package menu provides the SQLite-backed knowledge base for the
// pizzeria: flavors, sizes, crusts, and the price grid. Lookups tolerate
// customer misspellings through similarity-ratio matching.
package menu

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed seed.sql
var defaultSeed string

// Store manages menu persistence. Queries run on the database/sql pool,
// so concurrent sessions never share a cursor.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (creating if needed) the menu database at the given path.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// NewStoreWithDB creates a menu store using an existing database connection.
func NewStoreWithDB(db *sql.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS pizzas (
			id INTEGER PRIMARY KEY,
			sabor TEXT NOT NULL,
			descricao TEXT,
			ingredientes TEXT
		);

		CREATE TABLE IF NOT EXISTS tamanhos (
			id INTEGER PRIMARY KEY,
			tamanho TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS bordas (
			id INTEGER PRIMARY KEY,
			tipo TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS precos (
			pizza_id INTEGER NOT NULL,
			tamanho_id INTEGER NOT NULL,
			borda_id INTEGER NOT NULL,
			preco REAL NOT NULL,
			PRIMARY KEY (pizza_id, tamanho_id, borda_id),
			FOREIGN KEY (pizza_id) REFERENCES pizzas(id),
			FOREIGN KEY (tamanho_id) REFERENCES tamanhos(id),
			FOREIGN KEY (borda_id) REFERENCES bordas(id)
		);
	`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSeeded loads menu data when the pizzas table is empty. When
// seedFile is non-empty its SQL script is used, otherwise the embedded
// default menu.
func (s *Store) EnsureSeeded(ctx context.Context, seedFile string) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pizzas`).Scan(&count); err != nil {
		return fmt.Errorf("count pizzas: %w", err)
	}
	if count > 0 {
		return nil
	}

	script := defaultSeed
	if seedFile != "" {
		data, err := os.ReadFile(seedFile)
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}
		script = string(data)
	}

	if _, err := s.db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	s.logger.Info("menu database seeded", "seed_file", seedFile)
	return nil
}

// ListPizzas returns all pizzas ordered by flavor.
func (s *Store) ListPizzas(ctx context.Context) ([]Pizza, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sabor, descricao, ingredientes
		FROM pizzas
		ORDER BY sabor
	`)
	if err != nil {
		return nil, fmt.Errorf("query pizzas: %w", err)
	}
	defer rows.Close()

	var pizzas []Pizza
	for rows.Next() {
		var p Pizza
		if err := rows.Scan(&p.ID, &p.Flavor, &p.Description, &p.Ingredients); err != nil {
			return nil, fmt.Errorf("scan pizza: %w", err)
		}
		pizzas = append(pizzas, p)
	}
	return pizzas, rows.Err()
}

// GetPizzaByFlavor resolves a pizza by flavor text. An exact
// (case-insensitive) match short-circuits; otherwise the closest flavor
// with similarity >= 0.7 is returned. Returns (nil, nil) when nothing
// clears the threshold.
func (s *Store) GetPizzaByFlavor(ctx context.Context, flavor string) (*Pizza, error) {
	var p Pizza
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sabor, descricao, ingredientes
		FROM pizzas
		WHERE LOWER(sabor) = LOWER(?)
		LIMIT 1
	`, flavor).Scan(&p.ID, &p.Flavor, &p.Description, &p.Ingredients)
	if err == nil {
		return &p, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("query pizza: %w", err)
	}

	pizzas, err := s.ListPizzas(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, len(pizzas))
	for i, pz := range pizzas {
		candidates[i] = pz.Flavor
	}

	idx, ratio := bestMatch(flavor, candidates, flavorThreshold)
	if idx < 0 {
		return nil, nil
	}
	s.logger.Debug("fuzzy flavor match", "term", flavor, "match", pizzas[idx].Flavor, "ratio", ratio)
	return &pizzas[idx], nil
}

// ListSizes returns all sizes in menu order.
func (s *Store) ListSizes(ctx context.Context) ([]Size, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, tamanho FROM tamanhos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sizes: %w", err)
	}
	defer rows.Close()

	var sizes []Size
	for rows.Next() {
		var sz Size
		if err := rows.Scan(&sz.ID, &sz.Name); err != nil {
			return nil, fmt.Errorf("scan size: %w", err)
		}
		sizes = append(sizes, sz)
	}
	return sizes, rows.Err()
}

// ListCrusts returns all crust types in menu order.
func (s *Store) ListCrusts(ctx context.Context) ([]Crust, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, tipo FROM bordas ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query crusts: %w", err)
	}
	defer rows.Close()

	var crusts []Crust
	for rows.Next() {
		var c Crust
		if err := rows.Scan(&c.ID, &c.Type); err != nil {
			return nil, fmt.Errorf("scan crust: %w", err)
		}
		crusts = append(crusts, c)
	}
	return crusts, rows.Err()
}

// GetPrice returns the price for the (pizza, size, crust) triple.
// The second return value reports whether a price row exists.
func (s *Store) GetPrice(ctx context.Context, pizzaID, sizeID, crustID int) (float64, bool, error) {
	var price float64
	err := s.db.QueryRowContext(ctx, `
		SELECT preco
		FROM precos
		WHERE pizza_id = ? AND tamanho_id = ? AND borda_id = ?
	`, pizzaID, sizeID, crustID).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query price: %w", err)
	}
	return price, true, nil
}

// GetPricedItem resolves the flavor first, then fuzzy-matches size
// (threshold 0.7) and crust (threshold 0.6) independently. Returns
// (nil, nil) when any component fails to clear its threshold or no price
// row exists for the resolved triple.
func (s *Store) GetPricedItem(ctx context.Context, flavor, size, crust string) (*PricedItem, error) {
	pizza, err := s.GetPizzaByFlavor(ctx, flavor)
	if err != nil {
		return nil, err
	}
	if pizza == nil {
		return nil, nil
	}

	sizes, err := s.ListSizes(ctx)
	if err != nil {
		return nil, err
	}
	crusts, err := s.ListCrusts(ctx)
	if err != nil {
		return nil, err
	}

	sizeNames := make([]string, len(sizes))
	for i, sz := range sizes {
		sizeNames[i] = sz.Name
	}
	crustNames := make([]string, len(crusts))
	for i, c := range crusts {
		crustNames[i] = c.Type
	}

	sizeIdx, _ := bestMatch(size, sizeNames, sizeThreshold)
	crustIdx, _ := bestMatch(crust, crustNames, crustThreshold)
	if sizeIdx < 0 || crustIdx < 0 {
		return nil, nil
	}

	price, ok, err := s.GetPrice(ctx, pizza.ID, sizes[sizeIdx].ID, crusts[crustIdx].ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return &PricedItem{
		PizzaID:     pizza.ID,
		Flavor:      pizza.Flavor,
		Description: pizza.Description,
		Ingredients: pizza.Ingredients,
		SizeID:      sizes[sizeIdx].ID,
		Size:        sizes[sizeIdx].Name,
		CrustID:     crusts[crustIdx].ID,
		Crust:       crusts[crustIdx].Type,
		Price:       price,
	}, nil
}
