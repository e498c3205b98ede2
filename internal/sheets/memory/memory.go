package memory

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"baketrack/internal/core"
	ports "baketrack/internal/sheets"
)

var _ ports.DataService = (*Store)(nil)

// Store is an in-process DataService, used for local runs and tests.
type Store struct {
	mu       sync.Mutex
	txs      []core.Transaction
	products []core.Product
	profile  core.Profile
	nextID   int64
	now      func() time.Time
}

func New(products []core.Product) *Store {
	s := &Store{profile: core.GuestProfile, nextID: 1, now: time.Now}
	for _, p := range products {
		if p.ID == 0 {
			p.ID = s.nextID
		}
		s.nextID = max(s.nextID, p.ID+1)
		s.products = append(s.products, p)
	}
	return s
}

// NewFromFiles seeds the catalog from base/seed_products.txt, one product
// per line as "name|price|costPrice|stock|image". Missing or empty files
// fall back to a small default catalog.
func NewFromFiles(base string) *Store {
	products := readProducts(filepath.Join(base, "seed_products.txt"))
	if len(products) == 0 {
		products = DefaultProducts()
	}
	return New(products)
}

func DefaultProducts() []core.Product {
	p := func(name string, price, cost int64, stock int, image string) core.Product {
		return core.Product{
			Name:      name,
			Price:     decimal.NewFromInt(price),
			CostPrice: core.Some(decimal.NewFromInt(cost)),
			Stock:     stock,
			Image:     image,
		}
	}
	return []core.Product{
		p("Cupcake Coklat", 12000, 6000, 24, "🧁"),
		p("Donat Gula", 7000, 3000, 30, "🍩"),
		p("Croissant", 18000, 9000, 12, "🥐"),
		p("Roti Tawar", 15000, 8000, 10, "🍞"),
		p("Cheese Cake", 35000, 20000, 6, "🍰"),
	}
}

// SetClock overrides the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) SubmitTransaction(_ context.Context, tx core.Transaction, isUpdate bool) (string, error) {
	tx.Normalize()
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if isUpdate {
		i := slices.IndexFunc(s.txs, func(t core.Transaction) bool { return t.ID == tx.ID })
		if tx.ID == "" || i < 0 {
			return "", fmt.Errorf("transaction %q: %w", tx.ID, core.ErrNotFound)
		}
		if tx.Timestamp == "" {
			tx.Timestamp = s.txs[i].Timestamp
		}
		s.txs[i] = tx
		return tx.ID, nil
	}

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Timestamp == "" {
		tx.Timestamp = s.now().UTC().Format(time.RFC3339)
	}
	s.txs = append(s.txs, tx)
	return tx.ID, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.txs, func(t core.Transaction) bool { return t.ID == id })
	if i < 0 {
		return fmt.Errorf("transaction %q: %w", id, core.ErrNotFound)
	}
	s.txs = slices.Delete(s.txs, i, i+1)
	return nil
}

// ListTransactions returns transactions in insertion order.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.txs), nil
}

func (s *Store) ListProducts(_ context.Context) ([]core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products), nil
}

func (s *Store) SubmitProduct(_ context.Context, p core.Product, isUpdate bool) (int64, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if isUpdate {
		i := slices.IndexFunc(s.products, func(q core.Product) bool { return q.ID == p.ID })
		if i < 0 {
			return 0, fmt.Errorf("product %d: %w", p.ID, core.ErrNotFound)
		}
		s.products[i] = p
		return p.ID, nil
	}
	p.ID = s.nextID
	s.nextID++
	s.products = append(s.products, p)
	return p.ID, nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.products, func(q core.Product) bool { return q.ID == id })
	if i < 0 {
		return fmt.Errorf("product %d: %w", id, core.ErrNotFound)
	}
	s.products = slices.Delete(s.products, i, i+1)
	return nil
}

func (s *Store) GetProfile(_ context.Context) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, nil
}

func (s *Store) UpdateProfile(_ context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return nil
}

func readProducts(path string) []core.Product {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []core.Product
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := parseProductLine(line)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

var errBadSeedLine = errors.New("malformed seed line")

func parseProductLine(line string) (core.Product, error) {
	parts := strings.Split(line, "|")
	for len(parts) < 5 {
		parts = append(parts, "")
	}
	p := core.Product{Name: strings.TrimSpace(parts[0]), Image: strings.TrimSpace(parts[4])}
	if p.Name == "" {
		return p, errBadSeedLine
	}
	price, err := core.ParseAmount(parts[1])
	if err != nil {
		return p, errBadSeedLine
	}
	p.Price = price
	if c := strings.TrimSpace(parts[2]); c != "" {
		cost, err := core.ParseAmount(c)
		if err != nil {
			return p, errBadSeedLine
		}
		p.CostPrice = core.Some(cost)
	}
	if st := strings.TrimSpace(parts[3]); st != "" {
		if p.Stock, err = strconv.Atoi(st); err != nil {
			return p, errBadSeedLine
		}
	}
	return p, nil
}
