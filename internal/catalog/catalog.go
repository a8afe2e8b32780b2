// Package catalog holds the static product reference data used by a scoring pass.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ProductAdvisor/internal/model"
)

// ErrUnknownKind is returned when a catalog file names a kind no rule can price.
var ErrUnknownKind = errors.New("unknown product kind")

// Product names of the default catalog.
const (
	NameTravelCard           = "Карта для путешествий"
	NamePremiumCard          = "Премиальная карта"
	NameCreditCard           = "Кредитная карта"
	NameFXExchange           = "Обмен валют"
	NameCashLoan             = "Кредит наличными"
	NameDepositSavings       = "Депозит Сберегательный (защита KDIF)"
	NameDepositAccumulative  = "Депозит Накопительный"
	NameDepositMulticurrency = "Депозит Мультивалютный (KZT/USD/RUB/EUR)"
	NameInvestment           = "Инвестиции"
	NameGold                 = "Золотые слитки"
)

// Catalog is a read-only, kind-indexed view over active products.
type Catalog struct {
	products []model.Product
	byKind   map[model.ProductKind]model.Product
}

// New builds a catalog from products. Inactive entries are dropped; when two
// active entries share a kind the first one wins.
func New(products []model.Product) (*Catalog, error) {
	c := &Catalog{byKind: make(map[model.ProductKind]model.Product)}
	for _, p := range products {
		if !p.Kind.Valid() {
			return nil, fmt.Errorf("product %q: %w: %q", p.Name, ErrUnknownKind, p.Kind)
		}
		if !p.Active {
			continue
		}
		if _, dup := c.byKind[p.Kind]; dup {
			continue
		}
		c.byKind[p.Kind] = p
		c.products = append(c.products, p)
	}
	return c, nil
}

// Default returns the bank's standard ten-product catalog.
func Default() *Catalog {
	c, _ := New(DefaultProducts())
	return c
}

// DefaultProducts lists the standard catalog entries in id order.
func DefaultProducts() []model.Product {
	premiumLimit := 100000.0
	return []model.Product{
		{ID: 1, Name: NameTravelCard, Kind: model.KindTravelCard, CashbackRate: 0.04, Active: true},
		{ID: 2, Name: NamePremiumCard, Kind: model.KindPremiumCard, CashbackRate: 0.02, MonthlyLimit: &premiumLimit, Active: true},
		{ID: 3, Name: NameCreditCard, Kind: model.KindCreditCard, CashbackRate: 0.10, Active: true},
		{ID: 4, Name: NameFXExchange, Kind: model.KindFXExchange, Active: true},
		{ID: 5, Name: NameCashLoan, Kind: model.KindCashLoan, BaseRate: 0.12, Active: true},
		{ID: 6, Name: NameDepositSavings, Kind: model.KindDepositSavings, BaseRate: 0.165, Active: true},
		{ID: 7, Name: NameDepositAccumulative, Kind: model.KindDepositAccumulative, BaseRate: 0.155, Active: true},
		{ID: 8, Name: NameDepositMulticurrency, Kind: model.KindDepositMulticurrency, BaseRate: 0.145, Active: true},
		{ID: 9, Name: NameInvestment, Kind: model.KindInvestment, Active: true},
		{ID: 10, Name: NameGold, Kind: model.KindGold, Active: true},
	}
}

type file struct {
	Products []model.Product `yaml:"products"`
}

// LoadFile reads a YAML catalog of the form {products: [...]}.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Products)
}

// Lookup returns the active product for kind.
func (c *Catalog) Lookup(kind model.ProductKind) (model.Product, bool) {
	if c == nil {
		return model.Product{}, false
	}
	p, ok := c.byKind[kind]
	return p, ok
}

// Products returns the active products in catalog order.
func (c *Catalog) Products() []model.Product {
	if c == nil {
		return nil
	}
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}

// ByName returns the active product with the given display name.
func (c *Catalog) ByName(name string) (model.Product, bool) {
	if c == nil {
		return model.Product{}, false
	}
	for _, p := range c.products {
		if p.Name == name {
			return p, true
		}
	}
	return model.Product{}, false
}
