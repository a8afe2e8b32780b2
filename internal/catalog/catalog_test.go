package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProductAdvisor/internal/model"
)

func TestDefault_HasEveryKind(t *testing.T) {
	c := Default()
	for _, k := range model.Kinds {
		p, ok := c.Lookup(k)
		require.True(t, ok, "kind %s missing", k)
		assert.NotEmpty(t, p.Name)
	}
	assert.Len(t, c.Products(), 10)
}

func TestNew_DropsInactive(t *testing.T) {
	products := DefaultProducts()
	products[0].Active = false

	c, err := New(products)
	require.NoError(t, err)

	_, ok := c.Lookup(model.KindTravelCard)
	assert.False(t, ok)
	_, ok = c.ByName(NameTravelCard)
	assert.False(t, ok)
	assert.Len(t, c.Products(), 9)
}

func TestNew_RejectsUnknownKind(t *testing.T) {
	_, err := New([]model.Product{{ID: 1, Name: "Ипотека", Kind: "mortgage", Active: true}})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.yaml")
	content := `products:
  - id: 4
    name: Обмен валют
    kind: fx_exchange
    active: true
  - id: 10
    name: Золотые слитки
    kind: gold
    active: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)

	p, ok := c.Lookup(model.KindFXExchange)
	require.True(t, ok)
	assert.Equal(t, 4, p.ID)
	_, ok = c.Lookup(model.KindGold)
	assert.False(t, ok)
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	_, ok := c.Lookup(model.KindGold)
	assert.False(t, ok)
	assert.Nil(t, c.Products())
}
