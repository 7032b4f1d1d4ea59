package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/furnilens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `uniq_id,title,price,categories,images,material,color,brand,description
a1,Oak Dining Chair,$89.99,"['Furniture', 'Chairs']","['https://img.example.com/c.jpg']",Oak,Brown,Woodly,Solid oak chair
a2,Glass Coffee Table,$250.00,"['Furniture', 'Tables']",[],Glass,Clear,Vitra,
,Velvet Sofa,"$1,099.00","['Furniture', 'Sofas']",,Velvet,Green,Plush,Three seat sofa
a1,Duplicate Chair,$10,[],[],,,,
a4,,$5,[],[],,,,
a5,Bamboo Stool,,['Stools'],,Bamboo,nan,None,
`

func TestLoader_Load(t *testing.T) {
	loader := NewLoader()

	catalog, err := loader.Load(context.Background(), strings.NewReader(sampleCSV), "sample.csv")

	require.NoError(t, err)
	require.Equal(t, 4, catalog.Len())
	assert.Equal(t, "sample.csv", catalog.Source)

	ids := make([]string, 0, catalog.Len())
	for _, p := range catalog.Products {
		ids = append(ids, p.ID)
	}
	// third row has no id and gets the count of rows accepted before it
	assert.Equal(t, []string{"a1", "a2", "product-2", "a5"}, ids)

	first, ok := catalog.Get("a1")
	require.True(t, ok)
	assert.Equal(t, "Oak Dining Chair", first.Title)
	assert.Equal(t, "Chairs", first.PrimaryCategory)

	sofa, ok := catalog.Get("product-2")
	require.True(t, ok)
	require.NotNil(t, sofa.Price)
	assert.Equal(t, 1099.0, *sofa.Price)

	stool, ok := catalog.Get("a5")
	require.True(t, ok)
	assert.Nil(t, stool.Price)
	assert.Empty(t, stool.Color)
	assert.Empty(t, stool.Brand)
	assert.Equal(t, []string{"Stools"}, stool.Categories)

	table, _ := catalog.Get("a2")
	assert.Equal(t, "Glass Coffee Table", table.Description)
	assert.False(t, table.HasDescription)
}

func TestLoader_Deterministic(t *testing.T) {
	first, err := NewLoader().Load(context.Background(), strings.NewReader(sampleCSV), "sample.csv")
	require.NoError(t, err)
	second, err := NewLoader().Load(context.Background(), strings.NewReader(sampleCSV), "sample.csv")
	require.NoError(t, err)

	require.Equal(t, first.Len(), second.Len())
	assert.Equal(t, first.Products, second.Products)
	for _, p := range first.Products {
		got, ok := second.Get(p.ID)
		require.True(t, ok, "missing %s", p.ID)
		assert.Equal(t, p, got)
	}
}

func TestLoader_UniqueIDs(t *testing.T) {
	catalog, err := NewLoader().Load(context.Background(), strings.NewReader(sampleCSV), "sample.csv")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, p := range catalog.Products {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		assert.NotEmpty(t, p.Title)
	}
}

func TestLoader_HeaderCaseAndBOM(t *testing.T) {
	data := "\ufeffUNIQ_ID, Title ,Price\nz1,Lamp,$20\n"

	catalog, err := NewLoader().Load(context.Background(), strings.NewReader(data), "bom.csv")

	require.NoError(t, err)
	require.Equal(t, 1, catalog.Len())
	assert.Equal(t, "z1", catalog.Products[0].ID)
	assert.Equal(t, "Lamp", catalog.Products[0].Title)
}

func TestLoader_EmptyInput(t *testing.T) {
	catalog, err := NewLoader().Load(context.Background(), strings.NewReader(""), "empty.csv")

	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	assert.Equal(t, 0, catalog.Len())
}

func TestLoader_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	catalog, err := NewLoader().LoadFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 4, catalog.Len())
	assert.Equal(t, path, catalog.Source)
}

func TestLoader_MissingFile(t *testing.T) {
	catalog, err := NewLoader().LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))

	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	require.NotNil(t, catalog)
	assert.Equal(t, 0, catalog.Len())
}
