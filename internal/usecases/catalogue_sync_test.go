package usecases

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogueCSV = `id,name,category,description,price,currency
SKU_1,Lawn Suit,Clothing,3 piece,4500,PKR
SKU_2,Dupatta,Clothing,Chiffon,1200,PKR
SKU_3,Broken,Clothing,bad price,abc,PKR
,No Id,Clothing,,100,PKR
SKU_4,Short row
SKU_1,Lawn Suit (new),Clothing,3 piece,4800,PKR
`

func TestSyncCatalogue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := SyncCatalogue(ctx, store, strings.NewReader(catalogueCSV), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	items, err := store.ListCatalogue(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "SKU_1", items[0].ID)
	assert.Equal(t, "Lawn Suit (new)", items[0].Name)
	assert.Equal(t, int64(4800), items[0].Price)
	assert.Equal(t, "SKU_2", items[1].ID)
}

func TestSyncCatalogueFile(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "catalogue.csv")
	require.NoError(t, os.WriteFile(path, []byte(catalogueCSV), 0o644))

	n, err := SyncCatalogueFile(context.Background(), store, path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = SyncCatalogueFile(context.Background(), store, filepath.Join(t.TempDir(), "missing.csv"), zerolog.Nop())
	assert.Error(t, err)
}
