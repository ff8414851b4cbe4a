package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validCatalog = `
treks:
  - name: "Annapurna Base Camp Trek"
    slug: "annapurna-base-camp"
    location: "Annapurna, Nepal"
    duration: "11 days"
    unit_price: 89900
    currency: "USD"
tours:
  - name: "Kathmandu Heritage Tour"
    slug: "kathmandu-heritage"
    location: "Kathmandu, Nepal"
    duration: "3 days"
    unit_price: 24900
    currency: "USD"
`

func TestLoadFileAndLookup(t *testing.T) {
	c, err := LoadFile(writeCatalog(t, validCatalog))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	item, err := c.Lookup(context.Background(), models.ItemTypeTrek, "annapurna-base-camp")
	require.NoError(t, err)
	assert.Equal(t, "Annapurna Base Camp Trek", item.Name)
	assert.Equal(t, int64(89900), item.UnitPrice)
	assert.Equal(t, "USD", item.Currency)

	// Slugs are matched case-insensitively.
	item, err = c.Lookup(context.Background(), models.ItemTypeTour, "  Kathmandu-Heritage ")
	require.NoError(t, err)
	assert.Equal(t, "kathmandu-heritage", item.Slug)
}

func TestLookupNotFound(t *testing.T) {
	c, err := LoadFile(writeCatalog(t, validCatalog))
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), models.ItemTypeTrek, "no-such-trek")
	assert.ErrorIs(t, err, ErrNotFound)

	// Same slug under the wrong type does not resolve.
	_, err = c.Lookup(context.Background(), models.ItemTypeTour, "annapurna-base-camp")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupReturnsCopy(t *testing.T) {
	c, err := LoadFile(writeCatalog(t, validCatalog))
	require.NoError(t, err)

	item, err := c.Lookup(context.Background(), models.ItemTypeTrek, "annapurna-base-camp")
	require.NoError(t, err)
	item.UnitPrice = 1

	again, err := c.Lookup(context.Background(), models.ItemTypeTrek, "annapurna-base-camp")
	require.NoError(t, err)
	assert.Equal(t, int64(89900), again.UnitPrice)
}

func TestLoadFileRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing slug", `
treks:
  - name: "Nameless"
    unit_price: 100
    currency: "USD"
`},
		{"zero price", `
treks:
  - name: "Free Trek"
    slug: "free-trek"
    unit_price: 0
    currency: "USD"
`},
		{"missing currency", `
treks:
  - name: "No Currency"
    slug: "no-currency"
    unit_price: 100
`},
		{"duplicate slug", `
treks:
  - name: "One"
    slug: "same"
    unit_price: 100
    currency: "USD"
  - name: "Two"
    slug: "same"
    unit_price: 200
    currency: "USD"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeCatalog(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
