package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/models"

	"gopkg.in/yaml.v3"
)

// ErrNotFound no catalog item matches the requested type and slug.
var ErrNotFound = errors.New("catalog item not found")

// FileCatalog resolves treks and tours from a YAML file loaded at startup.
// It satisfies domain.Catalog; a CMS-backed implementation can replace it
// without touching the booking core.
type FileCatalog struct {
	items map[string]*models.CatalogItem
}

type catalogFile struct {
	Treks []models.CatalogItem `yaml:"treks"`
	Tours []models.CatalogItem `yaml:"tours"`
}

func LoadFile(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &FileCatalog{items: make(map[string]*models.CatalogItem)}
	if err := c.add(models.ItemTypeTrek, file.Treks); err != nil {
		return nil, err
	}
	if err := c.add(models.ItemTypeTour, file.Tours); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FileCatalog) add(itemType models.ItemType, items []models.CatalogItem) error {
	for i := range items {
		item := items[i]
		if item.Slug == "" {
			return fmt.Errorf("catalog %s %q has empty slug", itemType, item.Name)
		}
		if item.UnitPrice <= 0 {
			return fmt.Errorf("catalog %s %q has invalid unit price %d", itemType, item.Slug, item.UnitPrice)
		}
		if item.Currency == "" {
			return fmt.Errorf("catalog %s %q has empty currency", itemType, item.Slug)
		}

		key := itemKey(itemType, item.Slug)
		if _, exists := c.items[key]; exists {
			return fmt.Errorf("duplicate catalog slug %s/%s", itemType, item.Slug)
		}
		c.items[key] = &item
	}
	return nil
}

func (c *FileCatalog) Lookup(ctx context.Context, itemType models.ItemType, slug string) (*models.CatalogItem, error) {
	item, ok := c.items[itemKey(itemType, slug)]
	if !ok {
		return nil, ErrNotFound
	}
	// Return a copy so callers cannot mutate the catalog.
	out := *item
	return &out, nil
}

// Len reports how many items the catalog holds.
func (c *FileCatalog) Len() int {
	return len(c.items)
}

func itemKey(itemType models.ItemType, slug string) string {
	return string(itemType) + "/" + strings.ToLower(strings.TrimSpace(slug))
}
