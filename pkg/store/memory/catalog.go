// Package memory provides map-backed implementations of the store
// interfaces for tests and dry runs.
package memory

import (
	"context"
	"strings"
)

// Catalog resolves schema ids from injected maps. Keys are matched
// case-insensitively after trimming, like the database-backed catalog.
type Catalog struct {
	Types      map[string]string
	Sources    map[string]string
	Properties map[string]string // "owner|name"
	Choices    map[string]string // "owner|name|choice"
}

func NewCatalog() *Catalog {
	return &Catalog{
		Types:      make(map[string]string),
		Sources:    make(map[string]string),
		Properties: make(map[string]string),
		Choices:    make(map[string]string),
	}
}

func norm(parts ...string) string {
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}
	return strings.Join(parts, "|")
}

func (c *Catalog) SetType(name, id string)   { c.Types[norm(name)] = id }
func (c *Catalog) SetSource(name, id string) { c.Sources[norm(name)] = id }

func (c *Catalog) SetProperty(owner, name, id string) {
	c.Properties[norm(owner, name)] = id
}
func (c *Catalog) SetChoice(owner, name, choice, id string) {
	c.Choices[norm(owner, name, choice)] = id
}

func (c *Catalog) TypeID(_ context.Context, name string) (string, error) {
	return c.Types[norm(name)], nil
}

func (c *Catalog) SourceID(_ context.Context, name string) (string, error) {
	return c.Sources[norm(name)], nil
}

func (c *Catalog) Property(_ context.Context, owner, name string) (string, error) {
	return c.Properties[norm(owner, name)], nil
}

func (c *Catalog) PropertyChoice(_ context.Context, owner, name, choice string) (string, string, error) {
	propertyID := c.Properties[norm(owner, name)]
	if propertyID == "" {
		return "", "", nil
	}
	return propertyID, c.Choices[norm(owner, name, choice)], nil
}
