package pgx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pgxv5 "github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

// choiceTables maps a property name (lowercased) to the table holding its
// choice values. The table name is always taken from this map, never from
// input, so it can be spliced into SQL directly.
var choiceTables = map[string]string{
	"jurisdiction":               "choices_jurisdiction",
	"gender":                     "choices_gender",
	"religion":                   "choices_religion",
	"ethnicity":                  "choices_ethnicity",
	"political affiliation":      "choices_political_affiliation",
	"political party source":     "choices_party_source",
	"role":                       "choices_role",
	"sector":                     "choices_sector",
	"selection method":           "choices_selection_method",
	"termination reason":         "choices_termination_reason",
	"nomination process":         "choices_nomination_process",
	"judicial committee actions": "choices_judicial_committee",
	"vote type":                  "choices_vote_type",
	"opinion type":               "choices_opinion_type",
	"precedential status":        "choices_precedential_status",
	"decision leaning":           "choices_decision_leaning",
	"nature of suit":             "choices_nature_of_suit",
}

// Catalog resolves published schema ids from the catalog tables. Every
// lookup is memoized for the life of the process; concurrent misses for
// the same key share a single query.
type Catalog struct {
	conn pgxIConn

	mu    sync.RWMutex
	cache map[string]string
	group singleflight.Group
}

func NewCatalog(conn pgxIConn) *Catalog {
	return &Catalog{
		conn:  conn,
		cache: make(map[string]string),
	}
}

func (c *Catalog) cached(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.cache[key]
	return id, ok
}

func (c *Catalog) lookup(ctx context.Context, key, query string, args ...any) (string, error) {
	if id, ok := c.cached(key); ok {
		return id, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		var id string
		err := c.conn.QueryRow(ctx, query, args...).Scan(&id)
		if errors.Is(err, pgxv5.ErrNoRows) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return id, nil
	})
	if err != nil {
		return "", fmt.Errorf("catalog lookup %q: %w", key, err)
	}

	id := res.(string)
	c.mu.Lock()
	c.cache[key] = id
	c.mu.Unlock()
	return id, nil
}

func (c *Catalog) TypeID(ctx context.Context, name string) (string, error) {
	return c.lookup(ctx, "type:"+strings.ToLower(name),
		`SELECT COALESCE(geo_id, '') FROM cl_types WHERE TRIM(name) ILIKE TRIM($1) LIMIT 1`, name)
}

func (c *Catalog) SourceID(ctx context.Context, name string) (string, error) {
	return c.lookup(ctx, "source:"+strings.ToLower(name),
		`SELECT COALESCE(geo_id, '') FROM sources_list WHERE TRIM(name) ILIKE TRIM($1) LIMIT 1`, name)
}

func (c *Catalog) Property(ctx context.Context, owner, name string) (string, error) {
	key := "property:" + strings.ToLower(owner) + ":" + strings.ToLower(name)
	return c.lookup(ctx, key,
		`SELECT COALESCE(property_id, '')
		   FROM all_properties
		  WHERE TRIM(property_name) ILIKE TRIM($1) AND TRIM(belongs_to) ILIKE TRIM($2)
		  LIMIT 1`, name, owner)
}

// PropertyChoice resolves a property and one of its choices. An unresolved
// property short-circuits the choice lookup; an unresolved choice still
// returns the property id.
func (c *Catalog) PropertyChoice(ctx context.Context, owner, name, choice string) (string, string, error) {
	propertyID, err := c.Property(ctx, owner, name)
	if err != nil || propertyID == "" {
		return "", "", err
	}

	table, ok := choiceTables[strings.ToLower(name)]
	if !ok {
		return propertyID, "", nil
	}

	key := "choice:" + table + ":" + strings.ToLower(choice)
	query := fmt.Sprintf(
		`SELECT COALESCE(geo_id, '') FROM %s
		  WHERE TRIM(choice_key) ILIKE TRIM($1) OR TRIM(choice_value) ILIKE TRIM($1)
		  LIMIT 1`, table)
	choiceID, err := c.lookup(ctx, key, query, choice)
	if err != nil {
		return "", "", err
	}
	return propertyID, choiceID, nil
}
