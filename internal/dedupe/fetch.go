package dedupe

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fitsync/fitsync/client/notion"
)

// Querier pages through a Notion database.
type Querier interface {
	QueryDatabase(ctx context.Context, databaseID string, req notion.QueryDatabaseRequest) (*notion.QueryDatabaseResponse, error)
}

// Inventory is every activity in a database, in fetch order, bucketed by key.
type Inventory struct {
	All     []Activity
	buckets map[string][]Activity
	keys    []string // first-seen order
}

// NewInventory returns an empty Inventory.
func NewInventory() *Inventory {
	return &Inventory{buckets: make(map[string][]Activity)}
}

// Add appends a to the inventory and to its key's bucket.
func (inv *Inventory) Add(a Activity) {
	inv.All = append(inv.All, a)
	key := a.Key()
	if _, seen := inv.buckets[key]; !seen {
		inv.keys = append(inv.keys, key)
	}
	inv.buckets[key] = append(inv.buckets[key], a)
}

// Bucket returns the activities sharing key, in fetch order.
func (inv *Inventory) Bucket(key string) []Activity {
	return inv.buckets[key]
}

// Keys returns the distinct keys in the order they were first seen.
func (inv *Inventory) Keys() []string {
	return inv.keys
}

// FetchAll queries every page of the database. It stops when the server
// reports no further results; any query error aborts the fetch.
func FetchAll(ctx context.Context, q Querier, databaseID string, pageSize int) (*Inventory, error) {
	inv := NewInventory()
	req := notion.QueryDatabaseRequest{PageSize: pageSize}

	for page := 1; ; page++ {
		resp, err := q.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("query database page %d: %w", page, err)
		}
		for _, p := range resp.Results {
			inv.Add(FromPage(p))
		}
		recordsFetchedTotal.Add(float64(len(resp.Results)))
		log.Debug().Int("page", page).Int("results", len(resp.Results)).Bool("has_more", resp.HasMore).Msg("fetched database page")

		if !resp.HasMore {
			break
		}
		if resp.NextCursor == "" {
			return nil, fmt.Errorf("query database page %d: has_more set without next_cursor", page)
		}
		req.StartCursor = resp.NextCursor
	}

	log.Info().Int("activities", len(inv.All)).Int("distinct_keys", len(inv.keys)).Msg("fetched all activities")
	return inv, nil
}
