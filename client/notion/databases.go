package notion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// QueryDatabase fetches one page of rows from a database.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req QueryDatabaseRequest) (*QueryDatabaseResponse, error) {
	id, err := NormalizeID(databaseID)
	if err != nil {
		return nil, err
	}
	var resp QueryDatabaseResponse
	path := fmt.Sprintf("/v1/databases/%s/query", url.PathEscape(id))
	if err := c.do(ctx, "query database", http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
