package notion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type updatePageRequest struct {
	Archived bool `json:"archived"`
}

// ArchivePage moves a page to the trash. Notion keeps archived pages
// restorable, so this is a soft delete.
func (c *Client) ArchivePage(ctx context.Context, pageID string) (*Page, error) {
	if pageID == "" {
		return nil, fmt.Errorf("archive page: empty page id")
	}
	var page Page
	path := fmt.Sprintf("/v1/pages/%s", url.PathEscape(pageID))
	if err := c.do(ctx, "archive page", http.MethodPatch, path, updatePageRequest{Archived: true}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
