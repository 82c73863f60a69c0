package notion

import (
	"strings"
	"time"
)

// Page is a database row as returned by the query endpoint.
type Page struct {
	Object         string                   `json:"object"`
	ID             string                   `json:"id"`
	CreatedTime    time.Time                `json:"created_time"`
	LastEditedTime time.Time                `json:"last_edited_time"`
	Archived       bool                     `json:"archived"`
	Properties     map[string]PropertyValue `json:"properties"`
}

// PropertyValue holds the subset of Notion property types the tools read.
// Absent or null values decode as nil.
type PropertyValue struct {
	ID       string        `json:"id,omitempty"`
	Type     string        `json:"type"`
	Date     *DateValue    `json:"date,omitempty"`
	Select   *SelectOption `json:"select,omitempty"`
	Title    []RichText    `json:"title,omitempty"`
	RichText []RichText    `json:"rich_text,omitempty"`
}

type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type RichText struct {
	Type      string    `json:"type"`
	Text      *TextSpan `json:"text,omitempty"`
	PlainText string    `json:"plain_text,omitempty"`
}

type TextSpan struct {
	Content string `json:"content"`
}

// QueryDatabaseRequest is the body of POST /v1/databases/{id}/query.
type QueryDatabaseRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// QueryDatabaseResponse is one page of query results.
type QueryDatabaseResponse struct {
	Object     string `json:"object"`
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// DateDay returns the calendar-day part (before "T") of a date property's
// start value, or "" if the property is missing or empty.
func (p Page) DateDay(name string) string {
	v, ok := p.Properties[name]
	if !ok || v.Date == nil {
		return ""
	}
	day, _, _ := strings.Cut(v.Date.Start, "T")
	return day
}

// SelectName returns the selected option name, or "".
func (p Page) SelectName(name string) string {
	v, ok := p.Properties[name]
	if !ok || v.Select == nil {
		return ""
	}
	return v.Select.Name
}

// FirstTitle returns the text content of the first title fragment, or "".
func (p Page) FirstTitle(name string) string {
	v, ok := p.Properties[name]
	if !ok || len(v.Title) == 0 || v.Title[0].Text == nil {
		return ""
	}
	return v.Title[0].Text.Content
}
