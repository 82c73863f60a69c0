package dedupe

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func pageJSON(id, date string, createdSec int) string {
	return fmt.Sprintf(`{
		"object": "page",
		"id": %q,
		"created_time": %q,
		"last_edited_time": %q,
		"properties": {
			"Date": {"type": "date", "date": {"start": %q}},
			"Activity Type": {"type": "select", "select": {"name": "Run"}},
			"Activity Name": {"type": "title", "title": [{"type": "text", "text": {"content": "Morning Run"}}]}
		}
	}`, id, at(createdSec).Format("2006-01-02T15:04:05.000Z"), at(createdSec).Format("2006-01-02T15:04:05.000Z"), date)
}
