// Package dedupe finds activities that were logged more than once in a
// Notion database and archives all but the oldest copy.
//
// Two rows are duplicates when their date, activity type and activity name
// match exactly. The key deliberately ignores the page id, so two genuinely
// separate activities with identical text on the same day are treated as
// one; operators confirm the plan before anything is archived.
package dedupe

import (
	"time"

	"github.com/fitsync/fitsync/client/notion"
)

// Database property names read from each page.
const (
	PropDate         = "Date"
	PropActivityType = "Activity Type"
	PropActivityName = "Activity Name"
)

// Activity is the part of a Notion page needed to detect duplicates.
type Activity struct {
	ID             string
	Date           string // calendar day, YYYY-MM-DD
	ActivityType   string
	ActivityName   string
	CreatedTime    time.Time
	LastEditedTime time.Time
}

// Key is the composite natural key "date|type|name".
func (a Activity) Key() string {
	return a.Date + "|" + a.ActivityType + "|" + a.ActivityName
}

// FromPage extracts an Activity. Missing properties become empty strings.
func FromPage(p notion.Page) Activity {
	return Activity{
		ID:             p.ID,
		Date:           p.DateDay(PropDate),
		ActivityType:   p.SelectName(PropActivityType),
		ActivityName:   p.FirstTitle(PropActivityName),
		CreatedTime:    p.CreatedTime,
		LastEditedTime: p.LastEditedTime,
	}
}
