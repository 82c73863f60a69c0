package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsync/fitsync/internal/cli"
	"github.com/fitsync/fitsync/internal/config"
)

const testDB = "0a1b2c3d4e5f60718293a4b5c6d7e8f9"

type row struct {
	id, date, typ, name, created string
}

// notionStub serves a fixed set of rows one per query page and records
// archive requests.
type notionStub struct {
	rows []row

	mu       sync.Mutex
	queries  int
	archived []string
}

func (s *notionStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/databases/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StartCursor string `json:"start_cursor"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		s.mu.Lock()
		s.queries++
		s.mu.Unlock()

		i := 0
		if req.StartCursor != "" {
			_, _ = fmt.Sscanf(req.StartCursor, "cursor-%d", &i)
		}
		resp := map[string]any{"object": "list", "results": []any{}, "has_more": false, "next_cursor": nil}
		if i < len(s.rows) {
			resp["results"] = []any{s.rows[i].page()}
		}
		if i+1 < len(s.rows) {
			resp["has_more"] = true
			resp["next_cursor"] = fmt.Sprintf("cursor-%d", i+1)
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/v1/pages/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["archived"])

		id := strings.TrimPrefix(r.URL.Path, "/v1/pages/")
		s.mu.Lock()
		s.archived = append(s.archived, id)
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "page", "id": id, "archived": true})
	})
	return mux
}

func (r row) page() map[string]any {
	return map[string]any{
		"object":           "page",
		"id":               r.id,
		"created_time":     r.created,
		"last_edited_time": r.created,
		"properties": map[string]any{
			"Date":          map[string]any{"type": "date", "date": map[string]any{"start": r.date}},
			"Activity Type": map[string]any{"type": "select", "select": map[string]any{"name": r.typ}},
			"Activity Name": map[string]any{"type": "title", "title": []any{
				map[string]any{"type": "text", "text": map[string]any{"content": r.name}},
			}},
		},
	}
}

func setup(t *testing.T, rows ...row) *notionStub {
	t.Helper()
	stub := &notionStub{rows: rows}
	srv := httptest.NewServer(stub.handler(t))
	t.Cleanup(srv.Close)

	t.Setenv("NOTION_TOKEN", "secret")
	t.Setenv("NOTION_DB_ID", testDB)
	t.Setenv("NOTION_BASE_URL", srv.URL)
	t.Setenv("LOG_LEVEL", "error")
	return stub
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

var threeRows = []row{
	{"page-a", "2024-01-01", "Run", "Morning Run", "2024-01-01T00:00:01.000Z"},
	{"page-b", "2024-01-01", "Run", "Morning Run", "2024-01-01T00:00:02.000Z"},
	{"page-c", "2024-01-02", "Run", "Evening Run", "2024-01-01T00:00:03.000Z"},
}

func TestArchivesDuplicatesAfterConfirmation(t *testing.T) {
	stub := setup(t, threeRows...)

	out, err := execute(t, "yes\ny\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"page-b"}, stub.archived)
	assert.Equal(t, 3, stub.queries)
	assert.Contains(t, out, "Found 3 total activities")
	assert.Contains(t, out, "Keeping: page-a")
	assert.Contains(t, out, "Found 1 duplicate activities to remove.")
	assert.Contains(t, out, "[1/1] Archived: Morning Run on 2024-01-01")
	assert.Contains(t, out, "Note: Duplicates were archived (not permanently deleted).")
}

func TestFirstPromptDeclined(t *testing.T) {
	stub := setup(t, threeRows...)

	_, err := execute(t, "no\n")
	assert.ErrorIs(t, err, cli.ErrCancelled)
	assert.Zero(t, stub.queries)

	var report bytes.Buffer
	assert.Equal(t, 0, errorHandler.Report(&report, err))
	assert.Equal(t, "Cleanup cancelled.\n", report.String())
}

func TestSecondPromptDeclined(t *testing.T) {
	stub := setup(t, threeRows...)

	_, err := execute(t, "y\nnope\n")
	assert.ErrorIs(t, err, cli.ErrCancelled)
	assert.Equal(t, 3, stub.queries)
	assert.Empty(t, stub.archived)
}

func TestCleanDatabase(t *testing.T) {
	stub := setup(t, threeRows[0], threeRows[2])

	out, err := execute(t, "yes\n")
	require.NoError(t, err)
	assert.Empty(t, stub.archived)
	assert.Contains(t, out, "No duplicates found! Your database is clean.")
	assert.NotContains(t, out, "Proceed with removal?")
}

func TestMissingConfiguration(t *testing.T) {
	setup(t)
	t.Setenv("NOTION_TOKEN", "")

	_, err := execute(t, "yes\n")
	require.ErrorIs(t, err, config.ErrInvalid)

	var report bytes.Buffer
	assert.Equal(t, 1, errorHandler.Report(&report, err))
	assert.Contains(t, report.String(), "NOTION_TOKEN")
}

func TestRejectsArguments(t *testing.T) {
	setup(t)
	_, err := execute(t, "", "extra")
	assert.Error(t, err)
}
