package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDB = "0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9"

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New("secret-token", append([]Option{WithBaseURL(srv.URL)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsEmptyToken(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestQueryDatabaseSendsCursorAndHeaders(t *testing.T) {
	var gotBody QueryDatabaseRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/databases/"+testDB+"/query", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, DefaultVersion, r.Header.Get("Notion-Version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_, _ = w.Write([]byte(`{
			"object": "list",
			"results": [{
				"object": "page",
				"id": "p1",
				"created_time": "2024-01-01T10:00:00.000Z",
				"last_edited_time": "2024-01-02T10:00:00.000Z",
				"properties": {
					"Date": {"type": "date", "date": {"start": "2024-01-01T07:30:00.000+01:00", "end": null}},
					"Activity Type": {"type": "select", "select": {"name": "Run"}},
					"Activity Name": {"type": "title", "title": [{"type": "text", "text": {"content": "Morning Run"}, "plain_text": "Morning Run"}]}
				}
			}],
			"has_more": true,
			"next_cursor": "cursor-2"
		}`))
	}))

	resp, err := c.QueryDatabase(context.Background(), "0a1b2c3d4e5f60718293a4b5c6d7e8f9", QueryDatabaseRequest{StartCursor: "cursor-1", PageSize: 50})
	require.NoError(t, err)

	assert.Equal(t, "cursor-1", gotBody.StartCursor)
	assert.Equal(t, 50, gotBody.PageSize)
	assert.True(t, resp.HasMore)
	assert.Equal(t, "cursor-2", resp.NextCursor)
	require.Len(t, resp.Results, 1)

	page := resp.Results[0]
	assert.Equal(t, "p1", page.ID)
	assert.Equal(t, "2024-01-01", page.DateDay("Date"))
	assert.Equal(t, "Run", page.SelectName("Activity Type"))
	assert.Equal(t, "Morning Run", page.FirstTitle("Activity Name"))
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), page.CreatedTime.UTC())
}

func TestQueryDatabaseRejectsMalformedID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	_, err := c.QueryDatabase(context.Background(), "not-an-id", QueryDatabaseRequest{})
	assert.Error(t, err)
}

func TestArchivePageSendsArchivedTrue(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/pages/p2", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"archived": true}, body)
		_, _ = w.Write([]byte(`{"object":"page","id":"p2","archived":true}`))
	}))

	page, err := c.ArchivePage(context.Background(), "p2")
	require.NoError(t, err)
	assert.True(t, page.Archived)
}

func TestErrorResponsesAreClassified(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"object":"error","status":401,"code":"unauthorized","message":"API token is invalid."}`))
	}))

	_, err := c.ArchivePage(context.Background(), "p3")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsRecoverable(err))

	var ce *ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "unauthorized: API token is invalid.", ce.Body)
}

func TestNoRetryByDefault(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.ArchivePage(context.Background(), "p4")
	require.Error(t, err)
	assert.True(t, IsRecoverable(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetriesRecoverableErrorsWhenEnabled(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"object":"page","id":"p5","archived":true}`))
	}), WithMaxRetries(3, time.Millisecond))

	page, err := c.ArchivePage(context.Background(), "p5")
	require.NoError(t, err)
	assert.Equal(t, "p5", page.ID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetriesStopOnIrrecoverableError(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}), WithMaxRetries(3, time.Millisecond))

	_, err := c.ArchivePage(context.Background(), "p6")
	require.Error(t, err)
	var ce *ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusNotFound, ce.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOptionsValidate(t *testing.T) {
	_, err := New("t", WithHTTPTimeout(0))
	assert.Error(t, err)
	_, err = New("t", WithMaxRetries(-1, 0))
	assert.Error(t, err)
	_, err = New("t", WithBaseURL(""))
	assert.Error(t, err)
}

func TestPageHelpersTolerateMissingProperties(t *testing.T) {
	page := Page{Properties: map[string]PropertyValue{
		"Date":          {Type: "date"},
		"Activity Name": {Type: "title", Title: []RichText{}},
	}}
	assert.Equal(t, "", page.DateDay("Date"))
	assert.Equal(t, "", page.SelectName("Activity Type"))
	assert.Equal(t, "", page.FirstTitle("Activity Name"))

	page.Properties["Date"] = PropertyValue{Type: "date", Date: &DateValue{Start: "2024-03-05"}}
	assert.Equal(t, "2024-03-05", page.DateDay("Date"))
}

func TestNormalizeID(t *testing.T) {
	id, err := NormalizeID(" 0A1B2C3D4E5F60718293A4B5C6D7E8F9 ")
	require.NoError(t, err)
	assert.Equal(t, testDB, id)

	_, err = NormalizeID("")
	assert.Error(t, err)
}
