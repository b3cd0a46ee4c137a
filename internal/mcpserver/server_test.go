package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/curriculum"
	"github.com/starford/ansuz/internal/events"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notes"
	"github.com/starford/ansuz/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	_, st := testutil.TestStore(t)
	noteRepo, err := notes.NewRepository(st, nil)
	if err != nil {
		t.Fatal(err)
	}
	eventRepo, err := events.NewRepository(st, nil)
	if err != nil {
		t.Fatal(err)
	}
	return New(noteRepo, eventRepo, curriculum.Default(), nil)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are exercised directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "add_note":
		result, err = srv.addNote(ctx, req)
	case "remove_note":
		result, err = srv.removeNote(ctx, req)
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "list_events":
		result, err = srv.listEvents(ctx, req)
	case "add_event":
		result, err = srv.addEvent(ctx, req)
	case "calendar_marks":
		result, err = srv.calendarMarks(ctx, req)
	case "list_subjects":
		result, err = srv.listSubjects(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAddAndListNotes(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "add_note", map[string]interface{}{
		"subject": "Math AA",
		"content": "chain rule",
	})
	if r.IsError {
		t.Fatalf("add_note error: %s", resultText(r))
	}
	var created models.Note
	if err := json.Unmarshal([]byte(resultText(r)), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Title != "Untitled" {
		t.Errorf("title = %q, want Untitled", created.Title)
	}

	r = callTool(t, srv, "list_notes", map[string]interface{}{"subject": "Math AA"})
	var listed []models.Note
	_ = json.Unmarshal([]byte(resultText(r)), &listed)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Errorf("listed = %+v", listed)
	}
}

func TestAddNoteDiscarded(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "add_note", map[string]interface{}{"subject": "Math AA"})
	if !r.IsError {
		t.Error("empty note should report an error result")
	}
}

func TestRemoveNote(t *testing.T) {
	srv := testServer(t)
	n, _ := srv.notes.Add("History", "t", "c")

	r := callTool(t, srv, "remove_note", map[string]interface{}{"id": n.ID})
	if r.IsError {
		t.Fatalf("remove_note error: %s", resultText(r))
	}
	if len(srv.notes.All()) != 0 {
		t.Error("note still present")
	}
}

func TestAddEventAndCalendarMarks(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "add_event", map[string]interface{}{
		"date": "2024-05-01", "title": "Mock exam", "type": "exam", "subject": "Math AA",
	})
	if r.IsError {
		t.Fatalf("add_event error: %s", resultText(r))
	}

	r = callTool(t, srv, "add_event", map[string]interface{}{
		"date": "2024-05-01", "title": "x", "type": "party", "subject": "Math AA",
	})
	if !r.IsError {
		t.Error("invalid type should report an error result")
	}

	r = callTool(t, srv, "calendar_marks", map[string]interface{}{"selected": "2024-05-02"})
	text := resultText(r)
	if !strings.Contains(text, "2024-05-01") || !strings.Contains(text, "2024-05-02") {
		t.Errorf("marks = %s", text)
	}
}

func TestListEventsByDate(t *testing.T) {
	srv := testServer(t)
	_, _ = srv.events.Add("2024-05-01", "a", models.EventExam, "Math AA")
	_, _ = srv.events.Add("2024-05-02", "b", models.EventTest, "History")

	r := callTool(t, srv, "list_events", map[string]interface{}{"date": "2024-05-02"})
	var listed []models.Event
	_ = json.Unmarshal([]byte(resultText(r)), &listed)
	if len(listed) != 1 || listed[0].Title != "b" {
		t.Errorf("listed = %+v", listed)
	}
}

func TestSearchNotes(t *testing.T) {
	_, st := testutil.TestStore(t)
	noteRepo, err := notes.NewRepository(st, nil)
	if err != nil {
		t.Fatal(err)
	}
	eventRepo, err := events.NewRepository(st, nil)
	if err != nil {
		t.Fatal(err)
	}
	db := testutil.TestDB(t)
	srv := New(noteRepo, eventRepo, curriculum.Default(), db)

	n, _ := srv.notes.Add("Biology", "Photosynthesis", "light dependent reactions")
	if err := db.Upsert(*n); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "light"})
	if r.IsError {
		t.Fatalf("search_notes error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "Photosynthesis") {
		t.Errorf("results = %s", resultText(r))
	}
}

func TestSearchWithoutIndex(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "x"})
	if !r.IsError {
		t.Error("search without index should report an error result")
	}
}

func TestListSubjects(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_subjects", nil)
	if !strings.Contains(resultText(r), "Mathematics") {
		t.Errorf("subjects = %s", resultText(r))
	}
}
