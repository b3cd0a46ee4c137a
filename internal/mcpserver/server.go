// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the study-record store to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/calendar"
	"github.com/starford/ansuz/internal/curriculum"
	"github.com/starford/ansuz/internal/events"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notes"
)

// Server wraps the MCP server with study-record tools.
type Server struct {
	mcp        *server.MCPServer
	notes      *notes.Repository
	events     *events.Repository
	curriculum curriculum.Curriculum
	searcher   index.Searcher
}

// New creates a new MCP server with all tools registered.
// searcher may be nil; the search tool then reports unavailability.
func New(noteRepo *notes.Repository, eventRepo *events.Repository, cur curriculum.Curriculum, searcher index.Searcher) *Server {
	s := &Server{notes: noteRepo, events: eventRepo, curriculum: cur, searcher: searcher}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List study notes, optionally filtered by subject. "+
			"The subject \"All\" (or omitting it) returns every note, newest first."),
		mcp.WithString("subject", mcp.Description("Optional subject filter, e.g. \"Math AA\"")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Create a study note. Title may be omitted when content is given "+
			"(it defaults to \"Untitled\"); a note with neither title nor content is discarded."),
		mcp.WithString("subject", mcp.Required(), mcp.Description("Subject label from the curriculum")),
		mcp.WithString("title", mcp.Description("Note title")),
		mcp.WithString("content", mcp.Description("Note body text")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("remove_note",
		mcp.WithDescription("Delete a note by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.removeNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles, content and subjects."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("List calendar events, optionally restricted to one YYYY-MM-DD date."),
		mcp.WithString("date", mcp.Description("Optional date filter in YYYY-MM-DD form")),
	), s.listEvents)

	s.mcp.AddTool(mcp.NewTool("add_event",
		mcp.WithDescription("Create a calendar event. Type must be one of exam, test, homework, deadline."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date in YYYY-MM-DD form")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Event title")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Event type: exam | test | homework | deadline")),
		mcp.WithString("subject", mcp.Required(), mcp.Description("Subject label from the curriculum")),
	), s.addEvent)

	s.mcp.AddTool(mcp.NewTool("calendar_marks",
		mcp.WithDescription("Build the per-date marking map for a month view given the selected date."),
		mcp.WithString("selected", mcp.Required(), mcp.Description("Selected date in YYYY-MM-DD form")),
	), s.calendarMarks)

	s.mcp.AddTool(mcp.NewTool("list_subjects",
		mcp.WithDescription("List the curriculum subjects grouped by IB subject group."),
	), s.listSubjects)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subject := req.GetString("subject", "")
	items := notes.FilterBySubject(s.notes.All(), subject)
	return jsonResult(items), nil
}

func (s *Server) addNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subject, err := req.RequireString("subject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := req.GetString("title", "")
	content := req.GetString("content", "")

	note, err := s.notes.Add(subject, title, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if note == nil {
		return mcp.NewToolResultError("note discarded: both title and content are empty"), nil
	}
	return jsonResult(note), nil
}

func (s *Server) removeNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.notes.Remove(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", id)), nil
}

func (s *Server) searchNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.searcher == nil {
		return mcp.NewToolResultError("search index not available"), nil
	}
	results, err := s.searcher.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) listEvents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items := s.events.All()
	if date := req.GetString("date", ""); date != "" {
		items = events.FilterByDate(items, date)
	}
	return jsonResult(items), nil
}

func (s *Server) addEvent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	subject, err := req.RequireString("subject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := s.events.Add(date, title, models.EventType(typ), subject)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if event == nil {
		return mcp.NewToolResultError("event discarded: title is empty"), nil
	}
	return jsonResult(event), nil
}

func (s *Server) calendarMarks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selected, err := req.RequireString("selected")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(calendar.Aggregate(s.events.All(), selected)), nil
}

func (s *Server) listSubjects(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.curriculum), nil
}
