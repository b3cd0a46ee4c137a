package api

import (
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/library"
	"github.com/starford/ansuz/internal/models"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Subject string `json:"subject"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateEventRequest is the request body for creating a calendar event.
type CreateEventRequest struct {
	Date    string `json:"date"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Subject string `json:"subject"`
}

// NoteListResponse wraps a note listing.
type NoteListResponse struct {
	Notes []models.Note `json:"notes"`
	Total int           `json:"total"`
}

// EventListResponse wraps an event listing.
type EventListResponse struct {
	Events []models.Event `json:"events"`
	Total  int            `json:"total"`
}

// SearchResponse wraps local note search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// LibraryResponse wraps remote book search results.
type LibraryResponse struct {
	Books []library.Book `json:"books"`
}

// TutorRequest is the request body for the study planner.
type TutorRequest struct {
	Message string `json:"message"`
}

// TutorResponse is the planner reply.
type TutorResponse struct {
	Reply string `json:"reply"`
}
