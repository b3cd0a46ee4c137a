package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events/stream inside the
// auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Calendar events.
	r.Get("/events", h.ListEvents)
	r.Post("/events", h.CreateEvent)
	r.Delete("/events/{id}", h.DeleteEvent)
	r.Get("/calendar", h.Calendar)

	// Curriculum.
	r.Get("/curriculum", h.Curriculum)
	r.Get("/subjects", h.Subjects)

	// Local note search and remote book search.
	r.Get("/search", h.Search)
	r.Get("/library", h.Library)

	// Study planner.
	r.Post("/tutor", h.Tutor)

	// SSE stream (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events/stream", sseHandler.ServeHTTP)
	}

	return r
}
